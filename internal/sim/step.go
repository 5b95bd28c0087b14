package sim

import (
	"fmt"

	"github.com/Garsondee/floorwalk/internal/movement"
	"github.com/Garsondee/floorwalk/internal/vec"
)

// Step advances the world one tick of dt seconds.
//
// Each tick takes one registry snapshot before any agent moves, so selection
// changes made by callbacks only apply from the next tick.
func (w *World) Step(dt float64) {
	w.tick++
	tick := w.tick

	prevStates := make(map[*Member]movement.State, len(w.members))
	for _, m := range w.members {
		prevStates[m] = m.Agent.State()
	}

	// 1. THINK
	for _, m := range w.members {
		w.think(m)
	}

	// 2. MOVE
	flock := w.Registry.Snapshot()
	inFlock := make(map[*movement.Agent]bool, len(flock))
	for _, a := range flock {
		inFlock[a] = true
	}
	for _, m := range w.members {
		if inFlock[m.Agent] {
			m.Agent.Tick(dt, flock)
		} else {
			m.Agent.Tick(dt, nil)
		}
	}

	// --- Post-tick logging ---
	for _, m := range w.members {
		now := m.Agent.State()
		if prev := prevStates[m]; prev != now {
			w.SimLog.Add(tick, m.Label, m.Agent.Floor(), "state", "change",
				fmt.Sprintf("%s → %s", prev, now), 0)
		}
		if w.SimLog.Verbose() {
			p := m.Agent.Position()
			w.SimLog.AddVerbose(tick, m.Label, m.Agent.Floor(), "move", "position",
				fmt.Sprintf("(%.2f,%.2f,%.2f)", p.X, p.Y, p.Z), m.Agent.Velocity().Len())
		}
	}
}

// RunTicks advances the world n ticks of the configured dt.
func (w *World) RunTicks(n int) {
	for i := 0; i < n; i++ {
		w.Step(w.dt)
	}
}

// RunUntil advances the world up to maxTicks, stopping early if predicate
// returns true. Returns the tick at which the predicate was satisfied, or -1.
func (w *World) RunUntil(predicate func(*World) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		w.Step(w.dt)
		if predicate(w) {
			return w.tick
		}
	}
	return -1
}

// CurrentTick returns the current simulation tick.
func (w *World) CurrentTick() int { return w.tick }

// DT returns the tick length used by RunTicks.
func (w *World) DT() float64 { return w.dt }

// Elapsed is the simulated time in seconds.
func (w *World) Elapsed() float64 { return float64(w.tick) * w.dt }

// Members returns the agents in creation order.
func (w *World) Members() []*Member { return w.members }

// Member looks an agent up by label.
func (w *World) Member(label string) *Member {
	for _, m := range w.members {
		if m.Label == label {
			return m
		}
	}
	return nil
}

// AllIdle reports whether every agent is Idle.
func (w *World) AllIdle() bool {
	for _, m := range w.members {
		if m.Agent.State() != movement.Idle {
			return false
		}
	}
	return true
}

// Order sends one agent to a node, bypassing its scripted orders.
func (w *World) Order(label, node string, onComplete func()) (movement.MoveResult, error) {
	m := w.Member(label)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownAgent, label)
	}
	res := m.Agent.MoveToNode(node, onComplete)
	w.SimLog.Add(w.tick, label, m.Agent.Floor(), "order", "manual", fmt.Sprintf("%s (%s)", node, res), 0)
	return res, nil
}

// SetSelected adds or removes an agent from the flocking registry.
func (w *World) SetSelected(label string, selected bool) error {
	m := w.Member(label)
	if m == nil {
		return fmt.Errorf("%w: %q", ErrUnknownAgent, label)
	}
	if selected {
		w.Registry.Add(m.Agent)
	} else {
		w.Registry.Remove(m.Agent)
	}
	return nil
}

// Remove destroys an agent. Its pending callback is dropped.
func (w *World) Remove(label string) bool {
	for i, m := range w.members {
		if m.Label != label {
			continue
		}
		m.Agent.Stop()
		w.Registry.Remove(m.Agent)
		w.members = append(w.members[:i:i], w.members[i+1:]...)
		w.SimLog.Add(w.tick, label, m.Agent.Floor(), "state", "removed", "", 0)
		return true
	}
	return false
}

// WorldSnapshot is a lightweight copy of every agent's state at a tick.
type WorldSnapshot struct {
	Tick   int
	Agents []AgentSnapshot
}

// AgentSnapshot is a lightweight copy of an agent's state at a tick.
type AgentSnapshot struct {
	Label    string
	State    movement.State
	Node     string
	Target   string
	Floor    int
	Position vec.Vec3
	Selected bool
}

// Snapshot returns the current state of all agents.
func (w *World) Snapshot() WorldSnapshot {
	snap := WorldSnapshot{Tick: w.tick}
	for _, m := range w.members {
		target := ""
		if t := m.Agent.TargetNode(); t != nil {
			target = t.Name()
		}
		snap.Agents = append(snap.Agents, AgentSnapshot{
			Label:    m.Label,
			State:    m.Agent.State(),
			Node:     m.Agent.CurrentNode().Name(),
			Target:   target,
			Floor:    m.Agent.Floor(),
			Position: m.Agent.Position(),
			Selected: w.Registry.Contains(m.Agent),
		})
	}
	return snap
}

// Summary is SimLog.Summary for the current tick.
func (w *World) Summary() string {
	return w.SimLog.Summary(w.tick, w.members)
}

// observerFor returns the observer handed to each agent: the world's own log
// followed by any WithObserver targets.
func (w *World) observerFor() movement.Observer {
	obs := movement.MultiObserver{movement.ObserverFunc(w.logEvent)}
	return append(obs, w.obs...)
}

func (w *World) logEvent(e movement.Event) {
	switch e.Kind {
	case movement.EventMoveAccepted:
		w.SimLog.Add(w.tick, e.Agent, e.Floor, "move", "accepted",
			fmt.Sprintf("→ %s (cost %.2f, %d expanded)", e.Target, e.Value, e.Expanded), e.Value)
	case movement.EventMoveQueued:
		w.SimLog.Add(w.tick, e.Agent, e.Floor, "move", "queued", "→ "+e.Target, 0)
	case movement.EventMoveRejected:
		w.SimLog.Add(w.tick, e.Agent, e.Floor, "move", "rejected", e.Target+": "+e.Reason, 0)
	case movement.EventMoveCancelled:
		w.SimLog.Add(w.tick, e.Agent, e.Floor, "move", "cancelled", e.Target, 0)
	case movement.EventNodeReached:
		w.SimLog.Add(w.tick, e.Agent, e.Floor, "node", "reached", e.Node, 0)
	case movement.EventElevatorEnter:
		w.SimLog.Add(w.tick, e.Agent, e.Floor, "elevator", "enter", e.Node+" → "+e.Target, 0)
	case movement.EventElevatorExit:
		w.SimLog.Add(w.tick, e.Agent, e.Floor, "elevator", "exit",
			fmt.Sprintf("%s after %s", e.Node, e.Duration), e.Duration.Seconds())
	case movement.EventMoveComplete:
		w.SimLog.Add(w.tick, e.Agent, e.Floor, "move", "complete", e.Node, 0)
	}
}
