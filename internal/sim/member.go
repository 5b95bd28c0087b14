package sim

import (
	"fmt"
	"math/rand"

	"github.com/Garsondee/floorwalk/internal/level"
	"github.com/Garsondee/floorwalk/internal/movement"
	"github.com/Garsondee/floorwalk/internal/navgraph"
	"github.com/Garsondee/floorwalk/internal/patrol"
	"github.com/Garsondee/floorwalk/internal/vec"
)

func (w *World) addMember(spec level.AgentSpec) error {
	if spec.Label == "" {
		return fmt.Errorf("sim: agent without label at %q", spec.Spawn)
	}
	if w.Member(spec.Label) != nil {
		return fmt.Errorf("sim: duplicate agent label %q", spec.Label)
	}
	spawn, ok := w.Graph.NodeByName(spec.Spawn)
	if !ok {
		return fmt.Errorf("sim: agent %s: unknown spawn node %q", spec.Label, spec.Spawn)
	}

	agentLog := w.log.With("component", "movement")
	a, err := movement.NewAgent(w.Graph, spawn.Position(),
		movement.WithID(spec.Label),
		movement.WithConfig(w.Config),
		movement.WithRand(rand.New(rand.NewSource(w.rng.Int63()))), // #nosec G404 -- simulation
		movement.WithLogger(agentLog),
		movement.WithObserver(w.observerFor()),
	)
	if err != nil {
		return err
	}

	m := &Member{
		Label:       spec.Label,
		Agent:       a,
		orders:      append([]string(nil), spec.Orders...),
		orderReady:  true,
		detectRange: spec.DetectRange,
	}
	if spec.Patrol != nil {
		mode, err := patrol.ParseMode(spec.Patrol.Mode)
		if err != nil {
			return fmt.Errorf("sim: agent %s: %w", spec.Label, err)
		}
		m.patrol = patrol.NewPatroller(a, w.Graph, mode, spec.Patrol.Route,
			patrol.WithRand(rand.New(rand.NewSource(w.rng.Int63()))), // #nosec G404 -- simulation
			patrol.WithLogger(w.log),
		)
	}
	if spec.DetectRange > 0 {
		m.chaser = patrol.NewChaser(a, w.Graph,
			patrol.WithOnGiveUp(func() { w.chaseEnded(m) }),
			patrol.WithChaseLogger(w.log),
		)
	}

	w.members = append(w.members, m)
	if spec.Selected {
		w.Registry.Add(a)
	}
	return nil
}

// think issues this tick's orders for m: a chase if the quarry is in range,
// otherwise the next patrol leg or scripted order.
func (w *World) think(m *Member) {
	if m.chaser != nil {
		was := m.chaser.Chasing()
		if m.chaser.Update(w.detect(m)) {
			if !was {
				w.SimLog.Add(w.tick, m.Label, m.Agent.Floor(), "chase", "start", m.chaser.Quarry().Name(), 0)
			}
			return
		}
	}
	if m.patrol != nil {
		m.patrol.Update()
		return
	}
	w.nextOrder(m)
}

func (w *World) nextOrder(m *Member) {
	if !m.orderReady || m.orderIdx >= len(m.orders) || m.Agent.State() == movement.InElevator {
		return
	}
	target := m.orders[m.orderIdx]
	m.orderIdx++
	m.orderReady = false
	m.ordering = true
	res := m.Agent.MoveToNode(target, func() {
		m.orderReady = true
		m.ordering = false
	})
	w.SimLog.Add(w.tick, m.Label, m.Agent.Floor(), "order", "issue", fmt.Sprintf("%s (%s)", target, res), 0)
}

// chaseEnded puts m back on whatever it was doing before the chase took over.
func (w *World) chaseEnded(m *Member) {
	w.SimLog.Add(w.tick, m.Label, m.Agent.Floor(), "chase", "end", "back to routine", 0)
	if m.patrol != nil {
		m.patrol.Resume()
	}
	if m.ordering {
		m.ordering = false
		m.orderReady = true
		m.orderIdx--
	}
}

// detect returns the quarry's nearest node when it is within m's detection
// range on the same floor.
func (w *World) detect(m *Member) *navgraph.Node {
	q := w.Member(w.quarry)
	if q == nil || q == m || m.detectRange <= 0 {
		return nil
	}
	if q.Agent.Floor() != m.Agent.Floor() || q.Agent.State() == movement.InElevator {
		return nil
	}
	if vec.PlanarDist(q.Agent.Position(), m.Agent.Position()) > m.detectRange {
		return nil
	}
	return w.Graph.NearestNode(q.Agent.Position())
}
