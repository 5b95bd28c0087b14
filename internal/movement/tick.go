package movement

import (
	"math"

	"github.com/Garsondee/floorwalk/internal/navgraph"
	"github.com/Garsondee/floorwalk/internal/vec"
)

// Tick advances the agent by dt seconds. siblings is the flocking set for this
// tick, normally a Registry snapshot; it may include the agent itself.
// Non-positive or non-finite dt is ignored.
func (a *Agent) Tick(dt float64, siblings []*Agent) {
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return
	}
	switch a.state {
	case Moving:
		a.tickMoving(dt, siblings)
	case InElevator:
		a.tickElevator(dt)
	}
}

func (a *Agent) tickMoving(dt float64, siblings []*Agent) {
	if a.cursor >= len(a.path) {
		a.finish()
		return
	}
	next := a.path[a.cursor]
	if next.IsElevator() && next.Floor() != a.current.Floor() {
		a.enterElevator(next)
		return
	}

	toTarget := a.segTarget.Sub(a.pos)
	dist := toTarget.Len()
	if dist <= a.cfg.ArrivalEpsilon {
		a.pos = a.segTarget
		a.reachNode()
		return
	}

	fadeRadius := math.Max(a.cfg.TargetRadius, a.cfg.ArrivalEpsilon)
	fade := vec.Clamp01(dist / fadeRadius)

	heading := toTarget.Normalize()
	desired := heading.Scale(a.cfg.NodeWeight).Add(a.flockVector(siblings).Scale(fade))
	if desired.IsZero() {
		desired = heading
	}
	desired = desired.Normalize().Scale(a.cfg.MoveSpeed * a.speedScale)

	a.vel = vec.Lerp(a.vel, desired, a.cfg.smoothingAlpha(dt))
	step := a.vel.Scale(dt)
	from := a.pos
	a.pos = a.pos.Add(step)

	// Checking the swept segment keeps long ticks from stepping over the
	// target.
	overshot := step.Dot(toTarget) > 0 && step.Len() >= dist
	if overshot || vec.SegmentPointDist(from, a.pos, a.segTarget) <= a.cfg.ArrivalEpsilon {
		a.pos = a.segTarget
		a.reachNode()
	}
}

// flockVector sums cohesion, separation and alignment against the moving
// agents on the same floor within NeighborRadius.
func (a *Agent) flockVector(siblings []*Agent) vec.Vec3 {
	var (
		center, push, heading vec.Vec3
		count                 int
	)
	floor := a.current.Floor()
	sep := a.cfg.SeparationDistance
	for _, o := range siblings {
		if o == nil || o == a || o.state != Moving || o.current.Floor() != floor {
			continue
		}
		d := vec.Dist(a.pos, o.pos)
		if d > a.cfg.NeighborRadius {
			continue
		}
		count++
		center = center.Add(o.pos)
		heading = heading.Add(o.vel)
		if d > 0 && d < sep {
			push = push.Add(a.pos.Sub(o.pos).Normalize().Scale((sep - d) / sep))
		}
	}
	if count == 0 {
		return vec.Vec3{}
	}

	center = center.Scale(1 / float64(count))
	cohesion := center.Sub(a.pos).Normalize().Scale(a.cfg.CohesionWeight)
	if push.Len() > 1 {
		push = push.Normalize()
	}
	separation := push.Scale(a.cfg.SeparationWeight)
	alignment := heading.Normalize().Scale(a.cfg.AlignmentWeight)
	return cohesion.Add(separation).Add(alignment)
}

// reachNode records arrival at path[cursor].
func (a *Agent) reachNode() {
	a.current = a.path[a.cursor]
	a.cursor++
	a.emit(Event{Kind: EventNodeReached, Node: a.current.Name(), Floor: a.current.Floor()})
	if a.cursor >= len(a.path) {
		a.finish()
		return
	}
	a.pickSegmentTarget()
}

func (a *Agent) enterElevator(dest *navgraph.Node) {
	a.state = InElevator
	a.vel = vec.Vec3{}
	a.rideTo = dest
	a.rideElapsed = 0
	a.emit(Event{Kind: EventElevatorEnter, Node: a.current.Name(), Target: dest.Name(), Floor: a.current.Floor()})
	a.log.Debug("elevator ride started", "from", a.current.Name(), "to", dest.Name())
}

func (a *Agent) tickElevator(dt float64) {
	a.rideElapsed += secondsToDuration(dt)
	if a.rideElapsed < a.cfg.ElevatorTransit {
		return
	}
	a.exitElevator()
}

// exitElevator lands the agent on the destination stop. A queued request takes
// over from there; otherwise the active path continues.
func (a *Agent) exitElevator() {
	dest := a.rideTo
	took := a.rideElapsed
	a.rideTo = nil
	a.rideElapsed = 0
	a.pos = dest.Position()
	a.current = dest
	a.state = Moving
	a.emit(Event{Kind: EventElevatorExit, Node: dest.Name(), Floor: dest.Floor(), Duration: took})
	a.log.Debug("elevator ride finished", "node", dest.Name(), "took", took)

	if p := a.pending; p != nil {
		a.pending = nil
		if p.target == nil {
			a.settle()
			return
		}
		a.begin(p.target, p.path, p.onComplete)
		a.emit(Event{Kind: EventMoveAccepted, Target: p.target.Name(), Floor: dest.Floor(), Result: MoveAccepted})
		return
	}

	a.cursor++
	a.emit(Event{Kind: EventNodeReached, Node: dest.Name(), Floor: dest.Floor()})
	if a.cursor >= len(a.path) {
		a.finish()
		return
	}
	a.pickSegmentTarget()
}
