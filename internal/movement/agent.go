// Package movement drives agents across a navgraph.Graph.
//
// Each Agent is a small state machine (Idle, Moving, InElevator) advanced by an
// external simulation loop through Tick. Nothing here blocks or spawns
// goroutines: an elevator ride is a timer polled on every tick, and flocking
// reads the sibling slice the driver passes in.
package movement

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/Garsondee/floorwalk/internal/navgraph"
	"github.com/Garsondee/floorwalk/internal/pathfind"
	"github.com/Garsondee/floorwalk/internal/vec"
)

// pendingMove is a request received mid-ride. A nil target means "stop when
// the ride ends".
type pendingMove struct {
	target     *navgraph.Node
	path       []*navgraph.Node
	onComplete func()
}

// Agent is the movement state of one entity.
type Agent struct {
	id     string
	graph  *navgraph.Graph
	cfg    Config
	rng    *rand.Rand
	log    *slog.Logger
	events Observer

	state      State
	current    *navgraph.Node // last node physically reached
	target     *navgraph.Node // final destination of the active move
	path       []*navgraph.Node
	cursor     int // index of the next path node
	pos        vec.Vec3
	vel        vec.Vec3
	segTarget  vec.Vec3 // random point near path[cursor]
	speedScale float64
	onComplete func()

	rideTo      *navgraph.Node
	rideElapsed time.Duration
	pending     *pendingMove
}

// Option customises NewAgent.
type Option func(*Agent)

// WithConfig replaces DefaultConfig.
func WithConfig(c Config) Option {
	return func(a *Agent) { a.cfg = c }
}

// WithID sets the label used in logs and events. Without it a UUID is used.
func WithID(id string) Option {
	return func(a *Agent) {
		if id != "" {
			a.id = id
		}
	}
}

// WithRand supplies the source for per-segment target offsets.
func WithRand(r *rand.Rand) Option {
	return func(a *Agent) {
		if r != nil {
			a.rng = r
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(a *Agent) {
		if l != nil {
			a.log = l
		}
	}
}

func WithObserver(o Observer) Option {
	return func(a *Agent) {
		if o != nil {
			a.events = o
		}
	}
}

// NewAgent places an agent at spawn, seated on the nearest graph node.
func NewAgent(g *navgraph.Graph, spawn vec.Vec3, opts ...Option) (*Agent, error) {
	if g == nil || g.Len() == 0 {
		return nil, navgraph.ErrEmptyGraph
	}
	a := &Agent{
		id:         uuid.NewString(),
		graph:      g,
		cfg:        DefaultConfig(),
		log:        slog.New(slog.DiscardHandler),
		events:     nopObserver{},
		state:      Idle,
		pos:        spawn,
		speedScale: 1,
	}
	for _, o := range opts {
		o(a)
	}
	if err := a.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("agent %s: %w", a.id, err)
	}
	if a.rng == nil {
		a.rng = rand.New(rand.NewSource(time.Now().UnixNano())) // #nosec G404 -- cosmetic offsets
	}
	a.current = g.NearestNode(spawn)
	a.log = a.log.With("agent", a.id)
	return a, nil
}

func (a *Agent) ID() string { return a.id }
func (a *Agent) State() State { return a.state }
func (a *Agent) CurrentNode() *navgraph.Node { return a.current }
func (a *Agent) TargetNode() *navgraph.Node { return a.target }
func (a *Agent) Position() vec.Vec3 { return a.pos }
func (a *Agent) Velocity() vec.Vec3 { return a.vel }
func (a *Agent) Cursor() int { return a.cursor }
func (a *Agent) SegmentTarget() vec.Vec3 { return a.segTarget }
func (a *Agent) Config() Config { return a.cfg }
func (a *Agent) Floor() int { return a.current.Floor() }
func (a *Agent) HasPendingCallback() bool { return a.onComplete != nil }

// Path returns a copy of the active path.
func (a *Agent) Path() []*navgraph.Node {
	out := make([]*navgraph.Node, len(a.path))
	copy(out, a.path)
	return out
}

// RideProgress reports elapsed and total time of the current elevator ride.
// Both are zero when the agent is not riding.
func (a *Agent) RideProgress() (elapsed, total time.Duration) {
	if a.state != InElevator {
		return 0, 0
	}
	return a.rideElapsed, a.cfg.ElevatorTransit
}

// SetSpeedScale multiplies MoveSpeed, e.g. 1.5 while chasing. Non-positive
// values reset it to 1.
func (a *Agent) SetSpeedScale(f float64) {
	if f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		f = 1
	}
	a.speedScale = f
}

// MoveToNode starts a move to the named node and returns what happened.
//
// A new request always supersedes the previous one: its callback is dropped,
// never invoked. Unknown or unreachable targets leave the agent Idle and call
// onComplete before returning. While riding an elevator the request is queued
// and takes effect from the destination stop once the ride ends.
func (a *Agent) MoveToNode(name string, onComplete func()) MoveResult {
	target, ok := a.graph.NodeByName(name)
	if !ok {
		return a.reject(name, MoveRejectedUnknownNode, "unknown node", 0, onComplete)
	}

	if a.state == InElevator {
		res := pathfind.Search(a.graph, a.rideTo, target)
		if !res.Found() {
			return a.reject(name, MoveRejectedUnreachable, "no route from "+a.rideTo.Name(), res.Expanded, onComplete)
		}
		a.dropActive()
		a.pending = &pendingMove{target: target, path: res.Path, onComplete: onComplete}
		a.emit(Event{
			Kind:     EventMoveQueued,
			Target:   target.Name(),
			Floor:    a.current.Floor(),
			Result:   MoveQueued,
			Value:    res.Cost,
			Expanded: res.Expanded,
		})
		a.log.Debug("move queued until ride ends", "target", target.Name())
		return MoveQueued
	}

	started := time.Now()
	res := pathfind.Search(a.graph, a.current, target)
	took := time.Since(started)
	if !res.Found() {
		return a.reject(name, MoveRejectedUnreachable, "no route from "+a.current.Name(), res.Expanded, onComplete)
	}

	a.dropActive()
	a.begin(target, res.Path, onComplete)
	a.emit(Event{
		Kind:     EventMoveAccepted,
		Target:   target.Name(),
		Floor:    a.current.Floor(),
		Result:   MoveAccepted,
		Value:    res.Cost,
		Expanded: res.Expanded,
		Duration: took,
	})
	a.log.Debug("move started", "target", target.Name(), "hops", pathfind.HopCount(res.Path))
	return MoveAccepted
}

// Stop cancels the active move without invoking its callback. During a ride
// the agent stops at the destination stop instead.
func (a *Agent) Stop() {
	switch a.state {
	case Moving:
		a.dropActive()
		a.settle()
	case InElevator:
		a.dropActive()
		a.pending = &pendingMove{}
	}
}

func (a *Agent) begin(target *navgraph.Node, path []*navgraph.Node, onComplete func()) {
	a.target = target
	a.path = path
	a.cursor = 0
	a.onComplete = onComplete
	a.state = Moving
	a.pickSegmentTarget()
}

// reject handles a refused request. Rejection supersedes any active move; a
// riding agent finishes the ride and then stops.
func (a *Agent) reject(name string, res MoveResult, reason string, expanded int, onComplete func()) MoveResult {
	a.dropActive()
	switch a.state {
	case Moving:
		a.settle()
	case InElevator:
		a.pending = &pendingMove{}
	}
	a.emit(Event{
		Kind:     EventMoveRejected,
		Target:   name,
		Floor:    a.current.Floor(),
		Result:   res,
		Reason:   reason,
		Expanded: expanded,
	})
	a.log.Warn("move rejected", "target", name, "reason", reason)
	if onComplete != nil {
		onComplete()
	}
	return res
}

// dropActive discards the callback of the active move and of any queued move.
func (a *Agent) dropActive() {
	if a.target != nil {
		a.emit(Event{Kind: EventMoveCancelled, Target: a.target.Name(), Floor: a.current.Floor()})
	}
	if a.pending != nil && a.pending.target != nil {
		a.emit(Event{Kind: EventMoveCancelled, Target: a.pending.target.Name(), Floor: a.current.Floor()})
	}
	a.target = nil
	a.onComplete = nil
	a.pending = nil
}

// settle parks the agent where it is, at its last reached node.
func (a *Agent) settle() {
	a.state = Idle
	a.vel = vec.Vec3{}
	a.path = nil
	a.cursor = 0
	a.target = nil
}

// finish completes the active move and fires its callback exactly once.
func (a *Agent) finish() {
	if a.target != nil {
		a.current = a.target
	}
	cb := a.onComplete
	a.onComplete = nil
	a.state = Idle
	a.vel = vec.Vec3{}
	a.path = nil
	a.cursor = 0
	a.target = nil
	a.emit(Event{Kind: EventMoveComplete, Node: a.current.Name(), Floor: a.current.Floor()})
	a.log.Debug("move complete", "node", a.current.Name())
	if cb != nil {
		cb()
	}
}

func (a *Agent) emit(e Event) {
	e.Agent = a.id
	a.events.Observe(e)
}

// pickSegmentTarget rolls a point uniformly inside a disc of TargetRadius
// around the next path node, on the floor plane.
func (a *Agent) pickSegmentTarget() {
	if a.cursor >= len(a.path) {
		return
	}
	center := a.path[a.cursor].Position()
	r := a.cfg.TargetRadius * math.Sqrt(a.rng.Float64())
	theta := 2 * math.Pi * a.rng.Float64()
	a.segTarget = vec.New(center.X+r*math.Cos(theta), center.Y, center.Z+r*math.Sin(theta))
}
