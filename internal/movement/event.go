package movement

import "time"

// EventKind names a movement event.
type EventKind int

const (
	EventMoveAccepted  EventKind = iota // Target, Value=path cost, Expanded, Duration=search time
	EventMoveQueued                     // Target; request waits for the ride to end
	EventMoveRejected                   // Target, Reason
	EventMoveCancelled                  // Target of the superseded move
	EventNodeReached                    // Node
	EventElevatorEnter                  // Node=boarding node, Target=destination stop
	EventElevatorExit                   // Node=destination stop, Duration=ride time
	EventMoveComplete                   // Node=final node
)

func (k EventKind) String() string {
	switch k {
	case EventMoveAccepted:
		return "move_accepted"
	case EventMoveQueued:
		return "move_queued"
	case EventMoveRejected:
		return "move_rejected"
	case EventMoveCancelled:
		return "move_cancelled"
	case EventNodeReached:
		return "node_reached"
	case EventElevatorEnter:
		return "elevator_enter"
	case EventElevatorExit:
		return "elevator_exit"
	case EventMoveComplete:
		return "move_complete"
	default:
		return "unknown"
	}
}

// Event is emitted synchronously by an Agent as its state changes.
type Event struct {
	Kind     EventKind
	Agent    string
	Node     string
	Target   string
	Floor    int
	Result   MoveResult // set on accepted, queued and rejected events
	Reason   string
	Value    float64
	Expanded int
	Duration time.Duration
}

// Observer receives agent events. Implementations must not call back into the
// emitting agent.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a plain function.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }

// MultiObserver fans an event out in order.
type MultiObserver []Observer

func (m MultiObserver) Observe(e Event) {
	for _, o := range m {
		if o != nil {
			o.Observe(e)
		}
	}
}

type nopObserver struct{}

func (nopObserver) Observe(Event) {}
