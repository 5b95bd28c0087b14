package movement

// State is the controller's high-level mode.
type State int

const (
	Idle       State = iota // no active path, waiting for a command
	Moving                  // following a path under steering
	InElevator              // timed floor change, not interruptible
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Moving:
		return "moving"
	case InElevator:
		return "in_elevator"
	default:
		return "unknown"
	}
}

// MoveResult tells the caller what MoveToNode did with a request. The
// completion callback alone cannot distinguish these.
type MoveResult int

const (
	MoveAccepted            MoveResult = iota // path found, agent is moving
	MoveQueued                                // agent is riding; request applies when the ride ends
	MoveRejectedUnknownNode                   // no node with that name; callback already invoked
	MoveRejectedUnreachable                   // no route; callback already invoked
)

func (r MoveResult) String() string {
	switch r {
	case MoveAccepted:
		return "accepted"
	case MoveQueued:
		return "queued"
	case MoveRejectedUnknownNode:
		return "rejected_unknown_node"
	case MoveRejectedUnreachable:
		return "rejected_unreachable"
	default:
		return "unknown"
	}
}

// Rejected reports whether the request was refused.
func (r MoveResult) Rejected() bool {
	return r == MoveRejectedUnknownNode || r == MoveRejectedUnreachable
}
