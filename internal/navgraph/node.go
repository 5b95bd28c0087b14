// Package navgraph is the building graph: named nodes on floors joined by
// neighbour links. A Graph is built once from declarations and is read-only
// afterwards, so it can be shared by any number of pathfinders and agents.
package navgraph

import (
	"fmt"
	"strings"

	"github.com/Garsondee/floorwalk/internal/vec"
)

// NodeType classifies what a node represents in the building.
type NodeType int

const (
	Room     NodeType = iota // enclosed space, the only type that allows generator spawns
	Hallway                  // corridor segment
	Elevator                 // shaft stop; elevator-to-elevator links change floors
)

func (t NodeType) String() string {
	switch t {
	case Room:
		return "room"
	case Hallway:
		return "hallway"
	case Elevator:
		return "elevator"
	default:
		return "unknown"
	}
}

// ParseNodeType accepts the lower-case names produced by String, case-insensitively.
func ParseNodeType(s string) (NodeType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "room":
		return Room, nil
	case "hallway":
		return Hallway, nil
	case "elevator":
		return Elevator, nil
	}
	return 0, fmt.Errorf("unknown node type %q", s)
}

// MarshalText implements encoding.TextMarshaler so node types read naturally
// in level files.
func (t NodeType) MarshalText() ([]byte, error) {
	if t < Room || t > Elevator {
		return nil, fmt.Errorf("invalid node type %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *NodeType) UnmarshalText(b []byte) error {
	parsed, err := ParseNodeType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Node is one named point of the graph.
type Node struct {
	name      string
	floor     int
	typ       NodeType
	pos       vec.Vec3
	neighbors []*Node
}

func (n *Node) Name() string { return n.name }
func (n *Node) Floor() int { return n.floor }
func (n *Node) Type() NodeType { return n.typ }
func (n *Node) Position() vec.Vec3 { return n.pos }
func (n *Node) IsElevator() bool { return n.typ == Elevator }

// AllowsGeneratorSpawn is true only for rooms. Spawning logic outside this
// package reads it; navigation ignores it.
func (n *Node) AllowsGeneratorSpawn() bool { return n.typ == Room }

// Neighbors returns the outgoing links. The slice is shared; do not modify it.
func (n *Node) Neighbors() []*Node { return n.neighbors }

// IsNeighbor reports whether other is reachable from n in one step.
func (n *Node) IsNeighbor(other *Node) bool {
	for _, nb := range n.neighbors {
		if nb == other {
			return true
		}
	}
	return false
}

func (n *Node) String() string {
	return fmt.Sprintf("%s (floor %d, %s, %d neighbors)", n.name, n.floor, n.typ, len(n.neighbors))
}
