package navgraph

import (
	"errors"
	"math"
	"sort"

	"github.com/Garsondee/floorwalk/internal/vec"
)

// ErrEmptyGraph is returned by callers that need at least one node.
var ErrEmptyGraph = errors.New("navgraph: graph has no nodes")

// Graph owns every node plus a floor index. Both views hold the same nodes,
// each exactly once.
type Graph struct {
	nodes   []*Node
	byName  map[string]*Node
	byFloor map[int][]*Node
	floors  []int
}

func newGraph() *Graph {
	return &Graph{
		byName:  make(map[string]*Node),
		byFloor: make(map[int][]*Node),
	}
}

func (g *Graph) add(n *Node) {
	g.nodes = append(g.nodes, n)
	g.byName[n.name] = n
	if _, ok := g.byFloor[n.floor]; !ok {
		g.floors = append(g.floors, n.floor)
	}
	g.byFloor[n.floor] = append(g.byFloor[n.floor], n)
}

func (g *Graph) seal() {
	sort.Ints(g.floors)
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Nodes returns all nodes in declaration order. The slice is shared.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Floors returns the floor numbers in ascending order.
func (g *Graph) Floors() []int { return g.floors }

// NodeByName looks a node up by its unique name.
func (g *Graph) NodeByName(name string) (*Node, bool) {
	n, ok := g.byName[name]
	return n, ok
}

// Contains reports whether n belongs to this graph instance.
func (g *Graph) Contains(n *Node) bool {
	if n == nil {
		return false
	}
	return g.byName[n.name] == n
}

// NodesOnFloor returns the nodes of one floor, or an empty slice for an
// unknown floor.
func (g *Graph) NodesOnFloor(floor int) []*Node {
	if nodes, ok := g.byFloor[floor]; ok {
		return nodes
	}
	return []*Node{}
}

// NodesOfType filters one floor by node type.
func (g *Graph) NodesOfType(t NodeType, floor int) []*Node {
	out := []*Node{}
	for _, n := range g.byFloor[floor] {
		if n.typ == t {
			out = append(out, n)
		}
	}
	return out
}

// GeneratorSpawnNodes lists every node that allows a generator spawn.
func (g *Graph) GeneratorSpawnNodes() []*Node {
	var out []*Node
	for _, n := range g.nodes {
		if n.AllowsGeneratorSpawn() {
			out = append(out, n)
		}
	}
	return out
}

// NearestNode returns the node closest to pos by straight-line distance.
// Ties keep the earlier declared node. Returns nil for an empty graph.
func (g *Graph) NearestNode(pos vec.Vec3) *Node {
	var best *Node
	bestD := math.Inf(1)
	for _, n := range g.nodes {
		if d := vec.Dist(n.pos, pos); d < bestD {
			best = n
			bestD = d
		}
	}
	return best
}

// Edge is a directed neighbour link, used for diagnostics.
type Edge struct {
	From, To *Node
}

// AsymmetricEdges lists links whose reverse link is missing. Directed links
// are legal; this only helps level authors spot accidental one-way doors.
func (g *Graph) AsymmetricEdges() []Edge {
	var out []Edge
	for _, n := range g.nodes {
		for _, nb := range n.neighbors {
			if !nb.IsNeighbor(n) {
				out = append(out, Edge{From: n, To: nb})
			}
		}
	}
	return out
}
