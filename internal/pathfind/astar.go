// Package pathfind runs A* over a navgraph.Graph.
//
// Edge cost and heuristic are both the straight-line distance between node
// positions, so the heuristic never overestimates and the first time the goal
// is popped its route is optimal.
package pathfind

import (
	"container/heap"

	"github.com/Garsondee/floorwalk/internal/navgraph"
	"github.com/Garsondee/floorwalk/internal/vec"
)

// Result carries a route plus the bookkeeping metrics and tests care about.
type Result struct {
	Path     []*navgraph.Node // start..goal inclusive; nil when unreachable
	Cost     float64          // summed edge lengths of Path
	Expanded int              // nodes popped and finalised
}

// Found reports whether a route exists.
func (r Result) Found() bool { return len(r.Path) > 0 }

// FindPath returns the cheapest route from start to goal, or nil when goal is
// unreachable or either node does not belong to g. start == goal yields [start].
func FindPath(g *navgraph.Graph, start, goal *navgraph.Node) []*navgraph.Node {
	return Search(g, start, goal).Path
}

type searchNode struct {
	node   *navgraph.Node
	g, h   float64
	seq    int // open-set insertion order, last tie-break
	parent *searchNode
	index  int // heap index
}

// openList orders by f, then g, then insertion sequence. The ordering is total,
// so equal-f ties resolve the same way on every run.
type openList []*searchNode

func (ol openList) Len() int { return len(ol) }

func (ol openList) Less(i, j int) bool {
	fi := ol[i].g + ol[i].h
	fj := ol[j].g + ol[j].h
	if fi != fj {
		return fi < fj
	}
	if ol[i].g != ol[j].g {
		return ol[i].g < ol[j].g
	}
	return ol[i].seq < ol[j].seq
}

func (ol openList) Swap(i, j int) {
	ol[i], ol[j] = ol[j], ol[i]
	ol[i].index = i
	ol[j].index = j
}

func (ol *openList) Push(x any) {
	n := x.(*searchNode)
	n.index = len(*ol)
	*ol = append(*ol, n)
}

func (ol *openList) Pop() any {
	old := *ol
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*ol = old[:len(old)-1]
	return n
}

// Search is FindPath with cost and expansion count.
func Search(g *navgraph.Graph, start, goal *navgraph.Node) Result {
	if g == nil || !g.Contains(start) || !g.Contains(goal) {
		return Result{}
	}
	if start == goal {
		return Result{Path: []*navgraph.Node{start}, Expanded: 1}
	}

	goalPos := goal.Position()
	seq := 0
	first := &searchNode{node: start, h: vec.Dist(start.Position(), goalPos), seq: seq}
	ol := &openList{first}
	heap.Init(ol)

	closed := make(map[*navgraph.Node]bool)
	best := map[*navgraph.Node]*searchNode{start: first}
	expanded := 0

	for ol.Len() > 0 {
		cur := heap.Pop(ol).(*searchNode)
		if closed[cur.node] {
			continue // stale entry superseded by a cheaper one
		}
		closed[cur.node] = true
		expanded++

		if cur.node == goal {
			return Result{Path: buildPath(cur), Cost: cur.g, Expanded: expanded}
		}

		for _, nb := range cur.node.Neighbors() {
			if closed[nb] {
				continue
			}
			tentative := cur.g + vec.Dist(cur.node.Position(), nb.Position())
			if prev, ok := best[nb]; ok && tentative >= prev.g {
				continue
			}
			seq++
			sn := &searchNode{
				node:   nb,
				g:      tentative,
				h:      vec.Dist(nb.Position(), goalPos),
				seq:    seq,
				parent: cur,
			}
			best[nb] = sn
			heap.Push(ol, sn)
		}
	}
	return Result{Expanded: expanded}
}

func buildPath(end *searchNode) []*navgraph.Node {
	var path []*navgraph.Node
	for n := end; n != nil; n = n.parent {
		path = append(path, n.node)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// PathCost sums the straight-line lengths of consecutive path steps.
func PathCost(path []*navgraph.Node) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		total += vec.Dist(path[i-1].Position(), path[i].Position())
	}
	return total
}

// HopCount is the number of edges in a path; -1 for an empty path.
func HopCount(path []*navgraph.Node) int {
	return len(path) - 1
}
