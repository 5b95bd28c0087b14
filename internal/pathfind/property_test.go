package pathfind

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/Garsondee/floorwalk/internal/navgraph"
	"github.com/Garsondee/floorwalk/internal/vec"
)

// randomGraph builds a small multi-floor graph from a seed. Edges are mostly
// symmetric; some are left one-way so directed reachability is exercised.
func randomGraph(seed int64) *navgraph.Graph {
	rng := rand.New(rand.NewSource(seed)) // #nosec G404 -- test data
	n := 2 + rng.Intn(14)
	decls := make([]navgraph.Declaration, n)
	for i := range decls {
		floor := 1 + rng.Intn(3)
		decls[i] = navgraph.Declaration{
			Name:     fmt.Sprintf("N%02d", i),
			Floor:    floor,
			Type:     navgraph.NodeType(rng.Intn(3)),
			Position: vec.New(rng.Float64()*30, float64(floor)*4, rng.Float64()*30),
		}
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if rng.Float64() > 0.3 {
				continue
			}
			decls[i].Neighbors = append(decls[i].Neighbors, decls[j].Name)
			if rng.Float64() < 0.85 {
				decls[j].Neighbors = append(decls[j].Neighbors, decls[i].Name)
			}
		}
	}
	g, _ := navgraph.Build(decls)
	return g
}

// dijkstra is the exhaustive reference: plain O(V²) Dijkstra returning the
// optimal cost, or +Inf when unreachable.
func dijkstra(g *navgraph.Graph, start, goal *navgraph.Node) float64 {
	dist := map[*navgraph.Node]float64{start: 0}
	done := map[*navgraph.Node]bool{}
	for {
		var cur *navgraph.Node
		best := math.Inf(1)
		for n, d := range dist {
			if !done[n] && d < best {
				cur, best = n, d
			}
		}
		if cur == nil {
			return math.Inf(1)
		}
		if cur == goal {
			return best
		}
		done[cur] = true
		for _, nb := range cur.Neighbors() {
			nd := best + vec.Dist(cur.Position(), nb.Position())
			if old, ok := dist[nb]; !ok || nd < old {
				dist[nb] = nd
			}
		}
	}
}

func pickPair(g *navgraph.Graph, a, b int) (*navgraph.Node, *navgraph.Node) {
	nodes := g.Nodes()
	return nodes[a%len(nodes)], nodes[b%len(nodes)]
}

func TestFindPath_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 60

	properties := gopter.NewProperties(parameters)

	properties.Property("reachable paths start at start, end at goal, and follow edges", prop.ForAll(
		func(seed int64, a, b int) bool {
			g := randomGraph(seed)
			start, goal := pickPair(g, a, b)
			path := FindPath(g, start, goal)
			if len(path) == 0 {
				return math.IsInf(dijkstra(g, start, goal), 1)
			}
			if path[0] != start || path[len(path)-1] != goal {
				return false
			}
			for i := 1; i < len(path); i++ {
				if !path[i-1].IsNeighbor(path[i]) {
					return false
				}
			}
			return true
		},
		gen.Int64(),
		gen.IntRange(0, 1000),
		gen.IntRange(0, 1000),
	))

	properties.Property("unreachable goal yields an empty path", prop.ForAll(
		func(seed int64, a, b int) bool {
			g := randomGraph(seed)
			start, goal := pickPair(g, a, b)
			unreachable := math.IsInf(dijkstra(g, start, goal), 1)
			return unreachable == (len(FindPath(g, start, goal)) == 0)
		},
		gen.Int64(),
		gen.IntRange(0, 1000),
		gen.IntRange(0, 1000),
	))

	properties.Property("A* cost never exceeds the exhaustive optimum", prop.ForAll(
		func(seed int64, a, b int) bool {
			g := randomGraph(seed)
			start, goal := pickPair(g, a, b)
			res := Search(g, start, goal)
			if !res.Found() {
				return true
			}
			return PathCost(res.Path) <= dijkstra(g, start, goal)+1e-9
		},
		gen.Int64(),
		gen.IntRange(0, 1000),
		gen.IntRange(0, 1000),
	))

	properties.Property("a node routes to itself as a single-node path", prop.ForAll(
		func(seed int64, a int) bool {
			g := randomGraph(seed)
			n, _ := pickPair(g, a, a)
			path := FindPath(g, n, n)
			return len(path) == 1 && path[0] == n
		},
		gen.Int64(),
		gen.IntRange(0, 1000),
	))

	properties.Property("search is deterministic", prop.ForAll(
		func(seed int64, a, b int) bool {
			g := randomGraph(seed)
			start, goal := pickPair(g, a, b)
			p1 := FindPath(g, start, goal)
			p2 := FindPath(g, start, goal)
			if len(p1) != len(p2) {
				return false
			}
			for i := range p1 {
				if p1[i] != p2[i] {
					return false
				}
			}
			return true
		},
		gen.Int64(),
		gen.IntRange(0, 1000),
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t)
}
