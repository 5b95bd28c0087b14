package pathfind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/floorwalk/internal/navgraph"
	"github.com/Garsondee/floorwalk/internal/vec"
)

func mustBuild(t *testing.T, decls []navgraph.Declaration) *navgraph.Graph {
	t.Helper()
	g, diags := navgraph.Build(decls)
	require.NoError(t, diags.Err())
	return g
}

func node(t *testing.T, g *navgraph.Graph, name string) *navgraph.Node {
	t.Helper()
	n, ok := g.NodeByName(name)
	require.True(t, ok, "node %s", name)
	return n
}

func names(path []*navgraph.Node) []string {
	out := make([]string, len(path))
	for i, n := range path {
		out[i] = n.Name()
	}
	return out
}

func TestFindPath_LinearThreeNodes(t *testing.T) {
	g := mustBuild(t, []navgraph.Declaration{
		{Name: "A", Floor: 1, Type: navgraph.Room, Position: vec.New(0, 0, 0), Neighbors: []string{"B"}},
		{Name: "B", Floor: 1, Type: navgraph.Hallway, Position: vec.New(5, 0, 0), Neighbors: []string{"A", "C"}},
		{Name: "C", Floor: 1, Type: navgraph.Room, Position: vec.New(10, 0, 0), Neighbors: []string{"B"}},
	})

	path := FindPath(g, node(t, g, "A"), node(t, g, "C"))
	assert.Equal(t, []string{"A", "B", "C"}, names(path))
	assert.InDelta(t, 10.0, PathCost(path), 1e-12)
	assert.Equal(t, 2, HopCount(path))
}

func TestFindPath_SameNode(t *testing.T) {
	g := mustBuild(t, []navgraph.Declaration{
		{Name: "Solo", Floor: 1, Type: navgraph.Room},
	})
	solo := node(t, g, "Solo")
	assert.Equal(t, []*navgraph.Node{solo}, FindPath(g, solo, solo))
}

func TestFindPath_Unreachable(t *testing.T) {
	g := mustBuild(t, []navgraph.Declaration{
		{Name: "A", Floor: 1, Type: navgraph.Room, Neighbors: []string{"B"}},
		{Name: "B", Floor: 1, Type: navgraph.Room, Position: vec.New(1, 0, 0), Neighbors: []string{"A"}},
		{Name: "Island", Floor: 1, Type: navgraph.Room, Position: vec.New(3, 0, 0)},
	})
	res := Search(g, node(t, g, "A"), node(t, g, "Island"))
	assert.False(t, res.Found())
	assert.Empty(t, res.Path)
	assert.Equal(t, 2, res.Expanded, "both reachable nodes are finalised before giving up")
}

func TestFindPath_RespectsDirectedEdges(t *testing.T) {
	g := mustBuild(t, []navgraph.Declaration{
		{Name: "Up", Floor: 1, Type: navgraph.Hallway, Neighbors: []string{"Down"}},
		{Name: "Down", Floor: 1, Type: navgraph.Hallway, Position: vec.New(2, 0, 0)},
	})
	assert.Len(t, FindPath(g, node(t, g, "Up"), node(t, g, "Down")), 2)
	assert.Empty(t, FindPath(g, node(t, g, "Down"), node(t, g, "Up")))
}

func TestFindPath_ForeignOrNilNodes(t *testing.T) {
	decls := []navgraph.Declaration{{Name: "A", Floor: 1, Type: navgraph.Room}}
	g1 := mustBuild(t, decls)
	g2 := mustBuild(t, decls)

	a1 := node(t, g1, "A")
	a2 := node(t, g2, "A")
	assert.Empty(t, FindPath(g1, a1, a2))
	assert.Empty(t, FindPath(g1, nil, a1))
	assert.Empty(t, FindPath(nil, a1, a1))
}

func TestFindPath_PrefersShorterDetour(t *testing.T) {
	// Direct-looking route through Far is longer than the two short hops.
	g := mustBuild(t, []navgraph.Declaration{
		{Name: "S", Floor: 1, Type: navgraph.Room, Position: vec.New(0, 0, 0), Neighbors: []string{"Far", "M1"}},
		{Name: "Far", Floor: 1, Type: navgraph.Hallway, Position: vec.New(5, 0, 20), Neighbors: []string{"G"}},
		{Name: "M1", Floor: 1, Type: navgraph.Hallway, Position: vec.New(3, 0, 1), Neighbors: []string{"M2"}},
		{Name: "M2", Floor: 1, Type: navgraph.Hallway, Position: vec.New(7, 0, 1), Neighbors: []string{"G"}},
		{Name: "G", Floor: 1, Type: navgraph.Room, Position: vec.New(10, 0, 0)},
	})
	res := Search(g, node(t, g, "S"), node(t, g, "G"))
	assert.Equal(t, []string{"S", "M1", "M2", "G"}, names(res.Path))
	assert.InDelta(t, PathCost(res.Path), res.Cost, 1e-9)
}

func TestFindPath_CrossesFloorsViaElevators(t *testing.T) {
	g := mustBuild(t, []navgraph.Declaration{
		{Name: "A", Floor: 1, Type: navgraph.Room, Position: vec.New(0, 0, 0), Neighbors: []string{"E1"}},
		{Name: "E1", Floor: 1, Type: navgraph.Elevator, Position: vec.New(5, 0, 0), Neighbors: []string{"A", "E2"}},
		{Name: "E2", Floor: 2, Type: navgraph.Elevator, Position: vec.New(5, 4, 0), Neighbors: []string{"E1", "D"}},
		{Name: "D", Floor: 2, Type: navgraph.Room, Position: vec.New(0, 4, 0), Neighbors: []string{"E2"}},
	})
	assert.Equal(t, []string{"A", "E1", "E2", "D"}, names(FindPath(g, node(t, g, "A"), node(t, g, "D"))))
}

// Two mirror-image routes have identical f. The tie-break is f, then g, then
// insertion order, so the neighbour listed first wins.
func TestFindPath_TieBreakFollowsNeighborOrder(t *testing.T) {
	build := func(order ...string) *navgraph.Graph {
		return mustBuild(t, []navgraph.Declaration{
			{Name: "S", Floor: 1, Type: navgraph.Room, Position: vec.New(0, 0, 0), Neighbors: order},
			{Name: "North", Floor: 1, Type: navgraph.Hallway, Position: vec.New(5, 0, 3), Neighbors: []string{"G"}},
			{Name: "South", Floor: 1, Type: navgraph.Hallway, Position: vec.New(5, 0, -3), Neighbors: []string{"G"}},
			{Name: "G", Floor: 1, Type: navgraph.Room, Position: vec.New(10, 0, 0)},
		})
	}

	g := build("North", "South")
	for i := 0; i < 5; i++ {
		assert.Equal(t, []string{"S", "North", "G"}, names(FindPath(g, node(t, g, "S"), node(t, g, "G"))))
	}

	g = build("South", "North")
	assert.Equal(t, []string{"S", "South", "G"}, names(FindPath(g, node(t, g, "S"), node(t, g, "G"))))
}

func TestPathCost_Empty(t *testing.T) {
	assert.Equal(t, 0.0, PathCost(nil))
	assert.Equal(t, -1, HopCount(nil))
}

func TestOpenList_Ordering(t *testing.T) {
	ol := openList{
		{g: 2, h: 2, seq: 0},
		{g: 1, h: 3, seq: 1},
		{g: 1, h: 3, seq: 2},
		{g: 0, h: 4, seq: 3},
		{g: 0, h: 3, seq: 4},
	}
	assert.True(t, ol.Less(4, 0), "lower f first")
	assert.True(t, ol.Less(3, 1), "equal f: lower g first")
	assert.True(t, ol.Less(1, 2), "equal f and g: earlier insertion first")
	assert.False(t, ol.Less(2, 1))
}
