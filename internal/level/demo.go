package level

import (
	"github.com/Garsondee/floorwalk/internal/movement"
	"github.com/Garsondee/floorwalk/internal/navgraph"
	"github.com/Garsondee/floorwalk/internal/vec"
)

// FloorHeight is the Y spacing between floors in the built-in building.
const FloorHeight = 4.0

func node(name string, floor int, t navgraph.NodeType, x, z float64, neighbors ...string) navgraph.Declaration {
	return navgraph.Declaration{
		Name:      name,
		Floor:     floor,
		Type:      t,
		Position:  vec.New(x, float64(floor)*FloorHeight, z),
		Neighbors: neighbors,
	}
}

// Demo is a three-floor building with one lift shaft, used when no level file
// is given.
func Demo() *File {
	return &File{
		Name:     "tower",
		Movement: movement.DefaultConfig(),
		Nodes: []navgraph.Declaration{
			node("Lobby", 1, navgraph.Room, 0, 0, "Hall1"),
			node("Hall1", 1, navgraph.Hallway, 6, 0, "Lobby", "Office", "Lift1"),
			node("Office", 1, navgraph.Room, 12, 0, "Hall1"),
			node("Lift1", 1, navgraph.Elevator, 6, 6, "Hall1", "Lift2"),

			node("Lift2", 2, navgraph.Elevator, 6, 6, "Lift1", "Hall2", "Lift3"),
			node("Hall2", 2, navgraph.Hallway, 6, 0, "Lift2", "Lab", "Storage"),
			node("Lab", 2, navgraph.Room, 0, 0, "Hall2"),
			node("Storage", 2, navgraph.Room, 12, 0, "Hall2"),

			node("Lift3", 3, navgraph.Elevator, 6, 6, "Lift2", "Roof"),
			node("Roof", 3, navgraph.Room, 6, 0, "Lift3"),
		},
		Agents: []AgentSpec{
			{Label: "courier", Spawn: "Lobby", Selected: true, Orders: []string{"Lab", "Office", "Roof", "Lobby"}},
			{Label: "guard", Spawn: "Storage", Patrol: &PatrolSpec{Mode: "fixed_route", Route: []string{"Storage", "Lab"}}, DetectRange: 5},
			{Label: "visitor", Spawn: "Office", Selected: true, Patrol: &PatrolSpec{Mode: "random_room"}},
		},
		Quarry: "courier",
	}
}
