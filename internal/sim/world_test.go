package sim

import (
	"errors"
	"testing"

	"github.com/Garsondee/floorwalk/internal/level"
	"github.com/Garsondee/floorwalk/internal/movement"
	"github.com/Garsondee/floorwalk/internal/navgraph"
	"github.com/Garsondee/floorwalk/internal/vec"
)

// dumpLog prints the full SimLog to t.Log so it appears in `go test -v` output.
func dumpLog(t *testing.T, w *World) {
	t.Helper()
	entries := w.SimLog.Entries()
	if len(entries) == 0 {
		t.Log("(no log entries)")
		return
	}
	for _, e := range entries {
		t.Log(e.String())
	}
}

func demoGraph(t *testing.T) *navgraph.Graph {
	t.Helper()
	g, diags := level.Demo().Graph(nil)
	if err := diags.Err(); err != nil {
		t.Fatalf("demo graph: %v", err)
	}
	return g
}

// corridorGraph is A - B - C - D on one floor, 4 units apart, rooms at A and D.
func corridorGraph(t *testing.T) *navgraph.Graph {
	t.Helper()
	decl := func(name string, typ navgraph.NodeType, x float64, nb ...string) navgraph.Declaration {
		return navgraph.Declaration{Name: name, Floor: 1, Type: typ, Position: vec.New(x, 4, 0), Neighbors: nb}
	}
	g, diags := navgraph.Build([]navgraph.Declaration{
		decl("A", navgraph.Room, 0, "B"),
		decl("B", navgraph.Hallway, 4, "A", "C"),
		decl("C", navgraph.Hallway, 8, "B", "D"),
		decl("D", navgraph.Room, 12, "C"),
	})
	if err := diags.Err(); err != nil {
		t.Fatalf("corridor graph: %v", err)
	}
	return g
}

// --- Scenario: Courier Across Floors ---

func TestScenario_CourierAcrossFloors(t *testing.T) {
	t.Log("=== TestScenario_CourierAcrossFloors ===")

	w, err := New(
		WithGraph(demoGraph(t)),
		WithSeed(42),
		WithAgentSpec(level.AgentSpec{Label: "courier", Spawn: "Lobby", Orders: []string{"Lab", "Roof", "Lobby"}}),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	done := w.RunUntil(func(w *World) bool {
		return w.SimLog.CountCategory("move", "complete") == 3
	}, 60*120)
	dumpLog(t, w)
	t.Log(w.Summary())

	if done < 0 {
		t.Fatalf("courier did not finish its orders")
	}
	if got := w.Member("courier").Agent.CurrentNode().Name(); got != "Lobby" {
		t.Errorf("courier ended at %s, want Lobby", got)
	}
	// Lobby→Lab and Lab→Roof take one ride each; Roof→Lobby takes two.
	if got := w.SimLog.CountCategory("elevator", "enter"); got != 4 {
		t.Errorf("elevator enters = %d, want 4", got)
	}
	for _, e := range w.SimLog.Filter("elevator", "exit") {
		// Rides end on the first tick boundary at or past the transit time.
		if e.NumVal < 1 || e.NumVal >= 1+w.DT() {
			t.Errorf("ride took %.4fs, want 1s: %s", e.NumVal, e)
		}
	}
	if n := w.SimLog.CountCategory("move", "rejected"); n != 0 {
		t.Errorf("unexpected rejections: %d", n)
	}
}

// --- Scenario: Bad Order Is Skipped ---

func TestScenario_UnknownOrderRejected(t *testing.T) {
	w, err := New(
		WithGraph(corridorGraph(t)),
		WithAgentSpec(level.AgentSpec{Label: "runner", Spawn: "A", Orders: []string{"Nowhere", "D"}}),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w.RunUntil(func(w *World) bool { return w.SimLog.CountCategory("move", "complete") == 1 }, 3000)
	dumpLog(t, w)

	if !w.SimLog.HasEntry("move", "rejected", "Nowhere") {
		t.Errorf("expected rejection of Nowhere")
	}
	if got := w.Member("runner").Agent.CurrentNode().Name(); got != "D" {
		t.Errorf("runner at %s, want D", got)
	}
}

// --- Scenario: Selected Agents Flock ---

func TestScenario_SelectedGroupArrives(t *testing.T) {
	w, err := New(
		WithGraph(corridorGraph(t)),
		WithSeed(7),
		WithAgent("r1", "A", true),
		WithAgent("r2", "A", true),
		WithAgent("r3", "A", true),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if w.Registry.Len() != 3 {
		t.Fatalf("registry len = %d, want 3", w.Registry.Len())
	}

	calls := map[string]int{}
	for _, m := range w.Members() {
		label := m.Label
		res, err := w.Order(label, "D", func() { calls[label]++ })
		if err != nil || res != movement.MoveAccepted {
			t.Fatalf("order %s: %v %v", label, res, err)
		}
	}
	if w.RunUntil(func(w *World) bool { return w.AllIdle() }, 6000) < 0 {
		t.Fatalf("group never settled")
	}
	for _, label := range []string{"r1", "r2", "r3"} {
		if calls[label] != 1 {
			t.Errorf("%s callback fired %d times, want 1", label, calls[label])
		}
		if got := w.Member(label).Agent.CurrentNode().Name(); got != "D" {
			t.Errorf("%s at %s, want D", label, got)
		}
	}
}

// --- Scenario: Guard Chases Then Resumes Patrol ---

func TestScenario_GuardChasesAndGivesUp(t *testing.T) {
	w, err := New(
		WithGraph(corridorGraph(t)),
		WithAgent("quarry", "B", false),
		WithAgentSpec(level.AgentSpec{
			Label:       "guard",
			Spawn:       "A",
			Patrol:      &level.PatrolSpec{Mode: "random_room"},
			DetectRange: 5,
		}),
		WithQuarry("quarry"),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	w.RunTicks(1)
	guard := w.Member("guard")
	if !guard.Chaser().Chasing() {
		dumpLog(t, w)
		t.Fatalf("guard should be chasing the quarry at B")
	}
	if !w.SimLog.HasEntry("chase", "start", "B") {
		t.Errorf("missing chase start entry")
	}

	w.Remove("quarry")
	w.RunTicks(1)
	if guard.Chaser().Chasing() {
		t.Errorf("guard still chasing a removed quarry")
	}
	if !w.SimLog.HasEntry("chase", "end", "") {
		t.Errorf("missing chase end entry")
	}

	w.RunTicks(2)
	if guard.Patroller().Legs() == 0 {
		dumpLog(t, w)
		t.Errorf("patrol did not resume after the chase")
	}
}

func TestScenario_DistantQuarryIgnored(t *testing.T) {
	w, err := New(
		WithGraph(corridorGraph(t)),
		WithAgent("quarry", "D", false),
		WithAgentSpec(level.AgentSpec{Label: "guard", Spawn: "A", DetectRange: 20}),
		WithQuarry("quarry"),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w.RunTicks(5)
	// In detection range but four nodes away on the graph.
	if w.Member("guard").Chaser().Chasing() {
		t.Errorf("guard chased a quarry too far along the graph")
	}
}

// --- Construction and bookkeeping ---

func TestNew_Errors(t *testing.T) {
	if _, err := New(); !errors.Is(err, ErrNoGraph) {
		t.Errorf("New() err = %v, want ErrNoGraph", err)
	}
	if _, err := New(WithGraph(corridorGraph(t)), WithAgent("x", "Attic", false)); err == nil {
		t.Errorf("expected unknown spawn error")
	}
	if _, err := New(WithGraph(corridorGraph(t)), WithAgent("x", "A", false), WithAgent("x", "B", false)); err == nil {
		t.Errorf("expected duplicate label error")
	}
	bad := movement.DefaultConfig()
	bad.MoveSpeed = 0
	if _, err := New(WithGraph(corridorGraph(t)), WithConfig(bad)); err == nil {
		t.Errorf("expected config error")
	}
}

func TestNew_FromLevel(t *testing.T) {
	w, err := New(WithLevel(level.Demo()), WithSeed(3))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if w.Name != "tower" {
		t.Errorf("name = %q", w.Name)
	}
	if len(w.Members()) != 3 {
		t.Fatalf("members = %d, want 3", len(w.Members()))
	}
	// courier and visitor are selected in the demo level.
	if w.Registry.Len() != 2 {
		t.Errorf("registry len = %d, want 2", w.Registry.Len())
	}
	if w.Member("guard").Chaser() == nil || w.Member("guard").Patroller() == nil {
		t.Errorf("guard should have both a patroller and a chaser")
	}
	w.RunTicks(600)
	t.Log(w.Summary())
}

func TestSelectionAndRemoval(t *testing.T) {
	w, err := New(WithGraph(corridorGraph(t)), WithAgent("a", "A", false), WithAgent("b", "D", false))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.SetSelected("a", true); err != nil {
		t.Fatal(err)
	}
	if err := w.SetSelected("ghost", true); !errors.Is(err, ErrUnknownAgent) {
		t.Errorf("err = %v, want ErrUnknownAgent", err)
	}
	if _, err := w.Order("ghost", "A", nil); !errors.Is(err, ErrUnknownAgent) {
		t.Errorf("err = %v, want ErrUnknownAgent", err)
	}

	snap := w.Snapshot()
	if len(snap.Agents) != 2 || !snap.Agents[0].Selected || snap.Agents[1].Selected {
		t.Errorf("unexpected snapshot: %+v", snap.Agents)
	}

	if !w.Remove("a") || w.Remove("a") {
		t.Errorf("Remove should succeed once")
	}
	if w.Registry.Len() != 0 || len(w.Members()) != 1 {
		t.Errorf("agent a not fully removed")
	}
}

func TestDeterministicWithSeed(t *testing.T) {
	run := func() string {
		w, err := New(WithLevel(level.Demo()), WithSeed(99))
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		w.RunTicks(900)
		return w.SimLog.Format()
	}
	if a, b := run(), run(); a != b {
		t.Errorf("same seed produced different logs")
	}
}

func TestLargeTicksStillArrive(t *testing.T) {
	w, err := New(
		WithGraph(demoGraph(t)),
		WithDT(0.5),
		WithAgentSpec(level.AgentSpec{Label: "courier", Spawn: "Lobby", Orders: []string{"Roof"}}),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if w.RunUntil(func(w *World) bool { return w.SimLog.CountCategory("move", "complete") == 1 }, 200) < 0 {
		dumpLog(t, w)
		t.Fatalf("courier did not reach the roof with dt=0.5")
	}
}

func TestVerboseRecordsPositions(t *testing.T) {
	w, err := New(WithGraph(corridorGraph(t)), WithVerbose(true), WithAgent("a", "A", false))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w.RunTicks(3)
	if got := w.SimLog.CountCategory("move", "position"); got != 3 {
		t.Errorf("position entries = %d, want 3", got)
	}
}
