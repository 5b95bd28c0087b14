package main

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/Garsondee/floorwalk/internal/level"
	"github.com/Garsondee/floorwalk/internal/metrics"
	"github.com/Garsondee/floorwalk/internal/sim"
)

func TestFirstTick(t *testing.T) {
	entries := []sim.SimLogEntry{
		{Tick: 3, Category: "move", Key: "accepted", Value: "→ Lab"},
		{Tick: 9, Category: "move", Key: "accepted", Value: "→ Roof"},
		{Tick: 12, Category: "elevator", Key: "enter", Value: "Lift1 → Lift2"},
	}
	if got := firstTick(entries, "move", "accepted", ""); got != 3 {
		t.Fatalf("first accept = %d, want 3", got)
	}
	if got := firstTick(entries, "move", "accepted", "Roof"); got != 9 {
		t.Fatalf("first accept to Roof = %d, want 9", got)
	}
	if got := firstTick(entries, "chase", "start", ""); got != -1 {
		t.Fatalf("missing marker = %d, want -1", got)
	}
}

func TestAvgHelpers(t *testing.T) {
	if avg(10, 4) != 2.5 || avg(3, 0) != 0 {
		t.Fatalf("avg helper wrong")
	}
	if avgTickString(nil) != "n/a" {
		t.Fatalf("empty avgTickString should be n/a")
	}
	if got := avgTickString([]int{10, 20}); got != "15.0" {
		t.Fatalf("avgTickString = %s, want 15.0", got)
	}
	if got := joinSet(map[string]struct{}{"b": {}, "a": {}}); got != "a,b" {
		t.Fatalf("joinSet = %s, want a,b", got)
	}
}

func TestParseLogLevel(t *testing.T) {
	l, err := parseLogLevel("debug")
	if err != nil || l != slog.LevelDebug {
		t.Fatalf("parseLogLevel(debug) = %v, %v", l, err)
	}
	if _, err := parseLogLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestCollectStats_DemoRun(t *testing.T) {
	f := level.Demo()
	g, _ := f.Graph(nil)
	reg := metrics.NewRegistry()
	opts := options{ticks: 1200, dt: sim.DefaultDT}

	rs, err := runLevel(1, 42, opts, f, g, reg, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("runLevel: %v", err)
	}
	if rs.ticks != 1200 {
		t.Fatalf("ticks = %d, want 1200", rs.ticks)
	}
	if rs.accepted == 0 || rs.firstAcceptTick != 1 {
		t.Fatalf("expected moves from tick 1, got accepted=%d first=%d", rs.accepted, rs.firstAcceptTick)
	}
	if len(rs.agents) != len(f.Agents) {
		t.Fatalf("agents = %d, want %d", len(rs.agents), len(f.Agents))
	}
	if rs.nodesReached == 0 {
		t.Fatalf("no nodes reached in 20 simulated seconds")
	}

	var buf bytes.Buffer
	printRun(&buf, rs)
	printAggregate(&buf, []runStats{rs})
	out := buf.String()
	for _, want := range []string{"--- Run 1 (seed=42) ---", "courier", "=== Aggregate ===", "runs=1"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestRun_RejectsBadFlags(t *testing.T) {
	var buf bytes.Buffer
	if err := run(&buf, options{runs: 0, ticks: 1, dt: 0.1, logLevel: "warn"}); err == nil {
		t.Fatalf("expected -runs error")
	}
	if err := run(&buf, options{runs: 1, ticks: 1, dt: 0.1, logLevel: "warn", levelPath: "missing.yaml"}); err == nil {
		t.Fatalf("expected level load error")
	}
}

func TestRun_WithMetrics(t *testing.T) {
	var buf bytes.Buffer
	err := run(&buf, options{runs: 2, ticks: 300, dt: sim.DefaultDT, seedBase: 1, seedStep: 1, metrics: true, logLevel: "error"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Headless Navigation Report", "level=tower", "Run 2 (seed=2)", "floorwalk_graph_nodes 10", "floorwalk_moves_total"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}
