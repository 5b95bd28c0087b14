package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"

	"github.com/Garsondee/floorwalk/internal/level"
	"github.com/Garsondee/floorwalk/internal/metrics"
	"github.com/Garsondee/floorwalk/internal/movement"
	"github.com/Garsondee/floorwalk/internal/navgraph"
	"github.com/Garsondee/floorwalk/internal/sim"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFF00"))
)

type agentStats struct {
	arrivals int
	rides    int
	nodes    int
	rejected int
}

type runStats struct {
	runIndex int
	seed     int64
	ticks    int

	firstAcceptTick  int
	firstRideTick    int
	firstArrivalTick int
	firstChaseTick   int

	accepted     int
	queued       int
	rejected     int
	cancelled    int
	arrivals     int
	rides        int
	nodesReached int
	stateChanges int
	chaseStarts  int
	chaseEnds    int

	idleAtEnd int
	agents    map[string]*agentStats
}

type options struct {
	levelPath string
	runs      int
	ticks     int
	dt        float64
	seedBase  int64
	seedStep  int64
	copy      bool
	metrics   bool
	logLevel  string
}

func main() {
	var opts options
	flag.StringVar(&opts.levelPath, "level", "", "level file (.yaml, .yml, .json); empty uses the built-in tower")
	flag.IntVar(&opts.runs, "runs", 5, "number of headless simulation runs")
	flag.IntVar(&opts.ticks, "ticks", 3600, "ticks per run")
	flag.Float64Var(&opts.dt, "dt", sim.DefaultDT, "seconds per tick")
	flag.Int64Var(&opts.seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&opts.seedStep, "seed-step", 1, "seed increment between runs")
	flag.BoolVar(&opts.copy, "copy", false, "copy the plain-text report to the clipboard")
	flag.BoolVar(&opts.metrics, "metrics", false, "print Prometheus metrics gathered over all runs")
	flag.StringVar(&opts.logLevel, "log-level", "warn", "log level for stderr (debug, info, warn, error)")
	flag.Parse()

	if err := run(os.Stdout, opts); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		os.Exit(2)
	}
}

func run(stdout io.Writer, opts options) error {
	if opts.runs <= 0 {
		return fmt.Errorf("-runs must be > 0")
	}
	if opts.ticks <= 0 {
		return fmt.Errorf("-ticks must be > 0")
	}
	if opts.dt <= 0 {
		return fmt.Errorf("-dt must be > 0")
	}
	lvl, err := parseLogLevel(opts.logLevel)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))

	f := level.Demo()
	if opts.levelPath != "" {
		if f, err = level.Load(opts.levelPath); err != nil {
			return err
		}
	}
	g, diags := f.Graph(logger)
	reg := metrics.NewRegistry()
	reg.RecordGraphBuild(g, diags)

	var report strings.Builder
	fmt.Fprintf(&report, "=== Headless Navigation Report ===\n")
	fmt.Fprintf(&report, "level=%s nodes=%d floors=%d agents=%d runs=%d ticks=%d dt=%.4f seed_base=%d seed_step=%d\n",
		f.Name, g.Len(), len(g.Floors()), len(f.Agents), opts.runs, opts.ticks, opts.dt, opts.seedBase, opts.seedStep)
	if len(diags) > 0 {
		fmt.Fprintf(&report, "build_diagnostics=%d\n", len(diags))
		for _, d := range diags {
			fmt.Fprintf(&report, "  %s\n", d.Error())
		}
	}
	report.WriteString("\n")

	all := make([]runStats, 0, opts.runs)
	for i := 0; i < opts.runs; i++ {
		seed := opts.seedBase + int64(i)*opts.seedStep
		rs, err := runLevel(i+1, seed, opts, f, g, reg, logger)
		if err != nil {
			return fmt.Errorf("run %d: %w", i+1, err)
		}
		all = append(all, rs)
		printRun(&report, rs)
	}
	printAggregate(&report, all)

	if opts.metrics {
		lines, err := reg.Lines()
		if err != nil {
			return err
		}
		report.WriteString("\n=== Metrics ===\n")
		for _, l := range lines {
			report.WriteString(l)
			report.WriteByte('\n')
		}
	}

	text := report.String()
	fmt.Fprint(stdout, stylize(text))
	if opts.copy {
		if err := clipboard.WriteAll(text); err != nil {
			fmt.Fprintln(os.Stderr, warnStyle.Render("warning: clipboard unavailable: "+err.Error()))
		}
	}
	return nil
}

func runLevel(runIndex int, seed int64, opts options, f *level.File, g *navgraph.Graph, reg *metrics.Registry, logger *slog.Logger) (runStats, error) {
	w, err := sim.New(
		sim.WithLevel(f),
		sim.WithGraph(g),
		sim.WithSeed(seed),
		sim.WithDT(opts.dt),
		sim.WithObserver(reg),
		sim.WithLogger(logger),
	)
	if err != nil {
		return runStats{}, err
	}
	w.RunTicks(opts.ticks)

	counts := map[movement.State]int{}
	for _, m := range w.Members() {
		counts[m.Agent.State()]++
	}
	reg.SetAgentStates(counts)

	return collectStats(w, runIndex, seed), nil
}

// collectStats reads one finished run's log.
func collectStats(w *sim.World, runIndex int, seed int64) runStats {
	entries := w.SimLog.Entries()
	agents := map[string]*agentStats{}
	for _, m := range w.Members() {
		agents[m.Label] = &agentStats{}
	}
	for _, e := range entries {
		as, ok := agents[e.Agent]
		if !ok {
			continue
		}
		switch {
		case e.Category == "move" && e.Key == "complete":
			as.arrivals++
		case e.Category == "move" && e.Key == "rejected":
			as.rejected++
		case e.Category == "elevator" && e.Key == "exit":
			as.rides++
		case e.Category == "node" && e.Key == "reached":
			as.nodes++
		}
	}

	rs := runStats{
		runIndex:         runIndex,
		seed:             seed,
		ticks:            w.CurrentTick(),
		firstAcceptTick:  firstTick(entries, "move", "accepted", ""),
		firstRideTick:    firstTick(entries, "elevator", "enter", ""),
		firstArrivalTick: firstTick(entries, "move", "complete", ""),
		firstChaseTick:   firstTick(entries, "chase", "start", ""),
		accepted:         w.SimLog.CountCategory("move", "accepted"),
		queued:           w.SimLog.CountCategory("move", "queued"),
		rejected:         w.SimLog.CountCategory("move", "rejected"),
		cancelled:        w.SimLog.CountCategory("move", "cancelled"),
		arrivals:         w.SimLog.CountCategory("move", "complete"),
		rides:            w.SimLog.CountCategory("elevator", "exit"),
		nodesReached:     w.SimLog.CountCategory("node", "reached"),
		stateChanges:     w.SimLog.CountCategory("state", "change"),
		chaseStarts:      w.SimLog.CountCategory("chase", "start"),
		chaseEnds:        w.SimLog.CountCategory("chase", "end"),
		agents:           agents,
	}
	for _, m := range w.Members() {
		if m.Agent.State() == movement.Idle {
			rs.idleAtEnd++
		}
	}
	return rs
}

func firstTick(entries []sim.SimLogEntry, category, key, contains string) int {
	for _, e := range entries {
		if e.Category != category || e.Key != key {
			continue
		}
		if contains == "" || strings.Contains(e.Value, contains) {
			return e.Tick
		}
	}
	return -1
}

func printRun(w io.Writer, rs runStats) {
	fmt.Fprintf(w, "--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Fprintf(w, "phase_markers: first_accept=%d first_ride=%d first_arrival=%d first_chase=%d\n",
		rs.firstAcceptTick, rs.firstRideTick, rs.firstArrivalTick, rs.firstChaseTick)
	fmt.Fprintf(w, "move_totals: accepted=%d queued=%d rejected=%d cancelled=%d complete=%d\n",
		rs.accepted, rs.queued, rs.rejected, rs.cancelled, rs.arrivals)
	fmt.Fprintf(w, "travel_totals: nodes_reached=%d elevator_rides=%d state_change=%d\n",
		rs.nodesReached, rs.rides, rs.stateChanges)
	fmt.Fprintf(w, "chase_totals: start=%d end=%d\n", rs.chaseStarts, rs.chaseEnds)
	fmt.Fprintf(w, "idle_at_end=%d/%d\n", rs.idleAtEnd, len(rs.agents))
	for _, label := range sortedLabels(rs.agents) {
		as := rs.agents[label]
		fmt.Fprintf(w, "  %-10s arrivals=%d rides=%d nodes=%d rejected=%d\n",
			label, as.arrivals, as.rides, as.nodes, as.rejected)
	}
	fmt.Fprintln(w)
}

func printAggregate(w io.Writer, all []runStats) {
	totalAccepted := 0
	totalRejected := 0
	totalArrivals := 0
	totalRides := 0
	totalNodes := 0
	totalChases := 0

	acceptTicks := make([]int, 0, len(all))
	rideTicks := make([]int, 0, len(all))
	arrivalTicks := make([]int, 0, len(all))
	chaseTicks := make([]int, 0, len(all))
	neverArrived := map[string]struct{}{}

	for _, rs := range all {
		totalAccepted += rs.accepted
		totalRejected += rs.rejected
		totalArrivals += rs.arrivals
		totalRides += rs.rides
		totalNodes += rs.nodesReached
		totalChases += rs.chaseStarts
		if rs.firstAcceptTick >= 0 {
			acceptTicks = append(acceptTicks, rs.firstAcceptTick)
		}
		if rs.firstRideTick >= 0 {
			rideTicks = append(rideTicks, rs.firstRideTick)
		}
		if rs.firstArrivalTick >= 0 {
			arrivalTicks = append(arrivalTicks, rs.firstArrivalTick)
		}
		if rs.firstChaseTick >= 0 {
			chaseTicks = append(chaseTicks, rs.firstChaseTick)
		}
		for label, as := range rs.agents {
			if as.arrivals == 0 {
				neverArrived[label] = struct{}{}
			}
		}
	}

	fmt.Fprintln(w, "=== Aggregate ===")
	fmt.Fprintf(w, "runs=%d\n", len(all))
	fmt.Fprintf(w, "avg_per_run: accepted=%.1f rejected=%.1f complete=%.1f rides=%.1f nodes_reached=%.1f chases=%.1f\n",
		avg(totalAccepted, len(all)), avg(totalRejected, len(all)), avg(totalArrivals, len(all)),
		avg(totalRides, len(all)), avg(totalNodes, len(all)), avg(totalChases, len(all)))
	fmt.Fprintf(w, "phase_marker_avg_ticks: first_accept=%s first_ride=%s first_arrival=%s first_chase=%s\n",
		avgTickString(acceptTicks), avgTickString(rideTicks), avgTickString(arrivalTicks), avgTickString(chaseTicks))
	fmt.Fprintf(w, "agents_with_a_run_without_arrival=%d [%s]\n", len(neverArrived), joinSet(neverArrived))
}

// stylize colours report headers for terminal output. The copied text stays
// plain.
func stylize(text string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		switch {
		case strings.HasPrefix(l, "=== "):
			lines[i] = titleStyle.Render(l)
		case strings.HasPrefix(l, "--- "):
			lines[i] = headerStyle.Render(l)
		}
	}
	return strings.Join(lines, "\n")
}

func parseLogLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("bad -log-level %q: %w", s, err)
	}
	return l, nil
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}

func sortedLabels(m map[string]*agentStats) []string {
	labels := make([]string, 0, len(m))
	for k := range m {
		labels = append(labels, k)
	}
	sort.Strings(labels)
	return labels
}

func joinSet(s map[string]struct{}) string {
	if len(s) == 0 {
		return "none"
	}
	labels := make([]string, 0, len(s))
	for k := range s {
		labels = append(labels, k)
	}
	sort.Strings(labels)
	return strings.Join(labels, ",")
}
