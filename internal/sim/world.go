// Package sim runs agents on a navigation graph in a fixed-step loop. It is
// the headless driver used by tests, the report binary and the viewer.
package sim

import (
	"errors"
	"log/slog"
	"math/rand"

	"github.com/Garsondee/floorwalk/internal/level"
	"github.com/Garsondee/floorwalk/internal/movement"
	"github.com/Garsondee/floorwalk/internal/navgraph"
	"github.com/Garsondee/floorwalk/internal/patrol"
)

// DefaultDT is one tick at 60 Hz.
const DefaultDT = 1.0 / 60

var (
	ErrNoGraph      = errors.New("sim: no graph or level given")
	ErrUnknownAgent = errors.New("sim: unknown agent")
)

// Member is one agent in the world plus whatever is issuing its orders.
type Member struct {
	Label string
	Agent *movement.Agent

	orders     []string
	orderIdx   int
	orderReady bool
	ordering   bool

	patrol      *patrol.Patroller
	chaser      *patrol.Chaser
	detectRange float64
}

// Patroller returns the member's patroller, or nil.
func (m *Member) Patroller() *patrol.Patroller { return m.patrol }

// Chaser returns the member's chaser, or nil.
func (m *Member) Chaser() *patrol.Chaser { return m.chaser }

// World is a graph, a flocking registry and the agents moving through it.
type World struct {
	Name     string
	Graph    *navgraph.Graph
	Diags    navgraph.Diagnostics
	Config   movement.Config
	Registry *movement.Registry
	SimLog   *SimLog

	members []*Member
	quarry  string
	specs   []level.AgentSpec
	dt      float64
	tick    int
	rng     *rand.Rand
	log     *slog.Logger
	obs     []movement.Observer
	lvl     *level.File

	cfgOverride *movement.Config
}

// worldOptionKind controls the pass in which an option is applied.
type worldOptionKind int

const (
	worldOptInfra worldOptionKind = iota // level, graph, seed, verbose; applied first
	worldOptAgent                        // agents; applied after the graph exists
)

// Option is a builder function applied to a World during construction.
type Option struct {
	kind worldOptionKind
	fn   func(*World)
}

// WithLevel uses a level file for the graph, tuning and agents.
func WithLevel(f *level.File) Option {
	return Option{worldOptInfra, func(w *World) {
		w.lvl = f
	}}
}

// WithGraph uses a prebuilt graph. It wins over WithLevel's nodes.
func WithGraph(g *navgraph.Graph) Option {
	return Option{worldOptInfra, func(w *World) {
		w.Graph = g
	}}
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) Option {
	return Option{worldOptInfra, func(w *World) {
		w.rng = rand.New(rand.NewSource(seed)) // #nosec G404 -- simulation
	}}
}

// WithConfig overrides the movement tuning.
func WithConfig(c movement.Config) Option {
	return Option{worldOptInfra, func(w *World) {
		w.cfgOverride = &c
	}}
}

// WithDT sets the tick length in seconds used by RunTicks and RunUntil.
func WithDT(dt float64) Option {
	return Option{worldOptInfra, func(w *World) {
		if dt > 0 {
			w.dt = dt
		}
	}}
}

// WithVerbose enables per-tick verbose logging.
func WithVerbose(v bool) Option {
	return Option{worldOptInfra, func(w *World) {
		w.SimLog = NewSimLog(v)
	}}
}

// WithObserver forwards every agent event to o, e.g. a metrics registry.
func WithObserver(o movement.Observer) Option {
	return Option{worldOptInfra, func(w *World) {
		if o != nil {
			w.obs = append(w.obs, o)
		}
	}}
}

func WithLogger(l *slog.Logger) Option {
	return Option{worldOptInfra, func(w *World) {
		if l != nil {
			w.log = l
		}
	}}
}

// WithAgent adds an agent at the named node.
func WithAgent(label, spawn string, selected bool) Option {
	return WithAgentSpec(level.AgentSpec{Label: label, Spawn: spawn, Selected: selected})
}

// WithAgentSpec adds an agent described the way level files do.
func WithAgentSpec(spec level.AgentSpec) Option {
	return Option{worldOptAgent, func(w *World) {
		w.specs = append(w.specs, spec)
	}}
}

// WithQuarry names the agent that detecting agents chase.
func WithQuarry(label string) Option {
	return Option{worldOptAgent, func(w *World) {
		w.quarry = label
	}}
}

// New builds a World in two ordered passes: infrastructure first, then agents.
func New(opts ...Option) (*World, error) {
	w := &World{
		Config:   movement.DefaultConfig(),
		Registry: movement.NewRegistry(),
		SimLog:   NewSimLog(false),
		dt:       DefaultDT,
		rng:      rand.New(rand.NewSource(1)), // #nosec G404 -- simulation default
		log:      slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		if o.kind == worldOptInfra {
			o.fn(w)
		}
	}
	if w.lvl != nil {
		w.Name = w.lvl.Name
		w.Config = w.lvl.Movement
		w.quarry = w.lvl.Quarry
		w.specs = append(w.specs, w.lvl.Agents...)
		if w.Graph == nil {
			w.Graph, w.Diags = w.lvl.Graph(w.log)
		}
	}
	if w.cfgOverride != nil {
		w.Config = *w.cfgOverride
	}
	if w.Graph == nil || w.Graph.Len() == 0 {
		return nil, ErrNoGraph
	}
	if err := w.Config.Validate(); err != nil {
		return nil, err
	}

	for _, o := range opts {
		if o.kind == worldOptAgent {
			o.fn(w)
		}
	}
	for _, spec := range w.specs {
		if err := w.addMember(spec); err != nil {
			return nil, err
		}
	}
	w.log.Info("sim: world ready", "level", w.Name, "nodes", w.Graph.Len(), "agents", len(w.members))
	return w, nil
}
