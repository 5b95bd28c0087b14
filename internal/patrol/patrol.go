// Package patrol issues movement orders on behalf of an agent: walking a
// patrol between rooms, and chasing a quarry that comes within a couple of
// nodes.
package patrol

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/Garsondee/floorwalk/internal/movement"
	"github.com/Garsondee/floorwalk/internal/navgraph"
)

// Mode selects how the next patrol leg is chosen.
type Mode int

const (
	FixedRoute Mode = iota // cycle a named list of nodes
	RandomRoom             // any Room except the current node
)

func (m Mode) String() string {
	switch m {
	case FixedRoute:
		return "fixed_route"
	case RandomRoom:
		return "random_room"
	default:
		return "unknown"
	}
}

// ParseMode accepts the names produced by Mode.String.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "fixed_route", "fixed":
		return FixedRoute, nil
	case "random_room", "random", "":
		return RandomRoom, nil
	default:
		return RandomRoom, fmt.Errorf("patrol: unknown mode %q", s)
	}
}

// Patroller walks one agent between patrol targets. Update must be called
// from the same loop that ticks the agent.
type Patroller struct {
	agent *movement.Agent
	graph *navgraph.Graph
	mode  Mode
	route []*navgraph.Node
	index int
	rng   *rand.Rand
	log   *slog.Logger

	legDone bool
	legs    int
}

type Option func(*Patroller)

func WithRand(r *rand.Rand) Option {
	return func(p *Patroller) {
		if r != nil {
			p.rng = r
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Patroller) {
		if l != nil {
			p.log = l
		}
	}
}

// NewPatroller resolves route against g. A FixedRoute whose names all fail to
// resolve falls back to the generator spawn rooms, and to RandomRoom when the
// graph has none.
func NewPatroller(a *movement.Agent, g *navgraph.Graph, mode Mode, route []string, opts ...Option) *Patroller {
	p := &Patroller{
		agent:   a,
		graph:   g,
		mode:    mode,
		index:   -1,
		log:     slog.New(slog.DiscardHandler),
		legDone: true,
	}
	for _, o := range opts {
		o(p)
	}
	if p.rng == nil {
		p.rng = rand.New(rand.NewSource(time.Now().UnixNano())) // #nosec G404
	}
	p.log = p.log.With("agent", a.ID())

	if p.mode != FixedRoute {
		return p
	}
	for _, name := range route {
		n, ok := g.NodeByName(name)
		if !ok {
			p.log.Warn("patrol: route node not found", "node", name)
			continue
		}
		p.route = append(p.route, n)
	}
	if len(p.route) == 0 {
		p.route = g.GeneratorSpawnNodes()
	}
	if len(p.route) == 0 {
		p.log.Warn("patrol: no usable route, switching to random rooms")
		p.mode = RandomRoom
	}
	return p
}

func (p *Patroller) Mode() Mode { return p.mode }
func (p *Patroller) Route() []*navgraph.Node { return p.route }

// Legs reports how many patrol orders were issued.
func (p *Patroller) Legs() int { return p.legs }

// Resume makes the next Update issue a fresh leg, e.g. after a chase ends.
func (p *Patroller) Resume() { p.legDone = true }

// Update issues the next leg once the previous one has finished.
func (p *Patroller) Update() {
	if !p.legDone || p.agent.State() == movement.InElevator {
		return
	}
	target := p.next()
	if target == nil {
		return
	}
	p.legDone = false
	p.legs++
	res := p.agent.MoveToNode(target.Name(), func() { p.legDone = true })
	p.log.Debug("patrol leg", "target", target.Name(), "result", res.String())
}

func (p *Patroller) next() *navgraph.Node {
	if p.mode == FixedRoute {
		p.index = (p.index + 1) % len(p.route)
		return p.route[p.index]
	}

	cur := p.agent.CurrentNode()
	var rooms []*navgraph.Node
	for _, n := range p.graph.Nodes() {
		if n.Type() == navgraph.Room && n != cur {
			rooms = append(rooms, n)
		}
	}
	if len(rooms) == 0 {
		p.log.Warn("patrol: no room to walk to")
		return nil
	}
	return rooms[p.rng.Intn(len(rooms))]
}
