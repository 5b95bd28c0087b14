// Package viewer draws a running sim.World one floor at a time with Ebiten.
package viewer

import (
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"

	"github.com/Garsondee/floorwalk/internal/movement"
	"github.com/Garsondee/floorwalk/internal/sim"
)

const (
	// margin is the pixel gap between the window edge and the floor plan.
	margin = 48
	// pickRadius is how close, in pixels, a click must land to a node.
	pickRadius = 18
)

var speedSteps = []float64{0, 0.25, 0.5, 1, 2, 4, 8}

// Game implements ebiten.Game over a sim.World.
type Game struct {
	world  *sim.World
	width  int
	height int
	proj   projection
	face   text.Face
	log    *slog.Logger

	floor     int
	follow    bool // floor tracks the focused agent
	focus     int  // index into world.Members()
	speedIdx  int
	tickAccum float64 // fractional tick accumulator for sub-1x speeds
	showNames bool
	status    string

	prevKeys      map[ebiten.Key]bool
	prevMouseLeft bool
}

// Option customises New.
type Option func(*Game)

func WithSize(w, h int) Option {
	return func(g *Game) {
		if w > 0 && h > 0 {
			g.width, g.height = w, h
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(g *Game) {
		if l != nil {
			g.log = l
		}
	}
}

// New wraps w. The first floor shown is the focused agent's, or the lowest
// floor when there are no agents.
func New(w *sim.World, opts ...Option) *Game {
	g := &Game{
		world:     w,
		width:     1280,
		height:    800,
		face:      text.NewGoXFace(basicfont.Face7x13),
		log:       slog.New(slog.DiscardHandler),
		follow:    true,
		speedIdx:  3,
		showNames: true,
		prevKeys:  make(map[ebiten.Key]bool),
	}
	for _, o := range opts {
		o(g)
	}
	g.proj = fitProjection(w.Graph, g.width, g.height, margin)
	if floors := w.Graph.Floors(); len(floors) > 0 {
		g.floor = floors[0]
	}
	g.syncFloor()
	return g
}

func (g *Game) Update() error {
	// Handle input every frame regardless of sim speed.
	g.handleInput()
	g.advance(speedSteps[g.speedIdx])
	g.syncFloor()
	return nil
}

// advance runs whole ticks for the given speed multiplier, carrying the
// fractional remainder to the next frame.
func (g *Game) advance(speed float64) {
	if speed <= 0 {
		return
	}
	g.tickAccum += speed
	for g.tickAccum >= 1.0 {
		g.tickAccum -= 1.0
		g.world.Step(g.world.DT())
	}
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}

// focused returns the focused member, or nil when the world is empty.
func (g *Game) focused() *sim.Member {
	ms := g.world.Members()
	if len(ms) == 0 {
		return nil
	}
	if g.focus >= len(ms) {
		g.focus = 0
	}
	return ms[g.focus]
}

func (g *Game) syncFloor() {
	if !g.follow {
		return
	}
	if m := g.focused(); m != nil && m.Agent.State() != movement.InElevator {
		g.floor = m.Agent.Floor()
	}
}

// stepFloor moves the shown floor by delta through the graph's floors and
// stops following the focused agent.
func (g *Game) stepFloor(delta int) {
	floors := g.world.Graph.Floors()
	if len(floors) == 0 {
		return
	}
	idx := 0
	for i, f := range floors {
		if f == g.floor {
			idx = i
		}
	}
	idx += delta
	if idx < 0 {
		idx = 0
	}
	if idx >= len(floors) {
		idx = len(floors) - 1
	}
	g.floor = floors[idx]
	g.follow = false
}
