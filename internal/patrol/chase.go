package patrol

import (
	"log/slog"

	"github.com/Garsondee/floorwalk/internal/movement"
	"github.com/Garsondee/floorwalk/internal/navgraph"
	"github.com/Garsondee/floorwalk/internal/pathfind"
)

const (
	DefaultChaseSpeedScale = 1.5
	// DefaultMaxChaseNodes bounds the path, in nodes, to a quarry still worth
	// chasing.
	DefaultMaxChaseNodes = 2
)

// Chaser follows a quarry node while it stays close on the graph.
type Chaser struct {
	agent      *movement.Agent
	graph      *navgraph.Graph
	speedScale float64
	maxNodes   int
	onGiveUp   func()
	log        *slog.Logger

	quarry  *navgraph.Node
	chasing bool
}

type ChaseOption func(*Chaser)

func WithSpeedScale(f float64) ChaseOption {
	return func(c *Chaser) {
		if f > 0 {
			c.speedScale = f
		}
	}
}

func WithMaxNodes(n int) ChaseOption {
	return func(c *Chaser) {
		if n > 0 {
			c.maxNodes = n
		}
	}
}

// WithOnGiveUp is called whenever an active chase ends.
func WithOnGiveUp(fn func()) ChaseOption {
	return func(c *Chaser) { c.onGiveUp = fn }
}

func WithChaseLogger(l *slog.Logger) ChaseOption {
	return func(c *Chaser) {
		if l != nil {
			c.log = l
		}
	}
}

func NewChaser(a *movement.Agent, g *navgraph.Graph, opts ...ChaseOption) *Chaser {
	c := &Chaser{
		agent:      a,
		graph:      g,
		speedScale: DefaultChaseSpeedScale,
		maxNodes:   DefaultMaxChaseNodes,
		log:        slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(c)
	}
	c.log = c.log.With("agent", a.ID())
	return c
}

func (c *Chaser) Chasing() bool          { return c.chasing }
func (c *Chaser) Quarry() *navgraph.Node { return c.quarry }

// Update takes the quarry's node this tick, or nil when it is not detected,
// and reports whether the agent is chasing afterwards.
func (c *Chaser) Update(quarry *navgraph.Node) bool {
	if quarry == nil {
		c.giveUp("lost sight")
		return false
	}
	if c.agent.State() == movement.InElevator {
		return c.chasing
	}

	path := pathfind.FindPath(c.graph, c.agent.CurrentNode(), quarry)
	if len(path) == 0 || len(path) > c.maxNodes {
		c.giveUp("out of range")
		return false
	}

	if !c.chasing {
		c.chasing = true
		c.agent.SetSpeedScale(c.speedScale)
		c.log.Debug("chase started", "quarry", quarry.Name())
	}
	idle := c.agent.State() == movement.Idle && c.agent.CurrentNode() != quarry
	if quarry != c.quarry || idle {
		c.quarry = quarry
		c.agent.MoveToNode(quarry.Name(), nil)
	}
	return true
}

func (c *Chaser) giveUp(reason string) {
	if !c.chasing {
		return
	}
	c.chasing = false
	c.quarry = nil
	c.agent.SetSpeedScale(1)
	c.agent.Stop()
	c.log.Debug("chase ended", "reason", reason)
	if c.onGiveUp != nil {
		c.onGiveUp()
	}
}
