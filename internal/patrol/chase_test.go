package patrol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/floorwalk/internal/movement"
)

func TestChaser_ChasesAdjacentQuarry(t *testing.T) {
	g := corridor(t)
	a := agentAt(t, g, "A", nil)
	c := NewChaser(a, g)

	b, _ := g.NodeByName("B")
	require.True(t, c.Update(b))
	assert.True(t, c.Chasing())
	assert.Same(t, b, c.Quarry())
	assert.Equal(t, movement.Moving, a.State())
	assert.Same(t, b, a.TargetNode())

	// Chase speed applies to the steering target speed.
	limit := a.Config().MoveSpeed * DefaultChaseSpeedScale
	peak := 0.0
	for i := 0; i < 600 && a.State() == movement.Moving; i++ {
		a.Tick(1.0/60, nil)
		peak = max(peak, a.Velocity().Len())
	}
	assert.Greater(t, peak, a.Config().MoveSpeed)
	assert.LessOrEqual(t, peak, limit+1e-9)
}

func TestChaser_IgnoresDistantQuarry(t *testing.T) {
	g := corridor(t)
	a := agentAt(t, g, "A", nil)
	c := NewChaser(a, g)

	far, _ := g.NodeByName("C")
	assert.False(t, c.Update(far))
	assert.False(t, c.Chasing())
	assert.Equal(t, movement.Idle, a.State())
}

func TestChaser_GivesUpOnce(t *testing.T) {
	g := corridor(t)
	a := agentAt(t, g, "A", nil)
	gaveUp := 0
	c := NewChaser(a, g, WithOnGiveUp(func() { gaveUp++ }))

	b, _ := g.NodeByName("B")
	require.True(t, c.Update(b))
	assert.False(t, c.Update(nil))
	assert.False(t, c.Update(nil))
	assert.Equal(t, 1, gaveUp)
	assert.Equal(t, movement.Idle, a.State())
	assert.Nil(t, c.Quarry())
}

func TestChaser_WithMaxNodesWidensRange(t *testing.T) {
	g := corridor(t)
	a := agentAt(t, g, "A", nil)
	c := NewChaser(a, g, WithMaxNodes(3), WithSpeedScale(2))

	far, _ := g.NodeByName("C")
	assert.True(t, c.Update(far))
	assert.Same(t, far, a.TargetNode())
}
