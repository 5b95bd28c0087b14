package viewer

import (
	"math"

	"github.com/Garsondee/floorwalk/internal/navgraph"
	"github.com/Garsondee/floorwalk/internal/vec"
)

// projection maps the X/Z floor plane onto screen pixels. Every floor shares
// one projection so lift shafts line up when switching floors.
type projection struct {
	minX, minZ float64
	scale      float64 // pixels per world unit
	offX, offY float64 // pixel position of (minX, minZ)
}

// fitProjection frames every node of g inside a w×h canvas with margin pixels
// on each side.
func fitProjection(g *navgraph.Graph, w, h, margin int) projection {
	minX, minZ := math.Inf(1), math.Inf(1)
	maxX, maxZ := math.Inf(-1), math.Inf(-1)
	for _, n := range g.Nodes() {
		p := n.Position()
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minZ, maxZ = math.Min(minZ, p.Z), math.Max(maxZ, p.Z)
	}
	if g.Len() == 0 {
		minX, maxX, minZ, maxZ = 0, 1, 0, 1
	}
	spanX := math.Max(maxX-minX, 1)
	spanZ := math.Max(maxZ-minZ, 1)
	availW := float64(w - 2*margin)
	availH := float64(h - 2*margin)
	scale := math.Min(availW/spanX, availH/spanZ)

	// Centre the content in the spare axis.
	offX := float64(margin) + (availW-spanX*scale)/2
	offY := float64(margin) + (availH-spanZ*scale)/2
	return projection{minX: minX, minZ: minZ, scale: scale, offX: offX, offY: offY}
}

func (p projection) toScreen(v vec.Vec3) (float32, float32) {
	return float32(p.offX + (v.X-p.minX)*p.scale), float32(p.offY + (v.Z-p.minZ)*p.scale)
}

func (p projection) toWorld(sx, sy int) (x, z float64) {
	return (float64(sx)-p.offX)/p.scale + p.minX, (float64(sy)-p.offY)/p.scale + p.minZ
}

// pickNode returns the node on floor closest to the screen point, if it lies
// within radius pixels.
func (p projection) pickNode(g *navgraph.Graph, floor, sx, sy int, radius float64) *navgraph.Node {
	x, z := p.toWorld(sx, sy)
	var best *navgraph.Node
	bestD := radius / p.scale
	for _, n := range g.NodesOnFloor(floor) {
		pos := n.Position()
		if d := math.Hypot(pos.X-x, pos.Z-z); d <= bestD {
			best, bestD = n, d
		}
	}
	return best
}
