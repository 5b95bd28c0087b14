package viewer

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/floorwalk/internal/movement"
	"github.com/Garsondee/floorwalk/internal/navgraph"
	"github.com/Garsondee/floorwalk/internal/sim"
)

var (
	bgColor       = color.RGBA{R: 18, G: 20, B: 26, A: 255}
	edgeColor     = color.RGBA{R: 70, G: 80, B: 96, A: 255}
	shaftColor    = color.RGBA{R: 230, G: 190, B: 60, A: 200}
	pathColor     = color.RGBA{R: 120, G: 200, B: 255, A: 180}
	hudBgColor    = color.RGBA{R: 6, G: 8, B: 12, A: 210}
	hudEdgeColor  = color.RGBA{R: 60, G: 80, B: 100, A: 180}
	textColor     = color.RGBA{R: 220, G: 225, B: 230, A: 255}
	dimTextColor  = color.RGBA{R: 130, G: 140, B: 150, A: 255}
	focusRing     = color.RGBA{R: 255, G: 255, B: 255, A: 220}
	selectedRing  = color.RGBA{R: 120, G: 255, B: 160, A: 200}
	progressColor = color.RGBA{R: 230, G: 190, B: 60, A: 255}
)

var nodeColors = map[navgraph.NodeType]color.RGBA{
	navgraph.Room:     {R: 80, G: 150, B: 90, A: 255},  // green
	navgraph.Hallway:  {R: 110, G: 110, B: 130, A: 255}, // grey
	navgraph.Elevator: {R: 230, G: 190, B: 60, A: 255},  // amber
}

var stateColors = map[movement.State]color.RGBA{
	movement.Idle:       {R: 160, G: 160, B: 170, A: 255},
	movement.Moving:     {R: 90, G: 170, B: 255, A: 255},
	movement.InElevator: {R: 255, G: 140, B: 40, A: 255},
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(bgColor)
	g.drawGraph(screen)
	g.drawFocusPath(screen)
	g.drawAgents(screen)
	g.drawHUD(screen)
}

func (g *Game) drawGraph(screen *ebiten.Image) {
	nodes := g.world.Graph.NodesOnFloor(g.floor)
	for _, n := range nodes {
		x0, y0 := g.proj.toScreen(n.Position())
		for _, nb := range n.Neighbors() {
			if nb.Floor() != g.floor {
				continue
			}
			x1, y1 := g.proj.toScreen(nb.Position())
			vector.StrokeLine(screen, x0, y0, x1, y1, 2.0, edgeColor, true)
		}
	}
	for _, n := range nodes {
		x, y := g.proj.toScreen(n.Position())
		vector.FillCircle(screen, x, y, 9, nodeColors[n.Type()], true)
		for _, nb := range n.Neighbors() {
			if nb.Floor() != g.floor {
				// Shaft link to another floor.
				vector.StrokeCircle(screen, x, y, 14, 2.0, shaftColor, true)
				break
			}
		}
		if g.showNames {
			g.drawText(screen, n.Name(), float64(x)+12, float64(y)-20, dimTextColor)
		}
	}
}

// drawFocusPath traces the focused agent's remaining path on this floor.
func (g *Game) drawFocusPath(screen *ebiten.Image) {
	m := g.focused()
	if m == nil || m.Agent.State() != movement.Moving || m.Agent.Floor() != g.floor {
		return
	}
	path := m.Agent.Path()
	px, py := g.proj.toScreen(m.Agent.Position())
	for i := m.Agent.Cursor(); i < len(path); i++ {
		if path[i].Floor() != g.floor {
			break
		}
		x, y := g.proj.toScreen(path[i].Position())
		vector.StrokeLine(screen, px, py, x, y, 1.5, pathColor, true)
		px, py = x, y
	}
	tx, ty := g.proj.toScreen(m.Agent.SegmentTarget())
	vector.StrokeLine(screen, tx-4, ty-4, tx+4, ty+4, 1.0, pathColor, true)
	vector.StrokeLine(screen, tx-4, ty+4, tx+4, ty-4, 1.0, pathColor, true)
}

func (g *Game) drawAgents(screen *ebiten.Image) {
	focus := g.focused()
	for _, m := range g.world.Members() {
		a := m.Agent
		if a.Floor() != g.floor {
			continue
		}
		x, y := g.proj.toScreen(a.Position())
		vector.FillCircle(screen, x, y, 6, stateColors[a.State()], true)
		if g.world.Registry.Contains(a) {
			vector.StrokeCircle(screen, x, y, 9, 1.5, selectedRing, true)
		}
		if m == focus {
			vector.StrokeCircle(screen, x, y, 12, 1.0, focusRing, true)
		}
		if a.State() == movement.InElevator {
			g.drawRideProgress(screen, a, x, y)
		}
		g.drawText(screen, m.Label, float64(x)-12, float64(y)+10, textColor)
	}
}

func (g *Game) drawRideProgress(screen *ebiten.Image, a *movement.Agent, x, y float32) {
	elapsed, total := a.RideProgress()
	frac := float32(1)
	if total > 0 {
		frac = float32(elapsed) / float32(total)
	}
	const w, h = 28, 4
	vector.FillRect(screen, x-w/2, y-16, w, h, hudBgColor, false)
	vector.FillRect(screen, x-w/2, y-16, w*min(frac, 1), h, progressColor, false)
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	lines := g.hudLines()
	const lineH, padX, padY = 16, 8, 6
	boxW := float32(0)
	for _, l := range lines {
		if w := float32(len(l) * 7); w > boxW {
			boxW = w
		}
	}
	boxW += padX * 2
	boxH := float32(len(lines)*lineH + padY*2)

	vector.FillRect(screen, 8, 8, boxW, boxH, hudBgColor, false)
	vector.StrokeRect(screen, 8, 8, boxW, boxH, 1.0, hudEdgeColor, false)
	for i, l := range lines {
		g.drawText(screen, l, 8+padX, float64(8+padY+i*lineH), textColor)
	}
}

func (g *Game) hudLines() []string {
	speed := speedSteps[g.speedIdx]
	speedStr := fmt.Sprintf("%gx", speed)
	if speed == 0 {
		speedStr = "paused"
	}
	follow := ""
	if g.follow {
		follow = " (follow)"
	}
	lines := []string{
		fmt.Sprintf("%s  T=%d  t=%.1fs  speed=%s", g.world.Name, g.world.CurrentTick(), g.world.Elapsed(), speedStr),
		fmt.Sprintf("floor %d%s  floors %v", g.floor, follow, g.world.Graph.Floors()),
	}
	if m := g.focused(); m != nil {
		lines = append(lines, focusLine(m))
	}
	lines = append(lines,
		"[Tab] focus  [Q/E] floor  [F] follow  [click] send  [X] stop",
		"[S] flock  [Space] pause  [,/.] speed  [N] names  [C] copy",
	)
	if g.status != "" {
		lines = append(lines, g.status)
	}
	return lines
}

func focusLine(m *sim.Member) string {
	a := m.Agent
	target := "-"
	if t := a.TargetNode(); t != nil {
		target = t.Name()
	}
	return fmt.Sprintf("%s: %s at %s → %s  v=%.2f", m.Label, a.State(), a.CurrentNode().Name(), target, a.Velocity().Len())
}

func (g *Game) drawText(screen *ebiten.Image, s string, x, y float64, c color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(c)
	text.Draw(screen, s, g.face, op)
}
