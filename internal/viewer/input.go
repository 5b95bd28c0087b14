package viewer

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
)

// copyLines is how many trailing log entries C copies with the summary.
const copyLines = 40

// handleInput processes keypresses (edge-triggered) and node clicks.
func (g *Game) handleInput() {
	currentKeys := map[ebiten.Key]bool{}
	pressed := func(k ebiten.Key) bool {
		currentKeys[k] = ebiten.IsKeyPressed(k)
		return currentKeys[k] && !g.prevKeys[k]
	}

	if pressed(ebiten.KeyTab) {
		if n := len(g.world.Members()); n > 0 {
			g.focus = (g.focus + 1) % n
			g.follow = true
		}
	}
	if pressed(ebiten.KeyF) {
		g.follow = !g.follow
	}
	up := pressed(ebiten.KeyE)
	if pressed(ebiten.KeyPageUp) || up {
		g.stepFloor(1)
	}
	down := pressed(ebiten.KeyQ)
	if pressed(ebiten.KeyPageDown) || down {
		g.stepFloor(-1)
	}
	if pressed(ebiten.KeySpace) {
		if g.speedIdx == 0 {
			g.speedIdx = 3
		} else {
			g.speedIdx = 0
		}
	}
	if pressed(ebiten.KeyComma) && g.speedIdx > 0 {
		g.speedIdx--
	}
	if pressed(ebiten.KeyPeriod) && g.speedIdx < len(speedSteps)-1 {
		g.speedIdx++
	}
	if pressed(ebiten.KeyN) {
		g.showNames = !g.showNames
	}
	if pressed(ebiten.KeyS) {
		g.toggleSelected()
	}
	if pressed(ebiten.KeyX) {
		if m := g.focused(); m != nil {
			m.Agent.Stop()
			g.status = m.Label + " stopped"
		}
	}
	if pressed(ebiten.KeyC) {
		g.copyReport()
	}
	g.prevKeys = currentKeys

	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	if left && !g.prevMouseLeft {
		mx, my := ebiten.CursorPosition()
		g.click(mx, my)
	}
	g.prevMouseLeft = left
}

// click orders the focused agent to the node under the cursor.
func (g *Game) click(mx, my int) {
	m := g.focused()
	if m == nil {
		return
	}
	n := g.proj.pickNode(g.world.Graph, g.floor, mx, my, pickRadius)
	if n == nil {
		return
	}
	res, err := g.world.Order(m.Label, n.Name(), nil)
	if err != nil {
		g.status = err.Error()
		return
	}
	g.status = fmt.Sprintf("%s → %s: %s", m.Label, n.Name(), res)
	g.log.Debug("viewer: order", "agent", m.Label, "target", n.Name(), "result", res.String())
}

func (g *Game) toggleSelected() {
	m := g.focused()
	if m == nil {
		return
	}
	sel := !g.world.Registry.Contains(m.Agent)
	if err := g.world.SetSelected(m.Label, sel); err != nil {
		g.status = err.Error()
		return
	}
	g.status = fmt.Sprintf("%s selected=%t", m.Label, sel)
}

func (g *Game) copyReport() {
	var sb strings.Builder
	sb.WriteString(g.world.Summary())
	entries := g.world.SimLog.Entries()
	if len(entries) > copyLines {
		entries = entries[len(entries)-copyLines:]
	}
	for _, e := range entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	if err := clipboard.WriteAll(sb.String()); err != nil {
		g.status = "clipboard unavailable: " + err.Error()
		g.log.Warn("viewer: copy failed", "err", err)
		return
	}
	g.status = fmt.Sprintf("copied summary and %d log lines", len(entries))
}
