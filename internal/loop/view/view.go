// Package view draws simulation snapshots onto a terminal canvas.
package view

import (
	"fmt"

	"github.com/tomz197/swarm/internal/draw"
	"github.com/tomz197/swarm/internal/sim"
)

// Cursor ring radii in world units.
const (
	CursorRadius          = 10
	HighlightCursorRadius = 16
)

// NoHighlight disables cursor highlighting in DrawSwarm.
const NoHighlight = -1

// DrawSwarm plots every particle in its owner's colour, then every cursor as
// a ring with a centre dot. The cursor of player highlight gets a second,
// larger ring with four ticks between the rings.
func DrawSwarm(c *draw.Canvas, snap sim.Snapshot, highlight int) {
	for _, p := range snap.Particles {
		c.SetFloat(float64(p.X), float64(p.Y), draw.OwnerColor(p.Owner))
	}

	for _, cur := range snap.Cursors {
		col := draw.OwnerColor(cur.Owner)
		center := draw.Point{X: float64(cur.Position.X), Y: float64(cur.Position.Y)}
		c.DrawCircle(center, CursorRadius, col)
		c.SetFloat(center.X, center.Y, col)
		if cur.Owner == highlight {
			c.DrawCircle(center, HighlightCursorRadius, col)
			drawTicks(c, center, col)
		}
	}
}

func drawTicks(c *draw.Canvas, center draw.Point, col draw.Color) {
	for _, d := range [][2]float64{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
		from := draw.Point{X: center.X + d[0]*CursorRadius, Y: center.Y + d[1]*CursorRadius}
		to := draw.Point{X: center.X + d[0]*HighlightCursorRadius, Y: center.Y + d[1]*HighlightCursorRadius}
		c.DrawLine(from, to, col)
	}
}

// HUD is the text shown over the swarm.
type HUD struct {
	FPS    float64 // Host frame rate
	Status string  // Bottom line, e.g. which player this session controls
}

// DrawHUD writes tick timing and swarm counters to the top-left corner and
// the status line to the bottom. Fields are fixed-width so shrinking values
// leave no residue, and every written cell is marked dirty on the canvas.
func DrawHUD(cw *draw.ChunkWriter, c *draw.Canvas, snap sim.Snapshot, hud HUD) {
	lines := []string{
		fmt.Sprintf("tick %6.2f ms  %3.0f fps", snap.FrameSeconds()*1000, hud.FPS),
		fmt.Sprintf("particles %-6d rejected %-6d", len(snap.Particles), snap.Stats.Rejected),
	}
	for i, line := range lines {
		writeText(cw, c, 2, 1+i, line)
	}

	if hud.Status != "" {
		writeText(cw, c, 2, c.TerminalHeight(), hud.Status)
	}
}

func writeText(cw *draw.ChunkWriter, c *draw.Canvas, col, row int, s string) {
	if row < 1 || row > c.TerminalHeight() || col < 1 {
		return
	}
	if room := c.TerminalWidth() - col + 1; len(s) > room {
		if room <= 0 {
			return
		}
		s = s[:room]
	}
	cw.WriteAt(col, row, s)
	c.MarkTextDirty(col, row, len(s))
}

// PlayerLabel names a player by number and palette colour.
func PlayerLabel(owner int) string {
	return fmt.Sprintf("player %d (%s)", owner+1, colorNames[draw.OwnerColor(owner)])
}

var colorNames = map[draw.Color]string{
	draw.ColorRed:     "red",
	draw.ColorGreen:   "green",
	draw.ColorBlue:    "blue",
	draw.ColorCyan:    "cyan",
	draw.ColorMagenta: "magenta",
	draw.ColorYellow:  "yellow",
	draw.ColorWhite:   "white",
	draw.ColorGrey:    "grey",
}
