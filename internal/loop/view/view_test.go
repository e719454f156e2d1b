package view

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/tomz197/swarm/internal/draw"
	"github.com/tomz197/swarm/internal/physics"
	"github.com/tomz197/swarm/internal/sim"
)

func testSnapshot() sim.Snapshot {
	return sim.Snapshot{
		Tick: 3,
		Particles: []sim.ParticleState{
			{ID: 0, X: 10, Y: 10, Owner: 0},
			{ID: 1, X: 90, Y: 50, Owner: 1},
		},
		Cursors: []sim.Cursor{
			{Owner: 0, Position: physics.Vec2{X: 50, Y: 50}},
			{Owner: 1, Position: physics.Vec2{X: 200, Y: 200}}, // off-world
		},
		World:   physics.Vec2{X: 100, Y: 100},
		Elapsed: 1500 * time.Microsecond,
		Stats:   sim.StepStats{Rejected: 4},
	}
}

func TestDrawSwarm(t *testing.T) {
	// One column per world unit, two sub-pixels per unit of height.
	c := draw.NewScaledCanvas(100, 100, 100, 100)
	DrawSwarm(c, testSnapshot(), 0)

	var buf bytes.Buffer
	c.Render(&buf)
	out := buf.String()

	if !strings.Contains(out, draw.ColorRed.SGR()[:4]) {
		t.Error("no red pixels rendered")
	}
	if !strings.Contains(out, "\033[32;") {
		t.Error("green particle not rendered")
	}
}

func TestDrawSwarmHighlightTicks(t *testing.T) {
	// One sub-pixel per world unit on both axes.
	c := draw.NewScaledCanvas(100, 50, 100, 100)
	snap := sim.Snapshot{
		Cursors: []sim.Cursor{{Owner: 0, Position: physics.Vec2{X: 50, Y: 50}}},
		World:   physics.Vec2{X: 100, Y: 100},
	}

	DrawSwarm(c, snap, NoHighlight)
	c.Render(&bytes.Buffer{})

	c.Clear()
	DrawSwarm(c, snap, 0)
	var buf bytes.Buffer
	c.Render(&buf)

	// Ticks run between the rings at x 40..34 and 60..66 on pixel row 50.
	for _, want := range []string{"\033[26;38H", "\033[26;64H"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("tick cell %q not drawn", want)
		}
	}
}

func TestDrawHUD(t *testing.T) {
	c := draw.NewScaledCanvas(60, 10, 100, 100)
	var out bytes.Buffer
	cw := draw.NewChunkWriter(&out, 0, 0)

	DrawHUD(cw, c, testSnapshot(), HUD{FPS: 60, Status: "you are " + PlayerLabel(2)})
	if err := cw.Flush(); err != nil {
		t.Fatal(err)
	}

	text := out.String()
	for _, want := range []string{"tick   1.50 ms   60 fps", "particles 2", "rejected 4", "player 3 (blue)", "\033[10;2H"} {
		if !strings.Contains(text, want) {
			t.Errorf("HUD missing %q in %q", want, text)
		}
	}

	// Text cells are repainted by the next canvas render.
	c.Render(&bytes.Buffer{})
	c.MarkTextDirty(1, 1, 0)
	DrawHUD(cw, c, testSnapshot(), HUD{})
	var next bytes.Buffer
	c.Render(&next)
	if !strings.Contains(next.String(), "\033[1;2H") {
		t.Error("HUD cells not marked dirty")
	}
}

func TestDrawHUDClipsToCanvas(t *testing.T) {
	c := draw.NewScaledCanvas(12, 1, 100, 100)
	var out bytes.Buffer
	cw := draw.NewChunkWriter(&out, 0, 0)

	DrawHUD(cw, c, testSnapshot(), HUD{Status: strings.Repeat("s", 40)})
	if err := cw.Flush(); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out.String(), "fps") {
		t.Errorf("line not clipped: %q", out.String())
	}
}
