package loop

import (
	"fmt"
	"time"

	"github.com/tomz197/swarm/internal/draw"
	"github.com/tomz197/swarm/internal/input"
	"github.com/tomz197/swarm/internal/loop/view"
)

// drawFrame draws the swarm and the overlay for the current state.
func drawFrame(state *State, cw *draw.ChunkWriter, canvas *draw.Canvas) error {
	// Clear on state transitions so the title text doesn't linger.
	if state.GameState != state.prevGameState {
		cw.WriteString("\033[H\033[2J")
		canvas.ForceRedraw()
		state.prevGameState = state.GameState
	}

	canvas.Clear()
	view.DrawSwarm(canvas, state.Snapshot, view.NoHighlight)
	canvas.Render(cw)

	switch state.GameState {
	case GameStateStart:
		drawStartScreen(state, cw, canvas)
	case GameStatePlaying:
		view.DrawHUD(cw, canvas, state.Snapshot, view.HUD{
			FPS:    state.fps,
			Status: fmt.Sprintf("tick %-8d SPACE restart  Q quit", state.Snapshot.Tick),
		})
	}

	return cw.Flush()
}

// drawStartScreen lists every player's colour and key set.
func drawStartScreen(state *State, cw *draw.ChunkWriter, canvas *draw.Canvas) {
	centerX := canvas.TerminalWidth() / 2
	centerY := canvas.TerminalHeight() / 2

	lines := []string{"S W A R M", "", "Steer your cursor, your swarm follows", ""}
	for p := range state.Sim.Config().Players {
		lines = append(lines, fmt.Sprintf("%-20s %s", view.PlayerLabel(p), keyNames(input.PlayerKeySet(p))))
	}
	lines = append(lines, "", "SPACE restart    Q quit")

	startY := centerY - len(lines)/2
	for i, line := range lines {
		col := max(centerX-len(line)/2, 1)
		cw.WriteAt(col, startY+i, line)
		canvas.MarkTextDirty(col, startY+i, len(line))
	}

	// Blinking start prompt
	if time.Now().UnixMilli()/600%2 == 0 {
		prompt := ">>  Press SPACE to Start  <<"
		col := max(centerX-len(prompt)/2, 1)
		row := startY + len(lines) + 1
		cw.WriteAt(col, row, prompt)
		canvas.MarkTextDirty(col, row, len(prompt))
	}
}

// keyNames renders a key set as "up left down right".
func keyNames(ks input.KeySet) string {
	if ks.Up == input.ArrowUp {
		return "arrows"
	}
	return fmt.Sprintf("%c %c %c %c", ks.Up, ks.Left, ks.Down, ks.Right)
}
