// Package loop provides the local hot-seat loop: one terminal, one keyboard,
// every player on their own key set.
package loop

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"github.com/tomz197/swarm/internal/draw"
	"github.com/tomz197/swarm/internal/input"
	"github.com/tomz197/swarm/internal/loop/config"
	"github.com/tomz197/swarm/internal/sim"
)

// Run starts the main loop with the standard Input → Update → Draw cycle.
// It returns when a player quits, the input stream closes, or a tick fails.
func Run(r *bufio.Reader, w io.Writer, cfg sim.Config) error {
	state, err := NewState(cfg)
	if err != nil {
		return err
	}
	state.InputStream = input.StartStream(r)
	defer state.InputStream.Close()
	return run(state, w)
}

func run(state *State, w io.Writer) error {
	draw.HideCursor(w)
	defer draw.ShowCursor(w)
	draw.ClearScreen(w)

	// The canvas maps the whole world onto the terminal.
	world := state.Snapshot.World
	termWidth, termHeight, _ := state.termSizeFunc()
	canvas := draw.NewScaledCanvas(termWidth, termHeight, float64(world.X), float64(world.Y))
	cw := draw.NewChunkWriter(w, 0, 0)

	lastTime := time.Now()

	for state.Running {
		frameStart := time.Now()
		state.frame(frameStart.Sub(lastTime))
		lastTime = frameStart

		// ===== INPUT PHASE =====
		processInput(state)

		// ===== UPDATE PHASE =====
		updateScreen(state, canvas, cw)

		switch state.GameState {
		case GameStateStart:
			updateStartState(state)
		case GameStatePlaying:
			if err := updatePlayingState(state); err != nil {
				return err
			}
		}

		// ===== DRAW PHASE =====
		if err := drawFrame(state, cw, canvas); err != nil {
			return err
		}

		// ===== FRAME TIMING =====
		elapsed := time.Since(frameStart)
		if elapsed < config.ClientTargetFrameTime {
			time.Sleep(config.ClientTargetFrameTime - elapsed)
		}
	}

	draw.ClearScreen(w)
	return nil
}

// processInput reads and processes all pending input.
func processInput(state *State) {
	state.Input = input.ReadInput(state.InputStream)
	if state.Input.Quit {
		state.Running = false
	}
}

// updateScreen checks for terminal resize and updates canvas scaling.
func updateScreen(state *State, canvas *draw.Canvas, cw *draw.ChunkWriter) {
	termWidth, termHeight, err := state.termSizeFunc()
	if err != nil {
		return
	}
	if termWidth != canvas.TerminalWidth() || termHeight != canvas.TerminalHeight() {
		cw.WriteString("\033[H\033[2J")
	}
	canvas.Resize(termWidth, termHeight)
}

// updateStartState leaves the title screen on Space.
func updateStartState(state *State) {
	if state.Input.Restart {
		input.ResetKeyInput(state.InputStream)
		state.GameState = GameStatePlaying
	}
}

// updatePlayingState applies a restart request, then advances the swarm one
// tick with every player's held keys.
func updatePlayingState(state *State) error {
	if state.Input.Restart {
		if err := state.Sim.Restart(); err != nil {
			return fmt.Errorf("restart: %w", err)
		}
	}

	snap, err := state.Sim.Tick(state.Input.Controls)
	if err != nil {
		return fmt.Errorf("tick: %w", err)
	}
	state.Snapshot = snap
	return nil
}
