package loop

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/tomz197/swarm/internal/draw"
	"github.com/tomz197/swarm/internal/input"
	"github.com/tomz197/swarm/internal/sim"
)

func testConfig() sim.Config {
	cfg := sim.DefaultConfig()
	cfg.WorldWidth = 120
	cfg.WorldHeight = 60
	cfg.Players = 2
	cfg.ParticlesPerPlayer = 8
	return cfg
}

func newTestState(t *testing.T, r io.Reader) *State {
	t.Helper()
	state, err := NewState(testConfig())
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	state.InputStream = input.StartStream(bufio.NewReader(r))
	state.termSizeFunc = func() (int, int, error) { return 60, 30, nil }
	return state
}

func TestNewStateRejectsBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.BallDiameter = 0
	if _, err := NewState(cfg); !errors.Is(err, sim.ErrConfiguration) {
		t.Fatalf("NewState = %v, want ErrConfiguration", err)
	}
}

func TestRunQuits(t *testing.T) {
	state := newTestState(t, strings.NewReader("q"))

	done := make(chan error, 1)
	go func() { done <- run(state, io.Discard) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return after q")
	}
}

func TestPlayingTicksAndRestarts(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	state := newTestState(t, pr)
	state.GameState = GameStatePlaying

	for range 3 {
		if err := updatePlayingState(state); err != nil {
			t.Fatalf("updatePlayingState: %v", err)
		}
	}
	if state.Snapshot.Tick != 3 {
		t.Fatalf("tick = %d, want 3", state.Snapshot.Tick)
	}

	state.Input.Restart = true
	if err := updatePlayingState(state); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if state.Snapshot.Tick != 1 {
		t.Errorf("tick after restart = %d, want 1", state.Snapshot.Tick)
	}
}

func TestPlayersSteerIndependently(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	state := newTestState(t, pr)
	state.GameState = GameStatePlaying

	before := state.Sim.Cursors()
	state.Input.Controls[1] = sim.Directions{Down: true}
	if err := updatePlayingState(state); err != nil {
		t.Fatalf("updatePlayingState: %v", err)
	}
	after := state.Snapshot.Cursors

	if after[0].Position != before[0].Position {
		t.Error("player 1 cursor moved without input")
	}
	if after[1].Position.Y <= before[1].Position.Y {
		t.Error("player 2 cursor did not move down")
	}
}

func TestStartScreenListsPlayers(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	state := newTestState(t, pr)

	var out bytes.Buffer
	canvas := draw.NewScaledCanvas(60, 30, 120, 60)
	if err := drawFrame(state, draw.NewChunkWriter(&out, 0, 0), canvas); err != nil {
		t.Fatalf("drawFrame: %v", err)
	}
	frame := out.String()
	for _, want := range []string{"player 1 (red)", "w a s d", "player 2 (green)", "t f g h"} {
		if !strings.Contains(frame, want) {
			t.Errorf("title screen missing %q", want)
		}
	}

	state.Input.Restart = true
	updateStartState(state)
	if state.GameState != GameStatePlaying {
		t.Error("space did not start the swarm")
	}
}

func TestKeyNames(t *testing.T) {
	if got := keyNames(input.PlayerKeySet(4)); got != "arrows" {
		t.Errorf("keyNames(arrows) = %q", got)
	}
	if got := keyNames(input.PlayerKeySet(0)); got != "w a s d" {
		t.Errorf("keyNames(wasd) = %q", got)
	}
}
