package loop

import (
	"time"

	"github.com/tomz197/swarm/internal/draw"
	"github.com/tomz197/swarm/internal/input"
	"github.com/tomz197/swarm/internal/sim"
)

// GameState represents the current phase of the local loop.
type GameState int

const (
	GameStateStart   GameState = iota // Title screen
	GameStatePlaying                  // Swarm running
)

// State holds everything the local loop owns: the simulation, the last
// snapshot and the terminal session.
type State struct {
	Input         input.Input
	InputStream   *input.Stream
	GameState     GameState
	prevGameState GameState
	Running       bool
	Delta         time.Duration // Frame delta time
	fps           float64       // Smoothed frame rate
	Sim           *sim.Simulation
	Snapshot      sim.Snapshot // Latest tick, or the initial state before the first
	termSizeFunc  draw.TermSizeFunc
}

// NewState starts a simulation for cfg and returns the loop state around it.
func NewState(cfg sim.Config) (*State, error) {
	s := &State{
		GameState:     GameStateStart,
		prevGameState: -1,
		Running:       true,
		Sim:           sim.New(),
		termSizeFunc:  draw.DefaultTermSizeFunc,
	}
	if err := s.Sim.Start(cfg); err != nil {
		return nil, err
	}
	snap, err := s.Sim.Snapshot()
	if err != nil {
		return nil, err
	}
	s.Snapshot = snap
	return s, nil
}

// frame records the delta since the previous frame and updates the FPS estimate.
func (s *State) frame(delta time.Duration) {
	s.Delta = delta
	if dt := delta.Seconds(); dt > 0 {
		const smoothing = 0.1
		s.fps += (1/dt - s.fps) * smoothing
	}
}
