// Package sim implements the swarm simulation: every player's cursor attracts
// its own particles, and particles closer than one ball diameter push each
// other apart, harder when they belong to different players.
//
// A Simulation is single-threaded and synchronous. The host loop owns it,
// feeds it Controls once per tick and renders the returned Snapshot before the
// next tick starts.
package sim

import (
	"errors"
	"fmt"
	"time"

	"github.com/tomz197/swarm/internal/particle"
	"github.com/tomz197/swarm/internal/physics"
)

// State is the lifecycle phase of a Simulation.
type State int

const (
	StateUninitialized State = iota // No particles; Start or Restart required
	StateRunning                    // Ticks may be run
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRunning:
		return "running"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var (
	// ErrNotRunning is returned by Tick outside the running state.
	ErrNotRunning = errors.New("simulation is not running")

	// ErrNotStarted is returned by Restart before any successful Start.
	ErrNotStarted = errors.New("simulation was never started")
)

// Simulation owns one run of the swarm: its particles, grid and cursors.
type Simulation struct {
	state   State
	cfg     Config
	started bool
	engine  *engine
	tick    uint64

	// Double-buffered snapshot particle slices to avoid per-tick allocation.
	snapshotBufs [2][]ParticleState
	snapshotIdx  int
}

// New returns an uninitialized simulation.
func New() *Simulation {
	return &Simulation{}
}

// Start validates cfg, lays out particles and cursors and enters the running
// state. Any previous run is discarded. On error the simulation is left
// uninitialized.
func (s *Simulation) Start(cfg Config) error {
	s.discard()

	if cfg.Layout == nil {
		cfg.Layout = GridLayout
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	grid, err := physics.NewSpatialGrid(cfg.WorldWidth, cfg.WorldHeight, cfg.BallDiameter)
	if err != nil {
		return &ConfigError{"World", err.Error()}
	}

	placement, err := cfg.Layout(cfg)
	if err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	if err := checkPlacement(cfg, placement, grid); err != nil {
		return err
	}

	store := particle.NewStore(cfg.TotalParticles())
	cursors := make([]Cursor, cfg.Players)
	for owner := range cfg.Players {
		ids := store.CreateBulk(placement.Particles[owner], owner)
		for _, id := range ids {
			if err := grid.Insert(id, store.Position(id)); err != nil {
				return fmt.Errorf("index particle %d: %w", id, err)
			}
		}
		cursors[owner] = Cursor{Owner: owner, Position: placement.Cursors[owner]}
	}

	s.cfg = cfg
	s.engine = &engine{
		cfg:     cfg,
		store:   store,
		grid:    grid,
		cursors: cursors,
	}
	s.started = true
	s.state = StateRunning
	return nil
}

// Restart discards all state and starts again with the last configuration.
func (s *Simulation) Restart() error {
	if !s.started {
		return ErrNotStarted
	}
	return s.Start(s.cfg)
}

// Tick advances cursors by controls and runs one attraction, integration and
// evasion step. An error ends the run: the simulation becomes uninitialized
// and must be restarted.
func (s *Simulation) Tick(controls Controls) (Snapshot, error) {
	if s.state != StateRunning {
		return Snapshot{}, ErrNotRunning
	}
	start := time.Now()

	s.engine.steer(controls)

	stats, err := s.engine.step()
	if err == nil && s.cfg.CheckInvariants {
		err = s.Verify()
	}
	if err != nil {
		s.discard()
		return Snapshot{}, fmt.Errorf("tick %d: %w", s.tick+1, err)
	}

	s.tick++
	snap := s.snapshot()
	snap.Stats = stats
	snap.Elapsed = time.Since(start)
	return snap, nil
}

// Snapshot returns the current state without advancing the simulation.
func (s *Simulation) Snapshot() (Snapshot, error) {
	if s.state != StateRunning {
		return Snapshot{}, ErrNotRunning
	}
	return s.snapshot(), nil
}

// SetCursor places a player's cursor. Positions outside the world are allowed.
func (s *Simulation) SetCursor(owner int, pos physics.Vec2) error {
	if s.state != StateRunning {
		return ErrNotRunning
	}
	if owner < 0 || owner >= len(s.engine.cursors) {
		return fmt.Errorf("cursor owner %d out of range [0,%d)", owner, len(s.engine.cursors))
	}
	s.engine.cursors[owner].Position = pos
	return nil
}

// Cursors returns a copy of the cursor list.
func (s *Simulation) Cursors() []Cursor {
	if s.engine == nil {
		return nil
	}
	out := make([]Cursor, len(s.engine.cursors))
	copy(out, s.engine.cursors)
	return out
}

// Verify audits the spatial index against particle positions.
func (s *Simulation) Verify() error {
	if s.engine == nil {
		return ErrNotRunning
	}
	store := s.engine.store
	return s.engine.grid.Verify(store.Len(), store.Position)
}

// State returns the lifecycle state.
func (s *Simulation) State() State { return s.state }

// Config returns the configuration of the current or last run.
func (s *Simulation) Config() Config { return s.cfg }

// TickCount returns the number of ticks completed in the current run.
func (s *Simulation) TickCount() uint64 { return s.tick }

// Len returns the number of particles in the current run.
func (s *Simulation) Len() int {
	if s.engine == nil {
		return 0
	}
	return s.engine.store.Len()
}

// snapshot fills the next snapshot buffer from the store.
func (s *Simulation) snapshot() Snapshot {
	store := s.engine.store
	n := store.Len()

	idx := s.snapshotIdx
	s.snapshotIdx = 1 - s.snapshotIdx

	buf := s.snapshotBufs[idx]
	if cap(buf) < n {
		buf = make([]ParticleState, n)
	}
	buf = buf[:n]
	s.snapshotBufs[idx] = buf

	pos := store.Positions()
	owners := store.Owners()
	for i := range buf {
		buf[i] = ParticleState{ID: i, X: pos[i].X, Y: pos[i].Y, Owner: owners[i]}
	}

	return Snapshot{
		Tick:      s.tick,
		Particles: buf,
		Cursors:   s.Cursors(),
		World:     physics.Vec2{X: s.cfg.WorldWidth, Y: s.cfg.WorldHeight},
	}
}

// discard drops the current run. The last config is kept for Restart.
func (s *Simulation) discard() {
	s.engine = nil
	s.tick = 0
	s.state = StateUninitialized
}
