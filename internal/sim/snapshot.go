package sim

import (
	"slices"
	"time"

	"github.com/tomz197/swarm/internal/physics"
)

// ParticleState is the renderer's view of one particle.
type ParticleState struct {
	ID    int
	X, Y  float32
	Owner int
}

// Snapshot is the result of one tick, consumed by renderers.
type Snapshot struct {
	Tick      uint64
	Particles []ParticleState
	Cursors   []Cursor
	World     physics.Vec2  // World width and height
	Elapsed   time.Duration // Wall time spent computing this tick
	Stats     StepStats
}

// FrameSeconds returns the tick compute time in seconds, for on-screen diagnostics.
func (s Snapshot) FrameSeconds() float64 {
	return s.Elapsed.Seconds()
}

// Clone returns a snapshot that shares no memory with the simulation.
func (s Snapshot) Clone() Snapshot {
	s.Particles = slices.Clone(s.Particles)
	s.Cursors = slices.Clone(s.Cursors)
	return s
}
