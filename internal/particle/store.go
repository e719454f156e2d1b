// Package particle owns the per-particle state of the swarm.
//
// Particles are stored as parallel slices indexed by a dense, stable id
// (0..n-1). Ids are handed out in bulk when a simulation starts; particles are
// never created or destroyed individually, so an id stays valid for the whole
// lifetime of the Store.
package particle

import "github.com/tomz197/swarm/internal/physics"

// Store holds position, velocity and owner for every particle.
type Store struct {
	positions  []physics.Vec2
	velocities []physics.Vec2
	owners     []int
}

// NewStore creates an empty store with room for capacity particles.
func NewStore(capacity int) *Store {
	return &Store{
		positions:  make([]physics.Vec2, 0, capacity),
		velocities: make([]physics.Vec2, 0, capacity),
		owners:     make([]int, 0, capacity),
	}
}

// CreateBulk appends one particle per position, all owned by owner, with zero
// velocity. It returns the consecutive ids assigned.
func (s *Store) CreateBulk(positions []physics.Vec2, owner int) []int {
	first := len(s.positions)
	ids := make([]int, len(positions))
	for i, p := range positions {
		s.positions = append(s.positions, p)
		s.velocities = append(s.velocities, physics.Vec2{})
		s.owners = append(s.owners, owner)
		ids[i] = first + i
	}
	return ids
}

// Len returns the number of particles.
func (s *Store) Len() int {
	return len(s.positions)
}

// Position returns the position of particle id.
func (s *Store) Position(id int) physics.Vec2 {
	return s.positions[id]
}

// SetPosition overwrites the position of particle id.
// The caller is responsible for keeping any spatial index in sync.
func (s *Store) SetPosition(id int, p physics.Vec2) {
	s.positions[id] = p
}

// Velocity returns the velocity of particle id.
func (s *Store) Velocity(id int) physics.Vec2 {
	return s.velocities[id]
}

// SetVelocity overwrites the velocity of particle id.
func (s *Store) SetVelocity(id int, v physics.Vec2) {
	s.velocities[id] = v
}

// ApplyVelocityDelta adds dv to the velocity of particle id.
func (s *Store) ApplyVelocityDelta(id int, dv physics.Vec2) {
	s.velocities[id] = s.velocities[id].Add(dv)
}

// Owner returns the player index that owns particle id.
func (s *Store) Owner(id int) int {
	return s.owners[id]
}

// Positions returns the backing position slice, indexed by id.
// Hot loops use it to avoid per-element calls. Do not append to it.
func (s *Store) Positions() []physics.Vec2 {
	return s.positions
}

// Velocities returns the backing velocity slice, indexed by id.
func (s *Store) Velocities() []physics.Vec2 {
	return s.velocities
}

// Owners returns the backing owner slice, indexed by id.
func (s *Store) Owners() []int {
	return s.owners
}
