package particle

import (
	"slices"
	"testing"

	"github.com/tomz197/swarm/internal/physics"
)

func TestCreateBulkAssignsConsecutiveIDs(t *testing.T) {
	s := NewStore(8)

	first := s.CreateBulk([]physics.Vec2{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}}, 0)
	second := s.CreateBulk([]physics.Vec2{{X: 4, Y: 4}, {X: 5, Y: 5}}, 1)

	if !slices.Equal(first, []int{0, 1, 2}) {
		t.Errorf("first ids = %v, want [0 1 2]", first)
	}
	if !slices.Equal(second, []int{3, 4}) {
		t.Errorf("second ids = %v, want [3 4]", second)
	}
	if s.Len() != 5 {
		t.Errorf("Len = %d, want 5", s.Len())
	}
	if s.Owner(2) != 0 || s.Owner(3) != 1 {
		t.Errorf("owners = %v, want block 0 then block 1", s.Owners())
	}
	if s.Position(4) != (physics.Vec2{X: 5, Y: 5}) {
		t.Errorf("Position(4) = %v", s.Position(4))
	}
	if s.Velocity(4) != (physics.Vec2{}) {
		t.Errorf("new particle has velocity %v", s.Velocity(4))
	}
}

func TestCreateBulkEmpty(t *testing.T) {
	s := NewStore(0)
	if ids := s.CreateBulk(nil, 0); len(ids) != 0 {
		t.Errorf("ids = %v, want none", ids)
	}
}

func TestVelocityAccessors(t *testing.T) {
	s := NewStore(1)
	s.CreateBulk([]physics.Vec2{{X: 0, Y: 0}}, 0)

	s.SetVelocity(0, physics.Vec2{X: 1, Y: 2})
	s.ApplyVelocityDelta(0, physics.Vec2{X: 0.5, Y: -1})
	if got := s.Velocity(0); got != (physics.Vec2{X: 1.5, Y: 1}) {
		t.Errorf("Velocity = %v, want {1.5 1}", got)
	}

	s.SetPosition(0, physics.Vec2{X: 7, Y: 8})
	if got := s.Positions()[0]; got != (physics.Vec2{X: 7, Y: 8}) {
		t.Errorf("Positions()[0] = %v, want {7 8}", got)
	}

	// Dense views alias the store.
	s.Velocities()[0] = physics.Vec2{}
	if got := s.Velocity(0); got != (physics.Vec2{}) {
		t.Errorf("Velocity after view write = %v", got)
	}
}
