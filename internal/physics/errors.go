package physics

import "errors"

var (
	// ErrOutOfBounds is returned when a position lies outside the world.
	ErrOutOfBounds = errors.New("position out of world bounds")

	// ErrInvariantViolation means the grid no longer matches particle positions.
	// It indicates a bug in relocation logic and is never expected at runtime.
	ErrInvariantViolation = errors.New("spatial index invariant violated")

	// ErrInvalidGrid is returned for non-positive or non-finite grid geometry.
	ErrInvalidGrid = errors.New("invalid grid geometry")
)
