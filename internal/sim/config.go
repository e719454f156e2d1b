package sim

import (
	"errors"
	"fmt"
	"math"
)

// MaxPlayers is the number of cursor slots a simulation supports.
const MaxPlayers = 8

// Defaults for the tunable parameters. The force constants match the feel of
// the swarm at roughly 60-120 ticks per second.
const (
	DefaultWorldWidth         = 1600
	DefaultWorldHeight        = 900
	DefaultBallDiameter       = 8
	DefaultPlayers            = MaxPlayers
	DefaultParticlesPerPlayer = 960
	DefaultCursorFollowSpeed  = 0.001
	DefaultSlowdownFactor     = 0.9
	DefaultEnemyEvasion       = 0.1
	DefaultFriendlyEvasion    = 0.01
	DefaultCursorSpeed        = 5
	DefaultSpacing            = 10
)

// Config holds every parameter of a simulation run. It is fixed at Start.
type Config struct {
	WorldWidth  float32
	WorldHeight float32

	// BallDiameter is the interaction radius and the grid cell size.
	BallDiameter float32

	Players            int
	ParticlesPerPlayer int

	CursorFollowSpeed float32 // Attraction gain toward the owner's cursor
	SlowdownFactor    float32 // Velocity multiplier applied every tick (linear drag)
	EnemyEvasion      float32 // Repulsion gain between different owners
	FriendlyEvasion   float32 // Repulsion gain between same-owner particles
	CursorSpeed       float32 // Cursor step per held direction per tick

	// Spacing is the preferred distance between particles in the start layout.
	Spacing float32

	// Workers > 1 runs the evasion pass on that many goroutines.
	Workers int

	// CheckInvariants audits the spatial index after every tick.
	CheckInvariants bool

	// Layout places particles and cursors at Start. Nil means GridLayout.
	Layout Layout
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		WorldWidth:         DefaultWorldWidth,
		WorldHeight:        DefaultWorldHeight,
		BallDiameter:       DefaultBallDiameter,
		Players:            DefaultPlayers,
		ParticlesPerPlayer: DefaultParticlesPerPlayer,
		CursorFollowSpeed:  DefaultCursorFollowSpeed,
		SlowdownFactor:     DefaultSlowdownFactor,
		EnemyEvasion:       DefaultEnemyEvasion,
		FriendlyEvasion:    DefaultFriendlyEvasion,
		CursorSpeed:        DefaultCursorSpeed,
		Spacing:            DefaultSpacing,
		Workers:            1,
		Layout:             GridLayout,
	}
}

// ErrConfiguration is matched by every ConfigError.
var ErrConfiguration = errors.New("invalid configuration")

// ConfigError reports a rejected configuration field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrConfiguration) true for any ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfiguration
}

// Validate checks the configuration and returns the first problem found.
func (c Config) Validate() error {
	switch {
	case c.Players < 1 || c.Players > MaxPlayers:
		return &ConfigError{"Players", fmt.Sprintf("must be in 1..%d, got %d", MaxPlayers, c.Players)}
	case c.ParticlesPerPlayer < 1:
		return &ConfigError{"ParticlesPerPlayer", fmt.Sprintf("must be positive, got %d", c.ParticlesPerPlayer)}
	case !positive(c.WorldWidth):
		return &ConfigError{"WorldWidth", fmt.Sprintf("must be positive, got %v", c.WorldWidth)}
	case !positive(c.WorldHeight):
		return &ConfigError{"WorldHeight", fmt.Sprintf("must be positive, got %v", c.WorldHeight)}
	case !positive(c.BallDiameter):
		return &ConfigError{"BallDiameter", fmt.Sprintf("must be positive, got %v", c.BallDiameter)}
	case c.BallDiameter > c.WorldWidth || c.BallDiameter > c.WorldHeight:
		return &ConfigError{"BallDiameter", fmt.Sprintf("%v exceeds world %vx%v", c.BallDiameter, c.WorldWidth, c.WorldHeight)}
	case !inRange(c.SlowdownFactor, 0, 1):
		return &ConfigError{"SlowdownFactor", fmt.Sprintf("must be in [0,1], got %v", c.SlowdownFactor)}
	case !nonNegative(c.CursorFollowSpeed):
		return &ConfigError{"CursorFollowSpeed", fmt.Sprintf("must not be negative, got %v", c.CursorFollowSpeed)}
	case !nonNegative(c.EnemyEvasion):
		return &ConfigError{"EnemyEvasion", fmt.Sprintf("must not be negative, got %v", c.EnemyEvasion)}
	case !nonNegative(c.FriendlyEvasion):
		return &ConfigError{"FriendlyEvasion", fmt.Sprintf("must not be negative, got %v", c.FriendlyEvasion)}
	case !nonNegative(c.CursorSpeed):
		return &ConfigError{"CursorSpeed", fmt.Sprintf("must not be negative, got %v", c.CursorSpeed)}
	case !positive(c.Spacing):
		return &ConfigError{"Spacing", fmt.Sprintf("must be positive, got %v", c.Spacing)}
	case c.Workers < 0:
		return &ConfigError{"Workers", fmt.Sprintf("must not be negative, got %d", c.Workers)}
	}
	return nil
}

// TotalParticles returns Players * ParticlesPerPlayer.
func (c Config) TotalParticles() int {
	return c.Players * c.ParticlesPerPlayer
}

func finite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}

func positive(f float32) bool {
	return finite(f) && f > 0
}

func nonNegative(f float32) bool {
	return finite(f) && f >= 0
}

func inRange(f, lo, hi float32) bool {
	return finite(f) && f >= lo && f <= hi
}
