// Package config centralizes all tunable host parameters.
package config

import (
	"errors"
	"time"

	envconfig "github.com/tomz197/swarm/internal/config"
	"github.com/tomz197/swarm/internal/sim"
)

// Terminal limits. Larger terminals are clamped to keep frames small over SSH.
const (
	MaxTermWidth  = 240
	MaxTermHeight = 80
)

// Player
const (
	MaxUsernameLength = 16 // Maximum display length for player usernames
)

// Shutdown
const (
	ShutdownDisplaySeconds = 10.0 // Seconds to show shutdown message before auto-disconnect
)

// Inactivity
const (
	InactivityWarnUser       = 90  // Seconds
	InactivityDisconnectUser = 120 // Seconds
)

// Client rendering
const (
	ClientTargetFPS       = 60
	ClientTargetFrameTime = time.Second / ClientTargetFPS
)

// Server tick rate
const (
	ServerTickRate = 60
	ServerTickTime = time.Second / ServerTickRate
)

// Terminal-sized default world. The full 1600x900 world is too dense to read
// on a text canvas, so hosts start with a smaller one unless overridden.
const (
	DefaultWorldWidth         = 480
	DefaultWorldHeight        = 270
	DefaultParticlesPerPlayer = 120
	DefaultSpacing            = 6
)

// SimConfig builds the simulation configuration from SWARM_* environment
// variables on top of the host defaults.
func SimConfig() (sim.Config, error) {
	cfg := sim.DefaultConfig()
	cfg.WorldWidth = DefaultWorldWidth
	cfg.WorldHeight = DefaultWorldHeight
	cfg.ParticlesPerPlayer = DefaultParticlesPerPlayer
	cfg.Spacing = DefaultSpacing

	var errs []error
	float := func(key string, dst *float32) {
		v, err := envconfig.GetEnvFloat(key, *dst)
		errs = append(errs, err)
		*dst = v
	}
	integer := func(key string, dst *int) {
		v, err := envconfig.GetEnvInt(key, *dst)
		errs = append(errs, err)
		*dst = v
	}

	float("SWARM_WORLD_WIDTH", &cfg.WorldWidth)
	float("SWARM_WORLD_HEIGHT", &cfg.WorldHeight)
	float("SWARM_BALL_DIAMETER", &cfg.BallDiameter)
	integer("SWARM_PLAYERS", &cfg.Players)
	integer("SWARM_PARTICLES", &cfg.ParticlesPerPlayer)
	float("SWARM_FOLLOW_SPEED", &cfg.CursorFollowSpeed)
	float("SWARM_SLOWDOWN", &cfg.SlowdownFactor)
	float("SWARM_ENEMY_EVASION", &cfg.EnemyEvasion)
	float("SWARM_FRIENDLY_EVASION", &cfg.FriendlyEvasion)
	float("SWARM_CURSOR_SPEED", &cfg.CursorSpeed)
	float("SWARM_SPACING", &cfg.Spacing)
	integer("SWARM_WORKERS", &cfg.Workers)

	check, err := envconfig.GetEnvBool("SWARM_CHECK_INVARIANTS", cfg.CheckInvariants)
	errs = append(errs, err)
	cfg.CheckInvariants = check

	if err := errors.Join(errs...); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}
