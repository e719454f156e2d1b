package config

import (
	"errors"
	"testing"

	"github.com/tomz197/swarm/internal/sim"
)

func TestSimConfigDefaults(t *testing.T) {
	cfg, err := SimConfig()
	if err != nil {
		t.Fatalf("SimConfig: %v", err)
	}
	if cfg.WorldWidth != DefaultWorldWidth || cfg.WorldHeight != DefaultWorldHeight {
		t.Errorf("world = %vx%v", cfg.WorldWidth, cfg.WorldHeight)
	}
	if cfg.Players != sim.MaxPlayers {
		t.Errorf("Players = %d", cfg.Players)
	}
	if cfg.Layout == nil {
		t.Error("Layout not set")
	}
}

func TestSimConfigOverrides(t *testing.T) {
	t.Setenv("SWARM_PLAYERS", "3")
	t.Setenv("SWARM_PARTICLES", "50")
	t.Setenv("SWARM_ENEMY_EVASION", "0.5")
	t.Setenv("SWARM_WORKERS", "4")
	t.Setenv("SWARM_CHECK_INVARIANTS", "1")

	cfg, err := SimConfig()
	if err != nil {
		t.Fatalf("SimConfig: %v", err)
	}
	if cfg.Players != 3 || cfg.ParticlesPerPlayer != 50 || cfg.EnemyEvasion != 0.5 ||
		cfg.Workers != 4 || !cfg.CheckInvariants {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestSimConfigErrors(t *testing.T) {
	t.Run("unparsable", func(t *testing.T) {
		t.Setenv("SWARM_SLOWDOWN", "lots")
		if _, err := SimConfig(); err == nil {
			t.Error("expected parse error")
		}
	})
	t.Run("invalid", func(t *testing.T) {
		t.Setenv("SWARM_PLAYERS", "9")
		if _, err := SimConfig(); !errors.Is(err, sim.ErrConfiguration) {
			t.Errorf("err = %v, want ErrConfiguration", err)
		}
	})
}
