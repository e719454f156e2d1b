package sim

import (
	"errors"
	"math"
	"testing"
)

func TestValidate(t *testing.T) {
	nan := float32(math.NaN())

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"defaults", func(*Config) {}, ""},
		{"single player", func(c *Config) { c.Players = 1 }, ""},
		{"no players", func(c *Config) { c.Players = 0 }, "Players"},
		{"too many players", func(c *Config) { c.Players = MaxPlayers + 1 }, "Players"},
		{"no particles", func(c *Config) { c.ParticlesPerPlayer = 0 }, "ParticlesPerPlayer"},
		{"zero width", func(c *Config) { c.WorldWidth = 0 }, "WorldWidth"},
		{"nan height", func(c *Config) { c.WorldHeight = nan }, "WorldHeight"},
		{"negative diameter", func(c *Config) { c.BallDiameter = -1 }, "BallDiameter"},
		{"diameter larger than world", func(c *Config) { c.BallDiameter = 1000 }, "BallDiameter"},
		{"slowdown above one", func(c *Config) { c.SlowdownFactor = 1.1 }, "SlowdownFactor"},
		{"slowdown zero", func(c *Config) { c.SlowdownFactor = 0 }, ""},
		{"negative follow", func(c *Config) { c.CursorFollowSpeed = -0.1 }, "CursorFollowSpeed"},
		{"negative enemy evasion", func(c *Config) { c.EnemyEvasion = -1 }, "EnemyEvasion"},
		{"negative friendly evasion", func(c *Config) { c.FriendlyEvasion = -1 }, "FriendlyEvasion"},
		{"negative cursor speed", func(c *Config) { c.CursorSpeed = -5 }, "CursorSpeed"},
		{"zero spacing", func(c *Config) { c.Spacing = 0 }, "Spacing"},
		{"negative workers", func(c *Config) { c.Workers = -1 }, "Workers"},
		{"uneven cell", func(c *Config) { c.WorldWidth = 100; c.WorldHeight = 100 }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()

			if tt.field == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, ErrConfiguration) {
				t.Fatalf("Validate() = %v, want ErrConfiguration", err)
			}
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("Validate() = %T, want *ConfigError", err)
			}
			if ce.Field != tt.field {
				t.Errorf("Field = %q, want %q", ce.Field, tt.field)
			}
		})
	}
}

func TestTotalParticles(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.TotalParticles(); got != MaxPlayers*DefaultParticlesPerPlayer {
		t.Errorf("TotalParticles() = %d", got)
	}
}
