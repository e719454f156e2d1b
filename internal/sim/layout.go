package sim

import (
	"fmt"
	"math"

	"github.com/tomz197/swarm/internal/physics"
)

// Placement is the initial state produced by a Layout: one cursor and one
// block of particle positions per player, indexed by owner.
type Placement struct {
	Cursors   []physics.Vec2
	Particles [][]physics.Vec2
}

// Layout computes the starting placement for a configuration.
// It must be deterministic: equal configs yield equal placements.
type Layout func(cfg Config) (Placement, error)

// slotColumns is the number of player slots per row in GridLayout.
const slotColumns = 4

// GridLayout splits the world into slots (up to four per row) and arranges
// each player's particles as a near-square block centred in its slot. The
// cursor starts at the block centre.
func GridLayout(cfg Config) (Placement, error) {
	cols := min(cfg.Players, slotColumns)
	rows := (cfg.Players + slotColumns - 1) / slotColumns
	slotW := cfg.WorldWidth / float32(cols)
	slotH := cfg.WorldHeight / float32(rows)

	n := cfg.ParticlesPerPlayer
	blockCols := int(math.Ceil(math.Sqrt(float64(n))))
	blockRows := (n + blockCols - 1) / blockCols

	spacing := min(cfg.Spacing, slotW/float32(blockCols), slotH/float32(blockRows))
	if !(spacing > 0) {
		return Placement{}, &ConfigError{"ParticlesPerPlayer", fmt.Sprintf("%d particles do not fit a %vx%v slot", n, slotW, slotH)}
	}
	blockW := spacing * float32(blockCols)
	blockH := spacing * float32(blockRows)

	p := Placement{
		Cursors:   make([]physics.Vec2, cfg.Players),
		Particles: make([][]physics.Vec2, cfg.Players),
	}
	for player := range cfg.Players {
		originX := float32(player%slotColumns)*slotW + (slotW-blockW)/2
		originY := float32(player/slotColumns)*slotH + (slotH-blockH)/2

		positions := make([]physics.Vec2, n)
		for i := range n {
			positions[i] = physics.Vec2{
				X: originX + (float32(i%blockCols)+0.5)*spacing,
				Y: originY + (float32(i/blockCols)+0.5)*spacing,
			}
		}
		p.Particles[player] = positions
		p.Cursors[player] = physics.Vec2{X: originX + blockW/2, Y: originY + blockH/2}
	}
	return p, nil
}

// checkPlacement verifies a layout result against the configuration and grid.
func checkPlacement(cfg Config, p Placement, grid *physics.SpatialGrid) error {
	if len(p.Cursors) != cfg.Players || len(p.Particles) != cfg.Players {
		return &ConfigError{"Layout", fmt.Sprintf("placed %d cursors and %d blocks for %d players",
			len(p.Cursors), len(p.Particles), cfg.Players)}
	}
	for owner, block := range p.Particles {
		if len(block) != cfg.ParticlesPerPlayer {
			return &ConfigError{"Layout", fmt.Sprintf("player %d has %d particles, want %d",
				owner, len(block), cfg.ParticlesPerPlayer)}
		}
		for _, pos := range block {
			if !grid.Contains(pos) {
				return &ConfigError{"Layout", fmt.Sprintf("player %d particle at (%v, %v) is outside the world",
					owner, pos.X, pos.Y)}
			}
		}
	}
	for owner, c := range p.Cursors {
		if !c.IsFinite() {
			return &ConfigError{"Layout", fmt.Sprintf("player %d cursor is not finite", owner)}
		}
	}
	return nil
}
