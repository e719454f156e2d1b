package sim

import "github.com/tomz197/swarm/internal/physics"

// Directions is one player's held direction keys for a tick.
type Directions struct {
	Left, Right, Up, Down bool
}

// Any reports whether any direction is held.
func (d Directions) Any() bool {
	return d.Left || d.Right || d.Up || d.Down
}

// Or combines two direction sets.
func (d Directions) Or(o Directions) Directions {
	return Directions{
		Left:  d.Left || o.Left,
		Right: d.Right || o.Right,
		Up:    d.Up || o.Up,
		Down:  d.Down || o.Down,
	}
}

// step returns the cursor displacement for the held directions.
// Opposite directions cancel. Screen coordinates: up is -Y.
func (d Directions) step(speed float32) physics.Vec2 {
	var v physics.Vec2
	if d.Left {
		v.X -= speed
	}
	if d.Right {
		v.X += speed
	}
	if d.Up {
		v.Y -= speed
	}
	if d.Down {
		v.Y += speed
	}
	return v
}

// Controls is the per-tick input bundle, indexed by player.
type Controls [MaxPlayers]Directions

// Cursor is a player's steering target.
type Cursor struct {
	Owner    int
	Position physics.Vec2
}
