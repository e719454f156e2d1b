package server

import (
	"github.com/tomz197/swarm/internal/sim"
)

// Spectator is the slot value for a session that does not control a cursor.
const Spectator = -1

// ClientHandle represents a client's connection to the server.
type ClientHandle struct {
	ID       int
	Username string // Display name for this client
	Slot     int    // Player index this session steers, or Spectator
	EventsCh chan ClientEvent
	Input    sim.Directions // Latest directions, owned by the server goroutine
}

// IsPlayer reports whether the session controls a cursor.
func (h *ClientHandle) IsPlayer() bool {
	return h.Slot != Spectator
}

// ClientInput represents input from a specific client.
type ClientInput struct {
	ClientID int
	Input    sim.Directions
}

// ClientEvent represents an event sent from server to client.
type ClientEvent struct {
	Type      ClientEventType
	RequestBy string // Who asked for a restart
}

// ClientEventType identifies the type of client event.
type ClientEventType int

const (
	EventRestarted ClientEventType = iota
	EventServerShutdown
)

// Snapshot is what clients render: the simulation state of one tick plus
// session bookkeeping. Snapshots are immutable once published.
type Snapshot struct {
	sim.Snapshot
	Players   int                    // Connected sessions, spectators included
	SlotNames [sim.MaxPlayers]string // Username controlling each slot, "" if free
}
