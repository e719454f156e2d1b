package spectate

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/swarm/internal/loop/server"
)

const (
	// DefaultInterval is the spectator frame period.
	DefaultInterval = 50 * time.Millisecond
	maxSpectators   = 256
)

// Source publishes snapshots. *server.Server satisfies it.
type Source interface {
	GetSnapshot() *server.Snapshot
}

// Hub tracks spectators and broadcasts the latest snapshot to all of them
// at a fixed interval. Only the Run goroutine touches the client set's
// send channels.
type Hub struct {
	source   Source
	logger   *log.Logger
	interval time.Duration

	mu         sync.RWMutex
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	last     *server.Snapshot // Last broadcast snapshot
	lastData []byte           // Its encoding, sent to new spectators on join
}

// NewHub creates a hub reading from source. A zero interval uses
// DefaultInterval and a nil logger the package default.
func NewHub(source Source, logger *log.Logger, interval time.Duration) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Hub{
		source:     source,
		logger:     logger,
		interval:   interval,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 16),
		unregister: make(chan *Client, 64),
		done:       make(chan struct{}),
	}
}

// Run processes joins and leaves and broadcasts frames until ctx is
// cancelled. On return every spectator connection is closed.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer func() {
		ticker.Stop()
		h.mu.Lock()
		for c := range h.clients {
			delete(h.clients, c)
			close(c.send)
		}
		h.mu.Unlock()
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
			if h.lastData != nil {
				c.trySend(h.lastData)
			}
			h.logger.Info("spectator joined", "addr", c.remoteAddr, "spectators", h.ClientCount())

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			h.logger.Info("spectator left", "addr", c.remoteAddr)

		case <-ticker.C:
			h.broadcast()
		}
	}
}

// broadcast encodes the latest snapshot once and queues it for every
// spectator. Unchanged snapshots are not resent.
func (h *Hub) broadcast() {
	snap := h.source.GetSnapshot()
	if snap == nil || snap == h.last {
		return
	}

	data, err := NewFrame(snap).Encode()
	if err != nil {
		h.logger.Error("encode frame", "tick", snap.Tick, "err", err)
		return
	}
	h.last, h.lastData = snap, data

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.trySend(data)
	}
}

// ClientCount returns the number of connected spectators.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// CanAccept reports whether another spectator may join.
func (h *Hub) CanAccept() bool {
	return h.ClientCount() < maxSpectators
}

// join hands a new client to the Run goroutine. It reports false once the
// hub has stopped.
func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// leave is join's counterpart, called by the read pump.
func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}
