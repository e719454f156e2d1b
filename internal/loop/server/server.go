// Package server runs one shared swarm simulation for many terminal sessions.
package server

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/swarm/internal/loop/config"
	"github.com/tomz197/swarm/internal/sim"
)

// GameServer is the interface clients use to communicate with the game server.
// Decouples the Client from the concrete Server implementation, enabling
// testing and potential network-based server implementations.
type GameServer interface {
	RegisterClient(username string) *ClientHandle
	UnregisterClient(clientID int)
	SendInput(clientID int, input sim.Directions)
	RequestRestart(clientID int)
	GetSnapshot() *Snapshot
}

// Server owns the simulation and processes inputs from all clients.
// Only the Run goroutine touches the simulation.
type Server struct {
	sim          *sim.Simulation
	cfg          sim.Config
	logger       *log.Logger
	snapshot     atomic.Pointer[Snapshot]
	clients      map[int]*ClientHandle
	slots        [sim.MaxPlayers]int // Client ID per slot, 0 when free
	nextClientID int
	inputChan    chan ClientInput
	registerCh   chan *ClientHandle
	unregisterCh chan int
	restartCh    chan int
	done         chan struct{} // Closed when Run returns
	mu           sync.RWMutex
}

// Compile-time check that Server implements GameServer.
var _ GameServer = (*Server)(nil)

// NewServer validates cfg and starts the simulation. A nil logger uses the
// package default.
func NewServer(cfg sim.Config, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		sim:          sim.New(),
		cfg:          cfg,
		logger:       logger,
		clients:      make(map[int]*ClientHandle),
		nextClientID: 1,
		inputChan:    make(chan ClientInput, 256),
		registerCh:   make(chan *ClientHandle, 16),
		unregisterCh: make(chan int, 16),
		restartCh:    make(chan int, 16),
		done:         make(chan struct{}),
	}
	if err := s.sim.Start(cfg); err != nil {
		return nil, fmt.Errorf("start simulation: %w", err)
	}

	snap, err := s.sim.Snapshot()
	if err != nil {
		return nil, err
	}
	s.publish(snap)
	return s, nil
}

// Run starts the server loop. Blocks until the context is cancelled, or
// returns an error if the simulation cannot be restarted after a failed tick.
// Sessions that register after Run returns get a closed event channel.
func (s *Server) Run(ctx context.Context) error {
	defer close(s.done)

	s.logger.Info("simulation started",
		"players", s.cfg.Players,
		"particles", s.cfg.TotalParticles(),
		"world", fmt.Sprintf("%vx%v", s.cfg.WorldWidth, s.cfg.WorldHeight),
		"workers", s.cfg.Workers)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		frameStart := time.Now()

		if err := s.step(); err != nil {
			return err
		}

		// Frame timing
		elapsed := time.Since(frameStart)
		if elapsed < config.ServerTickTime {
			time.Sleep(config.ServerTickTime - elapsed)
		}
	}
}

// step runs one server frame: bookkeeping, restart requests, one tick, publish.
func (s *Server) step() error {
	s.processRegistrations()
	s.collectInputs()

	if by, ok := s.pendingRestart(); ok {
		if err := s.restart(by); err != nil {
			return err
		}
	}

	snap, err := s.sim.Tick(s.controls())
	if err != nil {
		// The run is gone; start a fresh one rather than dropping every session.
		s.logger.Error("tick failed, restarting simulation", "err", err)
		if err := s.restart(""); err != nil {
			return err
		}
		return nil
	}
	s.publish(snap)
	return nil
}

// Shutdown gracefully shuts down the server by notifying all connected clients
// and waiting for them to disconnect (up to the given timeout).
// The caller should cancel the server context after Shutdown returns.
func (s *Server) Shutdown(timeout time.Duration) {
	s.mu.RLock()
	for _, handle := range s.clients {
		select {
		case handle.EventsCh <- ClientEvent{Type: EventServerShutdown}:
		default:
		}
	}
	s.mu.RUnlock()

	deadline := time.After(timeout)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			return
		case <-ticker.C:
			s.mu.RLock()
			remaining := len(s.clients)
			s.mu.RUnlock()
			if remaining == 0 {
				return
			}
		}
	}
}

// RegisterClient registers a new client and assigns it the first free player
// slot, or makes it a spectator when all slots are taken.
func (s *Server) RegisterClient(username string) *ClientHandle {
	s.mu.Lock()
	id := s.nextClientID
	s.nextClientID++
	slot := Spectator
	for i := range s.cfg.Players {
		if s.slots[i] == 0 {
			s.slots[i] = id
			slot = i
			break
		}
	}
	s.mu.Unlock()

	handle := &ClientHandle{
		ID:       id,
		Username: username,
		Slot:     slot,
		EventsCh: make(chan ClientEvent, 16),
	}

	select {
	case <-s.done:
		s.turnAway(handle)
		return handle
	default:
	}

	select {
	case s.registerCh <- handle:
		s.logger.Info("client registered", "id", id, "user", username, "slot", slot)
	case <-s.done:
		s.turnAway(handle)
	}
	return handle
}

// turnAway releases the slot of a session that arrived after Run stopped.
func (s *Server) turnAway(handle *ClientHandle) {
	s.mu.Lock()
	if handle.IsPlayer() && s.slots[handle.Slot] == handle.ID {
		s.slots[handle.Slot] = 0
	}
	s.mu.Unlock()
	close(handle.EventsCh)
	s.logger.Debug("client turned away, server stopped", "id", handle.ID, "user", handle.Username)
}

// UnregisterClient removes a client from the server and frees its slot.
func (s *Server) UnregisterClient(clientID int) {
	select {
	case s.unregisterCh <- clientID:
	case <-s.done:
	}
}

// SendInput sends a client's held directions to the server.
func (s *Server) SendInput(clientID int, input sim.Directions) {
	select {
	case s.inputChan <- ClientInput{ClientID: clientID, Input: input}:
	default:
		// Input channel full, drop input
	}
}

// RequestRestart asks the server to restart the simulation before the next tick.
func (s *Server) RequestRestart(clientID int) {
	select {
	case s.restartCh <- clientID:
	default:
	}
}

// GetSnapshot returns the latest published snapshot.
func (s *Server) GetSnapshot() *Snapshot {
	return s.snapshot.Load()
}

// processRegistrations handles pending client registrations, then
// unregistrations, so a session that leaves right after joining is removed.
func (s *Server) processRegistrations() {
	for done := false; !done; {
		select {
		case handle := <-s.registerCh:
			s.mu.Lock()
			s.clients[handle.ID] = handle
			s.mu.Unlock()
		default:
			done = true
		}
	}

	for {
		select {
		case clientID := <-s.unregisterCh:
			s.mu.Lock()
			if handle, ok := s.clients[clientID]; ok {
				if handle.IsPlayer() && s.slots[handle.Slot] == clientID {
					s.slots[handle.Slot] = 0
				}
				close(handle.EventsCh)
				delete(s.clients, clientID)
				s.logger.Info("client unregistered", "id", clientID, "user", handle.Username)
			}
			s.mu.Unlock()
		default:
			return
		}
	}
}

// collectInputs gathers all pending inputs from clients.
func (s *Server) collectInputs() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		select {
		case ci := <-s.inputChan:
			if handle, ok := s.clients[ci.ClientID]; ok {
				handle.Input = ci.Input
			}
		default:
			return
		}
	}
}

// pendingRestart drains restart requests and reports who asked first.
func (s *Server) pendingRestart() (by string, ok bool) {
	for {
		select {
		case id := <-s.restartCh:
			if !ok {
				s.mu.RLock()
				if handle, found := s.clients[id]; found {
					by = handle.Username
				}
				s.mu.RUnlock()
				ok = true
			}
		default:
			return by, ok
		}
	}
}

// restart starts a fresh run and tells every client.
func (s *Server) restart(by string) error {
	if err := s.sim.Restart(); err != nil {
		return fmt.Errorf("restart simulation: %w", err)
	}
	s.logger.Info("simulation restarted", "by", by)

	s.mu.RLock()
	for _, handle := range s.clients {
		select {
		case handle.EventsCh <- ClientEvent{Type: EventRestarted, RequestBy: by}:
		default:
		}
	}
	s.mu.RUnlock()
	return nil
}

// controls builds the per-player input bundle from the slot owners.
func (s *Server) controls() sim.Controls {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var controls sim.Controls
	for _, handle := range s.clients {
		if handle.IsPlayer() {
			controls[handle.Slot] = handle.Input
		}
	}
	return controls
}

// publish stores an immutable copy of snap for clients. The simulation
// reuses its snapshot buffers, so the particles are cloned.
func (s *Server) publish(snap sim.Snapshot) {
	out := &Snapshot{Snapshot: snap.Clone()}

	s.mu.RLock()
	out.Players = len(s.clients)
	for slot, id := range s.slots {
		if h, ok := s.clients[id]; ok && id != 0 {
			out.SlotNames[slot] = h.Username
		}
	}
	s.mu.RUnlock()

	s.snapshot.Store(out)
}
