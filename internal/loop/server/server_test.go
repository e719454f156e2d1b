package server

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/swarm/internal/sim"
)

func testConfig() sim.Config {
	cfg := sim.DefaultConfig()
	cfg.WorldWidth = 100
	cfg.WorldHeight = 100
	cfg.Players = 2
	cfg.ParticlesPerPlayer = 10
	return cfg
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer(testConfig(), log.New(io.Discard))
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}

func mustStep(t *testing.T, s *Server) *Snapshot {
	t.Helper()
	if err := s.step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	return s.GetSnapshot()
}

func TestNewServerRejectsBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Players = 0
	_, err := NewServer(cfg, log.New(io.Discard))
	if !errors.Is(err, sim.ErrConfiguration) {
		t.Fatalf("NewServer = %v, want ErrConfiguration", err)
	}
}

func TestInitialSnapshot(t *testing.T) {
	s := newTestServer(t)
	snap := s.GetSnapshot()
	if snap == nil {
		t.Fatal("no snapshot published before the first tick")
	}
	if len(snap.Particles) != 20 || snap.Tick != 0 {
		t.Errorf("initial snapshot: %d particles at tick %d", len(snap.Particles), snap.Tick)
	}
}

func TestSlotAssignment(t *testing.T) {
	s := newTestServer(t)

	a := s.RegisterClient("alice")
	b := s.RegisterClient("bob")
	c := s.RegisterClient("carol")

	if a.Slot != 0 || b.Slot != 1 {
		t.Errorf("slots = %d, %d; want 0, 1", a.Slot, b.Slot)
	}
	if c.IsPlayer() {
		t.Errorf("third client got slot %d with two players configured", c.Slot)
	}

	snap := mustStep(t, s)
	if snap.Players != 3 {
		t.Errorf("Players = %d, want 3", snap.Players)
	}
	if snap.SlotNames[0] != "alice" || snap.SlotNames[1] != "bob" || snap.SlotNames[2] != "" {
		t.Errorf("SlotNames = %q", snap.SlotNames)
	}

	s.UnregisterClient(a.ID)
	snap = mustStep(t, s)
	if snap.SlotNames[0] != "" || snap.Players != 2 {
		t.Errorf("after leave: SlotNames %q, Players %d", snap.SlotNames, snap.Players)
	}
	if _, ok := <-a.EventsCh; ok {
		t.Error("events channel not closed on unregister")
	}

	d := s.RegisterClient("dave")
	if d.Slot != 0 {
		t.Errorf("freed slot not reused: got %d", d.Slot)
	}
}

func TestLeaveRightAfterJoin(t *testing.T) {
	s := newTestServer(t)
	a := s.RegisterClient("alice")
	s.UnregisterClient(a.ID)

	snap := mustStep(t, s)
	if snap.Players != 0 || snap.SlotNames[0] != "" {
		t.Errorf("ghost session left behind: %+v", snap.SlotNames)
	}
	if b := s.RegisterClient("bob"); b.Slot != 0 {
		t.Errorf("slot not freed: bob got %d", b.Slot)
	}
}

func TestInputMovesOwnCursor(t *testing.T) {
	s := newTestServer(t)
	s.RegisterClient("alice")
	b := s.RegisterClient("bob")

	before := mustStep(t, s).Cursors
	s.SendInput(b.ID, sim.Directions{Right: true})
	after := mustStep(t, s).Cursors

	if after[0].Position != before[0].Position {
		t.Errorf("cursor 0 moved without input: %v -> %v", before[0].Position, after[0].Position)
	}
	if got, want := after[1].Position.X-before[1].Position.X, float32(sim.DefaultCursorSpeed); got != want {
		t.Errorf("cursor 1 moved %v, want %v", got, want)
	}

	// Held input persists until replaced.
	again := mustStep(t, s).Cursors
	if again[1].Position.X <= after[1].Position.X {
		t.Error("held input not applied on the next tick")
	}
}

func TestSpectatorInputIgnored(t *testing.T) {
	s := newTestServer(t)
	s.RegisterClient("alice")
	s.RegisterClient("bob")
	c := s.RegisterClient("carol")

	before := mustStep(t, s).Cursors
	s.SendInput(c.ID, sim.Directions{Down: true})
	after := mustStep(t, s).Cursors
	for i := range before {
		if before[i].Position != after[i].Position {
			t.Errorf("spectator moved cursor %d", i)
		}
	}
}

func TestRestartRequest(t *testing.T) {
	s := newTestServer(t)
	a := s.RegisterClient("alice")
	b := s.RegisterClient("bob")

	s.SendInput(a.ID, sim.Directions{Left: true})
	for range 5 {
		mustStep(t, s)
	}

	s.RequestRestart(b.ID)
	s.RequestRestart(a.ID)
	snap := mustStep(t, s)
	if snap.Tick != 1 {
		t.Errorf("tick after restart = %d, want 1", snap.Tick)
	}

	for _, h := range []*ClientHandle{a, b} {
		select {
		case ev := <-h.EventsCh:
			if ev.Type != EventRestarted || ev.RequestBy != "bob" {
				t.Errorf("client %d got %+v", h.ID, ev)
			}
		default:
			t.Errorf("client %d not notified of restart", h.ID)
		}
	}
}

func TestPublishedSnapshotsAreIndependent(t *testing.T) {
	s := newTestServer(t)
	first := mustStep(t, s)
	kept := first.Particles[0]
	for range 3 {
		mustStep(t, s)
	}
	if first.Particles[0] != kept {
		t.Error("published snapshot mutated by later ticks")
	}
}

func TestShutdownNotifiesClients(t *testing.T) {
	s := newTestServer(t)
	a := s.RegisterClient("alice")
	mustStep(t, s)

	start := time.Now()
	s.Shutdown(50 * time.Millisecond)
	if time.Since(start) > 2*time.Second {
		t.Error("Shutdown did not honour its timeout")
	}

	select {
	case ev := <-a.EventsCh:
		if ev.Type != EventServerShutdown {
			t.Errorf("event = %+v", ev)
		}
	default:
		t.Error("no shutdown event")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if s.GetSnapshot().Tick == 0 {
		t.Error("no ticks ran")
	}
}

func TestJoinAfterStop(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run = %v", err)
	}

	// More sessions than the registration buffer holds.
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		for range 2 * cap(s.registerCh) {
			h := s.RegisterClient("late")
			if _, ok := <-h.EventsCh; ok {
				t.Error("late session got an event instead of a closed channel")
			}
			s.UnregisterClient(h.ID)
		}
		for range 2 * cap(s.unregisterCh) {
			s.UnregisterClient(1)
		}
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("register or unregister blocked on a stopped server")
	}
	if s.slots != [sim.MaxPlayers]int{} {
		t.Errorf("slots held after stop: %v", s.slots)
	}
}
