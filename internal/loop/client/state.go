package client

import (
	"time"

	"github.com/tomz197/swarm/internal/draw"
	"github.com/tomz197/swarm/internal/input"
)

// GameState represents the current phase for a client.
type GameState int

const (
	GameStateStart    GameState = iota // Title screen with controls
	GameStatePlaying                   // Watching the swarm, steering if holding a slot
	GameStateShutdown                  // Server is shutting down
)

// noticeSeconds is how long a transient notice stays on screen.
const noticeSeconds = 3.0

// ClientState holds per-session state. Each client has its own instance.
type ClientState struct {
	Input         input.Input
	GameState     GameState
	prevGameState GameState
	Running       bool
	delta         time.Duration // Frame delta time (client-side)
	fps           float64       // Smoothed frame rate
	shutdownTimer float64       // Countdown before auto-disconnect on shutdown
	isInactive    bool          // Whether the client is in inactive warning state
	wasInactive   bool
	notice        string  // Transient message, e.g. who restarted the swarm
	noticeTimer   float64 // Seconds left to show notice
	termSizeFunc  draw.TermSizeFunc
}

// NewClientState creates a new initialized client state.
func NewClientState() *ClientState {
	return &ClientState{
		GameState:     GameStateStart,
		prevGameState: -1,
		Running:       true,
	}
}

// tick advances the client-side timers by the frame delta.
func (s *ClientState) tick(delta time.Duration) {
	s.delta = delta
	if dt := delta.Seconds(); dt > 0 {
		const smoothing = 0.1
		s.fps += (1/dt - s.fps) * smoothing
	}
	if s.noticeTimer > 0 {
		s.noticeTimer -= delta.Seconds()
		if s.noticeTimer <= 0 {
			s.notice = ""
		}
	}
}

// showNotice displays msg for noticeSeconds.
func (s *ClientState) showNotice(msg string) {
	s.notice = msg
	s.noticeTimer = noticeSeconds
}
