// Package input turns a raw terminal byte stream into per-player directions.
package input

import (
	"bufio"
	"sync"
	"time"

	"github.com/tomz197/swarm/internal/sim"
)

// keyHoldDuration is how long a key is considered "held" after its last press.
// Terminals only report key repeats, so a held key is one seen recently.
const keyHoldDuration = 30 * time.Millisecond

// Input represents the current frame's input state.
type Input struct {
	Controls sim.Controls // Held directions per player
	Restart  bool         // Space pressed this frame
	Quit     bool         // q, Esc or Ctrl-C pressed this frame, or the stream closed
	Pressed  []byte       // Raw bytes read this frame
}

// Merged combines every player's directions, for hosts where any key set
// steers the same cursor.
func (in Input) Merged() sim.Directions {
	var d sim.Directions
	for _, c := range in.Controls {
		d = d.Or(c)
	}
	return d
}

// KeySet is one player's four direction keys.
type KeySet struct {
	Left, Right, Up, Down byte
}

// Arrow keys arrive as ESC [ A..D; they are stored under these codes.
const (
	ArrowUp    byte = 0x80 + 'A'
	ArrowDown  byte = 0x80 + 'B'
	ArrowRight byte = 0x80 + 'C'
	ArrowLeft  byte = 0x80 + 'D'
)

// KeySets lists the distinct key sets. Players beyond the fifth reuse
// the second to fourth sets, see PlayerKeySet.
var KeySets = []KeySet{
	{Left: 'a', Right: 'd', Up: 'w', Down: 's'},
	{Left: 'f', Right: 'h', Up: 't', Down: 'g'},
	{Left: 'j', Right: 'l', Up: 'i', Down: 'k'},
	{Left: ';', Right: '\\', Up: '[', Down: '\''},
	{Left: ArrowLeft, Right: ArrowRight, Up: ArrowUp, Down: ArrowDown},
}

// playerKeySets maps each player to its index in KeySets.
var playerKeySets = [sim.MaxPlayers]int{0, 1, 2, 3, 4, 1, 2, 3}

// PlayerKeySet returns the key set that steers player p.
func PlayerKeySet(p int) KeySet {
	return KeySets[playerKeySets[p]]
}

const (
	dirLeft = iota
	dirRight
	dirUp
	dirDown
)

// keyState tracks the last time each direction key was pressed.
type keyState struct {
	held [][4]time.Time // Indexed by key set, then direction
}

// Stream delivers input bytes via a channel and tracks key state for combinations.
type Stream struct {
	ch      chan byte
	done    chan struct{}
	stop    sync.Once
	state   keyState
	closed  bool
	pending []byte // Escape sequence cut off at the end of the last drain
}

func newStream() *Stream {
	return &Stream{
		ch:    make(chan byte, 128),
		done:  make(chan struct{}),
		state: keyState{held: make([][4]time.Time, len(KeySets))},
	}
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
// The goroutine exits when r fails or once Close is called and it next has a
// byte to deliver.
func StartStream(r *bufio.Reader) *Stream {
	s := newStream()
	go func() {
		defer close(s.ch)
		for {
			b, err := r.ReadByte()
			if err != nil {
				return
			}
			select {
			case s.ch <- b:
			case <-s.done:
				return
			}
		}
	}()
	return s
}

// Close stops delivery. It is safe to call more than once.
func (s *Stream) Close() {
	s.stop.Do(func() { close(s.done) })
}

// ReadInput drains all available bytes from the stream (non-blocking).
// Handles escape sequences for arrow keys and accumulates all pressed keys.
// Uses key state persistence to allow detecting simultaneous key combinations.
func ReadInput(s *Stream) Input {
	now := time.Now()
	var buf []byte

drain:
	for !s.closed {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}

	in := s.parse(buf, now)
	in.Quit = in.Quit || s.closed
	return in
}

// ResetKeyInput forgets held keys, e.g. after a screen change.
func ResetKeyInput(s *Stream) {
	for i := range s.state.held {
		s.state.held[i] = [4]time.Time{}
	}
}

// parse updates key state from buf and builds the frame's Input.
//
// The reader hands bytes over one at a time, so a drain may end inside an
// arrow key's ESC [ X. A trailing ESC or ESC [ is held back and replayed in
// front of the next drain. It only counts as a lone Esc once a drain brings
// nothing new or the stream has closed.
func (s *Stream) parse(buf []byte, now time.Time) Input {
	in := Input{Pressed: buf}

	flush := len(buf) == 0 || s.closed
	if len(s.pending) > 0 {
		buf = append(s.pending, buf...)
		s.pending = nil
	}

	for i := 0; i < len(buf); i++ {
		b := buf[i]

		if b == '\x1b' && !flush {
			if rest := buf[i+1:]; len(rest) == 0 || (len(rest) == 1 && rest[0] == '[') {
				s.pending = append([]byte(nil), buf[i:]...)
				break
			}
		}

		// CSI sequence: ESC [ <code>. Unknown codes are skipped, not read as Esc.
		if b == '\x1b' && i+2 < len(buf) && buf[i+1] == '[' {
			switch code := buf[i+2]; code {
			case 'A', 'B', 'C', 'D':
				s.press(0x80+code, now)
			}
			i += 2
			continue
		}

		switch b {
		case 'q', 'Q', '\x1b', '\x03':
			in.Quit = true
		case ' ':
			in.Restart = true
		default:
			s.press(lower(b), now)
		}
	}

	for p := range sim.MaxPlayers {
		held := s.state.held[playerKeySets[p]]
		in.Controls[p] = sim.Directions{
			Left:  now.Sub(held[dirLeft]) < keyHoldDuration,
			Right: now.Sub(held[dirRight]) < keyHoldDuration,
			Up:    now.Sub(held[dirUp]) < keyHoldDuration,
			Down:  now.Sub(held[dirDown]) < keyHoldDuration,
		}
	}
	return in
}

// press stamps every key set direction bound to key.
func (s *Stream) press(key byte, now time.Time) {
	for i, ks := range KeySets {
		switch key {
		case ks.Left:
			s.state.held[i][dirLeft] = now
		case ks.Right:
			s.state.held[i][dirRight] = now
		case ks.Up:
			s.state.held[i][dirUp] = now
		case ks.Down:
			s.state.held[i][dirDown] = now
		}
	}
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + 'a' - 'A'
	}
	return b
}
