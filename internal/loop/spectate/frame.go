// Package spectate streams the shared swarm to browsers over WebSocket.
// Spectators are read-only: they receive frames and never steer.
package spectate

import (
	"math"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/tomz197/swarm/internal/loop/server"
)

// quantMax is the largest quantised coordinate. Positions are sent as
// fractions of the world size scaled to [0, quantMax].
const quantMax = math.MaxUint16

// Frame is one snapshot in wire form. Particle positions are interleaved
// x, y pairs in XY, with the matching owner index in Owners.
type Frame struct {
	Tick    uint64        `msgpack:"t"`
	Width   float32       `msgpack:"w"`
	Height  float32       `msgpack:"h"`
	XY      []uint16      `msgpack:"xy"`
	Owners  []byte        `msgpack:"o"`
	Cursors []CursorFrame `msgpack:"c"`
	Names   []string      `msgpack:"n"` // Slot usernames, "" for a free slot
	Players int           `msgpack:"s"` // Connected terminal sessions
}

// CursorFrame is a cursor in wire form.
type CursorFrame struct {
	Owner int     `msgpack:"o"`
	X     float32 `msgpack:"x"`
	Y     float32 `msgpack:"y"`
}

// NewFrame converts a published snapshot into wire form.
func NewFrame(snap *server.Snapshot) Frame {
	w, h := snap.World.X, snap.World.Y
	f := Frame{
		Tick:    snap.Tick,
		Width:   w,
		Height:  h,
		XY:      make([]uint16, 0, 2*len(snap.Particles)),
		Owners:  make([]byte, 0, len(snap.Particles)),
		Cursors: make([]CursorFrame, 0, len(snap.Cursors)),
		Names:   make([]string, len(snap.Cursors)),
		Players: snap.Players,
	}
	for _, p := range snap.Particles {
		f.XY = append(f.XY, quantize(p.X, w), quantize(p.Y, h))
		f.Owners = append(f.Owners, byte(p.Owner))
	}
	for i, c := range snap.Cursors {
		f.Cursors = append(f.Cursors, CursorFrame{Owner: c.Owner, X: c.Position.X, Y: c.Position.Y})
		if c.Owner < len(snap.SlotNames) {
			f.Names[i] = snap.SlotNames[c.Owner]
		}
	}
	return f
}

// Position returns particle i's world position, to quantisation precision.
func (f Frame) Position(i int) (x, y float32) {
	return dequantize(f.XY[2*i], f.Width), dequantize(f.XY[2*i+1], f.Height)
}

// Encode marshals the frame with msgpack.
func (f Frame) Encode() ([]byte, error) {
	return msgpack.Marshal(&f)
}

func quantize(v, size float32) uint16 {
	if !(size > 0) {
		return 0
	}
	q := math.Round(float64(v / size * quantMax))
	return uint16(max(0, min(q, quantMax)))
}

func dequantize(q uint16, size float32) float32 {
	return float32(q) / quantMax * size
}
