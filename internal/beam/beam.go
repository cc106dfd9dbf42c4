// Package beam tracks the position of the video beam, which is
// the time base every DMA consumer in the chipset is bound to.
//
// A line is 227 (HPosCnt) DMA cycles long. A PAL frame has 313
// lines when it is a long frame and 312 otherwise, NTSC 263 and
// 262. Outside of interlace mode every frame is a long frame; in
// interlace mode long and short frames alternate.
package beam

import (
	"fmt"

	"github.com/thelolagemann/goagnus/internal/types"
)

const (
	// HPosCnt is the number of DMA cycles in a line.
	HPosCnt = 0xE3
	// HPosMax is the last horizontal position in a line.
	HPosMax = HPosCnt - 1

	// VPosCntPAL is the number of lines in a long PAL frame.
	VPosCntPAL = 313
	// VPosCntNTSC is the number of lines in a long NTSC frame.
	VPosCntNTSC = 263
)

// Position is a beam position. V is the line and H the DMA cycle
// within the line.
type Position struct {
	V int
	H int
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,$%02X)", p.V, p.H)
}

// Beam returns the position packed the way the copper compares it,
// (V & 0xFF) << 8 | H.
func (p Position) Beam() uint16 {
	return uint16(p.V&0xFF)<<8 | uint16(p.H&0xFF)
}

// Frame describes the frame the beam is in.
type Frame struct {
	Nr         int64 // number of frames since reset
	LOF        bool  // long frame
	PrevLOF    bool  // LOF of the previous frame
	Interlaced bool
}

// Tracker is the beam tracker.
type Tracker struct {
	Pos   Position
	Frame Frame

	video types.Video
}

// New returns a tracker at the top of a long frame.
func New(video types.Video) *Tracker {
	t := &Tracker{video: video}
	t.Reset()
	return t
}

// Reset moves the beam to the top of the first frame.
func (t *Tracker) Reset() {
	t.Pos = Position{}
	t.Frame = Frame{LOF: true, PrevLOF: true, Interlaced: t.Frame.Interlaced}
}

// Position returns the current beam position.
func (t *Tracker) Position() Position {
	return t.Pos
}

// Video returns the video standard being tracked.
func (t *Tracker) Video() types.Video {
	return t.video
}

// NumLines returns the number of lines in the current frame.
func (t *Tracker) NumLines() int {
	n := VPosCntPAL
	if t.video == types.NTSC {
		n = VPosCntNTSC
	}
	if !t.Frame.LOF {
		n--
	}
	return n
}

// LastLine returns the last line of the current frame.
func (t *Tracker) LastLine() int {
	return t.NumLines() - 1
}

// CyclesInFrame returns the number of DMA cycles in the current
// frame.
func (t *Tracker) CyclesInFrame() int64 {
	return int64(t.NumLines()) * HPosCnt
}

// SetInterlaced switches interlace mode, which takes effect for the
// following frame.
func (t *Tracker) SetInterlaced(on bool) {
	t.Frame.Interlaced = on
}

// SetLOF sets the long frame flag, as done by a VPOSW write.
func (t *Tracker) SetLOF(lof bool) {
	t.Frame.LOF = lof
}

// Advance moves the beam one DMA cycle forward. It reports whether
// the beam wrapped to a new line, and whether it wrapped to a new
// frame.
func (t *Tracker) Advance() (hsync, vsync bool) {
	if t.Pos.H < HPosMax {
		t.Pos.H++
		return false, false
	}

	t.Pos.H = 0
	if t.Pos.V < t.LastLine() {
		t.Pos.V++
		return true, false
	}

	t.Pos.V = 0
	t.Frame.Nr++
	t.Frame.PrevLOF = t.Frame.LOF
	if t.Frame.Interlaced {
		t.Frame.LOF = !t.Frame.LOF
	} else {
		t.Frame.LOF = true
	}
	return true, true
}

// Add returns the position n cycles after p, ignoring frame
// boundaries.
func Add(p Position, n int64) Position {
	c := int64(p.V)*HPosCnt + int64(p.H) + n
	return Position{V: int(c / HPosCnt), H: int(c % HPosCnt)}
}

// Diff returns the number of cycles from a to b in the same frame.
// The result is negative if b is before a.
func Diff(a, b Position) int64 {
	return int64(b.V-a.V)*HPosCnt + int64(b.H-a.H)
}

// VPOSR returns the value of the VPOSR register. Bits 8 to 14 hold
// the Agnus id of the revision and video standard.
func (t *Tracker) VPOSR(rev types.Revision) uint16 {
	var id uint16
	if rev == types.ECS {
		id = 0x20
	}
	if t.video == types.NTSC {
		id |= 0x10
	}
	v := id<<8 | uint16(t.Pos.V>>8)&1
	if t.Frame.LOF {
		v |= 0x8000
	}
	return v
}

// VHPOSR returns the value of the VHPOSR register.
func (t *Tracker) VHPOSR() uint16 {
	return t.Pos.Beam()
}

var _ types.Stater = (*Tracker)(nil)

// Load implements the types.Stater interface.
//
// The values are loaded in the following order:
//   - V (uint16)
//   - H (uint16)
//   - Frame.Nr (int64)
//   - Frame.LOF (bool)
//   - Frame.PrevLOF (bool)
//   - Frame.Interlaced (bool)
func (t *Tracker) Load(s *types.State) {
	t.Pos.V = int(s.Read16())
	t.Pos.H = int(s.Read16())
	t.Frame.Nr = s.ReadInt64()
	t.Frame.LOF = s.ReadBool()
	t.Frame.PrevLOF = s.ReadBool()
	t.Frame.Interlaced = s.ReadBool()
}

// Save implements the types.Stater interface.
//
// The values are saved in the following order:
//   - V (uint16)
//   - H (uint16)
//   - Frame.Nr (int64)
//   - Frame.LOF (bool)
//   - Frame.PrevLOF (bool)
//   - Frame.Interlaced (bool)
func (t *Tracker) Save(s *types.State) {
	s.Write16(uint16(t.Pos.V))
	s.Write16(uint16(t.Pos.H))
	s.WriteInt64(t.Frame.Nr)
	s.WriteBool(t.Frame.LOF)
	s.WriteBool(t.Frame.PrevLOF)
	s.WriteBool(t.Frame.Interlaced)
}
