package inspector

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/thelolagemann/goagnus/internal/agnus"
	"github.com/thelolagemann/goagnus/internal/beam"
	"github.com/thelolagemann/goagnus/internal/dma"
)

// ErrShortFrame is returned when decoding a frame that ends early.
var ErrShortFrame = errors.New("inspector: short frame")

// Frame is the part of a chipset snapshot streamed to viewers.
type Frame struct {
	Clock   int64
	Nr      int64
	V, H    uint16
	LOF     bool
	DMACON  uint16
	INTREQ  uint16
	INTENA  uint16
	CopPC   uint32
	Copper  string // copper state
	Blitter string // blitter state
	Busy    bool   // blitter busy
	Line    [beam.HPosCnt]dma.Owner
	Stats   [dma.NumOwners]int64
}

// FrameOf extracts the streamed part of s.
func FrameOf(s *agnus.Snapshot) Frame {
	return Frame{
		Clock:   s.Clock,
		Nr:      s.Frame.Nr,
		V:       uint16(s.Pos.V),
		H:       uint16(s.Pos.H),
		LOF:     s.Frame.LOF,
		DMACON:  s.DMACON,
		INTREQ:  s.INTREQ,
		INTENA:  s.INTENA,
		CopPC:   s.Copper.PC,
		Copper:  s.Copper.State,
		Blitter: s.Blitter.State,
		Busy:    s.Blitter.Busy,
		Line:    s.Line,
		Stats:   s.Stats,
	}
}

// MarshalBinary encodes f, little-endian, with the strings prefixed
// by their length.
func (f *Frame) MarshalBinary() ([]byte, error) {
	b := make([]byte, 0, 64+len(f.Line)+8*len(f.Stats))
	b = binary.LittleEndian.AppendUint64(b, uint64(f.Clock))
	b = binary.LittleEndian.AppendUint64(b, uint64(f.Nr))
	b = binary.LittleEndian.AppendUint16(b, f.V)
	b = binary.LittleEndian.AppendUint16(b, f.H)
	b = append(b, boolByte(f.LOF), boolByte(f.Busy))
	b = binary.LittleEndian.AppendUint16(b, f.DMACON)
	b = binary.LittleEndian.AppendUint16(b, f.INTREQ)
	b = binary.LittleEndian.AppendUint16(b, f.INTENA)
	b = binary.LittleEndian.AppendUint32(b, f.CopPC)
	for _, s := range []string{f.Copper, f.Blitter} {
		if len(s) > 0xFF {
			return nil, fmt.Errorf("inspector: state name %q too long", s)
		}
		b = append(b, byte(len(s)))
		b = append(b, s...)
	}
	for _, o := range f.Line {
		b = append(b, byte(o))
	}
	for _, n := range f.Stats {
		b = binary.LittleEndian.AppendUint64(b, uint64(n))
	}
	return b, nil
}

// UnmarshalBinary decodes a frame encoded by MarshalBinary.
func (f *Frame) UnmarshalBinary(b []byte) error {
	r := reader{b: b}
	f.Clock = int64(r.u64())
	f.Nr = int64(r.u64())
	f.V = r.u16()
	f.H = r.u16()
	f.LOF = r.u8() != 0
	f.Busy = r.u8() != 0
	f.DMACON = r.u16()
	f.INTREQ = r.u16()
	f.INTENA = r.u16()
	f.CopPC = r.u32()
	f.Copper = r.str()
	f.Blitter = r.str()
	for i := range f.Line {
		f.Line[i] = dma.Owner(r.u8())
	}
	for i := range f.Stats {
		f.Stats[i] = int64(r.u64())
	}
	if r.short {
		return ErrShortFrame
	}
	return nil
}

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}

type reader struct {
	b     []byte
	short bool
}

func (r *reader) take(n int) []byte {
	if r.short || len(r.b) < n {
		r.short = true
		return make([]byte, n)
	}
	p := r.b[:n]
	r.b = r.b[n:]
	return p
}

func (r *reader) u8() uint8   { return r.take(1)[0] }
func (r *reader) u16() uint16 { return binary.LittleEndian.Uint16(r.take(2)) }
func (r *reader) u32() uint32 { return binary.LittleEndian.Uint32(r.take(4)) }
func (r *reader) u64() uint64 { return binary.LittleEndian.Uint64(r.take(8)) }
func (r *reader) str() string { return string(r.take(int(r.u8()))) }
