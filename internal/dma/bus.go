// Package dma implements the chip bus arbiter and the DMA slot
// tables that decide which consumer uses which cycle of a line.
package dma

import (
	"github.com/thelolagemann/goagnus/internal/beam"
	"github.com/thelolagemann/goagnus/internal/types"
	"github.com/thelolagemann/goagnus/pkg/bits"
	"github.com/thelolagemann/goagnus/pkg/log"
)

// Bus is the chip bus arbiter. It records the owner of every cycle
// of the current line, and decides whether a consumer may use a
// cycle based on DMACON and the cycles already taken.
type Bus struct {
	owner [beam.HPosCnt]Owner
	value [beam.HPosCnt]uint16

	dmacon uint16
	bls    bool // the CPU is waiting for the bus

	Stats Stats

	trace *log.Config
}

// NewBus returns an arbiter with DMA disabled and every cycle free.
func NewBus(trace *log.Config) *Bus {
	b := &Bus{trace: trace}
	b.Stats.reset()
	return b
}

// DMACON returns the writable part of DMACON.
func (b *Bus) DMACON() uint16 {
	return b.dmacon
}

// SetDMACON applies a SET/CLR write and returns the previous value.
func (b *Bus) SetDMACON(v uint16) (old uint16) {
	old = b.dmacon
	b.dmacon = bits.SetClr(b.dmacon, v) & WriteMask
	b.trace.Tracef(log.DMA, "DMACON %04X -> %04X", old, b.dmacon)
	return old
}

// Enabled returns true if o's DMA is enabled.
func (b *Bus) Enabled(o Owner) bool {
	return Enabled(b.dmacon, o)
}

// SetBLS sets the signal raised by the CPU when it has been denied
// the bus, which keeps the blitter off the bus unless BLTPRI is set.
func (b *Bus) SetBLS(v bool) {
	b.bls = v
}

// BLS returns the CPU bus request signal.
func (b *Bus) BLS() bool {
	return b.bls
}

// Owner returns the owner of cycle h of the current line.
func (b *Bus) Owner(h int) Owner {
	return b.owner[h]
}

// Value returns the value moved over the bus in cycle h.
func (b *Bus) Value(h int) uint16 {
	return b.value[h]
}

// CanAcquire returns true if o may use cycle h: either o already
// holds it, or it is free and o's DMA is enabled. It has no side
// effects.
func (b *Bus) CanAcquire(o Owner, h int) bool {
	return b.owner[h] == o || b.owner[h] == None && b.Enabled(o)
}

// Allocate assigns cycle h to o, if nobody holds it yet. The blitter
// is also denied while the CPU is waiting, unless it has priority.
func (b *Bus) Allocate(o Owner, h int) bool {
	if b.owner[h] != None || !b.Enabled(o) {
		return false
	}
	if o == Blitter && b.bls && b.dmacon&BLTPRI == 0 {
		return false
	}
	b.owner[h] = o
	return true
}

// Record marks cycle h as used by o, moving value. Consumers with a
// fixed slot, such as refresh and bitplanes, record directly without
// allocating.
func (b *Bus) Record(o Owner, h int, value uint16) {
	b.owner[h] = o
	b.value[h] = value
	b.Stats.count(o)
}

// SetValue stores the value moved by the owner of cycle h.
func (b *Bus) SetValue(h int, value uint16) {
	b.value[h] = value
	b.Stats.count(b.owner[h])
}

// ClearLine frees every cycle. It is called at the start of a line.
func (b *Bus) ClearLine() {
	b.owner = [beam.HPosCnt]Owner{}
	b.value = [beam.HPosCnt]uint16{}
}

// Line returns a copy of the owners of the current line.
func (b *Bus) Line() [beam.HPosCnt]Owner {
	return b.owner
}

var _ types.Stater = (*Bus)(nil)

// Load implements the types.Stater interface.
//
// The values are loaded in the following order:
//   - dmacon (uint16)
//   - bls (bool)
//   - owner (uint8 per cycle)
//   - value (uint16 per cycle)
func (b *Bus) Load(s *types.State) {
	b.dmacon = s.Read16()
	b.bls = s.ReadBool()
	for i := range b.owner {
		b.owner[i] = Owner(s.Read8())
	}
	for i := range b.value {
		b.value[i] = s.Read16()
	}
}

// Save implements the types.Stater interface.
//
// The values are saved in the following order:
//   - dmacon (uint16)
//   - bls (bool)
//   - owner (uint8 per cycle)
//   - value (uint16 per cycle)
func (b *Bus) Save(s *types.State) {
	s.Write16(b.dmacon)
	s.WriteBool(b.bls)
	for _, o := range b.owner {
		s.Write8(uint8(o))
	}
	for _, v := range b.value {
		s.Write16(v)
	}
}
