package dma

import (
	"github.com/thelolagemann/goagnus/internal/beam"
	"github.com/thelolagemann/goagnus/pkg/log"
)

// DASEvent is a disk, audio or sprite DMA slot. Refresh shares the
// table, as it is serviced from the same event slot.
type DASEvent uint8

const (
	DasNone DASEvent = iota
	DasRefresh
	DasD0
	DasD1
	DasD2
	DasA0
	DasA1
	DasA2
	DasA3
	DasS0First // first of two cycles of sprite 0, and so on
	DasS0Second
	DasS7First  = DasS0First + 14
	DasS7Second = DasS0First + 15
	DasSDMA     = DasS7Second + 1

	NumDASEvents = DasSDMA + 1
)

// Sprite returns the sprite serviced by e, and whether e is the
// first of its two cycles. ok is false if e is not a sprite slot.
func (e DASEvent) Sprite() (n int, first bool, ok bool) {
	if e < DasS0First || e > DasS7Second {
		return 0, false, false
	}
	i := int(e - DasS0First)
	return i / 2, i%2 == 0, true
}

// BplEvent is a bitplane DMA slot.
type BplEvent uint8

const (
	BplNone BplEvent = iota
	BplL1            // lores plane 1, and so on
	BplL2
	BplL3
	BplL4
	BplL5
	BplL6
	BplH1 // hires plane 1, and so on
	BplH2
	BplH3
	BplH4
	BplEOL // end of line, modulos are applied

	NumBplEvents
)

// Plane returns the bitplane fetched by e, counting from 0, or -1.
func (e BplEvent) Plane() int {
	switch {
	case e >= BplL1 && e <= BplL6:
		return int(e - BplL1)
	case e >= BplH1 && e <= BplH4:
		return int(e - BplH1)
	}
	return -1
}

// RefreshCycles are the refresh slots of every line.
var RefreshCycles = [...]int{0x01, 0x03, 0x05, beam.HPosMax}

// fetch unit layouts, indexed by the cycle within an 8 cycle unit.
var (
	loresUnit = [8]BplEvent{0, BplL4, BplL6, BplL2, 0, BplL3, BplL5, BplL1}
	hiresUnit = [8]BplEvent{BplH4, BplH2, BplH3, BplH1, BplH4, BplH2, BplH3, BplH1}
)

// dasTables holds the DAS layout for every combination of the
// disk and sprite enable bits, computed once.
var dasTables [4][beam.HPosCnt]DASEvent

func init() {
	for i := range dasTables {
		t := &dasTables[i]
		t[0x01] = DasRefresh
		if i&1 != 0 {
			t[0x07], t[0x09], t[0x0B] = DasD0, DasD1, DasD2
		}
		t[0x0D], t[0x0F], t[0x11], t[0x13] = DasA0, DasA1, DasA2, DasA3
		if i&2 != 0 {
			for s := 0; s < 16; s++ {
				t[0x15+2*s] = DasS0First + DASEvent(s)
			}
		}
		t[0xDF] = DasSDMA
	}
}

// SlotTable holds the DMA events of the current line, and for every
// cycle the next cycle that has an event, so the event slots can
// jump straight to it.
type SlotTable struct {
	DAS     [beam.HPosCnt]DASEvent
	NextDAS [beam.HPosCnt]int

	BPL     [beam.HPosCnt]BplEvent
	NextBPL [beam.HPosCnt]int

	trace *log.Config
}

// NewSlotTable returns a table with only the fixed slots set.
func NewSlotTable(trace *log.Config) *SlotTable {
	t := &SlotTable{trace: trace}
	t.UpdateDAS(0)
	t.UpdateBPL(BplConfig{})
	return t
}

// UpdateDAS rebuilds the DAS events from DMACON.
func (t *SlotTable) UpdateDAS(dmacon uint16) {
	i := 0
	if Enabled(dmacon, Disk) {
		i |= 1
	}
	if Enabled(dmacon, Sprite) {
		i |= 2
	}
	t.DAS = dasTables[i]
	updateJumps(t.NextDAS[:], func(i int) bool { return t.DAS[i] != DasNone })
	t.trace.Tracef(log.DMA, "DAS table rebuilt (disk %t, sprites %t)", i&1 != 0, i&2 != 0)
}

// BplConfig is the state the bitplane layout is derived from.
type BplConfig struct {
	Enabled bool   // BPLEN and DMAEN, and inside the vertical window
	BPU     int    // number of bitplanes, BPLCON0 bits 12-14
	Hires   bool   // BPLCON0 bit 15
	DDFSTRT uint16 // data fetch start
	DDFSTOP uint16 // data fetch stop
}

// FetchWindow returns the first and last fetch unit start of the
// data fetch window.
func (c BplConfig) FetchWindow() (first, last int) {
	first = int(c.DDFSTRT & 0xF8)
	last = int(c.DDFSTOP & 0xF8)
	if first < 0x18 {
		first = 0x18
	}
	if last > 0xD8 {
		last = 0xD8
	}
	return first, last
}

// UpdateBPL rebuilds the bitplane events.
func (t *SlotTable) UpdateBPL(c BplConfig) {
	t.BPL = [beam.HPosCnt]BplEvent{}

	bpu := c.BPU
	if c.Hires && bpu > 4 {
		bpu = 4
	} else if bpu > 6 {
		bpu = 6
	}

	if c.Enabled && bpu > 0 {
		unit := loresUnit
		if c.Hires {
			unit = hiresUnit
		}
		first, last := c.FetchWindow()
		for u := first; u <= last; u += 8 {
			for i, e := range unit {
				if e != BplNone && e.Plane() < bpu {
					t.BPL[u+i] = e
				}
			}
		}
	}
	t.BPL[beam.HPosMax] = BplEOL

	updateJumps(t.NextBPL[:], func(i int) bool { return t.BPL[i] != BplNone })
}

// updateJumps fills next with the cycle of the following event for
// every cycle, or -1 if there is none.
func updateJumps(next []int, has func(int) bool) {
	n := -1
	for i := beam.HPosMax; i >= 0; i-- {
		next[i] = n
		if has(i) {
			n = i
		}
	}
}

// FirstDAS returns the first cycle of a line with a DAS event.
func (t *SlotTable) FirstDAS() int {
	if t.DAS[0] != DasNone {
		return 0
	}
	return t.NextDAS[0]
}

// FirstBPL returns the first cycle of a line with a bitplane event.
func (t *SlotTable) FirstBPL() int {
	if t.BPL[0] != BplNone {
		return 0
	}
	return t.NextBPL[0]
}
