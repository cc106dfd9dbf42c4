package agnus

import (
	"github.com/thelolagemann/goagnus/internal/dma"
	"github.com/thelolagemann/goagnus/internal/scheduler"
	"github.com/thelolagemann/goagnus/internal/types"
	"github.com/thelolagemann/goagnus/internal/types/registers"
	"github.com/thelolagemann/goagnus/pkg/log"
)

// spriteResetLine is the line at which the sprite DMA state
// machines fetch their first control words.
const spriteResetLine = 25

// dmaRead reads the word at *ptr for o in the current cycle, and
// moves the pointer on.
func (a *Agnus) dmaRead(o dma.Owner, ptr *uint32) uint16 {
	v := a.mem.Read16(*ptr)
	*ptr += 2
	a.Bus.Record(o, a.Beam.Pos.H, v)
	return v
}

func (a *Agnus) serviceDASEvent(id scheduler.EventID) {
	h := a.Beam.Pos.H

	switch e := dma.DASEvent(id); {
	case e == dma.DasRefresh:
		for _, c := range dma.RefreshCycles {
			a.Bus.Record(dma.Refresh, c, 0)
		}
	case e >= dma.DasD0 && e <= dma.DasD2:
		if a.disk != nil {
			a.disk.PerformDMA(a)
		}
	case e >= dma.DasA0 && e <= dma.DasA3:
		ch := int(e - dma.DasA0)
		if a.audio != nil && dma.AudioEnabled(a.Bus.DMACON(), ch) && a.audio.AudioRequest(ch) {
			a.audio.AudioData(ch, a.dmaRead(dma.Audio, &a.audpt[ch]))
		}
	case e == dma.DasSDMA:
		a.updateSpriteDMA()
	default:
		if n, first, ok := e.Sprite(); ok {
			a.spriteCycle(n, first)
		} else {
			a.log.Errorf("agnus: unknown DAS event %d at %s", id, a.Beam.Pos)
		}
	}

	a.scheduleDASFrom(h + 1)
}

// scheduleDASFrom schedules the first DAS event at or after cycle h
// of the current line.
func (a *Agnus) scheduleDASFrom(h int) {
	next := -1
	if h < len(a.Slots.DAS) {
		next = h
		if a.Slots.DAS[h] == dma.DasNone {
			next = a.Slots.NextDAS[h]
		}
	}
	if next < 0 {
		a.Scheduler.Cancel(scheduler.Das)
		return
	}
	a.Scheduler.ScheduleRel(scheduler.Das, int64(next-a.Beam.Pos.H), scheduler.EventID(a.Slots.DAS[next]))
}

// DiskRead implements DiskBus.
func (a *Agnus) DiskRead() uint16 {
	return a.dmaRead(dma.Disk, &a.dskpt)
}

// DiskWrite implements DiskBus.
func (a *Agnus) DiskWrite(v uint16) {
	a.mem.Write16(a.dskpt, v)
	a.dskpt += 2
	a.Bus.Record(dma.Disk, a.Beam.Pos.H, v)
}

// spriteCycle runs one of the two DMA cycles of sprite n. In the
// last line of a sprite the control words are fetched instead of
// the data words.
func (a *Agnus) spriteCycle(n int, first bool) {
	base := registers.SPR0POS + registers.Address(n)*8
	switch {
	case a.Beam.Pos.V == a.sprVStop[n]:
		a.sprActive[n] = false
		if first {
			a.setSprPOS(n, a.dmaRead(dma.Sprite, &a.sprpt[n]))
		} else {
			a.setSprCTL(n, a.dmaRead(dma.Sprite, &a.sprpt[n]))
		}
	case a.sprActive[n]:
		reg := base + 4 // SPRxDATA
		if !first {
			reg += 2
		}
		v := a.dmaRead(dma.Sprite, &a.sprpt[n])
		if a.sprites != nil {
			a.sprites.SpriteWord(n, reg, v)
		}
	}
}

// updateSpriteDMA switches the sprite state machines for the next
// line.
func (a *Agnus) updateSpriteDMA() {
	v := a.Beam.Pos.V + 1

	if v == spriteResetLine && a.Bus.Enabled(dma.Sprite) {
		for n := range a.sprVStop {
			a.sprVStop[n] = spriteResetLine
			a.sprActive[n] = false
		}
		return
	}
	if v == a.Beam.NumLines()-1 {
		a.sprActive = [8]bool{}
		return
	}

	for n := range a.sprActive {
		if v == a.sprVStrt(n) {
			a.sprActive[n] = true
			a.trace.Tracef(log.DMA, "%s sprite %d armed", a.Beam.Pos, n)
		}
		if v == a.sprVStop[n] {
			a.sprActive[n] = false
		}
	}
}

func (a *Agnus) serviceBPLEvent(id scheduler.EventID) {
	h := a.Beam.Pos.H

	switch e := dma.BplEvent(id); e {
	case dma.BplEOL:
		a.addModulos()
	default:
		p := e.Plane()
		if p < 0 {
			a.log.Errorf("agnus: unknown bitplane event %d at %s", id, a.Beam.Pos)
			break
		}
		v := a.dmaRead(dma.Bitplane, &a.bplpt[p])
		a.bplFetched |= 1 << p
		if a.bitplanes != nil {
			a.bitplanes.BitplaneWord(p, v)
		}
	}

	a.scheduleBPLFrom(h + 1)
}

// addModulos adds BPL1MOD to the odd and BPL2MOD to the even planes
// that were fetched in this line.
func (a *Agnus) addModulos() {
	for p := range a.bplpt {
		if a.bplFetched&(1<<p) == 0 {
			continue
		}
		mod := a.bpl1mod
		if p%2 == 1 {
			mod = a.bpl2mod
		}
		a.bplpt[p] += uint32(int32(mod))
	}
}

// scheduleBPLFrom schedules the first bitplane event at or after
// cycle h of the current line.
func (a *Agnus) scheduleBPLFrom(h int) {
	next := -1
	if h < len(a.Slots.BPL) {
		next = h
		if a.Slots.BPL[h] == dma.BplNone {
			next = a.Slots.NextBPL[h]
		}
	}
	if next < 0 {
		a.Scheduler.Cancel(scheduler.Bpl)
		return
	}
	a.Scheduler.ScheduleRel(scheduler.Bpl, int64(next-a.Beam.Pos.H), scheduler.EventID(a.Slots.BPL[next]))
}

// bplWindow returns the bitplane layout for the current line.
func (a *Agnus) bplWindow() dma.BplConfig {
	v := a.Beam.Pos.V
	vstrt := int(a.diwstrt >> 8)
	vstop := int(a.diwstop >> 8)
	if a.diwstop&types.Bit15 == 0 {
		vstop |= 0x100
	}

	return dma.BplConfig{
		Enabled: a.Bus.Enabled(dma.Bitplane) && v >= vstrt && v < vstop,
		BPU:     int(a.bplcon0 >> 12 & 0b111),
		Hires:   a.bplcon0&bplcon0HIRES != 0,
		DDFSTRT: a.ddfstrt,
		DDFSTOP: a.ddfstop,
	}
}

// updateBPL rebuilds the bitplane layout if it changed, and reports
// whether it did.
func (a *Agnus) updateBPL() bool {
	c := a.bplWindow()
	if c == a.bplConfig {
		return false
	}
	a.bplConfig = c
	a.Slots.UpdateBPL(c)
	return true
}
