package blitter

import (
	"github.com/thelolagemann/goagnus/internal/dma"
	"github.com/thelolagemann/goagnus/internal/interrupts"
	"github.com/thelolagemann/goagnus/pkg/log"
)

// micro-instructions. A micro-program word is a combination of them,
// executed in one DMA cycle.
const (
	nothing uint16 = 0
	busIdle uint16 = 1 << (iota - 1) // wait for a free bus
	bus                        // wait for a free bus and allocate it
	writeD                     // write DHOLD
	fetchA                     // load ANEW
	fetchB                     // load BNEW
	fetchC                     // load CHOLD
	holdA                      // run the A barrel shifter
	holdB                      // run the B barrel shifter
	holdD                      // run the minterm logic into DHOLD
	fill                       // run the fill logic
	bltDone                    // last instruction
	repeat                     // jump back to 0 until the last word

	fetch = fetchA | fetchB | fetchC
)

// copyProgram[ABCD][fill] is the micro-program of a copy blit. The
// fake mode runs the same programs, performing the bus accesses only.
//
//	ABCD  channels  cycle sequence
//	 F    A B C D   A0 B0 C0 -- A1 B1 C1 D0 A2 B2 C2 D1 D2
//	 E    A B C     A0 B0 C0 A1 B1 C1 A2 B2 C2
//	 D    A B   D   A0 B0 -- A1 B1 D0 A2 B2 D1 -- D2
//	 C    A B       A0 B0 -- A1 B1 -- A2 B2
//	 B    A   C D   A0 C0 -- A1 C1 D0 A2 C2 D1 -- D2
//	 A    A   C     A0 C0 A1 C1 A2 C2
//	 9    A     D   A0 -- A1 D0 A2 D1 -- D2
//	 8    A         A0 -- A1 -- A2
//	 7      B C D   B0 C0 -- -- B1 C1 D0 -- B2 C2 D1 -- D2
//	 6      B C     B0 C0 -- B1 C1 -- B2 C2
//	 5      B   D   B0 -- -- B1 D0 -- B2 D1 -- D2
//	 4      B       B0 -- -- B1 -- -- B2
//	 3        C D   C0 -- -- C1 D0 -- C2 D1 -- D2
//	 2        C     C0 -- C1 -- C2
//	 1          D   D0 -- D1 -- D2
//	 0              -- -- -- --
//
// With fill enabled, the programs that use D without C take one
// cycle more per word.
var copyProgram = [16][2][6]uint16{
	// -- -- | -- --
	0x0: {
		{busIdle, busIdle | repeat, nothing, bltDone, bltDone, bltDone},
		{busIdle, busIdle | repeat, nothing, bltDone, bltDone, bltDone},
	},
	// -- D0 -- D1 | -- D2
	0x1: {
		{holdD | busIdle, writeD | holdA | repeat, holdD, writeD | bltDone, bltDone, bltDone},
		{fill | holdD | busIdle, writeD, busIdle | holdA | repeat, fill | holdD, writeD | bltDone, bltDone},
	},
	// C0 -- C1 -- | -- C2
	0x2: {
		{holdD | busIdle, fetchC | holdA | repeat, holdD, bltDone, bltDone, bltDone},
		{fill | holdD | busIdle, fetchC | holdA | repeat, fill | holdD, bltDone, bltDone, bltDone},
	},
	// C0 -- -- C1 D0 -- C2 D1 -- | -- D2
	0x3: {
		{holdD | busIdle, fetchC | holdA, writeD | repeat, holdD, writeD | bltDone, bltDone},
		{fill | holdD | busIdle, fetchC | holdA, writeD | repeat, fill | holdD, writeD | bltDone, bltDone},
	},
	// B0 -- -- B1 -- -- | -- B2
	0x4: {
		{holdD | busIdle, fetchB | holdA, holdB | busIdle | repeat, holdD, bltDone, bltDone},
		{fill | holdD | busIdle, fetchB | holdA, holdB | busIdle | repeat, fill | holdD, bltDone, bltDone},
	},
	// B0 -- -- B1 D0 -- B2 D1 -- | -- D2
	0x5: {
		{busIdle | holdD, fetchB | holdA, writeD | holdB | repeat, holdD, writeD | bltDone, bltDone},
		{busIdle | fill | holdD, fetchB | holdA, writeD | holdB, busIdle | repeat, fill | holdD, writeD | bltDone},
	},
	// B0 C0 -- B1 C1 -- | -- --
	0x6: {
		{busIdle | holdD, fetchB | holdA, fetchC | holdB | repeat, holdD, bltDone, bltDone},
		{busIdle | fill | holdD, fetchB | holdA, fetchC | holdB | repeat, fill | holdD, bltDone, bltDone},
	},
	// B0 C0 -- -- B1 C1 D0 -- B2 C2 D1 -- | -- D2
	0x7: {
		{busIdle | holdD, fetchB | holdA, fetchC | holdB, writeD | repeat, holdD, writeD | bltDone},
		{busIdle | fill | holdD, fetchB | holdA, fetchC | holdB, writeD | repeat, fill | holdD, writeD | bltDone},
	},
	// A0 -- A1 -- | -- --
	0x8: {
		{fetchA | holdD, holdA | busIdle | repeat, holdD, bltDone, bltDone, bltDone},
		{fetchA | fill | holdD, holdA | busIdle | repeat, fill | holdD, bltDone, bltDone, bltDone},
	},
	// A0 -- A1 D0 A2 D1 | -- D2
	0x9: {
		{fetchA | holdD, writeD | holdA | repeat, holdD, writeD | bltDone, bltDone, bltDone},
		{fetchA | fill | holdD, writeD | holdA, busIdle | repeat, fill | holdD, writeD | bltDone, bltDone},
	},
	// A0 C0 A1 C1 A2 C2 | -- --
	0xA: {
		{fetchA | holdD, fetchC | holdA | repeat, holdD, bltDone, bltDone, bltDone},
		{fetchA | fill | holdD, fetchC | holdA | repeat, fill | holdD, bltDone, bltDone, bltDone},
	},
	// A0 C0 -- A1 C1 D0 A2 C2 D1 | -- D2
	0xB: {
		{fetchA | holdD, fetchC | holdA, writeD | repeat, holdD, writeD | bltDone, bltDone},
		{fetchA | fill | holdD, fetchC | holdA, writeD | repeat, fill | holdD, writeD | bltDone, bltDone},
	},
	// A0 B0 -- A1 B1 -- A2 B2 -- | -- --
	0xC: {
		{fetchA | holdD, fetchB | holdA, holdB | busIdle | repeat, holdD, bltDone, bltDone},
		{fetchA | fill | holdD, fetchB | holdA, holdB | busIdle | repeat, fill | holdD, bltDone, bltDone},
	},
	// A0 B0 -- A1 B1 D0 A2 B2 D1 | -- D2
	0xD: {
		{fetchA | holdD, fetchB | holdA, writeD | holdB | repeat, holdD, writeD | bltDone, bltDone},
		{fetchA | fill | holdD, fetchB | holdA, writeD | holdB, busIdle | repeat, fill | holdD, writeD | bltDone},
	},
	// A0 B0 C0 A1 B1 C1 A2 B2 C2 | -- --
	0xE: {
		{fetchA | holdD, fetchB | holdA, fetchC | holdB | repeat, holdD, bltDone, bltDone},
		{fetchA | fill | holdD, fetchB | holdA, fetchC | holdB | repeat, fill | holdD, bltDone, bltDone},
	},
	// A0 B0 C0 -- A1 B1 C1 D0 A2 B2 C2 D1 | -- D2
	0xF: {
		{fetchA | holdD, fetchB | holdA, fetchC | holdB, writeD | repeat, holdD, writeD | bltDone},
		{fetchA | fill | holdD, fetchB | holdA, fetchC | holdB, writeD | repeat, fill | holdD, writeD | bltDone},
	},
}

// lineProgram[BC] is the micro-program of a line blit. Channel A is
// never fetched in line mode.
var lineProgram = [4][8]uint16{
	// B off, C off
	{busIdle | holdA, busIdle | holdB, busIdle | holdD, busIdle | repeat, nothing, bltDone, bltDone, bltDone},
	// B off, C on, the usual case
	{busIdle | holdA, fetchC | holdB, busIdle | holdD, writeD | repeat, nothing, bltDone, bltDone, bltDone},
	// B on, C off
	{busIdle | holdA, fetchB, busIdle | holdB, busIdle | holdD, bus, busIdle | repeat, nothing, busIdle | bltDone},
	// B on, C on
	{busIdle | holdA, fetchB, fetchC | holdB, busIdle | holdD, bus, writeD | repeat, nothing, busIdle | bltDone},
}

// fakeValue is recorded on the bus by the accesses of a fake blit.
const fakeValue = 0x8888

func (b *Blitter) dmaRead(addr uint32) uint16 {
	v := b.mem.Read16(addr)
	b.bus.SetValue(b.h(), v)
	return v
}

func (b *Blitter) dmaWrite(addr uint32, v uint16) {
	b.mem.Write16(addr, v)
	b.bus.SetValue(b.h(), v)
}

// acquire performs the bus handling of a micro-instruction. It
// returns false if the instruction has to be retried in the next
// cycle.
func (b *Blitter) acquire(useBus, idle bool) bool {
	h := b.h()
	if useBus && !b.bus.Allocate(dma.Blitter, h) {
		return false
	}
	if idle && !b.bus.CanAcquire(dma.Blitter, h) {
		return false
	}
	return true
}

func (b *Blitter) scheduleIRQ() {
	if !b.birq {
		b.irq.RaiseIn(interrupts.BLIT, 1)
		b.birq = true
	}
}

// exec executes one micro-instruction of a copy blit. In fake mode,
// only the bus is operated.
func (b *Blitter) exec(instr uint16, fake bool) {
	var useBus, idle bool
	if instr&writeD != 0 {
		useBus, idle = !b.lockD, b.lockD
	} else {
		useBus, idle = instr&(fetch|bus) != 0, instr&busIdle != 0
	}

	if instr&bltDone != 0 {
		b.scheduleIRQ()
	}
	if !b.acquire(useBus, idle) {
		return
	}
	b.bltpc++

	if fake {
		if instr&(fetch|writeD) != 0 && useBus {
			b.bus.SetValue(b.h(), fakeValue)
		}
	} else {
		b.execData(instr)
	}

	if instr&repeat != 0 {
		b.iteration++
		b.lockD = false

		switch {
		case b.xCounter > 1:
			b.bltpc = 0
			b.setXCounter(b.xCounter - 1)
		case b.yCounter > 1:
			b.bltpc = 0
			b.setXCounter(b.bltsizeH)
			b.yCounter--
		default:
			b.bbusy = false
		}
	}

	if instr&bltDone != 0 {
		b.endBlit()
	}
}

// execData runs the data path of a copy micro-instruction.
func (b *Blitter) execData(instr uint16) {
	desc := b.desc()
	incr := int32(2)
	if desc {
		incr = -2
	}
	modulo := func(m int16) int32 {
		if desc {
			return -int32(m)
		}
		return int32(m)
	}

	if instr&writeD != 0 && !b.lockD {
		b.dmaWrite(b.bltdpt, b.dhold)
		b.trace.Tracef(log.Blitter, "D = %04X -> %06X", b.dhold, b.bltdpt)

		b.bltdpt = add(b.bltdpt, incr)
		if b.cntD--; b.cntD == 0 {
			b.bltdpt = add(b.bltdpt, modulo(b.bltdmod))
			b.cntD = b.bltsizeH
			b.fillCarry = b.fci()
		}
	}

	if instr&fetchA != 0 {
		b.anew = b.dmaRead(b.bltapt)
		b.bltapt = add(b.bltapt, incr)
		if b.cntA--; b.cntA == 0 {
			b.bltapt = add(b.bltapt, modulo(b.bltamod))
			b.cntA = b.bltsizeH
		}
	}

	if instr&fetchB != 0 {
		b.bnew = b.dmaRead(b.bltbpt)
		b.bltbpt = add(b.bltbpt, incr)
		if b.cntB--; b.cntB == 0 {
			b.bltbpt = add(b.bltbpt, modulo(b.bltbmod))
			b.cntB = b.bltsizeH
		}
	}

	if instr&fetchC != 0 {
		b.chold = b.dmaRead(b.bltcpt)
		b.bltcpt = add(b.bltcpt, incr)
		if b.cntC--; b.cntC == 0 {
			b.bltcpt = add(b.bltcpt, modulo(b.bltcmod))
			b.cntC = b.bltsizeH
		}
	}

	if instr&holdA != 0 {
		b.ahold = BarrelShift(b.anew&b.mask, b.aold, b.ash(), desc)
		b.aold = b.anew & b.mask
	}

	if instr&holdB != 0 {
		b.bhold = BarrelShift(b.bnew, b.bold, b.bsh(), desc)
		b.bold = b.bnew
	}

	if instr&holdD != 0 {
		b.dhold = Minterm(b.ahold, b.bhold, b.chold, b.lf())

		// the first word has no result yet
		if !b.lockD {
			if instr&fill != 0 {
				b.dhold, b.fillCarry = Fill(b.dhold, b.fillCarry, b.efe())
			}
			if b.dhold != 0 {
				b.bzero = false
			}
		}
	}
}

// execLine executes one micro-instruction of a line blit.
func (b *Blitter) execLine(instr uint16, fake bool) {
	useBus, idle := instr&(fetch|bus|writeD) != 0, instr&busIdle != 0

	if instr&bltDone != 0 {
		b.scheduleIRQ()
	}
	if !b.acquire(useBus, idle) {
		return
	}
	b.bltpc++

	if fake {
		if useBus {
			b.bus.SetValue(b.h(), fakeValue)
		}
	} else {
		b.execLineData(instr)
	}

	if instr&repeat != 0 {
		b.iteration++
		b.lockD = false

		if b.yCounter > 1 {
			b.bltpc = 0
			b.setXCounter(b.bltsizeH)
			b.yCounter--
		} else {
			b.bbusy = false
		}
		if !fake {
			b.bltdpt = b.bltcpt
		}
	}

	if instr&bltDone != 0 {
		b.endBlit()
	}
}

func (b *Blitter) execLineData(instr uint16) {
	if instr&writeD != 0 && !b.lockD {
		b.dmaWrite(b.bltdpt, b.dhold)
	}

	if instr&fetchB != 0 {
		b.bnew = b.dmaRead(b.bltbpt)
		b.bltbpt = add(b.bltbpt, int32(b.bltbmod))
	}

	if instr&fetchC != 0 {
		b.chold = b.dmaRead(b.bltcpt)
	}

	if instr&holdA != 0 {
		b.ahold = BarrelShift(b.anew&b.bltafwm, 0, b.ash(), false)
	}

	if instr&holdB != 0 {
		b.bhold = BarrelShift(b.bnew, b.bnew, b.bsh(), false)
		b.decBSH()
	}

	if instr&holdD != 0 {
		var bmask uint16
		if b.bhold&1 != 0 {
			bmask = 0xFFFF
		}
		b.dhold = Minterm(b.ahold, bmask, b.chold, b.lf())

		// with SING, only the first dot of a row is written
		sing := b.bltcon1&bltcon1SING != 0
		b.lockD = sing && !b.fillCarry || !b.useC()

		b.doLine()

		if b.dhold != 0 {
			b.bzero = false
		}
	}
}

// doLine moves the line one step. fillCarry is reused to flag a step
// to a new row.
func (b *Blitter) doLine() {
	incx := func() {
		if b.incASH() {
			b.bltcpt = add(b.bltcpt, 2)
		}
	}
	decx := func() {
		if b.decASH() {
			b.bltcpt = add(b.bltcpt, -2)
		}
	}
	incy := func() {
		b.bltcpt = add(b.bltcpt, int32(b.bltcmod))
		b.fillCarry = true
	}
	decy := func() {
		b.bltcpt = add(b.bltcpt, -int32(b.bltcmod))
		b.fillCarry = true
	}

	sign := b.bltcon1&bltcon1SIGN != 0
	aul := b.bltcon1&bltcon1AUL != 0
	sul := b.bltcon1&bltcon1SUL != 0
	b.fillCarry = false

	if b.bltcon1&bltcon1SUD != 0 {
		if aul {
			decx()
		} else {
			incx()
		}
		if !sign {
			if sul {
				decy()
			} else {
				incy()
			}
		}
	} else {
		if aul {
			decy()
		} else {
			incy()
		}
		if !sign {
			if sul {
				decx()
			} else {
				incx()
			}
		}
	}

	if b.useA() {
		if sign {
			b.bltapt = add(b.bltapt, int32(b.bltbmod))
		} else {
			b.bltapt = add(b.bltapt, int32(b.bltamod))
		}
	}

	if int16(b.bltapt) < 0 {
		b.bltcon1 |= bltcon1SIGN
	} else {
		b.bltcon1 &^= bltcon1SIGN
	}
}
