package blitter

import (
	"github.com/thelolagemann/goagnus/internal/scheduler"
	"github.com/thelolagemann/goagnus/internal/types"
	"github.com/thelolagemann/goagnus/internal/types/registers"
	"github.com/thelolagemann/goagnus/pkg/bits"
	"github.com/thelolagemann/goagnus/pkg/log"
)

// BLTCON1 bits.
const (
	bltcon1LINE = types.Bit0
	bltcon1DESC = types.Bit1 // copy mode
	bltcon1SING = types.Bit1 // line mode
	bltcon1FCI  = types.Bit2 // copy mode
	bltcon1AUL  = types.Bit2 // line mode
	bltcon1IFE  = types.Bit3 // copy mode
	bltcon1SUL  = types.Bit3 // line mode
	bltcon1EFE  = types.Bit4 // copy mode
	bltcon1SUD  = types.Bit4 // line mode
	bltcon1SIGN = types.Bit6 // line mode
)

func (b *Blitter) ash() uint16 { return b.bltcon0 >> 12 }
func (b *Blitter) bsh() uint16 { return b.bltcon1 >> 12 }
func (b *Blitter) lf() uint8   { return uint8(b.bltcon0) }

// use returns the channel enable bits ABCD.
func (b *Blitter) use() uint16   { return b.bltcon0 >> 8 & 0xF }
func (b *Blitter) useBC() uint16 { return b.bltcon0 >> 9 & 0b11 }
func (b *Blitter) useA() bool    { return b.bltcon0&types.Bit11 != 0 }
func (b *Blitter) useB() bool    { return b.bltcon0&types.Bit10 != 0 }
func (b *Blitter) useC() bool    { return b.bltcon0&types.Bit9 != 0 }
func (b *Blitter) useD() bool    { return b.bltcon0&types.Bit8 != 0 }

func (b *Blitter) line() bool { return b.bltcon1&bltcon1LINE != 0 }
func (b *Blitter) desc() bool { return b.bltcon1&bltcon1DESC != 0 }
func (b *Blitter) fci() bool  { return b.bltcon1&bltcon1FCI != 0 }
func (b *Blitter) efe() bool  { return b.bltcon1&bltcon1EFE != 0 }

func (b *Blitter) fillEnabled() bool {
	return b.bltcon1&(bltcon1IFE|bltcon1EFE) != 0
}

func (b *Blitter) fillIndex() int {
	if b.fillEnabled() {
		return 1
	}
	return 0
}

func (b *Blitter) setASH(v uint16) { b.bltcon0 = b.bltcon0&0x0FFF | v<<12 }
func (b *Blitter) setBSH(v uint16) { b.bltcon1 = b.bltcon1&0x0FFF | v<<12 }

// incASH increments ASH and returns true if it wrapped.
func (b *Blitter) incASH() bool {
	if b.bltcon0&0xF000 == 0xF000 {
		b.bltcon0 &= 0x0FFF
		return true
	}
	b.bltcon0 += 0x1000
	return false
}

// decASH decrements ASH and returns true if it wrapped.
func (b *Blitter) decASH() bool {
	if b.bltcon0&0xF000 == 0 {
		b.bltcon0 |= 0xF000
		return true
	}
	b.bltcon0 -= 0x1000
	return false
}

func (b *Blitter) decBSH() {
	b.bltcon1 -= 0x1000
}

func (b *Blitter) isFirstWord() bool { return b.xCounter == b.bltsizeH }
func (b *Blitter) isLastWord() bool  { return b.xCounter == 1 }

func (b *Blitter) setXCounter(v uint16) {
	b.xCounter = v
	b.mask = 0xFFFF
	if b.isFirstWord() {
		b.mask &= b.bltafwm
	}
	if b.isLastWord() {
		b.mask &= b.bltalwm
	}
}

func (b *Blitter) resetCounters() {
	b.setXCounter(b.bltsizeH)
	b.yCounter = b.bltsizeV
}

func (b *Blitter) warnRunning(reg registers.Address) {
	if b.running {
		b.trace.Tracef(log.Blitter, "%s written while the blitter is running", registers.Name(reg))
	}
}

// Register registers the blitter registers that take effect
// immediately. BLTCON0, BLTCON0L, BLTCON1, BLTSIZE and BLTSIZV are
// written with a delay by the chipset through the Set methods.
func (b *Blitter) Register(regs *registers.Table) {
	ptr := func(hi, lo registers.Address, p *uint32) {
		regs.Register(hi, registers.WithWriteFunc(func(_ *registers.Hardware, a registers.Address, v uint16) {
			b.warnRunning(a)
			*p = bits.ReplaceHi(*p, v)
		}))
		regs.Register(lo, registers.WithWriteFunc(func(_ *registers.Hardware, a registers.Address, v uint16) {
			b.warnRunning(a)
			*p = bits.ReplaceLo(*p, v&0xFFFE)
		}))
	}
	ptr(registers.BLTAPTH, registers.BLTAPTL, &b.bltapt)
	ptr(registers.BLTBPTH, registers.BLTBPTL, &b.bltbpt)
	ptr(registers.BLTCPTH, registers.BLTCPTL, &b.bltcpt)
	ptr(registers.BLTDPTH, registers.BLTDPTL, &b.bltdpt)

	mod := func(a registers.Address, p *int16) {
		regs.Register(a, registers.WithWriteFunc(func(_ *registers.Hardware, a registers.Address, v uint16) {
			b.warnRunning(a)
			*p = int16(v & 0xFFFE)
		}))
	}
	mod(registers.BLTAMOD, &b.bltamod)
	mod(registers.BLTBMOD, &b.bltbmod)
	mod(registers.BLTCMOD, &b.bltcmod)
	mod(registers.BLTDMOD, &b.bltdmod)

	regs.Register(registers.BLTAFWM, registers.WithWriteFunc(func(_ *registers.Hardware, a registers.Address, v uint16) {
		b.warnRunning(a)
		b.bltafwm = v
	}))
	regs.Register(registers.BLTALWM, registers.WithWriteFunc(func(_ *registers.Hardware, a registers.Address, v uint16) {
		b.warnRunning(a)
		b.bltalwm = v
	}))
	regs.Register(registers.BLTADAT, registers.WithWriteFunc(func(_ *registers.Hardware, _ registers.Address, v uint16) {
		b.PokeBLTADAT(v)
	}))
	regs.Register(registers.BLTBDAT, registers.WithWriteFunc(func(_ *registers.Hardware, _ registers.Address, v uint16) {
		b.PokeBLTBDAT(v)
	}))
	regs.Register(registers.BLTCDAT, registers.WithWriteFunc(func(_ *registers.Hardware, _ registers.Address, v uint16) {
		b.PokeBLTCDAT(v)
	}))
	regs.Register(registers.BLTSIZH, registers.WithWriteFunc(func(_ *registers.Hardware, _ registers.Address, v uint16) {
		b.PokeBLTSIZH(v)
	}))
}

// SetBLTCON0 writes BLTCON0.
func (b *Blitter) SetBLTCON0(v uint16) {
	b.trace.Tracef(log.Blitter, "BLTCON0 %04X", v)
	b.warnRunning(registers.BLTCON0)
	b.bltcon0 = v
}

// SetBLTCON0L writes the lower byte of BLTCON0. ECS only.
func (b *Blitter) SetBLTCON0L(v uint16) {
	if b.revision == types.OCS {
		return
	}
	b.trace.Tracef(log.Blitter, "BLTCON0L %04X", v)
	b.warnRunning(registers.BLTCON0L)
	b.bltcon0 = b.bltcon0&0xFF00 | v&0x00FF
}

// SetBLTCON1 writes BLTCON1.
func (b *Blitter) SetBLTCON1(v uint16) {
	b.trace.Tracef(log.Blitter, "BLTCON1 %04X", v)
	b.warnRunning(registers.BLTCON1)
	b.bltcon1 = v
}

// SetBLTSIZE writes BLTSIZE, which starts a blit. A height of 0
// means 1024 rows and a width of 0 means 64 words.
func (b *Blitter) SetBLTSIZE(v uint16) {
	b.trace.Tracef(log.Blitter, "BLTSIZE %04X", v)
	b.warnRunning(registers.BLTSIZE)
	b.flushPending()

	b.bltsizeV = v >> 6
	b.bltsizeH = v & 0x3F
	if b.bltsizeV == 0 {
		b.bltsizeV = 0x400
	}
	if b.bltsizeH == 0 {
		b.bltsizeH = 0x40
	}
	b.start()
}

// SetBLTSIZV writes the ECS height register.
func (b *Blitter) SetBLTSIZV(v uint16) {
	if b.revision == types.OCS {
		return
	}
	b.trace.Tracef(log.Blitter, "BLTSIZV %04X", v)
	b.warnRunning(registers.BLTSIZV)
	b.bltsizeV = v & 0x7FFF
}

// PokeBLTSIZH writes the ECS width register, which starts a blit
// with the height last written to BLTSIZV. A width of 0 means 2048
// words and a height of 0 means 32768 rows.
func (b *Blitter) PokeBLTSIZH(v uint16) {
	if b.revision == types.OCS {
		return
	}
	b.trace.Tracef(log.Blitter, "BLTSIZH %04X", v)
	b.warnRunning(registers.BLTSIZH)
	b.flushPending()

	b.bltsizeH = v & 0x07FF
	if b.bltsizeV == 0 {
		b.bltsizeV = 0x8000
	}
	if b.bltsizeH == 0 {
		b.bltsizeH = 0x0800
	}
	b.start()
}

// flushPending runs the pending micro-instruction of a running blit
// before the blit is overwritten.
func (b *Blitter) flushPending() {
	if b.running && b.s.Has(scheduler.Blt) {
		b.serviceEvent(b.s.ID(scheduler.Blt))
	}
}

func (b *Blitter) start() {
	if b.s.Has(scheduler.Blt) {
		b.trace.Tracef(log.Blitter, "overwriting pending %s", EventName(b.s.ID(scheduler.Blt)))
	}
	b.running = true
	b.s.ScheduleRel(scheduler.Blt, 1, Strt1)
}

// PokeBLTADAT writes the A data register.
func (b *Blitter) PokeBLTADAT(v uint16) {
	b.warnRunning(registers.BLTADAT)
	b.anew = v
}

// PokeBLTBDAT writes the B data register. Unlike BLTADAT, this runs
// the B barrel shifter.
func (b *Blitter) PokeBLTBDAT(v uint16) {
	b.warnRunning(registers.BLTBDAT)
	b.bnew = v
	b.bhold = BarrelShift(b.bnew, b.bold, b.bsh(), b.desc())
	b.bold = b.bnew
}

// PokeBLTCDAT writes the C data register.
func (b *Blitter) PokeBLTCDAT(v uint16) {
	b.warnRunning(registers.BLTCDAT)
	b.chold = v
}
