package agnus

import (
	"sort"

	"github.com/thelolagemann/goagnus/internal/dma"
	"github.com/thelolagemann/goagnus/internal/scheduler"
	"github.com/thelolagemann/goagnus/internal/types"
	"github.com/thelolagemann/goagnus/internal/types/registers"
	"github.com/thelolagemann/goagnus/pkg/bits"
	"github.com/thelolagemann/goagnus/pkg/log"
)

// BPLCON0 bits used by the chipset.
const (
	bplcon0HIRES = types.Bit15
	bplcon0LACE  = types.Bit2
)

// Register write delays in DMA cycles. A write becomes visible to
// the rest of the chipset this many cycles after the bus cycle that
// carried it.
const (
	delayDMACON   = 2
	delayBLTCON   = 2
	delayBLTSIZE  = 1
	delayBLTSIZV  = 2
	regChangeSlot = scheduler.Reg
)

// regChange is a pending register write.
type regChange struct {
	At    int64
	Reg   registers.Address
	Value uint16
}

// Read reads the custom register at reg.
func (a *Agnus) Read(reg registers.Address) (uint16, error) {
	return a.regs.Read(reg)
}

// Write writes v to the custom register at reg.
func (a *Agnus) Write(reg registers.Address, v uint16) error {
	return a.regs.Write(reg, v)
}

// Registers returns the custom register table.
func (a *Agnus) Registers() *registers.Table {
	return a.regs
}

// recordChange queues a write to reg that takes effect delay cycles
// from now.
func (a *Agnus) recordChange(delay int64, reg registers.Address, v uint16) {
	c := regChange{At: a.Scheduler.Clock() + delay, Reg: reg, Value: v}
	i := sort.Search(len(a.changes), func(i int) bool { return a.changes[i].At > c.At })
	a.changes = append(a.changes, regChange{})
	copy(a.changes[i+1:], a.changes[i:])
	a.changes[i] = c

	a.Scheduler.ScheduleAt(regChangeSlot, a.changes[0].At, 1)
}

func (a *Agnus) serviceRegEvent(scheduler.EventID) {
	now := a.Scheduler.Clock()
	n := 0
	for n < len(a.changes) && a.changes[n].At <= now {
		n++
	}
	due := append([]regChange(nil), a.changes[:n]...)
	a.changes = append(a.changes[:0], a.changes[n:]...)
	for _, c := range due {
		a.applyChange(c)
	}

	if len(a.changes) > 0 {
		a.Scheduler.ScheduleAt(regChangeSlot, a.changes[0].At, 1)
	} else {
		a.Scheduler.Cancel(regChangeSlot)
	}
}

func (a *Agnus) applyChange(c regChange) {
	switch c.Reg {
	case registers.DMACON:
		a.setDMACON(c.Value)
	case registers.BLTCON0:
		a.Blitter.SetBLTCON0(c.Value)
	case registers.BLTCON0L:
		a.Blitter.SetBLTCON0L(c.Value)
	case registers.BLTCON1:
		a.Blitter.SetBLTCON1(c.Value)
	case registers.BLTSIZE:
		a.Blitter.SetBLTSIZE(c.Value)
	case registers.BLTSIZV:
		a.Blitter.SetBLTSIZV(c.Value)
	default:
		a.log.Errorf("agnus: no delayed handler for %s", registers.Name(c.Reg))
	}
}

// setDMACON applies a DMACON write. The DMA layout of the rest of
// the current line is patched straight away.
func (a *Agnus) setDMACON(v uint16) {
	prev := a.Bus.SetDMACON(v)
	next := a.Bus.DMACON()
	if prev == next {
		return
	}
	a.trace.Tracef(log.DMA, "%s DMACON %04X -> %04X", a.Beam.Pos, prev, next)

	h := a.Beam.Pos.H
	a.Slots.UpdateDAS(next)
	a.scheduleDASFrom(h)
	if a.updateBPL() {
		a.scheduleBPLFrom(h)
	}
	a.Blitter.PokeDMACON(prev, next)
}

func (a *Agnus) dmaconr() uint16 {
	v := a.Bus.DMACON()
	if a.Blitter.IsBusy() {
		v |= dma.BBUSY
	}
	if a.Blitter.IsZero() {
		v |= dma.BZERO
	}
	return v
}

func writeFunc(fn func(v uint16)) registers.HardwareOpt {
	return registers.WithWriteFunc(func(_ *registers.Hardware, _ registers.Address, v uint16) {
		fn(v)
	})
}

func readFunc(fn func() uint16) registers.HardwareOpt {
	return registers.WithReadFunc(func(*registers.Hardware, registers.Address) uint16 {
		return fn()
	})
}

func (a *Agnus) delayed(delay int64) registers.HardwareOpt {
	return registers.WithWriteFunc(func(_ *registers.Hardware, reg registers.Address, v uint16) {
		a.recordChange(delay, reg, v)
	})
}

// pointer registers a pointer register pair, the low word being
// word aligned.
func (a *Agnus) pointer(hi registers.Address, p *uint32) {
	a.regs.Register(hi, writeFunc(func(v uint16) { *p = bits.ReplaceHi(*p, v) }))
	a.regs.Register(hi+2, writeFunc(func(v uint16) { *p = bits.ReplaceLo(*p, v&0xFFFE) }))
}

func (a *Agnus) registerAll() {
	regs := a.regs

	a.Copper.Register(regs)
	a.Blitter.Register(regs)

	regs.Register(registers.DMACON, a.delayed(delayDMACON))
	regs.Register(registers.DMACONR, readFunc(a.dmaconr))
	regs.Register(registers.BLTCON0, a.delayed(delayBLTCON))
	regs.Register(registers.BLTCON1, a.delayed(delayBLTCON))
	regs.Register(registers.BLTSIZE, a.delayed(delayBLTSIZE))
	regs.Register(registers.BLTCON0L, a.delayed(delayBLTCON))
	regs.Register(registers.BLTSIZV, a.delayed(delayBLTSIZV))

	regs.Register(registers.VPOSR, readFunc(func() uint16 { return a.Beam.VPOSR(a.revision) }))
	regs.Register(registers.VHPOSR, readFunc(a.Beam.VHPOSR))
	regs.Register(registers.VPOSW, writeFunc(func(v uint16) {
		a.Beam.SetLOF(v&types.Bit15 != 0)
	}))
	regs.Register(registers.VHPOSW, writeFunc(func(v uint16) {
		a.trace.Tracef(log.Beam, "%s VHPOSW %04X ignored", a.Beam.Pos, v)
	}))
	regs.Register(registers.NOOP, registers.Strobe(func() {}))

	// bitplanes
	regs.Register(registers.BPLCON0, writeFunc(func(v uint16) {
		a.bplcon0 = v
		a.Beam.SetInterlaced(v&bplcon0LACE != 0)
	}))
	regs.Register(registers.DIWSTRT, writeFunc(func(v uint16) { a.diwstrt = v }))
	regs.Register(registers.DIWSTOP, writeFunc(func(v uint16) { a.diwstop = v }))
	regs.Register(registers.DDFSTRT, writeFunc(func(v uint16) { a.ddfstrt = v & 0xFC }))
	regs.Register(registers.DDFSTOP, writeFunc(func(v uint16) { a.ddfstop = v & 0xFC }))
	regs.Register(registers.BPL1MOD, writeFunc(func(v uint16) { a.bpl1mod = int16(v & 0xFFFE) }))
	regs.Register(registers.BPL2MOD, writeFunc(func(v uint16) { a.bpl2mod = int16(v & 0xFFFE) }))
	for p := range a.bplpt {
		a.pointer(registers.BPL1PTH+registers.Address(p)*4, &a.bplpt[p])
	}

	// sprites
	for n := range a.sprpt {
		n := n
		a.pointer(registers.SPR0PTH+registers.Address(n)*4, &a.sprpt[n])
		regs.Register(registers.SPR0POS+registers.Address(n)*8, writeFunc(func(v uint16) { a.setSprPOS(n, v) }))
		regs.Register(registers.SPR0CTL+registers.Address(n)*8, writeFunc(func(v uint16) { a.setSprCTL(n, v) }))
	}

	// audio and disk
	for ch := range a.audlc {
		a.pointer(registers.AUD0LCH+registers.Address(ch)*0x10, &a.audlc[ch])
	}
	a.pointer(registers.DSKPTH, &a.dskpt)

	for c := registers.COLOR00; c <= registers.COLOR31; c += 2 {
		regs.Register(c, registers.WithWriteFunc(func(_ *registers.Hardware, reg registers.Address, v uint16) {
			a.colors.RecordColorChange(4*a.Beam.Pos.H, reg, v)
		}))
	}
}

func (a *Agnus) setSprPOS(n int, v uint16) {
	a.sprpos[n] = v
	if a.sprites != nil {
		a.sprites.SpriteWord(n, registers.SPR0POS+registers.Address(n)*8, v)
	}
}

func (a *Agnus) setSprCTL(n int, v uint16) {
	a.sprctl[n] = v
	a.sprVStop[n] = int(v>>8) | int(v&types.Bit1)<<7
	if a.sprites != nil {
		a.sprites.SpriteWord(n, registers.SPR0CTL+registers.Address(n)*8, v)
	}
}

// sprVStrt returns the first line of sprite n.
func (a *Agnus) sprVStrt(n int) int {
	return int(a.sprpos[n]>>8) | int(a.sprctl[n]&types.Bit2)<<6
}

// ReloadAudioPointer copies AUDxLC into the DMA pointer of channel
// ch. Paula calls it when a channel starts or loops.
func (a *Agnus) ReloadAudioPointer(ch int) {
	a.audpt[ch] = a.audlc[ch]
}
