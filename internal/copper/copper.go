// Package copper implements the copper, the display list coprocessor
// that moves values into custom registers in sync with the beam.
//
// The copper is a state machine driven by the COP event slot. Every
// state that touches the bus first checks that the cycle is free,
// and otherwise retries in the next cycle. A WAIT is not polled:
// the copper computes the first beam position that satisfies the
// wait condition and sleeps until two cycles before it.
package copper

import (
	"github.com/thelolagemann/goagnus/internal/beam"
	"github.com/thelolagemann/goagnus/internal/dma"
	"github.com/thelolagemann/goagnus/internal/memory"
	"github.com/thelolagemann/goagnus/internal/scheduler"
	"github.com/thelolagemann/goagnus/internal/types"
	"github.com/thelolagemann/goagnus/internal/types/registers"
	"github.com/thelolagemann/goagnus/pkg/bits"
	"github.com/thelolagemann/goagnus/pkg/log"
)

// Scheduler is the part of the event scheduler the copper drives its
// state machine with.
type Scheduler interface {
	ScheduleRel(slot scheduler.Slot, delta int64, id scheduler.EventID)
	ScheduleAt(slot scheduler.Slot, cycle int64, id scheduler.EventID)
	Reschedule(slot scheduler.Slot, delta int64)
	Cancel(slot scheduler.Slot)
	HasEvent(slot scheduler.Slot, id scheduler.EventID) bool
	ID(slot scheduler.Slot) scheduler.EventID
	Data(slot scheduler.Slot) int64
	SetData(slot scheduler.Slot, data int64)
	RegisterHandler(slot scheduler.Slot, fn scheduler.Handler)
}

// Bus is the chip bus arbiter.
type Bus interface {
	CanAcquire(o dma.Owner, h int) bool
	Allocate(o dma.Owner, h int) bool
	Owner(h int) dma.Owner
	Enabled(o dma.Owner) bool
}

// Beam is the beam tracker.
type Beam interface {
	Position() beam.Position
	NumLines() int
}

// Chipset performs the copper's DMA reads and register writes.
type Chipset interface {
	// CopperRead reads an instruction word over the bus in the
	// current cycle.
	CopperRead(addr uint32) uint16
	// CopperWrite writes a custom register on behalf of the copper.
	CopperWrite(reg registers.Address, value uint16)
}

// ColorRecorder receives colour register writes, which take effect
// at a pixel position rather than immediately.
type ColorRecorder interface {
	RecordColorChange(pixel int, reg registers.Address, value uint16)
}

// BlitterStatus reports whether a blit is in progress.
type BlitterStatus interface {
	IsActive() bool
}

// Copper is the copper coprocessor.
type Copper struct {
	cop1lc, cop2lc   uint32 // list start addresses
	cop1end, cop2end uint32 // highest address executed in each list
	cop1ins, cop2ins uint16 // instruction registers

	pc  uint32 // program counter
	pc0 uint32 // program counter at the last fetch

	list              int  // active list, 1 or 2
	cdang             bool // allow access to the blitter registers
	skip              bool // the next MOVE is skipped
	activeInThisFrame bool // copper DMA was on at the start of the frame

	s       Scheduler
	bus     Bus
	beam    Beam
	chipset Chipset
	mem     memory.Bus
	colors  ColorRecorder
	blitter BlitterStatus

	revision types.Revision
	log      log.Logger
	trace    *log.Config
}

// Opt configures a Copper.
type Opt func(*Copper)

// WithLogger sets the logger.
func WithLogger(l log.Logger) Opt {
	return func(c *Copper) {
		c.log = l
	}
}

// WithTrace sets the trace configuration.
func WithTrace(t *log.Config) Opt {
	return func(c *Copper) {
		c.trace = t
	}
}

// WithRevision sets the chipset revision, which decides the range
// of registers the copper may write with CDANG set.
func WithRevision(r types.Revision) Opt {
	return func(c *Copper) {
		c.revision = r
	}
}

// WithColorRecorder sets where colour register writes go.
func WithColorRecorder(r ColorRecorder) Opt {
	return func(c *Copper) {
		c.colors = r
	}
}

// WithBlitter sets the blitter a WAIT synchronises with.
func WithBlitter(b BlitterStatus) Opt {
	return func(c *Copper) {
		c.blitter = b
	}
}

type idleBlitter struct{}

func (idleBlitter) IsActive() bool { return false }

type discardColors struct{}

func (discardColors) RecordColorChange(int, registers.Address, uint16) {}

// New returns a copper in its power-on state. It stays idle until
// the first vertical blank, and registers its handler in the COP
// slot of s.
func New(s Scheduler, bus Bus, b Beam, chipset Chipset, mem memory.Bus, opts ...Opt) *Copper {
	c := &Copper{
		s:       s,
		bus:     bus,
		beam:    b,
		chipset: chipset,
		mem:     mem,
		colors:  discardColors{},
		blitter: idleBlitter{},
		log:     log.NewNullLogger(),
		list:    1,
	}
	for _, opt := range opts {
		opt(c)
	}
	s.RegisterHandler(scheduler.Cop, c.serviceEvent)
	return c
}

// Register registers the copper's registers in regs.
func (c *Copper) Register(regs *registers.Table) {
	regs.Register(registers.COPCON, registers.WithWriteFunc(func(_ *registers.Hardware, _ registers.Address, v uint16) {
		c.PokeCOPCON(v)
	}))
	regs.Register(registers.COP1LCH, registers.WithWriteFunc(func(_ *registers.Hardware, _ registers.Address, v uint16) {
		c.PokeCOP1LCH(v)
	}))
	regs.Register(registers.COP1LCL, registers.WithWriteFunc(func(_ *registers.Hardware, _ registers.Address, v uint16) {
		c.PokeCOP1LCL(v)
	}))
	regs.Register(registers.COP2LCH, registers.WithWriteFunc(func(_ *registers.Hardware, _ registers.Address, v uint16) {
		c.PokeCOP2LCH(v)
	}))
	regs.Register(registers.COP2LCL, registers.WithWriteFunc(func(_ *registers.Hardware, _ registers.Address, v uint16) {
		c.PokeCOP2LCL(v)
	}))
	regs.Register(registers.COPJMP1, registers.Strobe(func() { c.PokeCOPJMP(1) }))
	regs.Register(registers.COPJMP2, registers.Strobe(func() { c.PokeCOPJMP(2) }))
	regs.Register(registers.COPINS, registers.WithWriteFunc(func(_ *registers.Hardware, _ registers.Address, v uint16) {
		c.PokeCOPINS(v)
	}))
}

// PokeCOPCON writes COPCON. Bit 1 (CDANG) allows the copper to
// write the blitter registers.
func (c *Copper) PokeCOPCON(v uint16) {
	c.trace.Tracef(log.CopperRegs, "COPCON %04X", v)
	c.cdang = v&0b10 != 0
}

// PokeCOP1LCH writes the upper word of the list 1 start address.
func (c *Copper) PokeCOP1LCH(v uint16) {
	c.trace.Tracef(log.CopperRegs, "COP1LCH %04X", v)
	c.setCop1LC(bits.ReplaceHi(c.cop1lc, v))
}

// PokeCOP1LCL writes the lower word of the list 1 start address.
func (c *Copper) PokeCOP1LCL(v uint16) {
	c.trace.Tracef(log.CopperRegs, "COP1LCL %04X", v)
	c.setCop1LC(bits.ReplaceLo(c.cop1lc, v&0xFFFE))
}

func (c *Copper) setCop1LC(addr uint32) {
	if addr == c.cop1lc {
		return
	}
	c.cop1lc = addr
	c.cop1end = addr

	// a copper that is not running picks up the new list at once
	if !c.activeInThisFrame {
		c.pc = addr
	}
}

// PokeCOP2LCH writes the upper word of the list 2 start address.
func (c *Copper) PokeCOP2LCH(v uint16) {
	c.trace.Tracef(log.CopperRegs, "COP2LCH %04X", v)
	if addr := bits.ReplaceHi(c.cop2lc, v); addr != c.cop2lc {
		c.cop2lc = addr
		c.cop2end = addr
	}
}

// PokeCOP2LCL writes the lower word of the list 2 start address.
func (c *Copper) PokeCOP2LCL(v uint16) {
	c.trace.Tracef(log.CopperRegs, "COP2LCL %04X", v)
	if addr := bits.ReplaceLo(c.cop2lc, v&0xFFFE); addr != c.cop2lc {
		c.cop2lc = addr
		c.cop2end = addr
	}
}

// PokeCOPJMP restarts the copper at the start of list nr, as done by
// a CPU write to COPJMP1 or COPJMP2. Jumps executed by the copper
// itself go through the JMP states instead.
func (c *Copper) PokeCOPJMP(nr int) {
	c.trace.Tracef(log.CopperRegs, "COPJMP%d: jumping to $%06X", nr, c.listStart(nr))
	c.switchToList(nr)
}

// PokeCOPINS writes the first instruction register.
func (c *Copper) PokeCOPINS(v uint16) {
	c.trace.Tracef(log.CopperRegs, "COPINS %04X at $%06X", v, c.pc)
	c.cop1ins = v
}

func (c *Copper) listStart(nr int) uint32 {
	if nr == 2 {
		return c.cop2lc
	}
	return c.cop1lc
}

// switchToList loads the program counter with the start of list nr
// and requests the bus.
func (c *Copper) switchToList(nr int) {
	c.list = nr
	c.pc = c.listStart(nr)
	c.s.ScheduleRel(scheduler.Cop, 0, ReqDMA)
}

func (c *Copper) advancePC() {
	c.pc += 2
	switch {
	case c.list == 1 && c.pc > c.cop1end:
		c.cop1end = c.pc
	case c.list == 2 && c.pc > c.cop2end:
		c.cop2end = c.pc
	}
}

// VsyncHandler restarts the copper at list 1, whatever it is doing.
func (c *Copper) VsyncHandler() {
	c.s.ScheduleRel(scheduler.Cop, 0, VBlank)
}

// BlitterDidTerminate wakes up a copper that is waiting for the
// blitter, in the next even cycle.
func (c *Copper) BlitterDidTerminate() {
	if !c.s.HasEvent(scheduler.Cop, WaitBlit) {
		return
	}
	if c.beam.Position().H&1 == 0 {
		c.serviceEvent(WaitBlit)
	} else {
		c.s.ScheduleRel(scheduler.Cop, 1, WaitBlit)
	}
}

// IsIllegalAddress returns true if the copper may not write reg.
// With CDANG set, the OCS copper may write everything from $040 and
// the ECS copper everything; otherwise only from $080.
func (c *Copper) IsIllegalAddress(reg registers.Address) bool {
	if c.cdang {
		return c.revision == types.OCS && reg < 0x40
	}
	return reg < 0x80
}

// PC returns the program counter.
func (c *Copper) PC() uint32 {
	return c.pc
}

// Reset puts the copper into its power-on state.
func (c *Copper) Reset() {
	*c = Copper{
		s: c.s, bus: c.bus, beam: c.beam, chipset: c.chipset, mem: c.mem,
		colors: c.colors, blitter: c.blitter, revision: c.revision, log: c.log, trace: c.trace,
		list: 1,
	}
	c.s.Cancel(scheduler.Cop)
}

var _ types.Stater = (*Copper)(nil)

// Load implements the types.Stater interface.
//
// The values are loaded in the following order:
//   - cop1lc, cop2lc (uint32)
//   - cop1end, cop2end (uint32)
//   - cop1ins, cop2ins (uint16)
//   - pc, pc0 (uint32)
//   - list (uint8)
//   - cdang, skip, activeInThisFrame (bool)
func (c *Copper) Load(s *types.State) {
	c.cop1lc, c.cop2lc = s.Read32(), s.Read32()
	c.cop1end, c.cop2end = s.Read32(), s.Read32()
	c.cop1ins, c.cop2ins = s.Read16(), s.Read16()
	c.pc, c.pc0 = s.Read32(), s.Read32()
	c.list = int(s.Read8())
	c.cdang = s.ReadBool()
	c.skip = s.ReadBool()
	c.activeInThisFrame = s.ReadBool()
}

// Save implements the types.Stater interface.
//
// The values are saved in the following order:
//   - cop1lc, cop2lc (uint32)
//   - cop1end, cop2end (uint32)
//   - cop1ins, cop2ins (uint16)
//   - pc, pc0 (uint32)
//   - list (uint8)
//   - cdang, skip, activeInThisFrame (bool)
func (c *Copper) Save(s *types.State) {
	s.Write32(c.cop1lc)
	s.Write32(c.cop2lc)
	s.Write32(c.cop1end)
	s.Write32(c.cop2end)
	s.Write16(c.cop1ins)
	s.Write16(c.cop2ins)
	s.Write32(c.pc)
	s.Write32(c.pc0)
	s.Write8(uint8(c.list))
	s.WriteBool(c.cdang)
	s.WriteBool(c.skip)
	s.WriteBool(c.activeInThisFrame)
}
