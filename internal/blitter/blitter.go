// Package blitter implements the blitter, the block transfer and line
// drawing unit.
//
// A blit can run in one of three accuracy levels. The fast level
// computes the whole blit at once when it starts. The slow level runs
// a micro-program in the BLT slot, one micro-instruction per DMA
// cycle, competing for the bus like the real hardware. The fake level
// computes the blit at once like the fast level, then runs the slow
// micro-programs with their bus accesses only, to get the timing
// right.
package blitter

import (
	"fmt"

	"github.com/thelolagemann/goagnus/internal/beam"
	"github.com/thelolagemann/goagnus/internal/dma"
	"github.com/thelolagemann/goagnus/internal/interrupts"
	"github.com/thelolagemann/goagnus/internal/memory"
	"github.com/thelolagemann/goagnus/internal/scheduler"
	"github.com/thelolagemann/goagnus/internal/types"
	"github.com/thelolagemann/goagnus/pkg/log"
)

// Accuracy selects how blits are emulated.
type Accuracy uint8

const (
	// Fast performs the whole blit when it starts.
	Fast Accuracy = iota
	// Fake performs the whole blit when it starts, and then runs
	// the bus accesses of the micro-program.
	Fake
	// Slow runs the micro-program cycle by cycle.
	Slow
)

var accuracyNames = [...]string{Fast: "fast", Fake: "fake", Slow: "slow"}

func (a Accuracy) String() string {
	if int(a) < len(accuracyNames) {
		return accuracyNames[a]
	}
	return fmt.Sprintf("Accuracy(%d)", a)
}

// ParseAccuracy returns the accuracy level with the given name.
func ParseAccuracy(s string) (Accuracy, error) {
	for i, n := range accuracyNames {
		if n == s {
			return Accuracy(i), nil
		}
	}
	return 0, fmt.Errorf("blitter: unknown accuracy %q", s)
}

// Events of the BLT slot.
const (
	Strt1 scheduler.EventID = iota + 1
	Strt2
	CopySlow
	CopyFake
	LineSlow
	LineFake
)

var eventNames = [...]string{
	Strt1:    "STRT1",
	Strt2:    "STRT2",
	CopySlow: "COPY_SLOW",
	CopyFake: "COPY_FAKE",
	LineSlow: "LINE_SLOW",
	LineFake: "LINE_FAKE",
}

// EventName returns the name of a BLT slot event.
func EventName(id scheduler.EventID) string {
	if int(id) < len(eventNames) && eventNames[id] != "" {
		return eventNames[id]
	}
	if id == scheduler.None {
		return "IDLE"
	}
	return fmt.Sprintf("BLT_%d", id)
}

// Scheduler is the part of the event scheduler the blitter uses.
type Scheduler interface {
	ScheduleRel(slot scheduler.Slot, delta int64, id scheduler.EventID)
	ScheduleAt(slot scheduler.Slot, cycle int64, id scheduler.EventID)
	Cancel(slot scheduler.Slot)
	Has(slot scheduler.Slot) bool
	HasEvent(slot scheduler.Slot, id scheduler.EventID) bool
	ID(slot scheduler.Slot) scheduler.EventID
	RegisterHandler(slot scheduler.Slot, fn scheduler.Handler)
}

// Bus is the chip bus arbiter.
type Bus interface {
	CanAcquire(o dma.Owner, h int) bool
	Allocate(o dma.Owner, h int) bool
	Enabled(o dma.Owner) bool
	SetValue(h int, value uint16)
}

// Beam is the beam tracker.
type Beam interface {
	Position() beam.Position
}

// Interrupts is the interrupt sink the blitter signals completion to.
type Interrupts interface {
	Raise(src interrupts.Source)
	RaiseIn(src interrupts.Source, delay int64)
}

// Listener is told when a blit has terminated.
type Listener interface {
	BlitterDidTerminate()
}

// Blitter is the blitter.
type Blitter struct {
	bltcon0, bltcon1                   uint16
	bltapt, bltbpt, bltcpt, bltdpt     uint32
	bltafwm, bltalwm                   uint16
	bltamod, bltbmod, bltcmod, bltdmod int16
	bltsizeH, bltsizeV                 uint16

	// data path
	anew, bnew   uint16
	aold, bold   uint16
	ahold, bhold uint16
	chold, dhold uint16
	mask         uint16

	// micro-program state
	bltpc              int
	iteration          int64
	xCounter, yCounter uint16
	cntA, cntB         uint16
	cntC, cntD         uint16
	lockD              bool
	fillCarry          bool

	running bool // a blit has been started and not ended
	bbusy   bool
	bzero   bool
	birq    bool // the BLIT interrupt of this blit has been scheduled

	accuracy Accuracy
	Stats    Stats

	s        Scheduler
	bus      Bus
	beam     Beam
	mem      memory.Bus
	irq      Interrupts
	listener Listener

	revision types.Revision
	log      log.Logger
	trace    *log.Config
}

// Stats counts the blits performed.
type Stats struct {
	Copies, Lines int64 // since reset
	Frame         int   // blits started in the current frame
	LastFrame     int   // blits started in the previous frame
}

// Opt configures a Blitter.
type Opt func(*Blitter)

// WithLogger sets the logger.
func WithLogger(l log.Logger) Opt {
	return func(b *Blitter) {
		b.log = l
	}
}

// WithTrace sets the trace configuration.
func WithTrace(t *log.Config) Opt {
	return func(b *Blitter) {
		b.trace = t
	}
}

// WithAccuracy sets the accuracy level.
func WithAccuracy(a Accuracy) Opt {
	return func(b *Blitter) {
		b.accuracy = a
	}
}

// WithRevision sets the chipset revision. The ECS registers are
// ignored on an OCS chipset.
func WithRevision(r types.Revision) Opt {
	return func(b *Blitter) {
		b.revision = r
	}
}

// New returns a blitter and registers its handler in the BLT slot of s.
func New(s Scheduler, bus Bus, bm Beam, mem memory.Bus, irq Interrupts, opts ...Opt) *Blitter {
	b := &Blitter{
		s:        s,
		bus:      bus,
		beam:     bm,
		mem:      mem,
		irq:      irq,
		accuracy: Slow,
		log:      log.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	s.RegisterHandler(scheduler.Blt, b.serviceEvent)
	return b
}

// SetListener sets who is told about the end of a blit. This is the
// copper, which may be waiting for the blitter.
func (b *Blitter) SetListener(l Listener) {
	b.listener = l
}

// Accuracy returns the accuracy level.
func (b *Blitter) Accuracy() Accuracy {
	return b.accuracy
}

// SetAccuracy changes the accuracy level. It takes effect with the
// next blit.
func (b *Blitter) SetAccuracy(a Accuracy) {
	b.accuracy = a
}

// IsActive returns true while a blit is in progress.
func (b *Blitter) IsActive() bool {
	return b.running
}

// IsBusy returns the BBUSY flag.
func (b *Blitter) IsBusy() bool {
	return b.bbusy
}

// IsZero returns the BZERO flag.
func (b *Blitter) IsZero() bool {
	return b.bzero
}

func (b *Blitter) h() int {
	return b.beam.Position().H
}

func (b *Blitter) serviceEvent(id scheduler.EventID) {
	switch id {
	case Strt1:
		b.prepareBlit()

		// postpone the blit while blitter DMA is off
		if !b.bus.Enabled(dma.Blitter) {
			b.s.ScheduleAt(scheduler.Blt, scheduler.Never, Strt1)
			return
		}
		if !b.bus.CanAcquire(dma.Blitter, b.h()) {
			b.trace.Tracef(log.BlitterTiming, "%s STRT1 blocked", b.beam.Position())
			return
		}
		b.s.ScheduleRel(scheduler.Blt, 1, Strt2)

	case Strt2:
		if !b.bus.CanAcquire(dma.Blitter, b.h()) {
			b.trace.Tracef(log.BlitterTiming, "%s STRT2 blocked", b.beam.Position())
			return
		}
		b.beginBlit()

	case CopySlow:
		b.exec(copyProgram[b.use()][b.fillIndex()][b.bltpc], false)

	case CopyFake:
		b.exec(copyProgram[b.use()][b.fillIndex()][b.bltpc], true)

	case LineSlow:
		b.execLine(lineProgram[b.useBC()][b.bltpc], false)

	case LineFake:
		b.execLine(lineProgram[b.useBC()][b.bltpc], true)

	default:
		if types.Debug {
			panic(fmt.Sprintf("blitter: unexpected event %d", id))
		}
		b.log.Errorf("blitter: unexpected event %d, cancelling", id)
		b.s.Cancel(scheduler.Blt)
	}
}

func (b *Blitter) prepareBlit() {
	b.cntA, b.cntB, b.cntC, b.cntD = b.bltsizeH, b.bltsizeH, b.bltsizeH, b.bltsizeH
	b.running = true
	b.bzero = true
	b.bbusy = true
	b.birq = false
	b.bltpc = 0
	b.iteration = 0
}

func (b *Blitter) beginBlit() {
	b.Stats.Frame++

	if b.line() {
		b.Stats.Lines++
		b.trace.Tracef(log.BlitterTiming, "%s line blit %dx%d %s", b.beam.Position(), b.bltsizeH, b.bltsizeV, b.accuracy)

		switch b.accuracy {
		case Fast:
			b.fastLine()
			b.finishNow()
		case Fake:
			b.fastLine()
			b.resetCounters()
			b.lockD = true
			b.s.ScheduleRel(scheduler.Blt, 1, LineFake)
		default:
			b.resetCounters()
			b.aold, b.bold = 0, 0
			b.lockD = false
			// marks the first dot in a row
			b.fillCarry = true
			b.s.ScheduleRel(scheduler.Blt, 1, LineSlow)
		}
		return
	}

	b.Stats.Copies++
	b.trace.Tracef(log.BlitterTiming, "%s copy blit %dx%d ABCD=%04b %s", b.beam.Position(), b.bltsizeH, b.bltsizeV, b.use(), b.accuracy)

	switch b.accuracy {
	case Fast:
		b.fastCopy()
		b.finishNow()
	case Fake:
		b.fastCopy()
		b.resetCounters()
		b.lockD = true
		b.s.ScheduleRel(scheduler.Blt, 1, CopyFake)
	default:
		b.resetCounters()
		b.aold, b.bold = 0, 0
		b.fillCarry = b.fci()
		b.lockD = true
		b.s.ScheduleRel(scheduler.Blt, 1, CopySlow)
	}
}

// finishNow ends a blit performed in one go.
func (b *Blitter) finishNow() {
	b.bbusy = false
	b.irq.Raise(interrupts.BLIT)
	b.endBlit()
}

func (b *Blitter) endBlit() {
	b.trace.Tracef(log.BlitterTiming, "%s blit terminates", b.beam.Position())
	b.running = false
	b.s.Cancel(scheduler.Blt)

	if b.listener != nil {
		b.listener.BlitterDidTerminate()
	}
}

// VsyncHandler is called at the start of every frame.
func (b *Blitter) VsyncHandler() {
	b.Stats.LastFrame = b.Stats.Frame
	b.Stats.Frame = 0
}

// PokeDMACON is called after DMACON changed from prev to next. A blit
// that waits for blitter DMA starts as soon as it is switched on.
func (b *Blitter) PokeDMACON(prev, next uint16) {
	const mask = dma.DMAEN | dma.BLTEN
	if prev&mask != mask && next&mask == mask && b.s.HasEvent(scheduler.Blt, Strt1) {
		b.s.ScheduleRel(scheduler.Blt, 0, Strt1)
	}
	if b.running && prev&mask == mask && next&mask != mask {
		b.trace.Tracef(log.Blitter, "blitter DMA off while the blitter is running")
	}
}

// Reset puts the blitter into its power-on state.
func (b *Blitter) Reset() {
	*b = Blitter{
		s: b.s, bus: b.bus, beam: b.beam, mem: b.mem, irq: b.irq, listener: b.listener,
		accuracy: b.accuracy, revision: b.revision, log: b.log, trace: b.trace,
	}
	b.s.Cancel(scheduler.Blt)
}

// Info is a point in time view of the blitter.
type Info struct {
	BLTCON0, BLTCON1               uint16
	ASH, BSH                       uint16
	Minterm                        uint8
	BLTAPT, BLTBPT, BLTCPT, BLTDPT uint32
	BLTAFWM, BLTALWM               uint16
	BLTAMOD, BLTBMOD               int16
	BLTCMOD, BLTDMOD               int16
	Width, Height                  uint16
	AOld, BOld, ANew, BNew         uint16
	AHold, BHold, CHold, DHold     uint16
	Busy, Zero                     bool
	Running                        bool
	FirstWord, LastWord            bool
	FillEnable                     bool
	FCI, FCO                       bool
	StoreToDest                    bool
	PC                             int
	Iteration                      int64
	Accuracy                       Accuracy
	State                          string
	Stats                          Stats
}

// Inspect returns the current state of the blitter.
func (b *Blitter) Inspect() Info {
	return Info{
		BLTCON0: b.bltcon0, BLTCON1: b.bltcon1,
		ASH: b.ash(), BSH: b.bsh(),
		Minterm: b.lf(),
		BLTAPT:  b.bltapt, BLTBPT: b.bltbpt, BLTCPT: b.bltcpt, BLTDPT: b.bltdpt,
		BLTAFWM: b.bltafwm, BLTALWM: b.bltalwm,
		BLTAMOD: b.bltamod, BLTBMOD: b.bltbmod, BLTCMOD: b.bltcmod, BLTDMOD: b.bltdmod,
		Width: b.bltsizeH, Height: b.bltsizeV,
		AOld: b.aold, BOld: b.bold, ANew: b.anew, BNew: b.bnew,
		AHold: b.ahold, BHold: b.bhold, CHold: b.chold, DHold: b.dhold,
		Busy: b.bbusy, Zero: b.bzero, Running: b.running,
		FirstWord:   b.isFirstWord(),
		LastWord:    b.isLastWord(),
		FillEnable:  b.fillEnabled(),
		FCI:         b.fci(),
		FCO:         b.fillCarry,
		StoreToDest: b.useD() && !b.lockD,
		PC:          b.bltpc,
		Iteration:   b.iteration,
		Accuracy:    b.accuracy,
		State:       EventName(b.s.ID(scheduler.Blt)),
		Stats:       b.Stats,
	}
}

var _ types.Stater = (*Blitter)(nil)

// Load implements the types.Stater interface.
//
// The values are loaded in the following order:
//   - bltcon0, bltcon1 (uint16)
//   - bltapt, bltbpt, bltcpt, bltdpt (uint32)
//   - bltafwm, bltalwm (uint16)
//   - bltamod, bltbmod, bltcmod, bltdmod (uint16)
//   - bltsizeH, bltsizeV (uint16)
//   - anew, bnew, aold, bold, ahold, bhold, chold, dhold, mask (uint16)
//   - bltpc (uint16)
//   - iteration (int64)
//   - xCounter, yCounter, cntA, cntB, cntC, cntD (uint16)
//   - lockD, fillCarry, running, bbusy, bzero, birq (bool)
//   - copies, lines (int64)
//   - frame, lastFrame (uint32)
func (b *Blitter) Load(s *types.State) {
	b.bltcon0, b.bltcon1 = s.Read16(), s.Read16()
	b.bltapt, b.bltbpt, b.bltcpt, b.bltdpt = s.Read32(), s.Read32(), s.Read32(), s.Read32()
	b.bltafwm, b.bltalwm = s.Read16(), s.Read16()
	b.bltamod, b.bltbmod = int16(s.Read16()), int16(s.Read16())
	b.bltcmod, b.bltdmod = int16(s.Read16()), int16(s.Read16())
	b.bltsizeH, b.bltsizeV = s.Read16(), s.Read16()

	b.anew, b.bnew = s.Read16(), s.Read16()
	b.aold, b.bold = s.Read16(), s.Read16()
	b.ahold, b.bhold = s.Read16(), s.Read16()
	b.chold, b.dhold = s.Read16(), s.Read16()
	b.mask = s.Read16()

	b.bltpc = int(s.Read16())
	b.iteration = s.ReadInt64()
	b.xCounter, b.yCounter = s.Read16(), s.Read16()
	b.cntA, b.cntB, b.cntC, b.cntD = s.Read16(), s.Read16(), s.Read16(), s.Read16()

	b.lockD = s.ReadBool()
	b.fillCarry = s.ReadBool()
	b.running = s.ReadBool()
	b.bbusy = s.ReadBool()
	b.bzero = s.ReadBool()
	b.birq = s.ReadBool()

	b.Stats.Copies, b.Stats.Lines = s.ReadInt64(), s.ReadInt64()
	b.Stats.Frame, b.Stats.LastFrame = int(s.Read32()), int(s.Read32())
}

// Save implements the types.Stater interface.
//
// The values are saved in the same order as Load reads them.
func (b *Blitter) Save(s *types.State) {
	for _, v := range [...]uint16{b.bltcon0, b.bltcon1} {
		s.Write16(v)
	}
	for _, v := range [...]uint32{b.bltapt, b.bltbpt, b.bltcpt, b.bltdpt} {
		s.Write32(v)
	}
	for _, v := range [...]uint16{
		b.bltafwm, b.bltalwm,
		uint16(b.bltamod), uint16(b.bltbmod), uint16(b.bltcmod), uint16(b.bltdmod),
		b.bltsizeH, b.bltsizeV,
		b.anew, b.bnew, b.aold, b.bold, b.ahold, b.bhold, b.chold, b.dhold, b.mask,
		uint16(b.bltpc),
	} {
		s.Write16(v)
	}
	s.WriteInt64(b.iteration)
	for _, v := range [...]uint16{b.xCounter, b.yCounter, b.cntA, b.cntB, b.cntC, b.cntD} {
		s.Write16(v)
	}
	for _, v := range [...]bool{b.lockD, b.fillCarry, b.running, b.bbusy, b.bzero, b.birq} {
		s.WriteBool(v)
	}
	s.WriteInt64(b.Stats.Copies)
	s.WriteInt64(b.Stats.Lines)
	s.Write32(uint32(b.Stats.Frame))
	s.Write32(uint32(b.Stats.LastFrame))
}
