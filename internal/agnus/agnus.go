// Package agnus provides the chipset that ties the timing core
// together: the beam, the event scheduler, the bus arbiter, the
// copper and the blitter, plus the fixed DMA consumers (refresh,
// disk, audio, sprites and bitplanes) and the custom register map.
//
// The chipset is driven one DMA cycle at a time by Execute. Every
// DMA consumer runs from an event slot of the scheduler, so nothing
// is polled; the chipset only moves the beam and handles the line
// and frame boundaries.
package agnus

import (
	"fmt"
	"sync/atomic"

	"github.com/thelolagemann/goagnus/internal/beam"
	"github.com/thelolagemann/goagnus/internal/blitter"
	"github.com/thelolagemann/goagnus/internal/copper"
	"github.com/thelolagemann/goagnus/internal/dma"
	"github.com/thelolagemann/goagnus/internal/interrupts"
	"github.com/thelolagemann/goagnus/internal/memory"
	"github.com/thelolagemann/goagnus/internal/scheduler"
	"github.com/thelolagemann/goagnus/internal/types"
	"github.com/thelolagemann/goagnus/internal/types/registers"
	"github.com/thelolagemann/goagnus/pkg/log"
)

// Memory is the chip RAM the chipset works on. It is saved along
// with the chipset.
type Memory interface {
	memory.Bus
	types.Stater
	Size() int
}

// DiskController performs the disk DMA of the three disk slots of
// a line. It transfers words through the DiskBus it is given.
type DiskController interface {
	PerformDMA(bus DiskBus)
}

// DiskBus transfers disk words between the controller and memory
// at DSKPT.
type DiskBus interface {
	// DiskRead reads the next word from memory.
	DiskRead() uint16
	// DiskWrite writes the next word to memory.
	DiskWrite(v uint16)
}

// AudioSink is the audio state machine of Paula. A channel requests
// a word by returning true from AudioRequest, and gets it delivered
// through AudioData in the same cycle.
type AudioSink interface {
	AudioRequest(ch int) bool
	AudioData(ch int, v uint16)
}

// SpriteSink receives the words fetched by sprite DMA. reg is the
// SPRxPOS, SPRxCTL, SPRxDATA or SPRxDATB register of the sprite.
type SpriteSink interface {
	SpriteWord(nr int, reg registers.Address, v uint16)
}

// BitplaneSink receives the words fetched by bitplane DMA. The
// planes count from 0.
type BitplaneSink interface {
	BitplaneWord(plane int, v uint16)
}

// Agnus is the chipset.
type Agnus struct {
	Scheduler  *scheduler.Scheduler
	Beam       *beam.Tracker
	Bus        *dma.Bus
	Slots      *dma.SlotTable
	Copper     *copper.Copper
	Blitter    *blitter.Blitter
	Interrupts *interrupts.Service

	mem  Memory
	regs *registers.Table

	// bitplanes
	bplcon0          uint16
	ddfstrt, ddfstop uint16
	diwstrt, diwstop uint16
	bpl1mod, bpl2mod int16
	bplpt            [6]uint32
	bplConfig        dma.BplConfig
	bplFetched       uint8 // planes fetched in the current line

	// sprites
	sprpt     [8]uint32
	sprpos    [8]uint16
	sprctl    [8]uint16
	sprVStop  [8]int
	sprActive [8]bool

	// audio and disk
	audlc, audpt [4]uint32
	dskpt        uint32

	changes []regChange // delayed register writes, by due cycle

	disk      DiskController
	audio     AudioSink
	sprites   SpriteSink
	bitplanes BitplaneSink
	colors    copper.ColorRecorder

	revision types.Revision
	video    types.Video
	accuracy blitter.Accuracy
	compress bool

	inspect   bool
	published atomic.Pointer[Snapshot]
	lastLine  [beam.HPosCnt]dma.Owner
	traceFn   func(TraceRecord)
	state     []byte
	log       log.Logger
	trace     *log.Config
}

type discardColors struct{}

func (discardColors) RecordColorChange(int, registers.Address, uint16) {}

// New returns a chipset working on mem, in its power-on state. The
// copper starts with the first vertical blank.
func New(mem Memory, opts ...Opt) (*Agnus, error) {
	a := &Agnus{
		mem:      mem,
		regs:     registers.NewTable(),
		colors:   discardColors{},
		accuracy: blitter.Slow,
		compress: true,
		log:      log.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.Scheduler = scheduler.New(scheduler.WithLogger(a.log), scheduler.WithTrace(a.trace))
	a.Beam = beam.New(a.video)
	a.Bus = dma.NewBus(a.trace)
	a.Slots = dma.NewSlotTable(a.trace)
	a.Interrupts = interrupts.NewService(a.Scheduler, a.regs, a.trace)
	a.Blitter = blitter.New(a.Scheduler, a.Bus, a.Beam, mem, a.Interrupts,
		blitter.WithLogger(a.log),
		blitter.WithTrace(a.trace),
		blitter.WithAccuracy(a.accuracy),
		blitter.WithRevision(a.revision),
	)
	a.Copper = copper.New(a.Scheduler, a.Bus, a.Beam, a, mem,
		copper.WithLogger(a.log),
		copper.WithTrace(a.trace),
		copper.WithRevision(a.revision),
		copper.WithColorRecorder(a.colors),
		copper.WithBlitter(a.Blitter),
	)
	a.Blitter.SetListener(a.Copper)

	a.Scheduler.RegisterHandler(scheduler.Reg, a.serviceRegEvent)
	a.Scheduler.RegisterHandler(scheduler.Bpl, a.serviceBPLEvent)
	a.Scheduler.RegisterHandler(scheduler.Das, a.serviceDASEvent)
	a.Scheduler.RegisterHandler(scheduler.Ins, a.serviceInsEvent)

	a.registerAll()
	a.startLine()

	if a.state != nil {
		if err := a.Load(a.state); err != nil {
			return nil, fmt.Errorf("agnus: loading initial state: %w", err)
		}
		a.state = nil
	}
	return a, nil
}

// Execute runs one DMA cycle: the events due in this cycle are
// dispatched, then the beam moves on.
func (a *Agnus) Execute() {
	now := a.Scheduler.Clock()
	a.Scheduler.DispatchDue(now)
	if a.traceFn != nil {
		a.traceFn(a.traceRecord(now))
	}

	a.Scheduler.Advance(1)
	hsync, vsync := a.Beam.Advance()
	if hsync {
		a.hsyncHandler()
	}
	if vsync {
		a.vsyncHandler()
	}
}

// ExecuteUntil runs DMA cycles until the clock reaches cycle.
func (a *Agnus) ExecuteUntil(cycle int64) {
	for a.Scheduler.Clock() < cycle {
		a.Execute()
	}
}

// ExecuteFrame runs DMA cycles until the start of the next frame.
func (a *Agnus) ExecuteFrame() {
	nr := a.Beam.Frame.Nr
	for a.Beam.Frame.Nr == nr {
		a.Execute()
	}
}

// ExecuteLines runs n lines.
func (a *Agnus) ExecuteLines(n int) {
	for i := 0; i < n; i++ {
		a.Execute()
		for a.Beam.Pos.H != 0 {
			a.Execute()
		}
	}
}

// Clock returns the number of DMA cycles since power-on.
func (a *Agnus) Clock() int64 {
	return a.Scheduler.Clock()
}

// Memory returns the chip RAM the chipset works on.
func (a *Agnus) Memory() Memory {
	return a.mem
}

func (a *Agnus) hsyncHandler() {
	if a.inspect {
		a.lastLine = a.Bus.Line()
	}
	a.Bus.ClearLine()
	a.bplFetched = 0
	a.updateBPL()
	a.startLine()
}

// startLine schedules the first DAS and bitplane events of the line
// that starts now.
func (a *Agnus) startLine() {
	a.scheduleDASFrom(0)
	a.scheduleBPLFrom(0)
}

func (a *Agnus) vsyncHandler() {
	a.Bus.Stats.EndFrame()
	a.Copper.VsyncHandler()
	a.Blitter.VsyncHandler()
	a.Interrupts.Raise(interrupts.VERTB)
	a.trace.Tracef(log.Beam, "frame %d (LOF %t)", a.Beam.Frame.Nr, a.Beam.Frame.LOF)

	if a.inspect {
		a.publish()
	}
}

// CopperRead implements copper.Chipset. The word is read over the
// bus in the current cycle.
func (a *Agnus) CopperRead(addr uint32) uint16 {
	v := a.mem.Read16(addr)
	a.Bus.Record(dma.Copper, a.Beam.Pos.H, v)
	return v
}

// CopperWrite implements copper.Chipset.
func (a *Agnus) CopperWrite(reg registers.Address, v uint16) {
	if err := a.regs.Write(reg, v); err != nil {
		a.trace.Tracef(log.CopperRegs, "%s copper write: %v", a.Beam.Pos, err)
	}
}

// CPUAccess requests the bus for the CPU in the current cycle. If
// the cycle is taken, BLS is raised, which keeps the blitter off
// the bus in the following cycles unless BLTPRI is set.
func (a *Agnus) CPUAccess() bool {
	ok := a.Bus.Allocate(dma.CPU, a.Beam.Pos.H)
	a.Bus.SetBLS(!ok)
	return ok
}

func (a *Agnus) serviceInsEvent(scheduler.EventID) {
	a.publish()
	a.Scheduler.Cancel(scheduler.Ins)
}

// Reset puts the chipset into its power-on state. Memory is kept.
func (a *Agnus) Reset() {
	a.Scheduler.Reset()
	a.Beam.Reset()
	a.Bus.SetDMACON(dma.WriteMask)
	a.Bus.SetBLS(false)
	a.Bus.ClearLine()
	a.Bus.Stats.Reset()
	a.Interrupts.Reset()
	a.Copper.Reset()
	a.Blitter.Reset()

	a.bplcon0, a.ddfstrt, a.ddfstop, a.diwstrt, a.diwstop = 0, 0, 0, 0, 0
	a.bpl1mod, a.bpl2mod = 0, 0
	a.bplpt = [6]uint32{}
	a.bplFetched = 0
	a.sprpt, a.sprpos, a.sprctl = [8]uint32{}, [8]uint16{}, [8]uint16{}
	a.sprVStop, a.sprActive = [8]int{}, [8]bool{}
	a.audlc, a.audpt, a.dskpt = [4]uint32{}, [4]uint32{}, 0
	a.changes = a.changes[:0]

	a.Slots.UpdateDAS(0)
	a.bplConfig = dma.BplConfig{}
	a.Slots.UpdateBPL(a.bplConfig)
	a.startLine()
}
