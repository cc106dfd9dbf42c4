package interrupts

import (
	"github.com/thelolagemann/goagnus/internal/scheduler"
	"github.com/thelolagemann/goagnus/internal/types"
	"github.com/thelolagemann/goagnus/internal/types/registers"
	"github.com/thelolagemann/goagnus/pkg/bits"
	"github.com/thelolagemann/goagnus/pkg/log"
)

// Source is an interrupt source, numbered by its INTREQ bit.
type Source uint8

const (
	// TBE is the serial port transmit buffer empty interrupt.
	TBE Source = iota
	// DSKBLK is raised when a disk block transfer has finished.
	DSKBLK
	// SOFT is the software interrupt.
	SOFT
	// PORTS is raised by the CIA-A and the expansion ports.
	PORTS
	// COPER is the copper interrupt, requested by a MOVE to INTREQ.
	COPER
	// VERTB is requested at the start of every frame.
	VERTB
	// BLIT is requested one cycle after a blit has finished.
	BLIT
	// AUD0 to AUD3 are requested when an audio channel has
	// fetched its block.
	AUD0
	AUD1
	AUD2
	AUD3
	// RBF is the serial port receive buffer full interrupt.
	RBF
	// DSKSYN is raised when the disk sync word has been found.
	DSKSYN
	// EXTER is raised by the CIA-B and the expansion ports.
	EXTER

	NumSources
)

var sourceNames = [NumSources]string{
	"TBE", "DSKBLK", "SOFT", "PORTS", "COPER", "VERTB", "BLIT",
	"AUD0", "AUD1", "AUD2", "AUD3", "RBF", "DSKSYN", "EXTER",
}

func (s Source) String() string {
	if s < NumSources {
		return sourceNames[s]
	}
	return "???"
}

// INTEN is the master enable bit of INTENA.
const INTEN = types.Bit14

// levels maps a source to the CPU interrupt level it requests.
var levels = [NumSources]uint8{1, 1, 1, 2, 3, 3, 3, 4, 4, 4, 4, 5, 5, 6}

// Scheduler is the part of the event scheduler used to deliver
// delayed interrupt requests.
type Scheduler interface {
	Clock() int64
	ScheduleAt(slot scheduler.Slot, cycle int64, id scheduler.EventID)
	Cancel(slot scheduler.Slot)
	RegisterHandler(slot scheduler.Slot, fn scheduler.Handler)
}

const eventRaise scheduler.EventID = 1

// Service is the interrupt controller, holding INTREQ and INTENA.
//
// An interrupt is pending when its bit is set in both INTREQ and
// INTENA, and INTENA's master enable bit is set. The CPU reads the
// resulting level from Level.
type Service struct {
	Flag   uint16 // interrupt request (INTREQ)
	Enable uint16 // interrupt enable (INTENA)

	// trigger holds the cycle at which a delayed request is raised,
	// or scheduler.Never.
	trigger [NumSources]int64

	s     Scheduler
	trace *log.Config
}

// NewService returns a new Service, registering INTREQ, INTENA and
// their read registers in regs, and its handler in the scheduler's
// IRQ slot.
func NewService(s Scheduler, regs *registers.Table, trace *log.Config) *Service {
	i := &Service{s: s, trace: trace}
	for n := range i.trigger {
		i.trigger[n] = scheduler.Never
	}
	s.RegisterHandler(scheduler.Irq, i.handle)

	regs.Register(registers.INTREQ, registers.WithWriteFunc(func(_ *registers.Hardware, _ registers.Address, v uint16) {
		i.Flag = bits.SetClr(i.Flag, v) & 0x7FFF
	}))
	regs.Register(registers.INTENA, registers.WithWriteFunc(func(_ *registers.Hardware, _ registers.Address, v uint16) {
		i.Enable = bits.SetClr(i.Enable, v) & 0x7FFF
	}))
	regs.Register(registers.INTREQR, registers.WithReadFunc(func(*registers.Hardware, registers.Address) uint16 {
		return i.Flag
	}))
	regs.Register(registers.INTENAR, registers.WithReadFunc(func(*registers.Hardware, registers.Address) uint16 {
		return i.Enable
	}))

	return i
}

// Raise requests the specified interrupt, by setting the
// corresponding bit in INTREQ.
func (i *Service) Raise(src Source) {
	i.Flag |= 1 << src
	i.trace.Tracef(log.Interrupts, "%s requested", src)
}

// RaiseIn requests the specified interrupt delay cycles from now.
func (i *Service) RaiseIn(src Source, delay int64) {
	at := i.s.Clock() + delay
	if at < i.trigger[src] {
		i.trigger[src] = at
	}
	i.scheduleNext()
}

// Pending returns true if src is requested, or scheduled to be.
func (i *Service) Pending(src Source) bool {
	return i.Flag&(1<<src) != 0 || i.trigger[src] != scheduler.Never
}

// Level returns the CPU interrupt level of the highest pending
// and enabled interrupt, or 0.
func (i *Service) Level() uint8 {
	if i.Enable&INTEN == 0 {
		return 0
	}
	active := i.Flag & i.Enable
	var level uint8
	for n := Source(0); n < NumSources; n++ {
		if active&(1<<n) != 0 && levels[n] > level {
			level = levels[n]
		}
	}
	return level
}

func (i *Service) handle(scheduler.EventID) {
	now := i.s.Clock()
	for n := range i.trigger {
		if i.trigger[n] <= now {
			i.trigger[n] = scheduler.Never
			i.Raise(Source(n))
		}
	}
	i.scheduleNext()
}

func (i *Service) scheduleNext() {
	next := scheduler.Never
	for _, t := range i.trigger {
		if t < next {
			next = t
		}
	}
	if next == scheduler.Never {
		i.s.Cancel(scheduler.Irq)
		return
	}
	i.s.ScheduleAt(scheduler.Irq, next, eventRaise)
}

var _ types.Stater = (*Service)(nil)

// Load implements the types.Stater interface.
//
// The values are loaded in the following order:
//   - Flag (uint16)
//   - Enable (uint16)
//   - trigger (int64 per source)
func (i *Service) Load(s *types.State) {
	i.Flag = s.Read16()
	i.Enable = s.Read16()
	for n := range i.trigger {
		i.trigger[n] = s.ReadInt64()
	}
}

// Save implements the types.Stater interface.
//
// The values are saved in the following order:
//   - Flag (uint16)
//   - Enable (uint16)
//   - trigger (int64 per source)
func (i *Service) Save(s *types.State) {
	s.Write16(i.Flag)
	s.Write16(i.Enable)
	for _, t := range i.trigger {
		s.WriteInt64(t)
	}
}

// Reset clears every request and enable.
func (i *Service) Reset() {
	i.Flag, i.Enable = 0, 0
	for n := range i.trigger {
		i.trigger[n] = scheduler.Never
	}
	i.s.Cancel(scheduler.Irq)
}
