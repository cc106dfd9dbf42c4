package copper

import (
	"fmt"

	"github.com/thelolagemann/goagnus/internal/beam"
	"github.com/thelolagemann/goagnus/internal/dma"
	"github.com/thelolagemann/goagnus/internal/scheduler"
	"github.com/thelolagemann/goagnus/internal/types"
	"github.com/thelolagemann/goagnus/internal/types/registers"
	"github.com/thelolagemann/goagnus/pkg/log"
)

// Events of the COP slot.
const (
	ReqDMA scheduler.EventID = iota + 1
	Fetch
	Move
	WaitOrSkip
	Wait1
	Wait2
	WaitBlit
	Skip1
	Skip2
	Jmp1
	Jmp2
	VBlank
	Wakeup
	WakeupBlit
)

var eventNames = [...]string{
	ReqDMA:     "REQ_DMA",
	Fetch:      "FETCH",
	Move:       "MOVE",
	WaitOrSkip: "WAIT_OR_SKIP",
	Wait1:      "WAIT1",
	Wait2:      "WAIT2",
	WaitBlit:   "WAIT_BLIT",
	Skip1:      "SKIP1",
	Skip2:      "SKIP2",
	Jmp1:       "JMP1",
	Jmp2:       "JMP2",
	VBlank:     "VBLANK",
	Wakeup:     "WAKEUP",
	WakeupBlit: "WAKEUP_BLIT",
}

// EventName returns the name of a COP slot event.
func EventName(id scheduler.EventID) string {
	if int(id) < len(eventNames) && eventNames[id] != "" {
		return eventNames[id]
	}
	if id == scheduler.None {
		return "IDLE"
	}
	return fmt.Sprintf("COP_%d", id)
}

// schedule moves to the next state in two cycles, the length of a
// copper bus access.
func (c *Copper) schedule(next scheduler.EventID) {
	c.s.ScheduleRel(scheduler.Cop, 2, next)
}

// reschedule retries the current state in the next cycle.
func (c *Copper) reschedule() {
	c.s.Reschedule(scheduler.Cop, 1)
}

func (c *Copper) canAcquire() bool {
	return c.bus.CanAcquire(dma.Copper, c.beam.Position().H)
}

func (c *Copper) serviceEvent(id scheduler.EventID) {
	pos := c.beam.Position()
	c.trace.Tracef(log.Copper, "%s %s pc $%06X", pos, EventName(id), c.pc)

	switch id {
	case ReqDMA:
		// wait for a free even cycle
		if !c.canAcquire() || pos.H&1 != 0 {
			c.reschedule()
			return
		}
		c.schedule(Fetch)

	case Wakeup:
		if !c.canAcquire() || pos.H&1 != 0 {
			c.reschedule()
			return
		}
		c.schedule(Fetch)

	case WakeupBlit:
		// keep on waiting while the blitter is busy
		if c.blitter.IsActive() {
			c.s.ScheduleAt(scheduler.Cop, scheduler.Never, WaitBlit)
			return
		}
		if !c.canAcquire() || pos.H&1 != 0 {
			c.reschedule()
			return
		}
		c.schedule(Fetch)

	case Fetch:
		if !c.canAcquire() {
			c.reschedule()
			return
		}
		c.pc0 = c.pc
		c.cop1ins = c.chipset.CopperRead(c.pc)
		c.advancePC()

		if c.isMove() {
			c.schedule(Move)
		} else {
			c.schedule(WaitOrSkip)
		}

	case Move:
		if !c.canAcquire() {
			c.reschedule()
			return
		}
		c.cop2ins = c.chipset.CopperRead(c.pc)
		c.advancePC()

		reg := registers.Address(c.cop1ins & 0x1FE)

		// an illegal address stops the copper until the next frame
		if c.IsIllegalAddress(reg) {
			c.trace.Tracef(log.CopperRegs, "illegal MOVE to %s at $%06X, halting", registers.Name(reg), c.pc0)
			c.s.Cancel(scheduler.Cop)
			return
		}

		c.schedule(Fetch)

		if c.skip {
			c.skip = false
			return
		}

		switch reg {
		case registers.COPJMP1:
			c.schedule(Jmp1)
			c.s.SetData(scheduler.Cop, 1)
		case registers.COPJMP2:
			c.schedule(Jmp1)
			c.s.SetData(scheduler.Cop, 2)
		default:
			c.move(reg, c.cop2ins)
		}

	case WaitOrSkip:
		if !c.canAcquire() {
			c.reschedule()
			return
		}
		c.cop2ins = c.chipset.CopperRead(c.pc)
		c.advancePC()

		if c.isWait() {
			c.schedule(Wait1)
		} else {
			c.schedule(Skip1)
		}

	case Wait1:
		if !c.canAcquire() {
			c.reschedule()
			return
		}
		c.schedule(Wait2)

	case Wait2:
		c.skip = false

		if !c.bfd() && c.blitter.IsActive() {
			c.s.ScheduleAt(scheduler.Cop, scheduler.Never, WaitBlit)
			return
		}
		// cycle $E1 is blocked in this state
		if !c.canAcquire() || pos.H == 0xE1 {
			c.reschedule()
			return
		}
		c.scheduleWaitWakeup(c.bfd())

	case WaitBlit:
		if o := c.bus.Owner(pos.H); o != dma.None && o != dma.Blitter {
			c.reschedule()
			return
		}
		c.scheduleWaitWakeup(false)

	case Skip1:
		if !c.canAcquire() {
			c.reschedule()
			return
		}
		c.schedule(Skip2)

	case Skip2:
		if !c.canAcquire() || pos.H == 0xE1 {
			c.reschedule()
			return
		}

		// compare against the position of the next instruction
		c.skip = c.Comparator(beam.Add(pos, 2))
		if !c.bfd() {
			c.skip = c.skip && !c.blitter.IsActive()
		}
		c.schedule(Fetch)

	case Jmp1:
		// the bus is not needed in this cycle, but still allocated
		c.bus.Allocate(dma.Copper, pos.H)

		// in cycle $E0 the copper continues in $E1
		if pos.H == 0xE0 {
			c.s.ScheduleRel(scheduler.Cop, 1, Jmp2)
			return
		}
		c.schedule(Jmp2)

	case Jmp2:
		if !c.canAcquire() {
			c.reschedule()
			return
		}
		c.switchToList(int(c.s.Data(scheduler.Cop)))
		c.schedule(Fetch)

	case VBlank:
		copdma := c.bus.Enabled(dma.Copper)
		if copdma && !c.bus.Allocate(dma.Copper, pos.H) {
			c.reschedule()
			return
		}
		c.switchToList(1)
		c.activeInThisFrame = copdma
		c.schedule(Fetch)

	default:
		if types.Debug {
			panic(fmt.Sprintf("copper: unexpected event %d", id))
		}
		c.log.Errorf("copper: unexpected event %d, cancelling", id)
		c.s.Cancel(scheduler.Cop)
	}
}

// move writes value into reg. Colour registers are recorded with the
// pixel position they take effect at.
func (c *Copper) move(reg registers.Address, value uint16) {
	c.trace.Tracef(log.CopperRegs, "$%06X MOVE $%04X, %s", c.pc0, value, registers.Name(reg))

	if registers.IsColor(reg) {
		c.colors.RecordColorChange(4*c.beam.Position().H, reg, value)
		return
	}
	c.chipset.CopperWrite(reg, value)
}

// scheduleWaitWakeup sleeps until the WAIT condition holds. The
// copper wakes up two cycles early, as it needs those to fetch the
// next instruction.
func (c *Copper) scheduleWaitWakeup(bfd bool) {
	pos := c.beam.Position()
	trigger, ok := c.FindMatch()
	if !ok {
		// no match in this frame, sleep until the vertical blank
		c.s.ScheduleAt(scheduler.Cop, scheduler.Never, ReqDMA)
		return
	}

	delay := beam.Diff(pos, trigger)
	if delay == 0 || delay == 2 {
		c.s.ScheduleRel(scheduler.Cop, 2, Fetch)
		return
	}

	delay -= 2
	if bfd {
		c.s.ScheduleRel(scheduler.Cop, delay, Wakeup)
	} else {
		c.s.ScheduleRel(scheduler.Cop, delay, WakeupBlit)
	}
}
