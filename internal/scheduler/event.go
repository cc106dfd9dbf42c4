package scheduler

import "math"

// Never is the trigger of an event that will not fire until it is
// rescheduled.
const Never int64 = math.MaxInt64

// Slot identifies an event slot. Every component that needs to be
// called back owns exactly one slot, and only one event may be
// pending in a slot at a time. Due slots are dispatched in the
// order below, so the slot number doubles as its priority.
type Slot uint8

const (
	Reg Slot = iota // delayed register changes
	Bpl             // bitplane DMA
	Das             // disk, audio and sprite DMA
	Cop             // copper
	Blt             // blitter
	Irq             // delayed interrupt requests
	Ins             // inspection
	NumSlots
)

var slotNames = [NumSlots]string{"REG", "BPL", "DAS", "COP", "BLT", "IRQ", "INS"}

func (s Slot) String() string {
	if s < NumSlots {
		return slotNames[s]
	}
	return "???"
}

// EventID is the symbolic id of a pending event. Each slot owner
// defines its own ids; None marks an empty slot.
type EventID uint8

// None is the id of an empty slot.
const None EventID = 0

// Event is a pending trigger in a slot.
type Event struct {
	cycle int64
	slot  Slot
	id    EventID
	data  int64
	next  *Event
}

// Reset empties the event.
func (e *Event) Reset() {
	e.cycle = Never
	e.id = None
	e.data = 0
	e.next = nil
}
