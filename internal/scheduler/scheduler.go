package scheduler

import (
	"fmt"
	"strings"

	"github.com/thelolagemann/goagnus/internal/types"
	"github.com/thelolagemann/goagnus/pkg/log"
)

// Handler is called when the event in a slot is due. The handler
// is expected to reschedule or cancel its slot.
type Handler func(id EventID)

// Scheduler is a discrete event scheduler with a fixed set of
// slots, measured in DMA cycles.
//
// The pending events are kept in a linked list, sorted by the cycle
// at which they should be executed and then by slot. The list is
// only used to answer when the next event is due, so the common
// case of nothing being due costs a single comparison. When events
// are due, the slots are visited in priority order and each due slot
// is dispatched at most once per pass: a handler that reschedules
// its own slot for the current cycle is not called again until the
// next pass, while a lower priority slot scheduled for the current
// cycle by a higher priority handler still runs in the same pass.
type Scheduler struct {
	clock int64
	root  *Event

	events   [NumSlots]Event
	handlers [NumSlots]Handler

	log   log.Logger
	trace *log.Config
}

// Opt configures a Scheduler.
type Opt func(*Scheduler)

// WithLogger sets the logger used to report wiring errors.
func WithLogger(l log.Logger) Opt {
	return func(s *Scheduler) {
		s.log = l
	}
}

// WithTrace sets the trace configuration.
func WithTrace(c *log.Config) Opt {
	return func(s *Scheduler) {
		s.trace = c
	}
}

// New returns a scheduler with every slot empty and the clock at 0.
func New(opts ...Opt) *Scheduler {
	s := &Scheduler{log: log.NewNullLogger()}
	for i := range s.events {
		s.events[i].slot = Slot(i)
		s.events[i].Reset()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterHandler registers the function to be called when the
// event in slot is due. This is to avoid the cost of having to
// allocate a function for each event, as the owner of a slot always
// handles it the same way, switching on the event id.
func (s *Scheduler) RegisterHandler(slot Slot, fn Handler) {
	s.handlers[slot] = fn
}

// Clock returns the current cycle.
func (s *Scheduler) Clock() int64 {
	return s.clock
}

// Advance moves the clock forward by n cycles without dispatching.
func (s *Scheduler) Advance(n int64) {
	s.clock += n
}

// ScheduleAt schedules id in slot at the absolute cycle, replacing
// whatever was pending in the slot.
func (s *Scheduler) ScheduleAt(slot Slot, cycle int64, id EventID) {
	e := &s.events[slot]
	s.unlink(e)
	e.cycle = cycle
	e.id = id
	s.insert(e)
	s.trace.Tracef(log.Scheduler, "%s: %d scheduled at %d", slot, id, cycle)
}

// ScheduleRel schedules id in slot delta cycles after the current
// cycle.
func (s *Scheduler) ScheduleRel(slot Slot, delta int64, id EventID) {
	s.ScheduleAt(slot, s.clock+delta, id)
}

// ScheduleData schedules id in slot at the absolute cycle and sets
// the slot's payload.
func (s *Scheduler) ScheduleData(slot Slot, cycle int64, id EventID, data int64) {
	s.events[slot].data = data
	s.ScheduleAt(slot, cycle, id)
}

// Reschedule moves the pending event in slot to delta cycles after
// the current cycle, keeping its id.
func (s *Scheduler) Reschedule(slot Slot, delta int64) {
	s.ScheduleAt(slot, s.clock+delta, s.events[slot].id)
}

// RescheduleAt moves the pending event in slot to cycle, keeping
// its id.
func (s *Scheduler) RescheduleAt(slot Slot, cycle int64) {
	s.ScheduleAt(slot, cycle, s.events[slot].id)
}

// Cancel empties slot.
func (s *Scheduler) Cancel(slot Slot) {
	e := &s.events[slot]
	s.unlink(e)
	e.cycle = Never
	e.id = None
	s.trace.Tracef(log.Scheduler, "%s: cancelled", slot)
}

// Has returns true if an event is pending in slot, even if its
// trigger is Never.
func (s *Scheduler) Has(slot Slot) bool {
	return s.events[slot].id != None
}

// HasEvent returns true if id is pending in slot.
func (s *Scheduler) HasEvent(slot Slot, id EventID) bool {
	return s.events[slot].id == id
}

// ID returns the id pending in slot.
func (s *Scheduler) ID(slot Slot) EventID {
	return s.events[slot].id
}

// Trigger returns the cycle at which slot is due.
func (s *Scheduler) Trigger(slot Slot) int64 {
	return s.events[slot].cycle
}

// IsDue returns true if slot is due at cycle.
func (s *Scheduler) IsDue(slot Slot, cycle int64) bool {
	return s.events[slot].cycle <= cycle
}

// Data returns the payload of slot.
func (s *Scheduler) Data(slot Slot) int64 {
	return s.events[slot].data
}

// SetData sets the payload of slot.
func (s *Scheduler) SetData(slot Slot, data int64) {
	s.events[slot].data = data
}

// NextTrigger returns the cycle of the earliest pending event, or
// Never.
func (s *Scheduler) NextTrigger() int64 {
	if s.root == nil {
		return Never
	}
	return s.root.cycle
}

// DispatchDue calls the handler of every slot whose trigger is at
// or before now, in slot order.
func (s *Scheduler) DispatchDue(now int64) {
	// skip if there are no events due
	if s.root == nil || s.root.cycle > now {
		return
	}

	for slot := Slot(0); slot < NumSlots; slot++ {
		e := &s.events[slot]
		if e.cycle > now {
			continue
		}

		if h := s.handlers[slot]; h != nil {
			h(e.id)
			continue
		}

		if types.Debug {
			panic(fmt.Sprintf("scheduler: no handler for slot %s (event %d)", slot, e.id))
		}
		s.log.Errorf("scheduler: no handler for slot %s (event %d), cancelling", slot, e.id)
		s.Cancel(slot)
	}
}

// insert places e into the list, sorted by cycle and then slot.
func (s *Scheduler) insert(e *Event) {
	var prev *Event
	event := s.root
	for event != nil {
		if e.cycle < event.cycle || e.cycle == event.cycle && e.slot < event.slot {
			break
		}
		prev = event
		event = event.next
	}

	e.next = event
	if prev == nil {
		s.root = e
	} else {
		prev.next = e
	}
}

// unlink removes e from the list, if it is in it.
func (s *Scheduler) unlink(e *Event) {
	var prev *Event
	event := s.root

	for event != nil {
		if event == e {
			if prev == nil {
				s.root = event.next
			} else {
				prev.next = event.next
			}
			break
		}
		prev = event
		event = event.next
	}
	e.next = nil
}

var _ types.Stater = (*Scheduler)(nil)

// Load implements the types.Stater interface.
//
// The values are loaded in the following order:
//   - clock (int64)
//   - for each slot: id (uint8), trigger (int64), data (int64)
func (s *Scheduler) Load(st *types.State) {
	s.clock = st.ReadInt64()
	s.root = nil
	for i := range s.events {
		e := &s.events[i]
		e.next = nil
		e.id = EventID(st.Read8())
		e.cycle = st.ReadInt64()
		e.data = st.ReadInt64()
		if e.id != None {
			s.insert(e)
		} else {
			e.cycle = Never
		}
	}
}

// Save implements the types.Stater interface.
//
// The values are saved in the following order:
//   - clock (int64)
//   - for each slot: id (uint8), trigger (int64), data (int64)
func (s *Scheduler) Save(st *types.State) {
	st.WriteInt64(s.clock)
	for i := range s.events {
		e := &s.events[i]
		st.Write8(uint8(e.id))
		st.WriteInt64(e.cycle)
		st.WriteInt64(e.data)
	}
}

// Reset empties every slot and rewinds the clock.
func (s *Scheduler) Reset() {
	s.clock = 0
	s.root = nil
	for i := range s.events {
		s.events[i].Reset()
	}
}

func (s *Scheduler) String() string {
	var b strings.Builder
	for event := s.root; event != nil; event = event.next {
		if event.cycle == Never {
			fmt.Fprintf(&b, "%s:%d@never->", event.slot, event.id)
			continue
		}
		fmt.Fprintf(&b, "%s:%d@%d->", event.slot, event.id, event.cycle)
	}
	return b.String()
}
