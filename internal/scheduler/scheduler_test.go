package scheduler

import (
	"testing"

	"github.com/go-test/deep"
	"github.com/thelolagemann/goagnus/internal/types"
)

const (
	evA EventID = iota + 1
	evB
)

type call struct {
	Slot  Slot
	ID    EventID
	Cycle int64
}

func newRecording(s *Scheduler) *[]call {
	calls := &[]call{}
	for slot := Slot(0); slot < NumSlots; slot++ {
		slot := slot
		s.RegisterHandler(slot, func(id EventID) {
			*calls = append(*calls, call{slot, id, s.Clock()})
			s.Cancel(slot)
		})
	}
	return calls
}

func run(s *Scheduler, until int64) {
	for s.Clock() <= until {
		s.DispatchDue(s.Clock())
		s.Advance(1)
	}
}

func TestScheduler_Overwrite(t *testing.T) {
	s := New()
	calls := newRecording(s)

	s.ScheduleAt(Cop, 10, evA)
	s.ScheduleAt(Cop, 5, evB)
	run(s, 20)

	if diff := deep.Equal(*calls, []call{{Cop, evB, 5}}); diff != nil {
		t.Error(diff)
	}
}

func TestScheduler_Cancel(t *testing.T) {
	s := New()
	calls := newRecording(s)

	s.ScheduleAt(Blt, 3, evA)
	s.Cancel(Blt)
	s.DispatchDue(3)
	s.DispatchDue(100)

	if len(*calls) != 0 {
		t.Errorf("expected no dispatch after cancel, got %v", *calls)
	}
	if s.Has(Blt) || s.NextTrigger() != Never {
		t.Errorf("expected empty scheduler, got %s", s)
	}
}

func TestScheduler_PriorityOrder(t *testing.T) {
	s := New()
	calls := newRecording(s)

	s.ScheduleAt(Ins, 4, evA)
	s.ScheduleAt(Blt, 4, evA)
	s.ScheduleAt(Reg, 4, evB)
	s.ScheduleAt(Cop, 2, evA)
	run(s, 4)

	want := []call{{Cop, evA, 2}, {Reg, evB, 4}, {Blt, evA, 4}, {Ins, evA, 4}}
	if diff := deep.Equal(*calls, want); diff != nil {
		t.Error(diff)
	}
}

func TestScheduler_NoSameTickRedispatch(t *testing.T) {
	s := New()
	var copCalls, bltCalls []int64
	s.RegisterHandler(Cop, func(id EventID) {
		copCalls = append(copCalls, s.Clock())
		// reschedule self for the current tick, and the blitter too
		s.ScheduleRel(Cop, 0, evA)
		s.ScheduleRel(Blt, 0, evA)
		if len(copCalls) == 3 {
			s.Cancel(Cop)
		}
	})
	s.RegisterHandler(Blt, func(id EventID) {
		bltCalls = append(bltCalls, s.Clock())
		s.Cancel(Blt)
	})

	s.ScheduleAt(Cop, 0, evA)
	run(s, 5)

	if diff := deep.Equal(copCalls, []int64{0, 1, 2}); diff != nil {
		t.Errorf("copper: %v", diff)
	}
	// a lower priority slot scheduled by the copper runs in the same pass
	if diff := deep.Equal(bltCalls, []int64{0, 1, 2}); diff != nil {
		t.Errorf("blitter: %v", diff)
	}
}

func TestScheduler_NeverIsPending(t *testing.T) {
	s := New()
	newRecording(s)
	s.ScheduleAt(Cop, Never, evB)
	run(s, 50)

	if !s.HasEvent(Cop, evB) {
		t.Errorf("expected event parked at never to stay pending")
	}
	s.Reschedule(Cop, 1)
	if s.Trigger(Cop) != s.Clock()+1 || s.ID(Cop) != evB {
		t.Errorf("expected reschedule to keep id, got %s", s)
	}
}

func TestScheduler_MissingHandler(t *testing.T) {
	if types.Debug {
		t.Skip("missing handlers panic in debug builds")
	}
	s := New()
	s.ScheduleAt(Das, 0, evA)
	s.DispatchDue(0)
	if s.Has(Das) {
		t.Errorf("expected slot without handler to be cancelled")
	}
}

func TestScheduler_SaveLoad(t *testing.T) {
	s := New()
	s.Advance(1234)
	s.ScheduleRel(Cop, 3, evA)
	s.ScheduleAt(Blt, Never, evB)
	s.SetData(Cop, 2)
	s.ScheduleRel(Reg, 1, evB)

	st := types.NewState()
	s.Save(st)

	l := New()
	l.Load(types.StateFromBytes(st.Bytes()))

	if l.String() != s.String() {
		t.Errorf("expected %s, got %s", s, l)
	}
	if l.Clock() != 1234 || l.Data(Cop) != 2 {
		t.Errorf("expected clock 1234 and data 2, got %d and %d", l.Clock(), l.Data(Cop))
	}
}

func BenchmarkScheduler_DispatchDue(b *testing.B) {
	s := New()
	s.RegisterHandler(Cop, func(EventID) { s.Reschedule(Cop, 2) })
	s.ScheduleAt(Cop, 0, evA)
	for i := 0; i < b.N; i++ {
		s.DispatchDue(s.Clock())
		s.Advance(1)
	}
}
