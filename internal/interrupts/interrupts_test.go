package interrupts

import (
	"testing"

	"github.com/thelolagemann/goagnus/internal/scheduler"
	"github.com/thelolagemann/goagnus/internal/types"
	"github.com/thelolagemann/goagnus/internal/types/registers"
)

func newService() (*Service, *scheduler.Scheduler, *registers.Table) {
	s := scheduler.New()
	regs := registers.NewTable()
	return NewService(s, regs, nil), s, regs
}

func step(s *scheduler.Scheduler, n int) {
	for ; n > 0; n-- {
		s.DispatchDue(s.Clock())
		s.Advance(1)
	}
}

func TestService_RaiseIn(t *testing.T) {
	i, s, _ := newService()

	i.RaiseIn(BLIT, 3)
	i.RaiseIn(VERTB, 1)
	step(s, 2)
	if i.Flag != 1<<VERTB {
		t.Errorf("expected only VERTB after 2 cycles, got %04X", i.Flag)
	}
	if !i.Pending(BLIT) {
		t.Errorf("expected BLIT to be pending")
	}
	step(s, 2)
	if i.Flag != 1<<VERTB|1<<BLIT {
		t.Errorf("expected VERTB and BLIT, got %04X", i.Flag)
	}
	if s.Has(scheduler.Irq) {
		t.Errorf("expected IRQ slot to be empty")
	}
}

func TestService_Registers(t *testing.T) {
	i, _, regs := newService()

	tests := []struct {
		name  string
		addr  registers.Address
		value uint16
		level uint8
	}{
		{"enable master and blit", registers.INTENA, 0x8000 | INTEN | 1<<BLIT, 0},
		{"request blit", registers.INTREQ, 0x8000 | 1<<BLIT, 3},
		{"request exter", registers.INTREQ, 0x8000 | 1<<EXTER, 3},
		{"enable exter", registers.INTENA, 0x8000 | 1<<EXTER, 6},
		{"acknowledge exter", registers.INTREQ, 1 << EXTER, 3},
		{"master off", registers.INTENA, INTEN, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := regs.Write(tt.addr, tt.value); err != nil {
				t.Fatal(err)
			}
			if l := i.Level(); l != tt.level {
				t.Errorf("expected level %d, got %d", tt.level, l)
			}
		})
	}

	if v, _ := regs.Read(registers.INTREQR); v != 1<<BLIT {
		t.Errorf("expected INTREQR %04X, got %04X", 1<<BLIT, v)
	}
}

func TestService_SaveLoad(t *testing.T) {
	i, _, _ := newService()
	i.Raise(COPER)
	i.RaiseIn(BLIT, 10)

	st := types.NewState()
	i.Save(st)

	l, _, _ := newService()
	l.Load(types.StateFromBytes(st.Bytes()))
	if l.Flag != i.Flag || l.trigger != i.trigger {
		t.Errorf("expected %04X %v, got %04X %v", i.Flag, i.trigger, l.Flag, l.trigger)
	}
}
