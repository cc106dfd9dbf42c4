package blitter

import (
	"bytes"
	"fmt"
	"math/rand"
	"testing"

	"github.com/go-test/deep"
	"github.com/thelolagemann/goagnus/internal/beam"
	"github.com/thelolagemann/goagnus/internal/dma"
	"github.com/thelolagemann/goagnus/internal/interrupts"
	"github.com/thelolagemann/goagnus/internal/memory"
	"github.com/thelolagemann/goagnus/internal/scheduler"
	"github.com/thelolagemann/goagnus/internal/types"
	"github.com/thelolagemann/goagnus/internal/types/registers"
)

// rig drives a blitter with a scheduler, a bus and chip RAM.
type rig struct {
	t *testing.T

	s    *scheduler.Scheduler
	bus  *dma.Bus
	beam *beam.Tracker
	mem  *memory.ChipRAM
	regs *registers.Table
	irq  *interrupts.Service
	blt  *Blitter

	terminated int
}

func newRig(t *testing.T, acc Accuracy, rev types.Revision) *rig {
	r := &rig{t: t}
	r.s = scheduler.New()
	r.bus = dma.NewBus(nil)
	r.beam = beam.New(types.PAL)
	r.regs = registers.NewTable()
	r.irq = interrupts.NewService(r.s, r.regs, nil)

	var err error
	if r.mem, err = memory.NewChipRAM(memory.Size512K); err != nil {
		t.Fatal(err)
	}
	rnd := rand.New(rand.NewSource(1))
	for a := uint32(0); a < 0x10000; a += 2 {
		r.mem.Write16(a, uint16(rnd.Intn(0x10000)))
	}

	r.blt = New(r.s, r.bus, r.beam, r.mem, r.irq, WithAccuracy(acc), WithRevision(rev))
	r.blt.SetListener(r)
	r.blt.Register(r.regs)
	r.bus.SetDMACON(dma.SETCLR | dma.DMAEN | dma.BLTEN)
	return r
}

func (r *rig) BlitterDidTerminate() { r.terminated++ }

func (r *rig) tick() {
	r.s.DispatchDue(r.s.Clock())
	r.s.Advance(1)
	if hsync, _ := r.beam.Advance(); hsync {
		r.bus.ClearLine()
	}
}

func (r *rig) write(reg registers.Address, v uint16) {
	if err := r.regs.Write(reg, v); err != nil {
		r.t.Fatal(err)
	}
}

// run ticks until the blitter is done, and returns the number of
// cycles it took.
func (r *rig) run() int {
	n := 0
	for r.blt.IsActive() {
		if n++; n > 1_000_000 {
			r.t.Fatalf("blit did not terminate, state %s", EventName(r.s.ID(scheduler.Blt)))
		}
		r.tick()
	}
	// deliver the delayed interrupt
	for i := 0; i < 4; i++ {
		r.tick()
	}
	return n
}

type blit struct {
	con0, con1             uint16
	apt, bpt, cpt, dpt     uint32
	amod, bmod, cmod, dmod uint16
	afwm, alwm             uint16
	adat, bdat             uint16
	size                   uint16
}

func (r *rig) setup(b blit) {
	ptr := func(hi, lo registers.Address, p uint32) {
		r.write(hi, uint16(p>>16))
		r.write(lo, uint16(p))
	}
	ptr(registers.BLTAPTH, registers.BLTAPTL, b.apt)
	ptr(registers.BLTBPTH, registers.BLTBPTL, b.bpt)
	ptr(registers.BLTCPTH, registers.BLTCPTL, b.cpt)
	ptr(registers.BLTDPTH, registers.BLTDPTL, b.dpt)
	r.write(registers.BLTAMOD, b.amod)
	r.write(registers.BLTBMOD, b.bmod)
	r.write(registers.BLTCMOD, b.cmod)
	r.write(registers.BLTDMOD, b.dmod)
	r.write(registers.BLTAFWM, b.afwm)
	r.write(registers.BLTALWM, b.alwm)
	r.blt.SetBLTCON0(b.con0)
	r.blt.SetBLTCON1(b.con1)
	r.write(registers.BLTADAT, b.adat)
	r.write(registers.BLTBDAT, b.bdat)
}

func (r *rig) start(b blit) int {
	r.setup(b)
	r.blt.SetBLTSIZE(b.size)
	return r.run()
}

type result struct {
	BLTCON0, BLTCON1               uint16
	BLTAPT, BLTBPT, BLTCPT, BLTDPT uint32
	Zero                           bool
}

func (r *rig) result() result {
	i := r.blt.Inspect()
	return result{i.BLTCON0, i.BLTCON1, i.BLTAPT, i.BLTBPT, i.BLTCPT, i.BLTDPT, i.Zero}
}

func compareMemory(t *testing.T, want, got []byte) {
	t.Helper()
	if bytes.Equal(want, got) {
		return
	}
	for i := range want {
		if want[i] != got[i] {
			t.Fatalf("memory differs at $%06X: expected %02X, got %02X", i, want[i], got[i])
		}
	}
}

var copyBlits = map[string]blit{
	"shifted ABCD": {
		con0: 0x4FCA, con1: 0x4000,
		apt: 0x1000, bpt: 0x2000, cpt: 0x3000, dpt: 0x8000,
		amod: 2, bmod: 2, cmod: 4, dmod: 4,
		afwm: 0xFFFF, alwm: 0xFF00,
		size: 8<<6 | 5,
	},
	"descending masked": {
		con0: 0x29F0, con1: 0x0002,
		apt: 0x1FFE, dpt: 0x9FFE,
		amod: 4, dmod: 6,
		afwm: 0x0FF0, alwm: 0xF00F,
		size: 10<<6 | 4,
	},
	"single column": {
		con0: 0x39F0,
		apt: 0x1200, dpt: 0xA800,
		amod: 38, dmod: 38,
		afwm: 0xFFF0, alwm: 0x0FFF,
		size: 5<<6 | 1,
	},
	"inclusive fill with carry": {
		con0: 0x09F0, con1: 0x000E,
		apt: 0x17FE, dpt: 0xA7FE,
		afwm: 0xFFFF, alwm: 0xFFFF,
		size: 6<<6 | 3,
	},
	"exclusive fill": {
		con0: 0x0BCA, con1: 0x0012,
		apt: 0x1800, cpt: 0x3800, dpt: 0xB000,
		afwm: 0xFFFF, alwm: 0xFFFF,
		bdat: 0xF0F0,
		size: 7<<6 | 4,
	},
	"D only fill": {
		con0: 0x01F0, con1: 0x0008,
		dpt:  0xB400, dmod: 2,
		afwm: 0xFFFF, alwm: 0xFFFF,
		adat: 0x0810,
		size: 4<<6 | 3,
	},
	"B to D": {
		con0: 0x05CC, con1: 0x7000,
		bpt: 0x2000, dpt: 0xB800,
		afwm: 0xFFFF, alwm: 0xFFFF,
		size: 4<<6 | 6,
	},
	"C only": {
		con0: 0x02AA,
		cpt:  0x3000,
		afwm: 0xFFFF, alwm: 0xFFFF,
		size: 3<<6 | 4,
	},
	"C only zero": {
		con0: 0x0200,
		cpt:  0x3000,
		afwm: 0xFFFF, alwm: 0xFFFF,
		size: 3<<6 | 4,
	},
	"all channels off": {
		con0: 0x00F0,
		afwm: 0xFFFF, alwm: 0xFFFF,
		size: 2<<6 | 2,
	},
}

// lineBlit returns a line of 12 dots with a slope of 5/12, starting
// at (100, 20) in a bitplane of 40 bytes per row.
func lineBlit(octant uint16, con0 uint16, sing bool) blit {
	const dmin, dmax = 5, 12
	start := uint32(0xC000 + 20*40 + 100/16*2)
	errorTerm := int32(4*dmin - 2*dmax)
	con1 := octant<<2 | bltcon1LINE | bltcon1SIGN
	if sing {
		con1 |= bltcon1SING
	}
	return blit{
		con0: 100%16<<12 | con0,
		con1: con1,
		apt:  uint32(errorTerm),
		bpt:  0x2000,
		cpt:  start, dpt: start,
		amod: uint16(4 * (dmin - dmax) & 0xFFFF),
		bmod: 4 * dmin,
		cmod: 40, dmod: 40,
		afwm: 0xFFFF, alwm: 0xFFFF,
		adat: 0x8000, bdat: 0xFFFF,
		size: (dmax+1)<<6 | 2,
	}
}

func lineBlits() map[string]blit {
	m := make(map[string]blit)
	for o := uint16(0); o < 8; o++ {
		m[fmt.Sprintf("line octant %d", o)] = lineBlit(o, 0x0BCA, false)
	}
	m["line single dot"] = lineBlit(1, 0x0B4A, true)
	m["line textured"] = lineBlit(6, 0x0FCA, false)
	m["line without C"] = lineBlit(2, 0x09CA, false)
	m["line B without C"] = lineBlit(4, 0x0DCA, false)
	return m
}

// The slow and fake models must leave memory and registers exactly
// as the fast model does.
func TestBlitter_Parity(t *testing.T) {
	blits := lineBlits()
	for name, b := range copyBlits {
		blits[name] = b
	}

	for name, b := range blits {
		t.Run(name, func(t *testing.T) {
			fast := newRig(t, Fast, types.OCS)
			fast.start(b)
			want := fast.result()

			for _, acc := range []Accuracy{Fake, Slow} {
				r := newRig(t, acc, types.OCS)
				r.start(b)

				compareMemory(t, fast.mem.Bytes(), r.mem.Bytes())
				if diff := deep.Equal(want, r.result()); diff != nil {
					t.Errorf("%s: %v", acc, diff)
				}
				if r.terminated != 1 {
					t.Errorf("%s: expected 1 termination, got %d", acc, r.terminated)
				}
			}
		})
	}
}

func TestBlitter_Timing(t *testing.T) {
	b := copyBlits["shifted ABCD"]

	fast := newRig(t, Fast, types.OCS)
	if n := fast.start(b); n > 3 {
		t.Errorf("expected fast blit to finish at once, took %d cycles", n)
	}

	slow := newRig(t, Slow, types.OCS)
	ns := slow.start(b)
	// 40 words, 4 cycles per word with all channels on
	if ns < 40*4 {
		t.Errorf("expected slow blit to take at least %d cycles, took %d", 40*4, ns)
	}

	fake := newRig(t, Fake, types.OCS)
	if nf := fake.start(b); nf != ns {
		t.Errorf("expected fake blit to take %d cycles like the slow one, took %d", ns, nf)
	}
}

func TestBlitter_BusContention(t *testing.T) {
	b := copyBlits["B to D"]

	free := newRig(t, Slow, types.OCS)
	n := free.start(b)

	// another owner takes every fourth cycle
	busy := newRig(t, Slow, types.OCS)
	busy.setup(b)
	busy.blt.SetBLTSIZE(b.size)
	cycles := 0
	for busy.blt.IsActive() {
		if h := busy.beam.Pos.H; h%4 == 0 {
			busy.bus.Record(dma.Bitplane, h, 0)
		}
		busy.tick()
		if cycles++; cycles > 100_000 {
			t.Fatal("blit did not terminate")
		}
	}

	if cycles <= n {
		t.Errorf("expected a blit on a busy bus to take longer than %d cycles, took %d", n, cycles)
	}
	for i := 0; i < 4; i++ {
		busy.tick()
	}
	compareMemory(t, free.mem.Bytes(), busy.mem.Bytes())
}

func TestBlitter_WaitsForDMA(t *testing.T) {
	r := newRig(t, Slow, types.OCS)
	r.bus.SetDMACON(dma.BLTEN)

	b := copyBlits["B to D"]
	r.setup(b)
	r.blt.SetBLTSIZE(b.size)
	for i := 0; i < 100; i++ {
		r.tick()
	}
	if !r.s.HasEvent(scheduler.Blt, Strt1) || r.s.Trigger(scheduler.Blt) != scheduler.Never {
		t.Fatalf("expected blit to wait for DMA, state %s", EventName(r.s.ID(scheduler.Blt)))
	}
	if !r.blt.IsBusy() || !r.blt.IsActive() {
		t.Errorf("expected blitter to be busy while waiting")
	}

	prev := r.bus.SetDMACON(dma.SETCLR | dma.BLTEN)
	r.blt.PokeDMACON(prev, r.bus.DMACON())
	r.run()

	fast := newRig(t, Fast, types.OCS)
	fast.start(b)
	compareMemory(t, fast.mem.Bytes(), r.mem.Bytes())
}

func TestBlitter_Interrupt(t *testing.T) {
	for _, acc := range []Accuracy{Fast, Fake, Slow} {
		t.Run(acc.String(), func(t *testing.T) {
			r := newRig(t, acc, types.OCS)
			r.start(copyBlits["shifted ABCD"])

			if r.irq.Flag&(1<<interrupts.BLIT) == 0 {
				t.Fatalf("expected BLIT interrupt")
			}
			if r.blt.IsBusy() || r.blt.IsActive() {
				t.Errorf("expected blitter to be idle")
			}
			if r.terminated != 1 {
				t.Errorf("expected 1 termination, got %d", r.terminated)
			}

			r.irq.Flag = 0
			for i := 0; i < 1000; i++ {
				r.tick()
			}
			if r.irq.Flag != 0 {
				t.Errorf("expected BLIT to be raised once, got INTREQ %04X", r.irq.Flag)
			}
		})
	}
}

func TestBlitter_Stats(t *testing.T) {
	r := newRig(t, Fast, types.OCS)
	r.start(copyBlits["C only"])
	r.start(lineBlit(0, 0x0BCA, false))
	r.start(copyBlits["B to D"])

	if r.blt.Stats.Copies != 2 || r.blt.Stats.Lines != 1 || r.blt.Stats.Frame != 3 {
		t.Errorf("unexpected stats %+v", r.blt.Stats)
	}
	r.blt.VsyncHandler()
	if r.blt.Stats.Frame != 0 || r.blt.Stats.LastFrame != 3 {
		t.Errorf("unexpected stats after vsync %+v", r.blt.Stats)
	}
}

func TestBlitter_ECSSize(t *testing.T) {
	tests := []struct {
		rev          types.Revision
		sizv, sizh   uint16
		wantRunning  bool
		wantW, wantH uint16
	}{
		{types.ECS, 3, 0, true, 0x800, 3},
		{types.ECS, 0, 10, true, 10, 0x8000},
		{types.OCS, 3, 10, false, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.rev.String(), func(t *testing.T) {
			r := newRig(t, Slow, tt.rev)
			r.blt.SetBLTSIZV(tt.sizv)
			r.write(registers.BLTSIZH, tt.sizh)

			i := r.blt.Inspect()
			if i.Running != tt.wantRunning || i.Width != tt.wantW || i.Height != tt.wantH {
				t.Errorf("expected running %t %dx%d, got %t %dx%d",
					tt.wantRunning, tt.wantW, tt.wantH, i.Running, i.Width, i.Height)
			}
		})
	}
}

func TestBlitter_BLTCON0L(t *testing.T) {
	r := newRig(t, Fast, types.ECS)
	r.blt.SetBLTCON0(0x4FCA)
	r.blt.SetBLTCON0L(0x12F0)
	if v := r.blt.Inspect().BLTCON0; v != 0x4FF0 {
		t.Errorf("expected BLTCON0 $4FF0, got $%04X", v)
	}

	r = newRig(t, Fast, types.OCS)
	r.blt.SetBLTCON0(0x4FCA)
	r.blt.SetBLTCON0L(0x12F0)
	if v := r.blt.Inspect().BLTCON0; v != 0x4FCA {
		t.Errorf("expected BLTCON0L to be ignored on OCS, got $%04X", v)
	}
}

func TestBlitter_SaveLoad(t *testing.T) {
	b := copyBlits["shifted ABCD"]

	r := newRig(t, Slow, types.OCS)
	r.setup(b)
	r.blt.SetBLTSIZE(b.size)
	for i := 0; i < 50; i++ {
		r.tick()
	}

	st := types.NewState()
	r.blt.Save(st)

	other := newRig(t, Slow, types.OCS)
	other.blt.Load(types.StateFromBytes(st.Bytes()))

	want, got := r.blt.Inspect(), other.blt.Inspect()
	want.State, got.State = "", ""
	if diff := deep.Equal(want, got); diff != nil {
		t.Error(diff)
	}
}

func TestParseAccuracy(t *testing.T) {
	for _, a := range []Accuracy{Fast, Fake, Slow} {
		got, err := ParseAccuracy(a.String())
		if err != nil || got != a {
			t.Errorf("%s: got %s %v", a, got, err)
		}
	}
	if _, err := ParseAccuracy("exact"); err == nil {
		t.Errorf("expected error for unknown accuracy")
	}
}
