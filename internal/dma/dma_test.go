package dma

import (
	"testing"

	"github.com/thelolagemann/goagnus/internal/beam"
)

func TestBus_CanAcquireExclusive(t *testing.T) {
	b := NewBus(nil)
	b.SetDMACON(SETCLR | DMAEN | COPEN | BLTEN | BPLEN | SPREN | DSKEN)

	owners := []Owner{Refresh, Disk, Audio, Sprite, Bitplane, Copper, Blitter, CPU}
	for h := 0; h < beam.HPosCnt; h++ {
		o := owners[h%len(owners)]
		if !b.Allocate(o, h) {
			t.Fatalf("expected %s to allocate free cycle %d", o, h)
		}
	}

	for h := 0; h < beam.HPosCnt; h++ {
		holder := b.Owner(h)
		for _, o := range owners {
			got := b.CanAcquire(o, h)
			if got != (o == holder) {
				t.Errorf("cycle %d held by %s: expected CanAcquire(%s) = %t, got %t", h, holder, o, o == holder, got)
			}
		}
	}
}

func TestBus_CanAcquireIsPure(t *testing.T) {
	b := NewBus(nil)
	b.SetDMACON(SETCLR | DMAEN | COPEN)
	before := b.Line()
	for h := 0; h < beam.HPosCnt; h++ {
		b.CanAcquire(Copper, h)
	}
	if b.Line() != before {
		t.Errorf("expected CanAcquire to leave the bus untouched")
	}
}

func TestBus_Allocate(t *testing.T) {
	tests := []struct {
		name   string
		dmacon uint16
		bls    bool
		owner  Owner
		want   bool
	}{
		{"copper enabled", DMAEN | COPEN, false, Copper, true},
		{"copper without master", COPEN, false, Copper, false},
		{"blitter disabled", DMAEN | COPEN, false, Blitter, false},
		{"blitter enabled", DMAEN | BLTEN, false, Blitter, true},
		{"blitter denied by bls", DMAEN | BLTEN, true, Blitter, false},
		{"blitter with priority", DMAEN | BLTEN | BLTPRI, true, Blitter, true},
		{"refresh always", 0, false, Refresh, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBus(nil)
			b.SetDMACON(SETCLR | tt.dmacon)
			b.SetBLS(tt.bls)
			if got := b.Allocate(tt.owner, 0x40); got != tt.want {
				t.Errorf("expected %t, got %t", tt.want, got)
			}
		})
	}
}

func TestBus_SetDMACON(t *testing.T) {
	b := NewBus(nil)
	b.SetDMACON(SETCLR | DMAEN | COPEN | BLTEN)
	if old := b.SetDMACON(COPEN); old != DMAEN|COPEN|BLTEN {
		t.Errorf("expected old %04X, got %04X", DMAEN|COPEN|BLTEN, old)
	}
	if b.DMACON() != DMAEN|BLTEN {
		t.Errorf("expected %04X, got %04X", DMAEN|BLTEN, b.DMACON())
	}
	// read only bits are never stored
	b.SetDMACON(SETCLR | BBUSY | BZERO)
	if b.DMACON()&(BBUSY|BZERO) != 0 {
		t.Errorf("expected BBUSY and BZERO to be ignored, got %04X", b.DMACON())
	}
}

func TestSlotTable_DAS(t *testing.T) {
	st := NewSlotTable(nil)

	if st.DAS[0x01] != DasRefresh || st.DAS[0xDF] != DasSDMA {
		t.Errorf("expected refresh and SDMA slots to always be present")
	}
	if st.DAS[0x07] != DasNone || st.DAS[0x15] != DasNone {
		t.Errorf("expected disk and sprite slots to be empty with DMA off")
	}
	if st.DAS[0x0D] != DasA0 || st.DAS[0x13] != DasA3 {
		t.Errorf("expected audio slots at $0D-$13")
	}

	st.UpdateDAS(DMAEN | DSKEN | SPREN)
	if st.DAS[0x09] != DasD1 {
		t.Errorf("expected DasD1 at $09, got %d", st.DAS[0x09])
	}
	n, first, ok := st.DAS[0x33].Sprite()
	if !ok || n != 7 || first {
		t.Errorf("expected second cycle of sprite 7 at $33, got %d %t %t", n, first, ok)
	}

	// jump table
	if st.FirstDAS() != 0x01 || st.NextDAS[0x01] != 0x07 || st.NextDAS[0x33] != 0xDF || st.NextDAS[0xDF] != -1 {
		t.Errorf("unexpected DAS jump table: first %02X, %02X %02X %d",
			st.FirstDAS(), st.NextDAS[0x01], st.NextDAS[0x33], st.NextDAS[0xDF])
	}
}

func TestSlotTable_BPL(t *testing.T) {
	tests := []struct {
		name   string
		cfg    BplConfig
		checks map[int]BplEvent
		fetch  int
	}{
		{
			name:   "lores 1 plane",
			cfg:    BplConfig{Enabled: true, BPU: 1, DDFSTRT: 0x38, DDFSTOP: 0xD0},
			checks: map[int]BplEvent{0x3F: BplL1, 0x3B: BplNone, 0xD7: BplL1, 0xDF: BplNone},
			fetch:  20,
		},
		{
			name:   "lores 6 planes",
			cfg:    BplConfig{Enabled: true, BPU: 6, DDFSTRT: 0x38, DDFSTOP: 0x38},
			checks: map[int]BplEvent{0x39: BplL4, 0x3A: BplL6, 0x3B: BplL2, 0x3D: BplL3, 0x3E: BplL5, 0x3F: BplL1},
			fetch:  6,
		},
		{
			name:   "hires 4 planes",
			cfg:    BplConfig{Enabled: true, BPU: 4, Hires: true, DDFSTRT: 0x3C, DDFSTOP: 0x3C},
			checks: map[int]BplEvent{0x38: BplH4, 0x3B: BplH1, 0x3C: BplH4, 0x3F: BplH1},
			fetch:  8,
		},
		{
			name:  "disabled",
			cfg:   BplConfig{BPU: 4, DDFSTRT: 0x38, DDFSTOP: 0xD0},
			fetch: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := NewSlotTable(nil)
			st.UpdateBPL(tt.cfg)
			for h, want := range tt.checks {
				if st.BPL[h] != want {
					t.Errorf("cycle %02X: expected %d, got %d", h, want, st.BPL[h])
				}
			}
			fetches := 0
			for h := 0; h < beam.HPosCnt; h++ {
				if st.BPL[h].Plane() >= 0 {
					fetches++
				}
			}
			if fetches != tt.fetch {
				t.Errorf("expected %d fetches, got %d", tt.fetch, fetches)
			}
			if st.BPL[beam.HPosMax] != BplEOL {
				t.Errorf("expected EOL at the end of the line")
			}
		})
	}
}

func TestStats_History(t *testing.T) {
	b := NewBus(nil)
	for i := 0; i < HistorySize+10; i++ {
		b.Record(Copper, 0, uint16(i))
		b.Stats.EndFrame()
	}
	if len(b.Stats.History) != HistorySize {
		t.Errorf("expected %d frames, got %d", HistorySize, len(b.Stats.History))
	}
	if b.Stats.Total[Copper] != HistorySize+10 {
		t.Errorf("expected %d copper cycles, got %d", HistorySize+10, b.Stats.Total[Copper])
	}
}

func TestBus_AllocateHeld(t *testing.T) {
	b := NewBus(nil)
	b.SetDMACON(SETCLR | DMAEN | COPEN | BLTEN)
	b.Record(Bitplane, 0x20, 0)
	if b.CanAcquire(Copper, 0x20) || b.Allocate(Copper, 0x20) {
		t.Errorf("expected a cycle held by %s to be refused", Bitplane)
	}

	if !b.Allocate(Copper, 0x22) {
		t.Fatal("expected a free cycle to be allocated")
	}
	if !b.CanAcquire(Copper, 0x22) {
		t.Error("expected the holder to keep its cycle")
	}
	if b.Allocate(Copper, 0x22) || b.CanAcquire(Blitter, 0x22) {
		t.Error("expected an allocated cycle to be claimed only once")
	}
}
