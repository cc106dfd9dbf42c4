package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/thelolagemann/goagnus/internal/types/registers"
	"github.com/thelolagemann/goagnus/pkg/log"
)

func testGlobals() *globals {
	return &globals{ctx: context.Background(), logger: log.NewNullLogger()}
}

func defaultChip() chipFlags {
	return chipFlags{Revision: "ocs", Video: "pal", Blitter: "slow", RAM: 512}
}

func TestChipFlags(t *testing.T) {
	dir := t.TempDir()
	image := filepath.Join(dir, "chip.bin")
	// MOVE $0F00, COLOR00 then the end of list
	if err := os.WriteFile(image, []byte{0x01, 0x80, 0x0F, 0x00, 0xFF, 0xFF, 0xFF, 0xFE}, 0o644); err != nil {
		t.Fatal(err)
	}

	f := defaultChip()
	f.Chip = image
	f.Copper = 0x0
	a, err := f.build(testGlobals())
	if err != nil {
		t.Fatal(err)
	}
	if got := a.Memory().Read16(0); got != 0x0180 {
		t.Errorf("expected chip RAM image to be loaded, got %04X", got)
	}

	f.Copper = 0x10000
	a, err = f.build(testGlobals())
	if err != nil {
		t.Fatal(err)
	}
	a.ExecuteLines(1)
	if v, _ := a.Read(registers.DMACONR); v&0x0280 != 0x0280 {
		t.Errorf("expected copper DMA to be enabled, DMACONR %04X", v)
	}

	t.Run("too large", func(t *testing.T) {
		big := filepath.Join(dir, "big.bin")
		if err := os.WriteFile(big, make([]byte, 600<<10), 0o644); err != nil {
			t.Fatal(err)
		}
		f := defaultChip()
		f.Chip = big
		if _, err := f.build(testGlobals()); err == nil {
			t.Error("expected an error")
		}
	})
}

func TestRunSaveAndResume(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.agns")
	r := &runCmd{chipFlags: defaultChip(), Frames: 2, Compress: -1, Save: path}
	if err := r.Run(testGlobals()); err != nil {
		t.Fatal(err)
	}

	f := defaultChip()
	f.State = path
	a, err := f.build(testGlobals())
	if err != nil {
		t.Fatal(err)
	}
	if a.Beam.Frame.Nr != 2 || a.Beam.Pos.V != 0 || a.Beam.Pos.H != 0 {
		t.Errorf("expected to resume at the start of frame 2, got frame %d %s", a.Beam.Frame.Nr, a.Beam.Pos)
	}
}
