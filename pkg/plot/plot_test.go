package plot

import (
	"bytes"
	"errors"
	"image/png"
	"testing"

	"github.com/thelolagemann/goagnus/internal/beam"
	"github.com/thelolagemann/goagnus/internal/dma"
)

func TestHistory(t *testing.T) {
	if _, err := History(nil, 320, 240); !errors.Is(err, ErrEmpty) {
		t.Errorf("expected ErrEmpty, got %v", err)
	}

	history := make([][dma.NumOwners]int64, 50)
	for i := range history {
		history[i][dma.Refresh] = 4 * beam.VPosCntPAL
		history[i][dma.Bitplane] = int64(i * 100)
	}
	img, err := History(history, 320, 240)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 240 {
		t.Errorf("expected a 320x240 image, got %v", b)
	}

	// something other than the background must have been drawn
	bg := img.RGBAAt(0, 0)
	drawn := false
	for y := 0; y < 240 && !drawn; y++ {
		for x := 0; x < 320; x++ {
			if img.RGBAAt(x, y) != bg {
				drawn = true
				break
			}
		}
	}
	if !drawn {
		t.Error("plot is blank")
	}
}

func TestSlots(t *testing.T) {
	s := NewSlots(4)
	s.Record(0, 0x01, dma.Refresh)
	s.Record(3, beam.HPosMax, dma.Blitter)
	s.Record(4, 0, dma.CPU)  // ignored
	s.Record(0, -1, dma.CPU) // ignored

	var line [beam.HPosCnt]dma.Owner
	line[0x3F] = dma.Bitplane
	s.SetLine(1, line)

	for _, tt := range []struct {
		scale int
	}{{1}, {3}} {
		img := s.Image(tt.scale)
		if b := img.Bounds(); b.Dx() != beam.HPosCnt*tt.scale || b.Dy() != 4*tt.scale {
			t.Fatalf("scale %d: unexpected bounds %v", tt.scale, b)
		}
		for _, c := range []struct {
			v, h int
			o    dma.Owner
		}{
			{0, 0x01, dma.Refresh},
			{0, 0x00, dma.None},
			{1, 0x3F, dma.Bitplane},
			{3, beam.HPosMax, dma.Blitter},
		} {
			// check the last pixel of the scaled block
			x, y := c.h*tt.scale+tt.scale-1, c.v*tt.scale+tt.scale-1
			if got := img.RGBAAt(x, y); got != Colors[c.o] {
				t.Errorf("scale %d: (%d,%d): expected %v, got %v", tt.scale, c.v, c.h, Colors[c.o], got)
			}
		}
	}

	var buf bytes.Buffer
	if err := WritePNG(&buf, s.Image(2)); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 2*beam.HPosCnt {
		t.Errorf("unexpected width %d", img.Bounds().Dx())
	}
}
