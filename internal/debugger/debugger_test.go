package debugger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/thelolagemann/goagnus/internal/agnus"
	"github.com/thelolagemann/goagnus/internal/beam"
	"github.com/thelolagemann/goagnus/internal/copper"
	"github.com/thelolagemann/goagnus/internal/dma"
	"github.com/thelolagemann/goagnus/internal/memory"
)

func TestSlots(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)
	p.SetWidth(36)

	var line [beam.HPosCnt]dma.Owner
	line[0x01] = dma.Refresh
	line[0x20] = dma.Bitplane
	line[beam.HPosMax] = dma.Refresh
	p.Slots("bus", line)

	rows := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if rows[0] != "bus" {
		t.Errorf("expected title, got %q", rows[0])
	}
	rows = rows[1:]
	if len(rows) != 8 {
		t.Fatalf("expected 8 rows of 32 cycles, got %d", len(rows))
	}
	if want := "$00 .R" + strings.Repeat(".", 30); rows[0] != want {
		t.Errorf("expected %q, got %q", want, rows[0])
	}
	if want := "$20 B" + strings.Repeat(".", 31); rows[1] != want {
		t.Errorf("expected %q, got %q", want, rows[1])
	}
	if want := "$E0 ..R"; rows[7] != want {
		t.Errorf("expected %q, got %q", want, rows[7])
	}
}

func TestStats(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)
	p.SetWidth(40)

	var stats [dma.NumOwners]int64
	stats[dma.Refresh] = 100
	stats[dma.Copper] = 300
	p.Stats(stats)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != int(dma.NumOwners)-1 {
		t.Fatalf("expected a line per owner, got %d", len(lines))
	}
	for _, l := range lines {
		switch {
		case strings.HasPrefix(l, "COPPER"):
			if !strings.Contains(l, "75.0%") || !strings.HasSuffix(l, strings.Repeat("#", 10)) {
				t.Errorf("unexpected copper line %q", l)
			}
		case strings.HasPrefix(l, "REFRESH"):
			if !strings.Contains(l, "25.0%") || strings.Count(l, "#") != 3 {
				t.Errorf("unexpected refresh line %q", l)
			}
		default:
			if strings.Contains(l, "#") {
				t.Errorf("unexpected bar in %q", l)
			}
		}
	}
}

func TestCopper(t *testing.T) {
	list := []copper.Instruction{
		{Addr: 0x1000, First: 0x0180, Second: 0x0F00},
		{Addr: 0x1004, First: 0x2C01, Second: 0xFFFE},
		{Addr: 0x1008, First: 0xFFFF, Second: 0xFFFE},
	}
	var buf bytes.Buffer
	New(&buf).Copper(list, 0x1004)

	out := buf.String()
	for _, want := range []string{
		"$001000  0180 0F00  MOVE $0F00, COLOR00",
		"$001004  2C01 FFFE  WAIT ($2C,$00)",
		"$001008  FFFF FFFE  WAIT ($FF,$FE)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in\n%s", want, out)
		}
	}
}

func TestSnapshot(t *testing.T) {
	mem, err := memory.NewChipRAM(memory.Size512K)
	if err != nil {
		t.Fatal(err)
	}
	a, err := agnus.New(mem)
	if err != nil {
		t.Fatal(err)
	}
	a.ExecuteLines(2)

	var buf bytes.Buffer
	New(&buf).Snapshot(a.Inspect())
	for _, want := range []string{"agnus", "DMACON", "copper", "blitter", "DAS", "BPL", "REFRESH"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected %q in output", want)
		}
	}
}
