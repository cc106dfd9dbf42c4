package script

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/thelolagemann/goagnus/internal/agnus"
	"github.com/thelolagemann/goagnus/internal/memory"
)

func newHarness(t *testing.T) (*Harness, *bytes.Buffer) {
	t.Helper()
	mem, err := memory.NewChipRAM(memory.Size512K)
	if err != nil {
		t.Fatal(err)
	}
	a, err := agnus.New(mem)
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	h := New(a, &out)
	t.Cleanup(h.Close)
	return h, &out
}

const copperScript = `
poke(0x1000, 0x0096); poke(0x1002, 0x8010) -- MOVE DMACON, set DSKEN
poke(0x1004, 0xFFFF); poke(0x1006, 0xFFFE)
expect(peek(0x1002) == 0x8010, "poke")

write("COP1LCH", 0); write("COP1LCL", 0x1000)
write("DMACON", 0x8280)
frame(2)
expect(band(read("DMACONR"), 0x0010) ~= 0, "disk DMA enabled by the copper")
expect(band(read(0x002), 0x0280) == 0x0280, "DMAEN and COPEN")

local c = clock()
tick(10)
expect(clock() == c + 10, "tick")

local v, h = pos()
print("pos", v, h)
copper(1, 4)
`

func TestScript(t *testing.T) {
	h, out := newHarness(t)
	if err := h.DoString(copperScript); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"pos\t0\t10", "MOVE $8010, DMACON", "WAIT ($FF,$FE)"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected %q in output\n%s", want, out.String())
		}
	}
}

func TestScriptErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr error
	}{
		{"expect", `expect(false, "boom")`, ErrExpectation},
		{"expect nil", `expect(nil)`, ErrExpectation},
		{"unknown register", `write("FOO", 1)`, nil},
		{"read only", `write("VPOSR", 1)`, nil},
		{"odd address", `poke(0x1001, 1)`, nil},
		{"out of range", `peek(0x80000)`, nil},
		{"negative count", `copper(1, -1)`, nil},
		{"syntax", `frame(`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newHarness(t)
			err := h.DoString(tt.src)
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	t.Run("recovers", func(t *testing.T) {
		h, _ := newHarness(t)
		if err := h.DoString(`expect(false)`); err == nil {
			t.Fatal("expected an error")
		}
		if err := h.DoString(`expect(true)`); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}

func TestDoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.lua")
	if err := os.WriteFile(path, []byte(`lines(3) local v = pos() expect(v == 3, "line")`), 0o644); err != nil {
		t.Fatal(err)
	}
	h, _ := newHarness(t)
	if err := h.DoFile(path); err != nil {
		t.Fatal(err)
	}
}
