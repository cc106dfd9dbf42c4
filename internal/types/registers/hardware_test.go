package registers

import (
	"errors"
	"testing"
)

func TestTable_Errors(t *testing.T) {
	tbl := NewTable()
	tbl.Register(DMACONR, WithReadFunc(func(*Hardware, Address) uint16 { return 0x0200 }))
	tbl.Register(DMACON, IsWritableMasked(0x07FF))

	tests := []struct {
		name    string
		fn      func() error
		wantErr error
	}{
		{"odd address", func() error { return tbl.Write(0x097, 1) }, ErrOddAddress},
		{"out of range", func() error { _, err := tbl.Read(0x200); return err }, ErrUnmapped},
		{"unregistered", func() error { return tbl.Write(BLTSIZE, 1) }, ErrUnmapped},
		{"read-only", func() error { return tbl.Write(DMACONR, 1) }, ErrReadOnly},
		{"write-only", func() error { _, err := tbl.Read(DMACON); return err }, ErrWriteOnly},
		{"ok", func() error { return tbl.Write(DMACON, 0xFFFF) }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fn()
			if tt.wantErr == nil && err != nil || tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	if v, _ := tbl.Read(DMACONR); v != 0x0200 {
		t.Errorf("expected 0200, got %04X", v)
	}
}

func TestName(t *testing.T) {
	tests := map[Address]string{
		COP1LCH:  "COP1LCH",
		0x0F6:    "BPL6PTL",
		0x0D8:    "AUD3VOL",
		0x17E:    "SPR7DATB",
		0x1A2:    "COLOR17",
		0x06A:    "$06A",
		BLTCON0L: "BLTCON0L",
	}
	for a, want := range tests {
		if got := Name(a); got != want {
			t.Errorf("expected %s, got %s", want, got)
		}
	}
}

func TestLookup(t *testing.T) {
	for name, want := range map[string]Address{
		"dmacon":   DMACON,
		"COLOR17":  0x1A2,
		"Spr7DatB": 0x17E,
		"bpl1pth":  BPL1PTH,
	} {
		if got, ok := Lookup(name); !ok || got != want {
			t.Errorf("%s: expected $%03X, got $%03X (%v)", name, want, got, ok)
		}
	}
	if _, ok := Lookup("AF"); ok {
		t.Error("expected unknown register")
	}
}

func BenchmarkTable_Write(b *testing.B) {
	tbl := NewTable()
	var v uint16
	tbl.Register(BLTCON0, WithWriteFunc(func(_ *Hardware, _ Address, value uint16) { v = value }))
	for i := 0; i < b.N; i++ {
		_ = tbl.Write(BLTCON0, uint16(i))
	}
	_ = v
}
