package types

import (
	"errors"
	"testing"
)

func TestState_RoundTrip(t *testing.T) {
	s := NewState()
	s.Write8(0xAB)
	s.Write16(0x1234)
	s.Write32(0xDEADBEEF)
	s.WriteInt64(-2)
	s.WriteBool(true)
	s.WriteData([]byte{1, 2, 3})

	r := StateFromBytes(s.Bytes())
	if v := r.Read8(); v != 0xAB {
		t.Errorf("expected AB, got %02X", v)
	}
	if v := r.Read16(); v != 0x1234 {
		t.Errorf("expected 1234, got %04X", v)
	}
	if v := r.Read32(); v != 0xDEADBEEF {
		t.Errorf("expected DEADBEEF, got %08X", v)
	}
	if v := r.ReadInt64(); v != -2 {
		t.Errorf("expected -2, got %d", v)
	}
	if !r.ReadBool() {
		t.Errorf("expected true")
	}
	p := make([]byte, 3)
	r.ReadData(p)
	if p[2] != 3 {
		t.Errorf("expected 3, got %d", p[2])
	}
	if r.Err() != nil || r.Remaining() != 0 {
		t.Errorf("expected clean end, got %v with %d remaining", r.Err(), r.Remaining())
	}
}

func TestState_ShortRead(t *testing.T) {
	r := StateFromBytes([]byte{1, 2, 3})
	r.Read16()
	if v := r.Read32(); v != 0 {
		t.Errorf("expected 0 from short read, got %d", v)
	}
	if !errors.Is(r.Err(), ErrShortState) {
		t.Errorf("expected ErrShortState, got %v", r.Err())
	}
	// subsequent reads stay zero
	if v := r.Read8(); v != 0 {
		t.Errorf("expected 0, got %d", v)
	}
}
