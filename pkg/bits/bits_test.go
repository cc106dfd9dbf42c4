package bits

import "testing"

func TestSetClr(t *testing.T) {
	tests := []struct {
		name   string
		reg, v uint16
		want   uint16
	}{
		{"set", 0x0000, 0x8240, 0x0240},
		{"clear", 0x03FF, 0x0040, 0x03BF},
		{"set keeps", 0x0200, 0x8100, 0x0300},
		{"clear bit 15 ignored", 0x0001, 0x0000, 0x0001},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SetClr(tt.reg, tt.v); got != tt.want {
				t.Errorf("expected %04X, got %04X", tt.want, got)
			}
		})
	}
}

func TestReplace(t *testing.T) {
	a := ReplaceHi(0x1234, 0x0007)
	if a != 0x071234 {
		t.Errorf("expected 071234, got %06X", a)
	}
	a = ReplaceLo(a, 0xBEEF)
	if a != 0x07BEEF {
		t.Errorf("expected 07BEEF, got %06X", a)
	}
	if !Test(0x8000, 15) || Test(0x7FFF, 15) {
		t.Errorf("expected bit 15 test to follow value")
	}
}
