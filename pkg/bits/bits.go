package bits

// Val returns the value of the bit at the given index.
func Val(w uint16, i uint8) uint16 {
	return (w >> i) & 1
}

// Reset resets the bit at the given index.
func Reset(w uint16, i uint8) uint16 {
	return w &^ (1 << i)
}

// Set sets the bit at the given index.
func Set(w uint16, i uint8) uint16 {
	return w | (1 << i)
}

// Test tests the bit at the given index.
func Test(w uint16, i uint8) bool {
	return (w>>i)&1 != 0
}

// Hi returns the upper byte of w.
func Hi(w uint16) uint8 { return uint8(w >> 8) }

// Lo returns the lower byte of w.
func Lo(w uint16) uint8 { return uint8(w) }

// ReplaceHi replaces the upper 16 bits of a 32 bit chip
// address, as done by the xxxH pointer registers.
func ReplaceHi(addr uint32, v uint16) uint32 {
	return addr&0xFFFF | uint32(v)<<16
}

// ReplaceLo replaces the lower 16 bits of a 32 bit chip
// address, as done by the xxxL pointer registers.
func ReplaceLo(addr uint32, v uint16) uint32 {
	return addr&0xFFFF0000 | uint32(v)
}

// SetClr applies a SET/CLR write to reg. If bit 15 of v is set,
// the remaining bits of v are set in reg, otherwise cleared.
func SetClr(reg, v uint16) uint16 {
	if v&0x8000 != 0 {
		return reg | v&0x7FFF
	}
	return reg &^ v
}
