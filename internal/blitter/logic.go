package blitter

// Minterm applies the logic function lf to a, b and c. Each bit of lf
// selects one of the eight combinations of the inputs:
//
//	bit 7: ABC    bit 3: aBC
//	bit 6: ABc    bit 2: aBc
//	bit 5: AbC    bit 1: abC
//	bit 4: Abc    bit 0: abc
//
// where a lower case letter is the inverted input.
func Minterm(a, b, c uint16, lf uint8) uint16 {
	var r uint16
	if lf&0x80 != 0 {
		r |= a & b & c
	}
	if lf&0x40 != 0 {
		r |= a & b &^ c
	}
	if lf&0x20 != 0 {
		r |= a &^ b & c
	}
	if lf&0x10 != 0 {
		r |= a &^ b &^ c
	}
	if lf&0x08 != 0 {
		r |= ^a & b & c
	}
	if lf&0x04 != 0 {
		r |= ^a & b &^ c
	}
	if lf&0x02 != 0 {
		r |= ^a &^ b & c
	}
	if lf&0x01 != 0 {
		r |= ^a &^ b &^ c
	}
	return r
}

// BarrelShift shifts the new word of a channel right by shift bits,
// filling with the bits of the previous word. In descending mode the
// shift goes left, filling from the previous word on the right.
func BarrelShift(anew, aold uint16, shift uint16, desc bool) uint16 {
	if desc {
		return uint16((uint32(anew)<<16 | uint32(aold)) >> (16 - shift))
	}
	return uint16((uint32(aold)<<16 | uint32(anew)) >> shift)
}

var (
	// fillPattern[exclusive][carry][byte] is the filled byte.
	fillPattern [2][2][256]uint8
	// nextCarry[carry][byte] is the carry out of a byte.
	nextCarry [2][256]uint8
)

func init() {
	for carryIn := 0; carryIn < 2; carryIn++ {
		for v := 0; v < 256; v++ {
			carry := uint8(carryIn)
			incl, excl := uint8(v), uint8(v)

			for bit := 0; bit < 8; bit++ {
				incl |= carry << bit
				excl ^= carry << bit

				if v&(1<<bit) != 0 {
					carry ^= 1
				}
			}
			fillPattern[0][carryIn][v] = incl
			fillPattern[1][carryIn][v] = excl
			nextCarry[carryIn][v] = carry
		}
	}
}

// Fill runs the area fill circuit over data, right to left, starting
// with carry. It returns the filled word and the carry out.
func Fill(data uint16, carry, exclusive bool) (uint16, bool) {
	var c, e uint8
	if carry {
		c = 1
	}
	if exclusive {
		e = 1
	}

	lo := fillPattern[e][c][data&0xFF]
	c = nextCarry[c][data&0xFF]
	hi := fillPattern[e][c][data>>8]
	c = nextCarry[c][data>>8]

	return uint16(hi)<<8 | uint16(lo), c == 1
}
