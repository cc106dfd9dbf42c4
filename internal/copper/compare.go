package copper

import "github.com/thelolagemann/goagnus/internal/beam"

func (c *Copper) isMove() bool {
	return c.cop1ins&1 == 0
}

func (c *Copper) isWait() bool {
	return c.cop1ins&1 != 0 && c.cop2ins&1 == 0
}

// bfd returns the blitter finish disable bit of a WAIT or SKIP.
func (c *Copper) bfd() bool {
	return c.cop2ins&0x8000 != 0
}

// vphp returns the beam position of a WAIT or SKIP.
func (c *Copper) vphp() uint16 {
	return c.cop1ins & 0xFFFE
}

// vmhm returns the comparison mask of a WAIT or SKIP. The vertical
// mask bit 7 cannot be masked and the lowest horizontal bit is
// always masked.
func (c *Copper) vmhm() uint16 {
	return c.cop2ins&0x7FFE | 0x8001
}

// Compare reports whether the beam position pos satisfies the wait
// position waitpos under mask.
func Compare(pos beam.Position, waitpos, mask uint16) bool {
	vBeam := uint8(pos.V)
	vWait := uint8(waitpos >> 8)
	vMask := uint8(mask>>8) | 0x80

	switch {
	case vBeam&vMask < vWait&vMask:
		return false
	case vBeam&vMask > vWait&vMask:
		return true
	}

	hBeam := uint8(pos.H) & 0xFE
	hWait := uint8(waitpos) & 0xFE
	hMask := uint8(mask) & 0xFE
	return hBeam&hMask >= hWait&hMask
}

// Comparator runs the comparator of the current instruction against
// pos.
func (c *Copper) Comparator(pos beam.Position) bool {
	return Compare(pos, c.vphp(), c.vmhm())
}

// FindMatch returns the earliest beam position at or after the
// current one at which the current WAIT triggers. The search stops
// at the end of the frame.
func (c *Copper) FindMatch() (beam.Position, bool) {
	return findMatch(c.beam.Position(), c.beam.NumLines(), c.vphp(), c.vmhm())
}

func findMatch(pos beam.Position, numLines int, comp, mask uint16) (beam.Position, bool) {
	b := uint32(pos.V)<<8 | uint32(pos.H)
	cmp := uint32(comp)
	msk := uint32(mask)

	for int(b>>8) < numLines {
		vBeam := b & msk &^ 0xFF
		vComp := cmp & msk &^ 0xFF

		if vBeam == vComp {
			if m, ok := findHorizontalMatch(b, cmp, msk); ok {
				return beam.Position{V: int(m >> 8), H: int(m & 0xFF)}, true
			}
		} else if vBeam > vComp {
			return beam.Position{V: int(b >> 8), H: int(b & 0xFF)}, true
		}

		// continue at the start of the next line
		b = b&^0xFF + 0x100
	}
	return beam.Position{}, false
}

func findHorizontalMatch(b, comp, mask uint32) (uint32, bool) {
	for ; b&0xFF < beam.HPosCnt; b++ {
		if b&mask >= comp&mask {
			return b, true
		}
	}
	return 0, false
}
