package blitter

type copyFunc func(b *Blitter)

// copyFuncs holds a copy blit for every combination of the channel
// enable bits ABCD and the descending flag. It is indexed by
// ABCD<<1 | DESC.
var copyFuncs [32]copyFunc

func init() {
	for i := range copyFuncs {
		copyFuncs[i] = makeCopy(i&0b10000 != 0, i&0b01000 != 0, i&0b00100 != 0, i&0b00010 != 0, i&1 != 0)
	}
}

func (b *Blitter) fastCopy() {
	nr := int(b.bltcon0>>7&0b11110) | b.descIndex()
	copyFuncs[nr](b)
}

func (b *Blitter) descIndex() int {
	if b.desc() {
		return 1
	}
	return 0
}

// add moves pointer p by d bytes.
func add(p uint32, d int32) uint32 {
	return p + uint32(d)
}

func makeCopy(useA, useB, useC, useD, desc bool) copyFunc {
	return func(b *Blitter) {
		apt, bpt, cpt, dpt := b.bltapt, b.bltbpt, b.bltcpt, b.bltdpt

		incr := int32(2)
		amod, bmod := int32(b.bltamod), int32(b.bltbmod)
		cmod, dmod := int32(b.bltcmod), int32(b.bltdmod)
		if desc {
			incr = -2
			amod, bmod, cmod, dmod = -amod, -bmod, -cmod, -dmod
		}

		doFill := b.fillEnabled()
		exclusive := b.efe()
		ash, bsh := b.ash(), b.bsh()
		lf := b.lf()

		b.aold, b.bold = 0, 0

		for y := uint16(0); y < b.bltsizeV; y++ {
			carry := b.fci()
			mask := b.bltafwm

			for x := uint16(0); x < b.bltsizeH; x++ {
				if x == b.bltsizeH-1 {
					mask &= b.bltalwm
				}

				if useA {
					b.anew = b.mem.Read16(apt)
					apt = add(apt, incr)
				}
				if useB {
					b.bnew = b.mem.Read16(bpt)
					bpt = add(bpt, incr)
				}
				if useC {
					b.chold = b.mem.Read16(cpt)
					cpt = add(cpt, incr)
				}

				// the A shifter runs even with channel A off
				b.ahold = BarrelShift(b.anew&mask, b.aold, ash, desc)
				b.aold = b.anew & mask

				if useB {
					b.bhold = BarrelShift(b.bnew, b.bold, bsh, desc)
					b.bold = b.bnew
				}

				b.dhold = Minterm(b.ahold, b.bhold, b.chold, lf)
				if doFill {
					b.dhold, carry = Fill(b.dhold, carry, exclusive)
				}
				if b.dhold != 0 {
					b.bzero = false
				}

				if useD {
					b.mem.Write16(dpt, b.dhold)
					dpt = add(dpt, incr)
				}

				mask = 0xFFFF
			}

			if useA {
				apt = add(apt, amod)
			}
			if useB {
				bpt = add(bpt, bmod)
			}
			if useC {
				cpt = add(cpt, cmod)
			}
			if useD {
				dpt = add(dpt, dmod)
			}
		}

		b.bltapt, b.bltbpt, b.bltcpt, b.bltdpt = apt, bpt, cpt, dpt
	}
}

// fastLine draws a line in one go. The line is drawn one dot per row
// through channel C, with channel A holding the dot and the error
// term in BLTAPT.
func (b *Blitter) fastLine() {
	firstPixel := true
	useB, useC := b.useB(), b.useC()
	sing := b.bltcon1&bltcon1SING != 0
	sign := b.bltcon1&bltcon1SIGN != 0
	sud := b.bltcon1&bltcon1SUD != 0
	sul := b.bltcon1&bltcon1SUL != 0
	aul := b.bltcon1&bltcon1AUL != 0
	ash, bsh := b.ash(), b.bsh()
	lf := b.lf()

	incx := func() {
		if ash++; ash == 16 {
			ash = 0
			b.bltcpt = add(b.bltcpt, 2)
		}
	}
	decx := func() {
		if ash == 0 {
			ash = 16
			b.bltcpt = add(b.bltcpt, -2)
		}
		ash--
	}
	incy := func() {
		b.bltcpt = add(b.bltcpt, int32(b.bltcmod))
		firstPixel = true
	}
	decy := func() {
		b.bltcpt = add(b.bltcpt, -int32(b.bltcmod))
		firstPixel = true
	}
	step := func(dec bool, y bool) {
		switch {
		case y && dec:
			decy()
		case y:
			incy()
		case dec:
			decx()
		default:
			incx()
		}
	}

	for i := uint16(0); i < b.bltsizeV; i++ {
		if useB {
			b.bnew = b.mem.Read16(b.bltbpt)
			b.bltbpt = add(b.bltbpt, int32(b.bltbmod))
		}
		if useC {
			b.chold = b.mem.Read16(b.bltcpt)
		}

		b.ahold = BarrelShift(b.anew&b.bltafwm, 0, ash, false)
		b.bhold = BarrelShift(b.bnew, b.bnew, bsh, false)
		bsh = (bsh - 1) & 0xF

		var bmask uint16
		if b.bhold&1 != 0 {
			bmask = 0xFFFF
		}
		b.dhold = Minterm(b.ahold, bmask, b.chold, lf)

		write := (!sing || firstPixel) && useC
		firstPixel = false

		// minor axis, only when the error term is not negative
		if !sign {
			step(sul, sud)
		}
		// major axis
		step(aul, !sud)

		if b.useA() {
			if sign {
				b.bltapt = add(b.bltapt, int32(b.bltbmod))
			} else {
				b.bltapt = add(b.bltapt, int32(b.bltamod))
			}
		}
		sign = int16(b.bltapt) < 0

		if b.dhold != 0 {
			b.bzero = false
		}
		if write {
			b.mem.Write16(b.bltdpt, b.dhold)
		}
		b.bltdpt = b.bltcpt
	}

	b.setASH(ash)
	b.setBSH(bsh)
	if sign {
		b.bltcon1 |= bltcon1SIGN
	} else {
		b.bltcon1 &^= bltcon1SIGN
	}
}
