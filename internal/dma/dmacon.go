package dma

import "github.com/thelolagemann/goagnus/internal/types"

// DMACON bits.
//
//	Bit 15: SET/CLR  (write only)
//	Bit 14: BBUSY    Blitter busy (read only)
//	Bit 13: BZERO    Blitter logic zero (read only)
//	Bit 10: BLTPRI   Blitter has priority over the CPU
//	Bit  9: DMAEN    Master enable
//	Bit  8: BPLEN    Bitplane DMA
//	Bit  7: COPEN    Copper DMA
//	Bit  6: BLTEN    Blitter DMA
//	Bit  5: SPREN    Sprite DMA
//	Bit  4: DSKEN    Disk DMA
//	Bit 3-0: AUDxEN  Audio channel DMA
const (
	SETCLR = types.Bit15
	BBUSY  = types.Bit14
	BZERO  = types.Bit13
	BLTPRI = types.Bit10
	DMAEN  = types.Bit9
	BPLEN  = types.Bit8
	COPEN  = types.Bit7
	BLTEN  = types.Bit6
	SPREN  = types.Bit5
	DSKEN  = types.Bit4
	AUD3EN = types.Bit3
	AUD2EN = types.Bit2
	AUD1EN = types.Bit1
	AUD0EN = types.Bit0

	// WriteMask are the bits of DMACON that can be written.
	WriteMask = 0x07FF
)

// enableBits maps an owner to the DMACON bits that must be set
// for it to use the bus. Owners with no bits are always enabled.
var enableBits = [NumOwners]uint16{
	Bitplane: DMAEN | BPLEN,
	Copper:   DMAEN | COPEN,
	Blitter:  DMAEN | BLTEN,
	Sprite:   DMAEN | SPREN,
	Disk:     DMAEN | DSKEN,
}

// Enabled returns true if o's DMA is enabled in dmacon.
func Enabled(dmacon uint16, o Owner) bool {
	bits := enableBits[o]
	return dmacon&bits == bits
}

// AudioEnabled returns true if DMA for audio channel ch is enabled.
func AudioEnabled(dmacon uint16, ch int) bool {
	return dmacon&DMAEN != 0 && dmacon&(1<<ch) != 0
}
