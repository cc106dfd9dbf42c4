package dma

// Owner is a DMA consumer that can hold the chip bus for a cycle.
type Owner uint8

const (
	None Owner = iota
	CPU
	Refresh
	Disk
	Audio
	Sprite
	Bitplane
	Copper
	Blitter

	NumOwners
)

var ownerNames = [NumOwners]string{
	"NONE", "CPU", "REFRESH", "DISK", "AUDIO", "SPRITE", "BITPLANE", "COPPER", "BLITTER",
}

func (o Owner) String() string {
	if o < NumOwners {
		return ownerNames[o]
	}
	return "???"
}

// Short returns a single character for slot table dumps.
func (o Owner) Short() byte {
	return ".CRDASBcb"[o%NumOwners]
}
