// Package memory provides chip RAM, the memory every DMA consumer
// reads from and writes to.
package memory

import (
	"fmt"

	"github.com/thelolagemann/goagnus/internal/types"
)

// Bus is the chip bus as seen by the DMA consumers. Addresses are
// byte addresses; the lowest bit is ignored.
type Bus interface {
	Read16(address uint32) uint16
	Write16(address uint32, value uint16)
}

// Sizes of chip RAM supported by the chipset revisions.
const (
	Size512K = 512 << 10
	Size1M   = 1 << 20
	Size2M   = 2 << 20
)

// ChipRAM is a block of chip RAM. Addresses wrap at the size of the
// block, as the upper address lines are not decoded.
type ChipRAM struct {
	data []byte
	mask uint32
}

// NewChipRAM returns a zeroed block of chip RAM. size must be one of
// the supported sizes.
func NewChipRAM(size int) (*ChipRAM, error) {
	switch size {
	case Size512K, Size1M, Size2M:
	default:
		return nil, fmt.Errorf("memory: unsupported chip RAM size %d", size)
	}
	return &ChipRAM{
		data: make([]byte, size),
		mask: uint32(size-1) &^ 1,
	}, nil
}

// Size returns the size of the block in bytes.
func (r *ChipRAM) Size() int {
	return len(r.data)
}

// Read16 returns the big-endian word at the given address.
func (r *ChipRAM) Read16(address uint32) uint16 {
	a := address & r.mask
	return uint16(r.data[a])<<8 | uint16(r.data[a+1])
}

// Write16 writes the big-endian word to the given address.
func (r *ChipRAM) Write16(address uint32, value uint16) {
	a := address & r.mask
	r.data[a] = byte(value >> 8)
	r.data[a+1] = byte(value)
}

// LoadImage copies data into RAM at the given address.
func (r *ChipRAM) LoadImage(address uint32, data []byte) error {
	if int(address)+len(data) > len(r.data) {
		return fmt.Errorf("memory: %d bytes at $%06X exceed chip RAM", len(data), address)
	}
	copy(r.data[address:], data)
	return nil
}

// WriteWords writes consecutive words starting at address, which is
// how copper lists and test patterns are usually poked in.
func (r *ChipRAM) WriteWords(address uint32, words ...uint16) {
	for i, w := range words {
		r.Write16(address+uint32(2*i), w)
	}
}

// Bytes returns the underlying memory.
func (r *ChipRAM) Bytes() []byte {
	return r.data
}

var _ types.Stater = (*ChipRAM)(nil)

// Load implements the types.Stater interface.
//
// The values are loaded in the following order:
//   - size (uint32)
//   - data ([]byte)
//
// A state of a different size leaves RAM untouched; the chipset
// verifies the size before loading.
func (r *ChipRAM) Load(s *types.State) {
	if int(s.Read32()) != len(r.data) {
		return
	}
	s.ReadData(r.data)
}

// Save implements the types.Stater interface.
//
// The values are saved in the following order:
//   - size (uint32)
//   - data ([]byte)
func (r *ChipRAM) Save(s *types.State) {
	s.Write32(uint32(len(r.data)))
	s.WriteData(r.data)
}
