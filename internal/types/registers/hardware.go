package registers

import (
	"errors"
	"fmt"
)

var (
	// ErrOddAddress is returned for accesses to odd offsets.
	ErrOddAddress = errors.New("registers: odd address")
	// ErrUnmapped is returned for offsets outside the register space,
	// or that no component has registered.
	ErrUnmapped = errors.New("registers: unmapped address")
	// ErrReadOnly is returned when writing a read-only register.
	ErrReadOnly = errors.New("registers: register is read-only")
	// ErrWriteOnly is returned when reading a write-only register.
	ErrWriteOnly = errors.New("registers: register is write-only")
)

// Table is the custom register space of a single chipset. Each
// component registers the addresses it owns, with functions to
// read and write the register.
type Table struct {
	regs [0x100]*Hardware
}

// NewTable returns an empty register table.
func NewTable() *Table {
	return &Table{}
}

// Hardware represents a custom chip register. Most registers are
// either read-only or write-only, with the write of a register
// usually having side effects in the owning component.
type Hardware struct {
	address Address
	value   uint16

	read  func(address Address) uint16
	write func(address Address, value uint16)
}

// HardwareOpt is a function that configures a hardware register,
// such as making it readable, writable, or both.
type HardwareOpt func(*Hardware)

// Register registers the hardware register at the given address
// with the given options, replacing any previous registration.
func (t *Table) Register(address Address, opts ...HardwareOpt) *Hardware {
	h := &Hardware{address: address}
	for _, opt := range opts {
		opt(h)
	}
	t.regs[(address&Last)>>1] = h
	return h
}

// Has returns true if a register has been registered at address.
func (t *Table) Has(address Address) bool {
	return address <= Last && t.regs[address>>1] != nil
}

func (t *Table) lookup(address Address) (*Hardware, error) {
	if address&1 != 0 {
		return nil, fmt.Errorf("%w: $%03X", ErrOddAddress, address)
	}
	if address > Last || t.regs[address>>1] == nil {
		return nil, fmt.Errorf("%w: $%03X", ErrUnmapped, address)
	}
	return t.regs[address>>1], nil
}

// Read returns the value of the register at the given address.
func (t *Table) Read(address Address) (uint16, error) {
	h, err := t.lookup(address)
	if err != nil {
		return 0, err
	}
	if h.read == nil {
		return 0, fmt.Errorf("%w: %s", ErrWriteOnly, Name(address))
	}
	return h.read(address), nil
}

// Write writes the given value to the register at the given address.
func (t *Table) Write(address Address, value uint16) error {
	h, err := t.lookup(address)
	if err != nil {
		return err
	}
	if h.write == nil {
		return fmt.Errorf("%w: %s", ErrReadOnly, Name(address))
	}
	h.write(address, value)
	return nil
}

// IsReadable allows the hardware register to be read.
func IsReadable() HardwareOpt {
	return func(h *Hardware) {
		h.read = func(Address) uint16 {
			return h.value
		}
	}
}

// IsWritable allows the hardware register to be written to.
func IsWritable() HardwareOpt {
	return func(h *Hardware) {
		h.write = func(_ Address, value uint16) {
			h.value = value
		}
	}
}

// IsWritableMasked allows the hardware register to be written to,
// keeping only the bits in mask.
func IsWritableMasked(mask uint16) HardwareOpt {
	return func(h *Hardware) {
		h.write = func(_ Address, value uint16) {
			h.value = value & mask
		}
	}
}

// WithReadFunc allows the hardware register to be read with a
// custom read function.
func WithReadFunc(readFunc func(h *Hardware, address Address) uint16) HardwareOpt {
	return func(h *Hardware) {
		h.read = func(address Address) uint16 {
			return readFunc(h, address)
		}
	}
}

// WithWriteFunc allows the hardware register to be written to
// with a custom function.
func WithWriteFunc(write func(h *Hardware, address Address, value uint16)) HardwareOpt {
	return func(h *Hardware) {
		h.write = func(address Address, value uint16) {
			write(h, address, value)
		}
	}
}

// Strobe makes a write-only register that ignores its value, such
// as COPJMP1.
func Strobe(fn func()) HardwareOpt {
	return func(h *Hardware) {
		h.write = func(Address, uint16) { fn() }
	}
}

func (h *Hardware) Set(value uint16) {
	h.value = value
}

func (h *Hardware) Value() uint16 {
	return h.value
}

func (h *Hardware) Address() Address {
	return h.address
}
