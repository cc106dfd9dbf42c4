package copper

import (
	"fmt"

	"github.com/thelolagemann/goagnus/internal/scheduler"
	"github.com/thelolagemann/goagnus/internal/types/registers"
)

// Instruction is a decoded copper instruction.
type Instruction struct {
	Addr    uint32
	First   uint16
	Second  uint16
	Illegal bool
}

// IsMove returns true if the instruction is a MOVE.
func (i Instruction) IsMove() bool { return i.First&1 == 0 }

// IsWait returns true if the instruction is a WAIT.
func (i Instruction) IsWait() bool { return i.First&1 != 0 && i.Second&1 == 0 }

func (i Instruction) String() string {
	if i.IsMove() {
		reg := registers.Address(i.First & 0x1FE)
		s := fmt.Sprintf("MOVE $%04X, %s", i.Second, registers.Name(reg))
		if i.Illegal {
			s += " (illegal)"
		}
		return s
	}

	op := "SKIP"
	if i.IsWait() {
		op = "WAIT"
	}
	vp, hp := i.First>>8, i.First&0xFE
	vm, hm := i.Second>>8&0x7F|0x80, i.Second&0xFE
	s := fmt.Sprintf("%s ($%02X,$%02X)", op, vp, hp)
	if vm != 0xFF || hm != 0xFE {
		s += fmt.Sprintf(" & ($%02X,$%02X)", vm, hm)
	}
	// BFD clear, the instruction also waits for the blitter
	if i.Second&0x8000 == 0 {
		s += " BLIT"
	}
	return s
}

// Decode reads the instruction at addr without touching the bus.
func (c *Copper) Decode(addr uint32) Instruction {
	addr &^= 1
	i := Instruction{
		Addr:   addr,
		First:  c.mem.Read16(addr),
		Second: c.mem.Read16(addr + 2),
	}
	i.Illegal = i.IsMove() && c.IsIllegalAddress(registers.Address(i.First&0x1FE))
	return i
}

// Disassemble returns the instruction at addr in text form.
func (c *Copper) Disassemble(addr uint32) string {
	return c.Decode(addr).String()
}

// List decodes up to n instructions from the start of list nr. It
// stops early after the end-of-list marker WAIT ($FF,$FE).
func (c *Copper) List(nr, n int) []Instruction {
	if n < 0 {
		n = 0
	}
	addr := c.listStart(nr)
	out := make([]Instruction, 0, n)
	for len(out) < n {
		i := c.Decode(addr)
		out = append(out, i)
		if i.First == 0xFFFF && i.Second == 0xFFFE {
			break
		}
		addr += 4
	}
	return out
}

// Info is a point in time view of the copper.
type Info struct {
	PC, PC0          uint32
	Cop1LC, Cop2LC   uint32
	Cop1End, Cop2End uint32
	Cop1Ins, Cop2Ins uint16
	List             int
	CDANG            bool
	Skip             bool
	Active           bool
	State            string
}

// Inspect returns the current state of the copper.
func (c *Copper) Inspect() Info {
	return Info{
		PC:      c.pc,
		PC0:     c.pc0,
		Cop1LC:  c.cop1lc,
		Cop2LC:  c.cop2lc,
		Cop1End: c.cop1end,
		Cop2End: c.cop2end,
		Cop1Ins: c.cop1ins,
		Cop2Ins: c.cop2ins,
		List:    c.list,
		CDANG:   c.cdang,
		Skip:    c.skip,
		Active:  c.activeInThisFrame,
		State:   EventName(c.s.ID(scheduler.Cop)),
	}
}
