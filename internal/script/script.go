// Package script drives the chipset from Lua. Scripts write
// registers, poke chip RAM, run the clock and check the results,
// for example:
//
//	poke(0x1000, 0x0180); poke(0x1002, 0x0F00)
//	write("COP1LCH", 0); write("COP1LCL", 0x1000)
//	write("DMACON", 0x8280)
//	frame()
//	expect(band(read("DMACONR"), 0x0080) ~= 0, "copper enabled")
package script

import (
	"errors"
	"fmt"
	"io"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/thelolagemann/goagnus/internal/agnus"
	"github.com/thelolagemann/goagnus/internal/debugger"
	"github.com/thelolagemann/goagnus/internal/types/registers"
)

// ErrExpectation is wrapped by the error of a failed expect.
var ErrExpectation = errors.New("script: expectation failed")

// Harness is a Lua state bound to a chipset.
type Harness struct {
	a   *agnus.Agnus
	out io.Writer
	p   *debugger.Printer
	L   *lua.LState

	failed error
}

// New returns a harness driving a, printing to out.
func New(a *agnus.Agnus, out io.Writer) *Harness {
	h := &Harness{
		a:   a,
		out: out,
		p:   debugger.New(out),
		L:   lua.NewState(),
	}
	for name, fn := range map[string]lua.LGFunction{
		"write":  h.write,
		"read":   h.read,
		"poke":   h.poke,
		"peek":   h.peek,
		"tick":   h.tick,
		"lines":  h.lines,
		"frame":  h.frame,
		"clock":  h.clock,
		"pos":    h.pos,
		"status": h.status,
		"copper": h.copper,
		"slots":  h.slots,
		"print":  h.print,
		"expect": h.expect,
		"band":   band,
		"bor":    bor,
	} {
		h.L.SetGlobal(name, h.L.NewFunction(fn))
	}
	return h
}

// Close releases the Lua state.
func (h *Harness) Close() {
	h.L.Close()
}

// DoString runs src.
func (h *Harness) DoString(src string) error {
	return h.result(h.L.DoString(src))
}

// DoFile runs the script at path.
func (h *Harness) DoFile(path string) error {
	return h.result(h.L.DoFile(path))
}

func (h *Harness) result(err error) error {
	if h.failed != nil {
		err, h.failed = h.failed, nil
		return err
	}
	return err
}

// register accepts a register name or offset.
func (h *Harness) register(L *lua.LState, n int) registers.Address {
	v := L.CheckAny(n)
	if s, ok := v.(lua.LString); ok {
		reg, ok := registers.Lookup(string(s))
		if !ok {
			L.ArgError(n, fmt.Sprintf("unknown register %q", string(s)))
		}
		return reg
	}
	return registers.Address(L.CheckInt(n))
}

func (h *Harness) write(L *lua.LState) int {
	reg := h.register(L, 1)
	if err := h.a.Write(reg, uint16(L.CheckInt(2))); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (h *Harness) read(L *lua.LState) int {
	v, err := h.a.Read(h.register(L, 1))
	if err != nil {
		L.RaiseError("%v", err)
	}
	L.Push(lua.LNumber(v))
	return 1
}

func (h *Harness) poke(L *lua.LState) int {
	addr := uint32(L.CheckInt(1))
	mem := h.a.Memory()
	if addr&1 != 0 || int(addr) >= mem.Size() {
		L.ArgError(1, fmt.Sprintf("bad chip RAM address $%06X", addr))
	}
	mem.Write16(addr, uint16(L.CheckInt(2)))
	return 0
}

func (h *Harness) peek(L *lua.LState) int {
	addr := uint32(L.CheckInt(1))
	mem := h.a.Memory()
	if addr&1 != 0 || int(addr) >= mem.Size() {
		L.ArgError(1, fmt.Sprintf("bad chip RAM address $%06X", addr))
	}
	L.Push(lua.LNumber(mem.Read16(addr)))
	return 1
}

func (h *Harness) tick(L *lua.LState) int {
	n := L.OptInt(1, 1)
	h.a.ExecuteUntil(h.a.Clock() + int64(n))
	return 0
}

func (h *Harness) lines(L *lua.LState) int {
	h.a.ExecuteLines(L.OptInt(1, 1))
	return 0
}

func (h *Harness) frame(L *lua.LState) int {
	for n := L.OptInt(1, 1); n > 0; n-- {
		h.a.ExecuteFrame()
	}
	return 0
}

func (h *Harness) clock(L *lua.LState) int {
	L.Push(lua.LNumber(h.a.Clock()))
	return 1
}

func (h *Harness) pos(L *lua.LState) int {
	L.Push(lua.LNumber(h.a.Beam.Pos.V))
	L.Push(lua.LNumber(h.a.Beam.Pos.H))
	return 2
}

func (h *Harness) status(L *lua.LState) int {
	h.p.Status(h.a.Inspect())
	return 0
}

func (h *Harness) copper(L *lua.LState) int {
	list := L.OptInt(1, 1)
	if list != 1 && list != 2 {
		L.ArgError(1, "copper list must be 1 or 2")
	}
	n := L.OptInt(2, 16)
	if n < 0 {
		L.ArgError(2, "instruction count must not be negative")
	}
	h.p.Copper(h.a.Copper.List(list, n), h.a.Copper.PC())
	return 0
}

func (h *Harness) slots(L *lua.LState) int {
	s := h.a.Inspect()
	h.p.DAS(s.DAS)
	h.p.BPL(s.BPL)
	return 0
}

func (h *Harness) print(L *lua.LState) int {
	parts := make([]string, L.GetTop())
	for i := range parts {
		parts[i] = L.ToStringMeta(L.Get(i + 1)).String()
	}
	fmt.Fprintln(h.out, strings.Join(parts, "\t"))
	return 0
}

// expect stops the script with ErrExpectation when its first argument
// is false or nil.
func (h *Harness) expect(L *lua.LState) int {
	if lua.LVAsBool(L.Get(1)) {
		return 0
	}
	msg := L.OptString(2, "expectation failed")
	h.failed = fmt.Errorf("%w: %s at %s", ErrExpectation, msg, h.a.Beam.Pos)
	L.RaiseError("%s", msg)
	return 0
}

func band(L *lua.LState) int {
	L.Push(lua.LNumber(L.CheckInt64(1) & L.CheckInt64(2)))
	return 1
}

func bor(L *lua.LState) int {
	L.Push(lua.LNumber(L.CheckInt64(1) | L.CheckInt64(2)))
	return 1
}
