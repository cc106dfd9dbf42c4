package log

import (
	"fmt"
	"strings"
)

// Category selects a group of trace messages.
type Category uint16

const (
	Copper Category = 1 << iota
	CopperRegs
	Blitter
	BlitterTiming
	DMA
	Scheduler
	Beam
	Snapshot
	Interrupts

	All Category = 1<<iota - 1
)

var categoryNames = map[string]Category{
	"copper":        Copper,
	"copperregs":    CopperRegs,
	"blitter":       Blitter,
	"blittertiming": BlitterTiming,
	"dma":           DMA,
	"scheduler":     Scheduler,
	"beam":          Beam,
	"snapshot":      Snapshot,
	"interrupts":    Interrupts,
	"all":           All,
}

// ParseCategories parses a comma separated list of category
// names, e.g. "copper,blitter".
func ParseCategories(s string) (Category, error) {
	var c Category
	for _, name := range strings.Split(s, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		v, ok := categoryNames[name]
		if !ok {
			return 0, fmt.Errorf("log: unknown trace category %q", name)
		}
		c |= v
	}
	return c, nil
}

// Config carries the enabled trace categories and the logger the
// trace messages are written to. A nil *Config traces nothing, so
// components can hold one unconditionally.
type Config struct {
	Enabled Category
	Logger  Logger
}

// NewConfig returns a trace configuration writing to l.
func NewConfig(l Logger, c Category) *Config {
	return &Config{Enabled: c, Logger: l}
}

// On reports whether c is being traced.
func (t *Config) On(c Category) bool {
	return t != nil && t.Enabled&c != 0 && t.Logger != nil
}

// Tracef writes a debug message if c is being traced.
func (t *Config) Tracef(c Category, format string, args ...interface{}) {
	if !t.On(c) {
		return
	}
	t.Logger.Debugf(format, args...)
}
