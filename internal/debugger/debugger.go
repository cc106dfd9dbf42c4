// Package debugger renders chipset state for a terminal.
package debugger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/thelolagemann/goagnus/internal/agnus"
	"github.com/thelolagemann/goagnus/internal/beam"
	"github.com/thelolagemann/goagnus/internal/copper"
	"github.com/thelolagemann/goagnus/internal/dma"
)

const defaultWidth = 80

// Printer writes chipset state to w. Colours are only used when w
// is a terminal.
type Printer struct {
	w      io.Writer
	width  int
	styles styles
}

// New returns a printer writing to w.
func New(w io.Writer) *Printer {
	p := &Printer{
		w:      w,
		width:  defaultWidth,
		styles: newStyles(lipgloss.NewRenderer(w)),
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			p.width = width
		}
	}
	return p
}

// SetWidth sets the number of columns slot tables are wrapped at.
func (p *Printer) SetWidth(n int) {
	if n > 0 {
		p.width = n
	}
}

func (p *Printer) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

// Status prints the beam position and the state of the copper and
// the blitter.
func (p *Printer) Status(s *agnus.Snapshot) {
	st := p.styles
	p.printf("%s %s clock %d frame %d LOF %v\n",
		st.title.Render(" agnus "), s.Pos, s.Clock, s.Frame.Nr, s.Frame.LOF)
	p.printf("%s $%04X  %s $%04X  %s $%04X  BLS %v\n",
		st.label.Render("DMACON"), s.DMACON,
		st.label.Render("INTREQ"), s.INTREQ,
		st.label.Render("INTENA"), s.INTENA, s.BLS)
	p.printf("%s %-10s PC $%06X list %d\n",
		st.label.Render("copper "), s.Copper.State, s.Copper.PC, s.Copper.List)
	b := s.Blitter
	p.printf("%s %-10s %dx%d BLTCON0 $%04X BLTCON1 $%04X busy %v zero %v (%s)\n",
		st.label.Render("blitter"), b.State, b.Width, b.Height, b.BLTCON0, b.BLTCON1, b.Busy, b.Zero, b.Accuracy)
	if s.Events != "" {
		p.printf("%s\n%s\n", st.label.Render("events"), st.dim.Render(s.Events))
	}
}

// Copper prints the instructions, marking the one at pc.
func (p *Printer) Copper(list []copper.Instruction, pc uint32) {
	st := p.styles
	for _, i := range list {
		addr := fmt.Sprintf("$%06X", i.Addr)
		if i.Addr == pc&^1 {
			addr = st.pc.Render(addr)
		}
		text := i.String()
		switch {
		case i.Illegal:
			text = st.illegal.Render(text)
		case i.IsMove():
			text = st.move.Render(text)
		default:
			text = st.wait.Render(text)
		}
		p.printf("%s  %04X %04X  %s\n", addr, i.First, i.Second, text)
	}
}

// Slots prints one character per cycle of line, wrapped to the
// width of the printer.
func (p *Printer) Slots(name string, line [beam.HPosCnt]dma.Owner) {
	p.printf("%s\n", p.styles.label.Render(name))
	per := p.perRow()
	for start := 0; start < beam.HPosCnt; start += per {
		end := min(start+per, beam.HPosCnt)
		var sb strings.Builder
		for h := start; h < end; h++ {
			o := line[h]
			sb.WriteString(p.styles.owners[o%dma.NumOwners].Render(string(o.Short())))
		}
		p.printf("$%02X %s\n", start, sb.String())
	}
}

// DAS prints the disk, audio and sprite slot table.
func (p *Printer) DAS(table [beam.HPosCnt]dma.DASEvent) {
	var line [beam.HPosCnt]dma.Owner
	for h, e := range table {
		line[h] = dasOwner(e)
	}
	p.Slots("DAS", line)
}

// BPL prints the bitplane slot table.
func (p *Printer) BPL(table [beam.HPosCnt]dma.BplEvent) {
	var line [beam.HPosCnt]dma.Owner
	for h, e := range table {
		if e.Plane() >= 0 {
			line[h] = dma.Bitplane
		}
	}
	p.Slots("BPL", line)
}

func dasOwner(e dma.DASEvent) dma.Owner {
	switch {
	case e == dma.DasNone:
		return dma.None
	case e == dma.DasRefresh:
		return dma.Refresh
	case e >= dma.DasD0 && e <= dma.DasD2:
		return dma.Disk
	case e >= dma.DasA0 && e <= dma.DasA3:
		return dma.Audio
	}
	return dma.Sprite
}

func (p *Printer) perRow() int {
	// "$XX " prefix
	n := p.width - 4
	if n < 8 {
		n = 8
	}
	return n &^ 7
}

// Stats prints the bus cycles of every owner with a bar scaled to the
// busiest owner.
func (p *Printer) Stats(stats [dma.NumOwners]int64) {
	var total, most int64
	for o := dma.CPU; o < dma.NumOwners; o++ {
		total += stats[o]
		most = max(most, stats[o])
	}
	barWidth := p.width - 30
	if barWidth < 10 {
		barWidth = 10
	}
	for o := dma.CPU; o < dma.NumOwners; o++ {
		n := stats[o]
		bar := 0
		if most > 0 {
			bar = int(n * int64(barWidth) / most)
		}
		pct := 0.0
		if total > 0 {
			pct = 100 * float64(n) / float64(total)
		}
		p.printf("%-9s %8d %5.1f%% %s\n", o, n, pct, p.styles.owners[o].Render(strings.Repeat("#", bar)))
	}
}

// Snapshot prints everything in s.
func (p *Printer) Snapshot(s *agnus.Snapshot) {
	p.Status(s)
	p.Slots("bus", s.Line)
	p.DAS(s.DAS)
	p.BPL(s.BPL)
	p.Stats(s.Stats)
}
