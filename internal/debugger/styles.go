package debugger

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/thelolagemann/goagnus/internal/dma"
)

type styles struct {
	title   lipgloss.Style
	label   lipgloss.Style
	pc      lipgloss.Style
	move    lipgloss.Style
	wait    lipgloss.Style
	illegal lipgloss.Style
	dim     lipgloss.Style
	owners  [dma.NumOwners]lipgloss.Style
}

// ANSI colours, 0 black through 7 white, 8-15 the bright variants.
var ownerColors = [dma.NumOwners]int{
	dma.None:     8,
	dma.CPU:      15,
	dma.Refresh:  7,
	dma.Disk:     2,
	dma.Audio:    1,
	dma.Sprite:   5,
	dma.Bitplane: 4,
	dma.Copper:   3,
	dma.Blitter:  6,
}

func newStyles(r *lipgloss.Renderer) styles {
	s := styles{
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(7)).Background(lipgloss.ANSIColor(4)),
		label:   r.NewStyle().Bold(true),
		pc:      r.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(0)).Background(lipgloss.ANSIColor(3)),
		move:    r.NewStyle().Foreground(lipgloss.ANSIColor(6)),
		wait:    r.NewStyle().Foreground(lipgloss.ANSIColor(5)),
		illegal: r.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(7)).Background(lipgloss.ANSIColor(1)),
		dim:     r.NewStyle().Foreground(lipgloss.ANSIColor(8)),
	}
	for o, c := range ownerColors {
		s.owners[o] = r.NewStyle().Foreground(lipgloss.ANSIColor(c))
	}
	return s
}
