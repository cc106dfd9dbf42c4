package agnus

import (
	"github.com/thelolagemann/goagnus/internal/beam"
	"github.com/thelolagemann/goagnus/internal/blitter"
	"github.com/thelolagemann/goagnus/internal/copper"
	"github.com/thelolagemann/goagnus/internal/dma"
	"github.com/thelolagemann/goagnus/internal/scheduler"
)

// Snapshot is a point in time view of the chipset, made for
// debuggers and the inspector. It shares nothing with the running
// chipset.
type Snapshot struct {
	Clock  int64
	Pos    beam.Position
	Frame  beam.Frame
	DMACON uint16
	BLS    bool

	Copper  copper.Info
	Blitter blitter.Info

	// Line holds the bus owners of the last completed line.
	Line [beam.HPosCnt]dma.Owner
	DAS  [beam.HPosCnt]dma.DASEvent
	BPL  [beam.HPosCnt]dma.BplEvent

	// Stats are the bus cycles of the last completed frame.
	Stats [dma.NumOwners]int64

	INTREQ, INTENA uint16
	Events         string
}

// Inspect returns a view of the chipset as it is now.
func (a *Agnus) Inspect() *Snapshot {
	s := &Snapshot{
		Clock:   a.Scheduler.Clock(),
		Pos:     a.Beam.Pos,
		Frame:   a.Beam.Frame,
		DMACON:  a.dmaconr(),
		BLS:     a.Bus.BLS(),
		Copper:  a.Copper.Inspect(),
		Blitter: a.Blitter.Inspect(),
		Line:    a.lastLine,
		DAS:     a.Slots.DAS,
		BPL:     a.Slots.BPL,
		INTREQ:  a.Interrupts.Flag,
		INTENA:  a.Interrupts.Enable,
		Events:  a.Scheduler.String(),
	}
	if h := a.Bus.Stats.History; len(h) > 0 {
		s.Stats = h[len(h)-1]
	}
	return s
}

// Inspection returns the last published Snapshot, or nil if none
// has been published. It is safe to call from any goroutine.
func (a *Agnus) Inspection() *Snapshot {
	return a.published.Load()
}

// RequestInspection publishes a Snapshot in the current cycle,
// regardless of WithInspection. Unlike Inspection it must be called
// from the goroutine running the chipset.
func (a *Agnus) RequestInspection() {
	a.Scheduler.ScheduleAt(scheduler.Ins, a.Scheduler.Clock(), 1)
}

func (a *Agnus) publish() {
	a.published.Store(a.Inspect())
}
