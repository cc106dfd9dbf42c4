package agnus

import (
	"github.com/thelolagemann/goagnus/internal/blitter"
	"github.com/thelolagemann/goagnus/internal/copper"
	"github.com/thelolagemann/goagnus/internal/types"
	"github.com/thelolagemann/goagnus/pkg/log"
)

// Opt configures a chipset.
type Opt func(a *Agnus)

// WithLogger sets the logger of the chipset and its components.
func WithLogger(l log.Logger) Opt {
	return func(a *Agnus) {
		a.log = log.OrNull(l)
	}
}

// WithTrace enables the trace categories of c.
func WithTrace(c *log.Config) Opt {
	return func(a *Agnus) {
		a.trace = c
	}
}

// WithRevision selects the chipset revision. The default is OCS.
func WithRevision(r types.Revision) Opt {
	return func(a *Agnus) {
		a.revision = r
	}
}

// WithVideo selects the video standard. The default is PAL.
func WithVideo(v types.Video) Opt {
	return func(a *Agnus) {
		a.video = v
	}
}

// WithBlitterAccuracy selects the blitter model. The default is
// blitter.Slow.
func WithBlitterAccuracy(acc blitter.Accuracy) Opt {
	return func(a *Agnus) {
		a.accuracy = acc
	}
}

// WithState restores the chipset from a snapshot made by Save.
func WithState(b []byte) Opt {
	return func(a *Agnus) {
		a.state = b
	}
}

// WithCompression sets whether snapshots are compressed. It is on
// by default.
func WithCompression(on bool) Opt {
	return func(a *Agnus) {
		a.compress = on
	}
}

// WithDisk attaches a disk controller to the disk DMA slots.
func WithDisk(d DiskController) Opt {
	return func(a *Agnus) {
		a.disk = d
	}
}

// WithAudio attaches the audio state machines to the audio slots.
func WithAudio(s AudioSink) Opt {
	return func(a *Agnus) {
		a.audio = s
	}
}

// WithSprites attaches a receiver for sprite words.
func WithSprites(s SpriteSink) Opt {
	return func(a *Agnus) {
		a.sprites = s
	}
}

// WithBitplanes attaches a receiver for bitplane words.
func WithBitplanes(s BitplaneSink) Opt {
	return func(a *Agnus) {
		a.bitplanes = s
	}
}

// WithColorRecorder attaches a receiver for colour register writes,
// made either by the CPU or the copper.
func WithColorRecorder(r copper.ColorRecorder) Opt {
	return func(a *Agnus) {
		a.colors = r
	}
}

// WithInspection publishes a Snapshot of the chipset at the end of
// every frame, see Inspection.
func WithInspection() Opt {
	return func(a *Agnus) {
		a.inspect = true
	}
}
