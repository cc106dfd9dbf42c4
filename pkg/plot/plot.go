// Package plot renders chip bus usage as images.
package plot

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"golang.org/x/image/draw"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	vgdraw "gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/thelolagemann/goagnus/internal/beam"
	"github.com/thelolagemann/goagnus/internal/dma"
)

// ErrEmpty is returned when there is nothing to plot.
var ErrEmpty = errors.New("plot: no data")

// Colors is the colour of every bus owner.
var Colors = [dma.NumOwners]color.RGBA{
	dma.None:     {0x20, 0x20, 0x20, 0xFF},
	dma.CPU:      {0xFF, 0xFF, 0xFF, 0xFF},
	dma.Refresh:  {0x80, 0x80, 0x80, 0xFF},
	dma.Disk:     {0x00, 0xC0, 0x00, 0xFF},
	dma.Audio:    {0xFF, 0x40, 0x40, 0xFF},
	dma.Sprite:   {0xFF, 0x00, 0xFF, 0xFF},
	dma.Bitplane: {0x40, 0x80, 0xFF, 0xFF},
	dma.Copper:   {0xFF, 0xC0, 0x00, 0xFF},
	dma.Blitter:  {0x00, 0xFF, 0xFF, 0xFF},
}

// History draws the bus cycles of every owner per frame, one line per
// owner, onto a w×h image.
func History(history [][dma.NumOwners]int64, w, h int) (*image.RGBA, error) {
	if len(history) == 0 {
		return nil, ErrEmpty
	}

	p := plot.New()
	p.Title.Text = "Bus usage"
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = "Cycles"
	p.Legend.Top = true

	for o := dma.CPU; o < dma.NumOwners; o++ {
		xys := make(plotter.XYs, len(history))
		for i, frame := range history {
			xys[i].X = float64(i)
			xys[i].Y = float64(frame[o])
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("plot: %s: %w", o, err)
		}
		line.Color = Colors[o]
		p.Add(line)
		p.Legend.Add(o.String(), line)
	}

	// one point per pixel
	c := vgimg.NewWith(
		vgimg.UseWH(vg.Points(float64(w)), vg.Points(float64(h))),
		vgimg.UseDPI(72),
	)
	p.Draw(vgdraw.New(c))

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), c.Image(), c.Image().Bounds().Min, draw.Src)
	return img, nil
}

// Slots records the owner of every cycle of a frame.
type Slots struct {
	lines [][beam.HPosCnt]dma.Owner
}

// NewSlots returns a recorder for frames of up to n lines.
func NewSlots(n int) *Slots {
	return &Slots{lines: make([][beam.HPosCnt]dma.Owner, n)}
}

// Record sets the owner of cycle h on line v. Positions outside the
// frame are ignored.
func (s *Slots) Record(v, h int, o dma.Owner) {
	if v < 0 || v >= len(s.lines) || h < 0 || h >= beam.HPosCnt {
		return
	}
	s.lines[v][h] = o
}

// SetLine sets every owner of line v.
func (s *Slots) SetLine(v int, line [beam.HPosCnt]dma.Owner) {
	if v >= 0 && v < len(s.lines) {
		s.lines[v] = line
	}
}

// Image draws the recorded frame, one pixel per cycle, scaled up by
// scale using nearest neighbour.
func (s *Slots) Image(scale int) *image.RGBA {
	src := image.NewRGBA(image.Rect(0, 0, beam.HPosCnt, len(s.lines)))
	for v, line := range s.lines {
		for h, o := range line {
			src.SetRGBA(h, v, Colors[o%dma.NumOwners])
		}
	}
	if scale <= 1 {
		return src
	}

	dst := image.NewRGBA(image.Rect(0, 0, beam.HPosCnt*scale, len(s.lines)*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// WritePNG encodes img as a PNG.
func WritePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}
