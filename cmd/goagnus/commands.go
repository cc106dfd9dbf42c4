package main

import (
	"fmt"
	"image"
	"os"

	"github.com/bradleyjkemp/memviz"

	"github.com/thelolagemann/goagnus/internal/agnus"
	"github.com/thelolagemann/goagnus/internal/debugger"
	"github.com/thelolagemann/goagnus/internal/inspector"
	"github.com/thelolagemann/goagnus/internal/script"
	"github.com/thelolagemann/goagnus/pkg/plot"
)

type scriptCmd struct {
	chipFlags

	Path string `arg:"" type:"existingfile" help:"Lua script to run."`
}

func (s *scriptCmd) Run(g *globals) error {
	a, err := s.build(g)
	if err != nil {
		return err
	}
	h := script.New(a, os.Stdout)
	defer h.Close()
	return h.DoFile(s.Path)
}

type dumpCmd struct {
	chipFlags

	Frames int    `default:"1" help:"Frames to run first."`
	Lines  int    `help:"Extra lines to run after the frames."`
	List   int    `default:"16" help:"Copper instructions to disassemble."`
	Graph  string `type:"path" help:"Write a Graphviz graph of the snapshot here."`
}

func (d *dumpCmd) Run(g *globals) error {
	a, err := d.build(g)
	if err != nil {
		return err
	}
	for i := 0; i < d.Frames; i++ {
		a.ExecuteFrame()
	}
	a.ExecuteLines(d.Lines)

	s := a.Inspect()
	p := debugger.New(os.Stdout)
	p.Snapshot(s)
	if d.List > 0 {
		fmt.Println()
		p.Copper(a.Copper.List(s.Copper.List, d.List), s.Copper.PC)
	}

	if d.Graph != "" {
		f, err := os.Create(d.Graph)
		if err != nil {
			return err
		}
		defer f.Close()
		memviz.Map(f, s)
	}
	return nil
}

type plotCmd struct {
	chipFlags

	Frames int    `default:"50" help:"Frames to run."`
	Out    string `type:"path" default:"bus.png" help:"Bus usage chart."`
	Width  int    `default:"800"`
	Height int    `default:"400"`
	Slots  string `type:"path" help:"Also write the slot owners of the last frame here."`
	Scale  int    `default:"2" help:"Scale of the slot image."`
}

func (c *plotCmd) Run(g *globals) error {
	a, err := c.build(g)
	if err != nil {
		return err
	}
	for i := 1; i < c.Frames; i++ {
		a.ExecuteFrame()
	}
	if c.Slots != "" {
		slots := plot.NewSlots(a.Beam.NumLines())
		a.Trace(func(r agnus.TraceRecord) {
			slots.Record(r.Pos.V, r.Pos.H, r.Owner)
		})
		a.ExecuteFrame()
		a.Trace(nil)
		if err := writePNG(c.Slots, slots.Image(c.Scale)); err != nil {
			return err
		}
	} else if c.Frames > 0 {
		a.ExecuteFrame()
	}

	img, err := plot.History(a.Bus.Stats.History, c.Width, c.Height)
	if err != nil {
		return err
	}
	return writePNG(c.Out, img)
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := plot.WritePNG(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

type watchCmd struct {
	URL   string `arg:"" optional:"" default:"ws://localhost:8090/" help:"Inspector address."`
	Cache int    `default:"32" help:"Frame cache size of the inspector."`
}

func (w *watchCmd) Run(g *globals) error {
	return inspector.Watch(g.ctx, w.URL, w.Cache, func(f inspector.Frame) {
		fmt.Printf("frame %6d clock %10d (%3d,$%02X) DMACON $%04X copper %-10s blitter %-8s busy %v\n",
			f.Nr, f.Clock, f.V, f.H, f.DMACON, f.Copper, f.Blitter, f.Busy)
	})
}
