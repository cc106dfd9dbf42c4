package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/thelolagemann/goagnus/internal/agnus"
	"github.com/thelolagemann/goagnus/internal/inspector"
)

type runCmd struct {
	chipFlags

	Frames    int    `default:"50" help:"Frames to run, 0 to run until interrupted."`
	Inspect   string `placeholder:"ADDR" help:"Serve the inspector on ADDR, e.g. :8090."`
	Compress  int    `default:"-1" help:"Brotli quality of inspector frames, -1 to disable."`
	Save      string `type:"path" help:"Write a snapshot here when done."`
	Statsview bool   `help:"Serve runtime statistics (needs the statsview build tag)."`
	Digest    bool   `help:"Print a digest of every executed cycle."`
}

func (r *runCmd) Run(g *globals) error {
	var opts []agnus.Opt
	if r.Inspect != "" {
		opts = append(opts, agnus.WithInspection())
	}
	a, err := r.build(g, opts...)
	if err != nil {
		return err
	}

	if r.Statsview {
		if !statsviewAvailable() {
			return errors.New("built without the statsview tag")
		}
		launchStatsview(os.Stderr)
	}

	serveErr := make(chan error, 1)
	if r.Inspect != "" {
		hopts := []inspector.Opt{inspector.WithLogger(g.logger)}
		if r.Compress >= 0 {
			hopts = append(hopts, inspector.WithCompression(r.Compress))
		}
		hub := inspector.New(a, hopts...)
		go func() {
			serveErr <- hub.ListenAndServe(g.ctx, r.Inspect)
		}()
	}

	var digest *agnus.TraceDigest
	if r.Digest {
		digest = agnus.NewTraceDigest()
		a.Trace(digest.Record)
	}

	start := time.Now()
	frames := 0
run:
	for r.Frames == 0 || frames < r.Frames {
		select {
		case <-g.ctx.Done():
			break run
		case err := <-serveErr:
			if err != nil {
				return err
			}
		default:
		}
		a.ExecuteFrame()
		frames++
	}
	elapsed := time.Since(start)
	g.logger.Infof("ran %d frames (%d cycles) in %s", frames, a.Clock(), elapsed.Round(time.Millisecond))

	if digest != nil {
		fmt.Printf("%016x %d\n", digest.Sum(), digest.Len())
	}

	if r.Save != "" {
		b, err := a.Save()
		if err != nil {
			return err
		}
		if err := os.WriteFile(r.Save, b, 0o644); err != nil {
			return err
		}
		g.logger.Infof("saved snapshot to %s (%d bytes)", r.Save, len(b))
	}
	return nil
}
