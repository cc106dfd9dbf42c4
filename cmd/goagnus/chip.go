package main

import (
	"fmt"

	"github.com/thelolagemann/goagnus/internal/agnus"
	"github.com/thelolagemann/goagnus/internal/blitter"
	"github.com/thelolagemann/goagnus/internal/memory"
	"github.com/thelolagemann/goagnus/internal/types"
	"github.com/thelolagemann/goagnus/internal/types/registers"
	"github.com/thelolagemann/goagnus/pkg/utils"
)

// chipFlags are the flags every command that builds a chipset takes.
type chipFlags struct {
	Chip     string `type:"existingfile" help:"Chip RAM image, plain or gz, zip or 7z compressed."`
	State    string `type:"existingfile" help:"Snapshot to resume from."`
	Revision string `default:"ocs" enum:"ocs,ecs" help:"Chipset revision."`
	Video    string `default:"pal" enum:"pal,ntsc" help:"Video standard."`
	Blitter  string `default:"slow" enum:"fast,fake,slow" help:"Blitter accuracy."`
	RAM      int    `default:"512" enum:"512,1024,2048" help:"Chip RAM in KiB."`
	Copper   uint32 `help:"Start address of copper list 1. Enables copper DMA."`
}

func (f *chipFlags) build(g *globals, opts ...agnus.Opt) (*agnus.Agnus, error) {
	mem, err := memory.NewChipRAM(f.RAM << 10)
	if err != nil {
		return nil, err
	}
	if f.Chip != "" {
		data, err := utils.LoadFile(f.Chip)
		if err != nil {
			return nil, err
		}
		if len(data) > mem.Size() {
			return nil, fmt.Errorf("chip RAM image %s is larger than %d KiB", f.Chip, f.RAM)
		}
		copy(mem.Bytes(), data)
	}

	acc, err := blitter.ParseAccuracy(f.Blitter)
	if err != nil {
		return nil, err
	}
	opts = append([]agnus.Opt{
		agnus.WithLogger(g.logger),
		agnus.WithTrace(g.trace),
		agnus.WithRevision(types.StringToRevision(f.Revision)),
		agnus.WithVideo(types.StringToVideo(f.Video)),
		agnus.WithBlitterAccuracy(acc),
	}, opts...)
	if f.State != "" {
		state, err := utils.LoadFile(f.State)
		if err != nil {
			return nil, err
		}
		opts = append(opts, agnus.WithState(state))
	}

	a, err := agnus.New(mem, opts...)
	if err != nil {
		return nil, err
	}

	if f.Copper != 0 && f.State == "" {
		for _, w := range []struct {
			reg registers.Address
			v   uint16
		}{
			{registers.COP1LCH, uint16(f.Copper >> 16)},
			{registers.COP1LCL, uint16(f.Copper)},
			{registers.DMACON, 0x8280}, // SET | DMAEN | COPEN
		} {
			if err := a.Write(w.reg, w.v); err != nil {
				return nil, err
			}
		}
	}
	return a, nil
}
