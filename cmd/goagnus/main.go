// goagnus runs the DMA timing core of an Amiga chipset.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"

	"github.com/thelolagemann/goagnus/pkg/log"
)

type globals struct {
	LogLevel string `name:"log-level" default:"info" enum:"debug,info,warn,error" help:"Log level."`
	Trace    string `help:"Comma separated trace categories (copper,copperregs,blitter,blittertiming,dma,scheduler,beam,snapshot,interrupts,all)."`

	ctx    context.Context
	logger log.Logger
	trace  *log.Config
}

func main() {
	var cli struct {
		globals

		Run    runCmd    `cmd:"" default:"1" help:"Run the chipset, optionally serving the inspector."`
		Script scriptCmd `cmd:"" help:"Run a Lua script against the chipset."`
		Dump   dumpCmd   `cmd:"" help:"Print the chipset state after running."`
		Plot   plotCmd   `cmd:"" help:"Render bus usage to PNG."`
		Watch  watchCmd  `cmd:"" help:"Print the frames streamed by a running inspector."`
	}

	k := kong.Parse(&cli,
		kong.Name("goagnus"),
		kong.Description("DMA timing core of an Amiga chipset."),
		kong.UsageOnError(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	cli.ctx = ctx
	cli.logger = log.NewWithOutput(os.Stderr, cli.LogLevel)
	if cli.Trace != "" {
		c, err := log.ParseCategories(cli.Trace)
		k.FatalIfErrorf(err)
		cli.trace = log.NewConfig(cli.logger, c)
	}

	err := k.Run(&cli.globals)
	k.FatalIfErrorf(err)
}
