// Package main implements the Ebiten frontend of the CHIP-8 emulator.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mnafees/chopper-bus/internal/options"
	"github.com/mnafees/chopper-bus/pkg/ebiten"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := app.Context()

	opts, err := options.Parse(os.Args, true)
	if err != nil {
		var usageErr *options.UsageError
		if errors.As(err, &usageErr) {
			usageErr.ShowUsage(os.Stderr)
		}
		os.Exit(1)
	}

	logger, closer, err := options.OpenLogger(opts)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Closer(closer, "Closing log file")
	options.PrintBanner(logger, opts, "chopper-ebiten", version, commit, date)

	vm := options.NewMachine(opts, logger)
	if err := vm.LoadFile(opts.ROM); err != nil {
		logger.Fatal("Loading program failed", log.Err(err))
	}

	game := ebiten.NewIO(ctx, vm, logger, opts.Scale)
	if err := game.Run("Chopper | CHIP-8 Emulator"); err != nil {
		options.LogFault(logger, vm, err)
		os.Exit(1)
	}
}
