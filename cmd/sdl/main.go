// Package main implements the SDL frontend of the CHIP-8 emulator.
package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/mnafees/chopper-bus/internal/options"
	"github.com/mnafees/chopper-bus/pkg/sdl"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
	"github.com/sqweek/dialog"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

const title = "Chopper | CHIP-8 Emulator"

// SDL has to be driven from the main thread.
func init() {
	runtime.LockOSThread()
}

func main() {
	ctx := app.Context()

	opts, err := options.Parse(os.Args, false)
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
	options.PrintBanner(logger, opts, "chopper", version, commit, date)

	if opts.ROM == "" {
		opts.ROM, err = dialog.File().Title("Load CHIP-8 program").Filter("CHIP-8 program", "ch8").Load()
		if errors.Is(err, dialog.ErrCancelled) {
			return
		}
		if err != nil {
			logger.Fatal("Selecting program failed", log.Err(err))
		}
	}

	vm := options.NewMachine(opts, logger)
	if err := vm.LoadFile(opts.ROM); err != nil {
		logger.Error("Loading program failed", log.Err(err))
		dialog.Message("%v", err).Title(title).Error()
		os.Exit(1)
	}

	io := sdl.NewIO(vm, logger, opts.Scale)
	if err := io.SetupWindow(title); err != nil {
		logger.Fatal("Opening window failed", log.Err(err))
	}

	err = io.Loop(ctx)
	io.Destroy()
	if err != nil {
		options.LogFault(logger, vm, err)
		dialog.Message("%v\n\n%s", err, vm.Dump()).Title(title).Error()
		os.Exit(1)
	}
}
