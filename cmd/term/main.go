// Package main runs CHIP-8 programs inside a terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mnafees/chopper-bus/internal/options"
	"github.com/mnafees/chopper-bus/pkg/term"
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
	if err := opts.CheckTerminal(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, closer, err := options.OpenLogger(opts)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := run(ctx, logger, opts); err != nil {
		logger.Closer(closer, "Closing log file")
		os.Exit(1)
	}
	logger.Closer(closer, "Closing log file")
}

func run(ctx context.Context, logger *log.Logger, opts options.Options) error {
	options.PrintBanner(logger, opts, "chopper-term", version, commit, date)

	vm := options.NewMachine(opts, logger)
	if err := vm.LoadFile(opts.ROM); err != nil {
		logger.Error("Loading program failed", log.Err(err))
		return err
	}

	io := term.NewIO(vm, logger)
	if err := io.Start(); err != nil {
		logger.Error("Preparing terminal failed", log.Err(err))
		return err
	}
	err := io.Loop(ctx)
	// nothing may be logged to stdout before the terminal is restored
	io.Stop()

	if err != nil {
		options.LogFault(logger, vm, err)
		return err
	}
	if ctx.Err() != nil {
		logger.Info("Interrupted")
	}
	return nil
}
