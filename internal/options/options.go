// Package options contains the program options shared by all frontends.
package options

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mnafees/chopper-bus/internal"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

// DefaultScale is the default number of window pixels per CHIP-8 pixel.
const DefaultScale = 10

// Options of the emulator.
type Options struct {
	ROM string // path of the program to run, may be empty for frontends that can ask for one

	Debug bool
	Quiet bool
	Trace bool

	LogFile string // log destination, stdout if empty

	Scale int // window pixels per CHIP-8 pixel

	ShiftUsesVY     bool
	BorrowInclusive bool
}

// Quirks returns the interpreter variant selected on the command line.
func (o Options) Quirks() internal.Quirks {
	return internal.Quirks{
		ShiftUsesVY:     o.ShiftUsesVY,
		BorrowInclusive: o.BorrowInclusive,
	}
}

// UsageError represents an error that should show usage information.
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

// ShowUsage prints the usage line and the flag defaults.
func (e *UsageError) ShowUsage(w io.Writer) {
	_, _ = fmt.Fprintf(w, "usage: %s [options] <CHIP-8 program>\n\n", e.flags.Name())
	e.flags.SetOutput(w)
	e.flags.PrintDefaults()
}

// Parse reads the options from the command line arguments, args[0] being
// the program name. If romRequired is set a missing program path is a
// usage error.
func Parse(args []string, romRequired bool) (Options, error) {
	name := "chopper"
	if len(args) > 0 {
		name = args[0]
		args = args[1:]
	}
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	var opts Options
	flags.BoolVar(&opts.Debug, "debug", false, "enable debug logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
	flags.BoolVar(&opts.Trace, "trace", false, "log every executed instruction, implies -debug")
	flags.StringVar(&opts.LogFile, "log", "", "write log output to this file instead of stdout")
	flags.IntVar(&opts.Scale, "scale", DefaultScale, "window pixels per CHIP-8 pixel")
	flags.BoolVar(&opts.ShiftUsesVY, "shift-vy", false, "8xy6/8xyE shift Vy into Vx instead of shifting Vx")
	flags.BoolVar(&opts.BorrowInclusive, "borrow-inclusive", false, "8xy5/8xy7 set VF when the operands are equal")

	if err := flags.Parse(args); err != nil {
		return opts, &UsageError{flags: flags, msg: err.Error()}
	}

	rest := flags.Args()
	switch {
	case len(rest) > 1:
		return opts, &UsageError{flags: flags, msg: fmt.Sprintf("unexpected arguments: %s", strings.Join(rest[1:], " "))}
	case len(rest) == 1:
		opts.ROM = rest[0]
	case romRequired:
		return opts, &UsageError{flags: flags, msg: "missing CHIP-8 program"}
	}

	if err := opts.validate(); err != nil {
		return opts, &UsageError{flags: flags, msg: err.Error()}
	}
	if opts.Trace {
		opts.Debug = true
	}
	return opts, nil
}

func (o Options) validate() error {
	if o.Scale < 1 {
		return errors.New("scale must be at least 1")
	}
	if o.Debug && o.Quiet {
		return errors.New("-debug and -q can not be combined")
	}
	return nil
}

// ErrLogToScreen is returned by CheckTerminal when log output would be
// drawn over the emulated screen.
var ErrLogToScreen = errors.New("-debug and -trace need -log when running in a terminal")

// CheckTerminal validates the options for a frontend that draws on the
// terminal the logger writes to by default.
func (o Options) CheckTerminal() error {
	if o.Debug && o.LogFile == "" {
		return ErrLogToScreen
	}
	return nil
}

// CreateLogger creates a logger with appropriate settings.
func CreateLogger(debug, quiet bool) *log.Logger {
	return newLogger(nil, debug, quiet)
}

// OpenLogger creates the logger for the options. With -log the file is
// created and has to be closed by the caller through the returned closer.
func OpenLogger(opts Options) (*log.Logger, io.Closer, error) {
	if opts.LogFile == "" {
		return CreateLogger(opts.Debug, opts.Quiet), nil, nil
	}
	f, err := os.Create(opts.LogFile)
	if err != nil {
		return nil, nil, fmt.Errorf("creating log file '%s': %w", opts.LogFile, err)
	}
	return newLogger(f, opts.Debug, opts.Quiet), f, nil
}

func newLogger(output io.Writer, debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Output = output
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// NewMachine creates a machine configured by the options.
func NewMachine(opts Options, logger *log.Logger) *internal.Machine {
	return internal.NewMachine(
		internal.WithLogger(logger),
		internal.WithTrace(opts.Trace),
		internal.WithQuirks(opts.Quirks()),
	)
}

// PrintBanner logs the program name and version unless running quietly.
func PrintBanner(logger *log.Logger, opts Options, name, version, commit, date string) {
	if opts.Quiet {
		return
	}
	logger.Info(name, log.String("version", buildinfo.Version(version, commit, date)))
}

// LogFault logs an error returned by the machine together with its state.
func LogFault(logger *log.Logger, vm *internal.Machine, err error) {
	var execErr *internal.ExecError
	if !errors.As(err, &execErr) {
		logger.Error("Program faulted", log.Err(err), log.String("state", vm.Dump()))
		return
	}
	logger.Error("Program faulted",
		log.Err(execErr.Err),
		log.Hex("pc", execErr.PC),
		log.String("instruction", internal.Disassemble(execErr.Opcode)),
		log.String("state", vm.Dump()))
}
