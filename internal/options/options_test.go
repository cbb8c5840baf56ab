package options

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mnafees/chopper-bus/internal"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want Options
	}{
		{
			name: "defaults",
			args: []string{"chopper", "pong.ch8"},
			want: Options{ROM: "pong.ch8", Scale: DefaultScale},
		},
		{
			name: "quirks",
			args: []string{"chopper", "-shift-vy", "-borrow-inclusive", "pong.ch8"},
			want: Options{ROM: "pong.ch8", Scale: DefaultScale, ShiftUsesVY: true, BorrowInclusive: true},
		},
		{
			name: "trace implies debug",
			args: []string{"chopper", "-trace", "-scale", "4", "pong.ch8"},
			want: Options{ROM: "pong.ch8", Scale: 4, Debug: true, Trace: true},
		},
		{
			name: "quiet",
			args: []string{"chopper", "-q", "pong.ch8"},
			want: Options{ROM: "pong.ch8", Scale: DefaultScale, Quiet: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.args, true)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseUsageErrors(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		romRequired bool
	}{
		{"missing program", []string{"chopper"}, true},
		{"too many programs", []string{"chopper", "a.ch8", "b.ch8"}, false},
		{"unknown flag", []string{"chopper", "-nope", "a.ch8"}, false},
		{"zero scale", []string{"chopper", "-scale", "0", "a.ch8"}, false},
		{"debug and quiet", []string{"chopper", "-debug", "-q", "a.ch8"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.args, tt.romRequired)
			assert.Error(t, err)

			var usageErr *UsageError
			assert.True(t, errors.As(err, &usageErr))

			var buf bytes.Buffer
			usageErr.ShowUsage(&buf)
			assert.Contains(t, buf.String(), "usage: chopper")
			assert.Contains(t, buf.String(), "-shift-vy")
		})
	}
}

func TestParseOptionalROM(t *testing.T) {
	opts, err := Parse([]string{"chopper"}, false)
	assert.NoError(t, err)
	assert.Equal(t, "", opts.ROM)
}

func TestQuirks(t *testing.T) {
	opts := Options{ShiftUsesVY: true}
	assert.Equal(t, internal.Quirks{ShiftUsesVY: true}, opts.Quirks())
}

func TestNewMachine(t *testing.T) {
	opts, err := Parse([]string{"chopper", "-borrow-inclusive", "x.ch8"}, true)
	assert.NoError(t, err)

	m := NewMachine(opts, CreateLogger(false, true))
	assert.NotNil(t, m)
	assert.Equal(t, uint16(internal.PCStartAddr), m.CPU.PC())
}

func newBufferLogger() (*log.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	cfg := log.DefaultConfig()
	cfg.Output = &buf
	return log.NewWithConfig(cfg), &buf
}

func TestLogFault(t *testing.T) {
	logger, buf := newBufferLogger()
	vm := NewMachine(Options{Scale: DefaultScale}, logger)
	assert.NoError(t, vm.Bus.Memory.Load(internal.PCStartAddr, []byte{0x00, 0xEE}))

	err := vm.Step()
	assert.True(t, errors.Is(err, internal.ErrStackUnderflow))
	LogFault(logger, vm, err)

	out := buf.String()
	assert.Contains(t, out, "Program faulted")
	assert.Contains(t, out, "return with empty call stack")
	assert.Contains(t, out, `"pc":"0x0200"`)
	assert.Contains(t, out, `"instruction":"RET"`)
	assert.Contains(t, out, "PC=0200")
	assert.Contains(t, out, "stack=[]")
}

func TestLogFaultWithoutInstruction(t *testing.T) {
	logger, buf := newBufferLogger()
	vm := NewMachine(Options{Scale: DefaultScale}, logger)

	LogFault(logger, vm, errors.New("window closed"))

	out := buf.String()
	assert.Contains(t, out, "window closed")
	assert.Contains(t, out, "PC=0200")
	assert.NotContains(t, out, `"instruction"`)
}

func TestCheckTerminal(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"defaults", Options{}, false},
		{"quiet", Options{Quiet: true}, false},
		{"debug to screen", Options{Debug: true}, true},
		{"debug to file", Options{Debug: true, LogFile: "chopper.log"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.CheckTerminal()
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrLogToScreen))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOpenLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chopper.log")
	opts, err := Parse([]string{"chopper", "-trace", "-log", path, "a.ch8"}, true)
	assert.NoError(t, err)
	assert.Equal(t, path, opts.LogFile)

	logger, closer, err := OpenLogger(opts)
	assert.NoError(t, err)
	assert.NotNil(t, closer)

	vm := NewMachine(opts, logger)
	assert.NoError(t, vm.Bus.Memory.Load(internal.PCStartAddr, []byte{0x6A, 0x02}))
	assert.NoError(t, vm.Step())
	assert.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Contains(t, string(data), "LD VA, $02")
}

func TestOpenLoggerDefaultsToStdout(t *testing.T) {
	logger, closer, err := OpenLogger(Options{Quiet: true})
	assert.NoError(t, err)
	assert.NotNil(t, logger)
	assert.Nil(t, closer)
}
