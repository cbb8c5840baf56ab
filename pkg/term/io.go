// Package term runs the VM in a terminal, drawing with half block characters.
package term

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mnafees/chopper-bus/internal"
	"github.com/retroenv/retrogolib/log"
	xterm "golang.org/x/term"
)

const (
	// Terminals only report key presses, so a key counts as held for this many frames.
	keyHoldFrames = 6

	keyEscape = 0x1B
	keyCtrlC  = 0x03

	minColumns = internal.ScreenWidth
	minRows    = internal.ScreenHeight/2 + 1
)

// Below we have a mapping QWERTY keyboard to the CHIP-8 keypad
//
//	1 2 3 4      1 2 3 C
//	Q W E R  ->  4 5 6 D
//	A S D F      7 8 9 E
//	Z X C V      A 0 B F
var keymap = map[byte]uint8{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

// IO is the terminal frontend.
type IO struct {
	vm     *internal.Machine
	logger *log.Logger

	in       *os.File
	out      io.Writer
	oldState *xterm.State
	input    chan byte

	holdFrames int // frames left until the latched key is released
	last       [internal.DisplaySize]uint8
	drawn      bool
}

// NewIO returns a terminal frontend reading stdin and drawing to stdout.
func NewIO(vm *internal.Machine, logger *log.Logger) *IO {
	return &IO{
		vm:     vm,
		logger: logger,
		in:     os.Stdin,
		out:    os.Stdout,
		input:  make(chan byte, 16),
	}
}

// Start puts the terminal into raw mode and starts reading keys.
// Stop has to be called to restore the terminal.
func (io *IO) Start() error {
	fd := int(io.in.Fd())
	if !xterm.IsTerminal(fd) {
		return fmt.Errorf("stdin is not a terminal")
	}
	if width, height, err := xterm.GetSize(int(os.Stdout.Fd())); err == nil {
		if width < minColumns || height < minRows {
			return fmt.Errorf("terminal too small: %dx%d, need at least %dx%d", width, height, minColumns, minRows)
		}
		io.logger.Debug("Terminal size", log.Int("columns", width), log.Int("rows", height))
	}

	oldState, err := xterm.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("setting raw mode: %w", err)
	}
	io.oldState = oldState

	go io.readKeys()

	// clear screen, hide cursor
	_, _ = fmt.Fprint(io.out, "\x1b[2J\x1b[?25l")
	return nil
}

// Stop restores the terminal state.
func (io *IO) Stop() {
	_, _ = fmt.Fprint(io.out, "\x1b[?25h\r\n")
	if io.oldState != nil {
		_ = xterm.Restore(int(io.in.Fd()), io.oldState)
		io.oldState = nil
	}
}

// readKeys forwards stdin bytes until stdin is closed. It blocks in Read,
// so it is left running when the loop ends.
func (io *IO) readKeys() {
	buf := make([]byte, 1)
	for {
		n, err := io.in.Read(buf)
		if n > 0 {
			io.input <- buf[0]
		}
		if err != nil {
			close(io.input)
			return
		}
	}
}

// Loop runs the VM until Escape or Ctrl+C is pressed, ctx is cancelled or
// the program faults.
func (io *IO) Loop(ctx context.Context) error {
	frame := time.NewTicker(time.Second / internal.FrameRate)
	defer frame.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case b, ok := <-io.input:
			if !ok || io.handleKey(b) {
				return nil
			}
			continue
		case <-frame.C:
		}

		if err := io.vm.RunFrame(internal.CyclesPerFrame); err != nil {
			return err
		}
		io.endFrame()
		if err := io.draw(); err != nil {
			return err
		}
	}
}

// handleKey latches a keypad key and reports whether the user asked to quit.
func (io *IO) handleKey(b byte) bool {
	if b == keyEscape || b == keyCtrlC {
		return true
	}
	code, ok := keymap[toLower(b)]
	if !ok {
		return false
	}
	io.vm.PressKey(code)
	io.holdFrames = keyHoldFrames
	return false
}

// endFrame releases the latched key once its hold time ran out.
func (io *IO) endFrame() {
	if io.holdFrames == 0 {
		return
	}
	io.holdFrames--
	if io.holdFrames == 0 {
		io.vm.ReleaseKey()
	}
}

func (io *IO) draw() error {
	pixels := io.vm.Snapshot()
	if io.drawn && pixels == io.last {
		return nil
	}
	io.last = pixels
	io.drawn = true

	if _, err := io.out.Write([]byte(render(pixels))); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

// render draws two pixel rows per text line, starting at the top left corner.
func render(pixels [internal.DisplaySize]uint8) string {
	var sb strings.Builder
	sb.WriteString("\x1b[H")
	for y := 0; y < internal.ScreenHeight; y += 2 {
		for x := 0; x < internal.ScreenWidth; x++ {
			top := pixels[y*internal.ScreenWidth+x] == 1
			bottom := pixels[(y+1)*internal.ScreenWidth+x] == 1
			switch {
			case top && bottom:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bottom:
				sb.WriteRune('▄')
			default:
				sb.WriteByte(' ')
			}
		}
		sb.WriteString("\r\n")
	}
	return sb.String()
}

func toLower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + 'a' - 'A'
	}
	return b
}
