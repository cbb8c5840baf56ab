package sdl

import (
	"context"
	"fmt"
	"time"

	"github.com/mnafees/chopper-bus/internal"
	"github.com/retroenv/retrogolib/log"
	"github.com/veandco/go-sdl2/sdl"
)

const (
	screenColor = 0x1A237E
	spriteColor = 0x9FA8DA
)

// IO is the input/output abstraction layer for the VM
type IO struct {
	window    *sdl.Window
	surface   *sdl.Surface
	pixelSize int32

	vm     *internal.Machine
	logger *log.Logger
}

// NewIO returns a new I/O instance for the SDL frontend
func NewIO(vm *internal.Machine, logger *log.Logger, pixelSize int) *IO {
	return &IO{
		vm:        vm,
		logger:    logger,
		pixelSize: int32(pixelSize),
	}
}

// SetupWindow initialises and sets up the main SDL window
func (io *IO) SetupWindow(title string) error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("initialising SDL: %w", err)
	}

	window, err := sdl.CreateWindow(title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		internal.ScreenWidth*io.pixelSize, internal.ScreenHeight*io.pixelSize, sdl.WINDOW_SHOWN)
	if err != nil {
		sdl.Quit()
		return fmt.Errorf("creating window: %w", err)
	}
	io.window = window
	io.surface, err = window.GetSurface()
	if err != nil {
		io.Destroy()
		return fmt.Errorf("getting window surface: %w", err)
	}
	return io.surface.FillRect(nil, screenColor)
}

// Destroy should be called before quitting the application
func (io *IO) Destroy() {
	if io.window != nil {
		_ = io.window.Destroy()
		io.window = nil
	}
	sdl.Quit()
}

// Loop is the main application loop. It returns nil when the window is
// closed or ctx is cancelled, and the VM error if the program faults.
func (io *IO) Loop(ctx context.Context) error {
	frame := time.NewTicker(time.Second / internal.FrameRate)
	defer frame.Stop()

	for {
		select {
		case <-ctx.Done():
			io.logger.Info("Interrupted")
			return nil
		case <-frame.C:
		}

		if !io.pollEvents() {
			return nil
		}
		io.latchKeys(sdl.GetKeyboardState())
		if err := io.vm.RunFrame(internal.CyclesPerFrame); err != nil {
			return err
		}
		if err := io.draw(); err != nil {
			return err
		}
	}
}

// pollEvents drains the SDL event queue and reports whether the
// application should keep running.
func (io *IO) pollEvents() bool {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch t := event.(type) {
		case *sdl.KeyboardEvent:
			if t.GetType() == sdl.KEYDOWN && t.Keysym.Scancode == sdl.SCANCODE_ESCAPE {
				return false
			}
		case *sdl.QuitEvent:
			return false
		}
	}
	return true
}

// Draws the current frame buffer on screen
func (io *IO) draw() error {
	if err := io.surface.FillRect(nil, screenColor); err != nil {
		return fmt.Errorf("clearing surface: %w", err)
	}
	pixels := io.vm.Snapshot()
	for h := int32(0); h < internal.ScreenHeight; h++ {
		for w := int32(0); w < internal.ScreenWidth; w++ {
			if pixels[h*internal.ScreenWidth+w] != 1 {
				continue
			}
			rect := &sdl.Rect{X: w * io.pixelSize, Y: h * io.pixelSize, W: io.pixelSize, H: io.pixelSize}
			if err := io.surface.FillRect(rect, spriteColor); err != nil {
				return fmt.Errorf("drawing pixel: %w", err)
			}
		}
	}
	return io.window.UpdateSurface()
}

// Maps keys from a QWERTY keyboard to the keypad used by CHIP-8
// Below we have a mapping QWERTY keyboard to the CHIP-8 keypad
// +--------+--------+--------+--------+
// | 1 -> 1 | 2 -> 2 | 3 -> 3 | 4 -> C |
// +--------+--------+--------+--------+
// | Q -> 4 | W -> 5 | E -> 6 | R -> D |
// +--------+--------+--------+--------+
// | A -> 7 | S -> 8 | D -> 9 | F -> E |
// +--------+--------+--------+--------+
// | Z -> A | X -> 0 | C -> B | V -> F |
// +--------+--------+--------+--------+
// When several keys are held the first one in this order is latched.
var keymap = []struct {
	scancode sdl.Scancode
	code     uint8
}{
	{sdl.SCANCODE_1, 0x1}, {sdl.SCANCODE_2, 0x2}, {sdl.SCANCODE_3, 0x3}, {sdl.SCANCODE_4, 0xC},
	{sdl.SCANCODE_Q, 0x4}, {sdl.SCANCODE_W, 0x5}, {sdl.SCANCODE_E, 0x6}, {sdl.SCANCODE_R, 0xD},
	{sdl.SCANCODE_A, 0x7}, {sdl.SCANCODE_S, 0x8}, {sdl.SCANCODE_D, 0x9}, {sdl.SCANCODE_F, 0xE},
	{sdl.SCANCODE_Z, 0xA}, {sdl.SCANCODE_X, 0x0}, {sdl.SCANCODE_C, 0xB}, {sdl.SCANCODE_V, 0xF},
}

// latchKeys rebuilds the keypad latch from the keyboard state indexed by
// scancode, so a key that is still held is seen again after Fx0A consumed it.
func (io *IO) latchKeys(state []uint8) {
	for _, k := range keymap {
		if int(k.scancode) < len(state) && state[k.scancode] != 0 {
			io.vm.PressKey(k.code)
			return
		}
	}
	io.vm.ReleaseKey()
}
