// Package ebiten runs the VM inside an Ebiten window.
package ebiten

import (
	"context"
	"errors"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/mnafees/chopper-bus/internal"
	"github.com/retroenv/retrogolib/log"
)

var (
	screenColor = [4]byte{0x1A, 0x23, 0x7E, 0xFF}
	spriteColor = [4]byte{0x9F, 0xA8, 0xDA, 0xFF}
)

// keymap maps the left hand block of a QWERTY keyboard onto the CHIP-8 keypad.
// When several keys are held the first one in this order is latched.
var keymap = []struct {
	key  ebiten.Key
	code uint8
}{
	{ebiten.Key1, 0x1}, {ebiten.Key2, 0x2}, {ebiten.Key3, 0x3}, {ebiten.Key4, 0xC},
	{ebiten.KeyQ, 0x4}, {ebiten.KeyW, 0x5}, {ebiten.KeyE, 0x6}, {ebiten.KeyR, 0xD},
	{ebiten.KeyA, 0x7}, {ebiten.KeyS, 0x8}, {ebiten.KeyD, 0x9}, {ebiten.KeyF, 0xE},
	{ebiten.KeyZ, 0xA}, {ebiten.KeyX, 0x0}, {ebiten.KeyC, 0xB}, {ebiten.KeyV, 0xF},
}

// IO implements ebiten.Game for the VM.
type IO struct {
	ctx    context.Context
	vm     *internal.Machine
	logger *log.Logger
	scale  int

	frame  *ebiten.Image
	pixels []byte // RGBA frame buffer
	err    error  // VM fault that ended the game
}

var _ ebiten.Game = (*IO)(nil)

// NewIO returns a new I/O instance for the Ebiten frontend.
func NewIO(ctx context.Context, vm *internal.Machine, logger *log.Logger, scale int) *IO {
	return &IO{
		ctx:    ctx,
		vm:     vm,
		logger: logger,
		scale:  scale,
		pixels: make([]byte, internal.DisplaySize*4),
	}
}

// Run opens the window and blocks until it is closed. It returns the VM
// error if the program faulted.
func (io *IO) Run(title string) error {
	ebiten.SetWindowSize(internal.ScreenWidth*io.scale, internal.ScreenHeight*io.scale)
	ebiten.SetWindowTitle(title)
	ebiten.SetTPS(internal.FrameRate)

	err := ebiten.RunGame(io)
	if io.err != nil {
		return io.err
	}
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

// Update latches the keypad and executes one frame worth of instructions.
func (io *IO) Update() error {
	select {
	case <-io.ctx.Done():
		io.logger.Info("Interrupted")
		return ebiten.Termination
	default:
	}
	if ebiten.IsWindowBeingClosed() || ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	io.latchKeys()
	if err := io.vm.RunFrame(internal.CyclesPerFrame); err != nil {
		io.err = err
		return ebiten.Termination
	}
	return nil
}

func (io *IO) latchKeys() {
	for _, k := range keymap {
		if ebiten.IsKeyPressed(k.key) {
			io.vm.PressKey(k.code)
			return
		}
	}
	io.vm.ReleaseKey()
}

// Draw presents the VM frame buffer.
func (io *IO) Draw(screen *ebiten.Image) {
	if io.frame == nil {
		io.frame = ebiten.NewImage(internal.ScreenWidth, internal.ScreenHeight)
	}
	snapshot := io.vm.Snapshot()
	fillRGBA(io.pixels, snapshot[:])
	io.frame.WritePixels(io.pixels)
	screen.DrawImage(io.frame, nil)
}

// Layout keeps the logical screen at the CHIP-8 resolution, Ebiten scales it to the window.
func (io *IO) Layout(_, _ int) (int, int) {
	return internal.ScreenWidth, internal.ScreenHeight
}

// fillRGBA converts 1-bit pixels to RGBA.
func fillRGBA(dst []byte, pixels []uint8) {
	for i, px := range pixels {
		c := screenColor
		if px == 1 {
			c = spriteColor
		}
		copy(dst[i*4:i*4+4], c[:])
	}
}
