package internal

import "fmt"

// Bus is everything the CPU can reach outside of its own registers.
type Bus interface {
	Read(address uint16) (uint8, error)
	Write(address uint16, value uint8) error

	ClearScreen()
	DrawRow(row uint8, x, y uint8) bool

	IsKeyPressed(code uint8) bool
	ConsumeKey() (uint8, bool)

	DelayTimer() uint8
	SetDelayTimer(value uint8)
}

// SystemBus wires memory, display, keypad and delay timer together.
type SystemBus struct {
	Memory  Memory
	Display Display
	Keypad  Keypad
	Timer   Timer
}

var _ Bus = (*SystemBus)(nil)

// NewSystemBus returns a bus in power-on state with the font set loaded.
func NewSystemBus() *SystemBus {
	b := &SystemBus{}
	b.Reset()
	return b
}

// Reset clears all components and reloads the font set.
func (b *SystemBus) Reset() {
	b.Memory.Clear()
	b.Display.Clear()
	b.Keypad.Release()
	b.Timer.Set(0)
	// fontset fits in the reserved area, this can not fail
	_ = b.Memory.Load(FontAddr, fontset)
}

func (b *SystemBus) Read(address uint16) (uint8, error) {
	return b.Memory.Read(address)
}

func (b *SystemBus) Write(address uint16, value uint8) error {
	return b.Memory.Write(address, value)
}

func (b *SystemBus) ClearScreen() {
	b.Display.Clear()
}

func (b *SystemBus) DrawRow(row uint8, x, y uint8) bool {
	return b.Display.DrawRow(row, x, y)
}

func (b *SystemBus) IsKeyPressed(code uint8) bool {
	return b.Keypad.IsPressed(code)
}

func (b *SystemBus) ConsumeKey() (uint8, bool) {
	return b.Keypad.Consume()
}

func (b *SystemBus) DelayTimer() uint8 {
	return b.Timer.Get()
}

func (b *SystemBus) SetDelayTimer(value uint8) {
	b.Timer.Set(value)
}

func (b *SystemBus) String() string {
	key, ok := b.Keypad.Pressed()
	if !ok {
		return fmt.Sprintf("DT=%02X key=-", b.Timer.Get())
	}
	return fmt.Sprintf("DT=%02X key=%X", b.Timer.Get(), key)
}
