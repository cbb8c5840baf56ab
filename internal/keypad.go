package internal

// KeyCount is the number of keys on the hexadecimal keypad.
const KeyCount = 16

// Keypad latches at most one pressed key of the 16 key hex keypad.
// The host sets it before each step; the VM only reads it, except for Fx0A
// which consumes the latched key.
type Keypad struct {
	key     uint8
	pressed bool
}

// Press latches code as the currently pressed key. Codes outside 0x0-0xF are ignored.
func (k *Keypad) Press(code uint8) {
	if code >= KeyCount {
		return
	}
	k.key = code
	k.pressed = true
}

// Release clears the latch.
func (k *Keypad) Release() {
	k.key = 0
	k.pressed = false
}

// Pressed returns the latched key, if any.
func (k *Keypad) Pressed() (uint8, bool) {
	return k.key, k.pressed
}

// IsPressed returns whether code is the latched key.
func (k *Keypad) IsPressed(code uint8) bool {
	return k.pressed && k.key == code
}

// Consume returns the latched key and clears the latch.
func (k *Keypad) Consume() (uint8, bool) {
	code, ok := k.key, k.pressed
	k.Release()
	return code, ok
}
