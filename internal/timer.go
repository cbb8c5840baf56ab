package internal

// Timer is the 8-bit delay timer. It counts down to 0 and stays there.
type Timer struct {
	value uint8
}

// Tick decrements the timer unless it already reached 0.
func (t *Timer) Tick() {
	if t.value > 0 {
		t.value--
	}
}

// Get returns the current value.
func (t *Timer) Get() uint8 {
	return t.value
}

// Set loads a new value.
func (t *Timer) Set(value uint8) {
	t.value = value
}
