package internal

import (
	"math/rand"

	"github.com/retroenv/retrogolib/log"
)

// CHIP-8 VM constants
const (
	TotalMemory    = 0x1000
	PCStartAddr    = 0x200
	maxProgramSize = TotalMemory - PCStartAddr

	ScreenWidth  = 64
	ScreenHeight = 32
	DisplaySize  = ScreenWidth * ScreenHeight

	// FrameRate is how often per second hosts present the display and tick the timer.
	FrameRate = 60
	// CyclesPerFrame is the number of instructions executed per frame, about 600 per second.
	CyclesPerFrame = 10
)

// Machine is a powered-on CHIP-8: one CPU and the bus it drives.
// It is not safe for concurrent use; hosts call it from a single loop.
type Machine struct {
	CPU *CPU
	Bus *SystemBus

	logger *log.Logger
	trace  bool
	rom    []byte // last loaded program, reloaded by Reset
}

// Option configures a Machine.
type Option func(*Machine)

// WithLogger sets the logger used for tracing.
func WithLogger(logger *log.Logger) Option {
	return func(m *Machine) {
		m.logger = logger
	}
}

// WithTrace logs every executed instruction at debug level.
func WithTrace(enabled bool) Option {
	return func(m *Machine) {
		m.trace = enabled
	}
}

// WithQuirks selects the interpreter variant.
func WithQuirks(q Quirks) Option {
	return func(m *Machine) {
		m.CPU.SetQuirks(q)
	}
}

// WithRandSource makes RND deterministic.
func WithRandSource(src rand.Source) Option {
	return func(m *Machine) {
		m.CPU.SetRandSource(src)
	}
}

// NewMachine creates a new instance of an emulated CHIP-8 VM.
func NewMachine(opts ...Option) *Machine {
	m := &Machine{
		CPU: NewCPU(),
		Bus: NewSystemBus(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = log.NewWithConfig(log.DefaultConfig())
	}
	return m
}

// Step executes a single instruction.
func (m *Machine) Step() error {
	if m.trace {
		m.traceInstruction()
	}
	return m.CPU.Step(m.Bus)
}

// Tick advances the delay timer by one 60 Hz period.
func (m *Machine) Tick() {
	m.Bus.Timer.Tick()
}

// RunFrame executes cycles instructions followed by one timer tick.
func (m *Machine) RunFrame(cycles int) error {
	for i := 0; i < cycles; i++ {
		if err := m.Step(); err != nil {
			return err
		}
	}
	m.Tick()
	return nil
}

// PressKey latches a keypad key.
func (m *Machine) PressKey(code uint8) {
	m.Bus.Keypad.Press(code)
}

// ReleaseKey clears the keypad latch.
func (m *Machine) ReleaseKey() {
	m.Bus.Keypad.Release()
}

// Snapshot returns a copy of the frame buffer for presentation.
func (m *Machine) Snapshot() [DisplaySize]uint8 {
	return m.Bus.Display.Snapshot()
}

// Reset restores the power-on state and reloads the last program.
func (m *Machine) Reset() error {
	m.CPU.Reset()
	m.Bus.Reset()
	if m.rom == nil {
		return nil
	}
	return m.Bus.Memory.Load(PCStartAddr, m.rom)
}

// Dump describes the machine state for diagnostics.
func (m *Machine) Dump() string {
	return m.CPU.String() + " " + m.Bus.String()
}

func (m *Machine) traceInstruction() {
	pc := m.CPU.PC()
	hi, errHi := m.Bus.Read(pc)
	lo, errLo := m.Bus.Read(pc + 1)
	if errHi != nil || errLo != nil {
		return
	}
	word := uint16(hi)<<8 | uint16(lo)
	m.logger.Debug("Executing",
		log.Hex("pc", pc),
		log.Hex("opcode", word),
		log.String("instruction", Disassemble(word)))
}
