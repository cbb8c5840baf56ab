package internal

import (
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retrogolib/log"
)

// LoadROM copies a program into memory at PCStartAddr.
func (m *Machine) LoadROM(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading program: %w", err)
	}
	if len(data) > maxProgramSize {
		return fmt.Errorf("%w: %d bytes, at most %d fit", ErrProgramTooLarge, len(data), maxProgramSize)
	}
	// drop leftovers of a previously loaded, longer program
	_ = m.Bus.Memory.Load(PCStartAddr, make([]byte, maxProgramSize))
	if err := m.Bus.Memory.Load(PCStartAddr, data); err != nil {
		return fmt.Errorf("copying program into memory: %w", err)
	}
	m.rom = data
	m.logger.Debug("Program loaded",
		log.Hex("address", uint16(PCStartAddr)),
		log.Uint16("size", uint16(len(data))))
	return nil
}

// LoadFile loads a given CHIP-8 program file into the VM's memory.
func (m *Machine) LoadFile(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("opening program '%s': %w", filename, err)
	}
	defer func() {
		_ = f.Close()
	}()

	if err := m.LoadROM(f); err != nil {
		return fmt.Errorf("loading program '%s': %w", filename, err)
	}
	return nil
}
