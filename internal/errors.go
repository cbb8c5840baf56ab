package internal

import (
	"errors"
	"fmt"
)

// Errors returned by the VM. All of them are fatal to the running program.
var (
	ErrOutOfBounds     = errors.New("address out of bounds")
	ErrUnknownOpcode   = errors.New("unknown opcode")
	ErrStackUnderflow  = errors.New("return with empty call stack")
	ErrStackOverflow   = errors.New("call stack exhausted")
	ErrProgramTooLarge = errors.New("program size exceeds the maximum size")
)

// BoundsError describes a memory access outside of the address space.
type BoundsError struct {
	Op      string // "read" or "write"
	Address uint16
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("memory %s at 0x%04X: %v", e.Op, e.Address, ErrOutOfBounds)
}

// Unwrap returns ErrOutOfBounds.
func (e *BoundsError) Unwrap() error {
	return ErrOutOfBounds
}

// ExecError wraps every error raised while executing an instruction and
// records where it happened.
type ExecError struct {
	PC     uint16 // address of the faulting instruction
	Opcode uint16 // raw instruction word, 0 if the fetch itself failed
	Err    error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("executing %04X at 0x%04X: %v", e.Opcode, e.PC, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}
