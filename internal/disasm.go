package internal

import (
	"fmt"
	"strings"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Disassemble renders an instruction word as assembly, for example
// "LD V1, $0A" or "DRW V0, V1, 5". Words that are not instructions are
// rendered as data.
func Disassemble(word uint16) string {
	name, ok := mnemonic(word)
	if !ok {
		return fmt.Sprintf("DW $%04X", word)
	}
	params := operands(word)
	if params == "" {
		return name
	}
	return name + " " + params
}

// mnemonic looks the word up in the CHIP-8 opcode table.
func mnemonic(word uint16) (string, bool) {
	for _, op := range chip8.Opcodes[int(word>>12)] {
		if op.Instruction != nil && op.Info.Mask&word == op.Info.Value {
			return strings.ToUpper(op.Instruction.Name), true
		}
	}
	return "", false
}

func operands(word uint16) string {
	x := (word >> 8) & 0xF
	y := (word >> 4) & 0xF
	n := word & 0xF
	kk := word & 0xFF
	nnn := word & 0xFFF

	switch word & 0xF000 {
	case 0x0000:
		if kk == 0xE0 || kk == 0xEE {
			return ""
		}
		return fmt.Sprintf("$%03X", nnn)
	case 0x1000, 0x2000:
		return fmt.Sprintf("$%03X", nnn)
	case 0x3000, 0x4000, 0x6000, 0x7000, 0xC000:
		return fmt.Sprintf("V%X, $%02X", x, kk)
	case 0x5000, 0x8000, 0x9000:
		return fmt.Sprintf("V%X, V%X", x, y)
	case 0xA000:
		return fmt.Sprintf("I, $%03X", nnn)
	case 0xB000:
		return fmt.Sprintf("V0, $%03X", nnn)
	case 0xD000:
		return fmt.Sprintf("V%X, V%X, %d", x, y, n)
	case 0xE000:
		return fmt.Sprintf("V%X", x)
	}

	switch kk {
	case 0x07:
		return fmt.Sprintf("V%X, DT", x)
	case 0x0A:
		return fmt.Sprintf("V%X, K", x)
	case 0x15:
		return fmt.Sprintf("DT, V%X", x)
	case 0x18:
		return fmt.Sprintf("ST, V%X", x)
	case 0x1E:
		return fmt.Sprintf("I, V%X", x)
	case 0x29:
		return fmt.Sprintf("F, V%X", x)
	case 0x33:
		return fmt.Sprintf("B, V%X", x)
	case 0x55:
		return fmt.Sprintf("[I], V%X", x)
	case 0x65:
		return fmt.Sprintf("V%X, [I]", x)
	}
	return ""
}
