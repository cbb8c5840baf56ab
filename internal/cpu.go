package internal

// Follows the CHIP-8 technical reference found at http://devernay.free.fr/hacks/chip8/C8TECH10.HTM

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

const stackDepth = 16

// Quirks selects between behaviours that differ across CHIP-8 interpreters.
// The zero value is the default behaviour of this VM.
type Quirks struct {
	// ShiftUsesVY makes 8xy6 and 8xyE shift Vy into Vx instead of shifting Vx in place.
	ShiftUsesVY bool
	// BorrowInclusive sets VF on 8xy5 and 8xy7 when the operands are equal too.
	BorrowInclusive bool
}

// CPU is the decode/execute engine of the VM. It owns the registers,
// the program counter and the call stack; everything else is reached
// through a Bus.
type CPU struct {
	opcode uint16             // 16-bit opcode of the current instruction
	regV   [16]uint8          // 16 general purpose 8-bit registers
	regI   uint16             // 16-bit register that is generally used to store memory addresses
	pc     uint16             // Program counter
	sp     uint8              // Stack pointer
	stack  [stackDepth]uint16 // Return addresses

	quirks Quirks
	rnd    *rand.Rand
}

// NewCPU returns a CPU ready to fetch from PCStartAddr.
func NewCPU() *CPU {
	c := &CPU{
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	c.Reset()
	return c
}

// Reset restores the power-on register state. Quirks and random source are kept.
func (c *CPU) Reset() {
	c.opcode = 0
	c.regV = [16]uint8{}
	c.regI = 0
	c.pc = PCStartAddr
	c.sp = 0
	c.stack = [stackDepth]uint16{}
}

// SetQuirks changes the interpreter variant.
func (c *CPU) SetQuirks(q Quirks) {
	c.quirks = q
}

// SetRandSource replaces the source used by Cxkk.
func (c *CPU) SetRandSource(src rand.Source) {
	c.rnd = rand.New(src)
}

// PC returns the program counter.
func (c *CPU) PC() uint16 { return c.pc }

// I returns the index register.
func (c *CPU) I() uint16 { return c.regI }

// V returns register Vx.
func (c *CPU) V(x uint8) uint8 { return c.regV[x&0xF] }

// Opcode returns the last fetched instruction word.
func (c *CPU) Opcode() uint16 { return c.opcode }

// StackDepth returns the number of pending return addresses.
func (c *CPU) StackDepth() int { return int(c.sp) }

// Step fetches, decodes and executes a single instruction. Any error is
// returned as an *ExecError holding the address and word of the instruction.
func (c *CPU) Step(bus Bus) error {
	pc := c.pc
	opcode, err := c.fetch(bus)
	if err != nil {
		return &ExecError{PC: pc, Err: err}
	}
	c.opcode = opcode
	if err := c.execute(bus, opcode); err != nil {
		return &ExecError{PC: pc, Opcode: opcode, Err: err}
	}
	return nil
}

// fetch reads the big-endian instruction word at PC.
func (c *CPU) fetch(bus Bus) (uint16, error) {
	hi, err := bus.Read(c.pc)
	if err != nil {
		return 0, err
	}
	lo, err := bus.Read(c.pc + 1)
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

func (c *CPU) execute(bus Bus, opcode uint16) error {
	x := uint8((opcode >> 8) & 0x000F) // the lower 4 bits of the high byte of the instruction
	y := uint8((opcode >> 4) & 0x000F) // the upper 4 bits of the low byte of the instruction
	n := uint8(opcode & 0x000F)        // the lowest 4 bits of the instruction
	kk := uint8(opcode & 0x00FF)       // the lowest 8 bits of the instruction
	nnn := opcode & 0x0FFF             // the lowest 12 bits of the instruction

	switch opcode & 0xF000 { // Compare against the first 4 bits of the instruction only
	case 0x0000:
		switch kk {
		case 0xE0: // CLS
			bus.ClearScreen()
			c.pc += 2
		case 0xEE: // RET
			if c.sp == 0 {
				return ErrStackUnderflow
			}
			c.sp--
			c.pc = c.stack[c.sp]
		default:
			return ErrUnknownOpcode
		}
	case 0x1000: // JP nnn
		c.pc = nnn
	case 0x2000: // CALL nnn
		if int(c.sp) >= len(c.stack) {
			return ErrStackOverflow
		}
		c.stack[c.sp] = c.pc + 2
		c.sp++
		c.pc = nnn
	case 0x3000: // SE Vx, kk
		c.skipIf(c.regV[x] == kk)
	case 0x4000: // SNE Vx, kk
		c.skipIf(c.regV[x] != kk)
	case 0x5000:
		if n != 0x0 {
			return ErrUnknownOpcode
		}
		c.skipIf(c.regV[x] == c.regV[y]) // SE Vx, Vy
	case 0x6000: // LD Vx, kk
		c.regV[x] = kk
		c.pc += 2
	case 0x7000: // ADD Vx, kk
		c.regV[x] += kk
		c.pc += 2
	case 0x8000:
		if err := c.executeALU(x, y, n); err != nil {
			return err
		}
		c.pc += 2
	case 0x9000:
		if n != 0x0 {
			return ErrUnknownOpcode
		}
		c.skipIf(c.regV[x] != c.regV[y]) // SNE Vx, Vy
	case 0xA000: // LD I, nnn
		c.regI = nnn
		c.pc += 2
	case 0xB000: // JP V0, nnn
		c.pc = nnn + uint16(c.regV[0])
	case 0xC000: // RND Vx, kk
		c.regV[x] = uint8(c.rnd.Intn(256)) & kk
		c.pc += 2
	case 0xD000: // DRW Vx, Vy, n
		if err := c.drawSprite(bus, c.regV[x], c.regV[y], n); err != nil {
			return err
		}
		c.pc += 2
	case 0xE000:
		switch kk {
		case 0x9E: // SKP Vx
			c.skipIf(bus.IsKeyPressed(c.regV[x]))
		case 0xA1: // SKNP Vx
			c.skipIf(!bus.IsKeyPressed(c.regV[x]))
		default:
			return ErrUnknownOpcode
		}
	case 0xF000:
		return c.executeMisc(bus, x, kk)
	default:
		return ErrUnknownOpcode
	}
	return nil
}

// executeALU handles the 8xyn register to register group. ADD writes VF
// after Vx, SUB, SUBN and the shifts write it before, so with x = F the
// carry wins for ADD and the result wins for the others.
func (c *CPU) executeALU(x, y, n uint8) error {
	vx, vy := c.regV[x], c.regV[y]
	switch n {
	case 0x0: // LD Vx, Vy
		c.regV[x] = vy
	case 0x1: // OR Vx, Vy
		c.regV[x] = vx | vy
	case 0x2: // AND Vx, Vy
		c.regV[x] = vx & vy
	case 0x3: // XOR Vx, Vy
		c.regV[x] = vx ^ vy
	case 0x4: // ADD Vx, Vy
		sum := uint16(vx) + uint16(vy)
		c.regV[x] = uint8(sum)
		c.setFlag(sum > 0xFF)
	case 0x5: // SUB Vx, Vy
		c.setFlag(c.noBorrow(vx, vy))
		c.regV[x] = vx - vy
	case 0x6: // SHR Vx {, Vy}
		src := c.shiftSource(vx, vy)
		c.setFlag(src&0x01 == 0x01)
		c.regV[x] = src >> 1
	case 0x7: // SUBN Vx, Vy
		c.setFlag(c.noBorrow(vy, vx))
		c.regV[x] = vy - vx
	case 0xE: // SHL Vx {, Vy}
		src := c.shiftSource(vx, vy)
		c.setFlag(src&0x80 == 0x80)
		c.regV[x] = src << 1
	default:
		return ErrUnknownOpcode
	}
	return nil
}

func (c *CPU) executeMisc(bus Bus, x, kk uint8) error {
	switch kk {
	case 0x07: // LD Vx, DT
		c.regV[x] = bus.DelayTimer()
	case 0x0A: // LD Vx, K
		key, ok := bus.ConsumeKey()
		if !ok {
			// PC stays put so the host loop executes this instruction again
			return nil
		}
		c.regV[x] = key
	case 0x15: // LD DT, Vx
		bus.SetDelayTimer(c.regV[x])
	case 0x18: // LD ST, Vx
		// no sound output
	case 0x1E: // ADD I, Vx
		c.regI += uint16(c.regV[x])
	case 0x29: // LD F, Vx
		c.regI = FontAddr + uint16(c.regV[x])*FontGlyphBytes
	case 0x33: // LD B, Vx
		vx := c.regV[x]
		digits := [3]uint8{vx / 100, (vx / 10) % 10, vx % 10}
		for i, d := range digits {
			if err := bus.Write(c.regI+uint16(i), d); err != nil {
				return err
			}
		}
	case 0x55: // LD [I], Vx
		for i := uint16(0); i <= uint16(x); i++ {
			if err := bus.Write(c.regI+i, c.regV[i]); err != nil {
				return err
			}
		}
	case 0x65: // LD Vx, [I]
		for i := uint16(0); i <= uint16(x); i++ {
			value, err := bus.Read(c.regI + i)
			if err != nil {
				return err
			}
			c.regV[i] = value
		}
	default:
		return ErrUnknownOpcode
	}
	c.pc += 2
	return nil
}

// drawSprite blits n rows read from I at (x, y) and sets VF on collision.
func (c *CPU) drawSprite(bus Bus, x, y, n uint8) error {
	collision := false
	for row := uint8(0); row < n; row++ {
		spriteByte, err := bus.Read(c.regI + uint16(row))
		if err != nil {
			return err
		}
		py := uint16(y) + uint16(row)
		if py >= ScreenHeight {
			continue
		}
		if bus.DrawRow(spriteByte, x, uint8(py)) {
			collision = true
		}
	}
	c.setFlag(collision)
	return nil
}

func (c *CPU) skipIf(cond bool) {
	if cond {
		c.pc += 2
	}
	c.pc += 2
}

func (c *CPU) setFlag(set bool) {
	if set {
		c.regV[0xF] = 1
	} else {
		c.regV[0xF] = 0
	}
}

func (c *CPU) noBorrow(minuend, subtrahend uint8) bool {
	if c.quirks.BorrowInclusive {
		return minuend >= subtrahend
	}
	return minuend > subtrahend
}

func (c *CPU) shiftSource(vx, vy uint8) uint8 {
	if c.quirks.ShiftUsesVY {
		return vy
	}
	return vx
}

// String dumps the register file and call stack.
func (c *CPU) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "PC=%04X I=%04X", c.pc, c.regI)
	for i, v := range c.regV {
		fmt.Fprintf(&sb, " V%X=%02X", i, v)
	}
	sb.WriteString(" stack=[")
	for i := uint8(0); i < c.sp; i++ {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%04X", c.stack[i])
	}
	sb.WriteByte(']')
	return sb.String()
}
