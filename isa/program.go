package isa

import (
	"iter"
	"strconv"
	"strings"
)

// Memory map of the simulated part.
const (
	FLASHEND   = 0x3FFF       // Last program memory word.
	RAMEND     = 0x8FF        // Last data memory byte.
	FLASH_SIZE = FLASHEND + 1 // Program memory words.
	RAM_SIZE   = RAMEND + 1   // Data memory bytes.

	IO_OFFSET = 0x20  // Data address of I/O register 0.
	SPL       = 0x5D  // Stack pointer low byte.
	SPH       = 0x5E  // Stack pointer high byte.
	SREG      = 0x5F  // Status register.
	RAM_START = 0x100 // First byte of internal RAM.
	REGISTERS = 32    // General purpose registers, data addresses 0..31.

	REG_X = 26 // XL; XH is REG_X+1.
	REG_Y = 28 // YL; YH is REG_Y+1.
	REG_Z = 30 // ZL; ZH is REG_Z+1.
)

// SREG bits.
const (
	FLAG_C = iota // Carry
	FLAG_Z        // Zero
	FLAG_N        // Negative
	FLAG_V        // Two's complement overflow
	FLAG_S        // Sign, N ^ V
	FLAG_H        // Half carry
	FLAG_T        // Transfer bit
	FLAG_I        // Interrupt enable
)

// FlagNames are the SREG bit names, bit 0 first.
const FlagNames = "CZNVSHTI"

// Instruction is a single program memory slot.
type Instruction struct {
	Mnemonic string  // Upper case mnemonic; empty for a Tail slot.
	Operands []Token // Validated and resolved operands.
	Opcode   string  // 16 or 32 digit opcode bitstring.
	LineNo   int     // Source line, 0 for fill.
	Tail     bool    // Second word of the preceding 32-bit instruction.
}

// Nop is the instruction filling unused program memory.
var Nop = Instruction{Mnemonic: "NOP", Opcode: "0000000000000000"}

// Wide is true for an instruction occupying two program memory words.
func (inst *Instruction) Wide() bool {
	return len(inst.Opcode) == 32
}

// String returns the instruction in assembler syntax.
func (inst *Instruction) String() string {
	if inst.Tail {
		return "..."
	}

	ops := make([]string, len(inst.Operands))
	for n, op := range inst.Operands {
		ops[n] = op.String()
	}

	if len(ops) == 0 {
		return inst.Mnemonic
	}

	return inst.Mnemonic + " " + strings.Join(ops, ", ")
}

// Words returns the opcode as one or two 16-bit words, high word first.
func (inst *Instruction) Words() (words []uint16) {
	for n := 0; n+16 <= len(inst.Opcode); n += 16 {
		word, err := strconv.ParseUint(inst.Opcode[n:n+16], 2, 16)
		if err != nil {
			return
		}
		words = append(words, uint16(word))
	}

	return
}

// Program is the result of an assembly: program memory, the initial data
// memory image, and the entry point.
type Program struct {
	PMEM  []Instruction // FLASH_SIZE slots.
	DMEM  []byte        // RAM_SIZE bytes.
	Entry int           // Program counter reset value.

	Size     int // Program memory words used by code.
	DataSize int // Data memory bytes used from RAM_START.
}

// NewProgram returns an empty program with NOP filled flash and zeroed RAM.
func NewProgram() (prog *Program) {
	prog = &Program{
		PMEM: make([]Instruction, FLASH_SIZE),
		DMEM: make([]byte, RAM_SIZE),
	}

	for n := range prog.PMEM {
		prog.PMEM[n] = Nop
	}

	return
}

// Word returns the 16-bit program memory word at addr.
func (prog *Program) Word(addr int) (word uint16) {
	if addr < 0 || addr >= len(prog.PMEM) {
		return
	}

	inst := &prog.PMEM[addr]
	if inst.Tail && addr > 0 {
		words := prog.PMEM[addr-1].Words()
		if len(words) == 2 {
			word = words[1]
		}
		return
	}

	words := inst.Words()
	if len(words) > 0 {
		word = words[0]
	}
	return
}

// Code iterates over the used program memory words.
func (prog *Program) Code() iter.Seq2[int, uint16] {
	return func(yield func(addr int, word uint16) bool) {
		for addr := range prog.Size {
			if !yield(addr, prog.Word(addr)) {
				return
			}
		}
	}
}

// LineNo returns the source line of the instruction at addr, or 0.
func (prog *Program) LineNo(addr int) int {
	if addr < 0 || addr >= len(prog.PMEM) {
		return 0
	}

	return prog.PMEM[addr].LineNo
}

// Clone returns a deep copy of the data memory image with shared program memory.
func (prog *Program) Clone() *Program {
	clone := *prog
	clone.DMEM = append([]byte(nil), prog.DMEM...)
	return &clone
}
