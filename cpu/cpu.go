package cpu

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/iiTzHyper/avr/isa"
)

const (
	STEP_LIMIT = 1000000 // Default maximum steps of a single run.
)

// Cpu is the simulation context for an assembled program.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Program *isa.Program // Program being executed.
	DMEM    []byte       // Data memory: registers, I/O space and RAM.
	PC      int          // Program counter, in words.

	Steps     int  // Instructions executed since reset.
	StepLimit int  // Maximum instructions before a run is aborted; 0 for no limit.
	Finished  bool // Set once the program has ended, normally or not.

	Output io.Writer // Destination of 'printf' output; discarded if nil.

	// Watch, when set, is called for every data memory write made by an
	// executing instruction.
	Watch func(addr int, prev, value byte)
}

// NewCpu creates a new CPU loaded with prog.
func NewCpu(prog *isa.Program) (cpu *Cpu) {
	cpu = &Cpu{
		StepLimit: STEP_LIMIT,
	}

	cpu.Load(prog)

	return
}

// Load replaces the program and resets the CPU.
func (cpu *Cpu) Load(prog *isa.Program) {
	cpu.Program = prog
	cpu.Reset()
}

// Reset the CPU state.
// - Copies the initial data memory image of the program.
// - Sets PC to the program entry and SP to RAMEND.
// - Zeros the step counter and clears the finished state.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	if len(cpu.DMEM) != isa.RAM_SIZE {
		cpu.DMEM = make([]byte, isa.RAM_SIZE)
	}

	cpu.PC = 0
	if cpu.Program != nil {
		copy(cpu.DMEM, cpu.Program.DMEM)
		cpu.PC = cpu.Program.Entry
	} else {
		clear(cpu.DMEM)
	}

	cpu.DMEM[isa.SPL] = byte(isa.RAMEND & 0xff)
	cpu.DMEM[isa.SPH] = byte(isa.RAMEND >> 8)

	cpu.Steps = 0
	cpu.Finished = false
}

// Register returns the value of register n.
func (cpu *Cpu) Register(n int) byte {
	return cpu.DMEM[n&0x1f]
}

// SP returns the stack pointer.
func (cpu *Cpu) SP() int {
	return int(cpu.DMEM[isa.SPL]) | int(cpu.DMEM[isa.SPH])<<8
}

// SREG returns the status register.
func (cpu *Cpu) SREG() byte {
	return cpu.DMEM[isa.SREG]
}

// Peek returns the data memory byte at addr.
func (cpu *Cpu) Peek(addr int) (value byte, err error) {
	if addr < 0 || addr >= len(cpu.DMEM) {
		err = ErrAddress(addr)
		return
	}

	value = cpu.DMEM[addr]
	return
}

// Poke stores value in data memory at addr.
func (cpu *Cpu) Poke(addr int, value byte) (err error) {
	if addr < 0 || addr >= len(cpu.DMEM) {
		err = ErrAddress(addr)
		return
	}

	cpu.write(addr, value)
	return
}

// write stores a byte at an address known to be in data memory.
func (cpu *Cpu) write(addr int, value byte) {
	prev := cpu.DMEM[addr]
	cpu.DMEM[addr] = value
	if cpu.Watch != nil {
		cpu.Watch(addr, prev, value)
	}
}

// word returns the 16-bit register pair starting at reg.
func (cpu *Cpu) word(reg int) int {
	return int(cpu.DMEM[reg]) | int(cpu.DMEM[reg+1])<<8
}

// setWord stores a 16-bit value in the register pair starting at reg.
func (cpu *Cpu) setWord(reg int, value int) {
	cpu.write(reg, byte(value))
	cpu.write(reg+1, byte(value>>8))
}

// Instruction returns the instruction at the program counter.
func (cpu *Cpu) Instruction() (inst *isa.Instruction, ok bool) {
	if cpu.Program == nil || cpu.PC < 0 || cpu.PC >= len(cpu.Program.PMEM) {
		return
	}

	return &cpu.Program.PMEM[cpu.PC], true
}

// LineNo returns the source line of the instruction at the program counter.
func (cpu *Cpu) LineNo() int {
	if cpu.Program == nil {
		return 0
	}

	return cpu.Program.LineNo(cpu.PC)
}

// Step executes a single instruction.
// done is set when the program has finished, normally or by an error.
func (cpu *Cpu) Step() (done bool, err error) {
	if cpu.Finished {
		done = true
		return
	}

	defer func() {
		if err != nil {
			cpu.Finished = true
		}
		done = cpu.Finished
	}()

	if cpu.Program == nil {
		err = ErrProgramEmpty
		return
	}

	inst, ok := cpu.Instruction()
	if !ok {
		cpu.Finished = true
		return
	}

	if cpu.Verbose {
		log.Printf("%04x: %-24v SP=%04x SREG=%v", cpu.PC, inst.String(), cpu.SP(), FlagString(cpu.SREG()))
	}

	err = cpu.Execute(inst)
	if err != nil {
		return
	}

	cpu.Steps++
	if cpu.StepLimit > 0 && cpu.Steps > cpu.StepLimit {
		err = isa.ErrRunaway
		return
	}

	if cpu.PC < 0 || cpu.PC >= len(cpu.Program.PMEM) {
		cpu.Finished = true
	}

	return
}

// Run steps the CPU until the program finishes.
func (cpu *Cpu) Run() (err error) {
	for {
		var done bool
		done, err = cpu.Step()
		if err != nil || done {
			return
		}
	}
}

// FlagString returns the SREG bits as letters, upper case when set,
// most significant bit first.
func FlagString(sreg byte) string {
	var text strings.Builder
	for n := 7; n >= 0; n-- {
		c := isa.FlagNames[n]
		if sreg&(1<<n) == 0 {
			c += 'a' - 'A'
		}
		text.WriteByte(c)
	}
	return text.String()
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	for row := 0; row < 32; row += 8 {
		for n := row; n < row+8; n++ {
			text += fmt.Sprintf(" r%-2d: %02x", n, cpu.DMEM[n])
		}
		text += "\n"
	}

	text += fmt.Sprintf("   pc: %04x\n", cpu.PC)
	text += fmt.Sprintf("   sp: %04x\n", cpu.SP())
	text += fmt.Sprintf(" sreg: %v\n", FlagString(cpu.SREG()))
	text += fmt.Sprintf("steps: %v\n", cpu.Steps)

	return
}
