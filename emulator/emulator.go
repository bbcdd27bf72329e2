// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"iter"
	"maps"
	"strings"

	"github.com/iiTzHyper/avr/asm"
	"github.com/iiTzHyper/avr/cpu"
	"github.com/iiTzHyper/avr/image"
	"github.com/iiTzHyper/avr/internal"
	"github.com/iiTzHyper/avr/io"
	"github.com/iiTzHyper/avr/isa"
)

// Change is the last write to a data memory address.
type Change struct {
	Step  int  // Step number of the instruction that made the write.
	Prev  byte // Value before the write.
	Value byte // Value written.
}

// Emulator state. CPU + program source + console.
type Emulator struct {
	Verbose  bool   // If set, enables verbose logging.
	*cpu.Cpu        // Reference to the CPU simulation.
	Source   string // Source of the loaded program, kept for replay.

	Console io.Console         // Destination of 'printf'.
	Changes map[int]Change     // Last write per data memory address.
	Trace   *image.TraceWriter // If set, receives a frame per executed instruction.

	symbols   map[string]int
	replaying bool
}

// NewEmulator creates a new emulator with an empty program.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(isa.NewProgram()),
		Changes: map[int]Change{},
		symbols: map[string]int{},
	}

	emu.Cpu.Output = &emu.Console
	emu.Cpu.Watch = emu.watch

	return
}

func (emu *Emulator) watch(addr int, prev, value byte) {
	emu.Changes[addr] = Change{Step: emu.Cpu.Steps + 1, Prev: prev, Value: value}
}

// Defines returns an iterator over all of the symbols of the program, and
// the register aliases every program starts with.
func (emu *Emulator) Defines() iter.Seq2[string, int] {
	return internal.IterSeq2Concat(maps.All(emu.symbols),
		isa.AVR.Predefines(),
	)
}

// Assemble source and load the resulting program.
func (emu *Emulator) Assemble(source string) (err error) {
	assembler := &asm.Assembler{Verbose: emu.Verbose}
	prog, err := assembler.Parse(strings.NewReader(source))
	if err != nil {
		return
	}

	emu.Source = source
	emu.symbols = maps.Collect(assembler.Symbols())
	emu.Load(prog)

	return
}

// Load a program and reset.
func (emu *Emulator) Load(prog *isa.Program) {
	emu.Cpu.Program = prog
	emu.Reset()
}

// Reset the emulator state.
func (emu *Emulator) Reset() {
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Reset()

	clear(emu.Changes)
	emu.Console.Rewind()
}

// Changed is true if addr was written by the most recent step.
func (emu *Emulator) Changed(addr int) bool {
	change, ok := emu.Changes[addr]
	return ok && change.Step == emu.Cpu.Steps
}

// LineNo returns the current line number for the executing instruction.
func (emu *Emulator) LineNo() int {
	return emu.Cpu.LineNo()
}

// Tick performs a single step of the emulator.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	lineno := emu.LineNo()
	pc := emu.Cpu.PC
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, PC: pc, Err: err}
		}
	}()

	frame := image.Frame{
		Pc:   uint16(emu.Cpu.PC),
		Sp:   uint16(emu.Cpu.SP()),
		Sreg: emu.Cpu.SREG(),
		Word: emu.Cpu.Program.Word(emu.Cpu.PC),
	}

	if emu.Cpu.Finished {
		done = true
		return
	}

	done, err = emu.Cpu.Step()
	if err != nil {
		return
	}

	if emu.Trace != nil && !emu.replaying {
		frame.Step = uint32(emu.Cpu.Steps)
		err = emu.Trace.Pack(&frame)
	}

	return
}

// Run ticks until the program finishes.
func (emu *Emulator) Run() (err error) {
	for {
		var done bool
		done, err = emu.Tick()
		if err != nil || done {
			return
		}
	}
}

// Back steps backwards n instructions, by replaying the program from
// reset up to the earlier step. Console output is not repeated.
func (emu *Emulator) Back(n int) (err error) {
	target := max(emu.Cpu.Steps-n, 0)

	if len(emu.Source) != 0 {
		err = emu.Assemble(emu.Source)
		if err != nil {
			return
		}
	} else {
		emu.Reset()
	}

	muted := emu.Console.Muted
	emu.Console.Muted = true
	emu.replaying = true
	defer func() {
		emu.Console.Muted = muted
		emu.replaying = false
	}()

	for emu.Cpu.Steps < target {
		var done bool
		done, err = emu.Tick()
		if err != nil || done {
			return
		}
	}

	return
}
