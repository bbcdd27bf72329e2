package cpu

import (
	"github.com/iiTzHyper/avr/isa"
	"github.com/iiTzHyper/avr/translate"
)

var f = translate.From

// runtimeError is a fixed runtime error message.
type runtimeError string

func (err runtimeError) Error() string {
	return string(err)
}

func (err runtimeError) Is(target error) bool {
	return target == isa.ErrRuntime
}

var (
	ErrTailExecuted = runtimeError(f("second word of a 32-bit instruction executed"))
	ErrProgramEmpty = runtimeError(f("no program loaded"))
)

// ErrStackPointer reports a call, return, push or pop with the stack
// pointer outside of its legal range.
type ErrStackPointer struct {
	Mnemonic string
	SP       int
}

func (err ErrStackPointer) Error() string {
	return f("bad stack pointer 0x%04x for %v", err.SP, err.Mnemonic)
}

func (err ErrStackPointer) Is(target error) bool {
	return target == isa.ErrRuntime
}

// ErrAddress reports a data memory access outside of data memory.
type ErrAddress int

func (err ErrAddress) Error() string {
	return f("data address 0x%04x out of range", int(err))
}

func (err ErrAddress) Is(target error) bool {
	return target == isa.ErrRuntime
}

// ErrProgramAddress reports a program memory access outside of flash.
type ErrProgramAddress int

func (err ErrProgramAddress) Error() string {
	return f("program address 0x%04x out of range", int(err))
}

func (err ErrProgramAddress) Is(target error) bool {
	return target == isa.ErrRuntime
}

// ErrPointerZ reports an XCH with Z outside of internal RAM.
type ErrPointerZ int

func (err ErrPointerZ) Error() string {
	return f("illegal value of Z pointer 0x%04x", int(err))
}

func (err ErrPointerZ) Is(target error) bool {
	return target == isa.ErrRuntime
}

// ErrUnknownInstruction reports a program memory slot the CPU cannot execute.
type ErrUnknownInstruction string

func (err ErrUnknownInstruction) Error() string {
	return f("unknown instruction %v", string(err))
}

func (err ErrUnknownInstruction) Is(target error) bool {
	return target == isa.ErrRuntime
}
