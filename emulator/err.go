package emulator

import (
	"github.com/iiTzHyper/avr/translate"
)

var f = translate.From

// ErrRuntime locates a runtime error at the faulting instruction.
type ErrRuntime struct {
	LineNo int   // Source line, 0 if unknown.
	PC     int   // Program counter of the faulting instruction.
	Err    error // Cause; matches isa.ErrRuntime or isa.ErrRunaway.
}

func (err *ErrRuntime) Error() string {
	if err.LineNo == 0 {
		return f("pc 0x%04x %v", err.PC, err.Err)
	}
	return f("line %d pc 0x%04x %v", err.LineNo, err.PC, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
