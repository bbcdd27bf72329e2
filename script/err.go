package script

import (
	"errors"

	"github.com/iiTzHyper/avr/isa"
	"github.com/iiTzHyper/avr/translate"
)

var f = translate.From

var (
	ErrUnhashable = errors.New(f("unhashable type: machine"))
)

// ErrRegister reports a register number outside of r0..r31.
type ErrRegister int

func (err ErrRegister) Error() string {
	return f("no register r%d", int(err))
}

// ErrFlag reports an unknown SREG flag name.
type ErrFlag string

func (err ErrFlag) Error() string {
	return f("unknown flag '%v', expected one of %v", string(err), isa.FlagNames)
}

// ErrSteps reports a negative step count.
type ErrSteps int

func (err ErrSteps) Error() string {
	return f("step count %d must not be negative", int(err))
}
