package isa

import (
	"errors"

	"github.com/iiTzHyper/avr/translate"
)

var f = translate.From

var (
	// Error kinds. Every assembler and runtime error matches exactly one
	// of these with errors.Is().
	ErrLex              = errors.New(f("invalid syntax"))
	ErrDirective        = errors.New(f("directive error"))
	ErrReference        = errors.New(f("reference error"))
	ErrOperand          = errors.New(f("operand error"))
	ErrEncodingOverflow = errors.New(f("encoding overflow"))
	ErrRuntime          = errors.New(f("runtime error"))
	ErrRunaway          = errors.New(f("number of steps in code too large, execution terminated"))
)

// ErrIllegalOperand reports an operand of the wrong kind or value.
type ErrIllegalOperand string

func (err ErrIllegalOperand) Error() string {
	return f("illegal operand %v", string(err))
}

func (err ErrIllegalOperand) Is(target error) bool {
	return target == ErrOperand
}

// ErrOperandRange reports a numeric operand outside of its rule's range.
type ErrOperandRange struct {
	Operand  string
	Min, Max int
}

func (err ErrOperandRange) Error() string {
	return f("operand %v out of range [%d, %d]", err.Operand, err.Min, err.Max)
}

func (err ErrOperandRange) Is(target error) bool {
	return target == ErrOperand
}

// ErrOperandCount reports a wrong number of operands for a mnemonic.
type ErrOperandCount struct {
	Mnemonic string
	Want     int
	Got      int
}

func (err ErrOperandCount) Error() string {
	return f("%v expects %d operands, got %d", err.Mnemonic, err.Want, err.Got)
}

func (err ErrOperandCount) Is(target error) bool {
	return target == ErrOperand
}
