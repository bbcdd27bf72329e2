package asm

import (
	"github.com/iiTzHyper/avr/isa"
	"github.com/iiTzHyper/avr/translate"
)

var f = translate.From

// kindError is a fixed message classified by one of the isa error kinds.
type kindError struct {
	kind error
	msg  string
}

func (err *kindError) Error() string {
	return err.msg
}

func (err *kindError) Is(target error) bool {
	return target == err.kind
}

var (
	// Structure errors
	ErrSectionFirst    = &kindError{isa.ErrDirective, f("first line must be .section .data or .section .text")}
	ErrSectionSyntax   = &kindError{isa.ErrDirective, f(".section takes exactly one argument, .data or .text")}
	ErrSectionOrder    = &kindError{isa.ErrDirective, f(".section .data must precede .section .text")}
	ErrTextMissing     = &kindError{isa.ErrDirective, f(".section .text missing")}
	ErrEndMissing      = &kindError{isa.ErrDirective, f("last line must be .end")}
	ErrGlobalMissing   = &kindError{isa.ErrDirective, f(".section .text must be followed by .global <entry>")}
	ErrGlobalSyntax    = &kindError{isa.ErrDirective, f(".global takes exactly one label")}
	ErrGlobalPlacement = &kindError{isa.ErrDirective, f(".global must come before any instruction")}
	ErrLabelPlacement  = &kindError{isa.ErrDirective, f("labels must start a line")}
	ErrDirectiveSyntax = &kindError{isa.ErrDirective, f("malformed directive arguments")}
	ErrDirectiveData   = &kindError{isa.ErrDirective, f("directive expected in .data section")}

	// Encoding errors
	ErrFlashOverflow = &kindError{isa.ErrEncodingOverflow, f("program does not fit in flash")}
	ErrRamOverflow   = &kindError{isa.ErrEncodingOverflow, f("data does not fit in RAM")}

	// Expression errors
	ErrDivideByZero   = &kindError{isa.ErrOperand, f("division by zero")}
	ErrFunctionRange  = &kindError{isa.ErrOperand, f("hi8()/lo8() argument must be less than 2^32")}
	ErrFunctionSyntax = &kindError{isa.ErrOperand, f("hi8()/lo8() must be followed by a parenthesized expression")}
)

// ErrSyntax indicates the source line of an assembly error.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err *ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err *ErrSyntax) Unwrap() error {
	return err.Err
}

// ErrToken reports a position where no token pattern matched.
type ErrToken struct {
	Column int
}

func (err ErrToken) Error() string {
	return f("invalid syntax starting at position %d", err.Column)
}

func (err ErrToken) Is(target error) bool {
	return target == isa.ErrLex
}

type ErrUnknownDirective string

func (err ErrUnknownDirective) Error() string {
	return f("unknown directive %v", string(err))
}

func (err ErrUnknownDirective) Is(target error) bool {
	return target == isa.ErrLex
}

type ErrIllegalToken string

func (err ErrIllegalToken) Error() string {
	return f("illegal token %v", string(err))
}

func (err ErrIllegalToken) Is(target error) bool {
	return target == isa.ErrDirective
}

type ErrEscape string

func (err ErrEscape) Error() string {
	return f("invalid escape sequence %v", string(err))
}

func (err ErrEscape) Is(target error) bool {
	return target == isa.ErrDirective
}

type ErrLabelMissing string

func (err ErrLabelMissing) Error() string {
	return f("label %v missing", string(err))
}

func (err ErrLabelMissing) Is(target error) bool {
	return target == isa.ErrReference
}

type ErrLabelDuplicate string

func (err ErrLabelDuplicate) Error() string {
	return f("label %v duplicated", string(err))
}

func (err ErrLabelDuplicate) Is(target error) bool {
	return target == isa.ErrReference
}

type ErrNameCollision string

func (err ErrNameCollision) Error() string {
	return f("name %v already in use", string(err))
}

func (err ErrNameCollision) Is(target error) bool {
	return target == isa.ErrReference
}

type ErrUndefined string

func (err ErrUndefined) Error() string {
	return f("undefined reference %v", string(err))
}

func (err ErrUndefined) Is(target error) bool {
	return target == isa.ErrReference
}

type ErrUnknownMnemonic string

func (err ErrUnknownMnemonic) Error() string {
	return f("invalid instruction %v", string(err))
}

func (err ErrUnknownMnemonic) Is(target error) bool {
	return target == isa.ErrOperand
}

type ErrRegisterRange int

func (err ErrRegisterRange) Error() string {
	return f("register R%d does not exist", int(err))
}

func (err ErrRegisterRange) Is(target error) bool {
	return target == isa.ErrOperand
}

type ErrCommaExpected string

func (err ErrCommaExpected) Error() string {
	return f("illegal token %v: expecting comma", string(err))
}

func (err ErrCommaExpected) Is(target error) bool {
	return target == isa.ErrOperand
}

type ErrExpression string

func (err ErrExpression) Error() string {
	return f("'%v' is not a valid expression", string(err))
}

func (err ErrExpression) Is(target error) bool {
	return target == isa.ErrOperand
}

type ErrValueRange int

func (err ErrValueRange) Error() string {
	return f("value %d does not fit", int(err))
}

func (err ErrValueRange) Is(target error) bool {
	return target == isa.ErrDirective
}
