// Package asm implements the two pass assembler for the AVR subset.
//
// Source is split into token lines by the lexer, checked for its section
// structure, scanned for labels and data directives, and then every
// instruction line has its hi8()/lo8() calls, references and expressions
// resolved before its operands are validated and encoded.
//
// Errors are reported as ErrSyntax, carrying the 1-based source line, and
// wrap one of the isa error kinds.
package asm
