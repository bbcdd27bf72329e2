// Package isa holds the static description of the supported AVR subset.
//
// It defines the lexical token model shared by the assembler and the
// interpreter, the operand rules each mnemonic accepts, the opcode templates
// and the encoder that turns a validated instruction into its bitstring, and
// the memory map of the simulated part.
//
// The mnemonic, operand rule, template and directive tables are built once
// into the immutable registry AVR. Nothing in this package is mutated after
// initialization.
package isa
