// Package cpu implements the interpreter for assembled AVR subset programs.
//
// The CPU executes the resolved instructions of an isa.Program directly,
// one program memory slot at a time. The 32 registers, the I/O space, the
// stack pointer and SREG all live in a flat byte data memory, laid out as
// on the real part, so that LDS/STS, IN/OUT and the pointer instructions
// see the same bytes the register instructions do.
//
// Calls to the intrinsic 'printf' are serviced by the interpreter itself,
// writing to the CPU's Output.
package cpu
