package cpu

import (
	"github.com/iiTzHyper/avr/isa"
)

const (
	STACK_CALL_MIN = isa.RAM_START + 1 // SP must be above this to push a return address.
	STACK_PUSH_MIN = isa.RAM_START     // SP must be above this to push a byte.
)

func (cpu *Cpu) setSP(sp int) {
	cpu.write(isa.SPL, byte(sp))
	cpu.write(isa.SPH, byte(sp>>8))
}

// Push a byte at SP, post-decrementing SP.
func (cpu *Cpu) Push(mnemonic string, value byte) (err error) {
	sp := cpu.SP()
	if sp <= STACK_PUSH_MIN || sp > isa.RAMEND {
		err = ErrStackPointer{Mnemonic: mnemonic, SP: sp}
		return
	}

	cpu.write(sp, value)
	cpu.setSP(sp - 1)
	return
}

// Pop a byte, pre-incrementing SP.
func (cpu *Cpu) Pop(mnemonic string) (value byte, err error) {
	sp := cpu.SP()
	if sp < STACK_PUSH_MIN || sp >= isa.RAMEND {
		err = ErrStackPointer{Mnemonic: mnemonic, SP: sp}
		return
	}

	sp++
	cpu.setSP(sp)
	value = cpu.DMEM[sp]
	return
}

// PushReturn pushes a return address, low byte first.
func (cpu *Cpu) PushReturn(mnemonic string, pc int) (err error) {
	sp := cpu.SP()
	if sp <= STACK_CALL_MIN || sp > isa.RAMEND {
		err = ErrStackPointer{Mnemonic: mnemonic, SP: sp}
		return
	}

	cpu.write(sp, byte(pc))
	cpu.write(sp-1, byte(pc>>8))
	cpu.setSP(sp - 2)
	return
}

// PopReturn pops a return address pushed by PushReturn.
func (cpu *Cpu) PopReturn(mnemonic string) (pc int, err error) {
	sp := cpu.SP()
	if sp < isa.RAM_START || sp > isa.RAMEND-2 {
		err = ErrStackPointer{Mnemonic: mnemonic, SP: sp}
		return
	}

	pc = int(cpu.DMEM[sp+1])<<8 | int(cpu.DMEM[sp+2])
	cpu.setSP(sp + 2)
	return
}

// Empty is true when nothing has been pushed since reset.
func (cpu *Cpu) Empty() bool {
	return cpu.SP() == isa.RAMEND
}
