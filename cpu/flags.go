package cpu

import (
	"github.com/iiTzHyper/avr/isa"
)

// Flag returns the state of an SREG bit.
func (cpu *Cpu) Flag(bit int) bool {
	return cpu.DMEM[isa.SREG]&(1<<bit) != 0
}

// SetFlag sets or clears an SREG bit.
func (cpu *Cpu) SetFlag(bit int, on bool) {
	cpu.updateFlags(flags{}.with(bit, on))
}

// flags is a pending SREG update: the bits in mask are replaced by value.
type flags struct {
	mask  byte
	value byte
}

func (fl flags) with(bit int, on bool) flags {
	fl.mask |= 1 << bit
	if on {
		fl.value |= 1 << bit
	} else {
		fl.value &^= 1 << bit
	}
	return fl
}

// zns adds Z, N and S (N^V) for result r and overflow v.
func (fl flags) zns(r byte, v bool) flags {
	n := bit(int(r), 7)
	return fl.with(isa.FLAG_Z, r == 0).
		with(isa.FLAG_N, n).
		with(isa.FLAG_V, v).
		with(isa.FLAG_S, n != v)
}

func (cpu *Cpu) updateFlags(fl flags) {
	sreg := cpu.DMEM[isa.SREG]
	cpu.write(isa.SREG, (sreg&^fl.mask)|fl.value)
}

func bit(value int, n int) bool {
	return (value>>n)&1 == 1
}

// addFlags are the flags of r = rd + rr (+ carry).
func addFlags(rd, rr, r byte) (fl flags) {
	d3, r3, R3 := bit(int(rd), 3), bit(int(rr), 3), bit(int(r), 3)
	d7, r7, R7 := bit(int(rd), 7), bit(int(rr), 7), bit(int(r), 7)

	h := (d3 && r3) || (r3 && !R3) || (!R3 && d3)
	v := (d7 && r7 && !R7) || (!d7 && !r7 && R7)
	c := (d7 && r7) || (r7 && !R7) || (!R7 && d7)

	fl = fl.with(isa.FLAG_H, h).with(isa.FLAG_C, c).zns(r, v)
	return
}

// subFlags are the flags of r = rd - rr (- carry).
func subFlags(rd, rr, r byte) (fl flags) {
	d3, r3, R3 := bit(int(rd), 3), bit(int(rr), 3), bit(int(r), 3)
	d7, r7, R7 := bit(int(rd), 7), bit(int(rr), 7), bit(int(r), 7)

	h := (!d3 && r3) || (r3 && R3) || (R3 && !d3)
	v := (d7 && !r7 && !R7) || (!d7 && r7 && R7)
	c := (!d7 && r7) || (r7 && R7) || (R7 && !d7)

	fl = fl.with(isa.FLAG_H, h).with(isa.FLAG_C, c).zns(r, v)
	return
}

// logicFlags are the flags of a bitwise operation.
func logicFlags(r byte) flags {
	return flags{}.zns(r, false)
}

// shiftFlags are the flags of a right or left shift with carry out c.
func shiftFlags(r byte, c bool) flags {
	n := bit(int(r), 7)
	return flags{}.with(isa.FLAG_C, c).zns(r, n != c)
}

// wordFlags are the flags of ADIW/SBIW, from the high byte of the operand
// and the 16-bit result.
func wordFlags(sub bool, rdh byte, r int) flags {
	h7, r15 := bit(int(rdh), 7), bit(r, 15)

	var v, c bool
	if sub {
		v = h7 && !r15
		c = r15 && !h7
	} else {
		v = !h7 && r15
		c = !r15 && h7
	}

	return flags{}.
		with(isa.FLAG_C, c).
		with(isa.FLAG_Z, r&0xffff == 0).
		with(isa.FLAG_N, r15).
		with(isa.FLAG_V, v).
		with(isa.FLAG_S, r15 != v)
}

// mulFlags are the flags of a 16-bit product.
func mulFlags(r int) flags {
	return flags{}.
		with(isa.FLAG_C, bit(r, 15)).
		with(isa.FLAG_Z, r&0xffff == 0)
}
