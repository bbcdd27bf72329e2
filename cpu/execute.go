package cpu

import (
	"github.com/iiTzHyper/avr/isa"
)

// condition is an SREG bit and its state.
type condition struct {
	bit int
	set bool
}

// branches are the conditional branches on a single flag.
var branches = map[string]condition{
	"BRCC": {isa.FLAG_C, false},
	"BRCS": {isa.FLAG_C, true},
	"BRSH": {isa.FLAG_C, false},
	"BRLO": {isa.FLAG_C, true},
	"BRNE": {isa.FLAG_Z, false},
	"BREQ": {isa.FLAG_Z, true},
	"BRPL": {isa.FLAG_N, false},
	"BRMI": {isa.FLAG_N, true},
	"BRVC": {isa.FLAG_V, false},
	"BRVS": {isa.FLAG_V, true},
	"BRGE": {isa.FLAG_S, false},
	"BRLT": {isa.FLAG_S, true},
	"BRHC": {isa.FLAG_H, false},
	"BRHS": {isa.FLAG_H, true},
	"BRTC": {isa.FLAG_T, false},
	"BRTS": {isa.FLAG_T, true},
	"BRID": {isa.FLAG_I, false},
	"BRIE": {isa.FLAG_I, true},
}

// sregOps are the single flag set and clear mnemonics.
var sregOps = map[string]condition{
	"CLC": {isa.FLAG_C, false}, "SEC": {isa.FLAG_C, true},
	"CLZ": {isa.FLAG_Z, false}, "SEZ": {isa.FLAG_Z, true},
	"CLN": {isa.FLAG_N, false}, "SEN": {isa.FLAG_N, true},
	"CLV": {isa.FLAG_V, false}, "SEV": {isa.FLAG_V, true},
	"CLS": {isa.FLAG_S, false}, "SES": {isa.FLAG_S, true},
	"CLH": {isa.FLAG_H, false}, "SEH": {isa.FLAG_H, true},
	"CLT": {isa.FLAG_T, false}, "SET": {isa.FLAG_T, true},
	"CLI": {isa.FLAG_I, false}, "SEI": {isa.FLAG_I, true},
}

// pointers maps a pointer register letter to its low register.
var pointers = map[byte]int{
	'X': isa.REG_X,
	'Y': isa.REG_Y,
	'Z': isa.REG_Z,
}

// skip returns the address after the instruction following pc, stepping
// over both words of a 32-bit instruction.
func (cpu *Cpu) skip(pc int) int {
	next := pc + 2
	if next < len(cpu.Program.PMEM) && cpu.Program.PMEM[next].Tail {
		next++
	}
	return next
}

// dataAddr checks a data memory address.
func (cpu *Cpu) dataAddr(addr int) (err error) {
	if addr < 0 || addr > isa.RAMEND {
		err = ErrAddress(addr)
	}
	return
}

// indirect resolves a pointer operand to its data address, applying any
// pre-decrement or post-increment to the pointer register.
func (cpu *Cpu) indirect(tok isa.Token) (addr int, err error) {
	reg, ok := pointers[tok.Pointer()]
	if !ok {
		err = ErrUnknownInstruction(tok.String())
		return
	}

	ptr := cpu.word(reg)

	switch tok.Kind {
	case isa.TOKEN_WORD:
		addr = ptr
	case isa.TOKEN_WORDPLUS:
		addr = ptr
		cpu.setWord(reg, ptr+1)
	case isa.TOKEN_MINUSWORD:
		ptr = (ptr - 1) & 0xffff
		addr = ptr
		cpu.setWord(reg, ptr)
	case isa.TOKEN_WORDPLUSQ:
		addr = ptr + tok.Value
	default:
		err = ErrUnknownInstruction(tok.String())
		return
	}

	err = cpu.dataAddr(addr)
	return
}

// Execute executes a single instruction at the program counter.
func (cpu *Cpu) Execute(inst *isa.Instruction) (err error) {
	if inst.Tail {
		err = ErrTailExecuted
		return
	}

	ops := inst.Operands
	arg := func(n int) int {
		if n >= len(ops) {
			return 0
		}
		return ops[n].Value
	}

	rd := arg(0) & 0x1f
	d := cpu.DMEM[rd]
	r := cpu.DMEM[arg(1)&0x1f]
	k := arg(1)

	pc := cpu.PC
	next := pc + 1
	if inst.Wide() {
		next++
	}

	var fl flags

	switch inst.Mnemonic {
	case "NOP":

	// Register-register arithmetic
	case "ADD", "ADC":
		var c byte
		if inst.Mnemonic == "ADC" && cpu.Flag(isa.FLAG_C) {
			c = 1
		}
		res := d + r + c
		cpu.write(rd, res)
		fl = addFlags(d, r, res)
	case "SUB", "SBC", "CP", "CPC", "SUBI", "SBCI", "CPI":
		if inst.Mnemonic == "SUBI" || inst.Mnemonic == "SBCI" || inst.Mnemonic == "CPI" {
			r = byte(k)
		}
		var c byte
		carry := inst.Mnemonic == "SBC" || inst.Mnemonic == "CPC" || inst.Mnemonic == "SBCI"
		if carry && cpu.Flag(isa.FLAG_C) {
			c = 1
		}
		res := d - r - c
		if inst.Mnemonic != "CP" && inst.Mnemonic != "CPC" && inst.Mnemonic != "CPI" {
			cpu.write(rd, res)
		}
		fl = subFlags(d, r, res)
		if carry {
			fl = fl.with(isa.FLAG_Z, res == 0 && cpu.Flag(isa.FLAG_Z))
		}
	case "AND", "ANDI", "OR", "ORI", "SBR", "EOR", "CBR":
		var res byte
		switch inst.Mnemonic {
		case "AND":
			res = d & r
		case "ANDI":
			res = d & byte(k)
		case "OR":
			res = d | r
		case "ORI", "SBR":
			res = d | byte(k)
		case "EOR":
			res = d ^ r
		case "CBR":
			res = d &^ byte(k)
		}
		cpu.write(rd, res)
		fl = logicFlags(res)
	case "TST":
		fl = logicFlags(d)
	case "CLR":
		cpu.write(rd, 0)
		fl = logicFlags(0)
	case "MOV":
		cpu.write(rd, r)
	case "MOVW":
		rr := arg(1) & 0x1f
		cpu.write(rd, cpu.DMEM[rr])
		cpu.write(rd+1, cpu.DMEM[rr+1])
	case "LDI":
		cpu.write(rd, byte(k))
	case "SER":
		cpu.write(rd, 0xff)

	// Single register
	case "COM":
		res := 0xff - d
		cpu.write(rd, res)
		fl = logicFlags(res).with(isa.FLAG_C, true)
	case "NEG":
		res := 0 - d
		cpu.write(rd, res)
		fl = flags{}.
			with(isa.FLAG_H, bit(int(res), 3) || bit(int(d), 3)).
			with(isa.FLAG_C, res != 0).
			zns(res, res == 0x80)
	case "INC":
		res := d + 1
		cpu.write(rd, res)
		fl = flags{}.zns(res, res == 0x80)
	case "DEC":
		res := d - 1
		cpu.write(rd, res)
		fl = flags{}.zns(res, res == 0x7f)
	case "SWAP":
		cpu.write(rd, d<<4|d>>4)
	case "ASR":
		res := d>>1 | d&0x80
		cpu.write(rd, res)
		fl = shiftFlags(res, bit(int(d), 0))
	case "LSR":
		res := d >> 1
		cpu.write(rd, res)
		fl = shiftFlags(res, bit(int(d), 0))
	case "ROR":
		res := d >> 1
		if cpu.Flag(isa.FLAG_C) {
			res |= 0x80
		}
		cpu.write(rd, res)
		fl = shiftFlags(res, bit(int(d), 0))
	case "LSL", "ROL":
		res := d << 1
		if inst.Mnemonic == "ROL" && cpu.Flag(isa.FLAG_C) {
			res |= 1
		}
		cpu.write(rd, res)
		fl = shiftFlags(res, bit(int(d), 7)).with(isa.FLAG_H, bit(int(d), 3))

	// Word and multiply
	case "ADIW", "SBIW":
		word := cpu.word(rd)
		sub := inst.Mnemonic == "SBIW"
		res := word + k
		if sub {
			res = word - k
		}
		res &= 0xffff
		cpu.setWord(rd, res)
		fl = wordFlags(sub, byte(word>>8), res)
	case "MUL", "MULS", "MULSU":
		var res int
		switch inst.Mnemonic {
		case "MUL":
			res = int(d) * int(r)
		case "MULS":
			res = int(int8(d)) * int(int8(r))
		case "MULSU":
			res = int(int8(d)) * int(r)
		}
		res &= 0xffff
		cpu.write(0, byte(res))
		cpu.write(1, byte(res>>8))
		fl = mulFlags(res)

	// Bits and flags
	case "BSET", "BCLR":
		fl = fl.with(arg(0)&7, inst.Mnemonic == "BSET")
	case "BST":
		fl = fl.with(isa.FLAG_T, bit(int(d), k&7))
	case "BLD":
		res := d &^ (1 << (k & 7))
		if cpu.Flag(isa.FLAG_T) {
			res |= 1 << (k & 7)
		}
		cpu.write(rd, res)
	case "SBI", "CBI":
		addr := arg(0) + isa.IO_OFFSET
		res := cpu.DMEM[addr]
		if inst.Mnemonic == "SBI" {
			res |= 1 << (k & 7)
		} else {
			res &^= 1 << (k & 7)
		}
		cpu.write(addr, res)
	case "IN":
		cpu.write(rd, cpu.DMEM[k+isa.IO_OFFSET])
	case "OUT":
		cpu.write(arg(0)+isa.IO_OFFSET, r)

	// Skips
	case "CPSE":
		if d == r {
			next = cpu.skip(pc)
		}
	case "SBRC":
		if !bit(int(d), k&7) {
			next = cpu.skip(pc)
		}
	case "SBRS":
		if bit(int(d), k&7) {
			next = cpu.skip(pc)
		}

	// Jumps, calls and returns
	case "RJMP":
		next = pc + arg(0) + 1
	case "JMP":
		next = arg(0)
	case "IJMP":
		next = cpu.word(isa.REG_Z)
	case "RCALL", "CALL", "ICALL":
		if inst.Mnemonic == "CALL" && len(ops) > 0 && ops[0].Kind == isa.TOKEN_REF {
			err = cpu.intrinsic(ops[0].Text)
			if err != nil {
				return
			}
			break
		}
		err = cpu.PushReturn(inst.Mnemonic, next)
		if err != nil {
			return
		}
		switch inst.Mnemonic {
		case "RCALL":
			next = pc + arg(0) + 1
		case "CALL":
			next = arg(0)
		case "ICALL":
			next = cpu.word(isa.REG_Z)
		}
	case "RET":
		if cpu.Empty() {
			cpu.Finished = true
			return
		}
		next, err = cpu.PopReturn(inst.Mnemonic)
		if err != nil {
			return
		}
	case "BRBS", "BRBC":
		if cpu.Flag(arg(0)&7) == (inst.Mnemonic == "BRBS") {
			next = pc + k + 1
		}

	// Data memory
	case "LD", "LDD":
		var addr int
		addr, err = cpu.indirect(ops[1])
		if err != nil {
			return
		}
		cpu.write(rd, cpu.DMEM[addr])
	case "ST", "STD":
		var addr int
		addr, err = cpu.indirect(ops[0])
		if err != nil {
			return
		}
		cpu.write(addr, r)
	case "LDS":
		err = cpu.dataAddr(k)
		if err != nil {
			return
		}
		cpu.write(rd, cpu.DMEM[k])
	case "STS":
		addr := arg(0)
		err = cpu.dataAddr(addr)
		if err != nil {
			return
		}
		cpu.write(addr, r)
	case "PUSH":
		err = cpu.Push(inst.Mnemonic, d)
		if err != nil {
			return
		}
	case "POP":
		var value byte
		value, err = cpu.Pop(inst.Mnemonic)
		if err != nil {
			return
		}
		cpu.write(rd, value)
	case "XCH":
		z := cpu.word(isa.REG_Z)
		if z < isa.RAM_START || z > isa.RAMEND {
			err = ErrPointerZ(z)
			return
		}
		rr := arg(1) & 0x1f
		value := cpu.DMEM[z]
		cpu.write(z, cpu.DMEM[rr])
		cpu.write(rr, value)
	case "LPM":
		err = cpu.lpm(ops)
		if err != nil {
			return
		}

	default:
		if op, ok := branches[inst.Mnemonic]; ok {
			if cpu.Flag(op.bit) == op.set {
				next = pc + arg(0) + 1
			}
			break
		}
		if op, ok := sregOps[inst.Mnemonic]; ok {
			fl = fl.with(op.bit, op.set)
			break
		}
		err = ErrUnknownInstruction(inst.Mnemonic)
		return
	}

	if fl.mask != 0 {
		cpu.updateFlags(fl)
	}

	cpu.PC = next
	return
}

// lpm loads a program memory byte addressed by Z. An even byte address
// selects the high byte of the opcode word.
func (cpu *Cpu) lpm(ops []isa.Token) (err error) {
	z := cpu.word(isa.REG_Z)
	slot := z >> 1
	if slot >= len(cpu.Program.PMEM) {
		err = ErrProgramAddress(slot)
		return
	}

	word := cpu.Program.Word(slot)
	value := byte(word >> 8)
	if z&1 == 1 {
		value = byte(word)
	}

	if len(ops) == 0 {
		cpu.write(0, value)
		return
	}

	cpu.write(ops[0].Value&0x1f, value)
	if ops[1].Kind == isa.TOKEN_WORDPLUS {
		cpu.setWord(isa.REG_Z, z+1)
	}

	return
}
