package cpu

import (
	"log"

	"github.com/iiTzHyper/avr/isa"
)

// Registers left behind by avr-libc's printf.
var printfClobber = [](struct {
	reg   int
	value byte
}){
	{26, 0xff},
	{27, 0x08},
	{30, 0x02},
	{31, 0x01},
}

// intrinsic services a CALL to a routine provided by the interpreter.
func (cpu *Cpu) intrinsic(name string) (err error) {
	switch name {
	case isa.INTRINSIC_PRINTF:
		err = cpu.printf()
	default:
		err = ErrUnknownInstruction("CALL " + name)
	}
	return
}

// printf writes the zero terminated string whose address the caller pushed
// on the stack, and returns the number of bytes consumed, terminator
// included, in R25:R24.
func (cpu *Cpu) printf() (err error) {
	sp := cpu.SP()
	if sp >= isa.RAMEND-1 {
		err = ErrStackPointer{Mnemonic: "CALL printf", SP: sp}
		return
	}

	addr := int(cpu.DMEM[sp+1]) | int(cpu.DMEM[sp+2])<<8

	for _, clobber := range printfClobber {
		cpu.write(clobber.reg, clobber.value)
	}

	var text []byte
	for {
		err = cpu.dataAddr(addr)
		if err != nil {
			return
		}
		c := cpu.DMEM[addr]
		addr++
		if c == 0 {
			break
		}
		text = append(text, c)
	}

	count := len(text) + 1
	cpu.write(24, byte(count))
	cpu.write(25, byte(count>>8))

	if cpu.Verbose {
		log.Printf("cpu: printf %q", text)
	}

	if cpu.Output != nil {
		_, err = cpu.Output.Write(text)
	}

	return
}
