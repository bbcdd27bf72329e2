package asm

import (
	"errors"
	"maps"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iiTzHyper/avr/isa"
)

func assemble(t *testing.T, program []string) (prog *isa.Program) {
	prog, err := Assemble(strings.Join(program, "\n"))
	if err != nil {
		t.Fatalf("%v", err)
	}
	return
}

func TestAssemblerMinimal(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t, []string{
		".section .text",
		".global main",
		"main: ret",
		".end",
	})

	assert.Equal(0, prog.Entry)
	assert.Equal(1, prog.Size)
	assert.Equal(0, prog.DataSize)
	assert.Equal(isa.FLASH_SIZE, len(prog.PMEM))
	assert.Equal(isa.RAM_SIZE, len(prog.DMEM))
	assert.Equal("RET", prog.PMEM[0].Mnemonic)
	assert.Equal("1001010100001000", prog.PMEM[0].Opcode)
	assert.Equal(3, prog.PMEM[0].LineNo)
	assert.Equal(isa.Nop, prog.PMEM[1])
}

func TestAssemblerRelative(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t, []string{
		".section .text",
		".global main",
		"helper: ret",
		"main:",
		"    ldi r16, 3",
		"loop:",
		"    dec r16",
		"    brne loop",
		"    rcall helper",
		"    rjmp target",
		"    nop",
		"    nop",
		"target:",
		"    ret",
		".end",
	})

	assert.Equal(1, prog.Entry)

	// brne at 3, loop at 2
	assert.Equal(-2, prog.PMEM[3].Operands[0].Value)
	assert.Equal("1111011111110001", prog.PMEM[3].Opcode)

	// rcall at 4, helper at 0
	assert.Equal(-5, prog.PMEM[4].Operands[0].Value)

	// rjmp at 5, target at 8
	assert.Equal(2, prog.PMEM[5].Operands[0].Value)
	assert.Equal("1100000000000010", prog.PMEM[5].Opcode)
	assert.Equal(9, prog.Size)
}

func TestAssemblerWide(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t, []string{
		".section .data",
		"counter: .byte 0",
		"msg: .string \"hi\\n\"",
		".section .text",
		".global main",
		"main:",
		"    lds r16, counter",
		"    inc r16",
		"    sts counter, r16",
		"    ldi r26, lo8(msg)",
		"    call printf",
		"    ret",
		".end",
	})

	assert.Equal(9, prog.Size)
	assert.Equal(5, prog.DataSize)
	assert.Equal([]byte{0, 'h', 'i', '\n', 0}, prog.DMEM[0x100:0x105])

	assert.Equal("10010001000000000000000100000000", prog.PMEM[0].Opcode)
	assert.True(prog.PMEM[1].Tail)
	assert.Equal(7, prog.PMEM[1].LineNo)
	assert.Equal("INC", prog.PMEM[2].Mnemonic)
	assert.Equal("10010011000000000000000100000000", prog.PMEM[3].Opcode)
	assert.True(prog.PMEM[4].Tail)
	assert.Equal(1, prog.PMEM[5].Operands[1].Value)
	assert.Equal("10010101111111111111111111111111", prog.PMEM[6].Opcode)
	assert.Equal(isa.TOKEN_REF, prog.PMEM[6].Operands[0].Kind)
	assert.True(prog.PMEM[7].Tail)
	assert.Equal("RET", prog.PMEM[8].Mnemonic)

	for addr, inst := range prog.PMEM[:prog.Size] {
		if inst.Tail {
			assert.Equal(32, len(prog.PMEM[addr-1].Opcode))
			continue
		}
		if inst.Wide() {
			assert.True(prog.PMEM[addr+1].Tail)
		} else {
			assert.Equal(16, len(inst.Opcode))
		}
	}
}

func TestAssemblerData(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader(strings.Join([]string{
		".section .data",
		"b: .byte 1, -1, 0x7f",
		"w: .word 0x1234, -2",
		"s: .ascii \"ab\"",
		"z: .asciz \"c\"",
		"sp: .space 2",
		"f: .space 3, 0xAA",
		".equ TEN, 5*2",
		".set TEN, TEN+1",
		".section .text",
		".global main",
		"main:",
		"    ldi r16, TEN",
		"    ldi ZL, lo8(w)",
		"    ldi ZH, hi8(w)",
		"    ret",
		".end",
	}, "\n")))
	assert.NoError(err)
	if err != nil {
		return
	}

	assert.Equal(16, prog.DataSize)
	assert.Equal([]byte{
		0x01, 0xff, 0x7f,
		0x34, 0x12, 0xfe, 0xff,
		'a', 'b',
		'c', 0,
		0, 0,
		0xaa, 0xaa, 0xaa,
	}, prog.DMEM[0x100:0x110])

	assert.Equal(0x100, asm.Label["b"])
	assert.Equal(0x103, asm.Label["w"])
	assert.Equal(0x10d, asm.Label["f"])
	assert.Equal(11, asm.Equate["TEN"])

	assert.Equal("1110000000001011", prog.PMEM[0].Opcode)
	assert.Equal("1110000011100011", prog.PMEM[1].Opcode)
	assert.Equal(isa.TOKEN_REG, prog.PMEM[1].Operands[0].Kind)
	assert.Equal(30, prog.PMEM[1].Operands[0].Value)
	assert.Equal(1, prog.PMEM[2].Operands[1].Value)

	symbols := maps.Collect(asm.Symbols())
	assert.Equal(0, symbols["main"])
	assert.Equal(11, symbols["TEN"])
	assert.Equal(26, symbols["XL"])
}

func TestAssemblerPredefine(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("count", 20)

	prog, err := asm.Parse(strings.NewReader(strings.Join([]string{
		".section .text",
		".global main",
		".global done",
		"main: a: inc count",
		"done: lpm",
		"    lpm r2, Z+",
		".end",
	}, "\n")))
	assert.NoError(err)
	if err != nil {
		return
	}

	assert.Equal([]string{"main", "done"}, asm.Global)
	assert.Equal(0, asm.Label["a"])
	assert.Equal(20, prog.PMEM[0].Operands[0].Value)
	assert.Equal("1001010111001000", prog.PMEM[1].Opcode)
	assert.Equal("1001000000100101", prog.PMEM[2].Opcode)
}

func TestAssemblerErrors(t *testing.T) {
	assert := assert.New(t)

	text := func(lines ...string) string {
		return strings.Join(append(append([]string{".section .text", ".global main", "main:"}, lines...), ".end"), "\n")
	}

	table := [](struct {
		source string
		kind   error
		lineno int
	}){
		{".section .text\n.global main\nmain: ret", isa.ErrDirective, 3},
		{"nop\n.end", isa.ErrDirective, 1},
		{".section .bss\n.end", isa.ErrLex, 1},
		{".section .data .text\n.end", isa.ErrDirective, 1},
		{".section .text\nmain: ret\n.end", isa.ErrDirective, 2},
		{".section .text\n.global start\nmain: ret\n.end", isa.ErrReference, 2},
		{text("nop", ".global other", "other: ret"), isa.ErrDirective, 5},
		{text("nop", "x: nop", "x: nop"), isa.ErrReference, 6},
		{text("ret", "add: nop"), isa.ErrReference, 5},
		{text("ret", "sub: nop"), isa.ErrReference, 5},
		{text("rjmp nowhere"), isa.ErrReference, 4},
		{text("foo r1"), isa.ErrOperand, 4},
		{text("ldi r32, 1"), isa.ErrOperand, 4},
		{text("ldi r1, 1"), isa.ErrOperand, 4},
		{text("ldi r16, 256"), isa.ErrOperand, 4},
		{text("add r1 r2"), isa.ErrOperand, 4},
		{text("nop r1"), isa.ErrOperand, 4},
		{text("add r1"), isa.ErrOperand, 4},
		{text("ld r1, 5"), isa.ErrOperand, 4},
		{text("lpm r1, X"), isa.ErrOperand, 4},
		{text("xch Y, r1"), isa.ErrOperand, 4},
		{text("movw r1, r2"), isa.ErrOperand, 4},
		{text("call puts"), isa.ErrReference, 4},
		{text("ldi r16, 1/0"), isa.ErrOperand, 4},
		{text("ldi r16, lo8 (1)"), isa.ErrReference, 4},
		{text("ldi r16, hi8(0x100000000)"), isa.ErrOperand, 4},
		{text("nop", ".section .data"), isa.ErrDirective, 5},
		{text(".byte 1"), isa.ErrDirective, 4},
		{".section .data\n.byte 300\n.section .text\n.global main\nmain: ret\n.end", isa.ErrDirective, 2},
		{".section .data\n.word 0x10000\n.section .text\n.global main\nmain: ret\n.end", isa.ErrDirective, 2},
		{".section .data\n.string \"\\q\"\n.section .text\n.global main\nmain: ret\n.end", isa.ErrDirective, 2},
		{".section .data\nnop\n.section .text\n.global main\nmain: ret\n.end", isa.ErrDirective, 2},
		{".section .data\n.byte undefined\n.section .text\n.global main\nmain: ret\n.end", isa.ErrReference, 2},
		{".section .data\n.space 0x900\n.section .text\n.global main\nmain: ret\n.end", isa.ErrEncodingOverflow, 2},
		{".section .data\n.equ N, 1\n.section .text\n.global main\nmain: ret\nN: ret\n.end", isa.ErrReference, 2},
		{".section .data\n.equ XL, 1\n.section .text\n.global main\nmain: ret\n.end", isa.ErrReference, 2},
	}

	for _, entry := range table {
		_, err := Assemble(entry.source)
		if !assert.Error(err, entry.source) {
			continue
		}
		assert.True(errors.Is(err, entry.kind), "%v: %v", entry.source, err)

		var syntax *ErrSyntax
		if assert.True(errors.As(err, &syntax), entry.source) {
			assert.Equal(entry.lineno, syntax.LineNo, entry.source)
		}
	}
}

func TestAssemblerMnemonicLabel(t *testing.T) {
	assert := assert.New(t)

	for _, name := range []string{"sub", "SUB", "Ret", "ldi"} {
		_, err := Assemble(strings.Join([]string{
			".section .text",
			".global main",
			"main:",
			"    ret",
			name + ":",
			"    ret",
			".end",
		}, "\n"))
		var collision ErrNameCollision
		if assert.True(errors.As(err, &collision), name) {
			assert.Equal(ErrNameCollision(name), collision)
		}
	}
}

func TestAssemblerIntrinsicLabel(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t, []string{
		".section .text",
		".global main",
		"main:",
		"    rcall printf",
		"    call printf",
		"    jmp printf",
		"    ret",
		"printf:",
		"    ret",
		".end",
	})

	assert.Equal(isa.TOKEN_INT, prog.PMEM[0].Operands[0].Kind)
	assert.Equal(5, prog.PMEM[0].Operands[0].Value)

	assert.Equal(isa.TOKEN_REF, prog.PMEM[1].Operands[0].Kind)
	assert.Equal("printf", prog.PMEM[1].Operands[0].Text)
	assert.Equal("10010101111111111111111111111111", prog.PMEM[1].Opcode)

	assert.Equal(isa.TOKEN_INT, prog.PMEM[3].Operands[0].Kind)
	assert.Equal(6, prog.PMEM[3].Operands[0].Value)
}

func TestAssemblerEndMissing(t *testing.T) {
	assert := assert.New(t)

	_, err := Assemble(".section .text\n.global main\nmain: ret\n")
	assert.ErrorIs(err, ErrEndMissing)
	assert.ErrorIs(err, isa.ErrDirective)
	assert.ErrorContains(err, "line 3")

	_, err = Assemble(".section .data\n.byte 1\n.end")
	assert.ErrorIs(err, ErrTextMissing)
}

func TestAssemblerOverflow(t *testing.T) {
	assert := assert.New(t)

	source := ".section .text\n.global main\nmain:\n" + strings.Repeat("nop\n", isa.FLASHEND+1) + ".end\n"
	_, err := Assemble(source)
	assert.ErrorIs(err, ErrFlashOverflow)
	assert.ErrorIs(err, isa.ErrEncodingOverflow)
}
