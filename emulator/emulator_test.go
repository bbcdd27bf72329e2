package emulator

import (
	"bytes"
	"errors"
	"maps"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iiTzHyper/avr/image"
	"github.com/iiTzHyper/avr/isa"
)

var hello = []string{
	".section .data",
	"msg: .string \"hello\\n\"",
	".section .text",
	".global main",
	"main:",
	"    ldi r16, hi8(msg)",
	"    push r16",
	"    ldi r16, lo8(msg)",
	"    push r16",
	"    call printf",
	"    pop r16",
	"    pop r16",
	"    ldi r20, 3",
	"loop:",
	"    dec r20",
	"    brne loop",
	"    ret",
	".end",
}

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	assert.False(emu.Verbose)
	assert.NotNil(emu.Cpu)
	assert.Equal(isa.RAMEND, emu.SP())

	done, err := emu.Tick()
	assert.NoError(err)
	assert.False(done)
}

func doRunSingle(emu *Emulator, program []string, t *testing.T) (output []byte) {
	assert := assert.New(t)

	err := emu.Assemble(strings.Join(program, "\n"))
	if err != nil {
		t.Fatalf("%v", err)
	}

	out := &bytes.Buffer{}
	emu.Console.Output = out

	for {
		here := program[emu.LineNo()-1]
		done, err := emu.Tick()
		if err != nil {
			t.Log(emu.Cpu.String())
			t.Fatalf("%v: %v", here, err)
		}
		if done {
			break
		}
	}

	assert.Equal(out.Bytes(), emu.Console.Bytes())

	output = out.Bytes()
	return
}

func TestEmulatorRun(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	output := doRunSingle(emu, hello, t)

	assert.Equal("hello\n", string(output))
	assert.True(emu.Finished)
	assert.Equal(byte(0), emu.Register(20))
	assert.Equal(byte(7), emu.Register(24))
	assert.Equal(15, emu.Steps)

	symbols := maps.Collect(emu.Defines())
	assert.Equal(0x100, symbols["msg"])
	assert.Equal(0, symbols["main"])
	assert.Equal(9, symbols["loop"])
	assert.Equal(30, symbols["ZL"])
}

func TestEmulatorRuntimeError(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	err := emu.Assemble(strings.Join([]string{
		".section .text",
		".global main",
		"main:",
		"    nop",
		"    pop r16",
		"    ret",
		".end",
	}, "\n"))
	assert.NoError(err)

	err = emu.Run()
	assert.ErrorIs(err, isa.ErrRuntime)

	var runtime *ErrRuntime
	if assert.True(errors.As(err, &runtime)) {
		assert.Equal(5, runtime.LineNo)
		assert.Equal(1, runtime.PC)
	}
	assert.ErrorContains(err, "line 5 pc 0x0001")
	assert.True(emu.Finished)

	done, err := emu.Tick()
	assert.NoError(err)
	assert.True(done)
}

func TestEmulatorRunaway(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	err := emu.Assemble(".section .text\n.global main\nmain:\n  rjmp main\n.end")
	assert.NoError(err)

	emu.StepLimit = 100
	err = emu.Run()
	assert.ErrorIs(err, isa.ErrRunaway)

	var runtime *ErrRuntime
	if assert.True(errors.As(err, &runtime)) {
		assert.Equal(4, runtime.LineNo)
	}
}

func TestEmulatorChanges(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	err := emu.Assemble(strings.Join(hello, "\n"))
	assert.NoError(err)

	_, err = emu.Tick()
	assert.NoError(err)
	assert.True(emu.Changed(16))
	assert.Equal(Change{Step: 1, Prev: 0, Value: 1}, emu.Changes[16])

	_, err = emu.Tick()
	assert.NoError(err)
	assert.False(emu.Changed(16))
	assert.True(emu.Changed(isa.RAMEND))
	assert.True(emu.Changed(isa.SPL))
	assert.Equal(Change{Step: 2, Prev: 0xff, Value: 0xfe}, emu.Changes[isa.SPL])

	emu.Reset()
	assert.Equal(0, len(emu.Changes))
	assert.False(emu.Changed(16))
}

func TestEmulatorBack(t *testing.T) {
	assert := assert.New(t)

	source := strings.Join(hello, "\n")

	emu := NewEmulator()
	err := emu.Assemble(source)
	assert.NoError(err)

	out := &bytes.Buffer{}
	emu.Console.Output = out

	err = emu.Run()
	assert.NoError(err)
	steps := emu.Steps
	runs := 1

	for back := 1; back < steps; back += 3 {
		runs++
		err = emu.Assemble(source)
		assert.NoError(err)
		err = emu.Run()
		assert.NoError(err)

		err = emu.Back(back)
		assert.NoError(err)
		assert.Equal(steps-back, emu.Steps)

		replay := NewEmulator()
		err = replay.Assemble(source)
		assert.NoError(err)
		for replay.Steps < steps-back {
			_, err = replay.Tick()
			assert.NoError(err)
		}

		assert.Equal(replay.PC, emu.PC, back)
		assert.Equal(replay.DMEM, emu.DMEM, back)
		assert.Equal(replay.Changes, emu.Changes, back)
		assert.Equal(replay.Console.String(), emu.Console.String(), back)
		assert.False(emu.Console.Muted)
	}

	assert.Equal(strings.Repeat("hello\n", runs), out.String())

	err = emu.Back(steps * 2)
	assert.NoError(err)
	assert.Equal(0, emu.Steps)
	assert.Equal(emu.Program.Entry, emu.PC)
}

func TestEmulatorTrace(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	err := emu.Assemble(strings.Join(hello, "\n"))
	assert.NoError(err)

	buf := &bytes.Buffer{}
	emu.Trace, err = image.NewTraceWriter(buf)
	assert.NoError(err)

	err = emu.Run()
	assert.NoError(err)

	err = emu.Back(2)
	assert.NoError(err)
	assert.NoError(emu.Trace.Close())

	tr, err := image.NewTraceReader(bytes.NewReader(buf.Bytes()))
	assert.NoError(err)
	if err != nil {
		return
	}

	var frames []*image.Frame
	for {
		frame, err := tr.Next()
		if err != nil {
			break
		}
		frames = append(frames, frame)
	}

	if !assert.Equal(15, len(frames)) {
		return
	}
	assert.Equal(uint32(1), frames[0].Step)
	assert.Equal(uint16(0), frames[0].Pc)
	assert.Equal(uint16(isa.RAMEND), frames[0].Sp)
	assert.Equal(uint16(4), frames[4].Pc)
	assert.Equal(uint16(0x95ff), frames[4].Word)
	assert.Equal(uint16(6), frames[5].Pc)
	assert.Equal(uint16(0x9508), frames[14].Word)
}
