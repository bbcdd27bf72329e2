package debugger

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iiTzHyper/avr/cpu"
	"github.com/iiTzHyper/avr/emulator"
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

func newDebugger(t *testing.T) (dbg *Debugger, out *bytes.Buffer) {
	emu := emulator.NewEmulator()
	err := emu.Assemble(strings.Join(hello, "\n"))
	if err != nil {
		t.Fatalf("%v", err)
	}

	out = &bytes.Buffer{}
	dbg = NewDebugger(emu, out)
	return
}

func TestDebuggerSession(t *testing.T) {
	dbg, out := newDebugger(t)

	table := [](struct {
		line   string
		expect []string
	}){
		{"where", []string{"0000 line 6: ldi r16, hi8(msg)"}},
		{"step", []string{"0001 line 7: push r16"}},
		{"next 3", []string{"0004 line 10: call printf"}},
		{"regs", []string{"r16", "r24", "08fd", "0004"}},
		{"pmem 4 3", []string{"CALL printf", "95ff", "...", "POP R16", "10"}},
		{"s", []string{"0006 line 11: pop r16"}},
		{"output", []string{"hello\n"}},
		{"mem msg 7", []string{"0100", "68", "hello."}},
		{"back 2", []string{"0003 line 9: push r16"}},
		{"output", nil},
		{"until 15", []string{"0009 line 15: dec r20"}},
		{"run", []string{"finished after 15 steps"}},
		{"sreg", []string{"Z", "1"}},
		{"reset", []string{"0000 line 6"}},
		{"help", []string{"until <line>", "leave the debugger"}},
		{"", nil},
	}

	for _, entry := range table {
		out.Reset()
		quit, err := dbg.Exec(entry.line)
		if !assert.NoError(t, err, entry.line) {
			continue
		}
		assert.False(t, quit, entry.line)
		if entry.expect == nil {
			assert.Equal(t, "", out.String(), entry.line)
		}
		for _, expect := range entry.expect {
			assert.Contains(t, out.String(), expect, entry.line)
		}
	}

	quit, err := dbg.Exec("quit")
	assert.NoError(t, err)
	assert.True(t, quit)
}

func TestDebuggerErrors(t *testing.T) {
	table := [](struct {
		line string
		err  error
	}){
		{"bogus", ErrUnknownCommand("bogus")},
		{"mem", ErrUsage{Name: "mem", Usage: "<addr> [len]"}},
		{"step 1 2", ErrUsage{Name: "step", Usage: "[n]"}},
		{"mem nosuch", ErrNumber("nosuch")},
		{"mem 0x900", cpu.ErrAddress(0x900)},
		{"pmem -1", cpu.ErrProgramAddress(-1)},
		{"until", ErrUsage{Name: "until", Usage: "<line>"}},
	}

	for _, entry := range table {
		t.Run(entry.line, func(t *testing.T) {
			assert := assert.New(t)
			dbg, _ := newDebugger(t)
			_, err := dbg.Exec(entry.line)
			assert.Equal(entry.err, err)
		})
	}

	dbg, _ := newDebugger(t)
	_, err := dbg.Exec(`step "1`)
	assert.Error(t, err)
}

func TestDebuggerHighlight(t *testing.T) {
	assert := assert.New(t)

	dbg, out := newDebugger(t)
	dbg.Color = true

	_, err := dbg.Exec("step")
	assert.NoError(err)

	out.Reset()
	_, err = dbg.Exec("regs")
	assert.NoError(err)
	assert.Contains(out.String(), colorChanged+"01")

	out.Reset()
	_, err = dbg.Exec("step")
	assert.NoError(err)
	out.Reset()
	_, err = dbg.Exec("regs")
	assert.NoError(err)
	assert.NotContains(out.String(), colorChanged+"01")
	assert.Contains(out.String(), colorChanged+"08fe")
}

func TestLookup(t *testing.T) {
	assert := assert.New(t)

	for _, cmd := range Commands {
		found, ok := Lookup(cmd.Name)
		assert.True(ok, cmd.Name)
		assert.Equal(cmd, found)
		for _, alias := range cmd.Aliases {
			found, ok = Lookup(alias)
			assert.True(ok, alias)
			assert.Equal(cmd, found)
		}
	}

	_, ok := Lookup("STEP")
	assert.True(ok)

	_, ok = Lookup("nope")
	assert.False(ok)
}

func lines(text ...string) func() (string, error) {
	return func() (line string, err error) {
		if len(text) == 0 {
			err = io.EOF
			return
		}
		line, text = text[0], text[1:]
		return
	}
}

func TestDebuggerLoop(t *testing.T) {
	assert := assert.New(t)

	dbg, out := newDebugger(t)
	err := dbg.Loop(lines("step", "bogus", "quit", "step"))
	assert.NoError(err)
	assert.Equal(1, dbg.Steps)

	text := out.String()
	assert.True(strings.HasPrefix(text, "0000 line 6: ldi r16, hi8(msg)\n"), text)
	assert.Contains(text, "0001 line 7: push r16")
	assert.Contains(text, ErrUnknownCommand("bogus").Error())

	dbg, _ = newDebugger(t)
	err = dbg.Loop(lines("step", "step"))
	assert.NoError(err)
	assert.Equal(2, dbg.Steps)

	broken := errors.New("terminal gone")
	dbg, _ = newDebugger(t)
	err = dbg.Loop(func() (string, error) { return "", broken })
	assert.Equal(broken, err)
}
