package script

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.starlark.net/starlark"
)

const countdown = `
source = """
.section .data
msg: .string "go\\n"
.section .text
.global main
main:
    ldi r16, hi8(msg)
    push r16
    ldi r16, lo8(msg)
    push r16
    call printf
    pop r16
    pop r16
    ldi r20, 3
loop:
    dec r20
    brne loop
    ret
.end
"""
`

func TestScriptMachine(t *testing.T) {
	assert := assert.New(t)

	out := &bytes.Buffer{}
	globals, err := Run("machine.star", countdown+`
m = assemble(source)
print(m.pc, m.sp, m.steps, m.finished)
m.step()
first = m.reg(16)
m.step(3)
sp = m.sp
steps = m.run()
finished = m.finished
output = m.output
zero = m.flag("z")
r20 = m.reg(20)
count = m.reg(24)
msg = m.mem(0x100)
back = m.back(4)
after_back = m.reg(20)
m.reset()
reset_steps = m.steps
`, out)
	if !assert.NoError(err) {
		return
	}

	assert.Equal("0 2303 0 False\n", out.String())

	expect := map[string]starlark.Value{
		"first":       starlark.MakeInt(1),
		"sp":          starlark.MakeInt(0x8fd),
		"steps":       starlark.MakeInt(15),
		"finished":    starlark.True,
		"output":      starlark.String("go\n"),
		"zero":        starlark.True,
		"r20":         starlark.MakeInt(0),
		"count":       starlark.MakeInt(4),
		"msg":         starlark.MakeInt('g'),
		"back":        starlark.MakeInt(11),
		"after_back":  starlark.MakeInt(1),
		"reset_steps": starlark.MakeInt(0),
	}

	for name, value := range expect {
		assert.Equal(value, globals[name], name)
	}
}

func TestScriptErrors(t *testing.T) {
	table := [](struct {
		name   string
		script string
		err    string
	}){
		{"assemble", `assemble(".section .text\nnop\n.end")`, ".global"},
		{"runtime", `assemble(".section .text\n.global main\nmain:\npop r16\n.end").run()`, "line 4"},
		{"register", countdown + `assemble(source).reg(32)`, "r32"},
		{"flag", countdown + `assemble(source).flag("q")`, "'q'"},
		{"steps", countdown + `assemble(source).step(-1)`, "-1"},
		{"memory", countdown + `assemble(source).mem(0x900)`, "0x0900"},
		{"attribute", countdown + `assemble(source).pcx`, "pcx"},
		{"hash", countdown + `{assemble(source): 1}`, "unhashable"},
		{"file", `load_file("/nonexistent/file.s")`, "load_file"},
	}

	for _, entry := range table {
		t.Run(entry.name, func(t *testing.T) {
			assert := assert.New(t)
			_, err := Run(entry.name+".star", entry.script, nil)
			assert.ErrorContains(err, entry.err)
		})
	}
}

func TestScriptStepLimit(t *testing.T) {
	assert := assert.New(t)

	sc := &Script{StepLimit: 10}
	_, err := sc.Exec("limit.star", `assemble(".section .text\n.global main\nmain:\nrjmp main\n.end").run()`)
	assert.ErrorContains(err, "line 4")

	globals, err := sc.Exec("limit.star", `
m = assemble(".section .text\n.global main\nmain:\nrjmp main\n.end")
done = m.step(10)
`)
	if assert.NoError(err) {
		assert.Equal(starlark.False, globals["done"])
	}
}

func TestScriptLoadFile(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "prog.s")
	err := os.WriteFile(path, []byte(strings.Join([]string{
		".section .text",
		".global main",
		"main:",
		"    ldi r16, 42",
		"    ret",
		".end",
	}, "\n")), 0o644)
	assert.NoError(err)

	out := &bytes.Buffer{}
	_, err = Run("load.star", `
m = assemble(load_file(path))
m.run()
print(m.reg(16))
`, out)
	// path is not predeclared
	assert.ErrorContains(err, "path")

	out.Reset()
	_, err = Run("load.star", "path = "+starlark.String(path).String()+`
m = assemble(load_file(path))
m.run()
print(m.reg(16), m)
`, out)
	assert.NoError(err)
	assert.Equal("42 <machine pc=0x0001 steps=2>\n", out.String())
}
