// Package script runs Starlark programs that assemble, execute and
// inspect AVR programs, for automated checking of exercises.
//
// Predeclared names:
//
//	assemble(source)  assemble source text and return a machine
//	load_file(path)   return the contents of a file as a string
//
// A machine has the methods step(n=1), run(), back(n=1), reset(), reg(n),
// mem(addr) and flag(name), and the attributes pc, sp, sreg, steps,
// finished, line and output.
package script

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/pkg/errors"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/iiTzHyper/avr/emulator"
)

// Script holds the settings applied to every machine a script assembles.
type Script struct {
	Verbose   bool      // If set, machines log every executed instruction.
	StepLimit int       // Step limit of new machines; 0 keeps the default.
	Output    io.Writer // Destination of 'print'.
}

// Run executes the Starlark program src, printing to out.
func Run(filename string, src any, out io.Writer) (globals starlark.StringDict, err error) {
	sc := &Script{Output: out}
	return sc.Exec(filename, src)
}

// Exec executes the Starlark program src. src may be a string, a []byte,
// an io.Reader, or nil to read filename.
func (sc *Script) Exec(filename string, src any) (globals starlark.StringDict, err error) {
	thread := &starlark.Thread{
		Name: filename,
		Print: func(thread *starlark.Thread, msg string) {
			if sc.Output != nil {
				fmt.Fprintln(sc.Output, msg)
			}
		},
	}

	opts := syntax.FileOptions{
		Set:             true,
		While:           true,
		TopLevelControl: true,
	}

	pred := starlark.StringDict{
		"assemble":  starlark.NewBuiltin("assemble", sc.assemble),
		"load_file": starlark.NewBuiltin("load_file", sc.loadFile),
	}

	globals, err = starlark.ExecFileOptions(&opts, thread, filename, src, pred)
	return
}

func (sc *Script) assemble(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (value starlark.Value, err error) {
	var source string
	err = starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &source)
	if err != nil {
		return
	}

	emu := emulator.NewEmulator()
	emu.Verbose = sc.Verbose
	if sc.StepLimit > 0 {
		emu.StepLimit = sc.StepLimit
	}

	err = emu.Assemble(source)
	if err != nil {
		return
	}

	if sc.Verbose {
		log.Printf("script: %v: assembled %v words", thread.Name, emu.Program.Size)
	}

	value = &Machine{Emulator: emu}
	return
}

func (sc *Script) loadFile(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (value starlark.Value, err error) {
	var path string
	err = starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &path)
	if err != nil {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		err = errors.Wrap(err, fn.Name())
		return
	}

	value = starlark.String(data)
	return
}
