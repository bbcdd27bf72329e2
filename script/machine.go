package script

import (
	"strings"

	"go.starlark.net/starlark"

	"github.com/iiTzHyper/avr/emulator"
	"github.com/iiTzHyper/avr/isa"
)

// Machine is an assembled program exposed to Starlark.
type Machine struct {
	*emulator.Emulator
}

var _ starlark.HasAttrs = (*Machine)(nil)

func (m *Machine) String() string {
	return f("<machine pc=0x%04x steps=%v>", m.PC, m.Steps)
}

func (m *Machine) Type() string          { return "machine" }
func (m *Machine) Freeze()               {}
func (m *Machine) Truth() starlark.Bool  { return starlark.True }
func (m *Machine) Hash() (uint32, error) { return 0, ErrUnhashable }

type machineMethod func(m *Machine, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error)

var machineMethods = map[string]machineMethod{
	"step":  (*Machine).step,
	"run":   (*Machine).run,
	"back":  (*Machine).back,
	"reset": (*Machine).reset,
	"reg":   (*Machine).reg,
	"mem":   (*Machine).mem,
	"flag":  (*Machine).flag,
}

var machineAttrs = []string{
	"back", "finished", "flag", "line", "mem", "output", "pc", "reg",
	"reset", "run", "sp", "sreg", "step", "steps",
}

// Attr implements starlark.HasAttrs.
func (m *Machine) Attr(name string) (value starlark.Value, err error) {
	if method, ok := machineMethods[name]; ok {
		value = starlark.NewBuiltin(name, func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			return method(m, fn, args, kwargs)
		})
		return
	}

	switch name {
	case "pc":
		value = starlark.MakeInt(m.PC)
	case "sp":
		value = starlark.MakeInt(m.SP())
	case "sreg":
		value = starlark.MakeInt(int(m.SREG()))
	case "steps":
		value = starlark.MakeInt(m.Steps)
	case "finished":
		value = starlark.Bool(m.Finished)
	case "line":
		value = starlark.MakeInt(m.LineNo())
	case "output":
		value = starlark.String(m.Console.String())
	}

	// nil, nil reports a missing attribute.
	return
}

// AttrNames implements starlark.HasAttrs.
func (m *Machine) AttrNames() []string {
	return machineAttrs
}

func (m *Machine) step(fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (value starlark.Value, err error) {
	n := 1
	err = starlark.UnpackArgs(fn.Name(), args, kwargs, "n?", &n)
	if err != nil {
		return
	}
	if n < 0 {
		err = ErrSteps(n)
		return
	}

	done := m.Finished
	for range n {
		done, err = m.Tick()
		if err != nil {
			return
		}
		if done {
			break
		}
	}

	value = starlark.Bool(done)
	return
}

func (m *Machine) run(fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (value starlark.Value, err error) {
	err = starlark.UnpackArgs(fn.Name(), args, kwargs)
	if err != nil {
		return
	}

	err = m.Run()
	if err != nil {
		return
	}

	value = starlark.MakeInt(m.Steps)
	return
}

func (m *Machine) back(fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (value starlark.Value, err error) {
	n := 1
	err = starlark.UnpackArgs(fn.Name(), args, kwargs, "n?", &n)
	if err != nil {
		return
	}
	if n < 0 {
		err = ErrSteps(n)
		return
	}

	err = m.Back(n)
	if err != nil {
		return
	}

	value = starlark.MakeInt(m.Steps)
	return
}

func (m *Machine) reset(fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (value starlark.Value, err error) {
	err = starlark.UnpackArgs(fn.Name(), args, kwargs)
	if err != nil {
		return
	}

	m.Reset()

	value = starlark.None
	return
}

func (m *Machine) reg(fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (value starlark.Value, err error) {
	var n int
	err = starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &n)
	if err != nil {
		return
	}
	if n < 0 || n >= isa.REGISTERS {
		err = ErrRegister(n)
		return
	}

	value = starlark.MakeInt(int(m.Register(n)))
	return
}

func (m *Machine) mem(fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (value starlark.Value, err error) {
	var addr int
	err = starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &addr)
	if err != nil {
		return
	}

	data, err := m.Peek(addr)
	if err != nil {
		return
	}

	value = starlark.MakeInt(int(data))
	return
}

func (m *Machine) flag(fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (value starlark.Value, err error) {
	var name string
	err = starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &name)
	if err != nil {
		return
	}

	bit := strings.Index(isa.FlagNames, strings.ToUpper(name))
	if len(name) != 1 || bit < 0 {
		err = ErrFlag(name)
		return
	}

	value = starlark.Bool(m.Flag(bit))
	return
}
