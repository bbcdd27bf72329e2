package debugger

import (
	"github.com/iiTzHyper/avr/translate"
)

var f = translate.From

// ErrUnknownCommand reports a command name not in the command table.
type ErrUnknownCommand string

func (err ErrUnknownCommand) Error() string {
	return f("unknown command '%v', try 'help'", string(err))
}

// ErrUsage reports a command called with the wrong arguments.
type ErrUsage struct {
	Name  string
	Usage string
}

func (err ErrUsage) Error() string {
	return f("usage: %v %v", err.Name, err.Usage)
}

// ErrNumber reports an argument that is neither a number nor a symbol.
type ErrNumber string

func (err ErrNumber) Error() string {
	return f("'%v' is not a number or symbol", string(err))
}
