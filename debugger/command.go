package debugger

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/iiTzHyper/avr/internal"
)

// Command is one debugger command.
type Command struct {
	Name    string
	Aliases []string
	Usage   string
	Desc    string
	Min     int // Minimum argument count.
	Max     int // Maximum argument count.
	Run     func(dbg *Debugger, args []string) error
}

// Commands is the command table, in help order.
var Commands []*Command

func init() {
	Commands = []*Command{
		{Name: "step", Aliases: []string{"s", "next", "n"}, Usage: "[n]", Max: 1,
			Desc: "execute n instructions (default 1)", Run: (*Debugger).cmdStep},
		{Name: "back", Aliases: []string{"b"}, Usage: "[n]", Max: 1,
			Desc: "step backwards n instructions (default 1)", Run: (*Debugger).cmdBack},
		{Name: "run", Aliases: []string{"r", "continue", "c"},
			Desc: "run until the program finishes", Run: (*Debugger).cmdRun},
		{Name: "until", Aliases: []string{"u"}, Usage: "<line>", Min: 1, Max: 1,
			Desc: "run until the instruction on a source line", Run: (*Debugger).cmdUntil},
		{Name: "reset",
			Desc: "reset to the program entry", Run: (*Debugger).cmdReset},
		{Name: "regs", Aliases: []string{"registers"},
			Desc: "show the general purpose registers", Run: (*Debugger).cmdRegs},
		{Name: "sreg", Aliases: []string{"flags"},
			Desc: "show the status register flags", Run: (*Debugger).cmdSreg},
		{Name: "mem", Aliases: []string{"x"}, Usage: "<addr> [len]", Min: 1, Max: 2,
			Desc: "dump data memory (default 64 bytes)", Run: (*Debugger).cmdMem},
		{Name: "pmem", Aliases: []string{"list", "l"}, Usage: "[addr] [len]", Max: 2,
			Desc: "list program memory (default 8 words from pc)", Run: (*Debugger).cmdPmem},
		{Name: "where", Aliases: []string{"w"},
			Desc: "show the current instruction", Run: (*Debugger).cmdWhere},
		{Name: "output", Aliases: []string{"o"},
			Desc: "show the printf output so far", Run: (*Debugger).cmdOutput},
		{Name: "help", Aliases: []string{"h", "?"},
			Desc: "list commands", Run: (*Debugger).cmdHelp},
		{Name: "quit", Aliases: []string{"q", "exit"},
			Desc: "leave the debugger", Run: (*Debugger).cmdQuit},
	}
}

// Lookup finds a command by name or alias.
func Lookup(name string) (cmd *Command, ok bool) {
	name = strings.ToLower(name)
	for _, cmd = range Commands {
		if cmd.Name == name || slices.Contains(cmd.Aliases, name) {
			ok = true
			return
		}
	}

	cmd = nil
	return
}

func (cmd *Command) check(args []string) (err error) {
	if len(args) < cmd.Min || len(args) > cmd.Max {
		err = ErrUsage{Name: cmd.Name, Usage: cmd.Usage}
	}
	return
}

// number parses a decimal, 0x hex, 0b binary or 0 octal number, or the
// value of a symbol of the loaded program.
func (dbg *Debugger) number(arg string) (value int, err error) {
	n, perr := strconv.ParseInt(arg, 0, 0)
	if perr == nil {
		value = int(n)
		return
	}

	value, ok := internal.IterSeq2Find(dbg.Defines(), arg)
	if !ok {
		err = ErrNumber(arg)
	}
	return
}

// optional returns the numeric argument n, or def when absent.
func (dbg *Debugger) optional(args []string, n int, def int) (value int, err error) {
	if n >= len(args) {
		value = def
		return
	}

	return dbg.number(args[n])
}

func (dbg *Debugger) printf(format string, args ...any) {
	fmt.Fprint(dbg.Output, f(format, args...))
}
