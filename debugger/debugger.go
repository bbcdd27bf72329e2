// Package debugger is an interactive single step monitor for the emulator.
//
// Commands are read with readline and split with shell quoting rules.
// Registers and memory are shown as tables, with the cells written by the
// most recent instruction highlighted.
package debugger

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/chzyer/readline"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-shellwords"
	"github.com/mgutz/ansi"

	"github.com/iiTzHyper/avr/cpu"
	"github.com/iiTzHyper/avr/emulator"
	"github.com/iiTzHyper/avr/isa"
)

var (
	colorChanged = ansi.ColorCode("yellow+b")
	colorCurrent = ansi.ColorCode("green+b")
	colorError   = ansi.ColorCode("red")
)

// Debugger state.
type Debugger struct {
	*emulator.Emulator
	Color  bool      // Highlight changed cells.
	Output io.Writer // Destination of command output.

	quit bool
}

// NewDebugger creates a debugger for an emulator with a loaded program.
func NewDebugger(emu *emulator.Emulator, output io.Writer) (dbg *Debugger) {
	dbg = &Debugger{
		Emulator: emu,
		Output:   output,
	}

	return
}

func (dbg *Debugger) paint(text string, color string, on bool) string {
	if !dbg.Color || !on {
		return text
	}
	return color + text + ansi.Reset
}

// Exec runs one command line. quit is set by the 'quit' command.
func (dbg *Debugger) Exec(line string) (quit bool, err error) {
	args, err := shellwords.Parse(line)
	if err != nil {
		return
	}

	if len(args) == 0 {
		return
	}

	cmd, ok := Lookup(args[0])
	if !ok {
		err = ErrUnknownCommand(args[0])
		return
	}

	args = args[1:]
	err = cmd.check(args)
	if err != nil {
		return
	}

	err = cmd.Run(dbg, args)
	quit = dbg.quit
	return
}

// Prompt returns the readline prompt for the current state.
func (dbg *Debugger) Prompt() string {
	if dbg.Finished {
		return "(avr done) "
	}
	return fmt.Sprintf("(avr %04x) ", dbg.PC)
}

// Repl reads and executes commands until 'quit' or end of input.
func (dbg *Debugger) Repl(historyPath string, historySize int) (err error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          dbg.Prompt(),
		HistoryFile:     historyPath,
		HistoryLimit:    historySize,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return
	}
	defer rl.Close()

	if dbg.Output == nil {
		dbg.Output = rl.Stdout()
	}

	return dbg.Loop(func() (line string, err error) {
		rl.SetPrompt(dbg.Prompt())
		for {
			line, err = rl.Readline()
			if err != readline.ErrInterrupt {
				return
			}
		}
	})
}

// Loop shows the current instruction, then executes the lines returned by
// next until 'quit' or io.EOF. Command errors are reported to Output.
func (dbg *Debugger) Loop(next func() (string, error)) (err error) {
	err = dbg.cmdWhere(nil)
	if err != nil {
		return
	}

	for !dbg.quit {
		var line string
		line, err = next()
		if err == io.EOF {
			err = nil
			break
		}
		if err != nil {
			return
		}

		_, cerr := dbg.Exec(line)
		if cerr != nil {
			if dbg.Verbose {
				log.Printf("debugger: %q: %v", line, cerr)
			}
			fmt.Fprintln(dbg.Output, dbg.paint(cerr.Error(), colorError, true))
		}
	}

	return
}

func (dbg *Debugger) cmdStep(args []string) (err error) {
	n, err := dbg.optional(args, 0, 1)
	if err != nil {
		return
	}

	for range n {
		var done bool
		done, err = dbg.Tick()
		if err != nil {
			return
		}
		if done {
			break
		}
	}

	return dbg.cmdWhere(nil)
}

func (dbg *Debugger) cmdBack(args []string) (err error) {
	n, err := dbg.optional(args, 0, 1)
	if err != nil {
		return
	}

	err = dbg.Back(n)
	if err != nil {
		return
	}

	return dbg.cmdWhere(nil)
}

func (dbg *Debugger) cmdRun(args []string) (err error) {
	err = dbg.Run()
	if err != nil {
		return
	}

	return dbg.cmdWhere(nil)
}

func (dbg *Debugger) cmdUntil(args []string) (err error) {
	lineno, err := dbg.number(args[0])
	if err != nil {
		return
	}

	for {
		var done bool
		done, err = dbg.Tick()
		if err != nil {
			return
		}
		if done || dbg.LineNo() == lineno {
			break
		}
	}

	return dbg.cmdWhere(nil)
}

func (dbg *Debugger) cmdReset(args []string) (err error) {
	dbg.Reset()
	return dbg.cmdWhere(nil)
}

func (dbg *Debugger) cmdRegs(args []string) (err error) {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)

	header := table.Row{""}
	for col := range 8 {
		header = append(header, fmt.Sprintf("+%d", col))
	}
	tw.AppendHeader(header)

	for row := 0; row < isa.REGISTERS; row += 8 {
		cells := table.Row{fmt.Sprintf("r%d", row)}
		for n := row; n < row+8; n++ {
			cells = append(cells, dbg.paint(fmt.Sprintf("%02x", dbg.Register(n)), colorChanged, dbg.Changed(n)))
		}
		tw.AppendRow(cells)
	}

	tw.AppendSeparator()
	for _, pair := range []struct {
		name string
		reg  int
	}{{"X", isa.REG_X}, {"Y", isa.REG_Y}, {"Z", isa.REG_Z}} {
		value := int(dbg.Register(pair.reg)) | int(dbg.Register(pair.reg+1))<<8
		changed := dbg.Changed(pair.reg) || dbg.Changed(pair.reg+1)
		tw.AppendRow(table.Row{pair.name, dbg.paint(fmt.Sprintf("%04x", value), colorChanged, changed)})
	}

	sp := dbg.paint(fmt.Sprintf("%04x", dbg.SP()), colorChanged, dbg.Changed(isa.SPL) || dbg.Changed(isa.SPH))
	tw.AppendRow(table.Row{"SP", sp})
	tw.AppendRow(table.Row{"PC", fmt.Sprintf("%04x", dbg.PC)})

	fmt.Fprintln(dbg.Output, tw.Render())
	return
}

func (dbg *Debugger) cmdSreg(args []string) (err error) {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)

	header := table.Row{}
	cells := table.Row{}
	sreg := dbg.SREG()
	changed := dbg.Changed(isa.SREG)
	prev := dbg.Changes[isa.SREG].Prev
	for n := 7; n >= 0; n-- {
		header = append(header, string(isa.FlagNames[n]))
		value := (sreg >> n) & 1
		flipped := changed && (prev>>n)&1 != value
		cells = append(cells, dbg.paint(fmt.Sprintf("%d", value), colorChanged, flipped))
	}
	tw.AppendHeader(header)
	tw.AppendRow(cells)

	fmt.Fprintln(dbg.Output, tw.Render())
	return
}

func (dbg *Debugger) cmdMem(args []string) (err error) {
	addr, err := dbg.number(args[0])
	if err != nil {
		return
	}

	length, err := dbg.optional(args, 1, 64)
	if err != nil {
		return
	}

	if addr < 0 || addr >= len(dbg.DMEM) {
		err = cpu.ErrAddress(addr)
		return
	}
	end := min(addr+max(length, 0), len(dbg.DMEM))

	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)

	header := table.Row{"addr"}
	for col := range 16 {
		header = append(header, fmt.Sprintf("%x", col))
	}
	header = append(header, "ascii")
	tw.AppendHeader(header)

	for row := addr &^ 0xf; row < end; row += 16 {
		cells := table.Row{fmt.Sprintf("%04x", row)}
		var ascii strings.Builder
		for n := row; n < row+16; n++ {
			if n < addr || n >= end {
				cells = append(cells, "")
				ascii.WriteByte(' ')
				continue
			}
			value := dbg.DMEM[n]
			cells = append(cells, dbg.paint(fmt.Sprintf("%02x", value), colorChanged, dbg.Changed(n)))
			if value >= 0x20 && value < 0x7f {
				ascii.WriteByte(value)
			} else {
				ascii.WriteByte('.')
			}
		}
		cells = append(cells, ascii.String())
		tw.AppendRow(cells)
	}

	fmt.Fprintln(dbg.Output, tw.Render())
	return
}

func (dbg *Debugger) cmdPmem(args []string) (err error) {
	addr, err := dbg.optional(args, 0, dbg.PC)
	if err != nil {
		return
	}

	length, err := dbg.optional(args, 1, 8)
	if err != nil {
		return
	}

	if addr < 0 || addr >= len(dbg.Program.PMEM) {
		err = cpu.ErrProgramAddress(addr)
		return
	}
	end := min(addr+max(length, 0), len(dbg.Program.PMEM))

	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"", "addr", "word", "instruction", "line"})

	for n := addr; n < end; n++ {
		inst := &dbg.Program.PMEM[n]
		marker := ""
		if n == dbg.PC {
			marker = dbg.paint("=>", colorCurrent, true)
		}
		line := ""
		if inst.LineNo > 0 {
			line = fmt.Sprintf("%d", inst.LineNo)
		}
		tw.AppendRow(table.Row{marker, fmt.Sprintf("%04x", n), fmt.Sprintf("%04x", dbg.Program.Word(n)), inst.String(), line})
	}

	fmt.Fprintln(dbg.Output, tw.Render())
	return
}

// source returns the text of a source line, or "".
func (dbg *Debugger) source(lineno int) string {
	lines := strings.Split(dbg.Source, "\n")
	if lineno < 1 || lineno > len(lines) {
		return ""
	}
	return strings.TrimSpace(lines[lineno-1])
}

func (dbg *Debugger) cmdWhere(args []string) (err error) {
	if dbg.Finished {
		dbg.printf("finished after %v steps\n", dbg.Steps)
		return
	}

	lineno := dbg.LineNo()
	dbg.printf("%04x line %v: %v\n", dbg.PC, lineno, dbg.source(lineno))
	return
}

func (dbg *Debugger) cmdOutput(args []string) (err error) {
	fmt.Fprint(dbg.Output, dbg.Console.String())
	return
}

func (dbg *Debugger) cmdHelp(args []string) (err error) {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"command", "aliases", "description"})

	for _, cmd := range Commands {
		usage := strings.TrimSpace(cmd.Name + " " + cmd.Usage)
		tw.AppendRow(table.Row{usage, strings.Join(cmd.Aliases, " "), f(cmd.Desc)})
	}

	fmt.Fprintln(dbg.Output, tw.Render())
	return
}

func (dbg *Debugger) cmdQuit(args []string) (err error) {
	dbg.quit = true
	return
}
