// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/tebeka/atexit"

	"github.com/iiTzHyper/avr/config"
	"github.com/iiTzHyper/avr/debugger"
	"github.com/iiTzHyper/avr/emulator"
	"github.com/iiTzHyper/avr/image"
	"github.com/iiTzHyper/avr/script"
)

func main() {
	var compile string
	var output string
	var trace string
	var starlark string
	var debug bool
	var assembleOnly bool
	var limit int
	var verbose bool

	flag.StringVar(&compile, "c", "", ".s file to assemble")
	flag.StringVar(&output, "o", "", "Flash image to write")
	flag.StringVar(&trace, "t", "", "Execution trace to write")
	flag.StringVar(&starlark, "s", "", ".star script to run")
	flag.BoolVar(&debug, "d", false, "Start the interactive debugger")
	flag.BoolVar(&assembleOnly, "n", false, "Assemble only, do not execute")
	flag.IntVar(&limit, "l", -1, "Step limit, 0 for none (default from settings)")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	settings, err := config.Load()
	if err != nil {
		log.Printf("%v: using defaults", err)
		settings = config.Default()
	}
	if limit >= 0 {
		settings.StepLimit = limit
	}

	if len(starlark) != 0 {
		sc := &script.Script{
			Verbose:   verbose,
			StepLimit: settings.StepLimit,
			Output:    os.Stdout,
		}
		_, err = sc.Exec(starlark, nil)
		if err != nil {
			atexit.Fatalf("%v: %v", starlark, err)
		}
		if len(compile) == 0 {
			atexit.Exit(0)
		}
	}

	if len(compile) == 0 {
		log.Fatalf("%v: -c or -s required", os.Args[0])
	}

	source, err := os.ReadFile(compile)
	if err != nil {
		log.Fatalf("%v: %v", compile, err)
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose
	err = settings.Apply(emu)
	if err != nil {
		log.Printf("%v", err)
	}

	err = emu.Assemble(string(source))
	if err != nil {
		log.Fatalf("%v: %v", compile, err)
	}

	if len(output) != 0 {
		ouf, err := os.Create(output)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		err = image.WriteProgram(ouf, emu.Program)
		if err == nil {
			err = ouf.Close()
		}
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
	}

	if assembleOnly {
		atexit.Exit(0)
	}

	if len(trace) != 0 {
		tf, err := os.Create(trace)
		if err != nil {
			log.Fatalf("%v: %v", trace, err)
		}
		emu.Trace, err = image.NewTraceWriter(tf)
		if err != nil {
			log.Fatalf("%v: %v", trace, err)
		}
		atexit.Register(func() {
			err := emu.Trace.Close()
			if err == nil {
				err = tf.Close()
			}
			if err != nil {
				log.Printf("%v: %v", trace, err)
			}
		})
	}

	emu.Console.Output = os.Stdout

	if debug {
		dbg := debugger.NewDebugger(emu, nil)
		dbg.Color = settings.Color
		err = dbg.Repl(config.HistoryPath(), settings.HistorySize)
		if err != nil {
			atexit.Fatalf("%v: %v", compile, err)
		}
		atexit.Exit(0)
	}

	err = emu.Run()
	if verbose {
		fmt.Fprint(os.Stderr, emu.Cpu.String())
	}
	if err != nil {
		atexit.Fatalf("%v: %v", compile, err)
	}

	atexit.Exit(0)
}
