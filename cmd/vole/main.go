// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/ezrec/vole/cpu"
	"github.com/ezrec/vole/emulator"
	"github.com/ezrec/vole/translate"
)

// defaultImage loads r4 from 0x02, stores it to 0x17, and halts.
var defaultImage = []byte{0x14, 0x02, 0x34, 0x17, 0xc0, 0x00}

// equates collects repeated -D NAME=VALUE flags.
type equates map[string]string

func (eq equates) String() string {
	var defs []string
	for name, value := range eq {
		defs = append(defs, name+"="+value)
	}
	return strings.Join(defs, ",")
}

func (eq equates) Set(def string) error {
	name, value, ok := strings.Cut(def, "=")
	if !ok || len(name) == 0 {
		return fmt.Errorf("%v: expected NAME=VALUE", def)
	}
	eq[name] = value
	return nil
}

func main() {
	var compile string
	var binary string
	var steps int
	var trace bool
	var disassemble bool
	var output string
	var lang string
	var verbose bool

	defines := equates{}

	flag.StringVar(&compile, "c", "", ".vole assembly file to compile")
	flag.StringVar(&binary, "b", "", "raw memory image to load")
	flag.IntVar(&steps, "n", emulator.DEFAULT_STEP_LIMIT, "Step limit, 0 for none")
	flag.BoolVar(&trace, "t", false, "Trace each step")
	flag.BoolVar(&disassemble, "d", false, "Disassemble, do not execute")
	flag.StringVar(&output, "o", "", "Write final memory image")
	flag.Var(defines, "D", "Assembler equate NAME=VALUE (repeatable)")
	flag.StringVar(&lang, "lang", "", "Message language")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if len(compile) != 0 && len(binary) != 0 {
		log.Fatalf("%v: -c and -b are exclusive", os.Args[0])
	}

	if len(lang) != 0 {
		translate.SetLanguage(lang)
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose
	emu.StepLimit = steps
	emu.Equate = defines

	switch {
	case len(compile) != 0:
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		err = emu.Assemble(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
	case len(binary) != 0:
		image, err := os.ReadFile(binary)
		if err != nil {
			log.Fatalf("%v: %v", binary, err)
		}

		err = emu.Load(image)
		if err != nil {
			log.Fatalf("%v: %v", binary, err)
		}
	default:
		err := emu.Load(defaultImage)
		if err != nil {
			log.Fatal(err)
		}
	}

	if disassemble {
		for _, stmt := range cpu.NewProgram(emu.Program.Binary()).Statements {
			fmt.Printf("%02x: %v\n", stmt.Addr, strings.Join(stmt.Words, " "))
		}
		return
	}

	if trace {
		emu.Trace = os.Stdout
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := emu.Run(ctx)

	fmt.Print(emu.Cpu.String())
	fmt.Printf("% 5s: %016x\n", "hash", emu.Cpu.Snapshot().Hash())
	fmt.Print(emu.Cpu.Memory.String())

	if len(output) != 0 {
		werr := os.WriteFile(output, emu.Cpu.Memory[:], 0o644)
		if werr != nil {
			log.Fatalf("%v: %v", output, werr)
		}
	}

	if err != nil {
		log.Fatal(err)
	}
}
