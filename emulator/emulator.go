// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"fmt"
	"io"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/vole/cpu"
	"github.com/ezrec/vole/internal"
)

const (
	DEFAULT_STEP_LIMIT = 65536 // Default steps for Run, before giving up.
)

var _emulator_defines = map[string]string{
	"DEFAULT_STEP_LIMIT": fmt.Sprintf("%v", DEFAULT_STEP_LIMIT),
}

// Emulator state. CPU + program listing.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently running program listing.

	StepLimit int               // Maximum steps for Run, or 0 for no limit.
	Equate    map[string]string // Extra equates for Assemble.
	Trace     io.Writer         // If set, each step is traced here.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:       cpu.NewCpu(),
		Program:   &cpu.Program{},
		StepLimit: DEFAULT_STEP_LIMIT,
	}

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.ConcatSeq2(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
		maps.All(emu.Equate),
	)
}

// Assemble a program from source, and reset the emulator to run it.
func (emu *Emulator) Assemble(input io.Reader) (err error) {
	asm := &cpu.Assembler{Verbose: emu.Verbose}
	for equ, value := range emu.Defines() {
		asm.Predefine(equ, value)
	}

	prog, err := asm.Parse(input)
	if err != nil {
		return
	}

	emu.Program = prog

	err = emu.Reset()

	return
}

// Load a memory image, and reset the emulator to run it.
func (emu *Emulator) Load(image []byte) (err error) {
	if len(image) > cpu.MEMORY_SIZE {
		err = cpu.ErrImageSize
		return
	}

	emu.Program = cpu.NewProgram(image)

	err = emu.Reset()

	return
}

// Reset the memory to the program image, and reset the CPU.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = emu.Verbose

	image := emu.Program.Binary()
	if emu.Verbose {
		log.Printf("emulator: load %d bytes", len(image))
	}

	err = emu.Cpu.Memory.Load(image)
	if err != nil {
		return
	}

	emu.Cpu.Reset()

	return
}

// LineNo returns the line number of the statement at the program counter,
// or 0 if there is none.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Cpu.Pc)
	if dbg.Statement == nil {
		return 0
	}

	return dbg.LineNo
}

// Opcode returns the decoded instruction at the program counter.
func (emu *Emulator) Opcode() cpu.Opcode {
	return cpu.Decode(emu.Cpu.FetchCode())
}

// Tick performs a single step of the emulator.
// done is set once the CPU has halted.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	if emu.Cpu.Halted {
		done = true
		return
	}

	addr := emu.Cpu.Pc
	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{Addr: addr, LineNo: lineno, Err: err}
		}
	}()

	opcode := emu.Opcode()

	err = emu.Cpu.Step()

	if emu.Trace != nil {
		fmt.Fprintf(emu.Trace, "%02x: %04x %-18v %v\n",
			addr, uint16(emu.Cpu.Ir), opcode, emu.Cpu.Register.String())
	}

	done = emu.Cpu.Halted

	return
}

// Run ticks the emulator until the CPU halts, the step limit is reached,
// or the context is done.
func (emu *Emulator) Run(ctx context.Context) (err error) {
	for steps := 0; ; steps++ {
		if emu.StepLimit > 0 && steps >= emu.StepLimit {
			err = ErrStepLimit
			return
		}

		err = ctx.Err()
		if err != nil {
			return
		}

		var done bool
		done, err = emu.Tick()
		if err != nil || done {
			return
		}
	}
}
