package cpu

import (
	"fmt"
	"iter"
	"log"
	"maps"
	"math"
	"math/bits"
)

// MUTATION_NONE marks a Mutation field that was not written.
const MUTATION_NONE = -1

var _cpu_defines = map[string]string{
	"REGISTER_COUNT": fmt.Sprintf("%v", REGISTER_COUNT),
	"MEMORY_SIZE":    fmt.Sprintf("%v", MEMORY_SIZE),
	"INSTRUCTION":    fmt.Sprintf("%v", INSTRUCTION),
	"HALT":           fmt.Sprintf("0x%04x", uint16(Halt{}.Code())),
}

// Mutation records the register and memory cell written by the last step.
type Mutation struct {
	Register int // Register index, or MUTATION_NONE.
	Memory   int // Memory address, or MUTATION_NONE.
}

// mutationNone has nothing marked.
var mutationNone = Mutation{Register: MUTATION_NONE, Memory: MUTATION_NONE}

// Cpu is the simulation context for the Vole machine.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Register Registers // Register bank.
	Memory   Memory    // Main memory.

	Pc      uint8    // Address of the next instruction.
	Ir      Code     // Last fetched instruction.
	Cycles  uint64   // Instructions completed since reset.
	Halted  bool     // Set by halt, or by an illegal instruction.
	Changed Mutation // Writes of the last step.
}

// NewCpu creates a new CPU in the reset state.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{}
	cpu.Reset()

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// String returns the current CPU state as a string.
// The register written by the last step is marked with a '*'.
func (cpu *Cpu) String() (text string) {
	state := "RUNNING"
	if cpu.Halted {
		state = "HALTED"
	}

	text += fmt.Sprintf("% 5s: %v\n", "state", state)
	text += fmt.Sprintf("% 5s: %02X\n", "pc", cpu.Pc)
	text += fmt.Sprintf("% 5s: %04X %v\n", "ir", uint16(cpu.Ir), Decode(cpu.Ir))
	text += fmt.Sprintf("% 5s: %d\n", "cycle", cpu.Cycles)

	for n, val := range cpu.Register {
		var mark string
		if cpu.Changed.Register == n {
			mark = " *"
		}
		text += fmt.Sprintf("% 5s: %02X (%3d)%v\n", fmt.Sprintf("r%d", n), val, val, mark)
	}

	return
}

// Reset the CPU state.
// - Clears the registers and the instruction register.
// - Zeros the program counter and the cycle counter.
// - Clears the halted flag and the mutation markers.
// Memory is left as it is.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Register[:])
	cpu.Pc = 0
	cpu.Ir = 0
	cpu.Cycles = 0
	cpu.Halted = false
	cpu.Changed = mutationNone
}

// FetchCode fetches the instruction at the program counter.
func (cpu *Cpu) FetchCode() (code Code) {
	return cpu.Memory.Fetch(cpu.Pc)
}

// Step executes a single fetch-decode-execute cycle.
// Returns ErrHalted, without changing any state, if the CPU is halted.
func (cpu *Cpu) Step() (err error) {
	if cpu.Halted {
		err = ErrHalted
		return
	}

	cpu.Ir = cpu.FetchCode()

	err = cpu.Execute(Decode(cpu.Ir))

	return
}

// Run steps until the CPU halts. Returns the ErrIllegal that stopped the
// CPU, if any. There is no step limit.
func (cpu *Cpu) Run() (err error) {
	for !cpu.Halted {
		err = cpu.Step()
		if err != nil {
			return
		}
	}

	return
}

// Execute executes a single decoded instruction.
// The mutation markers record only the writes of this instruction.
func (cpu *Cpu) Execute(opcode Opcode) (err error) {
	cpu.Changed = mutationNone

	if cpu.Verbose {
		log.Printf("%02x: %v", cpu.Pc, opcode)
	}

	reg := &cpu.Register
	mem := &cpu.Memory

	next_pc := cpu.Pc + INSTRUCTION

	set_reg := func(n uint8, value uint8) {
		reg[n] = value
		cpu.Changed.Register = int(n)
	}

	switch op := opcode.(type) {
	case LoadMemory:
		set_reg(op.Reg, mem[op.Addr])
	case LoadImmediate:
		set_reg(op.Reg, op.Value)
	case Store:
		mem[op.Addr] = reg[op.Reg]
		cpu.Changed.Memory = int(op.Addr)
	case Move:
		set_reg(op.Dst, reg[op.Src])
	case AddInt:
		set_reg(op.T, reg[op.R]+reg[op.S])
	case AddFloat:
		sum := Floating(reg[op.R]).Float() + Floating(reg[op.S]).Float()
		set_reg(op.T, uint8(MakeFloating(sum)))
	case Or:
		set_reg(op.T, reg[op.R]|reg[op.S])
	case And:
		set_reg(op.T, reg[op.R]&reg[op.S])
	case Xor:
		set_reg(op.T, reg[op.R]^reg[op.S])
	case Rotate:
		set_reg(op.Reg, bits.RotateLeft8(reg[op.Reg], -int(op.Count&7)))
	case JumpEqual:
		if reg[op.Reg] == reg[0] {
			next_pc = op.Addr
		}
	case Halt:
		cpu.Halted = true
		return
	case Illegal:
		cpu.Halted = true
		err = ErrIllegal{Pc: cpu.Pc, Word: op.Word}
		return
	default:
		// Opcode is sealed, so only a nil opcode gets here.
		cpu.Halted = true
		err = ErrIllegal{Pc: cpu.Pc, Word: cpu.Ir}
		return
	}

	cpu.Pc = next_pc

	if cpu.Cycles < math.MaxUint64 {
		cpu.Cycles++
	}

	return
}
