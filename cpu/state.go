package cpu

import (
	"encoding/binary"

	"github.com/cespare/xxhash"
)

// State is a read-only copy of the CPU, for display and comparison.
type State struct {
	Register Registers
	Memory   Memory
	Pc       uint8
	Ir       Code
	Cycles   uint64
	Halted   bool
	Changed  Mutation
}

// Snapshot copies the CPU state.
func (cpu *Cpu) Snapshot() State {
	return State{
		Register: cpu.Register,
		Memory:   cpu.Memory,
		Pc:       cpu.Pc,
		Ir:       cpu.Ir,
		Cycles:   cpu.Cycles,
		Halted:   cpu.Halted,
		Changed:  cpu.Changed,
	}
}

// Hash fingerprints the machine state: registers, memory, PC, IR, cycle
// count and the halted flag. The mutation markers are not included.
func (st State) Hash() uint64 {
	buf := make([]byte, 0, REGISTER_COUNT+MEMORY_SIZE+1+2+8+1)
	buf = append(buf, st.Register[:]...)
	buf = append(buf, st.Memory[:]...)
	buf = append(buf, st.Pc)
	buf = binary.BigEndian.AppendUint16(buf, uint16(st.Ir))
	buf = binary.BigEndian.AppendUint64(buf, st.Cycles)
	if st.Halted {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}

	return xxhash.Sum64(buf)
}
