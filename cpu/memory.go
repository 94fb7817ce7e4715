package cpu

import (
	"fmt"
	"strings"
)

const (
	REGISTER_COUNT = 16  // General purpose registers.
	MEMORY_SIZE    = 256 // Bytes of memory.
	INSTRUCTION    = 2   // Bytes per instruction.
)

// Registers is the register bank, r0 to r15.
type Registers [REGISTER_COUNT]uint8

// Memory is the main memory, holding both code and data.
type Memory [MEMORY_SIZE]uint8

// Load clears the memory and copies the image to address zero.
func (mem *Memory) Load(image []byte) (err error) {
	if len(image) > len(mem) {
		err = ErrImageSize
		return
	}

	clear(mem[:])
	copy(mem[:], image)

	return
}

// Fetch returns the instruction word at an address. The second byte of a
// word at 0xff is read from address 0x00.
func (mem *Memory) Fetch(addr uint8) Code {
	return MakeCodeBytes(mem[addr], mem[addr+1])
}

// String returns a hex dump of the memory, sixteen bytes to a row.
func (mem *Memory) String() string {
	var text strings.Builder
	for row := 0; row < len(mem); row += 16 {
		fmt.Fprintf(&text, "%02X:", row)
		for _, value := range mem[row : row+16] {
			fmt.Fprintf(&text, " %02X", value)
		}
		text.WriteString("\n")
	}

	return text.String()
}

// String returns the registers as a single row of hex bytes.
func (regs *Registers) String() string {
	words := make([]string, len(regs))
	for n, value := range regs {
		words[n] = fmt.Sprintf("%02X", value)
	}

	return strings.Join(words, " ")
}
