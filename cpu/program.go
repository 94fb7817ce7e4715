package cpu

import (
	"fmt"
	"iter"
	"slices"
	"strings"
)

// Statement is a single assembled line, and the bytes it produced.
type Statement struct {
	LineNo    int      // Source line, or zero for a disassembled image.
	Addr      int      // Address of the first byte.
	Words     []string // Source words.
	Bytes     []uint8  // Assembled bytes.
	LinkLabel string   // Label to resolve, if any.
	LinkIndex int      // Index in Bytes of the resolved label.
}

// Program is a list of assembled statements.
type Program struct {
	Statements []Statement
}

type Debug struct {
	*Statement
	Index int
}

// NewProgram creates a program listing from a memory image, one
// statement per instruction word. A trailing odd byte is listed as data.
func NewProgram(image []byte) (prog *Program) {
	prog = &Program{}

	for addr, op := range Disassemble(image) {
		prog.Statements = append(prog.Statements, Statement{
			Addr:  addr,
			Words: strings.Fields(op.String()),
			Bytes: slices.Clone(image[addr : addr+INSTRUCTION]),
		})
	}

	if len(image)%INSTRUCTION != 0 {
		addr := len(image) - 1
		prog.Statements = append(prog.Statements, Statement{
			Addr:  addr,
			Words: []string{".byte", fmt.Sprintf("0x%02x", image[addr])},
			Bytes: []uint8{image[addr]},
		})
	}

	return
}

// Debug returns the statement that assembled the byte at addr, and the
// byte index within it. The Statement is nil if no statement covers addr.
func (prog *Program) Debug(addr uint8) (dbg Debug) {
	for n, stmt := range prog.Statements {
		if int(addr) >= stmt.Addr && int(addr) < stmt.Addr+len(stmt.Bytes) {
			dbg = Debug{
				Statement: &prog.Statements[n],
				Index:     int(addr) - stmt.Addr,
			}
			break
		}
	}

	return
}

// Binary returns the memory image of the program, from address zero to
// the last assembled byte. Gaps are zero.
func (prog *Program) Binary() (image []byte) {
	for addr, value := range prog.Bytes() {
		if int(addr) >= len(image) {
			image = append(image, make([]byte, int(addr)+1-len(image))...)
		}
		image[addr] = value
	}

	return
}

// Bytes iterates over every assembled byte and its address.
func (prog *Program) Bytes() iter.Seq2[uint8, uint8] {
	return func(yield func(addr uint8, value uint8) bool) {
		for _, stmt := range prog.Statements {
			for n, value := range stmt.Bytes {
				if !yield(uint8(stmt.Addr+n), value) {
					return
				}
			}
		}
	}
}

// Disassemble decodes a memory image, two bytes at a time, from address
// zero. A trailing odd byte is not an instruction, and is not yielded.
func Disassemble(image []byte) iter.Seq2[int, Opcode] {
	return func(yield func(addr int, op Opcode) bool) {
		for addr := 0; addr+INSTRUCTION <= len(image); addr += INSTRUCTION {
			if !yield(addr, Decode(MakeCodeBytes(image[addr], image[addr+1]))) {
				return
			}
		}
	}
}
