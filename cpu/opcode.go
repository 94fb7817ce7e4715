package cpu

import (
	"fmt"
)

// Opcode is a decoded instruction. The set of implementations is closed:
// one type per operation, plus Illegal for words that do not decode.
type Opcode interface {
	// Op returns the operation selector.
	Op() CodeOp
	// Code re-encodes the instruction word.
	Code() Code
	// String returns the assembly language representation.
	String() string

	opcode()
}

// LoadMemory loads register Reg from memory at Addr.
type LoadMemory struct {
	Reg  uint8
	Addr uint8
}

// LoadImmediate loads register Reg with Value.
type LoadImmediate struct {
	Reg   uint8
	Value uint8
}

// Store stores register Reg into memory at Addr.
type Store struct {
	Reg  uint8
	Addr uint8
}

// Move copies register Src into register Dst.
type Move struct {
	Src uint8
	Dst uint8
}

// AddInt adds registers R and S as two's complement bytes into T.
type AddInt struct {
	R, S, T uint8
}

// AddFloat adds registers R and S as Floating values into T.
type AddFloat struct {
	R, S, T uint8
}

// Or sets T to R | S.
type Or struct {
	R, S, T uint8
}

// And sets T to R & S.
type And struct {
	R, S, T uint8
}

// Xor sets T to R ^ S.
type Xor struct {
	R, S, T uint8
}

// Rotate rotates register Reg right by Count bits.
type Rotate struct {
	Reg   uint8
	Count uint8
}

// JumpEqual jumps to Addr if register Reg equals register r0.
type JumpEqual struct {
	Reg  uint8
	Addr uint8
}

// Halt stops the machine.
type Halt struct{}

// Illegal is any word that does not decode to an operation.
type Illegal struct {
	Word Code
}

// Decode an instruction word. Every word decodes to exactly one Opcode.
func Decode(code Code) Opcode {
	switch code.Op() {
	case OP_LOAD_MEMORY:
		return LoadMemory{Reg: code.R(), Addr: code.XY()}
	case OP_LOAD_IMMEDIATE:
		return LoadImmediate{Reg: code.R(), Value: code.XY()}
	case OP_STORE:
		return Store{Reg: code.R(), Addr: code.XY()}
	case OP_MOVE:
		return Move{Src: code.S(), Dst: code.T()}
	case OP_ADD_INT:
		return AddInt{R: code.R(), S: code.S(), T: code.T()}
	case OP_ADD_FLOAT:
		return AddFloat{R: code.R(), S: code.S(), T: code.T()}
	case OP_OR:
		return Or{R: code.R(), S: code.S(), T: code.T()}
	case OP_AND:
		return And{R: code.R(), S: code.S(), T: code.T()}
	case OP_XOR:
		return Xor{R: code.R(), S: code.S(), T: code.T()}
	case OP_ROTATE:
		return Rotate{Reg: code.R(), Count: code.T()}
	case OP_JUMP_EQUAL:
		return JumpEqual{Reg: code.R(), Addr: code.XY()}
	case OP_HALT:
		// 0xC000 is the only halt.
		if code&0x0fff == 0 {
			return Halt{}
		}
	}

	return Illegal{Word: code}
}

func (LoadMemory) Op() CodeOp    { return OP_LOAD_MEMORY }
func (LoadImmediate) Op() CodeOp { return OP_LOAD_IMMEDIATE }
func (Store) Op() CodeOp         { return OP_STORE }
func (Move) Op() CodeOp          { return OP_MOVE }
func (AddInt) Op() CodeOp        { return OP_ADD_INT }
func (AddFloat) Op() CodeOp      { return OP_ADD_FLOAT }
func (Or) Op() CodeOp            { return OP_OR }
func (And) Op() CodeOp           { return OP_AND }
func (Xor) Op() CodeOp           { return OP_XOR }
func (Rotate) Op() CodeOp        { return OP_ROTATE }
func (JumpEqual) Op() CodeOp     { return OP_JUMP_EQUAL }
func (Halt) Op() CodeOp          { return OP_HALT }
func (op Illegal) Op() CodeOp    { return op.Word.Op() }

func (op LoadMemory) Code() Code    { return MakeCodeXY(OP_LOAD_MEMORY, op.Reg, op.Addr) }
func (op LoadImmediate) Code() Code { return MakeCodeXY(OP_LOAD_IMMEDIATE, op.Reg, op.Value) }
func (op Store) Code() Code         { return MakeCodeXY(OP_STORE, op.Reg, op.Addr) }
func (op Move) Code() Code          { return MakeCode(OP_MOVE, 0, op.Src, op.Dst) }
func (op AddInt) Code() Code        { return MakeCode(OP_ADD_INT, op.R, op.S, op.T) }
func (op AddFloat) Code() Code      { return MakeCode(OP_ADD_FLOAT, op.R, op.S, op.T) }
func (op Or) Code() Code            { return MakeCode(OP_OR, op.R, op.S, op.T) }
func (op And) Code() Code           { return MakeCode(OP_AND, op.R, op.S, op.T) }
func (op Xor) Code() Code           { return MakeCode(OP_XOR, op.R, op.S, op.T) }
func (op Rotate) Code() Code        { return MakeCode(OP_ROTATE, op.Reg, 0, op.Count) }
func (op JumpEqual) Code() Code     { return MakeCodeXY(OP_JUMP_EQUAL, op.Reg, op.Addr) }
func (Halt) Code() Code             { return MakeCode(OP_HALT, 0, 0, 0) }
func (op Illegal) Code() Code       { return op.Word }

// formatRST formats the three register form shared by the ALU opcodes.
func formatRST(op CodeOp, r, s, t uint8) string {
	return fmt.Sprintf("%v r%d r%d r%d", op, r, s, t)
}

func (op LoadMemory) String() string {
	return fmt.Sprintf("%v r%d 0x%02x", OP_LOAD_MEMORY, op.Reg, op.Addr)
}

func (op LoadImmediate) String() string {
	return fmt.Sprintf("%v r%d 0x%02x", OP_LOAD_IMMEDIATE, op.Reg, op.Value)
}

func (op Store) String() string {
	return fmt.Sprintf("%v r%d 0x%02x", OP_STORE, op.Reg, op.Addr)
}

func (op Move) String() string {
	return fmt.Sprintf("%v r%d r%d", OP_MOVE, op.Src, op.Dst)
}

func (op AddInt) String() string   { return formatRST(OP_ADD_INT, op.R, op.S, op.T) }
func (op AddFloat) String() string { return formatRST(OP_ADD_FLOAT, op.R, op.S, op.T) }
func (op Or) String() string       { return formatRST(OP_OR, op.R, op.S, op.T) }
func (op And) String() string      { return formatRST(OP_AND, op.R, op.S, op.T) }
func (op Xor) String() string      { return formatRST(OP_XOR, op.R, op.S, op.T) }

func (op Rotate) String() string {
	return fmt.Sprintf("%v r%d %d", OP_ROTATE, op.Reg, op.Count)
}

func (op JumpEqual) String() string {
	return fmt.Sprintf("%v r%d 0x%02x", OP_JUMP_EQUAL, op.Reg, op.Addr)
}

func (Halt) String() string {
	return OP_HALT.String()
}

func (op Illegal) String() string {
	return fmt.Sprintf(".word 0x%04x", uint16(op.Word))
}

func (LoadMemory) opcode()    {}
func (LoadImmediate) opcode() {}
func (Store) opcode()         {}
func (Move) opcode()          {}
func (AddInt) opcode()        {}
func (AddFloat) opcode()      {}
func (Or) opcode()            {}
func (And) opcode()           {}
func (Xor) opcode()           {}
func (Rotate) opcode()        {}
func (JumpEqual) opcode()     {}
func (Halt) opcode()          {}
func (Illegal) opcode()       {}
