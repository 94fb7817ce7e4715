package cpu

// CodeOp is the operation selector in the top nibble of an instruction.
type CodeOp int

//go:generate go tool stringer -linecomment -type=CodeOp
const (
	OP_LOAD_MEMORY    = CodeOp(0x1) // load
	OP_LOAD_IMMEDIATE = CodeOp(0x2) // loadi
	OP_STORE          = CodeOp(0x3) // store
	OP_MOVE           = CodeOp(0x4) // move
	OP_ADD_INT        = CodeOp(0x5) // addi
	OP_ADD_FLOAT      = CodeOp(0x6) // addf
	OP_OR             = CodeOp(0x7) // or
	OP_AND            = CodeOp(0x8) // and
	OP_XOR            = CodeOp(0x9) // xor
	OP_ROTATE         = CodeOp(0xa) // ror
	OP_JUMP_EQUAL     = CodeOp(0xb) // jmpeq
	OP_HALT           = CodeOp(0xc) // halt
)

// Legal returns true if the selector names one of the twelve operations.
func (op CodeOp) Legal() bool {
	return op >= OP_LOAD_MEMORY && op <= OP_HALT
}

// Code is a single 16-bit instruction word.
//
//	15..12  11..8  7..4  3..0
//	  op      r     s     t
//	  op      r     xy  xy
type Code uint16

// MakeCode creates an instruction word from a selector and three nibbles.
func MakeCode(op CodeOp, r, s, t uint8) Code {
	return Code((uint16(op)&0xf)<<12 | (uint16(r)&0xf)<<8 | (uint16(s)&0xf)<<4 | (uint16(t) & 0xf))
}

// MakeCodeXY creates an instruction word from a selector, a register
// nibble, and an 8-bit address or immediate.
func MakeCodeXY(op CodeOp, r uint8, xy uint8) Code {
	return Code((uint16(op)&0xf)<<12 | (uint16(r)&0xf)<<8 | uint16(xy))
}

// MakeCodeBytes joins the two bytes of an instruction, high byte first.
func MakeCodeBytes(hi, lo uint8) Code {
	return Code(uint16(hi)<<8 | uint16(lo))
}

// Op returns the operation selector.
func (code Code) Op() CodeOp {
	return CodeOp((code >> 12) & 0xf)
}

// R returns the first operand nibble.
func (code Code) R() uint8 {
	return uint8((code >> 8) & 0xf)
}

// S returns the second operand nibble.
func (code Code) S() uint8 {
	return uint8((code >> 4) & 0xf)
}

// T returns the third operand nibble.
func (code Code) T() uint8 {
	return uint8((code >> 0) & 0xf)
}

// XY returns the low byte, used as an address or an immediate.
func (code Code) XY() uint8 {
	return uint8(code & 0xff)
}

// Bytes returns the instruction as it is laid out in memory.
func (code Code) Bytes() [2]uint8 {
	return [2]uint8{uint8(code >> 8), uint8(code)}
}
