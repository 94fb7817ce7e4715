package cpu

import (
	"errors"

	"github.com/ezrec/vole/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrHalted    = errors.New(f("cpu halted"))
	ErrImageSize = errors.New(f("image larger than memory"))

	// Instruction encode errors
	ErrOpcodeLoad   = errors.New(f("load"))
	ErrOpcodeStore  = errors.New(f("store"))
	ErrOpcodeMove   = errors.New(f("move"))
	ErrOpcodeAlu    = errors.New(f("alu"))
	ErrOpcodeRotate = errors.New(f("rotate"))
	ErrOpcodeJump   = errors.New(f("jump"))
	ErrOpcodeArg1   = errors.New(f("arg1"))
	ErrOpcodeArg2   = errors.New(f("arg2"))
	ErrOpcodeArg3   = errors.New(f("arg3"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrOrgSyntax          = errors.New(f(".org syntax"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrLabelInvalid       = errors.New(f("label invalid"))
	ErrMacroSyntax        = errors.New(f(".macro syntax"))
	ErrMacroNesting       = errors.New(f(".macro in .macro prohibited"))
	ErrMacroDuplicate     = errors.New(f(".macro duplicated"))
	ErrMacroLonely        = errors.New(f(".macro without .endm"))
	ErrMacroLonelyEndm    = errors.New(f(".endm without .macro"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrRegisterInvalid    = errors.New(f("register invalid"))
	ErrValueRange         = errors.New(f("value out of range"))
	ErrAddressRange       = errors.New(f("address beyond end of memory"))
	ErrAddressOverlap     = errors.New(f("address already assembled"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
)

// ErrIllegal reports an instruction word that does not decode to a legal
// opcode, and the address it was fetched from.
type ErrIllegal struct {
	Pc   uint8
	Word Code
}

func (ei ErrIllegal) Error() string {
	return f("illegal instruction at address 0x%02x: 0x%04x", ei.Pc, uint16(ei.Word))
}

// Is matches any ErrIllegal, so errors.Is(err, ErrIllegal{}) tests for the
// class of error.
func (ei ErrIllegal) Is(err error) (ok bool) {
	_, ok = err.(ErrIllegal)
	return
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseCharacter string

func (err ErrParseCharacter) Error() string {
	return f("'%v' is not a character", string(err))
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrMacro struct {
	Macro string
	Line  int
	Err   error
}

func (err ErrMacro) Error() string {
	return f("macro %v line %v %v", err.Macro, err.Line, err.Err.Error())
}

func (err ErrMacro) Unwrap() error {
	return err.Err
}
