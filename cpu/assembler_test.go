package cpu

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := asm.Parse(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(0, len(prog.Statements))

	assert.Equal("0", asm.Equate["LINENO"])
	assert.Equal(fmt.Sprintf("%v", MEMORY_SIZE), asm.Equate["MEMORY_SIZE"])
	assert.Equal(fmt.Sprintf("%v", REGISTER_COUNT), asm.Equate["REGISTER_COUNT"])
}

func stmtEqual(t *testing.T, expected, statements []Statement) {
	assert := assert.New(t)

	assert.Equal(len(expected), len(statements))
	if len(expected) == len(statements) {
		for n := range len(expected) {
			assert.Equal(expected[n], statements[n])
		}
	}
}

func TestAssemblerOpcodes(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	program := []string{
		"load r1 0x20",
		"loadi r2 -1",
		"store r3, 0x44",
		"move r4 r5",
		"addi r1 r2 r3",
		"addf rA rB rC",
		"or r4 r5 r6",
		"and r7 r8 r9",
		"xor r15 r14 r13",
		"ror r2 3",
		"jmpeq r6 0x10",
		"jump 0x30",
		"halt",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
		return
	}

	expected := []Statement{
		{1, 0x00, []string{"load", "r1", "0x20"}, []uint8{0x11, 0x20}, "", 0},
		{2, 0x02, []string{"loadi", "r2", "-1"}, []uint8{0x22, 0xff}, "", 0},
		{3, 0x04, []string{"store", "r3", "0x44"}, []uint8{0x33, 0x44}, "", 0},
		{4, 0x06, []string{"move", "r4", "r5"}, []uint8{0x40, 0x45}, "", 0},
		{5, 0x08, []string{"addi", "r1", "r2", "r3"}, []uint8{0x51, 0x23}, "", 0},
		{6, 0x0a, []string{"addf", "rA", "rB", "rC"}, []uint8{0x6a, 0xbc}, "", 0},
		{7, 0x0c, []string{"or", "r4", "r5", "r6"}, []uint8{0x74, 0x56}, "", 0},
		{8, 0x0e, []string{"and", "r7", "r8", "r9"}, []uint8{0x87, 0x89}, "", 0},
		{9, 0x10, []string{"xor", "r15", "r14", "r13"}, []uint8{0x9f, 0xed}, "", 0},
		{10, 0x12, []string{"ror", "r2", "3"}, []uint8{0xa2, 0x03}, "", 0},
		{11, 0x14, []string{"jmpeq", "r6", "0x10"}, []uint8{0xb6, 0x10}, "", 0},
		{12, 0x16, []string{"jump", "0x30"}, []uint8{0xb0, 0x30}, "", 0},
		{13, 0x18, []string{"halt"}, []uint8{0xc0, 0x00}, "", 0},
	}

	stmtEqual(t, expected, prog.Statements)
}

func TestAssemblerData(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	program := []string{
		"20 2 52 23 192 0",
		"0x14 0x02 0x34 0x17 0xC0 0x00",
		".byte 'A' '\\n' ~0",
		".word 0xd302 -2",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
		return
	}

	assert.Equal([]uint8{
		20, 2, 52, 23, 192, 0,
		0x14, 0x02, 0x34, 0x17, 0xc0, 0x00,
		'A', '\n', 0xff,
		0xd3, 0x02, 0xff, 0xfe,
	}, prog.Binary())
}

func TestAssemblerEqu(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("OUTPUT", "0x80")
	program := []string{
		".equ COUNTER r3",
		".equ START 0x10",
		"loadi COUNTER START",
		"store COUNTER OUTPUT",
		"loadi r0 $(START * 2 + 1)",
		"loadi r1 $(LINENO)",
		"loadi r2 $(MEMORY_SIZE - 1)",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
		return
	}

	assert.Equal([]uint8{
		0x23, 0x10,
		0x33, 0x80,
		0x20, 0x21,
		0x21, 0x06,
		0x22, 0xff,
	}, prog.Binary())
}

func TestAssemblerMacro(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	program := []string{
		".macro SETADD rn a b",
		"loadi rn a",
		"addi rn b rn",
		".endm",
		"SETADD r1 8 r2",
		".equ CONST_10 0x10",
		"SETADD r3 CONST_10 r4",
		"SETADD r5 $(CONST_10 + CONST_10) r0",
		".macro WAIT reg",
		"@loop: jmpeq reg @done",
		"jump @loop",
		"@done:",
		".endm",
		"WAIT r1",
		"WAIT r2",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
		return
	}

	assert.Equal([]uint8{
		0x21, 0x08, 0x51, 0x21,
		0x23, 0x10, 0x53, 0x43,
		0x25, 0x20, 0x55, 0x05,
		0xb1, 0x10, 0xb0, 0x0c, // WAIT r1
		0xb2, 0x14, 0xb0, 0x10, // WAIT r2
	}, prog.Binary())

	// Macro statements report the macro's line.
	assert.Equal(2, prog.Statements[0].LineNo)
	assert.Equal(3, prog.Statements[1].LineNo)
}

func TestAssemblerLabel(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	program := []string{
		"start: loadi r0 0",
		"jmpeq r0 end",
		"table: .byte 0 end",
		"end: halt",
		"jump $(table + 1)",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
		return
	}

	assert.Equal(0, asm.Label["start"])
	assert.Equal(4, asm.Label["table"])
	assert.Equal(6, asm.Label["end"])
	assert.Equal([]uint8{
		0x20, 0x00,
		0xb0, 0x06,
		0x00, 0x06,
		0xc0, 0x00,
		0xb0, 0x05,
	}, prog.Binary())

	assert.Equal("end", prog.Statements[1].LinkLabel)
	assert.Equal(1, prog.Statements[1].LinkIndex)
}

func TestAssemblerOrg(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	program := []string{
		"jump main",
		".org 0x10",
		"main: halt",
		".org 0xfe",
		".byte 1 2",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
		return
	}

	image := prog.Binary()
	assert.Equal(MEMORY_SIZE, len(image))
	assert.Equal([]uint8{0xb0, 0x10}, image[0:2])
	assert.Equal([]uint8{0xc0, 0x00}, image[0x10:0x12])
	assert.Equal([]uint8{1, 2}, image[0xfe:])

	dbg := prog.Debug(0x11)
	assert.NotNil(dbg.Statement)
	assert.Equal(3, dbg.LineNo)
	assert.Equal(1, dbg.Index)
}

func TestAssemblerErrSyntax(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	// Various syntax errors
	table := [](struct {
		prog string
		line int
		err  error
	}){
		{"DUP:\nDUP:\n", 2, ErrLabelDuplicate},
		{"1BAD: halt", 1, ErrLabelInvalid},
		{"load r0 nowhere", 1, ErrLabelMissing("nowhere")},
		{"load r0 $(\"aaa\")", 1, nil},
		{"load r0 $(more(\"aaa\"))", 1, nil},
		{"load r0 $(0x10000000000000000)", 1, nil},
		{"load r0 0x100", 1, ErrValueRange},
		{"loadi r0 -129", 1, ErrValueRange},
		{"load r16 0", 1, ErrRegisterInvalid},
		{"load r0", 1, ErrOpcodeValueMissing},
		{"load r0 1 2", 1, ErrOpcodeExtraArgs},
		{"store x 1", 1, ErrRegisterInvalid},
		{"move r0", 1, ErrOpcodeValueMissing},
		{"move r0 r1 r2", 1, ErrOpcodeExtraArgs},
		{"move r0 1", 1, ErrRegisterInvalid},
		{"addi r0 r1", 1, ErrOpcodeValueMissing},
		{"addi r0 r1 r2 r3", 1, ErrOpcodeExtraArgs},
		{"xor r0 r1 0", 1, ErrRegisterInvalid},
		{"ror r0 16", 1, ErrValueRange},
		{"ror r0", 1, ErrOpcodeValueMissing},
		{"halt now", 1, ErrOpcodeExtraArgs},
		{"jump", 1, ErrInstructionInvalid},
		{"nop", 1, ErrInstructionInvalid},
		{".equ", 1, ErrEquateSyntax},
		{".equ A", 1, ErrEquateSyntax},
		{".equ A 1\n.equ A 2\n", 2, ErrEquateDuplicate},
		{".org", 1, ErrOrgSyntax},
		{".org 0x100", 1, ErrAddressRange},
		{".org 0xff\nhalt", 2, ErrAddressRange},
		{"halt\n.org 0\nhalt", 3, ErrAddressOverlap},
		{".byte", 1, ErrOpcodeValueMissing},
		{".byte 256", 1, ErrValueRange},
		{".byte a b", 1, ErrOpcodeExtraArgs},
		{".word 0x10000", 1, ErrValueRange},
		{"0x1402", 1, ErrValueRange},
		{"0x14 0x02\n-200 1", 2, ErrValueRange},
		{".macro A B C\n.endm\nA 1\n", 3, ErrMacroSyntax},
		{".macro A B\n.macro C\n.endm\n.endm", 2, ErrMacroNesting},
		{".macro A B\n.endm\n.macro A\n.endm\n", 3, ErrMacroDuplicate},
		{".macro A B\n.endm\n.endm\n", 3, ErrMacroLonelyEndm},
		{".macro A\nhalt\n", 2, ErrMacroLonely},
		{".macro A B\nB\n.endm\nA halt\nA nop\n", 5, ErrInstructionInvalid},
	}

	for _, entry := range table {
		_, err := asm.Parse(strings.NewReader(entry.prog))
		var se *ErrSyntax
		assert.NotNil(err, entry.prog)
		if err != nil {
			assert.True(errors.As(err, &se), entry.prog)
			assert.Equal(entry.line, se.LineNo, entry.prog)
			if entry.err != nil {
				assert.ErrorIs(err, entry.err, entry.prog)
			}
		}
	}
}

func TestAssemblerDisassemble(t *testing.T) {
	assert := assert.New(t)

	image := []uint8{
		0x11, 0x20, 0x22, 0xff, 0x33, 0x44, 0x40, 0x45,
		0x51, 0x23, 0x6a, 0xbc, 0x74, 0x56, 0x87, 0x89,
		0x9f, 0xed, 0xa2, 0x03, 0xb6, 0x10, 0xd3, 0x02,
		0xc1, 0x00, 0xc0, 0x00,
	}

	var lines []string
	for _, op := range Disassemble(image) {
		lines = append(lines, op.String())
	}

	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader(strings.Join(lines, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
		return
	}

	assert.Equal(image, prog.Binary())

	// Odd length images list the trailing byte as data.
	for _, odd := range [][]uint8{{0xc0}, {0x20, 0x01, 0xc0}, append(image, 0xb0)} {
		lines = lines[:0]
		for _, stmt := range NewProgram(odd).Statements {
			lines = append(lines, strings.Join(stmt.Words, " "))
		}

		prog, err = asm.Parse(strings.NewReader(strings.Join(lines, "\n")))
		assert.NoError(err, lines)
		if err == nil {
			assert.Equal(odd, prog.Binary(), lines)
		}
	}
}
