// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":         "0",
	"MEMORY_SIZE":    fmt.Sprintf("%v", MEMORY_SIZE),
	"REGISTER_COUNT": fmt.Sprintf("%v", REGISTER_COUNT),
}

// Assembler is a single pass macro assembler for the Vole machine.
type Assembler struct {
	Verbose   bool        // If set, verbosely logs the assembler actions.
	Statement []Statement // List of generated statements.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	addr int // Address of the next statement.
}

// Predefine defines a new equate or redefines an existing equate, for
// all following calls to Parse.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// regMap is a map of register names to register indexes.
var regMap = func() map[string]uint8 {
	regs := make(map[string]uint8, 2*REGISTER_COUNT)
	for n := range uint8(REGISTER_COUNT) {
		regs[fmt.Sprintf("r%d", n)] = n
		regs[fmt.Sprintf("r%x", n)] = n
	}
	return regs
}()

var reLabel = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// valueOf returns the value of a simple word, which must fit in width bits
// either signed or unsigned.
func (asm *Assembler) valueOf(word string, width int) (value uint32, err error) {
	invert := false
	if len(word) > 0 && word[0] == '~' {
		invert = true
		word = word[1:]
	}
	if len(word) == 0 {
		err = ErrParseNumber(word)
		return
	}
	if word[0] == '\'' {
		// Character quotes should have been expanded into
		// values in parseLine()
		err = ErrParseCharacter(strings.Trim(word, "'"))
		return
	}
	v64, err := strconv.ParseInt(word, 0, 64)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	limit := int64(1) << width
	if v64 >= limit || v64 < -(limit/2) {
		err = ErrValueRange
		return
	}

	mask := uint32(limit - 1)
	value = uint32(v64) & mask

	if invert {
		value = ^value & mask
	}

	return
}

// register returns the index of a register name.
func (asm *Assembler) register(word string) (reg uint8, err error) {
	reg, ok := regMap[strings.ToLower(word)]
	if !ok {
		err = ErrRegisterInvalid
	}
	return
}

// byteOrLabel returns an 8-bit value, or the label to link it to.
func (asm *Assembler) byteOrLabel(word string) (value uint8, label string, err error) {
	v32, err := asm.valueOf(word, 8)
	var nan ErrParseNumber
	if errors.As(err, &nan) && reLabel.MatchString(word) {
		err = nil
		label = word
		return
	}

	value = uint8(v32)
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, addr := range asm.Label {
		pred[key] = starlark.MakeInt(addr)
	}
	for key, str := range asm.Equate {
		var v64 int64
		v64, err = strconv.ParseInt(str, 0, 64)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt64(v64)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = errors.Join(ErrParseExpression(expr), err)
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

// parseLine parses a single line into words, handling equates, labels
// and macro expansion.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	re := regexp.MustCompile(`'\\?[^']'`)
	line = re.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "t":
				str = "\t"
			case "0":
				str = "\x00"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	re = regexp.MustCompile(`\$\([^\$]*\)`)
	line = re.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%d", value)
	})
	if err != nil {
		return
	}

	words = strings.Fields(strings.ReplaceAll(line, ",", " "))

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		if !reLabel.MatchString(label) {
			err = ErrLabelInvalid
			return
		}
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]int, 16)
		}
		asm.Label[label] = asm.addr
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = words[1+n]
		}
		defer func() { asm.Equate = old_equate }()

		// Each expansion gets its own '@' prefix, so local labels
		// do not collide between expansions.
		prefix := fmt.Sprintf("%v_%v_%v_", name, lineno, asm.addr)

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", prefix)
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				return
			}

			err = asm.parseWords(words, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Statement = asm.Statement[:0]
	asm.addr = 0
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text, _, _ = strings.Cut(text, ";")
		text, _, _ = strings.Cut(text, "//")
		line = strings.TrimSpace(text)
		words := strings.Fields(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of labels.
	for n := range asm.Statement {
		stmt := &asm.Statement[n]

		if len(stmt.LinkLabel) == 0 {
			continue
		}
		lineno = stmt.LineNo
		line = strings.Join(stmt.Words, " ")
		addr, ok := asm.Label[stmt.LinkLabel]
		if !ok {
			err = ErrLabelMissing(stmt.LinkLabel)
			return
		}
		if addr >= MEMORY_SIZE {
			err = ErrAddressRange
			return
		}
		stmt.Bytes[stmt.LinkIndex] = uint8(addr)
	}

	// Check that no two statements share an address.
	var used [MEMORY_SIZE]bool
	for _, stmt := range asm.Statement {
		for n := range stmt.Bytes {
			if used[stmt.Addr+n] {
				lineno = stmt.LineNo
				line = strings.Join(stmt.Words, " ")
				err = ErrAddressOverlap
				return
			}
			used[stmt.Addr+n] = true
		}
	}

	prog = &Program{
		Statements: slices.Clone(asm.Statement),
	}

	return
}

// aluMap maps the three register opcode names.
var aluMap = map[string]CodeOp{
	OP_ADD_INT.String():   OP_ADD_INT,
	OP_ADD_FLOAT.String(): OP_ADD_FLOAT,
	OP_OR.String():        OP_OR,
	OP_AND.String():       OP_AND,
	OP_XOR.String():       OP_XOR,
}

// xyMap maps the register and address opcode names.
var xyMap = map[string]CodeOp{
	OP_LOAD_MEMORY.String():    OP_LOAD_MEMORY,
	OP_LOAD_IMMEDIATE.String(): OP_LOAD_IMMEDIATE,
	OP_STORE.String():          OP_STORE,
	OP_JUMP_EQUAL.String():     OP_JUMP_EQUAL,
}

// xyErr maps the register and address opcodes to their error class.
var xyErr = map[CodeOp]error{
	OP_LOAD_MEMORY:    ErrOpcodeLoad,
	OP_LOAD_IMMEDIATE: ErrOpcodeLoad,
	OP_STORE:          ErrOpcodeStore,
	OP_JUMP_EQUAL:     ErrOpcodeJump,
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var bytes []uint8
	var label string
	var link int

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words
	addr := asm.addr

	defer func() {
		if err != nil || len(bytes) == 0 {
			return
		}
		if addr+len(bytes) > MEMORY_SIZE {
			err = ErrAddressRange
			return
		}
		stmt := Statement{LineNo: lineno, Addr: addr, Words: initial_words, Bytes: bytes, LinkLabel: label, LinkIndex: link}
		asm.Statement = append(asm.Statement, stmt)
		asm.addr = addr + len(bytes)
	}()

	// Alternate syntax substitutions
	switch {
	case len(words) == 2 && words[0] == "jump":
		// jump XY => jmpeq r0 XY
		words = []string{OP_JUMP_EQUAL.String(), "r0", words[1]}
	case len(words) > 0 && words[0] != ".byte":
		_, err_num := asm.valueOf(words[0], 8)
		if err_num == nil {
			// 0x14 0x02 ... => .byte 0x14 0x02 ...
			words = append([]string{".byte"}, words...)
		} else if errors.Is(err_num, ErrValueRange) {
			// A number, but not a byte.
			err = err_num
			return
		}
	}

	// ALU opcodes
	if op, ok := aluMap[words[0]]; ok {
		if len(words) < 4 {
			err = errors.Join(ErrOpcodeAlu, ErrOpcodeValueMissing)
			return
		}
		if len(words) > 4 {
			err = errors.Join(ErrOpcodeAlu, ErrOpcodeExtraArgs)
			return
		}
		var regs [3]uint8
		for n, arg_err := range []error{ErrOpcodeArg1, ErrOpcodeArg2, ErrOpcodeArg3} {
			regs[n], err = asm.register(words[1+n])
			if err != nil {
				err = errors.Join(ErrOpcodeAlu, arg_err, err)
				return
			}
		}
		code := MakeCode(op, regs[0], regs[1], regs[2]).Bytes()
		bytes = code[:]
		return
	}

	// Register and address/immediate opcodes
	if op, ok := xyMap[words[0]]; ok {
		op_err := xyErr[op]
		if len(words) < 3 {
			err = errors.Join(op_err, ErrOpcodeValueMissing)
			return
		}
		if len(words) > 3 {
			err = errors.Join(op_err, ErrOpcodeExtraArgs)
			return
		}
		var reg, xy uint8
		reg, err = asm.register(words[1])
		if err != nil {
			err = errors.Join(op_err, ErrOpcodeArg1, err)
			return
		}
		xy, label, err = asm.byteOrLabel(words[2])
		if err != nil {
			err = errors.Join(op_err, ErrOpcodeArg2, err)
			return
		}
		code := MakeCodeXY(op, reg, xy).Bytes()
		bytes = code[:]
		if len(label) != 0 {
			link = 1
		}
		return
	}

	switch words[0] {
	case OP_MOVE.String():
		if len(words) < 3 {
			err = errors.Join(ErrOpcodeMove, ErrOpcodeValueMissing)
			return
		}
		if len(words) > 3 {
			err = errors.Join(ErrOpcodeMove, ErrOpcodeExtraArgs)
			return
		}
		var src, dst uint8
		src, err = asm.register(words[1])
		if err != nil {
			err = errors.Join(ErrOpcodeMove, ErrOpcodeArg1, err)
			return
		}
		dst, err = asm.register(words[2])
		if err != nil {
			err = errors.Join(ErrOpcodeMove, ErrOpcodeArg2, err)
			return
		}
		code := Move{Src: src, Dst: dst}.Code().Bytes()
		bytes = code[:]
	case OP_ROTATE.String():
		if len(words) < 3 {
			err = errors.Join(ErrOpcodeRotate, ErrOpcodeValueMissing)
			return
		}
		if len(words) > 3 {
			err = errors.Join(ErrOpcodeRotate, ErrOpcodeExtraArgs)
			return
		}
		var reg uint8
		reg, err = asm.register(words[1])
		if err != nil {
			err = errors.Join(ErrOpcodeRotate, ErrOpcodeArg1, err)
			return
		}
		var count uint32
		count, err = asm.valueOf(words[2], 8)
		if err == nil && count > 0xf {
			err = ErrValueRange
		}
		if err != nil {
			err = errors.Join(ErrOpcodeRotate, ErrOpcodeArg2, err)
			return
		}
		code := Rotate{Reg: reg, Count: uint8(count)}.Code().Bytes()
		bytes = code[:]
	case OP_HALT.String():
		if len(words) > 1 {
			err = ErrOpcodeExtraArgs
			return
		}
		code := Halt{}.Code().Bytes()
		bytes = code[:]
	case ".org":
		if len(words) != 2 {
			err = ErrOrgSyntax
			return
		}
		var org uint32
		org, err = asm.valueOf(words[1], 16)
		if err != nil {
			return
		}
		if org >= MEMORY_SIZE {
			err = ErrAddressRange
			return
		}
		asm.addr = int(org)
	case ".byte":
		if len(words) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		for n, word := range words[1:] {
			var value uint8
			var value_label string
			value, value_label, err = asm.byteOrLabel(word)
			if err != nil {
				return
			}
			if len(value_label) != 0 {
				if len(label) != 0 {
					// Only one label per statement.
					err = ErrOpcodeExtraArgs
					return
				}
				label = value_label
				link = n
			}
			bytes = append(bytes, value)
		}
	case ".word":
		if len(words) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		for _, word := range words[1:] {
			var value uint32
			value, err = asm.valueOf(word, 16)
			if err != nil {
				return
			}
			code := Code(value).Bytes()
			bytes = append(bytes, code[:]...)
		}
	default:
		err = ErrInstructionInvalid
		return
	}

	return
}
