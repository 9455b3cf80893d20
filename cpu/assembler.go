// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Assembler is a single pass macro assembler for CHIP-8 programs.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string   // Predefines
	origin    int                 // Address of the next opcode.
	Label     map[string]int      // Map of jump labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.
}

var (
	reLabel     = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)
	reCharacter = regexp.MustCompile(`'\\?[^']'`)
	reParen     = regexp.MustCompile(`\$\([^\$]*\)`)
)

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// splitWords splits a line on whitespace and commas.
func splitWords(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

// registerOf decodes a V register name.
func registerOf(word string) (x uint8, ok bool) {
	if len(word) != 2 || (word[0] != 'v' && word[0] != 'V') {
		return
	}

	v, err := strconv.ParseUint(word[1:], 16, 4)
	if err != nil {
		return
	}

	return uint8(v), true
}

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value int, err error) {
	if word[0] == '\'' && len(word) > 1 {
		// Character quotes should have been expanded into
		// values in parseLine()
		err = ErrParseCharacter(word[1 : len(word)-1])
		return
	}

	text := word
	if strings.HasPrefix(text, "#") {
		text = "0x" + text[1:]
	}

	v64, err := strconv.ParseInt(text, 0, 32)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	value = int(v64)
	return
}

// byteOf returns the value of a byte operand; negative values are
// two's complement.
func (asm *Assembler) byteOf(word string) (value uint8, err error) {
	v, err := asm.valueOf(word)
	if err != nil {
		return
	}

	if v < -0x80 || v > 0xff {
		err = ErrOpcodeRange
		return
	}

	value = uint8(v)
	return
}

// nibbleOf returns the value of a 4-bit operand.
func (asm *Assembler) nibbleOf(word string) (value uint8, err error) {
	v, err := asm.valueOf(word)
	if err != nil {
		return
	}

	if v < 0 || v > 0xf {
		err = ErrOpcodeRange
		return
	}

	value = uint8(v)
	return
}

// addrOf returns the value of an address operand, or the label to link.
func (asm *Assembler) addrOf(word string) (addr uint16, label string, err error) {
	if reLabel.MatchString(word) {
		label = word
		return
	}

	v, err := asm.valueOf(word)
	if err != nil {
		return
	}

	if v < 0 || v >= MEMORY_SIZE {
		err = ErrOpcodeRange
		return
	}

	addr = uint16(v)
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var v int
		v, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt(v)
	}
	for key, addr := range asm.Label {
		pred[key] = starlark.MakeInt(addr)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
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
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = int(st_int64)
	return
}

// parseLine parses a single line as an opcode.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	line = reCharacter.ReplaceAllStringFunc(line, func(word string) string {
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
			case "e":
				str = "\033"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	line = reParen.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%d", value)
	})
	if err != nil {
		return
	}

	words = splitWords(line)

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
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]int, 16)
		}
		asm.Label[label] = asm.origin
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

		// Local labels are unique to each invocation.
		local := fmt.Sprintf("%v_%v_", name, lineno)

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", local)
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}

			err = asm.parseWords(words, macro.LineNo+n)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// Parse parses an input stream into a Program containing opcodes.
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
	asm.Opcode = asm.Opcode[:0]
	asm.origin = PROGRAM_BASE
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = maps.Clone(_cpu_defines)
	asm.Equate["LINENO"] = "0"
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])
		words := splitWords(line)

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

	// Final linking of jump labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		if len(op.LinkLabel) == 0 {
			continue
		}

		lineno = op.LineNo
		line = strings.Join(op.Words, " ")

		label := op.LinkLabel
		addr, ok := asm.Label[label]
		if !ok {
			err = ErrLabelMissing(label)
			return
		}
		if addr >= MEMORY_SIZE {
			err = ErrOpcodeRange
			return
		}
		word := binary.BigEndian.Uint16(op.Bytes) | uint16(addr)
		binary.BigEndian.PutUint16(op.Bytes, word)
	}

	prog = &Program{
		Opcodes: asm.Opcode,
	}
	asm.Opcode = nil

	return
}

// aluMap maps the register-to-register ALU mnemonics.
var aluMap = map[string]CodeAluOp{
	"or":   ALU_OP_OR,
	"and":  ALU_OP_AND,
	"xor":  ALU_OP_XOR,
	"sub":  ALU_OP_SUB,
	"subn": ALU_OP_SUBN,
	"shr":  ALU_OP_SHR,
	"shl":  ALU_OP_SHL,
}

// addrMap maps the mnemonics taking a single address.
var addrMap = map[string]CodeFamily{
	"sys":  OP_SYS,
	"jp":   OP_JP,
	"call": OP_CALL,
}

// checkArgs verifies the operand count of an instruction.
func checkArgs(args []string, min int, max int) (err error) {
	switch {
	case len(args) < min:
		err = ErrOpcodeValueMissing
	case len(args) > max:
		err = ErrOpcodeExtraArgs
	}
	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var data []byte
	var label string

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if err != nil || len(data) == 0 {
			return
		}
		if asm.origin+len(data) > MEMORY_SIZE {
			err = ErrLoadTooLarge
			return
		}
		opcode := Opcode{LineNo: lineno, Addr: asm.origin, Words: initial_words, Bytes: data, LinkLabel: label}
		asm.Opcode = append(asm.Opcode, opcode)
		asm.origin += len(data)
	}()

	args := words[1:]

	switch words[0] {
	case ".byte":
		err = checkArgs(args, 1, len(args))
		if err != nil {
			return
		}
		for _, arg := range args {
			var value uint8
			value, err = asm.byteOf(arg)
			if err != nil {
				return
			}
			data = append(data, value)
		}
	case ".word":
		err = checkArgs(args, 1, len(args))
		if err != nil {
			return
		}
		if len(args) == 1 && reLabel.MatchString(args[0]) {
			label = args[0]
			data = []byte{0, 0}
			return
		}
		for _, arg := range args {
			var value int
			value, err = asm.valueOf(arg)
			if err != nil {
				return
			}
			if value < -0x8000 || value > 0xffff {
				err = ErrOpcodeRange
				return
			}
			data = binary.BigEndian.AppendUint16(data, uint16(value))
		}
	case ".org":
		err = checkArgs(args, 1, 1)
		if err != nil {
			return
		}
		var value int
		value, err = asm.valueOf(args[0])
		if err != nil {
			return
		}
		if value > MEMORY_SIZE {
			err = ErrOpcodeRange
			return
		}
		if value < asm.origin {
			err = ErrOriginInvalid
			return
		}
		asm.origin = value
	default:
		var word uint16
		word, label, err = asm.encode(strings.ToLower(words[0]), args)
		if err != nil {
			return
		}
		data = binary.BigEndian.AppendUint16(data, word)
	}

	return
}

// encode assembles a single instruction.
func (asm *Assembler) encode(mnemonic string, args []string) (word uint16, label string, err error) {
	var x, y, nn uint8
	var addr uint16
	var ok bool

	switch mnemonic {
	case "cls", "ret":
		err = checkArgs(args, 0, 0)
		if err != nil {
			return
		}
		word = uint16(SYS_OP_CLS)
		if mnemonic == "ret" {
			word = uint16(SYS_OP_RET)
		}
	case "sys", "jp", "call":
		err = checkArgs(args, 1, 2)
		if err != nil {
			return
		}
		family := addrMap[mnemonic]
		if len(args) == 2 {
			// jp v0, addr
			x, ok = registerOf(args[0])
			if mnemonic != "jp" || !ok || x != 0 {
				err = ErrRegisterInvalid
				return
			}
			family = OP_JP_V0
			args = args[1:]
		}
		addr, label, err = asm.addrOf(args[0])
		if err != nil {
			return
		}
		word = MakeCodeAddr(family, addr)
	case "se", "sne":
		err = checkArgs(args, 2, 2)
		if err != nil {
			return
		}
		x, ok = registerOf(args[0])
		if !ok {
			err = ErrRegisterInvalid
			return
		}
		y, ok = registerOf(args[1])
		if ok {
			family := OP_SE_REG
			if mnemonic == "sne" {
				family = OP_SNE_REG
			}
			word = MakeCodeReg(family, x, y, 0)
			return
		}
		nn, err = asm.byteOf(args[1])
		if err != nil {
			return
		}
		family := OP_SE_IMM
		if mnemonic == "sne" {
			family = OP_SNE_IMM
		}
		word = MakeCodeImm(family, x, nn)
	case "ld":
		err = checkArgs(args, 2, 2)
		if err != nil {
			return
		}
		word, label, err = asm.encodeLd(args[0], args[1])
	case "add":
		err = checkArgs(args, 2, 2)
		if err != nil {
			return
		}
		if strings.ToLower(args[0]) == "i" {
			y, ok = registerOf(args[1])
			if !ok {
				err = ErrRegisterInvalid
				return
			}
			word = MakeCodeMisc(MISC_OP_ADD_I_VX, y)
			return
		}
		x, ok = registerOf(args[0])
		if !ok {
			err = ErrRegisterInvalid
			return
		}
		y, ok = registerOf(args[1])
		if ok {
			word = MakeCodeAlu(ALU_OP_ADD, x, y)
			return
		}
		nn, err = asm.byteOf(args[1])
		if err != nil {
			return
		}
		word = MakeCodeImm(OP_ADD_IMM, x, nn)
	case "or", "and", "xor", "sub", "subn", "shr", "shl":
		alu := aluMap[mnemonic]
		if alu == ALU_OP_SHR || alu == ALU_OP_SHL {
			err = checkArgs(args, 1, 2)
		} else {
			err = checkArgs(args, 2, 2)
		}
		if err != nil {
			return
		}
		x, ok = registerOf(args[0])
		if !ok {
			err = ErrRegisterInvalid
			return
		}
		// shr/shl with one operand shift in place under every variant.
		y = x
		if len(args) == 2 {
			y, ok = registerOf(args[1])
			if !ok {
				err = ErrRegisterInvalid
				return
			}
		}
		word = MakeCodeAlu(alu, x, y)
	case "rnd":
		err = checkArgs(args, 2, 2)
		if err != nil {
			return
		}
		x, ok = registerOf(args[0])
		if !ok {
			err = ErrRegisterInvalid
			return
		}
		nn, err = asm.byteOf(args[1])
		if err != nil {
			return
		}
		word = MakeCodeImm(OP_RND, x, nn)
	case "drw":
		err = checkArgs(args, 3, 3)
		if err != nil {
			return
		}
		x, ok = registerOf(args[0])
		if !ok {
			err = ErrRegisterInvalid
			return
		}
		y, ok = registerOf(args[1])
		if !ok {
			err = ErrRegisterInvalid
			return
		}
		nn, err = asm.nibbleOf(args[2])
		if err != nil {
			return
		}
		word = MakeCodeReg(OP_DRW, x, y, nn)
	case "skp", "sknp":
		err = checkArgs(args, 1, 1)
		if err != nil {
			return
		}
		x, ok = registerOf(args[0])
		if !ok {
			err = ErrRegisterInvalid
			return
		}
		op := KEY_OP_SKP
		if mnemonic == "sknp" {
			op = KEY_OP_SKNP
		}
		word = MakeCodeKey(op, x)
	default:
		err = ErrInstructionInvalid
	}

	return
}

// encodeLd assembles the many forms of ld.
func (asm *Assembler) encodeLd(dst_word string, src_word string) (word uint16, label string, err error) {
	dst := strings.ToLower(dst_word)
	src := strings.ToLower(src_word)
	x, dst_reg := registerOf(dst)
	y, src_reg := registerOf(src)

	switch {
	case dst == "i":
		var addr uint16
		addr, label, err = asm.addrOf(src_word)
		word = MakeCodeAddr(OP_LD_I, addr)
	case dst == "dt" && src_reg:
		word = MakeCodeMisc(MISC_OP_LD_DT_VX, y)
	case dst == "st" && src_reg:
		word = MakeCodeMisc(MISC_OP_LD_ST_VX, y)
	case dst == "f" && src_reg:
		word = MakeCodeMisc(MISC_OP_LD_F_VX, y)
	case dst == "b" && src_reg:
		word = MakeCodeMisc(MISC_OP_LD_B_VX, y)
	case dst == "[i]" && src_reg:
		word = MakeCodeMisc(MISC_OP_LD_MEM, y)
	case !dst_reg:
		err = ErrRegisterInvalid
	case src == "dt":
		word = MakeCodeMisc(MISC_OP_LD_VX_DT, x)
	case src == "k":
		word = MakeCodeMisc(MISC_OP_LD_VX_K, x)
	case src == "[i]":
		word = MakeCodeMisc(MISC_OP_LD_REG, x)
	case src_reg:
		word = MakeCodeAlu(ALU_OP_LD, x, y)
	default:
		var nn uint8
		nn, err = asm.byteOf(src_word)
		word = MakeCodeImm(OP_LD_IMM, x, nn)
	}

	return
}
