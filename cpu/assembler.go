// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
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

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":        "0",
	"MEMORY_SIZE":   fmt.Sprintf("%#x", MEMORY_SIZE),
	"PROGRAM_BASE":  fmt.Sprintf("%#x", PROGRAM_BASE),
	"FONT_BASE":     fmt.Sprintf("%#x", FONT_BASE),
	"FONT_GLYPH":    fmt.Sprintf("%#x", FONT_GLYPH),
	"SCREEN_WIDTH":  fmt.Sprintf("%#x", SCREEN_WIDTH),
	"SCREEN_HEIGHT": fmt.Sprintf("%#x", SCREEN_HEIGHT),
}

var (
	reParenEval = regexp.MustCompile(`\$\([^\$]*\)`)
	reCharacter = regexp.MustCompile(`'[^']'`)
)

// fixup is a forward label reference patched after the last line.
type fixup struct {
	offset int    // Offset of the instruction word in the image.
	label  string // Label supplying NNN.
	lineno int
}

// Assembler is a single pass assembler for the disassembler's syntax.
type Assembler struct {
	Verbose bool // If set, verbosely logs the assembler actions.

	predefine map[string]string // Predefines
	Label     map[string]uint16 // Map of labels to addresses.
	Equate    map[string]string // Map of equates.

	image  []byte
	fixups []fixup
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// valueOf returns the value of a numeric word.
func valueOf(word string) (value int64, err error) {
	text := word
	if strings.HasPrefix(text, "$") {
		text = "0x" + text[1:]
	}

	value, err = strconv.ParseInt(text, 0, 32)
	if err != nil {
		err = ErrParseNumber(word)
	}

	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		v, verr := valueOf(str)
		if verr != nil {
			// Ignore non-integer equates, such as register aliases.
			continue
		}
		pred[key] = starlark.MakeInt64(v)
	}
	for key, addr := range asm.Label {
		pred[key] = starlark.MakeInt(int(addr))
	}

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrParseExpression(expr), err)
		return
	}
	st_int, ok := dict["rc"].(starlark.Int)
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

// currentAddress is the address of the next emitted byte.
func (asm *Assembler) currentAddress() uint16 {
	return PROGRAM_BASE + uint16(len(asm.image))
}

// parseLine expands a line into words, defining equates and labels.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	line = reCharacter.ReplaceAllStringFunc(line, func(word string) string {
		return fmt.Sprintf("%v", word[1])
	})

	// Do $() evaluations
	line = reParenEval.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%#x", value)
	})
	if err != nil {
		return
	}

	words = strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
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
		words = nil
		return
	}

	for n, word := range words {
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for len(words) > 0 && strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}
		asm.Label[label] = asm.currentAddress()
		words = words[1:]
	}

	return
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.Label = map[string]uint16{}
	asm.Equate = maps.Clone(sysEquate)
	maps.Copy(asm.Equate, asm.predefine)
	asm.image = nil
	asm.fixups = nil

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("chip8: asm %v: %v", lineno, text)
		}

		line = strings.TrimSpace(strings.SplitN(text, ";", 2)[0])

		var words []string
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

	// Final linking of forward labels.
	for _, fix := range asm.fixups {
		addr, ok := asm.Label[fix.label]
		if !ok {
			lineno = fix.lineno
			line = fix.label
			err = ErrLabelMissing(fix.label)
			return
		}
		asm.image[fix.offset] |= uint8(addr>>8) & 0xF
		asm.image[fix.offset+1] = uint8(addr)
	}

	if len(asm.image) > MAX_PROGRAM {
		err = ErrProgramTooLarge
		return
	}

	prog = &Program{
		Image:  slices.Clone(asm.image),
		Labels: maps.Clone(asm.Label),
	}

	return
}

// register parses V0-VF.
func register(word string) (reg uint16, err error) {
	if len(word) != 2 || (word[0] != 'V' && word[0] != 'v') {
		err = ErrRegisterInvalid
		return
	}

	value, perr := strconv.ParseUint(word[1:], 16, 4)
	if perr != nil {
		err = ErrRegisterInvalid
		return
	}

	reg = uint16(value)
	return
}

func isRegister(word string) bool {
	_, err := register(word)
	return err == nil
}

// immediate parses a number no larger than limit.
func immediate(word string, limit int64) (value uint16, err error) {
	v, err := valueOf(word)
	if err != nil {
		return
	}
	if v < 0 || v > limit {
		err = ErrValueRange
		return
	}

	value = uint16(v)
	return
}

// address parses NNN, deferring unknown labels to the link pass.
func (asm *Assembler) address(word string, lineno int) (value uint16, err error) {
	addr, ok := asm.Label[word]
	if ok {
		value = addr & 0xFFF
		return
	}

	value, err = immediate(word, 0xFFF)
	if _, isNumber := err.(ErrParseNumber); isNumber && !isRegister(word) {
		asm.fixups = append(asm.fixups, fixup{offset: len(asm.image), label: word, lineno: lineno})
		value = 0
		err = nil
	}

	return
}

// emit appends big-endian instruction words.
func (asm *Assembler) emit(words ...uint16) {
	for _, w := range words {
		asm.image = append(asm.image, uint8(w>>8), uint8(w))
	}
}

// aluMap maps register-register mnemonics to their 8XYn low nibble.
var aluMap = map[string]uint16{
	OP_OR.String():   0x1,
	OP_AND.String():  0x2,
	OP_XOR.String():  0x3,
	OP_SUB.String():  0x5,
	OP_SHR.String():  0x6,
	OP_SUBN.String(): 0x7,
	OP_SHL.String():  0xE,
}

// ldSpecial maps the ld forms with a named operand to FXnn.
var ldSpecial = map[[2]string]uint16{
	{"VX", "DT"}:  0xF007,
	{"VX", "K"}:   0xF00A,
	{"DT", "VX"}:  0xF015,
	{"ST", "VX"}:  0xF018,
	{"F", "VX"}:   0xF029,
	{"B", "VX"}:   0xF033,
	{"[I]", "VX"}: 0xF055,
	{"VX", "[I]"}: 0xF065,
}

// expect checks the operand count.
func expect(args []string, count int) error {
	switch {
	case len(args) < count:
		return ErrOpcodeValueMissing
	case len(args) > count:
		return ErrOpcodeExtraArgs
	}
	return nil
}

// xy encodes register operands into bits 8-11 and 4-7.
func xy(x, y string) (code uint16, err error) {
	vx, err := register(x)
	if err != nil {
		return
	}
	code = vx << 8
	if len(y) > 0 {
		var vy uint16
		vy, err = register(y)
		if err != nil {
			return
		}
		code |= vy << 4
	}
	return
}

// parseWords assembles the words of one line.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	if len(words) == 0 {
		return
	}

	op := strings.ToLower(words[0])
	args := words[1:]

	var code uint16
	switch op {
	case ".byte":
		for _, arg := range args {
			var v uint16
			v, err = immediate(arg, 0xFF)
			if err != nil {
				return
			}
			asm.image = append(asm.image, uint8(v))
		}
		return
	case ".word":
		for _, arg := range args {
			var v uint16
			v, err = immediate(arg, 0xFFFF)
			if err != nil {
				return
			}
			asm.emit(v)
		}
		return
	case OP_CLS.String(), OP_RET.String():
		if err = expect(args, 0); err != nil {
			return
		}
		code = 0x00E0
		if op == OP_RET.String() {
			code = 0x00EE
		}
	case OP_SYS.String(), OP_CALL.String():
		if err = expect(args, 1); err != nil {
			return
		}
		code = 0x0000
		if op == OP_CALL.String() {
			code = 0x2000
		}
		var nnn uint16
		nnn, err = asm.address(args[0], lineno)
		code |= nnn
	case OP_JP.String():
		if len(args) == 2 && strings.EqualFold(args[0], "V0") {
			code = 0xB000
			args = args[1:]
		} else {
			code = 0x1000
		}
		if err = expect(args, 1); err != nil {
			return
		}
		var nnn uint16
		nnn, err = asm.address(args[0], lineno)
		code |= nnn
	case OP_SE.String(), OP_SNE.String():
		if err = expect(args, 2); err != nil {
			return
		}
		if isRegister(args[1]) {
			code, err = xy(args[0], args[1])
			if op == OP_SE.String() {
				code |= 0x5000
			} else {
				code |= 0x9000
			}
			break
		}
		code, err = asm.xnn(args[0], args[1])
		if op == OP_SE.String() {
			code |= 0x3000
		} else {
			code |= 0x4000
		}
	case OP_LD.String():
		if err = expect(args, 2); err != nil {
			return
		}
		code, err = asm.load(args[0], args[1], lineno)
	case OP_ADD.String():
		if err = expect(args, 2); err != nil {
			return
		}
		switch {
		case strings.EqualFold(args[0], "I"):
			code, err = xy(args[1], "")
			code |= 0xF01E
		case isRegister(args[1]):
			code, err = xy(args[0], args[1])
			code |= 0x8004
		default:
			code, err = asm.xnn(args[0], args[1])
			code |= 0x7000
		}
	case OP_OR.String(), OP_AND.String(), OP_XOR.String(), OP_SUB.String(), OP_SUBN.String():
		if err = expect(args, 2); err != nil {
			return
		}
		code, err = xy(args[0], args[1])
		code |= 0x8000 | aluMap[op]
	case OP_SHR.String(), OP_SHL.String():
		if len(args) == 1 {
			args = append(args, args[0])
		}
		if err = expect(args, 2); err != nil {
			return
		}
		code, err = xy(args[0], args[1])
		code |= 0x8000 | aluMap[op]
	case OP_RND.String():
		if err = expect(args, 2); err != nil {
			return
		}
		code, err = asm.xnn(args[0], args[1])
		code |= 0xC000
	case OP_DRW.String():
		if err = expect(args, 3); err != nil {
			return
		}
		code, err = xy(args[0], args[1])
		if err != nil {
			return
		}
		var n uint16
		n, err = immediate(args[2], 0xF)
		code |= 0xD000 | n
	case OP_SKP.String(), OP_SKNP.String():
		if err = expect(args, 1); err != nil {
			return
		}
		code, err = xy(args[0], "")
		if op == OP_SKP.String() {
			code |= 0xE09E
		} else {
			code |= 0xE0A1
		}
	default:
		err = ErrOpcodeInvalid
	}

	if err != nil {
		return
	}

	asm.emit(code)

	return
}

// xnn encodes a register and byte immediate.
func (asm *Assembler) xnn(x, nn string) (code uint16, err error) {
	code, err = xy(x, "")
	if err != nil {
		return
	}
	v, err := immediate(nn, 0xFF)
	code |= v
	return
}

// load encodes the ld forms.
func (asm *Assembler) load(dst, src string, lineno int) (code uint16, err error) {
	switch {
	case strings.EqualFold(dst, "I"):
		var nnn uint16
		nnn, err = asm.address(src, lineno)
		code = 0xA000 | nnn
		return
	case isRegister(dst) && isRegister(src):
		code, err = xy(dst, src)
		code |= 0x8000
		return
	}

	// Named operand forms, with the register operand as VX.
	key := [2]string{strings.ToUpper(dst), strings.ToUpper(src)}
	reg := ""
	for n := range key {
		if isRegister(key[n]) {
			reg = key[n]
			key[n] = "VX"
		}
	}
	special, ok := ldSpecial[key]
	if ok {
		code, err = xy(reg, "")
		code |= special
		return
	}

	if isRegister(dst) {
		code, err = asm.xnn(dst, src)
		code |= 0x6000
		return
	}

	err = ErrOperandInvalid
	return
}
