// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package asm

import (
	"io"
	"iter"
	"log"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/iiTzHyper/avr/internal"
	"github.com/iiTzHyper/avr/isa"
)

// Assembler is a two pass assembler for the AVR subset.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	ISA     *isa.Set // Instruction registry; isa.AVR if nil.

	Label  map[string]int // Map of labels to code or data addresses.
	Equate map[string]int // Map of .equ/.set constants.
	Define map[string]int // Map of register aliases.
	Global []string       // Names declared by .global, entry first.

	predefine map[string]int // User register aliases.
}

// pending is a text section line awaiting resolution and encoding.
type pending struct {
	line   *Line
	tokens []isa.Token
	addr   int
	mn     *isa.Mnemonic
}

// Predefine adds a register alias installed before every assembly.
func (asm *Assembler) Predefine(name string, reg int) {
	if asm.predefine == nil {
		asm.predefine = map[string]int{name: reg}
	} else {
		asm.predefine[name] = reg
	}
}

// Symbols iterates over all labels, constants and register aliases.
func (asm *Assembler) Symbols() iter.Seq2[string, int] {
	return internal.IterSeq2Concat(
		maps.All(asm.Label),
		maps.All(asm.Equate),
		maps.All(asm.Define),
	)
}

func (asm *Assembler) set() *isa.Set {
	if asm.ISA == nil {
		return isa.AVR
	}
	return asm.ISA
}

// Assemble assembles source text with a default assembler.
func Assemble(source string) (prog *isa.Program, err error) {
	asm := &Assembler{}
	return asm.Parse(strings.NewReader(source))
}

// Parse assembles an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *isa.Program, err error) {
	set := asm.set()

	lex := &Lexer{Verbose: asm.Verbose, ISA: set}
	lines, err := lex.Tokenize(input)
	if err != nil {
		return
	}

	var line *Line

	defer func() {
		if err != nil {
			prog = nil
			if line != nil {
				err = &ErrSyntax{LineNo: line.LineNo, Line: line.Text, Err: err}
			}
		}
	}()

	asm.Label = map[string]int{}
	asm.Equate = map[string]int{}
	asm.Define = map[string]int{}
	asm.Global = nil

	// Structure
	text, err := asm.checkSections(lines, &line)
	if err != nil {
		return
	}

	// Normalization
	for n := range lines {
		line = &lines[n]
		err = normalizeValues(set, line.Tokens)
		if err != nil {
			return
		}
	}
	line = nil

	for name, reg := range set.Predefines() {
		err = asm.newDef(name, reg)
		if err != nil {
			return
		}
	}
	for name, reg := range asm.predefine {
		err = asm.newDef(name, reg)
		if err != nil {
			return
		}
	}

	prog = isa.NewProgram()

	// Text section scan
	code, err := asm.scanText(prog, lines, text, &line)
	if err != nil {
		return
	}

	// Data section
	if text > 0 {
		err = asm.buildData(prog, lines[1:text], &line)
		if err != nil {
			return
		}
	}

	// Resolution and encoding
	for _, p := range code {
		line = p.line

		var inst isa.Instruction
		inst, err = asm.encode(p)
		if err != nil {
			return
		}

		prog.PMEM[p.addr] = inst
		if inst.Wide() {
			prog.PMEM[p.addr+1] = isa.Instruction{LineNo: inst.LineNo, Tail: true}
		}

		if asm.Verbose {
			log.Printf("%v: %04x %v %v", inst.LineNo, p.addr, inst.Opcode, inst.String())
		}
	}

	return
}

// checkSections validates the section layout and returns the index of the
// .section .text line.
func (asm *Assembler) checkSections(lines []Line, line **Line) (text int, err error) {
	if len(lines) == 0 {
		err = ErrSectionFirst
		return
	}

	*line = &lines[0]
	first := lines[0].Tokens
	if first[0].Kind != isa.TOKEN_DIR || first[0].Text != ".SECTION" {
		err = ErrSectionFirst
		return
	}

	*line = &lines[len(lines)-1]
	last := lines[len(lines)-1].Tokens
	if len(last) != 1 || last[0].Kind != isa.TOKEN_DIR || last[0].Text != ".END" {
		err = ErrEndMissing
		return
	}

	for n := range lines {
		tokens := lines[n].Tokens
		if tokens[0].Kind != isa.TOKEN_DIR || tokens[0].Text != ".SECTION" {
			continue
		}

		*line = &lines[n]
		if !isSection(tokens) {
			err = ErrSectionSyntax
			return
		}

		if tokens[1].Text == ".TEXT" {
			text = n
			return
		}
	}

	*line = nil
	err = ErrTextMissing
	return
}

func isSection(tokens []isa.Token) bool {
	if len(tokens) != 2 || tokens[1].Kind != isa.TOKEN_DIR {
		return false
	}
	return tokens[1].Text == ".DATA" || tokens[1].Text == ".TEXT"
}

// normalizeValues upper cases mnemonics, and range checks registers and
// parses integers in place.
func normalizeValues(set *isa.Set, tokens []isa.Token) (err error) {
	for n := range tokens {
		tok := &tokens[n]
		switch tok.Kind {
		case isa.TOKEN_INST:
			tok.Text = strings.ToUpper(tok.Text)
			if !set.IsMnemonic(tok.Text) {
				err = ErrUnknownMnemonic(tok.Text)
				return
			}
		case isa.TOKEN_REG:
			if tok.Value > 31 {
				err = ErrRegisterRange(tok.Value)
				return
			}
		case isa.TOKEN_INT:
			tok.Value, err = parseInt(tok.Text)
			if err != nil {
				return
			}
		}
	}

	return
}

// parseInt parses a signed integer literal in any of the supported bases.
func parseInt(text string) (value int, err error) {
	digits, neg := strings.CutPrefix(text, "-")

	base := 10
	switch {
	case len(digits) > 2 && (digits[:2] == "0x" || digits[:2] == "0X"):
		base, digits = 16, digits[2:]
	case len(digits) > 1 && digits[0] == '$':
		base, digits = 16, digits[1:]
	case len(digits) > 2 && (digits[:2] == "0o" || digits[:2] == "0O"):
		base, digits = 8, digits[2:]
	case len(digits) > 2 && (digits[:2] == "0b" || digits[:2] == "0B"):
		base, digits = 2, digits[2:]
	}

	v64, err := strconv.ParseInt(digits, base, 64)
	if err != nil {
		err = ErrExpression(text)
		return
	}

	value = int(v64)
	if neg {
		value = -value
	}
	return
}

// intToken returns an integer token.
func intToken(value int, column int) isa.Token {
	return isa.Token{Kind: isa.TOKEN_INT, Text: strconv.Itoa(value), Value: value, Column: column}
}

// scanText records code labels and lays out program memory.
func (asm *Assembler) scanText(prog *isa.Program, lines []Line, text int, line **Line) (code []pending, err error) {
	set := asm.set()

	*line = &lines[text]
	if text+1 >= len(lines)-1 {
		err = ErrGlobalMissing
		return
	}

	*line = &lines[text+1]
	global := lines[text+1].Tokens
	if len(global) != 2 || global[0].Text != ".GLOBAL" || global[1].Kind != isa.TOKEN_REF {
		err = ErrGlobalMissing
		return
	}
	asm.Global = append(asm.Global, global[1].Text)
	declared := []*Line{*line}

	addr := 0
	for n := text + 2; n < len(lines)-1; n++ {
		*line = &lines[n]
		tokens := lines[n].Tokens

		labelled := false
		for len(tokens) > 0 && tokens[0].Kind == isa.TOKEN_LABEL {
			name := tokens[0].Text
			err = asm.newLabel(name, addr)
			if err != nil {
				return
			}
			if name == asm.Global[0] {
				prog.Entry = addr
			}
			tokens = tokens[1:]
			labelled = true
		}

		if slices.ContainsFunc(tokens, func(tok isa.Token) bool { return tok.Kind == isa.TOKEN_LABEL }) {
			err = ErrLabelPlacement
			return
		}

		if len(tokens) == 0 {
			continue
		}

		if tokens[0].Kind == isa.TOKEN_DIR {
			switch tokens[0].Text {
			case ".GLOBAL":
				if addr > 0 {
					err = ErrGlobalPlacement
					return
				}
				if labelled || len(tokens) != 2 || tokens[1].Kind != isa.TOKEN_REF {
					err = ErrGlobalSyntax
					return
				}
				asm.Global = append(asm.Global, tokens[1].Text)
				declared = append(declared, *line)
				continue
			case ".SECTION":
				err = ErrSectionOrder
				return
			}
		}

		if tokens[0].Kind != isa.TOKEN_INST {
			err = ErrIllegalToken(tokens[0].Text)
			return
		}

		mn, _ := set.Lookup(tokens[0].Text)
		code = append(code, pending{
			line:   *line,
			tokens: slices.Clone(tokens),
			addr:   addr,
			mn:     mn,
		})

		addr++
		if mn.Wide() {
			addr++
		}

		if addr > isa.FLASHEND {
			err = ErrFlashOverflow
			return
		}
	}

	for n, name := range asm.Global {
		_, ok := asm.Label[name]
		if !ok {
			*line = declared[n]
			err = ErrLabelMissing(name)
			return
		}
	}

	prog.Size = addr
	return
}

func (asm *Assembler) newLabel(name string, value int) (err error) {
	if _, ok := asm.Label[name]; ok {
		err = ErrLabelDuplicate(name)
		return
	}

	err = asm.checkName(name, asm.Equate, asm.Define)
	if err != nil {
		return
	}

	asm.Label[name] = value
	return
}

// newEqu binds a constant; an existing constant is replaced.
func (asm *Assembler) newEqu(name string, value int) (err error) {
	err = asm.checkName(name, asm.Label, asm.Define)
	if err != nil {
		return
	}

	asm.Equate[name] = value
	return
}

func (asm *Assembler) newDef(name string, reg int) (err error) {
	err = asm.checkName(name, asm.Label, asm.Equate, asm.Define)
	if err != nil {
		return
	}

	asm.Define[name] = reg
	return
}

// checkName verifies name is neither a mnemonic nor in any of the tables.
func (asm *Assembler) checkName(name string, tables ...map[string]int) (err error) {
	if asm.set().IsMnemonic(name) {
		err = ErrNameCollision(name)
		return
	}

	for _, table := range tables {
		if _, ok := table[name]; ok {
			err = ErrNameCollision(name)
			return
		}
	}

	return
}

// replaceRefs replaces data references with label addresses or constants.
func (asm *Assembler) replaceRefs(tokens []isa.Token) (err error) {
	for n := range tokens {
		tok := &tokens[n]
		if tok.Kind != isa.TOKEN_REF {
			continue
		}

		value, ok := asm.Label[tok.Text]
		if !ok {
			value, ok = asm.Equate[tok.Text]
		}
		if !ok {
			err = ErrUndefined(tok.Text)
			return
		}

		tok.Kind = isa.TOKEN_INT
		tok.Value = value
	}

	return
}

// resolveFunctions replaces every hi8(...) and lo8(...) with its value.
func (asm *Assembler) resolveFunctions(tokens []isa.Token) (out []isa.Token, err error) {
	out = tokens

	for n := 0; n < len(out); n++ {
		fn := out[n]
		if fn.Kind != isa.TOKEN_HI8 && fn.Kind != isa.TOKEN_LO8 {
			continue
		}

		if n+1 >= len(out) || out[n+1].Kind != isa.TOKEN_LPAR {
			err = ErrFunctionSyntax
			return
		}

		depth := 1
		end := n + 2
		for ; end < len(out); end++ {
			switch out[end].Kind {
			case isa.TOKEN_LPAR:
				depth++
			case isa.TOKEN_RPAR:
				depth--
			}
			if depth == 0 {
				break
			}
		}
		if depth != 0 {
			err = ErrFunctionSyntax
			return
		}

		var inner []isa.Token
		inner, err = asm.resolveFunctions(slices.Clone(out[n+2 : end]))
		if err != nil {
			return
		}
		err = asm.replaceRefs(inner)
		if err != nil {
			return
		}

		var value int
		value, err = Evaluate(inner)
		if err != nil {
			return
		}
		if value >= 1<<32 {
			err = ErrFunctionRange
			return
		}

		if fn.Kind == isa.TOKEN_HI8 {
			value = (value >> 8) & 0xff
		} else {
			value = value & 0xff
		}

		out = slices.Replace(out, n, end+1, intToken(value, fn.Column))
	}

	return
}

// resolveOperands replaces operand references for the instruction at addr.
func (asm *Assembler) resolveOperands(mn *isa.Mnemonic, tokens []isa.Token, addr int) (err error) {
	set := asm.set()

	for n := 1; n < len(tokens); n++ {
		tok := &tokens[n]
		if tok.Kind != isa.TOKEN_REF {
			continue
		}

		name := tok.Text
		label, isLabel := asm.Label[name]
		reg, isDef := asm.Define[name]
		value, isEqu := asm.Equate[name]

		switch {
		case mn.Absolute && calls(mn, name):
			// Intrinsics take precedence over labels of the same name.
		case isLabel && mn.Relative:
			tok.Kind, tok.Value = isa.TOKEN_INT, label-addr-1
		case isLabel:
			tok.Kind, tok.Value = isa.TOKEN_INT, label
		case isDef:
			tok.Kind, tok.Value = isa.TOKEN_REG, reg
		case isEqu:
			tok.Kind, tok.Value = isa.TOKEN_INT, value
		case set.Intrinsic(name):
			// Resolved by the interpreter.
		default:
			err = ErrUndefined(name)
			return
		}
	}

	return
}

// calls is true if name is an intrinsic the mnemonic may call.
func calls(mn *isa.Mnemonic, name string) bool {
	for _, rule := range mn.Operands {
		if slices.Contains(rule.Names, name) {
			return true
		}
	}
	return false
}

// encode resolves, validates and encodes one text line.
func (asm *Assembler) encode(p pending) (inst isa.Instruction, err error) {
	mn := p.mn

	tokens, err := asm.resolveFunctions(p.tokens)
	if err != nil {
		return
	}

	err = asm.resolveOperands(mn, tokens, p.addr)
	if err != nil {
		return
	}

	tokens, err = collapse(tokens)
	if err != nil {
		return
	}

	operands := tokens[1:]
	if len(operands) > 1 {
		if operands[1].Kind != isa.TOKEN_COMMA {
			err = ErrCommaExpected(operands[1].String())
			return
		}
		operands = slices.Delete(operands, 1, 2)
	}

	if !(mn.Optional && len(operands) == 0) && len(operands) != mn.Arity() {
		err = isa.ErrOperandCount{Mnemonic: mn.Name, Want: mn.Arity(), Got: len(operands)}
		return
	}

	if len(operands) != 0 {
		for n, rule := range mn.Operands {
			err = rule.Check(operands[n])
			if err != nil {
				return
			}
		}
	}

	opcode, err := isa.Encode(mn, operands)
	if err != nil {
		return
	}

	inst = isa.Instruction{
		Mnemonic: mn.Name,
		Operands: operands,
		Opcode:   opcode,
		LineNo:   p.line.LineNo,
	}
	return
}
