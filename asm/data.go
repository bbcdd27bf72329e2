package asm

import (
	"slices"

	"github.com/iiTzHyper/avr/isa"
)

// escapes maps a backslash escape to its character code.
var escapes = map[byte]byte{
	'\\': 0x5c,
	'n':  0x0a,
	't':  0x09,
	'"':  0x22,
	'\'': 0x27,
	'r':  0x0d,
	'a':  0x07,
	'b':  0x08,
	'f':  0x0c,
	'v':  0x0b,
	'0':  0x00,
}

// unquote decodes the body of a quoted string token.
func unquote(text string) (data []byte, err error) {
	body := text[1 : len(text)-1]

	for n := 0; n < len(body); n++ {
		c := body[n]
		if c != '\\' {
			data = append(data, c)
			continue
		}

		n++
		if n == len(body) {
			err = ErrEscape("\\")
			return
		}

		code, ok := escapes[body[n]]
		if !ok {
			err = ErrEscape("\\" + string(body[n]))
			return
		}
		data = append(data, code)
	}

	return
}

// arguments splits comma separated directive arguments, checking each
// against kind.
func arguments(tokens []isa.Token, kind isa.TokenKind) (args []isa.Token, err error) {
	for n, tok := range tokens {
		if n%2 == 1 {
			if tok.Kind != isa.TOKEN_COMMA {
				err = ErrCommaExpected(tok.String())
				return
			}
			continue
		}

		if tok.Kind != kind {
			err = ErrIllegalToken(tok.String())
			return
		}
		args = append(args, tok)
	}

	if len(tokens) > 0 && len(tokens)%2 == 0 {
		err = ErrDirectiveSyntax
		return
	}

	return
}

// dataWriter appends initialized bytes to data memory.
type dataWriter struct {
	dmem []byte
	addr int
}

func (dw *dataWriter) emit(data ...byte) (err error) {
	if dw.addr+len(data) > isa.RAMEND+1 {
		err = ErrRamOverflow
		return
	}

	copy(dw.dmem[dw.addr:], data)
	dw.addr += len(data)
	return
}

// buildData lays out the data section lines into the program's data memory.
func (asm *Assembler) buildData(prog *isa.Program, lines []Line, line **Line) (err error) {
	dw := &dataWriter{dmem: prog.DMEM, addr: isa.RAM_START}

	for n := range lines {
		*line = &lines[n]
		tokens := slices.Clone(lines[n].Tokens)

		if tokens[0].Kind == isa.TOKEN_LABEL {
			err = asm.newLabel(tokens[0].Text, dw.addr)
			if err != nil {
				return
			}
			tokens = tokens[1:]
			if len(tokens) == 0 {
				continue
			}
		}

		if tokens[0].Kind != isa.TOKEN_DIR {
			err = ErrDirectiveData
			return
		}

		err = asm.directive(dw, tokens[0].Text, tokens[1:])
		if err != nil {
			return
		}
	}

	prog.DataSize = dw.addr - isa.RAM_START
	return
}

// directive executes a single data section directive.
func (asm *Assembler) directive(dw *dataWriter, name string, tokens []isa.Token) (err error) {
	switch name {
	case ".BYTE", ".WORD", ".SPACE":
		err = asm.replaceRefs(tokens)
		if err != nil {
			return
		}
		tokens, err = collapse(tokens)
		if err != nil {
			return
		}

		var args []isa.Token
		args, err = arguments(tokens, isa.TOKEN_INT)
		if err != nil {
			return
		}

		switch name {
		case ".BYTE":
			for _, arg := range args {
				if arg.Value < -0x80 || arg.Value > 0xff {
					err = ErrValueRange(arg.Value)
					return
				}
				err = dw.emit(byte(arg.Value))
				if err != nil {
					return
				}
			}
		case ".WORD":
			for _, arg := range args {
				if arg.Value < -0x8000 || arg.Value > 0xffff {
					err = ErrValueRange(arg.Value)
					return
				}
				err = dw.emit(byte(arg.Value), byte(arg.Value>>8))
				if err != nil {
					return
				}
			}
		case ".SPACE":
			err = asm.space(dw, args)
		}
	case ".STRING", ".ASCII", ".ASCIZ":
		var args []isa.Token
		args, err = arguments(tokens, isa.TOKEN_STR)
		if err != nil {
			return
		}
		if len(args) == 0 {
			err = ErrDirectiveSyntax
			return
		}

		for _, arg := range args {
			var data []byte
			data, err = unquote(arg.Text)
			if err != nil {
				return
			}
			if name != ".ASCII" {
				data = append(data, 0)
			}
			err = dw.emit(data...)
			if err != nil {
				return
			}
		}
	case ".EQU", ".SET":
		if len(tokens) < 3 || tokens[0].Kind != isa.TOKEN_REF || tokens[1].Kind != isa.TOKEN_COMMA {
			err = ErrDirectiveSyntax
			return
		}

		value := slices.Clone(tokens[2:])
		err = asm.replaceRefs(value)
		if err != nil {
			return
		}
		value, err = collapse(value)
		if err != nil {
			return
		}
		if len(value) != 1 || value[0].Kind != isa.TOKEN_INT {
			err = ErrDirectiveSyntax
			return
		}

		err = asm.newEqu(tokens[0].Text, value[0].Value)
	default:
		err = ErrIllegalToken(name)
	}

	return
}

// space emits .space N or .space N, fill.
func (asm *Assembler) space(dw *dataWriter, args []isa.Token) (err error) {
	if len(args) < 1 || len(args) > 2 {
		err = ErrDirectiveSyntax
		return
	}

	count := args[0].Value
	if count < 0 {
		err = ErrValueRange(count)
		return
	}
	if dw.addr+count > isa.RAMEND+1 {
		err = ErrRamOverflow
		return
	}

	fill := 0
	if len(args) == 2 {
		fill = args[1].Value
		if fill < -0x80 || fill > 0xff {
			err = ErrValueRange(fill)
			return
		}
	}

	for range count {
		err = dw.emit(byte(fill))
		if err != nil {
			return
		}
	}

	return
}
