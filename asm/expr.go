package asm

import (
	"slices"
	"strings"

	"github.com/iiTzHyper/avr/isa"
)

// binaryLevels lists the binary operators from lowest to highest precedence.
var binaryLevels = [][]isa.TokenKind{
	{isa.TOKEN_LOGOR},
	{isa.TOKEN_LOGAND},
	{isa.TOKEN_BITOR},
	{isa.TOKEN_BITXOR},
	{isa.TOKEN_BITAND},
	{isa.TOKEN_DEQ, isa.TOKEN_NEQ},
	{isa.TOKEN_LT, isa.TOKEN_LEQ, isa.TOKEN_GT, isa.TOKEN_GEQ},
	{isa.TOKEN_LSHIFT, isa.TOKEN_RSHIFT},
	{isa.TOKEN_PLUS, isa.TOKEN_MINUS},
	{isa.TOKEN_TIMES, isa.TOKEN_DIV},
}

type evaluator struct {
	tokens []isa.Token
	pos    int
}

// Evaluate computes the integer value of an expression token sequence.
func Evaluate(tokens []isa.Token) (value int, err error) {
	ev := &evaluator{tokens: splitNegatives(tokens)}

	defer func() {
		if err == nil && ev.pos != len(ev.tokens) {
			err = ErrExpression(spell(tokens))
		}
	}()

	if len(ev.tokens) == 0 {
		err = ErrExpression("")
		return
	}

	value, err = ev.binary(0)
	return
}

// splitNegatives turns a negative literal that directly follows an operand
// into a subtraction, so "10 -5" reads as 10 - 5.
func splitNegatives(tokens []isa.Token) (out []isa.Token) {
	out = make([]isa.Token, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Kind == isa.TOKEN_INT && strings.HasPrefix(tok.Text, "-") && len(out) > 0 {
			last := out[len(out)-1].Kind
			if last == isa.TOKEN_INT || last == isa.TOKEN_RPAR {
				out = append(out,
					isa.Token{Kind: isa.TOKEN_MINUS, Text: "-", Column: tok.Column},
					isa.Token{Kind: isa.TOKEN_INT, Text: tok.Text[1:], Value: -tok.Value, Column: tok.Column + 1},
				)
				continue
			}
		}
		out = append(out, tok)
	}
	return
}

func (ev *evaluator) peek() (tok isa.Token, ok bool) {
	if ev.pos >= len(ev.tokens) {
		return
	}
	return ev.tokens[ev.pos], true
}

func (ev *evaluator) binary(level int) (value int, err error) {
	if level == len(binaryLevels) {
		return ev.unary()
	}

	value, err = ev.binary(level + 1)
	for err == nil {
		op, ok := ev.peek()
		if !ok || !slices.Contains(binaryLevels[level], op.Kind) {
			break
		}
		ev.pos++

		var rhs int
		rhs, err = ev.binary(level + 1)
		if err != nil {
			return
		}

		value, err = apply(op.Kind, value, rhs)
	}

	return
}

func (ev *evaluator) unary() (value int, err error) {
	tok, ok := ev.peek()
	if !ok {
		err = ErrExpression(spell(ev.tokens))
		return
	}

	switch tok.Kind {
	case isa.TOKEN_LOGNOT, isa.TOKEN_BITNOT, isa.TOKEN_MINUS, isa.TOKEN_PLUS:
		ev.pos++
		value, err = ev.unary()
		if err != nil {
			return
		}
		switch tok.Kind {
		case isa.TOKEN_LOGNOT:
			value = truth(value == 0)
		case isa.TOKEN_BITNOT:
			value = ^value
		case isa.TOKEN_MINUS:
			value = -value
		}
		return
	case isa.TOKEN_LPAR:
		ev.pos++
		value, err = ev.binary(0)
		if err != nil {
			return
		}
		tok, ok = ev.peek()
		if !ok || tok.Kind != isa.TOKEN_RPAR {
			err = ErrExpression(spell(ev.tokens))
			return
		}
		ev.pos++
		return
	case isa.TOKEN_INT:
		ev.pos++
		value = tok.Value
		return
	}

	err = ErrExpression(spell(ev.tokens))
	return
}

func truth(b bool) int {
	if b {
		return 1
	}
	return 0
}

// floorDiv divides rounding towards negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func apply(op isa.TokenKind, a, b int) (value int, err error) {
	switch op {
	case isa.TOKEN_LOGOR:
		value = truth(a != 0 || b != 0)
	case isa.TOKEN_LOGAND:
		value = truth(a != 0 && b != 0)
	case isa.TOKEN_BITOR:
		value = a | b
	case isa.TOKEN_BITXOR:
		value = a ^ b
	case isa.TOKEN_BITAND:
		value = a & b
	case isa.TOKEN_DEQ:
		value = truth(a == b)
	case isa.TOKEN_NEQ:
		value = truth(a != b)
	case isa.TOKEN_LT:
		value = truth(a < b)
	case isa.TOKEN_LEQ:
		value = truth(a <= b)
	case isa.TOKEN_GT:
		value = truth(a > b)
	case isa.TOKEN_GEQ:
		value = truth(a >= b)
	case isa.TOKEN_LSHIFT, isa.TOKEN_RSHIFT:
		if b < 0 || b > 63 {
			err = ErrExpression(f("shift by %d", b))
			return
		}
		if op == isa.TOKEN_LSHIFT {
			value = a << b
		} else {
			value = a >> b
		}
	case isa.TOKEN_PLUS:
		value = a + b
	case isa.TOKEN_MINUS:
		value = a - b
	case isa.TOKEN_TIMES:
		value = a * b
	case isa.TOKEN_DIV:
		if b == 0 {
			err = ErrDivideByZero
			return
		}
		value = floorDiv(a, b)
	}

	return
}

// spell returns the source spelling of a token sequence.
func spell(tokens []isa.Token) string {
	words := make([]string, len(tokens))
	for n, tok := range tokens {
		words[n] = tok.String()
	}
	return strings.Join(words, " ")
}

// collapse replaces every run of expression tokens in a line with a single
// integer token holding its value.
func collapse(tokens []isa.Token) (out []isa.Token, err error) {
	out = make([]isa.Token, 0, len(tokens))

	for n := 0; n < len(tokens); {
		if !tokens[n].Kind.IsMath() {
			out = append(out, tokens[n])
			n++
			continue
		}

		end := n
		for end < len(tokens) && tokens[end].Kind.IsMath() {
			end++
		}

		run := tokens[n:end]
		if len(run) == 1 && run[0].Kind == isa.TOKEN_INT {
			out = append(out, run[0])
			n = end
			continue
		}

		var value int
		value, err = Evaluate(run)
		if err != nil {
			return
		}
		out = append(out, intToken(value, run[0].Column))
		n = end
	}

	return
}
