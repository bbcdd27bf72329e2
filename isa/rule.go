package isa

import (
	"slices"
	"strings"
)

// Rule declares what is legal in one operand slot of a mnemonic.
type Rule struct {
	Kinds  []TokenKind // Allowed token kinds.
	Ranged bool        // If set, Value must lie in [Min, Max].
	Min    int
	Max    int
	Enum   []int    // If set, register and integer operands must be one of these.
	Names  []string // If set, unresolved references must be one of these.
	Exact  string   // If set, the operand must be spelled exactly so.

	Pointers string // If set, pointer operands must use one of these registers.
}

// Check validates a token against the rule. The first failing check is reported.
func (rule *Rule) Check(tok Token) (err error) {
	if !slices.Contains(rule.Kinds, tok.Kind) {
		err = ErrIllegalOperand(tok.String())
		return
	}

	if rule.Ranged && tok.Kind != TOKEN_REF {
		if tok.Value < rule.Min || tok.Value > rule.Max {
			err = ErrOperandRange{Operand: tok.String(), Min: rule.Min, Max: rule.Max}
			return
		}
	}

	switch tok.Kind {
	case TOKEN_REG, TOKEN_INT:
		if len(rule.Enum) != 0 && !slices.Contains(rule.Enum, tok.Value) {
			err = ErrIllegalOperand(tok.String())
			return
		}
	case TOKEN_REF:
		if len(rule.Names) != 0 && !slices.Contains(rule.Names, tok.Text) {
			err = ErrIllegalOperand(tok.String())
			return
		}
	}

	if len(rule.Pointers) != 0 && tok.Kind.IsPointer() {
		if !strings.ContainsRune(rule.Pointers, rune(tok.Pointer())) {
			err = ErrIllegalOperand(tok.String())
			return
		}
	}

	if len(rule.Exact) != 0 && tok.Text != rule.Exact {
		err = ErrIllegalOperand(tok.String())
		return
	}

	return
}
