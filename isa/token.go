package isa

import (
	"fmt"
	"strings"
)

// TokenKind classifies a lexical token.
type TokenKind int

//go:generate go tool stringer -linecomment -type=TokenKind
const (
	TOKEN_NONE      TokenKind = iota // NONE
	TOKEN_LABEL                      // LABEL
	TOKEN_LO8                        // LO8
	TOKEN_HI8                        // HI8
	TOKEN_REG                        // REG
	TOKEN_INT                        // INT
	TOKEN_INST                       // INST
	TOKEN_STR                        // STR
	TOKEN_DIR                        // DIR
	TOKEN_WORDPLUSQ                  // WORDPLUSQ
	TOKEN_XPLUSQ                     // XPLUSQ
	TOKEN_WORDPLUS                   // WORDPLUS
	TOKEN_MINUSWORD                  // MINUSWORD
	TOKEN_WORD                       // WORD
	TOKEN_COMMA                      // COMMA
	TOKEN_LPAR                       // LPAR
	TOKEN_RPAR                       // RPAR
	TOKEN_PLUS                       // PLUS
	TOKEN_MINUS                      // MINUS
	TOKEN_TIMES                      // TIMES
	TOKEN_DIV                        // DIV
	TOKEN_LOGAND                     // LOGAND
	TOKEN_BITAND                     // BITAND
	TOKEN_LOGOR                      // LOGOR
	TOKEN_BITOR                      // BITOR
	TOKEN_BITXOR                     // BITXOR
	TOKEN_BITNOT                     // BITNOT
	TOKEN_NEQ                        // NEQ
	TOKEN_LOGNOT                     // LOGNOT
	TOKEN_GEQ                        // GEQ
	TOKEN_LEQ                        // LEQ
	TOKEN_DEQ                        // DEQ
	TOKEN_RSHIFT                     // RSHIFT
	TOKEN_LSHIFT                     // LSHIFT
	TOKEN_GT                         // GT
	TOKEN_LT                         // LT
	TOKEN_EQ                         // EQ
	TOKEN_SYMBOL                     // SYMBOL
	TOKEN_REF                        // REF
)

// IsOperator is true for the arithmetic, bitwise, logical, relational
// and parenthesis kinds, including the bare '=' sign.
func (kind TokenKind) IsOperator() bool {
	return kind >= TOKEN_LPAR && kind <= TOKEN_EQ
}

// IsMath is true for the kinds an expression may be built from.
func (kind TokenKind) IsMath() bool {
	return kind == TOKEN_INT || (kind.IsOperator() && kind != TOKEN_EQ)
}

// IsPointer is true for the X/Y/Z addressing forms.
func (kind TokenKind) IsPointer() bool {
	return kind >= TOKEN_WORDPLUSQ && kind <= TOKEN_WORD
}

// Token is a single lexical unit of a source line.
type Token struct {
	Kind   TokenKind // Token classification.
	Text   string    // Source spelling, or the name of a reference.
	Value  int       // Register number, integer value or pointer displacement.
	Column int       // 1-based column of the token in its source line.
}

// Pointer returns the pointer register letter of an X/Y/Z form, or 0.
func (tok Token) Pointer() byte {
	if !tok.Kind.IsPointer() {
		return 0
	}
	idx := strings.IndexAny(tok.Text, "XYZ")
	if idx < 0 {
		return 0
	}
	return tok.Text[idx]
}

// String returns the assembler spelling of the token.
func (tok Token) String() string {
	switch tok.Kind {
	case TOKEN_REG:
		return fmt.Sprintf("R%d", tok.Value)
	case TOKEN_INT:
		return fmt.Sprintf("%d", tok.Value)
	case TOKEN_WORDPLUSQ, TOKEN_XPLUSQ:
		return fmt.Sprintf("%c+%d", tok.Pointer(), tok.Value)
	}
	return tok.Text
}
