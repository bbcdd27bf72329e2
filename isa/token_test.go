package isa

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenKindString(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		kind TokenKind
		name string
	}){
		{TOKEN_NONE, "NONE"},
		{TOKEN_LABEL, "LABEL"},
		{TOKEN_WORDPLUSQ, "WORDPLUSQ"},
		{TOKEN_COMMA, "COMMA"},
		{TOKEN_EQ, "EQ"},
		{TOKEN_REF, "REF"},
		{TOKEN_REF + 1, "TokenKind(39)"},
		{TokenKind(-1), "TokenKind(-1)"},
	}

	for _, entry := range table {
		assert.Equal(entry.name, entry.kind.String())
	}
}

func TestTokenString(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("R16", Token{Kind: TOKEN_REG, Text: "r16", Value: 16}.String())
	assert.Equal("-3", Token{Kind: TOKEN_INT, Text: "-3", Value: -3}.String())
	assert.Equal("printf", Token{Kind: TOKEN_REF, Text: "printf"}.String())
}
