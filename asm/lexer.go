package asm

import (
	"bufio"
	"io"
	"log"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/iiTzHyper/avr/isa"
)

// Line is the token sequence of one non-empty source line.
type Line struct {
	LineNo int         // 1-based source line.
	Text   string      // Source text.
	Tokens []isa.Token // Tokens, in order.
}

// lexRule matches one token kind at the start of the remaining text.
type lexRule struct {
	kind   isa.TokenKind
	re     *regexp.Regexp
	follow string // If set, the character after the match must be one of these.
}

func rule(kind isa.TokenKind, pattern string, follow string) lexRule {
	return lexRule{kind: kind, re: regexp.MustCompile(`^(?:` + pattern + `)`), follow: follow}
}

const (
	followOperand   = ",; \t"
	followDirective = "; \t"
)

// lexRules are tried at every position; the longest match wins and the
// earlier rule wins a tie.
var lexRules = []lexRule{
	rule(isa.TOKEN_NONE, `;.*`, ""),
	rule(isa.TOKEN_NONE, `\s+`, ""),
	rule(isa.TOKEN_LABEL, `\w[\w.]*[ \t]*:`, ""),
	rule(isa.TOKEN_LO8, `lo8|LO8`, "("),
	rule(isa.TOKEN_HI8, `hi8|HI8`, "("),
	rule(isa.TOKEN_REG, `[rR]\d+`, followOperand),
	rule(isa.TOKEN_INT, `-?0[xX][0-9a-fA-F]+`, ""),
	rule(isa.TOKEN_INT, `-?\$[0-9a-fA-F]+`, ""),
	rule(isa.TOKEN_INT, `-?0[oO][0-7]+`, ""),
	rule(isa.TOKEN_INT, `-?0[bB][01]+`, ""),
	rule(isa.TOKEN_INT, `-?\d+`, ""),
	rule(isa.TOKEN_INST, `[a-zA-Z]{2,6}`, ""),
	rule(isa.TOKEN_STR, `"(?:[^"\\]|\\.)*"`, ""),
	rule(isa.TOKEN_STR, `'(?:[^'\\]|\\.)*'`, ""),
	rule(isa.TOKEN_DIR, `\.[\w.]+`, followDirective),
	rule(isa.TOKEN_WORDPLUSQ, `[YZ][ \t]*\+[ \t]*\d{1,2}`, ""),
	rule(isa.TOKEN_XPLUSQ, `X[ \t]*\+[ \t]*\d{1,2}`, ""),
	rule(isa.TOKEN_WORDPLUS, `[XYZ]\+`, ""),
	rule(isa.TOKEN_MINUSWORD, `-[XYZ]`, ""),
	rule(isa.TOKEN_WORD, `[XYZ]`, ""),
	rule(isa.TOKEN_COMMA, `,`, ""),
	rule(isa.TOKEN_LPAR, `\(`, ""),
	rule(isa.TOKEN_RPAR, `\)`, ""),
	rule(isa.TOKEN_PLUS, `\+`, ""),
	rule(isa.TOKEN_MINUS, `-`, ""),
	rule(isa.TOKEN_TIMES, `\*`, ""),
	rule(isa.TOKEN_DIV, `/`, ""),
	rule(isa.TOKEN_LOGAND, `&&`, ""),
	rule(isa.TOKEN_BITAND, `&`, ""),
	rule(isa.TOKEN_LOGOR, `\|\|`, ""),
	rule(isa.TOKEN_BITOR, `\|`, ""),
	rule(isa.TOKEN_BITXOR, `\^`, ""),
	rule(isa.TOKEN_BITNOT, `~`, ""),
	rule(isa.TOKEN_NEQ, `!=`, ""),
	rule(isa.TOKEN_LOGNOT, `!`, ""),
	rule(isa.TOKEN_GEQ, `>=`, ""),
	rule(isa.TOKEN_LEQ, `<=`, ""),
	rule(isa.TOKEN_DEQ, `==`, ""),
	rule(isa.TOKEN_RSHIFT, `>>`, ""),
	rule(isa.TOKEN_LSHIFT, `<<`, ""),
	rule(isa.TOKEN_GT, `>`, ""),
	rule(isa.TOKEN_LT, `<`, ""),
	rule(isa.TOKEN_EQ, `=`, ""),
	rule(isa.TOKEN_REF, `[A-Za-z_][\w.]*`, ""),
	rule(isa.TOKEN_SYMBOL, "[!-/:-@\\[-`{-~]", ""),
}

// Lexer splits source text into token lines.
type Lexer struct {
	Verbose bool     // If set, logs every token line.
	ISA     *isa.Set // Registry for directive checks; isa.AVR if nil.
}

// Tokenize splits source text into token lines using the default lexer.
func Tokenize(input io.Reader) (lines []Line, err error) {
	lex := &Lexer{}
	return lex.Tokenize(input)
}

// Tokenize splits source text into token lines. Blank and comment-only
// lines are dropped.
func (lex *Lexer) Tokenize(input io.Reader) (lines []Line, err error) {
	set := lex.ISA
	if set == nil {
		set = isa.AVR
	}

	scanner := bufio.NewScanner(input)

	var text string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: text, Err: err}
		}
	}()

	for scanner.Scan() {
		text = scanner.Text()
		lineno++

		var tokens []isa.Token
		var ends []int
		tokens, ends, err = lex.scan(text)
		if err != nil {
			return
		}

		tokens, err = normalize(set, tokens, ends)
		if err != nil {
			return
		}

		if len(tokens) == 0 {
			continue
		}

		if lex.Verbose {
			log.Printf("%v: %v", lineno, tokens)
		}

		lines = append(lines, Line{LineNo: lineno, Text: text, Tokens: tokens})
	}

	err = scanner.Err()
	return
}

// scan splits a single line into raw tokens, and the column just past each.
func (lex *Lexer) scan(text string) (tokens []isa.Token, ends []int, err error) {
	// A trailing blank lets every follow set see a terminator.
	line := text + " "

	for pos := 0; pos < len(text); {
		rest := line[pos:]

		best := -1
		size := 0
		for n, lr := range lexRules {
			loc := lr.re.FindStringIndex(rest)
			if loc == nil || loc[1] == 0 {
				continue
			}
			if len(lr.follow) != 0 && !strings.ContainsRune(lr.follow, rune(rest[loc[1]])) {
				continue
			}
			if loc[1] > size {
				best = n
				size = loc[1]
			}
		}

		if best < 0 {
			err = ErrToken{Column: pos + 1}
			return
		}

		kind := lexRules[best].kind
		match := rest[:size]
		if kind != isa.TOKEN_NONE {
			tokens = append(tokens, makeToken(kind, match, pos+1))
			ends = append(ends, pos+1+size)
		}
		pos += size
	}

	return
}

// makeToken builds a token from its matched text.
func makeToken(kind isa.TokenKind, match string, column int) (tok isa.Token) {
	tok = isa.Token{Kind: kind, Text: match, Column: column}

	switch kind {
	case isa.TOKEN_LABEL:
		tok.Text = strings.TrimSpace(strings.TrimSuffix(match, ":"))
	case isa.TOKEN_WORDPLUSQ, isa.TOKEN_XPLUSQ:
		tok.Text = strings.Join(strings.Fields(match), "")
		q := tok.Text[strings.IndexByte(tok.Text, '+')+1:]
		tok.Value, _ = strconv.Atoi(q)
	}

	return
}

// normalize resolves lexical ambiguity in a token line, in place.
func normalize(set *isa.Set, tokens []isa.Token, ends []int) (out []isa.Token, err error) {
	for n := 0; n < len(tokens); n++ {
		tok := &tokens[n]

		switch tok.Kind {
		case isa.TOKEN_REG:
			tok.Value, err = strconv.Atoi(tok.Text[1:])
			if err != nil {
				err = ErrToken{Column: tok.Column}
				return
			}
		case isa.TOKEN_INST:
			// Only the first token after any labels is a mnemonic.
			leading := !slices.ContainsFunc(tokens[:n], func(t isa.Token) bool {
				return t.Kind != isa.TOKEN_LABEL
			})
			if !leading {
				tok.Kind = isa.TOKEN_REF
			}
		case isa.TOKEN_DIR:
			tok.Text = strings.ToUpper(tok.Text)
			if !set.Directive(tok.Text) {
				err = ErrUnknownDirective(tok.Text)
				return
			}
		}

		if n == 0 || tokens[n-1].Kind != isa.TOKEN_REF {
			continue
		}
		if tok.Kind == isa.TOKEN_COMMA || tok.Kind == isa.TOKEN_SYMBOL || tok.Kind.IsOperator() {
			continue
		}
		if ends[n-1] != tok.Column {
			continue
		}

		// Stitch onto the preceding reference.
		tokens[n-1].Text += tok.Text
		ends[n-1] = ends[n]
		tokens = slices.Delete(tokens, n, n+1)
		ends = slices.Delete(ends, n, n+1)
		n--
	}

	out = tokens
	return
}
