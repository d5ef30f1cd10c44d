package filter

import (
	"fmt"
	"strings"
)

// TokenKind classifies a lexical token of a filter expression
type TokenKind int

const (
	TokEOF TokenKind = iota
	TokKey
	TokKValue
	TokStringKey
	TokStringKValue
	TokRegexKey
	TokRegexKValue
	TokValue
	TokAnd
	TokOr
	TokLParen
	TokRParen
)

var tokenKindNames = [...]string{
	TokEOF:          "EOF",
	TokKey:          "KEY",
	TokKValue:       "KVALUE",
	TokStringKey:    "STRING_KEY",
	TokStringKValue: "STRING_KVALUE",
	TokRegexKey:     "REGEX_KEY",
	TokRegexKValue:  "REGEX_KVALUE",
	TokValue:        "VALUE",
	TokAnd:          "AND",
	TokOr:           "OR",
	TokLParen:       "LPAREN",
	TokRParen:       "RPAREN",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// Token is one lexical unit. Text is the raw source slice; Value is the
// decoded text (quotes stripped, escapes resolved). Regex values keep their
// escapes. Quoted is set when the value was written as a quoted string.
type Token struct {
	Kind   TokenKind
	Text   string
	Value  string
	Pos    int
	Quoted bool
}

// Lex splits filter text into tokens using the default key table.
func Lex(input string) ([]Token, Diagnostics) {
	return DefaultKeys().Lex(input)
}

// Lex splits filter text into tokens. Lexing is total: malformed fragments
// degrade to VALUE tokens and are reported as diagnostics. The returned
// slice always ends with an EOF token.
func (kt *KeyTable) Lex(input string) ([]Token, Diagnostics) {
	lx := &lexer{input: input, keys: kt}
	lx.run()
	return lx.toks, lx.diags
}

type lexer struct {
	input string
	keys  *KeyTable
	pos   int
	toks  []Token
	diags Diagnostics
}

func (lx *lexer) emit(kind TokenKind, start, end int, value string, quoted bool) {
	lx.toks = append(lx.toks, Token{
		Kind:   kind,
		Text:   lx.input[start:end],
		Value:  value,
		Pos:    start,
		Quoted: quoted,
	})
}

func (lx *lexer) run() {
	in := lx.input
	for lx.pos < len(in) {
		ch := in[lx.pos]
		if isSpace(ch) {
			lx.pos++
			continue
		}

		start := lx.pos
		switch ch {
		case '(':
			lx.pos++
			lx.emit(TokLParen, start, lx.pos, "(", false)
			continue
		case ')':
			lx.pos++
			lx.emit(TokRParen, start, lx.pos, ")", false)
			continue
		case '&', '|':
			lx.pos++
			if lx.pos < len(in) && in[lx.pos] == ch {
				lx.pos++
			}
			kind := TokAnd
			if ch == '|' {
				kind = TokOr
			}
			lx.emit(kind, start, lx.pos, in[start:lx.pos], false)
			continue
		}

		if lx.lexKeyValue() {
			continue
		}
		lx.lexBareValue()
	}
	lx.toks = append(lx.toks, Token{Kind: TokEOF, Pos: len(in)})
}

// lexKeyValue recognizes [-]name[~=]: followed by a value. It returns false
// when the input at pos does not start with a known key.
func (lx *lexer) lexKeyValue() bool {
	in := lx.input
	start := lx.pos
	i := start
	negated := false
	if in[i] == '-' {
		negated = true
		i++
	}
	nameStart := i
	for i < len(in) && isKeyChar(in[i]) {
		i++
	}
	if i == nameStart || i >= len(in) {
		return false
	}
	name := in[nameStart:i]

	regex, exact := false, false
	switch in[i] {
	case '~':
		regex = true
		i++
	case '=':
		exact = true
		i++
	}
	if i >= len(in) || in[i] != ':' {
		return false
	}
	i++

	spec, ok := lx.keys.Lookup(name)
	if !ok {
		return false
	}
	if spec.Kind != KeyString && (regex || exact || negated) {
		return false
	}
	if negated && !spec.Negatable {
		return false
	}

	keyKind, valueKind := TokStringKey, TokStringKValue
	switch {
	case spec.Kind != KeyString:
		keyKind, valueKind = TokKey, TokKValue
	case regex:
		keyKind, valueKind = TokRegexKey, TokRegexKValue
	}

	// A key must be glued to its value.
	if i >= len(in) || isSpace(in[i]) || in[i] == ')' {
		lx.pos = i
		lx.emit(TokValue, start, i, in[start:i], false)
		lx.diags = append(lx.diags, Diagnostic{
			Offset:  start,
			Message: fmt.Sprintf("missing value after %q", in[start:i]),
		})
		return true
	}

	// Regex values go to regexp as written, escapes included.
	raw := regex || (spec.Kind == KeyString && !exact && spec.Mode == MatchRegex)

	lx.pos = i
	lx.emit(keyKind, start, i, in[start:i], false)
	valueStart := i
	value, quoted := lx.scanValue(raw)
	lx.emit(valueKind, valueStart, lx.pos, value, quoted)
	return true
}

func (lx *lexer) lexBareValue() {
	start := lx.pos
	value, quoted := lx.scanValue(false)
	if !quoted {
		// Only the exact uppercase words are operators; "and"/"or" stay searchable.
		switch lx.input[start:lx.pos] {
		case "AND":
			lx.emit(TokAnd, start, lx.pos, value, false)
			return
		case "OR":
			lx.emit(TokOr, start, lx.pos, value, false)
			return
		}
	}
	lx.emit(TokValue, start, lx.pos, value, quoted)
}

// scanValue reads a quoted string or a bare word at pos and returns the
// decoded value. A raw value keeps its regex escapes.
func (lx *lexer) scanValue(raw bool) (string, bool) {
	ch := lx.input[lx.pos]
	if ch == '"' || ch == '\'' {
		return lx.scanQuoted(raw), true
	}
	return lx.scanWord(raw), false
}

// scanQuoted reads a quoted literal. An unterminated literal runs to the end
// of input.
func (lx *lexer) scanQuoted(raw bool) string {
	in := lx.input
	start := lx.pos
	quote := in[start]
	var b strings.Builder
	i := start + 1
	for i < len(in) {
		c := in[i]
		if c == '\\' && i+1 < len(in) {
			next := in[i+1]
			if next != quote && (raw || next != '\\') {
				b.WriteByte(c)
			}
			b.WriteByte(next)
			i += 2
			continue
		}
		if c == quote {
			lx.pos = i + 1
			return b.String()
		}
		b.WriteByte(c)
		i++
	}
	lx.pos = len(in)
	lx.diags = append(lx.diags, Diagnostic{
		Offset:  start,
		Message: "unterminated quoted string",
	})
	return b.String()
}

// scanWord reads a bare word up to whitespace or a ')' that closes nothing
// opened inside the word. An escaped space, quote or paren never ends or
// nests the word.
func (lx *lexer) scanWord(raw bool) string {
	in := lx.input
	var b strings.Builder
	depth := 0
	i := lx.pos
	for i < len(in) {
		c := in[i]
		if isSpace(c) {
			break
		}
		if c == '\\' && i+1 < len(in) {
			next := in[i+1]
			if !dropsEscape(next, raw) {
				b.WriteByte(c)
			}
			b.WriteByte(next)
			i += 2
			continue
		}
		if c == '(' {
			depth++
		} else if c == ')' {
			if depth == 0 {
				break
			}
			depth--
		}
		b.WriteByte(c)
		i++
	}
	lx.pos = i
	return b.String()
}

// dropsEscape reports whether the backslash before b is removed from a
// bare word. Regex values keep it unless b is whitespace, which RE2 cannot
// escape.
func dropsEscape(b byte, raw bool) bool {
	if isSpace(b) {
		return true
	}
	if raw {
		return false
	}
	switch b {
	case '\\', '"', '\'', '(', ')':
		return true
	}
	return false
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func isKeyChar(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b == '_'
}
