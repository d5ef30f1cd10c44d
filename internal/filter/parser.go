package filter

import (
	"fmt"
	"regexp"
	"strings"
)

// Result is the outcome of parsing filter text: a best-effort tree plus the
// diagnostics collected on the way. Expr is nil when the text holds no
// expression, which matches every record.
type Result struct {
	Text        string
	Tokens      []Token
	Expr        Expr
	Diagnostics Diagnostics
}

// Valid reports whether the text parsed without diagnostics
func (r *Result) Valid() bool {
	return r != nil && len(r.Diagnostics) == 0
}

// Parse parses filter text with the default options
func Parse(text string) *Result {
	return ParseWith(text, Options{})
}

// ParseWith parses filter text. It never fails: malformed input produces
// diagnostics and a partial tree.
//
//	sequence   := expression*          (implicit AND)
//	expression := and ( OR and )*
//	and        := atom ( AND atom )*
//	atom       := literal | '(' sequence ')'
func ParseWith(text string, opts Options) *Result {
	keys := opts.keys()
	toks, diags := keys.Lex(text)
	p := &parser{
		toks:      toks,
		keys:      keys,
		matchCase: opts.MatchCase,
		diags:     diags,
	}
	expr := p.parseRoot()
	return &Result{
		Text:        text,
		Tokens:      toks,
		Expr:        expr,
		Diagnostics: p.diags.sorted(),
	}
}

type parser struct {
	toks      []Token
	pos       int
	keys      *KeyTable
	matchCase bool
	diags     Diagnostics
}

func (p *parser) peek() Token {
	if p.pos >= len(p.toks) {
		return Token{Kind: TokEOF}
	}
	return p.toks[p.pos]
}

func (p *parser) next() Token {
	t := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *parser) errorf(pos int, format string, args ...interface{}) {
	p.diags = append(p.diags, Diagnostic{Offset: pos, Message: fmt.Sprintf(format, args...)})
}

func (p *parser) parseRoot() Expr {
	var root Expr
	for {
		switch t := p.peek(); t.Kind {
		case TokEOF:
			return root
		case TokRParen:
			p.next()
			p.errorf(t.Pos, "unmatched ')'")
			continue
		}
		root = conjoin(root, p.parseOr())
	}
}

func (p *parser) parseSequence() Expr {
	var seq Expr
	for {
		switch p.peek().Kind {
		case TokEOF, TokRParen:
			return seq
		}
		seq = conjoin(seq, p.parseOr())
	}
}

func (p *parser) parseOr() Expr {
	left := p.parseAnd()
	for p.peek().Kind == TokOr {
		op := p.next()
		right := p.parseAnd()
		switch {
		case right == nil:
			p.errorf(op.Pos, "missing right operand after %s", op.Text)
		case left == nil:
			left = right
		default:
			left = &Or{Left: left, Right: right}
		}
	}
	return left
}

func (p *parser) parseAnd() Expr {
	left := p.parseAtom()
	for p.peek().Kind == TokAnd {
		op := p.next()
		right := p.parseAtom()
		switch {
		case right == nil:
			p.errorf(op.Pos, "missing right operand after %s", op.Text)
		case left == nil:
			left = right
		default:
			left = &And{Left: left, Right: right}
		}
	}
	return left
}

func (p *parser) parseAtom() Expr {
	for {
		t := p.peek()
		switch t.Kind {
		case TokEOF, TokRParen:
			return nil
		case TokAnd, TokOr:
			p.next()
			p.errorf(t.Pos, "missing left operand before %s", t.Text)
			continue
		case TokLParen:
			p.next()
			inner := p.parseSequence()
			if p.peek().Kind == TokRParen {
				p.next()
				if inner == nil {
					p.errorf(t.Pos, "empty parentheses")
					return nil
				}
				return &Paren{Inner: inner}
			}
			p.errorf(t.Pos, "unmatched '('")
			if inner == nil {
				return nil
			}
			return &Paren{Inner: inner, Unclosed: true}
		default:
			return p.parseLiteral()
		}
	}
}

func (p *parser) parseLiteral() Expr {
	t := p.next()
	switch t.Kind {
	case TokKey, TokStringKey, TokRegexKey:
		v := p.peek()
		if v.Kind != valueKindFor(t.Kind) {
			p.errorf(t.Pos, "missing value after %q", t.Text)
			return &Literal{Value: t.Text, Pos: t.Pos}
		}
		p.next()
		return p.keyedLiteral(t, v)
	default:
		kind := MatchPlain
		if t.Quoted {
			kind = MatchQuoted
		}
		return &Literal{Value: t.Value, Kind: kind, Pos: t.Pos}
	}
}

func valueKindFor(k TokenKind) TokenKind {
	switch k {
	case TokKey:
		return TokKValue
	case TokRegexKey:
		return TokRegexKValue
	default:
		return TokStringKValue
	}
}

func (p *parser) keyedLiteral(key, val Token) Expr {
	name, negated, regex, exact := splitKey(key.Text)
	lit := &Literal{
		Key:     name,
		Value:   val.Value,
		Kind:    MatchPlain,
		Exact:   exact,
		Negated: negated,
		Pos:     key.Pos,
	}
	switch {
	case regex:
		lit.Kind = MatchRegexp
	case val.Quoted:
		lit.Kind = MatchQuoted
	}

	spec, _ := p.keys.Lookup(name)
	switch spec.Kind {
	case KeyString:
		if resolveMode(lit, spec) == MatchRegex {
			re, err := compilePattern(lit.Value, p.matchCase)
			if err != nil {
				p.errorf(val.Pos, "invalid regex %q: %v", lit.Value, err)
				lit.badRegex = true
			} else {
				lit.re = re
				lit.reMatchCase = p.matchCase
			}
		}
	case KeyLevel:
		if _, err := parseLevelValue(lit.Value); err != nil {
			p.errorf(val.Pos, "%v", err)
		}
	case KeyAge:
		if _, err := ParseAge(lit.Value); err != nil {
			p.errorf(val.Pos, "%v", err)
		}
	case KeyIs:
		if _, err := parseIsValue(lit.Value); err != nil {
			p.errorf(val.Pos, "%v", err)
		}
	}
	return lit
}

// splitKey decodes "-tag~:" into its parts
func splitKey(text string) (name string, negated, regex, exact bool) {
	name = strings.TrimSuffix(text, ":")
	if strings.HasPrefix(name, "-") {
		negated = true
		name = name[1:]
	}
	switch {
	case strings.HasSuffix(name, "~"):
		regex = true
		name = name[:len(name)-1]
	case strings.HasSuffix(name, "="):
		exact = true
		name = name[:len(name)-1]
	}
	return name, negated, regex, exact
}

func compilePattern(pattern string, matchCase bool) (*regexp.Regexp, error) {
	if !matchCase {
		pattern = "(?i)" + pattern
	}
	return regexp.Compile(pattern)
}

// conjoin ANDs b onto a, skipping missing operands
func conjoin(a, b Expr) Expr {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	default:
		return &And{Left: a, Right: b}
	}
}
