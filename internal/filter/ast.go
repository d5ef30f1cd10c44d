package filter

import (
	"regexp"
	"strconv"
	"strings"
)

// MatchKind is the lexical form a literal's value was written in
type MatchKind int

const (
	MatchPlain MatchKind = iota
	MatchQuoted
	MatchRegexp
)

func (k MatchKind) String() string {
	switch k {
	case MatchQuoted:
		return "quoted"
	case MatchRegexp:
		return "regex"
	default:
		return "plain"
	}
}

// Expr is a node of a parsed filter expression. Trees are immutable.
type Expr interface {
	String() string
	expr()
}

// Literal is a leaf condition, optionally scoped to a key
type Literal struct {
	Key     string // empty for a bare value
	Value   string
	Kind    MatchKind
	Exact   bool // key written as key=:
	Negated bool // key written as -key:
	Pos     int

	re          *regexp.Regexp // compiled when the resolved mode is regex
	reMatchCase bool           // case setting re was compiled with
	badRegex    bool           // pattern failed to compile; matched as plain text
}

// And is a conjunction of two expressions
type And struct {
	Left, Right Expr
}

// Or is a disjunction of two expressions
type Or struct {
	Left, Right Expr
}

// Paren groups an expression. Unclosed marks a '(' the parser had to close.
type Paren struct {
	Inner    Expr
	Unclosed bool
}

func (*Literal) expr() {}
func (*And) expr()     {}
func (*Or) expr()      {}
func (*Paren) expr()   {}

// String renders a literal back in filter syntax, e.g. -tag~:"a b"
func (l *Literal) String() string {
	var b strings.Builder
	if l.Key != "" {
		if l.Negated {
			b.WriteByte('-')
		}
		b.WriteString(l.Key)
		switch {
		case l.Kind == MatchRegexp:
			b.WriteByte('~')
		case l.Exact:
			b.WriteByte('=')
		}
		b.WriteByte(':')
	}
	if l.Kind == MatchQuoted || strings.ContainsAny(l.Value, " \t\"'") || l.Value == "" {
		b.WriteString(strconv.Quote(l.Value))
	} else {
		b.WriteString(l.Value)
	}
	return b.String()
}

func (e *And) String() string {
	return "And(" + e.Left.String() + ", " + e.Right.String() + ")"
}

func (e *Or) String() string {
	return "Or(" + e.Left.String() + ", " + e.Right.String() + ")"
}

func (e *Paren) String() string {
	return "Paren(" + e.Inner.String() + ")"
}

// Unwrap strips any Paren wrappers
func Unwrap(e Expr) Expr {
	for {
		p, ok := e.(*Paren)
		if !ok {
			return e
		}
		e = p.Inner
	}
}

// Walk visits every node of the tree depth-first, stopping a branch when fn
// returns false.
func Walk(e Expr, fn func(Expr) bool) {
	if e == nil || !fn(e) {
		return
	}
	switch n := e.(type) {
	case *And:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *Or:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *Paren:
		Walk(n.Inner, fn)
	}
}
