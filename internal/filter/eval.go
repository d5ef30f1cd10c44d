package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/vburojevic/lcf/internal/domain"
)

// Record is the read-only view of a log record the evaluator needs.
// Field reports false for names the record does not carry.
type Record interface {
	Field(name string) (string, bool)
}

// MapRecord is a Record backed by a plain map
type MapRecord map[string]string

// Field implements Record
func (m MapRecord) Field(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// Options configure parsing and evaluation
type Options struct {
	Keys         *KeyTable   // nil means DefaultKeys()
	MatchCase    bool        // case-sensitive matching for text and regex literals
	Clock        clock.Clock // time source for age:, nil means the wall clock
	MinePackages []string    // packages selected by package:mine
}

func (o Options) keys() *KeyTable {
	if o.Keys != nil {
		return o.Keys
	}
	return DefaultKeys()
}

// Evaluator matches expression trees against records. It holds no mutable
// state and may be shared across goroutines.
type Evaluator struct {
	keys         *KeyTable
	matchCase    bool
	clock        clock.Clock
	minePackages map[string]bool
}

// NewEvaluator creates an evaluator from options
func NewEvaluator(opts Options) *Evaluator {
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}
	mine := make(map[string]bool, len(opts.MinePackages))
	for _, p := range opts.MinePackages {
		mine[p] = true
	}
	return &Evaluator{
		keys:         opts.keys(),
		matchCase:    opts.MatchCase,
		clock:        clk,
		minePackages: mine,
	}
}

// Evaluate matches expr against rec with the default options.
// A nil expression matches every record.
func Evaluate(expr Expr, rec Record) bool {
	return NewEvaluator(Options{}).Evaluate(expr, rec)
}

// Evaluate matches expr against rec
func (ev *Evaluator) Evaluate(expr Expr, rec Record) bool {
	switch n := expr.(type) {
	case nil:
		return true
	case *Literal:
		return ev.literal(n, rec)
	case *And:
		return ev.Evaluate(n.Left, rec) && ev.Evaluate(n.Right, rec)
	case *Or:
		return ev.Evaluate(n.Left, rec) || ev.Evaluate(n.Right, rec)
	case *Paren:
		return ev.Evaluate(n.Inner, rec)
	default:
		return false
	}
}

func (ev *Evaluator) literal(l *Literal, rec Record) bool {
	if l == nil {
		return true
	}
	if l.Key == "" {
		mode := MatchContains
		if l.Kind == MatchRegexp {
			mode = MatchRegex
		}
		return ev.anyField(l, mode, ev.keys.DefaultFields(), rec)
	}

	spec, ok := ev.keys.Lookup(l.Key)
	if !ok {
		return false
	}

	switch spec.Kind {
	case KeyString:
		var matched bool
		if spec.Name == "package" && l.Value == "mine" && l.Kind == MatchPlain {
			matched = ev.isMine(rec)
		} else {
			matched = ev.anyField(l, resolveMode(l, spec), spec.Fields, rec)
		}
		if l.Negated {
			return !matched
		}
		return matched
	case KeyLevel:
		return ev.level(l, rec)
	case KeyAge:
		return ev.age(l, rec)
	case KeyIs:
		return ev.is(l, rec)
	case KeyName:
		return true
	default:
		return false
	}
}

// resolveMode picks the comparison for a string literal: the key suffix
// wins, then the key's configured default.
func resolveMode(l *Literal, spec KeySpec) MatchMode {
	switch {
	case l.Kind == MatchRegexp:
		return MatchRegex
	case l.Exact:
		return MatchExact
	default:
		return spec.Mode
	}
}

func (ev *Evaluator) anyField(l *Literal, mode MatchMode, fields []string, rec Record) bool {
	var re *regexp.Regexp
	if mode == MatchRegex {
		re = ev.regexFor(l)
		if re == nil {
			mode = MatchContains
		}
	}
	for _, f := range fields {
		v, ok := rec.Field(f)
		if !ok {
			continue
		}
		if ev.matchText(v, l.Value, mode, re) {
			return true
		}
	}
	return false
}

func (ev *Evaluator) regexFor(l *Literal) *regexp.Regexp {
	// A pattern compiled under another case setting is rebuilt.
	if l.re != nil && l.reMatchCase == ev.matchCase {
		return l.re
	}
	if l.badRegex {
		return nil
	}
	re, err := compilePattern(l.Value, ev.matchCase)
	if err != nil {
		return nil
	}
	return re
}

func (ev *Evaluator) matchText(field, value string, mode MatchMode, re *regexp.Regexp) bool {
	switch mode {
	case MatchRegex:
		return re.MatchString(field)
	case MatchExact:
		if ev.matchCase {
			return field == value
		}
		return strings.EqualFold(field, value)
	default:
		if ev.matchCase {
			return strings.Contains(field, value)
		}
		return containsFold(field, value)
	}
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func (ev *Evaluator) isMine(rec Record) bool {
	pkg, ok := rec.Field(domain.FieldPackage)
	if !ok || pkg == "" {
		return false
	}
	return ev.minePackages[pkg]
}

func (ev *Evaluator) level(l *Literal, rec Record) bool {
	want, err := parseLevelValue(l.Value)
	if err != nil {
		return false
	}
	v, ok := rec.Field(domain.FieldLevel)
	if !ok {
		return false
	}
	return domain.ParseLogLevel(v).AtLeast(want)
}

func (ev *Evaluator) age(l *Literal, rec Record) bool {
	d, err := ParseAge(l.Value)
	if err != nil {
		return false
	}
	v, ok := rec.Field(domain.FieldTimestamp)
	if !ok || v == "" {
		return false
	}
	ts, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return false
	}
	return !ts.Before(ev.clock.Now().Add(-d))
}

func (ev *Evaluator) is(l *Literal, rec Record) bool {
	prop, err := parseIsValue(l.Value)
	if err != nil {
		return false
	}
	switch prop {
	case isCrash:
		return IsCrash(rec)
	case isStacktrace:
		msg, _ := rec.Field(domain.FieldMessage)
		return IsStacktraceLine(msg)
	default:
		return false
	}
}

func parseLevelValue(s string) (domain.LogLevel, error) {
	lvl := domain.ParseLogLevel(s)
	if !lvl.IsValid() {
		return lvl, fmt.Errorf("unknown level %q", s)
	}
	return lvl, nil
}

// ParseAge parses an age: value such as 30s, 5m, 2h or 1d
func ParseAge(s string) (time.Duration, error) {
	if len(s) < 2 {
		return 0, fmt.Errorf("invalid age %q (use a number followed by s, m, h or d)", s)
	}
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid age %q (use a number followed by s, m, h or d)", s)
	}
	unit := time.Second
	switch s[len(s)-1] {
	case 's':
	case 'm':
		unit = time.Minute
	case 'h':
		unit = time.Hour
	case 'd':
		unit = 24 * time.Hour
	default:
		return 0, fmt.Errorf("invalid age unit in %q (use s, m, h or d)", s)
	}
	return time.Duration(n) * unit, nil
}

const (
	isCrash      = "crash"
	isStacktrace = "stacktrace"
)

func parseIsValue(s string) (string, error) {
	switch strings.ToLower(s) {
	case isCrash:
		return isCrash, nil
	case isStacktrace:
		return isStacktrace, nil
	default:
		return "", fmt.Errorf("unknown is: value %q (use crash or stacktrace)", s)
	}
}

var (
	stackFrameRe = regexp.MustCompile(`^\s*at .+\(.*\)\s*$`)
	causedByRe   = regexp.MustCompile(`^\s*Caused by: `)
)

// IsCrash reports whether the record is a Java or native crash report line
func IsCrash(rec Record) bool {
	lvl, _ := rec.Field(domain.FieldLevel)
	tag, _ := rec.Field(domain.FieldTag)
	msg, _ := rec.Field(domain.FieldMessage)
	switch domain.ParseLogLevel(lvl) {
	case domain.LogLevelError:
		return tag == "AndroidRuntime" && strings.HasPrefix(msg, "FATAL EXCEPTION")
	case domain.LogLevelAssert:
		return tag == "libc" || tag == "DEBUG"
	default:
		return false
	}
}

// IsStacktraceLine reports whether msg is a Java stack frame or cause line
func IsStacktraceLine(msg string) bool {
	return stackFrameRe.MatchString(msg) || causedByRe.MatchString(msg)
}
