package filter

import (
	"sync"

	"github.com/vburojevic/lcf/internal/domain"
)

// Query is a parsed filter bound to an evaluator
type Query struct {
	*Result
	eval *Evaluator
}

// Compile parses text and binds the tree to an evaluator built from opts.
// The query is usable even when it carries diagnostics.
func Compile(text string, opts Options) *Query {
	return &Query{
		Result: ParseWith(text, opts),
		eval:   NewEvaluator(opts),
	}
}

// Match implements Filter
func (q *Query) Match(entry *domain.LogEntry) bool {
	if q == nil {
		return true
	}
	return q.eval.Evaluate(q.Expr, entry)
}

// MatchRecord evaluates the query against any Record
func (q *Query) MatchRecord(rec Record) bool {
	if q == nil {
		return true
	}
	return q.eval.Evaluate(q.Expr, rec)
}

// Live tracks filter text being edited. The active query only changes when
// new text parses cleanly, so a half-typed filter keeps the previous one in
// force.
type Live struct {
	mu     sync.RWMutex
	opts   Options
	text   string
	latest *Query
	active *Query
}

// NewLive creates a live filter starting from text
func NewLive(text string, opts Options) *Live {
	l := &Live{opts: opts}
	l.Update(text)
	return l
}

// Update re-parses text and returns its diagnostics. The active query is
// replaced only when there are none.
func (l *Live) Update(text string) Diagnostics {
	q := Compile(text, l.opts)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.text = text
	l.latest = q
	if q.Valid() || l.active == nil {
		// Nothing to fall back to on first use: run the partial tree.
		l.active = q
	}
	return q.Diagnostics
}

// Text returns the text most recently passed to Update
func (l *Live) Text() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.text
}

// Active returns the query currently used for matching
func (l *Live) Active() *Query {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// Diagnostics returns the diagnostics of the most recent text
func (l *Live) Diagnostics() Diagnostics {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.latest == nil {
		return nil
	}
	return l.latest.Diagnostics
}

// Stale reports whether the most recent text is not yet in force
func (l *Live) Stale() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.latest != l.active
}

// Match implements Filter using the active query
func (l *Live) Match(entry *domain.LogEntry) bool {
	return l.Active().Match(entry)
}
