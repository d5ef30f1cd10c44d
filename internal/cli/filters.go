package cli

import (
	"regexp"

	"github.com/vburojevic/lcf/internal/domain"
	"github.com/vburojevic/lcf/internal/filter"
	"github.com/vburojevic/lcf/internal/output"
)

// resolveExpr picks the -e expression, falling back to filter.default
func resolveExpr(globals *Globals, expr string) string {
	if expr == "" && globals.Config != nil {
		return globals.Config.Filter.Default
	}
	return expr
}

// compileQuery parses expr. Diagnostics are reported; with strict they
// fail the command, otherwise the partial tree is used.
func compileQuery(globals *Globals, expr string, strict bool) (*filter.Query, error) {
	opts, err := globals.FilterOptions()
	if err != nil {
		return nil, err
	}
	q := filter.Compile(resolveExpr(globals, expr), opts)
	if q.Valid() {
		return q, nil
	}

	if !globals.Quiet || strict {
		emitDiagnostics(globals, q.Result)
	}
	if strict {
		return nil, &CLIError{
			Code:    "INVALID_FILTER",
			Message: q.Diagnostics.Err().Error(),
			Hint:    hintForFilter(q.Diagnostics),
			Err:     q.Diagnostics.Err(),
		}
	}
	globals.Debug("filter %q has %d problem(s), using tree %s", q.Text, len(q.Diagnostics), exprString(q.Expr))
	return q, nil
}

// emitDiagnostics writes diagnostic records to stdout in ndjson mode and
// a caret listing to stderr in text mode.
func emitDiagnostics(globals *Globals, res *filter.Result) {
	var err error
	if globals.Format == "ndjson" {
		err = globals.Emitter().WriteDiagnostics(res.Text, res.Diagnostics)
	} else {
		err = output.NewTextWriter(globals.Stderr, output.ColorEnabled(globals.Stderr)).WriteDiagnostics(res.Text, res.Diagnostics)
	}
	if err != nil {
		globals.Debug("failed to write diagnostics: %v", err)
	}
}

func exprString(e filter.Expr) string {
	if e == nil {
		return "(matches everything)"
	}
	return e.String()
}

// compileExcludes compiles config and flag exclude patterns
func compileExcludes(globals *Globals, exclude []string) ([]*regexp.Regexp, error) {
	var patterns []string
	if globals.Config != nil {
		patterns = append(patterns, globals.Config.Filter.Exclude...)
	}
	patterns = append(patterns, exclude...)

	var out []*regexp.Regexp
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, &CLIError{Code: "INVALID_EXCLUDE", Message: "invalid exclude pattern: " + err.Error(), Err: err}
		}
		out = append(out, re)
	}
	return out, nil
}

// buildPipeline combines --level, excludes and the query. A nil result
// matches everything.
func buildPipeline(globals *Globals, expr string, strict bool, exclude []string) (filter.Filter, *filter.Query, error) {
	minLevel, err := globals.MinLevel()
	if err != nil {
		return nil, nil, err
	}
	excludes, err := compileExcludes(globals, exclude)
	if err != nil {
		return nil, nil, err
	}
	q, err := compileQuery(globals, expr, strict)
	if err != nil {
		return nil, nil, err
	}

	var qf filter.Filter
	if q.Expr != nil {
		qf = q
	}
	// Verbose is the floor, so it filters nothing.
	if minLevel == domain.LogLevelVerbose {
		minLevel = domain.LogLevelUnknown
	}
	p := filter.NewPipeline(minLevel, qf, excludes)
	if p == nil {
		return nil, q, nil
	}
	return p, q, nil
}
