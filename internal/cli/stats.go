package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/vburojevic/lcf/internal/filter"
	"github.com/vburojevic/lcf/internal/output"
)

// StatsCmd summarizes the entries matching a filter
type StatsCmd struct {
	Expr        string   `short:"e" help:"Filter expression (default: filter.default from config)"`
	Files       []string `arg:"" optional:"" help:"Logcat captures; - or none reads stdin"`
	Exclude     []string `short:"x" help:"Drop entries whose message matches this regex (can be repeated)"`
	Strict      bool     `help:"Fail when the filter has problems"`
	TopN        int      `name:"top" help:"Number of top tags and patterns to show (default: stats.top_n from config)"`
	Remember    bool     `help:"Remember error patterns across runs and mark new ones"`
	PatternFile string   `help:"Pattern memory file (default: stats.patterns_file or ~/.lcf/patterns.json)"`
}

// Run executes the stats command
func (c *StatsCmd) Run(globals *Globals) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return c.run(ctx, globals)
}

func (c *StatsCmd) run(ctx context.Context, globals *Globals) error {
	f, _, err := buildPipeline(globals, c.Expr, c.Strict, c.Exclude)
	if err != nil {
		return emitCLIError(globals, err)
	}

	entries, st, err := readInputs(ctx, globals, c.Files)
	if err != nil {
		return emitCLIError(globals, readError(err))
	}
	workers := 0
	if globals.Config != nil {
		workers = globals.Config.Filter.Workers
	}
	matched, err := filter.MatchAll(ctx, entries, f, workers)
	if err != nil {
		return emitCLIError(globals, err)
	}

	topN := c.TopN
	if topN <= 0 && globals.Config != nil {
		topN = globals.Config.Stats.TopN
	}
	analyzer := output.NewAnalyzer(topN)
	summary := analyzer.Summarize(matched, len(entries))
	summary.Unparseable = st.Unparseable

	var annotated []output.AnnotatedPattern
	detected := analyzer.DetectPatterns(matched)
	if c.Remember {
		annotated, err = c.remember(globals, detected)
		if err != nil {
			return emitCLIError(globals, err)
		}
	} else {
		for _, p := range detected {
			annotated = append(annotated, output.AnnotatedPattern{PatternMatch: p})
		}
	}

	return globals.Emitter().WriteSummary(summary, annotated)
}

// remember records detected patterns in the pattern store
func (c *StatsCmd) remember(globals *Globals, detected []output.PatternMatch) ([]output.AnnotatedPattern, error) {
	path := c.PatternFile
	if path == "" && globals.Config != nil {
		path = globals.Config.Stats.PatternsFile
	}
	store, err := output.NewPatternStore(path, globals.Clock)
	if err != nil {
		return nil, &CLIError{Code: "PATTERN_STORE", Message: "cannot load pattern memory: " + err.Error(), Hint: "Delete or fix " + patternPath(path), Err: err}
	}
	annotated := store.Record(detected)
	if err := store.Save(); err != nil {
		emitWarning(globals, "failed to save patterns to "+store.Path()+": "+err.Error())
	}
	globals.Debug("pattern memory %s holds %d patterns", store.Path(), store.Count())
	return annotated, nil
}

func patternPath(path string) string {
	if path == "" {
		return output.DefaultPatternsPath()
	}
	return path
}
