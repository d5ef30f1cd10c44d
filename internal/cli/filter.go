package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/vburojevic/lcf/internal/domain"
	"github.com/vburojevic/lcf/internal/filter"
	"github.com/vburojevic/lcf/internal/output"
)

// FilterCmd streams logcat output through a filter expression
type FilterCmd struct {
	Expr    string   `short:"e" help:"Filter expression, e.g. 'tag:MyApp level:WARN' (default: filter.default from config)"`
	Files   []string `arg:"" optional:"" help:"Logcat captures (threadtime/time/brief text or NDJSON, optionally gzip/zstd); - or none reads stdin"`
	Follow  bool     `short:"F" help:"Keep reading the last input as it grows"`
	Workers int      `short:"w" help:"Goroutines used to match a loaded capture (default: filter.workers from config)"`
	Exclude []string `short:"x" help:"Drop entries whose message matches this regex (can be repeated)"`
	Strict  bool     `help:"Fail when the filter has problems instead of using the partial filter"`
	Count   bool     `help:"Only print the number of matching entries"`
}

// Run executes the filter command
func (c *FilterCmd) Run(globals *Globals) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return c.run(ctx, globals)
}

func (c *FilterCmd) run(ctx context.Context, globals *Globals) error {
	f, _, err := buildPipeline(globals, c.Expr, c.Strict, c.Exclude)
	if err != nil {
		return emitCLIError(globals, err)
	}
	emitter := globals.Emitter()

	if c.Follow {
		return c.follow(ctx, globals, f, emitter)
	}

	entries, st, err := readInputs(ctx, globals, c.Files)
	if err != nil {
		return emitCLIError(globals, readError(err))
	}
	globals.Debug("read %d entries from %d lines (%d unparseable)", st.Entries, st.Lines, st.Unparseable)

	workers := c.Workers
	if workers <= 0 && globals.Config != nil {
		workers = globals.Config.Filter.Workers
	}
	matched, err := filter.MatchAll(ctx, entries, f, workers)
	if err != nil {
		return emitCLIError(globals, err)
	}

	if c.Count {
		return emitter.WriteCount(len(matched), len(entries))
	}
	for i := range matched {
		if err := emitter.Write(&matched[i]); err != nil {
			return err
		}
	}
	return nil
}

// follow matches entries one by one as they arrive until ctx ends
func (c *FilterCmd) follow(ctx context.Context, globals *Globals, f filter.Filter, emitter output.Emitter) error {
	matched, total := 0, 0
	_, err := streamInputs(ctx, globals, c.Files, true, func(e *domain.LogEntry) error {
		total++
		if f != nil && !f.Match(e) {
			return nil
		}
		matched++
		if c.Count {
			return nil
		}
		return emitter.Write(e)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return emitCLIError(globals, readError(err))
	}
	if c.Count {
		return emitter.WriteCount(matched, total)
	}
	return nil
}

// readError classifies reader failures that are not already CLI errors
func readError(err error) error {
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return err
	}
	return &CLIError{Code: "READ_FAILED", Message: err.Error(), Hint: hintForRead(err), Err: err}
}
