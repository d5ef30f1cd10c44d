package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vburojevic/lcf/internal/filter"
	"github.com/vburojevic/lcf/internal/output"
)

// DiscoverCmd lists the tags, packages and processes present in a capture,
// the values filter keys can be written against
type DiscoverCmd struct {
	Expr  string   `short:"e" help:"Only consider entries matching this filter"`
	Files []string `arg:"" optional:"" help:"Logcat captures; - or none reads stdin"`
	TopN  int      `name:"top" default:"20" help:"Number of values to show per field"`
}

// Run executes the discover command
func (c *DiscoverCmd) Run(globals *Globals) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return c.run(ctx, globals)
}

func (c *DiscoverCmd) run(ctx context.Context, globals *Globals) error {
	f, _, err := buildPipeline(globals, c.Expr, false, nil)
	if err != nil {
		return emitCLIError(globals, err)
	}

	entries, _, err := readInputs(ctx, globals, c.Files)
	if err != nil {
		return emitCLIError(globals, readError(err))
	}
	matched, err := filter.MatchAll(ctx, entries, f, 0)
	if err != nil {
		return emitCLIError(globals, err)
	}
	if len(matched) == 0 {
		return outputErrorCommon(globals, "NO_ENTRIES", "no log entries found", "Check the capture format with `lcf -v`")
	}

	d := output.NewAnalyzer(c.TopN).Discover(matched)
	if !globals.Quiet && globals.Format == "text" {
		fmt.Fprintf(globals.Stderr, "Discovered %d entries (%s to %s)\n\n", d.TotalCount, orDash(d.TimeRange.Start), orDash(d.TimeRange.End))
	}
	return globals.Emitter().WriteDiscovery(d)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
