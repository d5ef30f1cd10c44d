package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/vburojevic/lcf/internal/domain"
	"github.com/vburojevic/lcf/internal/tui"
	"golang.org/x/sync/errgroup"
)

// UICmd launches the interactive live filter
type UICmd struct {
	Expr       string   `short:"e" help:"Initial filter expression (default: filter.default from config)"`
	Files      []string `arg:"" optional:"" help:"Logcat captures; - or none reads stdin"`
	Follow     bool     `short:"F" help:"Keep reading the last input as it grows"`
	BufferSize int      `help:"Number of recent entries to keep (default: ui.buffer_size from config)"`
}

// Run executes the UI command
func (c *UICmd) Run(globals *Globals) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts, err := globals.FilterOptions()
	if err != nil {
		return emitCLIError(globals, err)
	}
	size := c.BufferSize
	if size <= 0 && globals.Config != nil {
		size = globals.Config.UI.BufferSize
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	entries := make(chan domain.LogEntry, 256)
	errs := make(chan error, 1)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(entries)
		defer close(errs)
		_, err := streamInputs(gctx, globals, c.Files, c.Follow, func(e *domain.LogEntry) error {
			select {
			case entries <- *e:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			errs <- err
		}
		return nil
	})

	inputs := inputSource(c.Files)
	uiErr := tui.Run(ctx, tui.Options{
		Source:        strings.Join(inputs, ", "),
		Filter:        resolveExpr(globals, c.Expr),
		FilterOptions: opts,
		BufferSize:    size,
		Entries:       entries,
		Errs:          errs,
		TTYInput:      slices.Contains(inputs, "-"),
	})
	cancel()
	if err := g.Wait(); err != nil {
		globals.Debug("reader stopped: %v", err)
	}
	if uiErr != nil {
		return emitCLIError(globals, &CLIError{Code: "UI_FAILED", Message: "TUI error: " + uiErr.Error(), Err: uiErr})
	}
	return nil
}
