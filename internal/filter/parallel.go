package filter

import (
	"context"
	"runtime"

	"github.com/vburojevic/lcf/internal/domain"
	"golang.org/x/sync/errgroup"
)

const minChunk = 256

// MatchAll evaluates f over entries using up to workers goroutines and
// returns the matching entries in input order. Records are independent, so
// chunks are evaluated in any order and stitched back by index.
func MatchAll(ctx context.Context, entries []domain.LogEntry, f Filter, workers int) ([]domain.LogEntry, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if f == nil {
		return entries, nil
	}

	chunk := (len(entries) + workers - 1) / workers
	if chunk < minChunk {
		chunk = minChunk
	}

	keep := make([]bool, len(entries))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < len(entries); start += chunk {
		start, end := start, min(start+chunk, len(entries))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if i%minChunk == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				keep[i] = f.Match(&entries[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]domain.LogEntry, 0, len(entries))
	for i, k := range keep {
		if k {
			out = append(out, entries[i])
		}
	}
	return out, nil
}
