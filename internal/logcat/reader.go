package logcat

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/vburojevic/lcf/internal/domain"
	"go.uber.org/zap"
)

// DefaultPollInterval is how often a following reader checks for new data
const DefaultPollInterval = 250 * time.Millisecond

// ReaderOptions configures a Reader
type ReaderOptions struct {
	Follow       bool           // keep reading at EOF until the context ends
	PollInterval time.Duration  // wait between EOF checks when following
	Clock        clock.Clock    // nil means the wall clock
	Logger       *zap.Logger    // nil means no logging
	Year         int            // year for text formats, 0 means current
	Location     *time.Location // zone for text formats, nil means local
}

// Stats counts what a Reader has seen so far
type Stats struct {
	Lines       int `json:"lines"`
	Entries     int `json:"entries"`
	Skipped     int `json:"skipped"`
	Unparseable int `json:"unparseable"`
}

// Reader streams log entries out of a logcat capture
type Reader struct {
	r      *bufio.Reader
	parser *Parser
	clock  clock.Clock
	poll   time.Duration
	follow bool
	log    *zap.Logger

	mu    sync.Mutex
	stats Stats
}

// NewReader creates a reader over r
func NewReader(r io.Reader, opts ReaderOptions) *Reader {
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}
	poll := opts.PollInterval
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Reader{
		r:      bufio.NewReaderSize(r, 64*1024),
		parser: NewParser(opts.Year, opts.Location),
		clock:  clk,
		poll:   poll,
		follow: opts.Follow,
		log:    log,
	}
}

// Stream calls fn for every entry in order. It returns nil at EOF, or the
// context error when following. An error from fn stops the stream and is
// returned as is. Unparseable lines are counted and skipped.
func (rd *Reader) Stream(ctx context.Context, fn func(*domain.LogEntry) error) error {
	var partial []byte
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		chunk, err := rd.r.ReadBytes('\n')
		partial = append(partial, chunk...)
		if err == nil {
			if err := rd.handle(partial, fn); err != nil {
				return err
			}
			partial = partial[:0]
			continue
		}
		if !errors.Is(err, io.EOF) {
			return fmt.Errorf("read log input: %w", err)
		}

		if !rd.follow {
			if len(partial) > 0 {
				return rd.handle(partial, fn)
			}
			return nil
		}
		// A partial line stays buffered until its newline arrives.
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-rd.clock.After(rd.poll):
		}
	}
}

func (rd *Reader) handle(line []byte, fn func(*domain.LogEntry) error) error {
	rd.mu.Lock()
	rd.stats.Lines++
	n := rd.stats.Lines
	rd.mu.Unlock()

	entry, err := rd.parser.Parse(string(line))
	switch {
	case err != nil:
		rd.mu.Lock()
		rd.stats.Unparseable++
		rd.mu.Unlock()
		rd.log.Debug("skipping unparseable line", zap.Int("line", n), zap.Error(err))
		return nil
	case entry == nil:
		rd.mu.Lock()
		rd.stats.Skipped++
		rd.mu.Unlock()
		return nil
	}

	rd.mu.Lock()
	rd.stats.Entries++
	rd.mu.Unlock()
	return fn(entry)
}

// Stats returns a snapshot of the counters
func (rd *Reader) Stats() Stats {
	rd.mu.Lock()
	defer rd.mu.Unlock()
	return rd.stats
}

// ReadAll collects every entry from r. It does not follow.
func ReadAll(ctx context.Context, r io.Reader, opts ReaderOptions) ([]domain.LogEntry, Stats, error) {
	opts.Follow = false
	rd := NewReader(r, opts)
	var out []domain.LogEntry
	err := rd.Stream(ctx, func(e *domain.LogEntry) error {
		out = append(out, *e)
		return nil
	})
	return out, rd.Stats(), err
}
