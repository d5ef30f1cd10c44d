package logcat

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vburojevic/lcf/internal/domain"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestReaderStream(t *testing.T) {
	input := "01-02 03:04:05.006  1  2 I A: first\ngarbage\n01-02 03:04:05.007  1  2 E B: last-without-newline"
	core, logs := observer.New(zap.DebugLevel)
	rd := NewReader(strings.NewReader(input), ReaderOptions{Year: 2024, Location: time.UTC, Logger: zap.New(core)})

	var tags []string
	err := rd.Stream(context.Background(), func(e *domain.LogEntry) error {
		tags = append(tags, e.Tag)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, tags)
	assert.Equal(t, Stats{Lines: 3, Entries: 2, Unparseable: 1}, rd.Stats())

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "skipping unparseable line", logs.All()[0].Message)
}

func TestReaderStopsOnCallbackError(t *testing.T) {
	stop := errors.New("stop")
	rd := NewReader(strings.NewReader(sampleCapture), ReaderOptions{})
	calls := 0
	err := rd.Stream(context.Background(), func(*domain.LogEntry) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestReaderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rd := NewReader(strings.NewReader(sampleCapture), ReaderOptions{})
	err := rd.Stream(ctx, func(*domain.LogEntry) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReaderFollow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "live.txt")
	require.NoError(t, os.WriteFile(path, []byte("01-02 03:04:05.006  1  2 I A: one\n"), 0o644))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	mock := clock.NewMock()
	rd := NewReader(f, ReaderOptions{Follow: true, Clock: mock, PollInterval: time.Second})

	var mu sync.Mutex
	var got []string
	count := func() int {
		mu.Lock()
		defer mu.Unlock()
		return len(got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- rd.Stream(ctx, func(e *domain.LogEntry) error {
			mu.Lock()
			got = append(got, e.Message)
			mu.Unlock()
			return nil
		})
	}()

	require.Eventually(t, func() bool { return count() == 1 }, 2*time.Second, 5*time.Millisecond)

	w, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = w.WriteString("01-02 03:04:05.007  1  2 I A: tw")
	require.NoError(t, err)
	_, err = w.WriteString("o\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	require.Eventually(t, func() bool {
		mock.Add(time.Second)
		return count() == 2
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"one", "two"}, got)
}
