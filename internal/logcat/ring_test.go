package logcat

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vburojevic/lcf/internal/domain"
)

func TestNewRing(t *testing.T) {
	t.Run("creates ring with specified size", func(t *testing.T) {
		r := NewRing(50)
		require.NotNil(t, r)
		assert.Equal(t, 0, r.Len())
	})

	t.Run("uses default size for zero", func(t *testing.T) {
		r := NewRing(0)
		for i := 0; i < DefaultRingSize+50; i++ {
			r.Push(domain.LogEntry{Message: "test"})
		}
		assert.Equal(t, DefaultRingSize, r.Len())
	})
}

func TestRingPush(t *testing.T) {
	t.Run("wraps around when full", func(t *testing.T) {
		r := NewRing(3)
		for _, m := range []string{"1", "2", "3", "4"} {
			r.Push(domain.LogEntry{Message: m})
		}
		assert.Equal(t, 3, r.Len())

		entries := r.All()
		require.Len(t, entries, 3)
		assert.Equal(t, "2", entries[0].Message)
		assert.Equal(t, "3", entries[1].Message)
		assert.Equal(t, "4", entries[2].Message)
	})

	t.Run("preserves order after several wraps", func(t *testing.T) {
		r := NewRing(3)
		for _, m := range []string{"1", "2", "3", "4", "5", "6", "7"} {
			r.Push(domain.LogEntry{Message: m})
		}
		entries := r.All()
		require.Len(t, entries, 3)
		assert.Equal(t, "5", entries[0].Message)
		assert.Equal(t, "7", entries[2].Message)
	})
}

func TestRingLast(t *testing.T) {
	t.Run("returns empty for new ring", func(t *testing.T) {
		assert.Empty(t, NewRing(10).Last(5))
	})

	t.Run("returns all if n > count", func(t *testing.T) {
		r := NewRing(10)
		r.Push(domain.LogEntry{Message: "a"})
		r.Push(domain.LogEntry{Message: "b"})
		assert.Len(t, r.Last(100), 2)
	})

	t.Run("handles wrap correctly", func(t *testing.T) {
		r := NewRing(3)
		for _, m := range []string{"1", "2", "3", "4"} {
			r.Push(domain.LogEntry{Message: m})
		}
		entries := r.Last(2)
		require.Len(t, entries, 2)
		assert.Equal(t, "3", entries[0].Message)
		assert.Equal(t, "4", entries[1].Message)
	})

	t.Run("negative n", func(t *testing.T) {
		r := NewRing(3)
		r.Push(domain.LogEntry{Message: "a"})
		assert.Empty(t, r.Last(-1))
	})
}

func TestRingClear(t *testing.T) {
	r := NewRing(10)
	r.Push(domain.LogEntry{Message: "test"})
	r.Push(domain.LogEntry{Message: "test"})
	require.Equal(t, 2, r.Len())

	r.Clear()
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.All())
}

func TestRingCountByLevel(t *testing.T) {
	r := NewRing(10)
	for _, l := range []domain.LogLevel{
		domain.LogLevelDebug, domain.LogLevelDebug, domain.LogLevelInfo,
		domain.LogLevelError, domain.LogLevelError, domain.LogLevelError,
	} {
		r.Push(domain.LogEntry{Level: l})
	}

	counts := r.CountByLevel()
	assert.Equal(t, 2, counts[domain.LogLevelDebug])
	assert.Equal(t, 1, counts[domain.LogLevelInfo])
	assert.Equal(t, 3, counts[domain.LogLevelError])
	assert.Equal(t, 0, counts[domain.LogLevelAssert])
}

func TestRingConcurrency(t *testing.T) {
	r := NewRing(100)
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Push(domain.LogEntry{Message: "test"})
			}
		}()
	}
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.All()
				r.Last(10)
				r.CountByLevel()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, r.Len())
}

func BenchmarkRingPush(b *testing.B) {
	r := NewRing(1000)
	entry := domain.LogEntry{Message: "benchmark entry"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Push(entry)
	}
}

func BenchmarkRingAll(b *testing.B) {
	r := NewRing(1000)
	for i := 0; i < 1000; i++ {
		r.Push(domain.LogEntry{Message: "entry"})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.All()
	}
}
