package output

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatternStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "patterns.json")
	mock := clock.NewMock()
	first := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	mock.Set(first)

	store, err := NewPatternStore(path, mock)
	require.NoError(t, err)
	assert.Equal(t, 0, store.Count())
	assert.Equal(t, path, store.Path())

	got := store.Record([]PatternMatch{{Pattern: "Request <n> failed", Count: 3}})
	require.Len(t, got, 1)
	assert.True(t, got[0].IsNew)
	assert.Equal(t, 3, got[0].TotalCount)
	require.NoError(t, store.Save())

	mock.Add(time.Hour)
	reopened, err := NewPatternStore(path, mock)
	require.NoError(t, err)
	assert.Equal(t, 1, reopened.Count())

	got = reopened.Record([]PatternMatch{
		{Pattern: "Request <n> failed", Count: 2},
		{Pattern: "Other", Count: 2},
	})
	require.Len(t, got, 2)
	assert.False(t, got[0].IsNew)
	assert.Equal(t, 5, got[0].TotalCount)
	require.NotNil(t, got[0].FirstSeen)
	assert.True(t, first.Equal(*got[0].FirstSeen))
	assert.True(t, got[1].IsNew)
}

func TestPatternStoreBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := NewPatternStore(path, nil)
	assert.Error(t, err)
}
