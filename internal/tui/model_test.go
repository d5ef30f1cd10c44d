package tui

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vburojevic/lcf/internal/domain"
)

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	return update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func sized(t *testing.T, opts Options) Model {
	t.Helper()
	return update(t, New(opts), tea.WindowSizeMsg{Width: 100, Height: 20})
}

func TestModelFiltersEntries(t *testing.T) {
	m := sized(t, Options{Filter: "tag:MyApp"})

	m = update(t, m, EntryMsg{Level: domain.LogLevelInfo, Tag: "MyApp", Message: "hello"})
	m = update(t, m, EntryMsg{Level: domain.LogLevelError, Tag: "Other", Message: "boom"})

	require.Len(t, m.Lines(), 1)
	assert.Contains(t, m.Lines()[0], "hello")

	view := m.View()
	assert.Contains(t, view, "Shown: 1/2")
	assert.Contains(t, view, "Errors: 1")
}

func TestModelKeepsLastValidFilterWhileEditing(t *testing.T) {
	m := sized(t, Options{Filter: "tag:MyApp"})
	m = update(t, m, EntryMsg{Level: domain.LogLevelInfo, Tag: "MyApp", Message: "hello"})
	m = update(t, m, EntryMsg{Level: domain.LogLevelError, Tag: "MyApp", Message: "boom"})
	require.Len(t, m.Lines(), 2)

	m = typeText(t, m, " AND")
	assert.Equal(t, "tag:MyApp AND", m.Filter().Text())
	assert.True(t, m.Filter().Stale())
	assert.Len(t, m.Lines(), 2, "partial filter must not replace the active one")

	view := m.View()
	assert.Contains(t, view, "missing right operand after AND")
	assert.Contains(t, view, "using last valid filter")

	m = typeText(t, m, " level:ERROR")
	assert.False(t, m.Filter().Stale())
	require.Len(t, m.Lines(), 1)
	assert.Contains(t, m.Lines()[0], "boom")
	assert.NotContains(t, m.View(), "missing right operand")
}

func TestModelTruncatesMultiByteMessage(t *testing.T) {
	m := sized(t, Options{})
	msg := strings.Repeat("é", 70)

	m = update(t, m, EntryMsg{Level: domain.LogLevelError, Tag: "MyApp", Message: msg})

	require.Len(t, m.Lines(), 1)
	line := m.Lines()[0]
	assert.True(t, utf8.ValidString(line))
	assert.Contains(t, line, strings.Repeat("é", 57)+"...")
	assert.NotContains(t, line, strings.Repeat("é", 58))
}

func TestModelPauseAndClear(t *testing.T) {
	m := sized(t, Options{})
	m = update(t, m, EntryMsg{Tag: "A", Message: "one"})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlP})
	m = update(t, m, EntryMsg{Tag: "A", Message: "two"})
	assert.Len(t, m.Lines(), 1)
	assert.Contains(t, m.View(), "[PAUSED]")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlP})
	m = update(t, m, EntryMsg{Tag: "A", Message: "three"})
	assert.Len(t, m.Lines(), 2)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.Empty(t, m.Lines())
	assert.Contains(t, m.View(), "Shown: 0/0")
}

func TestModelBufferBound(t *testing.T) {
	m := sized(t, Options{BufferSize: 3})
	for _, msg := range []string{"a", "b", "c", "d", "e"} {
		m = update(t, m, EntryMsg{Tag: "T", Message: msg})
	}
	require.Len(t, m.Lines(), 3)
	assert.Contains(t, m.Lines()[0], "c")
	assert.Contains(t, m.View(), "Shown: 3/3")
}

func TestModelReaderMessages(t *testing.T) {
	m := sized(t, Options{Source: "capture.txt"})
	m = update(t, m, ErrMsg{Err: errors.New("read failed")})
	m = update(t, m, DoneMsg{})

	view := m.View()
	assert.Contains(t, view, "capture.txt")
	assert.Contains(t, view, "read failed")
	assert.Contains(t, view, "EOF")
}

func TestModelQuit(t *testing.T) {
	m := sized(t, Options{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestWaitForEntry(t *testing.T) {
	assert.Nil(t, waitForEntry(nil))

	ch := make(chan domain.LogEntry, 1)
	ch <- domain.LogEntry{Tag: "T"}
	close(ch)

	cmd := waitForEntry(ch)
	msg := cmd()
	entry, ok := msg.(EntryMsg)
	require.True(t, ok)
	assert.Equal(t, "T", entry.Tag)

	_, done := cmd().(DoneMsg)
	assert.True(t, done)
}

func TestViewBeforeResize(t *testing.T) {
	assert.Equal(t, "Initializing...", New(Options{}).View())
}
