package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vburojevic/lcf/internal/domain"
	"github.com/vburojevic/lcf/internal/filter"
	"github.com/vburojevic/lcf/internal/logcat"
	"github.com/vburojevic/lcf/internal/output"
)

const prompt = "filter> "

var (
	detailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	staleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// Options configure a Model
type Options struct {
	// Source is shown in the title, usually the input path
	Source string
	// Filter is the initial filter text
	Filter string
	// FilterOptions are passed to every parse
	FilterOptions filter.Options
	// BufferSize bounds the entries kept in memory
	BufferSize int
	// Entries and Errs feed the model; both may be nil
	Entries <-chan domain.LogEntry
	Errs    <-chan error
	// TTYInput reads keys from the terminal device, for piped log input
	TTYInput bool
}

// Model is a live filter box over a buffer of log entries. Every edit
// re-parses the filter; the viewport keeps the last filter that parsed
// cleanly until the new text is valid.
type Model struct {
	opts     Options
	live     *filter.Live
	ring     *logcat.Ring
	lines    []string
	viewport viewport.Model
	input    textinput.Model
	width    int
	height   int
	ready    bool
	paused   bool
	follow   bool
	details  bool
	done     bool
	lastErr  error
}

// EntryMsg carries one log entry from the reader
type EntryMsg domain.LogEntry

// ErrMsg carries a reader error
type ErrMsg struct{ Err error }

// DoneMsg reports that the entry channel closed
type DoneMsg struct{}

// New creates a model
func New(opts Options) Model {
	ti := textinput.New()
	ti.Prompt = prompt
	ti.Placeholder = "tag:MyApp level:WARN -message~:\"^GC\""
	ti.SetValue(opts.Filter)
	ti.CursorEnd()
	ti.Focus()

	return Model{
		opts:   opts,
		live:   filter.NewLive(opts.Filter, opts.FilterOptions),
		ring:   logcat.NewRing(opts.BufferSize),
		input:  ti,
		follow: true,
	}
}

// Init starts listening to the reader channels
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		waitForEntry(m.opts.Entries),
		waitForError(m.opts.Errs),
	)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "ctrl+p":
			m.paused = !m.paused
		case "ctrl+f":
			m.follow = !m.follow
			if m.follow {
				m.viewport.GotoBottom()
			}
		case "ctrl+t":
			m.details = !m.details
			m.rebuild()
		case "ctrl+l":
			m.ring.Clear()
			m.rebuild()
		case "up":
			m.viewport.LineUp(1)
		case "down":
			m.viewport.LineDown(1)
		case "pgup":
			m.viewport.HalfViewUp()
		case "pgdown":
			m.viewport.HalfViewDown()
		case "ctrl+home":
			m.viewport.GotoTop()
		case "ctrl+end":
			m.viewport.GotoBottom()
		default:
			var cmd tea.Cmd
			before := m.input.Value()
			m.input, cmd = m.input.Update(msg)
			cmds = append(cmds, cmd)
			if m.input.Value() != before {
				m.setFilter(m.input.Value())
			}
		}

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case EntryMsg:
		if !m.paused {
			m.add(domain.LogEntry(msg))
		}
		cmds = append(cmds, waitForEntry(m.opts.Entries))

	case ErrMsg:
		m.lastErr = msg.Err
		cmds = append(cmds, waitForError(m.opts.Errs))

	case DoneMsg:
		m.done = true
	}

	return m, tea.Batch(cmds...)
}

// setFilter re-parses text; matches are rebuilt only when the active query changed
func (m *Model) setFilter(text string) {
	prev := m.live.Active()
	m.live.Update(text)
	if m.live.Active() != prev {
		m.rebuild()
	}
}

func (m *Model) add(entry domain.LogEntry) {
	m.ring.Push(entry)
	if !m.live.Match(&entry) {
		return
	}
	m.lines = append(m.lines, m.formatLine(&entry))
	if over := len(m.lines) - m.ring.Cap(); over > 0 {
		m.lines = m.lines[over:]
	}
	m.refresh()
}

// rebuild re-filters the whole buffer with the active query
func (m *Model) rebuild() {
	m.lines = m.lines[:0]
	for _, e := range m.ring.All() {
		if !m.live.Match(&e) {
			continue
		}
		m.lines = append(m.lines, m.formatLine(&e))
	}
	m.refresh()
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	if m.follow {
		m.viewport.GotoBottom()
	}
}

// Title, input, diagnostic, status and help lines surround the viewport.
const chromeHeight = 5

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = max(width-len(prompt)-1, 10)

	vh := max(height-chromeHeight, 1)
	if !m.ready {
		m.viewport = viewport.New(width, vh)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = vh
	}
	m.refresh()
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	return strings.Join([]string{
		m.renderTitle(),
		m.input.View(),
		m.renderDiagnostic(),
		m.viewport.View(),
		m.renderStatus(),
		output.Styles.Help.Render("esc:quit ctrl+p:pause ctrl+f:follow ctrl+t:details ctrl+l:clear up/down/pgup/pgdown:scroll"),
	}, "\n")
}

func (m *Model) renderTitle() string {
	title := "lcf"
	if m.opts.Source != "" {
		title += ": " + m.opts.Source
	}
	if m.paused {
		title += " [PAUSED]"
	}
	if !m.follow {
		title += " [NO-FOLLOW]"
	}
	return output.Styles.Title.Render(title)
}

// renderDiagnostic shows the first problem with a caret under its offset
func (m *Model) renderDiagnostic() string {
	diags := m.live.Diagnostics()
	if len(diags) == 0 {
		return ""
	}
	d := diags[0]
	line := strings.Repeat(" ", len(prompt)) + output.CaretPad(m.live.Text(), d.Offset) +
		output.Styles.Caret.Render("^") + " " + d.Message
	if len(diags) > 1 {
		line += detailStyle.Render(fmt.Sprintf(" (+%d more)", len(diags)-1))
	}
	return line
}

func (m *Model) renderStatus() string {
	counts := m.ring.CountByLevel()
	errs := counts[domain.LogLevelError] + counts[domain.LogLevelAssert]
	status := fmt.Sprintf("Shown: %d/%d | Errors: %d", len(m.lines), m.ring.Len(), errs)
	if m.live.Stale() {
		status += " | " + staleStyle.Render("using last valid filter")
	}
	if m.done {
		status += " | EOF"
	}
	if m.lastErr != nil {
		status += " | " + output.Styles.Danger.Render(m.lastErr.Error())
	}
	return output.Styles.StatusBar.Width(max(m.width, 1)).Render(status)
}

func (m *Model) formatLine(entry *domain.LogEntry) string {
	style := output.LevelStyle(entry.Level)
	var b strings.Builder
	if !entry.Timestamp.IsZero() {
		b.WriteString(output.Styles.Timestamp.Render(entry.Timestamp.Format("15:04:05.000")))
		b.WriteByte(' ')
	}
	if m.details {
		b.WriteString(detailStyle.Render(fmt.Sprintf("%5d %5d ", entry.PID, entry.TID)))
		if entry.Package != "" {
			b.WriteString(output.Styles.Package.Render(entry.Package) + " ")
		}
	}
	b.WriteString(style.Render(entry.Level.Letter()))
	b.WriteByte(' ')
	b.WriteString(output.Styles.Tag.Render(entry.Tag))
	b.WriteString(": ")

	msg := entry.Message
	maxLen := max(m.width-40, 20)
	if runes := []rune(msg); len(runes) > maxLen {
		msg = string(runes[:maxLen-3]) + "..."
	}
	b.WriteString(style.Render(msg))
	return b.String()
}

// Filter returns the live filter
func (m Model) Filter() *filter.Live {
	return m.live
}

// Lines returns the rendered matching lines
func (m Model) Lines() []string {
	return m.lines
}

// waitForEntry creates a command that waits for a log entry
func waitForEntry(ch <-chan domain.LogEntry) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		entry, ok := <-ch
		if !ok {
			return DoneMsg{}
		}
		return EntryMsg(entry)
	}
}

// waitForError creates a command that waits for an error
func waitForError(ch <-chan error) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		err, ok := <-ch
		if !ok {
			return nil
		}
		return ErrMsg{Err: err}
	}
}

// Run shows the model until the user quits or ctx ends
func Run(ctx context.Context, opts Options) error {
	progOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx)}
	if opts.TTYInput {
		progOpts = append(progOpts, tea.WithInputTTY())
	}
	p := tea.NewProgram(New(opts), progOpts...)
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
