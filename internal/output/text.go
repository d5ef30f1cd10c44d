package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/vburojevic/lcf/internal/domain"
	"github.com/vburojevic/lcf/internal/filter"
)

// TextWriter writes human-readable output, colored when color is set
type TextWriter struct {
	w     io.Writer
	color bool
}

// NewTextWriter creates a new text writer
func NewTextWriter(w io.Writer, color bool) *TextWriter {
	return &TextWriter{w: w, color: color}
}

func (w *TextWriter) paint(style lipgloss.Style, s string) string {
	if !w.color {
		return s
	}
	return style.Render(s)
}

// Write outputs a log entry in logcat threadtime layout
func (w *TextWriter) Write(entry *domain.LogEntry) error {
	var b strings.Builder
	if !entry.Timestamp.IsZero() {
		b.WriteString(w.paint(Styles.Timestamp, entry.Timestamp.Format("01-02 15:04:05.000")))
		b.WriteByte(' ')
	}
	b.WriteString(w.paint(Styles.PID, fmt.Sprintf("%5d %5d", entry.PID, entry.TID)))
	b.WriteByte(' ')
	if entry.Package != "" {
		b.WriteString(w.paint(Styles.Package, entry.Package))
		b.WriteByte(' ')
	}
	style := LevelStyle(entry.Level)
	b.WriteString(w.paint(style, entry.Level.Letter()))
	b.WriteByte(' ')
	b.WriteString(w.paint(Styles.Tag, entry.Tag))
	b.WriteString(": ")
	b.WriteString(w.paint(style, entry.Message))
	b.WriteByte('\n')

	_, err := io.WriteString(w.w, b.String())
	return err
}

// WriteDiagnostics prints the filter with a caret under each problem
func (w *TextWriter) WriteDiagnostics(text string, diags filter.Diagnostics) error {
	if len(diags) == 0 {
		return nil
	}
	var b strings.Builder
	for _, d := range diags {
		b.WriteString("  " + text + "\n")
		b.WriteString("  " + CaretPad(text, d.Offset) + w.paint(Styles.Caret, "^") + " " + d.Message + "\n")
	}
	_, err := io.WriteString(w.w, b.String())
	return err
}

// CaretPad returns spaces that line a caret up with byte offset in text,
// keeping tabs so terminals align them the same way.
func CaretPad(text string, offset int) string {
	if offset > len(text) {
		offset = len(text)
	}
	var b strings.Builder
	for _, r := range text[:offset] {
		if r == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// WriteCheck prints tokens, tree and diagnostics of a parse
func (w *TextWriter) WriteCheck(res *filter.Result) error {
	var b strings.Builder
	b.WriteString(w.paint(Styles.Header, "Filter") + "\n")
	b.WriteString("  " + res.Text + "\n")

	b.WriteString(w.paint(Styles.Label, "Tokens:") + "\n")
	for _, t := range res.Tokens {
		if t.Kind == filter.TokEOF {
			continue
		}
		fmt.Fprintf(&b, "  %3d  %-16s %s\n", t.Pos, t.Kind, strconv.Quote(t.Value))
	}

	tree := "(matches everything)"
	if res.Expr != nil {
		tree = res.Expr.String()
	}
	b.WriteString(w.paint(Styles.Label, "Tree: ") + w.paint(Styles.Value, tree) + "\n")

	if res.Valid() {
		b.WriteString(w.paint(Styles.Success, "OK") + "\n")
	} else {
		b.WriteString(w.paint(Styles.Warning, fmt.Sprintf("%d problem(s)", len(res.Diagnostics))) + "\n")
	}
	if _, err := io.WriteString(w.w, b.String()); err != nil {
		return err
	}
	return w.WriteDiagnostics(res.Text, res.Diagnostics)
}

// WriteSummary outputs a styled summary
func (w *TextWriter) WriteSummary(summary *domain.LogSummary, patterns []AnnotatedPattern) error {
	var b strings.Builder
	b.WriteString("\n" + w.paint(Styles.Header, "Summary") + "\n")
	b.WriteString(w.paint(Styles.Label, "Matched: ") + w.paint(Styles.Value, fmt.Sprintf("%d/%d", summary.Matched, summary.TotalCount)))

	errs := summary.LevelCounts[domain.LogLevelError] + summary.LevelCounts[domain.LogLevelAssert]
	if errs > 0 {
		b.WriteString(" | " + w.paint(Styles.Warning, "Errors: "+strconv.Itoa(errs)))
	} else {
		b.WriteString(" | " + w.paint(Styles.Label, "Errors: ") + w.paint(Styles.Value, "0"))
	}
	if summary.CrashCount > 0 {
		b.WriteString(" | " + w.paint(Styles.Danger, "Crashes: "+strconv.Itoa(summary.CrashCount)))
	} else {
		b.WriteString(" | " + w.paint(Styles.Label, "Crashes: ") + w.paint(Styles.Value, "0"))
	}
	if summary.Unparseable > 0 {
		b.WriteString(" | " + w.paint(Styles.Label, "Unparseable: ") + w.paint(Styles.Value, strconv.Itoa(summary.Unparseable)))
	}
	b.WriteString("\n")

	status := "OK"
	statusStyle := Styles.Success
	switch {
	case summary.HasCrashes:
		status, statusStyle = "CRASHES DETECTED", Styles.Danger
	case summary.HasErrors:
		status, statusStyle = "ERRORS DETECTED", Styles.Warning
	}
	b.WriteString(w.paint(Styles.Label, "Status: ") + w.paint(statusStyle, status) + "\n")

	for _, p := range patterns {
		mark := ""
		if p.IsNew {
			mark = " " + w.paint(Styles.Warning, "NEW")
		}
		fmt.Fprintf(&b, "  %4dx %s%s\n", p.Count, p.Pattern, mark)
	}

	if _, err := io.WriteString(w.w, b.String()); err != nil {
		return err
	}
	return WriteStatsTable(w.w, summary)
}

// WriteDiscovery outputs the values seen per field as tables
func (w *TextWriter) WriteDiscovery(d *domain.Discovery) error {
	return WriteDiscoveryTable(w.w, d)
}

// WriteKeys outputs the filter keys as a table
func (w *TextWriter) WriteKeys(specs []filter.KeySpec) error {
	return WriteKeysTable(w.w, specs)
}

// WriteCount prints the number of matching entries
func (w *TextWriter) WriteCount(matched, total int) error {
	_, err := fmt.Fprintf(w.w, "%d\n", matched)
	return err
}

// WriteInfo outputs an informational message
func (w *TextWriter) WriteInfo(message string) error {
	_, err := io.WriteString(w.w, w.paint(Styles.Label, message)+"\n")
	return err
}

// WriteWarning outputs a warning
func (w *TextWriter) WriteWarning(message string) error {
	_, err := io.WriteString(w.w, w.paint(Styles.Warning, "Warning")+": "+message+"\n")
	return err
}

// WriteError outputs a styled error
func (w *TextWriter) WriteError(code, message, hint string) error {
	line := w.paint(Styles.Danger, "Error") + " " + w.paint(Styles.Warning, "["+code+"]") + ": " + message + "\n"
	if hint != "" {
		line += w.paint(Styles.Hint, "Hint: "+hint) + "\n"
	}
	_, err := io.WriteString(w.w, line)
	return err
}

// WriteMetadata outputs build metadata
func (w *TextWriter) WriteMetadata(version, commit, buildDate string) error {
	line := "lcf " + version + " (" + commit
	if buildDate != "" {
		line += ", " + buildDate
	}
	_, err := io.WriteString(w.w, line+")\n")
	return err
}
