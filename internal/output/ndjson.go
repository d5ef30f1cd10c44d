package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/vburojevic/lcf/internal/domain"
	"github.com/vburojevic/lcf/internal/filter"
)

// NDJSONWriter writes one JSON object per line. Every record carries a
// type, the schema version and the run ID of the invocation.
type NDJSONWriter struct {
	encoder *json.Encoder
	runID   string
}

// NewNDJSONWriter creates a new NDJSON writer
func NewNDJSONWriter(w io.Writer, runID string) *NDJSONWriter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false) // keep logs unescaped and avoid extra allocations
	return &NDJSONWriter{encoder: enc, runID: runID}
}

// OutputEntry is the NDJSON form of a log entry. logcat.Parser reads it back.
type OutputEntry struct {
	Type          string `json:"type"` // Always "log"
	SchemaVersion int    `json:"schemaVersion"`
	RunID         string `json:"run_id,omitempty"`
	Timestamp     string `json:"timestamp,omitempty"`
	Level         string `json:"level"`
	PID           int    `json:"pid"`
	TID           int    `json:"tid,omitempty"`
	Tag           string `json:"tag"`
	Package       string `json:"package,omitempty"`
	Process       string `json:"process,omitempty"`
	Message       string `json:"message"`
}

// DiagnosticOutput is one filter problem
type DiagnosticOutput struct {
	Type          string `json:"type"` // Always "diagnostic"
	SchemaVersion int    `json:"schemaVersion"`
	RunID         string `json:"run_id,omitempty"`
	Filter        string `json:"filter"`
	Offset        int    `json:"offset"`
	Message       string `json:"message"`
}

// TokenOutput is one lexed token
type TokenOutput struct {
	Kind   string `json:"kind"`
	Text   string `json:"text"`
	Value  string `json:"value,omitempty"`
	Offset int    `json:"offset"`
}

// CheckOutput describes how a filter parsed
type CheckOutput struct {
	Type          string             `json:"type"` // Always "check"
	SchemaVersion int                `json:"schemaVersion"`
	RunID         string             `json:"run_id,omitempty"`
	Filter        string             `json:"filter"`
	Valid         bool               `json:"valid"`
	Tree          string             `json:"tree,omitempty"`
	Tokens        []TokenOutput      `json:"tokens"`
	Diagnostics   []DiagnosticOutput `json:"diagnostics,omitempty"`
}

// SummaryOutput wraps a summary with detected error patterns
type SummaryOutput struct {
	Type          string             `json:"type"` // Always "summary"
	SchemaVersion int                `json:"schemaVersion"`
	RunID         string             `json:"run_id,omitempty"`
	Summary       *domain.LogSummary `json:"summary"`
	Patterns      []AnnotatedPattern `json:"patterns,omitempty"`
}

// KeyOutput describes one filter key
type KeyOutput struct {
	Type          string   `json:"type"` // Always "key"
	SchemaVersion int      `json:"schemaVersion"`
	Name          string   `json:"name"`
	Kind          string   `json:"kind"`
	Mode          string   `json:"mode,omitempty"`
	Negatable     bool     `json:"negatable"`
	Fields        []string `json:"fields,omitempty"`
	Help          string   `json:"help,omitempty"`
}

// CountOutput reports how many entries matched
type CountOutput struct {
	Type          string `json:"type"` // Always "count"
	SchemaVersion int    `json:"schemaVersion"`
	RunID         string `json:"run_id,omitempty"`
	Matched       int    `json:"matched"`
	Total         int    `json:"total"`
}

// InfoOutput represents an informational message
type InfoOutput struct {
	Type          string `json:"type"` // Always "info"
	SchemaVersion int    `json:"schemaVersion"`
	RunID         string `json:"run_id,omitempty"`
	Message       string `json:"message"`
}

// WarningOutput represents a warning message
type WarningOutput struct {
	Type          string `json:"type"` // Always "warning"
	SchemaVersion int    `json:"schemaVersion"`
	RunID         string `json:"run_id,omitempty"`
	Message       string `json:"message"`
}

// ErrorOutput represents a failure
type ErrorOutput struct {
	Type          string `json:"type"` // Always "error"
	SchemaVersion int    `json:"schemaVersion"`
	RunID         string `json:"run_id,omitempty"`
	Code          string `json:"code"`
	Message       string `json:"message"`
	Hint          string `json:"hint,omitempty"`
}

// MetadataOutput describes the tool build
type MetadataOutput struct {
	Type          string `json:"type"` // Always "metadata"
	SchemaVersion int    `json:"schemaVersion"`
	Version       string `json:"version"`
	Commit        string `json:"commit"`
	BuildDate     string `json:"build_date,omitempty"`
}

// Write outputs a single log entry
func (w *NDJSONWriter) Write(entry *domain.LogEntry) error {
	out := OutputEntry{
		Type:          "log",
		SchemaVersion: SchemaVersion,
		RunID:         w.runID,
		Level:         string(entry.Level),
		PID:           entry.PID,
		TID:           entry.TID,
		Tag:           entry.Tag,
		Package:       entry.Package,
		Process:       entry.Process,
		Message:       entry.Message,
	}
	if !entry.Timestamp.IsZero() {
		out.Timestamp = entry.Timestamp.Format(time.RFC3339Nano)
	}
	return w.encoder.Encode(out)
}

func (w *NDJSONWriter) diagnostics(text string, diags filter.Diagnostics) []DiagnosticOutput {
	out := make([]DiagnosticOutput, 0, len(diags))
	for _, d := range diags {
		out = append(out, DiagnosticOutput{
			Type:          "diagnostic",
			SchemaVersion: SchemaVersion,
			RunID:         w.runID,
			Filter:        text,
			Offset:        d.Offset,
			Message:       d.Message,
		})
	}
	return out
}

// WriteDiagnostics outputs one record per filter diagnostic
func (w *NDJSONWriter) WriteDiagnostics(text string, diags filter.Diagnostics) error {
	for _, d := range w.diagnostics(text, diags) {
		if err := w.encoder.Encode(d); err != nil {
			return err
		}
	}
	return nil
}

// WriteCheck outputs the tokens, tree and diagnostics of a parse
func (w *NDJSONWriter) WriteCheck(res *filter.Result) error {
	out := CheckOutput{
		Type:          "check",
		SchemaVersion: SchemaVersion,
		RunID:         w.runID,
		Filter:        res.Text,
		Valid:         res.Valid(),
		Tokens:        make([]TokenOutput, 0, len(res.Tokens)),
		Diagnostics:   w.diagnostics(res.Text, res.Diagnostics),
	}
	if res.Expr != nil {
		out.Tree = res.Expr.String()
	}
	for _, t := range res.Tokens {
		out.Tokens = append(out.Tokens, TokenOutput{Kind: t.Kind.String(), Text: t.Text, Value: t.Value, Offset: t.Pos})
	}
	return w.encoder.Encode(out)
}

// WriteSummary outputs a summary with optional patterns
func (w *NDJSONWriter) WriteSummary(summary *domain.LogSummary, patterns []AnnotatedPattern) error {
	return w.encoder.Encode(&SummaryOutput{
		Type:          "summary",
		SchemaVersion: SchemaVersion,
		RunID:         w.runID,
		Summary:       summary,
		Patterns:      patterns,
	})
}

// WriteDiscovery outputs field values seen in a capture
func (w *NDJSONWriter) WriteDiscovery(d *domain.Discovery) error {
	d.Type = "discovery"
	d.SchemaVersion = SchemaVersion
	return w.encoder.Encode(d)
}

// WriteKeys outputs one record per filter key
func (w *NDJSONWriter) WriteKeys(specs []filter.KeySpec) error {
	for _, s := range specs {
		out := KeyOutput{
			Type:          "key",
			SchemaVersion: SchemaVersion,
			Name:          s.Name,
			Kind:          s.Kind.String(),
			Negatable:     s.Negatable,
			Fields:        s.Fields,
			Help:          s.Help,
		}
		if s.Kind == filter.KeyString {
			out.Mode = s.Mode.String()
		}
		if err := w.encoder.Encode(out); err != nil {
			return err
		}
	}
	return nil
}

// WriteCount outputs match totals
func (w *NDJSONWriter) WriteCount(matched, total int) error {
	return w.encoder.Encode(&CountOutput{
		Type:          "count",
		SchemaVersion: SchemaVersion,
		RunID:         w.runID,
		Matched:       matched,
		Total:         total,
	})
}

// WriteInfo outputs an informational message
func (w *NDJSONWriter) WriteInfo(message string) error {
	return w.encoder.Encode(&InfoOutput{
		Type:          "info",
		SchemaVersion: SchemaVersion,
		RunID:         w.runID,
		Message:       message,
	})
}

// WriteWarning outputs a warning message
func (w *NDJSONWriter) WriteWarning(message string) error {
	return w.encoder.Encode(&WarningOutput{
		Type:          "warning",
		SchemaVersion: SchemaVersion,
		RunID:         w.runID,
		Message:       message,
	})
}

// WriteError outputs an error
func (w *NDJSONWriter) WriteError(code, message, hint string) error {
	return w.encoder.Encode(&ErrorOutput{
		Type:          "error",
		SchemaVersion: SchemaVersion,
		RunID:         w.runID,
		Code:          code,
		Message:       message,
		Hint:          hint,
	})
}

// WriteMetadata outputs build metadata
func (w *NDJSONWriter) WriteMetadata(version, commit, buildDate string) error {
	return w.encoder.Encode(&MetadataOutput{
		Type:          "metadata",
		SchemaVersion: SchemaVersion,
		Version:       version,
		Commit:        commit,
		BuildDate:     buildDate,
	})
}

// WriteRaw outputs any value as one JSON line
func (w *NDJSONWriter) WriteRaw(v interface{}) error {
	return w.encoder.Encode(v)
}
