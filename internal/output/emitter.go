package output

import (
	"io"

	"github.com/vburojevic/lcf/internal/domain"
	"github.com/vburojevic/lcf/internal/filter"
)

// Emitter is the output surface commands write to. NDJSONWriter and
// TextWriter implement it.
type Emitter interface {
	Write(entry *domain.LogEntry) error
	WriteDiagnostics(text string, diags filter.Diagnostics) error
	WriteCheck(res *filter.Result) error
	WriteSummary(summary *domain.LogSummary, patterns []AnnotatedPattern) error
	WriteDiscovery(d *domain.Discovery) error
	WriteKeys(specs []filter.KeySpec) error
	WriteCount(matched, total int) error
	WriteInfo(message string) error
	WriteWarning(message string) error
	WriteError(code, message, hint string) error
	WriteMetadata(version, commit, buildDate string) error
}

var (
	_ Emitter = (*NDJSONWriter)(nil)
	_ Emitter = (*TextWriter)(nil)
)

// NewEmitter returns a text writer for format "text" and an NDJSON writer
// otherwise. Text is colored when w is a terminal.
func NewEmitter(format string, w io.Writer, runID string) Emitter {
	if format == "text" {
		return NewTextWriter(w, ColorEnabled(w))
	}
	return NewNDJSONWriter(w, runID)
}
