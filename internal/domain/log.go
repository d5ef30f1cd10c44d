package domain

import (
	"strconv"
	"strings"
	"time"
)

// LogLevel represents an Android log priority
type LogLevel string

const (
	LogLevelUnknown LogLevel = ""
	LogLevelVerbose LogLevel = "VERBOSE"
	LogLevelDebug   LogLevel = "DEBUG"
	LogLevelInfo    LogLevel = "INFO"
	LogLevelWarn    LogLevel = "WARN"
	LogLevelError   LogLevel = "ERROR"
	LogLevelAssert  LogLevel = "ASSERT"
)

// AllLevels lists the known levels from least to most severe
var AllLevels = []LogLevel{
	LogLevelVerbose,
	LogLevelDebug,
	LogLevelInfo,
	LogLevelWarn,
	LogLevelError,
	LogLevelAssert,
}

// Priority returns the priority of a log level (higher = more severe).
// Unknown levels rank below everything.
func (l LogLevel) Priority() int {
	switch l {
	case LogLevelVerbose:
		return 2
	case LogLevelDebug:
		return 3
	case LogLevelInfo:
		return 4
	case LogLevelWarn:
		return 5
	case LogLevelError:
		return 6
	case LogLevelAssert:
		return 7
	default:
		return -1
	}
}

// Letter returns the single-letter logcat form of the level
func (l LogLevel) Letter() string {
	switch l {
	case LogLevelVerbose:
		return "V"
	case LogLevelDebug:
		return "D"
	case LogLevelInfo:
		return "I"
	case LogLevelWarn:
		return "W"
	case LogLevelError:
		return "E"
	case LogLevelAssert:
		return "A"
	default:
		return "?"
	}
}

// IsValid reports whether l is one of the known levels
func (l LogLevel) IsValid() bool {
	return l.Priority() >= 0
}

// AtLeast reports whether l is known and at least as severe as floor
func (l LogLevel) AtLeast(floor LogLevel) bool {
	return l.IsValid() && l.Priority() >= floor.Priority()
}

// ParseLogLevel converts a level name or logcat letter to LogLevel.
// Matching is case-insensitive; unknown input yields LogLevelUnknown.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "v", "verbose":
		return LogLevelVerbose
	case "d", "debug":
		return LogLevelDebug
	case "i", "info":
		return LogLevelInfo
	case "w", "warn", "warning":
		return LogLevelWarn
	case "e", "error":
		return LogLevelError
	case "a", "f", "assert", "fatal":
		return LogLevelAssert
	default:
		return LogLevelUnknown
	}
}

// Field names exposed by LogEntry.Field
const (
	FieldTag       = "tag"
	FieldPackage   = "package"
	FieldProcess   = "process"
	FieldMessage   = "message"
	FieldLevel     = "level"
	FieldPID       = "pid"
	FieldTID       = "tid"
	FieldTimestamp = "timestamp"
	FieldLine      = "line"
)

// LogEntry represents one parsed logcat message
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     LogLevel  `json:"level"`
	PID       int       `json:"pid"`
	TID       int       `json:"tid,omitempty"`
	Tag       string    `json:"tag"`
	Package   string    `json:"package,omitempty"`
	Process   string    `json:"process,omitempty"`
	Message   string    `json:"message"`
}

// Field returns the named field as a string. The second result is false
// for names the entry does not know.
func (e *LogEntry) Field(name string) (string, bool) {
	if e == nil {
		return "", false
	}
	switch name {
	case FieldTag:
		return e.Tag, true
	case FieldPackage:
		return e.Package, true
	case FieldProcess:
		return e.Process, true
	case FieldMessage:
		return e.Message, true
	case FieldLevel:
		return string(e.Level), true
	case FieldPID:
		return strconv.Itoa(e.PID), true
	case FieldTID:
		return strconv.Itoa(e.TID), true
	case FieldTimestamp:
		if e.Timestamp.IsZero() {
			return "", true
		}
		return e.Timestamp.Format(time.RFC3339Nano), true
	case FieldLine:
		return e.Line(), true
	default:
		return "", false
	}
}

// Line formats the entry the way logcat -v threadtime prints it, with the
// package appended after the TID when known.
func (e *LogEntry) Line() string {
	var b strings.Builder
	b.Grow(len(e.Message) + len(e.Tag) + 48)
	if !e.Timestamp.IsZero() {
		b.WriteString(e.Timestamp.Format("01-02 15:04:05.000"))
		b.WriteByte(' ')
	}
	b.WriteString(strconv.Itoa(e.PID))
	b.WriteByte('-')
	b.WriteString(strconv.Itoa(e.TID))
	b.WriteByte(' ')
	if e.Package != "" {
		b.WriteString(e.Package)
		b.WriteByte(' ')
	}
	b.WriteString(e.Level.Letter())
	b.WriteByte(' ')
	b.WriteString(e.Tag)
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}
