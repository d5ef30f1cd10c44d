package logcat

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/vburojevic/lcf/internal/domain"
)

// ErrUnparseable is returned for lines that match no known logcat format
var ErrUnparseable = errors.New("unparseable log line")

// Format identifies a logcat line layout
type Format int

const (
	FormatUnknown Format = iota
	FormatThreadtime
	FormatTime
	FormatBrief
	FormatNDJSON
)

func (f Format) String() string {
	switch f {
	case FormatThreadtime:
		return "threadtime"
	case FormatTime:
		return "time"
	case FormatBrief:
		return "brief"
	case FormatNDJSON:
		return "ndjson"
	default:
		return "unknown"
	}
}

// logcat -v threadtime:  "01-02 03:04:05.678  1234  5678 W Tag: message"
// logcat -v time:        "01-02 03:04:05.678 W/Tag( 1234): message"
// logcat -v brief:       "W/Tag( 1234): message"
var (
	threadtimeRe = regexp.MustCompile(`^(\d\d-\d\d \d\d:\d\d:\d\d\.\d{3})\s+(\d+)\s+(\d+)\s+([VDIWEAF])\s(.*?)\s*: ?(.*)$`)
	timeRe       = regexp.MustCompile(`^(\d\d-\d\d \d\d:\d\d:\d\d\.\d{3})\s+([VDIWEAF])/(.*?)\(\s*(\d+)\): ?(.*)$`)
	briefRe      = regexp.MustCompile(`^([VDIWEAF])/(.*?)\(\s*(\d+)\): ?(.*)$`)
)

const stampLayout = "01-02 15:04:05.000"

// Parser converts logcat output lines into log entries. Text formats carry
// no year, so the parser stamps entries with a configured one.
type Parser struct {
	year int
	loc  *time.Location
}

// NewParser creates a parser. A zero year means the current year and a nil
// location means local time.
func NewParser(year int, loc *time.Location) *Parser {
	if loc == nil {
		loc = time.Local
	}
	if year == 0 {
		year = time.Now().In(loc).Year()
	}
	return &Parser{year: year, loc: loc}
}

// ParseLine parses one line with a parser for year in local time
func ParseLine(line string, year int) (*domain.LogEntry, error) {
	return NewParser(year, nil).Parse(line)
}

// Parse converts a line to a LogEntry. It returns (nil, nil) for lines that
// carry no record: blanks, buffer banners and non-log NDJSON events.
func (p *Parser) Parse(line string) (*domain.LogEntry, error) {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "--------- ") {
		return nil, nil
	}
	if line[0] == '{' {
		return p.parseNDJSON(line)
	}
	if m := threadtimeRe.FindStringSubmatch(line); m != nil {
		ts, err := p.stamp(m[1])
		if err != nil {
			return nil, err
		}
		return &domain.LogEntry{
			Timestamp: ts,
			PID:       atoi(m[2]),
			TID:       atoi(m[3]),
			Level:     domain.ParseLogLevel(m[4]),
			Tag:       strings.TrimSpace(m[5]),
			Message:   m[6],
		}, nil
	}
	if m := timeRe.FindStringSubmatch(line); m != nil {
		ts, err := p.stamp(m[1])
		if err != nil {
			return nil, err
		}
		return &domain.LogEntry{
			Timestamp: ts,
			Level:     domain.ParseLogLevel(m[2]),
			Tag:       strings.TrimSpace(m[3]),
			PID:       atoi(m[4]),
			Message:   m[5],
		}, nil
	}
	if m := briefRe.FindStringSubmatch(line); m != nil {
		return &domain.LogEntry{
			Level:   domain.ParseLogLevel(m[1]),
			Tag:     strings.TrimSpace(m[2]),
			PID:     atoi(m[3]),
			Message: m[4],
		}, nil
	}
	return nil, ErrUnparseable
}

// Detect reports which format a line is written in
func Detect(line string) Format {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return FormatUnknown
	case line[0] == '{':
		return FormatNDJSON
	case threadtimeRe.MatchString(line):
		return FormatThreadtime
	case timeRe.MatchString(line):
		return FormatTime
	case briefRe.MatchString(line):
		return FormatBrief
	default:
		return FormatUnknown
	}
}

func (p *Parser) stamp(s string) (time.Time, error) {
	t, err := time.ParseInLocation(stampLayout, s, p.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad timestamp %q", ErrUnparseable, s)
	}
	return time.Date(p.year, t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), p.loc), nil
}

// parseNDJSON decodes a JSON object per line. Field names follow lcf's own
// NDJSON output so captures can be filtered again.
func (p *Parser) parseNDJSON(line string) (*domain.LogEntry, error) {
	if !gjson.Valid(line) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrUnparseable)
	}
	res := gjson.Parse(line)
	if typ := res.Get("type"); typ.Exists() && typ.String() != "log" {
		return nil, nil
	}

	entry := &domain.LogEntry{
		Level:   jsonLevel(res.Get("level")),
		PID:     int(res.Get("pid").Int()),
		TID:     int(res.Get("tid").Int()),
		Tag:     res.Get("tag").String(),
		Package: res.Get("package").String(),
		Process: res.Get("process").String(),
		Message: res.Get("message").String(),
	}
	if !res.Get("message").Exists() {
		entry.Message = res.Get("msg").String()
	}
	if ts := res.Get("timestamp").String(); ts != "" {
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("%w: bad timestamp %q", ErrUnparseable, ts)
		}
		entry.Timestamp = t
	}
	return entry, nil
}

// jsonLevel accepts level names, letters or Android priorities (2-7)
func jsonLevel(v gjson.Result) domain.LogLevel {
	if v.Type == gjson.Number {
		for _, l := range domain.AllLevels {
			if l.Priority() == int(v.Int()) {
				return l
			}
		}
		return domain.LogLevelUnknown
	}
	return domain.ParseLogLevel(v.String())
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
