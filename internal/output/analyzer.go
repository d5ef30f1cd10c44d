package output

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/vburojevic/lcf/internal/domain"
	"github.com/vburojevic/lcf/internal/filter"
)

var (
	uuidRe   = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)
	hexRe    = regexp.MustCompile(`0x[0-9a-fA-F]+`)
	numberRe = regexp.MustCompile(`\d+`)
)

// Analyzer summarizes filtered log entries
type Analyzer struct {
	topN int
}

// NewAnalyzer creates an analyzer reporting the topN tags and patterns
func NewAnalyzer(topN int) *Analyzer {
	if topN <= 0 {
		topN = 5
	}
	return &Analyzer{topN: topN}
}

// Summarize builds a summary of entries. total is the number of records
// read before filtering.
func (a *Analyzer) Summarize(entries []domain.LogEntry, total int) *domain.LogSummary {
	summary := domain.NewLogSummary()
	summary.TotalCount = total
	summary.Matched = len(entries)
	if len(entries) == 0 {
		return summary
	}

	tags := make(map[string]int)
	for i := range entries {
		e := &entries[i]
		summary.LevelCounts[e.Level]++
		tags[e.Tag]++
		if filter.IsCrash(e) {
			summary.CrashCount++
		}
		if e.Timestamp.IsZero() {
			continue
		}
		if summary.WindowStart.IsZero() || e.Timestamp.Before(summary.WindowStart) {
			summary.WindowStart = e.Timestamp
		}
		if e.Timestamp.After(summary.WindowEnd) {
			summary.WindowEnd = e.Timestamp
		}
	}

	errors := summary.LevelCounts[domain.LogLevelError] + summary.LevelCounts[domain.LogLevelAssert]
	summary.HasErrors = errors > 0
	summary.HasCrashes = summary.CrashCount > 0

	// Errors per minute
	if d := summary.WindowEnd.Sub(summary.WindowStart); d >= time.Minute {
		summary.ErrorRate = float64(errors) / d.Minutes()
	}

	for _, kv := range topCounts(tags, a.topN) {
		summary.TopTags = append(summary.TopTags, domain.TagCount{Tag: kv.key, Count: kv.count})
	}
	return summary
}

// Discover lists the tags, packages and processes seen in entries
func (a *Analyzer) Discover(entries []domain.LogEntry) *domain.Discovery {
	d := &domain.Discovery{
		Type:          "discovery",
		SchemaVersion: SchemaVersion,
		TotalCount:    len(entries),
		Levels:        make(map[domain.LogLevel]int),
	}
	tags := newValueCounter()
	packages := newValueCounter()
	processes := newValueCounter()

	var start, end time.Time
	for i := range entries {
		e := &entries[i]
		d.Levels[e.Level]++
		tags.add(e.Tag, e.Level)
		packages.add(e.Package, e.Level)
		processes.add(e.Process, e.Level)
		if e.Timestamp.IsZero() {
			continue
		}
		if start.IsZero() || e.Timestamp.Before(start) {
			start = e.Timestamp
		}
		if e.Timestamp.After(end) {
			end = e.Timestamp
		}
	}
	if !start.IsZero() {
		d.TimeRange.Start = start.Format(time.RFC3339Nano)
		d.TimeRange.End = end.Format(time.RFC3339Nano)
	}

	d.Tags = tags.top(a.topN)
	d.Packages = packages.top(a.topN)
	d.Processes = processes.top(a.topN)
	return d
}

// DetectPatterns groups recurring error messages
func (a *Analyzer) DetectPatterns(entries []domain.LogEntry) []PatternMatch {
	groups := make(map[string][]string)
	for _, entry := range entries {
		if entry.Level.Priority() < domain.LogLevelError.Priority() {
			continue
		}
		pattern := normalizeMessage(entry.Message)
		groups[pattern] = append(groups[pattern], entry.Message)
	}

	var patterns []PatternMatch
	for pattern, messages := range groups {
		if len(messages) < 2 {
			continue
		}
		samples := messages
		if len(samples) > 3 {
			samples = samples[:3]
		}
		patterns = append(patterns, PatternMatch{
			Pattern: pattern,
			Count:   len(messages),
			Samples: samples,
		})
	}

	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].Count != patterns[j].Count {
			return patterns[i].Count > patterns[j].Count
		}
		return patterns[i].Pattern < patterns[j].Pattern
	})
	if len(patterns) > a.topN {
		patterns = patterns[:a.topN]
	}
	return patterns
}

// PatternMatch is a recurring error message shape
type PatternMatch struct {
	Pattern string   `json:"pattern"`
	Count   int      `json:"count"`
	Samples []string `json:"samples"`
}

// normalizeMessage removes variable parts to group similar messages
func normalizeMessage(msg string) string {
	msg = uuidRe.ReplaceAllString(msg, "<uuid>")
	msg = hexRe.ReplaceAllString(msg, "<addr>")
	msg = numberRe.ReplaceAllString(msg, "<n>")
	msg = strings.TrimSpace(msg)
	if len(msg) > 100 {
		msg = msg[:100] + "..."
	}
	return msg
}

type keyCount struct {
	key   string
	count int
}

// topCounts sorts by count, then key, and keeps the first n
func topCounts(counts map[string]int, n int) []keyCount {
	pairs := make([]keyCount, 0, len(counts))
	for k, c := range counts {
		pairs = append(pairs, keyCount{k, c})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count != pairs[j].count {
			return pairs[i].count > pairs[j].count
		}
		return pairs[i].key < pairs[j].key
	})
	if len(pairs) > n {
		pairs = pairs[:n]
	}
	return pairs
}

type valueCounter struct {
	counts map[string]int
	levels map[string]map[domain.LogLevel]int
}

func newValueCounter() *valueCounter {
	return &valueCounter{
		counts: make(map[string]int),
		levels: make(map[string]map[domain.LogLevel]int),
	}
}

func (v *valueCounter) add(name string, level domain.LogLevel) {
	if name == "" {
		return
	}
	v.counts[name]++
	if v.levels[name] == nil {
		v.levels[name] = make(map[domain.LogLevel]int)
	}
	v.levels[name][level]++
}

func (v *valueCounter) top(n int) []domain.ValueInfo {
	var out []domain.ValueInfo
	for _, kv := range topCounts(v.counts, n) {
		out = append(out, domain.ValueInfo{Name: kv.key, Count: kv.count, Levels: v.levels[kv.key]})
	}
	return out
}
