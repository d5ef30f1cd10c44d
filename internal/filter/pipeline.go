package filter

import (
	"regexp"

	"github.com/vburojevic/lcf/internal/domain"
)

// Filter determines if a log entry should be included
type Filter interface {
	// Match returns true if the entry passes the filter
	Match(entry *domain.LogEntry) bool
}

// FilterFunc adapts a function to the Filter interface
type FilterFunc func(entry *domain.LogEntry) bool

// Match calls f(entry)
func (f FilterFunc) Match(entry *domain.LogEntry) bool {
	return f(entry)
}

// MinLevel passes entries at or above floor. Entries with an unknown
// level never pass.
func MinLevel(floor domain.LogLevel) Filter {
	return FilterFunc(func(entry *domain.LogEntry) bool {
		return entry.Level.AtLeast(floor)
	})
}

// ExcludeMessages drops entries whose message matches any pattern
func ExcludeMessages(patterns []*regexp.Regexp) Filter {
	return FilterFunc(func(entry *domain.LogEntry) bool {
		for _, re := range patterns {
			if re.MatchString(entry.Message) {
				return false
			}
		}
		return true
	})
}

// Pipeline runs the --level floor, the exclude patterns and the filter
// query in that order and stops at the first stage that rejects.
type Pipeline struct {
	stages []Filter
}

// NewPipeline returns nil when there is nothing to filter on; a nil
// pipeline matches everything. An unknown minLevel adds no level stage.
func NewPipeline(minLevel domain.LogLevel, query Filter, excludes []*regexp.Regexp) *Pipeline {
	var stages []Filter
	if minLevel.IsValid() {
		stages = append(stages, MinLevel(minLevel))
	}
	if len(excludes) > 0 {
		stages = append(stages, ExcludeMessages(excludes))
	}
	if query != nil {
		stages = append(stages, query)
	}
	if len(stages) == 0 {
		return nil
	}
	return &Pipeline{stages: stages}
}

// Match returns true when the log entry passes every stage
func (p *Pipeline) Match(entry *domain.LogEntry) bool {
	if p == nil || entry == nil {
		return true
	}
	for _, f := range p.stages {
		if !f.Match(entry) {
			return false
		}
	}
	return true
}

// Stages returns the number of stages
func (p *Pipeline) Stages() int {
	if p == nil {
		return 0
	}
	return len(p.stages)
}
