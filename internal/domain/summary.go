package domain

import "time"

// LogSummary aggregates statistics over a set of log entries
type LogSummary struct {
	TotalCount  int              `json:"total_count"`
	Matched     int              `json:"matched"`
	LevelCounts map[LogLevel]int `json:"level_counts"`
	TopTags     []TagCount       `json:"top_tags,omitempty"`
	CrashCount  int              `json:"crash_count"`
	HasErrors   bool             `json:"has_errors"`
	HasCrashes  bool             `json:"has_crashes"`
	WindowStart time.Time        `json:"window_start,omitempty"`
	WindowEnd   time.Time        `json:"window_end,omitempty"`
	ErrorRate   float64          `json:"error_rate_per_min"`
	Unparseable int              `json:"unparseable,omitempty"`
}

// TagCount is a tag with its number of matching entries
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// NewLogSummary creates an empty summary
func NewLogSummary() *LogSummary {
	return &LogSummary{
		LevelCounts: make(map[LogLevel]int, len(AllLevels)),
	}
}
