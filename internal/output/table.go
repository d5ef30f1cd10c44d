package output

import (
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/vburojevic/lcf/internal/domain"
	"github.com/vburojevic/lcf/internal/filter"
)

// WriteStatsTable renders per-level counts and top tags
func WriteStatsTable(w io.Writer, summary *domain.LogSummary) error {
	levels := tablewriter.NewWriter(w)
	levels.Header("Level", "Count")
	for _, l := range domain.AllLevels {
		if err := levels.Append([]string{string(l), strconv.Itoa(summary.LevelCounts[l])}); err != nil {
			return err
		}
	}
	if n := summary.LevelCounts[domain.LogLevelUnknown]; n > 0 {
		if err := levels.Append([]string{"unknown", strconv.Itoa(n)}); err != nil {
			return err
		}
	}
	if err := levels.Render(); err != nil {
		return err
	}

	if len(summary.TopTags) == 0 {
		return nil
	}
	tags := tablewriter.NewWriter(w)
	tags.Header("Tag", "Count")
	for _, tc := range summary.TopTags {
		if err := tags.Append([]string{tc.Tag, strconv.Itoa(tc.Count)}); err != nil {
			return err
		}
	}
	return tags.Render()
}

// WriteKeysTable renders the filter keys
func WriteKeysTable(w io.Writer, specs []filter.KeySpec) error {
	table := tablewriter.NewWriter(w)
	table.Header("Key", "Kind", "Mode", "Negatable", "Description")
	for _, s := range specs {
		mode := "-"
		if s.Kind == filter.KeyString {
			mode = s.Mode.String()
		}
		neg := "no"
		if s.Negatable {
			neg = "yes"
		}
		if err := table.Append([]string{s.Name, s.Kind.String(), mode, neg, s.Help}); err != nil {
			return err
		}
	}
	return table.Render()
}

// WriteDiscoveryTable renders the field values of a discovery, one table per field
func WriteDiscoveryTable(w io.Writer, d *domain.Discovery) error {
	for _, section := range []struct {
		name   string
		values []domain.ValueInfo
	}{
		{"Tag", d.Tags},
		{"Package", d.Packages},
		{"Process", d.Processes},
	} {
		if len(section.values) == 0 {
			continue
		}
		table := tablewriter.NewWriter(w)
		table.Header(section.name, "Count", "Levels")
		for _, v := range section.values {
			if err := table.Append([]string{v.Name, strconv.Itoa(v.Count), levelBreakdown(v.Levels)}); err != nil {
				return err
			}
		}
		if err := table.Render(); err != nil {
			return err
		}
	}
	return nil
}

// levelBreakdown formats counts as "E:2 W:1", most severe first
func levelBreakdown(counts map[domain.LogLevel]int) string {
	var parts []string
	for i := len(domain.AllLevels) - 1; i >= 0; i-- {
		l := domain.AllLevels[i]
		if n := counts[l]; n > 0 {
			parts = append(parts, l.Letter()+":"+strconv.Itoa(n))
		}
	}
	return strings.Join(parts, " ")
}
