package config

import (
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/vburojevic/lcf/internal/filter"
)

// FilterOptions builds filter options from the filter section: per-key
// match modes, default fields and the package:mine list.
func (c *Config) FilterOptions(clk clock.Clock) (filter.Options, error) {
	keys := filter.DefaultKeys()
	for name, modeName := range c.Filter.Keys {
		mode, err := filter.ParseMatchMode(modeName)
		if err != nil {
			return filter.Options{}, fmt.Errorf("filter.keys.%s: %w", name, err)
		}
		if keys, err = keys.WithMode(name, mode); err != nil {
			return filter.Options{}, fmt.Errorf("filter.keys.%s: %w", name, err)
		}
	}
	if len(c.Filter.DefaultFields) > 0 {
		keys = keys.WithDefaultFields(c.Filter.DefaultFields)
	}
	return filter.Options{
		Keys:         keys,
		MatchCase:    c.MatchCase,
		Clock:        clk,
		MinePackages: c.Filter.MinePackages,
	}, nil
}

// PollInterval parses input.poll_interval, falling back to 250ms
func (c *Config) PollInterval() (time.Duration, error) {
	if c.Input.PollInterval == "" {
		return 250 * time.Millisecond, nil
	}
	d, err := time.ParseDuration(c.Input.PollInterval)
	if err != nil {
		return 0, fmt.Errorf("input.poll_interval: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("input.poll_interval: must be positive, got %s", c.Input.PollInterval)
	}
	return d, nil
}
