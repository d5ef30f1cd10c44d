package domain

// Discovery lists the field values seen in a capture, to help write filters
type Discovery struct {
	Type          string             `json:"type"`
	SchemaVersion int                `json:"schemaVersion"`
	TimeRange     DiscoveryTimeRange `json:"time_range"`
	TotalCount    int                `json:"total_count"`
	Tags          []ValueInfo        `json:"tags"`
	Packages      []ValueInfo        `json:"packages,omitempty"`
	Processes     []ValueInfo        `json:"processes,omitempty"`
	Levels        map[LogLevel]int   `json:"levels"`
}

// DiscoveryTimeRange is the time span of the discovered entries
type DiscoveryTimeRange struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// ValueInfo is one field value with how often it occurs
type ValueInfo struct {
	Name   string           `json:"name"`
	Count  int              `json:"count"`
	Levels map[LogLevel]int `json:"levels,omitempty"`
}
