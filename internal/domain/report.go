package domain

import "time"

// CountBucket is one row of a grouped ticket count.
type CountBucket struct {
	Key     string  `json:"key"`
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent,omitempty"`
}

// AgentStat summarizes resolved work for one assignee.
type AgentStat struct {
	UserID            int64          `json:"user_id"`
	Username          string         `json:"username"`
	Resolved          int            `json:"resolved"`
	AverageResolution *time.Duration `json:"average_resolution,omitempty"`
}

// ReportSummary is the staff dashboard rollup.
type ReportSummary struct {
	Total             int            `json:"total"`
	ByStatus          []CountBucket  `json:"by_status"`
	ByPriority        []CountBucket  `json:"by_priority"`
	BySLAState        []CountBucket  `json:"by_sla_state"`
	ByCategory        []CountBucket  `json:"by_category"`
	AverageResolution *time.Duration `json:"average_resolution,omitempty"`
	Agents            []AgentStat    `json:"agents"`
	Recent            []Ticket       `json:"recent"`
	GeneratedAt       time.Time      `json:"generated_at"`
}
