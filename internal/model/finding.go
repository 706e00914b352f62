package model

import "time"

type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
	SeverityInfo   Severity = "info"
)

// FindingStatus is the closed set a finding's presence signal is derived
// into. Providers report it in several shapes; DeriveStatus in the lens
// package is the only place that inspects those shapes.
type FindingStatus string

const (
	FindingFound    FindingStatus = "found"
	FindingClaimed  FindingStatus = "claimed"
	FindingNotFound FindingStatus = "not_found"
	FindingUnknown  FindingStatus = "unknown"
)

type Evidence struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Finding is one unit of evidence about the scanned target. Findings are
// write-once per scan. Provider-health conditions (unconfigured, rate
// limited) surface as first-class findings, not as scan failures.
type Finding struct {
	ID         string                 `json:"id"`
	ScanID     string                 `json:"scan_id"`
	Provider   string                 `json:"provider"`
	Kind       string                 `json:"kind"`
	Severity   Severity               `json:"severity"`
	Confidence float64                `json:"confidence"`
	Status     FindingStatus          `json:"status,omitempty"`
	URL        string                 `json:"url,omitempty"`
	Site       string                 `json:"site,omitempty"`
	Evidence   []Evidence             `json:"evidence,omitempty"`
	Meta       map[string]interface{} `json:"meta,omitempty"`
	ObservedAt time.Time              `json:"observed_at"`
}
