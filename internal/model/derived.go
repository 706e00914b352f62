package model

import "time"

// ProviderExecutionStat is the per-provider row of a ScanHealthSnapshot.
type ProviderExecutionStat struct {
	Provider      string     `json:"provider"`
	Status        Status     `json:"status"`
	DurationMs    int64      `json:"duration_ms"`
	FindingsCount int        `json:"findings_count"`
	ErrorMessage  string     `json:"error_message,omitempty"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
}

// ScanHealthSnapshot is a read model over one scan's execution events.
// It is rebuilt on every new event and never persisted: the event log is
// the source of truth.
type ScanHealthSnapshot struct {
	ScanID              string                  `json:"scan_id"`
	TotalProviders      int                     `json:"total_providers"`
	SuccessfulProviders int                     `json:"successful_providers"`
	FailedProviders     int                     `json:"failed_providers"`
	SkippedProviders    int                     `json:"skipped_providers"`
	TotalDurationMs     int64                   `json:"total_duration_ms"`
	TotalFindings       int                     `json:"total_findings"`
	Providers           []ProviderExecutionStat `json:"providers"`
}

// ProviderHealthMetric is the cross-scan, windowed reliability view of one
// provider. EmptyRate is computed over successes only: a successful call
// that found nothing is a quality signal distinct from a failure.
type ProviderHealthMetric struct {
	Provider      string  `json:"provider"`
	SuccessCount  int     `json:"success_count"`
	FailedCount   int     `json:"failed_count"`
	TimeoutCount  int     `json:"timeout_count"`
	SkippedCount  int     `json:"skipped_count"`
	EmptyResults  int     `json:"empty_results"`
	TotalCount    int     `json:"total_count"`
	SuccessRate   float64 `json:"success_rate"`
	EmptyRate     float64 `json:"empty_rate"`
	AvgDurationMs float64 `json:"avg_duration_ms"`
}

type ScanHealthSummary struct {
	TotalProviderCalls  int     `json:"total_provider_calls"`
	OverallSuccessRate  float64 `json:"overall_success_rate"`
	OverallTimeoutRate  float64 `json:"overall_timeout_rate"`
	OverallEmptyRate    float64 `json:"overall_empty_rate"`
	ProvidersWithIssues int     `json:"providers_with_issues"`
	HealthyProviders    int     `json:"healthy_providers"`
}

// LensScore is the confidence score for a single finding, with the top
// contributing factors kept for explainability.
type LensScore struct {
	Score     int      `json:"score"`
	Reasons   []string `json:"reasons"`
	Reasoning string   `json:"reasoning"`
}

type LensAnalysis struct {
	OverallScore       float64              `json:"overall_score"`
	HighConfidence     int                  `json:"high_confidence"`
	ModerateConfidence int                  `json:"moderate_confidence"`
	LowConfidence      int                  `json:"low_confidence"`
	Scores             map[string]LensScore `json:"scores"`
}
