package model

import "time"

// Stage of a provider execution within a scan. Events for a (scan, provider)
// pair start with StageStarted and end with exactly one terminal stage.
type Stage string

const (
	StageStarted     Stage = "started"
	StageComplete    Stage = "complete"
	StageFailed      Stage = "failed"
	StageSkipped     Stage = "skipped"
	StageTimeout     Stage = "timeout"
	StageValidation  Stage = "validation"
	StageScanSummary Stage = "scan_summary"
)

// IsTerminal reports whether the stage closes out a provider execution.
func (s Stage) IsTerminal() bool {
	switch s {
	case StageComplete, StageFailed, StageSkipped, StageTimeout:
		return true
	}
	return false
}

type Status string

const (
	StatusSuccess        Status = "success"
	StatusFailed         Status = "failed"
	StatusRunning        Status = "running"
	StatusSkipped        Status = "skipped"
	StatusTimeout        Status = "timeout"
	StatusNotConfigured  Status = "not_configured"
	StatusTierRestricted Status = "tier_restricted"
	StatusLimitExceeded  Status = "limit_exceeded"
	StatusDisabled       Status = "disabled"
)

// Synthetic provider names that appear in the event log but are not real
// OSINT providers.
const (
	ProviderOrchestrator = "orchestrator"
	ProviderSystem       = "system"
	ProviderAll          = "all"
)

// ExecutionEvent is one immutable row in the append-only execution log.
// The contract is additive-only: new optional fields may be added, existing
// ones are never renamed or removed, so historical logs always replay.
type ExecutionEvent struct {
	ScanID        string                 `json:"scan_id"`
	Provider      string                 `json:"provider"`
	Stage         Stage                  `json:"stage"`
	Status        Status                 `json:"status"`
	DurationMs    int64                  `json:"duration_ms,omitempty"`
	FindingsCount *int                   `json:"findings_count,omitempty"`
	ErrorMessage  string                 `json:"error_message,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}
