package model

import "time"

type ScanType string

const (
	ScanTypeEmail    ScanType = "email"
	ScanTypeUsername ScanType = "username"
	ScanTypeDomain   ScanType = "domain"
	ScanTypePhone    ScanType = "phone"
)

type ScanState string

const (
	ScanPending   ScanState = "pending"
	ScanRunning   ScanState = "running"
	ScanCompleted ScanState = "completed"
	ScanFailed    ScanState = "failed"
	ScanStopped   ScanState = "stopped"
)

type ScanRequest struct {
	Type      ScanType               `json:"type" binding:"required"`
	Value     string                 `json:"value" binding:"required"`
	Providers []string               `json:"providers"`
	Options   map[string]interface{} `json:"options,omitempty"`
}

// ScanSummary is the per-scan record the live path finalizes and the
// repair path reconciles.
type ScanSummary struct {
	ID                string         `json:"id"`
	Type              ScanType       `json:"type"`
	Value             string         `json:"value"`
	Providers         []string       `json:"providers"`
	Status            ScanState      `json:"status"`
	StartedAt         time.Time      `json:"started_at"`
	CompletedAt       *time.Time     `json:"completed_at,omitempty"`
	HighRiskCount     int            `json:"high_risk_count"`
	MediumRiskCount   int            `json:"medium_risk_count"`
	LowRiskCount      int            `json:"low_risk_count"`
	PrivacyScore      int            `json:"privacy_score"`
	TotalSourcesFound int            `json:"total_sources_found"`
	ProviderCounts    map[string]int `json:"provider_counts"`
}

type RepairStats struct {
	High         int `json:"high"`
	Medium       int `json:"medium"`
	Low          int `json:"low"`
	PrivacyScore int `json:"privacy_score"`
}

type RepairResult struct {
	ScanID         string         `json:"scan_id"`
	FindingsCount  int            `json:"findings_count"`
	ProviderCounts map[string]int `json:"provider_counts"`
	Stats          RepairStats    `json:"stats"`
}
