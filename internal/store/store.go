package store

import (
	"sync"

	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/model"
)

var (
	mu        sync.RWMutex
	summaries map[string]model.ScanSummary
	findings  map[string][]model.Finding
)

func Init() {
	mu.Lock()
	defer mu.Unlock()
	summaries = make(map[string]model.ScanSummary)
	findings = make(map[string][]model.Finding)
}

func SetSummary(id string, summary model.ScanSummary) {
	mu.Lock()
	defer mu.Unlock()
	summaries[id] = summary
}

func GetSummary(id string) (model.ScanSummary, bool) {
	mu.RLock()
	defer mu.RUnlock()
	summary, ok := summaries[id]
	return summary, ok
}

// AddFindings appends findings for a scan. Findings are write-once:
// existing entries are never replaced or removed.
func AddFindings(id string, toAdd ...model.Finding) {
	mu.Lock()
	defer mu.Unlock()
	findings[id] = append(findings[id], toAdd...)
}

// GetFindings returns a copy of the scan's findings.
func GetFindings(id string) []model.Finding {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]model.Finding, len(findings[id]))
	copy(out, findings[id])
	return out
}
