package repair

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/model"
	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/store"
)

// RepairKind marks the informational finding a repair run appends so the
// repair itself stays auditable. Marker findings are write-once and
// excluded from every recomputed counter.
const RepairKind = "system.repair"

// seams for tests
var (
	getSummary  = store.GetSummary
	setSummary  = store.SetSummary
	getFindings = store.GetFindings
	addFindings = store.AddFindings
	now         = time.Now
	newUUID     = uuid.NewString
)

// Repair recomputes a scan's summary counters from its finding set. It is
// the fallback reconciliation path for scans whose live aggregation never
// finalized (e.g. a crash mid-scan) and is safe to call repeatedly:
// running it twice on an unchanged finding set produces identical output.
func Repair(scanID string) (model.RepairResult, error) {
	summary, ok := getSummary(scanID)
	if !ok {
		return model.RepairResult{}, fmt.Errorf("scan %s not found", scanID)
	}

	all := getFindings(scanID)

	var counted []model.Finding
	hasMarker := false
	for _, f := range all {
		if f.Kind == RepairKind {
			hasMarker = true
			continue
		}
		counted = append(counted, f)
	}

	providerCounts := make(map[string]int)
	var high, medium, low int
	for _, f := range counted {
		providerCounts[f.Provider]++
		switch f.Severity {
		case model.SeverityHigh:
			high++
		case model.SeverityMedium:
			medium++
		case model.SeverityLow:
			low++
		}
	}

	privacyScore := 100 - (high*10 + medium*5 + low*2)
	if privacyScore < 0 {
		privacyScore = 0
	}
	if privacyScore > 100 {
		privacyScore = 100
	}

	summary.ProviderCounts = providerCounts
	summary.HighRiskCount = high
	summary.MediumRiskCount = medium
	summary.LowRiskCount = low
	summary.PrivacyScore = privacyScore
	summary.TotalSourcesFound = len(counted)
	summary.Status = model.ScanCompleted
	if summary.CompletedAt == nil {
		completed := now().UTC()
		summary.CompletedAt = &completed
	}
	setSummary(scanID, summary)

	if !hasMarker {
		addFindings(scanID, model.Finding{
			ID:         newUUID(),
			ScanID:     scanID,
			Provider:   model.ProviderSystem,
			Kind:       RepairKind,
			Severity:   model.SeverityInfo,
			Confidence: 1,
			Evidence: []model.Evidence{{
				Key:   "message",
				Value: fmt.Sprintf("scan summary reconciled from %d findings", len(counted)),
			}},
			ObservedAt: now().UTC(),
		})
	}

	log.Printf("[repair] scan %s reconciled: %d findings, privacy score %d", scanID, len(counted), privacyScore)

	return model.RepairResult{
		ScanID:         scanID,
		FindingsCount:  len(counted),
		ProviderCounts: providerCounts,
		Stats: model.RepairStats{
			High:         high,
			Medium:       medium,
			Low:          low,
			PrivacyScore: privacyScore,
		},
	}, nil
}
