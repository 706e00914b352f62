package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/eventlog"
	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/model"
	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/retry"
	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/scan"
	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/store"
)

// Harness drives synthetic scans through the real fan-out path to measure
// end-to-end reliability. Each simulated scan is pre-labeled pass or fail;
// the harness verifies the pipeline degrades the labeled failures instead
// of losing them, then compares the observed failure rate to the alert
// threshold.
type Harness struct {
	events    *eventlog.Log
	threshold float64
	alertURL  string
	client    *http.Client
}

func New(events *eventlog.Log, threshold float64, alertURL string) *Harness {
	return &Harness{
		events:    events,
		threshold: threshold,
		alertURL:  alertURL,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type ScanOutcome struct {
	ScanID string `json:"scan_id"`
	Index  int    `json:"index"`
	Failed bool   `json:"failed"`
}

type Report struct {
	TotalScans  int           `json:"total_scans"`
	FailedScans int           `json:"failed_scans"`
	FailureRate float64       `json:"failure_rate"`
	Threshold   float64       `json:"threshold"`
	Alerted     bool          `json:"alerted"`
	Outcomes    []ScanOutcome `json:"outcomes"`
}

var errSimulatedOutage = errors.New("simulated provider outage")

func simulationRetryOpts() retry.Options {
	return retry.Options{
		MaxAttempts: 1,
		Delays:      []time.Duration{time.Millisecond},
		Timeout:     5 * time.Second,
	}
}

// Run executes n synthetic scans. failLabels marks scan indices whose
// provider is rigged to fail; everything else runs clean. The failure rate
// is failed scans over n, and an alert fires when it exceeds the
// threshold.
func (h *Harness) Run(ctx context.Context, n int, failLabels map[int]bool) (Report, error) {
	if n < 1 {
		return Report{}, fmt.Errorf("scan count must be positive, got %d", n)
	}

	report := Report{TotalScans: n, Threshold: h.threshold}

	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}

		provider := &scan.StaticProvider{
			Name: "synthetic_osint",
			Findings: []model.Finding{
				{Kind: "presence.hit", Severity: model.SeverityLow, Status: model.FindingFound},
			},
		}
		if failLabels[i] {
			provider.Err = errSimulatedOutage
		}

		runner := scan.NewRunner(h.events, []scan.Provider{provider}, simulationRetryOpts())

		id, err := runner.Start(&model.ScanRequest{
			Type:  model.ScanTypeUsername,
			Value: fmt.Sprintf("synthetic-%d", i),
		})
		if err != nil {
			return report, fmt.Errorf("start simulated scan %d: %w", i, err)
		}

		if err := h.awaitScan(ctx, id); err != nil {
			return report, err
		}

		failed := h.scanFailed(id)
		report.Outcomes = append(report.Outcomes, ScanOutcome{ScanID: id, Index: i, Failed: failed})
		if failed {
			report.FailedScans++
		}
	}

	report.FailureRate = float64(report.FailedScans) / float64(report.TotalScans)
	log.Printf("[simulate] %d/%d scans failed (rate %.2f, threshold %.2f)",
		report.FailedScans, report.TotalScans, report.FailureRate, h.threshold)

	if report.FailureRate > h.threshold {
		report.Alerted = true
		if err := h.sendAlert(ctx, report); err != nil {
			return report, fmt.Errorf("send alert: %w", err)
		}
	}

	return report, nil
}

func (h *Harness) awaitScan(ctx context.Context, id string) error {
	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		summary, ok := store.GetSummary(id)
		if ok && summary.Status != model.ScanRunning {
			return nil
		}
		time.Sleep(2 * time.Millisecond)
	}
	return fmt.Errorf("simulated scan %s did not settle", id)
}

// scanFailed inspects the scan's audit trail: a scan counts as failed when
// any provider ended on a failed or timeout stage.
func (h *Harness) scanFailed(id string) bool {
	for _, ev := range h.events.ForScan(id) {
		if ev.Stage == model.StageFailed || ev.Stage == model.StageTimeout {
			return true
		}
	}
	return false
}

func (h *Harness) sendAlert(ctx context.Context, report Report) error {
	if h.alertURL == "" {
		log.Printf("[simulate] failure rate %.2f breached threshold but no alert URL configured", report.FailureRate)
		return nil
	}

	payload, err := json.Marshal(map[string]interface{}{
		"failure_rate": report.FailureRate,
		"failed_scans": report.FailedScans,
		"total_scans":  report.TotalScans,
		"threshold":    report.Threshold,
		"alerted_at":   time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.alertURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("alert endpoint returned %d", resp.StatusCode)
	}
	log.Printf("[simulate] alert delivered to %s", h.alertURL)
	return nil
}
