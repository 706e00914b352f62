package scan

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/audit"
	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/eventlog"
	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/helper"
	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/model"
	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/retry"
	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/store"
)

// Runner fans a scan out across its providers. Each provider runs in its
// own goroutine behind the retry executor; providers share nothing, so one
// provider's retry storm or failure cannot spill into another's.
type Runner struct {
	events    *eventlog.Log
	providers map[string]Provider
	order     []string
	retryOpts retry.Options

	activeCancel struct {
		sync.Mutex
		cancelMap map[string]context.CancelFunc
	}
}

func NewRunner(events *eventlog.Log, providers []Provider, retryOpts retry.Options) *Runner {
	r := &Runner{
		events:    events,
		providers: make(map[string]Provider, len(providers)),
		retryOpts: retryOpts,
	}
	r.activeCancel.cancelMap = make(map[string]context.CancelFunc)
	for _, p := range providers {
		if _, dup := r.providers[p.ID()]; dup {
			continue
		}
		r.providers[p.ID()] = p
		r.order = append(r.order, p.ID())
	}
	return r
}

// providerOutcome is written by exactly one goroutine at its own index.
type providerOutcome struct {
	provider string
	status   model.Status
	findings int
}

// Start validates the request and launches the scan. It returns as soon as
// the scan is registered; progress is observable through the event log and
// the stored summary.
func (r *Runner) Start(request *model.ScanRequest) (string, error) {
	log.Printf("[Start] called with request: %+v", request)

	if err := helper.ValidateScanRequest(request); err != nil {
		return "", err
	}

	selected, err := r.selectProviders(request.Providers)
	if err != nil {
		return "", err
	}

	id := uuid.New().String()

	ctx, cancel := context.WithCancel(context.Background())
	r.activeCancel.Lock()
	r.activeCancel.cancelMap[id] = cancel
	r.activeCancel.Unlock()
	log.Printf("[Start] scan %s registered, providers: %v", id, providerNames(selected))

	store.SetSummary(id, model.ScanSummary{
		ID:        id,
		Type:      request.Type,
		Value:     request.Value,
		Providers: providerNames(selected),
		Status:    model.ScanRunning,
		StartedAt: time.Now().UTC(),
	})

	go r.orchestrate(ctx, id, *request, selected)

	return id, nil
}

// Stop cancels an active scan. The orchestrator still settles the scan and
// writes a final summary with whatever findings arrived before the cancel.
func (r *Runner) Stop(id string) error {
	log.Printf("[Stop] called for id: %s", id)

	r.activeCancel.Lock()
	defer r.activeCancel.Unlock()
	if cancel, ok := r.activeCancel.cancelMap[id]; ok {
		cancel()
		delete(r.activeCancel.cancelMap, id)
		log.Printf("[Stop] cancelled scan id: %s", id)
		return nil
	}
	return fmt.Errorf("no active scan with id %s", id)
}

func (r *Runner) selectProviders(names []string) ([]Provider, error) {
	if len(names) == 0 {
		selected := make([]Provider, 0, len(r.order))
		for _, name := range r.order {
			selected = append(selected, r.providers[name])
		}
		return selected, nil
	}

	var selected []Provider
	for _, name := range names {
		p, ok := r.providers[name]
		if !ok {
			return nil, fmt.Errorf("no provider registered as %s", name)
		}
		selected = append(selected, p)
	}
	return selected, nil
}

func providerNames(providers []Provider) []string {
	names := make([]string, len(providers))
	for i, p := range providers {
		names[i] = p.ID()
	}
	return names
}

func (r *Runner) orchestrate(ctx context.Context, id string, request model.ScanRequest, providers []Provider) {
	logger := audit.NewLogger(audit.FuncSink(func(ev model.ExecutionEvent) error {
		r.events.Append(ev)
		return nil
	}), id)

	scanStart := time.Now()
	outcomes := make([]providerOutcome, len(providers))

	var wGroup sync.WaitGroup
	for i, provider := range providers {
		wGroup.Add(1)
		go func(slot int, p Provider) {
			defer wGroup.Done()
			outcomes[slot] = r.runProvider(ctx, logger, id, request, p)
		}(i, provider)
	}
	wGroup.Wait()

	summary := r.finalize(ctx, id, scanStart, outcomes)
	logger.LogScanSummary(summary)

	r.activeCancel.Lock()
	delete(r.activeCancel.cancelMap, id)
	r.activeCancel.Unlock()
	log.Printf("[orchestrate] scan %s settled and removed from activeCancel map", id)
}

// runProvider executes one provider to a terminal audit event. Every exit
// path both logs the transition and leaves at least one finding behind, so
// a degraded provider is visible in the result, not silently absent.
func (r *Runner) runProvider(ctx context.Context, logger *audit.Logger, scanID string, request model.ScanRequest, p Provider) providerOutcome {
	start := logger.LogStart(p.ID())

	result := retry.Execute(ctx, p.ID(), func(attemptCtx context.Context) (interface{}, error) {
		return p.Fetch(attemptCtx, request)
	}, r.retryOpts)

	if result.Err != nil {
		var skip *SkipError
		switch {
		case errors.As(result.Err, &skip):
			logger.LogSkipped(p.ID(), skip.Reason, skip.Message)
			store.AddFindings(scanID, infoFinding(scanID, p.ID(), "provider.skipped",
				fmt.Sprintf("%s skipped: %s", p.ID(), skip.Message)))
			return providerOutcome{provider: p.ID(), status: skip.Reason}

		case retry.IsTimeout(result.Err):
			logger.LogTimeout(p.ID(), start, r.timeoutMs())
			store.AddFindings(scanID, infoFinding(scanID, p.ID(), "provider.timeout",
				fmt.Sprintf("%s timed out after %d attempts", p.ID(), result.Attempts)))
			return providerOutcome{provider: p.ID(), status: model.StatusTimeout}

		default:
			logger.LogFailed(p.ID(), start, result.Err.Error())
			store.AddFindings(scanID, infoFinding(scanID, p.ID(), "provider.failed",
				fmt.Sprintf("%s failed after %d attempts: %v", p.ID(), result.Attempts, result.Err)))
			return providerOutcome{provider: p.ID(), status: model.StatusFailed}
		}
	}

	findings, _ := result.Data.([]model.Finding)
	for i := range findings {
		findings[i].ScanID = scanID
		findings[i].Provider = p.ID()
		if findings[i].ID == "" {
			findings[i].ID = uuid.New().String()
		}
		if findings[i].ObservedAt.IsZero() {
			findings[i].ObservedAt = time.Now().UTC()
		}
		if findings[i].URL != "" {
			if cleaned, err := helper.NormalizeURL(findings[i].URL); err == nil {
				findings[i].URL = cleaned
			}
		}
	}
	if len(findings) > 0 {
		store.AddFindings(scanID, findings...)
	}

	logger.LogComplete(p.ID(), start, len(findings))
	return providerOutcome{provider: p.ID(), status: model.StatusSuccess, findings: len(findings)}
}

func (r *Runner) timeoutMs() int64 {
	timeout := r.retryOpts.Timeout
	if timeout <= 0 {
		timeout = retry.DefaultTimeout
	}
	return timeout.Milliseconds()
}

// finalize recomputes the summary counters from the stored findings and
// writes the terminal summary. Partial results are the norm: the scan
// completes even when every provider degraded.
func (r *Runner) finalize(ctx context.Context, id string, scanStart time.Time, outcomes []providerOutcome) audit.ScanSummary {
	findings := store.GetFindings(id)

	providerCounts := make(map[string]int)
	var high, medium, low int
	for _, f := range findings {
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

	status := model.ScanCompleted
	if ctx.Err() != nil {
		status = model.ScanStopped
	}

	summary, ok := store.GetSummary(id)
	if !ok {
		summary = model.ScanSummary{ID: id}
	}
	completed := time.Now().UTC()
	summary.Status = status
	summary.CompletedAt = &completed
	summary.HighRiskCount = high
	summary.MediumRiskCount = medium
	summary.LowRiskCount = low
	summary.PrivacyScore = privacyScore
	summary.TotalSourcesFound = len(findings)
	summary.ProviderCounts = providerCounts
	store.SetSummary(id, summary)

	auditSummary := audit.ScanSummary{
		TotalProviders:    len(outcomes),
		TotalDurationMs:   time.Since(scanStart).Milliseconds(),
		ProviderBreakdown: make(map[string]model.Status, len(outcomes)),
	}
	for _, outcome := range outcomes {
		auditSummary.ProviderBreakdown[outcome.provider] = outcome.status
		switch outcome.status {
		case model.StatusSuccess:
			auditSummary.SuccessfulProviders++
			auditSummary.TotalFindings += outcome.findings
		case model.StatusFailed, model.StatusTimeout:
			auditSummary.FailedProviders++
		default:
			auditSummary.SkippedProviders++
		}
	}
	return auditSummary
}

func infoFinding(scanID, provider, kind, message string) model.Finding {
	return model.Finding{
		ID:         uuid.New().String(),
		ScanID:     scanID,
		Provider:   provider,
		Kind:       kind,
		Severity:   model.SeverityInfo,
		Confidence: 1,
		Evidence:   []model.Evidence{{Key: "message", Value: message}},
		ObservedAt: time.Now().UTC(),
	}
}
