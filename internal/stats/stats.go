package stats

import (
	"context"
	"sort"

	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/eventlog"
	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/model"
)

// Aggregator builds the per-scan health snapshot as a pure fold over the
// ordered event log. The fold is idempotent and replayable: recomputing at
// any time from scratch yields the same snapshot for the same events.
type Aggregator struct {
	log *eventlog.Log
}

func New(log *eventlog.Log) *Aggregator {
	return &Aggregator{log: log}
}

func (a *Aggregator) ComputeStats(scanID string) model.ScanHealthSnapshot {
	events := a.log.ForScan(scanID)

	snapshot := model.ScanHealthSnapshot{ScanID: scanID}
	records := make(map[string]*model.ProviderExecutionStat)

	for _, ev := range events {
		if ev.Provider == model.ProviderOrchestrator || ev.Stage == model.StageScanSummary {
			// summary totals are authoritative when the orchestrator got
			// to emit them
			if ev.Stage == model.StageScanSummary {
				if ev.DurationMs > 0 {
					snapshot.TotalDurationMs = ev.DurationMs
				}
				if ev.FindingsCount != nil {
					snapshot.TotalFindings = *ev.FindingsCount
				}
			}
			continue
		}

		switch {
		case ev.Stage == model.StageStarted:
			records[ev.Provider] = &model.ProviderExecutionStat{
				Provider:  ev.Provider,
				Status:    model.StatusRunning,
				StartedAt: ev.CreatedAt,
			}
		case ev.Stage.IsTerminal():
			rec, ok := records[ev.Provider]
			if !ok {
				// terminal without an observed start: tolerate, the event
				// may have raced past our read
				rec = &model.ProviderExecutionStat{
					Provider:  ev.Provider,
					StartedAt: ev.CreatedAt,
				}
				records[ev.Provider] = rec
			}

			status := ev.Status
			if ev.Stage == model.StageComplete {
				status = model.StatusSuccess
			}
			rec.Status = status
			rec.DurationMs = ev.DurationMs
			rec.ErrorMessage = ev.ErrorMessage
			finished := ev.CreatedAt
			rec.FinishedAt = &finished
			if ev.FindingsCount != nil {
				rec.FindingsCount = *ev.FindingsCount
			}

			// only completed executions contribute findings, so failed
			// attempts are never double counted
			if ev.Stage == model.StageComplete && ev.FindingsCount != nil {
				snapshot.TotalFindings += *ev.FindingsCount
			}
		}
	}

	for _, rec := range records {
		snapshot.TotalProviders++
		switch rec.Status {
		case model.StatusSuccess:
			snapshot.SuccessfulProviders++
		case model.StatusFailed, model.StatusTimeout:
			snapshot.FailedProviders++
		case model.StatusSkipped, model.StatusNotConfigured, model.StatusTierRestricted,
			model.StatusLimitExceeded, model.StatusDisabled:
			snapshot.SkippedProviders++
		}
	}

	// without a summary seed, total duration comes from the provider records
	if snapshot.TotalDurationMs == 0 {
		for _, rec := range records {
			snapshot.TotalDurationMs += rec.DurationMs
		}
	}

	snapshot.Providers = make([]model.ProviderExecutionStat, 0, len(records))
	for _, rec := range records {
		snapshot.Providers = append(snapshot.Providers, *rec)
	}
	// slowest first, surfacing bottlenecks
	sort.SliceStable(snapshot.Providers, func(i, j int) bool {
		return snapshot.Providers[i].DurationMs > snapshot.Providers[j].DurationMs
	})

	return snapshot
}

// Watch recomputes the snapshot on every new event for the scan and hands
// it to fn, until ctx is done. Callers run it in its own goroutine.
func (a *Aggregator) Watch(ctx context.Context, scanID string, fn func(model.ScanHealthSnapshot)) {
	events, cancel := a.log.Subscribe(scanID)
	defer cancel()

	fn(a.ComputeStats(scanID))
	for {
		select {
		case <-ctx.Done():
			return
		case <-events:
			fn(a.ComputeStats(scanID))
		}
	}
}
