package health

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/eventlog"
	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/model"
)

// Thresholds for flagging a provider as "with issues".
const (
	SuccessRateFloor = 90.0
	EmptyRateCeiling = 80.0
)

var syntheticProviders = map[string]bool{
	model.ProviderSystem:       true,
	model.ProviderOrchestrator: true,
	model.ProviderAll:          true,
}

// seam for tests
var now = time.Now

type Aggregator struct {
	log *eventlog.Log
}

func New(log *eventlog.Log) *Aggregator {
	return &Aggregator{log: log}
}

type providerTally struct {
	success   int
	failed    int
	timeout   int
	skipped   int
	empty     int
	durations []int64
}

// ComputeHealth builds windowed reliability metrics per provider and a
// fleet summary. successRate counts every terminal event, timeouts and
// skips included; emptyRate divides only by successes — a successful call
// that found nothing is a quality signal, not a failure, and the asymmetry
// is deliberate.
func (a *Aggregator) ComputeHealth(windowDays int) ([]model.ProviderHealthMetric, model.ScanHealthSummary) {
	if windowDays < 1 {
		windowDays = 1
	}
	cutoff := now().AddDate(0, 0, -windowDays)

	tallies := make(map[string]*providerTally)
	for _, ev := range a.log.Since(cutoff) {
		// "completed" is the legacy spelling of the complete stage; old
		// logs must keep replaying
		if !ev.Stage.IsTerminal() && ev.Stage != "completed" {
			continue
		}
		if syntheticProviders[ev.Provider] {
			continue
		}

		tally := tallies[ev.Provider]
		if tally == nil {
			tally = &providerTally{}
			tallies[ev.Provider] = tally
		}

		switch ev.Status {
		case model.StatusSuccess:
			tally.success++
			if ev.FindingsCount != nil && *ev.FindingsCount == 0 {
				tally.empty++
			}
		case model.StatusTimeout:
			tally.timeout++
		case model.StatusFailed:
			tally.failed++
		default:
			// skip reasons (not_configured, tier_restricted, ...) all
			// count as skipped
			tally.skipped++
		}
		if ev.DurationMs > 0 {
			tally.durations = append(tally.durations, ev.DurationMs)
		}
	}

	metrics := make([]model.ProviderHealthMetric, 0, len(tallies))
	summary := model.ScanHealthSummary{}
	var totalSuccess, totalTimeout, totalEmpty int

	for provider, tally := range tallies {
		total := tally.success + tally.failed + tally.timeout + tally.skipped

		metric := model.ProviderHealthMetric{
			Provider:     provider,
			SuccessCount: tally.success,
			FailedCount:  tally.failed,
			TimeoutCount: tally.timeout,
			SkippedCount: tally.skipped,
			EmptyResults: tally.empty,
			TotalCount:   total,
		}
		if total > 0 {
			metric.SuccessRate = float64(tally.success) / float64(total) * 100
		}
		if tally.success > 0 {
			metric.EmptyRate = float64(tally.empty) / float64(tally.success) * 100
		}
		if len(tally.durations) > 0 {
			var sum int64
			for _, d := range tally.durations {
				sum += d
			}
			metric.AvgDurationMs = float64(sum) / float64(len(tally.durations))
		}

		if metric.SuccessRate < SuccessRateFloor || metric.EmptyRate > EmptyRateCeiling {
			summary.ProvidersWithIssues++
		} else {
			summary.HealthyProviders++
		}

		summary.TotalProviderCalls += total
		totalSuccess += tally.success
		totalTimeout += tally.timeout
		totalEmpty += tally.empty

		metrics = append(metrics, metric)
	}

	if summary.TotalProviderCalls > 0 {
		summary.OverallSuccessRate = float64(totalSuccess) / float64(summary.TotalProviderCalls) * 100
		summary.OverallTimeoutRate = float64(totalTimeout) / float64(summary.TotalProviderCalls) * 100
	}
	if totalSuccess > 0 {
		summary.OverallEmptyRate = float64(totalEmpty) / float64(totalSuccess) * 100
	}

	sort.SliceStable(metrics, func(i, j int) bool {
		return metrics[i].TotalCount > metrics[j].TotalCount
	})

	return metrics, summary
}

// Refresher recomputes the fleet view on a fixed interval rather than per
// event: the view spans every scan and does not need sub-second freshness.
type Refresher struct {
	agg        *Aggregator
	windowDays int
	interval   time.Duration

	mu      sync.RWMutex
	metrics []model.ProviderHealthMetric
	summary model.ScanHealthSummary
}

func NewRefresher(agg *Aggregator, windowDays int, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Refresher{agg: agg, windowDays: windowDays, interval: interval}
}

// Run refreshes until ctx is done. Callers run it in its own goroutine.
func (r *Refresher) Run(ctx context.Context) {
	r.refresh()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.refresh()
		}
	}
}

func (r *Refresher) refresh() {
	metrics, summary := r.agg.ComputeHealth(r.windowDays)
	r.mu.Lock()
	r.metrics = metrics
	r.summary = summary
	r.mu.Unlock()
	log.Printf("[health] refreshed: %d providers, %d calls, %.1f%% success",
		len(metrics), summary.TotalProviderCalls, summary.OverallSuccessRate)
}

// Current returns the last computed view.
func (r *Refresher) Current() ([]model.ProviderHealthMetric, model.ScanHealthSummary) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.metrics, r.summary
}
