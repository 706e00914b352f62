package stats

import (
	"context"
	"testing"
	"time"

	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/eventlog"
	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/model"
)

func intPtr(v int) *int { return &v }

func TestComputeStatsFoldsTerminalEvents(t *testing.T) {
	l := eventlog.New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	l.Append(model.ExecutionEvent{ScanID: "s1", Provider: "hibp", Stage: model.StageStarted, Status: model.StatusRunning, CreatedAt: base})
	l.Append(model.ExecutionEvent{ScanID: "s1", Provider: "shodan", Stage: model.StageStarted, Status: model.StatusRunning, CreatedAt: base.Add(10 * time.Millisecond)})
	l.Append(model.ExecutionEvent{ScanID: "s1", Provider: "maigret", Stage: model.StageStarted, Status: model.StatusRunning, CreatedAt: base.Add(20 * time.Millisecond)})
	l.Append(model.ExecutionEvent{ScanID: "s1", Provider: "hibp", Stage: model.StageComplete, Status: model.StatusSuccess, DurationMs: 1200, FindingsCount: intPtr(3), CreatedAt: base.Add(1200 * time.Millisecond)})
	l.Append(model.ExecutionEvent{ScanID: "s1", Provider: "shodan", Stage: model.StageFailed, Status: model.StatusFailed, DurationMs: 5000, ErrorMessage: "http status 500", CreatedAt: base.Add(5 * time.Second)})
	l.Append(model.ExecutionEvent{ScanID: "s1", Provider: "maigret", Stage: model.StageSkipped, Status: model.StatusNotConfigured, CreatedAt: base.Add(30 * time.Millisecond)})

	snap := New(l).ComputeStats("s1")

	if snap.TotalProviders != 3 {
		t.Fatalf("expected 3 providers, got %d", snap.TotalProviders)
	}
	if snap.SuccessfulProviders != 1 || snap.FailedProviders != 1 || snap.SkippedProviders != 1 {
		t.Fatalf("unexpected counts: %+v", snap)
	}
	if snap.TotalFindings != 3 {
		t.Fatalf("expected 3 findings, got %d", snap.TotalFindings)
	}

	// slowest first
	if snap.Providers[0].Provider != "shodan" || snap.Providers[1].Provider != "hibp" {
		t.Fatalf("unexpected provider order: %s, %s", snap.Providers[0].Provider, snap.Providers[1].Provider)
	}

	hibp := snap.Providers[1]
	if hibp.Status != model.StatusSuccess || hibp.FindingsCount != 3 {
		t.Fatalf("unexpected hibp record: %+v", hibp)
	}
	if !hibp.StartedAt.Equal(base) {
		t.Fatalf("expected original StartedAt preserved, got %s", hibp.StartedAt)
	}
}

func TestComputeStatsIgnoresFailedAttemptFindings(t *testing.T) {
	l := eventlog.New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	l.Append(model.ExecutionEvent{ScanID: "s1", Provider: "hibp", Stage: model.StageStarted, Status: model.StatusRunning, CreatedAt: base})
	l.Append(model.ExecutionEvent{ScanID: "s1", Provider: "hibp", Stage: model.StageFailed, Status: model.StatusFailed, FindingsCount: intPtr(2), CreatedAt: base.Add(time.Second)})

	snap := New(l).ComputeStats("s1")
	if snap.TotalFindings != 0 {
		t.Fatalf("failed events must not contribute findings, got %d", snap.TotalFindings)
	}
}

func TestComputeStatsSeedsTotalsFromScanSummary(t *testing.T) {
	l := eventlog.New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	l.Append(model.ExecutionEvent{ScanID: "s1", Provider: "hibp", Stage: model.StageStarted, Status: model.StatusRunning, CreatedAt: base})
	l.Append(model.ExecutionEvent{ScanID: "s1", Provider: "hibp", Stage: model.StageComplete, Status: model.StatusSuccess, DurationMs: 900, FindingsCount: intPtr(5), CreatedAt: base.Add(time.Second)})
	l.Append(model.ExecutionEvent{
		ScanID: "s1", Provider: model.ProviderOrchestrator, Stage: model.StageScanSummary,
		Status: model.StatusSuccess, DurationMs: 4200, FindingsCount: intPtr(5), CreatedAt: base.Add(2 * time.Second),
	})

	snap := New(l).ComputeStats("s1")

	if snap.TotalDurationMs != 4200 {
		t.Fatalf("expected summary duration 4200, got %d", snap.TotalDurationMs)
	}
	if snap.TotalFindings != 5 {
		t.Fatalf("expected 5 findings, got %d", snap.TotalFindings)
	}
	// the orchestrator row must not show up as a provider
	if snap.TotalProviders != 1 {
		t.Fatalf("expected 1 provider, got %d", snap.TotalProviders)
	}
}

func TestComputeStatsIsReplayable(t *testing.T) {
	l := eventlog.New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	l.Append(model.ExecutionEvent{ScanID: "s1", Provider: "hibp", Stage: model.StageStarted, Status: model.StatusRunning, CreatedAt: base})
	l.Append(model.ExecutionEvent{ScanID: "s1", Provider: "hibp", Stage: model.StageTimeout, Status: model.StatusTimeout, DurationMs: 25000, CreatedAt: base.Add(25 * time.Second)})

	agg := New(l)
	first := agg.ComputeStats("s1")
	second := agg.ComputeStats("s1")

	if first.FailedProviders != 1 || second.FailedProviders != 1 {
		t.Fatalf("timeout should count as failed: %+v", first)
	}
	if first.TotalDurationMs != second.TotalDurationMs {
		t.Fatal("recompute must be deterministic")
	}
}

func TestWatchRecomputesOnNewEvents(t *testing.T) {
	l := eventlog.New()
	agg := New(l)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snapshots := make(chan model.ScanHealthSnapshot, 8)
	go agg.Watch(ctx, "s1", func(s model.ScanHealthSnapshot) { snapshots <- s })

	// initial compute on subscribe
	select {
	case <-snapshots:
	case <-time.After(time.Second):
		t.Fatal("expected initial snapshot")
	}

	l.Append(model.ExecutionEvent{ScanID: "s1", Provider: "hibp", Stage: model.StageStarted, Status: model.StatusRunning})

	select {
	case snap := <-snapshots:
		if snap.TotalProviders != 1 {
			t.Fatalf("expected recomputed snapshot with 1 provider, got %+v", snap)
		}
	case <-time.After(time.Second):
		t.Fatal("expected snapshot after new event")
	}
}
