package audit

import (
	"log"
	"time"

	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/model"
)

// Sink persists execution events. Implementations never return an error:
// audit logging is fire-and-forget and must not be able to fail a provider
// call. Persistence failures are logged locally and swallowed.
type Sink interface {
	Record(ev model.ExecutionEvent)
}

// FuncSink adapts a fallible append into the never-fails Sink contract.
type FuncSink func(ev model.ExecutionEvent) error

func (f FuncSink) Record(ev model.ExecutionEvent) {
	if err := f(ev); err != nil {
		log.Printf("[audit] dropping event scan=%s provider=%s stage=%s: %v", ev.ScanID, ev.Provider, ev.Stage, err)
	}
}

// seam for tests
var now = time.Now

// Logger emits one structured event per provider state transition for a
// single scan.
type Logger struct {
	sink   Sink
	scanID string
}

func NewLogger(sink Sink, scanID string) *Logger {
	return &Logger{sink: sink, scanID: scanID}
}

func (l *Logger) LogEvent(ev model.ExecutionEvent) {
	ev.ScanID = l.scanID
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = now().UTC()
	}
	l.sink.Record(ev)
}

// LogStart records the started transition and returns the start timestamp
// the caller threads through to the terminal call.
func (l *Logger) LogStart(provider string) time.Time {
	start := now()
	l.LogEvent(model.ExecutionEvent{
		Provider: provider,
		Stage:    model.StageStarted,
		Status:   model.StatusRunning,
	})
	return start
}

func (l *Logger) LogComplete(provider string, start time.Time, findingsCount int) {
	count := findingsCount
	l.LogEvent(model.ExecutionEvent{
		Provider:      provider,
		Stage:         model.StageComplete,
		Status:        model.StatusSuccess,
		DurationMs:    now().Sub(start).Milliseconds(),
		FindingsCount: &count,
	})
}

func (l *Logger) LogFailed(provider string, start time.Time, errorMessage string) {
	l.LogEvent(model.ExecutionEvent{
		Provider:     provider,
		Stage:        model.StageFailed,
		Status:       model.StatusFailed,
		DurationMs:   now().Sub(start).Milliseconds(),
		ErrorMessage: errorMessage,
	})
}

// LogSkipped records a configuration/entitlement skip. Skips are not
// errors: reason is one of the skip statuses (not_configured,
// tier_restricted, limit_exceeded, disabled).
func (l *Logger) LogSkipped(provider string, reason model.Status, message string) {
	l.LogEvent(model.ExecutionEvent{
		Provider:     provider,
		Stage:        model.StageSkipped,
		Status:       reason,
		ErrorMessage: message,
	})
}

func (l *Logger) LogTimeout(provider string, start time.Time, timeoutMs int64) {
	l.LogEvent(model.ExecutionEvent{
		Provider:     provider,
		Stage:        model.StageTimeout,
		Status:       model.StatusTimeout,
		DurationMs:   now().Sub(start).Milliseconds(),
		Metadata:     map[string]interface{}{"timeout_ms": timeoutMs},
		ErrorMessage: "provider call timed out",
	})
}

// ScanSummary carries the aggregate totals the orchestrator emits once per
// scan after all providers settle.
type ScanSummary struct {
	TotalProviders      int
	SuccessfulProviders int
	FailedProviders     int
	SkippedProviders    int
	TotalDurationMs     int64
	TotalFindings       int
	ProviderBreakdown   map[string]model.Status
}

func (l *Logger) LogScanSummary(s ScanSummary) {
	count := s.TotalFindings
	breakdown := make(map[string]interface{}, len(s.ProviderBreakdown))
	for provider, status := range s.ProviderBreakdown {
		breakdown[provider] = string(status)
	}
	l.LogEvent(model.ExecutionEvent{
		Provider:      model.ProviderOrchestrator,
		Stage:         model.StageScanSummary,
		Status:        model.StatusSuccess,
		DurationMs:    s.TotalDurationMs,
		FindingsCount: &count,
		Metadata: map[string]interface{}{
			"total_providers":      s.TotalProviders,
			"successful_providers": s.SuccessfulProviders,
			"failed_providers":     s.FailedProviders,
			"skipped_providers":    s.SkippedProviders,
			"provider_breakdown":   breakdown,
		},
	})
}
