package repair

import (
	"reflect"
	"testing"
	"time"

	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/model"
)

type fakeStore struct {
	summaries map[string]model.ScanSummary
	findings  map[string][]model.Finding
}

func installFakeStore(t *testing.T) *fakeStore {
	fs := &fakeStore{
		summaries: make(map[string]model.ScanSummary),
		findings:  make(map[string][]model.Finding),
	}

	origGetSummary := getSummary
	origSetSummary := setSummary
	origGetFindings := getFindings
	origAddFindings := addFindings
	origNow := now
	origNewUUID := newUUID
	t.Cleanup(func() {
		getSummary = origGetSummary
		setSummary = origSetSummary
		getFindings = origGetFindings
		addFindings = origAddFindings
		now = origNow
		newUUID = origNewUUID
	})

	getSummary = func(id string) (model.ScanSummary, bool) {
		s, ok := fs.summaries[id]
		return s, ok
	}
	setSummary = func(id string, s model.ScanSummary) {
		fs.summaries[id] = s
	}
	getFindings = func(id string) []model.Finding {
		out := make([]model.Finding, len(fs.findings[id]))
		copy(out, fs.findings[id])
		return out
	}
	addFindings = func(id string, toAdd ...model.Finding) {
		fs.findings[id] = append(fs.findings[id], toAdd...)
	}
	now = func() time.Time {
		return time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	}
	newUUID = func() string {
		return "fixed-marker-id"
	}

	return fs
}

func seedFindings(fs *fakeStore, scanID string) {
	fs.findings[scanID] = []model.Finding{
		{ID: "f1", ScanID: scanID, Provider: "hibp", Severity: model.SeverityHigh},
		{ID: "f2", ScanID: scanID, Provider: "hibp", Severity: model.SeverityHigh},
		{ID: "f3", ScanID: scanID, Provider: "hibp", Severity: model.SeverityMedium},
		{ID: "f4", ScanID: scanID, Provider: "sherlock", Severity: model.SeverityLow},
		{ID: "f5", ScanID: scanID, Provider: "sherlock", Severity: model.SeverityLow},
		{ID: "f6", ScanID: scanID, Provider: "sherlock", Severity: model.SeverityLow},
	}
}

func TestRepairRecomputesCounters(t *testing.T) {
	fs := installFakeStore(t)
	fs.summaries["s1"] = model.ScanSummary{ID: "s1", Status: model.ScanFailed}
	seedFindings(fs, "s1")

	result, err := Repair("s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.FindingsCount != 6 {
		t.Fatalf("expected 6 findings counted, got %d", result.FindingsCount)
	}
	// 100 - (2*10 + 1*5 + 3*2) = 69
	if result.Stats.PrivacyScore != 69 {
		t.Fatalf("expected privacy score 69, got %d", result.Stats.PrivacyScore)
	}
	if result.Stats.High != 2 || result.Stats.Medium != 1 || result.Stats.Low != 3 {
		t.Fatalf("unexpected severity counts: %+v", result.Stats)
	}

	wantProviders := map[string]int{"hibp": 3, "sherlock": 3}
	if !reflect.DeepEqual(result.ProviderCounts, wantProviders) {
		t.Fatalf("unexpected provider counts: %+v", result.ProviderCounts)
	}

	summary := fs.summaries["s1"]
	if summary.Status != model.ScanCompleted {
		t.Fatalf("expected status completed, got %s", summary.Status)
	}
	if summary.CompletedAt == nil {
		t.Fatal("expected completion timestamp to be set")
	}
	if summary.TotalSourcesFound != 6 || summary.PrivacyScore != 69 {
		t.Fatalf("unexpected summary counters: %+v", summary)
	}
}

func TestRepairAppendsWriteOnceMarker(t *testing.T) {
	fs := installFakeStore(t)
	fs.summaries["s1"] = model.ScanSummary{ID: "s1", Status: model.ScanFailed}
	seedFindings(fs, "s1")

	if _, err := Repair("s1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var markers int
	for _, f := range fs.findings["s1"] {
		if f.Kind == RepairKind {
			markers++
			if f.Provider != model.ProviderSystem {
				t.Fatalf("expected system provider on marker, got %s", f.Provider)
			}
		}
	}
	if markers != 1 {
		t.Fatalf("expected exactly one marker finding, got %d", markers)
	}

	if _, err := Repair("s1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	markers = 0
	for _, f := range fs.findings["s1"] {
		if f.Kind == RepairKind {
			markers++
		}
	}
	if markers != 1 {
		t.Fatalf("expected marker to be write-once, got %d", markers)
	}
}

func TestRepairIsIdempotent(t *testing.T) {
	fs := installFakeStore(t)
	fs.summaries["s1"] = model.ScanSummary{ID: "s1", Status: model.ScanFailed}
	seedFindings(fs, "s1")

	first, err := Repair("s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Repair("s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical results:\nfirst:  %+v\nsecond: %+v", first, second)
	}
	// The marker appended by the first run must not inflate the second.
	if second.FindingsCount != 6 {
		t.Fatalf("expected marker excluded from counters, got %d", second.FindingsCount)
	}
}

func TestRepairUnknownScan(t *testing.T) {
	installFakeStore(t)

	if _, err := Repair("missing"); err == nil {
		t.Fatal("expected error for unknown scan")
	}
}
