package helper

import (
	"testing"

	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/model"
)

func TestNormalizeURL(t *testing.T) {
	raw := "https://github.com//someone/../other?tab=repos#top"
	exp := "https://github.com/other"

	got, err := NormalizeURL(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != exp {
		t.Fatalf("expected %q, got %q", exp, got)
	}
}

func TestNormalizeURLEncoded(t *testing.T) {
	raw := "https://example.com/%2Fprofile%2F"
	exp := "https://example.com/profile"

	got, err := NormalizeURL(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != exp {
		t.Fatalf("expected %q, got %q", exp, got)
	}
}

func TestNormalizeURLInvalid(t *testing.T) {
	_, err := NormalizeURL("://bad-url")
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestValidateScanRequestNil(t *testing.T) {
	if err := ValidateScanRequest(nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestValidateScanRequestEmptyValue(t *testing.T) {
	req := &model.ScanRequest{Type: model.ScanTypeEmail}
	if err := ValidateScanRequest(req); err == nil {
		t.Fatal("expected error")
	}
}

func TestValidateScanRequestEmail(t *testing.T) {
	req := &model.ScanRequest{Type: model.ScanTypeEmail, Value: "user@example.com"}
	if err := ValidateScanRequest(req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req = &model.ScanRequest{Type: model.ScanTypeEmail, Value: "not-an-email"}
	if err := ValidateScanRequest(req); err == nil {
		t.Fatal("expected error")
	}
}

func TestValidateScanRequestUsername(t *testing.T) {
	valid := []string{"jdoe", "j.doe-99", "some_user"}
	for _, v := range valid {
		req := &model.ScanRequest{Type: model.ScanTypeUsername, Value: v}
		if err := ValidateScanRequest(req); err != nil {
			t.Fatalf("expected %q valid: %v", v, err)
		}
	}

	invalid := []string{"x", "user name", "user@host"}
	for _, v := range invalid {
		req := &model.ScanRequest{Type: model.ScanTypeUsername, Value: v}
		if err := ValidateScanRequest(req); err == nil {
			t.Fatalf("expected %q invalid", v)
		}
	}
}

func TestValidateScanRequestDomain(t *testing.T) {
	req := &model.ScanRequest{Type: model.ScanTypeDomain, Value: "example.com"}
	if err := ValidateScanRequest(req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	invalid := []string{"https://example.com", "localhost", "bad domain.com"}
	for _, v := range invalid {
		req := &model.ScanRequest{Type: model.ScanTypeDomain, Value: v}
		if err := ValidateScanRequest(req); err == nil {
			t.Fatalf("expected %q invalid", v)
		}
	}
}

func TestValidateScanRequestPhone(t *testing.T) {
	req := &model.ScanRequest{Type: model.ScanTypePhone, Value: "+14155550123"}
	if err := ValidateScanRequest(req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	invalid := []string{"12345", "+1-415-555", "phone"}
	for _, v := range invalid {
		req := &model.ScanRequest{Type: model.ScanTypePhone, Value: v}
		if err := ValidateScanRequest(req); err == nil {
			t.Fatalf("expected %q invalid", v)
		}
	}
}

func TestValidateScanRequestUnknownType(t *testing.T) {
	req := &model.ScanRequest{Type: "ip", Value: "10.0.0.1"}
	if err := ValidateScanRequest(req); err == nil {
		t.Fatal("expected error")
	}
}

func TestValidateScanRequestNormalizesProviders(t *testing.T) {
	req := &model.ScanRequest{
		Type:      model.ScanTypeUsername,
		Value:     "jdoe",
		Providers: []string{"Sherlock", " hibp ", "sherlock"},
	}

	if err := ValidateScanRequest(req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(req.Providers) != 2 {
		t.Fatalf("expected 2 providers, got %v", req.Providers)
	}
	if req.Providers[0] != "sherlock" || req.Providers[1] != "hibp" {
		t.Fatalf("unexpected normalization: %v", req.Providers)
	}
}

func TestValidateScanRequestUnsupportedProvider(t *testing.T) {
	req := &model.ScanRequest{
		Type:      model.ScanTypeUsername,
		Value:     "jdoe",
		Providers: []string{"hibp", "unknown"},
	}

	if err := ValidateScanRequest(req); err == nil {
		t.Fatal("expected error")
	}
}

func TestValidateScanRequestNoProviders(t *testing.T) {
	req := &model.ScanRequest{Type: model.ScanTypeUsername, Value: "jdoe"}

	if err := ValidateScanRequest(req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(req.Providers) != 0 {
		t.Fatalf("expected empty providers, got %v", req.Providers)
	}
}
