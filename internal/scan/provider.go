package scan

import (
	"context"
	"fmt"
	"time"

	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/model"
)

// Provider is one OSINT source. Fetch returns the findings for the
// requested identifier or an error; a provider that cannot run at all
// returns a SkipError instead of failing the scan.
type Provider interface {
	ID() string
	Fetch(ctx context.Context, req model.ScanRequest) ([]model.Finding, error)
}

// SkipError signals the provider opted out before doing any work:
// missing credentials, plan restrictions, exhausted quota, or an operator
// kill switch. Skips are terminal and never retried.
type SkipError struct {
	Reason  model.Status
	Message string
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("provider skipped (%s): %s", e.Reason, e.Message)
}

// StaticProvider replays a fixed outcome. The simulator and tests use it
// to stand in for real provider integrations.
type StaticProvider struct {
	Name     string
	Findings []model.Finding
	Err      error
	Delay    time.Duration
}

func (p *StaticProvider) ID() string { return p.Name }

func (p *StaticProvider) Fetch(ctx context.Context, req model.ScanRequest) ([]model.Finding, error) {
	if p.Delay > 0 {
		select {
		case <-time.After(p.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if p.Err != nil {
		return nil, p.Err
	}

	out := make([]model.Finding, len(p.Findings))
	copy(out, p.Findings)
	return out, nil
}

// FuncProvider adapts a function into a Provider.
type FuncProvider struct {
	Name string
	Fn   func(ctx context.Context, req model.ScanRequest) ([]model.Finding, error)
}

func (p *FuncProvider) ID() string { return p.Name }

func (p *FuncProvider) Fetch(ctx context.Context, req model.ScanRequest) ([]model.Finding, error) {
	return p.Fn(ctx, req)
}
