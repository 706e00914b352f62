package main

import (
	"context"

	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/helper"
	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/model"
	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/scan"
)

// registeredProviders wires one provider per allowed name. Until a real
// integration is configured each provider opts out with not_configured, so
// scans complete and the skip is visible in the audit trail instead of the
// scan failing.
func registeredProviders() []scan.Provider {
	providers := make([]scan.Provider, 0, len(helper.AllowedProviders))
	for _, name := range helper.AllowedProviders {
		name := name
		providers = append(providers, &scan.FuncProvider{
			Name: name,
			Fn: func(ctx context.Context, req model.ScanRequest) ([]model.Finding, error) {
				return nil, &scan.SkipError{
					Reason:  model.StatusNotConfigured,
					Message: name + " integration is not configured",
				}
			},
		})
	}
	return providers
}
