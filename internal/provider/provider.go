// Package provider holds the thin per-source adapters. Each adapter is an
// HTTP call plus field mapping into the catalog's raw record shapes; all
// matching and merging happens downstream.
package provider

import (
	"context"

	"github.com/rs/zerolog"

	"gigmap.app/gigmap/internal/catalog"
	"gigmap.app/gigmap/internal/config"
)

// Provider is one external source of raw venue and event records. Adapters
// translate the bounding box and time range into the provider's native query
// parameters.
type Provider interface {
	Name() string
	FetchVenues(ctx context.Context, params catalog.Params) ([]catalog.RawVenue, error)
	FetchEvents(ctx context.Context, params catalog.Params) ([]catalog.RawEvent, error)
}

// FromConfig builds the enabled adapters. A provider is enabled when its
// base URL is configured.
func FromConfig(cfg *config.Config, logger zerolog.Logger) []Provider {
	var providers []Provider
	if cfg.PartnerBaseURL != "" {
		providers = append(providers, NewPartner(cfg.PartnerBaseURL, cfg.FetchTimeout, cfg.FetchMaxRetries, logger))
	}
	if cfg.OverpassBaseURL != "" {
		providers = append(providers, NewOverpass(cfg.OverpassBaseURL, cfg.FetchTimeout, cfg.FetchMaxRetries))
	}
	if cfg.StagepassBaseURL != "" {
		providers = append(providers, NewStagepass(cfg.StagepassBaseURL, cfg.StagepassAPIKey, cfg.FetchTimeout, cfg.FetchMaxRetries))
	}
	return providers
}
