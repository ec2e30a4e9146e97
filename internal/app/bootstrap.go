package app

import (
	"github.com/rs/zerolog"

	"gigmap.app/gigmap/internal/aggregate"
	"gigmap.app/gigmap/internal/config"
	"gigmap.app/gigmap/internal/match"
	"gigmap.app/gigmap/internal/provider"
	"gigmap.app/gigmap/internal/resolve"
)

// newService assembles the aggregation service from configuration: enabled
// provider adapters, the matcher with configured thresholds and the
// priority-ordered conflict resolver.
func newService(cfg *config.Config, logger zerolog.Logger) *aggregate.Service {
	providers := provider.FromConfig(cfg, logger)
	matcher := match.New(match.Config{
		VenueMaxDistanceMeters: cfg.VenueMaxDistanceMeters,
		VenueNameSimilarity:    cfg.VenueNameSimilarity,
		EventStartWindow:       cfg.EventStartWindow,
		EventTitleSimilarity:   cfg.EventTitleSimilarity,
		EventArtistSimilarity:  cfg.EventArtistSimilarity,
	})
	resolver := resolve.New(cfg.ProviderPriorityList())
	return aggregate.NewService(providers, matcher, resolver, logger)
}
