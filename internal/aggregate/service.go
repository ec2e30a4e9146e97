// Package aggregate orchestrates one aggregation run: concurrent provider
// fan-out, venue and event deduplication, and assembly of the final
// venues-with-events catalog.
package aggregate

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"gigmap.app/gigmap/internal/catalog"
	"gigmap.app/gigmap/internal/dedup"
	"gigmap.app/gigmap/internal/match"
	"gigmap.app/gigmap/internal/metrics"
	"gigmap.app/gigmap/internal/provider"
	"gigmap.app/gigmap/internal/resolve"
)

type Service struct {
	providers []provider.Provider
	venues    *dedup.VenueClusterer
	events    *dedup.EventClusterer
	logger    zerolog.Logger
}

// fetchOutcome captures one provider's fan-out result. Venue and event
// failures are tracked separately: a provider whose event fetch failed still
// contributes its venues.
type fetchOutcome struct {
	provider  string
	venues    []catalog.RawVenue
	events    []catalog.RawEvent
	venuesErr error
	eventsErr error
	elapsed   time.Duration
}

func NewService(providers []provider.Provider, matcher *match.Matcher, resolver *resolve.Resolver, logger zerolog.Logger) *Service {
	return &Service{
		providers: providers,
		venues:    dedup.NewVenueClusterer(matcher, resolver, logger),
		events:    dedup.NewEventClusterer(matcher, resolver, logger),
		logger:    logger,
	}
}

// LoadAggregated runs the full pipeline: fetch from every provider, dedup,
// attach events to venues and drop venues with nothing happening. Provider
// failures degrade the result instead of failing it; the only returned
// errors are context cancellations.
func (s *Service) LoadAggregated(ctx context.Context, params catalog.Params) ([]*catalog.CanonicalVenue, error) {
	outcomes := s.fetchAll(ctx, params)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rawVenues []catalog.RawVenue
	var rawEvents []catalog.RawEvent
	for _, outcome := range outcomes {
		rawVenues = append(rawVenues, outcome.venues...)
		rawEvents = append(rawEvents, outcome.events...)
	}

	venueResult := s.venues.Cluster(rawVenues)
	eventResult := s.events.Cluster(rawEvents, venueResult.SourceToVenueID)

	metrics.Merges.WithLabelValues("venue").Add(float64(venueResult.Merged))
	metrics.Merges.WithLabelValues("event").Add(float64(eventResult.Merged))
	metrics.InvalidRecords.WithLabelValues("venue").Add(float64(venueResult.Invalid))
	metrics.InvalidRecords.WithLabelValues("event").Add(float64(eventResult.Invalid))
	metrics.EventsDroppedNoVenue.Add(float64(eventResult.DroppedNoVenue))

	byVenue := make(map[string][]*catalog.CanonicalEvent, len(venueResult.Venues))
	for _, event := range eventResult.Events {
		byVenue[event.VenueID] = append(byVenue[event.VenueID], event)
	}

	out := make([]*catalog.CanonicalVenue, 0, len(venueResult.Venues))
	for _, venue := range venueResult.Venues {
		events := byVenue[venue.ID]
		if len(events) == 0 {
			continue
		}
		sort.SliceStable(events, func(i, j int) bool {
			return events[i].StartUTC.Before(events[j].StartUTC)
		})
		venue.Events = events
		out = append(out, venue)
	}

	s.logger.Info().
		Int("providers", len(s.providers)).
		Int("raw_venues", len(rawVenues)).
		Int("raw_events", len(rawEvents)).
		Int("canonical_venues", len(venueResult.Venues)).
		Int("canonical_events", len(eventResult.Events)).
		Int("events_dropped_no_venue", eventResult.DroppedNoVenue).
		Int("invalid_records", venueResult.Invalid+eventResult.Invalid).
		Int("returned_venues", len(out)).
		Msg("aggregation run completed")

	return out, nil
}

// fetchAll fans out to every provider concurrently and settles all of them:
// each task's outcome, success or error, is collected and none aborts the
// others.
func (s *Service) fetchAll(ctx context.Context, params catalog.Params) []fetchOutcome {
	results := make(chan fetchOutcome, len(s.providers))
	var wg sync.WaitGroup
	for _, p := range s.providers {
		wg.Add(1)
		go func(p provider.Provider) {
			defer wg.Done()
			results <- s.fetchOne(ctx, p, params)
		}(p)
	}
	wg.Wait()
	close(results)

	outcomes := make([]fetchOutcome, 0, len(s.providers))
	for outcome := range results {
		s.observe(outcome)
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

func (s *Service) fetchOne(ctx context.Context, p provider.Provider, params catalog.Params) fetchOutcome {
	started := time.Now()
	outcome := fetchOutcome{provider: p.Name()}
	outcome.venues, outcome.venuesErr = p.FetchVenues(ctx, params)
	outcome.events, outcome.eventsErr = p.FetchEvents(ctx, params)
	outcome.elapsed = time.Since(started)
	return outcome
}

func (s *Service) observe(outcome fetchOutcome) {
	metrics.FetchDuration.WithLabelValues(outcome.provider).Observe(outcome.elapsed.Seconds())

	if outcome.venuesErr != nil {
		metrics.FetchFailures.WithLabelValues(outcome.provider, "venues").Inc()
		s.logger.Error().
			Err(outcome.venuesErr).
			Str("provider", outcome.provider).
			Msg("venue fetch failed; continuing without this provider's venues")
	} else {
		metrics.RawRecords.WithLabelValues(outcome.provider, "venues").Add(float64(len(outcome.venues)))
	}

	if outcome.eventsErr != nil {
		metrics.FetchFailures.WithLabelValues(outcome.provider, "events").Inc()
		s.logger.Error().
			Err(outcome.eventsErr).
			Str("provider", outcome.provider).
			Msg("event fetch failed; continuing without this provider's events")
	} else {
		metrics.RawRecords.WithLabelValues(outcome.provider, "events").Add(float64(len(outcome.events)))
	}

	if outcome.venuesErr == nil && outcome.eventsErr == nil {
		s.logger.Info().
			Str("provider", outcome.provider).
			Int("venues", len(outcome.venues)).
			Int("events", len(outcome.events)).
			Dur("elapsed", outcome.elapsed).
			Msg("provider fetch completed")
	}
}
