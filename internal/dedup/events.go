package dedup

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"gigmap.app/gigmap/internal/catalog"
	"gigmap.app/gigmap/internal/match"
	"gigmap.app/gigmap/internal/resolve"
	"gigmap.app/gigmap/internal/similarity"
)

// EventResult is the output of one event clustering pass. DroppedNoVenue
// counts events whose provider venue reference resolved to no canonical
// venue (for example when that provider's venue fetch failed); they are
// dropped silently but surfaced for observability.
type EventResult struct {
	Events         []*catalog.CanonicalEvent
	Merged         int
	DroppedNoVenue int
	Invalid        int
}

type EventClusterer struct {
	matcher  *match.Matcher
	resolver *resolve.Resolver
	logger   zerolog.Logger
}

func NewEventClusterer(matcher *match.Matcher, resolver *resolve.Resolver, logger zerolog.Logger) *EventClusterer {
	return &EventClusterer{
		matcher:  matcher,
		resolver: resolver,
		logger:   logger,
	}
}

// Cluster folds a flat multi-provider event list into canonical events,
// attaching each to its canonical venue via sourceToVenueID. Match
// candidates are only ever events already attached to the same venue.
func (c *EventClusterer) Cluster(raws []catalog.RawEvent, sourceToVenueID map[string]string) EventResult {
	var result EventResult
	result.Events = make([]*catalog.CanonicalEvent, 0, len(raws))
	byVenue := make(map[string][]*catalog.CanonicalEvent)

	for _, raw := range raws {
		if !raw.Valid() {
			result.Invalid++
			c.logger.Debug().
				Str("source", raw.Source).
				Str("external_id", raw.ExternalID).
				Msg("skipping invalid raw event")
			continue
		}

		venueID, ok := sourceToVenueID[raw.VenueKey()]
		if !ok {
			result.DroppedNoVenue++
			c.logger.Debug().
				Str("source", raw.Source).
				Str("external_id", raw.ExternalID).
				Str("venue_external_id", raw.VenueExternalID).
				Msg("dropping event with unresolvable venue reference")
			continue
		}

		probe := match.EventRef{Title: raw.Title, StartUTC: raw.StartUTC, Artists: raw.Artists}
		var target *catalog.CanonicalEvent
		for _, candidate := range byVenue[venueID] {
			if c.matcher.SameEvent(probe, match.EventRef{
				Title:    candidate.Title,
				StartUTC: candidate.StartUTC,
				Artists:  candidate.Artists,
			}) {
				target = candidate
				break
			}
		}

		if target == nil {
			event := newCanonicalEvent(raw, venueID)
			result.Events = append(result.Events, event)
			byVenue[venueID] = append(byVenue[venueID], event)
			continue
		}

		// Merge before recording provenance; see the venue clusterer.
		c.resolver.MergeEvent(target, raw)
		if !target.HasSource(raw.Source + ":" + raw.ExternalID) {
			target.Sources = append(target.Sources, catalog.EventSourceRef{
				Source:          raw.Source,
				ExternalID:      raw.ExternalID,
				VenueExternalID: raw.VenueExternalID,
			})
		}
		result.Merged++
	}

	return result
}

func newCanonicalEvent(raw catalog.RawEvent, venueID string) *catalog.CanonicalEvent {
	return &catalog.CanonicalEvent{
		ID:          EventID(venueID, raw.Title, raw.StartUTC),
		Title:       raw.Title,
		StartUTC:    raw.StartUTC,
		EndUTC:      raw.EndUTC,
		Status:      raw.Status,
		Artists:     dedupStrings(raw.Artists),
		Genres:      dedupStrings(raw.Genres),
		Description: raw.Description,
		URL:         raw.URL,
		ImageURL:    raw.ImageURL,
		Sources: []catalog.EventSourceRef{{
			Source:          raw.Source,
			ExternalID:      raw.ExternalID,
			VenueExternalID: raw.VenueExternalID,
		}},
		VenueID: venueID,
	}
}

// EventID derives the canonical event ID from the canonical venue, the
// normalized title and the start minute.
func EventID(venueID, title string, startUTC time.Time) string {
	seed := fmt.Sprintf("event|%s|%s|%s",
		venueID,
		similarity.NormalizeName(title),
		startUTC.UTC().Truncate(time.Minute).Format(time.RFC3339),
	)
	return similarity.ID(seed)
}

func dedupStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		key := similarity.Fold(value)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, value)
	}
	return out
}
