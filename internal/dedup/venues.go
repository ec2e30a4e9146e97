// Package dedup clusters raw provider records into canonical entities.
//
// Clustering is incremental and first-match: each record is compared against
// the canonical entities built so far, in list order, and merged into the
// first sufficiently similar one. This is deliberately not best-match
// clustering, and transitive chains (A merges with B, B with C, where A and
// C alone would not match) can occur; the behavior is kept as-is. Both
// clusterers isolate the strategy so a union-find or greedy-best-match
// variant can be swapped in without touching callers.
package dedup

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"gigmap.app/gigmap/internal/catalog"
	"gigmap.app/gigmap/internal/match"
	"gigmap.app/gigmap/internal/resolve"
	"gigmap.app/gigmap/internal/similarity"
)

// VenueResult is the output of one venue clustering pass. SourceToVenueID
// maps every folded "source:externalId" to its canonical venue ID; the event
// clusterer depends on it to attach events.
type VenueResult struct {
	Venues          []*catalog.CanonicalVenue
	SourceToVenueID map[string]string
	Merged          int
	Invalid         int
}

type VenueClusterer struct {
	matcher  *match.Matcher
	resolver *resolve.Resolver
	logger   zerolog.Logger
}

func NewVenueClusterer(matcher *match.Matcher, resolver *resolve.Resolver, logger zerolog.Logger) *VenueClusterer {
	return &VenueClusterer{
		matcher:  matcher,
		resolver: resolver,
		logger:   logger,
	}
}

// Cluster folds a flat multi-provider venue list into canonical venues.
// Invalid records are filtered before matching; they would corrupt distance
// comparisons.
func (c *VenueClusterer) Cluster(raws []catalog.RawVenue) VenueResult {
	result := VenueResult{
		Venues:          make([]*catalog.CanonicalVenue, 0, len(raws)),
		SourceToVenueID: make(map[string]string, len(raws)),
	}

	for _, raw := range raws {
		if !raw.Valid() {
			result.Invalid++
			c.logger.Debug().
				Str("source", raw.Source).
				Str("external_id", raw.ExternalID).
				Msg("skipping invalid raw venue")
			continue
		}

		probe := match.VenueRef{Name: raw.Name, Lat: raw.Lat, Lng: raw.Lng, City: raw.City}
		var target *catalog.CanonicalVenue
		for _, candidate := range result.Venues {
			if c.matcher.SameVenue(probe, match.VenueRef{
				Name: candidate.Name,
				Lat:  candidate.Lat,
				Lng:  candidate.Lng,
				City: candidate.City,
			}) {
				target = candidate
				break
			}
		}

		if target == nil {
			venue := newCanonicalVenue(raw)
			result.Venues = append(result.Venues, venue)
			result.SourceToVenueID[raw.SourceKey()] = venue.ID
			continue
		}

		// Merge before recording provenance: the resolver ranks the incoming
		// source against the sources already folded in, so the incoming ref
		// must not be visible yet.
		c.resolver.MergeVenue(target, raw)
		if !target.HasSource(raw.SourceKey()) {
			target.Sources = append(target.Sources, catalog.VenueSourceRef{
				Source:     raw.Source,
				ExternalID: raw.ExternalID,
			})
		}
		result.SourceToVenueID[raw.SourceKey()] = target.ID
		result.Merged++
	}

	return result
}

func newCanonicalVenue(raw catalog.RawVenue) *catalog.CanonicalVenue {
	return &catalog.CanonicalVenue{
		ID:          VenueID(raw.Name, raw.Lat, raw.Lng, raw.City),
		Name:        raw.Name,
		Lat:         raw.Lat,
		Lng:         raw.Lng,
		Address:     raw.Address,
		City:        raw.City,
		PostalCode:  raw.PostalCode,
		Country:     raw.Country,
		Phone:       raw.Phone,
		Website:     raw.Website,
		Description: raw.Description,
		Sources: []catalog.VenueSourceRef{{
			Source:     raw.Source,
			ExternalID: raw.ExternalID,
		}},
	}
}

// VenueID derives the canonical venue ID from normalized name, coordinates
// rounded to four decimals (~11m) and normalized city. Recomputing over
// unchanged input yields the identical ID.
func VenueID(name string, lat, lng float64, city string) string {
	seed := fmt.Sprintf("venue|%s|%.4f|%.4f|%s",
		similarity.NormalizeName(name),
		roundCoord(lat),
		roundCoord(lng),
		similarity.NormalizeName(city),
	)
	return similarity.ID(seed)
}

func roundCoord(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
