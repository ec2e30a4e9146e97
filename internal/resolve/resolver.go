// Package resolve decides which field values win when two records known to
// describe the same entity are merged. The provider trust ranking is
// injected at construction; it is deployment configuration, not code.
package resolve

import (
	"strings"

	"gigmap.app/gigmap/internal/catalog"
	"gigmap.app/gigmap/internal/similarity"
)

// Longer names are assumed more descriptive regardless of source priority,
// but only once the length gap is unambiguous.
const betterNameMarginRunes = 5

var statusRank = map[catalog.EventStatus]int{
	catalog.StatusLive:      4,
	catalog.StatusScheduled: 3,
	catalog.StatusPostponed: 2,
	catalog.StatusCancelled: 1,
}

type Resolver struct {
	rank map[string]int
	size int
}

// New builds a resolver from an ordered trust ranking, most trusted first.
// Sources absent from the ranking sort below every configured one.
func New(priority []string) *Resolver {
	rank := make(map[string]int, len(priority))
	for i, source := range priority {
		source = strings.TrimSpace(strings.ToLower(source))
		if source == "" {
			continue
		}
		if _, ok := rank[source]; !ok {
			rank[source] = i
		}
	}
	return &Resolver{rank: rank, size: len(rank)}
}

// Rank returns the trust rank of a source, lower is more trusted.
func (r *Resolver) Rank(source string) int {
	if i, ok := r.rank[strings.TrimSpace(strings.ToLower(source))]; ok {
		return i
	}
	return r.size
}

// Scalar returns the primary's value when non-empty, else the secondary's.
func (r *Resolver) Scalar(primary, secondary string) string {
	if strings.TrimSpace(primary) != "" {
		return primary
	}
	return secondary
}

// URL prefers an HTTPS URL over a non-HTTPS one regardless of priority,
// falling back to the scalar rule.
func (r *Resolver) URL(primary, secondary string) string {
	if isHTTPS(primary) {
		return primary
	}
	if isHTTPS(secondary) {
		return secondary
	}
	return r.Scalar(primary, secondary)
}

func isHTTPS(raw string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(raw)), "https://")
}

// BetterName prefers the secondary name when it exceeds the primary by more
// than five characters; otherwise the primary wins.
func (r *Resolver) BetterName(primary, secondary string) string {
	p := strings.TrimSpace(primary)
	s := strings.TrimSpace(secondary)
	if p == "" {
		return s
	}
	pLen, sLen := len([]rune(p)), len([]rune(s))
	if sLen > pLen+betterNameMarginRunes {
		return s
	}
	return p
}

// Union merges two string lists with case/diacritic-insensitive dedup,
// keeping the first spelling seen for each entry.
func (r *Resolver) Union(a, b []string) []string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, value := range list {
			key := similarity.Fold(value)
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, strings.TrimSpace(value))
		}
	}
	return out
}

// Status keeps whichever side reports the more advanced lifecycle state,
// independent of provider priority.
func (r *Resolver) Status(primary, secondary catalog.EventStatus) catalog.EventStatus {
	if statusRank[secondary] > statusRank[primary] {
		return secondary
	}
	if statusRank[primary] == 0 && secondary != "" {
		return secondary
	}
	return primary
}

// MergeVenue folds a raw venue into an existing canonical venue. The side
// from the more trusted source is primary for scalar conflicts; the name
// additionally goes through BetterName. Provenance is the caller's job.
func (r *Resolver) MergeVenue(dst *catalog.CanonicalVenue, src catalog.RawVenue) {
	if r.Rank(src.Source) < r.bestVenueRank(dst) {
		dst.Name = r.BetterName(src.Name, dst.Name)
		dst.Lat = src.Lat
		dst.Lng = src.Lng
		dst.Address = r.Scalar(src.Address, dst.Address)
		dst.City = r.Scalar(src.City, dst.City)
		dst.PostalCode = r.Scalar(src.PostalCode, dst.PostalCode)
		dst.Country = r.Scalar(src.Country, dst.Country)
		dst.Phone = r.Scalar(src.Phone, dst.Phone)
		dst.Website = r.URL(src.Website, dst.Website)
		dst.Description = r.Scalar(src.Description, dst.Description)
		return
	}
	dst.Name = r.BetterName(dst.Name, src.Name)
	dst.Address = r.Scalar(dst.Address, src.Address)
	dst.City = r.Scalar(dst.City, src.City)
	dst.PostalCode = r.Scalar(dst.PostalCode, src.PostalCode)
	dst.Country = r.Scalar(dst.Country, src.Country)
	dst.Phone = r.Scalar(dst.Phone, src.Phone)
	dst.Website = r.URL(dst.Website, src.Website)
	dst.Description = r.Scalar(dst.Description, src.Description)
}

// MergeEvent folds a raw event into an existing canonical event at the same
// canonical venue.
func (r *Resolver) MergeEvent(dst *catalog.CanonicalEvent, src catalog.RawEvent) {
	if r.Rank(src.Source) < r.bestEventRank(dst) {
		dst.Title = r.BetterName(src.Title, dst.Title)
		dst.StartUTC = src.StartUTC
		if src.EndUTC != nil {
			dst.EndUTC = src.EndUTC
		}
		dst.Description = r.Scalar(src.Description, dst.Description)
		dst.URL = r.URL(src.URL, dst.URL)
		dst.ImageURL = r.URL(src.ImageURL, dst.ImageURL)
	} else {
		dst.Title = r.BetterName(dst.Title, src.Title)
		if dst.EndUTC == nil {
			dst.EndUTC = src.EndUTC
		}
		dst.Description = r.Scalar(dst.Description, src.Description)
		dst.URL = r.URL(dst.URL, src.URL)
		dst.ImageURL = r.URL(dst.ImageURL, src.ImageURL)
	}
	dst.Status = r.Status(dst.Status, src.Status)
	dst.Artists = r.Union(dst.Artists, src.Artists)
	dst.Genres = r.Union(dst.Genres, src.Genres)
}

func (r *Resolver) bestVenueRank(v *catalog.CanonicalVenue) int {
	best := r.size
	for _, ref := range v.Sources {
		if rank := r.Rank(ref.Source); rank < best {
			best = rank
		}
	}
	return best
}

func (r *Resolver) bestEventRank(e *catalog.CanonicalEvent) int {
	best := r.size
	for _, ref := range e.Sources {
		if rank := r.Rank(ref.Source); rank < best {
			best = rank
		}
	}
	return best
}
