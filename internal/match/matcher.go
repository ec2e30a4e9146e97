// Package match decides whether two raw records describe the same real-world
// entity. Venue identity is geography plus name; event identity is start
// time plus title (or title plus artist overlap), and only ever within one
// canonical venue.
package match

import (
	"time"

	"gigmap.app/gigmap/internal/similarity"
)

const (
	// 75m tolerates provider geocoding noise for one physical building
	// while keeping nearby but distinct venues apart.
	DefaultVenueMaxDistanceMeters = 75.0
	// 0.88 tolerates branding variants ("Schlachthof" vs "Kulturzentrum
	// Schlachthof") while rejecting unrelated venues.
	DefaultVenueNameSimilarity   = 0.88
	DefaultEventStartWindow      = 10 * time.Minute
	DefaultEventTitleSimilarity  = 0.90
	DefaultEventArtistSimilarity = 0.85
)

type Config struct {
	VenueMaxDistanceMeters float64
	VenueNameSimilarity    float64
	EventStartWindow       time.Duration
	EventTitleSimilarity   float64
	EventArtistSimilarity  float64
}

func DefaultConfig() Config {
	return Config{
		VenueMaxDistanceMeters: DefaultVenueMaxDistanceMeters,
		VenueNameSimilarity:    DefaultVenueNameSimilarity,
		EventStartWindow:       DefaultEventStartWindow,
		EventTitleSimilarity:   DefaultEventTitleSimilarity,
		EventArtistSimilarity:  DefaultEventArtistSimilarity,
	}
}

// VenueRef is the projection of a venue record the matcher needs; both raw
// records and in-progress canonical venues reduce to it.
type VenueRef struct {
	Name string
	Lat  float64
	Lng  float64
	City string
}

// EventRef is the projection of an event record the matcher needs.
type EventRef struct {
	Title    string
	StartUTC time.Time
	Artists  []string
}

type Matcher struct {
	cfg Config
}

func New(cfg Config) *Matcher {
	defaults := DefaultConfig()
	if cfg.VenueMaxDistanceMeters <= 0 {
		cfg.VenueMaxDistanceMeters = defaults.VenueMaxDistanceMeters
	}
	if cfg.VenueNameSimilarity <= 0 {
		cfg.VenueNameSimilarity = defaults.VenueNameSimilarity
	}
	if cfg.EventStartWindow <= 0 {
		cfg.EventStartWindow = defaults.EventStartWindow
	}
	if cfg.EventTitleSimilarity <= 0 {
		cfg.EventTitleSimilarity = defaults.EventTitleSimilarity
	}
	if cfg.EventArtistSimilarity <= 0 {
		cfg.EventArtistSimilarity = defaults.EventArtistSimilarity
	}
	return &Matcher{cfg: cfg}
}

// SameVenue reports whether two venue records describe one physical venue.
// The distance cutoff is a hard gate; the name check runs on normalized
// names; the city check only applies when both sides carry a city.
func (m *Matcher) SameVenue(a, b VenueRef) bool {
	if similarity.DistanceMeters(a.Lat, a.Lng, b.Lat, b.Lng) > m.cfg.VenueMaxDistanceMeters {
		return false
	}
	if similarity.JaroWinkler(similarity.NormalizeName(a.Name), similarity.NormalizeName(b.Name)) < m.cfg.VenueNameSimilarity {
		return false
	}
	if a.City != "" && b.City != "" && similarity.NormalizeName(a.City) != similarity.NormalizeName(b.City) {
		return false
	}
	return true
}

// SameEvent reports whether two event records at the same canonical venue
// describe one real-world event. Callers must never compare events across
// venues; the same touring act at two stops is two distinct events.
func (m *Matcher) SameEvent(a, b EventRef) bool {
	delta := a.StartUTC.Sub(b.StartUTC)
	if delta < 0 {
		delta = -delta
	}
	if delta > m.cfg.EventStartWindow {
		return false
	}

	titleA := similarity.NormalizeName(a.Title)
	titleB := similarity.NormalizeName(b.Title)
	if similarity.JaroWinkler(titleA, titleB) >= m.cfg.EventTitleSimilarity {
		return true
	}
	return titleA == titleB && m.shareArtist(a.Artists, b.Artists)
}

func (m *Matcher) shareArtist(a, b []string) bool {
	for _, left := range a {
		nl := similarity.NormalizeName(left)
		if nl == "" {
			continue
		}
		for _, right := range b {
			nr := similarity.NormalizeName(right)
			if nr == "" {
				continue
			}
			if similarity.JaroWinkler(nl, nr) >= m.cfg.EventArtistSimilarity {
				return true
			}
		}
	}
	return false
}
