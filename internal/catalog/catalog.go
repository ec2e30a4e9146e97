// Package catalog defines the record shapes flowing through an aggregation
// run: raw per-provider venue/event records on the way in, canonical merged
// entities on the way out.
package catalog

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// EventStatus is the lifecycle state a provider reports for an event.
type EventStatus string

const (
	StatusScheduled EventStatus = "scheduled"
	StatusCancelled EventStatus = "cancelled"
	StatusPostponed EventStatus = "postponed"
	StatusLive      EventStatus = "live"
)

// BBox is a rectangular geographic query region.
type BBox struct {
	MinLat float64 `json:"min_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLat float64 `json:"max_lat"`
	MaxLng float64 `json:"max_lng"`
}

func (b BBox) Validate() error {
	if b.MinLat < -90 || b.MaxLat > 90 || b.MinLng < -180 || b.MaxLng > 180 {
		return fmt.Errorf("bbox coordinates out of range")
	}
	if b.MinLat >= b.MaxLat || b.MinLng >= b.MaxLng {
		return fmt.Errorf("bbox min must be strictly below max")
	}
	return nil
}

// Params narrows an aggregation run to a region and a time range. Nil fields
// mean unbounded; adapters translate them into provider-native query params.
type Params struct {
	BBox *BBox
	From *time.Time
	To   *time.Time
}

// RawVenue is a venue exactly as reported by one provider, before merging.
type RawVenue struct {
	Source      string  `json:"source"`
	ExternalID  string  `json:"external_id"`
	Name        string  `json:"name"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Address     string  `json:"address,omitempty"`
	City        string  `json:"city,omitempty"`
	PostalCode  string  `json:"postal_code,omitempty"`
	Country     string  `json:"country,omitempty"`
	Phone       string  `json:"phone,omitempty"`
	Website     string  `json:"website,omitempty"`
	Category    string  `json:"category,omitempty"`
	Description string  `json:"description,omitempty"`
}

// SourceKey returns the provider-scoped identity of the record.
func (v RawVenue) SourceKey() string {
	return v.Source + ":" + v.ExternalID
}

// Valid reports whether the record is safe to feed into clustering. Records
// without a name or with broken geocoordinates would corrupt distance and
// name comparisons, so they are filtered before matching.
func (v RawVenue) Valid() bool {
	if strings.TrimSpace(v.Source) == "" || strings.TrimSpace(v.ExternalID) == "" {
		return false
	}
	if strings.TrimSpace(v.Name) == "" {
		return false
	}
	if math.IsNaN(v.Lat) || math.IsNaN(v.Lng) || math.IsInf(v.Lat, 0) || math.IsInf(v.Lng, 0) {
		return false
	}
	return v.Lat >= -90 && v.Lat <= 90 && v.Lng >= -180 && v.Lng <= 180
}

// RawEvent is an event exactly as reported by one provider. VenueExternalID
// references the provider's own venue identifier, not a canonical one.
type RawEvent struct {
	Source          string      `json:"source"`
	ExternalID      string      `json:"external_id"`
	VenueExternalID string      `json:"venue_external_id,omitempty"`
	Title           string      `json:"title"`
	StartUTC        time.Time   `json:"start_utc"`
	EndUTC          *time.Time  `json:"end_utc,omitempty"`
	Status          EventStatus `json:"status,omitempty"`
	Artists         []string    `json:"artists,omitempty"`
	Genres          []string    `json:"genres,omitempty"`
	Description     string      `json:"description,omitempty"`
	URL             string      `json:"url,omitempty"`
	ImageURL        string      `json:"image_url,omitempty"`
}

// VenueKey returns the provider-scoped identity of the referenced venue,
// matching the keys produced by venue deduplication.
func (e RawEvent) VenueKey() string {
	return e.Source + ":" + e.VenueExternalID
}

func (e RawEvent) Valid() bool {
	if strings.TrimSpace(e.Source) == "" || strings.TrimSpace(e.ExternalID) == "" {
		return false
	}
	if strings.TrimSpace(e.Title) == "" {
		return false
	}
	return !e.StartUTC.IsZero()
}

// VenueSourceRef records one provider contribution folded into a canonical
// venue. Refs are appended once per source:external_id, never removed.
type VenueSourceRef struct {
	Source     string `json:"source"`
	ExternalID string `json:"external_id"`
}

func (r VenueSourceRef) Key() string {
	return r.Source + ":" + r.ExternalID
}

// EventSourceRef records one provider contribution folded into a canonical
// event, keeping the provider's own venue reference for auditability.
type EventSourceRef struct {
	Source          string `json:"source"`
	ExternalID      string `json:"external_id"`
	VenueExternalID string `json:"venue_external_id,omitempty"`
}

func (r EventSourceRef) Key() string {
	return r.Source + ":" + r.ExternalID
}

// CanonicalVenue is the deduplicated representation of one real-world venue.
// ID is a deterministic function of normalized name, rounded coordinates and
// city, so identical input yields identical IDs across runs.
type CanonicalVenue struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Lat         float64           `json:"lat"`
	Lng         float64           `json:"lng"`
	Address     string            `json:"address,omitempty"`
	City        string            `json:"city,omitempty"`
	PostalCode  string            `json:"postal_code,omitempty"`
	Country     string            `json:"country,omitempty"`
	Phone       string            `json:"phone,omitempty"`
	Website     string            `json:"website,omitempty"`
	Description string            `json:"description,omitempty"`
	Sources     []VenueSourceRef  `json:"sources"`
	Events      []*CanonicalEvent `json:"events"`
}

// HasSource reports whether the given provider record was already folded in.
func (v *CanonicalVenue) HasSource(key string) bool {
	for _, ref := range v.Sources {
		if ref.Key() == key {
			return true
		}
	}
	return false
}

// CanonicalEvent is the deduplicated representation of one real-world event.
// An event belongs to exactly one canonical venue; its sources may span
// multiple providers once merged.
type CanonicalEvent struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	StartUTC    time.Time        `json:"start_utc"`
	EndUTC      *time.Time       `json:"end_utc,omitempty"`
	Status      EventStatus      `json:"status,omitempty"`
	Artists     []string         `json:"artists,omitempty"`
	Genres      []string         `json:"genres,omitempty"`
	Description string           `json:"description,omitempty"`
	URL         string           `json:"url,omitempty"`
	ImageURL    string           `json:"image_url,omitempty"`
	Sources     []EventSourceRef `json:"sources"`
	VenueID     string           `json:"venue_id"`
}

func (e *CanonicalEvent) HasSource(key string) bool {
	for _, ref := range e.Sources {
		if ref.Key() == key {
			return true
		}
	}
	return false
}
