package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gigmap.app/gigmap/internal/catalog"
)

const overpassSource = "overpass"

// Overpass queries an OpenStreetMap Overpass endpoint for venue-like nodes.
// OSM carries no event data, so FetchEvents always returns nothing.
type Overpass struct {
	endpoint   string
	client     *http.Client
	maxRetries int
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    float64           `json:"lat"`
	Lon    float64           `json:"lon"`
	Center *overpassCenter   `json:"center,omitempty"`
	Tags   map[string]string `json:"tags"`
}

type overpassCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func NewOverpass(endpoint string, timeout time.Duration, maxRetries int) *Overpass {
	return &Overpass{
		endpoint:   endpoint,
		client:     newHTTPClient(timeout),
		maxRetries: maxRetries,
	}
}

func (o *Overpass) Name() string { return overpassSource }

func (o *Overpass) FetchVenues(ctx context.Context, params catalog.Params) ([]catalog.RawVenue, error) {
	// Overpass cannot answer an unbounded query at venue granularity.
	if params.BBox == nil {
		return nil, nil
	}

	query := overpassQuery(*params.BBox)
	var resp overpassResponse
	err := fetchJSON(ctx, o.client, o.maxRetries, func() (*http.Request, error) {
		form := url.Values{"data": []string{query}}
		req, err := http.NewRequest(http.MethodPost, o.endpoint, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	}, &resp)
	if err != nil {
		return nil, err
	}

	venues := make([]catalog.RawVenue, 0, len(resp.Elements))
	for _, el := range resp.Elements {
		name := strings.TrimSpace(el.Tags["name"])
		if name == "" {
			continue
		}
		lat, lng := el.Lat, el.Lon
		if el.Center != nil {
			lat, lng = el.Center.Lat, el.Center.Lon
		}
		venues = append(venues, catalog.RawVenue{
			Source:      overpassSource,
			ExternalID:  fmt.Sprintf("%s/%d", el.Type, el.ID),
			Name:        name,
			Lat:         lat,
			Lng:         lng,
			Address:     overpassAddress(el.Tags),
			City:        el.Tags["addr:city"],
			PostalCode:  el.Tags["addr:postcode"],
			Country:     el.Tags["addr:country"],
			Phone:       firstTag(el.Tags, "phone", "contact:phone"),
			Website:     firstTag(el.Tags, "website", "contact:website"),
			Category:    firstTag(el.Tags, "amenity", "leisure"),
			Description: el.Tags["description"],
		})
	}
	return venues, nil
}

func (o *Overpass) FetchEvents(ctx context.Context, params catalog.Params) ([]catalog.RawEvent, error) {
	return nil, nil
}

func overpassQuery(b catalog.BBox) string {
	bbox := fmt.Sprintf("%f,%f,%f,%f", b.MinLat, b.MinLng, b.MaxLat, b.MaxLng)
	return fmt.Sprintf(
		`[out:json][timeout:25];(node["amenity"~"^(bar|pub|nightclub|theatre|cinema|music_venue|events_venue|arts_centre)$"](%s);way["amenity"~"^(theatre|cinema|music_venue|events_venue|arts_centre)$"](%s););out center;`,
		bbox, bbox,
	)
}

func overpassAddress(tags map[string]string) string {
	street := strings.TrimSpace(tags["addr:street"])
	number := strings.TrimSpace(tags["addr:housenumber"])
	switch {
	case street == "":
		return ""
	case number == "":
		return street
	default:
		return street + " " + number
	}
}

func firstTag(tags map[string]string, keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(tags[key]); value != "" {
			return value
		}
	}
	return ""
}
