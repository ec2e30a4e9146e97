package provider

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gigmap.app/gigmap/internal/catalog"
)

const stagepassSource = "stagepass"

// Stagepass adapts a commercial ticketing API: paged venues and events with
// lineups, genres and lifecycle statuses.
type Stagepass struct {
	baseURL    string
	apiKey     string
	client     *http.Client
	maxRetries int
}

type stagepassVenuesResponse struct {
	Venues []stagepassVenue `json:"venues"`
}

type stagepassVenue struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Location   stagepassLocation `json:"location"`
	Address    string            `json:"address"`
	City       string            `json:"city"`
	PostalCode string            `json:"postalCode"`
	Country    string            `json:"country"`
	Phone      string            `json:"phone"`
	URL        string            `json:"url"`
	Category   string            `json:"category"`
	Info       string            `json:"info"`
}

type stagepassLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type stagepassEventsResponse struct {
	Events []stagepassEvent `json:"events"`
}

type stagepassEvent struct {
	ID       string   `json:"id"`
	VenueID  string   `json:"venueId"`
	Name     string   `json:"name"`
	StartsAt string   `json:"startsAt"`
	EndsAt   string   `json:"endsAt"`
	Status   string   `json:"status"`
	Lineup   []string `json:"lineup"`
	Genres   []string `json:"genres"`
	Info     string   `json:"info"`
	URL      string   `json:"url"`
	ImageURL string   `json:"imageUrl"`
}

func NewStagepass(baseURL, apiKey string, timeout time.Duration, maxRetries int) *Stagepass {
	return &Stagepass{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		client:     newHTTPClient(timeout),
		maxRetries: maxRetries,
	}
}

func (s *Stagepass) Name() string { return stagepassSource }

func (s *Stagepass) FetchVenues(ctx context.Context, params catalog.Params) ([]catalog.RawVenue, error) {
	q := url.Values{}
	if b := params.BBox; b != nil {
		q.Set("latMin", formatCoord(b.MinLat))
		q.Set("latMax", formatCoord(b.MaxLat))
		q.Set("lngMin", formatCoord(b.MinLng))
		q.Set("lngMax", formatCoord(b.MaxLng))
	}
	if s.apiKey != "" {
		q.Set("apikey", s.apiKey)
	}

	var resp stagepassVenuesResponse
	endpoint := s.baseURL + "/v2/venues?" + q.Encode()
	err := fetchJSON(ctx, s.client, s.maxRetries, func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, endpoint, nil)
	}, &resp)
	if err != nil {
		return nil, err
	}

	venues := make([]catalog.RawVenue, 0, len(resp.Venues))
	for _, v := range resp.Venues {
		venues = append(venues, catalog.RawVenue{
			Source:      stagepassSource,
			ExternalID:  v.ID,
			Name:        v.Name,
			Lat:         v.Location.Latitude,
			Lng:         v.Location.Longitude,
			Address:     v.Address,
			City:        v.City,
			PostalCode:  v.PostalCode,
			Country:     v.Country,
			Phone:       v.Phone,
			Website:     v.URL,
			Category:    v.Category,
			Description: v.Info,
		})
	}
	return venues, nil
}

func (s *Stagepass) FetchEvents(ctx context.Context, params catalog.Params) ([]catalog.RawEvent, error) {
	q := url.Values{}
	if params.From != nil {
		q.Set("startFrom", params.From.UTC().Format(time.RFC3339))
	}
	if params.To != nil {
		q.Set("startTo", params.To.UTC().Format(time.RFC3339))
	}
	if s.apiKey != "" {
		q.Set("apikey", s.apiKey)
	}

	var resp stagepassEventsResponse
	endpoint := s.baseURL + "/v2/events?" + q.Encode()
	err := fetchJSON(ctx, s.client, s.maxRetries, func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, endpoint, nil)
	}, &resp)
	if err != nil {
		return nil, err
	}

	events := make([]catalog.RawEvent, 0, len(resp.Events))
	for _, e := range resp.Events {
		start, err := time.Parse(time.RFC3339, strings.TrimSpace(e.StartsAt))
		if err != nil {
			continue
		}
		event := catalog.RawEvent{
			Source:          stagepassSource,
			ExternalID:      e.ID,
			VenueExternalID: e.VenueID,
			Title:           e.Name,
			StartUTC:        start.UTC(),
			Status:          stagepassStatus(e.Status),
			Artists:         e.Lineup,
			Genres:          e.Genres,
			Description:     e.Info,
			URL:             e.URL,
			ImageURL:        e.ImageURL,
		}
		if end, err := time.Parse(time.RFC3339, strings.TrimSpace(e.EndsAt)); err == nil {
			utc := end.UTC()
			event.EndUTC = &utc
		}
		events = append(events, event)
	}
	return events, nil
}

func stagepassStatus(raw string) catalog.EventStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "live":
		return catalog.StatusLive
	case "postponed", "rescheduled":
		return catalog.StatusPostponed
	case "cancelled", "canceled":
		return catalog.StatusCancelled
	default:
		return catalog.StatusScheduled
	}
}
