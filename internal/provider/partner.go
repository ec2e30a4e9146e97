package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"gigmap.app/gigmap/internal/catalog"
	payloadschema "gigmap.app/gigmap/schema"
)

const partnerSource = "partner"

// Partner is the first-party venue-registration feed. Items are validated
// against the embedded v1 payload schemas; invalid items are skipped with a
// warning rather than failing the whole fetch.
type Partner struct {
	baseURL    string
	client     *http.Client
	maxRetries int
	logger     zerolog.Logger
}

type partnerListResponse struct {
	Items []json.RawMessage `json:"items"`
}

func NewPartner(baseURL string, timeout time.Duration, maxRetries int, logger zerolog.Logger) *Partner {
	return &Partner{
		baseURL:    strings.TrimRight(baseURL, "/"),
		client:     newHTTPClient(timeout),
		maxRetries: maxRetries,
		logger:     logger,
	}
}

func (p *Partner) Name() string { return partnerSource }

func (p *Partner) FetchVenues(ctx context.Context, params catalog.Params) ([]catalog.RawVenue, error) {
	var resp partnerListResponse
	endpoint := p.baseURL + "/v1/venues?" + partnerQuery(params)
	err := fetchJSON(ctx, p.client, p.maxRetries, func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, endpoint, nil)
	}, &resp)
	if err != nil {
		return nil, err
	}

	venues := make([]catalog.RawVenue, 0, len(resp.Items))
	for _, raw := range resp.Items {
		payload, err := payloadschema.ValidateVenuePayload(raw)
		if err != nil {
			p.logger.Warn().Err(err).Msg("skipping invalid partner venue payload")
			continue
		}
		venues = append(venues, catalog.RawVenue{
			Source:      partnerSource,
			ExternalID:  payload.ExternalID,
			Name:        payload.Name,
			Lat:         payload.Lat,
			Lng:         payload.Lng,
			Address:     deref(payload.Address),
			City:        deref(payload.City),
			PostalCode:  deref(payload.PostalCode),
			Country:     deref(payload.Country),
			Phone:       deref(payload.Phone),
			Website:     deref(payload.Website),
			Category:    deref(payload.Category),
			Description: deref(payload.Description),
		})
	}
	return venues, nil
}

func (p *Partner) FetchEvents(ctx context.Context, params catalog.Params) ([]catalog.RawEvent, error) {
	var resp partnerListResponse
	endpoint := p.baseURL + "/v1/events?" + partnerQuery(params)
	err := fetchJSON(ctx, p.client, p.maxRetries, func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, endpoint, nil)
	}, &resp)
	if err != nil {
		return nil, err
	}

	events := make([]catalog.RawEvent, 0, len(resp.Items))
	for _, raw := range resp.Items {
		payload, err := payloadschema.ValidateEventPayload(raw)
		if err != nil {
			p.logger.Warn().Err(err).Msg("skipping invalid partner event payload")
			continue
		}

		start, err := time.Parse(time.RFC3339, strings.TrimSpace(payload.StartUTC))
		if err != nil {
			p.logger.Warn().Err(err).Msg("skipping partner event with unparseable start")
			continue
		}

		event := catalog.RawEvent{
			Source:          partnerSource,
			ExternalID:      payload.ExternalID,
			VenueExternalID: deref(payload.VenueExternalID),
			Title:           payload.Title,
			StartUTC:        start.UTC(),
			Status:          catalog.EventStatus(deref(payload.Status)),
			Artists:         payload.Artists,
			Genres:          payload.Genres,
			Description:     deref(payload.Description),
			URL:             deref(payload.URL),
			ImageURL:        deref(payload.ImageURL),
		}
		if payload.EndUTC != nil {
			if end, err := time.Parse(time.RFC3339, strings.TrimSpace(*payload.EndUTC)); err == nil {
				utc := end.UTC()
				event.EndUTC = &utc
			}
		}
		events = append(events, event)
	}
	return events, nil
}

func partnerQuery(params catalog.Params) string {
	q := url.Values{}
	if b := params.BBox; b != nil {
		q.Set("min_lat", formatCoord(b.MinLat))
		q.Set("min_lng", formatCoord(b.MinLng))
		q.Set("max_lat", formatCoord(b.MaxLat))
		q.Set("max_lng", formatCoord(b.MaxLng))
	}
	if params.From != nil {
		q.Set("from", params.From.UTC().Format(time.RFC3339))
	}
	if params.To != nil {
		q.Set("to", params.To.UTC().Format(time.RFC3339))
	}
	return q.Encode()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
