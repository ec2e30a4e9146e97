package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"gigmap.app/gigmap/internal/catalog"
)

type fakeAggregator struct {
	venues []*catalog.CanonicalVenue
	err    error
	params catalog.Params
}

func (f *fakeAggregator) LoadAggregated(ctx context.Context, params catalog.Params) ([]*catalog.CanonicalVenue, error) {
	f.params = params
	return f.venues, f.err
}

func newTestServer(agg Aggregator) *Server {
	return NewServer(agg, zerolog.Nop(), Options{})
}

func doRequest(t *testing.T, s *Server, target string) (*httptest.ResponseRecorder, jsendResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.router().ServeHTTP(rec, req)

	var body jsendResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return rec, body
}

func TestHandleHealth(t *testing.T) {
	t.Parallel()

	s := newTestServer(&fakeAggregator{})
	rec, body := doRequest(t, s, "/api/v1/health")

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if body.Status != "success" {
		t.Fatalf("unexpected jsend status: %q", body.Status)
	}
}

func TestHandleVenuesSuccess(t *testing.T) {
	t.Parallel()

	agg := &fakeAggregator{
		venues: []*catalog.CanonicalVenue{
			{ID: "abc", Name: "Kesselhaus", Lat: 52.541, Lng: 13.412},
		},
	}
	s := newTestServer(agg)
	rec, body := doRequest(t, s, "/api/v1/venues?bbox=52.3,13.1,52.7,13.8&from=2026-09-12T00:00:00Z&to=2026-09-14")

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d (%s)", rec.Code, rec.Body.String())
	}
	if body.Status != "success" {
		t.Fatalf("unexpected jsend status: %q", body.Status)
	}

	if agg.params.BBox == nil || agg.params.BBox.MinLat != 52.3 || agg.params.BBox.MaxLng != 13.8 {
		t.Fatalf("bbox not forwarded to the aggregator: %+v", agg.params.BBox)
	}
	if agg.params.From == nil || !agg.params.From.Equal(time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("from not forwarded: %v", agg.params.From)
	}
	if agg.params.To == nil || agg.params.To.Before(time.Date(2026, 9, 14, 23, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected date-only to to extend to end of day: %v", agg.params.To)
	}
}

func TestHandleVenuesValidation(t *testing.T) {
	t.Parallel()

	s := newTestServer(&fakeAggregator{})

	for _, target := range []string{
		"/api/v1/venues?bbox=52.3,13.1,52.7",
		"/api/v1/venues?bbox=north,13.1,52.7,13.8",
		"/api/v1/venues?bbox=52.7,13.1,52.3,13.8",
		"/api/v1/venues?from=tonight",
		"/api/v1/venues?from=2026-09-14T00:00:00Z&to=2026-09-12T00:00:00Z",
	} {
		rec, body := doRequest(t, s, target)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %s, got %d", target, rec.Code)
		}
		if body.Status != "fail" {
			t.Fatalf("expected jsend fail for %s, got %q", target, body.Status)
		}
	}
}

func TestHandleVenuesAggregatorError(t *testing.T) {
	t.Parallel()

	s := newTestServer(&fakeAggregator{err: fmt.Errorf("context cancelled")})
	rec, body := doRequest(t, s, "/api/v1/venues")

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if body.Status != "error" {
		t.Fatalf("unexpected jsend status: %q", body.Status)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	s := newTestServer(&fakeAggregator{})
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if rec.Body.Len() == 0 {
		t.Fatalf("expected prometheus exposition output")
	}
}
