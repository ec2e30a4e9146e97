package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"gigmap.app/gigmap/internal/catalog"
)

func TestPartnerFetchVenues(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/venues" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("min_lat"); got != "52.3" {
			t.Errorf("unexpected min_lat: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
			{"payload_version":"v1","external_id":"v-77","name":"Kesselhaus","lat":52.541,"lng":13.412,"city":"Berlin","website":"https://kesselhaus.net"},
			{"payload_version":"v1","external_id":"v-bad","name":"","lat":52.5,"lng":13.4},
			{"payload_version":"v2","external_id":"v-old","name":"Old Format","lat":52.5,"lng":13.4}
		]}`))
	}))
	defer srv.Close()

	p := NewPartner(srv.URL, time.Second, 0, zerolog.Nop())
	venues, err := p.FetchVenues(context.Background(), catalog.Params{
		BBox: &catalog.BBox{MinLat: 52.3, MinLng: 13.1, MaxLat: 52.7, MaxLng: 13.8},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Invalid items are skipped, not fatal.
	if len(venues) != 1 {
		t.Fatalf("expected one valid venue, got %d", len(venues))
	}
	v := venues[0]
	if v.Source != "partner" || v.ExternalID != "v-77" {
		t.Fatalf("unexpected identity: %s:%s", v.Source, v.ExternalID)
	}
	if v.Name != "Kesselhaus" || v.City != "Berlin" || v.Website != "https://kesselhaus.net" {
		t.Fatalf("unexpected mapped fields: %+v", v)
	}
}

func TestPartnerFetchEvents(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/events" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("from"); got != "2026-09-12T00:00:00Z" {
			t.Errorf("unexpected from: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
			{"payload_version":"v1","external_id":"e-1","venue_external_id":"v-77","title":"Moderat Live","start_utc":"2026-09-12T19:30:00Z","end_utc":"2026-09-12T23:30:00Z","status":"scheduled","artists":["Moderat"],"url":"https://kesselhaus.net/moderat"}
		]}`))
	}))
	defer srv.Close()

	from := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)
	p := NewPartner(srv.URL, time.Second, 0, zerolog.Nop())
	events, err := p.FetchEvents(context.Background(), catalog.Params{From: &from})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	e := events[0]
	if e.VenueExternalID != "v-77" || e.Title != "Moderat Live" {
		t.Fatalf("unexpected mapped fields: %+v", e)
	}
	if !e.StartUTC.Equal(time.Date(2026, 9, 12, 19, 30, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start time: %v", e.StartUTC)
	}
	if e.EndUTC == nil || !e.EndUTC.Equal(time.Date(2026, 9, 12, 23, 30, 0, 0, time.UTC)) {
		t.Fatalf("unexpected end time: %v", e.EndUTC)
	}
	if e.Status != catalog.StatusScheduled {
		t.Fatalf("unexpected status: %q", e.Status)
	}
}

func TestFetchJSONRetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	defer srv.Close()

	p := NewPartner(srv.URL, time.Second, 2, zerolog.Nop())
	if _, err := p.FetchVenues(context.Background(), catalog.Params{}); err != nil {
		t.Fatalf("expected retry to recover from a transient 503: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected exactly one retry, got %d calls", calls)
	}
}

func TestFetchJSONDoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	p := NewPartner(srv.URL, time.Second, 3, zerolog.Nop())
	if _, err := p.FetchVenues(context.Background(), catalog.Params{}); err == nil {
		t.Fatalf("expected a 403 to fail the fetch")
	}
	if calls != 1 {
		t.Fatalf("expected no retries on a client error, got %d calls", calls)
	}
}
