package catalog

import (
	"math"
	"testing"
	"time"
)

func TestBBoxValidate(t *testing.T) {
	t.Parallel()

	valid := BBox{MinLat: 52.3, MinLng: 13.1, MaxLat: 52.7, MaxLng: 13.8}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	inverted := BBox{MinLat: 52.7, MinLng: 13.1, MaxLat: 52.3, MaxLng: 13.8}
	if err := inverted.Validate(); err == nil {
		t.Fatalf("expected inverted bbox to be rejected")
	}

	outOfRange := BBox{MinLat: -92, MinLng: 13.1, MaxLat: 52.3, MaxLng: 13.8}
	if err := outOfRange.Validate(); err == nil {
		t.Fatalf("expected out-of-range bbox to be rejected")
	}
}

func TestRawVenueValid(t *testing.T) {
	t.Parallel()

	base := RawVenue{Source: "partner", ExternalID: "v-1", Name: "Kesselhaus", Lat: 52.5, Lng: 13.4}
	if !base.Valid() {
		t.Fatalf("expected base record to be valid")
	}

	blank := base
	blank.Name = "   "
	if blank.Valid() {
		t.Fatalf("expected blank name to be invalid")
	}

	nan := base
	nan.Lat = math.NaN()
	if nan.Valid() {
		t.Fatalf("expected NaN latitude to be invalid")
	}

	outOfRange := base
	outOfRange.Lng = 181
	if outOfRange.Valid() {
		t.Fatalf("expected out-of-range longitude to be invalid")
	}

	noSource := base
	noSource.Source = ""
	if noSource.Valid() {
		t.Fatalf("expected missing source to be invalid")
	}
}

func TestRawEventValid(t *testing.T) {
	t.Parallel()

	base := RawEvent{Source: "partner", ExternalID: "e-1", Title: "Moderat Live", StartUTC: time.Date(2026, 9, 12, 19, 30, 0, 0, time.UTC)}
	if !base.Valid() {
		t.Fatalf("expected base record to be valid")
	}

	noStart := base
	noStart.StartUTC = time.Time{}
	if noStart.Valid() {
		t.Fatalf("expected zero start time to be invalid")
	}

	noTitle := base
	noTitle.Title = ""
	if noTitle.Valid() {
		t.Fatalf("expected empty title to be invalid")
	}
}

func TestSourceKeys(t *testing.T) {
	t.Parallel()

	v := RawVenue{Source: "partner", ExternalID: "v-1"}
	if v.SourceKey() != "partner:v-1" {
		t.Fatalf("unexpected venue source key: %q", v.SourceKey())
	}

	e := RawEvent{Source: "partner", ExternalID: "e-1", VenueExternalID: "v-1"}
	if e.VenueKey() != "partner:v-1" {
		t.Fatalf("unexpected event venue key: %q", e.VenueKey())
	}

	venue := &CanonicalVenue{Sources: []VenueSourceRef{{Source: "partner", ExternalID: "v-1"}}}
	if !venue.HasSource("partner:v-1") {
		t.Fatalf("expected source to be recorded")
	}
	if venue.HasSource("overpass:v-1") {
		t.Fatalf("unexpected source match")
	}
}
