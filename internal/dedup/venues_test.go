package dedup

import (
	"testing"

	"github.com/rs/zerolog"

	"gigmap.app/gigmap/internal/catalog"
	"gigmap.app/gigmap/internal/match"
	"gigmap.app/gigmap/internal/resolve"
)

func newVenueClusterer() *VenueClusterer {
	matcher := match.New(match.DefaultConfig())
	resolver := resolve.New([]string{"partner", "overpass", "stagepass"})
	return NewVenueClusterer(matcher, resolver, zerolog.Nop())
}

func TestClusterMergesSameVenueAcrossSources(t *testing.T) {
	t.Parallel()

	c := newVenueClusterer()
	result := c.Cluster([]catalog.RawVenue{
		{Source: "overpass", ExternalID: "node/1", Name: "Kesselhaus", Lat: 52.54100, Lng: 13.41200, City: "Berlin"},
		{Source: "partner", ExternalID: "v-77", Name: "Kesselhaus Kulturbrauerei", Lat: 52.54110, Lng: 13.41210, City: "Berlin", Website: "https://kesselhaus.net"},
	})

	if len(result.Venues) != 1 {
		t.Fatalf("expected one canonical venue, got %d", len(result.Venues))
	}
	venue := result.Venues[0]
	if len(venue.Sources) != 2 {
		t.Fatalf("expected provenance from both sources, got %v", venue.Sources)
	}
	if venue.Name != "Kesselhaus Kulturbrauerei" {
		t.Fatalf("unexpected canonical name: %q", venue.Name)
	}
	if result.Merged != 1 {
		t.Fatalf("unexpected merge count: %d", result.Merged)
	}
	if result.SourceToVenueID["overpass:node/1"] != venue.ID || result.SourceToVenueID["partner:v-77"] != venue.ID {
		t.Fatalf("expected both source keys to map to the canonical id: %v", result.SourceToVenueID)
	}
}

func TestClusterKeepsDistinctVenuesApart(t *testing.T) {
	t.Parallel()

	c := newVenueClusterer()
	result := c.Cluster([]catalog.RawVenue{
		{Source: "overpass", ExternalID: "node/1", Name: "Loft", Lat: 52.52000, Lng: 13.40500, City: "Berlin"},
		{Source: "partner", ExternalID: "v-2", Name: "Loft", Lat: 52.52180, Lng: 13.40500, City: "Berlin"},
	})

	if len(result.Venues) != 2 {
		t.Fatalf("expected venues 200m apart to stay separate, got %d", len(result.Venues))
	}
	if result.Merged != 0 {
		t.Fatalf("unexpected merge count: %d", result.Merged)
	}
}

func TestClusterFiltersInvalidRecords(t *testing.T) {
	t.Parallel()

	c := newVenueClusterer()
	result := c.Cluster([]catalog.RawVenue{
		{Source: "partner", ExternalID: "v-1", Name: "", Lat: 52.5, Lng: 13.4},
		{Source: "partner", ExternalID: "v-2", Name: "Astra Kulturhaus", Lat: 120.0, Lng: 13.4},
		{Source: "partner", ExternalID: "v-3", Name: "Astra Kulturhaus", Lat: 52.5074, Lng: 13.4530},
	})

	if len(result.Venues) != 1 {
		t.Fatalf("expected only the valid record to survive, got %d", len(result.Venues))
	}
	if result.Invalid != 2 {
		t.Fatalf("unexpected invalid count: %d", result.Invalid)
	}
}

func TestClusterRepeatIsIdempotent(t *testing.T) {
	t.Parallel()

	c := newVenueClusterer()
	raws := []catalog.RawVenue{
		{Source: "partner", ExternalID: "v-77", Name: "Kesselhaus", Lat: 52.54100, Lng: 13.41200, City: "Berlin"},
		{Source: "partner", ExternalID: "v-77", Name: "Kesselhaus", Lat: 52.54100, Lng: 13.41200, City: "Berlin"},
	}
	result := c.Cluster(raws)

	if len(result.Venues) != 1 {
		t.Fatalf("expected duplicate records to collapse, got %d venues", len(result.Venues))
	}
	if len(result.Venues[0].Sources) != 1 {
		t.Fatalf("expected provenance to be recorded once per source key, got %v", result.Venues[0].Sources)
	}
}

func TestClusterSelfConcatenationCollapses(t *testing.T) {
	t.Parallel()

	c := newVenueClusterer()
	raws := []catalog.RawVenue{
		{Source: "partner", ExternalID: "v-1", Name: "Kesselhaus", Lat: 52.54100, Lng: 13.41200, City: "Berlin"},
		{Source: "overpass", ExternalID: "node/9", Name: "Gretchen", Lat: 52.49900, Lng: 13.38800, City: "Berlin"},
	}

	once := c.Cluster(raws)
	doubled := newVenueClusterer().Cluster(append(append([]catalog.RawVenue{}, raws...), raws...))

	if len(once.Venues) != len(doubled.Venues) {
		t.Fatalf("expected doubled input to collapse to the same venue set: %d != %d", len(once.Venues), len(doubled.Venues))
	}
	for i := range once.Venues {
		if once.Venues[i].ID != doubled.Venues[i].ID {
			t.Fatalf("expected identical canonical ids across runs: %q != %q", once.Venues[i].ID, doubled.Venues[i].ID)
		}
	}
}

func TestVenueIDDeterministic(t *testing.T) {
	t.Parallel()

	a := VenueID("Kesselhaus", 52.54100, 13.41200, "Berlin")
	b := VenueID("kesselhaus", 52.541001, 13.412004, "BERLIN")
	if a != b {
		t.Fatalf("expected normalization and rounding to stabilize the id: %q != %q", a, b)
	}

	c := VenueID("Kesselhaus", 52.55, 13.41200, "Berlin")
	if c == a {
		t.Fatalf("expected different coordinates to change the id")
	}
}

func TestClusterTrustedVenueSourceWinsArrivingSecond(t *testing.T) {
	t.Parallel()

	c := newVenueClusterer()
	result := c.Cluster([]catalog.RawVenue{
		{Source: "overpass", ExternalID: "node/1", Name: "Kesselhaus", Lat: 52.54100, Lng: 13.41200, City: "Berlin", Address: "Knaackstr. 97, Prenzlauer Berg"},
		{Source: "partner", ExternalID: "v-77", Name: "Kesselhaus", Lat: 52.54110, Lng: 13.41210, City: "Berlin", Address: "Knaackstraße 97"},
	})

	if len(result.Venues) != 1 {
		t.Fatalf("expected one canonical venue, got %d", len(result.Venues))
	}
	venue := result.Venues[0]
	if venue.Address != "Knaackstraße 97" {
		t.Fatalf("expected the higher-priority address to win even when it arrives second: %q", venue.Address)
	}
	if venue.Lat != 52.54110 || venue.Lng != 13.41210 {
		t.Fatalf("expected the higher-priority coordinates to win: %v %v", venue.Lat, venue.Lng)
	}
}
