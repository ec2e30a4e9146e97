package payloadschema

import (
	"encoding/json"
	"testing"
)

func TestValidateVenuePayload(t *testing.T) {
	t.Parallel()

	valid := json.RawMessage(`{
		"payload_version": "v1",
		"external_id": "v-77",
		"name": "Kesselhaus",
		"lat": 52.541,
		"lng": 13.412,
		"city": "Berlin",
		"website": "https://kesselhaus.net"
	}`)
	payload, err := ValidateVenuePayload(valid)
	if err != nil {
		t.Fatalf("unexpected error for valid payload: %v", err)
	}
	if payload.ExternalID != "v-77" || payload.Name != "Kesselhaus" {
		t.Fatalf("unexpected decoded payload: %+v", payload)
	}
	if payload.City == nil || *payload.City != "Berlin" {
		t.Fatalf("unexpected city: %v", payload.City)
	}
}

func TestValidateVenuePayloadRejections(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"wrong version":    `{"payload_version":"v2","external_id":"v-1","name":"X","lat":52.5,"lng":13.4}`,
		"missing name":     `{"payload_version":"v1","external_id":"v-1","lat":52.5,"lng":13.4}`,
		"blank name":       `{"payload_version":"v1","external_id":"v-1","name":"   ","lat":52.5,"lng":13.4}`,
		"latitude range":   `{"payload_version":"v1","external_id":"v-1","name":"X","lat":120.0,"lng":13.4}`,
		"unknown property": `{"payload_version":"v1","external_id":"v-1","name":"X","lat":52.5,"lng":13.4,"rating":5}`,
		"trailing content": `{"payload_version":"v1","external_id":"v-1","name":"X","lat":52.5,"lng":13.4}{}`,
		"non-object":       `"just a string"`,
	}
	for name, raw := range cases {
		if _, err := ValidateVenuePayload(json.RawMessage(raw)); err == nil {
			t.Fatalf("expected rejection for %s", name)
		}
	}
}

func TestValidateEventPayload(t *testing.T) {
	t.Parallel()

	valid := json.RawMessage(`{
		"payload_version": "v1",
		"external_id": "e-1",
		"venue_external_id": "v-77",
		"title": "Moderat Live",
		"start_utc": "2026-09-12T19:30:00Z",
		"status": "scheduled",
		"artists": ["Moderat"],
		"url": "https://kesselhaus.net/moderat"
	}`)
	payload, err := ValidateEventPayload(valid)
	if err != nil {
		t.Fatalf("unexpected error for valid payload: %v", err)
	}
	if payload.Title != "Moderat Live" || payload.StartUTC != "2026-09-12T19:30:00Z" {
		t.Fatalf("unexpected decoded payload: %+v", payload)
	}
}

func TestValidateEventPayloadRejections(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"missing start": `{"payload_version":"v1","external_id":"e-1","title":"X"}`,
		"bad start":     `{"payload_version":"v1","external_id":"e-1","title":"X","start_utc":"tonight"}`,
		"bad status":    `{"payload_version":"v1","external_id":"e-1","title":"X","start_utc":"2026-09-12T19:30:00Z","status":"sold_out"}`,
		"empty artist":  `{"payload_version":"v1","external_id":"e-1","title":"X","start_utc":"2026-09-12T19:30:00Z","artists":[""]}`,
		"blank title":   `{"payload_version":"v1","external_id":"e-1","title":" ","start_utc":"2026-09-12T19:30:00Z"}`,
	}
	for name, raw := range cases {
		if _, err := ValidateEventPayload(json.RawMessage(raw)); err == nil {
			t.Fatalf("expected rejection for %s", name)
		}
	}
}
