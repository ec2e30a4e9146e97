// Package payloadschema validates partner-feed payloads against the embedded
// v1 JSON Schemas before any record enters the aggregation pipeline.
package payloadschema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed venue.schema.json
var venueSchemaJSON string

//go:embed event.schema.json
var eventSchemaJSON string

// VenuePayload is a partner venue record as it arrives on the wire.
type VenuePayload struct {
	PayloadVersion string  `json:"payload_version"`
	ExternalID     string  `json:"external_id"`
	Name           string  `json:"name"`
	Lat            float64 `json:"lat"`
	Lng            float64 `json:"lng"`
	Address        *string `json:"address,omitempty"`
	City           *string `json:"city,omitempty"`
	PostalCode     *string `json:"postal_code,omitempty"`
	Country        *string `json:"country,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	Website        *string `json:"website,omitempty"`
	Category       *string `json:"category,omitempty"`
	Description    *string `json:"description,omitempty"`
}

// EventPayload is a partner event record as it arrives on the wire.
type EventPayload struct {
	PayloadVersion  string   `json:"payload_version"`
	ExternalID      string   `json:"external_id"`
	VenueExternalID *string  `json:"venue_external_id,omitempty"`
	Title           string   `json:"title"`
	StartUTC        string   `json:"start_utc"`
	EndUTC          *string  `json:"end_utc,omitempty"`
	Status          *string  `json:"status,omitempty"`
	Artists         []string `json:"artists,omitempty"`
	Genres          []string `json:"genres,omitempty"`
	Description     *string  `json:"description,omitempty"`
	URL             *string  `json:"url,omitempty"`
	ImageURL        *string  `json:"image_url,omitempty"`
}

var (
	compileOnce        sync.Once
	compiledVenue      *jsonschema.Schema
	compiledEvent      *jsonschema.Schema
	compiledSchemasErr error
)

// ValidateVenuePayload checks a raw partner venue payload against the v1
// schema and decodes it.
func ValidateVenuePayload(payload json.RawMessage) (*VenuePayload, error) {
	value, err := decodeStrictJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("decode payload JSON: %w", err)
	}

	venueSchema, _, err := loadSchemas()
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	if err := venueSchema.Validate(value); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	normalized, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("normalize payload JSON: %w", err)
	}

	var item VenuePayload
	if err := json.Unmarshal(normalized, &item); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}

	if strings.TrimSpace(item.Name) == "" {
		return nil, fmt.Errorf("name must not be blank")
	}
	if item.Website != nil {
		if err := validateURI("website", *item.Website); err != nil {
			return nil, err
		}
	}
	return &item, nil
}

// ValidateEventPayload checks a raw partner event payload against the v1
// schema and decodes it.
func ValidateEventPayload(payload json.RawMessage) (*EventPayload, error) {
	value, err := decodeStrictJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("decode payload JSON: %w", err)
	}

	_, eventSchema, err := loadSchemas()
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	if err := eventSchema.Validate(value); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	normalized, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("normalize payload JSON: %w", err)
	}

	var item EventPayload
	if err := json.Unmarshal(normalized, &item); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}

	if strings.TrimSpace(item.Title) == "" {
		return nil, fmt.Errorf("title must not be blank")
	}
	if _, err := time.Parse(time.RFC3339, strings.TrimSpace(item.StartUTC)); err != nil {
		return nil, fmt.Errorf("start_utc must be RFC3339: %w", err)
	}
	if item.EndUTC != nil {
		if _, err := time.Parse(time.RFC3339, strings.TrimSpace(*item.EndUTC)); err != nil {
			return nil, fmt.Errorf("end_utc must be RFC3339: %w", err)
		}
	}
	if item.URL != nil {
		if err := validateURI("url", *item.URL); err != nil {
			return nil, err
		}
	}
	if item.ImageURL != nil {
		if err := validateURI("image_url", *item.ImageURL); err != nil {
			return nil, err
		}
	}
	for i, artist := range item.Artists {
		if strings.TrimSpace(artist) == "" {
			return nil, fmt.Errorf("artists[%d] must not be empty", i)
		}
	}
	return &item, nil
}

func loadSchemas() (*jsonschema.Schema, *jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		compiler.AssertFormat = true

		for name, body := range map[string]string{
			"venue.schema.json": venueSchemaJSON,
			"event.schema.json": eventSchemaJSON,
		} {
			if err := compiler.AddResource(name, strings.NewReader(body)); err != nil {
				compiledSchemasErr = fmt.Errorf("add schema resource %s: %w", name, err)
				return
			}
		}

		venue, err := compiler.Compile("venue.schema.json")
		if err != nil {
			compiledSchemasErr = fmt.Errorf("compile venue schema: %w", err)
			return
		}
		event, err := compiler.Compile("event.schema.json")
		if err != nil {
			compiledSchemasErr = fmt.Errorf("compile event schema: %w", err)
			return
		}
		compiledVenue = venue
		compiledEvent = event
	})

	if compiledSchemasErr != nil {
		return nil, nil, compiledSchemasErr
	}
	if compiledVenue == nil || compiledEvent == nil {
		return nil, nil, fmt.Errorf("schemas not initialized")
	}
	return compiledVenue, compiledEvent, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("payload is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("payload contains trailing content")
	}

	return value, nil
}

func validateURI(fieldName, value string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fmt.Errorf("%s must not be empty", fieldName)
	}
	if _, err := url.ParseRequestURI(trimmed); err != nil {
		return fmt.Errorf("%s is not a valid URI: %w", fieldName, err)
	}
	return nil
}
