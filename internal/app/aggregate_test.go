package app

import (
	"testing"
	"time"
)

func TestParseParams(t *testing.T) {
	t.Parallel()

	params, fieldErrs := parseParams("52.3,13.1,52.7,13.8", "2026-09-12T00:00:00Z", "2026-09-14T00:00:00Z")
	if len(fieldErrs) != 0 {
		t.Fatalf("unexpected field errors: %v", fieldErrs)
	}
	if params.BBox == nil || params.BBox.MinLat != 52.3 || params.BBox.MaxLng != 13.8 {
		t.Fatalf("unexpected bbox: %+v", params.BBox)
	}
	if params.From == nil || !params.From.Equal(time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected from: %v", params.From)
	}
}

func TestParseParamsErrors(t *testing.T) {
	t.Parallel()

	if _, fieldErrs := parseParams("52.3,13.1,52.7", "", ""); fieldErrs["bbox"] == "" {
		t.Fatalf("expected bbox error, got %v", fieldErrs)
	}
	if _, fieldErrs := parseParams("", "tonight", ""); fieldErrs["from"] == "" {
		t.Fatalf("expected from error, got %v", fieldErrs)
	}
	if _, fieldErrs := parseParams("", "2026-09-14T00:00:00Z", "2026-09-12T00:00:00Z"); fieldErrs["to"] == "" {
		t.Fatalf("expected inverted range error, got %v", fieldErrs)
	}
}

func TestParseParamsEmpty(t *testing.T) {
	t.Parallel()

	params, fieldErrs := parseParams("", "", "")
	if len(fieldErrs) != 0 {
		t.Fatalf("unexpected field errors: %v", fieldErrs)
	}
	if params.BBox != nil || params.From != nil || params.To != nil {
		t.Fatalf("expected unbounded params, got %+v", params)
	}
}
