package similarity

import (
	"math"
	"testing"
)

func TestDistanceMetersZero(t *testing.T) {
	t.Parallel()

	if got := DistanceMeters(52.5200, 13.4050, 52.5200, 13.4050); got != 0 {
		t.Fatalf("identical coordinates must be 0 meters apart, got %v", got)
	}
}

func TestDistanceMetersSymmetric(t *testing.T) {
	t.Parallel()

	ab := DistanceMeters(52.5200, 13.4050, 48.1351, 11.5820)
	ba := DistanceMeters(48.1351, 11.5820, 52.5200, 13.4050)
	if math.Abs(ab-ba) > 1e-6 {
		t.Fatalf("distance not symmetric: %v != %v", ab, ba)
	}
}

func TestDistanceMetersKnownValues(t *testing.T) {
	t.Parallel()

	// One degree of latitude is roughly 111.2km.
	got := DistanceMeters(52.0, 13.0, 53.0, 13.0)
	if math.Abs(got-111195) > 200 {
		t.Fatalf("unexpected one-degree latitude distance: %v", got)
	}

	// Two points ~67m apart in central Berlin.
	got = DistanceMeters(52.52000, 13.40500, 52.52060, 13.40500)
	if got < 60 || got > 75 {
		t.Fatalf("unexpected short distance: %v", got)
	}
}
