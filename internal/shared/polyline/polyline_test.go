package polyline

import (
	"math"
	"testing"

	"github.com/Hari1275/sdp-sub002/internal/shared/geo"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	points := []geo.Point{
		{Lat: 28.6307, Lng: 77.2177},
		{Lat: 28.6129, Lng: 77.2295},
		{Lat: 28.6000, Lng: 77.2300},
	}

	encoded := Encode(points)
	if encoded == "" {
		t.Fatalf("expected non-empty polyline")
	}

	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded) != len(points) {
		t.Fatalf("expected %d points, got %d", len(points), len(decoded))
	}
	for i := range points {
		// Polyline encoding quantizes to 1e-5 degrees.
		if math.Abs(decoded[i].Lat-points[i].Lat) > 0.0001 || math.Abs(decoded[i].Lng-points[i].Lng) > 0.0001 {
			t.Fatalf("point %d drifted: %+v vs %+v", i, decoded[i], points[i])
		}
	}
}

func TestEncodeEmpty(t *testing.T) {
	if Encode(nil) != "" {
		t.Fatalf("expected empty string for no points")
	}
	points, err := Decode("")
	if err != nil || points != nil {
		t.Fatalf("expected nil result for empty polyline")
	}
}

func TestDecodeInvalid(t *testing.T) {
	if _, err := Decode("\x80"); err == nil {
		t.Fatalf("expected error for malformed polyline")
	}
}

func TestReverse(t *testing.T) {
	points := []geo.Point{
		{Lat: 1, Lng: 1},
		{Lat: 2, Lng: 2},
		{Lat: 3, Lng: 3},
	}
	rev := Reverse(points)
	if rev[0].Lat != 3 || rev[2].Lat != 1 {
		t.Fatalf("unexpected reversal: %+v", rev)
	}
	if points[0].Lat != 1 {
		t.Fatalf("input mutated")
	}
}
