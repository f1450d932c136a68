package geo

import (
	"math"
	"time"
)

const earthRadiusKm = 6371.0

// Point is an immutable GPS fix. Optional telemetry fields are zero when the
// device did not report them.
type Point struct {
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	AccuracyM  float64   `json:"accuracy_m,omitempty"`
	SpeedMps   float64   `json:"speed_mps,omitempty"`
	AltitudeM  float64   `json:"altitude_m,omitempty"`
	RecordedAt time.Time `json:"recorded_at,omitempty"`
}

// Valid reports whether p is a usable coordinate.
func Valid(p Point) bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// HaversineKm returns the great-circle distance between two points in km.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	if lat1 == lat2 && lng1 == lng2 {
		return 0
	}

	rlat1 := lat1 * math.Pi / 180
	rlat2 := lat2 * math.Pi / 180
	dlat := (lat2 - lat1) * math.Pi / 180
	dlng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Sin(dlng/2)*math.Sin(dlng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// DistanceKm is HaversineKm over Point values.
func DistanceKm(a, b Point) float64 {
	return HaversineKm(a.Lat, a.Lng, b.Lat, b.Lng)
}

// PathLengthKm returns the cumulative great-circle length of an ordered path.
func PathLengthKm(points []Point) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += DistanceKm(points[i-1], points[i])
	}
	return total
}

// Dedup collapses consecutive points whose positional delta is under
// toleranceM meters. A stationary device emits hundreds of near-duplicate
// fixes; collapsing them keeps real movement intact while removing jitter.
func Dedup(points []Point, toleranceM float64) []Point {
	if len(points) < 2 {
		return points
	}

	out := points[:1:1]
	for _, p := range points[1:] {
		if DistanceKm(out[len(out)-1], p)*1000 >= toleranceM {
			out = append(out, p)
		}
	}
	return out
}

// RoundKm rounds a km figure to the 3-decimal precision used everywhere a
// distance crosses the persistence boundary.
func RoundKm(v float64) float64 {
	return math.Round(v*1000) / 1000
}
