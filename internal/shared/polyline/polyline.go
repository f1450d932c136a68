package polyline

import (
	"errors"

	gopolyline "github.com/twpayne/go-polyline"

	"github.com/Hari1275/sdp-sub002/internal/shared/geo"
)

// Data is the derived route geometry persisted alongside a session.
type Data struct {
	EncodedPolyline string      `json:"encoded_polyline"`
	Geometry        []geo.Point `json:"geometry,omitempty"`
	Method          string      `json:"method"`
	AccuracyClass   string      `json:"accuracy_class"`
}

// Encode packs an ordered path into the Google encoded polyline format.
func Encode(points []geo.Point) string {
	if len(points) == 0 {
		return ""
	}
	coords := make([][]float64, len(points))
	for i, p := range points {
		coords[i] = []float64{p.Lat, p.Lng}
	}
	return string(gopolyline.EncodeCoords(coords))
}

// Decode unpacks an encoded polyline back into an ordered path.
func Decode(encoded string) ([]geo.Point, error) {
	if encoded == "" {
		return nil, nil
	}
	coords, rest, err := gopolyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, errors.New("trailing bytes after polyline")
	}
	points := make([]geo.Point, len(coords))
	for i, c := range coords {
		points[i] = geo.Point{Lat: c[0], Lng: c[1]}
	}
	return points, nil
}

// Reverse returns the geometry walked in the opposite direction. Used when a
// cached outbound route is reused for the return journey.
func Reverse(points []geo.Point) []geo.Point {
	out := make([]geo.Point, len(points))
	for i, p := range points {
		out[len(points)-1-i] = p
	}
	return out
}
