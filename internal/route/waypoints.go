package route

import "github.com/Hari1275/sdp-sub002/internal/shared/geo"

// OptimizeWaypoints reduces the intermediate points of a path to at most
// limit waypoints. The first and last coordinate are origin/destination and
// are never part of the returned slice. When the intermediates already fit,
// all of them are kept; otherwise points are taken at a fixed stride so
// coverage spreads evenly over the whole path instead of front-loading.
// Deterministic for identical input.
func OptimizeWaypoints(points []geo.Point, limit int) []geo.Point {
	if len(points) <= 2 || limit <= 0 {
		return nil
	}

	intermediates := points[1 : len(points)-1]
	if len(intermediates) <= limit {
		out := make([]geo.Point, len(intermediates))
		copy(out, intermediates)
		return out
	}

	stride := (len(points) - 2) / limit
	if stride < 1 {
		stride = 1
	}

	out := make([]geo.Point, 0, limit)
	for i := stride - 1; i < len(intermediates) && len(out) < limit; i += stride {
		out = append(out, intermediates[i])
	}
	return out
}
