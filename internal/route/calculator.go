package route

import (
	"context"
	"fmt"
	"time"

	"github.com/Hari1275/sdp-sub002/internal/shared/geo"
	"github.com/Hari1275/sdp-sub002/internal/shared/polyline"
)

const (
	defaultSegmentSize    = 50
	defaultWaypointLimit  = 23
	defaultInterCallDelay = 200 * time.Millisecond
	defaultCallTimeout    = 10 * time.Second
)

// Calculator turns an ordered GPS fix sequence into a travelled distance,
// choosing between great-circle math, the route cache and the network
// providers. Provider failures never abort a computation; each failed batch
// degrades to its great-circle distance.
type Calculator struct {
	pairs  PairProvider
	shaped ShapedProvider
	cache  *Cache

	segmentSize    int
	waypointLimit  int
	interCallDelay time.Duration
	callTimeout    time.Duration
	sleep          func(time.Duration)
}

// NewCalculator wires the calculator with its providers and cache. Either
// provider may be nil; affected batches then fall back to great-circle.
func NewCalculator(pairs PairProvider, shaped ShapedProvider, cache *Cache) *Calculator {
	return &Calculator{
		pairs:          pairs,
		shaped:         shaped,
		cache:          cache,
		segmentSize:    defaultSegmentSize,
		waypointLimit:  defaultWaypointLimit,
		interCallDelay: defaultInterCallDelay,
		callTimeout:    defaultCallTimeout,
		sleep:          time.Sleep,
	}
}

// Compute produces the travelled distance for an ordered coordinate list.
func (c *Calculator) Compute(ctx context.Context, points []geo.Point) (Result, error) {
	if len(points) < 2 {
		return Result{
			Method:        MethodInsufficientPoints,
			RouteAccuracy: AccuracyEstimate,
		}, nil
	}

	distinct := geo.Dedup(points, JitterToleranceM)
	analysis := Analyze(points)

	if analysis.SkipRouting {
		return Result{
			DistanceKm:    geo.RoundKm(analysis.MovementKm),
			Method:        MethodStaticLocation,
			RouteAccuracy: AccuracyEstimate,
		}, nil
	}

	if analysis.UseAlgorithmic {
		return Result{
			DistanceKm:    geo.RoundKm(analysis.MovementKm),
			Method:        MethodAlgorithmic,
			RouteAccuracy: AccuracyMedium,
			Polyline: polyline.Data{
				EncodedPolyline: polyline.Encode(distinct),
				Geometry:        distinct,
				Method:          MethodAlgorithmic,
				AccuracyClass:   AccuracyMedium,
			},
		}, nil
	}

	origin, dest := distinct[0], distinct[len(distinct)-1]
	key := Key(origin, dest, len(distinct))

	if c.cache != nil {
		if cached, ok := c.cache.Get(key); ok {
			return cached, nil
		}
		if cached, ok := c.cache.ReverseMatch(origin, dest); ok {
			return cached, nil
		}
	}

	var result Result
	switch analysis.Strategy {
	case StrategyDistancePairs:
		result = c.computePairs(ctx, distinct)
	default:
		result = c.computeShaped(ctx, distinct)
	}

	result.DistanceKm = geo.RoundKm(result.DistanceKm)

	if c.cache != nil {
		c.cache.Put(key, origin, dest, result)
	}
	return result, nil
}

// computeShaped routes waypoint-limited batches through the shaped-route
// provider, stitching the returned geometry together.
func (c *Calculator) computeShaped(ctx context.Context, points []geo.Point) Result {
	result := Result{Method: MethodDirections}

	var geometry []geo.Point
	fallbacks := 0

	batches := splitPath(points, c.waypointLimit+2)
	for i, batch := range batches {
		if i > 0 {
			c.sleep(c.interCallDelay)
		}
		result.SegmentsProcessed++

		shaped, err := c.callShaped(ctx, batch)
		if err != nil {
			fallbacks++
			result.DistanceKm += geo.PathLengthKm(batch)
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("segment %d/%d fell back to great-circle: %v", i+1, len(batches), err))
			geometry = append(geometry, batch...)
			continue
		}

		result.APICalls++
		result.DistanceKm += shaped.DistanceKm
		result.DurationMin += shaped.DurationMin
		if decoded, derr := polyline.Decode(shaped.EncodedPolyline); derr == nil && len(decoded) > 0 {
			geometry = append(geometry, decoded...)
		} else {
			geometry = append(geometry, batch...)
		}
	}

	result.RouteAccuracy = accuracyFor(fallbacks, len(batches))
	if fallbacks == len(batches) {
		result.Method += "_fallback"
	}
	result.Polyline = polyline.Data{
		EncodedPolyline: polyline.Encode(geometry),
		Geometry:        geometry,
		Method:          result.Method,
		AccuracyClass:   result.RouteAccuracy,
	}
	return result
}

// computePairs sums point-pair lookups between the endpoints of fixed-size
// segments. Geometry falls back to the raw fixes since this provider shape
// returns no path.
func (c *Calculator) computePairs(ctx context.Context, points []geo.Point) Result {
	result := Result{Method: MethodDistanceMatrix}

	fallbacks := 0
	batches := splitPath(points, c.segmentSize)
	for i, batch := range batches {
		if i > 0 {
			c.sleep(c.interCallDelay)
		}
		result.SegmentsProcessed++

		pair, err := c.callPair(ctx, batch[0], batch[len(batch)-1])
		if err != nil {
			fallbacks++
			result.DistanceKm += geo.PathLengthKm(batch)
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("segment %d/%d fell back to great-circle: %v", i+1, len(batches), err))
			continue
		}

		result.APICalls++
		result.DistanceKm += pair.DistanceKm
		result.DurationMin += pair.DurationMin
	}

	result.RouteAccuracy = accuracyFor(fallbacks, len(batches))
	if fallbacks == len(batches) {
		result.Method += "_fallback"
	}
	result.Polyline = polyline.Data{
		EncodedPolyline: polyline.Encode(points),
		Geometry:        points,
		Method:          result.Method,
		AccuracyClass:   result.RouteAccuracy,
	}
	return result
}

func (c *Calculator) callShaped(ctx context.Context, batch []geo.Point) (ShapedResult, error) {
	if c.shaped == nil {
		return ShapedResult{}, fmt.Errorf("shaped-route provider not configured")
	}
	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	waypoints := OptimizeWaypoints(batch, c.waypointLimit)
	return c.shaped.ShapedRoute(callCtx, batch[0], batch[len(batch)-1], waypoints)
}

func (c *Calculator) callPair(ctx context.Context, origin, dest geo.Point) (PairResult, error) {
	if c.pairs == nil {
		return PairResult{}, fmt.Errorf("point-pair provider not configured")
	}
	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	return c.pairs.DistancePair(callCtx, origin, dest)
}

// splitPath cuts a path into consecutive windows of at most size points, each
// window starting at the previous window's last point so no leg is lost.
func splitPath(points []geo.Point, size int) [][]geo.Point {
	if size < 2 {
		size = 2
	}
	if len(points) <= size {
		return [][]geo.Point{points}
	}

	var batches [][]geo.Point
	for start := 0; start < len(points)-1; start += size - 1 {
		end := start + size
		if end > len(points) {
			end = len(points)
		}
		batches = append(batches, points[start:end])
		if end == len(points) {
			break
		}
	}
	return batches
}

func accuracyFor(fallbacks, batches int) string {
	switch {
	case fallbacks == 0:
		return AccuracyHigh
	case fallbacks < batches:
		return AccuracyMedium
	default:
		return AccuracyEstimate
	}
}
