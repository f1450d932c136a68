package route

import (
	"context"

	"github.com/Hari1275/sdp-sub002/internal/shared/geo"
	"github.com/Hari1275/sdp-sub002/internal/shared/polyline"
)

// Calculation methods recorded against a session so reporting can tell a
// road-routed figure from a fallback estimate.
const (
	MethodInsufficientPoints = "insufficient_points"
	MethodStaticLocation     = "static_location"
	MethodAlgorithmic        = "algorithmic"
	MethodCachedRoute        = "cached_route"
	MethodDirections         = "google_directions"
	MethodDistanceMatrix     = "google_distance_matrix"
)

// Route accuracy classes, best to worst.
const (
	AccuracyHigh     = "high"
	AccuracyMedium   = "medium"
	AccuracyEstimate = "estimate"
)

// Network strategies a classified path can be routed with.
const (
	StrategyShapedRoute   = "shaped_route"
	StrategyDistancePairs = "distance_pairs"
)

// Analysis is the routing-decision output for one coordinate sequence.
type Analysis struct {
	MovementKm     float64  `json:"movement_km"`
	DisplacementKm float64  `json:"displacement_km"`
	SkipRouting    bool     `json:"skip_routing"`
	UseAlgorithmic bool     `json:"use_algorithmic"`
	Strategy       string   `json:"strategy,omitempty"`
	Reasons        []string `json:"reasons"`
}

// Result is the distance computation outcome for one session.
type Result struct {
	DistanceKm        float64       `json:"distance_km"`
	DurationMin       float64       `json:"duration_min"`
	Method            string        `json:"method"`
	RouteAccuracy     string        `json:"route_accuracy"`
	Polyline          polyline.Data `json:"polyline"`
	APICalls          int           `json:"api_calls"`
	SegmentsProcessed int           `json:"segments_processed"`
	CacheHit          bool          `json:"cache_hit"`
	Warnings          []string      `json:"warnings,omitempty"`
}

// PairResult is a point-pair distance/duration lookup outcome.
type PairResult struct {
	DistanceKm  float64
	DurationMin float64
}

// ShapedResult is a shaped-route lookup outcome.
type ShapedResult struct {
	DistanceKm      float64
	DurationMin     float64
	EncodedPolyline string
	LegDistancesKm  []float64
}

// PairProvider resolves road distance between two points.
type PairProvider interface {
	DistancePair(ctx context.Context, origin, dest geo.Point) (PairResult, error)
}

// ShapedProvider resolves a road route with intermediate waypoints.
type ShapedProvider interface {
	ShapedRoute(ctx context.Context, origin, dest geo.Point, waypoints []geo.Point) (ShapedResult, error)
}
