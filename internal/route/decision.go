package route

import (
	"fmt"

	"github.com/Hari1275/sdp-sub002/internal/shared/geo"
)

const (
	// JitterToleranceM absorbs stationary GPS noise when collapsing
	// near-duplicate fixes.
	JitterToleranceM = 15.0

	// staticThresholdKm is the cumulative movement under which a sequence is
	// treated as a static location.
	staticThresholdKm = 0.05

	// shortPathKm and nearStraightRatio bound the short, nearly straight trips
	// where great-circle math is accurate enough that a paid call adds cost
	// without benefit.
	shortPathKm       = 1.0
	nearStraightRatio = 0.9

	// straightRatio marks a path that is effectively a straight line at any
	// length.
	straightRatio = 0.98

	// maxShapedPoints is the largest distinct-point count still routed as one
	// waypoint-optimized shaped route; beyond it the sequence is segmented
	// into point-pair lookups.
	maxShapedPoints = 200
)

// Analyze classifies an ordered coordinate sequence and recommends a distance
// strategy. Jitter duplicates are collapsed first so a stationary rep emitting
// hundreds of near-identical fixes never triggers a paid call. Rules apply in
// order, first match wins.
func Analyze(points []geo.Point) Analysis {
	distinct := geo.Dedup(points, JitterToleranceM)

	analysis := Analysis{
		MovementKm: geo.PathLengthKm(distinct),
	}
	if len(distinct) >= 2 {
		analysis.DisplacementKm = geo.DistanceKm(distinct[0], distinct[len(distinct)-1])
	}

	if len(distinct) < 2 || analysis.MovementKm < staticThresholdKm {
		analysis.SkipRouting = true
		analysis.Reasons = append(analysis.Reasons,
			fmt.Sprintf("static location: %d distinct points, %.3f km movement", len(distinct), analysis.MovementKm))
		return analysis
	}

	ratio := analysis.DisplacementKm / analysis.MovementKm

	if ratio >= straightRatio {
		analysis.UseAlgorithmic = true
		analysis.Reasons = append(analysis.Reasons,
			fmt.Sprintf("near-straight path (ratio %.2f): great-circle distance is adequate", ratio))
		return analysis
	}

	if analysis.MovementKm < shortPathKm && ratio >= nearStraightRatio {
		analysis.UseAlgorithmic = true
		analysis.Reasons = append(analysis.Reasons,
			fmt.Sprintf("short path %.3f km with ratio %.2f: network call adds cost without benefit", analysis.MovementKm, ratio))
		return analysis
	}

	if len(distinct) <= maxShapedPoints {
		analysis.Strategy = StrategyShapedRoute
	} else {
		analysis.Strategy = StrategyDistancePairs
	}
	analysis.Reasons = append(analysis.Reasons,
		fmt.Sprintf("network routing (%s): %.3f km over %d distinct points, ratio %.2f",
			analysis.Strategy, analysis.MovementKm, len(distinct), ratio))
	return analysis
}
