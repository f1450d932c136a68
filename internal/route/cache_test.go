package route

import (
	"testing"
	"time"

	"github.com/Hari1275/sdp-sub002/internal/shared/geo"
	"github.com/Hari1275/sdp-sub002/internal/shared/polyline"
)

func TestCachePutGet(t *testing.T) {
	cache := NewCache(10)
	origin := geo.Point{Lat: 28.6307, Lng: 77.2177}
	dest := geo.Point{Lat: 28.6129, Lng: 77.2295}
	key := Key(origin, dest, 5)

	cache.Put(key, origin, dest, Result{DistanceKm: 3.2, Method: MethodDirections})

	got, ok := cache.Get(key)
	if !ok {
		t.Fatalf("expected cache hit")
	}
	if !got.CacheHit || got.Method != MethodCachedRoute || got.DistanceKm != 3.2 {
		t.Fatalf("unexpected cached result: %+v", got)
	}
	if got.APICalls != 0 {
		t.Fatalf("cache hit must report zero api calls")
	}
}

func TestCacheKeyAbsorbsJitter(t *testing.T) {
	origin := geo.Point{Lat: 28.63071, Lng: 77.21772}
	dest := geo.Point{Lat: 28.61293, Lng: 77.22948}
	// ~1 m wobble rounds to the same 4-decimal key.
	jittered := geo.Point{Lat: 28.630712, Lng: 77.217722}

	if Key(origin, dest, 5) != Key(jittered, dest, 5) {
		t.Fatalf("expected identical keys for jittered origin")
	}
	if Key(origin, dest, 5) == Key(origin, dest, 6) {
		t.Fatalf("point count must participate in the key")
	}
}

func TestCacheTTLEviction(t *testing.T) {
	cache := NewCache(10)
	now := time.Now()
	cache.now = func() time.Time { return now }

	origin := geo.Point{Lat: 28.6307, Lng: 77.2177}
	dest := geo.Point{Lat: 28.6129, Lng: 77.2295}
	key := Key(origin, dest, 5)
	cache.Put(key, origin, dest, Result{DistanceKm: 3.2})

	now = now.Add(23 * time.Hour)
	if _, ok := cache.Get(key); !ok {
		t.Fatalf("expected hit inside TTL")
	}

	now = now.Add(2 * time.Hour)
	if _, ok := cache.Get(key); ok {
		t.Fatalf("expected miss after 24h")
	}
	if _, ok := cache.ReverseMatch(dest, origin); ok {
		t.Fatalf("reverse match must honor TTL too")
	}
}

func TestCacheCapacityEviction(t *testing.T) {
	cache := NewCache(3)
	for i := 0; i < 5; i++ {
		origin := geo.Point{Lat: 28.0 + float64(i), Lng: 77.0}
		dest := geo.Point{Lat: 29.0 + float64(i), Lng: 77.0}
		cache.Put(Key(origin, dest, 2), origin, dest, Result{DistanceKm: float64(i)})
	}

	if cache.Len() != 3 {
		t.Fatalf("expected capacity 3, got %d", cache.Len())
	}

	// Oldest two inserts are gone, newest three remain.
	for i := 2; i < 5; i++ {
		origin := geo.Point{Lat: 28.0 + float64(i), Lng: 77.0}
		dest := geo.Point{Lat: 29.0 + float64(i), Lng: 77.0}
		if _, ok := cache.Get(Key(origin, dest, 2)); !ok {
			t.Fatalf("expected entry %d to survive eviction", i)
		}
	}
}

func TestCacheReverseMatch(t *testing.T) {
	cache := NewCache(10)
	origin := geo.Point{Lat: 28.6307, Lng: 77.2177}
	dest := geo.Point{Lat: 28.6129, Lng: 77.2295}
	geometry := []geo.Point{origin, {Lat: 28.6200, Lng: 77.2250}, dest}

	cache.Put(Key(origin, dest, 3), origin, dest, Result{
		DistanceKm: 3.1,
		Method:     MethodDirections,
		Polyline: polyline.Data{
			EncodedPolyline: polyline.Encode(geometry),
			Geometry:        geometry,
			Method:          MethodDirections,
			AccuracyClass:   AccuracyHigh,
		},
	})

	got, ok := cache.ReverseMatch(dest, origin)
	if !ok {
		t.Fatalf("expected reverse match")
	}
	if !got.CacheHit || got.DistanceKm != 3.1 {
		t.Fatalf("unexpected reverse result: %+v", got)
	}
	if len(got.Polyline.Geometry) != 3 || got.Polyline.Geometry[0] != dest || got.Polyline.Geometry[2] != origin {
		t.Fatalf("expected reversed geometry, got %+v", got.Polyline.Geometry)
	}
	if len(got.Warnings) == 0 {
		t.Fatalf("reverse reuse must carry a symmetry warning")
	}
}

func TestCacheReverseMatchTolerance(t *testing.T) {
	cache := NewCache(10)
	origin := geo.Point{Lat: 28.6307, Lng: 77.2177}
	dest := geo.Point{Lat: 28.6129, Lng: 77.2295}
	cache.Put(Key(origin, dest, 2), origin, dest, Result{DistanceKm: 3.1})

	// ~5 m off the cached endpoints still matches.
	if _, ok := cache.ReverseMatch(
		geo.Point{Lat: 28.61294, Lng: 77.22953},
		geo.Point{Lat: 28.63066, Lng: 77.21774},
	); !ok {
		t.Fatalf("expected reverse match inside tolerance")
	}

	// A few hundred meters away must not.
	if _, ok := cache.ReverseMatch(
		geo.Point{Lat: 28.6160, Lng: 77.2295},
		geo.Point{Lat: 28.6307, Lng: 77.2177},
	); ok {
		t.Fatalf("expected no reverse match outside tolerance")
	}
}
