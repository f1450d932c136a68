package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Hari1275/sdp-sub002/internal/route"
	"github.com/Hari1275/sdp-sub002/internal/shared/geo"
)

const defaultBaseURL = "https://maps.googleapis.com"

// Client calls the Google Maps web services in both provider shapes the
// distance engine consumes: Distance Matrix for point-pair lookups and
// Directions for shaped routes. Both endpoints are quota-limited and may
// return partial data, so responses are validated before use.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client for the given API key. baseURL is overridable for
// tests; empty means the production endpoint.
func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// DistancePair resolves road distance and duration between two points via the
// Distance Matrix API.
func (c *Client) DistancePair(ctx context.Context, origin, dest geo.Point) (route.PairResult, error) {
	query := url.Values{}
	query.Set("origins", formatPoint(origin))
	query.Set("destinations", formatPoint(dest))
	query.Set("mode", "driving")
	query.Set("key", c.apiKey)

	var response distanceMatrixResponse
	if err := c.getJSON(ctx, "/maps/api/distancematrix/json", query, &response); err != nil {
		return route.PairResult{}, err
	}

	if response.Status != "OK" {
		return route.PairResult{}, fmt.Errorf("distance matrix status %s: %s", response.Status, response.ErrorMessage)
	}
	if len(response.Rows) == 0 || len(response.Rows[0].Elements) == 0 {
		return route.PairResult{}, fmt.Errorf("distance matrix returned no elements")
	}

	element := response.Rows[0].Elements[0]
	if element.Status != "OK" {
		return route.PairResult{}, fmt.Errorf("distance matrix element status %s", element.Status)
	}

	return route.PairResult{
		DistanceKm:  float64(element.Distance.Value) / 1000,
		DurationMin: float64(element.Duration.Value) / 60,
	}, nil
}

// ShapedRoute resolves a road route through intermediate waypoints via the
// Directions API, returning encoded path geometry and per-leg distances.
func (c *Client) ShapedRoute(ctx context.Context, origin, dest geo.Point, waypoints []geo.Point) (route.ShapedResult, error) {
	query := url.Values{}
	query.Set("origin", formatPoint(origin))
	query.Set("destination", formatPoint(dest))
	query.Set("mode", "driving")
	query.Set("key", c.apiKey)
	if len(waypoints) > 0 {
		parts := make([]string, len(waypoints))
		for i, wp := range waypoints {
			parts[i] = "via:" + formatPoint(wp)
		}
		query.Set("waypoints", strings.Join(parts, "|"))
	}

	var response directionsResponse
	if err := c.getJSON(ctx, "/maps/api/directions/json", query, &response); err != nil {
		return route.ShapedResult{}, err
	}

	if response.Status != "OK" {
		return route.ShapedResult{}, fmt.Errorf("directions status %s: %s", response.Status, response.ErrorMessage)
	}
	if len(response.Routes) == 0 || len(response.Routes[0].Legs) == 0 {
		return route.ShapedResult{}, fmt.Errorf("directions returned no routes")
	}

	r := response.Routes[0]
	result := route.ShapedResult{
		EncodedPolyline: r.OverviewPolyline.Points,
		LegDistancesKm:  make([]float64, len(r.Legs)),
	}
	for i, leg := range r.Legs {
		legKm := float64(leg.Distance.Value) / 1000
		result.LegDistancesKm[i] = legKm
		result.DistanceKm += legKm
		result.DurationMin += float64(leg.Duration.Value) / 60
	}
	return result, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("rate limit exceeded")
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("api error %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func formatPoint(p geo.Point) string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lng)
}
