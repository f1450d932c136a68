package session

import (
	"time"

	"github.com/Hari1275/sdp-sub002/internal/route"
)

// Session is one field visit window for a user. At most one session per user
// is open (CheckOut nil) at any time.
type Session struct {
	ID                string     `json:"id"`
	UserID            string     `json:"user_id"`
	CheckIn           time.Time  `json:"check_in"`
	CheckOut          *time.Time `json:"check_out,omitempty"`
	StartLat          float64    `json:"start_lat"`
	StartLng          float64    `json:"start_lng"`
	EndLat            float64    `json:"end_lat,omitempty"`
	EndLng            float64    `json:"end_lng,omitempty"`
	TotalKm           float64    `json:"total_km"`
	CalculationMethod string     `json:"calculation_method,omitempty"`
	RouteAccuracy     string     `json:"route_accuracy,omitempty"`
	EncodedPolyline   string     `json:"encoded_polyline,omitempty"`
}

// GPSLog is a single fix owned by exactly one session, persisted in arrival
// order, append-only.
type GPSLog struct {
	ID         int64     `json:"id"`
	SessionID  string    `json:"session_id"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	AccuracyM  float64   `json:"accuracy_m,omitempty"`
	SpeedMps   float64   `json:"speed_mps,omitempty"`
	AltitudeM  float64   `json:"altitude_m,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// CheckInResult carries the opened session plus any auto-close warnings.
type CheckInResult struct {
	Session  Session  `json:"session"`
	Warnings []string `json:"warnings"`
}

// CloseResult carries the finalized session and the distance computation that
// closed it. Warnings surface fallback and conflict notes even on success.
type CloseResult struct {
	Session  Session      `json:"session"`
	Distance route.Result `json:"distance"`
	Warnings []string     `json:"warnings"`
}
