package reports

import "time"

type DaySummary struct {
	UserID       string    `json:"user_id"`
	Day          time.Time `json:"day"`
	TotalKm      float64   `json:"total_km"`
	TotalHours   float64   `json:"total_hours"`
	CheckinCount int       `json:"checkin_count"`
}

type SessionSummary struct {
	ID                string     `json:"id"`
	UserID            string     `json:"user_id"`
	CheckIn           time.Time  `json:"check_in"`
	CheckOut          *time.Time `json:"check_out"`
	TotalKm           float64    `json:"total_km"`
	CalculationMethod string     `json:"calculation_method"`
	RouteAccuracy     string     `json:"route_accuracy"`
}
