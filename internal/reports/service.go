package reports

import (
	"context"
	"time"

	"github.com/Hari1275/sdp-sub002/internal/db"
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

// DailySummaries returns the per-day travel aggregates for a user within
// [from, to]. Zero bounds widen the window to everything recorded.
func (s *Service) DailySummaries(ctx context.Context, userID string, from, to time.Time) ([]DaySummary, error) {
	if to.IsZero() {
		to = time.Now()
	}
	rows, err := s.db.Query(ctx, `
		SELECT user_id, day, total_km, total_hours, checkin_count
		FROM day_summaries
		WHERE user_id=$1 AND day >= $2 AND day <= $3
		ORDER BY day
	`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []DaySummary
	for rows.Next() {
		var d DaySummary
		if err := rows.Scan(&d.UserID, &d.Day, &d.TotalKm, &d.TotalHours, &d.CheckinCount); err != nil {
			return nil, err
		}
		summaries = append(summaries, d)
	}
	return summaries, nil
}

// Sessions lists a user's sessions whose check-in falls within [from, to],
// newest first.
func (s *Service) Sessions(ctx context.Context, userID string, from, to time.Time) ([]SessionSummary, error) {
	if to.IsZero() {
		to = time.Now()
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, check_in, check_out, COALESCE(total_km,0),
		       COALESCE(calculation_method,''), COALESCE(route_accuracy,'')
		FROM gps_sessions
		WHERE user_id=$1 AND check_in >= $2 AND check_in <= $3
		ORDER BY check_in DESC
	`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []SessionSummary
	for rows.Next() {
		var sess SessionSummary
		if err := rows.Scan(&sess.ID, &sess.UserID, &sess.CheckIn, &sess.CheckOut,
			&sess.TotalKm, &sess.CalculationMethod, &sess.RouteAccuracy); err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, nil
}

// TeamDaily aggregates every user's totals for one calendar day, highest
// distance first.
func (s *Service) TeamDaily(ctx context.Context, day time.Time) ([]DaySummary, error) {
	rows, err := s.db.Query(ctx, `
		SELECT user_id, day, total_km, total_hours, checkin_count
		FROM day_summaries
		WHERE day=$1
		ORDER BY total_km DESC
	`, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []DaySummary
	for rows.Next() {
		var d DaySummary
		if err := rows.Scan(&d.UserID, &d.Day, &d.TotalKm, &d.TotalHours, &d.CheckinCount); err != nil {
			return nil, err
		}
		summaries = append(summaries, d)
	}
	return summaries, nil
}
