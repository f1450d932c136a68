package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Hari1275/sdp-sub002/internal/db"
	"github.com/Hari1275/sdp-sub002/internal/route"
	"github.com/Hari1275/sdp-sub002/internal/shared/geo"
	"github.com/Hari1275/sdp-sub002/internal/stream"
)

// DistanceEngine computes travelled distance for an ordered fix sequence.
type DistanceEngine interface {
	Compute(ctx context.Context, points []geo.Point) (route.Result, error)
}

// Service owns the session state machine: NONE -> OPEN -> CLOSED.
type Service struct {
	db     db.Querier
	engine DistanceEngine
	hub    *stream.Hub
	now    func() time.Time
}

func NewService(db db.Querier, engine DistanceEngine, hub *stream.Hub) *Service {
	return &Service{db: db, engine: engine, hub: hub, now: time.Now}
}

func elevated(role string) bool {
	return role == "manager" || role == "admin"
}

// CheckIn opens a session for the user. A forgotten checkout is auto-closed
// with checkOut = newCheckIn - 1s and reported as a warning, never rejected.
func (s *Service) CheckIn(ctx context.Context, userID string, point geo.Point, at time.Time) (CheckInResult, error) {
	if userID == "" {
		return CheckInResult{}, newError(CodeValidation, "user id required")
	}
	if !geo.Valid(point) {
		return CheckInResult{}, newError(CodeValidation, "coordinate out of range")
	}
	if at.IsZero() {
		at = s.now()
	}

	var warnings []string

	openIDs, err := s.openSessionIDs(ctx, userID)
	if err != nil {
		return CheckInResult{}, err
	}
	for _, openID := range openIDs {
		autoCheckOut := at.Add(-time.Second)
		_, err := s.db.Exec(ctx, `
			UPDATE gps_sessions
			SET check_out=$2, calculation_method='auto_close'
			WHERE id=$1 AND check_out IS NULL
		`, openID, autoCheckOut)
		if err != nil {
			return CheckInResult{}, err
		}
		warnings = append(warnings, fmt.Sprintf("open session %s auto-closed at %s", openID, autoCheckOut.Format(time.RFC3339)))
	}

	session := Session{
		ID:       uuid.NewString(),
		UserID:   userID,
		CheckIn:  at,
		StartLat: point.Lat,
		StartLng: point.Lng,
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO gps_sessions (id, user_id, check_in, start_lat, start_lng)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING check_in
	`, session.ID, session.UserID, session.CheckIn, session.StartLat, session.StartLng)
	if err := row.Scan(&session.CheckIn); err != nil {
		return CheckInResult{}, err
	}

	point.RecordedAt = at
	if _, err := s.insertLog(ctx, session.ID, point); err != nil {
		return CheckInResult{}, err
	}

	return CheckInResult{Session: session, Warnings: warnings}, nil
}

// IngestLog appends a fix to an open session.
func (s *Service) IngestLog(ctx context.Context, sessionID string, point geo.Point) (GPSLog, error) {
	if sessionID == "" {
		return GPSLog{}, newError(CodeValidation, "session id required")
	}
	if !geo.Valid(point) {
		return GPSLog{}, newError(CodeValidation, "coordinate out of range")
	}

	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return GPSLog{}, err
	}
	if session.CheckOut != nil {
		return GPSLog{}, newError(CodeSessionNotOpen, "session is not open")
	}

	if point.RecordedAt.IsZero() {
		point.RecordedAt = s.now()
	}
	logEntry, err := s.insertLog(ctx, sessionID, point)
	if err != nil {
		return GPSLog{}, err
	}

	if s.hub != nil {
		payload, _ := json.Marshal(logEntry)
		s.hub.Broadcast(sessionID, payload)
	}
	return logEntry, nil
}

// CheckOut closes an open session: assembles start + logs + end, runs the
// distance engine, persists the outcome and bumps the per-user-per-day
// aggregate. A concurrent second check-out observes the check_out IS NULL
// guard and fails with already_closed instead of double-counting.
func (s *Service) CheckOut(ctx context.Context, sessionID, requesterID, role string, point geo.Point, at time.Time) (CloseResult, error) {
	if !geo.Valid(point) {
		return CloseResult{}, newError(CodeValidation, "coordinate out of range")
	}

	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return CloseResult{}, err
	}
	if session.CheckOut != nil {
		return CloseResult{}, newError(CodeAlreadyClosed, "session already closed")
	}
	if requesterID != session.UserID && !elevated(role) {
		return CloseResult{}, newError(CodePermission, "not session owner")
	}
	if at.IsZero() {
		at = s.now()
	}
	if !at.After(session.CheckIn) {
		return CloseResult{}, newError(CodeValidation, "check-out must be after check-in")
	}

	points, err := s.sessionPath(ctx, session)
	if err != nil {
		return CloseResult{}, err
	}
	point.RecordedAt = at
	points = append(points, point)

	result := s.computeDistance(ctx, points)
	warnings := append([]string(nil), result.Warnings...)
	warnings = append(warnings, s.overlapWarnings(ctx, session, at)...)

	session.CheckOut = &at
	session.EndLat = point.Lat
	session.EndLng = point.Lng
	session.TotalKm = result.DistanceKm
	session.CalculationMethod = result.Method
	session.RouteAccuracy = result.RouteAccuracy
	session.EncodedPolyline = result.Polyline.EncodedPolyline

	if err := s.persistClose(ctx, session); err != nil {
		return CloseResult{}, err
	}
	if err := s.bumpDaySummary(ctx, session.UserID, session.CheckIn, at, result.DistanceKm); err != nil {
		return CloseResult{}, err
	}

	return CloseResult{Session: session, Distance: result, Warnings: warnings}, nil
}

// ForceClose closes a session from its existing logs only, without an end
// coordinate. Permitted for the owner or an elevated role.
func (s *Service) ForceClose(ctx context.Context, sessionID, actorID, role string) (CloseResult, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return CloseResult{}, err
	}
	if session.CheckOut != nil {
		return CloseResult{}, newError(CodeAlreadyClosed, "session already closed")
	}
	if actorID != session.UserID && !elevated(role) {
		return CloseResult{}, newError(CodePermission, "not session owner")
	}

	points, err := s.sessionPath(ctx, session)
	if err != nil {
		return CloseResult{}, err
	}

	result := s.computeDistance(ctx, points)
	result.Method += "_force_close"

	at := s.now()
	session.CheckOut = &at
	if len(points) > 0 {
		last := points[len(points)-1]
		session.EndLat = last.Lat
		session.EndLng = last.Lng
	}
	session.TotalKm = result.DistanceKm
	session.CalculationMethod = result.Method
	session.RouteAccuracy = result.RouteAccuracy
	session.EncodedPolyline = result.Polyline.EncodedPolyline

	if err := s.persistClose(ctx, session); err != nil {
		return CloseResult{}, err
	}
	if err := s.bumpDaySummary(ctx, session.UserID, session.CheckIn, at, result.DistanceKm); err != nil {
		return CloseResult{}, err
	}

	return CloseResult{Session: session, Distance: result, Warnings: result.Warnings}, nil
}

// Recalculate re-derives totalKm from the persisted path. Identical inputs
// with a deterministic provider or cache hit reproduce the original figure.
func (s *Service) Recalculate(ctx context.Context, sessionID string) (CloseResult, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return CloseResult{}, err
	}

	points, err := s.sessionPath(ctx, session)
	if err != nil {
		return CloseResult{}, err
	}
	if session.CheckOut != nil && (session.EndLat != 0 || session.EndLng != 0) {
		points = append(points, geo.Point{Lat: session.EndLat, Lng: session.EndLng, RecordedAt: *session.CheckOut})
	}

	result := s.computeDistance(ctx, points)

	session.TotalKm = result.DistanceKm
	session.CalculationMethod = result.Method
	session.RouteAccuracy = result.RouteAccuracy
	session.EncodedPolyline = result.Polyline.EncodedPolyline

	_, err = s.db.Exec(ctx, `
		UPDATE gps_sessions
		SET total_km=$2, calculation_method=$3, route_accuracy=$4, encoded_polyline=$5
		WHERE id=$1
	`, session.ID, session.TotalKm, session.CalculationMethod, session.RouteAccuracy, session.EncodedPolyline)
	if err != nil {
		return CloseResult{}, err
	}

	return CloseResult{Session: session, Distance: result, Warnings: result.Warnings}, nil
}

// Get returns a session by id.
func (s *Service) Get(ctx context.Context, sessionID string) (Session, error) {
	return s.loadSession(ctx, sessionID)
}

// Logs returns a session's fixes in arrival order.
func (s *Service) Logs(ctx context.Context, sessionID string) ([]GPSLog, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, session_id, ST_Y(location::geometry), ST_X(location::geometry),
		       COALESCE(accuracy_m,0), COALESCE(speed_mps,0), COALESCE(altitude_m,0), recorded_at, created_at
		FROM gps_logs WHERE session_id=$1
		ORDER BY recorded_at
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []GPSLog
	for rows.Next() {
		var l GPSLog
		if err := rows.Scan(&l.ID, &l.SessionID, &l.Lat, &l.Lng, &l.AccuracyM, &l.SpeedMps, &l.AltitudeM, &l.RecordedAt, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, nil
}

// computeDistance never fails the close: an engine error degrades to the
// great-circle path length with a warning.
func (s *Service) computeDistance(ctx context.Context, points []geo.Point) route.Result {
	if s.engine != nil {
		result, err := s.engine.Compute(ctx, points)
		if err == nil {
			return result
		}
		fallback := greatCircleResult(points)
		fallback.Warnings = append(fallback.Warnings, fmt.Sprintf("distance engine failed, great-circle fallback used: %v", err))
		return fallback
	}
	return greatCircleResult(points)
}

func greatCircleResult(points []geo.Point) route.Result {
	if len(points) < 2 {
		return route.Result{Method: route.MethodInsufficientPoints, RouteAccuracy: route.AccuracyEstimate}
	}
	return route.Result{
		DistanceKm:    geo.RoundKm(geo.PathLengthKm(geo.Dedup(points, route.JitterToleranceM))),
		Method:        route.MethodAlgorithmic,
		RouteAccuracy: route.AccuracyEstimate,
	}
}

func (s *Service) loadSession(ctx context.Context, sessionID string) (Session, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, check_in, check_out, COALESCE(start_lat,0), COALESCE(start_lng,0),
		       COALESCE(end_lat,0), COALESCE(end_lng,0), COALESCE(total_km,0),
		       COALESCE(calculation_method,''), COALESCE(route_accuracy,''), COALESCE(encoded_polyline,'')
		FROM gps_sessions WHERE id=$1
	`, sessionID)

	var session Session
	err := row.Scan(&session.ID, &session.UserID, &session.CheckIn, &session.CheckOut,
		&session.StartLat, &session.StartLng, &session.EndLat, &session.EndLng,
		&session.TotalKm, &session.CalculationMethod, &session.RouteAccuracy, &session.EncodedPolyline)
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, newError(CodeNotFound, "session not found")
	}
	if err != nil {
		return Session{}, err
	}
	return session, nil
}

func (s *Service) openSessionIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id FROM gps_sessions WHERE user_id=$1 AND check_out IS NULL
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Service) insertLog(ctx context.Context, sessionID string, point geo.Point) (GPSLog, error) {
	logEntry := GPSLog{
		SessionID:  sessionID,
		Lat:        point.Lat,
		Lng:        point.Lng,
		AccuracyM:  point.AccuracyM,
		SpeedMps:   point.SpeedMps,
		AltitudeM:  point.AltitudeM,
		RecordedAt: point.RecordedAt,
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO gps_logs (session_id, location, accuracy_m, speed_mps, altitude_m, recorded_at)
		VALUES ($1, ST_SetSRID(ST_MakePoint($2,$3), 4326)::geography, $4, $5, $6, $7)
		RETURNING id, created_at
	`, sessionID, point.Lng, point.Lat, point.AccuracyM, point.SpeedMps, point.AltitudeM, point.RecordedAt)
	if err := row.Scan(&logEntry.ID, &logEntry.CreatedAt); err != nil {
		return GPSLog{}, err
	}
	return logEntry, nil
}

// sessionPath assembles the ordered coordinate list for a session: the start
// coordinate followed by every log in arrival order.
func (s *Service) sessionPath(ctx context.Context, session Session) ([]geo.Point, error) {
	logs, err := s.Logs(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	points := make([]geo.Point, 0, len(logs)+1)
	if session.StartLat != 0 || session.StartLng != 0 {
		points = append(points, geo.Point{Lat: session.StartLat, Lng: session.StartLng, RecordedAt: session.CheckIn})
	}
	for _, l := range logs {
		points = append(points, geo.Point{
			Lat: l.Lat, Lng: l.Lng,
			AccuracyM: l.AccuracyM, SpeedMps: l.SpeedMps, AltitudeM: l.AltitudeM,
			RecordedAt: l.RecordedAt,
		})
	}
	return points, nil
}

// overlapWarnings flags other sessions of the user whose windows overlap this
// one. Overlap is allowed; it is only surfaced for review.
func (s *Service) overlapWarnings(ctx context.Context, session Session, checkOut time.Time) []string {
	var count int
	_ = s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM gps_sessions
		WHERE user_id=$1 AND id<>$2 AND check_in < $4 AND COALESCE(check_out, $4) > $3
	`, session.UserID, session.ID, session.CheckIn, checkOut).Scan(&count)
	if count == 0 {
		return nil
	}
	return []string{fmt.Sprintf("%d overlapping session(s) found for this window", count)}
}

// persistClose writes the final session state, guarded so only one concurrent
// close can win.
func (s *Service) persistClose(ctx context.Context, session Session) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE gps_sessions
		SET check_out=$2, end_lat=$3, end_lng=$4, total_km=$5,
		    calculation_method=$6, route_accuracy=$7, encoded_polyline=$8
		WHERE id=$1 AND check_out IS NULL
	`, session.ID, session.CheckOut, session.EndLat, session.EndLng, session.TotalKm,
		session.CalculationMethod, session.RouteAccuracy, session.EncodedPolyline)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return newError(CodeAlreadyClosed, "session already closed")
	}
	return nil
}

func (s *Service) bumpDaySummary(ctx context.Context, userID string, checkIn, checkOut time.Time, totalKm float64) error {
	hours := checkOut.Sub(checkIn).Hours()
	day := time.Date(checkIn.Year(), checkIn.Month(), checkIn.Day(), 0, 0, 0, 0, checkIn.Location())
	_, err := s.db.Exec(ctx, `
		INSERT INTO day_summaries (user_id, day, total_km, total_hours, checkin_count)
		VALUES ($1,$2,$3,$4,1)
		ON CONFLICT (user_id, day) DO UPDATE
		SET total_km = day_summaries.total_km + EXCLUDED.total_km,
		    total_hours = day_summaries.total_hours + EXCLUDED.total_hours,
		    checkin_count = day_summaries.checkin_count + 1
	`, userID, day, totalKm, hours)
	return err
}
