package attendance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mmfc-attendance/internal/models"
	"mmfc-attendance/internal/store"
)

// ErrGateClosed rejects submissions while the admin has check-in closed.
var ErrGateClosed = errors.New("check-in is currently closed")

type StoreLayer interface {
	InsertCheckIn(ctx context.Context, name string) error
	SelectCheckIns(ctx context.Context, start, end time.Time, nameFilter string) ([]models.CheckInRecord, error)
	DeleteCheckIn(ctx context.Context, name string, createdAt time.Time) error
}

type GateChecker interface {
	IsOpen() bool
}

type EventPublisher interface {
	PublishCheckInCreated(name string) error
	PublishCheckInDeleted(name string) error
}

// Service owns the check-in lifecycle: gated submission, per-day
// deduplicated listing, admin deletion, and the yearly attendance king.
type Service struct {
	DB     StoreLayer
	Gate   GateChecker
	Events EventPublisher
}

func NewService(db StoreLayer, gate GateChecker, events EventPublisher) *Service {
	return &Service{DB: db, Gate: gate, Events: events}
}

// CheckIn records one submission for the trimmed name. The gate must be
// open; repeat submissions on the same day are accepted and collapsed at
// read time.
func (s *Service) CheckIn(ctx context.Context, name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return &store.ValidationError{Field: "name", Message: "must not be empty"}
	}
	if s.Gate != nil && !s.Gate.IsOpen() {
		return ErrGateClosed
	}

	if err := s.DB.InsertCheckIn(ctx, trimmed); err != nil {
		return fmt.Errorf("failed to save check-in: %w", err)
	}
	if s.Events != nil {
		// Event stream is best-effort; the row is already committed.
		_ = s.Events.PublishCheckInCreated(trimmed)
	}
	return nil
}

// ListByDate returns the deduplicated check-ins for one local calendar day.
// Date format is YYYY-MM-DD.
func (s *Service) ListByDate(ctx context.Context, date string) ([]models.CheckInRecord, error) {
	start, end, err := dayRange(date)
	if err != nil {
		return nil, err
	}
	records, err := s.DB.SelectCheckIns(ctx, start, end, "")
	if err != nil {
		return nil, err
	}
	return DedupeByDay(records), nil
}

// Delete removes a member's check-in for one day. The row is identified by
// the exact timestamp of the earliest same-day record; no such record is a
// not-found condition, not a silent success.
func (s *Service) Delete(ctx context.Context, name, date string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return &store.ValidationError{Field: "name", Message: "must not be empty"}
	}
	start, end, err := dayRange(date)
	if err != nil {
		return err
	}

	records, err := s.DB.SelectCheckIns(ctx, start, end, trimmed)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return store.ErrNotFound
	}

	// Rows come back ascending, so the first is the one the list shows.
	if err := s.DB.DeleteCheckIn(ctx, trimmed, records[0].CreatedAt); err != nil {
		return err
	}
	if s.Events != nil {
		_ = s.Events.PublishCheckInDeleted(trimmed)
	}
	return nil
}

// King returns the attendee with the most distinct days attended in a year,
// ties broken alphabetically. ErrNoData when the year holds nothing usable.
func (s *Service) King(ctx context.Context, year int) (*models.KingResult, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	records, err := s.DB.SelectCheckIns(ctx, start, end, "")
	if err != nil {
		return nil, err
	}
	ranking := RankByDistinctDays(records)
	if len(ranking) == 0 {
		return nil, ErrNoData
	}
	top := ranking[0]
	return &top, nil
}

// dayRange converts a YYYY-MM-DD date to the local-time half-open interval
// [startOfDay, startOfNextDay).
func dayRange(date string) (time.Time, time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, &store.ValidationError{Field: "date", Message: "must be YYYY-MM-DD"}
	}
	return day, day.AddDate(0, 0, 1), nil
}
