package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"mmfc-attendance/internal/models"
)

// DB is the remote store adapter: every read and write the service issues
// against the backing tabular store goes through here.
type DB struct {
	Bun *bun.DB
}

func (d *DB) ready() error {
	if d == nil || d.Bun == nil {
		return ErrNotConfigured
	}
	return nil
}

// ---------------- CHECK-INS ----------------

// InsertCheckIn appends one attendance row. Duplicate names on the same day
// are allowed here; deduplication happens at read time.
func (d *DB) InsertCheckIn(ctx context.Context, name string) error {
	if err := d.ready(); err != nil {
		return err
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return &ValidationError{Field: "name", Message: "must not be empty"}
	}

	record := models.CheckInRecord{
		ID:        uuid.NewString(),
		Name:      trimmed,
		CreatedAt: time.Now(),
	}
	if _, err := d.Bun.NewInsert().Model(&record).Exec(ctx); err != nil {
		return &StoreError{Op: "insert check-in", Err: err}
	}
	return nil
}

// SelectCheckIns returns raw rows with created_at in [start, end), ascending,
// optionally filtered to one name.
func (d *DB) SelectCheckIns(ctx context.Context, start, end time.Time, nameFilter string) ([]models.CheckInRecord, error) {
	if err := d.ready(); err != nil {
		return nil, err
	}

	var records []models.CheckInRecord
	q := d.Bun.NewSelect().
		Model(&records).
		Where("created_at >= ?", start).
		Where("created_at < ?", end).
		Order("created_at ASC")
	if nameFilter != "" {
		q = q.Where("name = ?", nameFilter)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, &StoreError{Op: "select check-ins", Err: err}
	}
	return records, nil
}

// DeleteCheckIn removes the row identified by name and exact timestamp.
// A missing row is surfaced as ErrNotFound, not swallowed.
func (d *DB) DeleteCheckIn(ctx context.Context, name string, createdAt time.Time) error {
	if err := d.ready(); err != nil {
		return err
	}

	res, err := d.Bun.NewDelete().
		Model((*models.CheckInRecord)(nil)).
		Where("name = ?", name).
		Where("created_at = ?", createdAt).
		Exec(ctx)
	if err != nil {
		return &StoreError{Op: "delete check-in", Err: err}
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ---------------- GATE ----------------

// GetGate reads the singleton gate flag. An absent row means closed.
func (d *DB) GetGate(ctx context.Context) (bool, error) {
	if err := d.ready(); err != nil {
		return false, err
	}

	var state models.GateState
	err := d.Bun.NewSelect().
		Model(&state).
		Where("id = ?", models.GateStateID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, &StoreError{Op: "get gate", Err: err}
	}
	return state.IsActive, nil
}

// SetGate upserts the gate flag on its fixed id, so at most one row exists.
func (d *DB) SetGate(ctx context.Context, open bool) error {
	if err := d.ready(); err != nil {
		return err
	}

	state := models.GateState{
		ID:        models.GateStateID,
		IsActive:  open,
		UpdatedAt: time.Now(),
	}
	_, err := d.Bun.NewInsert().
		Model(&state).
		On("CONFLICT (id) DO UPDATE").
		Set("is_active = EXCLUDED.is_active").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return &StoreError{Op: "set gate", Err: err}
	}
	return nil
}

// ---------------- FORMATION ----------------

// GetFormationAssignments returns assignment rows for a day. Quarter 0 means
// the whole day across quarters (used for the formation counts annotation).
func (d *DB) GetFormationAssignments(ctx context.Context, dayKey string, quarter int) ([]models.FormationAssignment, error) {
	if err := d.ready(); err != nil {
		return nil, err
	}
	if err := ValidateDayKey(dayKey); err != nil {
		return nil, err
	}

	var assignments []models.FormationAssignment
	q := d.Bun.NewSelect().
		Model(&assignments).
		Where("day_key = ?", dayKey)
	if quarter > 0 {
		q = q.Where("quarter = ?", quarter)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, &StoreError{Op: "get formation assignments", Err: err}
	}
	return assignments, nil
}

// UpsertFormationAssignment writes one slot occupation, keyed on
// (day_key, quarter, slot_id). An empty player deletes the row instead:
// null-player rows are never stored.
func (d *DB) UpsertFormationAssignment(ctx context.Context, slotID, player, dayKey string, quarter int) error {
	if err := d.ready(); err != nil {
		return err
	}
	if err := ValidateDayKey(dayKey); err != nil {
		return err
	}
	if err := ValidateQuarter(quarter); err != nil {
		return err
	}

	if strings.TrimSpace(player) == "" {
		_, err := d.Bun.NewDelete().
			Model((*models.FormationAssignment)(nil)).
			Where("day_key = ?", dayKey).
			Where("quarter = ?", quarter).
			Where("slot_id = ?", slotID).
			Exec(ctx)
		if err != nil {
			return &StoreError{Op: "clear formation assignment", Err: err}
		}
		return nil
	}

	assignment := models.FormationAssignment{
		DayKey:     dayKey,
		Quarter:    quarter,
		SlotID:     slotID,
		PlayerName: player,
		UpdatedAt:  time.Now(),
	}
	_, err := d.Bun.NewInsert().
		Model(&assignment).
		On("CONFLICT (day_key, quarter, slot_id) DO UPDATE").
		Set("player_name = EXCLUDED.player_name").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return &StoreError{Op: "upsert formation assignment", Err: err}
	}
	return nil
}

// DeleteFormationAssignments clears every slot of one (day, quarter). Other
// (day, quarter) combinations are untouched.
func (d *DB) DeleteFormationAssignments(ctx context.Context, dayKey string, quarter int) error {
	if err := d.ready(); err != nil {
		return err
	}
	if err := ValidateDayKey(dayKey); err != nil {
		return err
	}
	if err := ValidateQuarter(quarter); err != nil {
		return err
	}

	_, err := d.Bun.NewDelete().
		Model((*models.FormationAssignment)(nil)).
		Where("day_key = ?", dayKey).
		Where("quarter = ?", quarter).
		Exec(ctx)
	if err != nil {
		return &StoreError{Op: "reset formation assignments", Err: err}
	}
	return nil
}

// GetFormationType returns the stored topology name for a (day, quarter),
// or "" when none was ever saved.
func (d *DB) GetFormationType(ctx context.Context, dayKey string, quarter int) (string, error) {
	if err := d.ready(); err != nil {
		return "", err
	}
	if err := ValidateDayKey(dayKey); err != nil {
		return "", err
	}

	var ftype models.FormationType
	err := d.Bun.NewSelect().
		Model(&ftype).
		Where("day_key = ?", dayKey).
		Where("quarter = ?", quarter).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", &StoreError{Op: "get formation type", Err: err}
	}
	return ftype.Formation, nil
}

// UpsertFormationType stores the active topology for a (day, quarter).
func (d *DB) UpsertFormationType(ctx context.Context, dayKey string, quarter int, formation string) error {
	if err := d.ready(); err != nil {
		return err
	}
	if err := ValidateDayKey(dayKey); err != nil {
		return err
	}
	if err := ValidateQuarter(quarter); err != nil {
		return err
	}

	ftype := models.FormationType{
		DayKey:    dayKey,
		Quarter:   quarter,
		Formation: formation,
		UpdatedAt: time.Now(),
	}
	_, err := d.Bun.NewInsert().
		Model(&ftype).
		On("CONFLICT (day_key, quarter) DO UPDATE").
		Set("formation_type = EXCLUDED.formation_type").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return &StoreError{Op: "upsert formation type", Err: err}
	}
	return nil
}
