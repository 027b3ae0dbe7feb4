package store_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"

	"mmfc-attendance/internal/models"
	"mmfc-attendance/internal/store"
)

func setupTestDB(t *testing.T) (*store.DB, *bun.DB) {
	// Connect to an in-memory SQLite DB for testing
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	// Create required tables
	for _, model := range []interface{}{
		(*models.CheckInRecord)(nil),
		(*models.GateState)(nil),
		(*models.FormationAssignment)(nil),
		(*models.FormationType)(nil),
	} {
		if _, err := bunDB.NewCreateTable().Model(model).Exec(context.Background()); err != nil {
			t.Fatalf("Failed to create table: %v", err)
		}
	}

	return &store.DB{Bun: bunDB}, bunDB
}

func TestInsertAndSelectCheckIns(t *testing.T) {
	storeDB, bunDB := setupTestDB(t)
	defer bunDB.Close()
	ctx := context.Background()

	assert.NoError(t, storeDB.InsertCheckIn(ctx, "  민수  "))
	assert.NoError(t, storeDB.InsertCheckIn(ctx, "영희"))

	start := time.Now().Add(-time.Hour)
	end := time.Now().Add(time.Hour)

	records, err := storeDB.SelectCheckIns(ctx, start, end, "")
	assert.NoError(t, err)
	assert.Len(t, records, 2)
	// Trimmed on the way in.
	assert.Equal(t, "민수", records[0].Name)

	// Name filter narrows to one member's rows.
	records, err = storeDB.SelectCheckIns(ctx, start, end, "영희")
	assert.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, "영희", records[0].Name)

	// An interval before the rows is empty.
	records, err = storeDB.SelectCheckIns(ctx, start.Add(-2*time.Hour), start, "")
	assert.NoError(t, err)
	assert.Empty(t, records)
}

func TestSelectCheckInsOrdersAscending(t *testing.T) {
	storeDB, bunDB := setupTestDB(t)
	defer bunDB.Close()
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"C", "A", "B"} {
		row := models.CheckInRecord{
			ID:        name,
			Name:      name,
			CreatedAt: base.Add(time.Duration(3-i) * time.Hour),
		}
		_, err := bunDB.NewInsert().Model(&row).Exec(ctx)
		assert.NoError(t, err)
	}

	records, err := storeDB.SelectCheckIns(ctx, base, base.AddDate(0, 0, 1), "")
	assert.NoError(t, err)
	assert.Equal(t, "B", records[0].Name)
	assert.Equal(t, "A", records[1].Name)
	assert.Equal(t, "C", records[2].Name)
}

func TestDeleteCheckIn(t *testing.T) {
	storeDB, bunDB := setupTestDB(t)
	defer bunDB.Close()
	ctx := context.Background()

	assert.NoError(t, storeDB.InsertCheckIn(ctx, "민수"))

	records, err := storeDB.SelectCheckIns(ctx, time.Now().Add(-time.Hour), time.Now().Add(time.Hour), "민수")
	assert.NoError(t, err)
	assert.Len(t, records, 1)

	assert.NoError(t, storeDB.DeleteCheckIn(ctx, "민수", records[0].CreatedAt))

	// Deleting the same row again is not found.
	err = storeDB.DeleteCheckIn(ctx, "민수", records[0].CreatedAt)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestInsertCheckInRejectsBlankName(t *testing.T) {
	storeDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	err := storeDB.InsertCheckIn(context.Background(), "   ")

	var vErr *store.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestGateDefaultsClosedAndUpsertsSingleton(t *testing.T) {
	storeDB, bunDB := setupTestDB(t)
	defer bunDB.Close()
	ctx := context.Background()

	// No row yet means closed.
	open, err := storeDB.GetGate(ctx)
	assert.NoError(t, err)
	assert.False(t, open)

	assert.NoError(t, storeDB.SetGate(ctx, true))
	open, err = storeDB.GetGate(ctx)
	assert.NoError(t, err)
	assert.True(t, open)

	// A second write updates in place rather than adding a row.
	assert.NoError(t, storeDB.SetGate(ctx, false))
	open, err = storeDB.GetGate(ctx)
	assert.NoError(t, err)
	assert.False(t, open)

	count, err := bunDB.NewSelect().Model((*models.GateState)(nil)).Count(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestUpsertFormationAssignmentConflictUpdates(t *testing.T) {
	storeDB, bunDB := setupTestDB(t)
	defer bunDB.Close()
	ctx := context.Background()

	assert.NoError(t, storeDB.UpsertFormationAssignment(ctx, "slot-gk", "민수", "20240301", 1))
	assert.NoError(t, storeDB.UpsertFormationAssignment(ctx, "slot-gk", "영희", "20240301", 1))

	assignments, err := storeDB.GetFormationAssignments(ctx, "20240301", 1)
	assert.NoError(t, err)
	assert.Len(t, assignments, 1)
	assert.Equal(t, "영희", assignments[0].PlayerName)

	count, err := bunDB.NewSelect().Model((*models.FormationAssignment)(nil)).Count(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestUpsertFormationAssignmentEmptyPlayerDeletesRow(t *testing.T) {
	storeDB, bunDB := setupTestDB(t)
	defer bunDB.Close()
	ctx := context.Background()

	assert.NoError(t, storeDB.UpsertFormationAssignment(ctx, "slot-gk", "민수", "20240301", 1))
	assert.NoError(t, storeDB.UpsertFormationAssignment(ctx, "slot-gk", "  ", "20240301", 1))

	count, err := bunDB.NewSelect().Model((*models.FormationAssignment)(nil)).Count(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestGetFormationAssignmentsQuarterZeroSpansDay(t *testing.T) {
	storeDB, bunDB := setupTestDB(t)
	defer bunDB.Close()
	ctx := context.Background()

	assert.NoError(t, storeDB.UpsertFormationAssignment(ctx, "slot-gk", "민수", "20240301", 1))
	assert.NoError(t, storeDB.UpsertFormationAssignment(ctx, "slot-gk", "민수", "20240301", 2))
	assert.NoError(t, storeDB.UpsertFormationAssignment(ctx, "slot-gk", "영희", "20240302", 1))

	all, err := storeDB.GetFormationAssignments(ctx, "20240301", 0)
	assert.NoError(t, err)
	assert.Len(t, all, 2)

	q2, err := storeDB.GetFormationAssignments(ctx, "20240301", 2)
	assert.NoError(t, err)
	assert.Len(t, q2, 1)
}

func TestDeleteFormationAssignmentsScopedToQuarter(t *testing.T) {
	storeDB, bunDB := setupTestDB(t)
	defer bunDB.Close()
	ctx := context.Background()

	assert.NoError(t, storeDB.UpsertFormationAssignment(ctx, "slot-gk", "민수", "20240301", 1))
	assert.NoError(t, storeDB.UpsertFormationAssignment(ctx, "slot-st1", "영희", "20240301", 1))
	assert.NoError(t, storeDB.UpsertFormationAssignment(ctx, "slot-gk", "민수", "20240301", 2))
	assert.NoError(t, storeDB.UpsertFormationAssignment(ctx, "slot-gk", "철수", "20240302", 1))

	assert.NoError(t, storeDB.DeleteFormationAssignments(ctx, "20240301", 1))

	wiped, err := storeDB.GetFormationAssignments(ctx, "20240301", 1)
	assert.NoError(t, err)
	assert.Empty(t, wiped)

	// The other quarter and the other day are untouched.
	otherQuarter, err := storeDB.GetFormationAssignments(ctx, "20240301", 2)
	assert.NoError(t, err)
	assert.Len(t, otherQuarter, 1)

	otherDay, err := storeDB.GetFormationAssignments(ctx, "20240302", 1)
	assert.NoError(t, err)
	assert.Len(t, otherDay, 1)
}

func TestFormationTypeRoundTrip(t *testing.T) {
	storeDB, bunDB := setupTestDB(t)
	defer bunDB.Close()
	ctx := context.Background()

	// No row yet is an empty type, not an error.
	ftype, err := storeDB.GetFormationType(ctx, "20240301", 1)
	assert.NoError(t, err)
	assert.Empty(t, ftype)

	assert.NoError(t, storeDB.UpsertFormationType(ctx, "20240301", 1, "4231"))
	ftype, err = storeDB.GetFormationType(ctx, "20240301", 1)
	assert.NoError(t, err)
	assert.Equal(t, "4231", ftype)

	assert.NoError(t, storeDB.UpsertFormationType(ctx, "20240301", 1, "442"))
	ftype, err = storeDB.GetFormationType(ctx, "20240301", 1)
	assert.NoError(t, err)
	assert.Equal(t, "442", ftype)
}

func TestUnconfiguredDBReturnsErrNotConfigured(t *testing.T) {
	var storeDB *store.DB
	ctx := context.Background()

	err := storeDB.InsertCheckIn(ctx, "민수")
	assert.ErrorIs(t, err, store.ErrNotConfigured)

	_, err = (&store.DB{}).GetGate(ctx)
	assert.ErrorIs(t, err, store.ErrNotConfigured)
}

func TestValidateDayKeyAndQuarter(t *testing.T) {
	assert.NoError(t, store.ValidateDayKey("20240301"))
	assert.Error(t, store.ValidateDayKey("2024-03-01"))
	assert.Error(t, store.ValidateDayKey("202403"))

	assert.NoError(t, store.ValidateQuarter(1))
	assert.NoError(t, store.ValidateQuarter(6))
	assert.Error(t, store.ValidateQuarter(0))
	assert.Error(t, store.ValidateQuarter(7))
}
