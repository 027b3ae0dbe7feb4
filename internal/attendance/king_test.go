package attendance_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"mmfc-attendance/internal/attendance"
	"mmfc-attendance/internal/models"
)

func TestRankByDistinctDaysCountsDaysNotRows(t *testing.T) {
	day1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	records := []models.CheckInRecord{
		record("A", day1.Add(9*time.Hour)),
		record("A", day1.Add(18*time.Hour)),
		record("B", day2.Add(10*time.Hour)),
	}

	ranking := attendance.RankByDistinctDays(records)

	assert.Len(t, ranking, 2)
	// A's two rows on the same day count once, so A ties B and wins by name.
	assert.Equal(t, models.KingResult{Name: "A", Count: 1}, ranking[0])
	assert.Equal(t, models.KingResult{Name: "B", Count: 1}, ranking[1])
}

func TestRankByDistinctDaysOrdersByCountThenName(t *testing.T) {
	var records []models.CheckInRecord
	for d := 1; d <= 3; d++ {
		records = append(records, record("영희", time.Date(2024, 3, d, 9, 0, 0, 0, time.UTC)))
	}
	records = append(records,
		record("민수", time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)),
		record("철수", time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC)),
	)

	ranking := attendance.RankByDistinctDays(records)

	assert.Equal(t, []models.KingResult{
		{Name: "영희", Count: 3},
		{Name: "민수", Count: 1},
		{Name: "철수", Count: 1},
	}, ranking)
}

func TestRankByDistinctDaysSkipsBlankNamesAndZeroTimes(t *testing.T) {
	records := []models.CheckInRecord{
		{Name: "  ", CreatedAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)},
		{Name: "A"},
	}

	assert.Empty(t, attendance.RankByDistinctDays(records))
}
