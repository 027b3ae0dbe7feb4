package attendance

import (
	"errors"
	"sort"
	"strings"

	"mmfc-attendance/internal/models"
)

// ErrNoData signals that a year has no usable check-in rows at all.
var ErrNoData = errors.New("no attendance data")

// RankByDistinctDays ranks attendees by how many distinct calendar days they
// checked in, descending, ties broken by name ascending. Counting distinct
// days rather than rows means accidental repeat submissions never inflate a
// rank.
func RankByDistinctDays(records []models.CheckInRecord) []models.KingResult {
	days := make(map[string]map[string]bool)
	for _, record := range records {
		name := strings.TrimSpace(record.Name)
		if name == "" || record.CreatedAt.IsZero() {
			continue
		}
		dateKey := record.CreatedAt.UTC().Format("2006-01-02")
		if days[name] == nil {
			days[name] = make(map[string]bool)
		}
		days[name][dateKey] = true
	}

	ranking := make([]models.KingResult, 0, len(days))
	for name, attended := range days {
		ranking = append(ranking, models.KingResult{Name: name, Count: len(attended)})
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Count != ranking[j].Count {
			return ranking[i].Count > ranking[j].Count
		}
		return ranking[i].Name < ranking[j].Name
	})
	return ranking
}
