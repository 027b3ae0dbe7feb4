package attendance

import (
	"sort"
	"strings"

	"mmfc-attendance/internal/models"
)

// DedupeByDay collapses raw same-day rows to one record per distinct trimmed
// name, keeping the earliest created_at for each. Blank and whitespace-only
// names are dropped. The result is ordered ascending by created_at, so the
// list reads as arrival order. Running it on its own output is a no-op.
func DedupeByDay(records []models.CheckInRecord) []models.CheckInRecord {
	earliest := make(map[string]models.CheckInRecord)
	for _, record := range records {
		name := strings.TrimSpace(record.Name)
		if name == "" {
			continue
		}
		record.Name = name
		existing, ok := earliest[name]
		if !ok || record.CreatedAt.Before(existing.CreatedAt) {
			earliest[name] = record
		}
	}

	deduped := make([]models.CheckInRecord, 0, len(earliest))
	for _, record := range earliest {
		deduped = append(deduped, record)
	}
	sort.Slice(deduped, func(i, j int) bool {
		return deduped[i].CreatedAt.Before(deduped[j].CreatedAt)
	})
	return deduped
}

// AttendeeNames returns the distinct trimmed names of a day's records in
// arrival order. Feed it deduplicated records for a stable attendee set.
func AttendeeNames(records []models.CheckInRecord) []string {
	seen := make(map[string]bool)
	var names []string
	for _, record := range records {
		name := strings.TrimSpace(record.Name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}
