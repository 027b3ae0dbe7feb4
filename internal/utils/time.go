package utils

import (
	"strings"
	"time"
)

// DayKey converts a YYYY-MM-DD date to the 8-digit YYYYMMDD partition key
// used by the formation tables.
func DayKey(date string) string {
	return strings.ReplaceAll(date, "-", "")
}

// TodayDate returns the current local date as YYYY-MM-DD.
func TodayDate() string {
	return time.Now().Format("2006-01-02")
}
