package models

import (
	"time"

	"github.com/uptrace/bun"
)

// CheckInRecord is one attendance submission. Rows are append-only: repeat
// submissions on the same day are collapsed at read time, never merged in
// the store.
type CheckInRecord struct {
	bun.BaseModel `bun:"table:check_ins"`

	ID        string    `bun:"id,pk" json:"id"`
	Name      string    `bun:"name,notnull" json:"name"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
}

// CheckInRequest is the submission payload.
type CheckInRequest struct {
	Name string `json:"name"`
}

// DeleteCheckInRequest identifies a check-in by name and list date. The
// exact row timestamp is resolved server-side from the earliest same-day
// record.
type DeleteCheckInRequest struct {
	Name string `json:"name"`
	Date string `json:"date"` // YYYY-MM-DD
}

// KingResult is the attendance-king ranking top entry: the attendee with
// the most distinct days attended within a year.
type KingResult struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
