package models

import (
	"time"

	"github.com/uptrace/bun"
)

// FormationSlot is one fixed position on the pitch diagram. Slots come from
// the static topology templates, never from the store.
type FormationSlot struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Row    int    `json:"row"`
	Column int    `json:"column"`
}

// FormationAssignment maps a slot to a player for one (day, quarter).
// Absence of a row means the slot is empty; an assignment row never holds
// an empty player name (clearing deletes the row instead).
type FormationAssignment struct {
	bun.BaseModel `bun:"table:formation_assignments"`

	DayKey     string    `bun:"day_key,pk" json:"day_key"` // 8-digit YYYYMMDD
	Quarter    int       `bun:"quarter,pk" json:"quarter"` // 1..6
	SlotID     string    `bun:"slot_id,pk" json:"slot_id"`
	PlayerName string    `bun:"player_name,notnull" json:"player_name"`
	UpdatedAt  time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

// FormationType records which topology is active for a (day, quarter).
// Missing row means the default 4-4-2.
type FormationType struct {
	bun.BaseModel `bun:"table:formation_types"`

	DayKey    string    `bun:"day_key,pk" json:"day_key"`
	Quarter   int       `bun:"quarter,pk" json:"quarter"`
	Formation string    `bun:"formation_type,notnull" json:"formation_type"`
	UpdatedAt time.Time `bun:"updated_at,notnull" json:"updated_at"`
}
