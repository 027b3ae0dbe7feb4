package models

import (
	"time"

	"github.com/uptrace/bun"
)

// GateStateID is the fixed primary key of the singleton gate row.
const GateStateID = "gate"

// GateState is the single persistent flag controlling whether check-in
// submission is accepted. Exactly one row ever exists; writes upsert on the
// constant id.
type GateState struct {
	bun.BaseModel `bun:"table:gate_states"`

	ID        string    `bun:"id,pk" json:"id"`
	IsActive  bool      `bun:"is_active,notnull" json:"is_active"`
	UpdatedAt time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

// GateToggleRequest is the admin toggle payload.
type GateToggleRequest struct {
	Open bool `json:"open"`
}
