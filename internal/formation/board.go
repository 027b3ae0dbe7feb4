package formation

import "mmfc-attendance/internal/models"

// SelectionSource tags where a held player was picked up from.
type SelectionSource string

const (
	SourceBench SelectionSource = "bench"
	SourceSlot  SelectionSource = "slot"
)

// Selection is the user's in-progress pick: one held player, taken either
// from the bench or out of a slot. SlotID is meaningful only for slot-origin
// picks.
type Selection struct {
	Name   string          `json:"name"`
	Source SelectionSource `json:"source"`
	SlotID string          `json:"slot_id,omitempty"`
}

// SlotState is a template slot plus its current occupant. Absent marks an
// occupant who is not in the viewed day's attendee set; such players are
// flagged, never auto-evicted.
type SlotState struct {
	models.FormationSlot
	Player string `json:"player,omitempty"`
	Absent bool   `json:"absent,omitempty"`
}

// Board is the full in-memory state of one (day, quarter): topology, slot
// occupations, derived bench, the viewed day's attendee set, and the held
// selection.
type Board struct {
	DayKey    string     `json:"day_key"`
	Quarter   int        `json:"quarter"`
	Formation string     `json:"formation"`
	Slots     []SlotState `json:"slots"`
	Bench     []string   `json:"bench"`
	Attendees []string   `json:"attendees"`
	Selection *Selection `json:"selection,omitempty"`
}

func emptySlots(formation string) []SlotState {
	template := Template(formation)
	slots := make([]SlotState, len(template))
	for i, slot := range template {
		slots[i] = SlotState{FormationSlot: slot}
	}
	return slots
}

func (b *Board) slot(slotID string) *SlotState {
	for i := range b.Slots {
		if b.Slots[i].ID == slotID {
			return &b.Slots[i]
		}
	}
	return nil
}

// recompute rebuilds the derived state: bench = attendees not occupying any
// slot, and per-slot absent flags.
func (b *Board) recompute() {
	attending := make(map[string]bool, len(b.Attendees))
	for _, name := range b.Attendees {
		attending[name] = true
	}

	assigned := make(map[string]bool)
	for i := range b.Slots {
		player := b.Slots[i].Player
		if player == "" {
			b.Slots[i].Absent = false
			continue
		}
		assigned[player] = true
		b.Slots[i].Absent = !attending[player]
	}

	bench := make([]string, 0, len(b.Attendees))
	for _, name := range b.Attendees {
		if !assigned[name] {
			bench = append(bench, name)
		}
	}
	b.Bench = bench
}

// Select toggles the held selection: picking the already-held player from
// the same origin clears it, anything else replaces it unconditionally.
func (b *Board) Select(name string, source SelectionSource, slotID string) {
	if source != SourceSlot {
		slotID = ""
	}
	if b.Selection != nil &&
		b.Selection.Name == name &&
		b.Selection.Source == source &&
		b.Selection.SlotID == slotID {
		b.Selection = nil
		return
	}
	b.Selection = &Selection{Name: name, Source: source, SlotID: slotID}
}

// attends reports whether a name is in the viewed day's attendee set.
func (b *Board) attends(name string) bool {
	for _, attendee := range b.Attendees {
		if attendee == name {
			return true
		}
	}
	return false
}
