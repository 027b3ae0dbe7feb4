package formation

import "mmfc-attendance/internal/models"

const (
	Formation442  = "442"
	Formation4231 = "4231"

	// DefaultFormation is used when a (day, quarter) has no stored type.
	DefaultFormation = Formation442
)

// Templates are the two pitch topologies. Slot ids differ between them, so
// rows stored under one topology are invisible (harmlessly orphaned) once
// the other is active.
var Templates = map[string][]models.FormationSlot{
	Formation442: {
		{ID: "slot-st1", Label: "ST", Row: 1, Column: 2},
		{ID: "slot-st2", Label: "ST", Row: 1, Column: 4},
		{ID: "slot-lm", Label: "LM", Row: 2, Column: 1},
		{ID: "slot-lcm", Label: "CM", Row: 2, Column: 2},
		{ID: "slot-rcm", Label: "CM", Row: 2, Column: 4},
		{ID: "slot-rm", Label: "RM", Row: 2, Column: 5},
		{ID: "slot-lb", Label: "LB", Row: 3, Column: 1},
		{ID: "slot-lcb", Label: "CB", Row: 3, Column: 2},
		{ID: "slot-rcb", Label: "CB", Row: 3, Column: 4},
		{ID: "slot-rb", Label: "RB", Row: 3, Column: 5},
		{ID: "slot-gk", Label: "GK", Row: 4, Column: 3},
	},
	Formation4231: {
		{ID: "slot-st", Label: "ST", Row: 1, Column: 3},
		{ID: "slot-lw", Label: "LW", Row: 2, Column: 1},
		{ID: "slot-cam", Label: "CAM", Row: 2, Column: 3},
		{ID: "slot-rw", Label: "RW", Row: 2, Column: 5},
		{ID: "slot-lcdm", Label: "CDM", Row: 3, Column: 2},
		{ID: "slot-rcdm", Label: "CDM", Row: 3, Column: 4},
		{ID: "slot-lb", Label: "LB", Row: 4, Column: 1},
		{ID: "slot-lcb", Label: "CB", Row: 4, Column: 2},
		{ID: "slot-rcb", Label: "CB", Row: 4, Column: 4},
		{ID: "slot-rb", Label: "RB", Row: 4, Column: 5},
		{ID: "slot-gk", Label: "GK", Row: 5, Column: 3},
	},
}

// KnownFormation reports whether the name is one of the two topologies.
func KnownFormation(formation string) bool {
	_, ok := Templates[formation]
	return ok
}

// Template returns the slot layout for a topology, falling back to the
// default for unknown or unset names.
func Template(formation string) []models.FormationSlot {
	if slots, ok := Templates[formation]; ok {
		return slots
	}
	return Templates[DefaultFormation]
}
