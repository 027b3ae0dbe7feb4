package formation

import (
	"context"
	"fmt"
	"sync"

	"mmfc-attendance/internal/logger"
	"mmfc-attendance/internal/models"
	"mmfc-attendance/internal/store"
)

type StoreLayer interface {
	GetFormationAssignments(ctx context.Context, dayKey string, quarter int) ([]models.FormationAssignment, error)
	GetFormationType(ctx context.Context, dayKey string, quarter int) (string, error)
	UpsertFormationAssignment(ctx context.Context, slotID, player, dayKey string, quarter int) error
	DeleteFormationAssignments(ctx context.Context, dayKey string, quarter int) error
	UpsertFormationType(ctx context.Context, dayKey string, quarter int, formation string) error
}

type EventPublisher interface {
	PublishFormationSaved(dayKey string, quarter int) error
}

// Engine drives the slot/bench state machine. Mutations apply to the board
// optimistically, then persist; any persistence failure throws the
// optimistic state away and reloads the board from the store, so local
// state is never a long-term source of truth after a failure.
type Engine struct {
	DB     StoreLayer
	Events EventPublisher
	Logger *logger.Logger
}

func NewEngine(db StoreLayer, events EventPublisher, log *logger.Logger) *Engine {
	return &Engine{DB: db, Events: events, Logger: log}
}

// Load builds a fresh board for one (day, quarter): assignments and the
// stored topology are fetched concurrently, a missing topology defaults to
// 4-4-2, and the result is a full state replace with no merge against any
// prior board.
func (e *Engine) Load(ctx context.Context, dayKey string, quarter int, attendees []string) (*Board, error) {
	if err := store.ValidateDayKey(dayKey); err != nil {
		return nil, err
	}
	if err := store.ValidateQuarter(quarter); err != nil {
		return nil, err
	}

	var (
		wg          sync.WaitGroup
		assignments []models.FormationAssignment
		ftype       string
		aErr, tErr  error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		assignments, aErr = e.DB.GetFormationAssignments(ctx, dayKey, quarter)
	}()
	go func() {
		defer wg.Done()
		ftype, tErr = e.DB.GetFormationType(ctx, dayKey, quarter)
	}()
	wg.Wait()
	if aErr != nil {
		return nil, aErr
	}
	if tErr != nil {
		return nil, tErr
	}

	if !KnownFormation(ftype) {
		ftype = DefaultFormation
	}

	occupants := make(map[string]string, len(assignments))
	for _, assignment := range assignments {
		occupants[assignment.SlotID] = assignment.PlayerName
	}

	board := &Board{
		DayKey:    dayKey,
		Quarter:   quarter,
		Formation: ftype,
		Slots:     emptySlots(ftype),
		Attendees: attendees,
	}
	for i := range board.Slots {
		board.Slots[i].Player = occupants[board.Slots[i].ID]
	}
	board.recompute()
	return board, nil
}

// Place acts on a target slot with the board's held selection.
//
// With nothing held, tapping an occupied slot picks its player up. Tapping
// the slot the held player came from puts it back (deselect). Anything else
// is the exchange: the held player lands on the target, a displaced
// occupant moves into the vacated source slot, and any other slot still
// holding the placed name is cleared so no player occupies two slots at
// once. The exchange persists the target and, when it changed, the source;
// a persistence failure reloads the whole board.
func (e *Engine) Place(ctx context.Context, board *Board, targetSlotID string) error {
	target := board.slot(targetSlotID)
	if target == nil {
		return &store.ValidationError{Field: "slot_id", Message: "unknown slot " + targetSlotID}
	}

	if board.Selection == nil {
		if target.Player != "" {
			board.Selection = &Selection{Name: target.Player, Source: SourceSlot, SlotID: target.ID}
		}
		return nil
	}

	held := *board.Selection
	board.Selection = nil

	if held.Source == SourceSlot && held.SlotID == targetSlotID {
		return nil
	}
	if !board.attends(held.Name) {
		// Absent players stay marked where they are; they cannot be moved.
		return nil
	}

	previousOccupant := target.Player
	target.Player = held.Name

	sourceChanged := false
	sourcePlayer := ""
	if held.Source == SourceSlot && held.SlotID != targetSlotID {
		if source := board.slot(held.SlotID); source != nil {
			if previousOccupant != "" && previousOccupant != held.Name {
				source.Player = previousOccupant
			} else {
				source.Player = ""
			}
			sourceChanged = true
			sourcePlayer = source.Player
		}
	}

	// At-most-one-slot-per-player: evict the placed name anywhere else.
	for i := range board.Slots {
		slot := &board.Slots[i]
		if slot.ID == targetSlotID || (sourceChanged && slot.ID == held.SlotID) {
			continue
		}
		if slot.Player == held.Name {
			slot.Player = ""
		}
	}
	board.recompute()

	if err := e.DB.UpsertFormationAssignment(ctx, targetSlotID, held.Name, board.DayKey, board.Quarter); err != nil {
		e.reload(ctx, board)
		return fmt.Errorf("failed to save position: %w", err)
	}
	if sourceChanged {
		if err := e.DB.UpsertFormationAssignment(ctx, held.SlotID, sourcePlayer, board.DayKey, board.Quarter); err != nil {
			e.reload(ctx, board)
			return fmt.Errorf("failed to save position: %w", err)
		}
	}

	e.publishSaved(board)
	return nil
}

// Clear vacates one slot: local null, then a delete. Cleared slots are
// removed rows, never null-player upserts.
func (e *Engine) Clear(ctx context.Context, board *Board, slotID string) error {
	slot := board.slot(slotID)
	if slot == nil {
		return &store.ValidationError{Field: "slot_id", Message: "unknown slot " + slotID}
	}

	slot.Player = ""
	if board.Selection != nil && board.Selection.Source == SourceSlot && board.Selection.SlotID == slotID {
		board.Selection = nil
	}
	board.recompute()

	if err := e.DB.UpsertFormationAssignment(ctx, slotID, "", board.DayKey, board.Quarter); err != nil {
		e.reload(ctx, board)
		return fmt.Errorf("failed to clear position: %w", err)
	}

	e.publishSaved(board)
	return nil
}

// Reset wipes every assignment of the board's (day, quarter) and restores
// the empty template. Other days and quarters, and the stored formation
// type, are untouched.
func (e *Engine) Reset(ctx context.Context, board *Board) error {
	if err := e.DB.DeleteFormationAssignments(ctx, board.DayKey, board.Quarter); err != nil {
		e.reload(ctx, board)
		return fmt.Errorf("failed to reset formation: %w", err)
	}

	board.Slots = emptySlots(board.Formation)
	board.Selection = nil
	board.recompute()

	e.publishSaved(board)
	return nil
}

// ChangeFormation swaps the topology immediately, dropping in-memory
// placements; this mirrors starting a new board. Rows stored under the old
// topology's slot ids are left in place, orphaned but harmless.
func (e *Engine) ChangeFormation(ctx context.Context, board *Board, formation string) error {
	if !KnownFormation(formation) {
		return &store.ValidationError{Field: "formation", Message: "unknown formation " + formation}
	}

	board.Formation = formation
	board.Slots = emptySlots(formation)
	board.Selection = nil
	board.recompute()

	if err := e.DB.UpsertFormationType(ctx, board.DayKey, board.Quarter, formation); err != nil {
		return fmt.Errorf("failed to save formation type: %w", err)
	}
	return nil
}

// CountsByDay returns how many slots each player occupies across a whole
// day, all quarters combined. The list view shows it as a presence
// annotation next to each name.
func (e *Engine) CountsByDay(ctx context.Context, dayKey string) (map[string]int, error) {
	assignments, err := e.DB.GetFormationAssignments(ctx, dayKey, 0)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, assignment := range assignments {
		if assignment.PlayerName != "" {
			counts[assignment.PlayerName]++
		}
	}
	return counts, nil
}

// reload discards the optimistic board state and resynchronizes with the
// store after a failed save.
func (e *Engine) reload(ctx context.Context, board *Board) {
	fresh, err := e.Load(ctx, board.DayKey, board.Quarter, board.Attendees)
	if err != nil {
		if e.Logger != nil {
			e.Logger.Error("BOARD", fmt.Sprintf("Failed to reload board %s/q%d after save error: %v", board.DayKey, board.Quarter, err))
		}
		return
	}
	*board = *fresh
}

func (e *Engine) publishSaved(board *Board) {
	if e.Events == nil {
		return
	}
	if err := e.Events.PublishFormationSaved(board.DayKey, board.Quarter); err != nil && e.Logger != nil {
		e.Logger.Warn("BOARD", fmt.Sprintf("Failed to publish formation event: %v", err))
	}
}
