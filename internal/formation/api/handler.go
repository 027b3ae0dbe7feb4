package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"mmfc-attendance/internal/attendance"
	"mmfc-attendance/internal/formation"
	boardlock "mmfc-attendance/internal/formation/redis"
	"mmfc-attendance/internal/logger"
	"mmfc-attendance/internal/store"
	"mmfc-attendance/internal/utils"
)

type Handler struct {
	Engine     *formation.Engine
	Attendance *attendance.Service
	Lock       *boardlock.Lock
	Logger     *logger.Logger
}

func NewHandler(engine *formation.Engine, att *attendance.Service, lock *boardlock.Lock, log *logger.Logger) *Handler {
	return &Handler{Engine: engine, Attendance: att, Lock: lock, Logger: log}
}

type boardRequest struct {
	DayKey       string `json:"day_key"`
	Quarter      int    `json:"quarter"`
	SlotID       string `json:"slot_id,omitempty"`
	Player       string `json:"player,omitempty"`
	Source       string `json:"source,omitempty"` // "bench" or "slot"
	SourceSlotID string `json:"source_slot_id,omitempty"`
	Formation    string `json:"formation,omitempty"`
}

// GetBoard handles GET /api/formation?day=YYYYMMDD&quarter=N.
func (h *Handler) GetBoard(w http.ResponseWriter, r *http.Request) {
	dayKey := r.URL.Query().Get("day")
	quarter := 1
	if q := r.URL.Query().Get("quarter"); q != "" {
		parsed, err := strconv.Atoi(q)
		if err != nil {
			utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid quarter", "quarter must be a number"))
			return
		}
		quarter = parsed
	}

	board, err := h.loadBoard(r.Context(), dayKey, quarter)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetBoard: %v", err))
		utils.WriteJSON(w, statusFor(err), utils.ErrorResponse("Failed to load formation", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Formation loaded", board))
}

// Counts handles GET /api/formation/counts?day=YYYYMMDD.
func (h *Handler) Counts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.Engine.CountsByDay(r.Context(), r.URL.Query().Get("day"))
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Counts: %v", err))
		utils.WriteJSON(w, statusFor(err), utils.ErrorResponse("Failed to load formation counts", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Formation counts loaded", counts))
}

// Place handles POST /api/formation/place. The client sends its held
// selection along with the target slot; with no held player the call acts
// as a pick-up on an occupied slot and the response board carries the new
// selection.
func (h *Handler) Place(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	h.withBoard(w, r, req, true, func(ctx context.Context, board *formation.Board) error {
		if req.Player != "" {
			board.Select(req.Player, formation.SelectionSource(req.Source), req.SourceSlotID)
		}
		return h.Engine.Place(ctx, board, req.SlotID)
	})
}

// ClearSlot handles POST /api/formation/clear.
func (h *Handler) ClearSlot(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	h.withBoard(w, r, req, true, func(ctx context.Context, board *formation.Board) error {
		return h.Engine.Clear(ctx, board, req.SlotID)
	})
}

// Reset handles POST /api/formation/reset.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	h.withBoard(w, r, req, true, func(ctx context.Context, board *formation.Board) error {
		return h.Engine.Reset(ctx, board)
	})
}

// ChangeType handles PUT /api/formation/type.
func (h *Handler) ChangeType(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	h.withBoard(w, r, req, true, func(ctx context.Context, board *formation.Board) error {
		return h.Engine.ChangeFormation(ctx, board, req.Formation)
	})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (boardRequest, bool) {
	var req boardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return req, false
	}
	return req, true
}

// withBoard loads the board for the request's (day, quarter), runs the
// mutation under the per-board save lock, and responds with the resulting
// board state. Lock contention means another save is in flight; the caller
// gets a conflict instead of racing it.
func (h *Handler) withBoard(w http.ResponseWriter, r *http.Request, req boardRequest, locked bool, mutate func(context.Context, *formation.Board) error) {
	ctx := r.Context()

	if locked {
		owner := uuid.NewString()
		ok, err := h.Lock.LockBoard(req.DayKey, req.Quarter, owner)
		if err != nil {
			h.Logger.Error("API", fmt.Sprintf("withBoard: lock error: %v", err))
			utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to acquire board lock", err.Error()))
			return
		}
		if !ok {
			utils.WriteJSON(w, http.StatusConflict, utils.ErrorResponse("A save is already in progress for this board", "board locked"))
			return
		}
		defer func() {
			if err := h.Lock.UnlockBoard(req.DayKey, req.Quarter, owner); err != nil {
				h.Logger.Warn("API", fmt.Sprintf("withBoard: unlock error: %v", err))
			}
		}()
	}

	board, err := h.loadBoard(ctx, req.DayKey, req.Quarter)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("withBoard: load error: %v", err))
		utils.WriteJSON(w, statusFor(err), utils.ErrorResponse("Failed to load formation", err.Error()))
		return
	}

	if err := mutate(ctx, board); err != nil {
		h.Logger.Error("API", fmt.Sprintf("withBoard: %v", err))
		// The board was reloaded by the engine; hand it back so the client
		// resynchronizes instead of trusting its optimistic view.
		resp := utils.ErrorResponse("Failed to save formation", err.Error())
		resp.Data = board
		utils.WriteJSON(w, statusFor(err), resp)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Formation saved", board))
}

// loadBoard rebuilds the board for one (day, quarter): the viewed day's
// deduplicated attendee set plus the stored assignments and topology.
func (h *Handler) loadBoard(ctx context.Context, dayKey string, quarter int) (*formation.Board, error) {
	if err := store.ValidateDayKey(dayKey); err != nil {
		return nil, err
	}

	day, err := time.ParseInLocation("20060102", dayKey, time.Local)
	if err != nil {
		return nil, &store.ValidationError{Field: "day_key", Message: "must be a valid YYYYMMDD date"}
	}

	records, err := h.Attendance.ListByDate(ctx, day.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}

	return h.Engine.Load(ctx, dayKey, quarter, attendance.AttendeeNames(records))
}

func statusFor(err error) int {
	var validation *store.ValidationError
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
