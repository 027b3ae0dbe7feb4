package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"mmfc-attendance/internal/attendance"
	"mmfc-attendance/internal/formation"
	"mmfc-attendance/internal/logger"
	"mmfc-attendance/internal/models"
	"mmfc-attendance/internal/qr"
	"mmfc-attendance/internal/store"
	"mmfc-attendance/internal/utils"
)

type Handler struct {
	Service *attendance.Service
	Engine  *formation.Engine
	QR      *qr.Generator
	Logger  *logger.Logger
}

func NewHandler(service *attendance.Service, engine *formation.Engine, qrGen *qr.Generator, log *logger.Logger) *Handler {
	return &Handler{Service: service, Engine: engine, QR: qrGen, Logger: log}
}

// CheckIn handles POST /api/checkin.
func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req models.CheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	if err := h.Service.CheckIn(r.Context(), req.Name); err != nil {
		h.Logger.Error("API", fmt.Sprintf("CheckIn: %v", err))
		utils.WriteJSON(w, statusFor(err), utils.ErrorResponse("Failed to save check-in", err.Error()))
		return
	}

	h.Logger.Info("API", fmt.Sprintf("CheckIn: saved %q", req.Name))
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Check-in saved", nil))
}

// List handles GET /api/checkin?date=YYYY-MM-DD. The response carries the
// deduplicated records plus the day's formation counts so the list can
// annotate each name.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = utils.TodayDate()
	}

	records, err := h.Service.ListByDate(r.Context(), date)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("List: %v", err))
		utils.WriteJSON(w, statusFor(err), utils.ErrorResponse("Failed to load check-ins", err.Error()))
		return
	}

	counts, err := h.Engine.CountsByDay(r.Context(), utils.DayKey(date))
	if err != nil {
		// The annotation is cosmetic; the list itself still renders.
		h.Logger.Warn("API", fmt.Sprintf("List: failed to load formation counts: %v", err))
		counts = map[string]int{}
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Check-ins loaded", map[string]interface{}{
		"date":             date,
		"check_ins":        records,
		"formation_counts": counts,
	}))
}

// Delete handles DELETE /api/checkin (admin only). The target row is the
// earliest same-day record for the name.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	var req models.DeleteCheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	if err := h.Service.Delete(r.Context(), req.Name, req.Date); err != nil {
		h.Logger.Error("API", fmt.Sprintf("Delete: %v", err))
		utils.WriteJSON(w, statusFor(err), utils.ErrorResponse("Failed to delete check-in", err.Error()))
		return
	}

	h.Logger.Info("API", fmt.Sprintf("Delete: removed %q on %s", req.Name, req.Date))
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Check-in deleted", nil))
}

// King handles GET /api/admin/king?year=YYYY (admin only).
func (h *Handler) King(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid year", "year must be a number"))
		return
	}

	king, err := h.Service.King(r.Context(), year)
	if err != nil {
		if errors.Is(err, attendance.ErrNoData) {
			utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse(fmt.Sprintf("No attendance data for %d", year), err.Error()))
			return
		}
		h.Logger.Error("API", fmt.Sprintf("King: %v", err))
		utils.WriteJSON(w, statusFor(err), utils.ErrorResponse("Failed to load attendance king", err.Error()))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Attendance king loaded", king))
}

// Poster handles GET /api/checkin/qr?date= and returns a printable PNG QR
// linking to the board.
func (h *Handler) Poster(w http.ResponseWriter, r *http.Request) {
	png, err := h.QR.CheckInPoster(r.URL.Query().Get("date"))
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Poster: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to generate QR", err.Error()))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// statusFor maps the store error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	var validation *store.ValidationError
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.Is(err, attendance.ErrGateClosed):
		return http.StatusForbidden
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
