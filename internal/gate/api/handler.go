package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"mmfc-attendance/internal/auth"
	"mmfc-attendance/internal/gate"
	"mmfc-attendance/internal/logger"
	"mmfc-attendance/internal/models"
	"mmfc-attendance/internal/utils"
)

type Handler struct {
	Controller *gate.Controller
	Admin      *auth.Admin
	Logger     *logger.Logger
}

func NewHandler(controller *gate.Controller, admin *auth.Admin, log *logger.Logger) *Handler {
	return &Handler{Controller: controller, Admin: admin, Logger: log}
}

// GetGate handles GET /api/gate with a fresh read of the flag.
func (h *Handler) GetGate(w http.ResponseWriter, r *http.Request) {
	open, err := h.Controller.Refresh(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetGate: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to load gate state", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Gate state loaded", map[string]bool{"open": open}))
}

// Toggle handles PUT /api/admin/gate (admin only).
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	var req models.GateToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	if err := h.Controller.Toggle(r.Context(), req.Open); err != nil {
		h.Logger.Error("API", fmt.Sprintf("Toggle: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to save gate state", err.Error()))
		return
	}

	h.Logger.Info("API", fmt.Sprintf("Toggle: gate set to open=%v", req.Open))
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Gate state saved", map[string]bool{"open": req.Open}))
}

// Login handles POST /api/admin/login and returns the admin session token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	token, err := h.Admin.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Admin authentication failed", err.Error()))
			return
		}
		h.Logger.Error("API", fmt.Sprintf("Login: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to issue session token", err.Error()))
		return
	}

	h.Logger.Info("AUTH", "Admin logged in")
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Logged in", map[string]string{"token": token}))
}
