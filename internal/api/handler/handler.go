package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"attendance.service/internal/core"
	"attendance.service/internal/core/model"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// CheckInProcessor is implemented by core.CheckInService.
type CheckInProcessor interface {
	ProcessCheckInOut(ctx context.Context, employeeID int64) (*core.CheckInResult, error)
}

// EmployeeLookup is implemented by employee.Service.
type EmployeeLookup interface {
	VerifyEmployeeExists(ctx context.Context, employeeID int64) bool
	VerifyEmployeeExistsWithFallback(ctx context.Context, employeeID int64) bool
	GetEmployee(ctx context.Context, employeeID int64) *model.EmployeeProfile
	GetEmployeeByEmail(ctx context.Context, email string) *model.EmployeeProfile
	CachedEmployeeCount(ctx context.Context) int
	ActiveEmployeeCount(ctx context.Context) int
}

type CheckInHandler struct {
	Service CheckInProcessor
}

type CheckInOutRequest struct {
	EmployeeID int64 `json:"employee_id"`
}

func (h *CheckInHandler) CheckInOut(w http.ResponseWriter, r *http.Request) {
	var req CheckInOutRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.EmployeeID <= 0 {
		writeError(w, http.StatusBadRequest, "employee_id is required")
		return
	}

	res, err := h.Service.ProcessCheckInOut(r.Context(), req.EmployeeID)
	if errors.Is(err, core.ErrEmployeeNotFound) {
		writeError(w, http.StatusBadRequest, "Employee does not exist")
		return
	}
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Int64("employee_id", req.EmployeeID).Msg("Check-in/out failed")
		writeError(w, http.StatusInternalServerError, "Service error processing check-in/out")
		return
	}

	writeJSON(w, http.StatusOK, res)
}

type EmployeeHandler struct {
	Service EmployeeLookup
}

// GetEmployee serves the cached profile, falling back to the employee service.
func (h *EmployeeHandler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := employeeID(w, r)
	if !ok {
		return
	}
	p := h.Service.GetEmployee(r.Context(), id)
	if p == nil {
		writeError(w, http.StatusNotFound, "Employee not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *EmployeeHandler) GetEmployeeByEmail(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]
	if email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}
	p := h.Service.GetEmployeeByEmail(r.Context(), email)
	if p == nil {
		writeError(w, http.StatusNotFound, "Employee not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Exists answers from the cache only unless ?fallback=true is given.
func (h *EmployeeHandler) Exists(w http.ResponseWriter, r *http.Request) {
	id, ok := employeeID(w, r)
	if !ok {
		return
	}
	var exists bool
	if fallback, _ := strconv.ParseBool(r.URL.Query().Get("fallback")); fallback {
		exists = h.Service.VerifyEmployeeExistsWithFallback(r.Context(), id)
	} else {
		exists = h.Service.VerifyEmployeeExists(r.Context(), id)
	}
	writeJSON(w, http.StatusOK, map[string]any{"employee_id": id, "exists": exists})
}

func (h *EmployeeHandler) CacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{
		"cached_employees": h.Service.CachedEmployeeCount(r.Context()),
		"active_employees": h.Service.ActiveEmployeeCount(r.Context()),
	})
}

func employeeID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid employee id")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
