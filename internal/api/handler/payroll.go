package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"timecard.service/internal/core"
	"timecard.service/internal/core/payroll"
	"timecard.service/internal/ports/repository"
)

// PayrollHandler serves the payroll period lifecycle endpoints.
type PayrollHandler struct {
	Service *core.PayrollService
	Reports *core.ReportService
}

type CreatePeriodRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (h *PayrollHandler) CreatePeriod(w http.ResponseWriter, r *http.Request) {
	var req CreatePeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	from, err := time.Parse("2006-01-02", req.From)
	if err != nil {
		http.Error(w, "from must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	to, err := time.Parse("2006-01-02", req.To)
	if err != nil {
		http.Error(w, "to must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	if !to.After(from) {
		http.Error(w, "to must be after from", http.StatusBadRequest)
		return
	}

	p, err := h.Service.CreateDraft(r.Context(), from, to)
	if errors.Is(err, core.ErrPeriodExists) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, "Service error creating period", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *PayrollHandler) GetPeriod(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.GetPeriod(r.Context(), pathID(r))
	if h.writeError(w, err, "Service error loading period") {
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PayrollHandler) ListPeriods(w http.ResponseWriter, r *http.Request) {
	periods, err := h.Service.ListPeriods(r.Context())
	if err != nil {
		http.Error(w, "Service error listing periods", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, periods)
}

func (h *PayrollHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.Finalize(r.Context(), pathID(r))
	if h.writeError(w, err, "Service error finalizing period") {
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PayrollHandler) Lock(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.Lock(r.Context(), pathID(r))
	if h.writeError(w, err, "Service error locking period") {
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PayrollHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.MarkPaid(r.Context(), pathID(r))
	if h.writeError(w, err, "Service error marking period paid") {
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PayrollHandler) Reopen(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.Reopen(r.Context(), pathID(r))
	if h.writeError(w, err, "Service error reopening period") {
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PayrollHandler) DeletePeriod(w http.ResponseWriter, r *http.Request) {
	err := h.Service.DeletePeriod(r.Context(), pathID(r))
	if h.writeError(w, err, "Service error deleting period") {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type ItemEditRequest struct {
	BonusMinutes *float64 `json:"bonusMinutes,omitempty"`
	FlatBonus    *float64 `json:"flatBonus,omitempty"`
	Deductions   *float64 `json:"deductions,omitempty"`
}

func (h *PayrollHandler) EditItem(w http.ResponseWriter, r *http.Request) {
	var req ItemEditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	employeeID := mux.Vars(r)["employeeId"]

	p, changes, err := h.Service.EditItem(r.Context(), pathID(r), employeeID, payroll.ItemEdit{
		BonusMinutes: req.BonusMinutes,
		FlatBonus:    req.FlatBonus,
		Deductions:   req.Deductions,
	})
	if h.writeError(w, err, "Service error editing line item") {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"period": p, "changes": changes})
}

type ConfirmRequest struct {
	EmployeeID string `json:"employeeId"`
}

func (h *PayrollHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.EmployeeID == "" {
		http.Error(w, "employeeId is required", http.StatusBadRequest)
		return
	}

	c, err := h.Service.Confirm(r.Context(), pathID(r), req.EmployeeID)
	if h.writeError(w, err, "Service error confirming line item") {
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *PayrollHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	p, err := h.Service.GetPeriod(r.Context(), id)
	if h.writeError(w, err, "Service error loading period") {
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "payroll_"+id+".csv"))
	if err := h.Reports.WritePeriodCSV(w, *p); err != nil {
		http.Error(w, "Service error writing CSV", http.StatusInternalServerError)
	}
}

// writeError maps the payroll domain errors to HTTP statuses. It reports
// whether a response was written.
func (h *PayrollHandler) writeError(w http.ResponseWriter, err error, fallback string) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, repository.ErrNotFound):
		http.Error(w, "Period not found", http.StatusNotFound)
	case errors.Is(err, payroll.ErrItemNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, payroll.ErrInvalidTransition),
		errors.Is(err, payroll.ErrUnconfirmedItems),
		errors.Is(err, payroll.ErrNotDeletable):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, fallback, http.StatusInternalServerError)
	}
	return true
}

// pathID pulls the {id} path variable.
func pathID(r *http.Request) string {
	return mux.Vars(r)["id"]
}
