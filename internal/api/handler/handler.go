package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"timecard.service/internal/core"
	"timecard.service/internal/core/model"
	"timecard.service/internal/ports/repository"
)

// TimeclockHandler serves the clock endpoint and the entry log CRUD.
type TimeclockHandler struct {
	Service *core.TimeclockService
}

type ClockRequest struct {
	Employee   string   `json:"employee"`
	EmployeeID string   `json:"employeeId"`
	Site       string   `json:"site,omitempty"`
	Lat        *float64 `json:"lat,omitempty"`
	Lng        *float64 `json:"lng,omitempty"`
	Note       string   `json:"note,omitempty"`
}

func (h *TimeclockHandler) Clock(w http.ResponseWriter, r *http.Request) {
	var req ClockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.EmployeeID == "" {
		http.Error(w, "employeeId is required", http.StatusBadRequest)
		return
	}

	entry, err := h.Service.ProcessClock(r.Context(), core.ClockRequest{
		Employee:   req.Employee,
		EmployeeID: req.EmployeeID,
		Site:       req.Site,
		Lat:        req.Lat,
		Lng:        req.Lng,
		Note:       req.Note,
	})
	if err != nil {
		http.Error(w, "Service error recording clock event", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(entry)
}

func (h *TimeclockHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	fromMs, toMs, ok := windowMillis(w, r)
	if !ok {
		return
	}
	entries, err := h.Service.ListEntries(r.Context(), fromMs, toMs)
	if err != nil {
		http.Error(w, "Service error listing entries", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []model.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

type EntryCorrectionRequest struct {
	Employee   *string `json:"employee,omitempty"`
	EmployeeID *string `json:"employeeId,omitempty"`
	Action     *string `json:"action,omitempty"`
	TS         *int64  `json:"ts,omitempty"`
	Site       *string `json:"site,omitempty"`
	Note       *string `json:"note,omitempty"`
}

func (h *TimeclockHandler) CorrectEntry(w http.ResponseWriter, r *http.Request) {
	var req EntryCorrectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	correction := core.EntryCorrection{
		Employee:   req.Employee,
		EmployeeID: req.EmployeeID,
		TS:         req.TS,
		Site:       req.Site,
		Note:       req.Note,
	}
	if req.Action != nil {
		action := model.ClockAction(*req.Action)
		if action != model.ActionIn && action != model.ActionOut {
			http.Error(w, "action must be \"in\" or \"out\"", http.StatusBadRequest)
			return
		}
		correction.Action = &action
	}

	entry, err := h.Service.CorrectEntry(r.Context(), pathID(r), correction)
	if errors.Is(err, repository.ErrNotFound) {
		http.Error(w, "Entry not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Service error correcting entry", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *TimeclockHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	err := h.Service.DeleteEntry(r.Context(), pathID(r))
	if errors.Is(err, repository.ErrNotFound) {
		http.Error(w, "Entry not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Service error deleting entry", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// windowMillis parses the from/to query parameters as epoch milliseconds.
func windowMillis(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	fromMs, err := strconv.ParseInt(r.URL.Query().Get("from"), 10, 64)
	if err != nil {
		http.Error(w, "from must be epoch milliseconds", http.StatusBadRequest)
		return 0, 0, false
	}
	toMs, err := strconv.ParseInt(r.URL.Query().Get("to"), 10, 64)
	if err != nil {
		http.Error(w, "to must be epoch milliseconds", http.StatusBadRequest)
		return 0, 0, false
	}
	return fromMs, toMs, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
