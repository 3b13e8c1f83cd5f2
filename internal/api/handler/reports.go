package handler

import (
	"net/http"
	"time"

	"timecard.service/internal/core"
	"timecard.service/internal/core/model"
)

// ReportHandler serves the read-side endpoints: sessions and the hour,
// daily and profitability reports.
type ReportHandler struct {
	Service *core.ReportService
}

func (h *ReportHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	from, to, ok := windowTimes(w, r)
	if !ok {
		return
	}
	sessions, err := h.Service.Sessions(r.Context(), from, to)
	if err != nil {
		http.Error(w, "Service error rebuilding sessions", http.StatusInternalServerError)
		return
	}
	if sessions == nil {
		sessions = []model.Session{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (h *ReportHandler) Hours(w http.ResponseWriter, r *http.Request) {
	from, to, ok := windowTimes(w, r)
	if !ok {
		return
	}
	totals, err := h.Service.WindowMinutes(r.Context(), from, to)
	if err != nil {
		http.Error(w, "Service error computing hour totals", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

func (h *ReportHandler) Daily(w http.ResponseWriter, r *http.Request) {
	from, to, ok := windowTimes(w, r)
	if !ok {
		return
	}
	days, err := h.Service.DailySiteMinutes(r.Context(), from, to)
	if err != nil {
		http.Error(w, "Service error computing daily summary", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, days)
}

func (h *ReportHandler) Profitability(w http.ResponseWriter, r *http.Request) {
	from, to, ok := windowTimes(w, r)
	if !ok {
		return
	}
	rows, err := h.Service.Profitability(r.Context(), from, to)
	if err != nil {
		http.Error(w, "Service error computing profitability", http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []model.ProfitabilityRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// windowTimes parses from/to query parameters (epoch ms) into times.
func windowTimes(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	fromMs, toMs, ok := windowMillis(w, r)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	return time.UnixMilli(fromMs).UTC(), time.UnixMilli(toMs).UTC(), true
}
