package handler

import (
	"encoding/json"
	"net/http"

	"timecard.service/internal/core/model"
	"timecard.service/internal/ports/repository"
)

// SettingsHandler reads and writes the settings document.
type SettingsHandler struct {
	Repo repository.SettingsRepository
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Repo.GetSettings(r.Context())
	if err != nil {
		http.Error(w, "Service error loading settings", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *SettingsHandler) Put(w http.ResponseWriter, r *http.Request) {
	var settings model.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if settings.WeekStartsOn < 0 || settings.WeekStartsOn > 6 {
		http.Error(w, "weekStartsOn must be 0-6", http.StatusBadRequest)
		return
	}

	if err := h.Repo.SaveSettings(r.Context(), settings); err != nil {
		http.Error(w, "Service error saving settings", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}
