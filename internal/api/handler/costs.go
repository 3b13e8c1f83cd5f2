package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"timecard.service/internal/core/model"
	"timecard.service/internal/ports/repository"
)

// CostHandler ingests mileage and expense records.
type CostHandler struct {
	Repo repository.CostRepository
}

// CostRequest is the ingestion payload for mileage and expenses. Older
// clients send the site under several historical names; they are collapsed
// into one canonical field right here, so nothing downstream ever sees the
// alternates.
type CostRequest struct {
	EmployeeID string  `json:"employeeId"`
	Site       string  `json:"site,omitempty"`
	SiteName   string  `json:"siteName,omitempty"`
	SiteID     string  `json:"siteId,omitempty"`
	Km         float64 `json:"km,omitempty"`
	Amount     float64 `json:"amount,omitempty"`
	TS         *int64  `json:"ts,omitempty"`
	Note       string  `json:"note,omitempty"`
}

// canonicalSite resolves the historical site field alternates in priority
// order.
func (r CostRequest) canonicalSite() string {
	switch {
	case r.Site != "":
		return r.Site
	case r.SiteName != "":
		return r.SiteName
	default:
		return r.SiteID
	}
}

func (r CostRequest) timestamp() int64 {
	if r.TS != nil {
		return *r.TS
	}
	return time.Now().UTC().UnixMilli()
}

func (h *CostHandler) CreateMileage(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, func(ctx context.Context, req CostRequest) (any, error) {
		record := model.MileageRecord{
			ID:         uuid.New().String(),
			EmployeeID: req.EmployeeID,
			Site:       req.canonicalSite(),
			Km:         req.Km,
			TS:         req.timestamp(),
			Note:       req.Note,
		}
		return record, h.Repo.CreateMileage(ctx, record)
	})
}

func (h *CostHandler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, func(ctx context.Context, req CostRequest) (any, error) {
		record := model.ExpenseRecord{
			ID:         uuid.New().String(),
			EmployeeID: req.EmployeeID,
			Site:       req.canonicalSite(),
			Amount:     req.Amount,
			TS:         req.timestamp(),
			Note:       req.Note,
		}
		return record, h.Repo.CreateExpense(ctx, record)
	})
}

func (h *CostHandler) create(w http.ResponseWriter, r *http.Request, insert func(context.Context, CostRequest) (any, error)) {
	var req CostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.EmployeeID == "" {
		http.Error(w, "employeeId is required", http.StatusBadRequest)
		return
	}

	record, err := insert(r.Context(), req)
	if err != nil {
		http.Error(w, "Service error recording cost", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}
