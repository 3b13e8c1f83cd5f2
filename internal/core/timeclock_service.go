package core

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"timecard.service/internal/core/model"
	"timecard.service/internal/ports/repository"
)

type TimeclockService struct {
	repo repository.EntryRepository
}

// NewTimeclockService creates the service that records raw clock actions.
// Sessions are never stored; they are rebuilt from this log on every read.
func NewTimeclockService(repo repository.EntryRepository) *TimeclockService {
	return &TimeclockService{repo: repo}
}

// ClockRequest carries everything a clock terminal sends with a punch.
type ClockRequest struct {
	Employee   string
	EmployeeID string
	Site       string
	Lat        *float64
	Lng        *float64
	Note       string
}

// ProcessClock is the core clock logic. It figures out whether an employee
// is clocking in or out by looking at their most recent entry, then appends
// the new entry to the log.
func (s *TimeclockService) ProcessClock(ctx context.Context, req ClockRequest) (*model.Entry, error) {
	lastEntry, err := s.repo.FindLastAction(ctx, req.EmployeeID)
	if err != nil {
		return nil, errors.New("failed to query last clock action")
	}

	action := model.ActionIn
	if lastEntry != nil && lastEntry.Action == model.ActionIn {
		action = model.ActionOut
	}

	entry := model.Entry{
		ID:         uuid.New().String(),
		Employee:   req.Employee,
		EmployeeID: req.EmployeeID,
		Action:     action,
		TS:         time.Now().UTC().UnixMilli(),
		Site:       req.Site,
		Lat:        req.Lat,
		Lng:        req.Lng,
		Note:       req.Note,
	}

	if err := s.repo.CreateEntry(ctx, entry); err != nil {
		return nil, errors.New("failed to create clock entry")
	}
	return &entry, nil
}

// ListEntries returns the raw log for a window.
func (s *TimeclockService) ListEntries(ctx context.Context, fromMs, toMs int64) ([]model.Entry, error) {
	return s.repo.ListEntries(ctx, fromMs, toMs)
}

// EntryCorrection is a manager edit to a recorded entry. Nil fields are
// left untouched; action and employee may be reassigned.
type EntryCorrection struct {
	Employee   *string
	EmployeeID *string
	Action     *model.ClockAction
	TS         *int64
	Site       *string
	Note       *string
}

// CorrectEntry applies a manager correction to an existing entry.
func (s *TimeclockService) CorrectEntry(ctx context.Context, id string, c EntryCorrection) (*model.Entry, error) {
	entry, err := s.repo.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}

	if c.Employee != nil {
		entry.Employee = *c.Employee
	}
	if c.EmployeeID != nil {
		entry.EmployeeID = *c.EmployeeID
	}
	if c.Action != nil {
		entry.Action = *c.Action
	}
	if c.TS != nil {
		entry.TS = *c.TS
	}
	if c.Site != nil {
		entry.Site = *c.Site
	}
	if c.Note != nil {
		entry.Note = *c.Note
	}

	if err := s.repo.UpdateEntry(ctx, *entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// DeleteEntry removes an entry from the log. Deletion is an explicit
// manager action; clock terminals never delete.
func (s *TimeclockService) DeleteEntry(ctx context.Context, id string) error {
	return s.repo.DeleteEntry(ctx, id)
}
