package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"crmapi/internal/auth"
	"crmapi/internal/model"
	"crmapi/internal/repository"
)

// TimeEntryQuery narrows and pages a time entry listing.
type TimeEntryQuery struct {
	Page      Page
	From      time.Time
	To        time.Time
	ProjectID string
	UserID    string
}

type TimeEntryInput struct {
	ProjectID   *string   `json:"projectId" validate:"omitempty,uuid"`
	TaskID      *string   `json:"taskId" validate:"omitempty,uuid"`
	Description string    `json:"description" validate:"max=2000"`
	StartedAt   time.Time `json:"startedAt" validate:"required"`
	EndedAt     time.Time `json:"endedAt" validate:"required,gtfield=StartedAt"`
	Billable    bool      `json:"billable"`
}

type UpdateTimeEntryInput struct {
	ProjectID   *string    `json:"projectId" validate:"omitempty,uuid"`
	TaskID      *string    `json:"taskId" validate:"omitempty,uuid"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	StartedAt   *time.Time `json:"startedAt"`
	EndedAt     *time.Time `json:"endedAt"`
	Billable    *bool      `json:"billable"`
}

type StartTimerInput struct {
	ProjectID   *string `json:"projectId" validate:"omitempty,uuid"`
	TaskID      *string `json:"taskId" validate:"omitempty,uuid"`
	Description string  `json:"description" validate:"max=2000"`
	Billable    bool    `json:"billable"`
}

type TimeEntryService interface {
	List(ctx context.Context, p auth.Principal, q TimeEntryQuery) (*ListResult[model.TimeEntry], error)
	Get(ctx context.Context, p auth.Principal, id string) (*model.TimeEntry, error)

	// Create records a finished block of work; the duration is derived.
	Create(ctx context.Context, p auth.Principal, in TimeEntryInput) (*model.TimeEntry, error)
	Update(ctx context.Context, p auth.Principal, id string, in UpdateTimeEntryInput) (*model.TimeEntry, error)
	Delete(ctx context.Context, p auth.Principal, id string) error

	// Start opens a timer. A user has at most one running timer.
	Start(ctx context.Context, p auth.Principal, in StartTimerInput) (*model.TimeEntry, error)
	Stop(ctx context.Context, p auth.Principal) (*model.TimeEntry, error)
	Running(ctx context.Context, p auth.Principal) (*model.TimeEntry, error)

	// Summary totals the caller's finished entries per project over [from, to].
	Summary(ctx context.Context, p auth.Principal, from, to time.Time) ([]model.TimeSummary, error)
}

type timeEntryService struct {
	entries repository.TimeEntryRepository
	now     func() time.Time
}

func NewTimeEntryService(entries repository.TimeEntryRepository) TimeEntryService {
	return &timeEntryService{entries: entries, now: time.Now}
}

func durationSeconds(start, end time.Time) int64 {
	return int64(end.Sub(start) / time.Second)
}

func (s *timeEntryService) List(ctx context.Context, p auth.Principal, q TimeEntryQuery) (*ListResult[model.TimeEntry], error) {
	res, err := s.entries.List(ctx, repository.TimeEntryFilter{
		TenantID:  p.TenantID,
		UserID:    q.UserID,
		ProjectID: q.ProjectID,
		From:      q.From,
		To:        q.To,
	}, q.Page.query())
	if err != nil {
		return nil, err
	}
	return newListResult(res, q.Page), nil
}

func (s *timeEntryService) Get(ctx context.Context, p auth.Principal, id string) (*model.TimeEntry, error) {
	e, err := s.entries.FindByID(ctx, p.TenantID, id)
	return e, notFound(err, "time entry")
}

func (s *timeEntryService) Create(ctx context.Context, p auth.Principal, in TimeEntryInput) (*model.TimeEntry, error) {
	if !in.EndedAt.After(in.StartedAt) {
		return nil, invalid("endedAt", "must be after startedAt")
	}
	start, end := in.StartedAt.UTC(), in.EndedAt.UTC()
	e, err := s.entries.Create(ctx, &model.TimeEntry{
		ID:              uuid.NewString(),
		TenantID:        p.TenantID,
		UserID:          p.UserID,
		ProjectID:       optionalString(in.ProjectID),
		TaskID:          optionalString(in.TaskID),
		Description:     in.Description,
		StartedAt:       start,
		EndedAt:         &end,
		DurationSeconds: durationSeconds(start, end),
		Billable:        in.Billable,
		CreatedAt:       s.now().UTC(),
	})
	return e, notFound(err, "time entry")
}

func (s *timeEntryService) own(ctx context.Context, p auth.Principal, id string) (*model.TimeEntry, error) {
	e, err := s.entries.FindByID(ctx, p.TenantID, id)
	if err != nil {
		return nil, notFound(err, "time entry")
	}
	if e.UserID != p.UserID {
		return nil, newError(ErrForbidden, "time entries can only be changed by their owner")
	}
	return e, nil
}

func (s *timeEntryService) Update(ctx context.Context, p auth.Principal, id string, in UpdateTimeEntryInput) (*model.TimeEntry, error) {
	e, err := s.own(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if in.ProjectID != nil {
		e.ProjectID = optionalString(in.ProjectID)
	}
	if in.TaskID != nil {
		e.TaskID = optionalString(in.TaskID)
	}
	if in.Description != nil {
		e.Description = *in.Description
	}
	if in.StartedAt != nil {
		e.StartedAt = in.StartedAt.UTC()
	}
	if in.EndedAt != nil {
		end := in.EndedAt.UTC()
		e.EndedAt = &end
	}
	if in.Billable != nil {
		e.Billable = *in.Billable
	}
	if e.EndedAt != nil {
		if !e.EndedAt.After(e.StartedAt) {
			return nil, invalid("endedAt", "must be after startedAt")
		}
		e.DurationSeconds = durationSeconds(e.StartedAt, *e.EndedAt)
	}
	updated, err := s.entries.Update(ctx, e)
	return updated, notFound(err, "time entry")
}

func (s *timeEntryService) Delete(ctx context.Context, p auth.Principal, id string) error {
	if _, err := s.own(ctx, p, id); err != nil {
		return err
	}
	return notFound(s.entries.Delete(ctx, p.TenantID, id), "time entry")
}

func (s *timeEntryService) Start(ctx context.Context, p auth.Principal, in StartTimerInput) (*model.TimeEntry, error) {
	_, err := s.entries.FindRunning(ctx, p.TenantID, p.UserID)
	if err == nil {
		return nil, newError(ErrConflict, "a timer is already running")
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	now := s.now().UTC()
	e, err := s.entries.Create(ctx, &model.TimeEntry{
		ID:          uuid.NewString(),
		TenantID:    p.TenantID,
		UserID:      p.UserID,
		ProjectID:   optionalString(in.ProjectID),
		TaskID:      optionalString(in.TaskID),
		Description: in.Description,
		StartedAt:   now,
		Billable:    in.Billable,
		CreatedAt:   now,
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, newError(ErrConflict, "a timer is already running")
	}
	return e, notFound(err, "time entry")
}

func (s *timeEntryService) Stop(ctx context.Context, p auth.Principal) (*model.TimeEntry, error) {
	e, err := s.entries.FindRunning(ctx, p.TenantID, p.UserID)
	if err != nil {
		return nil, notFound(err, "running timer")
	}
	end := s.now().UTC()
	e.EndedAt = &end
	e.DurationSeconds = durationSeconds(e.StartedAt, end)
	updated, err := s.entries.Update(ctx, e)
	return updated, notFound(err, "running timer")
}

func (s *timeEntryService) Running(ctx context.Context, p auth.Principal) (*model.TimeEntry, error) {
	e, err := s.entries.FindRunning(ctx, p.TenantID, p.UserID)
	return e, notFound(err, "running timer")
}

func (s *timeEntryService) Summary(ctx context.Context, p auth.Principal, from, to time.Time) ([]model.TimeSummary, error) {
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return nil, invalid("to", "must not be before from")
	}
	sums, err := s.entries.Summary(ctx, repository.TimeEntryFilter{
		TenantID: p.TenantID,
		UserID:   p.UserID,
		From:     from,
		To:       to,
	})
	if err != nil {
		return nil, err
	}
	return nonNil(sums), nil
}
