package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"crmapi/internal/auth"
	"crmapi/internal/model"
	"crmapi/internal/repository"
)

type CalendarEventInput struct {
	Title       string    `json:"title" validate:"required,max=300"`
	Description string    `json:"description" validate:"max=5000"`
	Location    string    `json:"location" validate:"max=300"`
	StartAt     time.Time `json:"startAt" validate:"required"`
	EndAt       time.Time `json:"endAt" validate:"required,gtefield=StartAt"`
	AllDay      bool      `json:"allDay"`
	RecordID    *string   `json:"recordId" validate:"omitempty,uuid"`
	Attendees   []string  `json:"attendees" validate:"max=100,dive,email"`
}

type UpdateCalendarEventInput struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=300"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	Location    *string    `json:"location" validate:"omitempty,max=300"`
	StartAt     *time.Time `json:"startAt"`
	EndAt       *time.Time `json:"endAt"`
	AllDay      *bool      `json:"allDay"`
	RecordID    *string    `json:"recordId" validate:"omitempty,uuid"`
	Attendees   *[]string  `json:"attendees" validate:"omitempty,max=100,dive,email"`
}

type CalendarService interface {
	// List returns events overlapping [from, to]. Zero bounds default to a
	// window around the current month.
	List(ctx context.Context, p auth.Principal, from, to time.Time) ([]model.CalendarEvent, error)
	Get(ctx context.Context, p auth.Principal, id string) (*model.CalendarEvent, error)
	Create(ctx context.Context, p auth.Principal, in CalendarEventInput) (*model.CalendarEvent, error)
	Update(ctx context.Context, p auth.Principal, id string, in UpdateCalendarEventInput) (*model.CalendarEvent, error)
	Delete(ctx context.Context, p auth.Principal, id string) error
}

type calendarService struct {
	events repository.CalendarRepository
	now    func() time.Time
}

func NewCalendarService(events repository.CalendarRepository) CalendarService {
	return &calendarService{events: events, now: time.Now}
}

func (s *calendarService) List(ctx context.Context, p auth.Principal, from, to time.Time) ([]model.CalendarEvent, error) {
	now := s.now().UTC()
	if from.IsZero() {
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	}
	if to.IsZero() {
		to = from.AddDate(0, 3, 0)
	}
	if to.Before(from) {
		return nil, invalid("to", "must not be before from")
	}
	evs, err := s.events.ListRange(ctx, p.TenantID, from, to)
	if err != nil {
		return nil, err
	}
	return nonNil(evs), nil
}

func (s *calendarService) Get(ctx context.Context, p auth.Principal, id string) (*model.CalendarEvent, error) {
	ev, err := s.events.FindByID(ctx, p.TenantID, id)
	return ev, notFound(err, "event")
}

func (s *calendarService) Create(ctx context.Context, p auth.Principal, in CalendarEventInput) (*model.CalendarEvent, error) {
	if in.EndAt.Before(in.StartAt) {
		return nil, invalid("endAt", "must not be before startAt")
	}
	now := s.now().UTC()
	ev, err := s.events.Create(ctx, &model.CalendarEvent{
		ID:          uuid.NewString(),
		TenantID:    p.TenantID,
		Title:       in.Title,
		Description: in.Description,
		Location:    in.Location,
		StartAt:     in.StartAt.UTC(),
		EndAt:       in.EndAt.UTC(),
		AllDay:      in.AllDay,
		RecordID:    optionalString(in.RecordID),
		Attendees:   nonNil(in.Attendees),
		CreatedBy:   p.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	return ev, notFound(err, "event")
}

func (s *calendarService) Update(ctx context.Context, p auth.Principal, id string, in UpdateCalendarEventInput) (*model.CalendarEvent, error) {
	ev, err := s.events.FindByID(ctx, p.TenantID, id)
	if err != nil {
		return nil, notFound(err, "event")
	}
	if in.Title != nil {
		ev.Title = *in.Title
	}
	if in.Description != nil {
		ev.Description = *in.Description
	}
	if in.Location != nil {
		ev.Location = *in.Location
	}
	if in.StartAt != nil {
		ev.StartAt = in.StartAt.UTC()
	}
	if in.EndAt != nil {
		ev.EndAt = in.EndAt.UTC()
	}
	if in.AllDay != nil {
		ev.AllDay = *in.AllDay
	}
	if in.RecordID != nil {
		ev.RecordID = optionalString(in.RecordID)
	}
	if in.Attendees != nil {
		ev.Attendees = nonNil(*in.Attendees)
	}
	if ev.EndAt.Before(ev.StartAt) {
		return nil, invalid("endAt", "must not be before startAt")
	}
	ev.UpdatedAt = s.now().UTC()
	updated, err := s.events.Update(ctx, ev)
	return updated, notFound(err, "event")
}

func (s *calendarService) Delete(ctx context.Context, p auth.Principal, id string) error {
	return notFound(s.events.Delete(ctx, p.TenantID, id), "event")
}
