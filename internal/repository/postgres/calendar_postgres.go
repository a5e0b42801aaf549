package postgres

import (
	"context"
	"database/sql"
	"time"

	"crmapi/internal/model"
	"crmapi/internal/repository"
)

const calendarColumns = `id, tenant_id, title, description, location, start_at, end_at, all_day, record_id, attendees, created_by, created_at, updated_at`

type CalendarPostgres struct {
	db *sql.DB
}

func NewCalendarPostgres(db *sql.DB) *CalendarPostgres {
	return &CalendarPostgres{db: db}
}

var _ repository.CalendarRepository = (*CalendarPostgres)(nil)

func scanEvent(s scanner) (*model.CalendarEvent, error) {
	var (
		ev        model.CalendarEvent
		attendees []byte
	)
	if err := s.Scan(
		&ev.ID,
		&ev.TenantID,
		&ev.Title,
		&ev.Description,
		&ev.Location,
		&ev.StartAt,
		&ev.EndAt,
		&ev.AllDay,
		&ev.RecordID,
		&attendees,
		&ev.CreatedBy,
		&ev.CreatedAt,
		&ev.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := decodeJSON(attendees, &ev.Attendees); err != nil {
		return nil, err
	}
	if ev.Attendees == nil {
		ev.Attendees = []string{}
	}
	return &ev, nil
}

func (r *CalendarPostgres) Create(ctx context.Context, ev *model.CalendarEvent) (*model.CalendarEvent, error) {
	attendees, err := jsonb(ev.Attendees, "[]")
	if err != nil {
		return nil, err
	}
	const q = `
		INSERT INTO calendar_events (id, tenant_id, title, description, location, start_at, end_at, all_day, record_id, attendees, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + calendarColumns
	row := r.db.QueryRowContext(ctx, q,
		ev.ID,
		ev.TenantID,
		ev.Title,
		ev.Description,
		ev.Location,
		ev.StartAt,
		ev.EndAt,
		ev.AllDay,
		ev.RecordID,
		attendees,
		ev.CreatedBy,
		ev.CreatedAt,
		ev.UpdatedAt,
	)
	out, err := scanEvent(row)
	return out, mapError(err)
}

func (r *CalendarPostgres) FindByID(ctx context.Context, tenantID, id string) (*model.CalendarEvent, error) {
	const q = `SELECT ` + calendarColumns + ` FROM calendar_events WHERE tenant_id = $1 AND id = $2`
	return scanEvent(r.db.QueryRowContext(ctx, q, tenantID, id))
}

// ListRange returns events that overlap [from, to], ordered by start.
func (r *CalendarPostgres) ListRange(ctx context.Context, tenantID string, from, to time.Time) ([]model.CalendarEvent, error) {
	const q = `
		SELECT ` + calendarColumns + `
		FROM calendar_events
		WHERE tenant_id = $1 AND start_at <= $3 AND end_at >= $2
		ORDER BY start_at, id`
	rows, err := r.db.QueryContext(ctx, q, tenantID, from, to)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanEvent)
}

func (r *CalendarPostgres) Update(ctx context.Context, ev *model.CalendarEvent) (*model.CalendarEvent, error) {
	attendees, err := jsonb(ev.Attendees, "[]")
	if err != nil {
		return nil, err
	}
	const q = `
		UPDATE calendar_events
		SET title = $3, description = $4, location = $5, start_at = $6, end_at = $7, all_day = $8, record_id = $9, attendees = $10, updated_at = $11
		WHERE tenant_id = $1 AND id = $2
		RETURNING ` + calendarColumns
	row := r.db.QueryRowContext(ctx, q,
		ev.TenantID,
		ev.ID,
		ev.Title,
		ev.Description,
		ev.Location,
		ev.StartAt,
		ev.EndAt,
		ev.AllDay,
		ev.RecordID,
		attendees,
		ev.UpdatedAt,
	)
	out, err := scanEvent(row)
	return out, mapError(err)
}

func (r *CalendarPostgres) Delete(ctx context.Context, tenantID, id string) error {
	const q = `DELETE FROM calendar_events WHERE tenant_id = $1 AND id = $2`
	res, err := r.db.ExecContext(ctx, q, tenantID, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
