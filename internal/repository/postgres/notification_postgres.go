package postgres

import (
	"context"
	"database/sql"
	"time"

	"crmapi/internal/model"
	"crmapi/internal/repository"
)

const notificationColumns = `id, tenant_id, user_id, type, title, body, link, read_at, created_at`

// NotificationPostgres is a PostgreSQL implementation of repository.NotificationRepository.
// Every query is scoped to the recipient.
type NotificationPostgres struct {
	db *sql.DB
}

func NewNotificationPostgres(db *sql.DB) *NotificationPostgres {
	return &NotificationPostgres{db: db}
}

var _ repository.NotificationRepository = (*NotificationPostgres)(nil)

func scanNotification(s scanner) (*model.Notification, error) {
	var n model.Notification
	if err := s.Scan(
		&n.ID,
		&n.TenantID,
		&n.UserID,
		&n.Type,
		&n.Title,
		&n.Body,
		&n.Link,
		&n.ReadAt,
		&n.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NotificationPostgres) Create(ctx context.Context, n *model.Notification) (*model.Notification, error) {
	const q = `
		INSERT INTO notifications (id, tenant_id, user_id, type, title, body, link, read_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + notificationColumns
	row := r.db.QueryRowContext(ctx, q,
		n.ID,
		n.TenantID,
		n.UserID,
		n.Type,
		n.Title,
		n.Body,
		n.Link,
		n.ReadAt,
		n.CreatedAt,
	)
	out, err := scanNotification(row)
	return out, mapError(err)
}

func (r *NotificationPostgres) List(ctx context.Context, tenantID, userID string, unreadOnly bool, pq repository.PageQuery) (*repository.PageResult[model.Notification], error) {
	var w whereBuilder
	w.add("tenant_id = $%d", tenantID)
	w.add("user_id = $%d", userID)
	if unreadOnly {
		w.addRaw("read_at IS NULL")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, err
	}

	q := `SELECT ` + notificationColumns + ` FROM notifications` + w.String() +
		` ORDER BY created_at DESC, id DESC LIMIT ` + w.next(pq.Limit) + ` OFFSET ` + w.next(pq.Offset)
	rows, err := r.db.QueryContext(ctx, q, w.args...)
	if err != nil {
		return nil, err
	}
	items, err := collect(rows, scanNotification)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Notification]{Items: items, Total: total}, nil
}

func (r *NotificationPostgres) CountUnread(ctx context.Context, tenantID, userID string) (int, error) {
	const q = `SELECT COUNT(*) FROM notifications WHERE tenant_id = $1 AND user_id = $2 AND read_at IS NULL`
	var n int
	if err := r.db.QueryRowContext(ctx, q, tenantID, userID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// MarkRead keeps the first read timestamp.
func (r *NotificationPostgres) MarkRead(ctx context.Context, tenantID, userID, id string, at time.Time) error {
	const q = `
		UPDATE notifications
		SET read_at = COALESCE(read_at, $4)
		WHERE tenant_id = $1 AND user_id = $2 AND id = $3`
	res, err := r.db.ExecContext(ctx, q, tenantID, userID, id, at)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *NotificationPostgres) MarkAllRead(ctx context.Context, tenantID, userID string, at time.Time) (int64, error) {
	const q = `UPDATE notifications SET read_at = $3 WHERE tenant_id = $1 AND user_id = $2 AND read_at IS NULL`
	res, err := r.db.ExecContext(ctx, q, tenantID, userID, at)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *NotificationPostgres) Delete(ctx context.Context, tenantID, userID, id string) error {
	const q = `DELETE FROM notifications WHERE tenant_id = $1 AND user_id = $2 AND id = $3`
	res, err := r.db.ExecContext(ctx, q, tenantID, userID, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
