package postgres

import (
	"context"
	"database/sql"
	"time"

	"crmapi/internal/database"
	"crmapi/internal/model"
	"crmapi/internal/repository"
)

const userColumns = `id, tenant_id, email, name, created_at`

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db *sql.DB
}

func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

func scanUser(s scanner) (*model.User, error) {
	var u model.User
	if err := s.Scan(&u.ID, &u.TenantID, &u.Email, &u.Name, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateTenantWithUser inserts the tenant and its first user atomically.
func (r *UserPostgres) CreateTenantWithUser(ctx context.Context, tenant *model.Tenant, user *model.User) (*model.User, error) {
	var out *model.User
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		const qTenant = `INSERT INTO tenants (id, name, created_at) VALUES ($1, $2, $3)`
		if _, err := tx.ExecContext(ctx, qTenant, tenant.ID, tenant.Name, tenant.CreatedAt); err != nil {
			return mapError(err)
		}
		const qUser = `
			INSERT INTO users (id, tenant_id, email, name, created_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING ` + userColumns
		u, err := scanUser(tx.QueryRowContext(ctx, qUser, user.ID, tenant.ID, user.Email, user.Name, user.CreatedAt))
		if err != nil {
			return mapError(err)
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *UserPostgres) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	return scanUser(r.db.QueryRowContext(ctx, q, email))
}

func (r *UserPostgres) FindByID(ctx context.Context, tenantID, id string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE tenant_id = $1 AND id = $2`
	return scanUser(r.db.QueryRowContext(ctx, q, tenantID, id))
}

func (r *UserPostgres) DeleteTenant(ctx context.Context, tenantID string) error {
	const q = `DELETE FROM tenants WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, tenantID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// EmailCodePostgres is a PostgreSQL implementation of repository.EmailCodeRepository.
type EmailCodePostgres struct {
	db *sql.DB
}

func NewEmailCodePostgres(db *sql.DB) *EmailCodePostgres {
	return &EmailCodePostgres{db: db}
}

var _ repository.EmailCodeRepository = (*EmailCodePostgres)(nil)

func (r *EmailCodePostgres) Create(ctx context.Context, c *model.EmailCode) error {
	const q = `
		INSERT INTO email_codes (id, email, code_hash, expires_at, attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, q, c.ID, c.Email, c.CodeHash, c.ExpiresAt, c.Attempts, c.CreatedAt)
	return err
}

func (r *EmailCodePostgres) Latest(ctx context.Context, email string) (*model.EmailCode, error) {
	const q = `
		SELECT id, email, code_hash, expires_at, attempts, consumed_at, created_at
		FROM email_codes
		WHERE lower(email) = lower($1) AND consumed_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1`
	var c model.EmailCode
	if err := r.db.QueryRowContext(ctx, q, email).Scan(
		&c.ID,
		&c.Email,
		&c.CodeHash,
		&c.ExpiresAt,
		&c.Attempts,
		&c.ConsumedAt,
		&c.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *EmailCodePostgres) IncrementAttempts(ctx context.Context, id string) error {
	const q = `UPDATE email_codes SET attempts = attempts + 1 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *EmailCodePostgres) Consume(ctx context.Context, id string, at time.Time) error {
	const q = `UPDATE email_codes SET consumed_at = $2 WHERE id = $1 AND consumed_at IS NULL`
	res, err := r.db.ExecContext(ctx, q, id, at)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
