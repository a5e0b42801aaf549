package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crmapi/internal/config"
)

func TestBuildPostgresDSN(t *testing.T) {
	base := config.DatabaseConfig{Host: "db", Port: "5432", User: "crm", Name: "crm"}

	tests := []struct {
		name   string
		modify func(c *config.DatabaseConfig)
		want   string
	}{
		{
			name:   "minimal",
			modify: func(c *config.DatabaseConfig) {},
			want:   "postgres://crm@db:5432/crm",
		},
		{
			name: "password sslmode and application name",
			modify: func(c *config.DatabaseConfig) {
				c.Password = "s3cret"
				c.SSLMode = "require"
				c.AppName = "crmapi"
			},
			want: "postgres://crm:s3cret@db:5432/crm?application_name=crmapi&sslmode=require",
		},
		{
			name:   "ipv6 host",
			modify: func(c *config.DatabaseConfig) { c.Host = "::1" },
			want:   "postgres://crm@[::1]:5432/crm",
		},
		{
			name:   "password is escaped",
			modify: func(c *config.DatabaseConfig) { c.Password = "p@ss/word" },
			want:   "postgres://crm:p%40ss%2Fword@db:5432/crm",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.modify(&c)
			got, err := BuildPostgresDSN(c)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildPostgresDSN_MissingParts(t *testing.T) {
	for name, c := range map[string]config.DatabaseConfig{
		"host": {Port: "5432", User: "crm", Name: "crm"},
		"port": {Host: "db", User: "crm", Name: "crm"},
		"user": {Host: "db", Port: "5432", Name: "crm"},
		"name": {Host: "db", Port: "5432", User: "crm"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := BuildPostgresDSN(c)
			assert.EqualError(t, err, "invalid database config: host, port, user, and name are required")
		})
	}
}

// stubOpen swaps sqlOpen for the duration of a test.
func stubOpen(t *testing.T, fn func(driverName, dsn string) (*sql.DB, error)) {
	t.Helper()
	orig := sqlOpen
	sqlOpen = fn
	t.Cleanup(func() { sqlOpen = orig })
}

func TestNewPostgres(t *testing.T) {
	ctx := context.Background()
	conf := config.DatabaseConfig{
		Host:               "db",
		Port:               "5432",
		User:               "crm",
		Name:               "crm",
		MaxOpenConns:       10,
		MaxIdleConns:       5,
		ConnMaxLifetimeSec: 300,
	}

	tests := []struct {
		name       string
		conf       config.DatabaseConfig
		setupMocks func(t *testing.T)
		wantErrMsg string
	}{
		{
			name: "ping ok",
			conf: conf,
			setupMocks: func(t *testing.T) {
				db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
				require.NoError(t, err)
				mock.ExpectPing()
				stubOpen(t, func(_, dsn string) (*sql.DB, error) {
					assert.Equal(t, "postgres://crm@db:5432/crm", dsn)
					return db, nil
				})
				t.Cleanup(func() { assert.NoError(t, mock.ExpectationsWereMet()) })
			},
		},
		{
			name: "open fails",
			conf: conf,
			setupMocks: func(t *testing.T) {
				stubOpen(t, func(string, string) (*sql.DB, error) { return nil, errors.New("open error") })
			},
			wantErrMsg: "sql open: open error",
		},
		{
			name: "ping fails",
			conf: conf,
			setupMocks: func(t *testing.T) {
				db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
				require.NoError(t, err)
				mock.ExpectPing().WillReturnError(errors.New("connection refused"))
				mock.ExpectClose()
				stubOpen(t, func(string, string) (*sql.DB, error) { return db, nil })
				t.Cleanup(func() { assert.NoError(t, mock.ExpectationsWereMet()) })
			},
			wantErrMsg: "db ping: connection refused",
		},
		{
			name:       "invalid config",
			conf:       config.DatabaseConfig{},
			setupMocks: func(t *testing.T) {},
			wantErrMsg: "invalid database config",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMocks(t)

			db, err := NewPostgres(ctx, tt.conf)
			if tt.wantErrMsg != "" {
				assert.ErrorContains(t, err, tt.wantErrMsg)
				assert.Nil(t, db)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 10, db.Stats().MaxOpenConnections)
			db.Close()
		})
	}
}

func TestWithTx(t *testing.T) {
	ctx := context.Background()

	t.Run("commit", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO tenants").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = WithTx(ctx, db, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, "INSERT INTO tenants (id) VALUES ($1)", "t1")
			return err
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback on error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		boom := errors.New("boom")
		err = WithTx(ctx, db, func(tx *sql.Tx) error { return boom })
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin().WillReturnError(errors.New("no conn"))

		err = WithTx(ctx, db, func(tx *sql.Tx) error { return nil })
		assert.ErrorContains(t, err, "begin tx: no conn")
	})
}
