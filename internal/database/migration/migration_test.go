package migration

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crmapi/internal/logger"
)

func TestEnsureMigrated(t *testing.T) {
	ctx := context.Background()
	log := logger.Discard()
	check := regexp.QuoteMeta("SELECT to_regclass('" + sentinelTable + "') IS NOT NULL")

	t.Run("skips when schema exists", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(check).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		assert.NoError(t, EnsureMigrated(ctx, db, log, "localhost"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("applies every step in order", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT to_regclass('" + sentinelTable + "') IS NOT NULL").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		for _, s := range steps {
			mock.ExpectExec(s.SQL).WillReturnResult(sqlmock.NewResult(0, 0))
		}

		assert.NoError(t, EnsureMigrated(ctx, db, log, "localhost"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stops at failing step", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT to_regclass('" + sentinelTable + "') IS NOT NULL").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectExec(steps[0].SQL).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(steps[1].SQL).WillReturnError(errors.New("permission denied"))

		err = EnsureMigrated(ctx, db, log, "localhost")
		assert.ErrorContains(t, err, "migration step "+steps[1].Name+" failed")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("check error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(check).WillReturnError(errors.New("conn refused"))

		err = EnsureMigrated(ctx, db, log, "localhost")
		assert.ErrorContains(t, err, "failed to check sentinel table")
	})
}

func TestSteps_NamesAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, s := range steps {
		assert.False(t, seen[s.Name], "duplicate step %s", s.Name)
		seen[s.Name] = true
	}
	assert.Equal(t, "create_table_crm_workflow_runs", steps[len(steps)-1].Name)
}
