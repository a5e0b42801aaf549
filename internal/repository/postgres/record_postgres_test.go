package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"crmapi/internal/model"
	"crmapi/internal/repository"
)

var recordCols = []string{"id", "tenant_id", "object_id", "data", "owner_id", "stage", "archived", "created_at", "updated_at"}

func TestRecordPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewRecordPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()
	stage := "lead"

	rec := &model.Record{
		ID:        "r1",
		TenantID:  "t1",
		ObjectID:  "o1",
		Data:      map[string]any{"name": "Acme"},
		Stage:     &stage,
		CreatedAt: now,
		UpdatedAt: now,
	}

	t.Run("success", func(t *testing.T) {
		rows := sqlmock.NewRows(recordCols).
			AddRow("r1", "t1", "o1", `{"name":"Acme"}`, nil, "lead", false, now, now)
		mock.ExpectQuery("INSERT INTO crm_records").
			WithArgs("r1", "t1", "o1", []byte(`{"name":"Acme"}`), nil, "lead", false, now, now).
			WillReturnRows(rows)

		out, err := repo.Create(ctx, rec)
		assert.NoError(t, err)
		assert.Equal(t, "Acme", out.Data["name"])
		assert.Nil(t, out.OwnerID)
		if assert.NotNil(t, out.Stage) {
			assert.Equal(t, "lead", *out.Stage)
		}
	})

	t.Run("unknown object", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO crm_records").
			WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "crm_records_object_id_fkey"})

		out, err := repo.Create(ctx, rec)
		assert.Nil(t, out)
		assert.ErrorIs(t, err, repository.ErrInvalidReference)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewRecordPostgres(db)
	ctx := context.Background()

	t.Run("filters and second page", func(t *testing.T) {
		archived := false
		f := repository.RecordFilter{
			TenantID: "t1",
			ObjectID: "o1",
			Stage:    "won",
			Archived: &archived,
			Search:   "acme",
			SortBy:   "updatedAt",
			Desc:     true,
		}

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM crm_records WHERE tenant_id = \$1 AND object_id = \$2 AND stage = \$3 AND archived = \$4 AND EXISTS \(SELECT 1 FROM jsonb_each_text\(data\) AS kv WHERE kv.value ILIKE '%' \|\| \$5 \|\| '%' ESCAPE '\\'\)`).
			WithArgs("t1", "o1", "won", false, "acme").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(120))

		rows := sqlmock.NewRows(recordCols)
		for i := 0; i < 50; i++ {
			rows.AddRow(fmt.Sprintf("r%d", i), "t1", "o1", `{}`, nil, "won", false, time.Now(), time.Now())
		}
		mock.ExpectQuery(`SELECT (.+) FROM crm_records WHERE (.+) ORDER BY updated_at DESC, id DESC LIMIT \$6 OFFSET \$7`).
			WithArgs("t1", "o1", "won", false, "acme", 50, 50).
			WillReturnRows(rows)

		res, err := repo.List(ctx, f, repository.PageQuery{Limit: 50, Offset: 50})
		assert.NoError(t, err)
		assert.Equal(t, 120, res.Total)
		assert.Len(t, res.Items, 50)
	})

	t.Run("unknown sort column falls back", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM crm_records WHERE tenant_id = \$1`).
			WithArgs("t1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`ORDER BY created_at ASC, id ASC LIMIT \$2 OFFSET \$3`).
			WithArgs("t1", 25, 0).
			WillReturnRows(sqlmock.NewRows(recordCols))

		res, err := repo.List(ctx, repository.RecordFilter{TenantID: "t1", SortBy: "data; DROP TABLE"}, repository.PageQuery{Limit: 25})
		assert.NoError(t, err)
		assert.Equal(t, 0, res.Total)
		assert.NotNil(t, res.Items)
	})

	t.Run("search wildcards match literally", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM crm_records WHERE tenant_id = \$1 AND EXISTS`).
			WithArgs("t1", `50\%\_off`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`LIMIT \$3 OFFSET \$4`).
			WithArgs("t1", `50\%\_off`, 25, 0).
			WillReturnRows(sqlmock.NewRows(recordCols))

		_, err := repo.List(ctx, repository.RecordFilter{TenantID: "t1", Search: "50%_off"}, repository.PageQuery{Limit: 25})
		assert.NoError(t, err)
	})

	t.Run("count error", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT").WillReturnError(sql.ErrConnDone)

		res, err := repo.List(ctx, repository.RecordFilter{TenantID: "t1"}, repository.PageQuery{Limit: 25})
		assert.Nil(t, res)
		assert.ErrorIs(t, err, sql.ErrConnDone)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEscapeLike(t *testing.T) {
	cases := map[string]string{
		"acme":       "acme",
		"100%":       `100\%`,
		"first_name": `first\_name`,
		`C:\temp`:    `C:\\temp`,
	}
	for in, want := range cases {
		assert.Equal(t, want, escapeLike(in), in)
	}
}

func TestRecordPostgres_UpdateAndDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewRecordPostgres(db)
	ctx := context.Background()

	mock.ExpectQuery("UPDATE crm_records").WillReturnError(sql.ErrNoRows)
	out, err := repo.Update(ctx, &model.Record{ID: "missing", TenantID: "t1"})
	assert.Nil(t, out)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	mock.ExpectExec("DELETE FROM crm_records").WithArgs("t1", "missing").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(ctx, "t1", "missing"), sql.ErrNoRows)

	mock.ExpectExec("DELETE FROM crm_records").WithArgs("t1", "r1").WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.Delete(ctx, "t1", "r1"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRelationPostgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewRelationPostgres(db)
	ctx := context.Background()
	cols := []string{"id", "tenant_id", "type", "from_record_id", "to_record_id", "created_at"}

	t.Run("duplicate edge", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO crm_relations").
			WillReturnError(&pgconn.PgError{Code: "23505"})

		out, err := repo.Create(ctx, &model.Relation{ID: "rel1", TenantID: "t1", Type: "company", FromRecordID: "a", ToRecordID: "b"})
		assert.Nil(t, out)
		assert.ErrorIs(t, err, repository.ErrDuplicate)
	})

	t.Run("list by record", func(t *testing.T) {
		rows := sqlmock.NewRows(cols).
			AddRow("rel1", "t1", "company", "a", "b", time.Now()).
			AddRow("rel2", "t1", "contact", "c", "a", time.Now())
		mock.ExpectQuery(`FROM crm_relations\s+WHERE tenant_id = \$1 AND \(from_record_id = \$2 OR to_record_id = \$2\)`).
			WithArgs("t1", "a").
			WillReturnRows(rows)

		items, err := repo.ListByRecord(ctx, "t1", "a")
		assert.NoError(t, err)
		assert.Len(t, items, 2)
		assert.Equal(t, "a", items[1].ToRecordID)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
