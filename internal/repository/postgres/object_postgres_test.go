package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"crmapi/internal/model"
	"crmapi/internal/repository"
)

var objectCols = []string{"id", "tenant_id", "name", "label", "plural_label", "description", "icon", "position", "stages", "is_system", "archived", "created_at", "updated_at"}

func TestObjectPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewObjectPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	obj := &model.CrmObject{
		ID:          "obj-1",
		TenantID:    "t1",
		Name:        "deals",
		Label:       "Deal",
		PluralLabel: "Deals",
		Stages:      []string{"lead", "won"},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	t.Run("success", func(t *testing.T) {
		rows := sqlmock.NewRows(objectCols).
			AddRow(obj.ID, obj.TenantID, obj.Name, obj.Label, obj.PluralLabel, "", "", 0, `["lead","won"]`, false, false, now, now)
		mock.ExpectQuery("INSERT INTO crm_objects").
			WithArgs(obj.ID, obj.TenantID, obj.Name, obj.Label, obj.PluralLabel, "", "", 0, []byte(`["lead","won"]`), false, false, now, now).
			WillReturnRows(rows)

		out, err := repo.Create(ctx, obj)
		assert.NoError(t, err)
		assert.Equal(t, []string{"lead", "won"}, out.Stages)
	})

	t.Run("duplicate name", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO crm_objects").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "crm_objects_tenant_id_name_key"})

		out, err := repo.Create(ctx, obj)
		assert.Nil(t, out)
		assert.ErrorIs(t, err, repository.ErrDuplicate)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestObjectPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewObjectPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows(objectCols).
			AddRow("obj-1", "t1", "contacts", "Contact", "Contacts", "", "user", 1, `[]`, true, false, time.Now(), time.Now())
		mock.ExpectQuery("SELECT (.+) FROM crm_objects WHERE tenant_id = (.+) AND id = (.+)").
			WithArgs("t1", "obj-1").
			WillReturnRows(rows)

		obj, err := repo.FindByID(ctx, "t1", "obj-1")
		assert.NoError(t, err)
		assert.Equal(t, "contacts", obj.Name)
		assert.True(t, obj.IsSystem)
		assert.Empty(t, obj.Stages)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM crm_objects").
			WithArgs("t1", "missing").
			WillReturnError(sql.ErrNoRows)

		obj, err := repo.FindByID(ctx, "t1", "missing")
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, obj)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestObjectPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewObjectPostgres(db)
	ctx := context.Background()

	t.Run("active only", func(t *testing.T) {
		rows := sqlmock.NewRows(objectCols).
			AddRow("o1", "t1", "contacts", "Contact", "Contacts", "", "", 0, `[]`, true, false, time.Now(), time.Now()).
			AddRow("o2", "t1", "deals", "Deal", "Deals", "", "", 1, `["lead"]`, true, false, time.Now(), time.Now())
		mock.ExpectQuery("SELECT (.+) FROM crm_objects WHERE tenant_id = (.+) AND archived = false ORDER BY position, name").
			WithArgs("t1").
			WillReturnRows(rows)

		items, err := repo.List(ctx, "t1", false)
		assert.NoError(t, err)
		assert.Len(t, items, 2)
		assert.Equal(t, []string{"lead"}, items[1].Stages)
	})

	t.Run("including archived", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM crm_objects WHERE tenant_id = \\$1 ORDER BY position, name").
			WithArgs("t1").
			WillReturnRows(sqlmock.NewRows(objectCols))

		items, err := repo.List(ctx, "t1", true)
		assert.NoError(t, err)
		assert.Empty(t, items)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestObjectPostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewObjectPostgres(db)
	ctx := context.Background()

	mock.ExpectExec("DELETE FROM crm_objects").WithArgs("t1", "o1").WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.Delete(ctx, "t1", "o1"))

	mock.ExpectExec("DELETE FROM crm_objects").WithArgs("t1", "missing").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(ctx, "t1", "missing"), sql.ErrNoRows)

	mock.ExpectExec("DELETE FROM crm_objects").WithArgs("t1", "o2").
		WillReturnError(&pgconn.PgError{Code: "23503"})
	assert.ErrorIs(t, repo.Delete(ctx, "t1", "o2"), repository.ErrInvalidReference)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestObjectPostgres_CountRecords(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM crm_records").
		WithArgs("t1", "o1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	n, err := NewObjectPostgres(db).CountRecords(context.Background(), "t1", "o1")
	assert.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFieldPostgres_ListByObject(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	cols := []string{"id", "tenant_id", "object_id", "name", "label", "type", "required", "position", "config", "created_at", "updated_at"}
	rows := sqlmock.NewRows(cols).
		AddRow("f1", "t1", "o1", "email", "Email", "email", true, 0, `{}`, time.Now(), time.Now()).
		AddRow("f2", "t1", "o1", "tier", "Tier", "select", false, 1, `{"options":["a","b"]}`, time.Now(), time.Now())
	mock.ExpectQuery("SELECT (.+) FROM crm_fields WHERE tenant_id = (.+) AND object_id = (.+) ORDER BY position, name").
		WithArgs("t1", "o1").
		WillReturnRows(rows)

	fields, err := NewFieldPostgres(db).ListByObject(context.Background(), "t1", "o1")
	assert.NoError(t, err)
	assert.Len(t, fields, 2)
	assert.Equal(t, model.FieldEmail, fields[0].Type)
	assert.Equal(t, []string{"a", "b"}, fields[1].Options())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFieldPostgres_Update_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	mock.ExpectQuery("UPDATE crm_fields").WillReturnError(sql.ErrNoRows)

	out, err := NewFieldPostgres(db).Update(context.Background(), &model.Field{ID: "f1", TenantID: "t1"})
	assert.Nil(t, out)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
