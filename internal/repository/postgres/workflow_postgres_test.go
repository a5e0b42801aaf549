package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"crmapi/internal/model"
	"crmapi/internal/repository"
)

var workflowCols = []string{"id", "tenant_id", "name", "description", "object_id", "active", "trigger", "conditions", "actions", "created_at", "updated_at"}

func TestWorkflowPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	wf := &model.Workflow{
		ID:       "w1",
		TenantID: "t1",
		Name:     "Welcome",
		Active:   true,
		Definition: model.Definition{
			Trigger: model.Trigger{Type: model.TriggerRecordCreated},
			Actions: []model.Action{{Type: model.ActionSetStage, Config: map[string]any{"stage": "lead"}}},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	mock.ExpectQuery("INSERT INTO crm_workflows").
		WithArgs("w1", "t1", "Welcome", "", nil, true,
			[]byte(`{"type":"record_created"}`),
			[]byte(`[]`),
			[]byte(`[{"type":"set_stage","config":{"stage":"lead"}}]`),
			now, now).
		WillReturnRows(sqlmock.NewRows(workflowCols).AddRow(
			"w1", "t1", "Welcome", "", nil, true,
			`{"type":"record_created"}`, `[]`, `[{"type":"set_stage","config":{"stage":"lead"}}]`,
			now, now))

	out, err := NewWorkflowPostgres(db).Create(context.Background(), wf)
	assert.NoError(t, err)
	assert.Equal(t, model.TriggerRecordCreated, out.Trigger.Type)
	assert.Empty(t, out.Conditions)
	assert.NotNil(t, out.Conditions)
	if assert.Len(t, out.Actions, 1) {
		assert.Equal(t, "lead", out.Actions[0].Config["stage"])
	}
	assert.Nil(t, out.ObjectID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkflowPostgres_ListActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	mock.ExpectQuery(`trigger->>'type' = \$2\s+AND \(object_id IS NULL OR object_id::text = \$3\)`).
		WithArgs("t1", model.TriggerStageChanged, "o1").
		WillReturnRows(sqlmock.NewRows(workflowCols).
			AddRow("w1", "t1", "A", "", "o1", true, `{"type":"stage_changed"}`, `[{"field":"stage","operator":"equals","value":"won"}]`, `[]`, time.Now(), time.Now()).
			AddRow("w2", "t1", "B", "", nil, true, `{"type":"stage_changed"}`, `[]`, `[]`, time.Now(), time.Now()))

	items, err := NewWorkflowPostgres(db).ListActive(context.Background(), "t1", "o1", model.TriggerStageChanged)
	assert.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, "won", items[0].Conditions[0].Value)
	if assert.NotNil(t, items[0].ObjectID) {
		assert.Equal(t, "o1", *items[0].ObjectID)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkflowPostgres_Runs(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewWorkflowPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()
	recordID := "r1"

	mock.ExpectExec("INSERT INTO crm_workflow_runs").
		WithArgs("run1", "t1", "w1", "r1", model.RunFailed, "webhook: 500", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.CreateRun(ctx, &model.WorkflowRun{
		ID: "run1", TenantID: "t1", WorkflowID: "w1", RecordID: &recordID,
		Status: model.RunFailed, Error: "webhook: 500", StartedAt: now, FinishedAt: &now,
	}))

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM crm_workflow_runs").
		WithArgs("t1", "w1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("FROM crm_workflow_runs").
		WithArgs("t1", "w1", 25, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "workflow_id", "record_id", "status", "error", "started_at", "finished_at"}).
			AddRow("run1", "t1", "w1", "r1", model.RunFailed, "webhook: 500", now, now))

	res, err := repo.ListRuns(ctx, "t1", "w1", repository.PageQuery{Limit: 25})
	assert.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, model.RunFailed, res.Items[0].Status)

	mock.ExpectExec("DELETE FROM crm_workflows").WithArgs("t1", "gone").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(ctx, "t1", "gone"), sql.ErrNoRows)

	assert.NoError(t, mock.ExpectationsWereMet())
}
