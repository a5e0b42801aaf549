package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"crmapi/internal/model"
	repoMocks "crmapi/internal/repository/mocks"
	"crmapi/internal/validation"
	"crmapi/internal/workflow"
)

type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) Execute(ctx context.Context, wf *model.Workflow, ev workflow.Event) *model.WorkflowRun {
	return m.Called(ctx, wf, ev).Get(0).(*model.WorkflowRun)
}

type workflowFixture struct {
	workflows *repoMocks.MockWorkflowRepository
	objects   *repoMocks.MockObjectRepository
	records   *repoMocks.MockRecordRepository
	runner    *mockRunner
	svc       WorkflowService
}

func newWorkflowFixture() *workflowFixture {
	f := &workflowFixture{
		workflows: new(repoMocks.MockWorkflowRepository),
		objects:   new(repoMocks.MockObjectRepository),
		records:   new(repoMocks.MockRecordRepository),
		runner:    new(mockRunner),
	}
	f.svc = NewWorkflowService(f.workflows, f.objects, f.records, f.runner, validation.New())
	return f
}

func node(id, typ string, y float64, data any) workflow.Node {
	raw, _ := json.Marshal(data)
	return workflow.Node{ID: id, Type: typ, Position: workflow.Position{X: 0, Y: y}, Data: raw}
}

func TestWorkflowService_CreateFromGraph(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture()

	g := workflow.Graph{Nodes: []workflow.Node{
		node("b", workflow.NodeAction, 300, model.Action{Type: model.ActionCreateTask, Config: map[string]any{"title": "Call"}}),
		node("t", workflow.NodeTrigger, 0, model.Trigger{Type: model.TriggerRecordCreated}),
		node("a", workflow.NodeAction, 150, model.Action{Type: model.ActionSetStage, Config: map[string]any{"stage": "lead"}}),
	}}
	f.workflows.On("Create", ctx, mock.MatchedBy(func(wf *model.Workflow) bool {
		return wf.Active &&
			wf.Trigger.Type == model.TriggerRecordCreated &&
			len(wf.Actions) == 2 &&
			wf.Actions[0].Type == model.ActionSetStage &&
			wf.Actions[1].Type == model.ActionCreateTask &&
			wf.Conditions != nil
	})).Return(&model.Workflow{ID: "w1"}, nil)

	wf, err := f.svc.Create(ctx, principal, WorkflowInput{Name: "Onboard", Graph: &g})
	require.NoError(t, err)
	assert.Equal(t, "w1", wf.ID)
	f.workflows.AssertExpectations(t)
}

func TestWorkflowService_CreateRejects(t *testing.T) {
	ctx := context.Background()

	t.Run("graph without trigger", func(t *testing.T) {
		f := newWorkflowFixture()
		g := workflow.Graph{Nodes: []workflow.Node{node("a", workflow.NodeAction, 0, model.Action{Type: model.ActionSetStage})}}

		_, err := f.svc.Create(ctx, principal, WorkflowInput{Name: "x", Graph: &g})
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "graph", verr.Fields[0].Field)
	})

	t.Run("compiled definition is validated", func(t *testing.T) {
		f := newWorkflowFixture()
		g := workflow.Graph{Nodes: []workflow.Node{
			node("t", workflow.NodeTrigger, 0, model.Trigger{Type: model.TriggerRecordCreated}),
			node("a", workflow.NodeAction, 100, model.Action{Type: "teleport"}),
		}}

		_, err := f.svc.Create(ctx, principal, WorkflowInput{Name: "x", Graph: &g})
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "actions[0].type", verr.Fields[0].Field)
	})

	t.Run("unknown object", func(t *testing.T) {
		f := newWorkflowFixture()
		obj := "o9"
		f.objects.On("FindByID", ctx, "t1", "o9").Return(nil, sql.ErrNoRows)

		_, err := f.svc.Create(ctx, principal, WorkflowInput{
			Name:     "x",
			ObjectID: &obj,
			Trigger:  &model.Trigger{Type: model.TriggerRecordCreated},
		})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestWorkflowService_Graph(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture()
	f.workflows.On("FindByID", ctx, "t1", "w1").Return(&model.Workflow{ID: "w1", Definition: model.Definition{
		Trigger: model.Trigger{Type: model.TriggerStageChanged},
		Actions: []model.Action{{Type: model.ActionSetStage}, {Type: model.ActionWebhook}, {Type: model.ActionSendEmail}},
	}}, nil)

	g, err := f.svc.Graph(ctx, principal, "w1")
	require.NoError(t, err)
	assert.Len(t, g.Nodes, 4)
	assert.Len(t, g.Edges, 3)

	def, err := f.svc.Compile(ctx, *g)
	require.NoError(t, err)
	assert.Equal(t, model.ActionSetStage, def.Actions[0].Type)
	assert.Equal(t, model.ActionWebhook, def.Actions[1].Type)
	assert.Equal(t, model.ActionSendEmail, def.Actions[2].Type)
}

func TestWorkflowService_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("executes against the record", func(t *testing.T) {
		f := newWorkflowFixture()
		wf := &model.Workflow{ID: "w1", TenantID: "t1"}
		rec := &model.Record{ID: "r1", ObjectID: "o1"}
		f.workflows.On("FindByID", ctx, "t1", "w1").Return(wf, nil)
		f.records.On("FindByID", ctx, "t1", "r1").Return(rec, nil)
		f.runner.On("Execute", ctx, wf, workflow.Event{
			Type: model.TriggerManual, TenantID: "t1", ObjectID: "o1", ActorID: "u1", Record: rec,
		}).Return(&model.WorkflowRun{Status: model.RunSucceeded})

		run, err := f.svc.Run(ctx, principal, "w1", RunWorkflowInput{RecordID: "r1"})
		require.NoError(t, err)
		assert.Equal(t, model.RunSucceeded, run.Status)
	})

	t.Run("record of another object", func(t *testing.T) {
		f := newWorkflowFixture()
		obj := "o2"
		f.workflows.On("FindByID", ctx, "t1", "w1").Return(&model.Workflow{ID: "w1", ObjectID: &obj}, nil)
		f.records.On("FindByID", ctx, "t1", "r1").Return(&model.Record{ID: "r1", ObjectID: "o1"}, nil)

		_, err := f.svc.Run(ctx, principal, "w1", RunWorkflowInput{RecordID: "r1"})
		var verr *ValidationError
		assert.True(t, errors.As(err, &verr))
		f.runner.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing workflow", func(t *testing.T) {
		f := newWorkflowFixture()
		f.workflows.On("FindByID", ctx, "t1", "w9").Return(nil, sql.ErrNoRows)

		_, err := f.svc.Run(ctx, principal, "w9", RunWorkflowInput{RecordID: "r1"})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
