package model

import "time"

// Trigger types.
const (
	TriggerRecordCreated = "record_created"
	TriggerRecordUpdated = "record_updated"
	TriggerRecordDeleted = "record_deleted"
	TriggerStageChanged  = "stage_changed"
	TriggerManual        = "manual"
)

// Action types.
const (
	ActionUpdateField        = "update_field"
	ActionSetStage           = "set_stage"
	ActionCreateTask         = "create_task"
	ActionCreateNotification = "create_notification"
	ActionSendEmail          = "send_email"
	ActionWebhook            = "webhook"
)

// Condition operators.
const (
	OpEquals     = "equals"
	OpNotEquals  = "not_equals"
	OpContains   = "contains"
	OpGreater    = "gt"
	OpLess       = "lt"
	OpIsEmpty    = "is_empty"
	OpIsNotEmpty = "is_not_empty"
)

// TriggerTypes and ActionTypes are the accepted values for validation.
var (
	TriggerTypes = []string{TriggerRecordCreated, TriggerRecordUpdated, TriggerRecordDeleted, TriggerStageChanged, TriggerManual}
	ActionTypes  = []string{ActionUpdateField, ActionSetStage, ActionCreateTask, ActionCreateNotification, ActionSendEmail, ActionWebhook}
	Operators    = []string{OpEquals, OpNotEquals, OpContains, OpGreater, OpLess, OpIsEmpty, OpIsNotEmpty}
)

// Trigger starts a workflow.
type Trigger struct {
	Type   string         `json:"type" validate:"required,oneof=record_created record_updated record_deleted stage_changed manual"`
	Config map[string]any `json:"config,omitempty"`
}

// Condition filters the record a workflow runs against.
type Condition struct {
	Field    string `json:"field" validate:"required"`
	Operator string `json:"operator" validate:"required,oneof=equals not_equals contains gt lt is_empty is_not_empty"`
	Value    any    `json:"value,omitempty"`
}

// Action is one step of a workflow.
type Action struct {
	Type   string         `json:"type" validate:"required,oneof=update_field set_stage create_task create_notification send_email webhook"`
	Config map[string]any `json:"config,omitempty"`
}

// Definition is the serialized automation: trigger, conditions, ordered actions.
type Definition struct {
	Trigger    Trigger     `json:"trigger" validate:"required"`
	Conditions []Condition `json:"conditions" validate:"dive"`
	Actions    []Action    `json:"actions" validate:"dive"`
}

// Workflow is a stored automation definition.
type Workflow struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenantId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ObjectID    *string   `json:"objectId"`
	Active      bool      `json:"active"`
	Definition
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Run statuses.
const (
	RunSucceeded = "succeeded"
	RunFailed    = "failed"
	RunSkipped   = "skipped"
)

// WorkflowRun records one execution attempt.
type WorkflowRun struct {
	ID         string     `json:"id"`
	TenantID   string     `json:"tenantId"`
	WorkflowID string     `json:"workflowId"`
	RecordID   *string    `json:"recordId"`
	Status     string     `json:"status"`
	Error      string     `json:"error"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt"`
}
