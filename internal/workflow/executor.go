package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"crmapi/internal/mailer"
	"crmapi/internal/model"
	"crmapi/internal/repository"
	"crmapi/internal/schema"
)

// Event describes a record mutation that may start workflows.
type Event struct {
	Type     string
	TenantID string
	ObjectID string
	ActorID  string
	Record   *model.Record
	Previous *model.Record
}

// Deps are the stores and clients actions write through. Record writes go to
// the repository directly so actions never publish new events, but they are
// checked against the object's stages and fields like API writes.
type Deps struct {
	Workflows     repository.WorkflowRepository
	Objects       repository.ObjectRepository
	Records       repository.RecordRepository
	Schema        *schema.Schema
	Tasks         repository.TaskRepository
	Notifications repository.NotificationRepository
	Templates     repository.EmailTemplateRepository
	Mailer        mailer.Mailer
	HTTPClient    *http.Client
}

// Executor runs workflows for published events on a bounded pool of goroutines.
type Executor struct {
	deps    Deps
	log     logrus.FieldLogger
	metrics *Metrics
	sem     chan struct{}
	wg      sync.WaitGroup
	now     func() time.Time
}

// NewWebhookClient returns an HTTP client whose requests are traced.
func NewWebhookClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// NewExecutor creates an Executor running at most concurrency workflows at once.
func NewExecutor(deps Deps, concurrency int, log logrus.FieldLogger, metrics *Metrics) *Executor {
	if concurrency <= 0 {
		concurrency = 1
	}
	if deps.HTTPClient == nil {
		deps.HTTPClient = NewWebhookClient(10 * time.Second)
	}
	return &Executor{
		deps:    deps,
		log:     log.WithField("component", "workflow"),
		metrics: metrics,
		sem:     make(chan struct{}, concurrency),
		now:     time.Now,
	}
}

// Publish dispatches ev in the background. The request context's
// cancellation does not propagate; its values (trace span) do.
func (e *Executor) Publish(ctx context.Context, ev Event) {
	if ev.Record == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.sem <- struct{}{}
		defer func() { <-e.sem }()
		e.dispatch(ctx, ev)
	}()
}

// Wait blocks until every published event has been handled.
func (e *Executor) Wait() {
	e.wg.Wait()
}

func (e *Executor) dispatch(ctx context.Context, ev Event) {
	workflows, err := e.deps.Workflows.ListActive(ctx, ev.TenantID, ev.ObjectID, ev.Type)
	if err != nil {
		e.log.WithFields(logrus.Fields{
			"event":     "workflow_lookup_failed",
			"tenant_id": ev.TenantID,
			"trigger":   ev.Type,
		}).WithError(err).Error("failed to load workflows")
		return
	}
	for i := range workflows {
		wf := &workflows[i]
		if !TriggerMatches(wf.Trigger, ev) {
			continue
		}
		e.Execute(ctx, wf, ev)
	}
}

// TriggerMatches applies trigger-level filters beyond the type, such as the
// target stage of a stage_changed trigger.
func TriggerMatches(t model.Trigger, ev Event) bool {
	if t.Type != ev.Type {
		return false
	}
	if t.Type == model.TriggerStageChanged {
		want, _ := t.Config["stage"].(string)
		if want == "" {
			return true
		}
		return ev.Record.Stage != nil && *ev.Record.Stage == want
	}
	return true
}

// Execute runs one workflow against the event's record synchronously and
// stores the run.
func (e *Executor) Execute(ctx context.Context, wf *model.Workflow, ev Event) *model.WorkflowRun {
	start := e.now().UTC()
	run := &model.WorkflowRun{
		ID:         uuid.NewString(),
		TenantID:   wf.TenantID,
		WorkflowID: wf.ID,
		RecordID:   &ev.Record.ID,
		StartedAt:  start,
	}
	log := e.log.WithFields(logrus.Fields{
		"workflow_id": wf.ID,
		"tenant_id":   wf.TenantID,
		"record_id":   ev.Record.ID,
		"trigger":     ev.Type,
	})

	rec := ev.Record
	switch {
	case !Matches(wf.Conditions, rec):
		run.Status = model.RunSkipped
	default:
		run.Status = model.RunSucceeded
		for i, a := range wf.Actions {
			next, err := e.runAction(ctx, wf, a, rec, ev)
			if err != nil {
				run.Status = model.RunFailed
				run.Error = fmt.Sprintf("action %d (%s): %v", i+1, a.Type, err)
				break
			}
			rec = next
		}
	}

	finished := e.now().UTC()
	run.FinishedAt = &finished
	e.metrics.observe(run.Status, finished.Sub(start))

	fields := logrus.Fields{
		"event":       "workflow_run",
		"status":      run.Status,
		"duration_ms": finished.Sub(start).Milliseconds(),
	}
	if run.Status == model.RunFailed {
		log.WithFields(fields).WithField("error", run.Error).Warn("workflow run failed")
	} else {
		log.WithFields(fields).Info("workflow run finished")
	}

	if err := e.deps.Workflows.CreateRun(ctx, run); err != nil {
		log.WithError(err).Error("failed to store workflow run")
	}
	return run
}

func templateVars(wf *model.Workflow, rec *model.Record) map[string]any {
	stage := ""
	if rec.Stage != nil {
		stage = *rec.Stage
	}
	return map[string]any{
		"workflow": wf.Name,
		"record":   rec,
		"data":     rec.Data,
		"stage":    stage,
	}
}

func (e *Executor) runAction(ctx context.Context, wf *model.Workflow, a model.Action, rec *model.Record, ev Event) (*model.Record, error) {
	switch a.Type {
	case model.ActionUpdateField:
		return e.updateField(ctx, a, rec)
	case model.ActionSetStage:
		return e.setStage(ctx, a, rec)
	case model.ActionCreateTask:
		return rec, e.createTask(ctx, wf, a, rec)
	case model.ActionCreateNotification:
		return rec, e.createNotification(ctx, wf, a, rec, ev)
	case model.ActionSendEmail:
		return rec, e.sendEmail(ctx, wf, a, rec)
	case model.ActionWebhook:
		return rec, e.callWebhook(ctx, wf, rec, a, ev)
	}
	return rec, fmt.Errorf("unknown action type %q", a.Type)
}

func (e *Executor) updateField(ctx context.Context, a model.Action, rec *model.Record) (*model.Record, error) {
	field := configString(a.Config, "field")
	if field == "" {
		return nil, errors.New("field is required")
	}
	value := a.Config["value"]
	merged := make(map[string]any, len(rec.Data)+1)
	for k, v := range rec.Data {
		merged[k] = v
	}
	if value == nil {
		delete(merged, field)
	} else {
		merged[field] = value
	}
	data, errs, err := e.deps.Schema.Normalize(ctx, rec.TenantID, rec.ObjectID, merged, map[string]any{field: value})
	if err != nil {
		return nil, fmt.Errorf("load fields: %w", err)
	}
	if len(errs) > 0 {
		return nil, errors.New(schema.Describe(errs))
	}
	next := *rec
	next.Data = data
	next.UpdatedAt = e.now().UTC()
	return e.deps.Records.Update(ctx, &next)
}

func (e *Executor) setStage(ctx context.Context, a model.Action, rec *model.Record) (*model.Record, error) {
	stage := configString(a.Config, "stage")
	if stage == "" {
		return nil, errors.New("stage is required")
	}
	obj, err := e.deps.Objects.FindByID(ctx, rec.TenantID, rec.ObjectID)
	if err != nil {
		return nil, fmt.Errorf("load object: %w", err)
	}
	if !obj.HasStage(stage) {
		return nil, fmt.Errorf("stage %q is not one of: %s", stage, strings.Join(obj.Stages, ", "))
	}
	next := *rec
	next.Stage = &stage
	next.UpdatedAt = e.now().UTC()
	return e.deps.Records.Update(ctx, &next)
}

func (e *Executor) createTask(ctx context.Context, wf *model.Workflow, a model.Action, rec *model.Record) error {
	vars := templateVars(wf, rec)
	title, err := mailer.Render(configString(a.Config, "title"), vars)
	if err != nil {
		return err
	}
	if strings.TrimSpace(title) == "" {
		return errors.New("title is required")
	}
	desc, err := mailer.Render(configString(a.Config, "description"), vars)
	if err != nil {
		return err
	}
	priority := configString(a.Config, "priority")
	if priority == "" {
		priority = "medium"
	}
	now := e.now().UTC()
	task := &model.Task{
		ID:          uuid.NewString(),
		TenantID:    rec.TenantID,
		RecordID:    &rec.ID,
		ProjectID:   optional(configString(a.Config, "projectId")),
		AssigneeID:  optional(configString(a.Config, "assigneeId")),
		Title:       title,
		Description: desc,
		Status:      model.TaskTodo,
		Priority:    priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if task.AssigneeID == nil {
		task.AssigneeID = rec.OwnerID
	}
	if days, ok := a.Config["dueInDays"].(float64); ok && days > 0 {
		due := now.Add(time.Duration(days*24) * time.Hour)
		task.DueDate = &due
	}
	_, err = e.deps.Tasks.Create(ctx, task)
	return err
}

func (e *Executor) createNotification(ctx context.Context, wf *model.Workflow, a model.Action, rec *model.Record, ev Event) error {
	userID := configString(a.Config, "userId")
	if userID == "" && rec.OwnerID != nil {
		userID = *rec.OwnerID
	}
	if userID == "" {
		userID = ev.ActorID
	}
	if userID == "" {
		return errors.New("no recipient: set userId or assign an owner")
	}
	vars := templateVars(wf, rec)
	title, err := mailer.Render(configString(a.Config, "title"), vars)
	if err != nil {
		return err
	}
	if title == "" {
		title = wf.Name
	}
	body, err := mailer.Render(configString(a.Config, "body"), vars)
	if err != nil {
		return err
	}
	link := configString(a.Config, "link")
	if link == "" {
		link = "/records/" + rec.ID
	}
	_, err = e.deps.Notifications.Create(ctx, &model.Notification{
		ID:        uuid.NewString(),
		TenantID:  rec.TenantID,
		UserID:    userID,
		Type:      model.NotificationWorkflow,
		Title:     title,
		Body:      body,
		Link:      link,
		CreatedAt: e.now().UTC(),
	})
	return err
}

func (e *Executor) sendEmail(ctx context.Context, wf *model.Workflow, a model.Action, rec *model.Record) error {
	subject := configString(a.Config, "subject")
	body := configString(a.Config, "body")
	if id := configString(a.Config, "templateId"); id != "" {
		tmpl, err := e.deps.Templates.FindByID(ctx, rec.TenantID, id)
		if err != nil {
			return fmt.Errorf("load template %s: %w", id, err)
		}
		subject, body = tmpl.Subject, tmpl.Body
	}

	to := configStrings(a.Config, "to")
	if len(to) == 0 {
		if email, ok := rec.Data["email"].(string); ok && email != "" {
			to = []string{email}
		}
	}
	if len(to) == 0 {
		return mailer.ErrNoRecipients
	}

	vars := templateVars(wf, rec)
	renderedSubject, err := mailer.Render(subject, vars)
	if err != nil {
		return err
	}
	renderedBody, err := mailer.Render(body, vars)
	if err != nil {
		return err
	}
	return e.deps.Mailer.Send(ctx, mailer.Message{To: to, Subject: renderedSubject, Body: renderedBody})
}

type webhookPayload struct {
	Event      string        `json:"event"`
	WorkflowID string        `json:"workflowId"`
	TenantID   string        `json:"tenantId"`
	Record     *model.Record `json:"record"`
	SentAt     time.Time     `json:"sentAt"`
}

func (e *Executor) callWebhook(ctx context.Context, wf *model.Workflow, rec *model.Record, a model.Action, ev Event) error {
	url := configString(a.Config, "url")
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return fmt.Errorf("invalid webhook url %q", url)
	}
	method := strings.ToUpper(configString(a.Config, "method"))
	if method == "" {
		method = http.MethodPost
	}
	payload, err := json.Marshal(webhookPayload{
		Event:      ev.Type,
		WorkflowID: wf.ID,
		TenantID:   wf.TenantID,
		Record:     rec,
		SentAt:     e.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if headers, ok := a.Config["headers"].(map[string]any); ok {
		for k, v := range headers {
			if s, ok := v.(string); ok {
				req.Header.Set(k, s)
			}
		}
	}
	resp, err := e.deps.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func configString(cfg map[string]any, key string) string {
	s, _ := cfg[key].(string)
	return strings.TrimSpace(s)
}

func configStrings(cfg map[string]any, key string) []string {
	switch v := cfg[key].(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return []string{s}
		}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, it := range v {
			if s, ok := it.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
