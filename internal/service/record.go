package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"crmapi/internal/auth"
	"crmapi/internal/cache"
	"crmapi/internal/model"
	"crmapi/internal/repository"
	"crmapi/internal/schema"
	"crmapi/internal/validation"
	"crmapi/internal/workflow"
)

// RecordQuery narrows and pages a record listing.
type RecordQuery struct {
	Page     Page
	Stage    string
	OwnerID  string
	Archived *bool
	Search   string
	// Sort is a column name with an optional "-" prefix for descending order.
	Sort string
}

type CreateRecordInput struct {
	ObjectID string         `json:"objectId" validate:"required,uuid"`
	Data     map[string]any `json:"data"`
	OwnerID  *string        `json:"ownerId" validate:"omitempty,uuid"`
	Stage    *string        `json:"stage" validate:"omitempty,max=60"`
}

// UpdateRecordInput merges Data into the stored values; a null value clears a key.
type UpdateRecordInput struct {
	Data     map[string]any `json:"data"`
	OwnerID  *string        `json:"ownerId" validate:"omitempty,uuid"`
	Stage    *string        `json:"stage" validate:"omitempty,max=60"`
	Archived *bool          `json:"archived"`
}

type RecordService interface {
	List(ctx context.Context, p auth.Principal, objectID string, q RecordQuery) (*ListResult[model.Record], error)
	Get(ctx context.Context, p auth.Principal, id string) (*model.Record, error)

	// Create stores a record under an existing, non-archived object.
	Create(ctx context.Context, p auth.Principal, in CreateRecordInput) (*model.Record, error)
	Update(ctx context.Context, p auth.Principal, id string, in UpdateRecordInput) (*model.Record, error)
	Delete(ctx context.Context, p auth.Principal, id string) error
}

type recordService struct {
	objects repository.ObjectRepository
	records repository.RecordRepository
	schema  *schema.Schema
	events  EventPublisher
	now     func() time.Time
}

// NewRecordService constructs a RecordService publishing mutations to events.
func NewRecordService(
	objects repository.ObjectRepository,
	fields repository.FieldRepository,
	records repository.RecordRepository,
	c *cache.FieldCache,
	events EventPublisher,
	v *validation.Validator,
) RecordService {
	return &recordService{
		objects: objects,
		records: records,
		schema:  schema.New(fields, c, v),
		events:  events,
		now:     time.Now,
	}
}

var recordSorts = map[string]string{
	"created_at": "created_at",
	"createdAt":  "created_at",
	"updated_at": "updated_at",
	"updatedAt":  "updated_at",
	"stage":      "stage",
}

func (s *recordService) List(ctx context.Context, p auth.Principal, objectID string, q RecordQuery) (*ListResult[model.Record], error) {
	if _, err := s.objects.FindByID(ctx, p.TenantID, objectID); err != nil {
		return nil, notFound(err, "object")
	}
	f := repository.RecordFilter{
		TenantID: p.TenantID,
		ObjectID: objectID,
		Stage:    q.Stage,
		OwnerID:  q.OwnerID,
		Archived: q.Archived,
		Search:   strings.TrimSpace(q.Search),
		SortBy:   "created_at",
		Desc:     true,
	}
	if q.Sort != "" {
		col, desc := strings.TrimPrefix(q.Sort, "-"), strings.HasPrefix(q.Sort, "-")
		sortBy, ok := recordSorts[col]
		if !ok {
			return nil, invalid("sort", "must be one of: created_at, updated_at, stage")
		}
		f.SortBy, f.Desc = sortBy, desc
	}
	res, err := s.records.List(ctx, f, q.Page.query())
	if err != nil {
		return nil, err
	}
	return newListResult(res, q.Page), nil
}

func (s *recordService) Get(ctx context.Context, p auth.Principal, id string) (*model.Record, error) {
	rec, err := s.records.FindByID(ctx, p.TenantID, id)
	return rec, notFound(err, "record")
}

func (s *recordService) liveObject(ctx context.Context, tenantID, objectID string) (*model.CrmObject, error) {
	obj, err := s.objects.FindByID(ctx, tenantID, objectID)
	if err != nil {
		return nil, notFound(err, "object")
	}
	if obj.Archived {
		return nil, invalid("objectId", "object is archived")
	}
	return obj, nil
}

func checkStage(obj *model.CrmObject, stage *string) error {
	if stage == nil {
		return nil
	}
	if !obj.HasStage(*stage) {
		return invalid("stage", "must be one of: "+strings.Join(obj.Stages, ", "))
	}
	return nil
}

func (s *recordService) normalize(ctx context.Context, tenantID, objectID string, data, patch map[string]any) (map[string]any, error) {
	out, errs, err := s.schema.Normalize(ctx, tenantID, objectID, data, patch)
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}
	return out, nil
}

func (s *recordService) Create(ctx context.Context, p auth.Principal, in CreateRecordInput) (*model.Record, error) {
	obj, err := s.liveObject(ctx, p.TenantID, in.ObjectID)
	if err != nil {
		return nil, err
	}
	stage := optionalString(in.Stage)
	if stage == nil && len(obj.Stages) > 0 {
		stage = &obj.Stages[0]
	}
	if err := checkStage(obj, stage); err != nil {
		return nil, err
	}
	data, err := s.normalize(ctx, p.TenantID, obj.ID, in.Data, in.Data)
	if err != nil {
		return nil, err
	}
	owner := optionalString(in.OwnerID)
	if owner == nil {
		owner = &p.UserID
	}

	now := s.now().UTC()
	rec, err := s.records.Create(ctx, &model.Record{
		ID:        uuid.NewString(),
		TenantID:  p.TenantID,
		ObjectID:  obj.ID,
		Data:      data,
		OwnerID:   owner,
		Stage:     stage,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, notFound(err, "record")
	}
	s.publish(ctx, p, model.TriggerRecordCreated, rec, nil)
	return rec, nil
}

func (s *recordService) Update(ctx context.Context, p auth.Principal, id string, in UpdateRecordInput) (*model.Record, error) {
	prev, err := s.records.FindByID(ctx, p.TenantID, id)
	if err != nil {
		return nil, notFound(err, "record")
	}
	obj, err := s.objects.FindByID(ctx, p.TenantID, prev.ObjectID)
	if err != nil {
		return nil, notFound(err, "object")
	}

	next := *prev
	if in.Data != nil {
		merged := make(map[string]any, len(prev.Data)+len(in.Data))
		for k, v := range prev.Data {
			merged[k] = v
		}
		for k, v := range in.Data {
			if v == nil {
				delete(merged, k)
				continue
			}
			merged[k] = v
		}
		next.Data, err = s.normalize(ctx, p.TenantID, obj.ID, merged, in.Data)
		if err != nil {
			return nil, err
		}
	}
	if in.Stage != nil {
		next.Stage = optionalString(in.Stage)
		if err := checkStage(obj, next.Stage); err != nil {
			return nil, err
		}
	}
	if in.OwnerID != nil {
		next.OwnerID = optionalString(in.OwnerID)
	}
	if in.Archived != nil {
		next.Archived = *in.Archived
	}
	next.UpdatedAt = s.now().UTC()

	rec, err := s.records.Update(ctx, &next)
	if err != nil {
		return nil, notFound(err, "record")
	}
	s.publish(ctx, p, model.TriggerRecordUpdated, rec, prev)
	if stageOf(prev) != stageOf(rec) {
		s.publish(ctx, p, model.TriggerStageChanged, rec, prev)
	}
	return rec, nil
}

func (s *recordService) Delete(ctx context.Context, p auth.Principal, id string) error {
	rec, err := s.records.FindByID(ctx, p.TenantID, id)
	if err != nil {
		return notFound(err, "record")
	}
	if err := s.records.Delete(ctx, p.TenantID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFound(err, "record")
		}
		return err
	}
	s.publish(ctx, p, model.TriggerRecordDeleted, rec, nil)
	return nil
}

func (s *recordService) publish(ctx context.Context, p auth.Principal, typ string, rec, prev *model.Record) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, workflow.Event{
		Type:     typ,
		TenantID: p.TenantID,
		ObjectID: rec.ObjectID,
		ActorID:  p.UserID,
		Record:   rec,
		Previous: prev,
	})
}

func stageOf(r *model.Record) string {
	if r == nil || r.Stage == nil {
		return ""
	}
	return *r.Stage
}
