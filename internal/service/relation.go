package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"crmapi/internal/auth"
	"crmapi/internal/model"
	"crmapi/internal/repository"
)

type CreateRelationInput struct {
	Type         string `json:"type" validate:"required,max=63,identifier"`
	FromRecordID string `json:"fromRecordId" validate:"required,uuid"`
	ToRecordID   string `json:"toRecordId" validate:"required,uuid"`
}

type RelationService interface {
	// ListByRecord returns relations in both directions.
	ListByRecord(ctx context.Context, p auth.Principal, recordID string) ([]model.Relation, error)
	Create(ctx context.Context, p auth.Principal, in CreateRelationInput) (*model.Relation, error)
	Delete(ctx context.Context, p auth.Principal, id string) error
}

type relationService struct {
	records   repository.RecordRepository
	relations repository.RelationRepository
	now       func() time.Time
}

func NewRelationService(records repository.RecordRepository, relations repository.RelationRepository) RelationService {
	return &relationService{records: records, relations: relations, now: time.Now}
}

func (s *relationService) ListByRecord(ctx context.Context, p auth.Principal, recordID string) ([]model.Relation, error) {
	if _, err := s.records.FindByID(ctx, p.TenantID, recordID); err != nil {
		return nil, notFound(err, "record")
	}
	rels, err := s.relations.ListByRecord(ctx, p.TenantID, recordID)
	if err != nil {
		return nil, err
	}
	return nonNil(rels), nil
}

func (s *relationService) Create(ctx context.Context, p auth.Principal, in CreateRelationInput) (*model.Relation, error) {
	if in.FromRecordID == in.ToRecordID {
		return nil, invalid("toRecordId", "must differ from fromRecordId")
	}
	for _, id := range []string{in.FromRecordID, in.ToRecordID} {
		if _, err := s.records.FindByID(ctx, p.TenantID, id); err != nil {
			return nil, notFound(err, "record "+id)
		}
	}
	rel, err := s.relations.Create(ctx, &model.Relation{
		ID:           uuid.NewString(),
		TenantID:     p.TenantID,
		Type:         in.Type,
		FromRecordID: in.FromRecordID,
		ToRecordID:   in.ToRecordID,
		CreatedAt:    s.now().UTC(),
	})
	return rel, notFound(err, "relation")
}

func (s *relationService) Delete(ctx context.Context, p auth.Principal, id string) error {
	return notFound(s.relations.Delete(ctx, p.TenantID, id), "relation")
}
