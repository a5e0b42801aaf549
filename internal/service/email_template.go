package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"crmapi/internal/auth"
	"crmapi/internal/mailer"
	"crmapi/internal/model"
	"crmapi/internal/repository"
)

type EmailTemplateInput struct {
	Name    string `json:"name" validate:"required,max=200"`
	Subject string `json:"subject" validate:"required,max=500"`
	Body    string `json:"body" validate:"required,max=100000"`
}

type UpdateEmailTemplateInput struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=200"`
	Subject *string `json:"subject" validate:"omitempty,min=1,max=500"`
	Body    *string `json:"body" validate:"omitempty,min=1,max=100000"`
}

type PreviewInput struct {
	Data map[string]any `json:"data"`
}

type SendTemplateInput struct {
	To   []string       `json:"to" validate:"required,min=1,max=50,dive,email"`
	Data map[string]any `json:"data"`
}

// RenderedEmail is a template with its placeholders filled in.
type RenderedEmail struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type EmailTemplateService interface {
	List(ctx context.Context, p auth.Principal, page Page) (*ListResult[model.EmailTemplate], error)
	Get(ctx context.Context, p auth.Principal, id string) (*model.EmailTemplate, error)
	Create(ctx context.Context, p auth.Principal, in EmailTemplateInput) (*model.EmailTemplate, error)
	Update(ctx context.Context, p auth.Principal, id string, in UpdateEmailTemplateInput) (*model.EmailTemplate, error)
	Delete(ctx context.Context, p auth.Principal, id string) error

	// Preview renders {{.var}} placeholders in subject and body.
	Preview(ctx context.Context, p auth.Principal, id string, data map[string]any) (*RenderedEmail, error)
	Send(ctx context.Context, p auth.Principal, id string, in SendTemplateInput) (*RenderedEmail, error)
}

type emailTemplateService struct {
	templates repository.EmailTemplateRepository
	mail      mailer.Mailer
	now       func() time.Time
}

func NewEmailTemplateService(templates repository.EmailTemplateRepository, mail mailer.Mailer) EmailTemplateService {
	return &emailTemplateService{templates: templates, mail: mail, now: time.Now}
}

// checkTemplate rejects subjects or bodies that do not parse.
func checkTemplate(subject, body string) error {
	if _, err := mailer.Render(subject, nil); err != nil {
		return invalid("subject", err.Error())
	}
	if _, err := mailer.Render(body, nil); err != nil {
		return invalid("body", err.Error())
	}
	return nil
}

func render(t *model.EmailTemplate, data map[string]any) (*RenderedEmail, error) {
	if data == nil {
		data = map[string]any{}
	}
	subject, err := mailer.Render(t.Subject, data)
	if err != nil {
		return nil, invalid("subject", err.Error())
	}
	body, err := mailer.Render(t.Body, data)
	if err != nil {
		return nil, invalid("body", err.Error())
	}
	return &RenderedEmail{Subject: subject, Body: body}, nil
}

func (s *emailTemplateService) List(ctx context.Context, p auth.Principal, page Page) (*ListResult[model.EmailTemplate], error) {
	res, err := s.templates.List(ctx, p.TenantID, page.query())
	if err != nil {
		return nil, err
	}
	return newListResult(res, page), nil
}

func (s *emailTemplateService) Get(ctx context.Context, p auth.Principal, id string) (*model.EmailTemplate, error) {
	t, err := s.templates.FindByID(ctx, p.TenantID, id)
	return t, notFound(err, "email template")
}

func (s *emailTemplateService) Create(ctx context.Context, p auth.Principal, in EmailTemplateInput) (*model.EmailTemplate, error) {
	if err := checkTemplate(in.Subject, in.Body); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	t, err := s.templates.Create(ctx, &model.EmailTemplate{
		ID:        uuid.NewString(),
		TenantID:  p.TenantID,
		Name:      in.Name,
		Subject:   in.Subject,
		Body:      in.Body,
		CreatedAt: now,
		UpdatedAt: now,
	})
	return t, notFound(err, "email template")
}

func (s *emailTemplateService) Update(ctx context.Context, p auth.Principal, id string, in UpdateEmailTemplateInput) (*model.EmailTemplate, error) {
	t, err := s.templates.FindByID(ctx, p.TenantID, id)
	if err != nil {
		return nil, notFound(err, "email template")
	}
	if in.Name != nil {
		t.Name = *in.Name
	}
	if in.Subject != nil {
		t.Subject = *in.Subject
	}
	if in.Body != nil {
		t.Body = *in.Body
	}
	if err := checkTemplate(t.Subject, t.Body); err != nil {
		return nil, err
	}
	t.UpdatedAt = s.now().UTC()
	updated, err := s.templates.Update(ctx, t)
	return updated, notFound(err, "email template")
}

func (s *emailTemplateService) Delete(ctx context.Context, p auth.Principal, id string) error {
	return notFound(s.templates.Delete(ctx, p.TenantID, id), "email template")
}

func (s *emailTemplateService) Preview(ctx context.Context, p auth.Principal, id string, data map[string]any) (*RenderedEmail, error) {
	t, err := s.templates.FindByID(ctx, p.TenantID, id)
	if err != nil {
		return nil, notFound(err, "email template")
	}
	return render(t, data)
}

func (s *emailTemplateService) Send(ctx context.Context, p auth.Principal, id string, in SendTemplateInput) (*RenderedEmail, error) {
	t, err := s.templates.FindByID(ctx, p.TenantID, id)
	if err != nil {
		return nil, notFound(err, "email template")
	}
	out, err := render(t, in.Data)
	if err != nil {
		return nil, err
	}
	if err := s.mail.Send(ctx, mailer.Message{To: in.To, Subject: out.Subject, Body: out.Body}); err != nil {
		return nil, fmt.Errorf("send template %s: %w", id, err)
	}
	return out, nil
}
