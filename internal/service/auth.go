package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"crmapi/internal/auth"
	"crmapi/internal/config"
	"crmapi/internal/mailer"
	"crmapi/internal/model"
	"crmapi/internal/repository"
)

// ErrInvalidCode covers unknown, expired, exhausted and mismatched codes alike.
var ErrInvalidCode = newError(ErrUnauthorized, "invalid or expired code")

type RegisterInput struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Name      string `json:"name" validate:"required,max=120"`
	Workspace string `json:"workspace" validate:"required,max=120"`
}

type SendCodeInput struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyCodeInput struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

// Session is returned after a successful code verification.
type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      *model.User `json:"user"`
}

// TenantSeeder provisions default objects for a new workspace.
type TenantSeeder interface {
	SeedTenant(ctx context.Context, tenantID string) error
}

// AuthService implements passwordless sign-in with emailed one-time codes.
type AuthService interface {
	// Register creates a workspace with its first user and mails a sign-in code.
	Register(ctx context.Context, in RegisterInput) (*model.User, error)

	// SendCode mails a code to a known user. Unknown emails succeed silently.
	SendCode(ctx context.Context, email string) error

	// Verify exchanges a valid code for a bearer token.
	Verify(ctx context.Context, in VerifyCodeInput) (*Session, error)

	Me(ctx context.Context, p auth.Principal) (*model.User, error)

	// Authenticate resolves a bearer token to its principal.
	Authenticate(token string) (*auth.Principal, error)
}

type authService struct {
	users  repository.UserRepository
	codes  repository.EmailCodeRepository
	seeder TenantSeeder
	tokens *auth.TokenIssuer
	mail   mailer.Mailer
	cfg    config.AuthConfig
	log    logrus.FieldLogger
	now    func() time.Time
}

// NewAuthService constructs an AuthService.
func NewAuthService(
	users repository.UserRepository,
	codes repository.EmailCodeRepository,
	seeder TenantSeeder,
	tokens *auth.TokenIssuer,
	mail mailer.Mailer,
	cfg config.AuthConfig,
	log logrus.FieldLogger,
) AuthService {
	return &authService{
		users:  users,
		codes:  codes,
		seeder: seeder,
		tokens: tokens,
		mail:   mail,
		cfg:    cfg,
		log:    log.WithField("component", "auth"),
		now:    time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	email := normalizeEmail(in.Email)
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, newError(ErrConflict, "email is already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	now := s.now().UTC()
	tenant := &model.Tenant{ID: uuid.NewString(), Name: strings.TrimSpace(in.Workspace), CreatedAt: now}
	user, err := s.users.CreateTenantWithUser(ctx, tenant, &model.User{
		ID:        uuid.NewString(),
		TenantID:  tenant.ID,
		Email:     email,
		Name:      strings.TrimSpace(in.Name),
		CreatedAt: now,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, newError(ErrConflict, "email is already registered")
		}
		return nil, fmt.Errorf("create workspace: %w", err)
	}

	if err := s.seeder.SeedTenant(ctx, user.TenantID); err != nil {
		if derr := s.users.DeleteTenant(ctx, user.TenantID); derr != nil {
			s.log.WithField("tenant_id", user.TenantID).WithError(derr).Error("failed to remove unseeded workspace")
		}
		return nil, fmt.Errorf("seed workspace: %w", err)
	}
	if err := s.issueCode(ctx, user); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"tenant_id": user.TenantID, "user_id": user.ID}).Info("workspace registered")
	return user, nil
}

func (s *authService) SendCode(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.issueCode(ctx, user)
}

func (s *authService) issueCode(ctx context.Context, user *model.User) error {
	code, err := auth.GenerateCode()
	if err != nil {
		return err
	}
	hash, err := auth.HashCode(code)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	if err := s.codes.Create(ctx, &model.EmailCode{
		ID:        uuid.NewString(),
		Email:     user.Email,
		CodeHash:  hash,
		ExpiresAt: now.Add(s.cfg.CodeTTL),
		CreatedAt: now,
	}); err != nil {
		return fmt.Errorf("store code: %w", err)
	}
	err = s.mail.Send(ctx, mailer.Message{
		To:      []string{user.Email},
		Subject: "Your sign-in code",
		Body: fmt.Sprintf("Hi %s,\n\nYour sign-in code is %s. It expires in %d minutes.\n",
			user.Name, code, int(s.cfg.CodeTTL.Minutes())),
	})
	if err != nil {
		return fmt.Errorf("send code: %w", err)
	}
	return nil
}

func (s *authService) Verify(ctx context.Context, in VerifyCodeInput) (*Session, error) {
	email := normalizeEmail(in.Email)
	code, err := s.codes.Latest(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCode
	}
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if !now.Before(code.ExpiresAt) || code.Attempts >= s.cfg.MaxAttempts {
		return nil, ErrInvalidCode
	}
	if !auth.CompareCode(code.CodeHash, strings.TrimSpace(in.Code)) {
		if err := s.codes.IncrementAttempts(ctx, code.ID); err != nil {
			s.log.WithError(err).Warn("failed to count code attempt")
		}
		return nil, ErrInvalidCode
	}
	if err := s.codes.Consume(ctx, code.ID, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCode
		}
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, notFound(err, "user")
	}
	token, exp, err := s.tokens.Issue(auth.Principal{UserID: user.ID, TenantID: user.TenantID})
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: exp, User: user}, nil
}

func (s *authService) Me(ctx context.Context, p auth.Principal) (*model.User, error) {
	user, err := s.users.FindByID(ctx, p.TenantID, p.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, newError(ErrUnauthorized, "user no longer exists")
	}
	return user, err
}

func (s *authService) Authenticate(token string) (*auth.Principal, error) {
	p, err := s.tokens.Parse(token)
	if err != nil {
		return nil, newError(ErrUnauthorized, "invalid or expired token")
	}
	return p, nil
}
