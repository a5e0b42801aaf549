package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"crmapi/internal/auth"
	"crmapi/internal/model"
	"crmapi/internal/repository"
	"crmapi/internal/storage"
)

// DownloadURLTTL bounds how long a presigned download link stays valid.
const DownloadURLTTL = 15 * time.Minute

// UploadInput describes a streamed upload.
type UploadInput struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
	EntityType  string
	EntityID    string
}

// DownloadURL is a presigned, time-limited link to a file's content.
type DownloadURL struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// FileService defines the use cases for uploaded files.
type FileService interface {
	// Upload streams the content to object storage and saves its metadata.
	// The stored object is removed again if the metadata cannot be saved.
	Upload(ctx context.Context, p auth.Principal, in UploadInput) (*model.File, error)

	// List returns files, optionally only those attached to one entity.
	List(ctx context.Context, p auth.Principal, entityType, entityID string, page Page) (*ListResult[model.File], error)

	Get(ctx context.Context, p auth.Principal, id string) (*model.File, error)
	DownloadURL(ctx context.Context, p auth.Principal, id string) (*DownloadURL, error)

	// Delete removes a file from storage, then its metadata.
	Delete(ctx context.Context, p auth.Principal, id string) error
}

type fileService struct {
	store storage.Storage
	repo  repository.FileRepository
	now   func() time.Time
}

// NewFileService constructs a FileService.
func NewFileService(store storage.Storage, repo repository.FileRepository) FileService {
	return &fileService{store: store, repo: repo, now: time.Now}
}

func (s *fileService) Upload(ctx context.Context, p auth.Principal, in UploadInput) (*model.File, error) {
	if in.Reader == nil {
		return nil, ErrReaderNil
	}
	if (in.EntityType == "") != (in.EntityID == "") {
		return nil, invalid("entityId", "entityType and entityId must be given together")
	}
	original := filepath.Base(strings.TrimSpace(in.Filename))
	id := uuid.NewString()
	key := storage.FileKey(p.TenantID, id, original)

	objInfo, err := s.store.Put(ctx, key, in.Reader, storage.PutObjectOptions{
		Size:         in.Size,
		ContentType:  in.ContentType,
		OriginalName: original,
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	f := &model.File{
		ID:           id,
		TenantID:     p.TenantID,
		EntityType:   optionalString(&in.EntityType),
		EntityID:     optionalString(&in.EntityID),
		Filename:     filepath.Base(key),
		OriginalName: original,
		StoragePath:  objInfo.Key,
		Size:         objInfo.Size,
		ContentType:  objInfo.ContentType,
		UploadedBy:   p.UserID,
		CreatedAt:    s.now().UTC(),
	}
	stored, err := s.repo.Create(ctx, f)
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

func (s *fileService) List(ctx context.Context, p auth.Principal, entityType, entityID string, page Page) (*ListResult[model.File], error) {
	res, err := s.repo.List(ctx, p.TenantID, entityType, entityID, page.query())
	if err != nil {
		return nil, err
	}
	return newListResult(res, page), nil
}

func (s *fileService) Get(ctx context.Context, p auth.Principal, id string) (*model.File, error) {
	f, err := s.repo.FindByID(ctx, p.TenantID, id)
	return f, notFound(err, "file")
}

func (s *fileService) DownloadURL(ctx context.Context, p auth.Principal, id string) (*DownloadURL, error) {
	f, err := s.repo.FindByID(ctx, p.TenantID, id)
	if err != nil {
		return nil, notFound(err, "file")
	}
	url, err := s.store.DownloadURL(ctx, f.StoragePath, f.OriginalName, DownloadURLTTL)
	if err != nil {
		return nil, fmt.Errorf("presign download: %w", err)
	}
	return &DownloadURL{URL: url, ExpiresAt: s.now().UTC().Add(DownloadURLTTL)}, nil
}

// Delete keeps the row when storage deletion fails so the object stays referenced.
func (s *fileService) Delete(ctx context.Context, p auth.Principal, id string) error {
	f, err := s.repo.FindByID(ctx, p.TenantID, id)
	if err != nil {
		return notFound(err, "file")
	}
	if err := s.store.Delete(ctx, f.StoragePath); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	return s.repo.Delete(ctx, p.TenantID, id)
}
