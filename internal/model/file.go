package model

import "time"

// File represents an uploaded object. Content lives in object storage; this is its metadata.
type File struct {
	ID           string    `json:"id"`
	TenantID     string    `json:"tenantId"`
	EntityType   *string   `json:"entityType"`
	EntityID     *string   `json:"entityId"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	StoragePath  string    `json:"storagePath"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"contentType"`
	UploadedBy   string    `json:"uploadedBy"`
	CreatedAt    time.Time `json:"createdAt"`
}
