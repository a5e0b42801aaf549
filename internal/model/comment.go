package model

import "time"

// Comment is a note attached to any entity (record, project, task).
type Comment struct {
	ID         string    `json:"id"`
	TenantID   string    `json:"tenantId"`
	EntityType string    `json:"entityType"`
	EntityID   string    `json:"entityId"`
	AuthorID   string    `json:"authorId"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
