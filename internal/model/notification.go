package model

import "time"

type Notification struct {
	ID        string     `json:"id"`
	TenantID  string     `json:"tenantId"`
	UserID    string     `json:"userId"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	Link      string     `json:"link"`
	ReadAt    *time.Time `json:"readAt"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Notification types emitted by the API itself.
const (
	NotificationTaskAssigned = "task_assigned"
	NotificationComment      = "comment"
	NotificationWorkflow     = "workflow"
)
