package model

import "time"

// TimeEntry is tracked work. A nil EndedAt marks a running timer.
type TimeEntry struct {
	ID              string     `json:"id"`
	TenantID        string     `json:"tenantId"`
	UserID          string     `json:"userId"`
	ProjectID       *string    `json:"projectId"`
	TaskID          *string    `json:"taskId"`
	Description     string     `json:"description"`
	StartedAt       time.Time  `json:"startedAt"`
	EndedAt         *time.Time `json:"endedAt"`
	DurationSeconds int64      `json:"durationSeconds"`
	Billable        bool       `json:"billable"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// Running reports whether the timer is still open.
func (e *TimeEntry) Running() bool { return e.EndedAt == nil }

// TimeSummary aggregates tracked seconds for one project (nil = no project).
type TimeSummary struct {
	ProjectID       *string `json:"projectId"`
	TotalSeconds    int64   `json:"totalSeconds"`
	BillableSeconds int64   `json:"billableSeconds"`
}
