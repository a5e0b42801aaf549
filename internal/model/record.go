package model

import "time"

// Record is one row of a CrmObject. Values live in Data keyed by field name.
type Record struct {
	ID        string         `json:"id"`
	TenantID  string         `json:"tenantId"`
	ObjectID  string         `json:"objectId"`
	Data      map[string]any `json:"data"`
	OwnerID   *string        `json:"ownerId"`
	Stage     *string        `json:"stage"`
	Archived  bool           `json:"archived"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Relation is a typed edge between two records, e.g. "company" from a contact to an account.
type Relation struct {
	ID           string    `json:"id"`
	TenantID     string    `json:"tenantId"`
	Type         string    `json:"type"`
	FromRecordID string    `json:"fromRecordId"`
	ToRecordID   string    `json:"toRecordId"`
	CreatedAt    time.Time `json:"createdAt"`
}
