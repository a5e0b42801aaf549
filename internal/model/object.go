package model

import "time"

// CrmObject is a user-definable entity type such as "contacts" or "deals".
type CrmObject struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenantId"`
	Name        string    `json:"name"`
	Label       string    `json:"label"`
	PluralLabel string    `json:"pluralLabel"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Position    int       `json:"position"`
	Stages      []string  `json:"stages"`
	IsSystem    bool      `json:"isSystem"`
	Archived    bool      `json:"archived"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// HasStage reports whether stage is allowed. Objects without stages accept any value.
func (o *CrmObject) HasStage(stage string) bool {
	if len(o.Stages) == 0 {
		return true
	}
	for _, s := range o.Stages {
		if s == stage {
			return true
		}
	}
	return false
}

// FieldType enumerates the attribute kinds a Field can hold.
type FieldType string

const (
	FieldText        FieldType = "text"
	FieldTextarea    FieldType = "textarea"
	FieldEmail       FieldType = "email"
	FieldPhone       FieldType = "phone"
	FieldURL         FieldType = "url"
	FieldNumber      FieldType = "number"
	FieldCurrency    FieldType = "currency"
	FieldBoolean     FieldType = "boolean"
	FieldDate        FieldType = "date"
	FieldDatetime    FieldType = "datetime"
	FieldSelect      FieldType = "select"
	FieldMultiselect FieldType = "multiselect"
	FieldRelation    FieldType = "relation"
	FieldFormula     FieldType = "formula"
)

// FieldTypes lists every supported type in display order.
var FieldTypes = []FieldType{
	FieldText, FieldTextarea, FieldEmail, FieldPhone, FieldURL,
	FieldNumber, FieldCurrency, FieldBoolean, FieldDate, FieldDatetime,
	FieldSelect, FieldMultiselect, FieldRelation, FieldFormula,
}

// Valid reports whether t is a known field type.
func (t FieldType) Valid() bool {
	for _, ft := range FieldTypes {
		if ft == t {
			return true
		}
	}
	return false
}

// Field is a typed attribute definition attached to a CrmObject.
// Config carries type-specific settings (options, min/max, maxLength, target, expression).
type Field struct {
	ID        string         `json:"id"`
	TenantID  string         `json:"tenantId"`
	ObjectID  string         `json:"objectId"`
	Name      string         `json:"name"`
	Label     string         `json:"label"`
	Type      FieldType      `json:"type"`
	Required  bool           `json:"required"`
	Position  int            `json:"position"`
	Config    map[string]any `json:"config"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Options returns config.options as strings (select and multiselect).
func (f *Field) Options() []string {
	raw, ok := f.Config["options"]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, it := range v {
			if s, ok := it.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// ConfigNumber returns a numeric config value such as min, max or maxLength.
func (f *Field) ConfigNumber(key string) (float64, bool) {
	switch v := f.Config[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// ConfigString returns a string config value such as target or expression.
func (f *Field) ConfigString(key string) string {
	s, _ := f.Config[key].(string)
	return s
}
