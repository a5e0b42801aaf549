package schema

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"crmapi/internal/model"
	"crmapi/internal/validation"
)

// Coercer validates record data against field definitions and converts
// values to their canonical JSON shapes.
type Coercer struct {
	v *validation.Validator
}

func NewCoercer(v *validation.Validator) Coercer {
	return Coercer{v: v}
}

// UnknownKeys reports keys of data that match no field, sorted.
func UnknownKeys(fields []model.Field, data map[string]any) []validation.FieldError {
	known := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		known[f.Name] = struct{}{}
	}
	var out []validation.FieldError
	for k := range data {
		if _, ok := known[k]; !ok {
			out = append(out, validation.FieldError{Field: "data." + k, Message: "is not a field of this object"})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

// Normalize returns the canonical form of data. Keys without a field are
// dropped; callers reject them beforehand where that matters.
func (c Coercer) Normalize(fields []model.Field, data map[string]any) (map[string]any, []validation.FieldError) {
	out := make(map[string]any, len(data))
	var errs []validation.FieldError
	for i := range fields {
		f := &fields[i]
		raw, present := data[f.Name]
		if f.Type == model.FieldFormula {
			if present && raw != nil {
				errs = append(errs, validation.FieldError{Field: "data." + f.Name, Message: "is computed and cannot be set"})
			}
			continue
		}
		if isBlank(raw) {
			if f.Required {
				errs = append(errs, validation.FieldError{Field: "data." + f.Name, Message: "is required"})
			}
			continue
		}
		v, err := c.coerce(f, raw)
		if err != nil {
			errs = append(errs, validation.FieldError{Field: "data." + f.Name, Message: err.Error()})
			continue
		}
		out[f.Name] = v
	}
	return out, errs
}

func isBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case []any:
		return len(x) == 0
	case []string:
		return len(x) == 0
	}
	return false
}

func (c Coercer) coerce(f *model.Field, raw any) (any, error) {
	switch f.Type {
	case model.FieldText, model.FieldTextarea:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("must be text")
		}
		if n, ok := f.ConfigNumber("maxLength"); ok && float64(len([]rune(s))) > n {
			return nil, fmt.Errorf("must be at most %d characters", int(n))
		}
		return s, nil
	case model.FieldEmail:
		s, ok := raw.(string)
		if !ok || !c.v.Var(strings.TrimSpace(s), "email") {
			return nil, fmt.Errorf("must be a valid email address")
		}
		return strings.ToLower(strings.TrimSpace(s)), nil
	case model.FieldPhone:
		s, ok := raw.(string)
		if !ok || !validPhone(s) {
			return nil, fmt.Errorf("must be a valid phone number")
		}
		return strings.TrimSpace(s), nil
	case model.FieldURL:
		s, ok := raw.(string)
		if !ok || !c.v.Var(strings.TrimSpace(s), "http_url") {
			return nil, fmt.Errorf("must be a valid URL")
		}
		return strings.TrimSpace(s), nil
	case model.FieldNumber, model.FieldCurrency:
		n, ok := toNumber(raw)
		if !ok {
			return nil, fmt.Errorf("must be a number")
		}
		if lo, ok := f.ConfigNumber("min"); ok && n < lo {
			return nil, fmt.Errorf("must be at least %s", formatNumber(lo))
		}
		if hi, ok := f.ConfigNumber("max"); ok && n > hi {
			return nil, fmt.Errorf("must be at most %s", formatNumber(hi))
		}
		if f.Type == model.FieldCurrency {
			n = math.Round(n*100) / 100
		}
		return n, nil
	case model.FieldBoolean:
		switch b := raw.(type) {
		case bool:
			return b, nil
		case string:
			if v, err := strconv.ParseBool(strings.TrimSpace(b)); err == nil {
				return v, nil
			}
		}
		return nil, fmt.Errorf("must be true or false")
	case model.FieldDate:
		s, _ := raw.(string)
		if t, err := time.Parse(time.DateOnly, strings.TrimSpace(s)); err == nil {
			return t.Format(time.DateOnly), nil
		}
		if t, err := time.Parse(time.RFC3339, strings.TrimSpace(s)); err == nil {
			return t.Format(time.DateOnly), nil
		}
		return nil, fmt.Errorf("must be a date (YYYY-MM-DD)")
	case model.FieldDatetime:
		s, _ := raw.(string)
		t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("must be an RFC 3339 timestamp")
		}
		return t.UTC().Format(time.RFC3339), nil
	case model.FieldSelect:
		s, ok := raw.(string)
		if !ok || !contains(f.Options(), s) {
			return nil, fmt.Errorf("must be one of: %s", strings.Join(f.Options(), ", "))
		}
		return s, nil
	case model.FieldMultiselect:
		items, ok := toStrings(raw)
		if !ok {
			return nil, fmt.Errorf("must be a list of options")
		}
		opts := f.Options()
		for _, it := range items {
			if !contains(opts, it) {
				return nil, fmt.Errorf("%q is not one of: %s", it, strings.Join(opts, ", "))
			}
		}
		return items, nil
	case model.FieldRelation:
		s, ok := raw.(string)
		if !ok || !c.v.Var(s, "uuid") {
			return nil, fmt.Errorf("must be a record id")
		}
		return s, nil
	}
	return nil, fmt.Errorf("has unsupported type %s", f.Type)
}

func validPhone(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) < 3 || len(s) > 32 {
		return false
	}
	digits := 0
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
		default:
			return false
		}
	}
	return digits >= 3
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil && !math.IsNaN(f) && !math.IsInf(f, 0)
	}
	return 0, false
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func toStrings(v any) ([]string, bool) {
	switch x := v.(type) {
	case []string:
		return x, true
	case []any:
		out := make([]string, 0, len(x))
		for _, it := range x {
			s, ok := it.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

func contains(list []string, s string) bool {
	for _, it := range list {
		if it == s {
			return true
		}
	}
	return false
}
