package workflow

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"crmapi/internal/model"
)

// recordValue resolves a condition field against a record. "stage" and
// "ownerId" address record columns, anything else a data key.
func recordValue(rec *model.Record, field string) any {
	switch field {
	case "stage":
		if rec.Stage == nil {
			return nil
		}
		return *rec.Stage
	case "ownerId":
		if rec.OwnerID == nil {
			return nil
		}
		return *rec.OwnerID
	}
	return rec.Data[field]
}

// Matches reports whether every condition holds for rec.
func Matches(conds []model.Condition, rec *model.Record) bool {
	for _, c := range conds {
		if !Evaluate(c, recordValue(rec, c.Field)) {
			return false
		}
	}
	return true
}

// Evaluate applies one condition to an actual value.
func Evaluate(c model.Condition, actual any) bool {
	switch c.Operator {
	case model.OpEquals:
		return equal(actual, c.Value)
	case model.OpNotEquals:
		return !equal(actual, c.Value)
	case model.OpContains:
		return contains(actual, c.Value)
	case model.OpGreater:
		cmp, ok := compare(actual, c.Value)
		return ok && cmp > 0
	case model.OpLess:
		cmp, ok := compare(actual, c.Value)
		return ok && cmp < 0
	case model.OpIsEmpty:
		return isEmpty(actual)
	case model.OpIsNotEmpty:
		return !isEmpty(actual)
	}
	return false
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t) == ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	}
	return false
}

func equal(a, b any) bool {
	if a == nil || b == nil {
		return isEmpty(a) && isEmpty(b)
	}
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
	}
	return strings.EqualFold(fmt.Sprint(a), fmt.Sprint(b))
}

func contains(actual, want any) bool {
	if actual == nil || want == nil {
		return false
	}
	rv := reflect.ValueOf(actual)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		for i := 0; i < rv.Len(); i++ {
			if equal(rv.Index(i).Interface(), want) {
				return true
			}
		}
		return false
	}
	return strings.Contains(strings.ToLower(fmt.Sprint(actual)), strings.ToLower(fmt.Sprint(want)))
}

// compare orders numbers numerically and date strings chronologically.
func compare(a, b any) (int, bool) {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			switch {
			case fa < fb:
				return -1, true
			case fa > fb:
				return 1, true
			}
			return 0, true
		}
	}
	ta, okA := toTime(a)
	tb, okB := toTime(b)
	if okA && okB {
		return ta.Compare(tb), true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func toTime(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
