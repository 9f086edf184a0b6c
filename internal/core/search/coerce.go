package search

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"search-service/internal/core/domain"
)

// RawFilters - "сырые" параметры поиска: query-string или JSON-тело.
type RawFilters map[string]any

// lookup возвращает значение ключа, если оно реально передано.
// nil, пустая строка и пустой список считаются отсутствующими.
func (r RawFilters) lookup(key string) (any, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return nil, false
	}
	switch t := v.(type) {
	case string:
		if strings.TrimSpace(t) == "" {
			return nil, false
		}
	case []string:
		if len(t) == 0 {
			return nil, false
		}
	case []any:
		if len(t) == 0 {
			return nil, false
		}
	}
	return v, true
}

func coerceString(field string, v any) (string, error) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), nil
	case []string:
		if len(t) == 1 {
			return strings.TrimSpace(t[0]), nil
		}
	}
	return "", domain.NewValidationError(field, "must be a string")
}

func coerceNumber(field string, v any) (float64, error) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, domain.NewValidationError(field, "must be a number")
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, domain.NewValidationError(field, "must be a number, got %q", t)
		}
		f = parsed
	case []string:
		if len(t) != 1 {
			return 0, domain.NewValidationError(field, "must be a single number")
		}
		return coerceNumber(field, t[0])
	default:
		return 0, domain.NewValidationError(field, "must be a number")
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, domain.NewValidationError(field, "must be a finite number")
	}
	return f, nil
}

func coerceInt(field string, v any) (int, error) {
	f, err := coerceNumber(field, v)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, domain.NewValidationError(field, "must be an integer, got %v", f)
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, domain.NewValidationError(field, "is out of range")
	}
	return int(f), nil
}

func coerceBool(field string, v any) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		if err != nil {
			return false, domain.NewValidationError(field, "must be a boolean, got %q", t)
		}
		return b, nil
	case []string:
		if len(t) == 1 {
			return coerceBool(field, t[0])
		}
	}
	return false, domain.NewValidationError(field, "must be a boolean")
}

// splitList разбирает "a,b" и повторяющиеся параметры в один список.
func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func coerceStringList(field string, v any) ([]string, error) {
	switch t := v.(type) {
	case string:
		return splitList([]string{t}), nil
	case []string:
		return splitList(t), nil
	case []any:
		items := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, domain.NewValidationError(field, "must be a list of strings")
			}
			items = append(items, s)
		}
		return splitList(items), nil
	}
	return nil, domain.NewValidationError(field, "must be a list of strings")
}

func coerceIntList(field string, v any) ([]int, error) {
	var items []any
	switch t := v.(type) {
	case string, []string:
		strs, _ := coerceStringList(field, t)
		for _, s := range strs {
			items = append(items, s)
		}
	case []any:
		items = t
	case []int:
		for _, n := range t {
			items = append(items, n)
		}
	case []float64:
		for _, n := range t {
			items = append(items, n)
		}
	default:
		// одиночное число трактуем как список из одного элемента
		items = []any{v}
	}

	out := make([]int, 0, len(items))
	for _, item := range items {
		n, err := coerceInt(field, item)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
