package webtemplate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"webtemplate-backend/internal/apperr"
)

// ParseValues decodes a JSON object. Integral numbers come back as int64,
// others as float64.
func ParseValues(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		raw = "{}"
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, apperr.ParseError(fmt.Sprintf("Invalid JSON values: %v", err))
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, apperr.ParseError("Invalid JSON values: trailing data")
	}

	m, ok := normalizeJSON(v).(map[string]any)
	if !ok {
		return nil, apperr.ParseError("Values must be a JSON object")
	}
	return m, nil
}

func normalizeJSON(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case map[string]any:
		for k, item := range val {
			val[k] = normalizeJSON(item)
		}
		return val
	case []any:
		for i, item := range val {
			val[i] = normalizeJSON(item)
		}
		return val
	default:
		return v
	}
}
