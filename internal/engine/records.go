package engine

import (
	"encoding/json"
	"fmt"

	"webtemplate-backend/internal/metadata"
	"webtemplate-backend/internal/store"
)

const webTemplateTable = "_web_templates"

const webTemplateColumns = "name, type, standard, module, template, fields, created_at, modified"

var webTemplateBoolFields = []string{"standard"}

// rowToWebTemplate maps a _web_templates row onto a WebTemplate.
func rowToWebTemplate(row map[string]any) (*metadata.WebTemplate, error) {
	doc := &metadata.WebTemplate{}
	doc.Name, _ = row["name"].(string)
	doc.Type, _ = row["type"].(string)
	doc.Standard, _ = row["standard"].(bool)
	doc.Module, _ = row["module"].(string)
	doc.Template, _ = row["template"].(string)

	fields, err := decodeFields(row["fields"])
	if err != nil {
		return nil, fmt.Errorf("decode fields of %s: %w", doc.Name, err)
	}
	doc.Fields = fields

	if t, ok := store.ToTime(row["created_at"]); ok {
		doc.CreatedAt = &t
	}
	if t, ok := store.ToTime(row["modified"]); ok {
		doc.Modified = &t
	}
	return doc, nil
}

// decodeFields accepts the JSON column as text (SQLite), bytes, or an
// already decoded value (PostgreSQL JSONB).
func decodeFields(v any) ([]metadata.TemplateField, error) {
	var raw []byte
	switch val := v.(type) {
	case nil:
		return []metadata.TemplateField{}, nil
	case string:
		raw = []byte(val)
	case []byte:
		raw = val
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	if len(raw) == 0 {
		return []metadata.TemplateField{}, nil
	}

	var fields []metadata.TemplateField
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = []metadata.TemplateField{}
	}
	return fields, nil
}

func encodeFields(fields []metadata.TemplateField) (string, error) {
	if fields == nil {
		fields = []metadata.TemplateField{}
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encode fields: %w", err)
	}
	return string(b), nil
}

// nullIfEmpty stores empty strings as NULL.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
