package metadata

import "time"

// DocType is the doctype name Web Template records are filed under on disk.
const DocType = "Web Template"

// DefaultModule owns templates that don't name a module.
const DefaultModule = "Website"

// Template types.
const (
	TypeComponent = "Component"
	TypeSection   = "Section"
	TypeNavbar    = "Navbar"
	TypeFooter    = "Footer"
)

var TemplateTypes = []string{TypeComponent, TypeSection, TypeNavbar, TypeFooter}

// FieldTypes lists the field types a template field may declare.
var FieldTypes = []string{
	"Attach Image",
	"Check",
	"Data",
	"Int",
	"Link",
	"Select",
	"Small Text",
	"Text",
	"Markdown Editor",
	"Section Break",
	"Column Break",
	"Table Break",
}

const DefaultFieldType = "Data"

type WebTemplate struct {
	Name      string          `json:"name"`
	Type      string          `json:"type,omitempty"`
	Standard  bool            `json:"standard"`
	Module    string          `json:"module,omitempty"`
	Template  string          `json:"template,omitempty"`
	Fields    []TemplateField `json:"fields"`
	CreatedAt *time.Time      `json:"created_at,omitempty"`
	Modified  *time.Time      `json:"modified,omitempty"`
}

type TemplateField struct {
	Label     string `json:"label"`
	Fieldname string `json:"fieldname,omitempty"`
	Fieldtype string `json:"fieldtype,omitempty"`
	Reqd      bool   `json:"reqd,omitempty"`
	Options   string `json:"options,omitempty"`
	Default   string `json:"default,omitempty"`
}

// Clone returns a deep copy, used as the pre-save snapshot.
func (w *WebTemplate) Clone() *WebTemplate {
	if w == nil {
		return nil
	}
	c := *w
	if w.Fields != nil {
		c.Fields = make([]TemplateField, len(w.Fields))
		copy(c.Fields, w.Fields)
	}
	return &c
}

// Fieldnames returns the fieldname of every field, in order.
func (w *WebTemplate) Fieldnames() []string {
	names := make([]string, len(w.Fields))
	for i, f := range w.Fields {
		names[i] = f.Fieldname
	}
	return names
}

// IsValidTemplateType reports whether t is one of TemplateTypes.
func IsValidTemplateType(t string) bool {
	return contains(TemplateTypes, t)
}

// IsValidFieldType reports whether t is one of FieldTypes.
func IsValidFieldType(t string) bool {
	return contains(FieldTypes, t)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
