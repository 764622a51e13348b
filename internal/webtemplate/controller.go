package webtemplate

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"webtemplate-backend/internal/apperr"
	"webtemplate-backend/internal/metadata"
	"webtemplate-backend/internal/modules"
	"webtemplate-backend/internal/render"
	"webtemplate-backend/internal/storage"
)

// ModuleTree resolves record folders and exports record definitions.
type ModuleTree interface {
	RecordFolder(module, doctype, name string) (string, error)
	ExportToFiles(records []modules.Record, createInit bool) error
}

// Controller implements the Web Template lifecycle: validation before save,
// file sync after save, and rendering.
type Controller struct {
	tree     ModuleTree
	files    storage.FileStorage
	renderer render.Renderer
	log      zerolog.Logger
}

func NewController(tree ModuleTree, files storage.FileStorage, r render.Renderer, log zerolog.Logger) *Controller {
	return &Controller{tree: tree, files: files, renderer: r, log: log}
}

// Validate runs before a save commits. It fills in derived defaults on doc
// (field names, field types, template type) and rejects invalid records.
func (c *Controller) Validate(ec ExecContext, doc *metadata.WebTemplate) error {
	if doc.Standard && !ec.CanEditStandard() {
		return apperr.PermissionError("Enable developer mode to create a standard Web Template")
	}

	var errs []apperr.ErrorDetail

	if strings.TrimSpace(doc.Name) == "" {
		errs = append(errs, apperr.ErrorDetail{Field: "name", Rule: "required", Message: "Name is required"})
	} else if doc.Standard && metadata.Scrub(doc.Name) == "" {
		errs = append(errs, apperr.ErrorDetail{
			Field: "name", Rule: "invalid",
			Message: "Name of a standard Web Template must contain letters or digits",
		})
	}

	if doc.Type == "" {
		doc.Type = metadata.TypeSection
	} else if !metadata.IsValidTemplateType(doc.Type) {
		errs = append(errs, apperr.ErrorDetail{
			Field: "type", Rule: "enum",
			Message: fmt.Sprintf("Type must be one of %s", strings.Join(metadata.TemplateTypes, ", ")),
		})
	}

	for i := range doc.Fields {
		f := &doc.Fields[i]
		if f.Fieldname == "" {
			f.Fieldname = metadata.Scrub(f.Label)
		}
		if f.Fieldname == "" {
			errs = append(errs, apperr.ErrorDetail{
				Field: fmt.Sprintf("fields[%d].fieldname", i), Rule: "required",
				Message: fmt.Sprintf("Row %d: a label or fieldname is required", i+1),
			})
		}
		if f.Fieldtype == "" {
			f.Fieldtype = metadata.DefaultFieldType
		} else if !metadata.IsValidFieldType(f.Fieldtype) {
			errs = append(errs, apperr.ErrorDetail{
				Field: fmt.Sprintf("fields[%d].fieldtype", i), Rule: "enum",
				Message: fmt.Sprintf("Row %d: unknown field type %q", i+1, f.Fieldtype),
			})
		}
	}

	if doc.Standard && strings.TrimSpace(doc.Module) == "" {
		errs = append(errs, apperr.ErrorDetail{
			Field: "module", Rule: "required",
			Message: "Please select which module this Web Template belongs to.",
		})
	}

	if len(errs) > 0 {
		return apperr.ValidationError(errs)
	}
	return nil
}

// OnUpdate runs after a save commits. before is the persisted snapshot from
// before the save (nil on insert). Outside developer mode it does nothing.
//
// A standard doc is exported and its HTML file created. A doc that was
// standard and no longer is gets the file's body copied into doc.Template,
// then its folder removed.
func (c *Controller) OnUpdate(ec ExecContext, before, doc *metadata.WebTemplate) error {
	if !ec.DeveloperMode {
		return nil
	}

	if doc.Standard {
		if err := c.Export(doc); err != nil {
			return err
		}
		if err := c.CreateTemplateFile(doc); err != nil {
			return err
		}
	}

	if before != nil && before.Standard && !doc.Standard {
		return c.moveToDatabase(before, doc)
	}
	return nil
}

// Export writes doc's definition into its module folder.
func (c *Controller) Export(doc *metadata.WebTemplate) error {
	rec := modules.Record{
		DocType: metadata.DocType,
		Name:    doc.Name,
		Module:  moduleOf(doc),
		Doc:     doc,
	}
	if err := c.tree.ExportToFiles([]modules.Record{rec}, true); err != nil {
		return err
	}
	return nil
}

// moveToDatabase reads the on-disk body (located via the pre-save snapshot)
// into doc.Template, then deletes the template folder. A file that is
// already gone leaves doc.Template as it is.
func (c *Controller) moveToDatabase(before, doc *metadata.WebTemplate) error {
	body, err := c.GetTemplate(before, true)
	switch {
	case err == nil:
		doc.Template = body
	case errors.Is(err, fs.ErrNotExist):
		c.log.Warn().Str("name", doc.Name).Msg("template file missing, keeping database template")
	default:
		return err
	}

	folder, err := c.TemplateFolder(before)
	if err != nil {
		return err
	}
	if err := c.files.RemoveAll(folder); err != nil {
		return err
	}
	c.log.Info().Str("name", doc.Name).Str("folder", folder).Msg("moved standard template to database")
	return nil
}

// CreateTemplateFile creates the HTML file of a standard template, seeded
// with doc.Template. An existing file is left untouched.
func (c *Controller) CreateTemplateFile(doc *metadata.WebTemplate) error {
	if !doc.Standard {
		return nil
	}

	path, err := c.TemplatePath(doc)
	if err != nil {
		return err
	}

	exists, err := c.files.Exists(path)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	if err := c.files.Create(path, []byte(doc.Template)); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil
		}
		return fmt.Errorf("create template file: %w", err)
	}
	c.log.Debug().Str("name", doc.Name).Str("path", path).Msg("created template file")
	return nil
}

// TemplateFolder returns the folder that holds doc's exported files.
func (c *Controller) TemplateFolder(doc *metadata.WebTemplate) (string, error) {
	folder, err := c.tree.RecordFolder(moduleOf(doc), metadata.DocType, doc.Name)
	if err != nil {
		return "", fmt.Errorf("template folder for %s: %w", doc.Name, err)
	}
	return folder, nil
}

// TemplatePath returns the path of doc's HTML file.
func (c *Controller) TemplatePath(doc *metadata.WebTemplate) (string, error) {
	folder, err := c.TemplateFolder(doc)
	if err != nil {
		return "", err
	}
	return filepath.Join(folder, metadata.Scrub(doc.Name)+".html"), nil
}

// GetTemplate returns the body from disk when standard is true, else the
// database column.
func (c *Controller) GetTemplate(doc *metadata.WebTemplate, standard bool) (string, error) {
	if !standard {
		return doc.Template, nil
	}

	path, err := c.TemplatePath(doc)
	if err != nil {
		return "", err
	}
	b, err := c.files.Read(path)
	if err != nil {
		return "", fmt.Errorf("template %s: %w", doc.Name, err)
	}
	return string(b), nil
}

// Render renders doc against the JSON object in values ("" means {}). The
// mapping is also exposed to the template as "values".
func (c *Controller) Render(doc *metadata.WebTemplate, values string) (string, error) {
	mapping, err := ParseValues(values)
	if err != nil {
		return "", err
	}
	mapping["values"] = mapping

	body, err := c.GetTemplate(doc, doc.Standard)
	if err != nil {
		return "", err
	}
	return c.renderer.RenderString(body, mapping)
}

func moduleOf(doc *metadata.WebTemplate) string {
	if doc.Module == "" {
		return metadata.DefaultModule
	}
	return doc.Module
}
