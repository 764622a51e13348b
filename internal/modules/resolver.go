package modules

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"webtemplate-backend/internal/metadata"
	"webtemplate-backend/internal/storage"
)

// InitFile marks a folder of the module tree as a package of the framework
// that consumes the exported files.
const InitFile = "__init__.py"

var ErrNoModule = errors.New("module name is empty")

// Record is one document to export: its doctype, name, owning module and the
// value serialized into the definition file.
type Record struct {
	DocType string
	Name    string
	Module  string
	Doc     any
}

// Resolver maps module names to folders and writes record definitions into
// the module tree.
type Resolver struct {
	registry *Registry
	files    storage.FileStorage
	log      zerolog.Logger
}

func NewResolver(reg *Registry, files storage.FileStorage, log zerolog.Logger) *Resolver {
	return &Resolver{registry: reg, files: files, log: log}
}

// ModulePath returns the folder of a module: the registered path when there
// is one, else <root>/<scrubbed module>.
func (r *Resolver) ModulePath(module string) (string, error) {
	if p, ok := r.registry.Lookup(module); ok {
		return p, nil
	}
	slug := metadata.Scrub(module)
	if slug == "" {
		return "", ErrNoModule
	}
	return filepath.Join(r.registry.Root(), slug), nil
}

// ScrubDtDn slugs a doctype and record name into folder names.
func ScrubDtDn(doctype, name string) (string, string) {
	return metadata.Scrub(doctype), metadata.Scrub(name)
}

// RecordFolder returns <module>/<doctype>/<name> for a record.
func (r *Resolver) RecordFolder(module, doctype, name string) (string, error) {
	modulePath, err := r.ModulePath(module)
	if err != nil {
		return "", err
	}
	dt, dn := ScrubDtDn(doctype, name)
	return filepath.Join(modulePath, dt, dn), nil
}

// ExportToFiles writes each record to <module>/<dt>/<dn>/<dn>.json. With
// createInit, an empty InitFile is placed in the module, doctype and record
// folders when missing.
func (r *Resolver) ExportToFiles(records []Record, createInit bool) error {
	for _, rec := range records {
		if err := r.exportRecord(rec, createInit); err != nil {
			return fmt.Errorf("export %s %s: %w", rec.DocType, rec.Name, err)
		}
	}
	return nil
}

func (r *Resolver) exportRecord(rec Record, createInit bool) error {
	modulePath, err := r.ModulePath(rec.Module)
	if err != nil {
		return err
	}
	dt, dn := ScrubDtDn(rec.DocType, rec.Name)
	folder := filepath.Join(modulePath, dt, dn)

	body, err := encodeRecord(rec)
	if err != nil {
		return err
	}

	path := filepath.Join(folder, dn+".json")
	if err := r.files.WriteFile(path, body); err != nil {
		return err
	}

	if createInit {
		for _, dir := range []string{modulePath, filepath.Join(modulePath, dt), folder} {
			if err := r.files.Touch(filepath.Join(dir, InitFile)); err != nil {
				return err
			}
		}
	}

	r.log.Debug().Str("doctype", rec.DocType).Str("name", rec.Name).Str("path", path).Msg("exported record")
	return nil
}

// encodeRecord serializes the record with sorted keys and a doctype marker.
func encodeRecord(rec Record) ([]byte, error) {
	raw, err := json.Marshal(rec.Doc)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("record must encode as a JSON object: %w", err)
	}
	doc["doctype"] = rec.DocType
	if rec.Module != "" {
		doc["module"] = rec.Module
	}

	out, err := json.MarshalIndent(doc, "", " ")
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	return append(out, '\n'), nil
}
