package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"webtemplate-backend/internal/apperr"
	"webtemplate-backend/internal/metadata"
	"webtemplate-backend/internal/store"
	"webtemplate-backend/internal/webtemplate"
)

// ListOptions filters and pages a List call. Zero values mean "no filter".
type ListOptions struct {
	Type     string
	Module   string
	Standard *bool
	Page     int
	PerPage  int
}

const (
	defaultPerPage = 25
	maxPerPage     = 100
)

// Documents persists Web Templates and drives the controller hooks around
// each write: Validate before the row is written, OnUpdate after.
type Documents struct {
	store *store.Store
	ctrl  *webtemplate.Controller
	log   zerolog.Logger
}

func NewDocuments(s *store.Store, ctrl *webtemplate.Controller, log zerolog.Logger) *Documents {
	return &Documents{store: s, ctrl: ctrl, log: log}
}

// Get loads a Web Template by name.
func (d *Documents) Get(ctx context.Context, name string) (*metadata.WebTemplate, error) {
	return d.get(ctx, d.store.DB, name)
}

func (d *Documents) get(ctx context.Context, q store.Querier, name string) (*metadata.WebTemplate, error) {
	rows, err := store.QueryRows(ctx, q,
		fmt.Sprintf("SELECT %s FROM %s WHERE name = %s", webTemplateColumns, webTemplateTable, d.store.Dialect.Placeholder(1)),
		name)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", name, err)
	}
	if len(rows) == 0 {
		return nil, apperr.NotFoundError(metadata.DocType, name)
	}
	if d.store.Dialect.NeedsBoolFix() {
		store.NormalizeBooleans(rows, webTemplateBoolFields)
	}
	return rowToWebTemplate(rows[0])
}

// List returns one page of Web Templates ordered by name, plus the total
// number of matches.
func (d *Documents) List(ctx context.Context, opts ListOptions) ([]*metadata.WebTemplate, int64, error) {
	pb := d.store.Dialect.NewParamBuilder()
	var where []string
	if opts.Type != "" {
		where = append(where, "type = "+pb.Add(opts.Type))
	}
	if opts.Module != "" {
		where = append(where, "module = "+pb.Add(opts.Module))
	}
	if opts.Standard != nil {
		where = append(where, "standard = "+pb.Add(d.store.Dialect.BoolParam(*opts.Standard)))
	}
	whereSQL := ""
	if len(where) > 0 {
		whereSQL = " WHERE " + strings.Join(where, " AND ")
	}

	countRow, err := store.QueryRow(ctx, d.store.DB,
		fmt.Sprintf("SELECT COUNT(*) AS count FROM %s%s", webTemplateTable, whereSQL), pb.Params()...)
	if err != nil {
		return nil, 0, fmt.Errorf("count web templates: %w", err)
	}
	total, _ := countRow["count"].(int64)

	page, perPage := normalizePage(opts.Page, opts.PerPage)
	limit := pb.Add(perPage)
	offset := pb.Add((page - 1) * perPage)

	rows, err := store.QueryRows(ctx, d.store.DB,
		fmt.Sprintf("SELECT %s FROM %s%s ORDER BY name LIMIT %s OFFSET %s",
			webTemplateColumns, webTemplateTable, whereSQL, limit, offset),
		pb.Params()...)
	if err != nil {
		return nil, 0, fmt.Errorf("list web templates: %w", err)
	}
	if d.store.Dialect.NeedsBoolFix() {
		store.NormalizeBooleans(rows, webTemplateBoolFields)
	}

	docs := make([]*metadata.WebTemplate, 0, len(rows))
	for _, row := range rows {
		doc, err := rowToWebTemplate(row)
		if err != nil {
			return nil, 0, err
		}
		docs = append(docs, doc)
	}
	return docs, total, nil
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

// Insert validates and stores a new Web Template, then runs OnUpdate with no
// previous snapshot.
func (d *Documents) Insert(ctx context.Context, ec webtemplate.ExecContext, doc *metadata.WebTemplate) (*metadata.WebTemplate, error) {
	if err := d.ctrl.Validate(ec, doc); err != nil {
		return nil, err
	}

	fields, err := encodeFields(doc.Fields)
	if err != nil {
		return nil, err
	}

	dialect := d.store.Dialect
	pb := dialect.NewParamBuilder()
	q := fmt.Sprintf(`INSERT INTO %s (name, type, standard, module, template, fields, created_at, modified)
		VALUES (%s, %s, %s, %s, %s, %s, %s, %s)`,
		webTemplateTable,
		pb.Add(doc.Name), pb.Add(doc.Type), pb.Add(dialect.BoolParam(doc.Standard)),
		pb.Add(nullIfEmpty(doc.Module)), pb.Add(doc.Template), pb.Add(fields),
		dialect.NowExpr(), dialect.NowExpr())

	err = d.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := store.Exec(ctx, tx, q, pb.Params()...); err != nil {
			return d.mapWriteError(doc.Name, err)
		}
		return d.afterSave(ctx, tx, ec, nil, doc)
	})
	if err != nil {
		return nil, err
	}

	d.log.Info().Str("name", doc.Name).Bool("standard", doc.Standard).Msg("web template created")
	return d.Get(ctx, doc.Name)
}

// Save validates and stores changes to an existing Web Template. The
// persisted row is read first and handed to OnUpdate as the previous
// snapshot.
func (d *Documents) Save(ctx context.Context, ec webtemplate.ExecContext, doc *metadata.WebTemplate) (*metadata.WebTemplate, error) {
	before, err := d.Get(ctx, doc.Name)
	if err != nil {
		return nil, err
	}

	if err := d.ctrl.Validate(ec, doc); err != nil {
		return nil, err
	}

	fields, err := encodeFields(doc.Fields)
	if err != nil {
		return nil, err
	}

	dialect := d.store.Dialect
	pb := dialect.NewParamBuilder()
	q := fmt.Sprintf(`UPDATE %s SET type = %s, standard = %s, module = %s, template = %s, fields = %s, modified = %s
		WHERE name = %s`,
		webTemplateTable,
		pb.Add(doc.Type), pb.Add(dialect.BoolParam(doc.Standard)), pb.Add(nullIfEmpty(doc.Module)),
		pb.Add(doc.Template), pb.Add(fields), dialect.NowExpr(),
		pb.Add(doc.Name))

	err = d.inTx(ctx, func(tx *sql.Tx) error {
		affected, err := store.Exec(ctx, tx, q, pb.Params()...)
		if err != nil {
			return d.mapWriteError(doc.Name, err)
		}
		if affected == 0 {
			return apperr.NotFoundError(metadata.DocType, doc.Name)
		}
		return d.afterSave(ctx, tx, ec, before, doc)
	})
	if err != nil {
		return nil, err
	}

	d.log.Info().Str("name", doc.Name).Bool("standard", doc.Standard).Msg("web template saved")
	return d.Get(ctx, doc.Name)
}

// Upsert saves doc when a record with its name exists, else inserts it.
func (d *Documents) Upsert(ctx context.Context, ec webtemplate.ExecContext, doc *metadata.WebTemplate) (*metadata.WebTemplate, error) {
	_, err := d.Get(ctx, doc.Name)
	switch {
	case err == nil:
		return d.Save(ctx, ec, doc)
	case apperr.HasCode(err, "NOT_FOUND"):
		return d.Insert(ctx, ec, doc)
	default:
		return nil, err
	}
}

// afterSave runs OnUpdate inside the write transaction. A template body
// pulled back from disk is written to the row before commit.
func (d *Documents) afterSave(ctx context.Context, tx *sql.Tx, ec webtemplate.ExecContext, before, doc *metadata.WebTemplate) error {
	template := doc.Template
	if err := d.ctrl.OnUpdate(ec, before, doc); err != nil {
		return err
	}
	if doc.Template == template {
		return nil
	}

	p := d.store.Dialect.Placeholder
	_, err := store.Exec(ctx, tx,
		fmt.Sprintf("UPDATE %s SET template = %s WHERE name = %s", webTemplateTable, p(1), p(2)),
		doc.Template, doc.Name)
	if err != nil {
		return fmt.Errorf("write back template of %s: %w", doc.Name, err)
	}
	return nil
}

// Delete removes the row. Exported files are left on disk.
func (d *Documents) Delete(ctx context.Context, name string) error {
	affected, err := store.Exec(ctx, d.store.DB,
		fmt.Sprintf("DELETE FROM %s WHERE name = %s", webTemplateTable, d.store.Dialect.Placeholder(1)), name)
	if err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	if affected == 0 {
		return apperr.NotFoundError(metadata.DocType, name)
	}
	d.log.Info().Str("name", name).Msg("web template deleted")
	return nil
}

// Render renders the named template against a JSON object of values.
func (d *Documents) Render(ctx context.Context, name, values string) (string, error) {
	doc, err := d.Get(ctx, name)
	if err != nil {
		return "", err
	}
	return d.ctrl.Render(doc, values)
}

// Export rewrites the module tree files of a standard template. The HTML
// file is only created when missing.
func (d *Documents) Export(ctx context.Context, ec webtemplate.ExecContext, name string) (*metadata.WebTemplate, error) {
	if !ec.DeveloperMode {
		return nil, apperr.PermissionError("Enable developer mode to export a Web Template")
	}
	doc, err := d.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if !doc.Standard {
		return nil, apperr.FieldError("standard", "required", "Only standard Web Templates can be exported")
	}
	if err := d.ctrl.Export(doc); err != nil {
		return nil, err
	}
	if err := d.ctrl.CreateTemplateFile(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (d *Documents) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := d.store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (d *Documents) mapWriteError(name string, err error) error {
	if errors.Is(store.MapError(d.store.Dialect, err), store.ErrUniqueViolation) {
		return apperr.ConflictError(fmt.Sprintf("%s %s already exists", metadata.DocType, name))
	}
	return fmt.Errorf("write %s: %w", name, err)
}
