package engine

import (
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"webtemplate-backend/internal/apperr"
	"webtemplate-backend/internal/metadata"
	"webtemplate-backend/internal/webtemplate"
)

type Handler struct {
	docs          *Documents
	developerMode bool
}

func NewHandler(docs *Documents, developerMode bool) *Handler {
	return &Handler{docs: docs, developerMode: developerMode}
}

// execContext is the privilege set of an HTTP request. Requests never run
// as patches.
func (h *Handler) execContext() webtemplate.ExecContext {
	return webtemplate.ExecContext{DeveloperMode: h.developerMode}
}

// List handles GET /api/web-templates
func (h *Handler) List(c *fiber.Ctx) error {
	if err := CheckPermission(getUser(c), ActionRead); err != nil {
		return err
	}

	opts := ListOptions{
		Type:    c.Query("type"),
		Module:  c.Query("module"),
		Page:    c.QueryInt("page", 1),
		PerPage: c.QueryInt("per_page", defaultPerPage),
	}
	if raw := c.Query("standard"); raw != "" {
		standard, err := strconv.ParseBool(raw)
		if err != nil {
			return apperr.ParseError("standard must be true or false")
		}
		opts.Standard = &standard
	}

	docs, total, err := h.docs.List(c.UserContext(), opts)
	if err != nil {
		return err
	}

	page, perPage := normalizePage(opts.Page, opts.PerPage)
	return c.JSON(fiber.Map{
		"data": docs,
		"meta": fiber.Map{
			"page":     page,
			"per_page": perPage,
			"total":    total,
		},
	})
}

// Get handles GET /api/web-templates/:name
func (h *Handler) Get(c *fiber.Ctx) error {
	if err := CheckPermission(getUser(c), ActionRead); err != nil {
		return err
	}

	doc, err := h.docs.Get(c.UserContext(), nameParam(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": doc})
}

// Create handles POST /api/web-templates
func (h *Handler) Create(c *fiber.Ctx) error {
	if err := CheckPermission(getUser(c), ActionCreate); err != nil {
		return err
	}

	var doc metadata.WebTemplate
	if err := json.Unmarshal(c.Body(), &doc); err != nil {
		return apperr.ParseError("Invalid JSON body")
	}

	created, err := h.docs.Insert(c.UserContext(), h.execContext(), &doc)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": created})
}

// Update handles PUT /api/web-templates/:name. Keys missing from the body
// keep their stored values; a fields key replaces the whole list.
func (h *Handler) Update(c *fiber.Ctx) error {
	if err := CheckPermission(getUser(c), ActionUpdate); err != nil {
		return err
	}

	name := nameParam(c)
	current, err := h.docs.Get(c.UserContext(), name)
	if err != nil {
		return err
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &keys); err != nil {
		return apperr.ParseError("Invalid JSON body")
	}

	doc := current.Clone()
	// json decodes into existing slice elements in place, which would keep
	// stored fieldnames for entries that omit them.
	if _, ok := keys["fields"]; ok {
		doc.Fields = nil
	}
	if err := json.Unmarshal(c.Body(), doc); err != nil {
		return apperr.ParseError("Invalid JSON body")
	}
	if doc.Name != name {
		return apperr.FieldError("name", "immutable", "Web Templates cannot be renamed")
	}

	saved, err := h.docs.Save(c.UserContext(), h.execContext(), doc)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": saved})
}

// Delete handles DELETE /api/web-templates/:name
func (h *Handler) Delete(c *fiber.Ctx) error {
	if err := CheckPermission(getUser(c), ActionDelete); err != nil {
		return err
	}

	name := nameParam(c)
	if err := h.docs.Delete(c.UserContext(), name); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"name": name}})
}

// Render handles POST /api/web-templates/:name/render. The body is the JSON
// object of values; an empty body renders with no values.
func (h *Handler) Render(c *fiber.Ctx) error {
	if err := CheckPermission(getUser(c), ActionRender); err != nil {
		return err
	}

	html, err := h.docs.Render(c.UserContext(), nameParam(c), string(c.Body()))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"html": html}})
}

// Export handles POST /api/web-templates/:name/export
func (h *Handler) Export(c *fiber.Ctx) error {
	if err := CheckPermission(getUser(c), ActionExport); err != nil {
		return err
	}

	doc, err := h.docs.Export(c.UserContext(), h.execContext(), nameParam(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": doc})
}

func getUser(c *fiber.Ctx) *metadata.UserContext {
	user, _ := c.Locals("user").(*metadata.UserContext)
	return user
}

// nameParam returns the decoded :name route parameter, copied out of the
// request buffer.
func nameParam(c *fiber.Ctx) string {
	raw := c.Params("name")
	if name, err := url.PathUnescape(raw); err == nil {
		return utils.CopyString(name)
	}
	return utils.CopyString(raw)
}
