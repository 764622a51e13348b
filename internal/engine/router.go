package engine

import "github.com/gofiber/fiber/v2"

// RegisterRoutes mounts the Web Template API behind authMW.
func RegisterRoutes(app *fiber.App, h *Handler, authMW fiber.Handler) {
	api := app.Group("/api/web-templates", authMW)

	api.Get("/", h.List)
	api.Get("/:name", h.Get)
	api.Post("/", h.Create)
	api.Put("/:name", h.Update)
	api.Delete("/:name", h.Delete)
	api.Post("/:name/render", h.Render)
	api.Post("/:name/export", h.Export)
}
