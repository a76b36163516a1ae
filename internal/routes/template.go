package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/talentledger/talentledger/internal/template"
)

// RegisterTemplateRoutes wires template endpoints below /templates.
func RegisterTemplateRoutes(r fiber.Router, h *template.Handler) {
	r.Post("", h.Create)
	r.Patch("", h.Update)
	r.Get("/:id", h.Get)
	r.Post("/:id/publish", h.Publish)
}
