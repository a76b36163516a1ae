package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/talentledger/talentledger/internal/profile"
)

// RegisterProfileRoutes wires the advanced-profile section endpoints below /profile.
func RegisterProfileRoutes(r fiber.Router, h *profile.Handler) {
	r.Get("/:category", h.List)
	r.Post("/:category", h.Add)
	r.Delete("/:category/:id", h.Delete)
}
