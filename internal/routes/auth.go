package routes

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/talentledger/talentledger/internal/auth"
	"github.com/talentledger/talentledger/internal/middleware"
)

// RegisterAuthRoutes wires authentication endpoints. Logout runs behind authn
// and revokes every token issued to the caller.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, svc *auth.Service, rateLimiter, authn fiber.Handler) {
	group := r.Group("/auth")
	if rateLimiter != nil {
		group.Post("/login", rateLimiter, h.Login)
	} else {
		group.Post("/login", h.Login)
	}
	group.Post("/refresh", h.Refresh)
	group.Post("/logout", authn, func(c *fiber.Ctx) error {
		user, err := middleware.CurrentUser(c)
		if err != nil {
			return err
		}
		if err := svc.Logout(c.UserContext(), user.ID); err != nil {
			return err
		}
		return c.Status(http.StatusOK).JSON(fiber.Map{"status": "logged_out"})
	})
}
