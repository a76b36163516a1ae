package routes

import (
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/talentledger/talentledger/internal/identity"
	"github.com/talentledger/talentledger/internal/middleware"
	"github.com/talentledger/talentledger/internal/validation"
)

// RegisterIdentityRoutes wires public identity endpoints.
func RegisterIdentityRoutes(r fiber.Router, ids *identity.Service, logger *slog.Logger) {
	r.Post("/identity/register", func(c *fiber.Ctx) error {
		var req identity.Credentials
		if err := validation.Bind(c, &req); err != nil {
			return err
		}
		user, err := ids.Register(c.UserContext(), req)
		if err != nil {
			return err
		}
		logger.InfoContext(c.UserContext(), "identity.register completed",
			slog.String("user_id", user.ID),
			slog.String("request_id", middleware.RequestIDFrom(c)),
		)
		return c.Status(http.StatusCreated).JSON(fiber.Map{"data": user.Public()})
	})
}

// RegisterMeRoute exposes the authenticated user's public profile at the group root.
func RegisterMeRoute(r fiber.Router) {
	r.Get("", func(c *fiber.Ctx) error {
		user, err := middleware.CurrentUser(c)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": user})
	})
}
