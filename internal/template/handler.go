package template

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/talentledger/talentledger/internal/middleware"
	"github.com/talentledger/talentledger/internal/validation"
)

// Handler exposes template endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a template HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Create(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	var req CreateInput
	if err := validation.Bind(c, &req); err != nil {
		return err
	}
	t, err := h.service.Create(c.UserContext(), user.ID, req)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": t})
}

func (h *Handler) Get(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	t, err := h.service.Get(c.UserContext(), user.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": t})
}

// Update patches a template; the id travels in the body as templateId.
func (h *Handler) Update(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	var req UpdateInput
	if err := validation.Bind(c, &req); err != nil {
		return err
	}
	t, err := h.service.Update(c.UserContext(), user.ID, req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": t})
}

func (h *Handler) Publish(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	t, err := h.service.Publish(c.UserContext(), user.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": t})
}
