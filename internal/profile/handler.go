package profile

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/talentledger/talentledger/internal/apperr"
	"github.com/talentledger/talentledger/internal/middleware"
	"github.com/talentledger/talentledger/internal/validation"
)

// Handler exposes profile section endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a profile HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func categoryParam(c *fiber.Ctx) (Category, error) {
	category, ok := ParseCategory(c.Params("category"))
	if !ok {
		return "", apperr.New(apperr.KindNotFound, "unknown profile section")
	}
	return category, nil
}

// List returns the caller's entries in a section.
func (h *Handler) List(c *fiber.Ctx) error {
	category, err := categoryParam(c)
	if err != nil {
		return err
	}
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	entries, err := h.service.List(c.UserContext(), user.ID, category)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"data": entries})
}

// Add stores a new entry in a section.
func (h *Handler) Add(c *fiber.Ctx) error {
	category, err := categoryParam(c)
	if err != nil {
		return err
	}
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	var req EntryInput
	if err := validation.Bind(c, &req); err != nil {
		return err
	}
	entry, err := h.service.Add(c.UserContext(), user.ID, category, req)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": entry})
}

// Delete removes one of the caller's entries.
func (h *Handler) Delete(c *fiber.Ctx) error {
	category, err := categoryParam(c)
	if err != nil {
		return err
	}
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), user.ID, category, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
