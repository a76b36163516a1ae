package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/talentledger/talentledger/internal/identity"
	"github.com/talentledger/talentledger/internal/validation"
)

// Handler exposes auth endpoints for login and refresh.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type loginResponse struct {
	User identity.PublicUser `json:"user"`
	TokenPair
}

// Login validates credentials and returns a token pair.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req identity.Credentials
	if err := validation.Bind(c, &req); err != nil {
		return err
	}
	user, pair, err := h.svc.Login(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(loginResponse{User: user.Public(), TokenPair: pair})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Refresh issues a new access token using a valid refresh token.
func (h *Handler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := validation.Bind(c, &req); err != nil {
		return err
	}
	token, exp, err := h.svc.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"access_token": token, "expires_in": exp})
}
