package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/talentledger/talentledger/internal/wallet"
)

// RegisterWalletRoutes wires wallet-related endpoints.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler) {
	r.Get("", h.Info)
}
