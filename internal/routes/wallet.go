package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/savings-pocket/savings_pocket/internal/wallet"
)

// RegisterWalletRoutes wires wallet-related endpoints.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler) {
	r.Get("/sessions/:sessionId/balance", h.Balance)
	r.Get("/sessions/:sessionId/transactions", h.Transactions)
}
