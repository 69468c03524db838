package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/savings-pocket/savings_pocket/internal/checkout"
)

// RegisterCheckoutRoutes wires the hosted widget callbacks.
func RegisterCheckoutRoutes(r fiber.Router, h *checkout.Handler) {
	r.Get("/checkout/:reference", h.Widget)
	r.Post("/checkout/:reference/transaction", h.Transaction)
	r.Post("/checkout/:reference/close", h.Close)
}
