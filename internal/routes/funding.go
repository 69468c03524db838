package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/savings-pocket/savings_pocket/internal/funding"
)

// RegisterFundingRoutes wires the funding flow endpoints.
func RegisterFundingRoutes(r fiber.Router, h *funding.Handler) {
	r.Get("/sessions/:sessionId/funding", h.Get)
	r.Post("/sessions/:sessionId/funding/open", h.Open)
	r.Post("/sessions/:sessionId/funding/dismiss", h.Dismiss)
	r.Post("/sessions/:sessionId/funding/confirm", h.Confirm)
	r.Post("/sessions/:sessionId/funding/cancel", h.Cancel)
}
