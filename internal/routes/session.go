package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/savings-pocket/savings_pocket/internal/session"
)

// RegisterSessionRoutes wires screen mount/view/unmount endpoints.
func RegisterSessionRoutes(r fiber.Router, h *session.Handler) {
	r.Post("/sessions", h.Mount)
	r.Get("/sessions/:sessionId", h.View)
	r.Delete("/sessions/:sessionId", h.Unmount)
}
