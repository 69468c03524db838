package routes

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RegisterHealthRoutes adds a liveness endpoint.
func RegisterHealthRoutes(app *fiber.App, d Deps) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		body := fiber.Map{
			"status":        "ok",
			"checkout_mode": d.Cfg.CheckoutMode,
			"sessions":      d.Sessions.Len(),
			"timestamp":     time.Now().UTC().Format(time.RFC3339Nano),
		}
		if d.Hosted != nil {
			body["open_checkouts"] = d.Hosted.Open()
		}
		return c.Status(http.StatusOK).JSON(body)
	})
}
