package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/savings-pocket/savings_pocket/internal/checkout"
	"github.com/savings-pocket/savings_pocket/internal/config"
	"github.com/savings-pocket/savings_pocket/internal/funding"
	"github.com/savings-pocket/savings_pocket/internal/middleware"
	"github.com/savings-pocket/savings_pocket/internal/session"
	"github.com/savings-pocket/savings_pocket/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg      config.Config
	Logger   *slog.Logger
	Sessions *session.Registry
	// Hosted is nil when the static gateway is used.
	Hosted *checkout.Hosted
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if d.Sessions == nil {
		return fmt.Errorf("session registry is required")
	}
	if d.Logger == nil {
		return fmt.Errorf("logger is required")
	}
	if d.Cfg.CheckoutMode == config.CheckoutHosted && d.Hosted == nil {
		return fmt.Errorf("hosted checkout is required when CHECKOUT_MODE=%s", d.Cfg.CheckoutMode)
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	sessionHandler := session.NewHandler(d.Sessions)
	walletHandler := wallet.NewHandler(d.Sessions)
	fundingHandler := funding.NewHandler(d.Sessions)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": middleware.RequestIDFrom(c),
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	RegisterSessionRoutes(api, sessionHandler)
	RegisterWalletRoutes(api, walletHandler)
	RegisterFundingRoutes(api, fundingHandler)
	if d.Hosted != nil {
		RegisterCheckoutRoutes(api, checkout.NewHandler(d.Hosted))
	}

	return nil
}
