package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/savings-pocket/savings_pocket/internal/checkout"
	"github.com/savings-pocket/savings_pocket/internal/config"
	"github.com/savings-pocket/savings_pocket/internal/funding"
	"github.com/savings-pocket/savings_pocket/internal/notification"
	"github.com/savings-pocket/savings_pocket/internal/routes"
	"github.com/savings-pocket/savings_pocket/internal/session"
	"github.com/savings-pocket/savings_pocket/internal/wallet"
)

// Server wraps the Fiber application and the mounted sessions.
type Server struct {
	app      *fiber.App
	cfg      config.Config
	sessions *session.Registry
}

// New builds the payment gateway and session registry, then delegates route
// wiring to routes.Setup.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	})

	if cfg.APIKey == "" || cfg.BusinessID == "" {
		logger.Warn("payment widget credentials are not set", slog.Bool("api_key_set", cfg.APIKey != ""), slog.Bool("business_id_set", cfg.BusinessID != ""))
	}

	var (
		gateway funding.Gateway
		hosted  *checkout.Hosted
	)
	switch cfg.CheckoutMode {
	case config.CheckoutStatic:
		gateway = funding.StaticGateway{}
	default:
		hosted = checkout.NewHosted(checkout.Credentials{APIKey: cfg.APIKey, BusinessID: cfg.BusinessID}, logger)
		gateway = hosted
	}

	sessions := session.NewRegistry(NewSessionFactory(cfg, gateway, notification.NewLoggerNotifier(logger), logger))

	if err := routes.Setup(app, routes.Deps{Cfg: cfg, Logger: logger, Sessions: sessions, Hosted: hosted}); err != nil {
		return nil, err
	}

	return &Server{app: app, cfg: cfg, sessions: sessions}, nil
}

// NewSessionFactory returns a factory producing a seeded store and a funding
// machine bound to gateway.
func NewSessionFactory(cfg config.Config, gateway funding.Gateway, notifier notification.Notifier, logger *slog.Logger) session.Factory {
	template := funding.CheckoutRequest{
		Currency: cfg.Currency,
		Payer: funding.Payer{
			Email:     cfg.Payer.Email,
			FirstName: cfg.Payer.FirstName,
			LastName:  cfg.Payer.LastName,
			Phone:     cfg.Payer.Phone,
		},
		Color:    cfg.WidgetColor,
		Metadata: map[string]string{"app": cfg.AppName, "purpose": "Funding"},
	}

	return func() (*wallet.Store, *funding.Machine, error) {
		var store *wallet.Store
		if cfg.SeedDemoData {
			store = wallet.NewDemoStore(cfg.OpeningBalance)
		} else {
			store = wallet.NewStore(cfg.OpeningBalance, nil)
		}
		machine, err := funding.NewMachine(store, gateway, funding.Options{
			Template: template,
			Notifier: notifier,
			Logger:   logger,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, machine, nil
	}
}

// App exposes the underlying Fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen starts the HTTP server.
func (s *Server) Listen() error {
	return s.app.Listen(s.cfg.Address())
}

// Shutdown gracefully stops the HTTP server and unmounts all sessions.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.app.ShutdownWithContext(ctx)
	s.sessions.Close()
	return err
}
