package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
)

const (
	defaultAppName         = "SavingsPocket"
	defaultAppEnv          = "development"
	defaultPort            = "8080"
	defaultLogLevel        = "info"
	defaultShutdownDelay   = 10 * time.Second
	defaultCheckoutMode    = CheckoutHosted
	defaultCurrency        = "NGN"
	defaultPayerEmail      = "user@example.com"
	defaultPayerFirstName  = "John"
	defaultPayerLastName   = "Doe"
	defaultPayerPhone      = "08012345678"
	defaultWidgetColor     = "#000000"
	defaultOpeningBalance  = "25000.00"
	shutdownSecondsEnvVar  = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar = "SHUTDOWN_TIMEOUT"
	dotEnvFile             = ".env"
)

// Checkout modes.
const (
	CheckoutHosted = "hosted"
	CheckoutStatic = "static"
)

// Payer identity shown in the payment widget.
type Payer struct {
	Email     string `validate:"required,email"`
	FirstName string `validate:"required"`
	LastName  string `validate:"required"`
	Phone     string
}

// Config captures application runtime configuration loaded from the
// environment, an optional .env file and command line flags.
type Config struct {
	AppName        string `validate:"required"`
	AppEnv         string
	Port           string `validate:"required"`
	LogLevel       string `validate:"oneof=debug info warn error"`
	ShutdownPeriod time.Duration

	// Merchant credentials for the hosted widget. Absence is tolerated.
	APIKey     string
	BusinessID string

	CheckoutMode   string `validate:"oneof=hosted static"`
	Currency       string `validate:"required,iso4217"`
	Payer          Payer
	WidgetColor    string `validate:"required,hexcolor"`
	OpeningBalance decimal.Decimal
	SeedDemoData   bool
}

var validate = validator.New()

// Load reads configuration from the process environment, a .env file in the
// working directory (existing variables win) and the given flags.
func Load(args []string) (Config, error) {
	if err := godotenv.Load(dotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("read %s: %w", dotEnvFile, err)
	}
	return load(os.Getenv, args)
}

func load(getenv func(string) string, args []string) (Config, error) {
	env := func(key, fallback string) string {
		if value := getenv(key); value != "" {
			return value
		}
		return fallback
	}

	cfg := Config{
		AppName:        env("APP_NAME", defaultAppName),
		AppEnv:         env("APP_ENV", defaultAppEnv),
		Port:           env("PORT", defaultPort),
		LogLevel:       strings.ToLower(env("LOG_LEVEL", defaultLogLevel)),
		ShutdownPeriod: defaultShutdownDelay,
		APIKey:         getenv("ALATPAY_API_KEY"),
		BusinessID:     getenv("ALATPAY_BUSINESS_ID"),
		CheckoutMode:   strings.ToLower(env("CHECKOUT_MODE", defaultCheckoutMode)),
		Currency:       strings.ToUpper(env("CURRENCY", defaultCurrency)),
		Payer: Payer{
			Email:     env("PAYER_EMAIL", defaultPayerEmail),
			FirstName: env("PAYER_FIRST_NAME", defaultPayerFirstName),
			LastName:  env("PAYER_LAST_NAME", defaultPayerLastName),
			Phone:     env("PAYER_PHONE", defaultPayerPhone),
		},
		WidgetColor:  env("WIDGET_COLOR", defaultWidgetColor),
		SeedDemoData: true,
	}

	if v := getenv(shutdownSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownSecondsEnvVar, err)
		}
		cfg.ShutdownPeriod = time.Duration(seconds) * time.Second
	} else if v := getenv(shutdownDurationEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownDurationEnvVar, err)
		}
		cfg.ShutdownPeriod = d
	}

	if v := getenv("SEED_DEMO_DATA"); v != "" {
		seed, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SEED_DEMO_DATA: %w", err)
		}
		cfg.SeedDemoData = seed
	}

	opening := env("OPENING_BALANCE", defaultOpeningBalance)

	flags := pflag.NewFlagSet(defaultAppName, pflag.ContinueOnError)
	flags.StringVarP(&cfg.Port, "port", "p", cfg.Port, "HTTP listen port")
	flags.StringVarP(&cfg.LogLevel, "log-level", "l", cfg.LogLevel, "Logging level (debug, info, warn, error)")
	flags.StringVarP(&cfg.CheckoutMode, "checkout-mode", "m", cfg.CheckoutMode, "Payment widget mode (hosted, static)")
	flags.StringVar(&opening, "opening-balance", opening, "Balance of a freshly mounted session")
	flags.BoolVar(&cfg.SeedDemoData, "seed-demo-data", cfg.SeedDemoData, "Seed sessions with demo transactions")
	flags.DurationVar(&cfg.ShutdownPeriod, "shutdown-timeout", cfg.ShutdownPeriod, "Graceful shutdown timeout")
	if err := flags.Parse(args); err != nil {
		return Config{}, fmt.Errorf("parse flags: %w", err)
	}

	balance, err := decimal.NewFromString(opening)
	if err != nil {
		return Config{}, fmt.Errorf("invalid OPENING_BALANCE: %w", err)
	}
	if balance.IsNegative() {
		return Config{}, fmt.Errorf("invalid OPENING_BALANCE: must not be negative")
	}
	cfg.OpeningBalance = balance

	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// IsDev reports whether the app runs in a development environment.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}
