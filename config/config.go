package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
)

// Config is the env-backed application configuration. Load is called once in
// main after godotenv has populated the environment.
type Config struct {
	Port        string
	DatabaseURL string

	JWTSecret         string
	StreamTokenSecret string

	DispatchSecret string

	GatewayURL    string
	GatewayKey    string
	GatewayMode   string // "live" or "sandbox"
	Currency      string
	StaticTaxRate decimal.Decimal
	TipPercent    decimal.Decimal
	SuccessURL    string
	FailureURL    string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:              getenv("PORT", "8080"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		StreamTokenSecret: os.Getenv("STREAM_TOKEN_SECRET"),
		DispatchSecret:    os.Getenv("DISPATCH_WEBHOOK_SECRET"),
		GatewayURL:        os.Getenv("PAYMENT_GATEWAY_URL"),
		GatewayKey:        os.Getenv("PAYMENT_GATEWAY_KEY"),
		GatewayMode:       getenv("PAYMENT_GATEWAY_MODE", "live"),
		Currency:          getenv("CURRENCY", "USD"),
		SuccessURL:        os.Getenv("PAYMENT_SUCCESS_URL"),
		FailureURL:        os.Getenv("PAYMENT_FAILURE_URL"),
	}

	if cfg.DatabaseURL == "" {
		// Fall back to discrete DB_* vars, same shape the old deployment used.
		cfg.DatabaseURL = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			os.Getenv("DB_HOST"), os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"),
			os.Getenv("DB_NAME"), getenv("DB_PORT", "5432"),
		)
	}

	rate, err := decimal.NewFromString(getenv("STATIC_TAX_RATE", "0.0825"))
	if err != nil {
		return nil, fmt.Errorf("invalid STATIC_TAX_RATE: %w", err)
	}
	cfg.StaticTaxRate = rate

	tip, err := decimal.NewFromString(getenv("DEFAULT_TIP_PERCENT", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_TIP_PERCENT: %w", err)
	}
	cfg.TipPercent = tip

	for name, v := range map[string]string{
		"JWT_SECRET":              cfg.JWTSecret,
		"STREAM_TOKEN_SECRET":     cfg.StreamTokenSecret,
		"DISPATCH_WEBHOOK_SECRET": cfg.DispatchSecret,
	} {
		if v == "" {
			return nil, fmt.Errorf("%s is required", name)
		}
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
