package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Price sources accepted by PRICE_SOURCE.
const (
	PriceSourceLedger    = "ledger"
	PriceSourceCoinGecko = "coingecko"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	LedgerURL             string
	DefaultIdentity       string
	DefaultRecipient      string
	AssetsFile            string
	PriceSource           string
	CoinGeckoURL          string
	PricePollInterval     time.Duration
	PriceRetainOnFailure  bool
	DatabaseURL           string
	HTTPPort              string
	SheetsSpreadsheetID   string
	GoogleCredentialsJSON string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		LedgerURL:             envOrDefault("LEDGER_API_URL", "http://localhost:4000/api"),
		DefaultIdentity:       envOrDefault("WALLET_USER", "alice"),
		DefaultRecipient:      envOrDefault("WALLET_RECIPIENT", "bob"),
		AssetsFile:            envOrDefault("ASSETS_FILE", ""),
		PriceSource:           envOneOf("PRICE_SOURCE", PriceSourceLedger, PriceSourceLedger, PriceSourceCoinGecko),
		CoinGeckoURL:          envOrDefault("COINGECKO_URL", "https://api.coingecko.com/api/v3"),
		PricePollInterval:     envOrDefaultDuration("PRICE_POLL_INTERVAL", 15*time.Second),
		PriceRetainOnFailure:  envOrDefaultBool("PRICE_RETAIN_ON_FAILURE", true),
		DatabaseURL:           envOrDefault("DATABASE_URL", ""),
		HTTPPort:              envOrDefault("HTTP_PORT", "8080"),
		SheetsSpreadsheetID:   envOrDefault("GOOGLE_SHEETS_ID", ""),
		GoogleCredentialsJSON: envOrDefault("GOOGLE_CREDENTIALS_JSON", ""),
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOneOf(key, defaultVal string, allowed ...string) string {
	v := envOrDefault(key, defaultVal)
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	slog.Warn("unsupported env var value, using default", "key", key, "value", v, "default", defaultVal)
	return defaultVal
}

func envOrDefaultBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			slog.Warn("invalid boolean env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return b
	}
	return defaultVal
}

func envOrDefaultDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return d
	}
	return defaultVal
}
