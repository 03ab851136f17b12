package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"cryptoTradeClient/internal/adapters/logger" // Import the logger package for LogLevel
	"cryptoTradeClient/internal/domain"
)

// Config holds all application configuration. It is loaded once at startup
// and treated as immutable afterwards; credentials live here and nowhere
// else.
type Config struct {
	// Exchange API
	APIKey     string
	SecretKey  string
	IsTestnet  bool
	RecvWindow time.Duration // Signed-request staleness tolerance
	Timeout    time.Duration // HTTP timeout for exchange calls

	// Market Data Parameters
	Symbol      string
	Interval    domain.Interval
	KlineLimit  int      // Number of candles to fetch (may exceed one page)
	QuoteAssets []string // Quote-asset filter for symbol discovery

	// Database
	DBPath string

	// Logging
	LogLevel logger.LogLevel
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	// Exchange API
	cfg.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.SecretKey = getEnv("BINANCE_API_SECRET", "")
	cfg.IsTestnet = getEnvAsBool("IS_TESTNET", true) // Default to testnet for safety

	if cfg.APIKey == "" {
		errs = append(errs, "BINANCE_API_KEY must be set")
	}
	if cfg.SecretKey == "" {
		errs = append(errs, "BINANCE_API_SECRET must be set")
	}

	recvWindowMs := getEnvAsInt("RECV_WINDOW_MS", 5000)
	if recvWindowMs <= 0 {
		errs = append(errs, "RECV_WINDOW_MS must be positive")
	}
	cfg.RecvWindow = time.Duration(recvWindowMs) * time.Millisecond

	timeoutSeconds := getEnvAsInt("HTTP_TIMEOUT_SECONDS", 10)
	if timeoutSeconds <= 0 {
		errs = append(errs, "HTTP_TIMEOUT_SECONDS must be positive")
	}
	cfg.Timeout = time.Duration(timeoutSeconds) * time.Second

	// Market Data Parameters
	cfg.Symbol = getEnv("SYMBOL", "ETHUSDT")
	if cfg.Symbol == "" {
		errs = append(errs, "SYMBOL must be set")
	}

	cfg.Interval = domain.Interval(getEnv("INTERVAL", "1h"))
	if !cfg.Interval.IsValid() {
		errs = append(errs, fmt.Sprintf("INTERVAL %q is not an accepted kline interval", cfg.Interval))
	}

	cfg.KlineLimit, err = getEnvAsIntRequired("KLINE_LIMIT", 1000)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid KLINE_LIMIT: %v", err))
	} else if cfg.KlineLimit <= 0 {
		errs = append(errs, "KLINE_LIMIT must be positive")
	}

	quoteAssetsStr := getEnv("QUOTE_ASSETS", "USDT")
	for _, asset := range strings.Split(quoteAssetsStr, ",") {
		if asset = strings.TrimSpace(asset); asset != "" {
			cfg.QuoteAssets = append(cfg.QuoteAssets, asset)
		}
	}

	// Database
	cfg.DBPath = getEnv("DB_PATH", "./data/klines.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}

	// Logging
	logLevelStr := getEnv("LOG_LEVEL", "INFO")
	cfg.LogLevel = logger.ParseLevel(logLevelStr) // Use the parser from the logger package

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		// Use default if env var is not set at all
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		// Return error if env var is set but invalid
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
