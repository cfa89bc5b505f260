package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Oracle   OracleConfig
	Auth     AuthConfig
	CORS     CORSConfig

	// PriceFallback controls what price is used for a held symbol the oracle
	// did not return a quote for. "zero" values the position at 0 (degraded
	// display, honest about missing data); "cost" falls back to the holding's
	// average buy price (flat unrealized P&L for that position).
	PriceFallback string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// OracleConfig holds settings for the external price-quote service.
type OracleConfig struct {
	BaseURL string
	Timeout time.Duration
}

// AuthConfig holds settings for verifying auth tokens minted by the
// authentication service.
type AuthConfig struct {
	// FernetKey is the base64 fernet key shared with the authentication
	// service. All authenticated routes reject requests when it is unset.
	FernetKey string
	// TokenTTL is the maximum accepted token age.
	TokenTTL time.Duration
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// Price fallback policies accepted in PRICE_FALLBACK.
const (
	PriceFallbackZero = "zero"
	PriceFallbackCost = "cost"
)

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/paper_trading.db"),
		},
		Oracle: OracleConfig{
			BaseURL: getEnv("ORACLE_BASE_URL", "http://localhost:8000/api/intelligence"),
			Timeout: getEnvDuration("ORACLE_TIMEOUT", 3*time.Second),
		},
		Auth: AuthConfig{
			FernetKey: getEnv("AUTH_FERNET_KEY", ""),
			TokenTTL:  getEnvDuration("AUTH_TOKEN_TTL", 24*time.Hour),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{
				"http://localhost:3000",
				"http://localhost",
			}),
		},
		PriceFallback: getEnv("PRICE_FALLBACK", PriceFallbackZero),
	}

	if config.PriceFallback != PriceFallbackZero && config.PriceFallback != PriceFallbackCost {
		return nil, fmt.Errorf("invalid PRICE_FALLBACK %q: must be %q or %q",
			config.PriceFallback, PriceFallbackZero, PriceFallbackCost)
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvDuration parses an environment variable as a time.Duration
// (e.g. "3s", "500ms") or returns a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

// getEnvList parses a comma-separated environment variable or returns a default value.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
