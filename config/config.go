package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all runtime settings for the extraction service.
type Config struct {
	Port        string
	DatabaseURL string

	// DefaultCurrency is applied when no tier can determine a currency.
	DefaultCurrency string

	LLMServiceURL string
	LLMTimeout    time.Duration

	FetchTimeout      time.Duration
	FetchUserAgent    string
	FetchMinBodyBytes int

	// BrowserFetchEnabled switches the pipeline to the headless-browser
	// fetcher for JavaScript-heavy storefronts.
	BrowserFetchEnabled bool

	CORSEnabled      bool
	RateLimitEnabled bool
	RateLimitPerSec  float64
}

// Load reads configuration from the environment.
func Load() *Config {
	return &Config{
		Port:            getEnv("PORT", "8080"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		DefaultCurrency: getEnv("DEFAULT_CURRENCY", "USD"),

		LLMServiceURL: getEnv("LLM_SERVICE_URL", "http://llm-service:5100"),
		LLMTimeout:    getEnvDuration("LLM_TIMEOUT", 45*time.Second),

		FetchTimeout:      getEnvDuration("FETCH_TIMEOUT", 30*time.Second),
		FetchUserAgent:    getEnv("FETCH_USER_AGENT", defaultUserAgent),
		FetchMinBodyBytes: getEnvInt("FETCH_MIN_BODY_BYTES", 250),

		BrowserFetchEnabled: getEnvBool("BROWSER_FETCH_ENABLED", false),

		CORSEnabled:      getEnvBool("API_CORS_ENABLED", true),
		RateLimitEnabled: getEnvBool("API_RATE_LIMIT_ENABLED", true),
		RateLimitPerSec:  getEnvFloat("API_RATE_LIMIT_PER_SEC", 5),
	}
}

// defaultUserAgent mirrors a current desktop Chrome so storefronts serve the
// normal markup instead of a bot interstitial.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
