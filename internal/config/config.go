// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port            string
	FrontendURL     string
	DBPath          string
	GeminiAPIKey    string
	ModelName       string
	ClassifyTimeout time.Duration
	HistoryLimit    int // activity records loaded at startup, 0 = unlimited
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	historyLimit := getEnvInt("HISTORY_LIMIT", 200)
	if historyLimit < 0 {
		historyLimit = 0
	}

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		FrontendURL:     getEnv("FRONTEND_URL", ""),
		DBPath:          getEnv("DB_PATH", "./data/starbuddy.db"),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		ModelName:       getEnv("MODEL_NAME", "gemini-2.5-flash"),
		ClassifyTimeout: getEnvDuration("CLASSIFY_TIMEOUT", 30*time.Second),
		HistoryLimit:    historyLimit,
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.ModelName == "" {
		return fmt.Errorf("MODEL_NAME cannot be empty")
	}
	if c.ClassifyTimeout <= 0 {
		return fmt.Errorf("CLASSIFY_TIMEOUT must be > 0")
	}
	return nil
}

// ClassifierEnabled reports whether an API key is configured. Without one,
// every submission resolves to the fallback verdict.
func (c *Config) ClassifierEnabled() bool {
	return c.GeminiAPIKey != ""
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
