// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port     string
	AppEnv   string
	LogLevel string

	SessionSecret string
	SessionTTL    time.Duration

	Identity   IdentityConfig
	Database   DatabaseConfig
	Completion CompletionConfig

	ChatRateLimit  float64 // turns per second per session
	ChatRateBurst  int
	MaxUploadBytes int64
}

// IdentityConfig selects and configures the identity provider.
type IdentityConfig struct {
	Provider        string // "local" or "firebase"
	FirebaseAPIKey  string
	FirebaseBaseURL string
}

// DatabaseConfig describes the relational store holding profiles and
// health entries.
type DatabaseConfig struct {
	Driver   string // "postgres", "sqlite" or "sqlserver"
	URL      string
	Server   string
	Name     string
	Username string
	Password string
	Migrate  bool
}

// CompletionConfig describes the hosted completion service.
type CompletionConfig struct {
	Backend string // "chat" or "analysis"

	AzureEndpoint   string
	AzureAPIKey     string
	AzureAPIVersion string
	Deployment      string

	AnalysisEndpoint string
	AnalysisKey      string

	OpenAIKey   string
	OpenAIModel string

	Timeout time.Duration
}

// Load reads configuration from environment variables.  Only structural
// settings are validated here; credentials that are missing surface as
// connection failures when first used.
func Load() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		AppEnv:        getEnv("APP_ENV", "production"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		SessionTTL:    getEnvDuration("SESSION_TTL", 24*time.Hour),
		Identity: IdentityConfig{
			Provider:        getEnv("IDENTITY_PROVIDER", "local"),
			FirebaseAPIKey:  os.Getenv("FIREBASE_API_KEY"),
			FirebaseBaseURL: os.Getenv("FIREBASE_AUTH_ENDPOINT"),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			URL:      os.Getenv("DATABASE_URL"),
			Server:   os.Getenv("DB_SERVER"),
			Name:     os.Getenv("DB_NAME"),
			Username: os.Getenv("DB_USERNAME"),
			Password: os.Getenv("DB_PASSWORD"),
			Migrate:  getEnvBool("DB_MIGRATE", false),
		},
		Completion: CompletionConfig{
			Backend:          getEnv("COMPLETION_BACKEND", "chat"),
			AzureEndpoint:    os.Getenv("AZURE_ENDPOINT"),
			AzureAPIKey:      os.Getenv("AZURE_API_KEY"),
			AzureAPIVersion:  getEnv("AZURE_API_VERSION", "2024-02-01"),
			Deployment:       os.Getenv("AZURE_DEPLOYMENT_NAME"),
			AnalysisEndpoint: os.Getenv("AZURE_AI_ENDPOINT"),
			AnalysisKey:      os.Getenv("AZURE_AI_KEY"),
			OpenAIKey:        os.Getenv("OPENAI_API_KEY"),
			OpenAIModel:      getEnv("OPENAI_MODEL_CHAT", "gpt-4o-mini"),
			Timeout:          getEnvDuration("COMPLETION_TIMEOUT", 60*time.Second),
		},
		ChatRateLimit:  getEnvFloat("CHAT_RATE_LIMIT", 0.5),
		ChatRateBurst:  getEnvInt("CHAT_RATE_BURST", 3),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 10<<20)),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that structural settings have usable values.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	switch c.Identity.Provider {
	case "local", "firebase":
	default:
		return fmt.Errorf("IDENTITY_PROVIDER must be local or firebase, got %q", c.Identity.Provider)
	}
	switch c.Database.Driver {
	case "postgres", "sqlite", "sqlserver":
	default:
		return fmt.Errorf("DB_DRIVER must be postgres, sqlite or sqlserver, got %q", c.Database.Driver)
	}
	switch c.Completion.Backend {
	case "chat", "analysis":
	default:
		return fmt.Errorf("COMPLETION_BACKEND must be chat or analysis, got %q", c.Completion.Backend)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	if c.ChatRateLimit <= 0 || c.ChatRateBurst <= 0 {
		return fmt.Errorf("CHAT_RATE_LIMIT and CHAT_RATE_BURST must be > 0")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be > 0")
	}
	return nil
}

// IsDevelopment returns true when running locally.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.AppEnv, "development")
}

// DSN returns the data source name for the configured driver.  DATABASE_URL
// wins when set; otherwise a SQL Server URL is assembled from the
// DB_SERVER/DB_NAME/DB_USERNAME/DB_PASSWORD parts.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" || d.Driver != "sqlserver" {
		return d.URL
	}
	q := url.Values{}
	q.Set("database", d.Name)
	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(d.Username, d.Password),
		Host:     d.Server,
		RawQuery: q.Encode(),
	}
	return u.String()
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
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

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
