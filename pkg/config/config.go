package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds settings for both the console client and the fixture backend.
type Config struct {
	Env string

	API     APIConfig
	Session SessionConfig
	Console ConsoleConfig
	Log     LogConfig
	MockAPI MockAPIConfig
}

// APIConfig describes how the client reaches the backend.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SessionConfig locates the persisted credential file.
type SessionConfig struct {
	Path string
}

// ConsoleConfig tunes table rendering and export retention.
type ConsoleConfig struct {
	PageSize  int
	ExportDir string
	ExportTTL time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// MockAPIConfig configures the local fixture server.
type MockAPIConfig struct {
	Port           int
	JWTSecret      string
	JWTExpiration  time.Duration
	AllowedOrigins []string
	AdminEmail     string
	AdminPassword  string
	SeedUsers      int
}

// Load reads configuration from .env and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")

	cfg.API = APIConfig{
		BaseURL: strings.TrimRight(v.GetString("API_BASE_URL"), "/"),
		Timeout: parseDuration(v.GetString("API_TIMEOUT"), 15*time.Second),
	}

	cfg.Session = SessionConfig{
		Path: v.GetString("SESSION_PATH"),
	}

	cfg.Console = ConsoleConfig{
		PageSize:  v.GetInt("CONSOLE_PAGE_SIZE"),
		ExportDir: v.GetString("CONSOLE_EXPORT_DIR"),
		ExportTTL: parseDuration(v.GetString("CONSOLE_EXPORT_TTL"), 30*24*time.Hour),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.MockAPI = MockAPIConfig{
		Port:           v.GetInt("MOCKAPI_PORT"),
		JWTSecret:      v.GetString("MOCKAPI_JWT_SECRET"),
		JWTExpiration:  parseDuration(v.GetString("MOCKAPI_JWT_EXPIRATION"), 24*time.Hour),
		AllowedOrigins: splitAndTrim(v.GetString("MOCKAPI_ALLOWED_ORIGINS")),
		AdminEmail:     v.GetString("MOCKAPI_ADMIN_EMAIL"),
		AdminPassword:  v.GetString("MOCKAPI_ADMIN_PASSWORD"),
		SeedUsers:      v.GetInt("MOCKAPI_SEED_USERS"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)

	v.SetDefault("API_BASE_URL", "http://localhost:5000/api")
	v.SetDefault("API_TIMEOUT", "15s")

	v.SetDefault("SESSION_PATH", ".admin-console/session.json")

	v.SetDefault("CONSOLE_PAGE_SIZE", 5)
	v.SetDefault("CONSOLE_EXPORT_DIR", "./exports")
	v.SetDefault("CONSOLE_EXPORT_TTL", "720h")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("MOCKAPI_PORT", 5000)
	v.SetDefault("MOCKAPI_JWT_SECRET", "dev_secret")
	v.SetDefault("MOCKAPI_JWT_EXPIRATION", "24h")
	v.SetDefault("MOCKAPI_ALLOWED_ORIGINS", "")
	v.SetDefault("MOCKAPI_ADMIN_EMAIL", "admin@hirepath.dev")
	v.SetDefault("MOCKAPI_ADMIN_PASSWORD", "changeme123")
	v.SetDefault("MOCKAPI_SEED_USERS", 40)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
