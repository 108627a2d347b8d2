package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName   string `yaml:"service_name"`
	HTTPPort      string `yaml:"http_port"`
	StorageDriver string `yaml:"storage_driver"`
	PostgresDSN   string `yaml:"postgres_dsn"`
	AutoMigrate   bool   `yaml:"auto_migrate"`
	RedisURL      string `yaml:"redis_url"`

	JWTSecret   string        `yaml:"jwt_secret"`
	TokenTTL    time.Duration `yaml:"token_ttl"`
	AdminEmails []string      `yaml:"admin_emails"`

	RateLimitPerMinute int           `yaml:"rate_limit_per_minute"`
	TrustProxyHeaders  bool          `yaml:"trust_proxy_headers"`
	ReminderWindow     time.Duration `yaml:"reminder_window"`
	WorkerPollInterval time.Duration `yaml:"worker_poll_interval"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

func Defaults() Config {
	return Config{
		ServiceName:        "communitypulse",
		HTTPPort:           "8080",
		StorageDriver:      StorageMemory,
		TokenTTL:           24 * time.Hour,
		RateLimitPerMinute: 10,
		ReminderWindow:     24 * time.Hour,
		WorkerPollInterval: 5 * time.Second,
		LogLevel:           "info",
		LogFormat:          "json",
	}
}

// Load layers configuration: defaults, then an optional .env file, then the
// YAML file at path (or CONFIG_FILE), then environment variables.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Defaults()
	if strings.TrimSpace(path) == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path = strings.TrimSpace(path); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode config file %s: %w", path, err)
		}
	}

	cfg.ServiceName = envString("SERVICE_NAME", cfg.ServiceName)
	cfg.HTTPPort = envString("HTTP_PORT", cfg.HTTPPort)
	cfg.StorageDriver = strings.ToLower(envString("STORAGE_DRIVER", cfg.StorageDriver))
	cfg.PostgresDSN = envString("POSTGRES_DSN", cfg.PostgresDSN)
	cfg.AutoMigrate = envBool("AUTO_MIGRATE", cfg.AutoMigrate)
	cfg.RedisURL = envString("REDIS_URL", cfg.RedisURL)
	cfg.JWTSecret = envString("JWT_SECRET", cfg.JWTSecret)
	cfg.TokenTTL = envDuration("TOKEN_TTL", cfg.TokenTTL)
	cfg.AdminEmails = envList("ADMIN_EMAILS", cfg.AdminEmails)
	cfg.RateLimitPerMinute = envInt("RATE_LIMIT_PER_MINUTE", cfg.RateLimitPerMinute)
	cfg.TrustProxyHeaders = envBool("TRUST_PROXY_HEADERS", cfg.TrustProxyHeaders)
	cfg.ReminderWindow = envDuration("REMINDER_WINDOW", cfg.ReminderWindow)
	cfg.WorkerPollInterval = envDuration("WORKER_POLL_INTERVAL", cfg.WorkerPollInterval)
	cfg.LogLevel = envString("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(envString("LOG_FORMAT", cfg.LogFormat))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.StorageDriver {
	case StorageMemory:
	case StoragePostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			return errors.New("config: POSTGRES_DSN is required for the postgres storage driver")
		}
		if strings.TrimSpace(c.JWTSecret) == "" {
			return errors.New("config: JWT_SECRET is required outside memory mode")
		}
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.StorageDriver)
	}
	if c.TokenTTL <= 0 {
		return errors.New("config: TOKEN_TTL must be positive")
	}
	if c.WorkerPollInterval <= 0 {
		return errors.New("config: WORKER_POLL_INTERVAL must be positive")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("config: unknown log format %q", c.LogFormat)
	}
	return nil
}

func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(strings.TrimSpace(c.HTTPPort), ":")
}

func envString(name string, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(name)); value != "" {
		return value
	}
	return fallback
}

func envList(name string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	var items []string
	for _, value := range strings.Split(raw, ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			items = append(items, value)
		}
	}
	return items
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
