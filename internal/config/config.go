package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name     string `envconfig:"APP_NAME" default:"budgetwise"`
		Port     int    `envconfig:"PORT" default:"8080"`
		LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"budgetwise"`
		SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	}

	Server struct {
		Timeout        time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		StatusInterval time.Duration `envconfig:"STATUS_REFRESH_INTERVAL" default:"1h"`
		JWTSecret      string        `envconfig:"JWT_SECRET"`
		AllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS"`
	}

	// Client settings are read by the TUI and CLI.
	Client struct {
		BaseURL string        `envconfig:"API_BASE_URL"`
		Token   string        `envconfig:"API_TOKEN"`
		Timeout time.Duration `envconfig:"API_TIMEOUT" default:"10s"`
		Demo    bool          `envconfig:"DEMO_MODE" default:"false"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name, c.DB.SSLMode)
}

// Remote reports whether clients should talk to the API instead of keeping bills in memory.
func (c *Config) Remote() bool {
	return !c.Client.Demo && strings.TrimSpace(c.Client.BaseURL) != ""
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.Server.StatusInterval <= 0 {
		return nil, fmt.Errorf("STATUS_REFRESH_INTERVAL must be positive, got %s", cfg.Server.StatusInterval)
	}

	return &cfg, nil
}
