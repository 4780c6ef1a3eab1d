package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	App struct {
		Name      string `envconfig:"APP_NAME" default:"CoinQuest"`
		Port      int    `envconfig:"PORT" default:"8080"`
		Timezone  string `envconfig:"APP_TIMEZONE" default:"UTC"`
		Storage   string `envconfig:"STORAGE" default:"postgres"`
		LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
		LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	}

	// DB credentials have no defaults; they must come from the environment.
	DB struct {
		Host     string `envconfig:"DB_HOST"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER"`
		Password string `envconfig:"DB_PASSWORD"`
		Name     string `envconfig:"DB_NAME" default:"coinquest"`
		SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	// Auth is disabled when Secret is empty.
	Auth struct {
		Secret       string        `envconfig:"AUTH_SECRET"`
		Username     string        `envconfig:"AUTH_USERNAME"`
		PasswordHash string        `envconfig:"AUTH_PASSWORD_HASH"`
		TokenTTL     time.Duration `envconfig:"AUTH_TOKEN_TTL" default:"24h"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	}
}

func (c *Config) ConnectionString() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DB.User, c.DB.Password),
		Host:     c.DB.Host + ":" + strconv.Itoa(c.DB.Port),
		Path:     "/" + c.DB.Name,
		RawQuery: url.Values{"sslmode": {c.DB.SSLMode}}.Encode(),
	}

	return u.String()
}

// Location resolves App.Timezone, the zone used for calendar-month periods.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.App.Timezone, err)
	}

	return loc, nil
}

func (c *Config) AuthEnabled() bool {
	return c.Auth.Secret != ""
}

func (c *Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return slog.LevelInfo
	}

	return level
}

func (c *Config) Validate() error {
	var errs []error

	switch c.App.Storage {
	case StorageMemory:
	case StoragePostgres:
		if c.DB.Host == "" {
			errs = append(errs, errors.New("DB_HOST is required"))
		}

		if c.DB.User == "" {
			errs = append(errs, errors.New("DB_USER is required"))
		}

		if c.DB.Password == "" {
			errs = append(errs, errors.New("DB_PASSWORD is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE %q", c.App.Storage))
	}

	if c.AuthEnabled() && (c.Auth.Username == "" || c.Auth.PasswordHash == "") {
		errs = append(errs, errors.New("AUTH_USERNAME and AUTH_PASSWORD_HASH are required when AUTH_SECRET is set"))
	}

	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
