package config

import (
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config is the full environment-driven configuration surface.
type Config struct {
	Server   Server
	Security Security
	Source   Source
	LogLevel string `env:"LOG_LEVEL" env-default:"INFO"`
}

type Server struct {
	Port         string        `env:"HTTP_PORT" env-default:"8080"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"5s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"30s"`
	IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"120s"`
}

type Security struct {
	Username  string        `env:"AUTH_USERNAME" env-required:"true"`
	Password  string        `env:"AUTH_PASSWORD" env-required:"true"`
	JWTSecret string        `env:"AUTH_JWT_SECRET" env-required:"true"`
	TokenTTL  time.Duration `env:"AUTH_TOKEN_TTL" env-default:"24h"`
}

type Source struct {
	// URLTemplate carries one %s placeholder for the currency code. Empty
	// selects the built-in Bundesbank endpoint.
	URLTemplate string        `env:"SOURCE_URL_TEMPLATE" env-default:""`
	Currencies  string        `env:"SOURCE_CURRENCIES" env-default:"AUD,CAD,CHF,GBP,JPY,USD"`
	Timeout     time.Duration `env:"SOURCE_TIMEOUT" env-default:"10s"`
	// RefreshAt is the daily wall-clock rebuild time, just after the
	// source's assumed publish time.
	RefreshAt string `env:"SOURCE_REFRESH_AT" env-default:"00:05"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	cfg := &Config{}

	_ = godotenv.Load(".env")

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// CurrencyList splits the configured currency codes, preserving order.
func (c *Config) CurrencyList() []string {
	parts := strings.Split(c.Source.Currencies, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, strings.ToUpper(p))
		}
	}
	return out
}
