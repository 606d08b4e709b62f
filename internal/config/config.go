package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	Database    Database `envPrefix:"DATABASE_"`
	CORS        CORS     `envPrefix:"CORS_"`
	Auth        Auth     `envPrefix:"AUTH_"`
	Policy      Policy   `envPrefix:"POLICY_"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

// Database selects the gorm dialector. URL is a DSN for mysql and a file path for sqlite.
type Database struct {
	Driver          string        `env:"DRIVER" envDefault:"sqlite"`
	URL             string        `env:"URL" envDefault:"tienda.db"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"10"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"50"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"1h"`
}

type CORS struct {
	AllowOrigins []string `env:"ALLOW_ORIGINS" envSeparator:"," envDefault:"*"`
}

type Auth struct {
	JWTSecret string        `env:"JWT_SECRET" envDefault:"change-me"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
}

// Policy holds the switches between the alternative behaviours of the store.
type Policy struct {
	ReconcileOnCreate string `env:"RECONCILE_ON_CREATE" envDefault:"lenient"` // lenient | strict
	ReconcileOnUpdate string `env:"RECONCILE_ON_UPDATE" envDefault:"strict"`  // lenient | strict
	OrderTotal        string `env:"ORDER_TOTAL" envDefault:"computed"`        // computed | supplied
}

func (h HTTPServer) Address() string {
	return h.Host + ":" + h.Port
}

// Load reads .env into the process environment when present and parses Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found (ok in prod)")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
