package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port        string   `env:"PORT" envDefault:"8080"`
	DatabaseURL string   `env:"DATABASE_URL"`
	CORSOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	InitPoint   int64    `env:"INIT_POINT" envDefault:"0"`

	Log          Log          `envPrefix:"LOG_"`
	JWT          JWT          `envPrefix:"JWT_"`
	Cookie       Cookie       `envPrefix:"COOKIE_"`
	Verification Verification `envPrefix:"VERIFICATION_"`
	Mail         Mail         `envPrefix:"MAIL_"`
}

// Log controls the structured logger.
type Log struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"text"`
}

// JWT holds session token parameters. PreviousSecrets are accepted for
// verification only, which lets operators rotate Secret without logging
// everybody out.
type JWT struct {
	Secret          string   `env:"SECRET"`
	PreviousSecrets []string `env:"PREVIOUS_SECRETS" envSeparator:","`
	Issuer          string   `env:"ISSUER" envDefault:"account-backend"`
	TTLMinutes      int      `env:"TTL_MINUTES" envDefault:"60"`
}

// Cookie controls how the session cookie is written.
type Cookie struct {
	Secure bool `env:"SECURE" envDefault:"false"`
}

// Verification controls signup email codes. Store is postgres, or memory
// for a single-instance deployment.
type Verification struct {
	Store         string        `env:"STORE" envDefault:"postgres"`
	CodeTTL       time.Duration `env:"CODE_TTL" envDefault:"5m"`
	PurgeInterval time.Duration `env:"PURGE_INTERVAL" envDefault:"10m"`
}

// Mail selects and configures the verification code sender.
type Mail struct {
	Mode     string `env:"MODE" envDefault:"log"`
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"FROM" envDefault:"no-reply@example.com"`
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)
	cfg.JWT.Secret = strings.TrimSpace(cfg.JWT.Secret)
	cfg.JWT.PreviousSecrets = trimAll(cfg.JWT.PreviousSecrets)
	cfg.CORSOrigins = trimAll(cfg.CORSOrigins)
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}
	if cfg.JWT.TTLMinutes <= 0 {
		cfg.JWT.TTLMinutes = 60
	}

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}
	if cfg.JWT.Secret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}
	if cfg.Verification.Store != "postgres" && cfg.Verification.Store != "memory" {
		return Config{}, fmt.Errorf("VERIFICATION_STORE must be postgres or memory, got %q", cfg.Verification.Store)
	}
	if cfg.Mail.Mode != "log" && cfg.Mail.Mode != "smtp" {
		return Config{}, fmt.Errorf("MAIL_MODE must be log or smtp, got %q", cfg.Mail.Mode)
	}
	if cfg.Mail.Mode == "smtp" && cfg.Mail.Host == "" {
		return Config{}, errors.New("MAIL_SMTP_HOST is required when MAIL_MODE=smtp")
	}

	return cfg, nil
}

// LoadDatabaseURL reads only DATABASE_URL, for commands that never serve
// traffic.
func LoadDatabaseURL() (string, error) {
	var db struct {
		URL string `env:"DATABASE_URL,required,notEmpty"`
	}
	if err := env.Parse(&db); err != nil {
		return "", fmt.Errorf("parse config: %w", err)
	}
	return strings.TrimSpace(db.URL), nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// TokenTTL returns the session token lifetime.
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.JWT.TTLMinutes) * time.Minute
}

func trimAll(in []string) []string {
	var out []string
	for _, part := range in {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
