// Package config loads typed settings from the environment. Optional .env
// files are read first; variables already set in the process win.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Logging is shared by every binary.
type Logging struct {
	Level  string `env:"LOG_LEVEL,default=info"`
	Format string `env:"LOG_FORMAT,default=text"`
}

// MoedaServer configures cmd/moeda-api.
type MoedaServer struct {
	Logging

	Addr        string        `env:"MOEDA_ADDR,default=:8080"`
	DatabaseURL string        `env:"DATABASE_URL"`
	AutoMigrate bool          `env:"AUTO_MIGRATE,default=true"`
	RedisURL    string        `env:"REDIS_URL"`
	JWTSecret   string        `env:"JWT_SECRET,default=dev-secret-change-me"`
	JWTTTL      time.Duration `env:"JWT_TTL,default=24h"`
	CORSOrigins []string      `env:"CORS_ORIGINS,default=http://localhost:5173"`

	RateLimit float64 `env:"RATE_LIMIT,default=5"`
	RateBurst int     `env:"RATE_BURST,default=10"`

	InitialCoins      int64  `env:"INITIAL_PROFESSOR_COINS,default=1000"`
	AllowanceAmount   int64  `env:"ALLOWANCE_AMOUNT,default=1000"`
	AllowanceSchedule string `env:"ALLOWANCE_SCHEDULE,default=@daily"`
	AllowanceDisabled bool   `env:"ALLOWANCE_DISABLED,default=false"`

	SeedFile     string `env:"SEED_FILE"`
	SeedDisabled bool   `env:"SEED_DISABLED,default=false"`
}

// AluguelServer configures cmd/aluguel-api.
type AluguelServer struct {
	Logging

	Addr          string   `env:"ALUGUEL_ADDR,default=:8081"`
	CORSOrigins   []string `env:"CORS_ORIGINS,default=http://localhost:5173"`
	AdminEmail    string   `env:"ALUGUEL_ADMIN_EMAIL"`
	AdminPassword string   `env:"ALUGUEL_ADMIN_PASSWORD"`
}

// CLI configures cmd/labctl.
type CLI struct {
	Logging

	MoedaURL    string        `env:"MOEDA_API_URL,default=http://localhost:8080/api"`
	AluguelURL  string        `env:"ALUGUEL_API_URL,default=http://localhost:8081/api"`
	Timeout     time.Duration `env:"API_TIMEOUT,default=30s"`
	SessionFile string        `env:"SESSION_FILE"`
	Optimistic  bool          `env:"OPTIMISTIC_BALANCES,default=false"`

	SendGridKey string `env:"SENDGRID_API_KEY"`
	MailFrom    string `env:"MAIL_FROM,default=noreply@moeda.local"`
}

// Load reads the first existing env file, if any, then decodes the
// environment into dst.
func Load(dst interface{}, envFiles ...string) error {
	for _, path := range envFiles {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		break
	}
	if err := envdecode.Decode(dst); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return fmt.Errorf("decode environment: %w", err)
	}
	return nil
}
