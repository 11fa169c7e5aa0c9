// Command moeda-api serves the MoedaEstudantil REST API.
//
// With DATABASE_URL set it persists to PostgreSQL (migrating on start unless
// AUTO_MIGRATE=false); otherwise it keeps everything in memory. REDIS_URL
// moves the token revocation list to Redis so it survives restarts.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"

	"github.com/AulusHZP/LabProjetoDeSoftware/internal/auth"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/config"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/logging"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/platform/migrations"
	moedaapi "github.com/AulusHZP/LabProjetoDeSoftware/services/moeda/api"
	"github.com/AulusHZP/LabProjetoDeSoftware/services/moeda/store"
	"github.com/AulusHZP/LabProjetoDeSoftware/services/moeda/store/memory"
	"github.com/AulusHZP/LabProjetoDeSoftware/services/moeda/store/postgres"
)

func main() {
	var cfg config.MoedaServer
	if err := config.Load(&cfg, ".env"); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger := logging.New(moedaapi.ServiceID, cfg.Level, cfg.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		st   store.Store
		ping func(context.Context) error
	)
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to database")
		}
		defer db.Close()
		if cfg.AutoMigrate {
			if err := migrations.Apply(ctx, db); err != nil {
				logger.WithError(err).Fatal("Failed to migrate database")
			}
		}
		st = postgres.New(db)
		ping = db.PingContext
		logger.Info("using postgres store")
	} else {
		st = memory.New()
		logger.Warn("DATABASE_URL not set; data lives in memory only")
	}

	var revoked auth.Revocations = auth.NewMemoryRevocations()
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.WithError(err).Fatal("Invalid REDIS_URL")
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		revoked = auth.NewRedisRevocations(rdb, "moeda:revoked:")
	}

	var seed *moedaapi.Seed
	if !cfg.SeedDisabled {
		loaded, err := moedaapi.LoadSeed(cfg.SeedFile)
		if err != nil {
			logger.WithError(err).Fatal("Failed to load seed")
		}
		seed = loaded
	}

	svc, err := moedaapi.New(moedaapi.Config{
		Store:                 st,
		Tokens:                auth.NewManager(cfg.JWTSecret, moedaapi.ServiceID, cfg.JWTTTL, revoked),
		Logger:                logger,
		CORSOrigins:           cfg.CORSOrigins,
		RateLimit:             cfg.RateLimit,
		RateBurst:             cfg.RateBurst,
		InitialProfessorCoins: cfg.InitialCoins,
		Allowance: moedaapi.AllowanceConfig{
			Amount:   cfg.AllowanceAmount,
			Schedule: cfg.AllowanceSchedule,
			Disabled: cfg.AllowanceDisabled,
		},
		Seed: seed,
		Ping: ping,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to create service")
	}
	if err := svc.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to start service")
	}
	if err := svc.Serve(ctx, cfg.Addr, svc); err != nil {
		logger.WithError(err).Fatal("Server error")
	}
}
