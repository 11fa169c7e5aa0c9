// Package moedaapi is the authoritative MoedaEstudantil HTTP service.
//
// The service owns every balance. Transfers and redemptions are single
// store operations, so a client can never observe half of one.
package moedaapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/AulusHZP/LabProjetoDeSoftware/internal/auth"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/logging"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/middleware"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/service"
	"github.com/AulusHZP/LabProjetoDeSoftware/services/moeda/store"
)

const (
	ServiceID   = "moeda"
	ServiceName = "MoedaEstudantil API"
	Version     = "1.0.0"

	// DefaultInitialCoins is what a newly registered professor starts with.
	DefaultInitialCoins int64 = 1000
)

// Config configures the MoedaEstudantil service.
type Config struct {
	Store  store.Store
	Tokens *auth.Manager
	Logger *logging.Logger

	CORSOrigins []string
	// RateLimit and RateBurst bound mutating requests per caller.
	RateLimit float64
	RateBurst int

	InitialProfessorCoins int64
	Allowance             AllowanceConfig

	// Seed, when set, is loaded into an empty store during Start.
	Seed *Seed

	// Ping checks the backing database for /health. Optional.
	Ping service.HealthCheck
}

// Service implements the MoedaEstudantil API.
type Service struct {
	*service.BaseService

	store     store.Store
	tokens    *auth.Manager
	log       *logging.Logger
	router    *mux.Router
	handler   http.Handler
	limiter   *middleware.RateLimiter
	authn     *middleware.AuthMiddleware
	coupons   func() (string, error)
	allowance *Allowance

	initialCoins int64
	now          func() time.Time
}

// New creates the service and registers its routes.
func New(cfg Config) (*Service, error) {
	log := cfg.Logger
	if log == nil {
		log = logging.Default(ServiceID)
	}
	base := service.NewBase(service.BaseConfig{
		ID:      ServiceID,
		Name:    ServiceName,
		Version: Version,
		Logger:  log,
	})

	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 5
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 10
	}
	if cfg.InitialProfessorCoins <= 0 {
		cfg.InitialProfessorCoins = DefaultInitialCoins
	}

	s := &Service{
		BaseService:  base,
		store:        cfg.Store,
		tokens:       cfg.Tokens,
		log:          log,
		limiter:      middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst, log),
		authn:        middleware.NewAuthMiddleware(cfg.Tokens, log, nil),
		coupons:      NewCouponCode,
		initialCoins: cfg.InitialProfessorCoins,
		now:          func() time.Time { return time.Now().UTC() },
	}

	allowance, err := NewAllowance(cfg.Store, cfg.Allowance, log)
	if err != nil {
		return nil, err
	}
	s.allowance = allowance

	if cfg.Ping != nil {
		base.WithHealthCheck("database", cfg.Ping)
	}
	if cfg.Seed != nil {
		seed := cfg.Seed
		base.WithHydrate(func(ctx context.Context) error {
			_, err := seed.Apply(ctx, s.store, s.initialCoins)
			return err
		})
	}
	base.WithStats(s.stats)
	base.AddWorker(func(ctx context.Context) { s.allowance.Run(ctx, s.StopChan()) })
	base.AddTickerWorker(5*time.Minute, func(context.Context) error {
		s.limiter.Cleanup()
		return nil
	})

	s.registerRoutes()
	s.handler = middleware.Recoverer(log)(
		middleware.NewTracingMiddleware(log).Handler(
			middleware.NewCORSMiddleware(cfg.CORSOrigins).Handler(s.router)))
	return s, nil
}

// Router exposes the route table, mainly for tests.
func (s *Service) Router() *mux.Router { return s.router }

// ServeHTTP makes the service an http.Handler with its full middleware chain.
func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Service) stats() map[string]any {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	stats := map[string]any{"rate_limited_callers": s.limiter.Len()}
	if profs, err := s.store.ListProfessors(ctx); err == nil {
		stats["professors"] = len(profs)
	}
	if advs, err := s.store.ListAdvantages(ctx, store.AdvantageFilter{AvailableOnly: true}); err == nil {
		stats["available_advantages"] = len(advs)
	}
	return stats
}
