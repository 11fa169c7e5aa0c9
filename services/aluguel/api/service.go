// Package aluguelapi serves the car-rental REST API: accounts, customers,
// vehicles and rental orders with their status machine.
package aluguelapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AulusHZP/LabProjetoDeSoftware/internal/auth"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/domain/aluguel"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/logging"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/middleware"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/service"
	"github.com/AulusHZP/LabProjetoDeSoftware/services/aluguel/store"
	"github.com/AulusHZP/LabProjetoDeSoftware/services/aluguel/store/memory"
)

const (
	ServiceID   = "aluguel"
	ServiceName = "Sistema de Aluguel de Carros"
	Version     = "1.0.0"
)

// Config configures the service.
type Config struct {
	Store       store.Store
	Logger      *logging.Logger
	CORSOrigins []string
	// Admin, when set, is registered on start unless the email exists.
	Admin *aluguel.RegisterRequest
}

// Service is the car-rental API.
type Service struct {
	*service.BaseService

	store   store.Store
	log     *logging.Logger
	router  chi.Router
	handler http.Handler
}

// New creates the service and registers its routes.
func New(cfg Config) *Service {
	log := cfg.Logger
	if log == nil {
		log = logging.Default(ServiceID)
	}
	st := cfg.Store
	if st == nil {
		st = memory.New()
	}
	base := service.NewBase(service.BaseConfig{
		ID:      ServiceID,
		Name:    ServiceName,
		Version: Version,
		Logger:  log,
	})

	s := &Service{BaseService: base, store: st, log: log}
	if cfg.Admin != nil {
		admin := *cfg.Admin
		base.WithHydrate(func(ctx context.Context) error {
			_, err := s.register(ctx, admin)
			if errors.Is(err, aluguel.ErrEmailTaken) {
				return nil
			}
			return err
		})
	}
	base.WithStats(s.stats)

	s.registerRoutes()
	s.handler = middleware.Recoverer(log)(
		middleware.NewTracingMiddleware(log).Handler(
			middleware.NewCORSMiddleware(cfg.CORSOrigins).Handler(s.router)))
	return s
}

// ServeHTTP implements http.Handler with the full middleware chain.
func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Service) stats() map[string]any {
	ctx := context.Background()
	stats := map[string]any{}
	if vehicles, err := s.store.ListVehicles(ctx, store.VehicleFilter{}); err == nil {
		stats["vehicles"] = len(vehicles)
	}
	if pending, err := s.store.ListOrders(ctx, store.OrderFilter{Status: aluguel.StatusPendente}); err == nil {
		stats["pending_orders"] = len(pending)
	}
	return stats
}

func (s *Service) register(ctx context.Context, req aluguel.RegisterRequest) (aluguel.User, error) {
	hash, err := auth.HashPassword(req.Senha)
	if err != nil {
		return aluguel.User{}, err
	}
	return s.store.CreateUser(ctx, aluguel.User{
		Nome:         req.Nome,
		Email:        req.Email,
		Tipo:         req.Tipo,
		PasswordHash: hash,
	})
}
