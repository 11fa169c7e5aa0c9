package aluguelapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AulusHZP/LabProjetoDeSoftware/internal/domain/aluguel"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/httputil"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/metrics"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/middleware"
)

func (s *Service) registerRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.MetricsMiddleware(ServiceID))

	r.Get("/health", s.HealthHandler())
	r.Get("/info", s.InfoHandler())
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/register", s.handleRegister)

		r.Route("/usuarios", func(r chi.Router) {
			r.Get("/", s.handleListUsers)
			r.Get("/{id}", s.handleGetUser)
			r.Put("/{id}", s.handleUpdateUser)
			r.Delete("/{id}", s.handleDeleteUser)
		})

		r.Route("/clientes", func(r chi.Router) {
			r.Get("/", s.handleListCustomers)
			r.Post("/", s.handleCreateCustomer)
			r.Get("/{id}", s.handleGetCustomer)
			r.Put("/{id}", s.handleUpdateCustomer)
			r.Delete("/{id}", s.handleDeleteCustomer)
		})

		r.Route("/automoveis", func(r chi.Router) {
			r.Get("/", s.handleListVehicles)
			r.Post("/", s.handleCreateVehicle)
			r.Get("/marca/{marca}", s.handleVehiclesByBrand)
			r.Get("/modelo/{modelo}", s.handleVehiclesByModel)
			r.Get("/ano/{ano}", s.handleVehiclesByYear)
			r.Get("/{id}", s.handleGetVehicle)
			r.Put("/{id}", s.handleUpdateVehicle)
			r.Delete("/{id}", s.handleDeleteVehicle)
		})

		r.Route("/pedidos", func(r chi.Router) {
			r.Get("/", s.handleListOrders)
			r.Post("/", s.handleCreateOrder)
			r.Get("/cliente/{id}", s.handleOrdersByCustomer)
			r.Get("/agente/{id}", s.handleOrdersByAgent)
			r.Get("/status/{status}", s.handleOrdersByStatus)
			r.Get("/{id}", s.handleGetOrder)
			r.Delete("/{id}", s.handleDeleteOrder)
			for _, act := range []aluguel.Action{aluguel.ActionAvaliar, aluguel.ActionAprovar, aluguel.ActionRejeitar, aluguel.ActionCancelar} {
				r.Put("/{id}/"+string(act), s.handleOrderAction(act))
			}
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteError(w, http.StatusNotFound, "rota não encontrada")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "método não permitido")
	})
	s.router = r
}
