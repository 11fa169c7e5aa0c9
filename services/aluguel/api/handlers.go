package aluguelapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/AulusHZP/LabProjetoDeSoftware/internal/auth"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/domain/aluguel"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/httputil"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/validate"
	"github.com/AulusHZP/LabProjetoDeSoftware/services/aluguel/store"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, aluguel.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, aluguel.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, aluguel.ErrEmailTaken),
		errors.Is(err, aluguel.ErrPlacaTaken),
		errors.Is(err, aluguel.ErrVehicleUnavailable),
		errors.Is(err, aluguel.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, aluguel.ErrUnknownAction):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Service) fail(w http.ResponseWriter, r *http.Request, err error) {
	var fields validate.Errors
	if errors.As(err, &fields) {
		httputil.WriteFieldErrors(w, fields)
		return
	}
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.WithContext(r.Context()).WithError(err).Error("request failed")
		httputil.WriteError(w, status, "erro interno do servidor")
		return
	}
	httputil.WriteError(w, status, err.Error())
}

func (s *Service) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httputil.DecodeJSON(w, r, dst); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return false
	}
	if err := validate.Struct(dst); err != nil {
		s.fail(w, r, err)
		return false
	}
	return true
}

func (s *Service) respond(w http.ResponseWriter, r *http.Request, status int, v any, err error) {
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, status, v)
}

// Auth ------------------------------------------------------------------------

// handleLogin answers with the user's profile. The rental API issues no token.
func (s *Service) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req aluguel.LoginRequest
	if !s.decode(w, r, &req) {
		return
	}
	u, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil && !errors.Is(err, aluguel.ErrNotFound) {
		s.fail(w, r, err)
		return
	}
	if err != nil || !auth.CheckPassword(u.PasswordHash, req.Senha) {
		s.log.LogSecurityEvent(r.Context(), "login_failed", map[string]interface{}{"email": req.Email})
		s.fail(w, r, aluguel.ErrInvalidCredentials)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, u)
}

func (s *Service) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req aluguel.RegisterRequest
	if !s.decode(w, r, &req) {
		return
	}
	u, err := s.register(r.Context(), req)
	s.respond(w, r, http.StatusCreated, u, err)
}

// Users -----------------------------------------------------------------------

func (s *Service) handleListUsers(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.ListUsers(r.Context())
	s.respond(w, r, http.StatusOK, list, err)
}

func (s *Service) handleGetUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.store.GetUser(r.Context(), chi.URLParam(r, "id"))
	s.respond(w, r, http.StatusOK, u, err)
}

func (s *Service) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req aluguel.UserUpdate
	if !s.decode(w, r, &req) {
		return
	}
	u, err := s.store.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Nome != nil {
		u.Nome = *req.Nome
	}
	if req.Email != nil {
		u.Email = *req.Email
	}
	u.PasswordHash = ""
	if req.Senha != nil {
		if u.PasswordHash, err = auth.HashPassword(*req.Senha); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	updated, err := s.store.UpdateUser(r.Context(), u)
	s.respond(w, r, http.StatusOK, updated, err)
}

func (s *Service) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Customers -------------------------------------------------------------------

func (s *Service) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.ListCustomers(r.Context())
	s.respond(w, r, http.StatusOK, list, err)
}

func (s *Service) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.GetCustomer(r.Context(), chi.URLParam(r, "id"))
	s.respond(w, r, http.StatusOK, c, err)
}

func (s *Service) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var c aluguel.Customer
	if !s.decode(w, r, &c) {
		return
	}
	c.ID = ""
	created, err := s.store.CreateCustomer(r.Context(), c)
	s.respond(w, r, http.StatusCreated, created, err)
}

func (s *Service) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var c aluguel.Customer
	if !s.decode(w, r, &c) {
		return
	}
	c.ID = chi.URLParam(r, "id")
	updated, err := s.store.UpdateCustomer(r.Context(), c)
	s.respond(w, r, http.StatusOK, updated, err)
}

func (s *Service) handleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteCustomer(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Vehicles --------------------------------------------------------------------

// checkYear bounds the model year by the current calendar year.
func checkYear(v aluguel.Vehicle) error {
	if v.Ano > time.Now().Year() {
		return validate.Errors{"ano": "must not be in the future"}
	}
	return nil
}

func (s *Service) listVehicles(w http.ResponseWriter, r *http.Request, f store.VehicleFilter) {
	list, err := s.store.ListVehicles(r.Context(), f)
	s.respond(w, r, http.StatusOK, list, err)
}

func (s *Service) handleListVehicles(w http.ResponseWriter, r *http.Request) {
	s.listVehicles(w, r, store.VehicleFilter{})
}

func (s *Service) handleVehiclesByBrand(w http.ResponseWriter, r *http.Request) {
	s.listVehicles(w, r, store.VehicleFilter{Marca: chi.URLParam(r, "marca")})
}

func (s *Service) handleVehiclesByModel(w http.ResponseWriter, r *http.Request) {
	s.listVehicles(w, r, store.VehicleFilter{Modelo: chi.URLParam(r, "modelo")})
}

func (s *Service) handleVehiclesByYear(w http.ResponseWriter, r *http.Request) {
	ano, err := strconv.Atoi(chi.URLParam(r, "ano"))
	if err != nil || ano <= 0 {
		httputil.WriteError(w, http.StatusBadRequest, "ano inválido")
		return
	}
	s.listVehicles(w, r, store.VehicleFilter{Ano: ano})
}

func (s *Service) handleGetVehicle(w http.ResponseWriter, r *http.Request) {
	v, err := s.store.GetVehicle(r.Context(), chi.URLParam(r, "id"))
	s.respond(w, r, http.StatusOK, v, err)
}

func (s *Service) handleCreateVehicle(w http.ResponseWriter, r *http.Request) {
	var v aluguel.Vehicle
	if !s.decode(w, r, &v) {
		return
	}
	if err := checkYear(v); err != nil {
		s.fail(w, r, err)
		return
	}
	v.ID = ""
	created, err := s.store.CreateVehicle(r.Context(), v)
	s.respond(w, r, http.StatusCreated, created, err)
}

func (s *Service) handleUpdateVehicle(w http.ResponseWriter, r *http.Request) {
	var v aluguel.Vehicle
	if !s.decode(w, r, &v) {
		return
	}
	if err := checkYear(v); err != nil {
		s.fail(w, r, err)
		return
	}
	v.ID = chi.URLParam(r, "id")
	updated, err := s.store.UpdateVehicle(r.Context(), v)
	s.respond(w, r, http.StatusOK, updated, err)
}

func (s *Service) handleDeleteVehicle(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteVehicle(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Orders ----------------------------------------------------------------------

func (s *Service) listOrders(w http.ResponseWriter, r *http.Request, f store.OrderFilter) {
	list, err := s.store.ListOrders(r.Context(), f)
	s.respond(w, r, http.StatusOK, list, err)
}

func (s *Service) handleListOrders(w http.ResponseWriter, r *http.Request) {
	s.listOrders(w, r, store.OrderFilter{})
}

func (s *Service) handleOrdersByCustomer(w http.ResponseWriter, r *http.Request) {
	s.listOrders(w, r, store.OrderFilter{ClienteID: chi.URLParam(r, "id")})
}

func (s *Service) handleOrdersByAgent(w http.ResponseWriter, r *http.Request) {
	s.listOrders(w, r, store.OrderFilter{AgenteID: chi.URLParam(r, "id")})
}

func (s *Service) handleOrdersByStatus(w http.ResponseWriter, r *http.Request) {
	status := aluguel.OrderStatus(chi.URLParam(r, "status"))
	if !status.Valid() {
		httputil.WriteError(w, http.StatusBadRequest, "status inválido")
		return
	}
	s.listOrders(w, r, store.OrderFilter{Status: status})
}

func (s *Service) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := s.store.GetOrder(r.Context(), chi.URLParam(r, "id"))
	s.respond(w, r, http.StatusOK, o, err)
}

func (s *Service) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var o aluguel.Order
	if !s.decode(w, r, &o) {
		return
	}
	o.ID = ""
	created, err := s.store.CreateOrder(r.Context(), o)
	if err == nil {
		s.log.WithContext(r.Context()).WithFields(map[string]interface{}{
			"order_id":     created.ID,
			"automovel_id": created.AutomovelID,
		}).Info("order filed")
	}
	s.respond(w, r, http.StatusCreated, created, err)
}

func (s *Service) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteOrder(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ActionRequest optionally names the agent acting on an order.
type ActionRequest struct {
	AgenteID string `json:"agenteId"`
}

func (s *Service) handleOrderAction(act aluguel.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ActionRequest
		if r.ContentLength > 0 {
			if err := httputil.DecodeJSON(w, r, &req); err != nil {
				httputil.WriteError(w, http.StatusBadRequest, err.Error())
				return
			}
		}
		o, err := s.store.ApplyAction(r.Context(), chi.URLParam(r, "id"), act, req.AgenteID)
		if err == nil {
			s.log.WithContext(r.Context()).WithFields(map[string]interface{}{
				"order_id": o.ID,
				"action":   string(act),
				"status":   string(o.Status),
			}).Info("order status changed")
		}
		s.respond(w, r, http.StatusOK, o, err)
	}
}
