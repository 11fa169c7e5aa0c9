package moedaapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/AulusHZP/LabProjetoDeSoftware/internal/domain/moeda"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/httputil"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/metrics"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/middleware"
)

var (
	student   = string(moeda.RoleStudent)
	professor = string(moeda.RoleProfessor)
	company   = string(moeda.RoleCompany)
)

// authed wraps h with bearer authentication and, when roles are given,
// a role check.
func (s *Service) authed(h http.HandlerFunc, roles ...string) http.Handler {
	var next http.Handler = h
	if len(roles) > 0 {
		next = middleware.RequireRole(roles...)(next)
	}
	return s.authn.Handler(next)
}

// mutating additionally rate limits per caller.
func (s *Service) mutating(h http.HandlerFunc, roles ...string) http.Handler {
	var next http.Handler = h
	if len(roles) > 0 {
		next = middleware.RequireRole(roles...)(next)
	}
	return s.authn.Handler(s.limiter.Handler(next))
}

func (s *Service) registerRoutes() {
	r := mux.NewRouter()
	r.Use(middleware.MetricsMiddleware(ServiceID))

	r.HandleFunc("/health", s.HealthHandler()).Methods(http.MethodGet)
	r.HandleFunc("/info", s.InfoHandler()).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	// Authentication and sign-up.
	api.Handle("/students/register", s.limiter.Handler(http.HandlerFunc(s.handleStudentRegister))).Methods(http.MethodPost)
	api.Handle("/students/login", s.limiter.Handler(http.HandlerFunc(s.handleLogin(moeda.RoleStudent)))).Methods(http.MethodPost)
	api.Handle("/professors/register", s.limiter.Handler(http.HandlerFunc(s.handleProfessorRegister))).Methods(http.MethodPost)
	api.Handle("/professors/login", s.limiter.Handler(http.HandlerFunc(s.handleLogin(moeda.RoleProfessor)))).Methods(http.MethodPost)
	api.Handle("/company/register", s.limiter.Handler(http.HandlerFunc(s.handleCompanyRegister))).Methods(http.MethodPost)
	api.Handle("/company/login", s.limiter.Handler(http.HandlerFunc(s.handleLogin(moeda.RoleCompany)))).Methods(http.MethodPost)
	api.Handle("/auth/logout", s.authed(s.handleLogout)).Methods(http.MethodPost)

	// Directory.
	api.HandleFunc("/institutions", s.handleListInstitutions).Methods(http.MethodGet)
	api.HandleFunc("/institutions/{id}", s.handleGetInstitution).Methods(http.MethodGet)
	api.Handle("/students/{id}", s.authed(s.handleGetStudent)).Methods(http.MethodGet)
	api.Handle("/students/{id}", s.mutating(s.handleUpdateStudent, student)).Methods(http.MethodPut)
	api.Handle("/students/{id}", s.mutating(s.handleDeleteStudent, student)).Methods(http.MethodDelete)
	api.Handle("/students/{id}/transactions", s.authed(s.handleStudentTransactions, student, professor)).Methods(http.MethodGet)
	api.Handle("/students/{id}/redemptions", s.authed(s.handleStudentRedemptions, student)).Methods(http.MethodGet)
	api.Handle("/professors", s.authed(s.handleListProfessors)).Methods(http.MethodGet)
	api.Handle("/professors/{id}", s.authed(s.handleGetProfessor)).Methods(http.MethodGet)
	api.Handle("/professors/{id}", s.mutating(s.handleDeleteProfessor, professor)).Methods(http.MethodDelete)
	api.Handle("/professor/students/search", s.authed(s.handleSearchStudents, professor)).Methods(http.MethodGet)
	api.Handle("/professor/students/{institutionId}", s.authed(s.handleStudentsByInstitution, professor)).Methods(http.MethodGet)
	api.Handle("/company/{id}", s.authed(s.handleGetCompany)).Methods(http.MethodGet)

	// Ledger.
	api.Handle("/professor/send-coins", s.mutating(s.handleSendCoins, professor)).Methods(http.MethodPost)
	api.Handle("/professor/transactions", s.authed(s.handleProfessorTransactions, professor)).Methods(http.MethodGet)
	api.Handle("/advantages/redeem", s.mutating(s.handleRedeem, student)).Methods(http.MethodPost)
	api.Handle("/advantages/redemptions/company/{companyId}", s.authed(s.handleCompanyRedemptions, company)).Methods(http.MethodGet)
	api.Handle("/advantages/redemptions/coupon/{code}", s.authed(s.handleRedemptionByCoupon, student, company)).Methods(http.MethodGet)

	// Ledger rows are append-only.
	for _, path := range []string{"/transactions/{id}", "/redemptions/{id}"} {
		api.HandleFunc(path, s.handleImmutable).Methods(http.MethodPut, http.MethodPatch, http.MethodDelete)
	}

	// Advantages.
	api.HandleFunc("/advantages", s.handleListAdvantages).Methods(http.MethodGet)
	api.HandleFunc("/advantages/affordable/{maxCost}", s.handleAffordableAdvantages).Methods(http.MethodGet)
	api.HandleFunc("/advantages/company/{companyId}", s.handleCompanyAdvantages).Methods(http.MethodGet)
	api.Handle("/advantages/company/{companyId}", s.mutating(s.handleCreateAdvantage, company)).Methods(http.MethodPost)
	api.HandleFunc("/advantages/{id}", s.handleGetAdvantage).Methods(http.MethodGet)
	api.Handle("/advantages/{id}", s.mutating(s.handleUpdateAdvantage, company)).Methods(http.MethodPut)
	api.Handle("/advantages/{id}", s.mutating(s.handleDeleteAdvantage, company)).Methods(http.MethodDelete)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteError(w, http.StatusNotFound, "rota não encontrada")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "método não permitido")
	})
	s.router = r
}

func (s *Service) handleImmutable(w http.ResponseWriter, r *http.Request) {
	httputil.WriteError(w, http.StatusMethodNotAllowed, "registros do extrato não podem ser alterados")
}
