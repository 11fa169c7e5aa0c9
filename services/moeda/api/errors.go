package moedaapi

import (
	"errors"
	"net/http"

	"github.com/AulusHZP/LabProjetoDeSoftware/internal/domain/moeda"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/httputil"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/validate"
)

var errForbidden = errors.New("acesso negado")

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, moeda.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, moeda.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, errForbidden):
		return http.StatusForbidden
	case errors.Is(err, moeda.ErrEmailTaken),
		errors.Is(err, moeda.ErrCPFTaken),
		errors.Is(err, moeda.ErrCNPJTaken),
		errors.Is(err, moeda.ErrAccountHasHistory):
		return http.StatusConflict
	case errors.Is(err, moeda.ErrInvalidAmount),
		errors.Is(err, moeda.ErrStudentRequired),
		errors.Is(err, moeda.ErrReasonRequired),
		errors.Is(err, moeda.ErrInsufficientBalance),
		errors.Is(err, moeda.ErrAdvantageInactive),
		errors.Is(err, moeda.ErrAdvantageExhausted),
		errors.Is(err, moeda.ErrMaxBelowRedemptions):
		return http.StatusBadRequest
	case errors.Is(err, moeda.ErrNotImplemented):
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

// fail writes err as the response. Unknown errors are logged and hidden.
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

// decode reads and validates a JSON body, writing the failure itself.
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
