package moedaapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/AulusHZP/LabProjetoDeSoftware/internal/domain/moeda"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/httputil"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/validate"
	"github.com/AulusHZP/LabProjetoDeSoftware/services/moeda/store"
)

func (s *Service) listAdvantages(w http.ResponseWriter, r *http.Request, filter store.AdvantageFilter) {
	list, err := s.store.ListAdvantages(r.Context(), filter)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

func (s *Service) handleListAdvantages(w http.ResponseWriter, r *http.Request) {
	s.listAdvantages(w, r, store.AdvantageFilter{AvailableOnly: true})
}

func (s *Service) handleAffordableAdvantages(w http.ResponseWriter, r *http.Request) {
	maxCost, err := strconv.ParseInt(mux.Vars(r)["maxCost"], 10, 64)
	if err != nil || maxCost < 0 {
		httputil.WriteError(w, http.StatusBadRequest, "custo máximo inválido")
		return
	}
	if maxCost == 0 {
		httputil.WriteJSON(w, http.StatusOK, []moeda.Advantage{})
		return
	}
	s.listAdvantages(w, r, store.AdvantageFilter{AvailableOnly: true, MaxCost: maxCost})
}

func (s *Service) handleCompanyAdvantages(w http.ResponseWriter, r *http.Request) {
	s.listAdvantages(w, r, store.AdvantageFilter{CompanyID: mux.Vars(r)["companyId"]})
}

func (s *Service) handleGetAdvantage(w http.ResponseWriter, r *http.Request) {
	adv, err := s.store.GetAdvantage(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, adv)
}

func (s *Service) handleCreateAdvantage(w http.ResponseWriter, r *http.Request) {
	companyID := mux.Vars(r)["companyId"]
	if !s.self(w, r, moeda.RoleCompany, companyID) {
		return
	}
	var in moeda.AdvantageInput
	if !s.decode(w, r, &in) {
		return
	}
	if !in.Complete() {
		s.fail(w, r, missingAdvantageFields(in))
		return
	}

	adv := moeda.Advantage{CompanyID: companyID, IsActive: true}
	in.Apply(&adv)
	adv, err := s.store.CreateAdvantage(r.Context(), adv)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.log.WithContext(r.Context()).WithField("advantage_id", adv.ID).Info("advantage created")
	httputil.WriteJSON(w, http.StatusCreated, adv)
}

func missingAdvantageFields(in moeda.AdvantageInput) validate.Errors {
	missing := validate.Errors{}
	const required = "this field is required"
	if in.Title == nil {
		missing["title"] = required
	}
	if in.Description == nil {
		missing["description"] = required
	}
	if in.CoinCost == nil {
		missing["coinCost"] = required
	}
	if in.MaxRedemptions == nil {
		missing["maxRedemptions"] = required
	}
	return missing
}

// ownedAdvantage loads the advantage in the path and checks that the caller
// is the company offering it.
func (s *Service) ownedAdvantage(w http.ResponseWriter, r *http.Request) (moeda.Advantage, bool) {
	adv, err := s.store.GetAdvantage(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return moeda.Advantage{}, false
	}
	if !s.self(w, r, moeda.RoleCompany, adv.CompanyID) {
		return moeda.Advantage{}, false
	}
	return adv, true
}

func (s *Service) handleUpdateAdvantage(w http.ResponseWriter, r *http.Request) {
	adv, ok := s.ownedAdvantage(w, r)
	if !ok {
		return
	}
	var in moeda.AdvantageInput
	if !s.decode(w, r, &in) {
		return
	}
	in.Apply(&adv)
	updated, err := s.store.UpdateAdvantage(r.Context(), adv)
	if errors.Is(err, moeda.ErrMaxBelowRedemptions) {
		s.fail(w, r, validate.Errors{"maxRedemptions": "cannot be lower than the redemptions already made"})
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, updated)
}

func (s *Service) handleDeleteAdvantage(w http.ResponseWriter, r *http.Request) {
	adv, ok := s.ownedAdvantage(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteAdvantage(r.Context(), adv.ID); err != nil {
		s.fail(w, r, err)
		return
	}
	s.log.WithContext(r.Context()).WithField("advantage_id", adv.ID).Info("advantage deleted")
	w.WriteHeader(http.StatusNoContent)
}
