package moedaapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/AulusHZP/LabProjetoDeSoftware/internal/domain/moeda"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/httputil"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/metrics"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/middleware"
	"github.com/AulusHZP/LabProjetoDeSoftware/services/moeda/store"
)

// maxCouponAttempts bounds retries when a generated code is already taken.
const maxCouponAttempts = 5

// handleSendCoins skips struct validation: SendCoins returns the domain
// errors clients show verbatim.
func (s *Service) handleSendCoins(w http.ResponseWriter, r *http.Request) {
	var req moeda.SendCoinsRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !s.self(w, r, moeda.RoleProfessor, req.ProfessorID) {
		return
	}
	tx, err := s.SendCoins(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, tx)
}

// SendCoins validates and performs one professor-to-student transfer.
func (s *Service) SendCoins(ctx context.Context, req moeda.SendCoinsRequest) (moeda.Transaction, error) {
	switch {
	case req.StudentID == "":
		return moeda.Transaction{}, moeda.ErrStudentRequired
	case req.Amount <= 0:
		return moeda.Transaction{}, moeda.ErrInvalidAmount
	case strings.TrimSpace(req.Reason) == "":
		return moeda.Transaction{}, moeda.ErrReasonRequired
	}
	tx, err := s.store.Transfer(ctx, moeda.Transaction{
		ProfessorID: req.ProfessorID,
		StudentID:   req.StudentID,
		Amount:      req.Amount,
		Reason:      strings.TrimSpace(req.Reason),
	})
	if err != nil {
		return moeda.Transaction{}, err
	}
	metrics.RecordTransfer(tx.Amount)
	s.log.WithContext(ctx).WithFields(map[string]interface{}{
		"transaction_id": tx.ID,
		"professor_id":   tx.ProfessorID,
		"student_id":     tx.StudentID,
		"amount":         tx.Amount,
	}).Info("coins transferred")
	return tx, nil
}

func (s *Service) handleProfessorTransactions(w http.ResponseWriter, r *http.Request) {
	professorID := r.URL.Query().Get("professorId")
	if professorID == "" {
		professorID = middleware.GetUserID(r.Context())
	}
	if !s.self(w, r, moeda.RoleProfessor, professorID) {
		return
	}
	list, err := s.store.ListTransactions(r.Context(), store.TransactionFilter{ProfessorID: professorID})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

// handleStudentTransactions serves the student's own history, and any
// student's history to professors, who refresh it after sending coins.
func (s *Service) handleStudentTransactions(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if middleware.GetUserRole(r.Context()) != string(moeda.RoleProfessor) && !s.self(w, r, moeda.RoleStudent, id) {
		return
	}
	list, err := s.store.ListTransactions(r.Context(), store.TransactionFilter{StudentID: id})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

func (s *Service) handleStudentRedemptions(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !s.self(w, r, moeda.RoleStudent, id) {
		return
	}
	list, err := s.store.ListRedemptions(r.Context(), store.RedemptionFilter{StudentID: id})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

func (s *Service) handleRedeem(w http.ResponseWriter, r *http.Request) {
	var req moeda.RedeemRequest
	if !s.decode(w, r, &req) {
		return
	}
	if !s.self(w, r, moeda.RoleStudent, req.StudentID) {
		return
	}
	red, err := s.Redeem(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, red)
}

// Redeem claims an advantage for a student under a freshly generated coupon.
func (s *Service) Redeem(ctx context.Context, req moeda.RedeemRequest) (moeda.Redemption, error) {
	for attempt := 1; ; attempt++ {
		code, err := s.coupons()
		if err != nil {
			return moeda.Redemption{}, err
		}
		red, err := s.store.Redeem(ctx, moeda.Redemption{
			StudentID:   req.StudentID,
			AdvantageID: req.AdvantageID,
			CouponCode:  code,
		})
		if errors.Is(err, moeda.ErrCouponCollision) && attempt < maxCouponAttempts {
			s.log.WithContext(ctx).WithField("attempt", attempt).Warn("coupon collision, regenerating")
			continue
		}
		if err != nil {
			return moeda.Redemption{}, err
		}
		metrics.RecordRedemption(red.CoinCost)
		s.log.WithContext(ctx).WithFields(map[string]interface{}{
			"redemption_id": red.ID,
			"student_id":    red.StudentID,
			"advantage_id":  red.AdvantageID,
			"coin_cost":     red.CoinCost,
		}).Info("advantage redeemed")
		return red, nil
	}
}

func (s *Service) handleCompanyRedemptions(w http.ResponseWriter, r *http.Request) {
	companyID := mux.Vars(r)["companyId"]
	if !s.self(w, r, moeda.RoleCompany, companyID) {
		return
	}
	list, err := s.store.ListRedemptions(r.Context(), store.RedemptionFilter{CompanyID: companyID})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

// handleRedemptionByCoupon lets the student who owns a coupon, or the
// company that issued the advantage, look it up.
func (s *Service) handleRedemptionByCoupon(w http.ResponseWriter, r *http.Request) {
	red, err := s.store.GetRedemptionByCoupon(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		s.fail(w, r, err)
		return
	}

	callerID := middleware.GetUserID(r.Context())
	allowed := false
	switch middleware.GetUserRole(r.Context()) {
	case string(moeda.RoleStudent):
		allowed = red.StudentID == callerID
	case string(moeda.RoleCompany):
		allowed = red.CompanyID == callerID
	}
	if !allowed {
		s.fail(w, r, errForbidden)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, red)
}
