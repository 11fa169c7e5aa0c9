package moedaapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/AulusHZP/LabProjetoDeSoftware/internal/auth"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/domain/moeda"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/httputil"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/middleware"
)

func (s *Service) handleStudentRegister(w http.ResponseWriter, r *http.Request) {
	var req moeda.StudentRegistration
	if !s.decode(w, r, &req) {
		return
	}
	if _, err := s.store.GetInstitution(r.Context(), req.InstitutionID); err != nil {
		s.fail(w, r, err)
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	st, err := s.store.CreateStudent(r.Context(), moeda.Student{
		Name:          strings.TrimSpace(req.Name),
		Email:         strings.TrimSpace(req.Email),
		CPF:           req.CPF,
		RG:            req.RG,
		Address:       req.Address,
		InstitutionID: req.InstitutionID,
		Course:        req.Course,
		PasswordHash:  hash,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.log.WithContext(r.Context()).WithField("student_id", st.ID).Info("student registered")
	httputil.WriteJSON(w, http.StatusCreated, st)
}

func (s *Service) handleProfessorRegister(w http.ResponseWriter, r *http.Request) {
	var req moeda.ProfessorRegistration
	if !s.decode(w, r, &req) {
		return
	}
	if _, err := s.store.GetInstitution(r.Context(), req.InstitutionID); err != nil {
		s.fail(w, r, err)
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	// The first allowance is granted on sign-up; the scheduler takes over
	// from the next semester.
	refreshed := s.now()
	p, err := s.store.CreateProfessor(r.Context(), moeda.Professor{
		Name:            strings.TrimSpace(req.Name),
		Email:           strings.TrimSpace(req.Email),
		CPF:             req.CPF,
		Department:      req.Department,
		InstitutionID:   req.InstitutionID,
		CoinBalance:     s.initialCoins,
		LastCoinRefresh: &refreshed,
		PasswordHash:    hash,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.log.WithContext(r.Context()).WithField("professor_id", p.ID).Info("professor registered")
	httputil.WriteJSON(w, http.StatusCreated, p)
}

func (s *Service) handleCompanyRegister(w http.ResponseWriter, r *http.Request) {
	var req moeda.CompanyRegistration
	if !s.decode(w, r, &req) {
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	c, err := s.store.CreateCompany(r.Context(), moeda.Company{
		CompanyName:  strings.TrimSpace(req.CompanyName),
		CNPJ:         req.CNPJ,
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hash,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.log.WithContext(r.Context()).WithField("company_id", c.ID).Info("company registered")
	httputil.WriteJSON(w, http.StatusCreated, c)
}

func (s *Service) handleLogin(role moeda.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req moeda.LoginRequest
		if !s.decode(w, r, &req) {
			return
		}
		resp, err := s.login(r.Context(), role, req.Email, req.Password)
		if err != nil {
			if errors.Is(err, moeda.ErrInvalidCredentials) {
				s.log.LogSecurityEvent(r.Context(), "login_failed", map[string]interface{}{
					"role":  string(role),
					"email": req.Email,
				})
			}
			s.fail(w, r, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, resp)
	}
}

// login verifies credentials for role. Unknown emails and wrong passwords
// produce the same error.
func (s *Service) login(ctx context.Context, role moeda.Role, email, password string) (*moeda.LoginResponse, error) {
	var (
		id, hash string
		resp     = &moeda.LoginResponse{Role: role}
		err      error
	)
	switch role {
	case moeda.RoleStudent:
		var st moeda.Student
		st, err = s.store.GetStudentByEmail(ctx, email)
		id, hash, resp.Student = st.ID, st.PasswordHash, &st
	case moeda.RoleProfessor:
		var p moeda.Professor
		p, err = s.store.GetProfessorByEmail(ctx, email)
		id, hash, resp.Professor = p.ID, p.PasswordHash, &p
	case moeda.RoleCompany:
		var c moeda.Company
		c, err = s.store.GetCompanyByEmail(ctx, email)
		id, hash, resp.Company = c.ID, c.PasswordHash, &c
	default:
		return nil, moeda.ErrNotImplemented
	}
	if errors.Is(err, moeda.ErrNotFound) {
		return nil, moeda.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(hash, password) {
		return nil, moeda.ErrInvalidCredentials
	}

	resp.Token, err = s.tokens.Issue(id, email, string(role))
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *Service) handleLogout(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if err := s.tokens.Revoke(r.Context(), claims); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
