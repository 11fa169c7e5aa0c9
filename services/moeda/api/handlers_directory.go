package moedaapi

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/AulusHZP/LabProjetoDeSoftware/internal/auth"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/domain/moeda"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/httputil"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/middleware"
	"github.com/AulusHZP/LabProjetoDeSoftware/services/moeda/store"
)

// self rejects callers acting on someone else's account.
func (s *Service) self(w http.ResponseWriter, r *http.Request, role moeda.Role, id string) bool {
	if middleware.GetUserRole(r.Context()) == string(role) && middleware.GetUserID(r.Context()) == id {
		return true
	}
	s.log.LogSecurityEvent(r.Context(), "ownership_denied", map[string]interface{}{
		"path":   r.URL.Path,
		"target": id,
	})
	s.fail(w, r, errForbidden)
	return false
}

func (s *Service) handleListInstitutions(w http.ResponseWriter, r *http.Request) {
	insts, err := s.store.ListInstitutions(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, insts)
}

func (s *Service) handleGetInstitution(w http.ResponseWriter, r *http.Request) {
	inst, err := s.store.GetInstitution(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, inst)
}

func (s *Service) handleGetStudent(w http.ResponseWriter, r *http.Request) {
	st, err := s.store.GetStudent(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, st)
}

func (s *Service) handleUpdateStudent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !s.self(w, r, moeda.RoleStudent, id) {
		return
	}
	var req moeda.StudentUpdate
	if !s.decode(w, r, &req) {
		return
	}
	st, err := s.store.GetStudent(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	req.Apply(&st)
	st.PasswordHash = ""
	if req.Password != nil {
		if st.PasswordHash, err = auth.HashPassword(*req.Password); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	updated, err := s.store.UpdateStudent(r.Context(), st)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.log.WithContext(r.Context()).WithField("student_id", id).Info("student profile updated")
	httputil.WriteJSON(w, http.StatusOK, updated)
}

func (s *Service) handleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !s.self(w, r, moeda.RoleStudent, id) {
		return
	}
	s.deleteAccount(w, r, "student_id", id, s.store.DeleteStudent)
}

func (s *Service) handleDeleteProfessor(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !s.self(w, r, moeda.RoleProfessor, id) {
		return
	}
	s.deleteAccount(w, r, "professor_id", id, s.store.DeleteProfessor)
}

// deleteAccount removes the caller's own account and revokes the token they
// used, so it cannot outlive the account.
func (s *Service) deleteAccount(w http.ResponseWriter, r *http.Request, field, id string, del func(context.Context, string) error) {
	if err := del(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.tokens.Revoke(r.Context(), middleware.GetClaims(r.Context())); err != nil {
		s.log.WithContext(r.Context()).WithError(err).Warn("token revocation after account deletion failed")
	}
	s.log.WithContext(r.Context()).WithField(field, id).Info("account deleted")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleStudentsByInstitution(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.ListStudents(r.Context(), store.StudentFilter{InstitutionID: mux.Vars(r)["institutionId"]})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

func (s *Service) handleSearchStudents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := s.store.ListStudents(r.Context(), store.StudentFilter{
		InstitutionID: q.Get("institutionId"),
		Name:          q.Get("name"),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

func (s *Service) handleListProfessors(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.ListProfessors(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

func (s *Service) handleGetProfessor(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.GetProfessor(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (s *Service) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.GetCompany(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}
