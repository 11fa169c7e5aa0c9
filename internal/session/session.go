// Package session holds the signed-in principal for the lifetime of a process
// and persists it between runs.
//
// A Session is opened once at startup, changed only through Login, Refresh,
// Logout and balance reconciliation, and written to its Store after each of
// those changes.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/AulusHZP/LabProjetoDeSoftware/internal/domain/aluguel"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/domain/moeda"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/logging"
)

// ErrNotAuthenticated is returned by operations that need a signed-in user.
var ErrNotAuthenticated = errors.New("usuário não autenticado")

// Profile is the locally cached identity of the signed-in user.
type Profile struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	InstitutionID string `json:"institutionId,omitempty"`
	CoinBalance   int64  `json:"coinBalance"`
	Token         string `json:"token,omitempty"`
}

// State is what a Store persists.
type State struct {
	Profile       *Profile  `json:"profile,omitempty"`
	Authenticated bool      `json:"authenticated"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Store persists session state.
type Store interface {
	Load() (*State, error)
	Save(*State) error
	Clear() error
}

// Authenticator performs a login call and returns the resulting profile.
type Authenticator func(ctx context.Context) (*Profile, error)

// Fetcher reloads the profile of an already signed-in user.
type Fetcher func(ctx context.Context, current Profile) (*Profile, error)

// Session is the process-wide principal context.
type Session struct {
	mu    sync.RWMutex
	store Store
	state State
	log   *logging.Logger
}

// Open reads the persisted state once. A missing or unreadable state starts
// signed out.
func Open(store Store, log *logging.Logger) *Session {
	if log == nil {
		log = logging.Default("session")
	}
	s := &Session{store: store, log: log}
	st, err := store.Load()
	if err != nil {
		log.WithError(err).Warn("discarding unreadable session state")
		return s
	}
	if st != nil && st.Authenticated && st.Profile != nil {
		s.state = *st
	}
	return s
}

// Login authenticates through auth and persists the profile. The session
// changes only once the profile is saved.
func (s *Session) Login(ctx context.Context, auth Authenticator) (*Profile, error) {
	p, err := auth(ctx)
	if err != nil {
		return nil, err
	}

	next := State{Profile: p, Authenticated: true, UpdatedAt: time.Now().UTC()}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Save(&next); err != nil {
		return nil, err
	}
	s.state = next
	s.log.WithContext(ctx).WithFields(map[string]interface{}{
		"user_id": p.ID,
		"role":    p.Role,
	}).Info("signed in")
	cp := *p
	return &cp, nil
}

// Refresh reloads the current profile through fetch, keeping the token.
func (s *Session) Refresh(ctx context.Context, fetch Fetcher) (*Profile, error) {
	current, ok := s.Current()
	if !ok {
		return nil, ErrNotAuthenticated
	}
	p, err := fetch(ctx, current)
	if err != nil {
		return nil, err
	}
	if p.Token == "" {
		p.Token = current.Token
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state
	next.Profile = p
	next.UpdatedAt = time.Now().UTC()
	if err := s.store.Save(&next); err != nil {
		return nil, err
	}
	s.state = next
	cp := *p
	return &cp, nil
}

// Logout clears the session. revoke, when given, is attempted first and its
// failure does not keep the user signed in.
func (s *Session) Logout(ctx context.Context, revoke func(context.Context) error) error {
	if revoke != nil && s.Token() != "" {
		if err := revoke(ctx); err != nil {
			s.log.WithContext(ctx).WithError(err).Warn("token revocation failed")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{}
	return s.store.Clear()
}

// Current returns a copy of the signed-in profile.
func (s *Session) Current() (Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.state.Authenticated || s.state.Profile == nil {
		return Profile{}, false
	}
	return *s.state.Profile, true
}

// Token returns the bearer token of the signed-in user, or "".
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.Profile == nil {
		return ""
	}
	return s.state.Profile.Token
}

// Reconciled updates the persisted balance when the reconciled account is
// the signed-in user.
func (s *Session) Reconciled(role moeda.Role, id string, balance int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.state.Profile
	if p == nil || p.ID != id || p.Role != string(role) || p.CoinBalance == balance {
		return
	}
	p.CoinBalance = balance
	s.state.UpdatedAt = time.Now().UTC()
	if err := s.store.Save(&s.state); err != nil {
		s.log.WithError(err).Warn("persist reconciled balance")
	}
}

// FromMoedaLogin builds a profile from a MoedaEstudantil login response.
func FromMoedaLogin(resp *moeda.LoginResponse) *Profile {
	p := &Profile{Role: string(resp.Role), Token: resp.Token}
	switch {
	case resp.Student != nil:
		p.ID, p.Name, p.Email = resp.Student.ID, resp.Student.Name, resp.Student.Email
		p.InstitutionID, p.CoinBalance = resp.Student.InstitutionID, resp.Student.CoinBalance
	case resp.Professor != nil:
		p.ID, p.Name, p.Email = resp.Professor.ID, resp.Professor.Name, resp.Professor.Email
		p.InstitutionID, p.CoinBalance = resp.Professor.InstitutionID, resp.Professor.CoinBalance
	case resp.Company != nil:
		p.ID, p.Name, p.Email = resp.Company.ID, resp.Company.CompanyName, resp.Company.Email
	}
	return p
}

// FromAluguelUser builds a token-less profile from a car-rental user.
func FromAluguelUser(u *aluguel.User) *Profile {
	return &Profile{ID: u.ID, Name: u.Nome, Email: u.Email, Role: string(u.Tipo)}
}
