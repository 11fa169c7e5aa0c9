// Package memory is an in-memory implementation of the MoedaEstudantil store.
// It is safe for concurrent use and is intended for tests and local development.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AulusHZP/LabProjetoDeSoftware/internal/domain/moeda"
	"github.com/AulusHZP/LabProjetoDeSoftware/services/moeda/store"
)

// Store keeps everything in maps guarded by one lock, which also makes
// Transfer and Redeem atomic.
type Store struct {
	mu           sync.RWMutex
	institutions map[string]moeda.Institution
	students     map[string]moeda.Student
	professors   map[string]moeda.Professor
	companies    map[string]moeda.Company
	advantages   map[string]moeda.Advantage
	transactions []moeda.Transaction
	redemptions  []moeda.Redemption
	coupons      map[string]int
	now          func() time.Time
}

var _ store.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		institutions: make(map[string]moeda.Institution),
		students:     make(map[string]moeda.Student),
		professors:   make(map[string]moeda.Professor),
		companies:    make(map[string]moeda.Company),
		advantages:   make(map[string]moeda.Advantage),
		coupons:      make(map[string]int),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) stamp(id *string, created *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	if created.IsZero() {
		*created = s.now()
	}
}

// Institutions ----------------------------------------------------------------

func (s *Store) CreateInstitution(_ context.Context, inst moeda.Institution) (moeda.Institution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&inst.ID, &inst.CreatedAt)
	s.institutions[inst.ID] = inst
	return inst, nil
}

func (s *Store) GetInstitution(_ context.Context, id string) (moeda.Institution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inst, ok := s.institutions[id]
	if !ok {
		return moeda.Institution{}, moeda.ErrNotFound
	}
	return inst, nil
}

func (s *Store) ListInstitutions(_ context.Context) ([]moeda.Institution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]moeda.Institution, 0, len(s.institutions))
	for _, inst := range s.institutions {
		out = append(out, inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Students --------------------------------------------------------------------

func (s *Store) CreateStudent(_ context.Context, st moeda.Student) (moeda.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.students {
		if strings.EqualFold(existing.Email, st.Email) {
			return moeda.Student{}, moeda.ErrEmailTaken
		}
		if existing.CPF == st.CPF {
			return moeda.Student{}, moeda.ErrCPFTaken
		}
	}
	s.stamp(&st.ID, &st.CreatedAt)
	st.InstitutionName = s.institutions[st.InstitutionID].Name
	s.students[st.ID] = st
	return st, nil
}

func (s *Store) GetStudent(_ context.Context, id string) (moeda.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.students[id]
	if !ok {
		return moeda.Student{}, moeda.ErrNotFound
	}
	return st, nil
}

func (s *Store) GetStudentByEmail(_ context.Context, email string) (moeda.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.students {
		if strings.EqualFold(st.Email, email) {
			return st, nil
		}
	}
	return moeda.Student{}, moeda.ErrNotFound
}

func (s *Store) ListStudents(_ context.Context, filter store.StudentFilter) ([]moeda.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name := strings.ToLower(filter.Name)
	out := make([]moeda.Student, 0)
	for _, st := range s.students {
		if filter.InstitutionID != "" && st.InstitutionID != filter.InstitutionID {
			continue
		}
		if name != "" && !strings.Contains(strings.ToLower(st.Name), name) {
			continue
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) UpdateStudent(_ context.Context, st moeda.Student) (moeda.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.students[st.ID]
	if !ok {
		return moeda.Student{}, moeda.ErrNotFound
	}
	for id, other := range s.students {
		if id != st.ID && strings.EqualFold(other.Email, st.Email) {
			return moeda.Student{}, moeda.ErrEmailTaken
		}
	}
	existing.Name = st.Name
	existing.Email = st.Email
	existing.Address = st.Address
	existing.Course = st.Course
	if st.PasswordHash != "" {
		existing.PasswordHash = st.PasswordHash
	}
	s.students[st.ID] = existing
	return existing, nil
}

func (s *Store) DeleteStudent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.students[id]; !ok {
		return moeda.ErrNotFound
	}
	for _, tx := range s.transactions {
		if tx.StudentID == id {
			return moeda.ErrAccountHasHistory
		}
	}
	for _, r := range s.redemptions {
		if r.StudentID == id {
			return moeda.ErrAccountHasHistory
		}
	}
	delete(s.students, id)
	return nil
}

// Professors ------------------------------------------------------------------

func (s *Store) CreateProfessor(_ context.Context, p moeda.Professor) (moeda.Professor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.professors {
		if strings.EqualFold(existing.Email, p.Email) {
			return moeda.Professor{}, moeda.ErrEmailTaken
		}
		if existing.CPF == p.CPF {
			return moeda.Professor{}, moeda.ErrCPFTaken
		}
	}
	s.stamp(&p.ID, &p.CreatedAt)
	p.InstitutionName = s.institutions[p.InstitutionID].Name
	s.professors[p.ID] = p
	return p, nil
}

func (s *Store) GetProfessor(_ context.Context, id string) (moeda.Professor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.professors[id]
	if !ok {
		return moeda.Professor{}, moeda.ErrNotFound
	}
	return p, nil
}

func (s *Store) GetProfessorByEmail(_ context.Context, email string) (moeda.Professor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.professors {
		if strings.EqualFold(p.Email, email) {
			return p, nil
		}
	}
	return moeda.Professor{}, moeda.ErrNotFound
}

func (s *Store) ListProfessors(_ context.Context) ([]moeda.Professor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]moeda.Professor, 0, len(s.professors))
	for _, p := range s.professors {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) DeleteProfessor(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.professors[id]; !ok {
		return moeda.ErrNotFound
	}
	for _, tx := range s.transactions {
		if tx.ProfessorID == id {
			return moeda.ErrAccountHasHistory
		}
	}
	delete(s.professors, id)
	return nil
}

// Companies -------------------------------------------------------------------

func (s *Store) CreateCompany(_ context.Context, c moeda.Company) (moeda.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.companies {
		if strings.EqualFold(existing.Email, c.Email) {
			return moeda.Company{}, moeda.ErrEmailTaken
		}
		if existing.CNPJ == c.CNPJ {
			return moeda.Company{}, moeda.ErrCNPJTaken
		}
	}
	s.stamp(&c.ID, &c.CreatedAt)
	s.companies[c.ID] = c
	return c, nil
}

func (s *Store) GetCompany(_ context.Context, id string) (moeda.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.companies[id]
	if !ok {
		return moeda.Company{}, moeda.ErrNotFound
	}
	return c, nil
}

func (s *Store) GetCompanyByEmail(_ context.Context, email string) (moeda.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.companies {
		if strings.EqualFold(c.Email, email) {
			return c, nil
		}
	}
	return moeda.Company{}, moeda.ErrNotFound
}

// Advantages ------------------------------------------------------------------

func (s *Store) CreateAdvantage(_ context.Context, a moeda.Advantage) (moeda.Advantage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.companies[a.CompanyID]
	if !ok {
		return moeda.Advantage{}, moeda.ErrNotFound
	}
	s.stamp(&a.ID, &a.CreatedAt)
	a.CompanyName = c.CompanyName
	s.advantages[a.ID] = a
	return a, nil
}

func (s *Store) GetAdvantage(_ context.Context, id string) (moeda.Advantage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.advantages[id]
	if !ok {
		return moeda.Advantage{}, moeda.ErrNotFound
	}
	return a, nil
}

func (s *Store) UpdateAdvantage(_ context.Context, a moeda.Advantage) (moeda.Advantage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.advantages[a.ID]
	if !ok {
		return moeda.Advantage{}, moeda.ErrNotFound
	}
	if a.MaxRedemptions < existing.CurrentRedemptions {
		return moeda.Advantage{}, moeda.ErrMaxBelowRedemptions
	}
	// Ownership, counters and creation time are not editable.
	a.CompanyID = existing.CompanyID
	a.CompanyName = existing.CompanyName
	a.CurrentRedemptions = existing.CurrentRedemptions
	a.CreatedAt = existing.CreatedAt
	s.advantages[a.ID] = a
	return a, nil
}

func (s *Store) DeleteAdvantage(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.advantages[id]; !ok {
		return moeda.ErrNotFound
	}
	delete(s.advantages, id)
	return nil
}

func (s *Store) ListAdvantages(_ context.Context, filter store.AdvantageFilter) ([]moeda.Advantage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]moeda.Advantage, 0)
	for _, a := range s.advantages {
		if filter.CompanyID != "" && a.CompanyID != filter.CompanyID {
			continue
		}
		if filter.AvailableOnly && !a.Redeemable() {
			continue
		}
		if filter.MaxCost > 0 && a.CoinCost > filter.MaxCost {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CoinCost != out[j].CoinCost {
			return out[i].CoinCost < out[j].CoinCost
		}
		return out[i].Title < out[j].Title
	})
	return out, nil
}

// Ledger ----------------------------------------------------------------------

func (s *Store) Transfer(_ context.Context, tx moeda.Transaction) (moeda.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tx.Amount <= 0 {
		return moeda.Transaction{}, moeda.ErrInvalidAmount
	}
	p, ok := s.professors[tx.ProfessorID]
	if !ok {
		return moeda.Transaction{}, moeda.ErrNotFound
	}
	st, ok := s.students[tx.StudentID]
	if !ok {
		return moeda.Transaction{}, moeda.ErrNotFound
	}
	if p.CoinBalance < tx.Amount {
		return moeda.Transaction{}, moeda.ErrInsufficientBalance
	}

	p.CoinBalance -= tx.Amount
	st.CoinBalance += tx.Amount
	s.professors[p.ID] = p
	s.students[st.ID] = st

	s.stamp(&tx.ID, &tx.CreatedAt)
	tx.ProfessorName = p.Name
	tx.StudentName = st.Name
	s.transactions = append(s.transactions, tx)
	return tx, nil
}

func (s *Store) Redeem(_ context.Context, r moeda.Redemption) (moeda.Redemption, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.advantages[r.AdvantageID]
	if !ok {
		return moeda.Redemption{}, moeda.ErrNotFound
	}
	if !a.IsActive {
		return moeda.Redemption{}, moeda.ErrAdvantageInactive
	}
	if a.Exhausted() {
		return moeda.Redemption{}, moeda.ErrAdvantageExhausted
	}
	st, ok := s.students[r.StudentID]
	if !ok {
		return moeda.Redemption{}, moeda.ErrNotFound
	}
	if st.CoinBalance < a.CoinCost {
		return moeda.Redemption{}, moeda.ErrInsufficientBalance
	}
	if _, used := s.coupons[r.CouponCode]; used {
		return moeda.Redemption{}, moeda.ErrCouponCollision
	}

	st.CoinBalance -= a.CoinCost
	a.CurrentRedemptions++
	s.students[st.ID] = st
	s.advantages[a.ID] = a

	s.stamp(&r.ID, &r.CreatedAt)
	r.StudentName = st.Name
	r.StudentEmail = st.Email
	r.AdvantageTitle = a.Title
	r.CompanyID = a.CompanyID
	r.CoinCost = a.CoinCost
	s.coupons[r.CouponCode] = len(s.redemptions)
	s.redemptions = append(s.redemptions, r)
	return r, nil
}

func (s *Store) ListTransactions(_ context.Context, filter store.TransactionFilter) ([]moeda.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]moeda.Transaction, 0)
	for i := len(s.transactions) - 1; i >= 0; i-- {
		tx := s.transactions[i]
		if filter.ProfessorID != "" && tx.ProfessorID != filter.ProfessorID {
			continue
		}
		if filter.StudentID != "" && tx.StudentID != filter.StudentID {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

func (s *Store) ListRedemptions(_ context.Context, filter store.RedemptionFilter) ([]moeda.Redemption, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]moeda.Redemption, 0)
	for i := len(s.redemptions) - 1; i >= 0; i-- {
		r := s.redemptions[i]
		if filter.StudentID != "" && r.StudentID != filter.StudentID {
			continue
		}
		if filter.CompanyID != "" && r.CompanyID != filter.CompanyID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *Store) GetRedemptionByCoupon(_ context.Context, code string) (moeda.Redemption, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.coupons[code]
	if !ok {
		return moeda.Redemption{}, moeda.ErrNotFound
	}
	return s.redemptions[idx], nil
}

func (s *Store) CreditAllowance(_ context.Context, amount int64, since, at time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	credited := 0
	for id, p := range s.professors {
		if p.LastCoinRefresh != nil && !p.LastCoinRefresh.Before(since) {
			continue
		}
		p.CoinBalance += amount
		stamp := at
		p.LastCoinRefresh = &stamp
		s.professors[id] = p
		credited++
	}
	return credited, nil
}
