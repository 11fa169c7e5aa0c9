package ledger

import (
	"sync"

	"github.com/AulusHZP/LabProjetoDeSoftware/internal/domain/moeda"
)

// View is the locally displayed copy of ledger-derived state.
//
// Everything in a View is a cache of authoritative server state. Only
// reconciliation writes server values into it; provisional balances set by
// optimistic display are always overwritten or discarded.
type View struct {
	mu          sync.RWMutex
	professors  map[string]moeda.Professor
	students    map[string]moeda.Student
	advantages  map[string]moeda.Advantage
	sent        map[string][]moeda.Transaction
	received    map[string][]moeda.Transaction
	redemptions map[string][]moeda.Redemption
	provisional map[accountKey]int64
}

type accountKey struct {
	role moeda.Role
	id   string
}

// NewView creates an empty View.
func NewView() *View {
	return &View{
		professors:  make(map[string]moeda.Professor),
		students:    make(map[string]moeda.Student),
		advantages:  make(map[string]moeda.Advantage),
		sent:        make(map[string][]moeda.Transaction),
		received:    make(map[string][]moeda.Transaction),
		redemptions: make(map[string][]moeda.Redemption),
		provisional: make(map[accountKey]int64),
	}
}

// Balance returns the displayed balance and whether it is provisional.
// ok is false when nothing is known about the account.
func (v *View) Balance(role moeda.Role, id string) (balance int64, provisional bool, ok bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if b, found := v.provisional[accountKey{role, id}]; found {
		return b, true, true
	}
	switch role {
	case moeda.RoleProfessor:
		if p, found := v.professors[id]; found {
			return p.CoinBalance, false, true
		}
	case moeda.RoleStudent:
		if s, found := v.students[id]; found {
			return s.CoinBalance, false, true
		}
	}
	return 0, false, false
}

// Professor returns the last reconciled professor.
func (v *View) Professor(id string) (moeda.Professor, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	p, ok := v.professors[id]
	return p, ok
}

// Student returns the last reconciled student.
func (v *View) Student(id string) (moeda.Student, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	s, ok := v.students[id]
	return s, ok
}

// Advantage returns the last reconciled advantage.
func (v *View) Advantage(id string) (moeda.Advantage, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	a, ok := v.advantages[id]
	return a, ok
}

// Sent returns a professor's transfer history.
func (v *View) Sent(professorID string) []moeda.Transaction {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]moeda.Transaction(nil), v.sent[professorID]...)
}

// Received returns a student's transfer history.
func (v *View) Received(studentID string) []moeda.Transaction {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]moeda.Transaction(nil), v.received[studentID]...)
}

// Redemptions returns a student's redemption history.
func (v *View) Redemptions(studentID string) []moeda.Redemption {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]moeda.Redemption(nil), v.redemptions[studentID]...)
}

// PutProfessor stores an authoritative professor and drops any provisional balance.
func (v *View) PutProfessor(p moeda.Professor) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.professors[p.ID] = p
	delete(v.provisional, accountKey{moeda.RoleProfessor, p.ID})
}

// PutStudent stores an authoritative student and drops any provisional balance.
func (v *View) PutStudent(s moeda.Student) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.students[s.ID] = s
	delete(v.provisional, accountKey{moeda.RoleStudent, s.ID})
}

// PutAdvantage stores an authoritative advantage.
func (v *View) PutAdvantage(a moeda.Advantage) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.advantages[a.ID] = a
}

// PutAdvantages stores a batch of advantages, e.g. a catalogue listing.
func (v *View) PutAdvantages(list []moeda.Advantage) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, a := range list {
		v.advantages[a.ID] = a
	}
}

func (v *View) putSent(professorID string, txs []moeda.Transaction) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sent[professorID] = txs
}

func (v *View) putReceived(studentID string, txs []moeda.Transaction) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.received[studentID] = txs
}

func (v *View) putRedemptions(studentID string, rs []moeda.Redemption) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.redemptions[studentID] = rs
}

func (v *View) setProvisional(role moeda.Role, id string, delta int64) (restore func()) {
	v.mu.Lock()
	defer v.mu.Unlock()

	key := accountKey{role, id}
	prev, hadPrev := v.provisional[key]

	var base int64
	switch {
	case hadPrev:
		base = prev
	case role == moeda.RoleProfessor:
		p, ok := v.professors[id]
		if !ok {
			return func() {}
		}
		base = p.CoinBalance
	case role == moeda.RoleStudent:
		s, ok := v.students[id]
		if !ok {
			return func() {}
		}
		base = s.CoinBalance
	}
	v.provisional[key] = base + delta

	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		if hadPrev {
			v.provisional[key] = prev
		} else {
			delete(v.provisional, key)
		}
	}
}

// dropProvisional discards a provisional balance. Accounts whose refetch
// failed fall back to their last reconciled value.
func (v *View) dropProvisional(role moeda.Role, id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.provisional, accountKey{role, id})
}
