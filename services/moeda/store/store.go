// Package store defines persistence for the MoedaEstudantil authority.
//
// Transfer and Redeem are the only operations that move value. Each runs as
// one atomic unit: either every balance, counter and ledger row changes, or
// none does.
package store

import (
	"context"
	"time"

	"github.com/AulusHZP/LabProjetoDeSoftware/internal/domain/moeda"
)

// StudentFilter narrows student listings.
type StudentFilter struct {
	InstitutionID string
	Name          string
}

// AdvantageFilter narrows advantage listings.
type AdvantageFilter struct {
	CompanyID     string
	AvailableOnly bool
	MaxCost       int64
}

// TransactionFilter narrows ledger listings.
type TransactionFilter struct {
	ProfessorID string
	StudentID   string
}

// RedemptionFilter narrows redemption listings.
type RedemptionFilter struct {
	StudentID string
	CompanyID string
}

// Store is the persistence contract. Lookups return moeda.ErrNotFound when
// nothing matches.
type Store interface {
	CreateInstitution(ctx context.Context, inst moeda.Institution) (moeda.Institution, error)
	GetInstitution(ctx context.Context, id string) (moeda.Institution, error)
	ListInstitutions(ctx context.Context) ([]moeda.Institution, error)

	CreateStudent(ctx context.Context, s moeda.Student) (moeda.Student, error)
	GetStudent(ctx context.Context, id string) (moeda.Student, error)
	GetStudentByEmail(ctx context.Context, email string) (moeda.Student, error)
	ListStudents(ctx context.Context, filter StudentFilter) ([]moeda.Student, error)
	// UpdateStudent rewrites the profile fields of st: name, email, address,
	// course and, when set, the password hash. The balance is untouched.
	UpdateStudent(ctx context.Context, st moeda.Student) (moeda.Student, error)
	// DeleteStudent fails with moeda.ErrAccountHasHistory once the student
	// appears in the ledger.
	DeleteStudent(ctx context.Context, id string) error

	CreateProfessor(ctx context.Context, p moeda.Professor) (moeda.Professor, error)
	GetProfessor(ctx context.Context, id string) (moeda.Professor, error)
	GetProfessorByEmail(ctx context.Context, email string) (moeda.Professor, error)
	ListProfessors(ctx context.Context) ([]moeda.Professor, error)
	DeleteProfessor(ctx context.Context, id string) error

	CreateCompany(ctx context.Context, c moeda.Company) (moeda.Company, error)
	GetCompany(ctx context.Context, id string) (moeda.Company, error)
	GetCompanyByEmail(ctx context.Context, email string) (moeda.Company, error)

	CreateAdvantage(ctx context.Context, a moeda.Advantage) (moeda.Advantage, error)
	GetAdvantage(ctx context.Context, id string) (moeda.Advantage, error)
	UpdateAdvantage(ctx context.Context, a moeda.Advantage) (moeda.Advantage, error)
	DeleteAdvantage(ctx context.Context, id string) error
	ListAdvantages(ctx context.Context, filter AdvantageFilter) ([]moeda.Advantage, error)

	// Transfer debits the professor and credits the student, recording tx.
	// It fails with moeda.ErrInsufficientBalance without changing anything
	// when the professor cannot cover the amount.
	Transfer(ctx context.Context, tx moeda.Transaction) (moeda.Transaction, error)
	// Redeem debits the student, increments the advantage's redemption
	// count and records r. It checks, in order: advantage active, not
	// exhausted, student exists, balance sufficient, coupon unused.
	Redeem(ctx context.Context, r moeda.Redemption) (moeda.Redemption, error)
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]moeda.Transaction, error)
	ListRedemptions(ctx context.Context, filter RedemptionFilter) ([]moeda.Redemption, error)
	GetRedemptionByCoupon(ctx context.Context, code string) (moeda.Redemption, error)

	// CreditAllowance adds amount to every professor whose last refresh is
	// before since, stamping them with at. It returns how many were credited.
	CreditAllowance(ctx context.Context, amount int64, since, at time.Time) (int, error)
}
