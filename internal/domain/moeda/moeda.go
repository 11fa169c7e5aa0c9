// Package moeda defines the student-merit currency domain: institutions,
// students, professors, partner companies, advantages, and the two immutable
// ledger records (transactions and redemptions).
package moeda

import (
	"errors"
	"time"
)

// Role identifies the kind of principal.
type Role string

const (
	RoleStudent   Role = "student"
	RoleProfessor Role = "professor"
	RoleCompany   Role = "company"
)

// Institution is a school that students and professors belong to.
type Institution struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Student receives coins and spends them on advantages.
type Student struct {
	ID              string    `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	Email           string    `json:"email" db:"email"`
	CPF             string    `json:"cpf" db:"cpf"`
	RG              string    `json:"rg,omitempty" db:"rg"`
	Address         string    `json:"address,omitempty" db:"address"`
	InstitutionID   string    `json:"institutionId" db:"institution_id"`
	InstitutionName string    `json:"institutionName,omitempty" db:"institution_name"`
	Course          string    `json:"course,omitempty" db:"course"`
	CoinBalance     int64     `json:"coinBalance" db:"coin_balance"`
	PasswordHash    string    `json:"-" db:"password_hash"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
}

// Professor distributes coins from a semester allowance.
type Professor struct {
	ID              string     `json:"id" db:"id"`
	Name            string     `json:"name" db:"name"`
	Email           string     `json:"email" db:"email"`
	CPF             string     `json:"cpf" db:"cpf"`
	Department      string     `json:"department,omitempty" db:"department"`
	InstitutionID   string     `json:"institutionId" db:"institution_id"`
	InstitutionName string     `json:"institutionName,omitempty" db:"institution_name"`
	CoinBalance     int64      `json:"coinBalance" db:"coin_balance"`
	LastCoinRefresh *time.Time `json:"lastCoinRefresh,omitempty" db:"last_coin_refresh"`
	PasswordHash    string     `json:"-" db:"password_hash"`
	CreatedAt       time.Time  `json:"createdAt" db:"created_at"`
}

// Company is a partner offering advantages.
type Company struct {
	ID           string    `json:"id" db:"id"`
	CompanyName  string    `json:"companyName" db:"company_name"`
	CNPJ         string    `json:"cnpj" db:"cnpj"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// Advantage is a company-offered reward with a coin price and a redemption cap.
type Advantage struct {
	ID                 string    `json:"id" db:"id"`
	CompanyID          string    `json:"companyId" db:"company_id"`
	CompanyName        string    `json:"companyName,omitempty" db:"company_name"`
	Title              string    `json:"title" db:"title"`
	Description        string    `json:"description" db:"description"`
	PhotoURL           string    `json:"photoUrl,omitempty" db:"photo_url"`
	CoinCost           int64     `json:"coinCost" db:"coin_cost"`
	MaxRedemptions     int       `json:"maxRedemptions" db:"max_redemptions"`
	CurrentRedemptions int       `json:"currentRedemptions" db:"current_redemptions"`
	IsActive           bool      `json:"isActive" db:"is_active"`
	CreatedAt          time.Time `json:"createdAt" db:"created_at"`
}

// Exhausted reports whether the redemption cap has been reached.
func (a Advantage) Exhausted() bool {
	return a.CurrentRedemptions >= a.MaxRedemptions
}

// Redeemable reports whether the advantage can still be claimed by anyone.
func (a Advantage) Redeemable() bool {
	return a.IsActive && !a.Exhausted()
}

// Remaining is the number of redemptions left.
func (a Advantage) Remaining() int {
	if a.Exhausted() {
		return 0
	}
	return a.MaxRedemptions - a.CurrentRedemptions
}

// Transaction records coins moving from a professor to a student. Immutable.
type Transaction struct {
	ID            string    `json:"id" db:"id"`
	ProfessorID   string    `json:"professorId" db:"professor_id"`
	ProfessorName string    `json:"professorName,omitempty" db:"professor_name"`
	StudentID     string    `json:"studentId" db:"student_id"`
	StudentName   string    `json:"studentName,omitempty" db:"student_name"`
	Amount        int64     `json:"amount" db:"amount"`
	Reason        string    `json:"reason" db:"reason"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

// Redemption records a student claiming an advantage. Immutable. It keeps the
// issuing company so coupons stay honourable after the advantage is deleted.
type Redemption struct {
	ID             string    `json:"id" db:"id"`
	StudentID      string    `json:"studentId" db:"student_id"`
	StudentName    string    `json:"studentName" db:"student_name"`
	StudentEmail   string    `json:"studentEmail" db:"student_email"`
	AdvantageID    string    `json:"advantageId" db:"advantage_id"`
	AdvantageTitle string    `json:"advantageTitle,omitempty" db:"advantage_title"`
	CompanyID      string    `json:"companyId" db:"company_id"`
	CoinCost       int64     `json:"coinCost" db:"coin_cost"`
	CouponCode     string    `json:"couponCode" db:"coupon_code"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}

// Sentinel errors. Their messages are what end users read.
var (
	ErrNotFound            = errors.New("registro não encontrado")
	ErrInvalidAmount       = errors.New("a quantidade deve ser maior que zero")
	ErrStudentRequired     = errors.New("selecione um aluno")
	ErrReasonRequired      = errors.New("informe o motivo do envio")
	ErrInsufficientBalance = errors.New("saldo insuficiente")
	ErrAdvantageInactive   = errors.New("vantagem não está ativa")
	ErrAdvantageExhausted  = errors.New("vantagem esgotada")
	ErrMaxBelowRedemptions = errors.New("o limite de resgates não pode ser menor que os resgates já feitos")
	ErrEmailTaken          = errors.New("email já cadastrado")
	ErrCPFTaken            = errors.New("CPF já cadastrado")
	ErrCNPJTaken           = errors.New("CNPJ já cadastrado")
	ErrInvalidCredentials  = errors.New("email ou senha inválidos")
	ErrAccountHasHistory   = errors.New("conta possui movimentações no extrato e não pode ser excluída")
	ErrCouponCollision     = errors.New("coupon code already issued")
	ErrNotImplemented      = errors.New("funcionalidade não disponível")
)
