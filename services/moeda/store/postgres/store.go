// Package postgres implements the MoedaEstudantil store on PostgreSQL.
//
// Transfer and Redeem run inside one transaction and lock the rows they
// touch with SELECT ... FOR UPDATE. Lock order is always payer first, then
// payee, so concurrent ledger operations cannot deadlock each other.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/AulusHZP/LabProjetoDeSoftware/internal/domain/moeda"
	"github.com/AulusHZP/LabProjetoDeSoftware/services/moeda/store"
)

// Postgres error codes the store translates.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

// Store implements store.Store backed by PostgreSQL.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

var _ store.Store = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sqlx.DB) *Store {
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Open connects to dsn with the lib/pq driver and verifies the connection.
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// translate maps driver errors onto domain sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return moeda.ErrNotFound
	}
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case codeUniqueViolation:
		switch c := pqErr.Constraint; {
		case strings.Contains(c, "email"):
			return moeda.ErrEmailTaken
		case strings.Contains(c, "cnpj"):
			return moeda.ErrCNPJTaken
		case strings.Contains(c, "cpf"):
			return moeda.ErrCPFTaken
		case strings.Contains(c, "coupon"):
			return moeda.ErrCouponCollision
		}
	case codeForeignKeyViolation:
		return moeda.ErrNotFound
	case codeCheckViolation:
		if strings.Contains(pqErr.Constraint, "redemptions_within_max") {
			return moeda.ErrMaxBelowRedemptions
		}
	}
	return err
}

func (s *Store) stamp(id *string, created *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	if created.IsZero() {
		*created = s.now()
	}
}

// clause accumulates WHERE conditions with positional arguments.
type clause struct {
	conds []string
	args  []any
}

func (c *clause) add(cond string, arg any) {
	c.args = append(c.args, arg)
	c.conds = append(c.conds, fmt.Sprintf(cond, len(c.args)))
}

func (c *clause) String() string {
	if len(c.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.conds, " AND ")
}

// --- Institutions -----------------------------------------------------------

func (s *Store) CreateInstitution(ctx context.Context, inst moeda.Institution) (moeda.Institution, error) {
	s.stamp(&inst.ID, &inst.CreatedAt)
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO institutions (id, name, created_at)
		VALUES (:id, :name, :created_at)
	`, inst)
	if err != nil {
		return moeda.Institution{}, translate(err)
	}
	return inst, nil
}

func (s *Store) GetInstitution(ctx context.Context, id string) (moeda.Institution, error) {
	var inst moeda.Institution
	err := s.db.GetContext(ctx, &inst, `SELECT id, name, created_at FROM institutions WHERE id = $1`, id)
	return inst, translate(err)
}

func (s *Store) ListInstitutions(ctx context.Context) ([]moeda.Institution, error) {
	out := []moeda.Institution{}
	err := s.db.SelectContext(ctx, &out, `SELECT id, name, created_at FROM institutions ORDER BY name`)
	return out, translate(err)
}

// --- Students ---------------------------------------------------------------

const selectStudent = `
	SELECT s.id, s.name, s.email, s.cpf, s.rg, s.address,
	       COALESCE(s.institution_id, '') AS institution_id,
	       COALESCE(i.name, '') AS institution_name,
	       s.course, s.coin_balance, s.password_hash, s.created_at
	FROM students s
	LEFT JOIN institutions i ON i.id = s.institution_id`

func (s *Store) CreateStudent(ctx context.Context, st moeda.Student) (moeda.Student, error) {
	s.stamp(&st.ID, &st.CreatedAt)
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO students (id, name, email, cpf, rg, address, institution_id, course, coin_balance, password_hash, created_at)
		VALUES (:id, :name, :email, :cpf, :rg, :address, NULLIF(:institution_id, ''), :course, :coin_balance, :password_hash, :created_at)
	`, st)
	if err != nil {
		return moeda.Student{}, translate(err)
	}
	return s.GetStudent(ctx, st.ID)
}

func (s *Store) GetStudent(ctx context.Context, id string) (moeda.Student, error) {
	var st moeda.Student
	err := s.db.GetContext(ctx, &st, selectStudent+` WHERE s.id = $1`, id)
	return st, translate(err)
}

func (s *Store) GetStudentByEmail(ctx context.Context, email string) (moeda.Student, error) {
	var st moeda.Student
	err := s.db.GetContext(ctx, &st, selectStudent+` WHERE lower(s.email) = lower($1)`, email)
	return st, translate(err)
}

func (s *Store) ListStudents(ctx context.Context, filter store.StudentFilter) ([]moeda.Student, error) {
	var where clause
	if filter.InstitutionID != "" {
		where.add("s.institution_id = $%d", filter.InstitutionID)
	}
	if filter.Name != "" {
		where.add("s.name ILIKE '%%' || $%d || '%%'", filter.Name)
	}
	out := []moeda.Student{}
	err := s.db.SelectContext(ctx, &out, selectStudent+where.String()+` ORDER BY s.name`, where.args...)
	return out, translate(err)
}

// UpdateStudent keeps the stored hash when st.PasswordHash is empty.
func (s *Store) UpdateStudent(ctx context.Context, st moeda.Student) (moeda.Student, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE students
		SET name = $2, email = $3, address = $4, course = $5,
		    password_hash = COALESCE(NULLIF($6, ''), password_hash)
		WHERE id = $1
	`, st.ID, st.Name, st.Email, st.Address, st.Course, st.PasswordHash)
	if err != nil {
		return moeda.Student{}, translate(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return moeda.Student{}, moeda.ErrNotFound
	}
	return s.GetStudent(ctx, st.ID)
}

func (s *Store) DeleteStudent(ctx context.Context, id string) error {
	return s.deleteAccount(ctx, `DELETE FROM students WHERE id = $1`, id)
}

// deleteAccount removes a student or professor row. Ledger rows reference
// their parties, so a foreign key violation means the account has history.
func (s *Store) deleteAccount(ctx context.Context, query, id string) error {
	result, err := s.db.ExecContext(ctx, query, id)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == codeForeignKeyViolation {
		return moeda.ErrAccountHasHistory
	}
	if err != nil {
		return translate(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return moeda.ErrNotFound
	}
	return nil
}

// --- Professors -------------------------------------------------------------

const selectProfessor = `
	SELECT p.id, p.name, p.email, p.cpf, p.department,
	       COALESCE(p.institution_id, '') AS institution_id,
	       COALESCE(i.name, '') AS institution_name,
	       p.coin_balance, p.last_coin_refresh, p.password_hash, p.created_at
	FROM professors p
	LEFT JOIN institutions i ON i.id = p.institution_id`

func (s *Store) CreateProfessor(ctx context.Context, p moeda.Professor) (moeda.Professor, error) {
	s.stamp(&p.ID, &p.CreatedAt)
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO professors (id, name, email, cpf, department, institution_id, coin_balance, last_coin_refresh, password_hash, created_at)
		VALUES (:id, :name, :email, :cpf, :department, NULLIF(:institution_id, ''), :coin_balance, :last_coin_refresh, :password_hash, :created_at)
	`, p)
	if err != nil {
		return moeda.Professor{}, translate(err)
	}
	return s.GetProfessor(ctx, p.ID)
}

func (s *Store) GetProfessor(ctx context.Context, id string) (moeda.Professor, error) {
	var p moeda.Professor
	err := s.db.GetContext(ctx, &p, selectProfessor+` WHERE p.id = $1`, id)
	return p, translate(err)
}

func (s *Store) GetProfessorByEmail(ctx context.Context, email string) (moeda.Professor, error) {
	var p moeda.Professor
	err := s.db.GetContext(ctx, &p, selectProfessor+` WHERE lower(p.email) = lower($1)`, email)
	return p, translate(err)
}

func (s *Store) ListProfessors(ctx context.Context) ([]moeda.Professor, error) {
	out := []moeda.Professor{}
	err := s.db.SelectContext(ctx, &out, selectProfessor+` ORDER BY p.name`)
	return out, translate(err)
}

func (s *Store) DeleteProfessor(ctx context.Context, id string) error {
	return s.deleteAccount(ctx, `DELETE FROM professors WHERE id = $1`, id)
}

// --- Companies --------------------------------------------------------------

const selectCompany = `SELECT id, company_name, cnpj, email, password_hash, created_at FROM companies`

func (s *Store) CreateCompany(ctx context.Context, c moeda.Company) (moeda.Company, error) {
	s.stamp(&c.ID, &c.CreatedAt)
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO companies (id, company_name, cnpj, email, password_hash, created_at)
		VALUES (:id, :company_name, :cnpj, :email, :password_hash, :created_at)
	`, c)
	if err != nil {
		return moeda.Company{}, translate(err)
	}
	return c, nil
}

func (s *Store) GetCompany(ctx context.Context, id string) (moeda.Company, error) {
	var c moeda.Company
	err := s.db.GetContext(ctx, &c, selectCompany+` WHERE id = $1`, id)
	return c, translate(err)
}

func (s *Store) GetCompanyByEmail(ctx context.Context, email string) (moeda.Company, error) {
	var c moeda.Company
	err := s.db.GetContext(ctx, &c, selectCompany+` WHERE lower(email) = lower($1)`, email)
	return c, translate(err)
}

// --- Advantages -------------------------------------------------------------

const selectAdvantage = `
	SELECT a.id, a.company_id, c.company_name, a.title, a.description, a.photo_url,
	       a.coin_cost, a.max_redemptions, a.current_redemptions, a.is_active, a.created_at
	FROM advantages a
	JOIN companies c ON c.id = a.company_id`

func (s *Store) CreateAdvantage(ctx context.Context, a moeda.Advantage) (moeda.Advantage, error) {
	company, err := s.GetCompany(ctx, a.CompanyID)
	if err != nil {
		return moeda.Advantage{}, err
	}
	s.stamp(&a.ID, &a.CreatedAt)
	a.CompanyName = company.CompanyName
	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO advantages (id, company_id, title, description, photo_url, coin_cost, max_redemptions, current_redemptions, is_active, created_at)
		VALUES (:id, :company_id, :title, :description, :photo_url, :coin_cost, :max_redemptions, :current_redemptions, :is_active, :created_at)
	`, a)
	if err != nil {
		return moeda.Advantage{}, translate(err)
	}
	return a, nil
}

func (s *Store) GetAdvantage(ctx context.Context, id string) (moeda.Advantage, error) {
	var a moeda.Advantage
	err := s.db.GetContext(ctx, &a, selectAdvantage+` WHERE a.id = $1`, id)
	return a, translate(err)
}

func (s *Store) UpdateAdvantage(ctx context.Context, a moeda.Advantage) (moeda.Advantage, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE advantages
		SET title = $2, description = $3, photo_url = $4, coin_cost = $5, max_redemptions = $6, is_active = $7
		WHERE id = $1 AND $6 >= current_redemptions
	`, a.ID, a.Title, a.Description, a.PhotoURL, a.CoinCost, a.MaxRedemptions, a.IsActive)
	if err != nil {
		return moeda.Advantage{}, translate(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		// Either the row is gone or the new cap is below the count.
		if _, err := s.GetAdvantage(ctx, a.ID); err != nil {
			return moeda.Advantage{}, err
		}
		return moeda.Advantage{}, moeda.ErrMaxBelowRedemptions
	}
	return s.GetAdvantage(ctx, a.ID)
}

func (s *Store) DeleteAdvantage(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM advantages WHERE id = $1`, id)
	if err != nil {
		return translate(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return moeda.ErrNotFound
	}
	return nil
}

func (s *Store) ListAdvantages(ctx context.Context, filter store.AdvantageFilter) ([]moeda.Advantage, error) {
	var where clause
	if filter.CompanyID != "" {
		where.add("a.company_id = $%d", filter.CompanyID)
	}
	if filter.AvailableOnly {
		where.conds = append(where.conds, "a.is_active", "a.current_redemptions < a.max_redemptions")
	}
	if filter.MaxCost > 0 {
		where.add("a.coin_cost <= $%d", filter.MaxCost)
	}
	out := []moeda.Advantage{}
	err := s.db.SelectContext(ctx, &out, selectAdvantage+where.String()+` ORDER BY a.coin_cost, a.title`, where.args...)
	return out, translate(err)
}

// --- Ledger -----------------------------------------------------------------

func (s *Store) Transfer(ctx context.Context, t moeda.Transaction) (moeda.Transaction, error) {
	if t.Amount <= 0 {
		return moeda.Transaction{}, moeda.ErrInvalidAmount
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return moeda.Transaction{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var payer moeda.Professor
	if err := tx.GetContext(ctx, &payer, `SELECT id, name, coin_balance FROM professors WHERE id = $1 FOR UPDATE`, t.ProfessorID); err != nil {
		return moeda.Transaction{}, translate(err)
	}
	var payee moeda.Student
	if err := tx.GetContext(ctx, &payee, `SELECT id, name, coin_balance FROM students WHERE id = $1 FOR UPDATE`, t.StudentID); err != nil {
		return moeda.Transaction{}, translate(err)
	}
	if payer.CoinBalance < t.Amount {
		return moeda.Transaction{}, moeda.ErrInsufficientBalance
	}

	if _, err := tx.ExecContext(ctx, `UPDATE professors SET coin_balance = coin_balance - $2 WHERE id = $1`, payer.ID, t.Amount); err != nil {
		return moeda.Transaction{}, translate(err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE students SET coin_balance = coin_balance + $2 WHERE id = $1`, payee.ID, t.Amount); err != nil {
		return moeda.Transaction{}, translate(err)
	}

	s.stamp(&t.ID, &t.CreatedAt)
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (id, professor_id, student_id, amount, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, t.ID, t.ProfessorID, t.StudentID, t.Amount, t.Reason, t.CreatedAt); err != nil {
		return moeda.Transaction{}, translate(err)
	}
	if err := tx.Commit(); err != nil {
		return moeda.Transaction{}, err
	}

	t.ProfessorName = payer.Name
	t.StudentName = payee.Name
	return t, nil
}

func (s *Store) Redeem(ctx context.Context, r moeda.Redemption) (moeda.Redemption, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return moeda.Redemption{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var adv moeda.Advantage
	if err := tx.GetContext(ctx, &adv, `
		SELECT id, company_id, title, coin_cost, max_redemptions, current_redemptions, is_active
		FROM advantages WHERE id = $1 FOR UPDATE
	`, r.AdvantageID); err != nil {
		return moeda.Redemption{}, translate(err)
	}
	if !adv.IsActive {
		return moeda.Redemption{}, moeda.ErrAdvantageInactive
	}
	if adv.Exhausted() {
		return moeda.Redemption{}, moeda.ErrAdvantageExhausted
	}

	var st moeda.Student
	if err := tx.GetContext(ctx, &st, `SELECT id, name, email, coin_balance FROM students WHERE id = $1 FOR UPDATE`, r.StudentID); err != nil {
		return moeda.Redemption{}, translate(err)
	}
	if st.CoinBalance < adv.CoinCost {
		return moeda.Redemption{}, moeda.ErrInsufficientBalance
	}

	if _, err := tx.ExecContext(ctx, `UPDATE students SET coin_balance = coin_balance - $2 WHERE id = $1`, st.ID, adv.CoinCost); err != nil {
		return moeda.Redemption{}, translate(err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE advantages SET current_redemptions = current_redemptions + 1 WHERE id = $1`, adv.ID); err != nil {
		return moeda.Redemption{}, translate(err)
	}

	s.stamp(&r.ID, &r.CreatedAt)
	r.StudentName = st.Name
	r.StudentEmail = st.Email
	r.AdvantageTitle = adv.Title
	r.CompanyID = adv.CompanyID
	r.CoinCost = adv.CoinCost
	// The unique index on coupon_code surfaces as ErrCouponCollision.
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO redemptions (id, student_id, advantage_id, advantage_title, company_id, coin_cost, coupon_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.ID, r.StudentID, r.AdvantageID, r.AdvantageTitle, r.CompanyID, r.CoinCost, r.CouponCode, r.CreatedAt); err != nil {
		return moeda.Redemption{}, translate(err)
	}
	if err := tx.Commit(); err != nil {
		return moeda.Redemption{}, err
	}
	return r, nil
}

const selectTransaction = `
	SELECT t.id, t.professor_id, p.name AS professor_name, t.student_id, s.name AS student_name,
	       t.amount, t.reason, t.created_at
	FROM transactions t
	JOIN professors p ON p.id = t.professor_id
	JOIN students s ON s.id = t.student_id`

func (s *Store) ListTransactions(ctx context.Context, filter store.TransactionFilter) ([]moeda.Transaction, error) {
	var where clause
	if filter.ProfessorID != "" {
		where.add("t.professor_id = $%d", filter.ProfessorID)
	}
	if filter.StudentID != "" {
		where.add("t.student_id = $%d", filter.StudentID)
	}
	out := []moeda.Transaction{}
	err := s.db.SelectContext(ctx, &out, selectTransaction+where.String()+` ORDER BY t.created_at DESC`, where.args...)
	return out, translate(err)
}

const selectRedemption = `
	SELECT r.id, r.student_id, s.name AS student_name, s.email AS student_email,
	       r.advantage_id, r.advantage_title, r.company_id, r.coin_cost, r.coupon_code, r.created_at
	FROM redemptions r
	JOIN students s ON s.id = r.student_id`

func (s *Store) ListRedemptions(ctx context.Context, filter store.RedemptionFilter) ([]moeda.Redemption, error) {
	var where clause
	if filter.StudentID != "" {
		where.add("r.student_id = $%d", filter.StudentID)
	}
	if filter.CompanyID != "" {
		where.add("r.company_id = $%d", filter.CompanyID)
	}
	out := []moeda.Redemption{}
	err := s.db.SelectContext(ctx, &out, selectRedemption+where.String()+` ORDER BY r.created_at DESC`, where.args...)
	return out, translate(err)
}

func (s *Store) GetRedemptionByCoupon(ctx context.Context, code string) (moeda.Redemption, error) {
	var r moeda.Redemption
	err := s.db.GetContext(ctx, &r, selectRedemption+` WHERE r.coupon_code = $1`, code)
	return r, translate(err)
}

func (s *Store) CreditAllowance(ctx context.Context, amount int64, since, at time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE professors
		SET coin_balance = coin_balance + $1, last_coin_refresh = $2
		WHERE last_coin_refresh IS NULL OR last_coin_refresh < $3
	`, amount, at, since)
	if err != nil {
		return 0, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(rows), nil
}
