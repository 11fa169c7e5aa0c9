// Package client provides typed accessors for the MoedaEstudantil REST API.
// Each method is one call; none of them mutate local state.
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/AulusHZP/LabProjetoDeSoftware/internal/domain/moeda"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/httputil"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/logging"
)

// Client is a MoedaEstudantil API client.
type Client struct {
	http *httputil.Client
}

// Config configures the client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Tokens  httputil.TokenSource
	Logger  *logging.Logger
}

// New creates a new MoedaEstudantil client.
func New(cfg Config) *Client {
	return &Client{
		http: httputil.New(httputil.Config{
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
			Tokens:  cfg.Tokens,
			Logger:  cfg.Logger,
		}),
	}
}

func esc(s string) string { return url.PathEscape(s) }

// =============================================================================
// Authentication
// =============================================================================

// StudentLogin authenticates a student.
func (c *Client) StudentLogin(ctx context.Context, email, password string) (*moeda.LoginResponse, error) {
	return c.login(ctx, "/students/login", email, password)
}

// ProfessorLogin authenticates a professor.
func (c *Client) ProfessorLogin(ctx context.Context, email, password string) (*moeda.LoginResponse, error) {
	return c.login(ctx, "/professors/login", email, password)
}

// CompanyLogin authenticates a partner company.
func (c *Client) CompanyLogin(ctx context.Context, email, password string) (*moeda.LoginResponse, error) {
	return c.login(ctx, "/company/login", email, password)
}

// Login dispatches to the role-specific login route.
func (c *Client) Login(ctx context.Context, role moeda.Role, email, password string) (*moeda.LoginResponse, error) {
	switch role {
	case moeda.RoleStudent:
		return c.StudentLogin(ctx, email, password)
	case moeda.RoleProfessor:
		return c.ProfessorLogin(ctx, email, password)
	case moeda.RoleCompany:
		return c.CompanyLogin(ctx, email, password)
	}
	return nil, fmt.Errorf("login for role %q: %w", role, moeda.ErrNotImplemented)
}

func (c *Client) login(ctx context.Context, path, email, password string) (*moeda.LoginResponse, error) {
	var resp moeda.LoginResponse
	if err := c.http.Post(ctx, path, moeda.LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout revokes the current bearer token.
func (c *Client) Logout(ctx context.Context) error {
	return c.http.Post(ctx, "/auth/logout", nil, nil)
}

// StudentRegister creates a student account.
func (c *Client) StudentRegister(ctx context.Context, req moeda.StudentRegistration) (*moeda.Student, error) {
	var out moeda.Student
	if err := c.http.Post(ctx, "/students/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ProfessorRegister creates a professor account.
func (c *Client) ProfessorRegister(ctx context.Context, req moeda.ProfessorRegistration) (*moeda.Professor, error) {
	var out moeda.Professor
	if err := c.http.Post(ctx, "/professors/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CompanyRegister creates a partner company account.
func (c *Client) CompanyRegister(ctx context.Context, req moeda.CompanyRegistration) (*moeda.Company, error) {
	var out moeda.Company
	if err := c.http.Post(ctx, "/company/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// =============================================================================
// Institutions and principals
// =============================================================================

// ListInstitutions returns every institution.
func (c *Client) ListInstitutions(ctx context.Context) ([]moeda.Institution, error) {
	var out []moeda.Institution
	if err := c.http.Get(ctx, "/institutions", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetInstitution fetches one institution.
func (c *Client) GetInstitution(ctx context.Context, id string) (*moeda.Institution, error) {
	var out moeda.Institution
	if err := c.http.Get(ctx, "/institutions/"+esc(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetStudent fetches one student.
func (c *Client) GetStudent(ctx context.Context, id string) (*moeda.Student, error) {
	var out moeda.Student
	if err := c.http.Get(ctx, "/students/"+esc(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateStudent edits the signed-in student's own profile.
func (c *Client) UpdateStudent(ctx context.Context, id string, in moeda.StudentUpdate) (*moeda.Student, error) {
	var out moeda.Student
	if err := c.http.Put(ctx, "/students/"+esc(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteStudent removes the signed-in student's account. The server revokes
// the token used.
func (c *Client) DeleteStudent(ctx context.Context, id string) error {
	return c.http.DoJSON(ctx, http.MethodDelete, "/students/"+esc(id), nil, nil)
}

// ListStudentsByInstitution lists the students a professor can reward.
func (c *Client) ListStudentsByInstitution(ctx context.Context, institutionID string) ([]moeda.Student, error) {
	var out []moeda.Student
	if err := c.http.Get(ctx, "/professor/students/"+esc(institutionID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchStudents filters an institution's students by name.
func (c *Client) SearchStudents(ctx context.Context, institutionID, name string) ([]moeda.Student, error) {
	q := url.Values{}
	q.Set("institutionId", institutionID)
	q.Set("name", name)
	var out []moeda.Student
	if err := c.http.Get(ctx, "/professor/students/search?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetProfessor fetches one professor.
func (c *Client) GetProfessor(ctx context.Context, id string) (*moeda.Professor, error) {
	var out moeda.Professor
	if err := c.http.Get(ctx, "/professors/"+esc(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProfessor removes the signed-in professor's account.
func (c *Client) DeleteProfessor(ctx context.Context, id string) error {
	return c.http.DoJSON(ctx, http.MethodDelete, "/professors/"+esc(id), nil, nil)
}

// ListProfessors returns every professor.
func (c *Client) ListProfessors(ctx context.Context) ([]moeda.Professor, error) {
	var out []moeda.Professor
	if err := c.http.Get(ctx, "/professors", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetCompany fetches one partner company.
func (c *Client) GetCompany(ctx context.Context, id string) (*moeda.Company, error) {
	var out moeda.Company
	if err := c.http.Get(ctx, "/company/"+esc(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// =============================================================================
// Ledger
// =============================================================================

// SendCoins performs the authoritative professor-to-student transfer.
func (c *Client) SendCoins(ctx context.Context, req moeda.SendCoinsRequest) (*moeda.Transaction, error) {
	var out wireTransaction
	if err := c.http.Post(ctx, "/professor/send-coins", req, &out); err != nil {
		return nil, err
	}
	tx := out.normalize()
	return &tx, nil
}

// ProfessorTransactions lists transfers sent by a professor, newest first.
func (c *Client) ProfessorTransactions(ctx context.Context, professorID string) ([]moeda.Transaction, error) {
	return c.transactions(ctx, "/professor/transactions?professorId="+url.QueryEscape(professorID))
}

// StudentTransactions lists transfers received by a student, newest first.
func (c *Client) StudentTransactions(ctx context.Context, studentID string) ([]moeda.Transaction, error) {
	return c.transactions(ctx, "/students/"+esc(studentID)+"/transactions")
}

func (c *Client) transactions(ctx context.Context, path string) ([]moeda.Transaction, error) {
	var rows []wireTransaction
	if err := c.http.Get(ctx, path, &rows); err != nil {
		return nil, err
	}
	out := make([]moeda.Transaction, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.normalize())
	}
	return out, nil
}

// StudentRedemptions lists a student's redemptions, newest first.
func (c *Client) StudentRedemptions(ctx context.Context, studentID string) ([]moeda.Redemption, error) {
	var out []moeda.Redemption
	if err := c.http.Get(ctx, "/students/"+esc(studentID)+"/redemptions", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Redeem performs the authoritative advantage redemption and returns the coupon.
func (c *Client) Redeem(ctx context.Context, req moeda.RedeemRequest) (*moeda.Redemption, error) {
	var out moeda.Redemption
	if err := c.http.Post(ctx, "/advantages/redeem", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetRedemptionByCoupon looks up a redemption by coupon code.
func (c *Client) GetRedemptionByCoupon(ctx context.Context, code string) (*moeda.Redemption, error) {
	var out moeda.Redemption
	if err := c.http.Get(ctx, "/advantages/redemptions/coupon/"+esc(code), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CompanyRedemptions lists every redemption of a company's advantages.
func (c *Client) CompanyRedemptions(ctx context.Context, companyID string) ([]moeda.Redemption, error) {
	var out []moeda.Redemption
	if err := c.http.Get(ctx, "/advantages/redemptions/company/"+esc(companyID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// =============================================================================
// Advantages
// =============================================================================

// ListAvailableAdvantages lists active advantages that still have redemptions left.
func (c *Client) ListAvailableAdvantages(ctx context.Context) ([]moeda.Advantage, error) {
	var out []moeda.Advantage
	if err := c.http.Get(ctx, "/advantages", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAffordableAdvantages lists available advantages costing at most maxCost.
func (c *Client) ListAffordableAdvantages(ctx context.Context, maxCost int64) ([]moeda.Advantage, error) {
	var out []moeda.Advantage
	if err := c.http.Get(ctx, "/advantages/affordable/"+strconv.FormatInt(maxCost, 10), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetAdvantage fetches one advantage.
func (c *Client) GetAdvantage(ctx context.Context, id string) (*moeda.Advantage, error) {
	var out moeda.Advantage
	if err := c.http.Get(ctx, "/advantages/"+esc(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CompanyAdvantages lists every advantage a company offers, active or not.
func (c *Client) CompanyAdvantages(ctx context.Context, companyID string) ([]moeda.Advantage, error) {
	var out []moeda.Advantage
	if err := c.http.Get(ctx, "/advantages/company/"+esc(companyID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAdvantage publishes a new advantage for a company.
func (c *Client) CreateAdvantage(ctx context.Context, companyID string, in moeda.AdvantageInput) (*moeda.Advantage, error) {
	var out moeda.Advantage
	if err := c.http.Post(ctx, "/advantages/company/"+esc(companyID), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateAdvantage applies a partial update.
func (c *Client) UpdateAdvantage(ctx context.Context, id string, in moeda.AdvantageInput) (*moeda.Advantage, error) {
	var out moeda.Advantage
	if err := c.http.Put(ctx, "/advantages/"+esc(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteAdvantage removes an advantage.
func (c *Client) DeleteAdvantage(ctx context.Context, id string) error {
	return c.http.DoJSON(ctx, http.MethodDelete, "/advantages/"+esc(id), nil, nil)
}

// wireTransaction accepts both createdAt and created_at spellings.
type wireTransaction struct {
	moeda.Transaction
	CreatedAtSnake time.Time `json:"created_at"`
}

func (w wireTransaction) normalize() moeda.Transaction {
	tx := w.Transaction
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = w.CreatedAtSnake
	}
	return tx
}
