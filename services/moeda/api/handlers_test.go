package moedaapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AulusHZP/LabProjetoDeSoftware/internal/auth"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/domain/moeda"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/logging"
	"github.com/AulusHZP/LabProjetoDeSoftware/services/moeda/store/memory"
)

const testSeed = `
institutions:
  - id: inst-1
    name: PUC Minas
companies:
  - id: comp-1
    companyName: Café do Campus
    cnpj: "12345678000199"
    email: cafe@example.com
    password: senha123
  - id: comp-2
    companyName: Livraria
    cnpj: "98765432000110"
    email: livraria@example.com
    password: senha123
professors:
  - id: prof-1
    name: Carlos Lima
    email: lima@example.com
    cpf: "11122233344"
    department: Computação
    institutionId: inst-1
    password: senha123
    coinBalance: 100
  - id: prof-2
    name: Beatriz Rocha
    email: rocha@example.com
    cpf: "11122233355"
    department: Computação
    institutionId: inst-1
    password: senha123
students:
  - id: stud-1
    name: Ana Souza
    email: ana@example.com
    cpf: "55566677788"
    institutionId: inst-1
    course: Engenharia
    password: senha123
advantages:
  - id: adv-1
    companyId: comp-1
    title: Café grátis
    description: Um café por cupom
    coinCost: 30
    maxRedemptions: 1
  - id: adv-2
    companyId: comp-2
    title: Livro com desconto
    description: Vinte por cento
    coinCost: 500
    maxRedemptions: 10
`

type harness struct {
	t      *testing.T
	svc    *Service
	store  *memory.Store
	server *httptest.Server
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	seed, err := ParseSeed([]byte(testSeed))
	require.NoError(t, err)

	st := memory.New()
	svc, err := New(Config{
		Store:     st,
		Tokens:    auth.NewManager("test-secret", "moeda-test", time.Hour, auth.NewMemoryRevocations()),
		Logger:    logging.Discard(),
		RateLimit: 1000,
		RateBurst: 1000,
		Allowance: AllowanceConfig{Disabled: true},
		Seed:      seed,
	})
	require.NoError(t, err)
	require.NoError(t, svc.Start(context.Background()))

	server := httptest.NewServer(svc)
	t.Cleanup(func() {
		server.Close()
		_ = svc.Stop()
	})
	return &harness{t: t, svc: svc, store: st, server: server}
}

func (h *harness) do(method, path, token string, body any) (*http.Response, map[string]any) {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, h.server.URL+path, &buf)
	require.NoError(h.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(h.t, err)
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func (h *harness) login(path, email string) string {
	h.t.Helper()
	resp, body := h.do(http.MethodPost, path, "", map[string]string{"email": email, "password": "senha123"})
	require.Equal(h.t, http.StatusOK, resp.StatusCode, "login %s: %v", email, body)
	return body["token"].(string)
}

func (h *harness) balance(role moeda.Role, id string) int64 {
	h.t.Helper()
	ctx := context.Background()
	switch role {
	case moeda.RoleProfessor:
		p, err := h.store.GetProfessor(ctx, id)
		require.NoError(h.t, err)
		return p.CoinBalance
	default:
		s, err := h.store.GetStudent(ctx, id)
		require.NoError(h.t, err)
		return s.CoinBalance
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	h := newHarness(t)
	resp, body := h.do(http.MethodPost, "/api/students/login", "", map[string]string{"email": "ana@example.com", "password": "errada"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, moeda.ErrInvalidCredentials.Error(), body["error"])

	resp, _ = h.do(http.MethodPost, "/api/professors/login", "", map[string]string{"email": "ana@example.com", "password": "senha123"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "a student cannot sign in as professor")
}

func TestSendCoins(t *testing.T) {
	h := newHarness(t)
	token := h.login("/api/professors/login", "lima@example.com")

	resp, body := h.do(http.MethodPost, "/api/professor/send-coins", token, moeda.SendCoinsRequest{
		ProfessorID: "prof-1", StudentID: "stud-1", Amount: 40, Reason: "Participação",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	assert.Equal(t, "Ana Souza", body["studentName"])
	assert.Equal(t, int64(60), h.balance(moeda.RoleProfessor, "prof-1"))
	assert.Equal(t, int64(40), h.balance(moeda.RoleStudent, "stud-1"))
}

func TestSendCoinsRejections(t *testing.T) {
	h := newHarness(t)
	token := h.login("/api/professors/login", "lima@example.com")
	studentToken := h.login("/api/students/login", "ana@example.com")

	tests := []struct {
		name   string
		token  string
		req    moeda.SendCoinsRequest
		status int
		msg    string
	}{
		{"overdraft", token, moeda.SendCoinsRequest{ProfessorID: "prof-1", StudentID: "stud-1", Amount: 101, Reason: "x"}, http.StatusBadRequest, "saldo insuficiente"},
		{"zero amount", token, moeda.SendCoinsRequest{ProfessorID: "prof-1", StudentID: "stud-1", Amount: 0, Reason: "x"}, http.StatusBadRequest, "a quantidade deve ser maior que zero"},
		{"missing reason", token, moeda.SendCoinsRequest{ProfessorID: "prof-1", StudentID: "stud-1", Amount: 1}, http.StatusBadRequest, "informe o motivo do envio"},
		{"unknown student", token, moeda.SendCoinsRequest{ProfessorID: "prof-1", StudentID: "ghost", Amount: 1, Reason: "x"}, http.StatusNotFound, "registro não encontrado"},
		{"other professor", token, moeda.SendCoinsRequest{ProfessorID: "prof-2", StudentID: "stud-1", Amount: 1, Reason: "x"}, http.StatusForbidden, "acesso negado"},
		{"student caller", studentToken, moeda.SendCoinsRequest{ProfessorID: "prof-1", StudentID: "stud-1", Amount: 1, Reason: "x"}, http.StatusForbidden, ""},
		{"anonymous", "", moeda.SendCoinsRequest{ProfessorID: "prof-1", StudentID: "stud-1", Amount: 1, Reason: "x"}, http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := h.do(http.MethodPost, "/api/professor/send-coins", tt.token, tt.req)
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.msg != "" {
				assert.Equal(t, tt.msg, body["error"])
			}
		})
	}

	assert.Equal(t, int64(100), h.balance(moeda.RoleProfessor, "prof-1"))
	assert.Equal(t, int64(0), h.balance(moeda.RoleStudent, "stud-1"))
}

func TestRedeemIssuesCouponAndExhausts(t *testing.T) {
	h := newHarness(t)
	profToken := h.login("/api/professors/login", "lima@example.com")
	resp, _ := h.do(http.MethodPost, "/api/professor/send-coins", profToken, moeda.SendCoinsRequest{
		ProfessorID: "prof-1", StudentID: "stud-1", Amount: 100, Reason: "Projeto",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	token := h.login("/api/students/login", "ana@example.com")
	resp, body := h.do(http.MethodPost, "/api/advantages/redeem", token, moeda.RedeemRequest{AdvantageID: "adv-1", StudentID: "stud-1"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	code, _ := body["couponCode"].(string)
	assert.Regexp(t, regexp.MustCompile(`^[A-Z0-9]{12}$`), code)
	assert.Equal(t, int64(70), h.balance(moeda.RoleStudent, "stud-1"))

	adv, err := h.store.GetAdvantage(context.Background(), "adv-1")
	require.NoError(t, err)
	assert.Equal(t, 1, adv.CurrentRedemptions)

	resp, body = h.do(http.MethodPost, "/api/advantages/redeem", token, moeda.RedeemRequest{AdvantageID: "adv-1", StudentID: "stud-1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "vantagem esgotada", body["error"])
	assert.Equal(t, int64(70), h.balance(moeda.RoleStudent, "stud-1"))

	resp, body = h.do(http.MethodPost, "/api/advantages/redeem", token, moeda.RedeemRequest{AdvantageID: "adv-2", StudentID: "stud-1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "saldo insuficiente", body["error"])

	// The issuing company can look the coupon up; the other company cannot.
	resp, _ = h.do(http.MethodGet, "/api/advantages/redemptions/coupon/"+code, h.login("/api/company/login", "cafe@example.com"), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = h.do(http.MethodGet, "/api/advantages/redemptions/coupon/"+code, h.login("/api/company/login", "livraria@example.com"), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRedeemRetriesCouponCollision(t *testing.T) {
	h := newHarness(t)
	_, err := h.store.Transfer(context.Background(), moeda.Transaction{ProfessorID: "prof-1", StudentID: "stud-1", Amount: 100, Reason: "x"})
	require.NoError(t, err)
	_, err = h.store.CreateAdvantage(context.Background(), moeda.Advantage{ID: "adv-3", CompanyID: "comp-1", Title: "Chá", CoinCost: 10, MaxRedemptions: 5, IsActive: true})
	require.NoError(t, err)
	_, err = h.store.Redeem(context.Background(), moeda.Redemption{StudentID: "stud-1", AdvantageID: "adv-3", CouponCode: "TAKENTAKEN12"})
	require.NoError(t, err)

	codes := []string{"TAKENTAKEN12", "TAKENTAKEN12", "FRESHFRESH12"}
	calls := 0
	h.svc.coupons = func() (string, error) {
		code := codes[calls]
		calls++
		return code, nil
	}

	red, err := h.svc.Redeem(context.Background(), moeda.RedeemRequest{AdvantageID: "adv-3", StudentID: "stud-1"})
	require.NoError(t, err)
	assert.Equal(t, "FRESHFRESH12", red.CouponCode)
	assert.Equal(t, 3, calls)
	assert.Equal(t, int64(80), h.balance(moeda.RoleStudent, "stud-1"))
}

func TestStudentHistoryOwnership(t *testing.T) {
	h := newHarness(t)
	student := h.login("/api/students/login", "ana@example.com")
	prof := h.login("/api/professors/login", "lima@example.com")
	company := h.login("/api/company/login", "cafe@example.com")

	resp, _ := h.do(http.MethodGet, "/api/students/stud-1/transactions", student, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = h.do(http.MethodGet, "/api/students/stud-1/transactions", prof, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = h.do(http.MethodGet, "/api/students/stud-1/transactions", company, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = h.do(http.MethodGet, "/api/students/stud-1/redemptions", prof, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = h.do(http.MethodGet, "/api/professor/transactions?professorId=prof-2", prof, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestLedgerRowsAreImmutable(t *testing.T) {
	h := newHarness(t)
	for _, path := range []string{"/api/transactions/tx-1", "/api/redemptions/r-1"} {
		for _, method := range []string{http.MethodPut, http.MethodDelete} {
			resp, _ := h.do(method, path, "", nil)
			assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode, "%s %s", method, path)
		}
	}
}

func TestRegistration(t *testing.T) {
	h := newHarness(t)

	resp, body := h.do(http.MethodPost, "/api/students/register", "", map[string]string{
		"name": "Joana", "email": "not-an-email", "password": "segredo", "cpf": "12345678901",
		"institutionId": "inst-1", "course": "Direito",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "must be a valid email", body["email"])

	valid := map[string]string{
		"name": "Joana", "email": "joana@example.com", "password": "segredo", "cpf": "12345678901",
		"institutionId": "inst-1", "course": "Direito",
	}
	resp, body = h.do(http.MethodPost, "/api/students/register", "", valid)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	assert.Equal(t, float64(0), body["coinBalance"])
	assert.NotContains(t, body, "passwordHash")

	valid["cpf"] = "10987654321"
	resp, body = h.do(http.MethodPost, "/api/students/register", "", valid)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "email já cadastrado", body["error"])

	resp, body = h.do(http.MethodPost, "/api/professors/register", "", map[string]string{
		"name": "Paulo Reis", "email": "paulo@example.com", "password": "segredo", "cpf": "22233344455",
		"department": "Matemática", "institutionId": "inst-1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	assert.Equal(t, float64(DefaultInitialCoins), body["coinBalance"])
}

func TestLogoutRevokesToken(t *testing.T) {
	h := newHarness(t)
	token := h.login("/api/students/login", "ana@example.com")

	resp, _ := h.do(http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body := h.do(http.MethodGet, "/api/students/stud-1", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Token has been revoked", body["error"])
}

func TestAdvantageManagement(t *testing.T) {
	h := newHarness(t)
	owner := h.login("/api/company/login", "cafe@example.com")
	other := h.login("/api/company/login", "livraria@example.com")

	resp, body := h.do(http.MethodPost, "/api/advantages/company/comp-1", owner, map[string]any{"title": "Bolo"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "this field is required", body["coinCost"])

	resp, body = h.do(http.MethodPost, "/api/advantages/company/comp-1", owner, map[string]any{
		"title": "Bolo de cenoura", "description": "Uma fatia", "coinCost": 20, "maxRedemptions": 3,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	id := body["id"].(string)
	assert.Equal(t, true, body["isActive"])

	resp, _ = h.do(http.MethodPost, "/api/advantages/company/comp-1", other, map[string]any{
		"title": "Intruso", "description": "Não deveria", "coinCost": 1, "maxRedemptions": 1,
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = h.do(http.MethodPut, "/api/advantages/"+id, other, map[string]any{"coinCost": 1})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = h.do(http.MethodPut, "/api/advantages/"+id, owner, map[string]any{"coinCost": 25, "isActive": false})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, float64(25), body["coinCost"])
	assert.Equal(t, "Bolo de cenoura", body["title"])

	// Inactive advantages disappear from the public catalogue.
	var list []moeda.Advantage
	getJSON(t, h.server.URL+"/api/advantages", &list)
	for _, a := range list {
		assert.NotEqual(t, id, a.ID)
	}

	getJSON(t, h.server.URL+"/api/advantages/affordable/100", &list)
	require.Len(t, list, 1)
	assert.Equal(t, "adv-1", list[0].ID)

	resp, _ = h.do(http.MethodDelete, "/api/advantages/"+id, owner, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = h.do(http.MethodGet, "/api/advantages/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdvantageCapAndIssuedCoupons(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.store.Transfer(ctx, moeda.Transaction{ProfessorID: "prof-1", StudentID: "stud-1", Amount: 100, Reason: "x"})
	require.NoError(t, err)
	_, err = h.store.CreateAdvantage(ctx, moeda.Advantage{ID: "adv-3", CompanyID: "comp-1", Title: "Chá", Description: "Um chá", CoinCost: 10, MaxRedemptions: 3, IsActive: true})
	require.NoError(t, err)
	for _, code := range []string{"CHACHACHA001", "CHACHACHA002"} {
		_, err = h.store.Redeem(ctx, moeda.Redemption{StudentID: "stud-1", AdvantageID: "adv-3", CouponCode: code})
		require.NoError(t, err)
	}

	owner := h.login("/api/company/login", "cafe@example.com")
	resp, body := h.do(http.MethodPut, "/api/advantages/adv-3", owner, map[string]any{"maxRedemptions": 1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "cannot be lower than the redemptions already made", body["maxRedemptions"])
	adv, err := h.store.GetAdvantage(ctx, "adv-3")
	require.NoError(t, err)
	assert.Equal(t, 3, adv.MaxRedemptions)

	resp, _ = h.do(http.MethodDelete, "/api/advantages/adv-3", owner, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// Coupons issued before the deletion stay with the company.
	resp, body = h.do(http.MethodGet, "/api/advantages/redemptions/coupon/CHACHACHA001", owner, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "comp-1", body["companyId"])

	var list []moeda.Redemption
	req, err := http.NewRequest(http.MethodGet, h.server.URL+"/api/advantages/redemptions/company/comp-1", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+owner)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	require.NoError(t, json.NewDecoder(res.Body).Decode(&list))
	assert.Len(t, list, 2)
}

func TestInstitutionLookup(t *testing.T) {
	h := newHarness(t)

	resp, body := h.do(http.MethodGet, "/api/institutions/inst-1", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "PUC Minas", body["name"])

	resp, _ = h.do(http.MethodGet, "/api/institutions/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStudentProfileUpdate(t *testing.T) {
	h := newHarness(t)
	token := h.login("/api/students/login", "ana@example.com")
	profToken := h.login("/api/professors/login", "lima@example.com")

	resp, _ := h.do(http.MethodPut, "/api/students/stud-1", profToken, map[string]string{"name": "Outra Pessoa"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := h.do(http.MethodPut, "/api/students/stud-1", token, map[string]string{"email": "sem-arroba"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "must be a valid email", body["email"])

	resp, body = h.do(http.MethodPut, "/api/students/stud-1", token, map[string]string{"email": "LIMA@example.com"})
	assert.Equal(t, http.StatusOK, resp.StatusCode, "professor emails do not collide with students: %v", body)

	resp, _ = h.do(http.MethodPost, "/api/students/register", "", map[string]string{
		"name": "Joana", "email": "joana@example.com", "password": "segredo", "cpf": "12345678901",
		"institutionId": "inst-1", "course": "Direito",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, body = h.do(http.MethodPut, "/api/students/stud-1", token, map[string]string{"email": "joana@example.com"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "email já cadastrado", body["error"])

	resp, body = h.do(http.MethodPut, "/api/students/stud-1", token, map[string]string{
		"name": "Ana Clara Souza", "email": "ana@example.com", "course": "Direito", "password": "novasenha",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "Ana Clara Souza", body["name"])
	assert.Equal(t, "Direito", body["course"])
	assert.Equal(t, "55566677788", body["cpf"])
	assert.NotContains(t, body, "passwordHash")

	resp, _ = h.do(http.MethodPost, "/api/students/login", "", map[string]string{"email": "ana@example.com", "password": "senha123"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp, _ = h.do(http.MethodPost, "/api/students/login", "", map[string]string{"email": "ana@example.com", "password": "novasenha"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAccountDeletion(t *testing.T) {
	h := newHarness(t)
	lima := h.login("/api/professors/login", "lima@example.com")
	rocha := h.login("/api/professors/login", "rocha@example.com")
	ana := h.login("/api/students/login", "ana@example.com")

	resp, _ := h.do(http.MethodDelete, "/api/professors/prof-2", lima, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = h.do(http.MethodDelete, "/api/professors/prof-2", rocha, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	_, err := h.store.GetProfessor(context.Background(), "prof-2")
	assert.ErrorIs(t, err, moeda.ErrNotFound)
	resp, _ = h.do(http.MethodGet, "/api/professors", rocha, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "the token dies with the account")

	resp, body := h.do(http.MethodPost, "/api/professor/send-coins", lima, moeda.SendCoinsRequest{
		ProfessorID: "prof-1", StudentID: "stud-1", Amount: 10, Reason: "Monitoria",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)

	resp, body = h.do(http.MethodDelete, "/api/students/stud-1", ana, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, moeda.ErrAccountHasHistory.Error(), body["error"])
	resp, _ = h.do(http.MethodDelete, "/api/professors/prof-1", lima, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, int64(10), h.balance(moeda.RoleStudent, "stud-1"))
}

func TestHealthAndMetrics(t *testing.T) {
	h := newHarness(t)
	resp, body := h.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])

	resp, err := http.Get(h.server.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSeedIsAppliedOnce(t *testing.T) {
	h := newHarness(t)
	seed, err := ParseSeed([]byte(testSeed))
	require.NoError(t, err)
	applied, err := seed.Apply(context.Background(), h.store, DefaultInitialCoins)
	require.NoError(t, err)
	assert.False(t, applied)

	builtin, err := LoadSeed("")
	require.NoError(t, err)
	assert.NotEmpty(t, builtin.Advantages)
}

func getJSON(t *testing.T, url string, out any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}
