package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AulusHZP/LabProjetoDeSoftware/internal/auth"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/cli"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/config"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/domain/aluguel"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/domain/moeda"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/logging"
	aluguelapi "github.com/AulusHZP/LabProjetoDeSoftware/services/aluguel/api"
	moedaapi "github.com/AulusHZP/LabProjetoDeSoftware/services/moeda/api"
	"github.com/AulusHZP/LabProjetoDeSoftware/services/moeda/store/memory"
)

const seedYAML = `
institutions:
  - id: inst-1
    name: PUC Minas
companies:
  - id: comp-1
    companyName: Café do Campus
    cnpj: "12345678000199"
    email: cafe@example.com
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
`

type harness struct {
	t   *testing.T
	cfg config.CLI
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()

	seed, err := moedaapi.ParseSeed([]byte(seedYAML))
	require.NoError(t, err)
	moedaSvc, err := moedaapi.New(moedaapi.Config{
		Store:     memory.New(),
		Tokens:    auth.NewManager("labctl-secret", "moeda-labctl", time.Hour, auth.NewMemoryRevocations()),
		Logger:    logging.Discard(),
		RateLimit: 1000,
		RateBurst: 1000,
		Allowance: moedaapi.AllowanceConfig{Disabled: true},
		Seed:      seed,
	})
	require.NoError(t, err)
	require.NoError(t, moedaSvc.Start(ctx))
	moedaSrv := httptest.NewServer(moedaSvc)

	rentalSvc := aluguelapi.New(aluguelapi.Config{Logger: logging.Discard()})
	require.NoError(t, rentalSvc.Start(ctx))
	rentalSrv := httptest.NewServer(rentalSvc)

	t.Cleanup(func() {
		moedaSrv.Close()
		rentalSrv.Close()
		_ = moedaSvc.Stop()
		_ = rentalSvc.Stop()
	})

	return &harness{t: t, cfg: config.CLI{
		MoedaURL:    moedaSrv.URL + "/api",
		AluguelURL:  rentalSrv.URL + "/api",
		Timeout:     5 * time.Second,
		SessionFile: filepath.Join(t.TempDir(), "session.json"),
	}}
}

// run executes one labctl invocation. Invocations share only the session
// file, like separate processes would.
func (h *harness) run(args ...string) (string, int) {
	var buf bytes.Buffer
	a := &app{cfg: h.cfg, log: logging.Discard(), out: cli.NewPrinter(&buf)}
	code := run(context.Background(), a, args)
	return buf.String(), code
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, code := h.run(args...)
	require.Equal(h.t, 0, code, out)
	return out
}

func (h *harness) decode(v interface{}, args ...string) {
	h.t.Helper()
	out := h.mustRun(append([]string{"--json"}, args...)...)
	require.NoError(h.t, json.Unmarshal([]byte(out), v), out)
}

func TestSendCoinsFromTheTerminal(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("login", "lima@example.com", "--role", "professor", "-p", "senha123")
	assert.Contains(t, out, "signed in as Carlos Lima (professor)")
	assert.Contains(t, out, "balance: 100 moedas")

	out = h.mustRun("send-coins", "stud-1", "40", "-m", "Seminário")
	assert.Contains(t, out, "sent 40 moedas to Ana Souza")
	assert.Contains(t, out, "your balance: 60 moedas")

	var me struct {
		CoinBalance int64 `json:"coinBalance"`
	}
	h.decode(&me, "whoami", "--offline")
	assert.Equal(t, int64(60), me.CoinBalance, "session keeps the reconciled balance")

	var txs []moeda.Transaction
	h.decode(&txs, "history")
	require.Len(t, txs, 1)
	assert.Equal(t, int64(40), txs[0].Amount)
	assert.Equal(t, "Seminário", txs[0].Reason)
}

func TestSendCoinsShowsServerMessage(t *testing.T) {
	h := newHarness(t)
	h.mustRun("login", "lima@example.com", "--role", "professor", "-p", "senha123")

	out, code := h.run("send-coins", "stud-1", "500", "-m", "Demais")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "✗ saldo insuficiente (HTTP 400)")

	out, code = h.run("send-coins", "stud-1", "0", "-m", "Nada")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, moeda.ErrInvalidAmount.Error())
	assert.NotContains(t, out, "HTTP", "non-positive amounts never reach the server")
}

func TestRedeemIssuesCouponOnce(t *testing.T) {
	h := newHarness(t)
	h.mustRun("login", "lima@example.com", "--role", "professor", "-p", "senha123")
	h.mustRun("send-coins", "stud-1", "50", "-m", "Projeto")

	out, code := h.run("redeem", "adv-1")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, errWrongRole.Error())

	h.mustRun("logout")
	h.mustRun("login", "ana@example.com", "-p", "senha123")

	out = h.mustRun("redeem", "adv-1")
	assert.Contains(t, out, "redeemed Café grátis for 30 moedas")
	assert.Regexp(t, regexp.MustCompile(`coupon: [A-Z0-9]{12}`), out)
	assert.Contains(t, out, "your balance: 20 moedas")

	out, code = h.run("redeem", "adv-1")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, moeda.ErrAdvantageExhausted.Error())

	var hist struct {
		Transactions []moeda.Transaction `json:"transactions"`
		Redemptions  []moeda.Redemption  `json:"redemptions"`
	}
	h.decode(&hist, "history")
	assert.Len(t, hist.Transactions, 1)
	require.Len(t, hist.Redemptions, 1)

	var red moeda.Redemption
	h.decode(&red, "coupon", hist.Redemptions[0].CouponCode)
	assert.Equal(t, "adv-1", red.AdvantageID)
}

func TestSessionRequiredAndLogout(t *testing.T) {
	h := newHarness(t)

	out, code := h.run("whoami")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "usuário não autenticado")

	out, code = h.run("login", "lima@example.com", "--role", "professor", "-p", "errada")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "HTTP 401")

	h.mustRun("login", "cafe@example.com", "--role", "company", "-p", "senha123")
	out = h.mustRun("whoami")
	assert.Contains(t, out, "Café do Campus")

	assert.Contains(t, h.mustRun("logout"), "signed out")
	_, code = h.run("whoami")
	assert.Equal(t, 1, code)
}

func TestCompanyManagesAdvantages(t *testing.T) {
	h := newHarness(t)
	h.mustRun("login", "cafe@example.com", "--role", "company", "-p", "senha123")

	var adv moeda.Advantage
	h.decode(&adv, "advantage", "create", "--title", "Bolo de cenoura", "--description", "Uma fatia por cupom", "--cost", "15", "--max", "5")
	assert.Equal(t, int64(15), adv.CoinCost)
	assert.True(t, adv.IsActive)

	h.decode(&adv, "advantage", "update", adv.ID, "--active=false")
	assert.False(t, adv.IsActive)
	assert.Equal(t, "Bolo de cenoura", adv.Title, "unset flags leave fields alone")

	var available []moeda.Advantage
	h.decode(&available, "advantages")
	for _, a := range available {
		assert.NotEqual(t, adv.ID, a.ID, "inactive advantages are not listed")
	}

	out := h.mustRun("advantage", "rm", adv.ID)
	assert.Contains(t, out, "deleted")
}

func TestRentalOrderLifecycle(t *testing.T) {
	h := newHarness(t)

	var agent aluguel.User
	h.decode(&agent, "aluguel", "register", "--nome", "Agente Um", "--email", "agente@example.com", "--senha", "senha123", "--tipo", "AGENTE")
	h.mustRun("login", "agente@example.com", "--role", "aluguel", "-p", "senha123")

	var customer aluguel.Customer
	h.decode(&customer, "aluguel", "customers", "add",
		"--nome", "João Silva", "--email", "joao@example.com", "--rg", "MG123", "--cpf", "12345678901")

	var car aluguel.Vehicle
	h.decode(&car, "aluguel", "vehicles", "add",
		"--matricula", "M1", "--ano", "2022", "--marca", "Toyota", "--modelo", "Corolla", "--placa", "ABC1D23")

	var order aluguel.Order
	h.decode(&order, "aluguel", "orders", "create",
		"--cliente", customer.ID, "--automovel", car.ID, "--inicio", "2030-01-10", "--fim", "2030-01-15")
	assert.Equal(t, aluguel.StatusPendente, order.Status)

	out, code := h.run("aluguel", "orders", "create",
		"--cliente", customer.ID, "--automovel", car.ID, "--inicio", "2030-01-12", "--fim", "2030-01-20")
	assert.Equal(t, 1, code, "overlapping order")
	assert.Contains(t, out, "HTTP 409")

	out = h.mustRun("aluguel", "orders", "aprovar", order.ID)
	assert.Contains(t, out, "is now APROVADO")

	var approved []aluguel.Order
	h.decode(&approved, "aluguel", "orders", "--status", "APROVADO")
	require.Len(t, approved, 1)
	assert.Equal(t, agent.ID, approved[0].AgenteID, "agent defaults to the signed-in user")

	out, code = h.run("aluguel", "orders", "create", "--cliente", customer.ID, "--automovel", car.ID, "--inicio", "amanhã", "--fim", "2030-01-20")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "want YYYY-MM-DD")
}

func TestProfileUpdateRewritesSession(t *testing.T) {
	h := newHarness(t)
	h.mustRun("login", "ana@example.com", "-p", "senha123")

	out, code := h.run("profile", "update")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, errNothingToUpdate.Error())

	out = h.mustRun("profile", "update", "--name", "Ana Clara Souza", "--email", "anaclara@example.com", "--password", "novasenha")
	assert.Contains(t, out, "profile updated: Ana Clara Souza <anaclara@example.com>")

	var me struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	h.decode(&me, "whoami", "--offline")
	assert.Equal(t, "Ana Clara Souza", me.Name, "the cached profile follows the server")
	assert.Equal(t, "anaclara@example.com", me.Email)
	assert.Equal(t, "student", me.Role)

	h.mustRun("logout")
	_, code = h.run("login", "ana@example.com", "-p", "senha123")
	assert.Equal(t, 1, code)
	h.mustRun("login", "anaclara@example.com", "-p", "novasenha")

	h.mustRun("logout")
	h.mustRun("login", "lima@example.com", "--role", "professor", "-p", "senha123")
	out, code = h.run("profile", "update", "--name", "Outro")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, errWrongRole.Error())
}

func TestProfileUpdateRentalUser(t *testing.T) {
	h := newHarness(t)
	h.mustRun("aluguel", "register", "--nome", "Cliente Um", "--email", "cliente@example.com", "--senha", "senha123", "--tipo", "CLIENTE")
	h.mustRun("login", "cliente@example.com", "--role", "aluguel", "-p", "senha123")

	out, code := h.run("profile", "update", "--course", "Direito")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, errWrongRole.Error())

	var p struct {
		Name string `json:"name"`
		Role string `json:"role"`
	}
	h.decode(&p, "profile", "update", "--name", "Cliente Renomeado")
	assert.Equal(t, "Cliente Renomeado", p.Name)
	assert.Equal(t, string(aluguel.UserCliente), p.Role)

	h.decode(&p, "whoami", "--offline")
	assert.Equal(t, "Cliente Renomeado", p.Name)
}

func TestProfileDelete(t *testing.T) {
	h := newHarness(t)
	h.mustRun("login", "ana@example.com", "-p", "senha123")

	out, code := h.run("profile", "delete")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "--yes")

	out = h.mustRun("profile", "delete", "--yes")
	assert.Contains(t, out, "account stud-1 deleted")

	_, code = h.run("whoami", "--offline")
	assert.Equal(t, 1, code, "deleting the account signs out")
	out, code = h.run("login", "ana@example.com", "-p", "senha123")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "HTTP 401")
}
