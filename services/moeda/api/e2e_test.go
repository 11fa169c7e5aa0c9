package moedaapi_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AulusHZP/LabProjetoDeSoftware/internal/auth"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/domain/moeda"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/httputil"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/ledger"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/logging"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/session"
	moedaapi "github.com/AulusHZP/LabProjetoDeSoftware/services/moeda/api"
	"github.com/AulusHZP/LabProjetoDeSoftware/services/moeda/client"
	"github.com/AulusHZP/LabProjetoDeSoftware/services/moeda/store/memory"
)

const e2eSeed = `
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

// backend runs the API over an in-memory store and counts requests.
type backend struct {
	url      string
	requests atomic.Int64
}

func startBackend(t *testing.T) *backend {
	t.Helper()
	seed, err := moedaapi.ParseSeed([]byte(e2eSeed))
	require.NoError(t, err)

	svc, err := moedaapi.New(moedaapi.Config{
		Store:     memory.New(),
		Tokens:    auth.NewManager("e2e-secret", "moeda-e2e", time.Hour, auth.NewMemoryRevocations()),
		Logger:    logging.Discard(),
		RateLimit: 1000,
		RateBurst: 1000,
		Allowance: moedaapi.AllowanceConfig{Disabled: true},
		Seed:      seed,
	})
	require.NoError(t, err)
	require.NoError(t, svc.Start(context.Background()))

	b := &backend{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.requests.Add(1)
		svc.ServeHTTP(w, r)
	}))
	t.Cleanup(func() {
		server.Close()
		_ = svc.Stop()
	})
	b.url = server.URL + "/api"
	return b
}

// actor is one signed-in user with their own session, API client and ledger.
type actor struct {
	sess   *session.Session
	store  *session.MemoryStore
	api    *client.Client
	ledger *ledger.Client

	mu     sync.Mutex
	states []ledger.State
}

func signIn(t *testing.T, b *backend, role moeda.Role, email string) *actor {
	t.Helper()
	a := &actor{store: &session.MemoryStore{}}
	a.sess = session.Open(a.store, logging.Discard())
	a.api = client.New(client.Config{BaseURL: b.url, Timeout: 5 * time.Second, Tokens: a.sess, Logger: logging.Discard()})
	a.ledger = ledger.New(ledger.Config{
		API:    a.api,
		Sink:   a.sess,
		Logger: logging.Discard(),
		Observer: func(_ ledger.Op, s ledger.State) {
			a.mu.Lock()
			a.states = append(a.states, s)
			a.mu.Unlock()
		},
	})
	t.Cleanup(a.ledger.Close)

	_, err := a.sess.Login(context.Background(), func(ctx context.Context) (*session.Profile, error) {
		resp, err := a.api.Login(ctx, role, email, "senha123")
		if err != nil {
			return nil, err
		}
		return session.FromMoedaLogin(resp), nil
	})
	require.NoError(t, err)
	return a
}

func (a *actor) balance(t *testing.T) int64 {
	t.Helper()
	p, ok := a.sess.Current()
	require.True(t, ok)
	return p.CoinBalance
}

func TestSendCoinsEndToEnd(t *testing.T) {
	b := startBackend(t)
	ctx := context.Background()
	prof := signIn(t, b, moeda.RoleProfessor, "lima@example.com")
	require.Equal(t, int64(100), prof.balance(t))

	res, err := prof.ledger.SendCoins(ctx, "prof-1", ledger.Transfer{StudentID: "stud-1", Amount: 40, Reason: "Apresentação"})
	require.NoError(t, err)
	require.NoError(t, res.ReconcileErr)

	assert.NotEmpty(t, res.Transaction.ID)
	assert.False(t, res.Transaction.CreatedAt.IsZero())
	assert.Equal(t, int64(60), res.Professor.CoinBalance)
	assert.Equal(t, int64(40), res.Student.CoinBalance)
	assert.Equal(t, res.Professor.CoinBalance+res.Student.CoinBalance, int64(100), "coins are conserved")

	bal, provisional, ok := prof.ledger.View().Balance(moeda.RoleProfessor, "prof-1")
	assert.True(t, ok)
	assert.False(t, provisional)
	assert.Equal(t, int64(60), bal)
	assert.Len(t, prof.ledger.View().Sent("prof-1"), 1)
	assert.Len(t, prof.ledger.View().Received("stud-1"), 1)

	assert.Equal(t, int64(60), prof.balance(t), "session follows the reconciled balance")
	assert.Equal(t, []ledger.State{ledger.Submitting, ledger.Succeeded, ledger.Reconciling, ledger.Idle}, prof.states)
}

func TestSendCoinsRejectedByServer(t *testing.T) {
	b := startBackend(t)
	ctx := context.Background()
	prof := signIn(t, b, moeda.RoleProfessor, "lima@example.com")

	_, err := prof.ledger.SendCoins(ctx, "prof-1", ledger.Transfer{StudentID: "stud-1", Amount: 101, Reason: "Excesso"})
	require.Error(t, err)
	var apiErr *httputil.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "saldo insuficiente", apiErr.Message)

	assert.Equal(t, int64(100), prof.balance(t))
	assert.Empty(t, prof.ledger.View().Sent("prof-1"))
	assert.Equal(t, ledger.Idle, prof.ledger.State(ledger.OpSendCoins))

	p, err := prof.api.GetProfessor(ctx, "prof-1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), p.CoinBalance)
}

func TestLocalChecksSkipTheNetwork(t *testing.T) {
	b := startBackend(t)
	ctx := context.Background()
	prof := signIn(t, b, moeda.RoleProfessor, "lima@example.com")

	before := b.requests.Load()
	_, err := prof.ledger.SendCoins(ctx, "prof-1", ledger.Transfer{StudentID: "stud-1", Amount: 0, Reason: "x"})
	assert.ErrorIs(t, err, moeda.ErrInvalidAmount)
	_, err = prof.ledger.SendCoins(ctx, "prof-1", ledger.Transfer{Amount: 5, Reason: "x"})
	assert.ErrorIs(t, err, moeda.ErrStudentRequired)
	assert.Equal(t, before, b.requests.Load())
}

func TestRedeemEndToEnd(t *testing.T) {
	b := startBackend(t)
	ctx := context.Background()

	prof := signIn(t, b, moeda.RoleProfessor, "lima@example.com")
	_, err := prof.ledger.SendCoins(ctx, "prof-1", ledger.Transfer{StudentID: "stud-1", Amount: 40, Reason: "Monitoria"})
	require.NoError(t, err)

	stu := signIn(t, b, moeda.RoleStudent, "ana@example.com")
	require.Equal(t, int64(40), stu.balance(t))

	res, err := stu.ledger.RedeemAdvantage(ctx, "stud-1", "adv-1", ledger.RedeemOptions{CheckBalance: true})
	require.NoError(t, err)
	require.NoError(t, res.ReconcileErr)
	assert.Regexp(t, regexp.MustCompile(`^[A-Z0-9]{12}$`), res.Redemption.CouponCode)
	assert.Equal(t, int64(10), res.Student.CoinBalance)
	assert.Equal(t, 1, res.Advantage.CurrentRedemptions)
	assert.Equal(t, int64(10), stu.balance(t))
	assert.Len(t, stu.ledger.View().Redemptions("stud-1"), 1)

	// The reconciled view knows the advantage is exhausted.
	before := b.requests.Load()
	_, err = stu.ledger.RedeemAdvantage(ctx, "stud-1", "adv-1", ledger.RedeemOptions{})
	assert.ErrorIs(t, err, moeda.ErrAdvantageExhausted)
	assert.Equal(t, before, b.requests.Load())

	// Forcing past the local check still hits the authority's cap.
	_, err = stu.ledger.RedeemAdvantage(ctx, "stud-1", "adv-1", ledger.RedeemOptions{Force: true})
	require.Error(t, err)
	assert.Equal(t, "vantagem esgotada", err.Error())
	assert.Equal(t, int64(10), stu.balance(t))

	company := signIn(t, b, moeda.RoleCompany, "cafe@example.com")
	reds, err := company.api.CompanyRedemptions(ctx, "comp-1")
	require.NoError(t, err)
	require.Len(t, reds, 1)
	assert.Equal(t, res.Redemption.CouponCode, reds[0].CouponCode)
}

func TestLogoutEndsAccess(t *testing.T) {
	b := startBackend(t)
	ctx := context.Background()
	stu := signIn(t, b, moeda.RoleStudent, "ana@example.com")
	token := stu.sess.Token()
	require.NotEmpty(t, token)

	require.NoError(t, stu.sess.Logout(ctx, stu.api.Logout))
	_, ok := stu.sess.Current()
	assert.False(t, ok)

	// The old token was revoked server side.
	stale := client.New(client.Config{BaseURL: b.url, Tokens: httputil.StaticToken(token), Logger: logging.Discard()})
	_, err := stale.GetStudent(ctx, "stud-1")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, httputil.StatusCode(err))
	assert.Equal(t, "Token has been revoked", err.Error())
}
