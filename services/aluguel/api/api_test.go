package aluguelapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AulusHZP/LabProjetoDeSoftware/internal/domain/aluguel"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/httputil"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/logging"
	aluguelapi "github.com/AulusHZP/LabProjetoDeSoftware/services/aluguel/api"
	"github.com/AulusHZP/LabProjetoDeSoftware/services/aluguel/client"
)

func newClient(t *testing.T) *client.Client {
	t.Helper()
	svc := aluguelapi.New(aluguelapi.Config{
		Logger: logging.Discard(),
		Admin:  &aluguel.RegisterRequest{Nome: "Admin", Email: "admin@example.com", Senha: "segredo", Tipo: aluguel.UserAdministrador},
	})
	require.NoError(t, svc.Start(context.Background()))
	server := httptest.NewServer(svc)
	t.Cleanup(func() {
		server.Close()
		_ = svc.Stop()
	})
	return client.New(client.Config{BaseURL: server.URL + "/api", Logger: logging.Discard()})
}

func TestLoginAndRegister(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	u, err := c.Login(ctx, "admin@example.com", "segredo")
	require.NoError(t, err)
	assert.Equal(t, aluguel.UserAdministrador, u.Tipo)

	_, err = c.Login(ctx, "admin@example.com", "errada")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, httputil.StatusCode(err))

	_, err = c.Register(ctx, aluguel.RegisterRequest{Nome: "Outro", Email: "admin@example.com", Senha: "segredo", Tipo: aluguel.UserCliente})
	assert.Equal(t, http.StatusConflict, httputil.StatusCode(err))

	_, err = c.Register(ctx, aluguel.RegisterRequest{Nome: "X", Email: "x@example.com", Senha: "segredo", Tipo: "GERENTE"})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httputil.StatusCode(err))
}

func TestVehicleValidation(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	_, err := c.CreateVehicle(ctx, aluguel.Vehicle{Matricula: "M1", Ano: 2020, Marca: "Fiat", Modelo: "Uno", Placa: "abc-123"})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httputil.StatusCode(err))
	assert.Contains(t, err.Error(), "licence plate")

	_, err = c.CreateVehicle(ctx, aluguel.Vehicle{Matricula: "M1", Ano: time.Now().Year() + 5, Marca: "Fiat", Modelo: "Uno", Placa: "ABC1234"})
	require.Error(t, err)
	assert.Equal(t, "must not be in the future", err.Error())

	v, err := c.CreateVehicle(ctx, aluguel.Vehicle{Matricula: "M1", Ano: 2020, Marca: "Fiat", Modelo: "Uno", Placa: "ABC1234"})
	require.NoError(t, err)

	byYear, err := c.VehiclesByYear(ctx, 2020)
	require.NoError(t, err)
	require.Len(t, byYear, 1)
	assert.Equal(t, v.ID, byYear[0].ID)

	byBrand, err := c.VehiclesByBrand(ctx, "Toyota")
	require.NoError(t, err)
	assert.Empty(t, byBrand)
}

func TestOrderLifecycle(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	cust, err := c.CreateCustomer(ctx, aluguel.Customer{Nome: "João", Email: "joao@example.com", RG: "MG1", CPF: "12345678901"})
	require.NoError(t, err)
	car, err := c.CreateVehicle(ctx, aluguel.Vehicle{Matricula: "M1", Ano: 2022, Marca: "Toyota", Modelo: "Corolla", Placa: "ABC1D23"})
	require.NoError(t, err)

	start := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
	_, err = c.CreateOrder(ctx, aluguel.Order{ClienteID: cust.ID, AutomovelID: car.ID, DataInicio: start, DataFim: start.Add(-time.Hour)})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httputil.StatusCode(err))

	order, err := c.CreateOrder(ctx, aluguel.Order{ClienteID: cust.ID, AutomovelID: car.ID, DataInicio: start, DataFim: start.AddDate(0, 0, 7)})
	require.NoError(t, err)
	assert.Equal(t, aluguel.StatusPendente, order.Status)

	_, err = c.CreateOrder(ctx, aluguel.Order{ClienteID: cust.ID, AutomovelID: car.ID, DataInicio: start.AddDate(0, 0, 3), DataFim: start.AddDate(0, 0, 9)})
	assert.Equal(t, http.StatusConflict, httputil.StatusCode(err))

	reviewed, err := c.ReviewOrder(ctx, order.ID, "agente-1")
	require.NoError(t, err)
	assert.Equal(t, aluguel.StatusEmAnalise, reviewed.Status)

	approved, err := c.ApproveOrder(ctx, order.ID, "")
	require.NoError(t, err)
	assert.Equal(t, aluguel.StatusAprovado, approved.Status)
	assert.Equal(t, "agente-1", approved.AgenteID)

	_, err = c.RejectOrder(ctx, order.ID, "")
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, httputil.StatusCode(err))
	assert.Equal(t, aluguel.ErrInvalidTransition.Error(), err.Error())

	byAgent, err := c.OrdersByAgent(ctx, "agente-1")
	require.NoError(t, err)
	assert.Len(t, byAgent, 1)

	cancelled, err := c.CancelOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, aluguel.StatusCancelado, cancelled.Status)

	_, err = c.CancelOrder(ctx, order.ID)
	assert.Equal(t, http.StatusConflict, httputil.StatusCode(err))

	byStatus, err := c.OrdersByStatus(ctx, aluguel.StatusCancelado)
	require.NoError(t, err)
	assert.Len(t, byStatus, 1)

	_, err = c.OrdersByStatus(ctx, "FEITO")
	assert.Equal(t, http.StatusBadRequest, httputil.StatusCode(err))

	require.NoError(t, c.DeleteOrder(ctx, order.ID))
	_, err = c.GetOrder(ctx, order.ID)
	assert.Equal(t, http.StatusNotFound, httputil.StatusCode(err))
}

func TestCustomerCRUD(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	_, err := c.CreateCustomer(ctx, aluguel.Customer{Nome: "Sem CPF", Email: "x@example.com", RG: "MG1"})
	require.Error(t, err)
	assert.Equal(t, "this field is required", err.Error())

	cust, err := c.CreateCustomer(ctx, aluguel.Customer{Nome: "Maria", Email: "maria@example.com", RG: "MG2", CPF: "10987654321"})
	require.NoError(t, err)

	cust.Profissao = "Engenheira"
	updated, err := c.UpdateCustomer(ctx, cust.ID, *cust)
	require.NoError(t, err)
	assert.Equal(t, "Engenheira", updated.Profissao)

	list, err := c.ListCustomers(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, c.DeleteCustomer(ctx, cust.ID))
	_, err = c.GetCustomer(ctx, cust.ID)
	assert.Equal(t, http.StatusNotFound, httputil.StatusCode(err))
}

func TestUserAccounts(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	u, err := c.Register(ctx, aluguel.RegisterRequest{Nome: "Maria", Email: "maria@example.com", Senha: "segredo", Tipo: aluguel.UserCliente})
	require.NoError(t, err)

	got, err := c.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maria", got.Nome)

	taken := "admin@example.com"
	_, err = c.UpdateUser(ctx, u.ID, aluguel.UserUpdate{Email: &taken})
	assert.Equal(t, http.StatusConflict, httputil.StatusCode(err))

	nome, senha := "Maria Silva", "novasenha"
	updated, err := c.UpdateUser(ctx, u.ID, aluguel.UserUpdate{Nome: &nome, Senha: &senha})
	require.NoError(t, err)
	assert.Equal(t, "Maria Silva", updated.Nome)
	assert.Equal(t, "maria@example.com", updated.Email)
	assert.Equal(t, aluguel.UserCliente, updated.Tipo)

	_, err = c.Login(ctx, "maria@example.com", "segredo")
	assert.Equal(t, http.StatusUnauthorized, httputil.StatusCode(err))
	_, err = c.Login(ctx, "maria@example.com", "novasenha")
	require.NoError(t, err)

	list, err := c.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, c.DeleteUser(ctx, u.ID))
	_, err = c.GetUser(ctx, u.ID)
	assert.Equal(t, http.StatusNotFound, httputil.StatusCode(err))
	assert.Equal(t, http.StatusNotFound, httputil.StatusCode(c.DeleteUser(ctx, u.ID)))
}
