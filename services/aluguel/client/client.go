// Package client provides typed accessors for the car-rental REST API.
package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/AulusHZP/LabProjetoDeSoftware/internal/domain/aluguel"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/httputil"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/logging"
)

// Client is a car-rental API client.
type Client struct {
	http *httputil.Client
}

// Config configures the client. The rental API does not use bearer tokens.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Logger  *logging.Logger
}

func New(cfg Config) *Client {
	return &Client{http: httputil.New(httputil.Config{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Logger:  cfg.Logger,
	})}
}

func esc(s string) string { return url.PathEscape(s) }

// Login returns the authenticated user's profile.
func (c *Client) Login(ctx context.Context, email, senha string) (*aluguel.User, error) {
	var out aluguel.User
	if err := c.http.Post(ctx, "/auth/login", aluguel.LoginRequest{Email: email, Senha: senha}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, req aluguel.RegisterRequest) (*aluguel.User, error) {
	var out aluguel.User
	if err := c.http.Post(ctx, "/auth/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Users -----------------------------------------------------------------------

func (c *Client) ListUsers(ctx context.Context) ([]aluguel.User, error) {
	var out []aluguel.User
	if err := c.http.Get(ctx, "/usuarios", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetUser(ctx context.Context, id string) (*aluguel.User, error) {
	var out aluguel.User
	if err := c.http.Get(ctx, "/usuarios/"+esc(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateUser applies a partial update to a user account.
func (c *Client) UpdateUser(ctx context.Context, id string, in aluguel.UserUpdate) (*aluguel.User, error) {
	var out aluguel.User
	if err := c.http.Put(ctx, "/usuarios/"+esc(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.http.DoJSON(ctx, http.MethodDelete, "/usuarios/"+esc(id), nil, nil)
}

// Customers -------------------------------------------------------------------

func (c *Client) ListCustomers(ctx context.Context) ([]aluguel.Customer, error) {
	var out []aluguel.Customer
	if err := c.http.Get(ctx, "/clientes", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCustomer(ctx context.Context, id string) (*aluguel.Customer, error) {
	var out aluguel.Customer
	if err := c.http.Get(ctx, "/clientes/"+esc(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateCustomer(ctx context.Context, in aluguel.Customer) (*aluguel.Customer, error) {
	var out aluguel.Customer
	if err := c.http.Post(ctx, "/clientes", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCustomer(ctx context.Context, id string, in aluguel.Customer) (*aluguel.Customer, error) {
	var out aluguel.Customer
	if err := c.http.Put(ctx, "/clientes/"+esc(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCustomer(ctx context.Context, id string) error {
	return c.http.DoJSON(ctx, http.MethodDelete, "/clientes/"+esc(id), nil, nil)
}

// Vehicles --------------------------------------------------------------------

func (c *Client) ListVehicles(ctx context.Context) ([]aluguel.Vehicle, error) {
	return c.vehicles(ctx, "/automoveis")
}

func (c *Client) VehiclesByBrand(ctx context.Context, marca string) ([]aluguel.Vehicle, error) {
	return c.vehicles(ctx, "/automoveis/marca/"+esc(marca))
}

func (c *Client) VehiclesByModel(ctx context.Context, modelo string) ([]aluguel.Vehicle, error) {
	return c.vehicles(ctx, "/automoveis/modelo/"+esc(modelo))
}

func (c *Client) VehiclesByYear(ctx context.Context, ano int) ([]aluguel.Vehicle, error) {
	return c.vehicles(ctx, "/automoveis/ano/"+strconv.Itoa(ano))
}

func (c *Client) vehicles(ctx context.Context, path string) ([]aluguel.Vehicle, error) {
	var out []aluguel.Vehicle
	if err := c.http.Get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetVehicle(ctx context.Context, id string) (*aluguel.Vehicle, error) {
	var out aluguel.Vehicle
	if err := c.http.Get(ctx, "/automoveis/"+esc(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateVehicle(ctx context.Context, in aluguel.Vehicle) (*aluguel.Vehicle, error) {
	var out aluguel.Vehicle
	if err := c.http.Post(ctx, "/automoveis", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateVehicle(ctx context.Context, id string, in aluguel.Vehicle) (*aluguel.Vehicle, error) {
	var out aluguel.Vehicle
	if err := c.http.Put(ctx, "/automoveis/"+esc(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteVehicle(ctx context.Context, id string) error {
	return c.http.DoJSON(ctx, http.MethodDelete, "/automoveis/"+esc(id), nil, nil)
}

// Orders ----------------------------------------------------------------------

func (c *Client) ListOrders(ctx context.Context) ([]aluguel.Order, error) {
	return c.orders(ctx, "/pedidos")
}

func (c *Client) OrdersByCustomer(ctx context.Context, customerID string) ([]aluguel.Order, error) {
	return c.orders(ctx, "/pedidos/cliente/"+esc(customerID))
}

func (c *Client) OrdersByAgent(ctx context.Context, agentID string) ([]aluguel.Order, error) {
	return c.orders(ctx, "/pedidos/agente/"+esc(agentID))
}

func (c *Client) OrdersByStatus(ctx context.Context, status aluguel.OrderStatus) ([]aluguel.Order, error) {
	return c.orders(ctx, "/pedidos/status/"+esc(string(status)))
}

func (c *Client) orders(ctx context.Context, path string) ([]aluguel.Order, error) {
	var out []aluguel.Order
	if err := c.http.Get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetOrder(ctx context.Context, id string) (*aluguel.Order, error) {
	var out aluguel.Order
	if err := c.http.Get(ctx, "/pedidos/"+esc(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateOrder(ctx context.Context, in aluguel.Order) (*aluguel.Order, error) {
	var out aluguel.Order
	if err := c.http.Post(ctx, "/pedidos", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteOrder(ctx context.Context, id string) error {
	return c.http.DoJSON(ctx, http.MethodDelete, "/pedidos/"+esc(id), nil, nil)
}

// ReviewOrder moves a pending order into analysis.
func (c *Client) ReviewOrder(ctx context.Context, id, agentID string) (*aluguel.Order, error) {
	return c.act(ctx, id, aluguel.ActionAvaliar, agentID)
}

func (c *Client) ApproveOrder(ctx context.Context, id, agentID string) (*aluguel.Order, error) {
	return c.act(ctx, id, aluguel.ActionAprovar, agentID)
}

func (c *Client) RejectOrder(ctx context.Context, id, agentID string) (*aluguel.Order, error) {
	return c.act(ctx, id, aluguel.ActionRejeitar, agentID)
}

func (c *Client) CancelOrder(ctx context.Context, id string) (*aluguel.Order, error) {
	return c.act(ctx, id, aluguel.ActionCancelar, "")
}

func (c *Client) act(ctx context.Context, id string, act aluguel.Action, agentID string) (*aluguel.Order, error) {
	var body any
	if agentID != "" {
		body = map[string]string{"agenteId": agentID}
	}
	var out aluguel.Order
	if err := c.http.Put(ctx, "/pedidos/"+esc(id)+"/"+string(act), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
