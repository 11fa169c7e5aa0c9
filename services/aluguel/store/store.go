// Package store defines persistence for the car-rental platform.
package store

import (
	"context"

	"github.com/AulusHZP/LabProjetoDeSoftware/internal/domain/aluguel"
)

// VehicleFilter narrows vehicle listings. Zero fields match everything.
type VehicleFilter struct {
	Marca  string
	Modelo string
	Ano    int
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	ClienteID string
	AgenteID  string
	Status    aluguel.OrderStatus
}

// Store is the persistence contract. Lookups return aluguel.ErrNotFound when
// nothing matches.
type Store interface {
	CreateUser(ctx context.Context, u aluguel.User) (aluguel.User, error)
	GetUserByEmail(ctx context.Context, email string) (aluguel.User, error)
	GetUser(ctx context.Context, id string) (aluguel.User, error)
	ListUsers(ctx context.Context) ([]aluguel.User, error)
	// UpdateUser rewrites name and email, and the password hash when set.
	UpdateUser(ctx context.Context, u aluguel.User) (aluguel.User, error)
	DeleteUser(ctx context.Context, id string) error

	CreateCustomer(ctx context.Context, c aluguel.Customer) (aluguel.Customer, error)
	GetCustomer(ctx context.Context, id string) (aluguel.Customer, error)
	ListCustomers(ctx context.Context) ([]aluguel.Customer, error)
	UpdateCustomer(ctx context.Context, c aluguel.Customer) (aluguel.Customer, error)
	DeleteCustomer(ctx context.Context, id string) error

	CreateVehicle(ctx context.Context, v aluguel.Vehicle) (aluguel.Vehicle, error)
	GetVehicle(ctx context.Context, id string) (aluguel.Vehicle, error)
	ListVehicles(ctx context.Context, filter VehicleFilter) ([]aluguel.Vehicle, error)
	UpdateVehicle(ctx context.Context, v aluguel.Vehicle) (aluguel.Vehicle, error)
	DeleteVehicle(ctx context.Context, id string) error

	// CreateOrder files a PENDENTE order. The customer and vehicle must
	// exist and the vehicle must not be booked by another live order over
	// an overlapping period.
	CreateOrder(ctx context.Context, o aluguel.Order) (aluguel.Order, error)
	GetOrder(ctx context.Context, id string) (aluguel.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]aluguel.Order, error)
	DeleteOrder(ctx context.Context, id string) error
	// ApplyAction moves the order through the status machine. A non-empty
	// agentID is recorded as the evaluating agent.
	ApplyAction(ctx context.Context, id string, act aluguel.Action, agentID string) (aluguel.Order, error)
}
