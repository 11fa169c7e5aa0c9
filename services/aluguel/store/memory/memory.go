// Package memory is an in-memory car-rental store for tests and local runs.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AulusHZP/LabProjetoDeSoftware/internal/domain/aluguel"
	"github.com/AulusHZP/LabProjetoDeSoftware/services/aluguel/store"
)

type Store struct {
	mu        sync.RWMutex
	users     map[string]aluguel.User
	customers map[string]aluguel.Customer
	vehicles  map[string]aluguel.Vehicle
	orders    map[string]aluguel.Order
	now       func() time.Time
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users:     make(map[string]aluguel.User),
		customers: make(map[string]aluguel.Customer),
		vehicles:  make(map[string]aluguel.Vehicle),
		orders:    make(map[string]aluguel.Order),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func newID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

// Users -----------------------------------------------------------------------

func (s *Store) CreateUser(_ context.Context, u aluguel.User) (aluguel.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return aluguel.User{}, aluguel.ErrEmailTaken
		}
	}
	u.ID = newID(u.ID)
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (aluguel.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return aluguel.User{}, aluguel.ErrNotFound
}

func (s *Store) GetUser(_ context.Context, id string) (aluguel.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return aluguel.User{}, aluguel.ErrNotFound
	}
	return u, nil
}

func (s *Store) ListUsers(_ context.Context) ([]aluguel.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]aluguel.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nome < out[j].Nome })
	return out, nil
}

func (s *Store) UpdateUser(_ context.Context, u aluguel.User) (aluguel.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.users[u.ID]
	if !ok {
		return aluguel.User{}, aluguel.ErrNotFound
	}
	for id, other := range s.users {
		if id != u.ID && strings.EqualFold(other.Email, u.Email) {
			return aluguel.User{}, aluguel.ErrEmailTaken
		}
	}
	existing.Nome = u.Nome
	existing.Email = u.Email
	if u.PasswordHash != "" {
		existing.PasswordHash = u.PasswordHash
	}
	s.users[u.ID] = existing
	return existing, nil
}

func (s *Store) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return aluguel.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

// Customers -------------------------------------------------------------------

func (s *Store) CreateCustomer(_ context.Context, c aluguel.Customer) (aluguel.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.customerConflict(c); err != nil {
		return aluguel.Customer{}, err
	}
	c.ID = newID(c.ID)
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}
	s.customers[c.ID] = c
	return c, nil
}

func (s *Store) customerConflict(c aluguel.Customer) error {
	for id, existing := range s.customers {
		if id != c.ID && strings.EqualFold(existing.Email, c.Email) {
			return aluguel.ErrEmailTaken
		}
	}
	return nil
}

func (s *Store) GetCustomer(_ context.Context, id string) (aluguel.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.customers[id]
	if !ok {
		return aluguel.Customer{}, aluguel.ErrNotFound
	}
	return c, nil
}

func (s *Store) ListCustomers(_ context.Context) ([]aluguel.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]aluguel.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nome < out[j].Nome })
	return out, nil
}

func (s *Store) UpdateCustomer(_ context.Context, c aluguel.Customer) (aluguel.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.customers[c.ID]
	if !ok {
		return aluguel.Customer{}, aluguel.ErrNotFound
	}
	if err := s.customerConflict(c); err != nil {
		return aluguel.Customer{}, err
	}
	c.CreatedAt = existing.CreatedAt
	s.customers[c.ID] = c
	return c, nil
}

func (s *Store) DeleteCustomer(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customers[id]; !ok {
		return aluguel.ErrNotFound
	}
	delete(s.customers, id)
	return nil
}

// Vehicles --------------------------------------------------------------------

func (s *Store) placaTaken(v aluguel.Vehicle) bool {
	for id, existing := range s.vehicles {
		if id != v.ID && existing.Placa == v.Placa {
			return true
		}
	}
	return false
}

func (s *Store) CreateVehicle(_ context.Context, v aluguel.Vehicle) (aluguel.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.placaTaken(v) {
		return aluguel.Vehicle{}, aluguel.ErrPlacaTaken
	}
	v.ID = newID(v.ID)
	s.vehicles[v.ID] = v
	return v, nil
}

func (s *Store) GetVehicle(_ context.Context, id string) (aluguel.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vehicles[id]
	if !ok {
		return aluguel.Vehicle{}, aluguel.ErrNotFound
	}
	return v, nil
}

func (s *Store) ListVehicles(_ context.Context, f store.VehicleFilter) ([]aluguel.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]aluguel.Vehicle, 0, len(s.vehicles))
	for _, v := range s.vehicles {
		if f.Marca != "" && !strings.EqualFold(v.Marca, f.Marca) {
			continue
		}
		if f.Modelo != "" && !strings.EqualFold(v.Modelo, f.Modelo) {
			continue
		}
		if f.Ano != 0 && v.Ano != f.Ano {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Placa < out[j].Placa })
	return out, nil
}

func (s *Store) UpdateVehicle(_ context.Context, v aluguel.Vehicle) (aluguel.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vehicles[v.ID]; !ok {
		return aluguel.Vehicle{}, aluguel.ErrNotFound
	}
	if s.placaTaken(v) {
		return aluguel.Vehicle{}, aluguel.ErrPlacaTaken
	}
	s.vehicles[v.ID] = v
	return v, nil
}

func (s *Store) DeleteVehicle(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vehicles[id]; !ok {
		return aluguel.ErrNotFound
	}
	delete(s.vehicles, id)
	return nil
}

// Orders ----------------------------------------------------------------------

// live orders hold the vehicle for their period.
func live(status aluguel.OrderStatus) bool {
	return status == aluguel.StatusPendente || status == aluguel.StatusEmAnalise || status == aluguel.StatusAprovado
}

func (s *Store) CreateOrder(_ context.Context, o aluguel.Order) (aluguel.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customers[o.ClienteID]; !ok {
		return aluguel.Order{}, aluguel.ErrNotFound
	}
	if _, ok := s.vehicles[o.AutomovelID]; !ok {
		return aluguel.Order{}, aluguel.ErrNotFound
	}
	for _, existing := range s.orders {
		if existing.AutomovelID != o.AutomovelID || !live(existing.Status) {
			continue
		}
		if o.DataInicio.Before(existing.DataFim) && existing.DataInicio.Before(o.DataFim) {
			return aluguel.Order{}, aluguel.ErrVehicleUnavailable
		}
	}
	o.ID = newID(o.ID)
	o.Status = aluguel.StatusPendente
	o.CreatedAt = s.now()
	o.UpdatedAt = o.CreatedAt
	s.orders[o.ID] = o
	return o, nil
}

func (s *Store) GetOrder(_ context.Context, id string) (aluguel.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return aluguel.Order{}, aluguel.ErrNotFound
	}
	return o, nil
}

func (s *Store) ListOrders(_ context.Context, f store.OrderFilter) ([]aluguel.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]aluguel.Order, 0, len(s.orders))
	for _, o := range s.orders {
		if f.ClienteID != "" && o.ClienteID != f.ClienteID {
			continue
		}
		if f.AgenteID != "" && o.AgenteID != f.AgenteID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) DeleteOrder(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[id]; !ok {
		return aluguel.ErrNotFound
	}
	delete(s.orders, id)
	return nil
}

func (s *Store) ApplyAction(_ context.Context, id string, act aluguel.Action, agentID string) (aluguel.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return aluguel.Order{}, aluguel.ErrNotFound
	}
	next, err := aluguel.Transition(o.Status, act)
	if err != nil {
		return aluguel.Order{}, err
	}
	o.Status = next
	if agentID != "" {
		o.AgenteID = agentID
	}
	o.UpdatedAt = s.now()
	s.orders[o.ID] = o
	return o, nil
}
