// Package aluguel defines the car-rental domain: customers, agents, vehicles
// and rental orders. JSON field names follow the rental API's Portuguese
// naming convention.
package aluguel

import (
	"errors"
	"time"
)

// UserType is the kind of rental-platform user.
type UserType string

const (
	UserCliente       UserType = "CLIENTE"
	UserAgente        UserType = "AGENTE"
	UserAdministrador UserType = "ADMINISTRADOR"
)

// AgentType distinguishes rental companies from banks that finance contracts.
type AgentType string

const (
	AgentEmpresa AgentType = "EMPRESA"
	AgentBanco   AgentType = "BANCO"
)

// User is an authenticated rental-platform account.
type User struct {
	ID           string   `json:"id"`
	Nome         string   `json:"nome"`
	Email        string   `json:"email"`
	Tipo         UserType `json:"tipo"`
	PasswordHash string   `json:"-"`
}

// Customer rents vehicles.
type Customer struct {
	ID        string    `json:"id"`
	Nome      string    `json:"nome" validate:"required"`
	Email     string    `json:"email" validate:"required,email"`
	RG        string    `json:"rg" validate:"required"`
	CPF       string    `json:"cpf" validate:"required,numeric,len=11"`
	Endereco  string    `json:"endereco"`
	Profissao string    `json:"profissao"`
	CreatedAt time.Time `json:"createdAt"`
}

// Agent evaluates orders on behalf of a company or bank.
type Agent struct {
	ID         string    `json:"id"`
	Nome       string    `json:"nome" validate:"required"`
	Email      string    `json:"email" validate:"required,email"`
	CNPJ       string    `json:"cnpj" validate:"required,numeric,len=14"`
	TipoAgente AgentType `json:"tipoAgente" validate:"required,oneof=EMPRESA BANCO"`
}

// Vehicle is a rentable car.
type Vehicle struct {
	ID           string `json:"id"`
	Matricula    string `json:"matricula" validate:"required"`
	Ano          int    `json:"ano" validate:"required,gte=1900"`
	Marca        string `json:"marca" validate:"required"`
	Modelo       string `json:"modelo" validate:"required"`
	Placa        string `json:"placa" validate:"required,placa"`
	Proprietario string `json:"proprietario"`
}

// OrderStatus is the lifecycle state of a rental order.
type OrderStatus string

const (
	StatusPendente  OrderStatus = "PENDENTE"
	StatusEmAnalise OrderStatus = "EM_ANALISE"
	StatusAprovado  OrderStatus = "APROVADO"
	StatusRejeitado OrderStatus = "REJEITADO"
	StatusCancelado OrderStatus = "CANCELADO"
)

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPendente, StatusEmAnalise, StatusAprovado, StatusRejeitado, StatusCancelado:
		return true
	}
	return false
}

// Order is a rental request for one vehicle over a date range.
type Order struct {
	ID          string      `json:"id"`
	DataInicio  time.Time   `json:"dataInicio" validate:"required"`
	DataFim     time.Time   `json:"dataFim" validate:"required,gtfield=DataInicio"`
	Status      OrderStatus `json:"status"`
	ClienteID   string      `json:"clienteId" validate:"required"`
	AgenteID    string      `json:"agenteId,omitempty"`
	AutomovelID string      `json:"automovelId" validate:"required"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Action is a status transition requested on an order.
type Action string

const (
	ActionAvaliar  Action = "avaliar"
	ActionAprovar  Action = "aprovar"
	ActionRejeitar Action = "rejeitar"
	ActionCancelar Action = "cancelar"
)

// Transition returns the status that results from applying act to from.
func Transition(from OrderStatus, act Action) (OrderStatus, error) {
	switch act {
	case ActionAvaliar:
		if from == StatusPendente {
			return StatusEmAnalise, nil
		}
	case ActionAprovar:
		if from == StatusPendente || from == StatusEmAnalise {
			return StatusAprovado, nil
		}
	case ActionRejeitar:
		if from == StatusPendente || from == StatusEmAnalise {
			return StatusRejeitado, nil
		}
	case ActionCancelar:
		if from != StatusCancelado {
			return StatusCancelado, nil
		}
	default:
		return from, ErrUnknownAction
	}
	return from, ErrInvalidTransition
}

// LoginRequest authenticates a rental-platform user.
type LoginRequest struct {
	Email string `json:"email" validate:"required,email"`
	Senha string `json:"senha" validate:"required"`
}

// RegisterRequest creates a rental-platform user.
type RegisterRequest struct {
	Nome  string   `json:"nome" validate:"required"`
	Email string   `json:"email" validate:"required,email"`
	Senha string   `json:"senha" validate:"required,min=6"`
	Tipo  UserType `json:"tipo" validate:"required,oneof=CLIENTE AGENTE ADMINISTRADOR"`
}

// UserUpdate edits a user account. Unset fields are kept; the user type is
// fixed at registration.
type UserUpdate struct {
	Nome  *string `json:"nome,omitempty" validate:"omitempty,min=1"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
	Senha *string `json:"senha,omitempty" validate:"omitempty,min=6"`
}

var (
	ErrNotFound           = errors.New("registro não encontrado")
	ErrInvalidTransition  = errors.New("transição de status inválida para o pedido")
	ErrUnknownAction      = errors.New("ação desconhecida")
	ErrEmailTaken         = errors.New("email já cadastrado")
	ErrPlacaTaken         = errors.New("placa já cadastrada")
	ErrInvalidCredentials = errors.New("email ou senha inválidos")
	ErrVehicleUnavailable = errors.New("automóvel já reservado no período")
)
