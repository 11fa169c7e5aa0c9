package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/AulusHZP/LabProjetoDeSoftware/internal/domain/aluguel"
)

const dateLayout = "2006-01-02"

func newAluguelCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "aluguel",
		Aliases: []string{"rental"},
		Short:   "Car rental: customers, vehicles and orders",
	}
	cmd.AddCommand(
		newAluguelRegisterCmd(a),
		newCustomersCmd(a),
		newVehiclesCmd(a),
		newOrdersCmd(a),
	)
	return cmd
}

func newAluguelRegisterCmd(a *app) *cobra.Command {
	var req aluguel.RegisterRequest
	var tipo string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a rental-platform user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Tipo = aluguel.UserType(tipo)
			u, err := a.aluguel.Register(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.emit(u, func() { a.out.Success("user %s registered as %s", u.ID, u.Tipo) })
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.Nome, "nome", "", "full name")
	f.StringVar(&req.Email, "email", "", "login email")
	f.StringVar(&req.Senha, "senha", "", "password")
	f.StringVar(&tipo, "tipo", string(aluguel.UserCliente), "CLIENTE, AGENTE or ADMINISTRADOR")
	return cmd
}

func newCustomersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "customers",
		Aliases: []string{"clientes"},
		Short:   "List customers",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.aluguel.ListCustomers(cmd.Context())
			if err != nil {
				return err
			}
			return a.emit(list, func() {
				rows := make([][]string, 0, len(list))
				for _, c := range list {
					rows = append(rows, []string{c.ID, c.Nome, c.Email, c.CPF, c.Profissao})
				}
				a.out.Table([]string{"ID", "NOME", "EMAIL", "CPF", "PROFISSAO"}, rows)
			})
		},
	}

	var in aluguel.Customer
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a customer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.aluguel.CreateCustomer(cmd.Context(), in)
			if err != nil {
				return err
			}
			return a.emit(c, func() { a.out.Success("customer %s created", c.ID) })
		},
	}
	f := add.Flags()
	f.StringVar(&in.Nome, "nome", "", "full name")
	f.StringVar(&in.Email, "email", "", "email")
	f.StringVar(&in.RG, "rg", "", "RG")
	f.StringVar(&in.CPF, "cpf", "", "CPF, 11 digits")
	f.StringVar(&in.Endereco, "endereco", "", "address")
	f.StringVar(&in.Profissao, "profissao", "", "occupation")

	remove := &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete a customer",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.aluguel.DeleteCustomer(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.out.Success("customer %s deleted", args[0])
			return nil
		},
	}
	cmd.AddCommand(add, remove)
	return cmd
}

func newVehiclesCmd(a *app) *cobra.Command {
	var (
		marca, modelo string
		ano           int
	)
	cmd := &cobra.Command{
		Use:     "vehicles",
		Aliases: []string{"automoveis"},
		Short:   "List vehicles, optionally by brand, model or year",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var (
				list []aluguel.Vehicle
				err  error
			)
			switch {
			case marca != "":
				list, err = a.aluguel.VehiclesByBrand(ctx, marca)
			case modelo != "":
				list, err = a.aluguel.VehiclesByModel(ctx, modelo)
			case ano != 0:
				list, err = a.aluguel.VehiclesByYear(ctx, ano)
			default:
				list, err = a.aluguel.ListVehicles(ctx)
			}
			if err != nil {
				return err
			}
			return a.emit(list, func() {
				rows := make([][]string, 0, len(list))
				for _, v := range list {
					rows = append(rows, []string{v.ID, v.Placa, v.Marca, v.Modelo, strconv.Itoa(v.Ano), v.Proprietario})
				}
				a.out.Table([]string{"ID", "PLACA", "MARCA", "MODELO", "ANO", "PROPRIETARIO"}, rows)
			})
		},
	}
	cmd.Flags().StringVar(&marca, "marca", "", "brand")
	cmd.Flags().StringVar(&modelo, "modelo", "", "model")
	cmd.Flags().IntVar(&ano, "ano", 0, "year")

	var in aluguel.Vehicle
	add := &cobra.Command{
		Use:   "add",
		Short: "Register a vehicle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.aluguel.CreateVehicle(cmd.Context(), in)
			if err != nil {
				return err
			}
			return a.emit(v, func() { a.out.Success("vehicle %s (%s) created", v.ID, v.Placa) })
		},
	}
	f := add.Flags()
	f.StringVar(&in.Matricula, "matricula", "", "registration number")
	f.IntVar(&in.Ano, "ano", 0, "year")
	f.StringVar(&in.Marca, "marca", "", "brand")
	f.StringVar(&in.Modelo, "modelo", "", "model")
	f.StringVar(&in.Placa, "placa", "", "licence plate")
	f.StringVar(&in.Proprietario, "proprietario", "", "owner")

	remove := &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete a vehicle",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.aluguel.DeleteVehicle(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.out.Success("vehicle %s deleted", args[0])
			return nil
		},
	}
	cmd.AddCommand(add, remove)
	return cmd
}

func newOrdersCmd(a *app) *cobra.Command {
	var cliente, agente, status string
	cmd := &cobra.Command{
		Use:     "orders",
		Aliases: []string{"pedidos"},
		Short:   "List rental orders, optionally by customer, agent or status",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var (
				list []aluguel.Order
				err  error
			)
			switch {
			case cliente != "":
				list, err = a.aluguel.OrdersByCustomer(ctx, cliente)
			case agente != "":
				list, err = a.aluguel.OrdersByAgent(ctx, agente)
			case status != "":
				list, err = a.aluguel.OrdersByStatus(ctx, aluguel.OrderStatus(status))
			default:
				list, err = a.aluguel.ListOrders(ctx)
			}
			if err != nil {
				return err
			}
			return a.emit(list, func() { a.orderTable(list) })
		},
	}
	cmd.Flags().StringVar(&cliente, "cliente", "", "customer id")
	cmd.Flags().StringVar(&agente, "agente", "", "agent id")
	cmd.Flags().StringVar(&status, "status", "", "PENDENTE, EM_ANALISE, APROVADO, REJEITADO or CANCELADO")

	cmd.AddCommand(newOrderCreateCmd(a), newOrderDeleteCmd(a))
	for _, act := range []aluguel.Action{aluguel.ActionAvaliar, aluguel.ActionAprovar, aluguel.ActionRejeitar, aluguel.ActionCancelar} {
		cmd.AddCommand(newOrderActionCmd(a, act))
	}
	return cmd
}

func (a *app) orderTable(list []aluguel.Order) {
	rows := make([][]string, 0, len(list))
	for _, o := range list {
		rows = append(rows, []string{
			o.ID,
			string(o.Status),
			o.ClienteID,
			o.AutomovelID,
			o.DataInicio.Format(dateLayout),
			o.DataFim.Format(dateLayout),
			o.AgenteID,
		})
	}
	a.out.Table([]string{"ID", "STATUS", "CLIENTE", "AUTOMOVEL", "INICIO", "FIM", "AGENTE"}, rows)
}

func newOrderCreateCmd(a *app) *cobra.Command {
	var cliente, automovel, inicio, fim string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Request a vehicle for a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := time.Parse(dateLayout, inicio)
			if err != nil {
				return fmt.Errorf("invalid --inicio %q, want YYYY-MM-DD", inicio)
			}
			end, err := time.Parse(dateLayout, fim)
			if err != nil {
				return fmt.Errorf("invalid --fim %q, want YYYY-MM-DD", fim)
			}
			o, err := a.aluguel.CreateOrder(cmd.Context(), aluguel.Order{
				ClienteID:   cliente,
				AutomovelID: automovel,
				DataInicio:  start,
				DataFim:     end,
			})
			if err != nil {
				return err
			}
			return a.emit(o, func() { a.out.Success("order %s created (%s)", o.ID, o.Status) })
		},
	}
	f := cmd.Flags()
	f.StringVar(&cliente, "cliente", "", "customer id")
	f.StringVar(&automovel, "automovel", "", "vehicle id")
	f.StringVar(&inicio, "inicio", "", "start date, YYYY-MM-DD")
	f.StringVar(&fim, "fim", "", "end date, YYYY-MM-DD")
	for _, name := range []string{"cliente", "automovel", "inicio", "fim"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newOrderDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete an order",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.aluguel.DeleteOrder(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.out.Success("order %s deleted", args[0])
			return nil
		},
	}
}

// newOrderActionCmd builds one status-transition command. Agent actions
// default --agente to the signed-in agent.
func newOrderActionCmd(a *app, act aluguel.Action) *cobra.Command {
	var agente string
	cmd := &cobra.Command{
		Use:   string(act) + " ID",
		Short: fmt.Sprintf("Apply %q to an order", act),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if agente == "" {
				if p, ok := a.sess.Current(); ok && p.Role == string(aluguel.UserAgente) {
					agente = p.ID
				}
			}
			var (
				o   *aluguel.Order
				err error
			)
			switch act {
			case aluguel.ActionAvaliar:
				o, err = a.aluguel.ReviewOrder(ctx, args[0], agente)
			case aluguel.ActionAprovar:
				o, err = a.aluguel.ApproveOrder(ctx, args[0], agente)
			case aluguel.ActionRejeitar:
				o, err = a.aluguel.RejectOrder(ctx, args[0], agente)
			default:
				o, err = a.aluguel.CancelOrder(ctx, args[0])
			}
			if err != nil {
				return err
			}
			return a.emit(o, func() { a.out.Success("order %s is now %s", o.ID, o.Status) })
		},
	}
	if act != aluguel.ActionCancelar {
		cmd.Flags().StringVar(&agente, "agente", "", "agent id (defaults to the signed-in agent)")
	}
	return cmd
}
