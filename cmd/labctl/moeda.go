package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/AulusHZP/LabProjetoDeSoftware/internal/cli"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/domain/moeda"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/ledger"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/session"
)

func isMoedaRole(role string) bool {
	switch moeda.Role(role) {
	case moeda.RoleStudent, moeda.RoleProfessor, moeda.RoleCompany:
		return true
	}
	return false
}

func newLoginCmd(a *app) *cobra.Command {
	var role, password string
	cmd := &cobra.Command{
		Use:   "login EMAIL",
		Short: "Sign in as a student, professor, company or rental user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := args[0]
			auth := func(ctx context.Context) (*session.Profile, error) {
				resp, err := a.moeda.Login(ctx, moeda.Role(role), email, password)
				if err != nil {
					return nil, err
				}
				return session.FromMoedaLogin(resp), nil
			}
			if role == roleAluguel {
				auth = func(ctx context.Context) (*session.Profile, error) {
					u, err := a.aluguel.Login(ctx, email, password)
					if err != nil {
						return nil, err
					}
					return session.FromAluguelUser(u), nil
				}
			}

			p, err := a.sess.Login(cmd.Context(), auth)
			if err != nil {
				return err
			}
			shown := *p
			shown.Token = ""
			return a.emit(shown, func() {
				a.out.Success("signed in as %s (%s)", p.Name, p.Role)
				if isMoedaRole(p.Role) && p.Role != string(moeda.RoleCompany) {
					a.out.Info("balance: %d moedas", p.CoinBalance)
				}
			})
		},
	}
	cmd.Flags().StringVarP(&role, "role", "r", string(moeda.RoleStudent), "student, professor, company or aluguel")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and revoke the current token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var revoke func(context.Context) error
			if p, ok := a.sess.Current(); ok && isMoedaRole(p.Role) {
				revoke = a.moeda.Logout
			}
			if err := a.sess.Logout(cmd.Context(), revoke); err != nil {
				return err
			}
			a.out.Success("signed out")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	var offline bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in profile, refreshed from the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.profile()
			if err != nil {
				return err
			}
			if !offline && isMoedaRole(p.Role) {
				fresh, err := a.sess.Refresh(cmd.Context(), a.fetchProfile)
				if err != nil {
					return err
				}
				p = *fresh
			}
			p.Token = ""
			return a.emit(p, func() {
				rows := [][]string{
					{"id", p.ID},
					{"name", p.Name},
					{"email", p.Email},
					{"role", p.Role},
				}
				if p.InstitutionID != "" {
					rows = append(rows, []string{"institution", p.InstitutionID})
				}
				if p.Role == string(moeda.RoleStudent) || p.Role == string(moeda.RoleProfessor) {
					rows = append(rows, []string{"balance", strconv.FormatInt(p.CoinBalance, 10)})
				}
				a.out.Table([]string{"FIELD", "VALUE"}, rows)
			})
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "show the cached profile without contacting the server")
	return cmd
}

func (a *app) fetchProfile(ctx context.Context, cur session.Profile) (*session.Profile, error) {
	p := &session.Profile{ID: cur.ID, Role: cur.Role}
	switch moeda.Role(cur.Role) {
	case moeda.RoleStudent:
		s, err := a.ledger.RefreshStudent(ctx, cur.ID)
		if err != nil {
			return nil, err
		}
		p.Name, p.Email, p.InstitutionID, p.CoinBalance = s.Name, s.Email, s.InstitutionID, s.CoinBalance
	case moeda.RoleProfessor:
		prof, err := a.ledger.RefreshProfessor(ctx, cur.ID)
		if err != nil {
			return nil, err
		}
		p.Name, p.Email, p.InstitutionID, p.CoinBalance = prof.Name, prof.Email, prof.InstitutionID, prof.CoinBalance
	case moeda.RoleCompany:
		c, err := a.moeda.GetCompany(ctx, cur.ID)
		if err != nil {
			return nil, err
		}
		p.Name, p.Email = c.CompanyName, c.Email
	default:
		return nil, errWrongRole
	}
	return p, nil
}

func newRegisterCmd(a *app) *cobra.Command {
	var (
		name, email, password, cpf, rg, address string
		institution, course, department, cnpj   string
	)
	cmd := &cobra.Command{
		Use:       "register student|professor|company",
		Short:     "Create a MoedaEstudantil account",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"student", "professor", "company"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var (
				created interface{}
				id      string
				err     error
			)
			switch moeda.Role(args[0]) {
			case moeda.RoleStudent:
				var s *moeda.Student
				s, err = a.moeda.StudentRegister(ctx, moeda.StudentRegistration{
					Name: name, Email: email, Password: password, CPF: cpf, RG: rg,
					Address: address, InstitutionID: institution, Course: course,
				})
				if err == nil {
					created, id = s, s.ID
				}
			case moeda.RoleProfessor:
				var p *moeda.Professor
				p, err = a.moeda.ProfessorRegister(ctx, moeda.ProfessorRegistration{
					Name: name, Email: email, Password: password, CPF: cpf,
					Department: department, InstitutionID: institution,
				})
				if err == nil {
					created, id = p, p.ID
				}
			case moeda.RoleCompany:
				var c *moeda.Company
				c, err = a.moeda.CompanyRegister(ctx, moeda.CompanyRegistration{
					CompanyName: name, CNPJ: cnpj, Email: email, Password: password,
				})
				if err == nil {
					created, id = c, c.ID
				}
			}
			if err != nil {
				return err
			}
			return a.emit(created, func() {
				a.out.Success("%s registered with id %s", args[0], id)
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&name, "name", "", "full name, or company name")
	f.StringVar(&email, "email", "", "login email")
	f.StringVarP(&password, "password", "p", "", "password, at least 6 characters")
	f.StringVar(&cpf, "cpf", "", "CPF, 11 digits")
	f.StringVar(&rg, "rg", "", "RG")
	f.StringVar(&address, "address", "", "postal address")
	f.StringVar(&institution, "institution", "", "institution id")
	f.StringVar(&course, "course", "", "course (students)")
	f.StringVar(&department, "department", "", "department (professors)")
	f.StringVar(&cnpj, "cnpj", "", "CNPJ, 14 digits (companies)")
	return cmd
}

func newInstitutionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "institutions",
		Short: "List institutions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.moeda.ListInstitutions(cmd.Context())
			if err != nil {
				return err
			}
			return a.emit(list, func() {
				rows := make([][]string, 0, len(list))
				for _, i := range list {
					rows = append(rows, []string{i.ID, i.Name})
				}
				a.out.Table([]string{"ID", "NAME"}, rows)
			})
		},
	}
}

func newStudentsCmd(a *app) *cobra.Command {
	var institution, name string
	cmd := &cobra.Command{
		Use:   "students",
		Short: "List or search students of an institution",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if institution == "" {
				p, err := a.profile()
				if err != nil {
					return err
				}
				institution = p.InstitutionID
			}
			var (
				list []moeda.Student
				err  error
			)
			if name != "" {
				list, err = a.moeda.SearchStudents(cmd.Context(), institution, name)
			} else {
				list, err = a.moeda.ListStudentsByInstitution(cmd.Context(), institution)
			}
			if err != nil {
				return err
			}
			return a.emit(list, func() {
				rows := make([][]string, 0, len(list))
				for _, s := range list {
					rows = append(rows, []string{s.ID, s.Name, s.Email, s.Course, strconv.FormatInt(s.CoinBalance, 10)})
				}
				a.out.Table([]string{"ID", "NAME", "EMAIL", "COURSE", "BALANCE"}, rows)
			})
		},
	}
	cmd.Flags().StringVar(&institution, "institution", "", "institution id (defaults to your own)")
	cmd.Flags().StringVar(&name, "name", "", "filter by name")
	return cmd
}

func newSendCoinsCmd(a *app) *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "send-coins STUDENT_ID AMOUNT",
		Short: "Give coins to a student",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.profile(moeda.RoleProfessor)
			if err != nil {
				return err
			}
			amount, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q", args[1])
			}
			res, err := a.ledger.SendCoins(cmd.Context(), p.ID, ledger.Transfer{
				StudentID: args[0],
				Amount:    amount,
				Reason:    reason,
			})
			if err != nil {
				return err
			}
			return a.emit(res.Transaction, func() {
				tx := res.Transaction
				a.out.Success("sent %d moedas to %s", tx.Amount, firstNonEmpty(tx.StudentName, tx.StudentID))
				if res.Professor != nil {
					a.out.Info("your balance: %d moedas", res.Professor.CoinBalance)
				}
				if res.ReconcileErr != nil {
					a.out.Warning("balances may be stale: %v", res.ReconcileErr)
				}
			})
		},
	}
	cmd.Flags().StringVarP(&reason, "reason", "m", "", "why the student earned the coins")
	return cmd
}

func newAdvantagesCmd(a *app) *cobra.Command {
	var (
		affordable bool
		company    string
	)
	cmd := &cobra.Command{
		Use:   "advantages",
		Short: "List advantages open for redemption",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var (
				list []moeda.Advantage
				err  error
			)
			switch {
			case company != "":
				list, err = a.moeda.CompanyAdvantages(ctx, company)
			case affordable:
				p, perr := a.profile(moeda.RoleStudent)
				if perr != nil {
					return perr
				}
				s, perr := a.ledger.RefreshStudent(ctx, p.ID)
				if perr != nil {
					return perr
				}
				list, err = a.moeda.ListAffordableAdvantages(ctx, s.CoinBalance)
			default:
				list, err = a.moeda.ListAvailableAdvantages(ctx)
			}
			if err != nil {
				return err
			}
			a.ledger.View().PutAdvantages(list)
			return a.emit(list, func() { a.advantageTable(list) })
		},
	}
	cmd.Flags().BoolVar(&affordable, "affordable", false, "only what your balance covers (students)")
	cmd.Flags().StringVar(&company, "company", "", "every advantage of a company, active or not")
	return cmd
}

func (a *app) advantageTable(list []moeda.Advantage) {
	rows := make([][]string, 0, len(list))
	for _, adv := range list {
		rows = append(rows, []string{
			adv.ID,
			adv.Title,
			adv.CompanyName,
			strconv.FormatInt(adv.CoinCost, 10),
			fmt.Sprintf("%d/%d", adv.CurrentRedemptions, adv.MaxRedemptions),
			strconv.FormatBool(adv.IsActive),
		})
	}
	a.out.Table([]string{"ID", "TITLE", "COMPANY", "COST", "REDEEMED", "ACTIVE"}, rows)
}

// newAdvantageCmd groups the company-side advantage management commands.
func newAdvantageCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "advantage",
		Short: "Manage your company's advantages",
	}

	var (
		title, description, photo string
		cost                      int64
		maxRedemptions            int
		active                    bool
	)
	input := func(c *cobra.Command) moeda.AdvantageInput {
		var in moeda.AdvantageInput
		f := c.Flags()
		if f.Changed("title") {
			in.Title = &title
		}
		if f.Changed("description") {
			in.Description = &description
		}
		if f.Changed("photo") {
			in.PhotoURL = &photo
		}
		if f.Changed("cost") {
			in.CoinCost = &cost
		}
		if f.Changed("max") {
			in.MaxRedemptions = &maxRedemptions
		}
		if f.Changed("active") {
			in.IsActive = &active
		}
		return in
	}
	addFlags := func(c *cobra.Command) {
		f := c.Flags()
		f.StringVar(&title, "title", "", "title")
		f.StringVar(&description, "description", "", "description")
		f.StringVar(&photo, "photo", "", "photo URL")
		f.Int64Var(&cost, "cost", 0, "price in coins")
		f.IntVar(&maxRedemptions, "max", 0, "maximum number of redemptions")
		f.BoolVar(&active, "active", true, "open for redemption")
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Offer a new advantage",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			p, err := a.profile(moeda.RoleCompany)
			if err != nil {
				return err
			}
			adv, err := a.moeda.CreateAdvantage(c.Context(), p.ID, input(c))
			if err != nil {
				return err
			}
			return a.emit(adv, func() { a.out.Success("advantage %s created", adv.ID) })
		},
	}
	addFlags(create)

	update := &cobra.Command{
		Use:   "update ID",
		Short: "Change some fields of an advantage",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			if _, err := a.profile(moeda.RoleCompany); err != nil {
				return err
			}
			adv, err := a.moeda.UpdateAdvantage(c.Context(), args[0], input(c))
			if err != nil {
				return err
			}
			return a.emit(adv, func() { a.out.Success("advantage %s updated", adv.ID) })
		},
	}
	addFlags(update)

	remove := &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Withdraw an advantage",
		Args:    cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			if _, err := a.profile(moeda.RoleCompany); err != nil {
				return err
			}
			if err := a.moeda.DeleteAdvantage(c.Context(), args[0]); err != nil {
				return err
			}
			a.out.Success("advantage %s deleted", args[0])
			return nil
		},
	}

	cmd.AddCommand(create, update, remove)
	return cmd
}

func newRedeemCmd(a *app) *cobra.Command {
	var opts ledger.RedeemOptions
	cmd := &cobra.Command{
		Use:   "redeem ADVANTAGE_ID",
		Short: "Spend coins on an advantage and get a coupon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.profile(moeda.RoleStudent)
			if err != nil {
				return err
			}
			if opts.CheckBalance && !opts.Force {
				if _, err := a.ledger.RefreshStudent(cmd.Context(), p.ID); err != nil {
					return err
				}
			}
			res, err := a.ledger.RedeemAdvantage(cmd.Context(), p.ID, args[0], opts)
			if err != nil {
				return err
			}
			return a.emit(res.Redemption, func() {
				red := res.Redemption
				a.out.Success("redeemed %s for %d moedas", firstNonEmpty(red.AdvantageTitle, red.AdvantageID), red.CoinCost)
				a.out.Info("coupon: %s", a.out.Colorize(red.CouponCode, cli.ColorBold))
				if res.Student != nil {
					a.out.Info("your balance: %d moedas", res.Student.CoinBalance)
				}
				if res.ReconcileErr != nil {
					a.out.Warning("balances may be stale: %v", res.ReconcileErr)
				}
			})
		},
	}
	cmd.Flags().BoolVar(&opts.CheckBalance, "check-balance", false, "refuse locally when your balance is too low")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "skip local checks and let the server decide")
	return cmd
}

func newHistoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show your transactions and redemptions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.profile(moeda.RoleStudent, moeda.RoleProfessor, moeda.RoleCompany)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			switch moeda.Role(p.Role) {
			case moeda.RoleProfessor:
				txs, err := a.moeda.ProfessorTransactions(ctx, p.ID)
				if err != nil {
					return err
				}
				return a.emit(txs, func() { a.transactionTable(txs, false) })
			case moeda.RoleStudent:
				txs, err := a.moeda.StudentTransactions(ctx, p.ID)
				if err != nil {
					return err
				}
				reds, err := a.moeda.StudentRedemptions(ctx, p.ID)
				if err != nil {
					return err
				}
				out := struct {
					Transactions []moeda.Transaction `json:"transactions"`
					Redemptions  []moeda.Redemption  `json:"redemptions"`
				}{txs, reds}
				return a.emit(out, func() {
					a.transactionTable(txs, true)
					fmt.Fprintln(a.out.Writer())
					a.redemptionTable(reds)
				})
			default:
				reds, err := a.moeda.CompanyRedemptions(ctx, p.ID)
				if err != nil {
					return err
				}
				return a.emit(reds, func() { a.redemptionTable(reds) })
			}
		},
	}
}

func (a *app) transactionTable(txs []moeda.Transaction, received bool) {
	rows := make([][]string, 0, len(txs))
	for _, tx := range txs {
		who := firstNonEmpty(tx.StudentName, tx.StudentID)
		if received {
			who = firstNonEmpty(tx.ProfessorName, tx.ProfessorID)
		}
		rows = append(rows, []string{tx.CreatedAt.Local().Format(time.DateTime), who, strconv.FormatInt(tx.Amount, 10), tx.Reason})
	}
	header := "TO"
	if received {
		header = "FROM"
	}
	a.out.Table([]string{"DATE", header, "AMOUNT", "REASON"}, rows)
}

func (a *app) redemptionTable(reds []moeda.Redemption) {
	rows := make([][]string, 0, len(reds))
	for _, r := range reds {
		rows = append(rows, []string{
			r.CreatedAt.Local().Format(time.DateTime),
			firstNonEmpty(r.AdvantageTitle, r.AdvantageID),
			r.StudentName,
			strconv.FormatInt(r.CoinCost, 10),
			r.CouponCode,
		})
	}
	a.out.Table([]string{"DATE", "ADVANTAGE", "STUDENT", "COST", "COUPON"}, rows)
}

func newCouponCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "coupon CODE",
		Short: "Look up a redemption by its coupon code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			red, err := a.moeda.GetRedemptionByCoupon(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.emit(red, func() { a.redemptionTable([]moeda.Redemption{*red}) })
		},
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
