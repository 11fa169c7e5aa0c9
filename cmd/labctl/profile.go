package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/AulusHZP/LabProjetoDeSoftware/internal/domain/aluguel"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/domain/moeda"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/session"
)

var errNothingToUpdate = errors.New("nenhum campo informado para atualizar")

func newProfileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Edit or delete the signed-in account",
	}
	cmd.AddCommand(newProfileUpdateCmd(a), newProfileDeleteCmd(a))
	return cmd
}

// stringFlag returns the flag's value when it was given on the command line.
func stringFlag(c *cobra.Command, name string) *string {
	if !c.Flags().Changed(name) {
		return nil
	}
	v, _ := c.Flags().GetString(name)
	return &v
}

func newProfileUpdateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change profile fields; the session is rewritten from the server's answer",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			cur, err := a.profile()
			if err != nil {
				return err
			}

			var fetch session.Fetcher
			switch {
			case cur.Role == string(moeda.RoleStudent):
				in := moeda.StudentUpdate{
					Name:     stringFlag(c, "name"),
					Email:    stringFlag(c, "email"),
					Address:  stringFlag(c, "address"),
					Course:   stringFlag(c, "course"),
					Password: stringFlag(c, "password"),
				}
				if in == (moeda.StudentUpdate{}) {
					return errNothingToUpdate
				}
				fetch = func(ctx context.Context, p session.Profile) (*session.Profile, error) {
					if _, err := a.moeda.UpdateStudent(ctx, p.ID, in); err != nil {
						return nil, err
					}
					return a.fetchProfile(ctx, p)
				}
			case !isMoedaRole(cur.Role):
				if c.Flags().Changed("address") || c.Flags().Changed("course") {
					return errWrongRole
				}
				in := aluguel.UserUpdate{
					Nome:  stringFlag(c, "name"),
					Email: stringFlag(c, "email"),
					Senha: stringFlag(c, "password"),
				}
				if in == (aluguel.UserUpdate{}) {
					return errNothingToUpdate
				}
				fetch = func(ctx context.Context, p session.Profile) (*session.Profile, error) {
					u, err := a.aluguel.UpdateUser(ctx, p.ID, in)
					if err != nil {
						return nil, err
					}
					return session.FromAluguelUser(u), nil
				}
			default:
				return errWrongRole
			}

			p, err := a.sess.Refresh(c.Context(), fetch)
			if err != nil {
				return err
			}
			shown := *p
			shown.Token = ""
			return a.emit(shown, func() { a.out.Success("profile updated: %s <%s>", p.Name, p.Email) })
		},
	}
	f := cmd.Flags()
	f.String("name", "", "full name")
	f.String("email", "", "email address")
	f.String("address", "", "postal address (students)")
	f.String("course", "", "course (students)")
	f.String("password", "", "new password")
	return cmd
}

func newProfileDeleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete the signed-in account and sign out",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			p, err := a.profile()
			if err != nil {
				return err
			}
			if !yes {
				return errors.New("confirme a exclusão com --yes")
			}
			switch {
			case p.Role == string(moeda.RoleStudent):
				err = a.moeda.DeleteStudent(c.Context(), p.ID)
			case p.Role == string(moeda.RoleProfessor):
				err = a.moeda.DeleteProfessor(c.Context(), p.ID)
			case !isMoedaRole(p.Role):
				err = a.aluguel.DeleteUser(c.Context(), p.ID)
			default:
				return errWrongRole
			}
			if err != nil {
				return err
			}
			// The server already revoked the token along with the account.
			if err := a.sess.Logout(c.Context(), nil); err != nil {
				return err
			}
			a.out.Success("account %s deleted", p.ID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the deletion")
	return cmd
}
