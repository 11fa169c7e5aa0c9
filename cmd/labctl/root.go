package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AulusHZP/LabProjetoDeSoftware/internal/httputil"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "MoedaEstudantil and car rental from the terminal",
		Long: `labctl talks to the MoedaEstudantil API (merit coins, advantages and
coupons) and to the car rental API. Sign in once with "labctl login"; the
profile is kept in a session file until "labctl logout".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}
	root.PersistentFlags().BoolVar(&a.asJSON, "json", false, "print JSON instead of tables")

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newRegisterCmd(a),
		newInstitutionsCmd(a),
		newStudentsCmd(a),
		newSendCoinsCmd(a),
		newAdvantagesCmd(a),
		newAdvantageCmd(a),
		newRedeemCmd(a),
		newHistoryCmd(a),
		newCouponCmd(a),
		newProfileCmd(a),
		newAluguelCmd(a),
	)
	return root
}

// run executes args and returns the process exit code.
func run(ctx context.Context, a *app, args []string) int {
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(a.out.Writer())
	err := root.ExecuteContext(ctx)
	a.close()
	if err != nil {
		a.out.Error("%s", describe(err))
		return 1
	}
	return 0
}

func describe(err error) string {
	if code := httputil.StatusCode(err); code != 0 {
		return fmt.Sprintf("%s (HTTP %d)", err, code)
	}
	return err.Error()
}
