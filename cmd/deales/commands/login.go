package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"deales/internal/client/registration"
	"deales/pkg/domain"
)

func loginCmd(deps func() *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login <dealership|salesperson>",
		Short: "Sign in and print the destination route",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := deps()
			role := domain.ResolveRole(args[0])
			out := cmd.OutOrStdout()

			if role.Valid() {
				p := newPrompter(cmd.InOrStdin(), out)
				var err error
				if email == "" {
					if email, err = p.line("Email", ""); err != nil {
						return err
					}
				}
				if password == "" {
					if password, err = p.line("Password", ""); err != nil {
						return err
					}
				}
			}

			res, err := a.flows.Login(cmd.Context(), role, email, password)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), registration.Message(err))
				return err
			}
			if res.Route == registration.RouteEntry {
				fmt.Fprintf(out, "Unknown account type %q.\n", args[0])
			} else {
				fmt.Fprintln(out, "Signed in.")
			}
			fmt.Fprintf(out, "Next: %s\n", res.Route)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when empty)")
	return cmd
}
