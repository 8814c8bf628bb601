package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func logoutCmd(deps func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the token and clear the local session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := deps()
			ctx := cmd.Context()
			if _, ok := a.session.Token(); ok {
				if err := a.api.Logout(ctx); err != nil {
					a.logger.WarnContext(ctx, "remote logout failed; clearing local session anyway", "error", err)
				}
			}
			if err := a.session.ClearToken(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}
