package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func whoamiCmd(deps func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := deps()
			out := cmd.OutOrStdout()
			if _, ok := a.session.Token(); !ok {
				fmt.Fprintln(out, "Not signed in.")
				return nil
			}
			me, err := a.api.Me(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s (%s)\n", me.ID, me.Role)
			return nil
		},
	}
}
