package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func openCmd(deps func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "open <path>",
		Short: "Resolve a client route, following guard redirects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dest := deps().router.Resolve(args[0])
			out := cmd.OutOrStdout()
			if dest.Redirect != "" {
				fmt.Fprintf(out, "redirect %s\n", dest.Redirect)
				return nil
			}
			if dest.Role.Valid() {
				fmt.Fprintf(out, "view %s role=%s\n", dest.View, dest.Role)
				return nil
			}
			fmt.Fprintf(out, "view %s\n", dest.View)
			return nil
		},
	}
}
