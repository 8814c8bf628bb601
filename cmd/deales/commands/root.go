package commands

import (
	"context"

	"github.com/spf13/cobra"
)

type rootFlags struct {
	home      string
	ephemeral bool
}

// Execute runs the CLI with ctx as the cancellation source for every
// remote call.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd builds the command tree. The app is constructed lazily in
// PersistentPreRunE so --help never touches the filesystem.
func NewRootCmd() *cobra.Command {
	var (
		flags rootFlags
		a     *app
	)
	deps := func() *app { return a }

	root := &cobra.Command{
		Use:           "deales",
		Short:         "Sign up and sign in to deales as a dealership or salesperson",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			a, err = newApp(cmd.Context(), flags.home, flags.ephemeral, cmd.ErrOrStderr())
			return err
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a == nil {
				return nil
			}
			return a.Close()
		},
	}

	root.PersistentFlags().StringVar(&flags.home, "home", "", "config dir (default $DEALES_HOME or ~/.deales)")
	root.PersistentFlags().BoolVar(&flags.ephemeral, "ephemeral", false, "keep the session in memory only")

	root.AddCommand(
		loginCmd(deps),
		signupCmd(deps),
		logoutCmd(deps),
		whoamiCmd(deps),
		openCmd(deps),
	)
	return root
}
