package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"deales/internal/client/registration"
	"deales/internal/client/wizard"
	"deales/pkg/domain"
)

func signupCmd(deps func() *app) *cobra.Command {
	var (
		fresh bool
		yes   bool
		sets  []string
	)
	cmd := &cobra.Command{
		Use:   "signup <dealership|salesperson>",
		Short: "Run the registration wizard",
		Long: "Run the registration wizard. Press Enter to keep a shown value and type " + backToken +
			" to return to the previous step. Progress is saved as a draft after every step.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := deps()
			out := cmd.OutOrStdout()
			role := domain.ResolveRole(args[0])
			if !role.Valid() {
				fmt.Fprintf(out, "Unknown account type %q.\nNext: %s\n", args[0], registration.RouteEntry)
				return nil
			}

			w, err := loadWizard(a, role, fresh)
			if err != nil {
				return err
			}
			for _, kv := range sets {
				name, value, ok := strings.Cut(kv, "=")
				if !ok {
					return fmt.Errorf("--set expects field=value, got %q", kv)
				}
				w.SetField(wizard.Field(name), value)
			}

			p := newPrompter(cmd.InOrStdin(), out)
			exited, err := runWizard(p, w, yes)
			if saveErr := a.drafts.Save(w); saveErr != nil {
				a.logger.WarnContext(cmd.Context(), "failed to save signup draft", "error", saveErr)
			}
			if err != nil {
				return err
			}
			if exited {
				fmt.Fprintf(out, "Signup paused.\nNext: %s\n", registration.RouteEntry)
				return nil
			}

			for _, name := range w.MissingAll() {
				if err := p.askField(w, name, true); err != nil {
					if errors.Is(err, errBack) {
						fmt.Fprintf(out, "Signup paused.\nNext: %s\n", registration.RouteEntry)
						return nil
					}
					return err
				}
			}
			if missing := w.MissingAll(); len(missing) > 0 {
				return fmt.Errorf("missing required fields: %s", describeMissing(missing))
			}
			sub, err := w.Submit()
			if err != nil {
				return err
			}
			res, err := a.flows.Register(cmd.Context(), sub)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), registration.Message(err))
				return err
			}
			if err := a.drafts.Discard(role); err != nil {
				a.logger.WarnContext(cmd.Context(), "failed to discard signup draft", "error", err)
			}
			fmt.Fprintf(out, "Account created.\nNext: %s\n", res.Route)
			return nil
		},
	}
	cmd.Flags().BoolVar(&fresh, "fresh", false, "ignore any saved draft")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "submit without confirmation on the review step")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "prefill a field, e.g. --set legal_name=\"Acme Motors\"")
	return cmd
}

func loadWizard(a *app, role domain.Role, fresh bool) (*wizard.Wizard, error) {
	if fresh {
		if err := a.drafts.Discard(role); err != nil {
			return nil, err
		}
		return wizard.New(role)
	}
	w, ok, err := a.drafts.Load(role)
	if err != nil {
		return nil, err
	}
	if ok {
		return w, nil
	}
	return wizard.New(role)
}

// runWizard walks the steps until the final one is confirmed. exited is true
// when the user backed out of step 1.
func runWizard(p *prompter, w *wizard.Wizard, yes bool) (exited bool, err error) {
	for {
		fmt.Fprintf(p.out, "\nStep %d of %d: %s\n", w.Step(), w.MaxStep(), w.Title())

		back, err := askStep(p, w)
		if err != nil {
			return false, err
		}
		if back {
			if w.GoBack() {
				return true, nil
			}
			continue
		}

		if missing := w.Missing(); len(missing) > 0 {
			fmt.Fprintf(p.out, "Please fill in: %s\n", describeMissing(missing))
			continue
		}
		if !w.IsLast() {
			if err := w.GoNext(); err != nil {
				return false, err
			}
			continue
		}

		if yes {
			return false, nil
		}
		printReview(p.out, w)
		ok, err := p.confirm("Create account?")
		if err != nil {
			return false, err
		}
		if ok {
			return false, nil
		}
		if w.GoBack() {
			return true, nil
		}
	}
}

func askStep(p *prompter, w *wizard.Wizard) (back bool, err error) {
	required, optional := w.Fields()
	for _, name := range required {
		if err := p.askField(w, name, true); err != nil {
			return errors.Is(err, errBack), ignoreBack(err)
		}
	}
	for _, name := range optional {
		if err := p.askField(w, name, false); err != nil {
			return errors.Is(err, errBack), ignoreBack(err)
		}
	}
	return false, nil
}

func ignoreBack(err error) error {
	if errors.Is(err, errBack) {
		return nil
	}
	return err
}

func printReview(out io.Writer, w *wizard.Wizard) {
	snap := w.Snapshot()
	fmt.Fprintln(out, "Review:")
	for _, name := range reviewOrder {
		if v := snap.Fields[string(name)]; v != "" {
			fmt.Fprintf(out, "  %-24s %s\n", fieldLabels[name], v)
		}
	}
}

var reviewOrder = []wizard.Field{
	wizard.FieldLegalName, wizard.FieldOperatingName, wizard.FieldFullName,
	wizard.FieldBusinessType, wizard.FieldProvince, wizard.FieldIssuingAuthority,
	wizard.FieldDealerLicenseNumber, wizard.FieldLicenseNumber, wizard.FieldLicenseExpiry,
	wizard.FieldEmail, wizard.FieldPrimaryContactName, wizard.FieldPhone, wizard.FieldWebsite,
	wizard.FieldStreetAddress, wizard.FieldCity, wizard.FieldPostalCode, wizard.FieldTimezone,
}
