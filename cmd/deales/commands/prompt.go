package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"deales/internal/client/wizard"
)

// backToken typed at any prompt steps the wizard back.
const backToken = "<"

var errBack = errors.New("back")

// prompter reads answers line by line from the command's stdin.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

func (p *prompter) line(label, current string) (string, error) {
	if current != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, current)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}
	raw, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && raw != "") {
		return "", err
	}
	raw = strings.TrimSpace(raw)
	if raw == backToken {
		return "", errBack
	}
	if raw == "" {
		return current, nil
	}
	return raw, nil
}

// choose accepts either a 1-based index into options or free text.
func (p *prompter) choose(label, current string, options []string) (string, error) {
	for i, o := range options {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, o)
	}
	v, err := p.line(label, current)
	if err != nil {
		return "", err
	}
	if n, convErr := strconv.Atoi(v); convErr == nil && n >= 1 && n <= len(options) {
		return options[n-1], nil
	}
	return v, nil
}

func (p *prompter) confirm(label string) (bool, error) {
	v, err := p.line(label+" (y/N)", "")
	if err != nil {
		return false, err
	}
	return strings.EqualFold(v, "y") || strings.EqualFold(v, "yes"), nil
}

var fieldLabels = map[wizard.Field]string{
	wizard.FieldEmail:               "Email",
	wizard.FieldPassword:            "Password",
	wizard.FieldProvince:            "Province",
	wizard.FieldIssuingAuthority:    "Issuing authority",
	wizard.FieldLegalName:           "Legal business name",
	wizard.FieldOperatingName:       "Operating name",
	wizard.FieldBusinessType:        "Business type",
	wizard.FieldDealerLicenseNumber: "Dealer license number",
	wizard.FieldPrimaryContactName:  "Primary contact name",
	wizard.FieldPhone:               "Phone",
	wizard.FieldWebsite:             "Website",
	wizard.FieldStreetAddress:       "Street address",
	wizard.FieldCity:                "City",
	wizard.FieldPostalCode:          "Postal code",
	wizard.FieldTimezone:            "Time zone",
	wizard.FieldFullName:            "Full name",
	wizard.FieldLicenseNumber:       "License number",
	wizard.FieldLicenseExpiry:       "License expiry (YYYY-MM-DD)",
}

func fieldOptions(name wizard.Field) []string {
	switch name {
	case wizard.FieldProvince:
		return wizard.Provinces
	case wizard.FieldBusinessType:
		return wizard.BusinessTypes
	case wizard.FieldTimezone:
		return wizard.Timezones
	default:
		return nil
	}
}

// askField prompts for one field, using the province-specific label for the
// salesperson license number.
func (p *prompter) askField(w *wizard.Wizard, name wizard.Field, required bool) error {
	label := fieldLabels[name]
	if name == wizard.FieldLicenseNumber {
		province := w.Value(wizard.FieldProvince)
		fmt.Fprintln(p.out, wizard.LicenseHintFor(province))
		label = wizard.LicenseLabelFor(province)
	}
	if required {
		label += " *"
	}
	current := w.Value(name)
	if name == wizard.FieldPassword && current != "" {
		current = "********"
	}

	var (
		v   string
		err error
	)
	if opts := fieldOptions(name); len(opts) > 0 {
		v, err = p.choose(label, current, opts)
	} else {
		v, err = p.line(label, current)
	}
	if err != nil {
		return err
	}
	if name == wizard.FieldPassword && v == "********" {
		return nil
	}
	if v != w.Value(name) {
		w.SetField(name, v)
	}
	return nil
}

func describeMissing(missing []wizard.Field) string {
	labels := make([]string, 0, len(missing))
	for _, m := range missing {
		labels = append(labels, fieldLabels[m])
	}
	slices.Sort(labels)
	return strings.Join(labels, ", ")
}
