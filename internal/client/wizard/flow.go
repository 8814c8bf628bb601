package wizard

import "deales/pkg/domain"

// step is one page of a flow. Required fields gate advancing past it.
type step struct {
	Title    string
	Required []Field
	Optional []Field
}

// flow is the per-role variant: an ordered list of steps plus the defaults a
// fresh wizard starts with. Adding a role or a step is a table edit.
type flow struct {
	Steps    []step
	Defaults map[Field]string
	// KeepAuthorityOnUnknownProvince leaves issuing_authority as-is when the
	// selected province has no mapped authority instead of blanking it.
	KeepAuthorityOnUnknownProvince bool
}

var flows = map[domain.Role]flow{
	domain.RoleSalesperson: {
		Steps: []step{
			{
				Title:    "Account",
				Required: []Field{FieldFullName, FieldProvince, FieldEmail, FieldPassword},
			},
			{
				Title:    "License & Compliance",
				Optional: []Field{FieldIssuingAuthority, FieldLicenseNumber, FieldLicenseExpiry},
			},
		},
	},
	domain.RoleDealership: {
		Steps: []step{
			{
				Title:    "Dealership",
				Required: []Field{FieldLegalName, FieldProvince, FieldDealerLicenseNumber, FieldEmail, FieldPassword},
			},
			{
				Title: "Business Details",
				Optional: []Field{
					FieldOperatingName, FieldBusinessType, FieldIssuingAuthority,
					FieldPrimaryContactName, FieldPhone, FieldWebsite,
				},
			},
			{
				Title:    "Location",
				Required: []Field{FieldStreetAddress, FieldCity, FieldPostalCode, FieldTimezone},
			},
			{
				Title: "Review",
			},
		},
		Defaults: map[Field]string{
			FieldBusinessType: DefaultBusinessType,
			FieldTimezone:     DefaultTimezone,
		},
		KeepAuthorityOnUnknownProvince: true,
	},
}

// MaxStep returns the number of steps for role, or 0 for an unknown role.
func MaxStep(role domain.Role) int {
	return len(flows[role].Steps)
}

// Required returns the required fields for (role, step). Out-of-range steps
// have no requirements.
func Required(role domain.Role, stepNo int) []Field {
	f, ok := flows[role]
	if !ok || stepNo < 1 || stepNo > len(f.Steps) {
		return nil
	}
	return f.Steps[stepNo-1].Required
}

// CanContinue is the step gate: every required field for (role, step) is
// non-empty. Optional fields never affect the result.
func CanContinue(role domain.Role, stepNo int, fields map[Field]string) bool {
	if _, ok := flows[role]; !ok {
		return false
	}
	for _, name := range Required(role, stepNo) {
		if fields[name] == "" {
			return false
		}
	}
	return true
}
