package wizard

// Field names the collected inputs. The same name is used for a value
// regardless of role, e.g. both flows collect Province.
type Field string

const (
	FieldEmail    Field = "email"
	FieldPassword Field = "password"
	FieldProvince Field = "province"

	FieldIssuingAuthority Field = "issuing_authority"

	FieldLegalName           Field = "legal_name"
	FieldOperatingName       Field = "operating_name"
	FieldBusinessType        Field = "business_type"
	FieldDealerLicenseNumber Field = "dealer_license_number"
	FieldPrimaryContactName  Field = "primary_contact_name"
	FieldPhone               Field = "phone"
	FieldWebsite             Field = "website"
	FieldStreetAddress       Field = "street_address"
	FieldCity                Field = "city"
	FieldPostalCode          Field = "postal_code"
	FieldTimezone            Field = "timezone"

	FieldFullName      Field = "full_name"
	FieldLicenseNumber Field = "license_number"
	FieldLicenseExpiry Field = "license_expiry"
)

const (
	DefaultBusinessType = "Independent"
	DefaultTimezone     = "America/Vancouver"
)

// Provinces lists the selectable provinces and territories.
var Provinces = []string{
	"British Columbia",
	"Alberta",
	"Saskatchewan",
	"Manitoba",
	"Ontario",
	"Quebec",
	"New Brunswick",
	"Nova Scotia",
	"Prince Edward Island",
	"Newfoundland and Labrador",
	"Yukon",
	"Northwest Territories",
	"Nunavut",
}

// BusinessTypes lists the dealership business types.
var BusinessTypes = []string{"Franchise", "Independent", "Wholesale", "Buy Here Pay Here"}

// Timezones lists the rooftop time zones offered in step 3.
var Timezones = []string{
	"America/Vancouver",
	"America/Edmonton",
	"America/Winnipeg",
	"America/Toronto",
	"America/Halifax",
	"America/St_Johns",
}

var issuingAuthorities = map[string]string{
	"Ontario":          "OMVIC",
	"Alberta":          "AMVIC",
	"British Columbia": "VSA",
}

// IssuingAuthorityFor returns the licensing body for a province, or "".
func IssuingAuthorityFor(province string) string {
	return issuingAuthorities[province]
}

// LicenseLabelFor is the salesperson license prompt for a province.
func LicenseLabelFor(province string) string {
	if ia := IssuingAuthorityFor(province); ia != "" {
		return ia + " Registration Number (if applicable)"
	}
	return "License / Registration Number (if applicable)"
}

// LicenseHintFor explains what to enter for the salesperson license.
func LicenseHintFor(province string) string {
	switch province {
	case "British Columbia":
		return "If you're registered with the Vehicle Sales Authority (VSA), enter your registration number."
	case "Ontario":
		return "If you're registered with OMVIC, enter your registration number."
	case "Alberta":
		return "If you have an AMVIC registration number, enter it."
	default:
		return "Enter your license/registration number if your province requires one."
	}
}
