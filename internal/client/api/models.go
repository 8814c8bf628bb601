package api

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

type Identity struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

type Location struct {
	StreetAddress string `json:"street_address"`
	City          string `json:"city"`
	Province      string `json:"province"`
	PostalCode    string `json:"postal_code"`
	Timezone      string `json:"timezone"`
}

type CreateDealershipRequest struct {
	LegalName           string    `json:"legal_name"`
	OperatingName       string    `json:"operating_name,omitempty"`
	BusinessType        string    `json:"business_type"`
	Province            string    `json:"province"`
	DealerLicenseNumber string    `json:"dealer_license_number"`
	IssuingAuthority    string    `json:"issuing_authority,omitempty"`
	PrimaryContactName  string    `json:"primary_contact_name,omitempty"`
	Phone               string    `json:"phone,omitempty"`
	Website             string    `json:"website,omitempty"`
	Location            *Location `json:"location,omitempty"`
}

type CreateDealershipResponse struct {
	Message      string `json:"message"`
	DealershipID string `json:"dealership_id"`
}

type SalespersonProfile struct {
	FullName         string `json:"full_name"`
	Province         string `json:"province"`
	IssuingAuthority string `json:"issuing_authority,omitempty"`
	LicenseNumber    string `json:"license_number,omitempty"`
	LicenseExpiry    string `json:"license_expiry,omitempty"`
}

type profileResponse struct {
	Profile *SalespersonProfile `json:"profile"`
}

type Membership struct {
	DealershipID   string `json:"dealership_id"`
	DealershipName string `json:"dealership_name,omitempty"`
	Status         string `json:"status"`
}

type membershipsResponse struct {
	Memberships []Membership `json:"memberships"`
}

// errorBody is the server's failure envelope. Either field may be set.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
}
