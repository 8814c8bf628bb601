// Package models holds the account server's records and request shapes.
package models

import (
	"strings"
	"time"

	"deales/pkg/domain"
	dErrors "deales/pkg/domain-errors"
)

// User is a registered account. Email is unique and stored lower-cased.
type User struct {
	ID           domain.UserID
	Email        string
	Role         domain.Role
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
}

type Dealership struct {
	ID                  domain.DealershipID
	OwnerUserID         domain.UserID
	LegalName           string
	OperatingName       string
	BusinessType        string
	Province            string
	DealerLicenseNumber string
	IssuingAuthority    string
	PrimaryContactName  string
	Phone               string
	Website             string
	CreatedAt           time.Time
}

// Location is a dealership's physical site. The one submitted at creation is
// the primary location.
type Location struct {
	StreetAddress string `json:"street_address"`
	City          string `json:"city"`
	Province      string `json:"province"`
	PostalCode    string `json:"postal_code"`
	Timezone      string `json:"timezone"`
}

func (l *Location) normalize() {
	l.StreetAddress = strings.TrimSpace(l.StreetAddress)
	l.City = strings.TrimSpace(l.City)
	l.Province = strings.TrimSpace(l.Province)
	l.PostalCode = strings.ToUpper(strings.TrimSpace(l.PostalCode))
	l.Timezone = strings.TrimSpace(l.Timezone)
}

// SalespersonProfile is 1:1 with a salesperson user and replaced on upsert.
type SalespersonProfile struct {
	UserID           domain.UserID
	FullName         string
	Province         string
	IssuingAuthority string
	LicenseNumber    string
	LicenseExpiry    string
	UpdatedAt        time.Time
}

type MembershipStatus string

const (
	MembershipPending  MembershipStatus = "pending"
	MembershipActive   MembershipStatus = "active"
	MembershipCanceled MembershipStatus = "canceled"
)

// Membership links a salesperson to a dealership.
type Membership struct {
	SalespersonUserID domain.UserID
	DealershipID      domain.DealershipID
	DealershipName    string
	Status            MembershipStatus
	CreatedAt         time.Time
}

// -----------------------------------------------------------------------------
// Requests
// -----------------------------------------------------------------------------

// Credentials is the body of both register and login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (c *Credentials) Normalize() {
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Role = strings.TrimSpace(c.Role)
}

func (c *Credentials) Validate() error {
	if c.Email == "" || c.Password == "" || c.Role == "" {
		return dErrors.New(dErrors.CodeValidation, "Email, password, and role are required")
	}
	if !domain.ResolveRole(c.Role).Valid() {
		return dErrors.New(dErrors.CodeValidation, "Invalid role")
	}
	return nil
}

type CreateDealershipRequest struct {
	LegalName           string    `json:"legal_name"`
	OperatingName       string    `json:"operating_name"`
	BusinessType        string    `json:"business_type"`
	Province            string    `json:"province"`
	DealerLicenseNumber string    `json:"dealer_license_number"`
	IssuingAuthority    string    `json:"issuing_authority"`
	PrimaryContactName  string    `json:"primary_contact_name"`
	Phone               string    `json:"phone"`
	Website             string    `json:"website"`
	Location            *Location `json:"location,omitempty"`
}

func (r *CreateDealershipRequest) Normalize() {
	r.LegalName = strings.TrimSpace(r.LegalName)
	r.OperatingName = strings.TrimSpace(r.OperatingName)
	r.BusinessType = strings.TrimSpace(r.BusinessType)
	r.Province = strings.TrimSpace(r.Province)
	r.DealerLicenseNumber = strings.TrimSpace(r.DealerLicenseNumber)
	r.IssuingAuthority = strings.TrimSpace(r.IssuingAuthority)
	r.PrimaryContactName = strings.TrimSpace(r.PrimaryContactName)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Website = strings.TrimSpace(r.Website)
	if r.Location != nil {
		r.Location.normalize()
	}
}

func (r *CreateDealershipRequest) Validate() error {
	if r.LegalName == "" || r.Province == "" || r.DealerLicenseNumber == "" {
		return dErrors.New(dErrors.CodeValidation, "legal_name, province, dealer_license_number are required")
	}
	if l := r.Location; l != nil {
		if l.StreetAddress == "" || l.City == "" || l.Province == "" || l.PostalCode == "" || l.Timezone == "" {
			return dErrors.New(dErrors.CodeValidation, "location requires street_address, city, province, postal_code, timezone")
		}
	}
	return nil
}

type SalespersonProfileRequest struct {
	FullName         string `json:"full_name"`
	Province         string `json:"province"`
	IssuingAuthority string `json:"issuing_authority"`
	LicenseNumber    string `json:"license_number"`
	LicenseExpiry    string `json:"license_expiry"`
}

func (r *SalespersonProfileRequest) Normalize() {
	r.FullName = strings.TrimSpace(r.FullName)
	r.Province = strings.TrimSpace(r.Province)
	r.IssuingAuthority = strings.TrimSpace(r.IssuingAuthority)
	r.LicenseNumber = strings.TrimSpace(r.LicenseNumber)
	r.LicenseExpiry = strings.TrimSpace(r.LicenseExpiry)
}

func (r *SalespersonProfileRequest) Validate() error {
	if r.FullName == "" || r.Province == "" {
		return dErrors.New(dErrors.CodeValidation, "full_name and province are required")
	}
	return nil
}

// -----------------------------------------------------------------------------
// Responses
// -----------------------------------------------------------------------------

type MessageResponse struct {
	Message string `json:"message"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type MeResponse struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

type CreateDealershipResponse struct {
	Message      string `json:"message"`
	DealershipID string `json:"dealership_id"`
}

type ProfileBody struct {
	FullName         string `json:"full_name"`
	Province         string `json:"province"`
	IssuingAuthority string `json:"issuing_authority"`
	LicenseNumber    string `json:"license_number"`
	LicenseExpiry    string `json:"license_expiry"`
}

// ProfileResponse carries a null profile when none was saved yet.
type ProfileResponse struct {
	Profile *ProfileBody `json:"profile"`
}

type MembershipBody struct {
	DealershipID   string `json:"dealership_id"`
	DealershipName string `json:"dealership_name,omitempty"`
	Status         string `json:"status"`
}

type MembershipsResponse struct {
	Memberships []MembershipBody `json:"memberships"`
}

func ToProfileResponse(p *SalespersonProfile) ProfileResponse {
	if p == nil {
		return ProfileResponse{}
	}
	return ProfileResponse{Profile: &ProfileBody{
		FullName:         p.FullName,
		Province:         p.Province,
		IssuingAuthority: p.IssuingAuthority,
		LicenseNumber:    p.LicenseNumber,
		LicenseExpiry:    p.LicenseExpiry,
	}}
}

func ToMembershipsResponse(ms []Membership) MembershipsResponse {
	out := MembershipsResponse{Memberships: make([]MembershipBody, 0, len(ms))}
	for _, m := range ms {
		out.Memberships = append(out.Memberships, MembershipBody{
			DealershipID:   m.DealershipID.String(),
			DealershipName: m.DealershipName,
			Status:         string(m.Status),
		})
	}
	return out
}
