package domain

// Role is the account kind. It decides which registration steps, profile
// record and post-authentication route apply.
type Role string

const (
	// RoleDealership is the organization account.
	RoleDealership Role = "dealership"
	// RoleSalesperson is the individual-professional account.
	RoleSalesperson Role = "salesperson"
	// RoleInvalid is returned by ResolveRole for anything outside the
	// enumeration. Callers redirect to the entry point on it.
	RoleInvalid Role = ""
)

// ResolveRole maps a free-form route parameter to a Role. It never fails:
// unknown input, including the empty string, yields RoleInvalid.
func ResolveRole(raw string) Role {
	switch Role(raw) {
	case RoleDealership:
		return RoleDealership
	case RoleSalesperson:
		return RoleSalesperson
	default:
		return RoleInvalid
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleDealership || r == RoleSalesperson
}

func (r Role) String() string {
	return string(r)
}
