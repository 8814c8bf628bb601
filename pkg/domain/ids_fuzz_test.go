package domain

import "testing"

// FuzzParseUserID checks parsing never panics and valid IDs round-trip.
func FuzzParseUserID(f *testing.F) {
	f.Add("")
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("not-a-uuid")
	f.Add(string([]byte{0x00, 0x01, 0x02}))

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseUserID(input)
		if err != nil {
			return
		}
		roundTrip, err := ParseUserID(id.String())
		if err != nil {
			t.Errorf("valid ID failed round-trip: %v", err)
		}
		if roundTrip != id {
			t.Error("round-trip changed ID value")
		}
	})
}

// FuzzResolveRole checks the resolver is total: every input maps to a known
// role equal to the input, or to RoleInvalid.
func FuzzResolveRole(f *testing.F) {
	f.Add("dealership")
	f.Add("salesperson")
	f.Add("manager")
	f.Add("")

	f.Fuzz(func(t *testing.T, input string) {
		role := ResolveRole(input)
		if role.Valid() && string(role) != input {
			t.Errorf("resolved %q to different role %q", input, role)
		}
		if !role.Valid() && role != RoleInvalid {
			t.Errorf("invalid input %q produced non-sentinel %q", input, role)
		}
	})
}
