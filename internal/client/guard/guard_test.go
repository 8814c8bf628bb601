package guard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deales/internal/client/session"
	"deales/internal/client/session/storage"
	"deales/pkg/domain"
)

func newStore(t *testing.T) *session.Store {
	t.Helper()
	st, err := session.New(storage.NewMemory())
	require.NoError(t, err)
	return st
}

func TestGuardPresenceCheck(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	g := New(st)

	assert.False(t, g.Allowed())
	assert.Equal(t, "/", g.Check())

	require.NoError(t, st.SetToken(ctx, "anything-non-empty"))
	assert.True(t, g.Allowed())
	assert.Empty(t, g.Check())

	require.NoError(t, st.ClearToken(ctx))
	assert.Equal(t, "/", g.Check())
}

func TestRouterResolve(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	r := NewRouter(New(st))

	cases := []struct {
		path string
		want Destination
	}{
		{"/", Destination{View: ViewEntry}},
		{"", Destination{View: ViewEntry}},
		{"/login/dealership", Destination{View: ViewLogin, Role: domain.RoleDealership}},
		{"/login/salesperson/", Destination{View: ViewLogin, Role: domain.RoleSalesperson}},
		{"/login/manager", Destination{Redirect: "/"}},
		{"/signup/salesperson", Destination{View: ViewSignup, Role: domain.RoleSalesperson}},
		{"/signup/Dealership", Destination{Redirect: "/"}},
		{"/salesperson/onboarding", Destination{View: ViewSalespersonOnboarding}},
		{"/home", Destination{Redirect: "/"}},
		{"/salesperson/dashboard", Destination{Redirect: "/"}},
		{"/nowhere", Destination{Redirect: "/"}},
		{"/login", Destination{Redirect: "/"}},
	}
	for _, tc := range cases {
		t.Run("anonymous "+tc.path, func(t *testing.T) {
			assert.Equal(t, tc.want, r.Resolve(tc.path))
		})
	}

	require.NoError(t, st.SetToken(ctx, "tok"))
	assert.Equal(t, Destination{View: ViewHome}, r.Resolve("/home"))
	assert.Equal(t, Destination{View: ViewSalespersonDashboard}, r.Resolve("/salesperson/dashboard?tab=1"))
}
