package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Authorization() (string, bool) {
	if s == "" {
		return "", false
	}
	return "Bearer " + string(s), true
}

// swappableToken is read per request, like the session store.
type swappableToken struct{ v atomic.Value }

func (s *swappableToken) Authorization() (string, bool) {
	v, _ := s.v.Load().(string)
	return v, v != ""
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestLogin(t *testing.T) {
	t.Run("returns token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/auth/login", r.URL.Path)
			var in Credentials
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			assert.Equal(t, "dealership", in.Role)
			writeJSON(w, http.StatusOK, map[string]string{"access_token": "tok-1"})
		}))
		defer srv.Close()

		c := New(srv.URL+"/api/", nil)
		tok, err := c.Login(context.Background(), Credentials{Email: "a@b.c", Password: "pw", Role: "dealership"})
		require.NoError(t, err)
		assert.Equal(t, "tok-1", tok)
	})

	t.Run("missing access token is a failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
		}))
		defer srv.Close()

		_, err := New(srv.URL, nil).Login(context.Background(), Credentials{})
		assert.ErrorIs(t, err, ErrMissingToken)
	})

	t.Run("empty success body is a failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		_, err := New(srv.URL, nil).Login(context.Background(), Credentials{})
		assert.ErrorIs(t, err, ErrMissingToken)
	})
}

func TestErrorMessages(t *testing.T) {
	cases := []struct {
		name    string
		body    any
		message string
		code    string
	}{
		{"error field", map[string]string{"error": "Email already registered", "code": "conflict"}, "Email already registered", "conflict"},
		{"message field", map[string]string{"message": "nope"}, "nope", ""},
		{"error wins over message", map[string]string{"error": "first", "message": "second"}, "first", ""},
		{"no message", map[string]int{"status": 1}, "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusConflict, tc.body)
			}))
			defer srv.Close()

			err := New(srv.URL, nil).Register(context.Background(), Credentials{})
			require.Error(t, err)
			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, http.StatusConflict, apiErr.Status)
			assert.Equal(t, tc.code, apiErr.Code)
			assert.Equal(t, http.StatusConflict, StatusOf(err))

			msg, ok := ServerMessage(err)
			assert.Equal(t, tc.message != "", ok)
			assert.Equal(t, tc.message, msg)
		})
	}

	t.Run("non json body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "bad gateway", http.StatusBadGateway)
		}))
		defer srv.Close()

		err := New(srv.URL, nil).Register(context.Background(), Credentials{})
		_, ok := ServerMessage(err)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadGateway, StatusOf(err))
	})
}

func TestAuthorizationReadPerRequest(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Get("Authorization"))
		mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"memberships": []any{}})
	}))
	defer srv.Close()

	tokens := &swappableToken{}
	tokens.v.Store("")
	c := New(srv.URL, tokens)

	_, err := c.Memberships(context.Background())
	require.NoError(t, err)
	tokens.v.Store("Bearer abc")
	_, err = c.Memberships(context.Background())
	require.NoError(t, err)
	tokens.v.Store("")
	_, err = c.Memberships(context.Background())
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"", "Bearer abc", ""}, seen)
}

func TestUnauthorizedHook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "token expired"})
	}))
	defer srv.Close()

	calls := 0
	c := New(srv.URL, staticToken("stale"), WithUnauthorizedHook(func(context.Context) { calls++ }))

	_, err := c.Me(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, calls)

	_, err = c.Login(context.Background(), Credentials{})
	require.Error(t, err)
	assert.Equal(t, 1, calls, "credential failures do not trigger the hook")
}

func TestEndpoints(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /dealership/create", func(w http.ResponseWriter, r *http.Request) {
		var in CreateDealershipRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "Acme Motors", in.LegalName)
		require.NotNil(t, in.Location)
		assert.Equal(t, "Toronto", in.Location.City)
		writeJSON(w, http.StatusCreated, map[string]string{"message": "Dealership created", "dealership_id": "d-1"})
	})
	mux.HandleFunc("GET /salesperson/profile", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"profile": nil})
	})
	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"id": "u-1", "role": "salesperson"})
	})
	mux.HandleFunc("GET /salesperson/memberships", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"memberships": []map[string]string{{"dealership_id": "d-1", "status": "active"}}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx := context.Background()
	c := New(srv.URL, staticToken("t"))

	created, err := c.CreateDealership(ctx, CreateDealershipRequest{
		LegalName: "Acme Motors",
		Location:  &Location{City: "Toronto"},
	})
	require.NoError(t, err)
	assert.Equal(t, "d-1", created.DealershipID)

	profile, err := c.SalespersonProfile(ctx)
	require.NoError(t, err)
	assert.Nil(t, profile)

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, Identity{ID: "u-1", Role: "salesperson"}, me)

	ms, err := c.Memberships(ctx)
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.Equal(t, "active", ms[0].Status)
}

func TestCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := New(srv.URL, nil).Register(ctx, Credentials{})
	assert.ErrorIs(t, err, context.Canceled)
}
