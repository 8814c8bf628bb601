package handler_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"deales/internal/account/handler"
	"deales/internal/account/models"
	"deales/internal/account/service"
	"deales/internal/account/store"
	"deales/internal/auth/store/revocation"
	httpapi "deales/internal/http"
	jwttoken "deales/internal/jwt_token"
	"deales/internal/platform/metrics"
	"deales/internal/ratelimit/authlockout"
	"deales/pkg/testutil"
)

// =============================================================================
// Account Handler Test Suite
// =============================================================================
// Justification: the client depends on exact status codes, the error
// envelope and the response shapes. These run the real service over memory
// stores behind the production router.

type HandlerSuite struct {
	suite.Suite
	store  *store.InMemoryStore
	router http.Handler
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.store = store.NewInMemoryStore()
	svc, err := service.New(s.store,
		jwttoken.NewJWTService("test-key", "deales", "deales-client"),
		revocation.NewMemoryTRL(time.Now),
		service.WithLogger(logger),
	)
	s.Require().NoError(err)

	h := handler.New(svc, logger)
	s.router = httpapi.NewRouter(httpapi.Config{
		Logger:  logger,
		Metrics: metrics.New(prometheus.NewRegistry()),
	}, h)
}

func (s *HandlerSuite) do(req *http.Request) int {
	return testutil.DoRequest(s.router, req).Code
}

func (s *HandlerSuite) register(email, role string) {
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/auth/register",
		models.Credentials{Email: email, Password: "pw", Role: role}))
	s.Require().Equal(http.StatusCreated, rr.Code)
}

func (s *HandlerSuite) login(email, role string) string {
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/auth/login",
		models.Credentials{Email: email, Password: "pw", Role: role}))
	s.Require().Equal(http.StatusOK, rr.Code)
	return testutil.UnmarshalResponse[models.TokenResponse](s.T(), rr).AccessToken
}

func (s *HandlerSuite) authed(method, path, token string, body any) *http.Request {
	return testutil.WithBearer(testutil.NewJSONRequest(s.T(), method, path, body), token)
}

// =============================================================================
// Auth endpoints
// =============================================================================

func (s *HandlerSuite) TestRegister() {
	s.Run("created", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/auth/register",
			models.Credentials{Email: "owner@lot.ca", Password: "pw", Role: "dealership"}))
		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
		testutil.AssertJSONContains(s.T(), rr, "message", "User created")
	})

	s.Run("duplicate email", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/auth/register",
			models.Credentials{Email: "owner@lot.ca", Password: "pw", Role: "salesperson"}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "conflict", "Email already registered")
	})

	s.Run("missing fields", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/auth/register",
			models.Credentials{Email: "x@lot.ca"}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error", "Email, password, and role are required")
	})

	s.Run("malformed body", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequestWithBody(s.T(), http.MethodPost, "/api/auth/register", "{"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request", "invalid request body")
	})
}

func (s *HandlerSuite) TestLoginLockout() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	lockout, err := authlockout.New(authlockout.NewInMemoryStore(time.Now),
		authlockout.WithConfig(authlockout.Config{AttemptsPerWindow: 2, Window: time.Hour}))
	s.Require().NoError(err)
	svc, err := service.New(s.store,
		jwttoken.NewJWTService("test-key", "deales", "deales-client"),
		revocation.NewMemoryTRL(time.Now),
		service.WithLogger(logger),
		service.WithLoginLockout(lockout),
	)
	s.Require().NoError(err)
	router := httpapi.NewRouter(httpapi.Config{Logger: logger}, handler.New(svc, logger))
	s.register("locked@lot.ca", "salesperson")

	login := func(pw string) *httptest.ResponseRecorder {
		return testutil.DoRequest(router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/auth/login",
			models.Credentials{Email: "locked@lot.ca", Password: pw, Role: "salesperson"}))
	}
	testutil.AssertStatus(s.T(), login("nope"), http.StatusUnauthorized)
	testutil.AssertStatus(s.T(), login("nope"), http.StatusUnauthorized)
	testutil.AssertStatusAndError(s.T(), login("pw"), http.StatusTooManyRequests,
		"rate_limited", "Too many failed login attempts. Please try again later.")
}

func (s *HandlerSuite) TestLogin() {
	s.register("sam@lot.ca", "salesperson")

	s.Run("wrong account type", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/auth/login",
			models.Credentials{Email: "sam@lot.ca", Password: "pw", Role: "dealership"}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, "forbidden", "Incorrect account type")
	})

	s.Run("bad password", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/auth/login",
			models.Credentials{Email: "sam@lot.ca", Password: "nope", Role: "salesperson"}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized", "Invalid credentials")
	})

	s.Run("token issued", func() {
		s.NotEmpty(s.login("sam@lot.ca", "salesperson"))
	})
}

func (s *HandlerSuite) TestMeAndLogout() {
	s.register("owner@lot.ca", "dealership")
	token := s.login("owner@lot.ca", "dealership")

	s.Run("me without token", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/api/auth/me", nil))
		testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
	})

	s.Run("me returns role", func() {
		rr := testutil.DoRequest(s.router, s.authed(http.MethodGet, "/api/auth/me", token, nil))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		me := testutil.UnmarshalResponse[models.MeResponse](s.T(), rr)
		s.Equal("dealership", me.Role)
		s.NotEmpty(me.ID)
	})

	s.Run("logout revokes the token", func() {
		s.Equal(http.StatusNoContent, s.do(s.authed(http.MethodPost, "/api/auth/logout", token, nil)))
		rr := testutil.DoRequest(s.router, s.authed(http.MethodGet, "/api/auth/me", token, nil))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized", "token has been revoked")
	})
}

// =============================================================================
// Record endpoints
// =============================================================================

func (s *HandlerSuite) TestCreateDealership() {
	s.register("owner@lot.ca", "dealership")
	s.register("sam@lot.ca", "salesperson")
	owner := s.login("owner@lot.ca", "dealership")
	seller := s.login("sam@lot.ca", "salesperson")

	body := models.CreateDealershipRequest{
		LegalName:           "Lot Ltd",
		BusinessType:        "Independent",
		Province:            "Ontario",
		DealerLicenseNumber: "D-1",
		IssuingAuthority:    "OMVIC",
	}

	s.Run("salesperson forbidden", func() {
		rr := testutil.DoRequest(s.router, s.authed(http.MethodPost, "/api/dealership/create", seller, body))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, "forbidden", "Unauthorized")
	})

	s.Run("created", func() {
		rr := testutil.DoRequest(s.router, s.authed(http.MethodPost, "/api/dealership/create", owner, body))
		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
		res := testutil.UnmarshalResponse[models.CreateDealershipResponse](s.T(), rr)
		s.Equal("Dealership created", res.Message)
		s.NotEmpty(res.DealershipID)
	})
}

func (s *HandlerSuite) TestSalespersonEndpoints() {
	s.register("sam@lot.ca", "salesperson")
	token := s.login("sam@lot.ca", "salesperson")

	s.Run("profile is null before first save", func() {
		rr := testutil.DoRequest(s.router, s.authed(http.MethodGet, "/api/salesperson/profile", token, nil))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		s.JSONEq(`{"profile":null}`, string(testutil.ReadBody(s.T(), rr)))
	})

	s.Run("save then read back", func() {
		rr := testutil.DoRequest(s.router, s.authed(http.MethodPost, "/api/salesperson/profile", token,
			models.SalespersonProfileRequest{FullName: "Sam Lee", Province: "Alberta", IssuingAuthority: "AMVIC"}))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)

		rr = testutil.DoRequest(s.router, s.authed(http.MethodGet, "/api/salesperson/profile", token, nil))
		res := testutil.UnmarshalResponse[models.ProfileResponse](s.T(), rr)
		s.Require().NotNil(res.Profile)
		s.Equal("Sam Lee", res.Profile.FullName)
	})

	s.Run("memberships is an empty list", func() {
		rr := testutil.DoRequest(s.router, s.authed(http.MethodGet, "/api/salesperson/memberships", token, nil))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		s.JSONEq(`{"memberships":[]}`, string(testutil.ReadBody(s.T(), rr)))
	})
}

func (s *HandlerSuite) TestHealthAndUnknownRoute() {
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/api/healthz", nil))
	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	testutil.AssertJSONContains(s.T(), rr, "status", "ok")

	rr = testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/api/nope", nil))
	testutil.AssertStatus(s.T(), rr, http.StatusNotFound)
}
