// Package registration runs the ordered remote calls that turn a completed
// signup wizard into an account, and the login flow that routes an existing
// user. Steps run strictly in sequence on the caller's goroutine; nothing is
// retried or rolled back.
package registration

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"deales/internal/client/api"
	"deales/internal/client/wizard"
	"deales/pkg/domain"
)

// Post-flow destinations.
const (
	RouteEntry                 = "/"
	RouteHome                  = "/home"
	RouteSalespersonOnboarding = "/salesperson/onboarding"
	RouteSalespersonDashboard  = "/salesperson/dashboard"
)

// Identity is the authentication half of the remote account API.
type Identity interface {
	Register(ctx context.Context, in api.Credentials) error
	Login(ctx context.Context, in api.Credentials) (string, error)
}

// Profiles is the role-specific half of the remote account API. Calls are
// authenticated by the transport from the session.
type Profiles interface {
	CreateDealership(ctx context.Context, in api.CreateDealershipRequest) (api.CreateDealershipResponse, error)
	SaveSalespersonProfile(ctx context.Context, in api.SalespersonProfile) error
	Memberships(ctx context.Context) ([]api.Membership, error)
}

// TokenSetter commits a freshly issued token to the session.
type TokenSetter interface {
	SetToken(ctx context.Context, token string) error
}

// Result is where the caller should navigate next.
type Result struct {
	Route string
}

type Service struct {
	identity Identity
	profiles Profiles
	session  TokenSetter
	logger   *slog.Logger
	tracer   trace.Tracer
	metrics  *Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(identity Identity, profiles Profiles, session TokenSetter, opts ...Option) (*Service, error) {
	if identity == nil {
		return nil, errors.New("identity client is required")
	}
	if profiles == nil {
		return nil, errors.New("profiles client is required")
	}
	if session == nil {
		return nil, errors.New("session is required")
	}
	s := &Service{
		identity: identity,
		profiles: profiles,
		session:  session,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer:   otel.Tracer("deales/client/registration"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Register creates the account for a submitted wizard:
// register, then login and commit the token, then create the role profile.
// Any failure is returned as a *Failure and stops the sequence; earlier
// steps stay in effect.
func (s *Service) Register(ctx context.Context, sub wizard.Submission) (Result, error) {
	ctx, span := s.tracer.Start(ctx, "registration.Register",
		trace.WithAttributes(attribute.String("role", sub.Role.String())))
	defer span.End()

	res, err := s.register(ctx, sub)
	s.finish(ctx, span, "register", sub.Role, err)
	return res, err
}

func (s *Service) register(ctx context.Context, sub wizard.Submission) (Result, error) {
	if !sub.Role.Valid() {
		return Result{}, newFailure(StageRegister, ErrInvalidRole, fallbackSignup)
	}
	creds := api.Credentials{
		Email:    sub.Get(wizard.FieldEmail),
		Password: sub.Get(wizard.FieldPassword),
		Role:     sub.Role.String(),
	}

	if err := s.step(ctx, StageRegister, func(ctx context.Context) error {
		return s.identity.Register(ctx, creds)
	}); err != nil {
		return Result{}, newFailure(StageRegister, err, fallbackSignup)
	}

	if err := s.loginAndCommit(ctx, creds); err != nil {
		return Result{}, newFailure(StageLogin, err, fallbackSignup)
	}

	switch sub.Role {
	case domain.RoleDealership:
		err := s.step(ctx, StageProfile, func(ctx context.Context) error {
			_, err := s.profiles.CreateDealership(ctx, dealershipRequest(sub))
			return err
		})
		if err != nil {
			return Result{}, newFailure(StageProfile, err, fallbackSignup)
		}
		return Result{Route: RouteHome}, nil
	default:
		err := s.step(ctx, StageProfile, func(ctx context.Context) error {
			return s.profiles.SaveSalespersonProfile(ctx, salespersonRequest(sub))
		})
		if err != nil {
			return Result{}, newFailure(StageProfile, err, fallbackSignup)
		}
		return Result{Route: RouteSalespersonOnboarding}, nil
	}
}

// Login authenticates an existing user for role. An invalid role routes to
// the entry point without any network call.
func (s *Service) Login(ctx context.Context, role domain.Role, email, password string) (Result, error) {
	if !role.Valid() {
		s.logger.InfoContext(ctx, "login with invalid role, redirecting to entry")
		return Result{Route: RouteEntry}, nil
	}

	ctx, span := s.tracer.Start(ctx, "registration.Login",
		trace.WithAttributes(attribute.String("role", role.String())))
	defer span.End()

	res, err := s.login(ctx, role, email, password)
	s.finish(ctx, span, "login", role, err)
	return res, err
}

func (s *Service) login(ctx context.Context, role domain.Role, email, password string) (Result, error) {
	creds := api.Credentials{Email: email, Password: password, Role: role.String()}
	if err := s.loginAndCommit(ctx, creds); err != nil {
		return Result{}, newFailure(StageLogin, err, fallbackLogin)
	}

	if role == domain.RoleDealership {
		return Result{Route: RouteHome}, nil
	}

	var memberships []api.Membership
	err := s.step(ctx, StageMemberships, func(ctx context.Context) error {
		var err error
		memberships, err = s.profiles.Memberships(ctx)
		return err
	})
	if err != nil {
		return Result{}, newFailure(StageMemberships, err, fallbackLogin)
	}
	if len(memberships) == 0 {
		return Result{Route: RouteSalespersonOnboarding}, nil
	}
	return Result{Route: RouteSalespersonDashboard}, nil
}

func (s *Service) loginAndCommit(ctx context.Context, creds api.Credentials) error {
	var token string
	err := s.step(ctx, StageLogin, func(ctx context.Context) error {
		var err error
		token, err = s.identity.Login(ctx, creds)
		return err
	})
	if err != nil {
		return err
	}
	// The caller may have gone away while login was in flight.
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.session.SetToken(ctx, token)
}

// step runs one remote call under its own span, refusing to start once ctx
// is done.
func (s *Service) step(ctx context.Context, stage Stage, call func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ctx, span := s.tracer.Start(ctx, "registration.step."+string(stage))
	defer span.End()

	err := call(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(stage)+" failed")
		s.logger.WarnContext(ctx, "registration step failed",
			"stage", string(stage),
			"status", api.StatusOf(err),
			"error", err,
		)
		return err
	}
	s.logger.DebugContext(ctx, "registration step completed", "stage", string(stage))
	return nil
}

func (s *Service) finish(ctx context.Context, span trace.Span, flow string, role domain.Role, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
		span.SetStatus(codes.Error, err.Error())
		var f *Failure
		if errors.As(err, &f) {
			span.SetAttributes(attribute.String("failed_stage", string(f.Stage)))
		}
	}
	if s.metrics != nil {
		s.metrics.observe(flow, role, outcome)
	}
	s.logger.InfoContext(ctx, flow+" finished", "role", role.String(), "outcome", outcome)
}

func dealershipRequest(sub wizard.Submission) api.CreateDealershipRequest {
	req := api.CreateDealershipRequest{
		LegalName:           sub.Get(wizard.FieldLegalName),
		OperatingName:       sub.Get(wizard.FieldOperatingName),
		BusinessType:        sub.Get(wizard.FieldBusinessType),
		Province:            sub.Get(wizard.FieldProvince),
		DealerLicenseNumber: sub.Get(wizard.FieldDealerLicenseNumber),
		IssuingAuthority:    sub.Get(wizard.FieldIssuingAuthority),
		PrimaryContactName:  sub.Get(wizard.FieldPrimaryContactName),
		Phone:               sub.Get(wizard.FieldPhone),
		Website:             sub.Get(wizard.FieldWebsite),
	}
	if street := sub.Get(wizard.FieldStreetAddress); street != "" {
		req.Location = &api.Location{
			StreetAddress: street,
			City:          sub.Get(wizard.FieldCity),
			Province:      sub.Get(wizard.FieldProvince),
			PostalCode:    sub.Get(wizard.FieldPostalCode),
			Timezone:      sub.Get(wizard.FieldTimezone),
		}
	}
	return req
}

func salespersonRequest(sub wizard.Submission) api.SalespersonProfile {
	return api.SalespersonProfile{
		FullName:         sub.Get(wizard.FieldFullName),
		Province:         sub.Get(wizard.FieldProvince),
		IssuingAuthority: sub.Get(wizard.FieldIssuingAuthority),
		LicenseNumber:    sub.Get(wizard.FieldLicenseNumber),
		LicenseExpiry:    sub.Get(wizard.FieldLicenseExpiry),
	}
}
