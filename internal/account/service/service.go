// Package service implements account registration, login, token revocation
// and the dealership and salesperson records behind them.
package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"deales/internal/account/models"
	"deales/internal/audit"
	jwttoken "deales/internal/jwt_token"
	"deales/internal/platform/metrics"
	"deales/internal/platform/middleware"
	"deales/internal/ratelimit/authlockout"
	"deales/pkg/domain"
	dErrors "deales/pkg/domain-errors"
	"deales/pkg/platform/password"
	"deales/pkg/platform/sentinel"
	"deales/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks AuditPublisher,RevocationList

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id domain.UserID) (*models.User, error)
}

type DealershipStore interface {
	CreateDealership(ctx context.Context, d *models.Dealership, primary *models.Location) error
}

type ProfileStore interface {
	UpsertProfile(ctx context.Context, p *models.SalespersonProfile) error
	FindProfile(ctx context.Context, userID domain.UserID) (*models.SalespersonProfile, error)
}

type MembershipStore interface {
	ListMemberships(ctx context.Context, userID domain.UserID, statuses []models.MembershipStatus) ([]models.Membership, error)
}

// Store is everything the service persists. InMemoryStore and PostgresStore
// both satisfy it.
type Store interface {
	UserStore
	DealershipStore
	ProfileStore
	MembershipStore
}

type TokenIssuer interface {
	GenerateAccessToken(userID domain.UserID, role domain.Role, expiresIn time.Duration) (string, *jwttoken.Claims, error)
	ValidateToken(token string) (*jwttoken.Claims, error)
}

type RevocationList interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

// LoginLockout throttles repeated failed logins per email and client IP.
type LoginLockout interface {
	Check(ctx context.Context, email, ip string) (authlockout.Result, error)
	RecordFailure(ctx context.Context, email, ip string) (locked bool, err error)
	Clear(ctx context.Context, email, ip string) error
}

// openMemberships are the statuses a salesperson's login route depends on.
var openMemberships = []models.MembershipStatus{models.MembershipPending, models.MembershipActive}

// Service implements the account API.
type Service struct {
	store          Store
	tokens         TokenIssuer
	revocations    RevocationList
	tokenTTL       time.Duration
	logger         *slog.Logger
	auditPublisher AuditPublisher
	lockout        LoginLockout
	metrics        *metrics.Metrics
	now            func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithLoginLockout(l LoginLockout) Option {
	return func(s *Service) {
		s.lockout = l
	}
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.tokenTTL = ttl
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// DefaultTokenTTL is the access token lifetime when none is configured.
const DefaultTokenTTL = 24 * time.Hour

func New(store Store, tokens TokenIssuer, revocations RevocationList, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("account store is required")
	}
	if tokens == nil {
		return nil, errors.New("token issuer is required")
	}
	if revocations == nil {
		return nil, errors.New("revocation list is required")
	}
	s := &Service{
		store:       store,
		tokens:      tokens,
		revocations: revocations,
		tokenTTL:    DefaultTokenTTL,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Register creates an account. The email is unique across roles.
func (s *Service) Register(ctx context.Context, req *models.Credentials) error {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return err
	}
	role := domain.ResolveRole(req.Role)

	hash, err := password.Hash(req.Password)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeValidation) {
			return err
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	user := &models.User{
		ID:           domain.NewUserID(),
		Email:        req.Email,
		Role:         role,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    s.now(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return dErrors.New(dErrors.CodeConflict, "Email already registered")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save user")
	}

	s.logger.InfoContext(ctx, "user registered",
		"user_id", user.ID.String(),
		"role", role,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emit(ctx, audit.Event{Action: audit.ActionUserRegistered, UserID: user.ID.String(), Role: role.String(), Email: user.Email})
	if s.metrics != nil {
		s.metrics.IncrementUsersCreated(role.String())
	}
	return nil
}

// Login verifies credentials and that the account has the requested role,
// then issues an access token.
func (s *Service) Login(ctx context.Context, req *models.Credentials) (*models.TokenResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	role := domain.ResolveRole(req.Role)
	if err := s.checkLockout(ctx, req.Email, role); err != nil {
		return nil, err
	}

	user, err := s.store.FindUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.loginFailed(ctx, req.Email, role, "unknown_email")
			return nil, dErrors.New(dErrors.CodeUnauthorized, "Invalid credentials")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if err := password.Verify(req.Password, user.PasswordHash); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			s.loginFailed(ctx, req.Email, role, "bad_password")
			return nil, dErrors.New(dErrors.CodeUnauthorized, "Invalid credentials")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify password")
	}
	if user.Role != role {
		s.loginFailed(ctx, req.Email, role, "role_mismatch")
		return nil, dErrors.New(dErrors.CodeForbidden, "Incorrect account type")
	}

	token, _, err := s.tokens.GenerateAccessToken(user.ID, user.Role, s.tokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}
	if s.lockout != nil {
		if err := s.lockout.Clear(ctx, req.Email, requestcontext.ClientIP(ctx)); err != nil {
			s.logger.WarnContext(ctx, "failed to clear login failures", "error", err)
		}
	}

	s.logger.InfoContext(ctx, "user logged in",
		"user_id", user.ID.String(),
		"role", role,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emit(ctx, audit.Event{Action: audit.ActionUserLoggedIn, UserID: user.ID.String(), Role: role.String(), Email: user.Email})
	if s.metrics != nil {
		s.metrics.IncrementLogins(role.String(), "success")
	}
	return &models.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokenTTL.Seconds()),
	}, nil
}

func (s *Service) checkLockout(ctx context.Context, email string, role domain.Role) error {
	if s.lockout == nil {
		return nil
	}
	res, err := s.lockout.Check(ctx, email, requestcontext.ClientIP(ctx))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check login lockout")
	}
	if res.Allowed {
		return nil
	}
	s.logger.WarnContext(ctx, "login refused while locked",
		"retry_after", res.RetryAfter.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emit(ctx, audit.Event{Action: audit.ActionLoginLocked, Role: role.String(), Email: email})
	if s.metrics != nil {
		s.metrics.IncrementLogins(role.String(), "locked")
	}
	return dErrors.New(dErrors.CodeRateLimited, "Too many failed login attempts. Please try again later.")
}

func (s *Service) loginFailed(ctx context.Context, email string, role domain.Role, reason string) {
	if s.lockout != nil {
		if _, err := s.lockout.RecordFailure(ctx, email, requestcontext.ClientIP(ctx)); err != nil {
			s.logger.WarnContext(ctx, "failed to record login failure", "error", err)
		}
	}
	s.logger.WarnContext(ctx, "login failed",
		"reason", reason,
		"role", role,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emit(ctx, audit.Event{Action: audit.ActionLoginFailed, Role: role.String(), Email: email, Reason: reason})
	if s.metrics != nil {
		s.metrics.IncrementLogins(role.String(), "failure")
	}
}

// Authenticate validates an access token and checks it has not been revoked.
func (s *Service) Authenticate(ctx context.Context, token string) (middleware.Principal, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return middleware.Principal{}, err
	}
	userID, err := domain.ParseUserID(claims.UserID)
	if err != nil {
		return middleware.Principal{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return middleware.Principal{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check token revocation")
	}
	if revoked {
		return middleware.Principal{}, dErrors.New(dErrors.CodeUnauthorized, "token has been revoked")
	}

	p := middleware.Principal{
		UserID:  userID,
		Role:    domain.ResolveRole(claims.Role),
		TokenID: claims.ID,
	}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return p, nil
}

// Me returns the identity asserted by the caller's token.
func (s *Service) Me(ctx context.Context) models.MeResponse {
	return models.MeResponse{
		ID:   requestcontext.UserID(ctx).String(),
		Role: requestcontext.Role(ctx).String(),
	}
}

// Logout revokes the presented token until it would have expired.
func (s *Service) Logout(ctx context.Context) error {
	jti := requestcontext.TokenID(ctx)
	if jti == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "token has no id")
	}
	ttl := requestcontext.TokenExpiry(ctx).Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.revocations.RevokeToken(ctx, jti, ttl); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke token")
	}

	userID := requestcontext.UserID(ctx).String()
	s.logger.InfoContext(ctx, "user logged out",
		"user_id", userID,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emit(ctx, audit.Event{Action: audit.ActionUserLoggedOut, UserID: userID, Role: requestcontext.Role(ctx).String()})
	if s.metrics != nil {
		s.metrics.Logouts.Inc()
	}
	return nil
}

// CreateDealership records the caller's dealership and, when given, its
// primary location. Only dealership accounts may call it.
func (s *Service) CreateDealership(ctx context.Context, req *models.CreateDealershipRequest) (domain.DealershipID, error) {
	if err := requireRole(ctx, domain.RoleDealership); err != nil {
		return domain.DealershipID{}, err
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return domain.DealershipID{}, err
	}

	owner := requestcontext.UserID(ctx)
	d := &models.Dealership{
		ID:                  domain.NewDealershipID(),
		OwnerUserID:         owner,
		LegalName:           req.LegalName,
		OperatingName:       req.OperatingName,
		BusinessType:        req.BusinessType,
		Province:            req.Province,
		DealerLicenseNumber: req.DealerLicenseNumber,
		IssuingAuthority:    req.IssuingAuthority,
		PrimaryContactName:  req.PrimaryContactName,
		Phone:               req.Phone,
		Website:             req.Website,
		CreatedAt:           s.now(),
	}
	if err := s.store.CreateDealership(ctx, d, req.Location); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return domain.DealershipID{}, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return domain.DealershipID{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create dealership")
	}

	s.logger.InfoContext(ctx, "dealership created",
		"dealership_id", d.ID.String(),
		"user_id", owner.String(),
		"has_location", req.Location != nil,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emit(ctx, audit.Event{Action: audit.ActionDealershipCreated, UserID: owner.String(), Role: domain.RoleDealership.String(), Subject: d.ID.String()})
	if s.metrics != nil {
		s.metrics.DealershipsCreated.Inc()
	}
	return d.ID, nil
}

// UpsertSalespersonProfile creates or replaces the caller's profile.
func (s *Service) UpsertSalespersonProfile(ctx context.Context, req *models.SalespersonProfileRequest) error {
	if err := requireRole(ctx, domain.RoleSalesperson); err != nil {
		return err
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return err
	}

	userID := requestcontext.UserID(ctx)
	p := &models.SalespersonProfile{
		UserID:           userID,
		FullName:         req.FullName,
		Province:         req.Province,
		IssuingAuthority: req.IssuingAuthority,
		LicenseNumber:    req.LicenseNumber,
		LicenseExpiry:    req.LicenseExpiry,
		UpdatedAt:        s.now(),
	}
	if err := s.store.UpsertProfile(ctx, p); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save profile")
	}

	s.emit(ctx, audit.Event{Action: audit.ActionSalespersonProfileSaved, UserID: userID.String(), Role: domain.RoleSalesperson.String()})
	if s.metrics != nil {
		s.metrics.ProfilesSaved.Inc()
	}
	return nil
}

// GetSalespersonProfile returns the caller's profile, or nil if none was
// saved yet.
func (s *Service) GetSalespersonProfile(ctx context.Context) (*models.SalespersonProfile, error) {
	if err := requireRole(ctx, domain.RoleSalesperson); err != nil {
		return nil, err
	}
	p, err := s.store.FindProfile(ctx, requestcontext.UserID(ctx))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
	}
	return p, nil
}

// ListMemberships returns the caller's pending and active memberships.
func (s *Service) ListMemberships(ctx context.Context) ([]models.Membership, error) {
	if err := requireRole(ctx, domain.RoleSalesperson); err != nil {
		return nil, err
	}
	ms, err := s.store.ListMemberships(ctx, requestcontext.UserID(ctx), openMemberships)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list memberships")
	}
	return ms, nil
}

func requireRole(ctx context.Context, role domain.Role) error {
	if requestcontext.Role(ctx) != role {
		return dErrors.New(dErrors.CodeForbidden, "Unauthorized")
	}
	return nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	event.Timestamp = s.now()
	s.auditPublisher.Emit(ctx, event)
}
