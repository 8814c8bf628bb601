// Package requestcontext provides HTTP-independent accessors for
// request-scoped values. Middleware sets them; services read them without
// importing net/http.
//
//	userID := requestcontext.UserID(ctx)
//	requestID := requestcontext.RequestID(ctx)
//	now := requestcontext.Now(ctx)
package requestcontext

import (
	"context"
	"time"

	"deales/pkg/domain"
)

type (
	userIDKey      struct{}
	roleKey        struct{}
	tokenIDKey     struct{}
	tokenExpiryKey struct{}
	clientIPKey    struct{}
	userAgentKey   struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// -----------------------------------------------------------------------------
// Auth context
// -----------------------------------------------------------------------------

// UserID returns the authenticated user, or the nil id.
func UserID(ctx context.Context) domain.UserID {
	if v, ok := ctx.Value(userIDKey{}).(domain.UserID); ok {
		return v
	}
	return domain.UserID{}
}

// Role returns the role carried by the access token, or RoleInvalid.
func Role(ctx context.Context) domain.Role {
	if v, ok := ctx.Value(roleKey{}).(domain.Role); ok {
		return v
	}
	return domain.RoleInvalid
}

// TokenID returns the jti of the presented access token.
func TokenID(ctx context.Context) string {
	v, _ := ctx.Value(tokenIDKey{}).(string)
	return v
}

// TokenExpiry returns when the presented access token expires.
func TokenExpiry(ctx context.Context) time.Time {
	v, _ := ctx.Value(tokenExpiryKey{}).(time.Time)
	return v
}

// WithPrincipal injects the authenticated identity, as RequireAuth does.
func WithPrincipal(ctx context.Context, userID domain.UserID, role domain.Role, tokenID string, expiresAt time.Time) context.Context {
	ctx = context.WithValue(ctx, userIDKey{}, userID)
	ctx = context.WithValue(ctx, roleKey{}, role)
	ctx = context.WithValue(ctx, tokenIDKey{}, tokenID)
	return context.WithValue(ctx, tokenExpiryKey{}, expiresAt)
}

// -----------------------------------------------------------------------------
// Client metadata
// -----------------------------------------------------------------------------

func ClientIP(ctx context.Context) string {
	v, _ := ctx.Value(clientIPKey{}).(string)
	return v
}

func UserAgent(ctx context.Context) string {
	v, _ := ctx.Value(userAgentKey{}).(string)
	return v
}

// WithClientMetadata injects client IP and User-Agent. Useful for service
// unit tests that don't run the middleware chain.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey{}, clientIP)
	return context.WithValue(ctx, userAgentKey{}, userAgent)
}

// -----------------------------------------------------------------------------
// Request metadata
// -----------------------------------------------------------------------------

func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now returns the request-scoped time, falling back to time.Now() outside
// HTTP requests.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
