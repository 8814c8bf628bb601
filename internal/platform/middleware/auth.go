package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"deales/pkg/domain"
	"deales/pkg/platform/httputil"
	"deales/pkg/requestcontext"

	dErrors "deales/pkg/domain-errors"
)

// Principal is what a validated access token asserts.
type Principal struct {
	UserID    domain.UserID
	Role      domain.Role
	TokenID   string
	ExpiresAt time.Time
}

// TokenAuthenticator validates a bearer token, including revocation.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (Principal, error)
}

// RequireAuth rejects requests without a valid bearer token and puts the
// principal into the request context.
func RequireAuth(auth TokenAuthenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Missing or invalid Authorization header"))
				return
			}

			p, err := auth.Authenticate(ctx, token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				if !dErrors.HasCode(err, dErrors.CodeUnauthorized) {
					err = dErrors.Wrap(err, dErrors.CodeInternal, "failed to authenticate")
				}
				httputil.WriteError(w, err)
				return
			}

			ctx = requestcontext.WithPrincipal(ctx, p.UserID, p.Role, p.TokenID, p.ExpiresAt)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
