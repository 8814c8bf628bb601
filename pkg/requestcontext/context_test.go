package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"deales/pkg/domain"
)

func TestAccessorsDefaultToZero(t *testing.T) {
	ctx := context.Background()
	assert.True(t, UserID(ctx).IsNil())
	assert.Equal(t, domain.RoleInvalid, Role(ctx))
	assert.Empty(t, TokenID(ctx))
	assert.True(t, TokenExpiry(ctx).IsZero())
	assert.Empty(t, RequestID(ctx))
	assert.WithinDuration(t, time.Now(), Now(ctx), time.Second)
}

func TestWithPrincipal(t *testing.T) {
	uid := domain.NewUserID()
	exp := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	ctx := WithPrincipal(context.Background(), uid, domain.RoleSalesperson, "jti-1", exp)
	ctx = WithClientMetadata(ctx, "10.0.0.1", "curl/8.0")
	ctx = WithRequestID(ctx, "req-1")
	ctx = WithTime(ctx, exp)

	assert.Equal(t, uid, UserID(ctx))
	assert.Equal(t, domain.RoleSalesperson, Role(ctx))
	assert.Equal(t, "jti-1", TokenID(ctx))
	assert.Equal(t, exp, TokenExpiry(ctx))
	assert.Equal(t, "10.0.0.1", ClientIP(ctx))
	assert.Equal(t, "curl/8.0", UserAgent(ctx))
	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Equal(t, exp, Now(ctx))
}
