package revocation

import (
	"context"
	"fmt"
	"time"

	"deales/pkg/platform/sentinel"
)

// List records revoked access tokens by jti until they would have expired
// anyway.
type List interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Clock is injected for tests.
type Clock func() time.Time

func validateTTL(ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive: %w", sentinel.ErrInvalidState)
	}
	return nil
}

var (
	_ List = (*MemoryTRL)(nil)
	_ List = (*RedisTRL)(nil)
	_ List = (*PostgresTRL)(nil)
)
