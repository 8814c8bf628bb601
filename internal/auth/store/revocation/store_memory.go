package revocation

import (
	"context"
	"sync"
	"time"
)

// MemoryTRL is the single-instance revocation list.
type MemoryTRL struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	clock   Clock
}

func NewMemoryTRL(clock Clock) *MemoryTRL {
	if clock == nil {
		clock = time.Now
	}
	return &MemoryTRL{revoked: make(map[string]time.Time), clock: clock}
}

func (t *MemoryTRL) RevokeToken(_ context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return nil
	}
	if err := validateTTL(ttl); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.revoked[jti] = t.clock().Add(ttl)
	return nil
}

// IsRevoked also drops the entry once its ttl has passed.
func (t *MemoryTRL) IsRevoked(_ context.Context, jti string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	exp, ok := t.revoked[jti]
	if !ok {
		return false, nil
	}
	if t.clock().After(exp) {
		delete(t.revoked, jti)
		return false, nil
	}
	return true, nil
}
