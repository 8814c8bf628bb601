package authlockout

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// =============================================================================
// Lockout Service Test Suite
// =============================================================================
// Justification: the lockout decides when a correct password is still
// refused, so the threshold and window boundaries must be exact.

type LockoutSuite struct {
	suite.Suite
	now     time.Time
	service *Service
}

func TestLockoutSuite(t *testing.T) {
	suite.Run(t, new(LockoutSuite))
}

func (s *LockoutSuite) SetupTest() {
	s.now = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	store := NewInMemoryStore(func() time.Time { return s.now })
	svc, err := New(store, WithConfig(Config{AttemptsPerWindow: 3, Window: time.Minute}))
	s.Require().NoError(err)
	s.service = svc
}

func (s *LockoutSuite) TestNew() {
	_, err := New(nil)
	s.ErrorContains(err, "store is required")

	_, err = New(NewInMemoryStore(nil), WithConfig(Config{}))
	s.Error(err)
}

func (s *LockoutSuite) TestLocksAtThreshold() {
	ctx := context.Background()
	for i := 1; i <= 2; i++ {
		locked, err := s.service.RecordFailure(ctx, "sam@lot.ca", "10.0.0.1")
		s.Require().NoError(err)
		s.False(locked, "failure %d", i)
	}
	res, err := s.service.Check(ctx, "SAM@lot.ca", "10.0.0.1")
	s.Require().NoError(err)
	s.True(res.Allowed)
	s.Equal(1, res.Remaining)

	locked, err := s.service.RecordFailure(ctx, "sam@lot.ca", "10.0.0.1")
	s.Require().NoError(err)
	s.True(locked)

	res, err = s.service.Check(ctx, "sam@lot.ca", "10.0.0.1")
	s.Require().NoError(err)
	s.False(res.Allowed)
	s.Equal(time.Minute, res.RetryAfter)

	s.Run("other ip is unaffected", func() {
		res, err := s.service.Check(ctx, "sam@lot.ca", "10.0.0.2")
		s.Require().NoError(err)
		s.True(res.Allowed)
	})

	s.Run("window expiry unlocks", func() {
		s.now = s.now.Add(time.Minute)
		res, err := s.service.Check(ctx, "sam@lot.ca", "10.0.0.1")
		s.Require().NoError(err)
		s.True(res.Allowed)
	})
}

func (s *LockoutSuite) TestClearResets() {
	ctx := context.Background()
	for range 3 {
		_, err := s.service.RecordFailure(ctx, "sam@lot.ca", "ip")
		s.Require().NoError(err)
	}
	s.Require().NoError(s.service.Clear(ctx, "sam@lot.ca", "ip"))
	res, err := s.service.Check(ctx, "sam@lot.ca", "ip")
	s.Require().NoError(err)
	s.True(res.Allowed)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := NewRedisStore(client)
	ctx := context.Background()

	count, reset, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Zero(t, reset)

	for i := 1; i <= 2; i++ {
		n, err := store.RecordFailure(ctx, "k", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}

	count, reset, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.InDelta(t, time.Minute.Seconds(), reset.Seconds(), 1)

	mr.FastForward(time.Minute + time.Second)
	count, _, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = store.RecordFailure(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.NoError(t, store.Clear(ctx, "k"))
	assert.False(t, mr.Exists(keyPrefix+"k"))
}
