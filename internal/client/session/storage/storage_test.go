package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slot interface {
	Load(ctx context.Context) (string, bool, error)
	Save(ctx context.Context, token string) error
	Delete(ctx context.Context) error
}

func newRedisSlot(t *testing.T) slot {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return NewRedis(client, "test:", "deales_token")
}

// Every backend must honour the same slot contract: absent until saved,
// last write wins, delete is idempotent.
func TestSlotContract(t *testing.T) {
	backends := map[string]func(t *testing.T) slot{
		"file": func(t *testing.T) slot {
			return NewFile(filepath.Join(t.TempDir(), "home"), "deales_token")
		},
		"memory": func(t *testing.T) slot { return NewMemory() },
		"redis":  newRedisSlot,
	}

	for name, build := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := build(t)

			_, ok, err := s.Load(ctx)
			require.NoError(t, err)
			assert.False(t, ok, "fresh slot should be empty")

			require.NoError(t, s.Save(ctx, "abc"))
			require.NoError(t, s.Save(ctx, "def"))
			token, ok, err := s.Load(ctx)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "def", token)

			require.NoError(t, s.Delete(ctx))
			require.NoError(t, s.Delete(ctx))
			_, ok, err = s.Load(ctx)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestFileWritesPlainTokenWithOwnerOnlyMode(t *testing.T) {
	f := NewFile(t.TempDir(), "deales_token")
	require.NoError(t, f.Save(context.Background(), "abc"))

	raw, err := os.ReadFile(f.Path())
	require.NoError(t, err)
	assert.Equal(t, "abc", string(raw))

	info, err := os.Stat(f.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
