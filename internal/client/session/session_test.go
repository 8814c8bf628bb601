package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"deales/internal/client/session/storage"
)

// failingStorage wraps a memory slot and fails writes on demand.
type failingStorage struct {
	*storage.Memory
	saveErr   error
	deleteErr error
}

func (f *failingStorage) Save(ctx context.Context, token string) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.Memory.Save(ctx, token)
}

func (f *failingStorage) Delete(ctx context.Context) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.Memory.Delete(ctx)
}

type StoreSuite struct {
	suite.Suite
	ctx     context.Context
	backing *failingStorage
	store   *Store
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.backing = &failingStorage{Memory: storage.NewMemory()}
	store, err := New(s.backing, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.Require().NoError(err)
	s.store = store
}

func (s *StoreSuite) TestNewRequiresStorage() {
	_, err := New(nil)
	s.Error(err)
}

func (s *StoreSuite) TestSetTokenPersistsAndExposesHeader() {
	s.Require().NoError(s.store.SetToken(s.ctx, "abc"))

	header, ok := s.store.Authorization()
	s.True(ok)
	s.Equal("Bearer abc", header)

	stored, ok, err := s.store.GetToken(s.ctx)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal("abc", stored)
}

func (s *StoreSuite) TestSetTokenRejectsEmpty() {
	s.ErrorIs(s.store.SetToken(s.ctx, ""), ErrEmptyToken)
	_, ok := s.store.Token()
	s.False(ok)
}

func (s *StoreSuite) TestSetTokenStorageFailureKeepsPreviousState() {
	s.Require().NoError(s.store.SetToken(s.ctx, "old"))
	writeErr := errors.New("disk full")
	s.backing.saveErr = writeErr

	err := s.store.SetToken(s.ctx, "new")
	s.ErrorIs(err, writeErr)

	header, ok := s.store.Authorization()
	s.True(ok)
	s.Equal("Bearer old", header, "header must not run ahead of storage")
}

func (s *StoreSuite) TestClearTokenIsIdempotent() {
	s.Require().NoError(s.store.SetToken(s.ctx, "abc"))

	s.Require().NoError(s.store.ClearToken(s.ctx))
	_, okOnce := s.store.Authorization()
	_, storedOnce, err := s.store.GetToken(s.ctx)
	s.Require().NoError(err)

	s.Require().NoError(s.store.ClearToken(s.ctx))
	_, okTwice := s.store.Authorization()
	_, storedTwice, err := s.store.GetToken(s.ctx)
	s.Require().NoError(err)

	s.False(okOnce)
	s.False(storedOnce)
	s.Equal(okOnce, okTwice)
	s.Equal(storedOnce, storedTwice)
}

func (s *StoreSuite) TestClearTokenDropsHeaderEvenWhenDeleteFails() {
	s.Require().NoError(s.store.SetToken(s.ctx, "abc"))
	s.backing.deleteErr = errors.New("read-only filesystem")

	s.Error(s.store.ClearToken(s.ctx))
	_, ok := s.store.Authorization()
	s.False(ok)
}

func (s *StoreSuite) TestHydrateRestoresHeaderAfterRestart() {
	s.Require().NoError(s.store.SetToken(s.ctx, "abc"))

	// A new process sees the same durable slot but no in-memory state.
	restarted, err := New(s.backing)
	s.Require().NoError(err)
	_, ok := restarted.Authorization()
	s.False(ok, "header is absent before hydrate")

	s.backing.saveErr = errors.New("hydrate must not write")
	s.Require().NoError(restarted.Hydrate(s.ctx))

	header, ok := restarted.Authorization()
	s.True(ok)
	s.Equal("Bearer abc", header)
}

func (s *StoreSuite) TestHydrateWithEmptyStorageLeavesSessionAbsent() {
	s.Require().NoError(s.store.Hydrate(s.ctx))
	_, ok := s.store.Token()
	s.False(ok)
}

func (s *StoreSuite) TestGetTokenHasNoEffectOnHeader() {
	s.Require().NoError(s.backing.Memory.Save(s.ctx, "external"))

	token, ok, err := s.store.GetToken(s.ctx)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal("external", token)

	_, headerSet := s.store.Authorization()
	s.False(headerSet)
}
