package repository

import (
	"context"
	"testing"
	"time"

	"communityhub/internal/storage"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store      *storage.Store
	backend    *storage.MemoryBackend
	users      UserRepository
	posts      PostRepository
	categories CategoryRepository
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	backend := storage.NewMemoryBackend()
	store := storage.New(backend, storage.Options{Now: func() time.Time { return testNow }})
	return fixture{
		store:      store,
		backend:    backend,
		users:      NewUserRepository(store),
		posts:      NewPostRepository(store),
		categories: NewCategoryRepository(store),
	}
}

// reopen builds fresh repositories over the same backend, forcing a decode.
func (f fixture) reopen(t *testing.T) fixture {
	t.Helper()
	store := storage.New(f.backend, storage.Options{Now: func() time.Time { return testNow }})
	return fixture{
		store:      store,
		backend:    f.backend,
		users:      NewUserRepository(store),
		posts:      NewPostRepository(store),
		categories: NewCategoryRepository(store),
	}
}

func mustNoErr(t *testing.T, err error) {
	t.Helper()
	require.NoError(t, err)
}

var ctx = context.Background()
