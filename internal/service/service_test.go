package service

import (
	"context"
	"strconv"
	"testing"
	"time"

	"communityhub/internal/events"
	"communityhub/internal/featureflags"
	"communityhub/internal/models"
	"communityhub/internal/repository"
	"communityhub/internal/session"
	"communityhub/internal/storage"

	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

type harness struct {
	sess       *session.Session
	recorder   *events.Recorder
	users      repository.UserRepository
	posts      repository.PostRepository
	categories repository.CategoryRepository

	auth     *AuthService
	user     *UserService
	post     *PostService
	category *CategoryService
	stats    *StatsService
}

func newHarness(t *testing.T, flags string) *harness {
	t.Helper()

	prevNow, prevID := now, newID
	ids := 100
	now = func() time.Time { return fixedNow }
	newID = func() string {
		ids++
		return "gen-" + strconv.Itoa(ids)
	}
	t.Cleanup(func() { now, newID = prevNow, prevID })

	store := storage.New(storage.NewMemoryBackend(), storage.Options{Now: func() time.Time { return fixedNow }})
	h := &harness{
		sess:       session.ForStore(store),
		recorder:   &events.Recorder{},
		users:      repository.NewUserRepository(store),
		posts:      repository.NewPostRepository(store),
		categories: repository.NewCategoryRepository(store),
	}
	manager := featureflags.NewManager(flags)
	h.auth = NewAuthService(h.users, h.recorder, manager)
	h.user = NewUserService(h.users, h.recorder)
	h.post = NewPostService(h.posts, h.recorder, manager)
	h.category = NewCategoryService(h.categories, h.recorder)
	h.stats = NewStatsService(h.users, h.posts)
	return h
}

// loginAs puts the seeded user with the given email into the session.
func (h *harness) loginAs(t *testing.T, email string) *models.User {
	t.Helper()
	u, err := h.auth.Login(ctx, h.sess, LoginInput{Email: email})
	require.NoError(t, err)
	require.NotNil(t, u)
	return u
}

const (
	adminEmail = "admin@community.com"
	johnEmail  = "john@example.com"
)

var ctx = context.Background()
