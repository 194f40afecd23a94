package service

import (
	"context"
	"errors"
	"testing"

	"communityhub/internal/events"
	"communityhub/internal/models"
	"communityhub/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userRepoStub struct {
	repository.UserRepository
	authenticateFn func(context.Context, string, string) (*models.User, error)
	createFn       func(context.Context, *models.User) error
}

func (s *userRepoStub) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	return s.authenticateFn(ctx, email, password)
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}

type sessionStub struct {
	current *models.User
	sets    int
}

func (s *sessionStub) Current(context.Context) (*models.User, error) { return s.current, nil }
func (s *sessionStub) Set(_ context.Context, u *models.User) error {
	s.current = u
	s.sets++
	return nil
}
func (s *sessionStub) Clear(context.Context) error {
	s.current = nil
	return nil
}

func TestRegister_CreatesUserAndSignsIn(t *testing.T) {
	h := newHarness(t, "")

	user, err := h.auth.Register(ctx, h.sess, RegisterInput{Username: " newbie ", Email: "new@example.com", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, "gen-101", user.ID)
	assert.Equal(t, "newbie", user.Username)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Empty(t, user.Followers)
	assert.True(t, fixedNow.Equal(user.CreatedAt))

	current, err := h.auth.Me(ctx, h.sess)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, user.ID, current.ID)

	all, err := h.users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, []events.Subject{events.UserRegistered}, h.recorder.Subjects())
}

func TestRegister_AllowsDuplicateEmail(t *testing.T) {
	h := newHarness(t, "")

	_, err := h.auth.Register(ctx, h.sess, RegisterInput{Username: "copy", Email: johnEmail})
	require.NoError(t, err)

	// Login resolves to the first user with the email.
	u := h.loginAs(t, johnEmail)
	assert.Equal(t, "2", u.ID)
}

func TestRegister_DisabledByFlag(t *testing.T) {
	h := newHarness(t, "registration=off")

	_, err := h.auth.Register(ctx, h.sess, RegisterInput{Username: "x", Email: "x@example.com"})
	assert.Equal(t, models.CodeForbidden, models.ErrorCode(err))

	current, err := h.sess.Current(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestLogin_UnknownEmailLeavesSession(t *testing.T) {
	h := newHarness(t, "")
	h.loginAs(t, johnEmail)

	u, err := h.auth.Login(ctx, h.sess, LoginInput{Email: "nobody@example.com", Password: "whatever"})
	require.NoError(t, err)
	assert.Nil(t, u)

	current, err := h.sess.Current(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "2", current.ID)
}

func TestLogin_IgnoresPasswordAndSuspension(t *testing.T) {
	h := newHarness(t, "")
	require.NoError(t, h.users.Suspend(ctx, "2"))

	u, err := h.auth.Login(ctx, h.sess, LoginInput{Email: johnEmail, Password: "definitely wrong"})
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.True(t, u.Suspended)
}

func TestLogout_ClearsSession(t *testing.T) {
	h := newHarness(t, "")
	h.loginAs(t, adminEmail)

	require.NoError(t, h.auth.Logout(ctx, h.sess))
	current, err := h.auth.Me(ctx, h.sess)
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestLogin_RepositoryErrorDoesNotTouchSession(t *testing.T) {
	repo := &userRepoStub{
		authenticateFn: func(context.Context, string, string) (*models.User, error) {
			return nil, models.NewInternalError(errors.New("redis down"))
		},
	}
	sess := &sessionStub{}
	svc := NewAuthService(repo, nil, nil)

	u, err := svc.Login(context.Background(), sess, LoginInput{Email: "a@b.c"})
	assert.Nil(t, u)
	assert.Equal(t, models.CodeInternal, models.ErrorCode(err))
	assert.Zero(t, sess.sets)
}

func TestRegister_CreateErrorSkipsSession(t *testing.T) {
	repo := &userRepoStub{
		createFn: func(context.Context, *models.User) error {
			return models.NewInternalError(errors.New("disk full"))
		},
	}
	sess := &sessionStub{}
	svc := NewAuthService(repo, nil, nil)

	_, err := svc.Register(context.Background(), sess, RegisterInput{Username: "a", Email: "a@b.c"})
	require.Error(t, err)
	assert.Zero(t, sess.sets)
	assert.Nil(t, sess.current)
}
