package service

import (
	"context"
	"strings"

	"communityhub/internal/events"
	"communityhub/internal/featureflags"
	"communityhub/internal/models"
	"communityhub/internal/repository"
)

// AuthService signs users in and out of the profile session.
// Passwords are accepted and never checked.
type AuthService struct {
	users     repository.UserRepository
	publisher events.Publisher
	flags     *featureflags.Manager
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

func NewAuthService(users repository.UserRepository, publisher events.Publisher, flags *featureflags.Manager) *AuthService {
	return &AuthService{
		users:     users,
		publisher: publisherOrNop(publisher),
		flags:     flags,
	}
}

// Register creates a regular user and signs them in. Duplicate emails are allowed.
func (s *AuthService) Register(ctx context.Context, sess Session, in RegisterInput) (*models.User, error) {
	if !s.flags.Allowed(featureflags.Registration, "") {
		return nil, models.NewForbiddenError("Registration is disabled")
	}

	user := &models.User{
		ID:        newID(),
		Username:  strings.TrimSpace(in.Username),
		Email:     strings.TrimSpace(in.Email),
		Role:      models.RoleUser,
		Followers: []string{},
		Following: []string{},
		CreatedAt: now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	if err := sess.Set(ctx, user); err != nil {
		return nil, err
	}

	events.Emit(ctx, s.publisher, events.New(events.UserRegistered, user.ID, user.ID, map[string]any{
		"username": user.Username,
	}))
	return user, nil
}

// Login signs in the first user with the given email. An unknown email returns
// a nil user and leaves the session unchanged.
func (s *AuthService) Login(ctx context.Context, sess Session, in LoginInput) (*models.User, error) {
	user, err := s.users.Authenticate(ctx, strings.TrimSpace(in.Email), in.Password)
	if err != nil || user == nil {
		return nil, err
	}
	if err := sess.Set(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Logout clears the session.
func (s *AuthService) Logout(ctx context.Context, sess Session) error {
	return sess.Clear(ctx)
}

// Me returns the signed-in user, or nil for a guest.
func (s *AuthService) Me(ctx context.Context, sess Session) (*models.User, error) {
	return sess.Current(ctx)
}
