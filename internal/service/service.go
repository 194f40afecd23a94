// Package service implements the user-facing operations on top of the
// repositories: registration and login, profile edits, post authoring and
// engagement, moderation, and admin statistics.
package service

import (
	"context"
	"time"

	"communityhub/internal/events"
	"communityhub/internal/models"
	"communityhub/internal/repository"

	"github.com/google/uuid"
)

// Session is the profile's current-user pointer. Services act on behalf of
// whoever it holds.
type Session interface {
	Current(ctx context.Context) (*models.User, error)
	Set(ctx context.Context, user *models.User) error
	Clear(ctx context.Context) error
}

// Clock and ID generator shared by the services; tests replace them.
var (
	now   = func() time.Time { return time.Now().UTC() }
	newID = uuid.NewString
)

func publisherOrNop(p events.Publisher) events.Publisher {
	if p == nil {
		return events.Nop{}
	}
	return p
}

// requireUser returns the signed-in user or an unauthorized error.
func requireUser(ctx context.Context, sess Session) (*models.User, error) {
	user, err := sess.Current(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("Login required")
	}
	return user, nil
}

// requireAdmin returns the signed-in admin, an unauthorized error for guests,
// or a forbidden error for everyone else.
func requireAdmin(ctx context.Context, sess Session) (*models.User, error) {
	user, err := requireUser(ctx, sess)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() {
		return nil, models.NewForbiddenError("Admin access required")
	}
	return user, nil
}

// refreshSession reloads the session copy of userID after a change to that user.
// A user that no longer exists leaves the session untouched.
func refreshSession(ctx context.Context, sess Session, users repository.UserRepository, userID string) error {
	fresh, err := users.GetByID(ctx, userID)
	if models.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return sess.Set(ctx, fresh)
}
