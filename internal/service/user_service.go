package service

import (
	"context"
	"strings"

	"communityhub/internal/events"
	"communityhub/internal/models"
	"communityhub/internal/repository"
	"communityhub/internal/validation"
)

type UserService struct {
	users     repository.UserRepository
	publisher events.Publisher
}

// ProfileInput holds the profile fields a user may edit. Nil fields are kept.
type ProfileInput struct {
	Username *string
	Bio      *string
	Avatar   *string
	Link     *string
}

func NewUserService(users repository.UserRepository, publisher events.Publisher) *UserService {
	return &UserService{users: users, publisher: publisherOrNop(publisher)}
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) ListByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	if !role.Valid() {
		return nil, models.NewValidationError("Invalid role: " + string(role))
	}
	return s.users.ListByRole(ctx, role)
}

func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// UpdateProfile edits the signed-in user's profile and refreshes the session copy.
func (s *UserService) UpdateProfile(ctx context.Context, sess Session, in ProfileInput) (*models.User, error) {
	me, err := requireUser(ctx, sess)
	if err != nil {
		return nil, err
	}

	if in.Username != nil {
		trimmed := strings.TrimSpace(*in.Username)
		if err := validation.ValidateUsername(trimmed); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		in.Username = &trimmed
	}
	if in.Link != nil {
		if err := validation.ValidateLink(*in.Link); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}

	update := models.UserUpdate{
		Username: in.Username,
		Bio:      in.Bio,
		Avatar:   in.Avatar,
		Link:     in.Link,
	}
	if err := s.users.Update(ctx, me.ID, update); err != nil {
		return nil, err
	}

	update.Apply(me)
	if err := sess.Set(ctx, me); err != nil {
		return nil, err
	}
	return me, nil
}

// Follow makes the signed-in user follow targetID.
func (s *UserService) Follow(ctx context.Context, sess Session, targetID string) error {
	me, err := requireUser(ctx, sess)
	if err != nil {
		return err
	}
	if err := s.users.Follow(ctx, me.ID, targetID); err != nil {
		return err
	}
	events.Emit(ctx, s.publisher, events.New(events.UserFollowed, me.ID, targetID, nil))
	return refreshSession(ctx, sess, s.users, me.ID)
}

// Unfollow makes the signed-in user stop following targetID.
func (s *UserService) Unfollow(ctx context.Context, sess Session, targetID string) error {
	me, err := requireUser(ctx, sess)
	if err != nil {
		return err
	}
	if err := s.users.Unfollow(ctx, me.ID, targetID); err != nil {
		return err
	}
	events.Emit(ctx, s.publisher, events.New(events.UserUnfollowed, me.ID, targetID, nil))
	return refreshSession(ctx, sess, s.users, me.ID)
}

// SetSuspended suspends or reinstates a user. Admin only.
func (s *UserService) SetSuspended(ctx context.Context, sess Session, userID string, suspended bool) error {
	admin, err := requireAdmin(ctx, sess)
	if err != nil {
		return err
	}
	if suspended {
		err = s.users.Suspend(ctx, userID)
	} else {
		err = s.users.Unsuspend(ctx, userID)
	}
	if err != nil {
		return err
	}
	events.Emit(ctx, s.publisher, events.New(events.UserSuspended, admin.ID, userID, map[string]any{
		"suspended": suspended,
	}))
	return nil
}

// DeleteUser hard-deletes a user. Their posts and follow edges remain. Admin only.
func (s *UserService) DeleteUser(ctx context.Context, sess Session, userID string) error {
	admin, err := requireAdmin(ctx, sess)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	events.Emit(ctx, s.publisher, events.New(events.UserDeleted, admin.ID, userID, nil))
	return nil
}
