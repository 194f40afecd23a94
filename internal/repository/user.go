package repository

import (
	"context"
	"slices"

	"communityhub/internal/models"
	"communityhub/internal/storage"
)

// UserRepository defines the interface for user data operations.
// Mutations on an unknown id are silent no-ops.
type UserRepository interface {
	List(ctx context.Context) ([]models.User, error)
	ListByRole(ctx context.Context, role models.Role) ([]models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id string, update models.UserUpdate) error
	Delete(ctx context.Context, id string) error
	Suspend(ctx context.Context, id string) error
	Unsuspend(ctx context.Context, id string) error
	Follow(ctx context.Context, followerID, targetID string) error
	Unfollow(ctx context.Context, followerID, targetID string) error
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
}

// userRepository implements UserRepository
type userRepository struct {
	base
}

// NewUserRepository creates a new user repository
func NewUserRepository(store *storage.Store) UserRepository {
	return &userRepository{base: newBase(store, storage.Users)}
}

func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	var out []models.User
	err := r.view(ctx, "list", func(tx *storage.Tx) error {
		out = storage.CloneUsers(tx.Users().Rows())
		return nil
	})
	return out, err
}

func (r *userRepository) ListByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	var out []models.User
	err := r.view(ctx, "list_by_role", func(tx *storage.Tx) error {
		out = storage.CloneUsers(tx.Users().Filter(func(u *models.User) bool { return u.Role == role }))
		return nil
	})
	return out, err
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var out *models.User
	err := r.view(ctx, "get_by_id", func(tx *storage.Tx) error {
		if u := tx.Users().Find(id); u != nil {
			c := u.Clone()
			out = &c
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, models.NewNotFoundError("User", id)
	}
	return out, nil
}

// GetByEmail returns the first user with email, or nil when there is none.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var out *models.User
	err := r.view(ctx, "get_by_email", func(tx *storage.Tx) error {
		if u := tx.Users().FindFunc(func(u *models.User) bool { return u.Email == email }); u != nil {
			c := u.Clone()
			out = &c
		}
		return nil
	})
	return out, err
}

// Create appends user. Ids are caller-supplied and not checked for uniqueness.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	user.Followers = orEmpty(user.Followers)
	user.Following = orEmpty(user.Following)
	err := r.update(ctx, "create", func(tx *storage.Tx) error {
		tx.Users().Append(user.Clone())
		tx.Touch(storage.Users)
		return nil
	})
	if err == nil {
		r.log.LogCreate(ctx, map[string]interface{}{"user_id": user.ID, "role": user.Role})
	}
	return err
}

func (r *userRepository) Update(ctx context.Context, id string, update models.UserUpdate) error {
	applied := false
	err := r.update(ctx, "update", func(tx *storage.Tx) error {
		u := tx.Users().Find(id)
		if u == nil {
			return nil
		}
		update.Apply(u)
		tx.Touch(storage.Users)
		applied = true
		return nil
	})
	if err != nil {
		return err
	}
	if !applied {
		r.log.LogNotFoundIgnored(ctx, "update", id)
		return nil
	}
	r.log.LogUpdate(ctx, "update", map[string]interface{}{"user_id": id, "fields": update.Fields()})
	return nil
}

// Delete removes every user with id. Follow edges, posts, and comments that
// reference the user are left in place.
func (r *userRepository) Delete(ctx context.Context, id string) error {
	removed := 0
	err := r.update(ctx, "delete", func(tx *storage.Tx) error {
		removed = tx.Users().RemoveAll(id)
		if removed > 0 {
			tx.Touch(storage.Users)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if removed == 0 {
		r.log.LogNotFoundIgnored(ctx, "delete", id)
		return nil
	}
	r.log.LogDelete(ctx, map[string]interface{}{"user_id": id, "removed": removed})
	return nil
}

func (r *userRepository) Suspend(ctx context.Context, id string) error {
	suspended := true
	return r.Update(ctx, id, models.UserUpdate{Suspended: &suspended})
}

func (r *userRepository) Unsuspend(ctx context.Context, id string) error {
	suspended := false
	return r.Update(ctx, id, models.UserUpdate{Suspended: &suspended})
}

// Follow records followerID -> targetID on both users. It is idempotent and a
// no-op when either user is missing or the ids are equal.
func (r *userRepository) Follow(ctx context.Context, followerID, targetID string) error {
	found := true
	err := r.update(ctx, "follow", func(tx *storage.Tx) error {
		follower, target := tx.Users().Find(followerID), tx.Users().Find(targetID)
		if follower == nil || target == nil {
			found = false
			return nil
		}
		if followerID == targetID {
			return nil
		}
		changed := false
		if !slices.Contains(follower.Following, targetID) {
			follower.Following = append(follower.Following, targetID)
			changed = true
		}
		if !slices.Contains(target.Followers, followerID) {
			target.Followers = append(target.Followers, followerID)
			changed = true
		}
		if changed {
			tx.Touch(storage.Users)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if !found {
		r.log.LogNotFoundIgnored(ctx, "follow", followerID+"->"+targetID)
		return nil
	}
	r.log.LogUpdate(ctx, "follow", map[string]interface{}{"follower_id": followerID, "target_id": targetID})
	return nil
}

// Unfollow removes followerID -> targetID from both users. It is a no-op when
// either user is missing or the edge does not exist.
func (r *userRepository) Unfollow(ctx context.Context, followerID, targetID string) error {
	found := true
	err := r.update(ctx, "unfollow", func(tx *storage.Tx) error {
		follower, target := tx.Users().Find(followerID), tx.Users().Find(targetID)
		if follower == nil || target == nil {
			found = false
			return nil
		}
		before := len(follower.Following) + len(target.Followers)
		follower.Following = slices.DeleteFunc(follower.Following, func(id string) bool { return id == targetID })
		target.Followers = slices.DeleteFunc(target.Followers, func(id string) bool { return id == followerID })
		if len(follower.Following)+len(target.Followers) != before {
			tx.Touch(storage.Users)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if !found {
		r.log.LogNotFoundIgnored(ctx, "unfollow", followerID+"->"+targetID)
		return nil
	}
	r.log.LogUpdate(ctx, "unfollow", map[string]interface{}{"follower_id": followerID, "target_id": targetID})
	return nil
}

// Authenticate looks the user up by email. The password is accepted but never
// checked; this is not a security boundary.
func (r *userRepository) Authenticate(ctx context.Context, email, _ string) (*models.User, error) {
	return r.GetByEmail(ctx, email)
}
