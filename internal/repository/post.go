package repository

import (
	"context"
	"slices"

	"communityhub/internal/models"
	"communityhub/internal/storage"
)

// PostRepository defines the interface for post data operations.
// Lists are newest first. Mutations on an unknown id are silent no-ops.
type PostRepository interface {
	List(ctx context.Context) ([]models.Post, error)
	ListApproved(ctx context.Context) ([]models.Post, error)
	ListPending(ctx context.Context) ([]models.Post, error)
	ListByStatus(ctx context.Context, status models.PostStatus) ([]models.Post, error)
	ListByUser(ctx context.Context, userID string) ([]models.Post, error)
	GetByID(ctx context.Context, id string) (*models.Post, error)
	Create(ctx context.Context, post *models.Post) error
	SetStatus(ctx context.Context, id string, status models.PostStatus) error
	Update(ctx context.Context, id string, update models.PostUpdate) error
	Delete(ctx context.Context, id string) error
	Like(ctx context.Context, id, userID string) error
	Unlike(ctx context.Context, id, userID string) error
	ToggleLike(ctx context.Context, id, userID string) (bool, error)
	AddComment(ctx context.Context, id string, comment models.Comment) error
	Share(ctx context.Context, id string) error
}

// postRepository implements PostRepository
type postRepository struct {
	base
}

// NewPostRepository creates a new post repository
func NewPostRepository(store *storage.Store) PostRepository {
	return &postRepository{base: newBase(store, storage.Posts)}
}

func (r *postRepository) filter(ctx context.Context, op string, keep func(p *models.Post) bool) ([]models.Post, error) {
	var out []models.Post
	err := r.view(ctx, op, func(tx *storage.Tx) error {
		out = storage.ClonePosts(tx.Posts().Filter(keep))
		return nil
	})
	return out, err
}

func (r *postRepository) List(ctx context.Context) ([]models.Post, error) {
	return r.filter(ctx, "list", func(*models.Post) bool { return true })
}

func (r *postRepository) ListApproved(ctx context.Context) ([]models.Post, error) {
	return r.ListByStatus(ctx, models.PostStatusApproved)
}

func (r *postRepository) ListPending(ctx context.Context) ([]models.Post, error) {
	return r.ListByStatus(ctx, models.PostStatusPending)
}

func (r *postRepository) ListByStatus(ctx context.Context, status models.PostStatus) ([]models.Post, error) {
	return r.filter(ctx, "list_by_status", func(p *models.Post) bool { return p.Status == status })
}

func (r *postRepository) ListByUser(ctx context.Context, userID string) ([]models.Post, error) {
	return r.filter(ctx, "list_by_user", func(p *models.Post) bool { return p.UserID == userID })
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	var out *models.Post
	err := r.view(ctx, "get_by_id", func(tx *storage.Tx) error {
		if p := tx.Posts().Find(id); p != nil {
			c := p.Clone()
			out = &c
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, models.NewNotFoundError("Post", id)
	}
	return out, nil
}

// Create inserts post at the front. Whatever status the caller set, the stored
// post is pending; post.Status is updated to match.
func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	post.Status = models.PostStatusPending
	post.Likes = orEmpty(post.Likes)
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	err := r.update(ctx, "create", func(tx *storage.Tx) error {
		tx.Posts().Prepend(post.Clone())
		tx.Touch(storage.Posts)
		return nil
	})
	if err == nil {
		r.log.LogCreate(ctx, map[string]interface{}{"post_id": post.ID, "user_id": post.UserID, "category": post.Category})
	}
	return err
}

// mutate applies fn to the first post with id. It reports whether the post existed.
func (r *postRepository) mutate(ctx context.Context, op, id string, fn func(p *models.Post) bool) (bool, error) {
	found := false
	err := r.update(ctx, op, func(tx *storage.Tx) error {
		p := tx.Posts().Find(id)
		if p == nil {
			return nil
		}
		found = true
		if fn(p) {
			tx.Touch(storage.Posts)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	if !found {
		r.log.LogNotFoundIgnored(ctx, op, id)
	}
	return found, nil
}

// SetStatus moves a post between moderation states. Role checks belong to the caller.
func (r *postRepository) SetStatus(ctx context.Context, id string, status models.PostStatus) error {
	if !status.Valid() {
		return models.NewValidationError("Invalid post status: " + string(status))
	}
	found, err := r.mutate(ctx, "set_status", id, func(p *models.Post) bool {
		changed := p.Status != status
		p.Status = status
		return changed
	})
	if err == nil && found {
		r.log.LogUpdate(ctx, "set_status", map[string]interface{}{"post_id": id, "status": status})
	}
	return err
}

func (r *postRepository) Update(ctx context.Context, id string, update models.PostUpdate) error {
	found, err := r.mutate(ctx, "update", id, func(p *models.Post) bool {
		update.Apply(p)
		return true
	})
	if err == nil && found {
		r.log.LogUpdate(ctx, "update", map[string]interface{}{"post_id": id})
	}
	return err
}

// Delete removes every post with id. Category post counts are not adjusted.
func (r *postRepository) Delete(ctx context.Context, id string) error {
	removed := 0
	err := r.update(ctx, "delete", func(tx *storage.Tx) error {
		removed = tx.Posts().RemoveAll(id)
		if removed > 0 {
			tx.Touch(storage.Posts)
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
	r.log.LogDelete(ctx, map[string]interface{}{"post_id": id})
	return nil
}

// Like adds userID to the like set if it is not already there.
func (r *postRepository) Like(ctx context.Context, id, userID string) error {
	_, err := r.mutate(ctx, "like", id, func(p *models.Post) bool {
		if p.LikedBy(userID) {
			return false
		}
		p.Likes = append(p.Likes, userID)
		return true
	})
	return err
}

// Unlike removes userID from the like set.
func (r *postRepository) Unlike(ctx context.Context, id, userID string) error {
	_, err := r.mutate(ctx, "unlike", id, func(p *models.Post) bool {
		before := len(p.Likes)
		p.Likes = slices.DeleteFunc(p.Likes, func(u string) bool { return u == userID })
		return len(p.Likes) != before
	})
	return err
}

// ToggleLike flips userID's like and reports whether the post is now liked by them.
// A missing post reports false.
func (r *postRepository) ToggleLike(ctx context.Context, id, userID string) (bool, error) {
	liked := false
	_, err := r.mutate(ctx, "toggle_like", id, func(p *models.Post) bool {
		if p.LikedBy(userID) {
			p.Likes = slices.DeleteFunc(p.Likes, func(u string) bool { return u == userID })
			return true
		}
		p.Likes = append(p.Likes, userID)
		liked = true
		return true
	})
	return liked, err
}

// AddComment appends comment in arrival order.
func (r *postRepository) AddComment(ctx context.Context, id string, comment models.Comment) error {
	found, err := r.mutate(ctx, "add_comment", id, func(p *models.Post) bool {
		p.Comments = append(p.Comments, comment)
		return true
	})
	if err == nil && found {
		r.log.LogUpdate(ctx, "add_comment", map[string]interface{}{"post_id": id, "comment_id": comment.ID})
	}
	return err
}

// Share increments the share counter by one.
func (r *postRepository) Share(ctx context.Context, id string) error {
	_, err := r.mutate(ctx, "share", id, func(p *models.Post) bool {
		p.Shares++
		return true
	})
	return err
}
