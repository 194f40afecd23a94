package repository

import (
	"context"

	"communityhub/internal/models"
	"communityhub/internal/storage"

	"github.com/google/uuid"
)

// CategoryRepository defines the interface for category data operations.
// Categories are independent of posts: creating one snapshots the number of
// posts tagged with its name, and nothing keeps that number current.
type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id string) (*models.Category, error)
	Create(ctx context.Context, name, description string) (*models.Category, error)
	Update(ctx context.Context, id string, update models.CategoryUpdate) error
	Delete(ctx context.Context, id string) error
}

type categoryRepository struct {
	base
	newID func() string
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(store *storage.Store) CategoryRepository {
	return &categoryRepository{
		base:  newBase(store, storage.Categories),
		newID: uuid.NewString,
	}
}

func (r *categoryRepository) List(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	err := r.view(ctx, "list", func(tx *storage.Tx) error {
		out = append([]models.Category{}, tx.Categories().Rows()...)
		return nil
	})
	return out, err
}

func (r *categoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	var out *models.Category
	err := r.view(ctx, "get_by_id", func(tx *storage.Tx) error {
		if c := tx.Categories().Find(id); c != nil {
			cp := *c
			out = &cp
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, models.NewNotFoundError("Category", id)
	}
	return out, nil
}

func (r *categoryRepository) Create(ctx context.Context, name, description string) (*models.Category, error) {
	var created models.Category
	err := r.update(ctx, "create", func(tx *storage.Tx) error {
		count := len(tx.Posts().Filter(func(p *models.Post) bool { return p.Category == name }))
		created = models.Category{
			ID:          r.newID(),
			Name:        name,
			Description: description,
			PostCount:   count,
			CreatedAt:   tx.Now(),
		}
		tx.Categories().Append(created)
		tx.Touch(storage.Categories)
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.log.LogCreate(ctx, map[string]interface{}{"category_id": created.ID, "name": name, "post_count": created.PostCount})
	return &created, nil
}

func (r *categoryRepository) Update(ctx context.Context, id string, update models.CategoryUpdate) error {
	found := false
	err := r.update(ctx, "update", func(tx *storage.Tx) error {
		c := tx.Categories().Find(id)
		if c == nil {
			return nil
		}
		found = true
		update.Apply(c)
		tx.Touch(storage.Categories)
		return nil
	})
	if err != nil {
		return err
	}
	if !found {
		r.log.LogNotFoundIgnored(ctx, "update", id)
		return nil
	}
	r.log.LogUpdate(ctx, "update", map[string]interface{}{"category_id": id})
	return nil
}

// Delete removes the category. Posts tagged with its name keep the tag.
func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	removed := 0
	err := r.update(ctx, "delete", func(tx *storage.Tx) error {
		removed = tx.Categories().RemoveAll(id)
		if removed > 0 {
			tx.Touch(storage.Categories)
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
	r.log.LogDelete(ctx, map[string]interface{}{"category_id": id})
	return nil
}
