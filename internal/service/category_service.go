package service

import (
	"context"
	"strings"

	"communityhub/internal/events"
	"communityhub/internal/models"
	"communityhub/internal/repository"
	"communityhub/internal/validation"
)

type CategoryService struct {
	categories repository.CategoryRepository
	publisher  events.Publisher
}

type CategoryInput struct {
	Name        string
	Description string
}

func NewCategoryService(categories repository.CategoryRepository, publisher events.Publisher) *CategoryService {
	return &CategoryService{categories: categories, publisher: publisherOrNop(publisher)}
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	return s.categories.List(ctx)
}

// Create adds a category. The name is normalized to match post tags. Admin only.
func (s *CategoryService) Create(ctx context.Context, sess Session, in CategoryInput) (*models.Category, error) {
	admin, err := requireAdmin(ctx, sess)
	if err != nil {
		return nil, err
	}
	name := validation.NormalizeCategoryName(in.Name)
	if err := validation.ValidateCategoryName(name); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	category, err := s.categories.Create(ctx, name, strings.TrimSpace(in.Description))
	if err != nil {
		return nil, err
	}
	events.Emit(ctx, s.publisher, events.New(events.CategoryCreated, admin.ID, category.ID, map[string]any{
		"name": category.Name,
	}))
	return category, nil
}

// Update renames or redescribes a category. Admin only.
func (s *CategoryService) Update(ctx context.Context, sess Session, id string, name, description *string) error {
	if _, err := requireAdmin(ctx, sess); err != nil {
		return err
	}
	update := models.CategoryUpdate{Description: description}
	if name != nil {
		normalized := validation.NormalizeCategoryName(*name)
		if err := validation.ValidateCategoryName(normalized); err != nil {
			return models.NewValidationError(err.Error())
		}
		update.Name = &normalized
	}
	return s.categories.Update(ctx, id, update)
}

// Delete removes a category. Posts tagged with it keep their tag. Admin only.
func (s *CategoryService) Delete(ctx context.Context, sess Session, id string) error {
	admin, err := requireAdmin(ctx, sess)
	if err != nil {
		return err
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	events.Emit(ctx, s.publisher, events.New(events.CategoryDeleted, admin.ID, id, nil))
	return nil
}
