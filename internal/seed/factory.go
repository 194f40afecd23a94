// Package seed generates demo users, posts, and engagement on top of the fixed
// seed records. These helpers are intended for development and testing only.
package seed

import (
	"context"
	"fmt"
	"log"
	"time"

	"communityhub/internal/models"
	"communityhub/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
)

// Options configures the demo data generator.
type Options struct {
	NumUsers int
	NumPosts int
	// MaxDays bounds how far back post timestamps are spread.
	MaxDays int
	// Seed makes the generated data reproducible. Zero uses the clock.
	Seed int64
	// DryRun builds entities without writing them.
	DryRun bool
}

// Factory builds domain entities and persists them through the repositories.
type Factory struct {
	users repository.UserRepository
	posts repository.PostRepository
	faker *gofakeit.Faker
	opts  Options
	now   time.Time
}

// NewFactory creates a Factory writing through the given repositories.
func NewFactory(users repository.UserRepository, posts repository.PostRepository, opts Options) *Factory {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if opts.MaxDays <= 0 {
		opts.MaxDays = 30
	}
	return &Factory{
		users: users,
		posts: posts,
		faker: gofakeit.New(seed),
		opts:  opts,
		now:   time.Now().UTC(),
	}
}

// BuildUser returns a regular user with fake profile data.
func (f *Factory) BuildUser(overrides ...func(*models.User)) models.User {
	user := models.User{
		ID:        f.faker.UUID(),
		Username:  fmt.Sprintf("%s%d", f.faker.Username(), f.faker.Number(100, 999)),
		Email:     f.faker.Email(),
		Role:      models.RoleUser,
		Avatar:    fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.faker.UUID()),
		Bio:       f.faker.Sentence(10),
		Followers: []string{},
		Following: []string{},
		CreatedAt: f.backdate(),
	}
	if f.faker.Number(0, 2) == 0 {
		user.Link = f.faker.URL()
	}
	for _, override := range overrides {
		override(&user)
	}
	return user
}

// CreateUser builds a user and stores it.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	user := f.BuildUser(overrides...)
	if f.opts.DryRun {
		log.Printf("[dry-run] CreateUser: id=%s username=%s", user.ID, user.Username)
		return &user, nil
	}
	if err := f.users.Create(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// BuildPost returns a post by author tagged with category. Roughly one post in
// five carries a video instead of an image.
func (f *Factory) BuildPost(author *models.User, category string, overrides ...func(*models.Post)) models.Post {
	post := models.Post{
		ID:         f.faker.UUID(),
		UserID:     author.ID,
		Username:   author.Username,
		UserAvatar: author.Avatar,
		Caption:    f.faker.Sentence(f.faker.Number(4, 14)),
		Likes:      []string{},
		Comments:   []models.Comment{},
		Category:   category,
		CreatedAt:  f.backdate(),
		Status:     models.PostStatusPending,
	}
	if f.faker.Number(0, 4) == 0 {
		post.Video = fmt.Sprintf("https://videos.example.com/%s.mp4", f.faker.UUID())
	} else {
		post.Image = fmt.Sprintf("https://picsum.photos/seed/%s/800/800", f.faker.UUID())
	}
	for _, override := range overrides {
		override(&post)
	}
	return post
}

// CreatePost builds a post and stores it. Stored posts always start pending.
func (f *Factory) CreatePost(ctx context.Context, author *models.User, category string, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(author, category, overrides...)
	if f.opts.DryRun {
		log.Printf("[dry-run] CreatePost: id=%s user=%s category=%s", post.ID, post.UserID, post.Category)
		return &post, nil
	}
	if err := f.posts.Create(ctx, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// BuildComment returns a comment by author dated after the post.
func (f *Factory) BuildComment(author *models.User, post *models.Post) models.Comment {
	created := post.CreatedAt.Add(time.Duration(f.faker.Number(1, 720)) * time.Minute)
	if created.After(f.now) {
		created = f.now
	}
	return models.Comment{
		ID:         f.faker.UUID(),
		UserID:     author.ID,
		Username:   author.Username,
		UserAvatar: author.Avatar,
		Text:       f.faker.Sentence(f.faker.Number(3, 12)),
		CreatedAt:  created,
	}
}

// backdate returns a time within the last MaxDays.
func (f *Factory) backdate() time.Time {
	minutes := f.faker.Number(0, f.opts.MaxDays*24*60)
	return f.now.Add(-time.Duration(minutes) * time.Minute)
}

// pick returns a pseudo-random index below n.
func (f *Factory) pick(n int) int {
	return f.faker.Number(0, n-1)
}
