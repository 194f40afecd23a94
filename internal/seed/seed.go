package seed

import (
	"context"
	"fmt"
	"log"

	"communityhub/internal/models"
	"communityhub/internal/repository"
	"communityhub/internal/session"
	"communityhub/internal/storage"
)

// Result counts what a run created.
type Result struct {
	Users    int
	Posts    int
	Follows  int
	Likes    int
	Comments int
	Shares   int
}

// Seeder layers demo data over a store's fixed seed records.
type Seeder struct {
	store      *storage.Store
	users      repository.UserRepository
	posts      repository.PostRepository
	categories repository.CategoryRepository
	factory    *Factory
	opts       Options
}

// NewSeeder creates a Seeder for store.
func NewSeeder(store *storage.Store, opts Options) *Seeder {
	users := repository.NewUserRepository(store)
	posts := repository.NewPostRepository(store)
	return &Seeder{
		store:      store,
		users:      users,
		posts:      posts,
		categories: repository.NewCategoryRepository(store),
		factory:    NewFactory(users, posts, opts),
		opts:       opts,
	}
}

// Reset rewrites the three collections with the fixed seed records and signs
// out the current user, whose record may no longer exist.
func (s *Seeder) Reset(ctx context.Context) error {
	if s.opts.DryRun {
		log.Println("[dry-run] Reset: collections left untouched")
		return nil
	}
	now := s.store.Now()
	if err := s.store.SaveUsers(ctx, storage.SeedUsers(now)); err != nil {
		return fmt.Errorf("reset users: %w", err)
	}
	if err := s.store.SavePosts(ctx, storage.SeedPosts(now)); err != nil {
		return fmt.Errorf("reset posts: %w", err)
	}
	if err := s.store.SaveCategories(ctx, storage.SeedCategories(now)); err != nil {
		return fmt.Errorf("reset categories: %w", err)
	}
	if err := session.ForStore(s.store).Clear(ctx); err != nil {
		return fmt.Errorf("reset session: %w", err)
	}
	return nil
}

// Run creates NumUsers users and NumPosts posts, then adds follows, likes,
// comments, and shares. About seven posts in ten end up approved and one in
// ten rejected; the rest stay pending for moderation.
func (s *Seeder) Run(ctx context.Context) (*Result, error) {
	if err := s.store.EnsureSeeded(ctx); err != nil {
		return nil, err
	}

	tags, err := s.categoryNames(ctx)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	created := make([]*models.User, 0, s.opts.NumUsers)
	for i := 0; i < s.opts.NumUsers; i++ {
		u, err := s.factory.CreateUser(ctx)
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		created = append(created, u)
		res.Users++
	}
	log.Printf("✓ %d users created", res.Users)

	if s.opts.DryRun {
		for i := 0; i < s.opts.NumPosts && len(created) > 0; i++ {
			author := created[s.factory.pick(len(created))]
			if _, err := s.factory.CreatePost(ctx, author, tags[s.factory.pick(len(tags))]); err != nil {
				return nil, err
			}
			res.Posts++
		}
		return res, nil
	}

	all, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) < 2 {
		return res, nil
	}

	for _, u := range created {
		for n := s.factory.faker.Number(0, 3); n > 0; n-- {
			target := all[s.factory.pick(len(all))]
			if target.ID == u.ID || u.IsFollowing(target.ID) {
				continue
			}
			if err := s.users.Follow(ctx, u.ID, target.ID); err != nil {
				return nil, fmt.Errorf("follow: %w", err)
			}
			u.Following = append(u.Following, target.ID)
			res.Follows++
		}
	}
	log.Printf("✓ %d follows created", res.Follows)

	for i := 0; i < s.opts.NumPosts; i++ {
		author := &all[s.factory.pick(len(all))]
		post, err := s.factory.CreatePost(ctx, author, tags[s.factory.pick(len(tags))])
		if err != nil {
			return nil, fmt.Errorf("create post: %w", err)
		}
		res.Posts++

		if err := s.moderate(ctx, post.ID); err != nil {
			return nil, err
		}
		if err := s.engage(ctx, post, all, res); err != nil {
			return nil, err
		}
	}
	log.Printf("✓ %d posts created (%d likes, %d comments, %d shares)", res.Posts, res.Likes, res.Comments, res.Shares)

	return res, nil
}

func (s *Seeder) moderate(ctx context.Context, postID string) error {
	status := models.PostStatusPending
	switch roll := s.factory.faker.Number(1, 10); {
	case roll <= 7:
		status = models.PostStatusApproved
	case roll == 8:
		status = models.PostStatusRejected
	}
	if status == models.PostStatusPending {
		return nil
	}
	if err := s.posts.SetStatus(ctx, postID, status); err != nil {
		return fmt.Errorf("moderate post: %w", err)
	}
	return nil
}

func (s *Seeder) engage(ctx context.Context, post *models.Post, users []models.User, res *Result) error {
	for n := s.factory.faker.Number(0, min(5, len(users))); n > 0; n-- {
		u := users[s.factory.pick(len(users))]
		if post.LikedBy(u.ID) {
			continue
		}
		if err := s.posts.Like(ctx, post.ID, u.ID); err != nil {
			return fmt.Errorf("like post: %w", err)
		}
		post.Likes = append(post.Likes, u.ID)
		res.Likes++
	}

	for n := s.factory.faker.Number(0, 3); n > 0; n-- {
		u := users[s.factory.pick(len(users))]
		if err := s.posts.AddComment(ctx, post.ID, s.factory.BuildComment(&u, post)); err != nil {
			return fmt.Errorf("comment on post: %w", err)
		}
		res.Comments++
	}

	for n := s.factory.faker.Number(0, 2); n > 0; n-- {
		if err := s.posts.Share(ctx, post.ID); err != nil {
			return fmt.Errorf("share post: %w", err)
		}
		res.Shares++
	}
	return nil
}

func (s *Seeder) categoryNames(ctx context.Context) ([]string, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	if len(names) == 0 {
		names = []string{"general"}
	}
	return names, nil
}
