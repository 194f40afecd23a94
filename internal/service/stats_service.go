package service

import (
	"context"
	"time"

	"communityhub/internal/models"
	"communityhub/internal/repository"
)

// StatsService computes the admin dashboard numbers from the live collections.
type StatsService struct {
	users repository.UserRepository
	posts repository.PostRepository
}

func NewStatsService(users repository.UserRepository, posts repository.PostRepository) *StatsService {
	return &StatsService{users: users, posts: posts}
}

// Compute summarizes users and posts as of at. PostsPerDay counts posts created on
// at's calendar day in at's location. CategoryUsage counts posts per tag.
func (s *StatsService) Compute(ctx context.Context, sess Session, at time.Time) (*models.Statistics, error) {
	if _, err := requireAdmin(ctx, sess); err != nil {
		return nil, err
	}
	return s.compute(ctx, at)
}

// ComputeUnchecked is Compute without the admin check, for operator tooling.
func (s *StatsService) ComputeUnchecked(ctx context.Context, at time.Time) (*models.Statistics, error) {
	return s.compute(ctx, at)
}

func (s *StatsService) compute(ctx context.Context, at time.Time) (*models.Statistics, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.Statistics{
		TotalUsers:    len(users),
		TotalPosts:    len(posts),
		CategoryUsage: map[string]int{},
	}
	for _, u := range users {
		if u.Role == models.RoleUser && !u.Suspended {
			stats.ActiveUsers++
		}
	}

	loc := at.Location()
	year, month, day := at.Date()
	for _, p := range posts {
		if p.Status == models.PostStatusPending {
			stats.PendingPosts++
		}
		py, pm, pd := p.CreatedAt.In(loc).Date()
		if py == year && pm == month && pd == day {
			stats.PostsPerDay++
		}
		if p.Category != "" {
			stats.CategoryUsage[p.Category]++
		}
	}
	return stats, nil
}
