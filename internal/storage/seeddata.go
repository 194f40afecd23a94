package storage

import (
	"time"

	"communityhub/internal/models"
)

const day = 24 * time.Hour

// SeedUsers returns the fixed users written to an absent users slot.
func SeedUsers(now time.Time) []models.User {
	return []models.User{
		{
			ID:        "1",
			Username:  "admin",
			Email:     "admin@community.com",
			Role:      models.RoleAdmin,
			Avatar:    "/admin-avatar.png",
			Bio:       "Platform Administrator",
			Followers: []string{},
			Following: []string{"2"},
			CreatedAt: now,
		},
		{
			ID:        "2",
			Username:  "johndoe",
			Email:     "john@example.com",
			Role:      models.RoleUser,
			Avatar:    "/diverse-user-avatars.png",
			Bio:       "Passionate about community building and sharing experiences",
			Link:      "https://johndoe.com",
			Followers: []string{"1"},
			Following: []string{},
			CreatedAt: now,
		},
	}
}

// SeedPosts returns the three approved posts written to an absent posts slot.
func SeedPosts(now time.Time) []models.Post {
	post := func(id, image, caption, category string, likes []string, shares int, age time.Duration) models.Post {
		return models.Post{
			ID:         id,
			UserID:     "2",
			Username:   "johndoe",
			UserAvatar: "/diverse-user-avatars.png",
			Image:      image,
			Caption:    caption,
			Likes:      likes,
			Comments:   []models.Comment{},
			Shares:     shares,
			Category:   category,
			CreatedAt:  now.Add(-age),
			Status:     models.PostStatusApproved,
		}
	}
	return []models.Post{
		post("1", "/nature-landscape-sunset.jpg",
			"Beautiful sunset at the mountains today! Nature never fails to amaze me.",
			"nature", []string{"1"}, 5, day),
		post("2", "/coffee-cafe-latte-art.jpg",
			"Morning coffee ritual ☕ Starting the day right!",
			"lifestyle", []string{}, 2, 2*day),
		post("3", "/cozy-library-reading.jpg",
			"Diving into some great reads this week. What are you reading?",
			"books", []string{"1"}, 1, 3*day),
	}
}

// SeedCategories returns the fixed categories written to an absent categories slot.
func SeedCategories(now time.Time) []models.Category {
	return []models.Category{
		{ID: "1", Name: "nature", Description: "Nature and outdoor content", PostCount: 1, CreatedAt: now},
		{ID: "2", Name: "lifestyle", Description: "Lifestyle and daily activities", PostCount: 1, CreatedAt: now},
		{ID: "3", Name: "books", Description: "Books and reading", PostCount: 1, CreatedAt: now},
	}
}
