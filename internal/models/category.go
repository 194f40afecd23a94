package models

import "time"

// Category groups posts by tag name.
// PostCount is captured once when the category is created and is not recomputed.
type Category struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description" yaml:"description"`
	PostCount   int       `json:"postCount" yaml:"postCount"`
	CreatedAt   time.Time `json:"createdAt" yaml:"createdAt"`
}

// CategoryUpdate is a shallow partial update of a category.
type CategoryUpdate struct {
	Name        *string
	Description *string
}

// Apply merges the set fields into c.
func (u CategoryUpdate) Apply(c *Category) {
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.Description != nil {
		c.Description = *u.Description
	}
}

// Statistics is the admin dashboard summary.
type Statistics struct {
	TotalUsers    int            `json:"totalUsers"`
	ActiveUsers   int            `json:"activeUsers"`
	TotalPosts    int            `json:"totalPosts"`
	PendingPosts  int            `json:"pendingPosts"`
	PostsPerDay   int            `json:"postsPerDay"`
	CategoryUsage map[string]int `json:"categoryUsage"`
}
