package models

import (
	"slices"
	"time"
)

// PostStatus is the moderation state of a post.
type PostStatus string

const (
	PostStatusPending  PostStatus = "pending"
	PostStatusApproved PostStatus = "approved"
	PostStatusRejected PostStatus = "rejected"
)

// Valid reports whether s is a known moderation status.
func (s PostStatus) Valid() bool {
	switch s {
	case PostStatusPending, PostStatusApproved, PostStatusRejected:
		return true
	}
	return false
}

// Post is a piece of user content. Username and UserAvatar are a snapshot of the
// author taken at creation time and are not kept in sync with profile edits.
// Category is a free-text tag, not a reference to a Category record.
type Post struct {
	ID         string     `json:"id" yaml:"id"`
	UserID     string     `json:"userId" yaml:"userId"`
	Username   string     `json:"username" yaml:"username"`
	UserAvatar string     `json:"userAvatar,omitempty" yaml:"userAvatar,omitempty"`
	Image      string     `json:"image,omitempty" yaml:"image,omitempty"`
	Video      string     `json:"video,omitempty" yaml:"video,omitempty"`
	Caption    string     `json:"caption" yaml:"caption"`
	Likes      []string   `json:"likes" yaml:"likes"`
	Comments   []Comment  `json:"comments" yaml:"comments"`
	Shares     int        `json:"shares" yaml:"shares"`
	Category   string     `json:"category" yaml:"category"`
	CreatedAt  time.Time  `json:"createdAt" yaml:"createdAt"`
	Status     PostStatus `json:"status" yaml:"status"`
}

// LikedBy reports whether userID is in the like set.
func (p *Post) LikedBy(userID string) bool {
	return slices.Contains(p.Likes, userID)
}

// Clone returns a deep copy so callers never share slices with the store.
func (p Post) Clone() Post {
	p.Likes = slices.Clone(p.Likes)
	p.Comments = slices.Clone(p.Comments)
	return p
}

// Comment is owned by its parent post. The author fields are a snapshot.
type Comment struct {
	ID         string    `json:"id" yaml:"id"`
	UserID     string    `json:"userId" yaml:"userId"`
	Username   string    `json:"username" yaml:"username"`
	UserAvatar string    `json:"userAvatar,omitempty" yaml:"userAvatar,omitempty"`
	Text       string    `json:"text" yaml:"text"`
	CreatedAt  time.Time `json:"createdAt" yaml:"createdAt"`
}

// PostUpdate is a shallow partial update of the editable post fields.
type PostUpdate struct {
	Caption  *string
	Category *string
	Image    *string
	Video    *string
}

// Apply merges the set fields into p.
func (u PostUpdate) Apply(p *Post) {
	if u.Caption != nil {
		p.Caption = *u.Caption
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.Image != nil {
		p.Image = *u.Image
	}
	if u.Video != nil {
		p.Video = *u.Video
	}
}
