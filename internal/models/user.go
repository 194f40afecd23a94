// Package models contains data structures for the application's domain models.
package models

import (
	"slices"
	"time"
)

// Role is the access level of a user.
type Role string

const (
	RoleGuest Role = "guest"
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleGuest, RoleUser, RoleAdmin:
		return true
	}
	return false
}

// User represents a member of the community.
// Followers and Following hold user IDs and are kept symmetric across the user collection.
type User struct {
	ID        string    `json:"id" yaml:"id"`
	Username  string    `json:"username" yaml:"username"`
	Email     string    `json:"email" yaml:"email"`
	Role      Role      `json:"role" yaml:"role"`
	Avatar    string    `json:"avatar,omitempty" yaml:"avatar,omitempty"`
	Bio       string    `json:"bio,omitempty" yaml:"bio,omitempty"`
	Link      string    `json:"link,omitempty" yaml:"link,omitempty"`
	Followers []string  `json:"followers" yaml:"followers"`
	Following []string  `json:"following" yaml:"following"`
	Suspended bool      `json:"suspended" yaml:"suspended"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// IsFollowing reports whether the user follows targetID.
func (u *User) IsFollowing(targetID string) bool {
	return slices.Contains(u.Following, targetID)
}

// Clone returns a deep copy so callers never share slices with the store.
func (u User) Clone() User {
	u.Followers = slices.Clone(u.Followers)
	u.Following = slices.Clone(u.Following)
	return u
}

// UserUpdate is a shallow partial update. Nil fields are left untouched.
type UserUpdate struct {
	Username  *string
	Email     *string
	Role      *Role
	Avatar    *string
	Bio       *string
	Link      *string
	Suspended *bool
}

// Apply merges the set fields into u.
func (p UserUpdate) Apply(u *User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.Link != nil {
		u.Link = *p.Link
	}
	if p.Suspended != nil {
		u.Suspended = *p.Suspended
	}
}

// Fields lists the names of the fields set on the update, for logging.
func (p UserUpdate) Fields() []string {
	var out []string
	if p.Username != nil {
		out = append(out, "username")
	}
	if p.Email != nil {
		out = append(out, "email")
	}
	if p.Role != nil {
		out = append(out, "role")
	}
	if p.Avatar != nil {
		out = append(out, "avatar")
	}
	if p.Bio != nil {
		out = append(out, "bio")
	}
	if p.Link != nil {
		out = append(out, "link")
	}
	if p.Suspended != nil {
		out = append(out, "suspended")
	}
	return out
}
