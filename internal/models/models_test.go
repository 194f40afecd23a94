package models

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserUpdate_ApplyOnlySetFields(t *testing.T) {
	u := User{ID: "1", Username: "old", Bio: "keep me", Suspended: false}
	name := "new"
	suspended := true

	UserUpdate{Username: &name, Suspended: &suspended}.Apply(&u)

	assert.Equal(t, "new", u.Username)
	assert.Equal(t, "keep me", u.Bio)
	assert.True(t, u.Suspended)
	assert.Equal(t, []string{"username", "suspended"}, UserUpdate{Username: &name, Suspended: &suspended}.Fields())
}

func TestUser_CloneDoesNotShareSlices(t *testing.T) {
	u := User{ID: "1", Followers: []string{"2"}, Following: []string{"3"}}
	c := u.Clone()
	c.Followers[0] = "x"
	c.Following = append(c.Following, "y")

	assert.Equal(t, []string{"2"}, u.Followers)
	assert.Equal(t, []string{"3"}, u.Following)
}

func TestPost_CloneDoesNotShareSlices(t *testing.T) {
	p := Post{ID: "1", Likes: []string{"a"}, Comments: []Comment{{ID: "c1", Text: "hi"}}}
	c := p.Clone()
	c.Likes[0] = "b"
	c.Comments[0].Text = "changed"

	assert.Equal(t, "a", p.Likes[0])
	assert.Equal(t, "hi", p.Comments[0].Text)
	assert.True(t, p.LikedBy("a"))
	assert.False(t, p.LikedBy("b"))
}

func TestPostStatus_Valid(t *testing.T) {
	assert.True(t, PostStatusPending.Valid())
	assert.True(t, PostStatusApproved.Valid())
	assert.True(t, PostStatusRejected.Valid())
	assert.False(t, PostStatus("archived").Valid())
	assert.False(t, PostStatus("").Valid())
}

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("root").Valid())
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
	assert.False(t, (*User)(nil).IsAdmin())
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", NewNotFoundError("Post", "9"), http.StatusNotFound},
		{"validation", NewValidationError("bad"), http.StatusBadRequest},
		{"unauthorized", NewUnauthorizedError("login"), http.StatusUnauthorized},
		{"forbidden", NewForbiddenError("admins only"), http.StatusForbidden},
		{"wrapped validation", fmt.Errorf("ctx: %w", NewValidationError("bad")), http.StatusBadRequest},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestAppError_UnwrapsCause(t *testing.T) {
	cause := errors.New("redis down")
	err := NewInternalError(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Internal server error: redis down", err.Error())
	assert.True(t, IsNotFound(NewNotFoundError("User", "1")))
	assert.False(t, IsNotFound(err))
}
