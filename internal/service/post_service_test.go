package service

import (
	"context"
	"errors"
	"testing"

	"communityhub/internal/events"
	"communityhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreatePost_PendingWithAuthorSnapshot(t *testing.T) {
	h := newHarness(t, "")
	h.loginAs(t, johnEmail)

	post, err := h.post.CreatePost(ctx, h.sess, CreatePostInput{
		Image:    "https://img.example.com/a.jpg",
		Caption:  " sunset ",
		Category: " Nature ",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusPending, post.Status)
	assert.Equal(t, "2", post.UserID)
	assert.Equal(t, "johndoe", post.Username)
	assert.Equal(t, "sunset", post.Caption)
	assert.Equal(t, "nature", post.Category)

	all, err := h.posts.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, post.ID, all[0].ID)

	feed, err := h.post.Feed(ctx)
	require.NoError(t, err)
	assert.Len(t, feed, 3)
	assert.Equal(t, []events.Subject{events.PostCreated}, h.recorder.Subjects())
}

func TestCreatePost_Rejections(t *testing.T) {
	h := newHarness(t, "")

	_, err := h.post.CreatePost(ctx, h.sess, CreatePostInput{Image: "a.jpg", Caption: "c"})
	assert.Equal(t, models.CodeUnauthorized, models.ErrorCode(err))

	h.loginAs(t, johnEmail)
	tests := []struct {
		name string
		in   CreatePostInput
	}{
		{"no caption", CreatePostInput{Image: "a.jpg"}},
		{"no media", CreatePostInput{Caption: "c"}},
		{"both media", CreatePostInput{Image: "a.jpg", Video: "b.mp4", Caption: "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.post.CreatePost(ctx, h.sess, tt.in)
			assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
		})
	}

	require.NoError(t, h.users.Suspend(ctx, "2"))
	h.loginAs(t, johnEmail)
	_, err = h.post.CreatePost(ctx, h.sess, CreatePostInput{Image: "a.jpg", Caption: "c"})
	assert.Equal(t, models.CodeForbidden, models.ErrorCode(err))
}

func TestToggleLike(t *testing.T) {
	h := newHarness(t, "")
	h.loginAs(t, adminEmail)

	liked, err := h.post.ToggleLike(ctx, h.sess, "2")
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = h.post.ToggleLike(ctx, h.sess, "2")
	require.NoError(t, err)
	assert.False(t, liked)

	post, err := h.posts.GetByID(ctx, "2")
	require.NoError(t, err)
	assert.Empty(t, post.Likes)
}

func TestComment(t *testing.T) {
	h := newHarness(t, "")
	h.loginAs(t, adminEmail)

	c, err := h.post.Comment(ctx, h.sess, "2", "  nice  ")
	require.NoError(t, err)
	assert.Equal(t, "nice", c.Text)
	assert.Equal(t, "admin", c.Username)

	post, err := h.posts.GetByID(ctx, "2")
	require.NoError(t, err)
	require.Len(t, post.Comments, 1)
	assert.Equal(t, c.ID, post.Comments[0].ID)

	_, err = h.post.Comment(ctx, h.sess, "2", "   ")
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
}

func TestEngagementFlags(t *testing.T) {
	h := newHarness(t, "comments=off,sharing=off")
	h.loginAs(t, johnEmail)

	_, err := h.post.Comment(ctx, h.sess, "1", "hi")
	assert.Equal(t, models.CodeForbidden, models.ErrorCode(err))

	err = h.post.Share(ctx, h.sess, "1")
	assert.Equal(t, models.CodeForbidden, models.ErrorCode(err))
}

func TestShare_Increments(t *testing.T) {
	h := newHarness(t, "")
	h.loginAs(t, johnEmail)

	before, err := h.posts.GetByID(ctx, "3")
	require.NoError(t, err)
	require.NoError(t, h.post.Share(ctx, h.sess, "3"))
	after, err := h.posts.GetByID(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, before.Shares+1, after.Shares)
}

func TestModerateAndDelete(t *testing.T) {
	h := newHarness(t, "")
	h.loginAs(t, johnEmail)

	err := h.post.Moderate(ctx, h.sess, "1", models.PostStatusRejected)
	assert.Equal(t, models.CodeForbidden, models.ErrorCode(err))

	h.loginAs(t, adminEmail)
	require.NoError(t, h.post.Moderate(ctx, h.sess, "1", models.PostStatusRejected))
	post, err := h.posts.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusRejected, post.Status)

	err = h.post.Moderate(ctx, h.sess, "1", models.PostStatus("archived"))
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))

	rejected, err := h.post.ListByStatus(ctx, h.sess, models.PostStatusRejected)
	require.NoError(t, err)
	require.Len(t, rejected, 1)

	require.NoError(t, h.post.DeletePost(ctx, h.sess, "1"))
	require.NoError(t, h.post.DeletePost(ctx, h.sess, "1"))
	_, err = h.post.GetPost(ctx, h.sess, "1")
	assert.True(t, models.IsNotFound(err))
}

func TestGetPost_HidesUnapprovedFromOthers(t *testing.T) {
	h := newHarness(t, "")
	require.NoError(t, h.posts.SetStatus(ctx, "1", models.PostStatusPending))

	_, err := h.post.GetPost(ctx, h.sess, "1")
	assert.True(t, models.IsNotFound(err))
	approved, err := h.post.GetPost(ctx, h.sess, "2")
	require.NoError(t, err)
	assert.Equal(t, "2", approved.ID)

	h.loginAs(t, johnEmail)
	own, err := h.post.GetPost(ctx, h.sess, "1")
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusPending, own.Status)

	h.loginAs(t, adminEmail)
	_, err = h.post.GetPost(ctx, h.sess, "1")
	require.NoError(t, err)

	_, err = h.auth.Register(ctx, h.sess, RegisterInput{Username: "carol", Email: "carol@example.com"})
	require.NoError(t, err)
	_, err = h.post.GetPost(ctx, h.sess, "1")
	assert.True(t, models.IsNotFound(err))
}

func TestListByUser_VisibilityByViewer(t *testing.T) {
	h := newHarness(t, "")
	require.NoError(t, h.posts.SetStatus(ctx, "1", models.PostStatusPending))

	guest, err := h.post.ListByUser(ctx, h.sess, "2")
	require.NoError(t, err)
	assert.Len(t, guest, 2)

	h.loginAs(t, johnEmail)
	owner, err := h.post.ListByUser(ctx, h.sess, "2")
	require.NoError(t, err)
	assert.Len(t, owner, 3)
}

func TestUpdatePost_AuthorOrAdmin(t *testing.T) {
	h := newHarness(t, "")

	_, err := h.auth.Register(ctx, h.sess, RegisterInput{Username: "other", Email: "o@example.com"})
	require.NoError(t, err)
	err = h.post.UpdatePost(ctx, h.sess, "1", UpdatePostInput{Caption: strPtr("hijack")})
	assert.Equal(t, models.CodeForbidden, models.ErrorCode(err))

	h.loginAs(t, johnEmail)
	require.NoError(t, h.post.UpdatePost(ctx, h.sess, "1", UpdatePostInput{Caption: strPtr("edited"), Category: strPtr("Travel")}))
	post, err := h.posts.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "edited", post.Caption)
	assert.Equal(t, "travel", post.Category)

	err = h.post.UpdatePost(ctx, h.sess, "1", UpdatePostInput{Caption: strPtr(" ")})
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))

	assert.NoError(t, h.post.UpdatePost(ctx, h.sess, "missing", UpdatePostInput{Caption: strPtr("x")}))
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, event events.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *mockPublisher) Close() error { return nil }

func TestModerate_PublishFailureDoesNotFailOperation(t *testing.T) {
	h := newHarness(t, "")
	h.loginAs(t, adminEmail)

	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(e events.Event) bool {
		return e.Subject == events.PostModerated && e.EntityID == "2" && e.Data["status"] == "rejected"
	})).Return(errors.New("broker down")).Once()

	svc := NewPostService(h.posts, pub, nil)
	require.NoError(t, svc.Moderate(ctx, h.sess, "2", models.PostStatusRejected))
	pub.AssertExpectations(t)

	post, err := h.posts.GetByID(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusRejected, post.Status)
}
