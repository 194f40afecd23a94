package repository

import (
	"testing"

	"communityhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_CreateForcesPending(t *testing.T) {
	f := newFixture(t)
	p := &models.Post{ID: "10", UserID: "2", Caption: "hello", Image: "/a.jpg", Status: models.PostStatusApproved}

	mustNoErr(t, f.posts.Create(ctx, p))
	assert.Equal(t, models.PostStatusPending, p.Status)

	stored, err := f.posts.GetByID(ctx, "10")
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusPending, stored.Status)

	approved, err := f.posts.ListApproved(ctx)
	require.NoError(t, err)
	for _, a := range approved {
		assert.NotEqual(t, "10", a.ID)
	}
}

func TestPostRepository_NewestFirst(t *testing.T) {
	f := newFixture(t)
	mustNoErr(t, f.posts.Create(ctx, &models.Post{ID: "10", Caption: "first"}))
	mustNoErr(t, f.posts.Create(ctx, &models.Post{ID: "11", Caption: "second"}))

	posts, err := f.posts.List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 5)
	assert.Equal(t, []string{"11", "10", "1", "2", "3"}, []string{posts[0].ID, posts[1].ID, posts[2].ID, posts[3].ID, posts[4].ID})
}

func TestPostRepository_ListPendingAndSetStatus(t *testing.T) {
	f := newFixture(t)
	mustNoErr(t, f.posts.Create(ctx, &models.Post{ID: "10"}))

	pending, err := f.posts.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	mustNoErr(t, f.posts.SetStatus(ctx, "10", models.PostStatusRejected))
	rejected, err := f.posts.ListByStatus(ctx, models.PostStatusRejected)
	require.NoError(t, err)
	require.Len(t, rejected, 1)
	assert.Equal(t, "10", rejected[0].ID)

	pending, err = f.posts.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestPostRepository_SetStatusRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)
	err := f.posts.SetStatus(ctx, "1", models.PostStatus("archived"))
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
}

func TestPostRepository_LikeIsIdempotent(t *testing.T) {
	f := newFixture(t)
	mustNoErr(t, f.posts.Like(ctx, "2", "1"))
	mustNoErr(t, f.posts.Like(ctx, "2", "1"))

	p, err := f.posts.GetByID(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, p.Likes)

	mustNoErr(t, f.posts.Unlike(ctx, "2", "1"))
	mustNoErr(t, f.posts.Unlike(ctx, "2", "1"))
	p, _ = f.posts.GetByID(ctx, "2")
	assert.Empty(t, p.Likes)
}

func TestPostRepository_ToggleLike(t *testing.T) {
	f := newFixture(t)

	liked, err := f.posts.ToggleLike(ctx, "1", "1")
	require.NoError(t, err)
	assert.False(t, liked, "seed post 1 is already liked by the admin")

	liked, err = f.posts.ToggleLike(ctx, "1", "1")
	require.NoError(t, err)
	assert.True(t, liked)

	p, _ := f.posts.GetByID(ctx, "1")
	assert.Equal(t, []string{"1"}, p.Likes)

	liked, err = f.posts.ToggleLike(ctx, "missing", "1")
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestPostRepository_ShareIsMonotonic(t *testing.T) {
	f := newFixture(t)
	before, _ := f.posts.GetByID(ctx, "1")

	const n = 4
	for i := 0; i < n; i++ {
		mustNoErr(t, f.posts.Share(ctx, "1"))
	}

	after, err := f.reopen(t).posts.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, before.Shares+n, after.Shares)
}

func TestPostRepository_CommentsKeepArrivalOrder(t *testing.T) {
	f := newFixture(t)
	for _, text := range []string{"one", "two", "three"} {
		mustNoErr(t, f.posts.AddComment(ctx, "3", models.Comment{ID: text, UserID: "1", Text: text}))
	}

	p, err := f.posts.GetByID(ctx, "3")
	require.NoError(t, err)
	require.Len(t, p.Comments, 3)
	assert.Equal(t, "one", p.Comments[0].Text)
	assert.Equal(t, "three", p.Comments[2].Text)
}

func TestPostRepository_MissingIDsAreIgnored(t *testing.T) {
	f := newFixture(t)
	before, _ := f.posts.List(ctx)

	caption := "x"
	assert.NoError(t, f.posts.SetStatus(ctx, "404", models.PostStatusApproved))
	assert.NoError(t, f.posts.Update(ctx, "404", models.PostUpdate{Caption: &caption}))
	assert.NoError(t, f.posts.Delete(ctx, "404"))
	assert.NoError(t, f.posts.Like(ctx, "404", "1"))
	assert.NoError(t, f.posts.Unlike(ctx, "404", "1"))
	assert.NoError(t, f.posts.AddComment(ctx, "404", models.Comment{ID: "c"}))
	assert.NoError(t, f.posts.Share(ctx, "404"))

	after, _ := f.posts.List(ctx)
	assert.Equal(t, before, after)

	_, err := f.posts.GetByID(ctx, "404")
	assert.True(t, models.IsNotFound(err))
}

func TestPostRepository_UpdateEditsCaptionAndCategory(t *testing.T) {
	f := newFixture(t)
	caption, category := "Edited", "travel"
	mustNoErr(t, f.posts.Update(ctx, "1", models.PostUpdate{Caption: &caption, Category: &category}))

	p, _ := f.posts.GetByID(ctx, "1")
	assert.Equal(t, "Edited", p.Caption)
	assert.Equal(t, "travel", p.Category)
	assert.Equal(t, "/nature-landscape-sunset.jpg", p.Image)
}

func TestPostRepository_DeleteDoesNotTouchCategories(t *testing.T) {
	f := newFixture(t)
	mustNoErr(t, f.posts.Delete(ctx, "1"))

	posts, _ := f.posts.List(ctx)
	assert.Len(t, posts, 2)

	nature, err := f.categories.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 1, nature.PostCount)
}

func TestPostRepository_KeepsWritesFromAnotherStore(t *testing.T) {
	server := newFixture(t)
	mustNoErr(t, server.posts.Create(ctx, &models.Post{ID: "p1", UserID: "2", Image: "/a.jpg"}))

	admin := server.reopen(t)
	mustNoErr(t, admin.posts.SetStatus(ctx, "p1", models.PostStatusApproved))

	seen, err := server.posts.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusApproved, seen.Status)

	mustNoErr(t, server.posts.Share(ctx, "p1"))

	stored, err := server.reopen(t).posts.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusApproved, stored.Status)
	assert.Equal(t, 1, stored.Shares)
}
