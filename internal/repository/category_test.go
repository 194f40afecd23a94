package repository

import (
	"testing"

	"communityhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryRepository_CreateSnapshotsPostCount(t *testing.T) {
	f := newFixture(t)
	mustNoErr(t, f.posts.Create(ctx, &models.Post{ID: "10", Category: "nature"}))

	c, err := f.categories.Create(ctx, "nature", "More nature")
	require.NoError(t, err)
	assert.Equal(t, 2, c.PostCount)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, testNow, c.CreatedAt)

	mustNoErr(t, f.posts.Create(ctx, &models.Post{ID: "11", Category: "nature"}))
	again, err := f.categories.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, again.PostCount, "post count is not recomputed")
}

func TestCategoryRepository_CreateWithNoMatchingPosts(t *testing.T) {
	f := newFixture(t)
	c, err := f.categories.Create(ctx, "music", "")
	require.NoError(t, err)
	assert.Equal(t, 0, c.PostCount)

	all, err := f.categories.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, "music", all[3].Name)
}

func TestCategoryRepository_UpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	desc := "Reading and writing"
	mustNoErr(t, f.categories.Update(ctx, "3", models.CategoryUpdate{Description: &desc}))

	c, err := f.categories.GetByID(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, "Reading and writing", c.Description)
	assert.Equal(t, "books", c.Name)

	mustNoErr(t, f.categories.Delete(ctx, "3"))
	_, err = f.categories.GetByID(ctx, "3")
	assert.True(t, models.IsNotFound(err))

	posts, err := f.posts.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "books", posts[2].Category, "posts keep their tag")

	assert.NoError(t, f.categories.Delete(ctx, "3"))
	assert.NoError(t, f.categories.Update(ctx, "3", models.CategoryUpdate{Description: &desc}))
}

func TestCategoryRepository_DeletedCollectionIsNotReseeded(t *testing.T) {
	f := newFixture(t)
	for _, id := range []string{"1", "2", "3"} {
		mustNoErr(t, f.categories.Delete(ctx, id))
	}

	all, err := f.reopen(t).categories.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
