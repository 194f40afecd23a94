package repository

import (
	"fmt"
	"slices"
	"sync"
	"testing"

	"communityhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcurrentFollowAndLike(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	ids := []string{"1", "2"}
	for i := 3; i <= 8; i++ {
		id := fmt.Sprint(i)
		mustNoErr(t, f.users.Create(ctx, &models.User{ID: id, Username: "user" + id}))
		ids = append(ids, id)
	}

	var wg sync.WaitGroup
	for _, follower := range ids {
		for _, target := range ids {
			// Twice each, so repeats race with the first attempt.
			for range 2 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					assert.NoError(t, f.users.Follow(ctx, follower, target))
				}()
			}
		}
		for range 2 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, f.posts.Like(ctx, "1", follower))
			}()
		}
	}
	wg.Wait()

	// A reopened store reads what was persisted, not the in-memory tables.
	r := f.reopen(t)
	users, err := r.users.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, len(ids))

	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for _, u := range users {
		assert.Len(t, u.Following, len(ids)-1, "user %s following", u.ID)
		assert.Len(t, u.Followers, len(ids)-1, "user %s followers", u.ID)
		assertUnique(t, u.Following)
		assertUnique(t, u.Followers)
		assert.NotContains(t, u.Following, u.ID)
		for _, target := range u.Following {
			assert.Contains(t, byID[target].Followers, u.ID, "%s -> %s is one-sided", u.ID, target)
		}
	}

	post, err := r.posts.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Len(t, post.Likes, len(ids))
	assertUnique(t, post.Likes)
}

func assertUnique(t *testing.T, ids []string) {
	t.Helper()
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	assert.Equal(t, len(sorted), len(slices.Compact(sorted)), "duplicates in %v", ids)
}
