package memory

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tweetledger/internal/model"
)

func TestTweets_IDsAreSequentialAndTimelineIsNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Tweets()

	for _, author := range []string{"alice", "bob", "alice"} {
		_, err := repo.Create(ctx, author, "hi", "", nil)
		require.NoError(t, err)
	}

	tl, err := repo.GetTimeline(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, tl, 3)
	assert.Equal(t, []int64{3, 2, 1}, []int64{tl[0].ID, tl[1].ID, tl[2].ID})

	tl, err = repo.GetTimeline(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, tl, 1)
	assert.Equal(t, int64(2), tl[0].ID)

	tl, err = repo.GetTimeline(ctx, 5, 10)
	require.NoError(t, err)
	assert.Empty(t, tl)

	mine, err := repo.GetByAuthor(ctx, "alice", 0, -1)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, int64(3), mine[0].ID)
	assert.Equal(t, int64(1), mine[1].ID)

	ids, err := repo.RecentIDs(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2}, ids)
}

func TestTweets_ReturnedValuesDoNotAliasStore(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	now := time.Now()

	created, err := s.Tweets().Create(ctx, "alice", "hi", "", &now)
	require.NoError(t, err)
	created.LikedBy = append(created.LikedBy, "mallory")
	*created.CreatedAt = time.Time{}

	got, err := s.Tweets().GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, got.LikedBy)
	assert.True(t, got.CreatedAt.Equal(now))
}

func TestLikes_IdempotentAndOrdered(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	for i := 0; i < 3; i++ {
		_, err := s.Tweets().Create(ctx, "alice", "hi", "", nil)
		require.NoError(t, err)
	}

	added, err := s.Likes().Add(ctx, 3, "bob")
	require.NoError(t, err)
	assert.True(t, added)
	added, err = s.Likes().Add(ctx, 1, "bob")
	require.NoError(t, err)
	assert.True(t, added)
	added, err = s.Likes().Add(ctx, 3, "bob")
	require.NoError(t, err)
	assert.False(t, added)

	_, err = s.Likes().Add(ctx, 99, "bob")
	assert.ErrorIs(t, err, model.ErrNotFound)

	liked, err := s.Likes().GetLikedTweets(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, liked, 2)
	assert.Equal(t, int64(3), liked[0].ID)
	assert.Equal(t, int64(1), liked[1].ID)
	assert.Equal(t, []string{"bob"}, liked[0].LikedBy)
}

func TestComments_RequireTweet(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	_, err := s.Comments().Create(ctx, 1, "bob", "first", nil)
	assert.ErrorIs(t, err, model.ErrTweetNotFound)

	_, err = s.Tweets().Create(ctx, "alice", "hi", "", nil)
	require.NoError(t, err)

	empty, err := s.Comments().GetByTweetID(ctx, 1)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = s.Comments().Create(ctx, 1, "bob", "first", nil)
	require.NoError(t, err)
	_, err = s.Comments().Create(ctx, 1, "carol", "second", nil)
	require.NoError(t, err)

	comments, err := s.Comments().GetByTweetID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Content)
	assert.Equal(t, int64(2), comments[1].ID)
}

func TestFollows_SymmetricAndRefollowAppends(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Follows()

	for _, target := range []string{"bob", "carol"} {
		created, err := repo.Create(ctx, "alice", target)
		require.NoError(t, err)
		assert.True(t, created)
	}
	created, err := repo.Create(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.False(t, created)

	removed, err := repo.Delete(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = repo.Delete(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.False(t, removed)

	followers, err := repo.GetFollowers(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, followers)

	_, err = repo.Create(ctx, "alice", "bob")
	require.NoError(t, err)

	followings, err := repo.GetFollowings(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"carol", "bob"}, followings)

	ok, err := repo.Exists(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.Exists(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSchema_ApplyRejectsNonIncreasingVersions(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Schema()

	require.NoError(t, repo.Apply(ctx, model.SchemaRecord{Version: model.SchemaV2, InitializedBy: "op"}, nil))
	err := repo.Apply(ctx, model.SchemaRecord{Version: model.SchemaV1, InitializedBy: "op"}, nil)
	assert.ErrorIs(t, err, model.ErrAlreadyInitialized)
	err = repo.Apply(ctx, model.SchemaRecord{Version: model.SchemaV2, InitializedBy: "op"}, nil)
	assert.ErrorIs(t, err, model.ErrAlreadyInitialized)

	history, err := repo.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, model.SchemaV2, history[0].Version)
}

func TestStore_ConcurrentTweetsGetDistinctIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Tweets()

	var wg sync.WaitGroup
	ids := make(chan int64, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tw, err := repo.Create(ctx, "alice", "hi", "", nil)
			if err == nil {
				ids <- tw.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, 50)

	n, err := repo.CountFrom(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(50), n)
	n, err = repo.CountFrom(ctx, 41)
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)
	n, err = repo.CountFrom(ctx, 51)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestTweets_HugeLimitReturnsRemainder(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Tweets()
	for i := 0; i < 3; i++ {
		_, err := repo.Create(ctx, "alice", "hi", "", nil)
		require.NoError(t, err)
	}

	tl, err := repo.GetTimeline(ctx, 1, math.MaxInt)
	require.NoError(t, err)
	require.Len(t, tl, 2)
	assert.Equal(t, int64(2), tl[0].ID)
	assert.Equal(t, int64(1), tl[1].ID)

	mine, err := repo.GetByAuthor(ctx, "alice", 2, math.MaxInt)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, int64(1), mine[0].ID)

	start, end := page(3, math.MaxInt, math.MaxInt)
	assert.Equal(t, 3, start)
	assert.Equal(t, 3, end)
}
