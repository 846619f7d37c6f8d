package memory

import (
	"context"
	"time"

	"tweetledger/internal/model"
)

type tweetRepository struct{ s *Store }

func (r *tweetRepository) Create(_ context.Context, author, content, attachment string, createdAt *time.Time) (*model.Tweet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t := model.Tweet{
		ID:         int64(len(r.s.tweets)) + 1,
		Author:     author,
		Content:    content,
		Attachment: attachment,
		CreatedAt:  clonePtr(createdAt),
		LikedBy:    []string{},
	}
	r.s.tweets = append(r.s.tweets, t)
	r.s.byAuthor[author] = append(r.s.byAuthor[author], t.ID)

	out, _ := r.s.tweet(t.ID)
	return &out, nil
}

func (r *tweetRepository) GetByID(_ context.Context, tweetID int64) (*model.Tweet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tweet(tweetID)
	if !ok {
		return nil, model.ErrTweetNotFound
	}
	return &t, nil
}

func (r *tweetRepository) GetByIDs(_ context.Context, tweetIDs []int64) ([]model.Tweet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.tweetsByID(tweetIDs), nil
}

func (r *tweetRepository) GetTimeline(_ context.Context, offset, limit int) ([]model.Tweet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := len(r.s.tweets)
	start, end := page(n, offset, limit)
	out := make([]model.Tweet, 0, end-start)
	for i := start; i < end; i++ {
		t, _ := r.s.tweet(int64(n - i))
		out = append(out, t)
	}
	return out, nil
}

func (r *tweetRepository) GetByAuthor(_ context.Context, author string, offset, limit int) ([]model.Tweet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ids := r.s.byAuthor[author]
	n := len(ids)
	start, end := page(n, offset, limit)
	out := make([]model.Tweet, 0, end-start)
	for i := start; i < end; i++ {
		t, _ := r.s.tweet(ids[n-1-i])
		out = append(out, t)
	}
	return out, nil
}

func (r *tweetRepository) RecentIDs(_ context.Context, limit int) ([]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := len(r.s.tweets)
	_, end := page(n, 0, limit)
	ids := make([]int64, 0, end)
	for i := 0; i < end; i++ {
		ids = append(ids, int64(n-i))
	}
	return ids, nil
}

func (r *tweetRepository) CountFrom(_ context.Context, minID int64) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := int64(len(r.s.tweets))
	if minID <= 1 {
		return n, nil
	}
	if minID > n {
		return 0, nil
	}
	return n - minID + 1, nil
}

type likeRepository struct{ s *Store }

func (r *likeRepository) Add(_ context.Context, tweetID int64, account string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tweet(tweetID); !ok {
		return false, model.ErrTweetNotFound
	}
	set := r.s.likeSet[tweetID]
	if set == nil {
		set = make(map[string]struct{})
		r.s.likeSet[tweetID] = set
	}
	if _, ok := set[account]; ok {
		return false, nil
	}
	set[account] = struct{}{}
	t := &r.s.tweets[tweetID-1]
	t.LikedBy = append(t.LikedBy, account)
	r.s.liked[account] = append(r.s.liked[account], tweetID)
	return true, nil
}

func (r *likeRepository) GetLikedTweets(_ context.Context, account string) ([]model.Tweet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.tweetsByID(r.s.liked[account]), nil
}
