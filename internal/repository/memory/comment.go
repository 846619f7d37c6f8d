package memory

import (
	"context"
	"time"

	"tweetledger/internal/model"
)

type commentRepository struct{ s *Store }

func (r *commentRepository) Create(_ context.Context, tweetID int64, author, content string, createdAt *time.Time) (*model.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tweet(tweetID); !ok {
		return nil, model.ErrTweetNotFound
	}
	c := model.Comment{
		ID:        int64(len(r.s.comments)) + 1,
		TweetID:   tweetID,
		Author:    author,
		Content:   content,
		CreatedAt: clonePtr(createdAt),
	}
	r.s.comments = append(r.s.comments, c)
	r.s.byTweet[tweetID] = append(r.s.byTweet[tweetID], c.ID)

	c.CreatedAt = clonePtr(c.CreatedAt)
	return &c, nil
}

func (r *commentRepository) GetByTweetID(_ context.Context, tweetID int64) ([]model.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if _, ok := r.s.tweet(tweetID); !ok {
		return nil, model.ErrTweetNotFound
	}
	ids := r.s.byTweet[tweetID]
	out := make([]model.Comment, 0, len(ids))
	for _, id := range ids {
		c := r.s.comments[id-1]
		c.CreatedAt = clonePtr(c.CreatedAt)
		out = append(out, c)
	}
	return out, nil
}
