// Package memory is an in-process backend for the repository interfaces.
// All state lives in one Store guarded by a single RWMutex: writers take the
// write lock for the whole operation, so every mutation is atomic and all
// mutations share one total order.
package memory

import (
	"sync"

	"tweetledger/internal/model"
	"tweetledger/internal/repository"
)

type Store struct {
	mu sync.RWMutex

	// tweets[i] has id i+1
	tweets   []model.Tweet
	byAuthor map[string][]int64

	likeSet map[int64]map[string]struct{}
	liked   map[string][]int64

	// comments[i] has id i+1
	comments []model.Comment
	byTweet  map[int64][]int64

	followers  map[string][]string
	followings map[string][]string

	profiles map[string]model.Profile
	accounts map[string]model.Account
	versions []model.SchemaRecord
}

func NewStore() *Store {
	return &Store{
		byAuthor:   make(map[string][]int64),
		likeSet:    make(map[int64]map[string]struct{}),
		liked:      make(map[string][]int64),
		byTweet:    make(map[int64][]int64),
		followers:  make(map[string][]string),
		followings: make(map[string][]string),
		profiles:   make(map[string]model.Profile),
		accounts:   make(map[string]model.Account),
	}
}

func (s *Store) Tweets() repository.TweetRepository     { return &tweetRepository{s} }
func (s *Store) Likes() repository.LikeRepository       { return &likeRepository{s} }
func (s *Store) Comments() repository.CommentRepository { return &commentRepository{s} }
func (s *Store) Follows() repository.FollowRepository   { return &followRepository{s} }
func (s *Store) Profiles() repository.ProfileRepository { return &profileRepository{s} }
func (s *Store) Schema() repository.SchemaRepository    { return &schemaRepository{s} }
func (s *Store) Accounts() repository.AccountRepository { return &accountRepository{s} }

// tweet returns a copy of the tweet with its like set. Caller holds mu.
func (s *Store) tweet(id int64) (model.Tweet, bool) {
	if id < 1 || id > int64(len(s.tweets)) {
		return model.Tweet{}, false
	}
	t := s.tweets[id-1]
	t.LikedBy = append([]string{}, t.LikedBy...)
	t.CreatedAt = clonePtr(t.CreatedAt)
	return t, true
}

func (s *Store) tweetsByID(ids []int64) []model.Tweet {
	out := make([]model.Tweet, 0, len(ids))
	for _, id := range ids {
		if t, ok := s.tweet(id); ok {
			out = append(out, t)
		}
	}
	return out
}

// page applies offset and limit to n items. limit < 0 means all.
func page(n, offset, limit int) (int, int) {
	if offset >= n {
		return n, n
	}
	end := n
	if limit >= 0 && limit < n-offset {
		end = offset + limit
	}
	return offset, end
}

func removeString(list []string, s string) []string {
	for i, v := range list {
		if v == s {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}

// clonePtr keeps callers from aliasing stored timestamps.
func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
