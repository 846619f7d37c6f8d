package memory

import (
	"context"
	"slices"
)

type followRepository struct{ s *Store }

// Create appends both adjacency sides under one lock.
func (r *followRepository) Create(_ context.Context, follower, followee string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if slices.Contains(r.s.followings[follower], followee) {
		return false, nil
	}
	r.s.followings[follower] = append(r.s.followings[follower], followee)
	r.s.followers[followee] = append(r.s.followers[followee], follower)
	return true, nil
}

func (r *followRepository) Delete(_ context.Context, follower, followee string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if !slices.Contains(r.s.followings[follower], followee) {
		return false, nil
	}
	r.s.followings[follower] = removeString(r.s.followings[follower], followee)
	r.s.followers[followee] = removeString(r.s.followers[followee], follower)
	return true, nil
}

func (r *followRepository) Exists(_ context.Context, follower, followee string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return slices.Contains(r.s.followings[follower], followee), nil
}

func (r *followRepository) GetFollowers(_ context.Context, account string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append([]string{}, r.s.followers[account]...), nil
}

func (r *followRepository) GetFollowings(_ context.Context, account string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append([]string{}, r.s.followings[account]...), nil
}
