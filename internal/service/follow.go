package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"tweetledger/internal/model"
	"tweetledger/internal/queue"
	"tweetledger/internal/repository"
)

type FollowService struct {
	followRepo repository.FollowRepository
	publisher  queue.Publisher
	logger     *zap.Logger
}

func NewFollowService(followRepo repository.FollowRepository, publisher queue.Publisher, logger *zap.Logger) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		publisher:  publisher,
		logger:     logger.Named("follows"),
	}
}

func validateFollow(p model.Principal, target string) error {
	if p.Account == "" || strings.TrimSpace(target) == "" {
		return model.ErrInvalidAccount
	}
	if p.Account == target {
		return model.ErrCannotFollowSelf
	}
	return nil
}

// Follow adds the edge principal -> target. Following twice is a no-op.
func (s *FollowService) Follow(ctx context.Context, p model.Principal, target string) error {
	if err := validateFollow(p, target); err != nil {
		return err
	}

	created, err := s.followRepo.Create(ctx, p.Account, target)
	if err != nil {
		return fmt.Errorf("follow: %w", err)
	}
	if !created {
		return nil
	}

	s.logger.Info("followed", zap.String("follower", p.Account), zap.String("followee", target))
	publish(ctx, s.publisher, s.logger, queue.NewUserFollowedEvent(p.Account, target))
	return nil
}

// Unfollow removes the edge. Unfollowing without an edge is a no-op.
func (s *FollowService) Unfollow(ctx context.Context, p model.Principal, target string) error {
	if err := validateFollow(p, target); err != nil {
		return err
	}

	removed, err := s.followRepo.Delete(ctx, p.Account, target)
	if err != nil {
		return fmt.Errorf("unfollow: %w", err)
	}
	if !removed {
		return nil
	}

	s.logger.Info("unfollowed", zap.String("follower", p.Account), zap.String("followee", target))
	publish(ctx, s.publisher, s.logger, queue.NewUserUnfollowedEvent(p.Account, target))
	return nil
}

func (s *FollowService) GetFollowings(ctx context.Context, account string) ([]string, error) {
	followings, err := s.followRepo.GetFollowings(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("get followings: %w", err)
	}
	return followings, nil
}

func (s *FollowService) GetFollowers(ctx context.Context, account string) ([]string, error) {
	followers, err := s.followRepo.GetFollowers(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("get followers: %w", err)
	}
	return followers, nil
}

func (s *FollowService) IsFollowing(ctx context.Context, self, target string) (bool, error) {
	ok, err := s.followRepo.Exists(ctx, self, target)
	if err != nil {
		return false, fmt.Errorf("check follow: %w", err)
	}
	return ok, nil
}
