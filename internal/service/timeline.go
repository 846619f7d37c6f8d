package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tweetledger/internal/model"
)

// Timeline returns the global index newest first.
//
// Flow:
// 1. Validate the page
// 2. If the cache is complete for this page, read ids from Redis
// 3. Hydrate the ids from the store
// 4. Otherwise read the page straight from the store
func (s *TweetService) Timeline(ctx context.Context, offset, limit int) ([]model.Tweet, error) {
	if err := validatePage(offset, limit); err != nil {
		return nil, err
	}
	if limit == 0 {
		return []model.Tweet{}, nil
	}

	if tweets, ok := s.timelineFromCache(ctx, offset, limit); ok {
		return tweets, nil
	}

	tweets, err := s.tweetRepo.GetTimeline(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("get timeline: %w", err)
	}
	return tweets, nil
}

// timelineFromCache serves the page only when the cache holds every tweet from
// its oldest entry upward and the page fits inside it. Cached ids are real
// tweet ids, so a count match means no entry is missing even with id gaps. A
// cache that lags the store or lost an event is never used.
func (s *TweetService) timelineFromCache(ctx context.Context, offset, limit int) ([]model.Tweet, bool) {
	if s.timeline == nil {
		return nil, false
	}
	startTime := time.Now()

	size, err := s.timeline.Size(ctx)
	if err != nil {
		s.logger.Warn("timeline cache size failed", zap.Error(err))
		return nil, false
	}
	if size == 0 || int64(offset)+int64(limit) > size {
		s.logger.Debug("timeline cache bypassed", zap.Int64("size", size))
		return nil, false
	}
	oldest, err := s.timeline.Oldest(ctx)
	if err != nil {
		s.logger.Warn("timeline cache oldest failed", zap.Error(err))
		return nil, false
	}
	count, err := s.tweetRepo.CountFrom(ctx, oldest)
	if err != nil {
		s.logger.Warn("tweet count failed", zap.Error(err))
		return nil, false
	}
	if count != size {
		s.logger.Debug("timeline cache incomplete",
			zap.Int64("size", size),
			zap.Int64("oldest", oldest),
			zap.Int64("count", count),
		)
		return nil, false
	}

	ids, err := s.timeline.Range(ctx, offset, limit)
	if err != nil {
		s.logger.Warn("timeline cache range failed", zap.Error(err))
		return nil, false
	}
	tweets, err := s.tweetRepo.GetByIDs(ctx, ids)
	if err != nil || len(tweets) != len(ids) {
		s.logger.Warn("timeline hydrate failed", zap.Int("ids", len(ids)), zap.Error(err))
		return nil, false
	}

	s.logger.Debug("timeline served from cache",
		zap.Int("offset", offset),
		zap.Int("returned", len(tweets)),
		zap.Duration("duration", time.Since(startTime)),
	)
	return tweets, true
}
