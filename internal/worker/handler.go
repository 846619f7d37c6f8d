package worker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tweetledger/internal/cache"
	"tweetledger/internal/queue"
)

// TimelineSource lists the newest tweet ids from the authoritative store.
// repository.TweetRepository satisfies it.
type TimelineSource interface {
	RecentIDs(ctx context.Context, limit int) ([]int64, error)
}

// Handler applies ledger events to the timeline cache.
type Handler struct {
	timeline cache.TimelineCache
	source   TimelineSource
	logger   *zap.Logger
}

// NewHandler creates a new event handler.
func NewHandler(timeline cache.TimelineCache, source TimelineSource, logger *zap.Logger) *Handler {
	return &Handler{
		timeline: timeline,
		source:   source,
		logger:   logger.Named("handler"),
	}
}

// HandleEvent routes an event to the appropriate handler based on type.
// Events that do not touch the timeline are acknowledged without work.
func (h *Handler) HandleEvent(ctx context.Context, event queue.LedgerEvent) error {
	startTime := time.Now()
	var err error

	switch event.Type {
	case queue.EventTweetCreated:
		err = h.handleTweetCreated(ctx, event)
	case queue.EventSchemaUpgraded:
		err = h.Rebuild(ctx)
	case queue.EventTweetLiked, queue.EventTweetCommented, queue.EventUserFollowed, queue.EventUserUnfollowed:
		// not reflected in the timeline
	default:
		return fmt.Errorf("unknown event type: %s", event.Type)
	}

	if err != nil {
		return err
	}

	h.logger.Debug("handled",
		zap.String("type", event.Type),
		zap.String("event_id", event.ID),
		zap.Duration("duration", time.Since(startTime)),
	)
	return nil
}

func (h *Handler) handleTweetCreated(ctx context.Context, event queue.LedgerEvent) error {
	if event.TweetID <= 0 {
		return fmt.Errorf("tweet_created without tweet id")
	}
	return h.timeline.Add(ctx, event.TweetID)
}

// Rebuild replaces the cache with the newest ids from the store.
func (h *Handler) Rebuild(ctx context.Context) error {
	ids, err := h.source.RecentIDs(ctx, cache.TimelineCacheCap)
	if err != nil {
		return fmt.Errorf("get recent tweet ids: %w", err)
	}
	return h.timeline.Rebuild(ctx, ids)
}
