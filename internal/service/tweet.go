package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"tweetledger/internal/cache"
	"tweetledger/internal/model"
	"tweetledger/internal/queue"
	"tweetledger/internal/repository"
)

type TweetService struct {
	tweetRepo repository.TweetRepository
	likeRepo  repository.LikeRepository
	schema    *SchemaService
	timeline  cache.TimelineCache // nil without Redis
	publisher queue.Publisher     // nil without Redis
	logger    *zap.Logger
}

func NewTweetService(
	tweetRepo repository.TweetRepository,
	likeRepo repository.LikeRepository,
	schema *SchemaService,
	timeline cache.TimelineCache,
	publisher queue.Publisher,
	logger *zap.Logger,
) *TweetService {
	return &TweetService{
		tweetRepo: tweetRepo,
		likeRepo:  likeRepo,
		schema:    schema,
		timeline:  timeline,
		publisher: publisher,
		logger:    logger.Named("tweets"),
	}
}

// Create appends a tweet authored by the calling principal.
func (s *TweetService) Create(ctx context.Context, p model.Principal, req model.CreateTweetRequest) (*model.Tweet, error) {
	if p.Account == "" {
		return nil, model.ErrInvalidAccount
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, model.ErrContentRequired
	}

	tweet, err := s.tweetRepo.Create(ctx, p.Account, req.Content, req.Attachment, s.schema.stampAt(ctx, model.SchemaV2))
	if err != nil {
		return nil, fmt.Errorf("create tweet: %w", err)
	}

	s.logger.Info("tweet created", zap.Int64("tweet_id", tweet.ID), zap.String("author", p.Account))
	publish(ctx, s.publisher, s.logger, queue.NewTweetCreatedEvent(tweet.ID, p.Account))

	return tweet, nil
}

func (s *TweetService) Get(ctx context.Context, tweetID int64) (*model.Tweet, error) {
	return s.tweetRepo.GetByID(ctx, tweetID)
}

// UserTweets returns every tweet by author, newest first.
func (s *TweetService) UserTweets(ctx context.Context, author string) ([]model.Tweet, error) {
	tweets, err := s.tweetRepo.GetByAuthor(ctx, author, 0, -1)
	if err != nil {
		return nil, fmt.Errorf("get user tweets: %w", err)
	}
	return tweets, nil
}

// UserTweetsPage is the paginated form of UserTweets, available from V4.
func (s *TweetService) UserTweetsPage(ctx context.Context, author string, offset, limit int) ([]model.Tweet, error) {
	if err := s.schema.Require(ctx, model.SchemaV4); err != nil {
		return nil, err
	}
	if err := validatePage(offset, limit); err != nil {
		return nil, err
	}
	if limit == 0 {
		return []model.Tweet{}, nil
	}
	tweets, err := s.tweetRepo.GetByAuthor(ctx, author, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("get user tweets page: %w", err)
	}
	return tweets, nil
}

// Like adds the principal to the tweet's like set. Repeating a like is a no-op.
func (s *TweetService) Like(ctx context.Context, p model.Principal, tweetID int64) error {
	if p.Account == "" {
		return model.ErrInvalidAccount
	}

	added, err := s.likeRepo.Add(ctx, tweetID, p.Account)
	if err != nil {
		return err
	}
	if !added {
		return nil
	}

	s.logger.Info("tweet liked", zap.Int64("tweet_id", tweetID), zap.String("account", p.Account))
	publish(ctx, s.publisher, s.logger, queue.NewTweetLikedEvent(tweetID, p.Account))
	return nil
}

// GetLikes returns the tweets account liked, oldest like first.
func (s *TweetService) GetLikes(ctx context.Context, account string) ([]model.Tweet, error) {
	tweets, err := s.likeRepo.GetLikedTweets(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("get liked tweets: %w", err)
	}
	return tweets, nil
}
