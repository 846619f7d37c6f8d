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

type CommentService struct {
	commentRepo repository.CommentRepository
	schema      *SchemaService
	publisher   queue.Publisher
	logger      *zap.Logger
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	schema *SchemaService,
	publisher queue.Publisher,
	logger *zap.Logger,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		schema:      schema,
		publisher:   publisher,
		logger:      logger.Named("comments"),
	}
}

// Create appends a comment. Content is validated before the tweet lookup, and
// the lookup runs in the same unit as the insert.
func (s *CommentService) Create(ctx context.Context, p model.Principal, tweetID int64, req model.CreateCommentRequest) (*model.Comment, error) {
	if p.Account == "" {
		return nil, model.ErrInvalidAccount
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, model.ErrContentRequired
	}

	comment, err := s.commentRepo.Create(ctx, tweetID, p.Account, req.Content, s.schema.stampAt(ctx, model.SchemaV2))
	if err != nil {
		return nil, err
	}

	s.logger.Info("comment created",
		zap.Int64("comment_id", comment.ID),
		zap.Int64("tweet_id", tweetID),
		zap.String("author", p.Account),
	)
	publish(ctx, s.publisher, s.logger, queue.NewTweetCommentedEvent(tweetID, comment.ID, p.Account))

	return comment, nil
}

// GetByTweetID returns the tweet's comments oldest first.
func (s *CommentService) GetByTweetID(ctx context.Context, tweetID int64) ([]model.Comment, error) {
	comments, err := s.commentRepo.GetByTweetID(ctx, tweetID)
	if err != nil {
		return nil, fmt.Errorf("get comments: %w", err)
	}
	return comments, nil
}
