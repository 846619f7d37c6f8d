package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"tweetledger/internal/database"
	"tweetledger/internal/model"
)

type commentRepository struct {
	db      *sqlx.DB
	version VersionFunc
}

func NewCommentRepository(db *sqlx.DB, version VersionFunc) CommentRepository {
	return &commentRepository{db: db, version: version}
}

func commentColumns(v model.SchemaVersion) string {
	cols := "id, tweet_id, author, content"
	if v >= model.SchemaV2 {
		cols += ", created_at"
	}
	return cols
}

// Create inserts a comment after checking the tweet exists, in one write
// transaction.
func (r *commentRepository) Create(ctx context.Context, tweetID int64, author, content string, createdAt *time.Time) (*model.Comment, error) {
	comment := model.Comment{
		TweetID: tweetID,
		Author:  author,
		Content: content,
	}

	err := database.WithWriteTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := requireTweet(ctx, tx, tweetID); err != nil {
			return err
		}

		if r.version() >= model.SchemaV2 {
			comment.CreatedAt = createdAt
			return tx.GetContext(ctx, &comment.ID, `
				INSERT INTO comments (tweet_id, author, content, created_at)
				VALUES ($1, $2, $3, $4)
				RETURNING id
			`, tweetID, author, content, createdAt)
		}
		return tx.GetContext(ctx, &comment.ID, `
			INSERT INTO comments (tweet_id, author, content)
			VALUES ($1, $2, $3)
			RETURNING id
		`, tweetID, author, content)
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) GetByTweetID(ctx context.Context, tweetID int64) ([]model.Comment, error) {
	comments := []model.Comment{}
	err := database.WithReadTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := requireTweet(ctx, tx, tweetID); err != nil {
			return err
		}
		query := fmt.Sprintf(`SELECT %s FROM comments WHERE tweet_id = $1 ORDER BY id`, commentColumns(r.version()))
		if err := tx.SelectContext(ctx, &comments, query, tweetID); err != nil {
			return fmt.Errorf("get comments: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func requireTweet(ctx context.Context, tx *sqlx.Tx, tweetID int64) error {
	var exists bool
	if err := tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM tweets WHERE id = $1)`, tweetID); err != nil {
		return fmt.Errorf("check tweet exists: %w", err)
	}
	if !exists {
		return model.ErrTweetNotFound
	}
	return nil
}
