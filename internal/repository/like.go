package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"tweetledger/internal/database"
	"tweetledger/internal/model"
)

type likeRepository struct {
	db      *sqlx.DB
	version VersionFunc
}

func NewLikeRepository(db *sqlx.DB, version VersionFunc) LikeRepository {
	return &likeRepository{db: db, version: version}
}

// Add inserts a like. The tweet existence check and the insert share one
// write transaction.
func (r *likeRepository) Add(ctx context.Context, tweetID int64, account string) (bool, error) {
	var inserted bool
	err := database.WithWriteTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := requireTweet(ctx, tx, tweetID); err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, `
			INSERT INTO tweet_likes (tweet_id, account)
			VALUES ($1, $2)
			ON CONFLICT (tweet_id, account) DO NOTHING
		`, tweetID, account)
		if err != nil {
			return fmt.Errorf("insert like: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("get rows affected: %w", err)
		}
		inserted = rows > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return inserted, nil
}

func (r *likeRepository) GetLikedTweets(ctx context.Context, account string) ([]model.Tweet, error) {
	tweets := []model.Tweet{}
	err := database.WithReadTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := fmt.Sprintf(`
			SELECT %s
			FROM tweet_likes l
			JOIN tweets t ON t.id = l.tweet_id
			WHERE l.account = $1
			ORDER BY l.id
		`, tweetColumns("t.", r.version()))
		if err := tx.SelectContext(ctx, &tweets, query, account); err != nil {
			return err
		}
		return attachLikes(ctx, tx, tweets)
	})
	if err != nil {
		return nil, fmt.Errorf("get liked tweets: %w", err)
	}
	return tweets, nil
}
