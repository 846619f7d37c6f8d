package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"tweetledger/internal/database"
	"tweetledger/internal/model"
)

type tweetRepository struct {
	db      *sqlx.DB
	version VersionFunc
}

func NewTweetRepository(db *sqlx.DB, version VersionFunc) TweetRepository {
	return &tweetRepository{db: db, version: version}
}

// tweetColumns lists the tweet columns present at version v, qualified with
// prefix ("" or "t.").
func tweetColumns(prefix string, v model.SchemaVersion) string {
	cols := fmt.Sprintf("%[1]sid, %[1]sauthor, %[1]scontent, %[1]sattachment", prefix)
	if v >= model.SchemaV2 {
		cols += fmt.Sprintf(", %screated_at", prefix)
	}
	return cols
}

// Create inserts a tweet under the ledger lock. The BIGSERIAL id is assigned
// in commit order, so ids are strictly increasing and never reused.
func (r *tweetRepository) Create(ctx context.Context, author, content, attachment string, createdAt *time.Time) (*model.Tweet, error) {
	tweet := model.Tweet{
		Author:     author,
		Content:    content,
		Attachment: attachment,
		LikedBy:    []string{},
	}

	err := database.WithWriteTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if r.version() >= model.SchemaV2 {
			tweet.CreatedAt = createdAt
			return tx.GetContext(ctx, &tweet.ID, `
				INSERT INTO tweets (author, content, attachment, created_at)
				VALUES ($1, $2, $3, $4)
				RETURNING id
			`, author, content, attachment, createdAt)
		}
		return tx.GetContext(ctx, &tweet.ID, `
			INSERT INTO tweets (author, content, attachment)
			VALUES ($1, $2, $3)
			RETURNING id
		`, author, content, attachment)
	})
	if err != nil {
		return nil, fmt.Errorf("insert tweet: %w", err)
	}

	return &tweet, nil
}

// GetByID retrieves a single tweet with its like set.
func (r *tweetRepository) GetByID(ctx context.Context, tweetID int64) (*model.Tweet, error) {
	var tweet model.Tweet
	err := database.WithReadTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := fmt.Sprintf(`SELECT %s FROM tweets WHERE id = $1`, tweetColumns("", r.version()))
		if err := tx.GetContext(ctx, &tweet, query, tweetID); err != nil {
			return err
		}
		tweets := []model.Tweet{tweet}
		if err := attachLikes(ctx, tx, tweets); err != nil {
			return err
		}
		tweet = tweets[0]
		return nil
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrTweetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get tweet: %w", err)
	}
	return &tweet, nil
}

// GetByIDs retrieves tweets in the order of tweetIDs, skipping unknown ids.
// Used for hydrating the timeline from cache.
func (r *tweetRepository) GetByIDs(ctx context.Context, tweetIDs []int64) ([]model.Tweet, error) {
	if len(tweetIDs) == 0 {
		return []model.Tweet{}, nil
	}

	var tweets []model.Tweet
	err := database.WithReadTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := fmt.Sprintf(`SELECT %s FROM tweets WHERE id = ANY($1)`, tweetColumns("", r.version()))
		if err := tx.SelectContext(ctx, &tweets, query, pq.Array(tweetIDs)); err != nil {
			return err
		}
		return attachLikes(ctx, tx, tweets)
	})
	if err != nil {
		return nil, fmt.Errorf("get tweets by ids: %w", err)
	}

	byID := make(map[int64]model.Tweet, len(tweets))
	for _, t := range tweets {
		byID[t.ID] = t
	}
	ordered := make([]model.Tweet, 0, len(tweetIDs))
	for _, id := range tweetIDs {
		if t, ok := byID[id]; ok {
			ordered = append(ordered, t)
		}
	}
	return ordered, nil
}

func (r *tweetRepository) GetTimeline(ctx context.Context, offset, limit int) ([]model.Tweet, error) {
	tweets := []model.Tweet{}
	err := database.WithReadTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := fmt.Sprintf(`
			SELECT %s FROM tweets
			ORDER BY id DESC
			OFFSET $1 LIMIT $2
		`, tweetColumns("", r.version()))
		if err := tx.SelectContext(ctx, &tweets, query, offset, limit); err != nil {
			return err
		}
		return attachLikes(ctx, tx, tweets)
	})
	if err != nil {
		return nil, fmt.Errorf("get timeline: %w", err)
	}
	return tweets, nil
}

func (r *tweetRepository) GetByAuthor(ctx context.Context, author string, offset, limit int) ([]model.Tweet, error) {
	tweets := []model.Tweet{}
	err := database.WithReadTx(ctx, r.db, func(tx *sqlx.Tx) error {
		cols := tweetColumns("", r.version())
		var err error
		if limit < 0 {
			query := fmt.Sprintf(`SELECT %s FROM tweets WHERE author = $1 ORDER BY id DESC OFFSET $2`, cols)
			err = tx.SelectContext(ctx, &tweets, query, author, offset)
		} else {
			query := fmt.Sprintf(`SELECT %s FROM tweets WHERE author = $1 ORDER BY id DESC OFFSET $2 LIMIT $3`, cols)
			err = tx.SelectContext(ctx, &tweets, query, author, offset, limit)
		}
		if err != nil {
			return err
		}
		return attachLikes(ctx, tx, tweets)
	})
	if err != nil {
		return nil, fmt.Errorf("get tweets by author: %w", err)
	}
	return tweets, nil
}

func (r *tweetRepository) RecentIDs(ctx context.Context, limit int) ([]int64, error) {
	ids := []int64{}
	err := r.db.SelectContext(ctx, &ids, `SELECT id FROM tweets ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("get recent tweet ids: %w", err)
	}
	return ids, nil
}

func (r *tweetRepository) CountFrom(ctx context.Context, minID int64) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM tweets WHERE id >= $1`, minID); err != nil {
		return 0, fmt.Errorf("count tweets: %w", err)
	}
	return count, nil
}

// attachLikes fills LikedBy for every tweet in one query, in like order.
func attachLikes(ctx context.Context, tx *sqlx.Tx, tweets []model.Tweet) error {
	if len(tweets) == 0 {
		return nil
	}

	ids := make([]int64, len(tweets))
	for i := range tweets {
		ids[i] = tweets[i].ID
		tweets[i].LikedBy = []string{}
	}

	var rows []struct {
		TweetID int64  `db:"tweet_id"`
		Account string `db:"account"`
	}
	err := tx.SelectContext(ctx, &rows, `
		SELECT tweet_id, account FROM tweet_likes
		WHERE tweet_id = ANY($1)
		ORDER BY id
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("get likes: %w", err)
	}

	index := make(map[int64]int, len(tweets))
	for i := range tweets {
		index[tweets[i].ID] = i
	}
	for _, row := range rows {
		i := index[row.TweetID]
		tweets[i].LikedBy = append(tweets[i].LikedBy, row.Account)
	}
	return nil
}
