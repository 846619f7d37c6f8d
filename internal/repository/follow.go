package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"tweetledger/internal/database"
)

// followRepository stores each edge as one row. Both adjacency directions are
// read from that row through their own index, so an edge can never be
// visible on one side only.
type followRepository struct {
	db *sqlx.DB
}

func NewFollowRepository(db *sqlx.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Create(ctx context.Context, follower, followee string) (bool, error) {
	var inserted bool
	err := database.WithWriteTx(ctx, r.db, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO follows (follower, followee)
			VALUES ($1, $2)
			ON CONFLICT (follower, followee) DO NOTHING
		`, follower, followee)
		if err != nil {
			return fmt.Errorf("failed to create follow: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		inserted = rowsAffected > 0
		return nil
	})
	return inserted, err
}

func (r *followRepository) Delete(ctx context.Context, follower, followee string) (bool, error) {
	var deleted bool
	err := database.WithWriteTx(ctx, r.db, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM follows WHERE follower = $1 AND followee = $2`, follower, followee)
		if err != nil {
			return fmt.Errorf("failed to delete follow: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		deleted = rows > 0
		return nil
	})
	return deleted, err
}

func (r *followRepository) Exists(ctx context.Context, follower, followee string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM follows WHERE follower = $1 AND followee = $2)`
	var exists bool
	err := r.db.GetContext(ctx, &exists, query, follower, followee)
	if err != nil {
		return false, fmt.Errorf("failed to check follow existence: %w", err)
	}
	return exists, nil
}

// GetFollowers returns accounts following account, in the order the edges
// were created. A re-follow gets a fresh row id and moves to the end.
func (r *followRepository) GetFollowers(ctx context.Context, account string) ([]string, error) {
	followers := []string{}
	err := r.db.SelectContext(ctx, &followers, `
		SELECT follower FROM follows
		WHERE followee = $1
		ORDER BY id
	`, account)
	if err != nil {
		return nil, fmt.Errorf("failed to get followers: %w", err)
	}
	return followers, nil
}

// GetFollowings returns accounts that account follows, in edge order.
func (r *followRepository) GetFollowings(ctx context.Context, account string) ([]string, error) {
	followings := []string{}
	err := r.db.SelectContext(ctx, &followings, `
		SELECT followee FROM follows
		WHERE follower = $1
		ORDER BY id
	`, account)
	if err != nil {
		return nil, fmt.Errorf("failed to get followings: %w", err)
	}
	return followings, nil
}
