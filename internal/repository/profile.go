package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"tweetledger/internal/database"
	"tweetledger/internal/model"
)

type profileRepository struct {
	db      *sqlx.DB
	version VersionFunc
}

func NewProfileRepository(db *sqlx.DB, version VersionFunc) ProfileRepository {
	return &profileRepository{db: db, version: version}
}

// SetIconURL upserts the icon. Last write wins.
func (r *profileRepository) SetIconURL(ctx context.Context, account, url string, updatedAt *time.Time) error {
	return database.WithWriteTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var err error
		if r.version() >= model.SchemaV4 {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO profiles (account, icon_url, updated_at)
				VALUES ($1, $2, $3)
				ON CONFLICT (account) DO UPDATE SET icon_url = EXCLUDED.icon_url, updated_at = EXCLUDED.updated_at
			`, account, url, updatedAt)
		} else {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO profiles (account, icon_url)
				VALUES ($1, $2)
				ON CONFLICT (account) DO UPDATE SET icon_url = EXCLUDED.icon_url
			`, account, url)
		}
		if err != nil {
			return fmt.Errorf("failed to set icon url: %w", err)
		}
		return nil
	})
}

func (r *profileRepository) Get(ctx context.Context, account string) (*model.Profile, error) {
	cols := "account, icon_url"
	if r.version() >= model.SchemaV4 {
		cols += ", updated_at"
	}

	var profile model.Profile
	err := r.db.GetContext(ctx, &profile, fmt.Sprintf(`SELECT %s FROM profiles WHERE account = $1`, cols), account)
	if errors.Is(err, sql.ErrNoRows) {
		return &model.Profile{Account: account}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}
