package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"tweetledger/internal/database"
	"tweetledger/internal/model"
)

type schemaRepository struct {
	db *sqlx.DB
}

func NewSchemaRepository(db *sqlx.DB) SchemaRepository {
	return &schemaRepository{db: db}
}

func (r *schemaRepository) History(ctx context.Context) ([]model.SchemaRecord, error) {
	records := []model.SchemaRecord{}
	err := r.db.SelectContext(ctx, &records, `
		SELECT version, initialized_by, initialized_at
		FROM schema_versions
		ORDER BY version
	`)
	if err != nil {
		return nil, fmt.Errorf("get schema history: %w", err)
	}
	return records, nil
}

// Apply runs every step's DDL and records the version in one write
// transaction. Postgres DDL is transactional, so a failed step leaves the
// schema exactly as it was.
func (r *schemaRepository) Apply(ctx context.Context, rec model.SchemaRecord, steps []model.SchemaVersion) error {
	return database.WithWriteTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var current int
		if err := tx.GetContext(ctx, &current, `SELECT COALESCE(MAX(version), 0) FROM schema_versions`); err != nil {
			return fmt.Errorf("get current schema version: %w", err)
		}
		if model.SchemaVersion(current) >= rec.Version {
			return model.ErrVersionInitialized
		}

		for _, step := range steps {
			ddl, err := database.Migration(step)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, ddl); err != nil {
				return fmt.Errorf("apply migration %s: %w", step, err)
			}
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO schema_versions (version, initialized_by, initialized_at)
			VALUES ($1, $2, $3)
		`, int(rec.Version), rec.InitializedBy, rec.InitializedAt)
		if err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
		return nil
	})
}
