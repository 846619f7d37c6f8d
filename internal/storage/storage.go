// Package storage opens the configured ledger backend and hands out its
// repositories.
package storage

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"tweetledger/internal/config"
	"tweetledger/internal/database"
	"tweetledger/internal/repository"
	"tweetledger/internal/repository/memory"
)

// Repositories is the full set of ledger repositories for one backend.
type Repositories struct {
	Tweets   repository.TweetRepository
	Likes    repository.LikeRepository
	Comments repository.CommentRepository
	Follows  repository.FollowRepository
	Profiles repository.ProfileRepository
	Accounts repository.AccountRepository
}

// Storage is an opened backend. Exactly one of db and mem is set.
type Storage struct {
	db  *sqlx.DB
	mem *memory.Store
}

// Open connects the backend selected by STORAGE_DRIVER.
func Open(cfg *config.Config, logger *zap.Logger) (*Storage, error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		logger.Warn("using in-memory storage; the ledger is lost on exit")
		return &Storage{mem: memory.NewStore()}, nil
	case config.DriverPostgres:
		db, err := database.Connect(cfg)
		if err != nil {
			return nil, err
		}
		logger.Info("connected to postgres", zap.String("host", cfg.DBHost), zap.String("db", cfg.DBName))
		return &Storage{db: db}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// NewMemory wraps an existing in-memory store.
func NewMemory(store *memory.Store) *Storage {
	return &Storage{mem: store}
}

// Schema returns the schema history repository. It is needed before the
// deployed version is known, so it does not take a VersionFunc.
func (s *Storage) Schema() repository.SchemaRepository {
	if s.mem != nil {
		return s.mem.Schema()
	}
	return repository.NewSchemaRepository(s.db)
}

// Bind returns the ledger repositories. version reports the deployed schema
// so the postgres repositories only touch columns that exist.
func (s *Storage) Bind(version repository.VersionFunc) Repositories {
	if s.mem != nil {
		return Repositories{
			Tweets:   s.mem.Tweets(),
			Likes:    s.mem.Likes(),
			Comments: s.mem.Comments(),
			Follows:  s.mem.Follows(),
			Profiles: s.mem.Profiles(),
			Accounts: s.mem.Accounts(),
		}
	}
	return Repositories{
		Tweets:   repository.NewTweetRepository(s.db, version),
		Likes:    repository.NewLikeRepository(s.db, version),
		Comments: repository.NewCommentRepository(s.db, version),
		Follows:  repository.NewFollowRepository(s.db),
		Profiles: repository.NewProfileRepository(s.db, version),
		Accounts: repository.NewAccountRepository(s.db),
	}
}

// Close releases the database pool, if any.
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
