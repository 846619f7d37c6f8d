package repository

import (
	"context"
	"time"

	"tweetledger/internal/model"
)

// Every mutating method is one atomic unit: it either applies completely or
// returns an error with nothing observable. Existence checks a write depends
// on run inside that same unit.

// VersionFunc reports the deployed schema version. Repositories use it to
// touch only the columns that exist at that version.
type VersionFunc func() model.SchemaVersion

type TweetRepository interface {
	// Create allocates the next id. createdAt is nil before V2.
	Create(ctx context.Context, author, content, attachment string, createdAt *time.Time) (*model.Tweet, error)
	GetByID(ctx context.Context, tweetID int64) (*model.Tweet, error)
	GetByIDs(ctx context.Context, tweetIDs []int64) ([]model.Tweet, error)
	// GetTimeline returns the global index newest first.
	GetTimeline(ctx context.Context, offset, limit int) ([]model.Tweet, error)
	// GetByAuthor returns the author's tweets newest first. limit < 0 means all.
	GetByAuthor(ctx context.Context, author string, offset, limit int) ([]model.Tweet, error)
	// RecentIDs returns up to limit ids, newest first, for cache warming.
	RecentIDs(ctx context.Context, limit int) ([]int64, error)
	// CountFrom returns the number of tweets with id >= minID.
	CountFrom(ctx context.Context, minID int64) (int64, error)
}

type LikeRepository interface {
	// Add returns false when the account already liked the tweet.
	Add(ctx context.Context, tweetID int64, account string) (bool, error)
	// GetLikedTweets returns tweets in the order the account liked them.
	GetLikedTweets(ctx context.Context, account string) ([]model.Tweet, error)
}

type CommentRepository interface {
	Create(ctx context.Context, tweetID int64, author, content string, createdAt *time.Time) (*model.Comment, error)
	// GetByTweetID returns comments oldest first, or ErrTweetNotFound.
	GetByTweetID(ctx context.Context, tweetID int64) ([]model.Comment, error)
}

type FollowRepository interface {
	// Create inserts both adjacency sides. Returns false if the edge existed.
	Create(ctx context.Context, follower, followee string) (bool, error)
	// Delete removes both sides. Returns false if there was no edge.
	Delete(ctx context.Context, follower, followee string) (bool, error)
	Exists(ctx context.Context, follower, followee string) (bool, error)
	GetFollowers(ctx context.Context, account string) ([]string, error)
	GetFollowings(ctx context.Context, account string) ([]string, error)
}

type ProfileRepository interface {
	// SetIconURL overwrites the icon. updatedAt is nil before V4.
	SetIconURL(ctx context.Context, account, url string, updatedAt *time.Time) error
	// Get returns a zero-valued profile for unknown accounts.
	Get(ctx context.Context, account string) (*model.Profile, error)
}

type SchemaRepository interface {
	History(ctx context.Context) ([]model.SchemaRecord, error)
	// Apply runs the migrations for steps and records rec, atomically. It
	// returns ErrVersionInitialized when rec.Version is not above every
	// recorded version.
	Apply(ctx context.Context, rec model.SchemaRecord, steps []model.SchemaVersion) error
}

type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	GetByAddress(ctx context.Context, address string) (*model.Account, error)
}
