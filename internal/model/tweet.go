package model

import "time"

// Tweet is an immutable record plus its growing like set.
// CreatedAt is only stamped from schema V2 onward.
type Tweet struct {
	ID         int64      `db:"id" json:"id"`
	Author     string     `db:"author" json:"author"`
	Content    string     `db:"content" json:"content"`
	Attachment string     `db:"attachment" json:"attachment"`
	CreatedAt  *time.Time `db:"created_at" json:"created_at,omitempty"`

	// Joined field (tweet_likes)
	LikedBy []string `db:"-" json:"liked_by"`
}

// CreateTweetRequest is the request body for creating a tweet.
type CreateTweetRequest struct {
	Content    string `json:"content"`
	Attachment string `json:"attachment"`
}

// TimelineResponse wraps a page of tweets.
type TimelineResponse struct {
	Tweets []Tweet `json:"tweets"`
	Offset int     `json:"offset"`
	Limit  int     `json:"limit"`
}

// Pagination limits for the HTTP surface
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)
