package model

import "time"

// Comment is an append-only comment on a tweet.
type Comment struct {
	ID        int64      `db:"id" json:"id"`
	TweetID   int64      `db:"tweet_id" json:"tweet_id"`
	Author    string     `db:"author" json:"author"`
	Content   string     `db:"content" json:"content"`
	CreatedAt *time.Time `db:"created_at" json:"created_at,omitempty"`
}

// CreateCommentRequest is the request body for creating a comment.
type CreateCommentRequest struct {
	Content string `json:"content"`
}
