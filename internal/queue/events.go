package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event types on the ledger stream
const (
	EventTweetCreated   = "tweet_created"
	EventTweetLiked     = "tweet_liked"
	EventTweetCommented = "tweet_commented"
	EventUserFollowed   = "user_followed"
	EventUserUnfollowed = "user_unfollowed"
	EventSchemaUpgraded = "schema_upgraded"
)

// StreamLedger carries every committed ledger mutation.
const StreamLedger = "stream:ledger"

// ConsumerGroupTimeline is the group of workers maintaining the timeline cache.
const ConsumerGroupTimeline = "timeline_workers"

// LedgerEvent is published after a mutation commits. Only the fields relevant
// to Type are set.
type LedgerEvent struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`

	// Acting principal
	Account string `json:"account,omitempty"`

	TweetID   int64 `json:"tweet_id,omitempty"`
	CommentID int64 `json:"comment_id,omitempty"`

	// Follow events
	Target string `json:"target,omitempty"`

	// Schema events
	Version int `json:"version,omitempty"`
}

func newEvent(eventType, account string) LedgerEvent {
	return LedgerEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().Unix(),
		Account:   account,
	}
}

// NewTweetCreatedEvent is consumed by the timeline worker to extend the cache.
func NewTweetCreatedEvent(tweetID int64, author string) LedgerEvent {
	e := newEvent(EventTweetCreated, author)
	e.TweetID = tweetID
	return e
}

func NewTweetLikedEvent(tweetID int64, account string) LedgerEvent {
	e := newEvent(EventTweetLiked, account)
	e.TweetID = tweetID
	return e
}

func NewTweetCommentedEvent(tweetID, commentID int64, author string) LedgerEvent {
	e := newEvent(EventTweetCommented, author)
	e.TweetID = tweetID
	e.CommentID = commentID
	return e
}

func NewUserFollowedEvent(follower, followee string) LedgerEvent {
	e := newEvent(EventUserFollowed, follower)
	e.Target = followee
	return e
}

func NewUserUnfollowedEvent(follower, followee string) LedgerEvent {
	e := newEvent(EventUserUnfollowed, follower)
	e.Target = followee
	return e
}

// NewSchemaUpgradedEvent makes the timeline worker rebuild the cache.
func NewSchemaUpgradedEvent(version int, operator string) LedgerEvent {
	e := newEvent(EventSchemaUpgraded, operator)
	e.Version = version
	return e
}

// ToMap converts the event to XADD field-value pairs. The payload is JSON in
// a single "data" field.
func (e LedgerEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseLedgerEvent parses a LedgerEvent from Redis stream message values.
func ParseLedgerEvent(values map[string]interface{}) (LedgerEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return LedgerEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event LedgerEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return LedgerEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
