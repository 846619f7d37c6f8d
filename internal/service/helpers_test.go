package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tweetledger/internal/cache"
	"tweetledger/internal/model"
	"tweetledger/internal/queue"
	"tweetledger/internal/repository/memory"
)

var (
	owner    = model.Principal{Account: "owner"}
	user     = model.Principal{Account: "user"}
	user2    = model.Principal{Account: "user2"}
	operator = model.Principal{Account: "deployer", Operator: true}

	fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
)

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.LedgerEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, stream string, event queue.LedgerEvent) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return "0-1", nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type ledger struct {
	store     *memory.Store
	publisher *recordingPublisher
	schema    *SchemaService
	tweets    *TweetService
	comments  *CommentService
	follows   *FollowService
	profiles  *ProfileService
}

// newLedger wires services over a fresh memory store initialized at version.
// SchemaNone leaves the store uninitialized.
func newLedger(t *testing.T, version model.SchemaVersion) *ledger {
	t.Helper()
	return newLedgerWithCache(t, version, nil)
}

func newLedgerWithCache(t *testing.T, version model.SchemaVersion, timeline cache.TimelineCache) *ledger {
	t.Helper()
	logger := zap.NewNop()
	store := memory.NewStore()
	pub := &recordingPublisher{}

	schema := NewSchemaService(store.Schema(), pub, logger)
	schema.now = func() time.Time { return fixedNow }
	if version != model.SchemaNone {
		require.NoError(t, schema.Bootstrap(context.Background(), operator.Account, version))
		pub.events = nil
	}

	return &ledger{
		store:     store,
		publisher: pub,
		schema:    schema,
		tweets:    NewTweetService(store.Tweets(), store.Likes(), schema, timeline, pub, logger),
		comments:  NewCommentService(store.Comments(), schema, pub, logger),
		follows:   NewFollowService(store.Follows(), pub, logger),
		profiles:  NewProfileService(store.Profiles(), schema, nil, logger),
	}
}

func (l *ledger) tweet(t *testing.T, p model.Principal, content string) *model.Tweet {
	t.Helper()
	tw, err := l.tweets.Create(context.Background(), p, model.CreateTweetRequest{Content: content})
	require.NoError(t, err)
	return tw
}

var errBoom = errors.New("boom")
