package worker_test

import (
	"context"
	"errors"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"tweetledger/internal/cache"
	"tweetledger/internal/queue"
	"tweetledger/internal/worker"
)

// =============================================================================
// Mock Implementations
// =============================================================================

// MockTimelineSource simulates the tweet repository.
type MockTimelineSource struct {
	ids []int64 // newest first
	err error
}

func (m *MockTimelineSource) RecentIDs(ctx context.Context, limit int) ([]int64, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(m.ids) > limit {
		return m.ids[:limit], nil
	}
	return m.ids, nil
}

// MockTimelineCache is an in-process TimelineCache.
type MockTimelineCache struct {
	ids      map[int64]bool
	rebuilds int
}

func NewMockTimelineCache() *MockTimelineCache {
	return &MockTimelineCache{ids: make(map[int64]bool)}
}

func (m *MockTimelineCache) Add(ctx context.Context, tweetID int64) error {
	m.ids[tweetID] = true
	return nil
}

func (m *MockTimelineCache) Range(ctx context.Context, offset, limit int) ([]int64, error) {
	var all []int64
	for id := range m.ids {
		all = append(all, id)
	}
	sort.Slice(all, func(i, j int) bool { return all[i] > all[j] })
	if offset >= len(all) {
		return []int64{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *MockTimelineCache) Size(ctx context.Context) (int64, error) {
	return int64(len(m.ids)), nil
}

func (m *MockTimelineCache) Oldest(ctx context.Context) (int64, error) {
	var oldest int64
	for id := range m.ids {
		if oldest == 0 || id < oldest {
			oldest = id
		}
	}
	return oldest, nil
}

func (m *MockTimelineCache) Rebuild(ctx context.Context, ids []int64) error {
	m.rebuilds++
	m.ids = make(map[int64]bool)
	for _, id := range ids {
		m.ids[id] = true
	}
	return nil
}

// =============================================================================
// Test Helpers
// =============================================================================

func setupTestRedis(t *testing.T) *redis.Client {
	redisURL := os.Getenv("TEST_REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("Failed to parse Redis URL: %v", err)
	}

	// Use DB 1 for testing to avoid conflicts with dev data
	opts.DB = 1

	client := redis.NewClient(opts)

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available, skipping test: %v", err)
	}

	client.FlushDB(ctx)
	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})
	return client
}

// =============================================================================
// Unit Tests
// =============================================================================

func TestTweetCreatedAddsToTimeline(t *testing.T) {
	ctx := context.Background()
	timeline := NewMockTimelineCache()
	handler := worker.NewHandler(timeline, &MockTimelineSource{}, zap.NewNop())

	for _, id := range []int64{1, 2, 3} {
		if err := handler.HandleEvent(ctx, queue.NewTweetCreatedEvent(id, "alice")); err != nil {
			t.Fatalf("HandleEvent failed: %v", err)
		}
	}

	ids, _ := timeline.Range(ctx, 0, 10)
	if len(ids) != 3 || ids[0] != 3 || ids[2] != 1 {
		t.Errorf("timeline = %v, want [3 2 1]", ids)
	}
}

func TestSchemaUpgradedRebuildsTimeline(t *testing.T) {
	ctx := context.Background()
	timeline := NewMockTimelineCache()
	timeline.Add(ctx, 99) // stale entry
	source := &MockTimelineSource{ids: []int64{5, 4, 3, 2, 1}}
	handler := worker.NewHandler(timeline, source, zap.NewNop())

	if err := handler.HandleEvent(ctx, queue.NewSchemaUpgradedEvent(2, "deployer")); err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}

	if timeline.rebuilds != 1 {
		t.Errorf("rebuilds = %d, want 1", timeline.rebuilds)
	}
	size, _ := timeline.Size(ctx)
	if size != 5 {
		t.Errorf("size = %d, want 5", size)
	}
	if timeline.ids[99] {
		t.Error("stale id 99 survived rebuild")
	}
}

func TestRebuildPropagatesSourceError(t *testing.T) {
	handler := worker.NewHandler(NewMockTimelineCache(), &MockTimelineSource{err: errors.New("db down")}, zap.NewNop())

	if err := handler.Rebuild(context.Background()); err == nil {
		t.Fatal("expected error from failing source")
	}
}

func TestNonTimelineEventsAreNoops(t *testing.T) {
	ctx := context.Background()
	timeline := NewMockTimelineCache()
	handler := worker.NewHandler(timeline, &MockTimelineSource{}, zap.NewNop())

	events := []queue.LedgerEvent{
		queue.NewTweetLikedEvent(1, "bob"),
		queue.NewTweetCommentedEvent(1, 1, "bob"),
		queue.NewUserFollowedEvent("bob", "alice"),
		queue.NewUserUnfollowedEvent("bob", "alice"),
	}
	for _, e := range events {
		if err := handler.HandleEvent(ctx, e); err != nil {
			t.Errorf("HandleEvent(%s) failed: %v", e.Type, err)
		}
	}
	if size, _ := timeline.Size(ctx); size != 0 {
		t.Errorf("size = %d, want 0", size)
	}
}

func TestUnknownEventIsError(t *testing.T) {
	handler := worker.NewHandler(NewMockTimelineCache(), &MockTimelineSource{}, zap.NewNop())

	err := handler.HandleEvent(context.Background(), queue.LedgerEvent{Type: "post_deleted"})
	if err == nil {
		t.Fatal("expected error for unknown event type")
	}
}

// =============================================================================
// Integration Tests
// =============================================================================

func TestRedisTimelineCache(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()
	timeline := cache.NewTimelineCache(client, zap.NewNop())
	handler := worker.NewHandler(timeline, &MockTimelineSource{ids: []int64{3, 2, 1}}, zap.NewNop())

	if err := handler.Rebuild(ctx); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	if err := handler.HandleEvent(ctx, queue.NewTweetCreatedEvent(4, "alice")); err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}

	size, err := timeline.Size(ctx)
	if err != nil {
		t.Fatalf("Size failed: %v", err)
	}
	if size != 4 {
		t.Errorf("size = %d, want 4", size)
	}

	ids, err := timeline.Range(ctx, 1, 2)
	if err != nil {
		t.Fatalf("Range failed: %v", err)
	}
	if len(ids) != 2 || ids[0] != 3 || ids[1] != 2 {
		t.Errorf("Range(1, 2) = %v, want [3 2]", ids)
	}

	oldest, err := timeline.Oldest(ctx)
	if err != nil {
		t.Fatalf("Oldest failed: %v", err)
	}
	if oldest != 1 {
		t.Errorf("oldest = %d, want 1", oldest)
	}

	if err := timeline.Rebuild(ctx, nil); err != nil {
		t.Fatalf("Rebuild(nil) failed: %v", err)
	}
	if oldest, _ := timeline.Oldest(ctx); oldest != 0 {
		t.Errorf("oldest of empty cache = %d, want 0", oldest)
	}
}

func TestRedisStreamRoundTrip(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()
	publisher := queue.NewPublisher(client, zap.NewNop(), 0)
	consumer := queue.NewConsumer(client, zap.NewNop())

	if err := consumer.EnsureGroup(ctx, queue.StreamLedger, queue.ConsumerGroupTimeline); err != nil {
		t.Fatalf("EnsureGroup failed: %v", err)
	}
	// second call hits BUSYGROUP
	if err := consumer.EnsureGroup(ctx, queue.StreamLedger, queue.ConsumerGroupTimeline); err != nil {
		t.Fatalf("EnsureGroup (existing) failed: %v", err)
	}

	sent := queue.NewTweetCreatedEvent(7, "alice")
	if _, err := publisher.Publish(ctx, queue.StreamLedger, sent); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	msgs, err := consumer.Read(ctx, queue.StreamLedger, queue.ConsumerGroupTimeline, "worker-1", 10, -1)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	if msgs[0].Event.ID != sent.ID || msgs[0].Event.TweetID != 7 {
		t.Errorf("got event %+v, want %+v", msgs[0].Event, sent)
	}

	pending, err := consumer.ReadPending(ctx, queue.StreamLedger, queue.ConsumerGroupTimeline, "worker-1", 10)
	if err != nil {
		t.Fatalf("ReadPending failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("got %d pending, want 1", len(pending))
	}

	if err := consumer.Ack(ctx, queue.StreamLedger, queue.ConsumerGroupTimeline, msgs[0].ID); err != nil {
		t.Fatalf("Ack failed: %v", err)
	}
	pending, _ = consumer.ReadPending(ctx, queue.StreamLedger, queue.ConsumerGroupTimeline, "worker-1", 10)
	if len(pending) != 0 {
		t.Errorf("got %d pending after ack, want 0", len(pending))
	}
}

// MockConsumer serves one pending batch and one new batch, then idles.
type MockConsumer struct {
	mu      sync.Mutex
	pending []queue.Message
	fresh   []queue.Message
	acked   []string
	groups  int
}

func (m *MockConsumer) EnsureGroup(ctx context.Context, stream, group string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups++
	return nil
}

func (m *MockConsumer) Read(ctx context.Context, stream, group, consumer string, count int64, block time.Duration) ([]queue.Message, error) {
	m.mu.Lock()
	batch := m.fresh
	m.fresh = nil
	m.mu.Unlock()
	if len(batch) > 0 {
		return batch, nil
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(10 * time.Millisecond):
		return nil, nil
	}
}

func (m *MockConsumer) ReadPending(ctx context.Context, stream, group, consumer string, count int64) ([]queue.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	batch := m.pending
	m.pending = nil
	return batch, nil
}

func (m *MockConsumer) Ack(ctx context.Context, stream, group string, messageIDs ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acked = append(m.acked, messageIDs...)
	return nil
}

func (m *MockConsumer) ackedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.acked)
}

func TestManagerDrainsPendingThenNew(t *testing.T) {
	consumer := &MockConsumer{
		pending: []queue.Message{{ID: "1-0", Event: queue.NewTweetCreatedEvent(3, "alice")}},
		fresh: []queue.Message{
			{ID: "2-0", Event: queue.NewTweetCreatedEvent(4, "alice")},
			{ID: "3-0", Event: queue.NewTweetLikedEvent(4, "bob")},
		},
	}
	timeline := NewMockTimelineCache()
	source := &MockTimelineSource{ids: []int64{2, 1}}
	handler := worker.NewHandler(timeline, source, zap.NewNop())

	manager := worker.NewManager(consumer, handler, zap.NewNop(), worker.ManagerConfig{WorkerCount: 1})
	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for consumer.ackedCount() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	manager.Stop()

	if consumer.groups != 1 {
		t.Errorf("expected EnsureGroup once, got %d", consumer.groups)
	}
	if timeline.rebuilds != 1 {
		t.Errorf("expected one startup rebuild, got %d", timeline.rebuilds)
	}
	if got := consumer.ackedCount(); got != 3 {
		t.Fatalf("expected 3 acks, got %d", got)
	}
	if consumer.acked[0] != "1-0" {
		t.Errorf("expected pending message acked first, got %s", consumer.acked[0])
	}

	ids, _ := timeline.Range(context.Background(), 0, 10)
	want := []int64{4, 3, 2, 1}
	if len(ids) != len(want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %d, want %d", i, ids[i], want[i])
		}
	}
}
