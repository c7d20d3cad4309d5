package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hackmate-backend/application/ports"
	"hackmate-backend/application/services"
	"hackmate-backend/application/subscriptions"
	"hackmate-backend/domain/core/entities"
	"hackmate-backend/domain/events"
	appErrors "hackmate-backend/pkg/errors"
	"hackmate-backend/pkg/observability"
)

type stubMessageRepo struct{}

func (s *stubMessageRepo) Append(ctx context.Context, msg *entities.Message) (*entities.Message, error) {
	return msg, nil
}

func (s *stubMessageRepo) GetConversation(ctx context.Context, userA, userB string) ([]*entities.Message, error) {
	return []*entities.Message{}, nil
}

func (s *stubMessageRepo) GetAllForUser(ctx context.Context, userID string) ([]*entities.Message, error) {
	return []*entities.Message{}, nil
}

type stubUserRepo struct{}

func (s *stubUserRepo) Save(ctx context.Context, user *entities.User) error { return nil }

func (s *stubUserRepo) GetByID(ctx context.Context, id string) (*entities.User, error) {
	return nil, appErrors.NewNotFoundError("user")
}

func (s *stubUserRepo) List(ctx context.Context, excludeUserID string, filter ports.DiscoverFilter) ([]*entities.User, error) {
	return []*entities.User{}, nil
}

type stubCache struct{}

func (s *stubCache) Get(ctx context.Context, key string) (interface{}, bool) { return nil, false }
func (s *stubCache) Set(ctx context.Context, key string, value interface{}, ttlSeconds int) error {
	return nil
}
func (s *stubCache) Delete(ctx context.Context, key string) error { return nil }
func (s *stubCache) Clear(ctx context.Context) error              { return nil }

type stubEventBus struct{}

func (s *stubEventBus) Publish(ctx context.Context, event events.DomainEvent) error { return nil }
func (s *stubEventBus) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	return nil
}

type churnEntry struct {
	stream string
	delta  float64
}

type churnRecorder struct {
	mu      sync.Mutex
	entries []churnEntry
}

func (r *churnRecorder) RecordSubscription(_ context.Context, stream string, delta float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, churnEntry{stream: stream, delta: delta})
}

func (r *churnRecorder) all() []churnEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]churnEntry(nil), r.entries...)
}

func newTestClient(t *testing.T) (*Client, *churnRecorder) {
	t.Helper()
	logger := zap.NewNop()
	registry := subscriptions.NewRegistry(logger)
	t.Cleanup(registry.Close)

	chats := services.NewChatService(&stubMessageRepo{}, registry, &stubEventBus{}, observability.NewMetrics("Test", nil, logger), logger)
	conversations := services.NewConversationService(&stubMessageRepo{}, &stubUserRepo{}, registry, &stubCache{}, logger)

	recorder := &churnRecorder{}
	client := NewClient("alice", nil, chats, conversations, recorder, nil, logger)
	return client, recorder
}

func nextFrame(t *testing.T, c *Client) ServerFrame {
	t.Helper()
	select {
	case raw := <-c.send:
		var frame ServerFrame
		require.NoError(t, json.Unmarshal(raw, &frame))
		return frame
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
	}
	return ServerFrame{}
}

func TestClient_SubscribeDeliversSnapshotAndRecordsChurn(t *testing.T) {
	client, recorder := newTestClient(t)

	client.handleFrame(ClientFrame{Action: "subscribe", Stream: "messages", PartnerID: "bob"})

	frame := nextFrame(t, client)
	assert.Equal(t, "snapshot", frame.Type)
	assert.Equal(t, "messages", frame.Stream)
	assert.Equal(t, "bob", frame.PartnerID)

	assert.Equal(t, []churnEntry{{stream: "messages", delta: 1}}, recorder.all())
}

func TestClient_UnsubscribeRecordsNegativeChurn(t *testing.T) {
	client, recorder := newTestClient(t)

	client.handleFrame(ClientFrame{Action: "subscribe", Stream: "conversations"})
	nextFrame(t, client)

	client.handleFrame(ClientFrame{Action: "unsubscribe", Stream: "conversations"})

	frame := nextFrame(t, client)
	assert.Equal(t, "ack", frame.Type)
	assert.Equal(t, []churnEntry{
		{stream: "conversations", delta: 1},
		{stream: "conversations", delta: -1},
	}, recorder.all())
}

func TestClient_ResubscribeReleasesPreviousStream(t *testing.T) {
	client, recorder := newTestClient(t)

	client.handleFrame(ClientFrame{Action: "subscribe", Stream: "messages", PartnerID: "bob"})
	nextFrame(t, client)
	client.handleFrame(ClientFrame{Action: "subscribe", Stream: "messages", PartnerID: "bob"})
	nextFrame(t, client)

	assert.Equal(t, []churnEntry{
		{stream: "messages", delta: 1},
		{stream: "messages", delta: -1},
		{stream: "messages", delta: 1},
	}, recorder.all())
}

func TestClient_InvalidFrameRecordsNothing(t *testing.T) {
	client, recorder := newTestClient(t)

	client.handleFrame(ClientFrame{Action: "subscribe", Stream: "bogus"})
	frame := nextFrame(t, client)
	assert.Equal(t, "error", frame.Type)

	client.handleFrame(ClientFrame{Action: "subscribe", Stream: "messages"})
	frame = nextFrame(t, client)
	assert.Equal(t, "error", frame.Type)

	assert.Empty(t, recorder.all())
}
