package services

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"hackmate-backend/application/ports"
	"hackmate-backend/domain/core/entities"
	"hackmate-backend/domain/core/valueobjects"
	"hackmate-backend/domain/events"
)

func waitFor[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery")
		var zero T
		return zero
	}
}

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Save(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *mockUserRepository) List(ctx context.Context, excludeUserID string, filter ports.DiscoverFilter) ([]*entities.User, error) {
	args := m.Called(ctx, excludeUserID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.User), args.Error(1)
}

type mockMessageRepository struct {
	mock.Mock
}

func (m *mockMessageRepository) Append(ctx context.Context, msg *entities.Message) (*entities.Message, error) {
	args := m.Called(ctx, msg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Message), args.Error(1)
}

func (m *mockMessageRepository) GetConversation(ctx context.Context, userA, userB string) ([]*entities.Message, error) {
	args := m.Called(ctx, userA, userB)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Message), args.Error(1)
}

func (m *mockMessageRepository) GetAllForUser(ctx context.Context, userID string) ([]*entities.Message, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Message), args.Error(1)
}

type mockConnectionRepository struct {
	mock.Mock
}

func (m *mockConnectionRepository) Create(ctx context.Context, conn *entities.TeamConnection) error {
	args := m.Called(ctx, conn)
	return args.Error(0)
}

func (m *mockConnectionRepository) HasActive(ctx context.Context, fromUserID, toUserID string) (bool, error) {
	args := m.Called(ctx, fromUserID, toUserID)
	return args.Bool(0), args.Error(1)
}

func (m *mockConnectionRepository) GetByID(ctx context.Context, id valueobjects.ConnectionID) (*entities.TeamConnection, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.TeamConnection), args.Error(1)
}

func (m *mockConnectionRepository) Update(ctx context.Context, conn *entities.TeamConnection, releaseGuard bool) error {
	args := m.Called(ctx, conn, releaseGuard)
	return args.Error(0)
}

func (m *mockConnectionRepository) ListForUser(ctx context.Context, userID string) ([]*entities.TeamConnection, []*entities.TeamConnection, error) {
	args := m.Called(ctx, userID)
	var outgoing, incoming []*entities.TeamConnection
	if args.Get(0) != nil {
		outgoing = args.Get(0).([]*entities.TeamConnection)
	}
	if args.Get(1) != nil {
		incoming = args.Get(1).([]*entities.TeamConnection)
	}
	return outgoing, incoming, args.Error(2)
}

type mockPhotoStore struct {
	mock.Mock
}

func (m *mockPhotoStore) Upload(ctx context.Context, userID, contentType string, size int64, body io.Reader) (string, error) {
	args := m.Called(ctx, userID, contentType, size, body)
	return args.String(0), args.Error(1)
}

type mockEventBus struct {
	mock.Mock
}

func (m *mockEventBus) Publish(ctx context.Context, event events.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *mockEventBus) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

// mapCache is a plain map-backed cache for tests; TTLs are ignored
type mapCache struct {
	items map[string]interface{}
}

func newMapCache() *mapCache {
	return &mapCache{items: make(map[string]interface{})}
}

func (c *mapCache) Get(ctx context.Context, key string) (interface{}, bool) {
	v, ok := c.items[key]
	return v, ok
}

func (c *mapCache) Set(ctx context.Context, key string, value interface{}, ttlSeconds int) error {
	c.items[key] = value
	return nil
}

func (c *mapCache) Delete(ctx context.Context, key string) error {
	delete(c.items, key)
	return nil
}

func (c *mapCache) Clear(ctx context.Context) error {
	c.items = make(map[string]interface{})
	return nil
}
