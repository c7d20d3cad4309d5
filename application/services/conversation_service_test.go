package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hackmate-backend/application/subscriptions"
	"hackmate-backend/domain/core/entities"
	appErrors "hackmate-backend/pkg/errors"
)

func newConversationFixture(messages *mockMessageRepository, users *mockUserRepository) (*ConversationService, *subscriptions.Registry) {
	logger := zap.NewNop()
	registry := subscriptions.NewRegistry(logger)
	return NewConversationService(messages, users, registry, newMapCache(), logger), registry
}

func profileUser(id, name string) *entities.User {
	now := time.Now().UTC()
	return entities.ReconstructUser(id, id+"@example.com",
		entities.Profile{Name: name, College: "IIT", Course: "CSE"},
		entities.TeamPreferences{}, true, now, now)
}

func TestConversationService_Snapshot_LatestMessagePerPartnerWins(t *testing.T) {
	messages := new(mockMessageRepository)
	users := new(mockUserRepository)
	svc, registry := newConversationFixture(messages, users)
	defer registry.Close()

	// Newest first, as the store returns them. Partner B appears twice;
	// only the newest message survives. C's single entry follows.
	base := time.Now().UTC()
	feed := []*entities.Message{
		storedMessage("b", "p", "latest from b", base),
		storedMessage("p", "c", "to c", base.Add(-time.Minute)),
		storedMessage("p", "b", "older to b", base.Add(-2*time.Minute)),
	}
	messages.On("GetAllForUser", mock.Anything, "p").Return(feed, nil)
	users.On("GetByID", mock.Anything, "b").Return(profileUser("b", "Bea"), nil)
	users.On("GetByID", mock.Anything, "c").Return(profileUser("c", "Cal"), nil)

	views, err := svc.Snapshot(context.Background(), "p")
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.Equal(t, "b", views[0].PartnerID)
	assert.Equal(t, "latest from b", views[0].LastMessage.Content)
	assert.Equal(t, "c", views[1].PartnerID)
	assert.Equal(t, "to c", views[1].LastMessage.Content)

	require.NotNil(t, views[0].Partner)
	assert.Equal(t, "Bea", views[0].Partner.Name)
}

func TestConversationService_Snapshot_TiedTimestampsKeepFeedOrder(t *testing.T) {
	messages := new(mockMessageRepository)
	users := new(mockUserRepository)
	svc, registry := newConversationFixture(messages, users)
	defer registry.Close()

	// Two partners whose latest messages share one timestamp. The feed's
	// order is the store's order; the aggregation pass must not reshuffle it.
	base := time.Now().UTC()
	feed := []*entities.Message{
		storedMessage("b", "p", "from b", base),
		storedMessage("c", "p", "from c", base),
	}
	messages.On("GetAllForUser", mock.Anything, "p").Return(feed, nil)
	users.On("GetByID", mock.Anything, "b").Return(profileUser("b", "Bea"), nil)
	users.On("GetByID", mock.Anything, "c").Return(profileUser("c", "Cal"), nil)

	views, err := svc.Snapshot(context.Background(), "p")
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "b", views[0].PartnerID)
	assert.Equal(t, "c", views[1].PartnerID)
}

func TestConversationService_Snapshot_ProfileLookupIsCachedPerPartner(t *testing.T) {
	messages := new(mockMessageRepository)
	users := new(mockUserRepository)
	svc, registry := newConversationFixture(messages, users)
	defer registry.Close()

	base := time.Now().UTC()
	feed := []*entities.Message{
		storedMessage("b", "p", "one", base),
	}
	messages.On("GetAllForUser", mock.Anything, "p").Return(feed, nil)
	users.On("GetByID", mock.Anything, "b").Return(profileUser("b", "Bea"), nil).Once()

	_, err := svc.Snapshot(context.Background(), "p")
	require.NoError(t, err)

	// Second snapshot serves the partner from cache.
	views, err := svc.Snapshot(context.Background(), "p")
	require.NoError(t, err)
	require.NotNil(t, views[0].Partner)
	assert.Equal(t, "Bea", views[0].Partner.Name)
	users.AssertExpectations(t)
}

func TestConversationService_Snapshot_OmitsPartnerOnLookupFailure(t *testing.T) {
	messages := new(mockMessageRepository)
	users := new(mockUserRepository)
	svc, registry := newConversationFixture(messages, users)
	defer registry.Close()

	base := time.Now().UTC()
	feed := []*entities.Message{
		storedMessage("gone", "p", "hello?", base),
		storedMessage("b", "p", "hey", base.Add(-time.Minute)),
	}
	messages.On("GetAllForUser", mock.Anything, "p").Return(feed, nil)
	users.On("GetByID", mock.Anything, "gone").Return(nil, appErrors.NewNotFoundError("user"))
	users.On("GetByID", mock.Anything, "b").Return(profileUser("b", "Bea"), nil)

	views, err := svc.Snapshot(context.Background(), "p")
	require.NoError(t, err)
	require.Len(t, views, 2)

	// The conversation stays in the list without the partner profile.
	assert.Equal(t, "gone", views[0].PartnerID)
	assert.Nil(t, views[0].Partner)
	assert.NotNil(t, views[1].Partner)
}

func TestConversationService_Snapshot_EmptyFeed(t *testing.T) {
	messages := new(mockMessageRepository)
	users := new(mockUserRepository)
	svc, registry := newConversationFixture(messages, users)
	defer registry.Close()

	messages.On("GetAllForUser", mock.Anything, "p").Return([]*entities.Message{}, nil)

	views, err := svc.Snapshot(context.Background(), "p")
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestConversationService_Subscribe_RefreshesOnNotify(t *testing.T) {
	messages := new(mockMessageRepository)
	users := new(mockUserRepository)
	svc, registry := newConversationFixture(messages, users)
	defer registry.Close()

	base := time.Now().UTC()
	messages.On("GetAllForUser", mock.Anything, "p").
		Return([]*entities.Message{}, nil).Once()
	messages.On("GetAllForUser", mock.Anything, "p").
		Return([]*entities.Message{storedMessage("b", "p", "new", base)}, nil)
	users.On("GetByID", mock.Anything, "b").Return(profileUser("b", "Bea"), nil)

	sub := svc.Subscribe(context.Background(), "p")
	defer sub.Cancel()

	initial := waitFor(t, sub.Updates)
	assert.Empty(t, initial)

	registry.Notify("p")

	next := waitFor(t, sub.Updates)
	require.Len(t, next, 1)
	assert.Equal(t, "b", next[0].PartnerID)
}
