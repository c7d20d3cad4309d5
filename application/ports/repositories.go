package ports

import (
	"context"
	"io"

	"hackmate-backend/domain/core/entities"
	"hackmate-backend/domain/core/valueobjects"
	"hackmate-backend/domain/events"
)

// DiscoverFilter narrows the discover listing. Empty or "all" values
// leave the corresponding attribute unfiltered.
type DiscoverFilter struct {
	ProjectInterest string
	ExperienceLevel string
	TeamStatus      string
}

// IsZero reports whether no filtering is requested
func (f DiscoverFilter) IsZero() bool {
	return (f.ProjectInterest == "" || f.ProjectInterest == "all") &&
		(f.ExperienceLevel == "" || f.ExperienceLevel == "all") &&
		(f.TeamStatus == "" || f.TeamStatus == "all")
}

// UserRepository provides access to user profiles
type UserRepository interface {
	// Save persists a user, overwriting any existing record
	Save(ctx context.Context, user *entities.User) error

	// GetByID retrieves a user by id; not-found is an error
	GetByID(ctx context.Context, id string) (*entities.User, error)

	// List returns all profiles except the excluded user, optionally filtered
	List(ctx context.Context, excludeUserID string, filter DiscoverFilter) ([]*entities.User, error)
}

// MessageRepository is the append-only message store
type MessageRepository interface {
	// Append persists a new message, assigning the server-side timestamp.
	// The stored message is returned with its timestamp set.
	Append(ctx context.Context, msg *entities.Message) (*entities.Message, error)

	// GetConversation returns every message between the two users in
	// ascending timestamp order, regardless of direction
	GetConversation(ctx context.Context, userA, userB string) ([]*entities.Message, error)

	// GetAllForUser returns every message the user participates in,
	// in descending timestamp order
	GetAllForUser(ctx context.Context, userID string) ([]*entities.Message, error)
}

// ConnectionRepository stores team connection requests
type ConnectionRepository interface {
	// Create persists a new pending request. The store enforces at most one
	// active request per ordered (from, to) pair; a concurrent duplicate
	// surfaces as a duplicate-request error.
	Create(ctx context.Context, conn *entities.TeamConnection) error

	// HasActive reports whether an active (pending or accepted) request
	// from one user to another exists
	HasActive(ctx context.Context, fromUserID, toUserID string) (bool, error)

	// GetByID retrieves a request by id
	GetByID(ctx context.Context, id valueobjects.ConnectionID) (*entities.TeamConnection, error)

	// Update persists a status transition. releaseGuard frees the
	// active-pair slot for terminal transitions (rejected, cancelled).
	Update(ctx context.Context, conn *entities.TeamConnection, releaseGuard bool) error

	// ListForUser returns the user's outgoing and incoming requests
	ListForUser(ctx context.Context, userID string) (outgoing, incoming []*entities.TeamConnection, err error)
}

// PhotoStore is the blob store for profile photos
type PhotoStore interface {
	// Upload stores a photo under the user's fixed key and returns its URL.
	// Callers enforce type and size constraints before upload.
	Upload(ctx context.Context, userID, contentType string, size int64, body io.Reader) (string, error)
}

// EventBus publishes domain events for out-of-band consumers
type EventBus interface {
	Publish(ctx context.Context, event events.DomainEvent) error
	PublishBatch(ctx context.Context, batch []events.DomainEvent) error
}

// Cache is a TTL key-value cache
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
