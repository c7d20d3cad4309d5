package services

import (
	"context"

	"go.uber.org/zap"

	"hackmate-backend/application/ports"
	"hackmate-backend/domain/core/entities"
	"hackmate-backend/domain/core/valueobjects"
	"hackmate-backend/domain/events"
	appErrors "hackmate-backend/pkg/errors"
	"hackmate-backend/pkg/observability"
)

// ConnectionService implements team connection requests between users
type ConnectionService struct {
	connections ports.ConnectionRepository
	users       ports.UserRepository
	eventBus    ports.EventBus
	metrics     *observability.Metrics
	logger      *zap.Logger
}

// NewConnectionService creates a connection service
func NewConnectionService(
	connections ports.ConnectionRepository,
	users ports.UserRepository,
	eventBus ports.EventBus,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *ConnectionService {
	return &ConnectionService{
		connections: connections,
		users:       users,
		eventBus:    eventBus,
		metrics:     metrics,
		logger:      logger,
	}
}

// CheckActive reports whether the principal already has an active request
// to the target user. Direction matters: an active request from the target
// back to the principal does not count.
func (s *ConnectionService) CheckActive(ctx context.Context, fromUserID, toUserID string) (bool, error) {
	return s.connections.HasActive(ctx, fromUserID, toUserID)
}

// Request creates a pending connection request. The store holds an
// active-pair guard per ordered (from, to) pair, so two racing requests
// produce exactly one record; the loser gets a duplicate-request error.
func (s *ConnectionService) Request(ctx context.Context, fromUserID, toUserID, message string) (ConnectionView, error) {
	if _, err := s.users.GetByID(ctx, toUserID); err != nil {
		return ConnectionView{}, err
	}

	// Cheap pre-check. The store-side guard is what actually closes the
	// race between concurrent requests.
	active, err := s.connections.HasActive(ctx, fromUserID, toUserID)
	if err != nil {
		return ConnectionView{}, err
	}
	if active {
		s.metrics.RecordConnectionRequest(ctx, "duplicate")
		return ConnectionView{}, appErrors.NewDuplicateRequestError(fromUserID, toUserID)
	}

	conn, err := entities.NewTeamConnection(fromUserID, toUserID, message)
	if err != nil {
		return ConnectionView{}, err
	}

	if err := s.connections.Create(ctx, conn); err != nil {
		if appErrors.IsDuplicateRequest(err) {
			s.metrics.RecordConnectionRequest(ctx, "duplicate")
		} else {
			s.metrics.RecordConnectionRequest(ctx, "error")
		}
		return ConnectionView{}, err
	}

	s.metrics.RecordConnectionRequest(ctx, "created")

	event := events.NewConnectionRequested(conn.ID(), conn.FromUserID(), conn.ToUserID(), conn.CreatedAt())
	if err := s.eventBus.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish connection event",
			zap.String("connection_id", conn.ID().String()),
			zap.Error(err),
		)
	}

	s.logger.Info("Connection request created",
		zap.String("connection_id", conn.ID().String()),
		zap.String("from_user_id", fromUserID),
		zap.String("to_user_id", toUserID),
	)

	return toConnectionView(conn), nil
}

// ConnectionResponse is the action taken on a pending request
type ConnectionResponse string

const (
	ResponseAccept ConnectionResponse = "accept"
	ResponseReject ConnectionResponse = "reject"
	ResponseCancel ConnectionResponse = "cancel"
)

// Respond transitions a pending request. Accept and reject belong to the
// recipient, cancel to the requester. Rejecting or cancelling frees the
// active-pair slot so the requester may ask again; accepting keeps it held.
func (s *ConnectionService) Respond(ctx context.Context, actorID string, connectionID valueobjects.ConnectionID, response ConnectionResponse) (ConnectionView, error) {
	conn, err := s.connections.GetByID(ctx, connectionID)
	if err != nil {
		return ConnectionView{}, err
	}

	switch response {
	case ResponseAccept:
		err = conn.Accept(actorID)
	case ResponseReject:
		err = conn.Reject(actorID)
	case ResponseCancel:
		err = conn.Cancel(actorID)
	default:
		return ConnectionView{}, appErrors.NewValidationError("response must be accept, reject, or cancel")
	}
	if err != nil {
		return ConnectionView{}, err
	}

	releaseGuard := conn.Status().IsTerminal()
	if err := s.connections.Update(ctx, conn, releaseGuard); err != nil {
		return ConnectionView{}, err
	}

	event := events.NewConnectionResponded(conn.ID(), conn.FromUserID(), conn.ToUserID(), string(conn.Status()), conn.UpdatedAt())
	if err := s.eventBus.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish connection event",
			zap.String("connection_id", conn.ID().String()),
			zap.Error(err),
		)
	}

	s.logger.Info("Connection request resolved",
		zap.String("connection_id", conn.ID().String()),
		zap.String("status", string(conn.Status())),
	)

	return toConnectionView(conn), nil
}

// ConnectionListView groups a user's requests by direction
type ConnectionListView struct {
	Outgoing []ConnectionView `json:"outgoing"`
	Incoming []ConnectionView `json:"incoming"`
}

// ListForUser returns all requests the user sent or received
func (s *ConnectionService) ListForUser(ctx context.Context, userID string) (ConnectionListView, error) {
	outgoing, incoming, err := s.connections.ListForUser(ctx, userID)
	if err != nil {
		return ConnectionListView{}, err
	}
	return ConnectionListView{
		Outgoing: toConnectionViews(outgoing),
		Incoming: toConnectionViews(incoming),
	}, nil
}
