package entities

import (
	"strings"
	"time"

	"hackmate-backend/domain/core/valueobjects"
	pkgerrors "hackmate-backend/pkg/errors"
)

// ConnectionStatus is the lifecycle state of a team connection request
type ConnectionStatus string

const (
	ConnectionPending   ConnectionStatus = "pending"
	ConnectionAccepted  ConnectionStatus = "accepted"
	ConnectionRejected  ConnectionStatus = "rejected"
	ConnectionCancelled ConnectionStatus = "cancelled"
)

// IsActive reports whether the status still blocks a new same-direction
// request (pending or accepted).
func (s ConnectionStatus) IsActive() bool {
	return s == ConnectionPending || s == ConnectionAccepted
}

// IsTerminal reports whether the status admits no further transitions
func (s ConnectionStatus) IsTerminal() bool {
	return s == ConnectionRejected || s == ConnectionCancelled
}

// MaxConnectionMessageLength bounds the intro message on a request.
const MaxConnectionMessageLength = 1000

// TeamConnection is a directional team-up request from one user to another.
// Direction matters: a pending B→A request does not block A→B.
type TeamConnection struct {
	id         valueobjects.ConnectionID
	fromUserID string
	toUserID   string
	status     ConnectionStatus
	message    string
	createdAt  time.Time
	updatedAt  time.Time
}

// NewTeamConnection creates a pending request with a trimmed intro message
func NewTeamConnection(fromUserID, toUserID, message string) (*TeamConnection, error) {
	if fromUserID == "" || toUserID == "" {
		return nil, pkgerrors.NewValidationError("both users are required")
	}
	if fromUserID == toUserID {
		return nil, pkgerrors.NewValidationError("cannot request a connection with yourself")
	}

	trimmed := strings.TrimSpace(message)
	if len(trimmed) > MaxConnectionMessageLength {
		return nil, pkgerrors.NewValidationError("connection message too long")
	}

	now := time.Now().UTC()
	return &TeamConnection{
		id:         valueobjects.NewConnectionID(),
		fromUserID: fromUserID,
		toUserID:   toUserID,
		status:     ConnectionPending,
		message:    trimmed,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// ReconstructTeamConnection rebuilds a connection from repository data
func ReconstructTeamConnection(
	id valueobjects.ConnectionID,
	fromUserID, toUserID string,
	status ConnectionStatus,
	message string,
	createdAt, updatedAt time.Time,
) *TeamConnection {
	return &TeamConnection{
		id:         id,
		fromUserID: fromUserID,
		toUserID:   toUserID,
		status:     status,
		message:    message,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

func (c *TeamConnection) ID() valueobjects.ConnectionID { return c.id }
func (c *TeamConnection) FromUserID() string            { return c.fromUserID }
func (c *TeamConnection) ToUserID() string              { return c.toUserID }
func (c *TeamConnection) Status() ConnectionStatus      { return c.status }
func (c *TeamConnection) Message() string               { return c.message }
func (c *TeamConnection) CreatedAt() time.Time          { return c.createdAt }
func (c *TeamConnection) UpdatedAt() time.Time          { return c.updatedAt }

// Accept transitions pending → accepted; only the recipient may accept.
func (c *TeamConnection) Accept(actorID string) error {
	if actorID != c.toUserID {
		return pkgerrors.NewForbiddenError("only the recipient can accept a request")
	}
	return c.transition(ConnectionAccepted)
}

// Reject transitions pending → rejected; only the recipient may reject.
func (c *TeamConnection) Reject(actorID string) error {
	if actorID != c.toUserID {
		return pkgerrors.NewForbiddenError("only the recipient can reject a request")
	}
	return c.transition(ConnectionRejected)
}

// Cancel transitions pending → cancelled; only the requester may cancel.
func (c *TeamConnection) Cancel(actorID string) error {
	if actorID != c.fromUserID {
		return pkgerrors.NewForbiddenError("only the requester can cancel a request")
	}
	return c.transition(ConnectionCancelled)
}

func (c *TeamConnection) transition(next ConnectionStatus) error {
	if c.status != ConnectionPending {
		return pkgerrors.NewConflictError("request is no longer pending")
	}
	c.status = next
	c.updatedAt = time.Now().UTC()
	return nil
}
