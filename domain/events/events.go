package events

import (
	"time"

	"hackmate-backend/domain/core/valueobjects"
)

// SourceBackend identifies this service on the event bus
const SourceBackend = "hackmate.backend"

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// MessageSent is raised after a chat message is persisted
type MessageSent struct {
	BaseEvent
	MessageID  valueobjects.MessageID `json:"message_id"`
	SenderID   string                 `json:"sender_id"`
	ReceiverID string                 `json:"receiver_id"`
}

// NewMessageSent creates a MessageSent event
func NewMessageSent(messageID valueobjects.MessageID, senderID, receiverID string, timestamp time.Time) MessageSent {
	return MessageSent{
		BaseEvent: BaseEvent{
			AggregateID: messageID.String(),
			EventType:   "message.sent",
			Timestamp:   timestamp,
			Version:     1,
		},
		MessageID:  messageID,
		SenderID:   senderID,
		ReceiverID: receiverID,
	}
}

// ConnectionRequested is raised after a team connection request is created
type ConnectionRequested struct {
	BaseEvent
	ConnectionID valueobjects.ConnectionID `json:"connection_id"`
	FromUserID   string                    `json:"from_user_id"`
	ToUserID     string                    `json:"to_user_id"`
}

// NewConnectionRequested creates a ConnectionRequested event
func NewConnectionRequested(connectionID valueobjects.ConnectionID, fromUserID, toUserID string, timestamp time.Time) ConnectionRequested {
	return ConnectionRequested{
		BaseEvent: BaseEvent{
			AggregateID: connectionID.String(),
			EventType:   "connection.requested",
			Timestamp:   timestamp,
			Version:     1,
		},
		ConnectionID: connectionID,
		FromUserID:   fromUserID,
		ToUserID:     toUserID,
	}
}

// ConnectionResponded is raised when a request is accepted, rejected or cancelled
type ConnectionResponded struct {
	BaseEvent
	ConnectionID valueobjects.ConnectionID `json:"connection_id"`
	FromUserID   string                    `json:"from_user_id"`
	ToUserID     string                    `json:"to_user_id"`
	Status       string                    `json:"status"`
}

// NewConnectionResponded creates a ConnectionResponded event
func NewConnectionResponded(connectionID valueobjects.ConnectionID, fromUserID, toUserID, status string, timestamp time.Time) ConnectionResponded {
	return ConnectionResponded{
		BaseEvent: BaseEvent{
			AggregateID: connectionID.String(),
			EventType:   "connection.responded",
			Timestamp:   timestamp,
			Version:     1,
		},
		ConnectionID: connectionID,
		FromUserID:   fromUserID,
		ToUserID:     toUserID,
		Status:       status,
	}
}
