package entities

import (
	"strings"
	"time"

	"hackmate-backend/domain/core/valueobjects"
	pkgerrors "hackmate-backend/pkg/errors"
)

// MaxMessageLength bounds a single chat message.
const MaxMessageLength = 4000

// Message is an immutable, append-only chat message between two users.
// Conversations are a derived view over messages; there is no stored
// conversation entity.
type Message struct {
	id         valueobjects.MessageID
	senderID   string
	receiverID string
	content    string
	timestamp  time.Time
}

// NewMessage creates a message pending a server-assigned timestamp.
// Content is trimmed; empty content or missing identities are rejected
// before any store interaction.
func NewMessage(senderID, receiverID, content string) (*Message, error) {
	if senderID == "" || receiverID == "" {
		return nil, pkgerrors.NewValidationError("sender and receiver are required")
	}
	if senderID == receiverID {
		return nil, pkgerrors.NewValidationError("cannot send a message to yourself")
	}

	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, pkgerrors.NewValidationError("message content cannot be empty").
			WithCode(pkgerrors.CodeEmptyMessage)
	}
	if len(trimmed) > MaxMessageLength {
		return nil, pkgerrors.NewValidationError("message content too long")
	}

	return &Message{
		id:         valueobjects.NewMessageID(),
		senderID:   senderID,
		receiverID: receiverID,
		content:    trimmed,
	}, nil
}

// ReconstructMessage rebuilds a message from repository data
func ReconstructMessage(
	id valueobjects.MessageID,
	senderID, receiverID, content string,
	timestamp time.Time,
) *Message {
	return &Message{
		id:         id,
		senderID:   senderID,
		receiverID: receiverID,
		content:    content,
		timestamp:  timestamp,
	}
}

func (m *Message) ID() valueobjects.MessageID { return m.id }
func (m *Message) SenderID() string           { return m.senderID }
func (m *Message) ReceiverID() string         { return m.receiverID }
func (m *Message) Content() string            { return m.content }
func (m *Message) Timestamp() time.Time       { return m.timestamp }

// Participants returns the unordered pair of user ids this message belongs to
func (m *Message) Participants() []string {
	return []string{m.senderID, m.receiverID}
}

// PartnerOf returns the other participant relative to the given principal
func (m *Message) PartnerOf(principal string) string {
	if m.senderID == principal {
		return m.receiverID
	}
	return m.senderID
}

// AssignTimestamp stamps the message at persistence time. The store, not the
// client, owns message time.
func (m *Message) AssignTimestamp(t time.Time) {
	m.timestamp = t.UTC()
}

// PairKey returns the canonical key for the unordered participant pair.
// Both directions of a conversation share one key.
func PairKey(a, b string) string {
	if a < b {
		return a + "#" + b
	}
	return b + "#" + a
}
