package valueobjects

import (
	"errors"

	"github.com/google/uuid"
)

// MessageID is a value object representing a unique message identifier
type MessageID struct {
	value string
}

// NewMessageID creates a new random MessageID
func NewMessageID() MessageID {
	return MessageID{value: uuid.New().String()}
}

// NewMessageIDFromString creates a MessageID from an existing string
func NewMessageIDFromString(id string) (MessageID, error) {
	if id == "" {
		return MessageID{}, errors.New("message ID cannot be empty")
	}
	if !isValidUUID(id) {
		return MessageID{}, errors.New("message ID must be a valid UUID")
	}
	return MessageID{value: id}, nil
}

// String returns the string representation of the MessageID
func (id MessageID) String() string {
	return id.value
}

// Equals checks if two MessageIDs are equal
func (id MessageID) Equals(other MessageID) bool {
	return id.value == other.value
}

// IsZero checks if the MessageID is the zero value
func (id MessageID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id MessageID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *MessageID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("MessageID must be a string")
	}
	id.value = string(data[1 : len(data)-1])
	return nil
}

// ConnectionID is a value object identifying a team connection request
type ConnectionID struct {
	value string
}

// NewConnectionID creates a new random ConnectionID
func NewConnectionID() ConnectionID {
	return ConnectionID{value: uuid.New().String()}
}

// NewConnectionIDFromString creates a ConnectionID from an existing string
func NewConnectionIDFromString(id string) (ConnectionID, error) {
	if id == "" {
		return ConnectionID{}, errors.New("connection ID cannot be empty")
	}
	if !isValidUUID(id) {
		return ConnectionID{}, errors.New("connection ID must be a valid UUID")
	}
	return ConnectionID{value: id}, nil
}

// String returns the string representation of the ConnectionID
func (id ConnectionID) String() string {
	return id.value
}

// Equals checks if two ConnectionIDs are equal
func (id ConnectionID) Equals(other ConnectionID) bool {
	return id.value == other.value
}

// IsZero checks if the ConnectionID is the zero value
func (id ConnectionID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id ConnectionID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *ConnectionID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("ConnectionID must be a string")
	}
	id.value = string(data[1 : len(data)-1])
	return nil
}

// isValidUUID validates if a string is a valid UUID
func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
