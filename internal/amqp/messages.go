package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// RoutingKeyEntityChanged is the routing key every tracker mutation is
// published under.
const RoutingKeyEntityChanged = "entity.changed"

// Actions carried by EntityChangedMessage.
const (
	ActionCreated    = "created"
	ActionUpdated    = "updated"
	ActionDeleted    = "deleted"
	ActionTransition = "transitioned"
)

// EntityChangedMessage tells consumers that one of a user's records moved.
// It carries ids only; consumers re-read the store.
type EntityChangedMessage struct {
	UserID    uuid.UUID `json:"userId"`
	Entity    string    `json:"entity"`
	EntityID  uuid.UUID `json:"entityId"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEntityChangedMessage(userID uuid.UUID, entity string, entityID uuid.UUID, action string, at time.Time) *EntityChangedMessage {
	return &EntityChangedMessage{
		UserID:    userID,
		Entity:    entity,
		EntityID:  entityID,
		Action:    action,
		Timestamp: at.UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *EntityChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EntityChangedFromJSON decodes a message and rejects ones without a user.
func EntityChangedFromJSON(data []byte) (*EntityChangedMessage, error) {
	var msg EntityChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.UserID == uuid.Nil {
		return nil, errors.New("message has no userId")
	}
	return &msg, nil
}
