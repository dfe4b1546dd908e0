package directory

import "github.com/google/uuid"

// TopicUserEvents carries user registration changes from the account service.
const TopicUserEvents = "user.events"

// Event types consumed from TopicUserEvents.
const (
	EventUserUpserted = "user.upserted"
	EventUserDeleted  = "user.deleted"
)

// UserUpsertedEvent is the payload of EventUserUpserted.
type UserUpsertedEvent struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
}
