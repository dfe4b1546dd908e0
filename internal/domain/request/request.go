package request

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/shareit/service-shareit/internal/platform/domain"
)

const (
	minDescriptionLen = 3
	maxDescriptionLen = 255
)

// ItemRequest is a user's ask for an item nobody lists yet. Owners answer it
// by listing an item that carries the request's ID.
type ItemRequest struct {
	id          uuid.UUID
	requesterID uuid.UUID
	description string
	createdAt   time.Time
}

// NewItemRequest creates a request by requesterID, stamped at now.
func NewItemRequest(requesterID uuid.UUID, description string, now time.Time) (*ItemRequest, error) {
	if requesterID == uuid.Nil {
		return nil, domain.NewValidationError("requester ID is required")
	}
	description = strings.TrimSpace(description)
	n := utf8.RuneCountInString(description)
	if n < minDescriptionLen || n > maxDescriptionLen {
		return nil, domain.NewValidationError("request description must be between 3 and 255 characters")
	}

	return &ItemRequest{
		id:          uuid.New(),
		requesterID: requesterID,
		description: description,
		createdAt:   now.UTC(),
	}, nil
}

// Reconstruct rebuilds an ItemRequest from persistence.
func Reconstruct(id, requesterID uuid.UUID, description string, createdAt time.Time) *ItemRequest {
	return &ItemRequest{
		id:          id,
		requesterID: requesterID,
		description: description,
		createdAt:   createdAt,
	}
}

func (r *ItemRequest) ID() uuid.UUID          { return r.id }
func (r *ItemRequest) RequesterID() uuid.UUID { return r.requesterID }
func (r *ItemRequest) Description() string    { return r.description }
func (r *ItemRequest) CreatedAt() time.Time   { return r.createdAt }
