package comment

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shareit/service-shareit/internal/platform/domain"
)

const maxTextLen = 2000

// Comment is a review left on an item by a user who rented it.
type Comment struct {
	id         uuid.UUID
	itemID     uuid.UUID
	authorID   uuid.UUID
	authorName string
	text       string
	createdAt  time.Time
}

// NewComment creates a new comment. Rental eligibility is checked by the caller.
func NewComment(itemID, authorID uuid.UUID, authorName, text string, createdAt time.Time) (*Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.NewValidationError("comment text cannot be blank")
	}
	if len([]rune(text)) > maxTextLen {
		return nil, domain.NewValidationError("comment text is too long")
	}

	return &Comment{
		id:         uuid.New(),
		itemID:     itemID,
		authorID:   authorID,
		authorName: authorName,
		text:       text,
		createdAt:  createdAt.UTC(),
	}, nil
}

// Reconstruct rebuilds a Comment from persistence.
func Reconstruct(id, itemID, authorID uuid.UUID, authorName, text string, createdAt time.Time) *Comment {
	return &Comment{
		id:         id,
		itemID:     itemID,
		authorID:   authorID,
		authorName: authorName,
		text:       text,
		createdAt:  createdAt,
	}
}

// Getters.
func (c *Comment) ID() uuid.UUID        { return c.id }
func (c *Comment) ItemID() uuid.UUID    { return c.itemID }
func (c *Comment) AuthorID() uuid.UUID  { return c.authorID }
func (c *Comment) AuthorName() string   { return c.authorName }
func (c *Comment) Text() string         { return c.text }
func (c *Comment) CreatedAt() time.Time { return c.createdAt }
