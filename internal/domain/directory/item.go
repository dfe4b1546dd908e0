package directory

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

// Item is the aggregate root for something a user lists for rent.
type Item struct {
	id          uuid.UUID
	ownerID     uuid.UUID
	name        string
	description string
	available   bool
	requestID   *uuid.UUID
	version     int64
	createdAt   time.Time
	updatedAt   time.Time
}

// NewItem creates a new item with validated fields.
func NewItem(ownerID uuid.UUID, name, description string, available bool, requestID *uuid.UUID) (*Item, error) {
	if ownerID == uuid.Nil {
		return nil, domain.NewValidationError("owner ID is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("item name is required")
	}
	if err := validateDescription(description); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Item{
		id:          uuid.New(),
		ownerID:     ownerID,
		name:        name,
		description: description,
		available:   available,
		requestID:   requestID,
		version:     1,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructItem rebuilds an Item from persistence data (no validation).
func ReconstructItem(
	id, ownerID uuid.UUID,
	name, description string,
	available bool,
	requestID *uuid.UUID,
	version int64,
	createdAt, updatedAt time.Time,
) *Item {
	return &Item{
		id:          id,
		ownerID:     ownerID,
		name:        name,
		description: description,
		available:   available,
		requestID:   requestID,
		version:     version,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// --- Getters ---

func (i *Item) ID() uuid.UUID          { return i.id }
func (i *Item) OwnerID() uuid.UUID     { return i.ownerID }
func (i *Item) Name() string           { return i.name }
func (i *Item) Description() string    { return i.description }
func (i *Item) Available() bool        { return i.available }
func (i *Item) RequestID() *uuid.UUID  { return i.requestID }
func (i *Item) Version() int64         { return i.version }
func (i *Item) CreatedAt() time.Time   { return i.createdAt }
func (i *Item) UpdatedAt() time.Time   { return i.updatedAt }

// --- Behavior ---

// IsOwnedBy checks if the item belongs to the given user.
func (i *Item) IsOwnedBy(userID uuid.UUID) bool {
	return i.ownerID == userID
}

// ItemPatch carries the fields of a partial update; nil means unchanged.
type ItemPatch struct {
	Name        *string
	Description *string
	Available   *bool
}

// Update applies a partial update.
func (i *Item) Update(p ItemPatch) error {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return domain.NewValidationError("item name cannot be blank")
		}
		i.name = name
	}
	if p.Description != nil {
		if err := validateDescription(*p.Description); err != nil {
			return err
		}
		i.description = *p.Description
	}
	if p.Available != nil {
		i.available = *p.Available
	}
	i.version++
	i.updatedAt = time.Now().UTC()
	return nil
}

// Matches reports whether text occurs in the name or description, ignoring case.
func (i *Item) Matches(text string) bool {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return false
	}
	return strings.Contains(strings.ToLower(i.name), needle) ||
		strings.Contains(strings.ToLower(i.description), needle)
}

func validateDescription(description string) error {
	n := utf8.RuneCountInString(description)
	if n < minDescriptionLen || n > maxDescriptionLen {
		return domain.NewValidationError("item description must be between 3 and 255 characters")
	}
	return nil
}
