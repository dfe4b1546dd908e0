package directory

import (
	"context"

	"github.com/google/uuid"
)

// Directory resolves users and items. Lookups of missing records return a
// NotFound domain error.
type Directory interface {
	FindUser(ctx context.Context, id uuid.UUID) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	FindItem(ctx context.Context, id uuid.UUID) (*Item, error)
	FindItemsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Item, error)

	// FindItemsByRequestIDs returns the items listed in answer to any of the requests.
	FindItemsByRequestIDs(ctx context.Context, requestIDs []uuid.UUID) ([]*Item, error)

	// SearchAvailableItems returns available items whose name or description contains text.
	SearchAvailableItems(ctx context.Context, text string) ([]*Item, error)

	// SaveUser inserts or replaces a user record. An email held by another
	// user yields a Conflict error.
	SaveUser(ctx context.Context, user *User) error

	// SaveItem inserts or updates an item.
	SaveItem(ctx context.Context, item *Item) error
}
