package request

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for item requests. Listings are
// ordered newest first.
type Repository interface {
	Save(ctx context.Context, r *ItemRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*ItemRequest, error)
	FindByRequester(ctx context.Context, requesterID uuid.UUID) ([]*ItemRequest, error)
	FindByOtherRequesters(ctx context.Context, requesterID uuid.UUID) ([]*ItemRequest, error)
}
