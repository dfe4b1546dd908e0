package booking

import (
	"context"

	"github.com/google/uuid"
)

// BookingRepository defines the persistence contract for booking aggregates.
// Listings are ordered by start, most recent first, unless stated otherwise.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByBooker retrieves the bookings made by bookerID, optionally filtered by status.
	FindByBooker(ctx context.Context, bookerID uuid.UUID, status *BookingStatus) ([]*Booking, error)

	// FindByItemOwner retrieves the bookings of every item owned by ownerID, optionally filtered by status.
	FindByItemOwner(ctx context.Context, ownerID uuid.UUID, status *BookingStatus) ([]*Booking, error)

	// FindByItem retrieves every booking of one item.
	FindByItem(ctx context.Context, itemID uuid.UUID) ([]*Booking, error)

	// FindApprovedByBookerAndItem retrieves approved bookings of itemID by bookerID, latest end first.
	FindApprovedByBookerAndItem(ctx context.Context, bookerID, itemID uuid.UUID) ([]*Booking, error)

	// ExistsApprovedOverlap reports whether an approved booking of itemID other
	// than excludeID overlaps period.
	ExistsApprovedOverlap(ctx context.Context, itemID uuid.UUID, period Period, excludeID uuid.UUID) (bool, error)

	// ListAll retrieves every booking (admin).
	ListAll(ctx context.Context) ([]*Booking, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// Create persists a new booking. The approved-overlap check and the insert
	// are serialized per item; an overlap yields ErrPeriodUnavailable.
	Create(ctx context.Context, booking *Booking) error

	// Update persists a status change with optimistic locking. When the booking
	// is APPROVED the approved-overlap check (excluding itself) is serialized
	// per item with the write; an overlap yields ErrPeriodUnavailable.
	Update(ctx context.Context, booking *Booking) error
}
