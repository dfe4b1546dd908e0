package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/shareit/service-shareit/internal/domain/directory"
	"github.com/shareit/service-shareit/internal/platform/domain"
)

// ErrPeriodUnavailable is returned when an approved booking of the same item
// already overlaps the requested period.
var ErrPeriodUnavailable = domain.NewValidationError("the requested period is already booked")

// Party is the booker snapshot carried with a booking for display.
type Party struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// ItemRef is the item snapshot carried with a booking for display and authorization.
type ItemRef struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	OwnerID uuid.UUID `json:"owner_id"`
}

// Booking is the aggregate root for a time-bound rental request.
type Booking struct {
	id        uuid.UUID
	booker    Party
	item      ItemRef
	period    Period
	status    BookingStatus
	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a WAITING booking of item by booker for period, stamped at now.
func NewBooking(booker *directory.User, item *directory.Item, period Period, now time.Time) (*Booking, error) {
	if !item.Available() {
		return nil, domain.NewValidationError("item " + item.ID().String() + " is not available for booking")
	}
	if item.IsOwnedBy(booker.ID()) {
		return nil, domain.NewValidationError("an owner cannot book their own item")
	}

	now = now.UTC()
	return &Booking{
		id: uuid.New(),
		booker: Party{
			ID:    booker.ID(),
			Name:  booker.Name(),
			Email: booker.Email(),
		},
		item: ItemRef{
			ID:      item.ID(),
			Name:    item.Name(),
			OwnerID: item.OwnerID(),
		},
		period:    period,
		status:    StatusWaiting,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	booker Party,
	item ItemRef,
	period Period,
	status BookingStatus,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:        id,
		booker:    booker,
		item:      item,
		period:    period,
		status:    status,
		version:   version,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// Booker returns the booker snapshot.
func (b *Booking) Booker() Party { return b.booker }

// BookerID returns the booker's user ID.
func (b *Booking) BookerID() uuid.UUID { return b.booker.ID }

// Item returns the item snapshot.
func (b *Booking) Item() ItemRef { return b.item }

// ItemID returns the booked item's ID.
func (b *Booking) ItemID() uuid.UUID { return b.item.ID }

// Period returns the rental interval.
func (b *Booking) Period() Period { return b.period }

// Start returns the rental start.
func (b *Booking) Start() time.Time { return b.period.Start }

// End returns the rental end.
func (b *Booking) End() time.Time { return b.period.End }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// IsItemOwner reports whether userID owns the booked item.
func (b *Booking) IsItemOwner(userID uuid.UUID) bool {
	return b.item.OwnerID == userID
}

// CanBeViewedBy reports whether userID is the booker or the item owner.
func (b *Booking) CanBeViewedBy(userID uuid.UUID) bool {
	return b.booker.ID == userID || b.item.OwnerID == userID
}

// IsApproved reports whether the owner approved the booking.
func (b *Booking) IsApproved() bool {
	return b.status == StatusApproved
}

// Decide records the owner's decision at now. Only a WAITING booking can be decided.
func (b *Booking) Decide(approved bool, now time.Time) error {
	target := StatusRejected
	if approved {
		target = StatusApproved
	}
	if !b.status.CanTransitionTo(target) {
		return domain.NewValidationError("booking has already been decided: " + string(b.status))
	}
	b.status = target
	b.updatedAt = now.UTC()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
}
