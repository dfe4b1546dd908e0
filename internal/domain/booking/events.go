package booking

import (
	"time"

	"github.com/google/uuid"
)

// TopicBookingEvents carries booking lifecycle events.
const TopicBookingEvents = "booking.events"

// Event types published on TopicBookingEvents.
const (
	EventRequested = "booking.requested"
	EventApproved  = "booking.approved"
	EventRejected  = "booking.rejected"
)

// LifecycleEvent is the payload of every booking lifecycle event.
type LifecycleEvent struct {
	BookingID  uuid.UUID     `json:"booking_id"`
	ItemID     uuid.UUID     `json:"item_id"`
	OwnerID    uuid.UUID     `json:"owner_id"`
	BookerID   uuid.UUID     `json:"booker_id"`
	Start      time.Time     `json:"start"`
	End        time.Time     `json:"end"`
	Status     BookingStatus `json:"status"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// NewLifecycleEvent snapshots b for publishing.
func NewLifecycleEvent(b *Booking, occurredAt time.Time) LifecycleEvent {
	return LifecycleEvent{
		BookingID:  b.ID(),
		ItemID:     b.ItemID(),
		OwnerID:    b.Item().OwnerID,
		BookerID:   b.BookerID(),
		Start:      b.Start(),
		End:        b.End(),
		Status:     b.Status(),
		OccurredAt: occurredAt,
	}
}

// EventTypeFor returns the event type announcing a transition into status.
func EventTypeFor(status BookingStatus) string {
	switch status {
	case StatusApproved:
		return EventApproved
	case StatusRejected:
		return EventRejected
	default:
		return EventRequested
	}
}
