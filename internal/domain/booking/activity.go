package booking

import (
	"time"

	"github.com/google/uuid"
)

// completionBuffer keeps a rental that ended moments ago out of "last" until
// the boundary has clearly passed.
const completionBuffer = time.Minute

// Activity is the most recently completed and the nearest upcoming approved
// booking of one item. Either may be nil.
type Activity struct {
	Last *Booking
	Next *Booking
}

// DeriveActivity computes the activity of itemID from bookings. Bookings of
// other items and bookings that are not APPROVED are ignored, so an unfiltered
// batch may be passed.
func DeriveActivity(itemID uuid.UUID, bookings []*Booking, now time.Time) Activity {
	var act Activity
	lastCutoff := now.Add(-completionBuffer)

	for _, b := range bookings {
		if b == nil || b.ItemID() != itemID || !b.IsApproved() {
			continue
		}
		if b.End().Before(lastCutoff) && (act.Last == nil || b.End().After(act.Last.End())) {
			act.Last = b
		}
		if b.Start().After(now) && (act.Next == nil || b.Start().Before(act.Next.Start())) {
			act.Next = b
		}
	}
	return act
}

// GroupByItem indexes bookings by item so a batch of items can be derived from
// one query.
func GroupByItem(bookings []*Booking) map[uuid.UUID][]*Booking {
	grouped := make(map[uuid.UUID][]*Booking)
	for _, b := range bookings {
		grouped[b.ItemID()] = append(grouped[b.ItemID()], b)
	}
	return grouped
}
