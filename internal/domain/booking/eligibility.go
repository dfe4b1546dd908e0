package booking

import "time"

// Eligibility tells whether a user may review an item they rented.
type Eligibility int

const (
	// NeverRented means the user has no approved booking of the item.
	NeverRented Eligibility = iota
	// RentalNotCompleted means every approved booking of the item ends in the future.
	RentalNotCompleted
	// RentalCompleted means at least one approved booking ended before now.
	RentalCompleted
)

func (e Eligibility) String() string {
	switch e {
	case NeverRented:
		return "never_rented"
	case RentalNotCompleted:
		return "rental_not_completed"
	case RentalCompleted:
		return "rental_completed"
	}
	return "unknown"
}

// CheckEligibility classifies one user's bookings of one item.
func CheckEligibility(bookings []*Booking, now time.Time) Eligibility {
	result := NeverRented
	for _, b := range bookings {
		if !b.IsApproved() {
			continue
		}
		if b.End().Before(now) {
			return RentalCompleted
		}
		result = RentalNotCompleted
	}
	return result
}
