// Package memory holds mutex-guarded in-process stores used by the memory
// store mode and by service tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	bookingDomain "github.com/shareit/service-shareit/internal/domain/booking"
	"github.com/shareit/service-shareit/internal/platform/domain"
)

// BookingStore implements booking.BookingRepository. Writers hold one mutex,
// so the overlap check and the write are atomic for every item.
type BookingStore struct {
	mu        sync.RWMutex
	bookings  map[uuid.UUID]*bookingDomain.Booking
	directory *Directory
}

// NewBookingStore creates a store whose reads resolve booker and item details
// through dir, the way the SQL store joins them. With a nil dir the details
// captured at creation are returned.
func NewBookingStore(dir *Directory) *BookingStore {
	return &BookingStore{
		bookings:  make(map[uuid.UUID]*bookingDomain.Booking),
		directory: dir,
	}
}

func (s *BookingStore) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", id.String())
	}
	return s.view(b), nil
}

func (s *BookingStore) FindByBooker(_ context.Context, bookerID uuid.UUID, status *bookingDomain.BookingStatus) ([]*bookingDomain.Booking, error) {
	return s.selectByStart(func(b *bookingDomain.Booking) bool {
		return b.BookerID() == bookerID && matchesStatus(b, status)
	}), nil
}

func (s *BookingStore) FindByItemOwner(_ context.Context, ownerID uuid.UUID, status *bookingDomain.BookingStatus) ([]*bookingDomain.Booking, error) {
	return s.selectByStart(func(b *bookingDomain.Booking) bool {
		return b.Item().OwnerID == ownerID && matchesStatus(b, status)
	}), nil
}

func (s *BookingStore) FindByItem(_ context.Context, itemID uuid.UUID) ([]*bookingDomain.Booking, error) {
	return s.selectByStart(func(b *bookingDomain.Booking) bool {
		return b.ItemID() == itemID
	}), nil
}

func (s *BookingStore) FindApprovedByBookerAndItem(_ context.Context, bookerID, itemID uuid.UUID) ([]*bookingDomain.Booking, error) {
	out := s.selectByStart(func(b *bookingDomain.Booking) bool {
		return b.BookerID() == bookerID && b.ItemID() == itemID && b.IsApproved()
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].End().After(out[j].End()) })
	return out, nil
}

func (s *BookingStore) ExistsApprovedOverlap(_ context.Context, itemID uuid.UUID, period bookingDomain.Period, excludeID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.overlapLocked(itemID, period, excludeID), nil
}

func (s *BookingStore) ListAll(_ context.Context) ([]*bookingDomain.Booking, error) {
	return s.selectByStart(func(*bookingDomain.Booking) bool { return true }), nil
}

func (s *BookingStore) CountByStatus(_ context.Context) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int64)
	for _, b := range s.bookings {
		counts[string(b.Status())]++
	}
	return counts, nil
}

func (s *BookingStore) Create(_ context.Context, b *bookingDomain.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bookings[b.ID()]; exists {
		return domain.NewConflictError("booking already exists")
	}
	if s.overlapLocked(b.ItemID(), b.Period(), uuid.Nil) {
		return bookingDomain.ErrPeriodUnavailable
	}
	s.bookings[b.ID()] = cloneBooking(b)
	return nil
}

func (s *BookingStore) Update(_ context.Context, b *bookingDomain.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.bookings[b.ID()]
	if !ok {
		return domain.NewNotFoundError("Booking", b.ID().String())
	}
	if stored.Version() != b.Version()-1 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	if b.IsApproved() && s.overlapLocked(b.ItemID(), b.Period(), b.ID()) {
		return bookingDomain.ErrPeriodUnavailable
	}
	s.bookings[b.ID()] = cloneBooking(b)
	return nil
}

func (s *BookingStore) overlapLocked(itemID uuid.UUID, period bookingDomain.Period, excludeID uuid.UUID) bool {
	for id, b := range s.bookings {
		if id == excludeID || b.ItemID() != itemID || !b.IsApproved() {
			continue
		}
		if b.Period().Overlaps(period) {
			return true
		}
	}
	return false
}

// selectByStart returns copies of matching bookings, most recent start first.
func (s *BookingStore) selectByStart(match func(*bookingDomain.Booking) bool) []*bookingDomain.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*bookingDomain.Booking, 0)
	for _, b := range s.bookings {
		if match(b) {
			out = append(out, s.view(b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start().Equal(out[j].Start()) {
			return out[i].CreatedAt().After(out[j].CreatedAt())
		}
		return out[i].Start().After(out[j].Start())
	})
	return out
}

// view copies b with the booker and item details currently in the directory.
func (s *BookingStore) view(b *bookingDomain.Booking) *bookingDomain.Booking {
	booker, item := b.Booker(), b.Item()
	if s.directory != nil {
		if u, ok := s.directory.user(booker.ID); ok {
			booker = bookingDomain.Party{ID: u.ID(), Name: u.Name(), Email: u.Email()}
		}
		if it, ok := s.directory.item(item.ID); ok {
			item = bookingDomain.ItemRef{ID: it.ID(), Name: it.Name(), OwnerID: it.OwnerID()}
		}
	}
	return bookingDomain.ReconstructBooking(
		b.ID(), booker, item, b.Period(),
		b.Status(), b.Version(), b.CreatedAt(), b.UpdatedAt(),
	)
}

func matchesStatus(b *bookingDomain.Booking, status *bookingDomain.BookingStatus) bool {
	return status == nil || b.Status() == *status
}

func cloneBooking(b *bookingDomain.Booking) *bookingDomain.Booking {
	return bookingDomain.ReconstructBooking(
		b.ID(), b.Booker(), b.Item(), b.Period(),
		b.Status(), b.Version(), b.CreatedAt(), b.UpdatedAt(),
	)
}
