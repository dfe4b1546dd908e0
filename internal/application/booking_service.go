package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/shareit/service-shareit/internal/domain/booking"
	"github.com/shareit/service-shareit/internal/domain/directory"
	"github.com/shareit/service-shareit/internal/platform/clock"
	"github.com/shareit/service-shareit/internal/platform/domain"
	"github.com/shareit/service-shareit/internal/platform/kafka"
	"github.com/shareit/service-shareit/internal/platform/metrics"
)

const eventSource = "service-shareit"

// CreateBookingRequest holds the data needed to request a booking.
type CreateBookingRequest struct {
	ItemID uuid.UUID `json:"item_id" binding:"required"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

// PartyDTO is the booker snapshot shown with a booking.
type PartyDTO struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// ItemRefDTO is the item snapshot shown with a booking.
type ItemRefDTO struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	OwnerID uuid.UUID `json:"owner_id"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID        uuid.UUID  `json:"id"`
	Start     time.Time  `json:"start"`
	End       time.Time  `json:"end"`
	Status    string     `json:"status"`
	Booker    PartyDTO   `json:"booker"`
	Item      ItemRefDTO `json:"item"`
	Version   int64      `json:"version"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	repo      bookingDomain.BookingRepository
	directory directory.Directory
	publisher kafka.Publisher
	clock     clock.Clock
	logger    *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	repo bookingDomain.BookingRepository,
	dir directory.Directory,
	publisher kafka.Publisher,
	clk clock.Clock,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:      repo,
		directory: dir,
		publisher: publisher,
		clock:     clk,
		logger:    logger,
	}
}

// CreateBooking validates a booking request and stores it as WAITING.
func (s *BookingService) CreateBooking(ctx context.Context, bookerID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	// Shape checks run before any lookup.
	period, err := bookingDomain.NewPeriod(req.Start, req.End, s.clock.Now())
	if err != nil {
		s.rejectRequest("invalid_period", bookerID, req.ItemID, err)
		return nil, err
	}

	booker, err := s.directory.FindUser(ctx, bookerID)
	if err != nil {
		return nil, err
	}
	item, err := s.directory.FindItem(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}

	bk, err := bookingDomain.NewBooking(booker, item, period, s.clock.Now())
	if err != nil {
		s.rejectRequest("item_unbookable", bookerID, req.ItemID, err)
		return nil, err
	}

	if err := s.repo.Create(ctx, bk); err != nil {
		if errors.Is(err, bookingDomain.ErrPeriodUnavailable) {
			s.rejectRequest("overlap", bookerID, req.ItemID, err)
			return nil, err
		}
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	metrics.IncBookingCreated()
	s.logger.Info("booking requested",
		zap.String("booking_id", bk.ID().String()),
		zap.String("item_id", bk.ItemID().String()),
		zap.String("booker_id", bookerID.String()),
	)
	s.publishLifecycle(ctx, bk)

	result := toBookingDTO(bk)
	return &result, nil
}

// UpdateBookingStatus records the item owner's decision on a booking.
func (s *BookingService) UpdateBookingStatus(ctx context.Context, bookingID, ownerID uuid.UUID, approved bool) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	// Ownership is checked before the actor is resolved.
	if !bk.IsItemOwner(ownerID) {
		s.logger.Warn("booking decision by non-owner",
			zap.String("booking_id", bookingID.String()),
			zap.String("user_id", ownerID.String()),
		)
		return nil, domain.NewValidationError(fmt.Sprintf(
			"only the owner of item %s can approve or reject its bookings", bk.ItemID()))
	}
	if _, err := s.directory.FindUser(ctx, ownerID); err != nil {
		return nil, err
	}

	if err := bk.Decide(approved, s.clock.Now()); err != nil {
		return nil, err
	}
	bk.IncrementVersion()

	if err := s.repo.Update(ctx, bk); err != nil {
		if errors.Is(err, bookingDomain.ErrPeriodUnavailable) {
			s.rejectRequest("overlap_on_approval", ownerID, bk.ItemID(), err)
		}
		return nil, err
	}

	metrics.IncBookingDecision(strings.ToLower(bk.Status().String()))
	s.logger.Info("booking decided",
		zap.String("booking_id", bk.ID().String()),
		zap.String("status", bk.Status().String()),
	)
	s.publishLifecycle(ctx, bk)

	result := toBookingDTO(bk)
	return &result, nil
}

// GetBooking returns a booking to its booker or to the owner of its item.
func (s *BookingService) GetBooking(ctx context.Context, bookingID, viewerID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !bk.CanBeViewedBy(viewerID) {
		return nil, domain.NewValidationError(fmt.Sprintf(
			"user %s is neither the booker nor the item owner of booking %s", viewerID, bookingID))
	}

	result := toBookingDTO(bk)
	return &result, nil
}

// GetAllBookingsByUser lists the bookings made by bookerID. A nil status means all.
func (s *BookingService) GetAllBookingsByUser(ctx context.Context, bookerID uuid.UUID, status *bookingDomain.BookingStatus) ([]BookingDTO, error) {
	if _, err := s.directory.FindUser(ctx, bookerID); err != nil {
		return nil, err
	}
	bookings, err := s.repo.FindByBooker(ctx, bookerID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list booker bookings: %w", err)
	}
	return toBookingDTOs(bookings), nil
}

// GetAllBookingsByItemOwner lists the bookings of every item owned by ownerID. A nil status means all.
func (s *BookingService) GetAllBookingsByItemOwner(ctx context.Context, ownerID uuid.UUID, status *bookingDomain.BookingStatus) ([]BookingDTO, error) {
	if _, err := s.directory.FindUser(ctx, ownerID); err != nil {
		return nil, err
	}
	bookings, err := s.repo.FindByItemOwner(ctx, ownerID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list owner bookings: %w", err)
	}
	return toBookingDTOs(bookings), nil
}

// RentalEligibility classifies bookerID's approved bookings of itemID against now.
func (s *BookingService) RentalEligibility(ctx context.Context, bookerID, itemID uuid.UUID) (bookingDomain.Eligibility, error) {
	bookings, err := s.repo.FindApprovedByBookerAndItem(ctx, bookerID, itemID)
	if err != nil {
		return bookingDomain.NeverRented, fmt.Errorf("failed to load approved bookings: %w", err)
	}
	return bookingDomain.CheckEligibility(bookings, s.clock.Now()), nil
}

// HasCompletedRental reports whether bookerID has an approved booking of itemID that ended before now.
func (s *BookingService) HasCompletedRental(ctx context.Context, bookerID, itemID uuid.UUID) (bool, error) {
	e, err := s.RentalEligibility(ctx, bookerID, itemID)
	if err != nil {
		return false, err
	}
	return e == bookingDomain.RentalCompleted, nil
}

// --- Admin methods ---

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// ListAllBookings returns every booking, most recent start first (admin).
func (s *BookingService) ListAllBookings(ctx context.Context) ([]BookingDTO, error) {
	bookings, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return toBookingDTOs(bookings), nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      counts,
	}, nil
}

// --- Helpers ---

func (s *BookingService) rejectRequest(reason string, userID, itemID uuid.UUID, err error) {
	metrics.IncBookingRejectedRequest(reason)
	s.logger.Warn("booking request rejected",
		zap.String("reason", reason),
		zap.String("user_id", userID.String()),
		zap.String("item_id", itemID.String()),
		zap.Error(err),
	)
}

func (s *BookingService) publishLifecycle(ctx context.Context, bk *bookingDomain.Booking) {
	eventType := bookingDomain.EventTypeFor(bk.Status())
	evt := bookingDomain.NewLifecycleEvent(bk, s.clock.Now())
	s.publishEvent(ctx, bookingDomain.TopicBookingEvents, eventType, bk.ID().String(), evt)
}

func (s *BookingService) publishEvent(ctx context.Context, topic, eventType, key string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent(eventSource, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.publisher.PublishEvent(ctx, topic, cloudEvent.WithSubject(key)); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	booker := bk.Booker()
	item := bk.Item()
	return BookingDTO{
		ID:     bk.ID(),
		Start:  bk.Start(),
		End:    bk.End(),
		Status: string(bk.Status()),
		Booker: PartyDTO{
			ID:    booker.ID,
			Name:  booker.Name,
			Email: booker.Email,
		},
		Item: ItemRefDTO{
			ID:      item.ID,
			Name:    item.Name,
			OwnerID: item.OwnerID,
		},
		Version:   bk.Version(),
		CreatedAt: bk.CreatedAt(),
		UpdatedAt: bk.UpdatedAt(),
	}
}

func toBookingDTOs(bookings []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos
}
