package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	bookingDomain "github.com/shareit/service-shareit/internal/domain/booking"
	"github.com/shareit/service-shareit/internal/platform/database"
	"github.com/shareit/service-shareit/internal/platform/domain"
)

// maxTxAttempts bounds retries of a per-item transaction after a serialization
// failure or deadlock.
const maxTxAttempts = 3

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookerID  uuid.UUID `gorm:"type:uuid;index;not null"`
	ItemID    uuid.UUID `gorm:"type:uuid;index:idx_bookings_item_period,priority:1;not null"`
	StartDate time.Time `gorm:"column:start_date;index:idx_bookings_item_period,priority:2;not null"`
	EndDate   time.Time `gorm:"column:end_date;index:idx_bookings_item_period,priority:3;not null"`
	Status    string    `gorm:"not null;size:20;index"`
	Version   int64     `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Booker UserModel `gorm:"foreignKey:BookerID;references:ID"`
	Item   ItemModel `gorm:"foreignKey:ItemID;references:ID"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

func (r *GormBookingRepository) withSnapshots(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Booker").Preload("Item")
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.withSnapshots(ctx).Where("bookings.id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByBooker retrieves bookings made by bookerID, most recent start first.
func (r *GormBookingRepository) FindByBooker(ctx context.Context, bookerID uuid.UUID, status *bookingDomain.BookingStatus) ([]*bookingDomain.Booking, error) {
	q := r.withSnapshots(ctx).Where("bookings.booker_id = ?", bookerID)
	if status != nil {
		q = q.Where("bookings.status = ?", string(*status))
	}
	return r.findMany(q.Order("bookings.start_date DESC"), "booker bookings")
}

// FindByItemOwner retrieves bookings of items owned by ownerID, most recent start first.
func (r *GormBookingRepository) FindByItemOwner(ctx context.Context, ownerID uuid.UUID, status *bookingDomain.BookingStatus) ([]*bookingDomain.Booking, error) {
	q := r.withSnapshots(ctx).
		Joins("JOIN items ON items.id = bookings.item_id").
		Where("items.owner_id = ?", ownerID)
	if status != nil {
		q = q.Where("bookings.status = ?", string(*status))
	}
	return r.findMany(q.Order("bookings.start_date DESC"), "owner bookings")
}

// FindByItem retrieves every booking of one item.
func (r *GormBookingRepository) FindByItem(ctx context.Context, itemID uuid.UUID) ([]*bookingDomain.Booking, error) {
	q := r.withSnapshots(ctx).Where("bookings.item_id = ?", itemID).Order("bookings.start_date DESC")
	return r.findMany(q, "item bookings")
}

// FindApprovedByBookerAndItem retrieves approved bookings of itemID by bookerID, latest end first.
func (r *GormBookingRepository) FindApprovedByBookerAndItem(ctx context.Context, bookerID, itemID uuid.UUID) ([]*bookingDomain.Booking, error) {
	q := r.withSnapshots(ctx).
		Where("bookings.booker_id = ? AND bookings.item_id = ? AND bookings.status = ?",
			bookerID, itemID, string(bookingDomain.StatusApproved)).
		Order("bookings.end_date DESC")
	return r.findMany(q, "approved bookings")
}

// ExistsApprovedOverlap reports whether an approved booking other than excludeID overlaps period.
func (r *GormBookingRepository) ExistsApprovedOverlap(ctx context.Context, itemID uuid.UUID, period bookingDomain.Period, excludeID uuid.UUID) (bool, error) {
	var count int64
	if err := approvedOverlapQuery(r.db.WithContext(ctx), itemID, period, excludeID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check booking overlap: %w", err)
	}
	return count > 0, nil
}

// ListAll retrieves every booking, most recent start first (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context) ([]*bookingDomain.Booking, error) {
	return r.findMany(r.withSnapshots(ctx).Order("bookings.start_date DESC"), "bookings")
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// Create persists a new booking unless an approved booking already overlaps it.
func (r *GormBookingRepository) Create(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)
	return r.inItemTx(ctx, bk.ItemID(), func(tx *gorm.DB) error {
		if err := ensureNoApprovedOverlap(tx, bk.ItemID(), bk.Period(), uuid.Nil); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			if database.IsExclusionViolation(err) {
				return bookingDomain.ErrPeriodUnavailable
			}
			return fmt.Errorf("failed to save booking: %w", err)
		}
		return nil
	})
}

// Update persists a status change with optimistic locking, re-checking overlap on approval.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)
	return r.inItemTx(ctx, bk.ItemID(), func(tx *gorm.DB) error {
		if bk.IsApproved() {
			if err := ensureNoApprovedOverlap(tx, bk.ItemID(), bk.Period(), bk.ID()); err != nil {
				return err
			}
		}

		// IncrementVersion was called before Update, so the stored row holds the previous version.
		expectedVersion := bk.Version() - 1
		result := tx.Model(&BookingModel{}).
			Where("id = ? AND version = ?", model.ID, expectedVersion).
			Updates(map[string]interface{}{
				"status":     model.Status,
				"start_date": model.StartDate,
				"end_date":   model.EndDate,
				"version":    model.Version,
				"updated_at": model.UpdatedAt,
			})
		if result.Error != nil {
			if database.IsExclusionViolation(result.Error) {
				return bookingDomain.ErrPeriodUnavailable
			}
			return fmt.Errorf("failed to update booking: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.NewConflictError("booking was modified by another transaction")
		}
		return nil
	})
}

// inItemTx runs fn in a transaction holding the item's advisory lock, so that
// overlap checks and writes for one item are serialized.
func (r *GormBookingRepository) inItemTx(ctx context.Context, itemID uuid.UUID, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtextextended(?, 0))", itemID.String()).Error; err != nil {
				return fmt.Errorf("failed to lock item %s: %w", itemID, err)
			}
			return fn(tx)
		})
		if err == nil || !database.IsRetryable(err) {
			return err
		}
	}
	return err
}

func (r *GormBookingRepository) findMany(q *gorm.DB, what string) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := q.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find %s: %w", what, err)
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bk, err := toDomainBooking(&models[i])
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}

func approvedOverlapQuery(db *gorm.DB, itemID uuid.UUID, period bookingDomain.Period, excludeID uuid.UUID) *gorm.DB {
	q := db.Model(&BookingModel{}).
		Where("item_id = ? AND status = ?", itemID, string(bookingDomain.StatusApproved)).
		Where("start_date < ? AND end_date > ?", period.End, period.Start)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	return q
}

func ensureNoApprovedOverlap(tx *gorm.DB, itemID uuid.UUID, period bookingDomain.Period, excludeID uuid.UUID) error {
	var existing BookingModel
	err := approvedOverlapQuery(tx, itemID, period, excludeID).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Take(&existing).Error
	if err == nil {
		return bookingDomain.ErrPeriodUnavailable
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check booking overlap: %w", err)
	}
	return nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:        bk.ID(),
		BookerID:  bk.BookerID(),
		ItemID:    bk.ItemID(),
		StartDate: bk.Start(),
		EndDate:   bk.End(),
		Status:    string(bk.Status()),
		Version:   bk.Version(),
		CreatedAt: bk.CreatedAt(),
		UpdatedAt: bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		bookingDomain.Party{ID: m.BookerID, Name: m.Booker.Name, Email: m.Booker.Email},
		bookingDomain.ItemRef{ID: m.ItemID, Name: m.Item.Name, OwnerID: m.Item.OwnerID},
		bookingDomain.Period{Start: m.StartDate.UTC(), End: m.EndDate.UTC()},
		status,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}
