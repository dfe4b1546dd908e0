package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	requestDomain "github.com/shareit/service-shareit/internal/domain/request"
	"github.com/shareit/service-shareit/internal/platform/domain"
)

// ItemRequestModel is the GORM model for the item_requests table.
type ItemRequestModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	RequesterID uuid.UUID `gorm:"type:uuid;not null;index"`
	Description string    `gorm:"type:varchar(255);not null"`
	CreatedAt   time.Time `gorm:"type:timestamptz;not null;index"`
}

func (ItemRequestModel) TableName() string { return "item_requests" }

// GormRequestRepository implements request.Repository using GORM.
type GormRequestRepository struct {
	db *gorm.DB
}

func NewGormRequestRepository(db *gorm.DB) *GormRequestRepository {
	return &GormRequestRepository{db: db}
}

func (r *GormRequestRepository) Save(ctx context.Context, req *requestDomain.ItemRequest) error {
	model := &ItemRequestModel{
		ID:          req.ID(),
		RequesterID: req.RequesterID(),
		Description: req.Description(),
		CreatedAt:   req.CreatedAt(),
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save item request: %w", err)
	}
	return nil
}

func (r *GormRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*requestDomain.ItemRequest, error) {
	var model ItemRequestModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("ItemRequest", id.String())
		}
		return nil, err
	}
	return toRequestDomain(&model), nil
}

func (r *GormRequestRepository) FindByRequester(ctx context.Context, requesterID uuid.UUID) ([]*requestDomain.ItemRequest, error) {
	return r.findNewest(r.db.WithContext(ctx).Where("requester_id = ?", requesterID))
}

func (r *GormRequestRepository) FindByOtherRequesters(ctx context.Context, requesterID uuid.UUID) ([]*requestDomain.ItemRequest, error) {
	return r.findNewest(r.db.WithContext(ctx).Where("requester_id <> ?", requesterID))
}

func (r *GormRequestRepository) findNewest(q *gorm.DB) ([]*requestDomain.ItemRequest, error) {
	var models []ItemRequestModel
	if err := q.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find item requests: %w", err)
	}
	out := make([]*requestDomain.ItemRequest, len(models))
	for i := range models {
		out[i] = toRequestDomain(&models[i])
	}
	return out, nil
}

func toRequestDomain(m *ItemRequestModel) *requestDomain.ItemRequest {
	return requestDomain.Reconstruct(m.ID, m.RequesterID, m.Description, m.CreatedAt)
}
