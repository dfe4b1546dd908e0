package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shareit/service-shareit/internal/domain/directory"
	"github.com/shareit/service-shareit/internal/platform/database"
	"github.com/shareit/service-shareit/internal/platform/domain"
)

// UserModel is the GORM model for the users table, a replica of the user directory.
type UserModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"type:varchar(255);not null"`
	Email     string    `gorm:"type:varchar(512);not null;uniqueIndex"`
	UpdatedAt time.Time `gorm:"type:timestamptz;not null"`
}

func (UserModel) TableName() string { return "users" }

// ItemModel is the GORM model for the items table.
type ItemModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OwnerID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	Name        string     `gorm:"type:varchar(255);not null"`
	Description string     `gorm:"type:varchar(255);not null"`
	Available   bool       `gorm:"not null;default:true"`
	RequestID   *uuid.UUID `gorm:"type:uuid"`
	Version     int64      `gorm:"not null;default:1"`
	CreatedAt   time.Time  `gorm:"type:timestamptz;not null"`
	UpdatedAt   time.Time  `gorm:"type:timestamptz;not null"`
}

func (ItemModel) TableName() string { return "items" }

// GormDirectory implements directory.Directory using GORM.
type GormDirectory struct {
	db *gorm.DB
}

func NewGormDirectory(db *gorm.DB) *GormDirectory {
	return &GormDirectory{db: db}
}

func (r *GormDirectory) FindUser(ctx context.Context, id uuid.UUID) (*directory.User, error) {
	var model UserModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("User", id.String())
		}
		return nil, err
	}
	return directory.ReconstructUser(model.ID, model.Name, model.Email, model.UpdatedAt), nil
}

func (r *GormDirectory) ListUsers(ctx context.Context) ([]*directory.User, error) {
	var models []UserModel
	if err := r.db.WithContext(ctx).Order("email ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	users := make([]*directory.User, len(models))
	for i, m := range models {
		users[i] = directory.ReconstructUser(m.ID, m.Name, m.Email, m.UpdatedAt)
	}
	return users, nil
}

func (r *GormDirectory) FindItem(ctx context.Context, id uuid.UUID) (*directory.Item, error) {
	var model ItemModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Item", id.String())
		}
		return nil, err
	}
	return toItemDomain(&model), nil
}

func (r *GormDirectory) FindItemsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*directory.Item, error) {
	var models []ItemModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	return toItemDomains(models), nil
}

func (r *GormDirectory) FindItemsByRequestIDs(ctx context.Context, requestIDs []uuid.UUID) ([]*directory.Item, error) {
	if len(requestIDs) == 0 {
		return []*directory.Item{}, nil
	}
	var models []ItemModel
	if err := r.db.WithContext(ctx).
		Where("request_id IN ?", requestIDs).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	return toItemDomains(models), nil
}

func (r *GormDirectory) SearchAvailableItems(ctx context.Context, text string) ([]*directory.Item, error) {
	pattern := "%" + escapeLike(text) + "%"
	var models []ItemModel
	if err := r.db.WithContext(ctx).
		Where("available = ?", true).
		Where("(name ILIKE ? OR description ILIKE ?)", pattern, pattern).
		Order("name ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	return toItemDomains(models), nil
}

// SaveUser upserts the replica row for a user.
func (r *GormDirectory) SaveUser(ctx context.Context, user *directory.User) error {
	model := &UserModel{
		ID:        user.ID(),
		Name:      user.Name(),
		Email:     user.Email(),
		UpdatedAt: user.UpdatedAt(),
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "email", "updated_at"}),
	}).Create(model).Error
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.NewConflictError("email " + user.Email() + " is already in use")
		}
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// SaveItem inserts a new item (version 1) or updates an existing one with
// optimistic locking.
func (r *GormDirectory) SaveItem(ctx context.Context, item *directory.Item) error {
	model := toItemModel(item)
	if item.Version() <= 1 {
		return r.db.WithContext(ctx).Create(model).Error
	}

	result := r.db.WithContext(ctx).
		Model(&ItemModel{}).
		Where("id = ? AND version = ?", model.ID, item.Version()-1).
		Updates(map[string]interface{}{
			"name":        model.Name,
			"description": model.Description,
			"available":   model.Available,
			"version":     model.Version,
			"updated_at":  model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("item was modified by another transaction")
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// --- Conversions ---

func toItemModel(i *directory.Item) *ItemModel {
	return &ItemModel{
		ID:          i.ID(),
		OwnerID:     i.OwnerID(),
		Name:        i.Name(),
		Description: i.Description(),
		Available:   i.Available(),
		RequestID:   i.RequestID(),
		Version:     i.Version(),
		CreatedAt:   i.CreatedAt(),
		UpdatedAt:   i.UpdatedAt(),
	}
}

func toItemDomain(m *ItemModel) *directory.Item {
	return directory.ReconstructItem(
		m.ID, m.OwnerID,
		m.Name, m.Description,
		m.Available, m.RequestID,
		m.Version,
		m.CreatedAt, m.UpdatedAt,
	)
}

func toItemDomains(models []ItemModel) []*directory.Item {
	items := make([]*directory.Item, len(models))
	for i := range models {
		items[i] = toItemDomain(&models[i])
	}
	return items
}
