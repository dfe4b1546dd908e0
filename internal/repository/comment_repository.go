package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	commentDomain "github.com/shareit/service-shareit/internal/domain/comment"
)

// CommentModel is the GORM model for the comments table.
type CommentModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	ItemID     uuid.UUID `gorm:"type:uuid;not null;index"`
	AuthorID   uuid.UUID `gorm:"type:uuid;not null"`
	AuthorName string    `gorm:"type:varchar(255);not null"`
	Text       string    `gorm:"type:text;not null"`
	CreatedAt  time.Time `gorm:"type:timestamptz;not null"`
}

func (CommentModel) TableName() string { return "comments" }

// GormCommentRepository implements CommentRepository using GORM.
type GormCommentRepository struct {
	db *gorm.DB
}

func NewGormCommentRepository(db *gorm.DB) *GormCommentRepository {
	return &GormCommentRepository{db: db}
}

func (r *GormCommentRepository) Save(ctx context.Context, c *commentDomain.Comment) error {
	model := &CommentModel{
		ID:         c.ID(),
		ItemID:     c.ItemID(),
		AuthorID:   c.AuthorID(),
		AuthorName: c.AuthorName(),
		Text:       c.Text(),
		CreatedAt:  c.CreatedAt(),
	}
	return r.db.WithContext(ctx).Create(model).Error
}

func (r *GormCommentRepository) FindByItemID(ctx context.Context, itemID uuid.UUID) ([]*commentDomain.Comment, error) {
	return r.FindByItemIDs(ctx, []uuid.UUID{itemID})
}

func (r *GormCommentRepository) FindByItemIDs(ctx context.Context, itemIDs []uuid.UUID) ([]*commentDomain.Comment, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	var models []CommentModel
	if err := r.db.WithContext(ctx).
		Where("item_id IN ?", itemIDs).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}

	comments := make([]*commentDomain.Comment, len(models))
	for i, m := range models {
		comments[i] = commentDomain.Reconstruct(m.ID, m.ItemID, m.AuthorID, m.AuthorName, m.Text, m.CreatedAt)
	}
	return comments, nil
}
