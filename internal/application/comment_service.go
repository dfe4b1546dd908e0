package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/shareit/service-shareit/internal/domain/booking"
	commentDomain "github.com/shareit/service-shareit/internal/domain/comment"
	"github.com/shareit/service-shareit/internal/domain/directory"
	"github.com/shareit/service-shareit/internal/platform/clock"
	"github.com/shareit/service-shareit/internal/platform/domain"
	"github.com/shareit/service-shareit/internal/platform/metrics"
)

// RentalChecker answers whether a user has rented an item. BookingService implements it.
type RentalChecker interface {
	RentalEligibility(ctx context.Context, bookerID, itemID uuid.UUID) (bookingDomain.Eligibility, error)
}

// CreateCommentRequest holds the text of a new comment.
type CreateCommentRequest struct {
	Text string `json:"text"`
}

// CommentDTO is the API response representation of a comment.
type CommentDTO struct {
	ID         uuid.UUID `json:"id"`
	ItemID     uuid.UUID `json:"item_id"`
	AuthorName string    `json:"author_name"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created"`
}

// CommentService handles item comment use cases.
type CommentService struct {
	repo      commentDomain.CommentRepository
	directory directory.Directory
	rentals   RentalChecker
	clock     clock.Clock
	logger    *zap.Logger
}

// NewCommentService creates a new CommentService.
func NewCommentService(
	repo commentDomain.CommentRepository,
	dir directory.Directory,
	rentals RentalChecker,
	clk clock.Clock,
	logger *zap.Logger,
) *CommentService {
	return &CommentService{
		repo:      repo,
		directory: dir,
		rentals:   rentals,
		clock:     clk,
		logger:    logger,
	}
}

// CreateComment stores a comment by a user who has completed a rental of the item.
func (s *CommentService) CreateComment(ctx context.Context, itemID, authorID uuid.UUID, req CreateCommentRequest) (*CommentDTO, error) {
	if _, err := s.directory.FindItem(ctx, itemID); err != nil {
		return nil, err
	}
	author, err := s.directory.FindUser(ctx, authorID)
	if err != nil {
		return nil, err
	}

	eligibility, err := s.rentals.RentalEligibility(ctx, authorID, itemID)
	if err != nil {
		return nil, err
	}
	switch eligibility {
	case bookingDomain.NeverRented:
		s.logger.Warn("comment by user who never rented the item",
			zap.String("item_id", itemID.String()),
			zap.String("user_id", authorID.String()),
		)
		return nil, domain.NewValidationError(fmt.Sprintf("user %s has never rented item %s", authorID, itemID))
	case bookingDomain.RentalNotCompleted:
		s.logger.Warn("comment before rental completed",
			zap.String("item_id", itemID.String()),
			zap.String("user_id", authorID.String()),
		)
		return nil, domain.NewValidationError(fmt.Sprintf("user %s has no completed rental of item %s", authorID, itemID))
	}

	c, err := commentDomain.NewComment(itemID, authorID, author.Name(), req.Text, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to save comment: %w", err)
	}

	metrics.IncCommentCreated()
	result := toCommentDTO(c)
	return &result, nil
}

func toCommentDTO(c *commentDomain.Comment) CommentDTO {
	return CommentDTO{
		ID:         c.ID(),
		ItemID:     c.ItemID(),
		AuthorName: c.AuthorName(),
		Text:       c.Text(),
		CreatedAt:  c.CreatedAt(),
	}
}
