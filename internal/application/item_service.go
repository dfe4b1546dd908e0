package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/shareit/service-shareit/internal/domain/booking"
	commentDomain "github.com/shareit/service-shareit/internal/domain/comment"
	"github.com/shareit/service-shareit/internal/domain/directory"
	requestDomain "github.com/shareit/service-shareit/internal/domain/request"
	"github.com/shareit/service-shareit/internal/platform/clock"
	"github.com/shareit/service-shareit/internal/platform/domain"
)

// CreateItemRequest is the request DTO for listing an item.
type CreateItemRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Available   *bool      `json:"available"`
	RequestID   *uuid.UUID `json:"request_id"`
}

// UpdateItemRequest is the request DTO for a partial item update.
type UpdateItemRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

// ItemDTO is the API response representation of an item.
type ItemDTO struct {
	ID          uuid.UUID  `json:"id"`
	OwnerID     uuid.UUID  `json:"owner_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Available   bool       `json:"available"`
	RequestID   *uuid.UUID `json:"request_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ItemActivityDTO is an item with its comments and its last and next approved bookings.
type ItemActivityDTO struct {
	ItemDTO
	Comments    []CommentDTO `json:"comments"`
	LastBooking *BookingDTO  `json:"last_booking"`
	NextBooking *BookingDTO  `json:"next_booking"`
}

// ItemService implements item listing use cases and the item activity view.
type ItemService struct {
	directory directory.Directory
	bookings  bookingDomain.BookingRepository
	comments  commentDomain.CommentRepository
	requests  requestDomain.Repository
	clock     clock.Clock
	logger    *zap.Logger
}

// NewItemService creates a new ItemService.
func NewItemService(
	dir directory.Directory,
	bookings bookingDomain.BookingRepository,
	comments commentDomain.CommentRepository,
	requests requestDomain.Repository,
	clk clock.Clock,
	logger *zap.Logger,
) *ItemService {
	return &ItemService{
		directory: dir,
		bookings:  bookings,
		comments:  comments,
		requests:  requests,
		clock:     clk,
		logger:    logger,
	}
}

// CreateItem lists a new item for ownerID.
func (s *ItemService) CreateItem(ctx context.Context, ownerID uuid.UUID, req CreateItemRequest) (*ItemDTO, error) {
	if _, err := s.directory.FindUser(ctx, ownerID); err != nil {
		return nil, err
	}
	if req.Available == nil {
		return nil, domain.NewValidationError("item availability is required")
	}
	if req.RequestID != nil {
		if _, err := s.requests.FindByID(ctx, *req.RequestID); err != nil {
			return nil, err
		}
	}

	item, err := directory.NewItem(ownerID, req.Name, req.Description, *req.Available, req.RequestID)
	if err != nil {
		return nil, err
	}
	if err := s.directory.SaveItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to save item: %w", err)
	}

	s.logger.Info("item created",
		zap.String("item_id", item.ID().String()),
		zap.String("owner_id", ownerID.String()),
	)
	result := toItemDTO(item)
	return &result, nil
}

// UpdateItem applies a partial update. Only the owner may change an item.
func (s *ItemService) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, req UpdateItemRequest) (*ItemDTO, error) {
	if _, err := s.directory.FindUser(ctx, userID); err != nil {
		return nil, err
	}
	item, err := s.directory.FindItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !item.IsOwnedBy(userID) {
		s.logger.Warn("item update by non-owner",
			zap.String("item_id", itemID.String()),
			zap.String("user_id", userID.String()),
		)
		return nil, domain.NewValidationError("only the owner can update item " + itemID.String())
	}

	if err := item.Update(directory.ItemPatch{
		Name:        req.Name,
		Description: req.Description,
		Available:   req.Available,
	}); err != nil {
		return nil, err
	}
	if err := s.directory.SaveItem(ctx, item); err != nil {
		return nil, err
	}

	result := toItemDTO(item)
	return &result, nil
}

// GetItemWithActivity returns one item with its comments and booking activity.
func (s *ItemService) GetItemWithActivity(ctx context.Context, itemID uuid.UUID) (*ItemActivityDTO, error) {
	item, err := s.directory.FindItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	bookings, err := s.bookings.FindByItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load item bookings: %w", err)
	}
	comments, err := s.comments.FindByItemID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load item comments: %w", err)
	}

	result := toItemActivityDTO(item, bookings, comments, s.clock.Now())
	return &result, nil
}

// GetOwnerItemsWithActivity returns every item of ownerID with its activity.
// Bookings and comments are loaded in one batch each and grouped per item.
func (s *ItemService) GetOwnerItemsWithActivity(ctx context.Context, ownerID uuid.UUID) ([]ItemActivityDTO, error) {
	items, err := s.directory.FindItemsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load owner items: %w", err)
	}
	if len(items) == 0 {
		return []ItemActivityDTO{}, nil
	}

	bookings, err := s.bookings.FindByItemOwner(ctx, ownerID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load owner bookings: %w", err)
	}

	itemIDs := make([]uuid.UUID, len(items))
	for i, it := range items {
		itemIDs[i] = it.ID()
	}
	comments, err := s.comments.FindByItemIDs(ctx, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load owner comments: %w", err)
	}

	bookingsByItem := bookingDomain.GroupByItem(bookings)
	commentsByItem := make(map[uuid.UUID][]*commentDomain.Comment)
	for _, c := range comments {
		commentsByItem[c.ItemID()] = append(commentsByItem[c.ItemID()], c)
	}

	now := s.clock.Now()
	result := make([]ItemActivityDTO, len(items))
	for i, it := range items {
		result[i] = toItemActivityDTO(it, bookingsByItem[it.ID()], commentsByItem[it.ID()], now)
	}
	return result, nil
}

// SearchItems returns available items matching text. Blank text matches nothing.
func (s *ItemService) SearchItems(ctx context.Context, text string) ([]ItemDTO, error) {
	if strings.TrimSpace(text) == "" {
		return []ItemDTO{}, nil
	}
	items, err := s.directory.SearchAvailableItems(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to search items: %w", err)
	}

	dtos := make([]ItemDTO, len(items))
	for i, it := range items {
		dtos[i] = toItemDTO(it)
	}
	return dtos, nil
}

// --- Helpers ---

func toItemDTO(it *directory.Item) ItemDTO {
	return ItemDTO{
		ID:          it.ID(),
		OwnerID:     it.OwnerID(),
		Name:        it.Name(),
		Description: it.Description(),
		Available:   it.Available(),
		RequestID:   it.RequestID(),
		CreatedAt:   it.CreatedAt(),
		UpdatedAt:   it.UpdatedAt(),
	}
}

func toItemActivityDTO(it *directory.Item, bookings []*bookingDomain.Booking, comments []*commentDomain.Comment, now time.Time) ItemActivityDTO {
	act := bookingDomain.DeriveActivity(it.ID(), bookings, now)

	dto := ItemActivityDTO{
		ItemDTO:  toItemDTO(it),
		Comments: make([]CommentDTO, len(comments)),
	}
	for i, c := range comments {
		dto.Comments[i] = toCommentDTO(c)
	}
	if act.Last != nil {
		last := toBookingDTO(act.Last)
		dto.LastBooking = &last
	}
	if act.Next != nil {
		next := toBookingDTO(act.Next)
		dto.NextBooking = &next
	}
	return dto
}
