package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shareit/service-shareit/internal/domain/directory"
	requestDomain "github.com/shareit/service-shareit/internal/domain/request"
	"github.com/shareit/service-shareit/internal/platform/clock"
)

// CreateItemRequestRequest is the request DTO for asking for an item.
type CreateItemRequestRequest struct {
	Description string `json:"description"`
}

// RequestAnswerDTO is an item listed in answer to a request.
type RequestAnswerDTO struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	OwnerID uuid.UUID `json:"owner_id"`
}

// ItemRequestDTO is the API response representation of an item request.
type ItemRequestDTO struct {
	ID          uuid.UUID          `json:"id"`
	Description string             `json:"description"`
	RequesterID uuid.UUID          `json:"requester_id"`
	Created     time.Time          `json:"created"`
	Items       []RequestAnswerDTO `json:"items"`
}

// ItemRequestService implements the item request use cases.
type ItemRequestService struct {
	requests  requestDomain.Repository
	directory directory.Directory
	clock     clock.Clock
	logger    *zap.Logger
}

// NewItemRequestService creates a new ItemRequestService.
func NewItemRequestService(
	requests requestDomain.Repository,
	dir directory.Directory,
	clk clock.Clock,
	logger *zap.Logger,
) *ItemRequestService {
	return &ItemRequestService{
		requests:  requests,
		directory: dir,
		clock:     clk,
		logger:    logger,
	}
}

// CreateItemRequest records that requesterID is looking for an item.
func (s *ItemRequestService) CreateItemRequest(ctx context.Context, requesterID uuid.UUID, req CreateItemRequestRequest) (*ItemRequestDTO, error) {
	if _, err := s.directory.FindUser(ctx, requesterID); err != nil {
		return nil, err
	}

	r, err := requestDomain.NewItemRequest(requesterID, req.Description, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.requests.Save(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to save item request: %w", err)
	}

	s.logger.Info("item request created",
		zap.String("request_id", r.ID().String()),
		zap.String("requester_id", requesterID.String()),
	)
	dtos, err := s.withAnswers(ctx, []*requestDomain.ItemRequest{r})
	if err != nil {
		return nil, err
	}
	return &dtos[0], nil
}

// GetItemRequestsByRequester returns the caller's own requests, newest first.
func (s *ItemRequestService) GetItemRequestsByRequester(ctx context.Context, requesterID uuid.UUID) ([]ItemRequestDTO, error) {
	if _, err := s.directory.FindUser(ctx, requesterID); err != nil {
		return nil, err
	}
	rs, err := s.requests.FindByRequester(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	return s.withAnswers(ctx, rs)
}

// GetOtherUserRequests returns every request not made by userID, newest first.
func (s *ItemRequestService) GetOtherUserRequests(ctx context.Context, userID uuid.UUID) ([]ItemRequestDTO, error) {
	if _, err := s.directory.FindUser(ctx, userID); err != nil {
		return nil, err
	}
	rs, err := s.requests.FindByOtherRequesters(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.withAnswers(ctx, rs)
}

// GetItemRequestByID returns one request. Any known user may read it.
func (s *ItemRequestService) GetItemRequestByID(ctx context.Context, userID, requestID uuid.UUID) (*ItemRequestDTO, error) {
	if _, err := s.directory.FindUser(ctx, userID); err != nil {
		return nil, err
	}
	r, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	dtos, err := s.withAnswers(ctx, []*requestDomain.ItemRequest{r})
	if err != nil {
		return nil, err
	}
	return &dtos[0], nil
}

// withAnswers loads the answering items for all requests in one query.
func (s *ItemRequestService) withAnswers(ctx context.Context, rs []*requestDomain.ItemRequest) ([]ItemRequestDTO, error) {
	ids := make([]uuid.UUID, len(rs))
	for i, r := range rs {
		ids[i] = r.ID()
	}
	items, err := s.directory.FindItemsByRequestIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load request answers: %w", err)
	}

	answers := make(map[uuid.UUID][]RequestAnswerDTO, len(rs))
	for _, it := range items {
		rid := *it.RequestID()
		answers[rid] = append(answers[rid], RequestAnswerDTO{
			ID:      it.ID(),
			Name:    it.Name(),
			OwnerID: it.OwnerID(),
		})
	}

	dtos := make([]ItemRequestDTO, len(rs))
	for i, r := range rs {
		list := answers[r.ID()]
		if list == nil {
			list = []RequestAnswerDTO{}
		}
		dtos[i] = ItemRequestDTO{
			ID:          r.ID(),
			Description: r.Description(),
			RequesterID: r.RequesterID(),
			Created:     r.CreatedAt(),
			Items:       list,
		}
	}
	return dtos, nil
}
