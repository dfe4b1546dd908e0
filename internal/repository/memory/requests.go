package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	requestDomain "github.com/shareit/service-shareit/internal/domain/request"
	"github.com/shareit/service-shareit/internal/platform/domain"
)

// RequestStore implements request.Repository in memory.
type RequestStore struct {
	mu       sync.RWMutex
	requests map[uuid.UUID]*requestDomain.ItemRequest
}

func NewRequestStore() *RequestStore {
	return &RequestStore{requests: make(map[uuid.UUID]*requestDomain.ItemRequest)}
}

func (s *RequestStore) Save(_ context.Context, r *requestDomain.ItemRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.requests[r.ID()]; exists {
		return domain.NewConflictError("item request already exists")
	}
	s.requests[r.ID()] = r
	return nil
}

func (s *RequestStore) FindByID(_ context.Context, id uuid.UUID) (*requestDomain.ItemRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.requests[id]
	if !ok {
		return nil, domain.NewNotFoundError("ItemRequest", id.String())
	}
	return r, nil
}

func (s *RequestStore) FindByRequester(_ context.Context, requesterID uuid.UUID) ([]*requestDomain.ItemRequest, error) {
	return s.selectNewest(func(r *requestDomain.ItemRequest) bool { return r.RequesterID() == requesterID }), nil
}

func (s *RequestStore) FindByOtherRequesters(_ context.Context, requesterID uuid.UUID) ([]*requestDomain.ItemRequest, error) {
	return s.selectNewest(func(r *requestDomain.ItemRequest) bool { return r.RequesterID() != requesterID }), nil
}

func (s *RequestStore) selectNewest(match func(*requestDomain.ItemRequest) bool) []*requestDomain.ItemRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*requestDomain.ItemRequest, 0)
	for _, r := range s.requests {
		if match(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().After(out[j].CreatedAt()) })
	return out
}
