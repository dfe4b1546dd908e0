package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	commentDomain "github.com/shareit/service-shareit/internal/domain/comment"
)

// CommentStore implements comment.CommentRepository in memory.
type CommentStore struct {
	mu       sync.RWMutex
	comments []*commentDomain.Comment
}

func NewCommentStore() *CommentStore {
	return &CommentStore{}
}

func (s *CommentStore) Save(_ context.Context, c *commentDomain.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments = append(s.comments, c)
	return nil
}

func (s *CommentStore) FindByItemID(ctx context.Context, itemID uuid.UUID) ([]*commentDomain.Comment, error) {
	return s.FindByItemIDs(ctx, []uuid.UUID{itemID})
}

func (s *CommentStore) FindByItemIDs(_ context.Context, itemIDs []uuid.UUID) ([]*commentDomain.Comment, error) {
	want := make(map[uuid.UUID]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		want[id] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*commentDomain.Comment, 0)
	for _, c := range s.comments {
		if _, ok := want[c.ItemID()]; ok {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt().Before(out[j].CreatedAt()) })
	return out, nil
}
