package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/shareit/service-shareit/internal/domain/directory"
	"github.com/shareit/service-shareit/internal/platform/domain"
)

// Directory implements directory.Directory in memory.
type Directory struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*directory.User
	items map[uuid.UUID]*directory.Item
}

func NewDirectory() *Directory {
	return &Directory{
		users: make(map[uuid.UUID]*directory.User),
		items: make(map[uuid.UUID]*directory.Item),
	}
}

func (d *Directory) FindUser(_ context.Context, id uuid.UUID) (*directory.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	u, ok := d.users[id]
	if !ok {
		return nil, domain.NewNotFoundError("User", id.String())
	}
	return cloneUser(u), nil
}

func (d *Directory) ListUsers(_ context.Context) ([]*directory.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]*directory.User, 0, len(d.users))
	for _, u := range d.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email() < out[j].Email() })
	return out, nil
}

func (d *Directory) FindItem(_ context.Context, id uuid.UUID) (*directory.Item, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	it, ok := d.items[id]
	if !ok {
		return nil, domain.NewNotFoundError("Item", id.String())
	}
	return cloneItem(it), nil
}

func (d *Directory) FindItemsByOwner(_ context.Context, ownerID uuid.UUID) ([]*directory.Item, error) {
	return d.selectItems(func(it *directory.Item) bool { return it.IsOwnedBy(ownerID) }, byCreated), nil
}

func (d *Directory) FindItemsByRequestIDs(_ context.Context, requestIDs []uuid.UUID) ([]*directory.Item, error) {
	wanted := make(map[uuid.UUID]bool, len(requestIDs))
	for _, id := range requestIDs {
		wanted[id] = true
	}
	return d.selectItems(func(it *directory.Item) bool {
		return it.RequestID() != nil && wanted[*it.RequestID()]
	}, byCreated), nil
}

func (d *Directory) SearchAvailableItems(_ context.Context, text string) ([]*directory.Item, error) {
	return d.selectItems(func(it *directory.Item) bool {
		return it.Available() && it.Matches(text)
	}, byName), nil
}

func (d *Directory) SaveUser(_ context.Context, user *directory.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for id, u := range d.users {
		if id != user.ID() && u.Email() == user.Email() {
			return domain.NewConflictError("email " + user.Email() + " is already in use")
		}
	}
	d.users[user.ID()] = cloneUser(user)
	return nil
}

func (d *Directory) SaveItem(_ context.Context, item *directory.Item) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	stored, exists := d.items[item.ID()]
	switch {
	case !exists && item.Version() > 1:
		return domain.NewNotFoundError("Item", item.ID().String())
	case exists && stored.Version() != item.Version()-1:
		return domain.NewConflictError("item was modified by another transaction")
	}
	d.items[item.ID()] = cloneItem(item)
	return nil
}

func (d *Directory) user(id uuid.UUID) (*directory.User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[id]
	return u, ok
}

func (d *Directory) item(id uuid.UUID) (*directory.Item, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	it, ok := d.items[id]
	return it, ok
}

type itemOrder func(a, b *directory.Item) bool

func byCreated(a, b *directory.Item) bool { return a.CreatedAt().Before(b.CreatedAt()) }
func byName(a, b *directory.Item) bool    { return a.Name() < b.Name() }

func (d *Directory) selectItems(match func(*directory.Item) bool, less itemOrder) []*directory.Item {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]*directory.Item, 0)
	for _, it := range d.items {
		if match(it) {
			out = append(out, cloneItem(it))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func cloneUser(u *directory.User) *directory.User {
	return directory.ReconstructUser(u.ID(), u.Name(), u.Email(), u.UpdatedAt())
}

func cloneItem(it *directory.Item) *directory.Item {
	return directory.ReconstructItem(
		it.ID(), it.OwnerID(), it.Name(), it.Description(),
		it.Available(), it.RequestID(), it.Version(),
		it.CreatedAt(), it.UpdatedAt(),
	)
}
