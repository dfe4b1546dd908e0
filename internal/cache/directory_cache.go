// Package cache provides a Redis read-through cache in front of the directory.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/shareit/service-shareit/internal/domain/directory"
)

const keyPrefix = "shareit:"

type cachedUser struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	UpdatedAt time.Time `json:"updated_at"`
}

type cachedItem struct {
	ID          uuid.UUID  `json:"id"`
	OwnerID     uuid.UUID  `json:"owner_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Available   bool       `json:"available"`
	RequestID   *uuid.UUID `json:"request_id,omitempty"`
	Version     int64      `json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// DirectoryCache decorates a Directory with cached user and item lookups.
// Writes go to the underlying directory first and then evict the key. Redis
// failures are logged and the underlying directory answers instead.
type DirectoryCache struct {
	directory.Directory
	client redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

// NewDirectoryCache wraps inner with a Redis cache whose entries live for ttl.
func NewDirectoryCache(inner directory.Directory, client redis.Cmdable, ttl time.Duration, logger *zap.Logger) *DirectoryCache {
	return &DirectoryCache{
		Directory: inner,
		client:    client,
		ttl:       ttl,
		logger:    logger,
	}
}

func userKey(id uuid.UUID) string { return keyPrefix + "user:" + id.String() }
func itemKey(id uuid.UUID) string { return keyPrefix + "item:" + id.String() }

func (c *DirectoryCache) FindUser(ctx context.Context, id uuid.UUID) (*directory.User, error) {
	var cu cachedUser
	if c.get(ctx, userKey(id), &cu) {
		return directory.ReconstructUser(cu.ID, cu.Name, cu.Email, cu.UpdatedAt), nil
	}

	u, err := c.Directory.FindUser(ctx, id)
	if err != nil {
		return nil, err
	}
	c.set(ctx, userKey(id), cachedUser{ID: u.ID(), Name: u.Name(), Email: u.Email(), UpdatedAt: u.UpdatedAt()})
	return u, nil
}

func (c *DirectoryCache) FindItem(ctx context.Context, id uuid.UUID) (*directory.Item, error) {
	var ci cachedItem
	if c.get(ctx, itemKey(id), &ci) {
		return directory.ReconstructItem(
			ci.ID, ci.OwnerID, ci.Name, ci.Description,
			ci.Available, ci.RequestID, ci.Version,
			ci.CreatedAt, ci.UpdatedAt,
		), nil
	}

	it, err := c.Directory.FindItem(ctx, id)
	if err != nil {
		return nil, err
	}
	c.set(ctx, itemKey(id), cachedItem{
		ID:          it.ID(),
		OwnerID:     it.OwnerID(),
		Name:        it.Name(),
		Description: it.Description(),
		Available:   it.Available(),
		RequestID:   it.RequestID(),
		Version:     it.Version(),
		CreatedAt:   it.CreatedAt(),
		UpdatedAt:   it.UpdatedAt(),
	})
	return it, nil
}

func (c *DirectoryCache) SaveUser(ctx context.Context, user *directory.User) error {
	if err := c.Directory.SaveUser(ctx, user); err != nil {
		return err
	}
	c.evict(ctx, userKey(user.ID()))
	return nil
}

func (c *DirectoryCache) SaveItem(ctx context.Context, item *directory.Item) error {
	if err := c.Directory.SaveItem(ctx, item); err != nil {
		return err
	}
	c.evict(ctx, itemKey(item.ID()))
	return nil
}

func (c *DirectoryCache) get(ctx context.Context, key string, v interface{}) bool {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("directory cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		c.logger.Warn("corrupt directory cache entry", zap.String("key", key), zap.Error(err))
		c.evict(ctx, key)
		return false
	}
	return true
}

func (c *DirectoryCache) set(ctx context.Context, key string, v interface{}) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("directory cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *DirectoryCache) evict(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Warn("directory cache eviction failed", zap.String("key", key), zap.Error(err))
	}
}
