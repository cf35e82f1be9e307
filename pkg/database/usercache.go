package database

import (
	"context"
	"sync"
	"time"

	"github.com/THEREALVANHEL/coalbot/internal/clock"
	"github.com/THEREALVANHEL/coalbot/pkg/models"
)

// UserCache is a TTL cache over user documents. Entries are invalidated
// on every successful write from this process, so a reader never sees
// its own write go stale.
type UserCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	clock   clock.Clock
	entries map[int64]*userCacheEntry
}

type userCacheEntry struct {
	user     *models.User
	storedAt time.Time
}

// NewUserCache creates a cache with the given TTL.
func NewUserCache(ttl time.Duration, clk clock.Clock) *UserCache {
	if clk == nil {
		clk = clock.System{}
	}
	return &UserCache{
		ttl:     ttl,
		clock:   clk,
		entries: make(map[int64]*userCacheEntry),
	}
}

// Get returns a copy of the cached user, or nil on miss/expiry.
func (c *UserCache) Get(userID int64) *models.User {
	c.mu.RLock()
	entry, ok := c.entries[userID]
	c.mu.RUnlock()

	if !ok {
		return nil
	}
	if c.clock.Now().Sub(entry.storedAt) > c.ttl {
		c.Invalidate(userID)
		return nil
	}
	return entry.user.Clone()
}

// Put stores a copy of the user.
func (c *UserCache) Put(u *models.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[u.UserID] = &userCacheEntry{user: u.Clone(), storedAt: c.clock.Now()}
}

// Invalidate drops the entry for a user.
func (c *UserCache) Invalidate(userID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
}

// Sweep removes entries older than the TTL and reports how many were
// dropped. The cache-sweep task calls this periodically.
func (c *UserCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	removed := 0
	for id, entry := range c.entries {
		if now.Sub(entry.storedAt) > c.ttl {
			delete(c.entries, id)
			removed++
		}
	}
	return removed
}

// Size returns the number of cached entries.
func (c *UserCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// CachedStore layers the UserCache over a Store. Only the user getter
// is cached; everything else passes through.
type CachedStore struct {
	Store
	cache *UserCache
}

// NewCachedStore wraps a store with the user cache.
func NewCachedStore(store Store, cache *UserCache) *CachedStore {
	return &CachedStore{Store: store, cache: cache}
}

// GetUser serves from cache when fresh.
func (s *CachedStore) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	if u := s.cache.Get(userID); u != nil {
		return u, nil
	}
	u, err := s.Store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.cache.Put(u)
	return u, nil
}

// SaveUser writes through and invalidates the cached entry.
func (s *CachedStore) SaveUser(ctx context.Context, u *models.User) error {
	if err := s.Store.SaveUser(ctx, u); err != nil {
		// A conflicting write means the cached entry is stale too.
		s.cache.Invalidate(u.UserID)
		return err
	}
	s.cache.Put(u)
	return nil
}

// Cache exposes the underlying cache for the sweep task.
func (s *CachedStore) Cache() *UserCache {
	return s.cache
}
