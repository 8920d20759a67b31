package ordercache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/orderform-backend/internal/orders"
)

// Mirror is the durable key/value store holding each session's list.
type Mirror interface {
	Lookup(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// SessionCache is the last fetched order list of one session.
// The mirror is the only copy; every mutation is a read-modify-write under mu.
type SessionCache struct {
	mu     *sync.Mutex
	mirror Mirror
	key    string
	ttl    time.Duration
}

// NewSessionCache builds a cache persisted under key with the given TTL.
func NewSessionCache(mirror Mirror, key string, ttl time.Duration) *SessionCache {
	return &SessionCache{mu: &sync.Mutex{}, mirror: mirror, key: key, ttl: ttl}
}

// Replace swaps the whole list.
func (c *SessionCache) Replace(ctx context.Context, list []orders.Order) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if list == nil {
		list = []orders.Order{}
	}
	return c.persist(ctx, list)
}

// Prepend puts order at the head of the stored list. A missing list counts as empty.
func (c *SessionCache) Prepend(ctx context.Context, order orders.Order) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, _, err := c.read(ctx)
	if err != nil {
		return err
	}
	return c.persist(ctx, prepend(order, current))
}

// PrependIfCached prepends only when the session already holds a list.
// It reports whether the list was changed; an unpopulated session is left for the next fetch.
func (c *SessionCache) PrependIfCached(ctx context.Context, order orders.Order) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, ok, err := c.read(ctx)
	if err != nil || !ok {
		return false, err
	}
	if err := c.persist(ctx, prepend(order, current)); err != nil {
		return false, err
	}
	return true, nil
}

// Load returns the stored list. A missing key is an empty list.
func (c *SessionCache) Load(ctx context.Context) ([]orders.Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	list, _, err := c.read(ctx)
	return list, err
}

// Clear drops the stored list.
func (c *SessionCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.mirror.Del(ctx, c.key); err != nil {
		return fmt.Errorf("clear session orders: %w", err)
	}
	return nil
}

func (c *SessionCache) read(ctx context.Context) ([]orders.Order, bool, error) {
	raw, ok, err := c.mirror.Lookup(ctx, c.key)
	if err != nil {
		return nil, false, fmt.Errorf("load session orders: %w", err)
	}
	if !ok || raw == "" {
		return []orders.Order{}, false, nil
	}

	var list []orders.Order
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, false, fmt.Errorf("decode session orders: %w", err)
	}
	if list == nil {
		list = []orders.Order{}
	}
	return list, true, nil
}

func (c *SessionCache) persist(ctx context.Context, list []orders.Order) error {
	payload, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode session orders: %w", err)
	}
	if err := c.mirror.Set(ctx, c.key, string(payload), c.ttl); err != nil {
		return fmt.Errorf("store session orders: %w", err)
	}
	return nil
}

func prepend(order orders.Order, list []orders.Order) []orders.Order {
	next := make([]orders.Order, 0, len(list)+1)
	next = append(next, order)
	return append(next, list...)
}
