package ordercache

import (
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/angelmondragon/orderform-backend/internal/orders"
)

// lockStripes bounds the number of mutexes shared by all sessions.
const lockStripes = 64

// KeyFunc maps a session id onto its mirror key.
type KeyFunc func(sessionID string) string

// Registry hands out session caches over one mirror. It keeps no per-session
// state; sessions hashing to the same stripe share a mutex.
type Registry struct {
	mirror Mirror
	keyFor KeyFunc
	ttl    time.Duration
	locks  [lockStripes]sync.Mutex
}

// NewRegistry builds a registry whose caches persist to mirror with the given TTL.
func NewRegistry(mirror Mirror, keyFor KeyFunc, ttl time.Duration) *Registry {
	return &Registry{
		mirror: mirror,
		keyFor: keyFor,
		ttl:    ttl,
	}
}

// Session returns the cache of sessionID.
func (r *Registry) Session(sessionID string) orders.SessionCache {
	return r.session(sessionID)
}

func (r *Registry) session(sessionID string) *SessionCache {
	key := r.keyFor(sessionID)
	return &SessionCache{
		mu:     &r.locks[xxhash.Sum64String(key)%lockStripes],
		mirror: r.mirror,
		key:    key,
		ttl:    r.ttl,
	}
}
