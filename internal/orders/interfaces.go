package orders

import (
	"context"

	"github.com/shopspring/decimal"
)

// Repository persists orders and owns sln allocation.
// Every failure is a pkg/errors.Error: NOT_FOUND, CONFLICT, DEPENDENCY_ERROR (transient)
// or INTERNAL_ERROR (permanent).
type Repository interface {
	Create(ctx context.Context, draft Draft, discount decimal.Decimal, creatorID string) (CreateResult, error)
	FetchByReference(ctx context.Context, ref Reference) (*Order, error)
	GetBySLN(ctx context.Context, sln int64) (*Order, error)
	List(ctx context.Context) ([]Order, error)
	UpdateFull(ctx context.Context, order Order) error
	UpdateStatus(ctx context.Context, order Order) error
}

// SessionCache is the per-session copy of the last fetched order list.
type SessionCache interface {
	Replace(ctx context.Context, orders []Order) error
	Prepend(ctx context.Context, order Order) error
	PrependIfCached(ctx context.Context, order Order) (bool, error)
	Load(ctx context.Context) ([]Order, error)
	Clear(ctx context.Context) error
}

// SessionCaches hands out the cache of one session.
type SessionCaches interface {
	Session(sessionID string) SessionCache
}

// EventPublisher delivers encoded order events.
type EventPublisher interface {
	Publish(ctx context.Context, data []byte, attributes map[string]string) (string, error)
}
