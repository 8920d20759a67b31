package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/orderform-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/orderform-backend/pkg/errors"
	"github.com/angelmondragon/orderform-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

// Service composes the order store with the per-session cache and event publishing.
type Service interface {
	CreateOrder(ctx context.Context, sessionID string, draft Draft, discount decimal.Decimal, creatorID string) (CreateResult, error)
	FetchOne(ctx context.Context, ref Reference) (*Order, error)
	GetOrderByKey(ctx context.Context, sln int64) (*Order, error)
	ListOrders(ctx context.Context, sessionID string, refresh bool) ([]Order, error)
	UpdateFull(ctx context.Context, sessionID, actorID string, order Order) error
	UpdateStatusOnly(ctx context.Context, sessionID, actorID string, order Order) error
	SessionOrders(ctx context.Context, sessionID string) ([]Order, error)
	ClearSession(ctx context.Context, sessionID string) error
}

type service struct {
	repo      Repository
	caches    SessionCaches
	publisher EventPublisher
	logg      *logger.Logger
	now       func() time.Time
}

// NewService builds an orders service with the required dependencies.
func NewService(repo Repository, caches SessionCaches, publisher EventPublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if caches == nil {
		return nil, fmt.Errorf("session cache registry required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("event publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:      repo,
		caches:    caches,
		publisher: publisher,
		logg:      logg,
		now:       time.Now,
	}, nil
}

func (s *service) CreateOrder(ctx context.Context, sessionID string, draft Draft, discount decimal.Decimal, creatorID string) (CreateResult, error) {
	if strings.TrimSpace(creatorID) == "" {
		return CreateResult{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "creator identity missing")
	}

	result, err := s.repo.Create(ctx, draft, discount, creatorID)
	if err != nil {
		return CreateResult{}, err
	}
	ctx = s.logg.WithOrderSLN(ctx, result.SLN)
	s.logg.Info(ctx, "order created")

	stored, err := s.repo.FetchByReference(ctx, result.Reference)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "re-reading created order failed; caching local copy")
		local := NewOrder(result.Reference, result.SLN, draft, discount, creatorID)
		stored = &local
	}
	// A session that never listed has nothing to extend; its next list reads the store.
	if sessionID != "" {
		if _, err := s.caches.Session(sessionID).PrependIfCached(ctx, *stored); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "session cache prepend failed")
		}
	}

	s.publish(ctx, OrderEvent{
		EventType: enums.OrderEventCreated,
		OrderID:   result.Reference.ID,
		SLN:       result.SLN,
		Status:    stored.Status,
		Actor:     creatorID,
	})
	return result, nil
}

func (s *service) FetchOne(ctx context.Context, ref Reference) (*Order, error) {
	return s.repo.FetchByReference(ctx, ref)
}

func (s *service) GetOrderByKey(ctx context.Context, sln int64) (*Order, error) {
	if sln <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sln must be positive")
	}
	return s.repo.GetBySLN(ctx, sln)
}

func (s *service) ListOrders(ctx context.Context, sessionID string, refresh bool) ([]Order, error) {
	var cache SessionCache
	if sessionID != "" {
		cache = s.caches.Session(sessionID)
	}

	if cache != nil && !refresh {
		cached, err := cache.Load(ctx)
		if err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "session cache load failed; fetching from store")
		} else if len(cached) > 0 {
			return cached, nil
		}
	}

	orders, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if cache != nil {
		if err := cache.Replace(ctx, orders); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "session cache replace failed")
		}
	}
	return orders, nil
}

func (s *service) UpdateFull(ctx context.Context, sessionID, actorID string, order Order) error {
	return s.update(ctx, sessionID, actorID, enums.OrderUpdateFull, order)
}

func (s *service) UpdateStatusOnly(ctx context.Context, sessionID, actorID string, order Order) error {
	return s.update(ctx, sessionID, actorID, enums.OrderUpdateStatus, order)
}

func (s *service) update(ctx context.Context, sessionID, actorID string, mode enums.OrderUpdateMode, order Order) error {
	if strings.TrimSpace(order.ID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	var err error
	if mode == enums.OrderUpdateStatus {
		err = s.repo.UpdateStatus(ctx, order)
	} else {
		err = s.repo.UpdateFull(ctx, order)
	}
	if err != nil {
		return err
	}

	// The cached list is stale now; the next list call refetches.
	if sessionID != "" {
		if err := s.caches.Session(sessionID).Clear(ctx); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "session cache clear failed")
		}
	}

	s.publish(ctx, OrderEvent{
		EventType: enums.OrderEventUpdated,
		OrderID:   order.ID,
		SLN:       order.SLN,
		Mode:      mode,
		Status:    order.Status,
		Actor:     actorID,
	})
	return nil
}

func (s *service) SessionOrders(ctx context.Context, sessionID string) ([]Order, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session required")
	}
	list, err := s.caches.Session(sessionID).Load(ctx)
	if err != nil {
		return nil, pkgerrors.Classify(err, "load session orders")
	}
	return list, nil
}

func (s *service) ClearSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "session required")
	}
	if err := s.caches.Session(sessionID).Clear(ctx); err != nil {
		return pkgerrors.Classify(err, "clear session orders")
	}
	return nil
}

// publish never fails the write that triggered it.
func (s *service) publish(ctx context.Context, event OrderEvent) {
	event.OccurredAt = s.now().UTC()
	data, attrs, err := event.encode()
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "encoding order event failed")
		return
	}
	if _, err := s.publisher.Publish(ctx, data, attrs); err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"event_type": event.EventType.String(),
			"error":      err.Error(),
		}), "publishing order event failed")
	}
}
