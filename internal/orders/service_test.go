package orders

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/angelmondragon/orderform-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/orderform-backend/pkg/errors"
	"github.com/angelmondragon/orderform-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	create       func(ctx context.Context, draft Draft, discount decimal.Decimal, creatorID string) (CreateResult, error)
	fetch        func(ctx context.Context, ref Reference) (*Order, error)
	getBySLN     func(ctx context.Context, sln int64) (*Order, error)
	list         func(ctx context.Context) ([]Order, error)
	updateFull   func(ctx context.Context, order Order) error
	updateStatus func(ctx context.Context, order Order) error
	listCalls    int
}

func (s *stubRepo) Create(ctx context.Context, draft Draft, discount decimal.Decimal, creatorID string) (CreateResult, error) {
	if s.create != nil {
		return s.create(ctx, draft, discount, creatorID)
	}
	return CreateResult{Reference: Reference{ID: "doc-1"}, SLN: 1}, nil
}

func (s *stubRepo) FetchByReference(ctx context.Context, ref Reference) (*Order, error) {
	if s.fetch != nil {
		return s.fetch(ctx, ref)
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

func (s *stubRepo) GetBySLN(ctx context.Context, sln int64) (*Order, error) {
	if s.getBySLN != nil {
		return s.getBySLN(ctx, sln)
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

func (s *stubRepo) List(ctx context.Context) ([]Order, error) {
	s.listCalls++
	if s.list != nil {
		return s.list(ctx)
	}
	return nil, nil
}

func (s *stubRepo) UpdateFull(ctx context.Context, order Order) error {
	if s.updateFull != nil {
		return s.updateFull(ctx, order)
	}
	return nil
}

func (s *stubRepo) UpdateStatus(ctx context.Context, order Order) error {
	if s.updateStatus != nil {
		return s.updateStatus(ctx, order)
	}
	return nil
}

type stubCache struct {
	orders  []Order
	loadErr error
	cleared int
}

// A nil orders slice stands for a session that holds no list yet.
func (c *stubCache) Replace(ctx context.Context, orders []Order) error {
	c.orders = append([]Order{}, orders...)
	return nil
}

func (c *stubCache) Prepend(ctx context.Context, order Order) error {
	c.orders = append([]Order{order}, c.orders...)
	return nil
}

func (c *stubCache) PrependIfCached(ctx context.Context, order Order) (bool, error) {
	if c.orders == nil {
		return false, nil
	}
	return true, c.Prepend(ctx, order)
}

func (c *stubCache) Load(ctx context.Context) ([]Order, error) {
	if c.loadErr != nil {
		return nil, c.loadErr
	}
	return c.orders, nil
}

func (c *stubCache) Clear(ctx context.Context) error {
	c.cleared++
	c.orders = nil
	return nil
}

type stubCaches struct {
	sessions map[string]*stubCache
}

func newStubCaches() *stubCaches {
	return &stubCaches{sessions: map[string]*stubCache{}}
}

func (s *stubCaches) Session(sessionID string) SessionCache {
	cache, ok := s.sessions[sessionID]
	if !ok {
		cache = &stubCache{}
		s.sessions[sessionID] = cache
	}
	return cache
}

type publishedMessage struct {
	data  []byte
	attrs map[string]string
}

type stubPublisher struct {
	messages []publishedMessage
	err      error
}

func (p *stubPublisher) Publish(ctx context.Context, data []byte, attrs map[string]string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.messages = append(p.messages, publishedMessage{data: data, attrs: attrs})
	return "msg-1", nil
}

func newTestService(t *testing.T, repo Repository, caches SessionCaches, pub EventPublisher) Service {
	t.Helper()
	svc, err := NewService(repo, caches, pub, logger.New(logger.Options{ServiceName: "orders-test"}))
	require.NoError(t, err)
	return svc
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "orders-test"})
	_, err := NewService(nil, newStubCaches(), &stubPublisher{}, logg)
	require.Error(t, err)
	_, err = NewService(&stubRepo{}, nil, &stubPublisher{}, logg)
	require.Error(t, err)
	_, err = NewService(&stubRepo{}, newStubCaches(), nil, logg)
	require.Error(t, err)
	_, err = NewService(&stubRepo{}, newStubCaches(), &stubPublisher{}, nil)
	require.Error(t, err)
}

func TestCreateOrderPrependsAndPublishes(t *testing.T) {
	caches := newStubCaches()
	caches.Session("s1").(*stubCache).orders = []Order{{ID: "old", SLN: 1}}
	pub := &stubPublisher{}
	repo := &stubRepo{
		create: func(ctx context.Context, draft Draft, discount decimal.Decimal, creatorID string) (CreateResult, error) {
			assert.Equal(t, "sales@example.com", creatorID)
			assert.True(t, discount.Equal(decimal.RequireFromString("3")))
			return CreateResult{Reference: Reference{ID: "doc-2"}, SLN: 2}, nil
		},
		fetch: func(ctx context.Context, ref Reference) (*Order, error) {
			return &Order{ID: ref.ID, SLN: 2, CustomerName: "Acme", Status: "pending"}, nil
		},
	}
	svc := newTestService(t, repo, caches, pub)

	res, err := svc.CreateOrder(context.Background(), "s1", Draft{CustomerName: "Acme"}, decimal.RequireFromString("3"), "sales@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.SLN)

	cached := caches.sessions["s1"].orders
	require.Len(t, cached, 2)
	assert.Equal(t, "doc-2", cached[0].ID)
	assert.Equal(t, "old", cached[1].ID)

	require.Len(t, pub.messages, 1)
	assert.Equal(t, enums.OrderEventCreated.String(), pub.messages[0].attrs["event_type"])
	var event OrderEvent
	require.NoError(t, json.Unmarshal(pub.messages[0].data, &event))
	assert.Equal(t, "doc-2", event.OrderID)
	assert.Equal(t, int64(2), event.SLN)
	assert.Equal(t, "sales@example.com", event.Actor)
}

func TestCreateOrderFallsBackToLocalCopy(t *testing.T) {
	caches := newStubCaches()
	caches.Session("s1").(*stubCache).orders = []Order{}
	repo := &stubRepo{
		create: func(ctx context.Context, draft Draft, discount decimal.Decimal, creatorID string) (CreateResult, error) {
			return CreateResult{Reference: Reference{ID: "doc-9"}, SLN: 9}, nil
		},
		fetch: func(ctx context.Context, ref Reference) (*Order, error) {
			return nil, pkgerrors.New(pkgerrors.CodeDependency, "unavailable")
		},
	}
	svc := newTestService(t, repo, caches, &stubPublisher{})

	_, err := svc.CreateOrder(context.Background(), "s1", Draft{CustomerName: "Local"}, decimal.Zero, "sales@example.com")
	require.NoError(t, err)
	cached := caches.sessions["s1"].orders
	require.Len(t, cached, 1)
	assert.Equal(t, "doc-9", cached[0].ID)
	assert.Equal(t, int64(9), cached[0].SLN)
	assert.Equal(t, "Local", cached[0].CustomerName)
}

func TestCreateOrderLeavesUnlistedSessionEmpty(t *testing.T) {
	caches := newStubCaches()
	repo := &stubRepo{
		create: func(ctx context.Context, draft Draft, discount decimal.Decimal, creatorID string) (CreateResult, error) {
			return CreateResult{Reference: Reference{ID: "doc-3"}, SLN: 3}, nil
		},
		fetch: func(ctx context.Context, ref Reference) (*Order, error) {
			return &Order{ID: ref.ID, SLN: 3}, nil
		},
		list: func(ctx context.Context) ([]Order, error) {
			return []Order{{ID: "doc-3", SLN: 3}, {ID: "doc-2", SLN: 2}, {ID: "doc-1", SLN: 1}}, nil
		},
	}
	svc := newTestService(t, repo, caches, &stubPublisher{})
	ctx := context.Background()

	_, err := svc.CreateOrder(ctx, "s1", Draft{}, decimal.Zero, "sales@example.com")
	require.NoError(t, err)
	assert.Nil(t, caches.sessions["s1"].orders)

	got, err := svc.ListOrders(ctx, "s1", false)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, 1, repo.listCalls)
}

func TestCreateOrderRequiresCreator(t *testing.T) {
	svc := newTestService(t, &stubRepo{}, newStubCaches(), &stubPublisher{})
	_, err := svc.CreateOrder(context.Background(), "s1", Draft{}, decimal.Zero, " ")
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.CodeOf(err))
}

func TestCreateOrderPropagatesStoreFailure(t *testing.T) {
	pub := &stubPublisher{}
	repo := &stubRepo{
		create: func(ctx context.Context, draft Draft, discount decimal.Decimal, creatorID string) (CreateResult, error) {
			return CreateResult{}, pkgerrors.New(pkgerrors.CodeDependency, "store unavailable")
		},
	}
	svc := newTestService(t, repo, newStubCaches(), pub)

	_, err := svc.CreateOrder(context.Background(), "s1", Draft{}, decimal.Zero, "sales@example.com")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsRetryable(err))
	assert.Empty(t, pub.messages)
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	pub := &stubPublisher{err: errors.New("pubsub down")}
	svc := newTestService(t, &stubRepo{}, newStubCaches(), pub)

	require.NoError(t, svc.UpdateStatusOnly(context.Background(), "s1", "rep@example.com", Order{ID: "doc-1", Status: "done"}))
}

func TestListOrdersServesSessionCache(t *testing.T) {
	caches := newStubCaches()
	caches.Session("s1").(*stubCache).orders = []Order{{ID: "cached", SLN: 5}}
	repo := &stubRepo{
		list: func(ctx context.Context) ([]Order, error) {
			return []Order{{ID: "fresh-2", SLN: 2}, {ID: "fresh-1", SLN: 1}}, nil
		},
	}
	svc := newTestService(t, repo, caches, &stubPublisher{})
	ctx := context.Background()

	got, err := svc.ListOrders(ctx, "s1", false)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "cached", got[0].ID)
	assert.Equal(t, 0, repo.listCalls)

	got, err = svc.ListOrders(ctx, "s1", true)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, repo.listCalls)
	assert.Equal(t, "fresh-2", caches.sessions["s1"].orders[0].ID)
}

func TestListOrdersFetchesWhenCacheEmptyOrBroken(t *testing.T) {
	caches := newStubCaches()
	repo := &stubRepo{
		list: func(ctx context.Context) ([]Order, error) {
			return []Order{{ID: "a", SLN: 1}}, nil
		},
	}
	svc := newTestService(t, repo, caches, &stubPublisher{})
	ctx := context.Background()

	got, err := svc.ListOrders(ctx, "s1", false)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, repo.listCalls)

	caches.sessions["s1"].loadErr = errors.New("redis down")
	_, err = svc.ListOrders(ctx, "s1", false)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listCalls)
}

func TestListOrdersPropagatesStoreError(t *testing.T) {
	repo := &stubRepo{
		list: func(ctx context.Context) ([]Order, error) {
			return nil, pkgerrors.New(pkgerrors.CodeInternal, "bad query")
		},
	}
	svc := newTestService(t, repo, newStubCaches(), &stubPublisher{})

	_, err := svc.ListOrders(context.Background(), "", false)
	require.Error(t, err)
	assert.False(t, pkgerrors.IsRetryable(err))
}

func TestUpdatesClearSessionAndPublish(t *testing.T) {
	caches := newStubCaches()
	caches.Session("s1").(*stubCache).orders = []Order{{ID: "doc-1"}}
	pub := &stubPublisher{}
	var fullCalled, statusCalled bool
	repo := &stubRepo{
		updateFull: func(ctx context.Context, order Order) error {
			fullCalled = true
			return nil
		},
		updateStatus: func(ctx context.Context, order Order) error {
			statusCalled = true
			assert.Equal(t, "delivered", order.Status)
			return nil
		},
	}
	svc := newTestService(t, repo, caches, pub)
	ctx := context.Background()

	require.NoError(t, svc.UpdateFull(ctx, "s1", "rep@example.com", Order{ID: "doc-1", CustomerName: "x", CreatedBy: "owner@example.com"}))
	assert.True(t, fullCalled)
	assert.Equal(t, 1, caches.sessions["s1"].cleared)

	require.NoError(t, svc.UpdateStatusOnly(ctx, "s1", "lead@example.com", Order{ID: "doc-1", Status: "delivered"}))
	assert.True(t, statusCalled)
	assert.Equal(t, 2, caches.sessions["s1"].cleared)

	require.Len(t, pub.messages, 2)
	var event OrderEvent
	require.NoError(t, json.Unmarshal(pub.messages[1].data, &event))
	assert.Equal(t, enums.OrderEventUpdated, event.EventType)
	assert.Equal(t, enums.OrderUpdateStatus, event.Mode)
	assert.Equal(t, "lead@example.com", event.Actor)

	require.NoError(t, json.Unmarshal(pub.messages[0].data, &event))
	assert.Equal(t, "rep@example.com", event.Actor)
}

func TestUpdateFailureKeepsCache(t *testing.T) {
	caches := newStubCaches()
	caches.Session("s1").(*stubCache).orders = []Order{{ID: "doc-1"}}
	pub := &stubPublisher{}
	repo := &stubRepo{
		updateStatus: func(ctx context.Context, order Order) error {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		},
	}
	svc := newTestService(t, repo, caches, pub)

	err := svc.UpdateStatusOnly(context.Background(), "s1", "rep@example.com", Order{ID: "doc-1"})
	assert.True(t, pkgerrors.IsNotFound(err))
	assert.Equal(t, 0, caches.sessions["s1"].cleared)
	assert.Empty(t, pub.messages)

	err = svc.UpdateFull(context.Background(), "s1", "rep@example.com", Order{})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestGetOrderByKey(t *testing.T) {
	repo := &stubRepo{
		getBySLN: func(ctx context.Context, sln int64) (*Order, error) {
			return &Order{ID: "doc-4", SLN: sln}, nil
		},
	}
	svc := newTestService(t, repo, newStubCaches(), &stubPublisher{})

	order, err := svc.GetOrderByKey(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, "doc-4", order.ID)

	_, err = svc.GetOrderByKey(context.Background(), 0)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestSessionOrdersAndClear(t *testing.T) {
	caches := newStubCaches()
	caches.Session("s1").(*stubCache).orders = []Order{{ID: "a"}}
	svc := newTestService(t, &stubRepo{}, caches, &stubPublisher{})
	ctx := context.Background()

	got, err := svc.SessionOrders(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, got, 1)

	require.NoError(t, svc.ClearSession(ctx, "s1"))
	got, err = svc.SessionOrders(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = svc.SessionOrders(ctx, "")
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.CodeOf(err))
}
