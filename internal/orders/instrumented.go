package orders

import (
	"context"
	"time"

	pkgerrors "github.com/angelmondragon/orderform-backend/pkg/errors"
	"github.com/angelmondragon/orderform-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

type storeObserver interface {
	Observe(op string, elapsed time.Duration, code string)
}

type instrumentedRepository struct {
	next    Repository
	metrics storeObserver
	logg    *logger.Logger
	now     func() time.Time
}

// Instrument wraps a repository with per-operation metrics and failure logging.
func Instrument(next Repository, metrics storeObserver, logg *logger.Logger) Repository {
	return &instrumentedRepository{next: next, metrics: metrics, logg: logg, now: time.Now}
}

func (r *instrumentedRepository) observe(ctx context.Context, op string, started time.Time, err error) {
	code := ""
	if err != nil {
		code = string(pkgerrors.CodeOf(err))
	}
	if r.metrics != nil {
		r.metrics.Observe(op, r.now().Sub(started), code)
	}
	if err == nil || r.logg == nil {
		return
	}
	fields := pkgerrors.Describe(err).Fields()
	fields["op"] = op
	fields["retryable"] = pkgerrors.IsRetryable(err)
	ctx = r.logg.WithFields(ctx, fields)
	if pkgerrors.IsNotFound(err) {
		r.logg.Warn(ctx, "order not found")
		return
	}
	r.logg.Error(ctx, "order store operation failed", err)
}

func (r *instrumentedRepository) Create(ctx context.Context, draft Draft, discount decimal.Decimal, creatorID string) (CreateResult, error) {
	started := r.now()
	res, err := r.next.Create(ctx, draft, discount, creatorID)
	r.observe(ctx, "create", started, err)
	return res, err
}

func (r *instrumentedRepository) FetchByReference(ctx context.Context, ref Reference) (*Order, error) {
	started := r.now()
	order, err := r.next.FetchByReference(ctx, ref)
	r.observe(ctx, "fetch_by_reference", started, err)
	return order, err
}

func (r *instrumentedRepository) GetBySLN(ctx context.Context, sln int64) (*Order, error) {
	started := r.now()
	order, err := r.next.GetBySLN(ctx, sln)
	if r.logg != nil {
		ctx = r.logg.WithOrderSLN(ctx, sln)
	}
	r.observe(ctx, "get_by_sln", started, err)
	return order, err
}

func (r *instrumentedRepository) List(ctx context.Context) ([]Order, error) {
	started := r.now()
	orders, err := r.next.List(ctx)
	r.observe(ctx, "list", started, err)
	return orders, err
}

func (r *instrumentedRepository) UpdateFull(ctx context.Context, order Order) error {
	started := r.now()
	err := r.next.UpdateFull(ctx, order)
	r.observe(ctx, "update_full", started, err)
	return err
}

func (r *instrumentedRepository) UpdateStatus(ctx context.Context, order Order) error {
	started := r.now()
	err := r.next.UpdateStatus(ctx, order)
	r.observe(ctx, "update_status", started, err)
	return err
}
