package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"github.com/angelmondragon/orderform-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/orderform-backend/pkg/errors"
	fsclient "github.com/angelmondragon/orderform-backend/pkg/firestore"
	"github.com/shopspring/decimal"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	counterDocID   = "orders"
	countAggregate = "all"
)

// orderDocument is the Firestore shape of an order. Money is stored as a JSON number.
type orderDocument struct {
	SLN             int64            `firestore:"sln"`
	CustomerName    string           `firestore:"customerName"`
	CustomerAddress string           `firestore:"customerAddress"`
	OrderDate       time.Time        `firestore:"orderDate"`
	Salesman        string           `firestore:"salesman"`
	Items           []map[string]any `firestore:"items"`
	Status          string           `firestore:"status"`
	Notes           string           `firestore:"notes"`
	Discount        float64          `firestore:"discount"`
	TotalBillAmt    float64          `firestore:"totalBillAmt"`
	TotalMrpBillAmt float64          `firestore:"totalMrpBillAmt"`
	CreatedBy       string           `firestore:"createdBy"`
}

type counterDocument struct {
	Value int64 `firestore:"value"`
}

type firestoreRepository struct {
	client   *firestore.Client
	orders   string
	counters string
}

// NewFirestoreRepository builds the Firestore-backed orders repository.
func NewFirestoreRepository(client *fsclient.Client) Repository {
	return &firestoreRepository{
		client:   client.Raw(),
		orders:   client.OrdersCollection(),
		counters: client.CountersCollection(),
	}
}

func (r *firestoreRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.orders)
}

func (r *firestoreRepository) Create(ctx context.Context, draft Draft, discount decimal.Decimal, creatorID string) (CreateResult, error) {
	count, err := r.count(ctx)
	if err != nil {
		return CreateResult{}, pkgerrors.Classify(err, "count orders")
	}

	counterRef := r.client.Collection(r.counters).Doc(counterDocID)
	var result CreateResult
	err = r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		last := count
		snap, err := tx.Get(counterRef)
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}
		if snap != nil && snap.Exists() {
			var counter counterDocument
			if err := snap.DataTo(&counter); err != nil {
				return err
			}
			if counter.Value > last {
				last = counter.Value
			}
		}

		sln := last + 1
		docRef := r.collection().NewDoc()
		order := NewOrder(Reference{ID: docRef.ID}, sln, draft, discount, creatorID)
		if err := tx.Create(docRef, toDocument(order)); err != nil {
			return err
		}
		if err := tx.Set(counterRef, counterDocument{Value: sln}); err != nil {
			return err
		}
		result = CreateResult{Reference: Reference{ID: docRef.ID}, SLN: sln}
		return nil
	})
	if err != nil {
		return CreateResult{}, pkgerrors.Classify(err, "create order")
	}
	return result, nil
}

func (r *firestoreRepository) count(ctx context.Context) (int64, error) {
	res, err := r.collection().NewAggregationQuery().WithCount(countAggregate).Get(ctx)
	if err != nil {
		return 0, err
	}
	raw, ok := res[countAggregate]
	if !ok {
		return 0, errors.New("count aggregation missing from result")
	}
	value, ok := raw.(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("unexpected count type %T", raw)
	}
	return value.GetIntegerValue(), nil
}

func (r *firestoreRepository) FetchByReference(ctx context.Context, ref Reference) (*Order, error) {
	if ref.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order reference required")
	}
	snap, err := r.collection().Doc(ref.ID).Get(ctx)
	if err != nil {
		return nil, pkgerrors.Classify(err, "fetch order")
	}
	return fromSnapshot(snap)
}

func (r *firestoreRepository) GetBySLN(ctx context.Context, sln int64) (*Order, error) {
	iter := r.collection().Where("sln", "==", sln).Limit(1).Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("order %d not found", sln))
	}
	if err != nil {
		return nil, pkgerrors.Classify(err, fmt.Sprintf("get order by sln %d", sln))
	}
	return fromSnapshot(snap)
}

func (r *firestoreRepository) List(ctx context.Context) ([]Order, error) {
	snaps, err := r.collection().OrderBy("sln", firestore.Desc).Documents(ctx).GetAll()
	if err != nil {
		return nil, pkgerrors.Classify(err, "list orders")
	}
	out := make([]Order, 0, len(snaps))
	for _, snap := range snaps {
		order, err := fromSnapshot(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, *order)
	}
	return out, nil
}

func (r *firestoreRepository) UpdateFull(ctx context.Context, order Order) error {
	return r.update(ctx, enums.OrderUpdateFull, order)
}

func (r *firestoreRepository) UpdateStatus(ctx context.Context, order Order) error {
	return r.update(ctx, enums.OrderUpdateStatus, order)
}

func (r *firestoreRepository) update(ctx context.Context, mode enums.OrderUpdateMode, order Order) error {
	if order.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order reference required")
	}
	fields := UpdateFields(mode, order)
	updates := make([]firestore.Update, 0, len(fields))
	for _, field := range fields {
		value, ok := fieldValue(order, field)
		if !ok {
			continue
		}
		updates = append(updates, firestore.Update{Path: field, Value: documentValue(value)})
	}
	// Update fails with NotFound when the document is missing.
	if _, err := r.collection().Doc(order.ID).Update(ctx, updates); err != nil {
		return pkgerrors.Classify(err, fmt.Sprintf("%s update", mode))
	}
	return nil
}

func documentValue(value any) any {
	switch v := value.(type) {
	case decimal.Decimal:
		return v.InexactFloat64()
	case []LineItem:
		return itemsToMaps(v)
	default:
		return v
	}
}

func toDocument(order Order) orderDocument {
	return orderDocument{
		SLN:             order.SLN,
		CustomerName:    order.CustomerName,
		CustomerAddress: order.CustomerAddress,
		OrderDate:       order.OrderDate,
		Salesman:        order.Salesman,
		Items:           itemsToMaps(normalizeItems(order.Items)),
		Status:          order.Status,
		Notes:           order.Notes,
		Discount:        order.Discount.InexactFloat64(),
		TotalBillAmt:    order.TotalBillAmt.InexactFloat64(),
		TotalMrpBillAmt: order.TotalMrpBillAmt.InexactFloat64(),
		CreatedBy:       order.CreatedBy,
	}
}

func fromSnapshot(snap *firestore.DocumentSnapshot) (*Order, error) {
	var doc orderDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode order document")
	}
	order := Order{
		ID:              snap.Ref.ID,
		SLN:             doc.SLN,
		CustomerName:    doc.CustomerName,
		CustomerAddress: doc.CustomerAddress,
		OrderDate:       doc.OrderDate,
		Salesman:        doc.Salesman,
		Items:           itemsFromMaps(doc.Items),
		Status:          doc.Status,
		Notes:           doc.Notes,
		Discount:        decimal.NewFromFloat(doc.Discount),
		TotalBillAmt:    decimal.NewFromFloat(doc.TotalBillAmt),
		TotalMrpBillAmt: decimal.NewFromFloat(doc.TotalMrpBillAmt),
		CreatedBy:       doc.CreatedBy,
	}
	return &order, nil
}
