package orders

import (
	"context"
	"fmt"

	"github.com/angelmondragon/orderform-backend/pkg/db"
	"github.com/angelmondragon/orderform-backend/pkg/db/models"
	"github.com/angelmondragon/orderform-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/orderform-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const orderSequenceName = "orders"

var columnByField = map[string]string{
	FieldCustomerName:    "customer_name",
	FieldCustomerAddress: "customer_address",
	FieldOrderDate:       "order_date",
	FieldSalesman:        "salesman",
	FieldItems:           "items",
	FieldStatus:          "status",
	FieldNotes:           "notes",
	FieldTotalBillAmt:    "total_bill_amt",
	FieldTotalMrpBillAmt: "total_mrp_bill_amt",
	FieldCreatedBy:       "created_by",
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type repository struct {
	db *gorm.DB
	tx txRunner
}

// NewRepository builds the SQL-backed orders repository.
func NewRepository(client *db.Client) Repository {
	return &repository{db: client.DB(), tx: client}
}

func (r *repository) Create(ctx context.Context, draft Draft, discount decimal.Decimal, creatorID string) (CreateResult, error) {
	var result CreateResult
	err := r.tx.WithTx(ctx, func(tx *gorm.DB) error {
		sln, err := nextSLN(tx)
		if err != nil {
			return err
		}
		record := toRecord(NewOrder(Reference{ID: uuid.NewString()}, sln, draft, discount, creatorID))
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		result = CreateResult{Reference: Reference{ID: record.ID}, SLN: record.SLN}
		return nil
	})
	if err != nil {
		return CreateResult{}, db.Classify(err, "create order")
	}
	return result, nil
}

// nextSLN seeds the counter with the stored order count, then increments it under the row lock.
// The counter never falls behind the count, so the first allocation is count+1.
func nextSLN(tx *gorm.DB) (int64, error) {
	var count int64
	if err := tx.Model(&models.Order{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}

	seed := models.OrderSequence{Name: orderSequenceName, Value: count}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return 0, fmt.Errorf("seed order sequence: %w", err)
	}

	bump := tx.Model(&models.OrderSequence{}).
		Where("name = ?", orderSequenceName).
		Update("value", gorm.Expr("CASE WHEN value < ? THEN ? ELSE value END + 1", count, count))
	if bump.Error != nil {
		return 0, fmt.Errorf("advance order sequence: %w", bump.Error)
	}

	var seq models.OrderSequence
	if err := tx.Where("name = ?", orderSequenceName).First(&seq).Error; err != nil {
		return 0, fmt.Errorf("read order sequence: %w", err)
	}
	return seq.Value, nil
}

func (r *repository) FetchByReference(ctx context.Context, ref Reference) (*Order, error) {
	if ref.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order reference required")
	}
	var record models.Order
	if err := r.db.WithContext(ctx).Where("id = ?", ref.ID).First(&record).Error; err != nil {
		return nil, db.Classify(err, "fetch order")
	}
	order := fromRecord(record)
	return &order, nil
}

func (r *repository) GetBySLN(ctx context.Context, sln int64) (*Order, error) {
	var record models.Order
	if err := r.db.WithContext(ctx).Where("sln = ?", sln).First(&record).Error; err != nil {
		return nil, db.Classify(err, fmt.Sprintf("get order by sln %d", sln))
	}
	order := fromRecord(record)
	return &order, nil
}

func (r *repository) List(ctx context.Context) ([]Order, error) {
	var records []models.Order
	if err := r.db.WithContext(ctx).Order("sln DESC").Find(&records).Error; err != nil {
		return nil, db.Classify(err, "list orders")
	}
	out := make([]Order, 0, len(records))
	for _, record := range records {
		out = append(out, fromRecord(record))
	}
	return out, nil
}

func (r *repository) UpdateFull(ctx context.Context, order Order) error {
	return r.update(ctx, enums.OrderUpdateFull, order)
}

func (r *repository) UpdateStatus(ctx context.Context, order Order) error {
	return r.update(ctx, enums.OrderUpdateStatus, order)
}

func (r *repository) update(ctx context.Context, mode enums.OrderUpdateMode, order Order) error {
	if order.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order reference required")
	}

	fields := UpdateFields(mode, order)
	columns := make([]string, 0, len(fields))
	for _, field := range fields {
		columns = append(columns, columnByField[field])
	}

	record := toRecord(order)
	res := r.db.WithContext(ctx).
		Model(&models.Order{ID: order.ID}).
		Select(columns).
		Updates(&record)
	if res.Error != nil {
		return db.Classify(res.Error, fmt.Sprintf("%s update", mode))
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return nil
}

func toRecord(order Order) models.Order {
	return models.Order{
		ID:              order.ID,
		SLN:             order.SLN,
		CustomerName:    order.CustomerName,
		CustomerAddress: order.CustomerAddress,
		OrderDate:       order.OrderDate,
		Salesman:        order.Salesman,
		Items:           itemsToMaps(normalizeItems(order.Items)),
		Status:          order.Status,
		Notes:           order.Notes,
		Discount:        order.Discount,
		TotalBillAmt:    order.TotalBillAmt,
		TotalMrpBillAmt: order.TotalMrpBillAmt,
		CreatedBy:       order.CreatedBy,
	}
}

func fromRecord(record models.Order) Order {
	return Order{
		ID:              record.ID,
		SLN:             record.SLN,
		CustomerName:    record.CustomerName,
		CustomerAddress: record.CustomerAddress,
		OrderDate:       record.OrderDate,
		Salesman:        record.Salesman,
		Items:           itemsFromMaps(record.Items),
		Status:          record.Status,
		Notes:           record.Notes,
		Discount:        record.Discount,
		TotalBillAmt:    record.TotalBillAmt,
		TotalMrpBillAmt: record.TotalMrpBillAmt,
		CreatedBy:       record.CreatedBy,
	}
}
