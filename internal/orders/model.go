package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one entry of an order's item list. Its shape belongs to the caller.
type LineItem map[string]any

// Order is a stored customer order.
type Order struct {
	ID              string          `json:"id"`
	SLN             int64           `json:"sln"`
	CustomerName    string          `json:"customerName"`
	CustomerAddress string          `json:"customerAddress"`
	OrderDate       time.Time       `json:"orderDate"`
	Salesman        string          `json:"salesman"`
	Items           []LineItem      `json:"items"`
	Status          string          `json:"status"`
	Notes           string          `json:"notes"`
	Discount        decimal.Decimal `json:"discount"`
	TotalBillAmt    decimal.Decimal `json:"totalBillAmt"`
	TotalMrpBillAmt decimal.Decimal `json:"totalMrpBillAmt"`
	CreatedBy       string          `json:"createdBy"`
}

// Draft carries the caller-supplied fields of a new order.
type Draft struct {
	CustomerName    string
	CustomerAddress string
	OrderDate       time.Time
	Salesman        string
	Items           []LineItem
	Status          string
	Notes           string
	TotalBillAmt    decimal.Decimal
	TotalMrpBillAmt decimal.Decimal
}

// Reference is the opaque handle of a stored order.
type Reference struct {
	ID string `json:"id"`
}

// CreateResult is returned by Create.
type CreateResult struct {
	Reference Reference
	SLN       int64
}

// NewOrder assembles the stored shape of a draft once its number is known.
func NewOrder(ref Reference, sln int64, draft Draft, discount decimal.Decimal, creatorID string) Order {
	return Order{
		ID:              ref.ID,
		SLN:             sln,
		CustomerName:    draft.CustomerName,
		CustomerAddress: draft.CustomerAddress,
		OrderDate:       draft.OrderDate,
		Salesman:        draft.Salesman,
		Items:           normalizeItems(draft.Items),
		Status:          draft.Status,
		Notes:           draft.Notes,
		Discount:        discount,
		TotalBillAmt:    draft.TotalBillAmt,
		TotalMrpBillAmt: draft.TotalMrpBillAmt,
		CreatedBy:       creatorID,
	}
}

func normalizeItems(items []LineItem) []LineItem {
	if items == nil {
		return []LineItem{}
	}
	return items
}

func itemsToMaps(items []LineItem) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		out = append(out, map[string]any(item))
	}
	return out
}

func itemsFromMaps(raw []map[string]any) []LineItem {
	out := make([]LineItem, 0, len(raw))
	for _, item := range raw {
		out = append(out, LineItem(item))
	}
	return out
}
