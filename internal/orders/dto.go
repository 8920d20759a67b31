package orders

import (
	"strings"
	"time"

	"github.com/angelmondragon/orderform-backend/pkg/datefmt"
	"github.com/shopspring/decimal"
)

// OrderFields is the editable body shared by create and full update.
type OrderFields struct {
	CustomerName    string           `json:"customer_name" validate:"required,max=200"`
	CustomerAddress string           `json:"customer_address" validate:"max=500"`
	OrderDate       time.Time        `json:"order_date" validate:"required"`
	Salesman        string           `json:"salesman" validate:"max=120"`
	Items           []map[string]any `json:"items"`
	Status          string           `json:"status" validate:"max=60"`
	Notes           string           `json:"notes" validate:"max=2000"`
	TotalBillAmt    decimal.Decimal  `json:"total_bill_amt"`
	TotalMrpBillAmt decimal.Decimal  `json:"total_mrp_bill_amt"`
}

// CreateOrderRequest is the body of POST /api/v1/orders.
type CreateOrderRequest struct {
	OrderFields
	Discount decimal.Decimal `json:"discount"`
}

// UpdateOrderRequest is the body of PUT /api/v1/orders/{orderId}.
type UpdateOrderRequest struct {
	OrderFields
	SLN       int64  `json:"sln"`
	CreatedBy string `json:"created_by" validate:"omitempty,email"`
}

// UpdateStatusRequest is the body of PATCH /api/v1/orders/{orderId}/status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,max=60"`
	Notes  string `json:"notes" validate:"max=2000"`
}

// Draft converts the request into a repository draft.
func (r CreateOrderRequest) Draft() Draft {
	return Draft{
		CustomerName:    strings.TrimSpace(r.CustomerName),
		CustomerAddress: strings.TrimSpace(r.CustomerAddress),
		OrderDate:       r.OrderDate,
		Salesman:        strings.TrimSpace(r.Salesman),
		Items:           itemsFromMaps(r.Items),
		Status:          r.Status,
		Notes:           r.Notes,
		TotalBillAmt:    r.TotalBillAmt,
		TotalMrpBillAmt: r.TotalMrpBillAmt,
	}
}

// Order converts the request into the order written by a full update.
func (r UpdateOrderRequest) Order(id string) Order {
	return Order{
		ID:              id,
		SLN:             r.SLN,
		CustomerName:    strings.TrimSpace(r.CustomerName),
		CustomerAddress: strings.TrimSpace(r.CustomerAddress),
		OrderDate:       r.OrderDate,
		Salesman:        strings.TrimSpace(r.Salesman),
		Items:           itemsFromMaps(r.Items),
		Status:          r.Status,
		Notes:           r.Notes,
		TotalBillAmt:    r.TotalBillAmt,
		TotalMrpBillAmt: r.TotalMrpBillAmt,
		CreatedBy:       strings.TrimSpace(r.CreatedBy),
	}
}

// Order converts the request into the order written by a status update.
func (r UpdateStatusRequest) Order(id string) Order {
	return Order{ID: id, Status: r.Status, Notes: r.Notes}
}

// OrderView is the API representation of an order.
type OrderView struct {
	ID               string           `json:"id"`
	SLN              int64            `json:"sln"`
	CustomerName     string           `json:"customer_name"`
	CustomerAddress  string           `json:"customer_address"`
	OrderDate        time.Time        `json:"order_date"`
	OrderDateDisplay string           `json:"order_date_display"`
	Salesman         string           `json:"salesman"`
	Items            []map[string]any `json:"items"`
	Status           string           `json:"status"`
	Notes            string           `json:"notes"`
	Discount         decimal.Decimal  `json:"discount"`
	TotalBillAmt     decimal.Decimal  `json:"total_bill_amt"`
	TotalMrpBillAmt  decimal.Decimal  `json:"total_mrp_bill_amt"`
	CreatedBy        string           `json:"created_by"`
}

// CreateOrderResponse is returned by POST /api/v1/orders.
type CreateOrderResponse struct {
	ID  string `json:"id"`
	SLN int64  `json:"sln"`
}

// NewOrderView renders an order for the API, including its display date.
func NewOrderView(order Order) OrderView {
	var date *time.Time
	if !order.OrderDate.IsZero() {
		date = &order.OrderDate
	}
	return OrderView{
		ID:               order.ID,
		SLN:              order.SLN,
		CustomerName:     order.CustomerName,
		CustomerAddress:  order.CustomerAddress,
		OrderDate:        order.OrderDate,
		OrderDateDisplay: datefmt.Format(date, false),
		Salesman:         order.Salesman,
		Items:            itemsToMaps(normalizeItems(order.Items)),
		Status:           order.Status,
		Notes:            order.Notes,
		Discount:         order.Discount,
		TotalBillAmt:     order.TotalBillAmt,
		TotalMrpBillAmt:  order.TotalMrpBillAmt,
		CreatedBy:        order.CreatedBy,
	}
}

// NewOrderViews renders a list of orders.
func NewOrderViews(orders []Order) []OrderView {
	out := make([]OrderView, 0, len(orders))
	for _, order := range orders {
		out = append(out, NewOrderView(order))
	}
	return out
}
