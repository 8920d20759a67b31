package orders

import (
	"strings"

	"github.com/angelmondragon/orderform-backend/pkg/enums"
)

// Store keys of the editable order fields.
const (
	FieldCustomerName    = "customerName"
	FieldCustomerAddress = "customerAddress"
	FieldOrderDate       = "orderDate"
	FieldSalesman        = "salesman"
	FieldItems           = "items"
	FieldStatus          = "status"
	FieldNotes           = "notes"
	FieldTotalBillAmt    = "totalBillAmt"
	FieldTotalMrpBillAmt = "totalMrpBillAmt"
	FieldCreatedBy       = "createdBy"
)

// Discount is set once at creation and never rewritten.
var fullUpdateFields = []string{
	FieldCustomerName,
	FieldCustomerAddress,
	FieldOrderDate,
	FieldSalesman,
	FieldItems,
	FieldStatus,
	FieldNotes,
	FieldTotalBillAmt,
	FieldTotalMrpBillAmt,
}

var statusUpdateFields = []string{
	FieldStatus,
	FieldNotes,
}

// UpdateFields lists the store keys written by the given update mode.
// createdBy is only rewritten when the order carries a creator.
func UpdateFields(mode enums.OrderUpdateMode, order Order) []string {
	if mode == enums.OrderUpdateStatus {
		return append([]string(nil), statusUpdateFields...)
	}
	fields := append([]string(nil), fullUpdateFields...)
	if strings.TrimSpace(order.CreatedBy) != "" {
		fields = append(fields, FieldCreatedBy)
	}
	return fields
}

// fieldValue returns the Go value of one editable field.
func fieldValue(order Order, field string) (any, bool) {
	switch field {
	case FieldCustomerName:
		return order.CustomerName, true
	case FieldCustomerAddress:
		return order.CustomerAddress, true
	case FieldOrderDate:
		return order.OrderDate, true
	case FieldSalesman:
		return order.Salesman, true
	case FieldItems:
		return normalizeItems(order.Items), true
	case FieldStatus:
		return order.Status, true
	case FieldNotes:
		return order.Notes, true
	case FieldTotalBillAmt:
		return order.TotalBillAmt, true
	case FieldTotalMrpBillAmt:
		return order.TotalMrpBillAmt, true
	case FieldCreatedBy:
		return order.CreatedBy, true
	default:
		return nil, false
	}
}
