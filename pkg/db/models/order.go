package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the SQL document row for a customer order. Items stay an opaque JSON payload.
type Order struct {
	ID              string           `gorm:"column:id;type:varchar(36);primaryKey"`
	SLN             int64            `gorm:"column:sln;not null;uniqueIndex:idx_orders_sln"`
	CustomerName    string           `gorm:"column:customer_name;not null;default:''"`
	CustomerAddress string           `gorm:"column:customer_address;not null;default:''"`
	OrderDate       time.Time        `gorm:"column:order_date"`
	Salesman        string           `gorm:"column:salesman;not null;default:''"`
	Items           []map[string]any `gorm:"column:items;serializer:json"`
	Status          string           `gorm:"column:status;not null;default:''"`
	Notes           string           `gorm:"column:notes;not null;default:''"`
	Discount        decimal.Decimal  `gorm:"column:discount;type:numeric;not null;default:0"`
	TotalBillAmt    decimal.Decimal  `gorm:"column:total_bill_amt;type:numeric;not null;default:0"`
	TotalMrpBillAmt decimal.Decimal  `gorm:"column:total_mrp_bill_amt;type:numeric;not null;default:0"`
	CreatedBy       string           `gorm:"column:created_by;not null;default:''"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (Order) TableName() string { return "orders" }
