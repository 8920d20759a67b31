package models

// OrderSequence holds the last allocated value of a named counter.
type OrderSequence struct {
	Name  string `gorm:"column:name;type:varchar(64);primaryKey"`
	Value int64  `gorm:"column:value;not null;default:0"`
}

func (OrderSequence) TableName() string { return "order_sequences" }
