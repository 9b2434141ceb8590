package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文明細。サイズ削除時はsize_idがNULLになる。
type OrderItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64     `gorm:"not null;index" json:"order_id"`
	ProductID int64     `gorm:"not null;index" json:"product_id"`
	Product   Product   `gorm:"constraint:OnDelete:RESTRICT;" json:"product"`
	SizeID    *int64    `gorm:"index" json:"size_id"`
	Size      *Size     `gorm:"constraint:OnDelete:SET NULL;" json:"size,omitempty"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

// 小計（Productがpreloadされている前提）
func (it OrderItem) Subtotal() decimal.Decimal {
	return it.Product.Price.Mul(decimal.NewFromInt(it.Quantity))
}
