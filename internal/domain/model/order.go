package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusRejected  OrderStatus = "REJECTED"
)

// 確定済みと却下済みの行き来はできない
var ErrInvalidTransition = errors.New("invalid order status transition")

type Order struct {
	ID      int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID  int64  `gorm:"not null;index" json:"user_id"`
	Name    string `gorm:"type:varchar(255);not null" json:"name"`
	Phone   string `gorm:"type:varchar(20);not null" json:"phone"`
	Address string `gorm:"type:text;not null" json:"address"`
	Comment string `gorm:"type:text" json:"comment"`
	//明細から計算した合計
	TotalPrice  decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"total_price"`
	Status      OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	ConfirmedAt *time.Time      `json:"confirmed_at"`
	RejectedAt  *time.Time      `json:"rejected_at"`
	Items       []OrderItem     `gorm:"constraint:OnDelete:CASCADE;" json:"items,omitempty"`
	CreatedAt   time.Time       `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// Confirm はPENDINGをCONFIRMEDにする。confirmed_atは一度だけ入る。
// 変化があればtrue。
func (o *Order) Confirm(now time.Time) (bool, error) {
	switch o.Status {
	case OrderStatusConfirmed:
		return false, nil
	case OrderStatusRejected:
		return false, ErrInvalidTransition
	}
	o.Status = OrderStatusConfirmed
	if o.ConfirmedAt == nil {
		t := now
		o.ConfirmedAt = &t
	}
	return true, nil
}

// Reject はPENDINGをREJECTEDにする。rejected_atは一度だけ入る。
func (o *Order) Reject(now time.Time) (bool, error) {
	switch o.Status {
	case OrderStatusRejected:
		return false, nil
	case OrderStatusConfirmed:
		return false, ErrInvalidTransition
	}
	o.Status = OrderStatusRejected
	if o.RejectedAt == nil {
		t := now
		o.RejectedAt = &t
	}
	return true, nil
}
