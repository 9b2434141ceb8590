package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderEventType string

const (
	OrderEventPlaced    OrderEventType = "order_placed"
	OrderEventConfirmed OrderEventType = "order_confirmed"
	OrderEventRejected  OrderEventType = "order_rejected"
)

// 注文の状態変化を外部に流すイベント
type OrderEvent struct {
	ID         string          `json:"id"`
	Type       OrderEventType  `json:"type"`
	OrderID    int64           `json:"order_id"`
	UserID     int64           `json:"user_id"`
	Status     OrderStatus     `json:"status"`
	TotalPrice decimal.Decimal `json:"total_price"`
	OccurredAt time.Time       `json:"occurred_at"`
}
