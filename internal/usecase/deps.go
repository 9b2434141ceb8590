package usecase

import (
	"context"
	"time"

	"shop/internal/domain/model"
)

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

// 注文イベントの送信先（Kafkaなど）
type OrderEventPublisher interface {
	Publish(ctx context.Context, ev model.OrderEvent) error
}
