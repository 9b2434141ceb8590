package repository

import (
	"context"

	"shop/internal/domain/model"
)

type OrderItemRepository interface {
	Create(ctx context.Context, item model.OrderItem) (int64, error)
	//商品・サイズをpreloadして返す
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
}
