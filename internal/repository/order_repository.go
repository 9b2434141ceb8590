package repository

import (
	"context"
	"time"

	"shop/internal/domain/model"

	"github.com/shopspring/decimal"
)

type AdminOrderListFilter struct {
	Page   int
	Limit  int
	Status string
	UserID *int64
	From   *time.Time
	To     *time.Time
	//user_id / 名前 / 電話 / 住所の部分一致
	Q string
}

type OrderRepository interface {
	//明細（商品・サイズ込み）もpreloadする
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	FindByIDs(ctx context.Context, orderIDs []int64) ([]model.Order, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) (int64, error)
	UpdateTotal(ctx context.Context, orderID int64, total decimal.Decimal) error
	//status / confirmed_at / rejected_at を保存する
	SaveStatus(ctx context.Context, order model.Order) error

	//管理者用の注文一覧
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)
}
