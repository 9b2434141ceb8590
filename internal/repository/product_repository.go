package repository

import (
	"context"
	"errors"

	"shop/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 一覧検索
type ProductListQuery struct {
	Page  int
	Limit int
	Q     string
}

// カタログの読み取りだけを約束。
type ProductRepository interface {
	ListPublic(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	//Sizesもpreloadして返す
	FindByID(ctx context.Context, id int64) (model.Product, error)
	//見つからないIDはmapに入らない
	FindByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error)

	FindSizeByID(ctx context.Context, id int64) (model.Size, error)
	IsSizeEligible(ctx context.Context, productID int64, sizeID int64) (bool, error)
}
