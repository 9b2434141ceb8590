package repository

import (
	"context"
	"errors"
	"strings"

	"shop/internal/domain/model"
	repo "shop/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

// 明細・商品・サイズまで読み込む
func withItems(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("Items.Product").
		Preload("Items.Size")
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	var o model.Order
	err := withItems(r.db.WithContext(ctx)).Where("id = ?", orderID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) FindByIDs(ctx context.Context, orderIDs []int64) ([]model.Order, error) {
	if len(orderIDs) == 0 {
		return []model.Order{}, nil
	}
	var orders []model.Order
	if err := r.db.WithContext(ctx).Where("id IN ?", orderIDs).Order("id asc").Find(&orders).Error; err != nil {
		return []model.Order{}, err
	}
	return orders, nil
}

// 新しい順
func (r *OrderGormRepository) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return []model.Order{}, 0, err
	}

	var items []model.Order
	offset := (page - 1) * limit
	err := withItems(r.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("created_at desc").Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return []model.Order{}, 0, err
	}

	return items, total, nil
}

func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (int64, error) {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&order).Error; err != nil {
		return 0, err
	}
	return order.ID, nil
}

func (r *OrderGormRepository) UpdateTotal(ctx context.Context, orderID int64, total decimal.Decimal) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Update("total_price", total)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 時刻はDB側でも既存値を優先（一度入ったら上書きしない）
func (r *OrderGormRepository) SaveStatus(ctx context.Context, order model.Order) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]interface{}{
			"status":       order.Status,
			"confirmed_at": gorm.Expr("COALESCE(confirmed_at, ?)", order.ConfirmedAt),
			"rejected_at":  gorm.Expr("COALESCE(rejected_at, ?)", order.RejectedAt),
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *OrderGormRepository) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Order{}).Scopes(adminOrderFilter(f)).Count(&total).Error; err != nil {
		return []model.Order{}, 0, err
	}

	var items []model.Order
	offset := (f.Page - 1) * f.Limit
	err := withItems(r.db.WithContext(ctx)).
		Scopes(adminOrderFilter(f)).
		Order("created_at desc").Order("id desc").
		Limit(f.Limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return []model.Order{}, 0, err
	}

	return items, total, nil
}

func adminOrderFilter(f repo.AdminOrderListFilter) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		//status 絞り込み
		if f.Status != "" {
			q = q.Where("status = ?", f.Status)
		}

		//user_id 絞り込み
		if f.UserID != nil {
			q = q.Where("user_id = ?", *f.UserID)
		}

		//期間絞り込み
		if f.From != nil {
			q = q.Where("created_at >= ?", *f.From)
		}
		if f.To != nil {
			q = q.Where("created_at <= ?", *f.To)
		}

		//user_id / 名前 / 電話 / 住所で検索
		if s := strings.TrimSpace(f.Q); s != "" {
			like := "%" + strings.ToLower(s) + "%"
			q = q.Where(
				"(CAST(user_id AS TEXT) LIKE ? OR LOWER(name) LIKE ? OR phone LIKE ? OR LOWER(address) LIKE ?)",
				like, like, like, like,
			)
		}
		return q
	}
}
