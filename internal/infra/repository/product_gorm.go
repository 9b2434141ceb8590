package repository

import (
	"context"
	"errors"
	"strings"

	"shop/internal/domain/model"
	repo "shop/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// 商品一覧（検索/ページング付き）
func (r *ProductGormRepository) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Product{}).Scopes(productSearch(q.Q)).Count(&total).Error; err != nil {
		return []model.Product{}, 0, err
	}

	var products []model.Product
	offset := (q.Page - 1) * q.Limit
	err := r.db.WithContext(ctx).
		Scopes(productSearch(q.Q)).
		Preload("Sizes").
		Preload("Images", orderedImages).
		Order("created_at desc").Order("id desc").
		Offset(offset).Limit(q.Limit).
		Find(&products).Error
	if err != nil {
		return []model.Product{}, 0, err
	}

	return products, total, nil
}

func orderedImages(tx *gorm.DB) *gorm.DB {
	return tx.Order("position asc").Order("id asc")
}

// q は name / description を対象
func productSearch(q string) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		s := strings.TrimSpace(q)
		if s == "" {
			return tx
		}
		like := "%" + strings.ToLower(s) + "%"
		return tx.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", like, like)
	}
}

// IDで商品を取得
func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Preload("Sizes").Preload("Images", orderedImages).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// カート合計用にまとめて取得
func (r *ProductGormRepository) FindByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error) {
	out := make(map[int64]model.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var products []model.Product
	if err := r.db.WithContext(ctx).Preload("Sizes").Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

func (r *ProductGormRepository) FindSizeByID(ctx context.Context, id int64) (model.Size, error) {
	var s model.Size
	err := r.db.WithContext(ctx).First(&s, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Size{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Size{}, err
	}
	return s, nil
}

// product_sizesに組み合わせがあるか
func (r *ProductGormRepository) IsSizeEligible(ctx context.Context, productID int64, sizeID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Table("product_sizes").
		Where("product_id = ? AND size_id = ?", productID, sizeID).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
