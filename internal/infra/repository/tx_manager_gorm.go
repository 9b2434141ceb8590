package repository

import (
	"context"

	"shop/internal/logging"
	repo "shop/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 1つのtxに紐づいたrepo群。呼ばれるたびにtxで組み立てる。
type gormTxRepos struct {
	tx *gorm.DB
}

func (r gormTxRepos) Orders() repo.OrderRepository         { return NewOrderGormRepository(r.tx) }
func (r gormTxRepos) OrderItems() repo.OrderItemRepository { return NewOrderItemGormRepository(r.tx) }
func (r gormTxRepos) Products() repo.ProductRepository     { return NewProductGormRepository(r.tx) }
func (r gormTxRepos) AuditLogs() repo.AuditLogRepository   { return NewAuditLogGormRepository(r.tx) }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

// WithinTx はfnがnilを返したときだけcommitする。panicもrollback。
func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	err := tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(gormTxRepos{tx: tx})
	})
	if err != nil {
		logging.FromContext(ctx).Debug("transaction rolled back", zap.Error(err))
	}
	return err
}
