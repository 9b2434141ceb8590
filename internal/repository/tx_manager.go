package repository

import "context"

// TxRepos は1つのtxを共有するrepo群。
// 注文作成（order+items+合計）と状態変更（order+監査ログ）はここから使う。
type TxRepos interface {
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	Products() ProductRepository
	AuditLogs() AuditLogRepository
}

// fnがerrorを返したら全部rollbackされる
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
