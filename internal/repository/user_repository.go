package repository

import (
	"context"

	"shop/internal/domain/model"
)

// 管理ユーザーの保存・取得を約束
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	//見つからなければ (nil, nil)
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	//最終ログインなどの更新
	Update(ctx context.Context, user *model.User) error
}
