package repository

import (
	"context"

	"shop/internal/domain/model"
)

// プロフィールの保存・取得
type ProfileRepository interface {
	//無ければErrNotFound
	FindByUserID(ctx context.Context, userID int64) (model.UserProfile, error)
	//user_idで作成 or 更新
	Upsert(ctx context.Context, p model.UserProfile) (model.UserProfile, error)
}
