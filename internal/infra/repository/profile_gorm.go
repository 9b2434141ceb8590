package repository

import (
	"context"
	"errors"

	"shop/internal/domain/model"
	repo "shop/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileGormRepository struct {
	db *gorm.DB
}

func NewProfileGormRepository(db *gorm.DB) *ProfileGormRepository {
	return &ProfileGormRepository{db: db}
}

func (r *ProfileGormRepository) FindByUserID(ctx context.Context, userID int64) (model.UserProfile, error) {
	var p model.UserProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.UserProfile{}, repo.ErrNotFound
	}
	if err != nil {
		return model.UserProfile{}, err
	}
	return p, nil
}

// user_idが衝突したら連絡先を上書き
func (r *ProfileGormRepository) Upsert(ctx context.Context, p model.UserProfile) (model.UserProfile, error) {
	//衝突判定はuser_idだけにする
	p.ID = 0
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "phone_number", "delivery_address", "updated_at"}),
	}).Create(&p).Error
	if err != nil {
		return model.UserProfile{}, err
	}
	return r.FindByUserID(ctx, p.UserID)
}
