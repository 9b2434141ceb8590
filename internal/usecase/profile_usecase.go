package usecase

import (
	"context"
	"errors"
	"net/http"

	"shop/internal/domain/model"
	repo "shop/internal/repository"
)

// 購入者のプロフィール（注文時の連絡先）
type ProfileUsecase struct {
	profiles repo.ProfileRepository
}

func NewProfileUsecase(profiles repo.ProfileRepository) *ProfileUsecase {
	return &ProfileUsecase{profiles: profiles}
}

// nilの項目は今の値のまま
type SaveProfileCommand struct {
	UserID  int64
	Name    *string
	Phone   *string
	Address *string
}

type ProfileOutput struct {
	UserID          int64  `json:"user_id"`
	Name            string `json:"name"`
	PhoneNumber     string `json:"phone_number"`
	DeliveryAddress string `json:"delivery_address"`
	//3項目そろっていれば注文時に入力不要
	Complete bool `json:"complete"`
}

// Get は無ければ空のプロフィールを返す
func (u *ProfileUsecase) Get(ctx context.Context, userID int64) (ProfileOutput, error) {
	if userID <= 0 {
		return ProfileOutput{}, NewHTTPError(http.StatusUnauthorized, "user ID not found")
	}

	p, err := u.profiles.FindByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return toProfileOutput(model.UserProfile{UserID: userID}), nil
	}
	if err != nil {
		return ProfileOutput{}, internal(err)
	}
	return toProfileOutput(p), nil
}

func (u *ProfileUsecase) Save(ctx context.Context, cmd SaveProfileCommand) (ProfileOutput, error) {
	if cmd.UserID <= 0 {
		return ProfileOutput{}, NewHTTPError(http.StatusUnauthorized, "user ID not found")
	}

	p, err := u.profiles.FindByUserID(ctx, cmd.UserID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return ProfileOutput{}, internal(err)
	}
	p.UserID = cmd.UserID

	if cmd.Name != nil {
		p.Name = *cmd.Name
	}
	if cmd.Phone != nil {
		p.PhoneNumber = *cmd.Phone
	}
	if cmd.Address != nil {
		p.DeliveryAddress = *cmd.Address
	}

	saved, err := u.profiles.Upsert(ctx, p)
	if err != nil {
		return ProfileOutput{}, internal(err)
	}
	return toProfileOutput(saved), nil
}

func toProfileOutput(p model.UserProfile) ProfileOutput {
	return ProfileOutput{
		UserID:          p.UserID,
		Name:            p.Name,
		PhoneNumber:     p.PhoneNumber,
		DeliveryAddress: p.DeliveryAddress,
		Complete:        p.Name != "" && p.PhoneNumber != "" && p.DeliveryAddress != "",
	}
}
