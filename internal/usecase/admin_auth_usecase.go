package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"shop/internal/domain/model"
	repo "shop/internal/repository"
)

// JWTを発行する約束
type AccessTokenIssuer interface {
	Issue(userID int64, role model.Role, tokenVersion int, now time.Time) (token string, expiresAt time.Time, err error)
}

type AdminAuthUsecase struct {
	users    repo.UserRepository
	hasher   PasswordHasher
	verifier PasswordVerifier
	issuer   AccessTokenIssuer
	clock    Clock
}

func NewAdminAuthUsecase(
	users repo.UserRepository,
	hasher PasswordHasher,
	verifier PasswordVerifier,
	issuer AccessTokenIssuer,
	clock Clock,
) *AdminAuthUsecase {
	return &AdminAuthUsecase{
		users:    users,
		hasher:   hasher,
		verifier: verifier,
		issuer:   issuer,
		clock:    clock,
	}
}

type LoginInput struct {
	Email    string
	Password string
}

type UserDTO struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type LoginOutput struct {
	User        UserDTO   `json:"user"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Login はメールとパスワードで管理者トークンを発行する
func (u *AdminAuthUsecase) Login(ctx context.Context, in LoginInput) (LoginOutput, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return LoginOutput{}, MalformedInput("email and password are required")
	}

	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		return LoginOutput{}, internal(err)
	}
	//ユーザー不在とパスワード違いは区別しない
	if user == nil || !u.verifier.Verify(in.Password, user.PasswordHash) {
		return LoginOutput{}, unauthorized()
	}
	if !user.IsActive {
		return LoginOutput{}, newKindError(http.StatusForbidden, ErrForbidden, "user is inactive", nil)
	}

	now := u.clock.Now()
	token, exp, err := u.issuer.Issue(user.ID, user.Role, user.TokenVersion, now)
	if err != nil {
		return LoginOutput{}, internal(err)
	}

	//last_login更新（失敗してもログインは通す）
	user.LastLoginAt = &now
	_ = u.users.Update(ctx, user)

	return LoginOutput{
		User:        UserDTO{ID: user.ID, Email: user.Email, Role: string(user.Role)},
		AccessToken: token,
		ExpiresAt:   exp,
	}, nil
}

// Logout はtoken_versionを上げて発行済みトークンを全部無効にする
func (u *AdminAuthUsecase) Logout(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return unauthorized()
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return internal(err)
	}
	if user == nil {
		return unauthorized()
	}

	user.RevokeTokens()
	if err := u.users.Update(ctx, user); err != nil {
		return internal(err)
	}
	return nil
}

// EnsureAdmin は管理者が居なければ作る。作ったらtrue。
func (u *AdminAuthUsecase) EnsureAdmin(ctx context.Context, email string, password string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return false, nil
	}

	existing, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	hash, err := u.hasher.Hash(password)
	if err != nil {
		return false, err
	}

	if err := u.users.Create(ctx, &model.User{
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		IsActive:     true,
	}); err != nil {
		return false, err
	}
	return true, nil
}
