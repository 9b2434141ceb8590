package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"shop/internal/domain/model"
	"shop/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type issuerStub struct {
	gotUserID int64
	gotTV     int
}

func (s *issuerStub) Issue(userID int64, role model.Role, tokenVersion int, now time.Time) (string, time.Time, error) {
	s.gotUserID = userID
	s.gotTV = tokenVersion
	return "signed-token", now.Add(15 * time.Minute), nil
}

func newAuthUC(users *UserRepoMock, issuer usecase.AccessTokenIssuer) *usecase.AdminAuthUsecase {
	return usecase.NewAdminAuthUsecase(
		users,
		usecase.NewBcryptPasswordHasher(4),
		usecase.NewBcryptPasswordVerifier(),
		issuer,
		fixedClock{now: adminNow},
	)
}

func TestAdminAuthUsecase_Login(t *testing.T) {
	hash, err := usecase.NewBcryptPasswordHasher(4).Hash("s3cret-pass")
	require.NoError(t, err)

	admin := &model.User{ID: 5, Email: "admin@example.com", PasswordHash: hash, Role: model.RoleAdmin, TokenVersion: 2, IsActive: true}

	t.Run("success", func(t *testing.T) {
		users := new(UserRepoMock)
		users.On("FindByEmail", mock.Anything, "admin@example.com").Return(admin, nil)
		users.On("Update", mock.Anything, mock.Anything).Return(nil)
		issuer := &issuerStub{}

		out, err := newAuthUC(users, issuer).Login(context.Background(), usecase.LoginInput{Email: "Admin@Example.com", Password: "s3cret-pass"})
		require.NoError(t, err)
		assert.Equal(t, "signed-token", out.AccessToken)
		assert.Equal(t, "ADMIN", out.User.Role)
		assert.Equal(t, int64(5), issuer.gotUserID)
		assert.Equal(t, 2, issuer.gotTV)
	})

	t.Run("wrong password", func(t *testing.T) {
		users := new(UserRepoMock)
		users.On("FindByEmail", mock.Anything, "admin@example.com").Return(admin, nil)

		_, err := newAuthUC(users, &issuerStub{}).Login(context.Background(), usecase.LoginInput{Email: "admin@example.com", Password: "nope"})
		assert.True(t, errors.Is(err, usecase.ErrUnauthorized))
	})

	t.Run("unknown user", func(t *testing.T) {
		users := new(UserRepoMock)
		users.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, nil)

		_, err := newAuthUC(users, &issuerStub{}).Login(context.Background(), usecase.LoginInput{Email: "ghost@example.com", Password: "x"})
		assert.True(t, errors.Is(err, usecase.ErrUnauthorized))
	})
}

func TestAdminAuthUsecase_EnsureAdmin(t *testing.T) {
	users := new(UserRepoMock)
	users.On("FindByEmail", mock.Anything, "admin@example.com").Return(nil, nil).Once()
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.Email == "admin@example.com" && u.Role == model.RoleAdmin && u.IsActive && u.PasswordHash != "pw"
	})).Return(nil).Once()

	created, err := newAuthUC(users, &issuerStub{}).EnsureAdmin(context.Background(), " admin@example.com ", "pw")
	require.NoError(t, err)
	assert.True(t, created)

	//既にいれば作らない
	users.On("FindByEmail", mock.Anything, "admin@example.com").Return(&model.User{ID: 1}, nil).Once()
	created, err = newAuthUC(users, &issuerStub{}).EnsureAdmin(context.Background(), "admin@example.com", "pw")
	require.NoError(t, err)
	assert.False(t, created)

	users.AssertExpectations(t)
}

func TestAdminAuthUsecase_Logout_BumpsTokenVersion(t *testing.T) {
	users := new(UserRepoMock)
	users.On("FindByID", mock.Anything, int64(5)).Return(&model.User{ID: 5, TokenVersion: 2}, nil)
	users.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool { return u.TokenVersion == 3 })).Return(nil).Once()

	require.NoError(t, newAuthUC(users, &issuerStub{}).Logout(context.Background(), 5))
	users.AssertExpectations(t)
}
