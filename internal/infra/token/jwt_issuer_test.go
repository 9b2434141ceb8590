package token

import (
	"testing"
	"time"

	"shop/internal/domain/model"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTIssuer_Issue(t *testing.T) {
	iss, err := NewJWTIssuer("secret", time.Hour)
	require.NoError(t, err)

	now := time.Now()
	signed, exp, err := iss.Issue(7, model.RoleAdmin, 3, now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour).Unix(), exp.Unix())

	parsed, err := jwt.Parse(signed, func(t *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, float64(7), claims["sub"])
	assert.Equal(t, "ADMIN", claims["role"])
	assert.Equal(t, float64(3), claims["tv"])
}

func TestNewJWTIssuer_EmptySecret(t *testing.T) {
	_, err := NewJWTIssuer("", time.Minute)
	assert.Error(t, err)
}

func TestVerify(t *testing.T) {
	iss, err := NewJWTIssuer("secret", time.Hour)
	require.NoError(t, err)

	signed, _, err := iss.Issue(9, model.RoleAdmin, 2, time.Now())
	require.NoError(t, err)

	claims, err := Verify("secret", signed)
	require.NoError(t, err)
	assert.Equal(t, int64(9), claims.UserID)
	assert.Equal(t, "ADMIN", claims.Role)
	assert.Equal(t, 2, claims.TokenVersion)

	_, err = Verify("other", signed)
	assert.Error(t, err)
}

func TestVerify_Expired(t *testing.T) {
	iss, err := NewJWTIssuer("secret", time.Minute)
	require.NoError(t, err)

	signed, _, err := iss.Issue(9, model.RoleAdmin, 0, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = Verify("secret", signed)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerify_RejectsOtherAlg(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS512, AdminClaims{
		UserID: 1, Role: "ADMIN", ExpiresAt: time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = Verify("secret", raw)
	assert.Error(t, err)
}
