package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrTokenExpired  = errors.New("token expired")
	ErrInvalidClaims = errors.New("invalid claims")
)

// AdminClaims は管理者アクセストークンの中身。
// subは数値のまま入れる。
type AdminClaims struct {
	UserID       int64  `json:"sub"`
	Role         string `json:"role"`
	TokenVersion int    `json:"tv"`
	IssuedAt     int64  `json:"iat"`
	ExpiresAt    int64  `json:"exp"`
}

func (c AdminClaims) Valid() error {
	if c.ExpiresAt == 0 || time.Now().Unix() >= c.ExpiresAt {
		return ErrTokenExpired
	}
	if c.UserID <= 0 || c.Role == "" || c.TokenVersion < 0 {
		return ErrInvalidClaims
	}
	return nil
}

// Verify は署名(HS256のみ)と期限を確認してclaimsを返す。
func Verify(secret string, raw string) (AdminClaims, error) {
	var claims AdminClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return AdminClaims{}, err
	}
	return claims, nil
}
