package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const userLinkKind = "user_link"

var ErrLinkDisabled = errors.New("user link secret is not configured")

// UserLinkClaims はbotが購入者IDに付けて渡す署名。
// 管理者トークンとはkindとsecretで区別する。
type UserLinkClaims struct {
	UserID    int64  `json:"sub"`
	Kind      string `json:"kind"`
	ExpiresAt int64  `json:"exp"`
}

func (c UserLinkClaims) Valid() error {
	if c.ExpiresAt == 0 || time.Now().Unix() >= c.ExpiresAt {
		return ErrTokenExpired
	}
	if c.Kind != userLinkKind || c.UserID <= 0 {
		return ErrInvalidClaims
	}
	return nil
}

// SignUserLink はbot側（cmd/userlink）で使う
func SignUserLink(secret string, userID int64, now time.Time, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", ErrLinkDisabled
	}
	if userID <= 0 {
		return "", ErrInvalidClaims
	}
	claims := UserLinkClaims{UserID: userID, Kind: userLinkKind, ExpiresAt: now.Add(ttl).Unix()}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// VerifyUserLink は署名を確認して購入者IDを返す
func VerifyUserLink(secret string, raw string) (int64, error) {
	if secret == "" {
		return 0, ErrLinkDisabled
	}
	var claims UserLinkClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}
