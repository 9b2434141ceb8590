package repository

import "context"

// セッションID単位でカートと購入者IDを保存する。
// カートは "<productID>-<sizeID>" -> 数量 のmap。
type SessionStore interface {
	//無ければ空のmap
	GetCart(ctx context.Context, sessionID string) (map[string]int, error)
	SetCart(ctx context.Context, sessionID string, cart map[string]int) error

	//紐づいていなければ0
	GetUserID(ctx context.Context, sessionID string) (int64, error)
	SetUserID(ctx context.Context, sessionID string, userID int64) error
}
