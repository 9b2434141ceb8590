package middleware

import (
	"net/http"
	"strconv"
	"time"

	"shop/internal/infra/token"
	"shop/internal/logging"
	"shop/internal/repository"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	CtxSessionIDKey     = "session_id"      // string
	CtxSessionUserIDKey = "session_user_id" // int64（未紐づけは0）
)

type SessionConfig struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
	//?link= の署名確認に使う。空なら購入者の紐づけはできない
	LinkSecret string
}

// Session はcookieのセッションIDを読み、無ければ発行する。
// botが署名した ?link= が付いていればそのセッションに購入者IDを紐づける。
// ?user_id= だけでは紐づけない。
func Session(store repository.SessionStore, cfg SessionConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			sid := ""
			if ck, err := c.Cookie(cfg.CookieName); err == nil {
				if _, err := uuid.Parse(ck.Value); err == nil {
					sid = ck.Value
				}
			}
			if sid == "" {
				sid = uuid.NewString()
			}

			//アクセスのたびに期限を延ばす
			c.SetCookie(&http.Cookie{
				Name:     cfg.CookieName,
				Value:    sid,
				Path:     "/",
				MaxAge:   int(cfg.TTL.Seconds()),
				HttpOnly: true,
				Secure:   cfg.Secure,
				SameSite: http.SameSiteLaxMode,
			})

			if c.QueryParam("link") != "" || c.QueryParam("user_id") != "" {
				linked, status, msg := verifyLink(c, cfg.LinkSecret)
				if status != 0 {
					logging.FromContext(ctx).Info("reject user link", zap.String("reason", msg))
					return c.JSON(status, errorJSON(msg))
				}
				if err := store.SetUserID(ctx, sid, linked); err != nil {
					logging.FromContext(ctx).Error("bind session user failed", zap.Error(err))
					return c.JSON(http.StatusInternalServerError, errorJSON("internal error"))
				}
			}

			userID, err := store.GetUserID(ctx, sid)
			if err != nil {
				logging.FromContext(ctx).Error("load session user failed", zap.Error(err))
				return c.JSON(http.StatusInternalServerError, errorJSON("internal error"))
			}

			c.Set(CtxSessionIDKey, sid)
			c.Set(CtxSessionUserIDKey, userID)

			l := logging.FromContext(ctx).With(zap.String("session_id", sid))
			c.SetRequest(c.Request().WithContext(logging.IntoContext(ctx, l)))

			return next(c)
		}
	}
}

// verifyLink は ?link= の購入者IDを返す。?user_id= があれば一致も見る。
// 失敗時はstatusとmessage。
func verifyLink(c echo.Context, secret string) (int64, int, string) {
	var claimed int64
	if v := c.QueryParam("user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return 0, http.StatusBadRequest, "invalid user_id"
		}
		claimed = id
	}

	raw := c.QueryParam("link")
	if raw == "" {
		return 0, http.StatusForbidden, "user link is not signed"
	}
	userID, err := token.VerifyUserLink(secret, raw)
	if err != nil {
		return 0, http.StatusForbidden, "invalid user link"
	}
	if claimed != 0 && claimed != userID {
		return 0, http.StatusForbidden, "user_id does not match link"
	}
	return userID, 0, ""
}

// RequireLinkedUser はプロフィール・注文など購入者本人のデータを扱うルートに掛ける。
func RequireLinkedUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if id, _ := c.Get(CtxSessionUserIDKey).(int64); id <= 0 {
				return c.JSON(http.StatusUnauthorized, errorJSON("user is not linked"))
			}
			return next(c)
		}
	}
}
