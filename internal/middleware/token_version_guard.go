package middleware

import (
	"net/http"

	"shop/internal/repository"

	"github.com/labstack/echo/v4"
)

// TokenVersionGuard はlogout済み・無効化された管理者のトークンを弾く。
// 通ったら最新のUserをCtxAdminUserKeyに入れる。
func TokenVersionGuard(userRepo repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, _ := c.Get(CtxUserIDKey).(int64)
			tv, hasTV := c.Get(CtxTokenVersionKey).(int)
			if userID <= 0 || !hasTV {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			admin, err := userRepo.FindByID(c.Request().Context(), userID)
			switch {
			case err != nil, admin == nil:
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			case !admin.IsActive, admin.TokenVersion != tv:
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			c.Set(CtxAdminUserKey, admin)
			return next(c)
		}
	}
}
