package middleware

import (
	"net/http"

	"shop/internal/domain/model"

	"github.com/labstack/echo/v4"
)

// AdminRoleGuard は注文を操作できるroleかを見る。
// DBのUserがあればそちらのroleを優先（トークン発行後の降格に効く）。
func AdminRoleGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if admin, ok := c.Get(CtxAdminUserKey).(*model.User); ok {
				if !admin.CanManageOrders() {
					return c.JSON(http.StatusForbidden, errorJSON("admin only"))
				}
				return next(c)
			}

			role, _ := c.Get(CtxUserRoleKey).(string)
			if role == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			if model.Role(role) != model.RoleAdmin {
				return c.JSON(http.StatusForbidden, errorJSON("admin only"))
			}
			return next(c)
		}
	}
}
