package middleware

import (
	"net/http"
	"strings"

	"shop/internal/config"
	"shop/internal/infra/token"
	"shop/internal/logging"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	CtxUserIDKey       = "admin_user_id" // int64
	CtxUserRoleKey     = "user_role"     // string
	CtxTokenVersionKey = "token_version" // int
	CtxAdminUserKey    = "admin_user"    // *model.User（TokenVersionGuardが入れる）
)

// AuthJWT は Authorization: Bearer の管理者トークンを検証する。
// 購入者はセッションで識別するのでここは /admin 専用。
func AuthJWT(cfg config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			claims, err := token.Verify(cfg.JWTSecret, raw)
			if err != nil {
				logging.FromContext(c.Request().Context()).Debug("reject admin token", zap.Error(err))
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//セッションの購入者IDとは別キー
			c.Set(CtxUserIDKey, claims.UserID)
			c.Set(CtxUserRoleKey, claims.Role)
			c.Set(CtxTokenVersionKey, claims.TokenVersion)

			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	scheme, raw, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}

// handler.ErrorResponseと同じ形
type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Status: "error", Message: msg}
}
