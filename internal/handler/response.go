package handler

import (
	"net/http"

	"shop/internal/logging"
	"shop/internal/middleware"
	"shop/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// エラー時は必ずこの形
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type SuccessResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func errorResponse(msg string) ErrorResponse {
	return ErrorResponse{Status: "error", Message: msg}
}

func success(msg string) SuccessResponse {
	return SuccessResponse{Status: "ok", Message: msg}
}

// HTTPErrorはそのまま、それ以外は500。原因はログにだけ出す。
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	log := logging.FromContext(c.Request().Context())

	if he, ok := usecase.AsHTTPError(err); ok {
		if he.Status >= http.StatusInternalServerError {
			log.Error("request failed", zap.Int("status", he.Status), zap.Error(err))
		}
		return c.JSON(he.Status, errorResponse(he.Message))
	}

	//500
	log.Error("unexpected error", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
}

// JWTの管理者ID
func getAdminIDFromContext(c echo.Context) (int64, bool) {
	id, ok := c.Get(middleware.CtxUserIDKey).(int64)
	if !ok || id <= 0 {
		return 0, false
	}
	return id, true
}

func getSessionID(c echo.Context) (string, bool) {
	sid, ok := c.Get(middleware.CtxSessionIDKey).(string)
	return sid, ok && sid != ""
}

// 未紐づけは0
func getSessionUserID(c echo.Context) int64 {
	id, _ := c.Get(middleware.CtxSessionUserIDKey).(int64)
	return id
}
