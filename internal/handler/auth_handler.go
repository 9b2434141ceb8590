package handler

import (
	"net/http"

	"shop/internal/config"
	"shop/internal/middleware"
	"shop/internal/repository"
	"shop/internal/usecase"
	"shop/internal/validator"

	"github.com/labstack/echo/v4"
)

// 管理者ログイン
type AuthHandler struct {
	uc *usecase.AdminAuthUsecase
}

func NewAuthHandler(uc *usecase.AdminAuthUsecase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	e.POST("/admin/login", h.login)

	//全端末のトークンを無効化
	e.POST("/admin/logout", h.logout,
		middleware.AuthJWT(cfg),
		middleware.TokenVersionGuard(userRepo),
		middleware.AdminRoleGuard(),
	)
}

func (h *AuthHandler) login(c echo.Context) error {
	var req validator.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse("invalid body"))
	}
	in, err := validator.ParseLogin(req)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.Login(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AuthHandler) logout(c echo.Context) error {
	adminID, ok := getAdminIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorResponse("unauthorized"))
	}

	if err := h.uc.Logout(c.Request().Context(), adminID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, success("logged out"))
}
