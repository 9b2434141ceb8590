package handler

import (
	"net/http"

	"shop/internal/usecase"
	"shop/internal/validator"

	"github.com/labstack/echo/v4"
)

// /profile（セッションの購入者）
type ProfileHandler struct {
	uc *usecase.ProfileUsecase
}

func NewProfileHandler(uc *usecase.ProfileUsecase) *ProfileHandler {
	return &ProfileHandler{uc: uc}
}

func (h *ProfileHandler) RegisterRoutes(g *echo.Group, linked echo.MiddlewareFunc) {
	g.GET("/profile", h.get, linked)
	g.PUT("/profile", h.put, linked)
}

func (h *ProfileHandler) get(c echo.Context) error {
	out, err := h.uc.Get(c.Request().Context(), getSessionUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProfileHandler) put(c echo.Context) error {
	var req validator.ProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse("invalid body"))
	}
	cmd, err := validator.ParseProfile(req, getSessionUserID(c))
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.Save(c.Request().Context(), cmd)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
