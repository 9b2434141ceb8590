package handler

import (
	"net/http"

	"shop/internal/usecase"
	"shop/internal/validator"

	"github.com/labstack/echo/v4"
)

// /cartのHTTP
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

type cartResponse struct {
	SuccessResponse
	usecase.CartView
}

type cartTotalResponse struct {
	SuccessResponse
	usecase.CartTotal
}

// /cart, /cart/add, /cart/remove を登録（Sessionの後）
func (h *CartHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/cart", h.getCart)
	g.POST("/cart/add", h.add)
	g.POST("/cart/remove", h.remove)
}

func (h *CartHandler) getCart(c echo.Context) error {
	sid, ok := getSessionID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorResponse("session not found"))
	}

	out, err := h.uc.DisplayList(c.Request().Context(), sid)
	if err != nil {
		return writeError(c, err)
	}

	msg := "cart"
	if out.CartEmpty {
		msg = "cart is empty"
	}
	return c.JSON(http.StatusOK, cartResponse{SuccessResponse: success(msg), CartView: out})
}

func (h *CartHandler) add(c echo.Context) error {
	sid, ok := getSessionID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorResponse("session not found"))
	}

	var req validator.AddLineRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse("invalid body"))
	}
	cmd, err := validator.ParseAddLine(req)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.AddOrAdjust(c.Request().Context(), sid, cmd)
	if err != nil {
		return writeError(c, err)
	}

	msg := "product added to cart"
	if cmd.Delta < 0 {
		msg = "cart updated"
	}
	return c.JSON(http.StatusOK, cartTotalResponse{SuccessResponse: success(msg), CartTotal: out})
}

func (h *CartHandler) remove(c echo.Context) error {
	sid, ok := getSessionID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorResponse("session not found"))
	}

	var req validator.RemoveLineRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse("invalid body"))
	}
	cmd, err := validator.ParseRemoveLine(req)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.Remove(c.Request().Context(), sid, cmd)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, cartTotalResponse{SuccessResponse: success("product removed from cart"), CartTotal: out})
}
