package handler

import (
	"net/http"
	"strconv"

	"shop/internal/usecase"
	"shop/internal/validator"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

type placeOrderResponse struct {
	SuccessResponse
	usecase.PlacedOrder
}

// limiterはPOST /ordersだけ。linkedは紐づけ済みの購入者だけ通す。
func (h *OrderHandler) RegisterRoutes(g *echo.Group, limiter echo.MiddlewareFunc, linked echo.MiddlewareFunc) {
	g.POST("/orders", h.create, limiter, linked)
	g.GET("/orders", h.list, linked)
	g.GET("/orders/:id", h.detail, linked)
}

func (h *OrderHandler) create(c echo.Context) error {
	sid, ok := getSessionID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorResponse("session not found"))
	}

	var req validator.PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse("invalid body"))
	}
	cmd, err := validator.ParsePlaceOrder(req, getSessionUserID(c))
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.PlaceOrder(c.Request().Context(), sid, cmd)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, placeOrderResponse{SuccessResponse: success("order placed"), PlacedOrder: out})
}

func (h *OrderHandler) list(c echo.Context) error {
	out, err := h.uc.ListMyOrders(c.Request().Context(), getSessionUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse("invalid id"))
	}

	out, err := h.uc.GetMyOrderDetail(c.Request().Context(), getSessionUserID(c), orderID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
