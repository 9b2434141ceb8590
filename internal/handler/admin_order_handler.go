package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"shop/internal/config"
	"shop/internal/domain/model"
	"shop/internal/middleware"
	"shop/internal/repository"
	"shop/internal/usecase"
	"shop/internal/validator"

	"github.com/labstack/echo/v4"
)

type AdminOrderHandler struct {
	uc *usecase.AdminOrderUsecase
}

func NewAdminOrderHandler(uc *usecase.AdminOrderUsecase) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc}
}

type OrderStatusUpdateRequest struct {
	Status string `json:"status"`
}

type bulkStatusResponse struct {
	SuccessResponse
	usecase.BulkStatusResult
}

func (h *AdminOrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	// /admin 配下は「JWT必須 + token_version一致 + ADMIN限定」
	admin := e.Group("/admin")
	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.TokenVersionGuard(userRepo))
	admin.Use(middleware.AdminRoleGuard())

	admin.GET("/orders", h.list)
	admin.GET("/orders/:id", h.detail)
	admin.POST("/orders/confirm", h.confirm)
	admin.POST("/orders/reject", h.reject)
	admin.PUT("/orders/:id/status", h.updateStatus)
	admin.POST("/orders/:id/recalculate", h.recalculate)
	admin.GET("/audit-logs", h.auditLogs)
}

func (h *AdminOrderHandler) list(c echo.Context) error {
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse("invalid page"))
		}
		page = p
	}

	limit := 50
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse("invalid limit"))
		}
		limit = l
	}

	var userID *int64
	if v := c.QueryParam("user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse("invalid user_id"))
		}
		userID = &id
	}

	fromPtr, err := parseTimeParam(c, "from")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse("invalid from"))
	}
	toPtr, err := parseTimeParam(c, "to")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse("invalid to"))
	}

	out, err := h.uc.List(c.Request().Context(), repository.AdminOrderListFilter{
		Page:   page,
		Limit:  limit,
		Status: c.QueryParam("status"),
		UserID: userID,
		From:   fromPtr,
		To:     toPtr,
		Q:      c.QueryParam("q"),
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *AdminOrderHandler) detail(c echo.Context) error {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse("invalid id"))
	}

	out, err := h.uc.Detail(c.Request().Context(), orderID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminOrderHandler) confirm(c echo.Context) error {
	return h.bulk(c, h.uc.BulkConfirm, "orders confirmed")
}

func (h *AdminOrderHandler) reject(c echo.Context) error {
	return h.bulk(c, h.uc.BulkReject, "orders rejected")
}

type bulkFunc func(ctx context.Context, adminID int64, cmd usecase.OrderIDsCommand) (usecase.BulkStatusResult, error)

func (h *AdminOrderHandler) bulk(c echo.Context, run bulkFunc, msg string) error {
	//操作した管理者ID（監査ログ用）
	adminID, ok := getAdminIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorResponse("unauthorized"))
	}

	var req validator.OrderIDsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse("invalid body"))
	}
	cmd, err := validator.ParseOrderIDs(req)
	if err != nil {
		return writeError(c, err)
	}

	out, err := run(c.Request().Context(), adminID, cmd)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, bulkStatusResponse{SuccessResponse: success(msg), BulkStatusResult: out})
}

func (h *AdminOrderHandler) updateStatus(c echo.Context) error {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse("invalid id"))
	}

	var req OrderStatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse("invalid body"))
	}

	adminID, ok := getAdminIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorResponse("unauthorized"))
	}

	out, err := h.uc.UpdateStatus(c.Request().Context(), adminID, orderID, usecase.AdminUpdateOrderStatusInput{Status: req.Status})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminOrderHandler) recalculate(c echo.Context) error {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse("invalid id"))
	}

	adminID, ok := getAdminIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorResponse("unauthorized"))
	}

	out, err := h.uc.Recalculate(c.Request().Context(), adminID, orderID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminOrderHandler) auditLogs(c echo.Context) error {
	f := repository.AuditLogFilter{Limit: 50}

	if v := c.QueryParam("resource_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return c.JSON(http.StatusBadRequest, errorResponse("invalid resource_id"))
		}
		f.ResourceID = &id
	}
	if v := c.QueryParam("action"); v != "" {
		a := model.AuditAction(v)
		switch a {
		case model.AuditActionConfirmOrder, model.AuditActionRejectOrder, model.AuditActionRecalculateOrder:
		default:
			return c.JSON(http.StatusBadRequest, errorResponse("invalid action"))
		}
		f.Action = &a
	}
	fromPtr, err := parseTimeParam(c, "from")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse("invalid from"))
	}
	f.CreatedFrom = fromPtr
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil || l < 1 || l > 200 {
			return c.JSON(http.StatusBadRequest, errorResponse("invalid limit"))
		}
		f.Limit = l
	}
	if v := c.QueryParam("offset"); v != "" {
		o, err := strconv.Atoi(v)
		if err != nil || o < 0 {
			return c.JSON(http.StatusBadRequest, errorResponse("invalid offset"))
		}
		f.Offset = o
	}

	logs, err := h.uc.AuditLogs(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}

// RFC3339、空ならnil
func parseTimeParam(c echo.Context, name string) (*time.Time, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	tm, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, err
	}
	return &tm, nil
}
