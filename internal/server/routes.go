package server

import (
	"shop/internal/config"
	"shop/internal/handler"
	"shop/internal/middleware"
	"shop/internal/repository"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Products    *handler.ProductHandler
	Cart        *handler.CartHandler
	Orders      *handler.OrderHandler
	Profile     *handler.ProfileHandler
	AdminOrders *handler.AdminOrderHandler
	Auth        *handler.AuthHandler
	Health      *handler.HealthHandler
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, sessions repository.SessionStore, userRepo repository.UserRepository, h Handlers) {
	h.Health.RegisterRoutes(e)

	shop := storefront(e, cfg, sessions)
	h.Products.RegisterRoutes(shop)
	h.Cart.RegisterRoutes(shop)
	linked := middleware.RequireLinkedUser()
	h.Orders.RegisterRoutes(shop, middleware.OrderRateLimiter(cfg.OrderRateLimit), linked)
	h.Profile.RegisterRoutes(shop, linked)

	h.Auth.RegisterRoutes(e, cfg, userRepo)
	h.AdminOrders.RegisterRoutes(e, cfg, userRepo)
}
