package server

import (
	"storefront/internal/handler"
	"storefront/internal/metrics"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, d Deps) {
	handler.NewAuthHandler(d.Accounts).RegisterRoutes(e)
	handler.NewCartHandler(d.Carts).RegisterRoutes(e)
	handler.NewOrderHandler(d.Orders).RegisterRoutes(e)
	handler.NewAdminOrderHandler(d.Orders).RegisterRoutes(e)
	handler.RegisterSecretRoute(e)

	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
}
