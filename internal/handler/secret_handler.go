package handler

import (
	"net/http"

	"storefront/internal/middleware"

	"github.com/labstack/echo/v4"
)

// ログインユーザーだけが見られるページ
func RegisterSecretRoute(e *echo.Echo) {
	e.GET("/secret", func(c echo.Context) error {
		return c.String(http.StatusOK, "Only authenticated users are allowed!")
	}, middleware.LoginRequired())
}
