package middleware

import (
	"net/http"

	"storefront/internal/domain/model"

	"github.com/labstack/echo/v4"
)

// ログイン必須
func LoginRequired() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !CurrentPrincipal(c).IsAuthenticated() {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			return next(c)
		}
	}
}

// PermissionRequired はロールの権限を確認する（匿名は401、権限なしは403）
func PermissionRequired(perm model.Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := CurrentPrincipal(c)
			if !p.IsAuthenticated() {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			if !p.Can(perm) {
				return c.JSON(http.StatusForbidden, errorJSON("forbidden"))
			}
			return next(c)
		}
	}
}

func AdminRequired() echo.MiddlewareFunc {
	return PermissionRequired(model.PermissionAdmin)
}

// メール確認が済んでいないユーザーは403
func ConfirmedRequired() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, ok := CurrentUser(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			if !u.Confirmed {
				return c.JSON(http.StatusForbidden, errorJSON("account not confirmed"))
			}
			return next(c)
		}
	}
}
