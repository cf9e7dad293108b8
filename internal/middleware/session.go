package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"storefront/internal/domain/model"

	"github.com/labstack/echo/v4"
)

const (
	CtxPrincipalKey = "principal" // model.Principal
	CtxUserIDKey    = "user_id"   // int64（ログイン時のみ）
)

// セッショントークンからユーザーを引く約束（AccountUsecaseが満たす）
type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (*model.User, error)
	Ping(ctx context.Context, user *model.User) error
}

// Session はBearerトークンから主体を決める。
// ヘッダなしは匿名、トークン不正は401。ログイン中はlast_seenを更新する
func Session(auth Authenticator, log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authz := c.Request().Header.Get("Authorization")
			if authz == "" {
				c.Set(CtxPrincipalKey, model.Principal(model.AnonymousUser{}))
				return next(c)
			}

			//Bearer形式か確認してtokenを抜く
			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			rawToken := strings.TrimSpace(parts[1])
			if rawToken == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			ctx := c.Request().Context()
			user, err := auth.Authenticate(ctx, rawToken)
			if err != nil || user == nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//last_seenの更新に失敗してもリクエストは通す
			if err := auth.Ping(ctx, user); err != nil {
				log.WarnContext(ctx, "ping failed", "user_id", user.ID, "err", err)
			}

			c.Set(CtxPrincipalKey, model.Principal(user))
			c.Set(CtxUserIDKey, user.ID)
			return next(c)
		}
	}
}

// 現在の主体。Sessionを通っていなければ匿名
func CurrentPrincipal(c echo.Context) model.Principal {
	p, ok := c.Get(CtxPrincipalKey).(model.Principal)
	if !ok || p == nil {
		return model.AnonymousUser{}
	}
	return p
}

// ログイン中のユーザー
func CurrentUser(c echo.Context) (*model.User, bool) {
	u, ok := CurrentPrincipal(c).(*model.User)
	return u, ok && u != nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
