package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"storefront/internal/config"
	"storefront/internal/metrics"
	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// サーバーが使う部品
type Deps struct {
	Config   config.Config
	Log      *slog.Logger
	Accounts *usecase.AccountUsecase
	Carts    *usecase.CartUsecase
	Orders   *usecase.OrderUsecase
}

// New はミドルウェアとルートを登録したechoを返す
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	if d.Config.SSLRedirect {
		e.Pre(echomw.HTTPSRedirect())
	}

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(metrics.Middleware())
	e.Use(middleware.Session(d.Accounts, d.Log))

	RegisterRoutes(e, d)
	return e
}

func requestLogger(log *slog.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
			}
			if uid, ok := c.Get(middleware.CtxUserIDKey).(int64); ok {
				attrs = append(attrs, "user_id", uid)
			}

			ctx := c.Request().Context()
			if v.Error != nil {
				log.ErrorContext(ctx, "request", append(attrs, "err", v.Error)...)
				return nil
			}
			log.InfoContext(ctx, "request", attrs...)
			return nil
		},
	})
}

// ctxがキャンセルされたらgraceful shutdownする
func Start(ctx context.Context, e *echo.Echo, addr string, log *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Info("server shutting down")
	return e.Shutdown(shutdownCtx)
}
