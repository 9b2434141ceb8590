package middleware

import (
	"time"

	"shop/internal/logging"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RequestLogger はリクエスト単位のloggerをcontextに入れ、終了時に1行出す。
func RequestLogger(base *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			//echoのRequestIDはレスポンスヘッダに入る
			rid := req.Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = c.Response().Header().Get(echo.HeaderXRequestID)
			}

			l := base.With(
				zap.String("method", req.Method),
				zap.String("path", c.Path()),
				zap.String("url", req.URL.Path),
				zap.String("remote_ip", c.RealIP()),
			)
			if rid != "" {
				l = l.With(zap.String("request_id", rid))
			}
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			status := c.Response().Status
			dur := zap.Duration("duration", time.Since(start))

			switch {
			case err != nil || status >= 500:
				l.Error("request completed", zap.Int("status", status), dur, zap.Error(err))
			case status >= 400:
				l.Warn("request completed", zap.Int("status", status), dur)
			default:
				l.Info("request completed", zap.Int("status", status), dur, zap.Int64("bytes", c.Response().Size))
			}
			return nil
		}
	}
}
