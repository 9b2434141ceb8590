package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// IPごとの上限はセッションごとの何倍か（同じNAT配下の複数購入者向け）
const ipRateFactor = 5

// OrderRateLimiter は注文作成を絞る（perSecond回/秒）。
// IP+セッションごとの上限と、cookieを捨てても効くIPごとの上限を重ねる。
func OrderRateLimiter(perSecond float64) echo.MiddlewareFunc {
	if perSecond <= 0 {
		perSecond = 1
	}

	bySession := newRateLimiter(perSecond, 3, func(c echo.Context) (string, error) {
		if sid, ok := c.Get(CtxSessionIDKey).(string); ok && sid != "" {
			return c.RealIP() + "|" + sid, nil
		}
		return c.RealIP(), nil
	})
	byIP := newRateLimiter(perSecond*ipRateFactor, 10, func(c echo.Context) (string, error) {
		return c.RealIP(), nil
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return byIP(bySession(next))
	}
}

func newRateLimiter(perSecond float64, minBurst int, key echomw.Extractor) echo.MiddlewareFunc {
	burst := int(perSecond)
	if burst < minBurst {
		burst = minBurst
	}

	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(perSecond),
			Burst:     burst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: key,
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, errorJSON("rate limit identifier error"))
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, errorJSON("too many requests"))
		},
	})
}
