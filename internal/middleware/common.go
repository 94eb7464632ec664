package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	ecM "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

type CommonConfig struct {
	CORSOrigins  []string
	RateLimitRPS float64
	BodyLimit    string
}

// Common is the stack mounted inside the request logger, so panics and
// rejections are rendered and logged like any handler error.
func Common(cfg CommonConfig) []echo.MiddlewareFunc {
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	mws := []echo.MiddlewareFunc{
		ecM.Recover(),
		ecM.Secure(),
		ecM.CORSWithConfig(ecM.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderXRequestID},
		}),
		ecM.GzipWithConfig(ecM.GzipConfig{
			Skipper: func(c echo.Context) bool { return c.Path() == "/metrics" },
		}),
	}
	if cfg.BodyLimit != "" {
		mws = append(mws, ecM.BodyLimit(cfg.BodyLimit))
	}
	if cfg.RateLimitRPS > 0 {
		mws = append(mws, RateLimit(cfg.RateLimitRPS))
	}
	return mws
}

// RateLimit allows rps requests per second per client IP with a burst of
// twice that.
func RateLimit(rps float64) echo.MiddlewareFunc {
	burst := int(rps * 2)
	if burst < 1 {
		burst = 1
	}
	store := ecM.NewRateLimiterMemoryStoreWithConfig(ecM.RateLimiterMemoryStoreConfig{
		Rate:  rate.Limit(rps),
		Burst: burst,
	})
	return ecM.RateLimiterWithConfig(ecM.RateLimiterConfig{
		Store: store,
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests, please try again later")
		},
	})
}
