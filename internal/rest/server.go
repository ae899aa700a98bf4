package rest

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/newslens/newslens/internal/logger"
)

// NewServer builds the echo instance with middleware and every route
// registered. CORS is restricted to the configured origins.
func NewServer(h *Handler, allowedOrigins []string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogError:   true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error == nil {
				logger.Info("request completed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds())
			} else {
				logger.Error("request failed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds(),
					"error", v.Error.Error())
			}
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))

	h.Register(e)
	return e
}

// Register wires the endpoints onto the echo instance.
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/articles", h.Articles)
	e.POST("/articles/balanced", h.BalancedArticles)
	e.GET("/bias-stats", h.BiasStats)
	e.GET("/tldr", h.AllCategories)
	e.GET("/tldr/:category", h.CategoryTLDR)
	e.GET("/tldr/cache-stats", h.CacheStats)
	e.POST("/tldr/clear-cache", h.ClearCache)
	e.GET("/trending/:category", h.TrendingTopics)
	e.GET("/health", h.Health)
	e.GET("/metrics", h.Metrics)
}
