package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// RegisterRoutes configures all API routes, middleware and error handlers.
func RegisterRoutes(e *echo.Echo, h *Handlers, cfg ServerConfig) {
	e.HTTPErrorHandler = JSONErrorHandler()

	e.Use(SetNoCacheHeaders)

	if cfg.APIKey != "" {
		e.Use(middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
			KeyLookup: "header:X-API-Key",
			Validator: func(key string, c echo.Context) (bool, error) {
				return key == cfg.APIKey, nil
			},
			// A missing key surfaces as a non-HTTPError; map both missing
			// and invalid to a plain 401.
			ErrorHandler: func(err error, c echo.Context) error {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing api key")
			},
		}))
	}

	v1 := e.Group("/v1")
	v1.GET("/health", h.Health)
	v1.GET("/findings/recent", h.RecentFindings)
	v1.GET("/reports/:address", h.Report)

	// On-demand analysis hits Solscan, Twitter and the LLM, so it is
	// rate limited harder than the read paths.
	analyzeGroup := v1.Group("/analyze")
	analyzeGroup.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(0.2), // 1 request every 5 seconds
		Burst:     2,
		ExpiresIn: 2 * time.Minute,
	})))
	analyzeGroup.POST("", h.Analyze)

	flagGroup := v1.Group("/flags")
	flagGroup.GET("", h.FlagsList)
	flagGroup.POST("", h.FlagsUpsert)
	flagGroup.GET("/:key", h.FlagsGet)
	flagGroup.PUT("/:key", h.FlagsUpdate)
	flagGroup.DELETE("/:key", h.FlagsDelete)

	e.RouteNotFound("/*", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found", Code: http.StatusNotFound})
	})
}
