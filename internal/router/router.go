package router // package router defines how HTTP routes are registered for the API

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/movie-rental/internal/config"
	"github.com/iliyamo/movie-rental/internal/handler"
	"github.com/iliyamo/movie-rental/internal/middleware"
)

// BasePath prefixes every API route.
const BasePath = "/api/v1"

// Setup installs the global middleware chain: request ids, panic recovery,
// access logging and the Redis token bucket. rdb may be nil.
func Setup(e *echo.Echo, log *slog.Logger, rl config.RateLimitConfig, rdb *redis.Client) {
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()
	e.Use(echomw.RequestID())
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log))
	e.Use(middleware.NewTokenBucket(rl, rdb))
}

// RegisterRoutes registers routes that do not require authentication and
// live outside the API prefix.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterAuth registers the account endpoints. Register, login, refresh
// and logout are open; /auth/me and /users act on the bearer of the token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, u *handler.UserHandler, jwtSecret string) {
	g := e.Group(BasePath + "/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// logout accepts either a refreshToken body or a Bearer header
	g.POST("/logout", a.Logout)
	g.GET("/me", a.Me, middleware.JWTAuth(jwtSecret))

	users := e.Group(BasePath+"/users", middleware.JWTAuth(jwtSecret))
	users.PUT("", u.Update)
	users.DELETE("", u.Delete)
}
